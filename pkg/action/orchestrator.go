// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package action

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/dropzip/pkg/archive"
	"github.com/walteh/dropzip/pkg/errs"
	"github.com/walteh/dropzip/pkg/hook"
	"github.com/walteh/dropzip/pkg/text"
	"github.com/walteh/dropzip/pkg/transfer"
	"gitlab.com/tozd/go/errors"
)

// progress milestones, building fills 0 to buildShare
const (
	buildShare       = 60
	progressFilter   = 65
	progressTransfer = 75
	progressHook     = 95
	progressDone     = 100
)

// 🪝 Hooks are optional shell snippets run at the end of an invocation
type Hooks struct {
	AfterTransfer string
	Clicked       string
}

// 🔧 Options contains configuration for the orchestrator
type Options struct {
	// Destination is where finished archives are copied
	Destination transfer.Destination
	// Name is the archive base name when an invocation gives none
	Name string
	// Excludes are the patterns stripped from every archive
	Excludes []string
	// Compression selects the entry compression method
	Compression archive.Compression
	// WorkDir is the parent of per-invocation temp directories, empty for the system default
	WorkDir string
	// Hooks are run through HookRunner
	Hooks Hooks
	// HookRunner is required when any hook is set
	HookRunner hook.Runner
}

// 🎮 Orchestrator sequences build, filter, transfer and hooks for an invocation
type Orchestrator struct {
	opts Options
}

// 🏭 New creates a new orchestrator with the given options
func New(opts Options) (*Orchestrator, error) {
	if opts.Destination.Dir == "" {
		return nil, errors.Errorf("destination is required")
	}
	if (opts.Hooks.AfterTransfer != "" || opts.Hooks.Clicked != "") && opts.HookRunner == nil {
		return nil, errors.Errorf("hook runner is required when hooks are configured")
	}
	if opts.Compression == "" {
		opts.Compression = archive.CompressionDeflate
	}
	return &Orchestrator{opts: opts}, nil
}

// 🏃 Run executes one invocation to completion and reports to rep. The first
// failing step aborts the rest; its error is reported and returned.
func (o *Orchestrator) Run(ctx context.Context, inv Invocation, rep Reporter) (*Result, error) {
	id := uuid.NewString()
	kind := KindUnknown
	if inv != nil {
		kind = inv.Kind()
	}

	logger := zerolog.Ctx(ctx).With().Str("invocation", id).Str("kind", kind.String()).Logger()
	ctx = logger.WithContext(ctx)

	rep.Begin(ctx, inv)

	var (
		res *Result
		err error
	)
	switch inv := inv.(type) {
	case Dragged:
		res, err = o.dragged(ctx, id, inv, rep)
	case *Dragged:
		res, err = o.dragged(ctx, id, *inv, rep)
	case Clicked, *Clicked:
		res, err = o.clicked(ctx, id, rep)
	default:
		err = errs.InvalidInput("unsupported invocation %T", inv)
	}

	if err != nil {
		logger.Error().Err(err).Msg("invocation failed")
		rep.Failed(ctx, err)
		return nil, err
	}

	res.Invocation = id
	res.Kind = kind

	rep.Progress(ctx, progressDone, "done")
	logger.Info().Str("path", res.Path).Int("entries", res.Entries).Msg("invocation succeeded")
	rep.Succeeded(ctx, res)
	return res, nil
}

// 📦 dragged runs build → filter → transfer → after_transfer hook
func (o *Orchestrator) dragged(ctx context.Context, id string, inv Dragged, rep Reporter) (*Result, error) {
	name := inv.Name
	if name == "" {
		name = o.opts.Name
	}
	name = text.ExpandName(name, time.Now(), itemNames(inv.Items))

	work, err := os.MkdirTemp(o.opts.WorkDir, "dropzip-*")
	if err != nil {
		return nil, errors.Errorf("creating work directory: %w", err)
	}
	// the temp archive belongs to this invocation until it has been copied out
	defer os.RemoveAll(work)

	rep.Progress(ctx, 0, fmt.Sprintf("archiving %d item(s)", len(inv.Items)))

	built, err := archive.Build(ctx, archive.Request{Items: inv.Items, Name: name},
		archive.WithWorkDir(work),
		archive.WithCompression(o.opts.Compression),
		archive.WithProgress(func(done, total int) {
			rep.Progress(ctx, done*buildShare/total, fmt.Sprintf("archived %d of %d", done, total))
		}),
	)
	if err != nil {
		return nil, errors.Errorf("building archive: %w", err)
	}

	rep.Progress(ctx, progressFilter, "removing metadata entries")

	removed, err := archive.Filter(ctx, built.Path, o.opts.Excludes)
	if err != nil {
		return nil, errors.Errorf("filtering archive: %w", err)
	}

	sum, size := built.Checksum, built.Size
	if removed > 0 {
		sum, size, err = archive.Checksum(built.Path)
		if err != nil {
			return nil, errors.Errorf("filtering archive: %w", err)
		}
	}

	rep.Progress(ctx, progressTransfer, "copying to "+o.opts.Destination.Dir)

	final, err := transfer.Copy(ctx, built.Path, o.opts.Destination)
	if err != nil {
		return nil, errors.Errorf("transferring archive: %w", err)
	}

	res := &Result{
		Path:     final,
		Entries:  built.Entries - removed,
		Removed:  removed,
		Size:     size,
		Checksum: sum,
	}

	if o.opts.Hooks.AfterTransfer != "" {
		rep.Progress(ctx, progressHook, "running after_transfer hook")
		if err := o.opts.HookRunner.Run(ctx, "after_transfer", o.opts.Hooks.AfterTransfer, hookEnv(id, res, o.opts.Destination.Dir)); err != nil {
			return nil, errors.Errorf("running hook: %w", err)
		}
	}

	return res, nil
}

// 🖱️ clicked checks the destination and runs the clicked hook
func (o *Orchestrator) clicked(ctx context.Context, id string, rep Reporter) (*Result, error) {
	if err := o.opts.Destination.Check(); err != nil {
		return nil, errors.Errorf("checking destination: %w", err)
	}

	res := &Result{Path: o.opts.Destination.Dir}

	if o.opts.Hooks.Clicked != "" {
		rep.Progress(ctx, progressHook, "running clicked hook")
		if err := o.opts.HookRunner.Run(ctx, "clicked", o.opts.Hooks.Clicked, hookEnv(id, res, o.opts.Destination.Dir)); err != nil {
			return nil, errors.Errorf("running hook: %w", err)
		}
	}

	return res, nil
}

// itemNames names items for archive name placeholders, clippings count as "clipping"
func itemNames(items []archive.Item) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		switch item := item.(type) {
		case archive.PathItem:
			names = append(names, item.Path)
		default:
			names = append(names, "clipping")
		}
	}
	return names
}

func hookEnv(id string, res *Result, dest string) map[string]string {
	env := map[string]string{
		"DROPZIP_DESTINATION": dest,
		"DROPZIP_INVOCATION":  id,
	}
	if res.Path != dest {
		env["DROPZIP_ARCHIVE"] = res.Path
		env["DROPZIP_ENTRIES"] = strconv.Itoa(res.Entries)
		env["DROPZIP_CHECKSUM"] = res.Checksum
	}
	return env
}
