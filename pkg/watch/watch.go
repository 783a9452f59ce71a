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

// Package watch turns a directory into a drop target. Items that settle in the
// inbox are bundled with one Dragged invocation per batch.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/walteh/dropzip/pkg/action"
	"github.com/walteh/dropzip/pkg/archive"
	"gitlab.com/tozd/go/errors"
)

const defaultDebounce = 500 * time.Millisecond

// 🎬 Action runs one invocation, *action.Orchestrator satisfies it
type Action interface {
	Run(ctx context.Context, inv action.Invocation, rep action.Reporter) (*action.Result, error)
}

// 🔧 Options configures a Watcher
type Options struct {
	// Inbox is the watched directory, only its direct children are bundled
	Inbox string
	// Debounce is the quiet period after the last event before a batch runs
	Debounce time.Duration
	// IncludeExisting bundles items already in the inbox on start
	IncludeExisting bool
	// Action runs each batch
	Action Action
	// Reporter receives every invocation's events
	Reporter action.Reporter
}

// 👀 Watcher bundles items dropped into an inbox
type Watcher struct {
	opts    Options
	seen    map[string]struct{}
	batches atomic.Int64
}

// 🏭 New creates a new watcher with the given options
func New(opts Options) (*Watcher, error) {
	if opts.Inbox == "" {
		return nil, errors.Errorf("inbox is required")
	}
	if opts.Action == nil {
		return nil, errors.Errorf("action is required")
	}
	if opts.Reporter == nil {
		return nil, errors.Errorf("reporter is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}

	info, err := os.Stat(opts.Inbox)
	if err != nil {
		return nil, errors.Errorf("checking inbox: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("inbox is not a directory: %s", opts.Inbox)
	}

	return &Watcher{opts: opts, seen: make(map[string]struct{})}, nil
}

// 🔢 Batches returns how many invocations have run
func (w *Watcher) Batches() int64 {
	return w.batches.Load()
}

// 🏃 Run watches the inbox until ctx is done. Batches run on this goroutine,
// one at a time; events that arrive meanwhile wait in the fsnotify queue.
func (w *Watcher) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("inbox", w.opts.Inbox).Logger()
	ctx = logger.WithContext(ctx)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("creating fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.opts.Inbox); err != nil {
		return errors.Errorf("watching inbox: %w", err)
	}

	pending := make(map[string]struct{})

	existing, err := w.children()
	if err != nil {
		return err
	}
	for _, p := range existing {
		w.addTree(ctx, fsw, p)
		if w.opts.IncludeExisting {
			pending[p] = struct{}{}
		} else {
			w.seen[p] = struct{}{}
		}
	}

	timer := time.NewTimer(w.opts.Debounce)
	if len(pending) == 0 {
		stopTimer(timer)
	}
	defer timer.Stop()

	logger.Info().Dur("debounce", w.opts.Debounce).Msg("watching inbox")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("stopped watching inbox")
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return errors.Errorf("fsnotify event channel closed")
			}
			if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) {
				continue
			}
			top := w.topLevel(evt.Name)
			if top == "" {
				continue
			}
			// folders fill up after their create event, watch them so every
			// copied file keeps the batch open
			if evt.Has(fsnotify.Create) {
				w.addTree(ctx, fsw, evt.Name)
			}
			logger.Debug().Str("path", top).Str("event", evt.Name).Str("op", evt.Op.String()).Msg("inbox event")
			pending[top] = struct{}{}
			resetTimer(timer, w.opts.Debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.Errorf("fsnotify error channel closed")
			}
			logger.Warn().Err(err).Msg("fsnotify error")

		case <-timer.C:
			w.flush(ctx, pending)
			clear(pending)
		}
	}
}

// 📦 flush runs one invocation for the settled, unseen items in pending
func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	logger := zerolog.Ctx(ctx)

	var paths []string
	for p := range pending {
		if _, ok := w.seen[p]; ok {
			continue
		}
		if _, err := os.Lstat(p); err != nil {
			logger.Debug().Str("path", p).Msg("item vanished before bundling")
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	for _, p := range paths {
		w.seen[p] = struct{}{}
	}

	w.batches.Add(1)
	logger.Info().Int("items", len(paths)).Msg("bundling inbox batch")
	if _, err := w.opts.Action.Run(ctx, action.Dragged{Items: archive.Paths(paths...)}, w.opts.Reporter); err != nil {
		// already reported, keep watching
		logger.Debug().Err(err).Msg("batch failed")
	}
}

// 🌲 addTree watches path and every directory below it. Files are ignored.
func (w *Watcher) addTree(ctx context.Context, fsw *fsnotify.Watcher, path string) {
	logger := zerolog.Ctx(ctx)

	info, err := os.Lstat(path)
	if err != nil || !info.IsDir() {
		return
	}

	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			logger.Debug().Err(err).Str("path", p).Msg("skipping unreadable path")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && ignored(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			logger.Warn().Err(err).Str("path", p).Msg("watching directory")
		}
		return nil
	})
}

// 📂 children lists the bundleable direct children of the inbox
func (w *Watcher) children() ([]string, error) {
	entries, err := os.ReadDir(w.opts.Inbox)
	if err != nil {
		return nil, errors.Errorf("reading inbox: %w", err)
	}
	var out []string
	for _, e := range entries {
		if ignored(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(w.opts.Inbox, e.Name()))
	}
	return out, nil
}

// 🔝 topLevel maps an event path to the inbox child that contains it, or ""
func (w *Watcher) topLevel(name string) string {
	rel, err := filepath.Rel(w.opts.Inbox, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	if ignored(first) {
		return ""
	}
	return filepath.Join(w.opts.Inbox, first)
}

// hidden files cover .DS_Store and the partial files editors and browsers write
func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".crdownload")
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	stopTimer(t)
	t.Reset(d)
}
