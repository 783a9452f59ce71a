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

package opts

import (
	"io"

	"github.com/walteh/dropzip/pkg/action"
	"github.com/walteh/dropzip/pkg/archive"
	"github.com/walteh/dropzip/pkg/config"
	"github.com/walteh/dropzip/pkg/errs"
	"github.com/walteh/dropzip/pkg/hook"
	"github.com/walteh/dropzip/pkg/log"
	"github.com/walteh/dropzip/pkg/report"
	"github.com/walteh/dropzip/pkg/transfer"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands. The root command
// fills it before any subcommand runs.
type RootOpts struct {
	Config      *config.Config
	Stdout      io.Writer
	Stderr      io.Writer
	JSON        bool // machine readable events on Stdout
	Interactive bool // Stdout is a terminal, show a progress bar
	Logger      *log.Logger

	tracker *report.Tracker
}

// Reporter returns the reporter for this process. It remembers the latest
// invocation's failure so main can tell whether an error was already shown.
func (o *RootOpts) Reporter() action.Reporter {
	if o.tracker == nil {
		var next action.Reporter
		if o.JSON {
			next = report.NewJSONLines(o.Stdout)
		} else {
			next = report.NewConsole(o.Stdout, o.Interactive)
		}
		o.tracker = &report.Tracker{Next: next}
	}
	return o.tracker
}

// Reported reports whether err is the failure the reporter already showed
func (o *RootOpts) Reported(err error) bool {
	if o.tracker == nil {
		return false
	}
	last := o.tracker.LastFailure()
	return last != nil && errors.Is(err, last)
}

// Close releases the logger, it is safe to call more than once
func (o *RootOpts) Close() error {
	if o.Logger == nil {
		return nil
	}
	l := o.Logger
	o.Logger = nil
	return l.Close()
}

// Orchestrator builds the action from the loaded config
func (o *RootOpts) Orchestrator() (*action.Orchestrator, error) {
	cfg := o.Config
	if cfg == nil || cfg.Destination.Dir == "" {
		return nil, errs.InvalidInput("no destination configured, set destination.dir or pass --dest")
	}

	shell := hook.NewShell()
	shell.Stdout = o.Stderr
	shell.Stderr = o.Stderr

	return action.New(action.Options{
		Destination: transfer.Destination{Dir: cfg.Destination.Dir, Overwrite: cfg.Destination.Overwrite},
		Name:        cfg.Archive.Name,
		Excludes:    o.Excludes(),
		Compression: archive.Compression(cfg.Archive.Compression),
		Hooks: action.Hooks{
			AfterTransfer: cfg.Hooks.AfterTransfer,
			Clicked:       cfg.Hooks.Clicked,
		},
		HookRunner: shell,
	})
}

// Excludes returns the configured exclusion patterns, or the defaults
func (o *RootOpts) Excludes() []string {
	if o.Config == nil || o.Config.Archive.Exclude == nil {
		return append([]string(nil), archive.DefaultExcludes...)
	}
	return o.Config.Archive.Exclude
}
