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

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/dropzip/cmd/dropzip/opts"
	"github.com/walteh/dropzip/pkg/config"
	"github.com/walteh/dropzip/pkg/errs"
	"github.com/walteh/dropzip/pkg/watch"
	"gitlab.com/tozd/go/errors"
)

// NewWatchCmd creates a command that bundles whatever lands in an inbox
func NewWatchCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		inbox           string
		includeExisting bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Bundle items dropped into an inbox folder until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inbox == "" {
				inbox = opts.Config.Watch.Inbox
			}
			if inbox == "" {
				return errs.InvalidInput("no inbox configured, set watch.inbox or pass --inbox")
			}
			dir, err := config.ExpandPath(inbox)
			if err != nil {
				return errs.Wrap(errs.ErrInvalidInput, err, "inbox")
			}

			orch, err := opts.Orchestrator()
			if err != nil {
				return err
			}

			w, err := watch.New(watch.Options{
				Inbox:           dir,
				Debounce:        opts.Config.Watch.DebounceInterval,
				IncludeExisting: includeExisting,
				Action:          orch,
				Reporter:        opts.Reporter(),
			})
			if err != nil {
				return errs.Wrap(errs.ErrInvalidInput, err, "creating watcher")
			}

			if err := w.Run(cmd.Context()); err != nil {
				return errors.Errorf("watching %s: %w", dir, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inbox, "inbox", "", "directory to watch, overrides watch.inbox")
	cmd.Flags().BoolVar(&includeExisting, "include-existing", false, "bundle items already in the inbox")

	return cmd
}
