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
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/walteh/dropzip/cmd/dropzip/opts"
	"github.com/walteh/dropzip/pkg/archive"
)

// NewFilterCmd creates a command that strips entries from an existing archive
func NewFilterCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <archive> [patterns...]",
		Short: "Remove matching entries from a zip in place",
		Long: `Filter rewrites an archive without the entries matching the patterns.
Without patterns the configured exclusions are used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns := args[1:]
			if len(patterns) == 0 {
				patterns = opts.Excludes()
			}

			removed, err := archive.Filter(cmd.Context(), args[0], patterns)
			if err != nil {
				return err
			}

			if opts.JSON {
				_, err = fmt.Fprintf(opts.Stdout, "{\"path\":%q,\"removed\":%d}\n", args[0], removed)
				return err
			}
			if removed == 0 {
				fmt.Fprintf(opts.Stdout, "%s %s\n", color.New(color.Faint).Sprint("•"), "nothing to remove")
				return nil
			}
			fmt.Fprintf(opts.Stdout, "✅ %s\n", color.New(color.FgGreen).Sprintf("removed %d entries from %s", removed, args[0]))
			return nil
		},
	}

	return cmd
}
