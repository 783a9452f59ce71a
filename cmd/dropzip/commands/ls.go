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

	"github.com/spf13/cobra"
	"github.com/walteh/dropzip/cmd/dropzip/opts"
	"github.com/walteh/dropzip/pkg/archive"
)

// NewLsCmd creates a command that lists archive entries
func NewLsCmd(opts *opts.RootOpts) *cobra.Command {
	var excluded bool

	cmd := &cobra.Command{
		Use:   "ls <archive>",
		Short: "List the entries of a zip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := archive.Entries(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			patterns := opts.Excludes()
			for _, name := range entries {
				if excluded {
					hit, err := archive.Matches(patterns, name)
					if err != nil {
						return err
					}
					if !hit {
						continue
					}
				}
				fmt.Fprintln(opts.Stdout, name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&excluded, "excluded", false, "only list entries the exclusion patterns would remove")

	return cmd
}
