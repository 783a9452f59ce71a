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
	"github.com/walteh/dropzip/pkg/action"
	"github.com/walteh/dropzip/pkg/archive"
	"github.com/walteh/dropzip/pkg/errs"
)

// NewBundleCmd creates the command hosts call when items are dropped
func NewBundleCmd(opts *opts.RootOpts) *cobra.Command {
	var texts []string

	cmd := &cobra.Command{
		Use:     "bundle [paths...]",
		Aliases: []string{"drag"},
		Short:   "Zip dropped items and copy the archive to the destination",
		Long: `Bundle handles a drop. It will:
1. Zip every path (folders recursively) and --text clipping
2. Remove entries matching the exclusion patterns
3. Copy the archive into the destination
4. Run the after_transfer hook, if configured`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			items := archive.Paths(args...)
			for _, text := range texts {
				items = append(items, archive.TextItem{Text: text})
			}
			if len(items) == 0 {
				return errs.InvalidInput("nothing to bundle, pass paths or --text")
			}

			orch, err := opts.Orchestrator()
			if err != nil {
				return err
			}

			_, err = orch.Run(ctx, action.Dragged{Items: items}, opts.Reporter())
			return err
		},
	}

	cmd.Flags().StringArrayVar(&texts, "text", nil, "dropped text, stored as a clipping entry")

	return cmd
}
