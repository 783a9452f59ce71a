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
)

// NewClickCmd creates the command hosts call when the action is clicked
func NewClickCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "click",
		Short: "Check the destination and run the clicked hook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.Orchestrator()
			if err != nil {
				return err
			}

			_, err = orch.Run(cmd.Context(), action.Clicked{}, opts.Reporter())
			return err
		},
	}

	return cmd
}
