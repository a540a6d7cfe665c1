/*
Copyright © contributors to CloudNativePG, established as
CloudNativePG a Series of LF Projects, LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.

SPDX-License-Identifier: Apache-2.0
*/

// Package topology implements the "topology" subcommand
package topology

import (
	"io"

	"github.com/spf13/cobra"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
)

// NewCmd creates the new "topology" subcommand
func NewCmd() *cobra.Command {
	topologyCmd := &cobra.Command{
		Use:     "topology [CLUSTER]",
		Short:   "Classify the members of an Aurora cluster by role",
		GroupID: plugin.GroupIDInstance,
		Args:    plugin.AtMostArguments(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := plugin.GetOutputFormat(cmd)
			if err != nil {
				return err
			}

			var request apiv1.TopologyRequest
			if err := plugin.ReadRequest(cmd, &request); err != nil {
				return err
			}
			if len(args) > 0 {
				request.ClusterIdentifier = args[0]
			}
			if request.ClusterIdentifier == "" {
				request.ClusterIdentifier = plugin.Config.ClusterIdentifier
			}

			response, err := Resolve(cmd.Context(), request)
			if err != nil {
				return err
			}
			return plugin.Print(cmd.OutOrStdout(), format, response, func(w io.Writer) {
				printText(w, response)
			})
		},
	}

	plugin.AddOutputFlag(topologyCmd)
	plugin.AddInputFlag(topologyCmd)

	return topologyCmd
}
