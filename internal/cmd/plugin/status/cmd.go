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

// Package status implements the "status" subcommand
package status

import (
	"io"

	"github.com/spf13/cobra"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
)

// NewCmd creates the new "status" subcommand
func NewCmd() *cobra.Command {
	var targetClass string

	statusCmd := &cobra.Command{
		Use:     "status [INSTANCE...]",
		Short:   "Report whether instances are available with the expected class",
		GroupID: plugin.GroupIDInstance,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := plugin.GetOutputFormat(cmd)
			if err != nil {
				return err
			}

			var request apiv1.CheckInstanceStatusRequest
			if err := plugin.ReadRequest(cmd, &request); err != nil {
				return err
			}
			if len(args) > 0 {
				request.InstanceIDs = args
			}
			if targetClass != "" {
				request.TargetClass = targetClass
			}

			response, err := Status(cmd.Context(), request)
			if err != nil {
				return err
			}
			return plugin.Print(cmd.OutOrStdout(), format, response, func(w io.Writer) {
				printText(w, response)
			})
		},
	}

	statusCmd.Flags().StringVar(&targetClass, "target-class", "",
		"Instance class every instance is expected to have")
	plugin.AddOutputFlag(statusCmd)
	plugin.AddInputFlag(statusCmd)

	return statusCmd
}
