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

// Package resize implements the "resize" subcommand
package resize

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
)

// NewCmd creates the new "resize" subcommand
func NewCmd() *cobra.Command {
	var (
		targetClass string
		deferApply  bool
	)

	resizeCmd := &cobra.Command{
		Use:     "resize [INSTANCE]",
		Short:   "Change the class of one instance, once",
		GroupID: plugin.GroupIDInstance,
		Args:    plugin.AtMostArguments(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := plugin.GetOutputFormat(cmd)
			if err != nil {
				return err
			}

			var request apiv1.ModifyInstanceRequest
			if err := plugin.ReadRequest(cmd, &request); err != nil {
				return err
			}
			if len(args) > 0 {
				request.InstanceID = args[0]
			}
			if targetClass != "" {
				request.TargetClass = targetClass
			}
			if cmd.Flags().Changed("defer") {
				request.ApplyImmediately = ptr.To(!deferApply)
			}

			response, err := Resize(cmd.Context(), request)
			if err != nil {
				return err
			}
			return plugin.Print(cmd.OutOrStdout(), format, response, func(w io.Writer) {
				fmt.Fprintln(w, response.Message)
			})
		},
	}

	resizeCmd.Flags().StringVar(&targetClass, "target-class", "",
		"Instance class to apply, overrides the request document")
	resizeCmd.Flags().BoolVar(&deferApply, "defer", false,
		"Apply the change in the next maintenance window instead of immediately")
	plugin.AddOutputFlag(resizeCmd)
	plugin.AddInputFlag(resizeCmd)

	return resizeCmd
}
