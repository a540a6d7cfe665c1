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

// Package trigger implements the "schedule" subcommands, managing the rule
// that fires the scaling workflow
package trigger

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
	"github.com/cloudnative-pg/aurora-scaledown/internal/configuration"
)

// NewCmd creates the new "schedule" subcommand
func NewCmd() *cobra.Command {
	scheduleCmd := &cobra.Command{
		Use:     "schedule",
		Short:   "Manage the trigger of the scaling workflow",
		GroupID: plugin.GroupIDSchedule,
	}

	scheduleCmd.AddCommand(newTranslateCmd())
	scheduleCmd.AddCommand(newArmCmd())
	scheduleCmd.AddCommand(newDisableCmd())

	return scheduleCmd
}

// newTranslateCmd creates the new "schedule translate" subcommand
func newTranslateCmd() *cobra.Command {
	translateCmd := &cobra.Command{
		Use:   "translate TIME",
		Short: `Show the trigger expression for "HH:MM", "YYYY-MM-DD HH:MM" or "cron(...)"`,
		Args:  plugin.RequiresArguments(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := plugin.GetOutputFormat(cmd)
			if err != nil {
				return err
			}

			response, err := Translate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return plugin.Print(cmd.OutOrStdout(), format, response, func(w io.Writer) {
				printSchedule(w, response)
			})
		},
	}

	plugin.AddOutputFlag(translateCmd)

	return translateCmd
}

// newArmCmd creates the new "schedule arm" subcommand
func newArmCmd() *cobra.Command {
	var targetClass, clusterID string

	armCmd := &cobra.Command{
		Use:   "arm [TIME]",
		Short: "Enable the trigger at the given time for the given cluster and class",
		Args:  plugin.AtMostArguments(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := plugin.GetOutputFormat(cmd)
			if err != nil {
				return err
			}

			var request apiv1.UpdateScheduleRequest
			if err := plugin.ReadRequest(cmd, &request); err != nil {
				return err
			}
			if len(args) > 0 {
				request.ScheduleTime = args[0]
			}
			if clusterID != "" {
				request.ClusterIdentifier = clusterID
			}
			if targetClass != "" {
				request.TargetClass = targetClass
			}

			response, err := Arm(cmd.Context(), request)
			if err != nil {
				return err
			}
			return plugin.Print(cmd.OutOrStdout(), format, response, func(w io.Writer) {
				printArmed(w, response)
			})
		},
	}

	armCmd.Flags().StringVar(&clusterID, "cluster", "",
		"Cluster identifier, defaults to "+configuration.ClusterIdentifierKey)
	armCmd.Flags().StringVar(&targetClass, "target-class", "",
		"Instance class to scale to, defaults to "+configuration.TargetClassKey)
	plugin.AddOutputFlag(armCmd)
	plugin.AddInputFlag(armCmd)

	return armCmd
}

// newDisableCmd creates the new "schedule disable" subcommand
func newDisableCmd() *cobra.Command {
	disableCmd := &cobra.Command{
		Use:   "disable",
		Short: "Disable the trigger when it is a one-shot schedule",
		Args:  plugin.RequiresArguments(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := plugin.GetOutputFormat(cmd)
			if err != nil {
				return err
			}

			response, err := Disable(cmd.Context())
			if err != nil {
				return err
			}
			return plugin.Print(cmd.OutOrStdout(), format, response, func(w io.Writer) {
				if response.Disabled {
					fmt.Fprintf(w, "Rule %s disabled\n", response.RuleName)
					return
				}
				fmt.Fprintf(w, "Rule %s left unchanged\n", response.RuleName)
			})
		},
	}

	plugin.AddOutputFlag(disableCmd)

	return disableCmd
}
