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

// Package run implements the "run" subcommand, executed when the trigger fires
package run

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
	"github.com/cloudnative-pg/aurora-scaledown/internal/configuration"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/reconciler/scheduledrun"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/reconciler/topology"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/schedule"
)

// NewCmd creates the new "run" subcommand
func NewCmd() *cobra.Command {
	var targetClass, clusterID string

	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Resolve the cluster and start the scaling workflow",
		GroupID: plugin.GroupIDWorkflow,
		Args:    plugin.RequiresArguments(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := plugin.GetOutputFormat(cmd)
			if err != nil {
				return err
			}

			var request apiv1.ScheduledRunRequest
			if err := plugin.ReadRequest(cmd, &request); err != nil {
				return err
			}
			if clusterID != "" {
				request.ClusterIdentifier = clusterID
			}
			if targetClass != "" {
				request.TargetClass = targetClass
			}

			response, err := Run(cmd.Context(), request)
			if err != nil {
				return err
			}
			return plugin.Print(cmd.OutOrStdout(), format, response, func(w io.Writer) {
				fmt.Fprintf(w, "Started %s\n", response.ExecutionArn)
				fmt.Fprintf(w, "Writer:             %s\n", response.Input.WriterInstanceID)
				fmt.Fprintf(w, "Dedicated Reader:   %s\n", response.Input.DedicatedReaderInstanceID)
				fmt.Fprintf(w, "Auto-scaling Pool:  %v\n", response.Input.AutoScalingReaderInstanceIDs)
				fmt.Fprintf(w, "Trigger Disabled:   %t\n", response.TriggerDisabled)
			})
		},
	}

	runCmd.Flags().StringVar(&clusterID, "cluster", "",
		"Cluster identifier, defaults to "+configuration.ClusterIdentifierKey)
	runCmd.Flags().StringVar(&targetClass, "target-class", "",
		"Instance class to scale to, defaults to "+configuration.TargetClassKey)
	plugin.AddOutputFlag(runCmd)
	plugin.AddInputFlag(runCmd)

	return runCmd
}

// Run implements the "run" subcommand
func Run(ctx context.Context, request apiv1.ScheduledRunRequest) (apiv1.ScheduledRunResponse, error) {
	if err := plugin.Config.Require(configuration.StepFunctionARNKey); err != nil {
		return apiv1.ScheduledRunResponse{}, err
	}

	launcher := &scheduledrun.Launcher{
		Resolver:        topology.NewResolver(plugin.ControlPlane, plugin.Metrics),
		Workflow:        plugin.ControlPlane,
		StateMachineARN: plugin.Config.StepFunctionARN,
		Trigger: &schedule.Trigger{
			API:        plugin.ControlPlane,
			RuleName:   plugin.Config.RuleName(),
			Translator: schedule.NewTranslator(plugin.Config.ScheduleUTCOffsetHours),
			Metrics:    plugin.Metrics,
		},
		DefaultClusterID:   plugin.Config.ClusterIdentifier,
		DefaultTargetClass: plugin.Config.TargetClass,
		Metrics:            plugin.Metrics,
	}
	return launcher.Launch(ctx, request)
}
