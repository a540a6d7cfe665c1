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

// Package notify implements the "notify" subcommand, executed by the
// workflow once it terminates
package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
	"github.com/cloudnative-pg/aurora-scaledown/internal/configuration"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/notification"
)

// NewCmd creates the new "notify" subcommand
func NewCmd() *cobra.Command {
	notifyCmd := &cobra.Command{
		Use:     "notify",
		Short:   "Publish the result of a workflow execution",
		GroupID: plugin.GroupIDWorkflow,
		Args:    plugin.RequiresArguments(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := plugin.GetOutputFormat(cmd)
			if err != nil {
				return err
			}

			var event apiv1.NotificationEvent
			if err := plugin.ReadRequest(cmd, &event); err != nil {
				return err
			}

			response, err := Notify(cmd.Context(), event)
			if err != nil {
				return err
			}
			return plugin.Print(cmd.OutOrStdout(), format, response, func(w io.Writer) {
				fmt.Fprintf(w, "Sent %q (%s)\n", response.Subject, response.MessageID)
			})
		},
	}

	plugin.AddOutputFlag(notifyCmd)
	plugin.AddInputFlag(notifyCmd)

	return notifyCmd
}

// Notify implements the "notify" subcommand
func Notify(ctx context.Context, event apiv1.NotificationEvent) (apiv1.NotificationResponse, error) {
	if err := plugin.Config.Require(configuration.SNSTopicARNKey); err != nil {
		return apiv1.NotificationResponse{}, err
	}

	publisher := &notification.Publisher{
		Notifier: plugin.ControlPlane,
		TopicARN: plugin.Config.SNSTopicARN,
		Metrics:  plugin.Metrics,
	}
	return publisher.Send(ctx, event)
}
