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

package status

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cheynewallace/tabby"
	"github.com/logrusorgru/aurora/v4"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/reconciler/instancestatus"
)

// Status implements the "status" subcommand
func Status(
	ctx context.Context,
	request apiv1.CheckInstanceStatusRequest,
) (apiv1.CheckInstanceStatusResponse, error) {
	if err := request.Validate(); err != nil {
		return apiv1.CheckInstanceStatusResponse{}, err
	}

	checker := &instancestatus.Checker{Cluster: plugin.ControlPlane, Metrics: plugin.Metrics}
	return checker.Check(ctx, request.IDs(), request.TargetClass)
}

func printText(w io.Writer, response apiv1.CheckInstanceStatusResponse) {
	fmt.Fprintf(w, "Checked: %d\n", response.CheckedCount)
	fmt.Fprintf(w, "All Available: %s\n", yesNo(response.AllAvailable))
	fmt.Fprintf(w, "All Correct Class: %s\n\n", yesNo(response.AllCorrectClass))

	fmt.Fprintln(w, aurora.Bold("Instances:"))
	t := tabby.NewCustom(tabwriter.NewWriter(w, 0, 0, 2, ' ', 0))
	t.AddHeader("INSTANCE", "STATUS", "CLASS", "CORRECT CLASS")
	for _, report := range response.Instances {
		t.AddLine(report.InstanceID, colorStatus(report), report.InstanceClass, yesNo(report.CorrectClass))
	}
	t.Print()
}

func colorStatus(report apiv1.InstanceStatusReport) string {
	status := string(report.Status)
	switch {
	case report.NotFound:
		return aurora.Red(status).String()
	case report.Available:
		return aurora.Green(status).String()
	default:
		return aurora.Yellow(status).String()
	}
}

func yesNo(value bool) string {
	if value {
		return aurora.Green("yes").String()
	}
	return aurora.Yellow("no").String()
}
