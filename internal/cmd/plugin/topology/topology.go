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

package topology

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cheynewallace/tabby"
	"github.com/logrusorgru/aurora/v4"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
	topologyreconciler "github.com/cloudnative-pg/aurora-scaledown/pkg/reconciler/topology"
)

// Resolve implements the "topology" subcommand
func Resolve(ctx context.Context, request apiv1.TopologyRequest) (apiv1.TopologyResponse, error) {
	if err := request.Validate(); err != nil {
		return apiv1.TopologyResponse{}, err
	}

	resolver := topologyreconciler.NewResolver(plugin.ControlPlane, plugin.Metrics)
	classification, err := resolver.Resolve(ctx, request.ClusterIdentifier)
	if err != nil {
		return apiv1.TopologyResponse{}, err
	}

	return apiv1.TopologyResponse{
		ClusterIdentifier:  request.ClusterIdentifier,
		ClassifiedTopology: classification.Topology,
		Decisions:          classification.Decisions,
	}, nil
}

func printText(w io.Writer, response apiv1.TopologyResponse) {
	fmt.Fprintf(w, "Cluster: %s\n\n", aurora.Bold(response.ClusterIdentifier))

	if len(response.Decisions) == 0 {
		fmt.Fprintln(w, aurora.Yellow("No members found"))
		return
	}

	t := tabby.NewCustom(tabwriter.NewWriter(w, 0, 0, 2, ' ', 0))
	t.AddHeader("INSTANCE", "ROLE", "RULE", "TAG ERROR")
	for _, decision := range response.Decisions {
		t.AddLine(decision.InstanceID, colorRole(decision.Role), decision.Rule, decision.TagError)
	}
	t.Print()

	if !response.HasWriter() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, aurora.Red("No writer found"))
	}
	if !response.HasDedicatedReader() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, aurora.Yellow("No dedicated reader found"))
	}
}

func colorRole(role apiv1.Role) string {
	switch role {
	case apiv1.RoleWriter:
		return aurora.Green(role).String()
	case apiv1.RoleDedicatedReader:
		return aurora.Cyan(role).String()
	case apiv1.RoleUnclassified:
		return aurora.Yellow(role).String()
	default:
		return string(role)
	}
}
