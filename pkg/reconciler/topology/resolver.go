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

	"github.com/cloudnative-pg/machinery/pkg/log"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/metrics"
)

// Resolver reads a cluster from the control plane and classifies it
type Resolver struct {
	Cluster controlplane.ClusterAPI
	Policy  Policy
	Metrics *metrics.Metrics
}

// NewResolver creates a resolver using the default policy
func NewResolver(cluster controlplane.ClusterAPI, m *metrics.Metrics) *Resolver {
	return &Resolver{Cluster: cluster, Policy: DefaultPolicy(), Metrics: m}
}

// Resolve classifies the members of a cluster. A failing tag lookup never
// aborts the resolution; the member is classified by name instead.
func (r *Resolver) Resolve(ctx context.Context, clusterID string) (Classification, error) {
	contextLogger := log.FromContext(ctx).WithName("topology").WithValues("clusterIdentifier", clusterID)

	members, err := r.Cluster.DescribeCluster(ctx, clusterID)
	if err != nil {
		return Classification{}, fmt.Errorf("while describing cluster %s: %w", clusterID, err)
	}

	input := Input{
		Members:   members,
		Tags:      make(map[string]apiv1.TagMap, len(members)),
		TagErrors: make(map[string]error),
	}
	if len(members) == 0 {
		contextLogger.Info("Cluster has no members")
		return r.policy().Classify(input), nil
	}

	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.InstanceID)
	}

	input.Descriptors, err = r.Cluster.DescribeInstances(ctx, ids)
	if err != nil {
		return Classification{}, fmt.Errorf("while describing instances of cluster %s: %w", clusterID, err)
	}

	for _, descriptor := range input.Descriptors {
		if descriptor.Status.IsGone() {
			continue
		}

		ref := descriptor.ResourceRef
		if ref == "" {
			ref = descriptor.InstanceID
		}
		tags, err := r.Cluster.ListTags(ctx, ref)
		if err != nil {
			contextLogger.Warning("Failed to get tags, falling back to name based classification",
				"instanceId", descriptor.InstanceID,
				"error", err)
			r.Metrics.ObserveTagLookupFailure()
			input.TagErrors[descriptor.InstanceID] = err
			continue
		}
		input.Tags[descriptor.InstanceID] = tags
	}

	result := r.policy().Classify(input)
	for _, decision := range result.Decisions {
		r.Metrics.ObserveClassification(string(decision.Role), decision.Rule)
		contextLogger.Debug("Classified cluster member",
			"instanceId", decision.InstanceID,
			"role", decision.Role,
			"rule", decision.Rule)
		if RuleName(decision.Rule).IsNamingFallback() && decision.Role == apiv1.RoleDedicatedReader {
			contextLogger.Warning("Dedicated reader chosen without a Role tag, "+
				"tag it explicitly to avoid depending on member order",
				"instanceId", decision.InstanceID,
				"rule", decision.Rule)
		}
		if decision.Rule == string(RuleConflictingWriter) {
			contextLogger.Warning("More than one member is flagged as writer, leaving the writer slot empty",
				"instanceId", decision.InstanceID)
		}
	}

	contextLogger.Info("Resolved cluster topology",
		"writer", result.Topology.WriterID,
		"dedicatedReader", result.Topology.DedicatedReaderID,
		"autoScalingReaders", result.Topology.AutoScalingReaderIDs)

	return result, nil
}

func (r *Resolver) policy() Policy {
	if len(r.Policy) == 0 {
		return DefaultPolicy()
	}
	return r.Policy
}
