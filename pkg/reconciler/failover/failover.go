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

// Package failover validates and submits the promotion of a reader to
// writer. Completion is never inferred from the failover call: it is
// confirmed by resolving the cluster topology again.
package failover

import (
	"context"
	"fmt"

	"github.com/cloudnative-pg/machinery/pkg/log"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/metrics"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
)

const (
	resultInitiated = "initiated"
	resultRejected  = "rejected"
	resultFailed    = "failed"
)

// Check returns the directive for a failover to target, or a
// PreconditionError when the target is not available
func Check(req apiv1.FailoverRequest, target apiv1.InstanceDescriptor) (apiv1.FailoverDirective, error) {
	if target.Status.Phase() != apiv1.PhaseAvailable {
		return apiv1.FailoverDirective{}, &outcome.PreconditionError{
			InstanceID: req.TargetInstanceID,
			Status:     string(target.Status),
		}
	}

	return apiv1.FailoverDirective{
		ClusterID:        req.ClusterID,
		TargetInstanceID: req.TargetInstanceID,
	}, nil
}

// IsPromoted returns true once the topology reports target as the writer
func IsPromoted(topology apiv1.ClassifiedTopology, targetInstanceID string) bool {
	return topology.HasWriter() && topology.WriterID == targetInstanceID
}

// Reconciler checks the failover target and submits one directive
type Reconciler struct {
	Cluster controlplane.ClusterAPI
	Metrics *metrics.Metrics
}

// Reconcile reads the target, checks it and submits the failover
func (r *Reconciler) Reconcile(ctx context.Context, req apiv1.FailoverRequest) (apiv1.FailoverDirective, error) {
	contextLogger := log.FromContext(ctx).WithName("failover").WithValues(
		"clusterIdentifier", req.ClusterID,
		"targetInstanceId", req.TargetInstanceID)

	descriptors, err := r.Cluster.DescribeInstances(ctx, []string{req.TargetInstanceID})
	if err != nil {
		r.Metrics.ObserveFailover(resultFailed)
		return apiv1.FailoverDirective{}, fmt.Errorf("while describing failover target %s: %w",
			req.TargetInstanceID, err)
	}

	var target *apiv1.InstanceDescriptor
	for i := range descriptors {
		if descriptors[i].InstanceID == req.TargetInstanceID {
			target = &descriptors[i]
			break
		}
	}
	if target == nil {
		r.Metrics.ObserveFailover(resultRejected)
		return apiv1.FailoverDirective{}, &outcome.NotFoundError{Kind: "instance", ID: req.TargetInstanceID}
	}

	directive, err := Check(req, *target)
	if err != nil {
		contextLogger.Info("Failover target is not eligible", "status", target.Status)
		r.Metrics.ObserveFailover(resultRejected)
		return apiv1.FailoverDirective{}, err
	}

	contextLogger.Info("Initiating failover")
	if err := r.Cluster.FailoverCluster(ctx, directive.ClusterID, directive.TargetInstanceID); err != nil {
		r.Metrics.ObserveFailover(resultFailed)
		return apiv1.FailoverDirective{}, fmt.Errorf("while failing over cluster %s: %w", directive.ClusterID, err)
	}

	r.Metrics.ObserveFailover(resultInitiated)
	return directive, nil
}
