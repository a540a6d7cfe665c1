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

package instanceresize

import (
	"context"
	"fmt"

	"github.com/cloudnative-pg/machinery/pkg/log"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/metrics"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
)

// Reconciler applies the resize policy to instances read from the control plane
type Reconciler struct {
	Cluster controlplane.ClusterAPI
	Metrics *metrics.Metrics
}

// Result is the outcome of one reconciliation together with what was observed
type Result struct {
	Outcome      apiv1.ResizeOutcome
	CurrentClass string
	Direction    Direction
}

// Reconcile observes the instance once and, when it is available with a
// different class, submits exactly one modify call
func (r *Reconciler) Reconcile(ctx context.Context, req apiv1.ResizeRequest) (Result, error) {
	contextLogger := log.FromContext(ctx).WithName("instanceresize").WithValues(
		"instanceId", req.InstanceID,
		"targetClass", req.TargetClass)

	descriptor, err := r.describe(ctx, req.InstanceID)
	if err != nil {
		return Result{}, err
	}

	direction := CompareClasses(descriptor.InstanceClass, req.TargetClass)
	result := Result{CurrentClass: descriptor.InstanceClass, Direction: direction}

	decision, err := Decide(descriptor.Status, descriptor.InstanceClass, req)
	if err != nil {
		contextLogger.Info("Instance is not ready to be modified",
			"status", descriptor.Status)
		return result, err
	}

	if decision.IssueModify {
		contextLogger.Info("Modifying instance class",
			"currentClass", descriptor.InstanceClass,
			"direction", direction,
			"applyImmediately", req.ApplyImmediately)
		if err := r.Cluster.ModifyInstance(ctx, req.InstanceID, req.TargetClass, req.ApplyImmediately); err != nil {
			return result, fmt.Errorf("while modifying instance %s: %w", req.InstanceID, err)
		}
	} else {
		contextLogger.Info("No modification needed",
			"status", descriptor.Status,
			"currentClass", descriptor.InstanceClass,
			"outcome", decision.Outcome.Kind)
	}

	r.Metrics.ObserveResize(string(decision.Outcome.Kind), string(direction))
	result.Outcome = decision.Outcome
	return result, nil
}

func (r *Reconciler) describe(ctx context.Context, instanceID string) (apiv1.InstanceDescriptor, error) {
	descriptors, err := r.Cluster.DescribeInstances(ctx, []string{instanceID})
	if err != nil {
		return apiv1.InstanceDescriptor{}, fmt.Errorf("while describing instance %s: %w", instanceID, err)
	}
	for _, d := range descriptors {
		if d.InstanceID == instanceID {
			return d, nil
		}
	}
	return apiv1.InstanceDescriptor{}, &outcome.NotFoundError{Kind: "instance", ID: instanceID}
}

// Message returns a human readable summary of a resize result
func Message(req apiv1.ResizeRequest, result Result) string {
	switch result.Outcome.Kind {
	case apiv1.ResizeSkipped:
		return fmt.Sprintf("Instance %s is %s, skipped", req.InstanceID, result.Outcome.Reason)
	case apiv1.ResizeAlreadyInProgress:
		return fmt.Sprintf("Instance %s is already being modified", req.InstanceID)
	case apiv1.ResizeNoChangeNeeded:
		return fmt.Sprintf("Instance %s is already %s", req.InstanceID, req.TargetClass)
	case apiv1.ResizeModifyInitiated:
		return fmt.Sprintf("Modification initiated: %s -> %s", result.Outcome.PreviousClass, req.TargetClass)
	default:
		return ""
	}
}
