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

package scheduledrun

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudnative-pg/machinery/pkg/log"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/metrics"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/reconciler/topology"
)

// executionNameLayout is the UTC timestamp of an execution name
const executionNameLayout = "20060102-150405"

const (
	resultStarted  = "started"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

// TopologyResolver resolves the classified topology of a cluster
type TopologyResolver interface {
	Resolve(ctx context.Context, clusterID string) (topology.Classification, error)
}

// TriggerDisabler disables the trigger rule after a one-shot run
type TriggerDisabler interface {
	DisableIfOneShot(ctx context.Context) bool
}

// Launcher starts a scaling workflow for a cluster
type Launcher struct {
	Resolver TopologyResolver
	Workflow controlplane.WorkflowAPI

	// StateMachineARN is the workflow to execute
	StateMachineARN string

	// Trigger is optional, one-shot rules are left enabled when nil
	Trigger TriggerDisabler

	// DefaultClusterID and DefaultTargetClass fill the request fields
	// the trigger payload leaves empty
	DefaultClusterID   string
	DefaultTargetClass string

	// Now returns the current time, time.Now when nil
	Now func() time.Time

	Metrics *metrics.Metrics
}

// ExecutionName returns the name of an execution started at t
func ExecutionName(t time.Time) string {
	return "scaling-" + t.UTC().Format(executionNameLayout)
}

// Launch resolves the cluster and starts one workflow execution
func (l *Launcher) Launch(ctx context.Context, req apiv1.ScheduledRunRequest) (apiv1.ScheduledRunResponse, error) {
	clusterID := req.ClusterIdentifier
	if clusterID == "" {
		clusterID = l.DefaultClusterID
	}
	targetClass := req.TargetClass
	if targetClass == "" {
		targetClass = l.DefaultTargetClass
	}

	contextLogger := log.FromContext(ctx).WithName("scheduled-run").WithValues(
		"clusterIdentifier", clusterID,
		"targetClass", targetClass)

	if clusterID == "" {
		l.Metrics.ObserveWorkflowStart(resultRejected)
		return apiv1.ScheduledRunResponse{}, outcome.NewMissingFieldError("clusterIdentifier")
	}
	if targetClass == "" {
		l.Metrics.ObserveWorkflowStart(resultRejected)
		return apiv1.ScheduledRunResponse{}, outcome.NewMissingFieldError("targetClass")
	}
	if l.StateMachineARN == "" {
		l.Metrics.ObserveWorkflowStart(resultRejected)
		return apiv1.ScheduledRunResponse{}, outcome.NewMissingFieldError("stateMachineArn")
	}

	classification, err := l.Resolver.Resolve(ctx, clusterID)
	if err != nil {
		l.Metrics.ObserveWorkflowStart(resultFailed)
		return apiv1.ScheduledRunResponse{}, err
	}

	input, err := BuildInput(clusterID, targetClass, classification.Topology)
	if err != nil {
		l.Metrics.ObserveWorkflowStart(resultRejected)
		return apiv1.ScheduledRunResponse{}, err
	}
	if len(input.AutoScalingReaderInstanceIDs) == 0 {
		contextLogger.Warning("No auto-scaling reader instances found")
	}

	encoded, err := json.Marshal(input)
	if err != nil {
		l.Metrics.ObserveWorkflowStart(resultFailed)
		return apiv1.ScheduledRunResponse{}, fmt.Errorf("while encoding workflow input: %w", err)
	}

	name := ExecutionName(l.now())
	executionArn, err := l.Workflow.StartExecution(ctx, l.StateMachineARN, name, string(encoded))
	if err != nil {
		l.Metrics.ObserveWorkflowStart(resultFailed)
		return apiv1.ScheduledRunResponse{}, fmt.Errorf("while starting workflow execution %s: %w", name, err)
	}
	l.Metrics.ObserveWorkflowStart(resultStarted)
	contextLogger.Info("Started scaling workflow",
		"executionName", name,
		"executionArn", executionArn)

	response := apiv1.ScheduledRunResponse{
		ExecutionArn:  executionArn,
		ExecutionName: name,
		Input:         input,
	}
	if l.Trigger != nil {
		response.TriggerDisabled = l.Trigger.DisableIfOneShot(ctx)
	}
	return response, nil
}

// BuildInput checks the topology has the members the workflow resizes and
// builds the workflow input. The auto-scaling pool may be empty.
func BuildInput(
	clusterID, targetClass string,
	topology apiv1.ClassifiedTopology,
) (apiv1.WorkflowInput, error) {
	if !topology.HasWriter() {
		return apiv1.WorkflowInput{}, &outcome.NotFoundError{Kind: "writer instance", ID: clusterID}
	}
	if !topology.HasDedicatedReader() {
		return apiv1.WorkflowInput{}, &outcome.NotFoundError{Kind: "dedicated reader instance", ID: clusterID}
	}

	pool := topology.AutoScalingReaderIDs
	if pool == nil {
		pool = []string{}
	}
	return apiv1.WorkflowInput{
		TargetClass:                  targetClass,
		ClusterIdentifier:            clusterID,
		WriterInstanceID:             topology.WriterID,
		DedicatedReaderInstanceID:    topology.DedicatedReaderID,
		AutoScalingReaderInstanceIDs: pool,
	}, nil
}

func (l *Launcher) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}
