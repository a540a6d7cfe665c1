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

package v1

import (
	"encoding/json"
	"strings"
	"time"

	"k8s.io/utils/ptr"

	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
)

// TopologyRequest asks for the role assignment of a cluster
type TopologyRequest struct {
	ClusterIdentifier string `json:"clusterIdentifier"`
}

// Validate checks the required fields
func (r TopologyRequest) Validate() error {
	if r.ClusterIdentifier == "" {
		return outcome.NewMissingFieldError("clusterIdentifier")
	}
	return nil
}

// ClassificationDecision records which rule placed an instance
type ClassificationDecision struct {
	InstanceID string `json:"instanceId"`
	Role       Role   `json:"role"`
	Rule       string `json:"rule"`

	// TagError is set when the tag lookup failed and naming was used instead
	TagError string `json:"tagError,omitempty"`
}

// TopologyResponse is the result of a topology resolution
type TopologyResponse struct {
	ClusterIdentifier string `json:"clusterIdentifier"`
	ClassifiedTopology
	Decisions []ClassificationDecision `json:"decisions,omitempty"`
}

// ModifyInstanceRequest asks for one instance to change class
type ModifyInstanceRequest struct {
	InstanceID  string `json:"instanceId"`
	TargetClass string `json:"targetClass"`

	// ApplyImmediately defaults to true
	ApplyImmediately *bool `json:"applyImmediately,omitempty"`
}

// Validate checks the required fields
func (r ModifyInstanceRequest) Validate() error {
	if r.InstanceID == "" {
		return outcome.NewMissingFieldError("instanceId")
	}
	if r.TargetClass == "" {
		return outcome.NewMissingFieldError("targetClass")
	}
	return nil
}

// ToResizeRequest applies defaults and returns the domain request
func (r ModifyInstanceRequest) ToResizeRequest() ResizeRequest {
	return ResizeRequest{
		InstanceID:       r.InstanceID,
		TargetClass:      r.TargetClass,
		ApplyImmediately: ptr.Deref(r.ApplyImmediately, true),
	}
}

// ModifyInstanceResponse is the result of one resize invocation
type ModifyInstanceResponse struct {
	InstanceID string `json:"instanceId"`
	ResizeOutcome
	CurrentClass string `json:"currentClass,omitempty"`
	TargetClass  string `json:"targetClass"`
	Direction    string `json:"direction,omitempty"`
	Message      string `json:"message"`
}

// FailoverClusterRequest asks for a failover to a given reader
type FailoverClusterRequest struct {
	ClusterIdentifier string `json:"clusterIdentifier"`
	TargetInstanceID  string `json:"targetInstanceId"`
}

// Validate checks the required fields
func (r FailoverClusterRequest) Validate() error {
	if r.TargetInstanceID == "" {
		return outcome.NewMissingFieldError("targetInstanceId")
	}
	if r.ClusterIdentifier == "" {
		return outcome.NewMissingFieldError("clusterIdentifier")
	}
	return nil
}

// ToFailoverRequest returns the domain request
func (r FailoverClusterRequest) ToFailoverRequest() FailoverRequest {
	return FailoverRequest{ClusterID: r.ClusterIdentifier, TargetInstanceID: r.TargetInstanceID}
}

// FailoverStatusInitiated is reported once the failover call was accepted
const FailoverStatusInitiated = "failing-over"

// FailoverClusterResponse is the result of a failover request
type FailoverClusterResponse struct {
	ClusterIdentifier string `json:"clusterIdentifier"`
	TargetInstanceID  string `json:"targetInstanceId"`
	Status            string `json:"status"`
	Message           string `json:"message"`
}

// CheckInstanceStatusRequest asks for the state of a batch of instances
type CheckInstanceStatusRequest struct {
	InstanceIDs []string `json:"instanceIds,omitempty"`
	InstanceID  string   `json:"instanceId,omitempty"`

	// TargetClass, when set, is compared with the current class of each instance
	TargetClass string `json:"targetClass,omitempty"`
}

// IDs returns the requested ids, accepting the single-id shorthand
func (r CheckInstanceStatusRequest) IDs() []string {
	ids := make([]string, 0, len(r.InstanceIDs)+1)
	for _, id := range r.InstanceIDs {
		if strings.TrimSpace(id) != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 && r.InstanceID != "" {
		ids = append(ids, r.InstanceID)
	}
	return ids
}

// Validate checks the required fields
func (r CheckInstanceStatusRequest) Validate() error {
	if len(r.IDs()) == 0 {
		return outcome.NewMissingFieldError("instanceIds")
	}
	return nil
}

// InstanceStatusReport is the state of one checked instance
type InstanceStatusReport struct {
	InstanceID    string         `json:"instanceId"`
	Status        InstanceStatus `json:"status"`
	InstanceClass string         `json:"instanceClass,omitempty"`
	Available     bool           `json:"available"`
	CorrectClass  bool           `json:"correctClass"`
	NotFound      bool           `json:"notFound,omitempty"`
}

// CheckInstanceStatusResponse aggregates a batch status check
type CheckInstanceStatusResponse struct {
	Instances       []InstanceStatusReport `json:"instances"`
	AllAvailable    bool                   `json:"allAvailable"`
	AllCorrectClass bool                   `json:"allCorrectClass"`
	CheckedCount    int                    `json:"checkedCount"`
}

// UpdateScheduleRequest asks for the scaling trigger to be re-armed
type UpdateScheduleRequest struct {
	ClusterIdentifier string `json:"clusterIdentifier,omitempty"`
	TargetClass       string `json:"targetClass,omitempty"`
	ScheduleTime      string `json:"scheduleTime"`
}

// Validate checks the required fields
func (r UpdateScheduleRequest) Validate() error {
	if strings.TrimSpace(r.ScheduleTime) == "" {
		return outcome.NewMissingFieldError("scheduleTime")
	}
	return nil
}

// UpdateScheduleResponse is the result of arming the trigger
type UpdateScheduleResponse struct {
	RuleName string `json:"ruleName"`
	ScheduleSpec
	NextFireTime      *time.Time `json:"nextFireTime,omitempty"`
	ScheduleTime      string     `json:"scheduleTime"`
	ClusterIdentifier string     `json:"clusterIdentifier"`
	TargetClass       string     `json:"targetClass"`

	// DisabledAfterExecution is true for one-shot triggers, which the
	// scheduled run switches off once the workflow has started
	DisabledAfterExecution bool `json:"disabledAfterExecution"`

	Note string `json:"note,omitempty"`
}

// ScheduledRunRequest is delivered by the trigger when it fires
type ScheduledRunRequest struct {
	ClusterIdentifier string `json:"clusterIdentifier,omitempty"`
	TargetClass       string `json:"targetClass,omitempty"`
}

// WorkflowInput is the input of the scaling workflow execution
type WorkflowInput struct {
	TargetClass                  string   `json:"targetClass"`
	ClusterIdentifier            string   `json:"clusterIdentifier"`
	WriterInstanceID             string   `json:"writerInstanceId"`
	DedicatedReaderInstanceID    string   `json:"dedicatedReaderInstanceId"`
	AutoScalingReaderInstanceIDs []string `json:"autoScalingReaderInstanceIds"`
}

// ScheduledRunResponse is the result of launching a scaling workflow
type ScheduledRunResponse struct {
	ExecutionArn    string        `json:"executionArn"`
	ExecutionName   string        `json:"executionName"`
	Input           WorkflowInput `json:"input"`
	TriggerDisabled bool          `json:"triggerDisabled"`
}

// NotificationEvent is the terminal payload of a workflow execution
type NotificationEvent struct {
	ExecutionName string `json:"executionName,omitempty"`
	Status        string `json:"status,omitempty"`
	StartTime     string `json:"startTime,omitempty"`

	// Error and Cause are set by the workflow engine on failure
	Error string `json:"Error,omitempty"`
	Cause string `json:"Cause,omitempty"`

	// Output is the whole decoded document, including the keys of the
	// workflow output that are not modeled above
	Output map[string]any `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the full document
func (e *NotificationEvent) UnmarshalJSON(data []byte) error {
	type plain NotificationEvent
	var event plain
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}

	var output map[string]any
	if err := json.Unmarshal(data, &output); err != nil {
		return err
	}

	*e = NotificationEvent(event)
	e.Output = output
	return nil
}

// IsFailure returns true when the event describes a failed execution
func (e NotificationEvent) IsFailure() bool {
	return e.Error != ""
}

// NotificationResponse is the result of publishing a notification
type NotificationResponse struct {
	MessageID string `json:"messageId"`
	Subject   string `json:"subject"`
}
