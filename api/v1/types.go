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
	"strings"
)

// InstanceStatus is the raw lifecycle status reported by the control plane
type InstanceStatus string

const (
	// InstanceStatusAvailable is the only status where changes can be applied
	InstanceStatusAvailable InstanceStatus = "available"

	// InstanceStatusModifying is reported while a class change is propagating
	InstanceStatusModifying InstanceStatus = "modifying"

	// InstanceStatusDeleting is reported while the instance is being removed
	InstanceStatusDeleting InstanceStatus = "deleting"

	// InstanceStatusDeleted is reported for instances that are already gone
	InstanceStatusDeleted InstanceStatus = "deleted"

	// InstanceStatusRebooting is a transient status
	InstanceStatusRebooting InstanceStatus = "rebooting"

	// InstanceStatusBackingUp is a transient status
	InstanceStatusBackingUp InstanceStatus = "backing-up"

	// InstanceStatusStarting is a transient status
	InstanceStatusStarting InstanceStatus = "starting"

	// InstanceStatusNotFound marks an id the control plane did not return
	InstanceStatusNotFound InstanceStatus = "not_found"
)

// InstancePhase is the coarse state the resize protocol reasons about
type InstancePhase string

const (
	// PhaseAvailable means the instance accepts modifications
	PhaseAvailable InstancePhase = "AVAILABLE"

	// PhaseModifying means a modification is already in flight
	PhaseModifying InstancePhase = "MODIFYING"

	// PhaseDeleting means the instance is going away
	PhaseDeleting InstancePhase = "DELETING"

	// PhaseOther covers every transient status
	PhaseOther InstancePhase = "OTHER"
)

// Phase maps the raw status to its phase. Matching is case-insensitive.
func (s InstanceStatus) Phase() InstancePhase {
	switch InstanceStatus(strings.ToLower(string(s))) {
	case InstanceStatusAvailable:
		return PhaseAvailable
	case InstanceStatusModifying:
		return PhaseModifying
	case InstanceStatusDeleting, InstanceStatusDeleted:
		return PhaseDeleting
	default:
		return PhaseOther
	}
}

// IsGone returns true for instances that must never be assigned a role
func (s InstanceStatus) IsGone() bool {
	return s.Phase() == PhaseDeleting
}

// ClusterMember is a raw membership fact from the cluster view
type ClusterMember struct {
	InstanceID string `json:"instanceId"`
	IsWriter   bool   `json:"isWriter"`
}

// InstanceDescriptor is the point-in-time state of one instance
type InstanceDescriptor struct {
	InstanceID    string         `json:"instanceId"`
	Status        InstanceStatus `json:"status"`
	InstanceClass string         `json:"instanceClass"`

	// ResourceRef is the reference used to look up tags (an ARN on AWS)
	ResourceRef string `json:"resourceRef,omitempty"`
}

const (
	// RoleTagKey is the tag carrying the intended role of a reader
	RoleTagKey = "Role"

	// RoleTagDedicatedReader is the tag value for the dedicated reader
	RoleTagDedicatedReader = "dedicated-reader"

	// RoleTagAutoScalingReader is the tag value for pool readers
	RoleTagAutoScalingReader = "autoscaling-reader"
)

// TagMap maps tag keys to values for one instance
type TagMap map[string]string

// RoleTag returns the value of the role tag, or an empty string
func (t TagMap) RoleTag() string {
	if t == nil {
		return ""
	}
	return t[RoleTagKey]
}

// Role is the classification assigned to a cluster member
type Role string

const (
	// RoleWriter is the instance accepting writes
	RoleWriter Role = "Writer"

	// RoleDedicatedReader is the reader kept for baseline read load
	RoleDedicatedReader Role = "DedicatedReader"

	// RoleAutoScalingReader is a member of the autoscaling pool
	RoleAutoScalingReader Role = "AutoScalingReader"

	// RoleUnclassified is used for members that cannot be placed in any slot
	RoleUnclassified Role = "Unclassified"
)

// ClassifiedTopology is the role assignment of a cluster. Empty strings
// mean an unoccupied slot.
type ClassifiedTopology struct {
	WriterID             string   `json:"writerInstanceId"`
	DedicatedReaderID    string   `json:"dedicatedReaderInstanceId"`
	AutoScalingReaderIDs []string `json:"autoScalingReaderInstanceIds"`
}

// HasWriter returns true when the writer slot is occupied
func (t ClassifiedTopology) HasWriter() bool {
	return t.WriterID != ""
}

// HasDedicatedReader returns true when the dedicated reader slot is occupied
func (t ClassifiedTopology) HasDedicatedReader() bool {
	return t.DedicatedReaderID != ""
}

// IsEmpty returns true when no slot is occupied
func (t ClassifiedTopology) IsEmpty() bool {
	return !t.HasWriter() && !t.HasDedicatedReader() && len(t.AutoScalingReaderIDs) == 0
}

// IDs returns every classified id, writer first
func (t ClassifiedTopology) IDs() []string {
	ids := make([]string, 0, len(t.AutoScalingReaderIDs)+2)
	if t.HasWriter() {
		ids = append(ids, t.WriterID)
	}
	if t.HasDedicatedReader() {
		ids = append(ids, t.DedicatedReaderID)
	}
	return append(ids, t.AutoScalingReaderIDs...)
}

// ResizeRequest asks for one instance to be moved to a target class
type ResizeRequest struct {
	InstanceID       string `json:"instanceId"`
	TargetClass      string `json:"targetClass"`
	ApplyImmediately bool   `json:"applyImmediately"`
}

// ResizeOutcomeKind is the variant of a ResizeOutcome
type ResizeOutcomeKind string

const (
	// ResizeSkipped means the instance is being deleted
	ResizeSkipped ResizeOutcomeKind = "Skipped"

	// ResizeAlreadyInProgress means a modification is already propagating
	ResizeAlreadyInProgress ResizeOutcomeKind = "AlreadyInProgress"

	// ResizeNoChangeNeeded means the instance already has the target class
	ResizeNoChangeNeeded ResizeOutcomeKind = "NoChangeNeeded"

	// ResizeModifyInitiated means one modify call has been issued
	ResizeModifyInitiated ResizeOutcomeKind = "ModifyInitiated"
)

// ResizeOutcome is the terminal result of one resize invocation
type ResizeOutcome struct {
	Kind ResizeOutcomeKind `json:"outcome"`

	// Reason is set for Skipped and holds the observed status
	Reason string `json:"reason,omitempty"`

	// PreviousClass is set for ModifyInitiated
	PreviousClass string `json:"previousClass,omitempty"`
}

// ScheduleSpec is a normalized trigger expression
type ScheduleSpec struct {
	Expression  string `json:"scheduleExpression"`
	Description string `json:"description"`
	IsOneShot   bool   `json:"isOneShot"`
}

// FailoverRequest asks for a reader to be promoted to writer
type FailoverRequest struct {
	ClusterID        string `json:"clusterIdentifier"`
	TargetInstanceID string `json:"targetInstanceId"`
}

// FailoverDirective is the validated failover to submit to the control plane
type FailoverDirective struct {
	ClusterID        string `json:"clusterIdentifier"`
	TargetInstanceID string `json:"targetInstanceId"`
}

// TriggerRule is a named schedule rule owned by the trigger service
type TriggerRule struct {
	Name        string `json:"name"`
	Expression  string `json:"scheduleExpression"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
}

// TriggerTarget is one target of a trigger rule. Input is the JSON
// payload delivered when the rule fires.
type TriggerTarget struct {
	ID    string `json:"id"`
	ARN   string `json:"arn"`
	Input string `json:"input,omitempty"`
}

// TriggerPayload is the JSON payload stored in the trigger target
type TriggerPayload struct {
	ClusterIdentifier string `json:"clusterIdentifier"`
	TargetClass       string `json:"targetClass"`
}
