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

package outcome

import (
	"fmt"
	"time"
)

// ValidationError reports a missing or malformed required input
type ValidationError struct {
	// Field is the name of the offending input field
	Field string

	// Reason describes what is wrong with the field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewMissingFieldError builds the ValidationError used for absent required fields
func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

// NotFoundError reports a cluster, instance or trigger resource that is
// absent from the control-plane response
type NotFoundError struct {
	// Kind is the kind of resource, e.g. "cluster" or "instance"
	Kind string

	// ID is the identifier that was looked up
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// RetryableStateError reports an instance observed in a transient state
// where no action can be taken yet
type RetryableStateError struct {
	InstanceID string
	Status     string
}

func (e *RetryableStateError) Error() string {
	return fmt.Sprintf("instance %q is in state %q, retry later", e.InstanceID, e.Status)
}

// PastScheduleError reports a one-shot schedule that is not in the future
type PastScheduleError struct {
	Input       string
	ScheduledAt time.Time
	Now         time.Time
}

func (e *PastScheduleError) Error() string {
	return fmt.Sprintf("scheduled time %q (%s) is not after the current time %s",
		e.Input,
		e.ScheduledAt.UTC().Format(time.RFC3339),
		e.Now.UTC().Format(time.RFC3339))
}

// InvalidScheduleFormatError reports a schedule string in none of the
// accepted shapes
type InvalidScheduleFormatError struct {
	Input  string
	Reason string
}

func (e *InvalidScheduleFormatError) Error() string {
	return fmt.Sprintf("invalid schedule %q: %s (use HH:MM, YYYY-MM-DD HH:MM or cron(...))",
		e.Input, e.Reason)
}

// PreconditionError reports a failover target that is not eligible for promotion
type PreconditionError struct {
	InstanceID string
	Status     string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("failover target %q is not available (current status: %s)",
		e.InstanceID, e.Status)
}

// TransientError wraps a control-plane failure that is expected to clear
// on its own, such as throttling that outlived the client retry budget
type TransientError struct {
	Operation string
	Err       error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Operation, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
