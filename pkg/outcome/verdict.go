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
	"errors"
)

// Verdict is the data-driven result class consumed by the calling engine
type Verdict string

const (
	// VerdictSuccess means the operation reached a terminal, successful outcome
	VerdictSuccess Verdict = "Success"

	// VerdictRetryableFailure means the same request should be submitted again later
	VerdictRetryableFailure Verdict = "RetryableFailure"

	// VerdictFatalFailure means the request cannot succeed without operator action
	VerdictFatalFailure Verdict = "FatalFailure"
)

// Classify maps an operation error to its verdict
func Classify(err error) Verdict {
	if err == nil {
		return VerdictSuccess
	}
	if IsRetryable(err) {
		return VerdictRetryableFailure
	}
	return VerdictFatalFailure
}

// IsRetryable returns true when err, or any error it wraps, describes a
// condition expected to resolve without intervention
func IsRetryable(err error) bool {
	var stateErr *RetryableStateError
	if errors.As(err, &stateErr) {
		return true
	}

	var transientErr *TransientError
	return errors.As(err, &transientErr)
}

// ErrorType returns the taxonomy name of err, used in engine-facing responses
func ErrorType(err error) string {
	var (
		validationErr   *ValidationError
		notFoundErr     *NotFoundError
		stateErr        *RetryableStateError
		pastErr         *PastScheduleError
		formatErr       *InvalidScheduleFormatError
		preconditionErr *PreconditionError
		transientErr    *TransientError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return "ValidationError"
	case errors.As(err, &notFoundErr):
		return "NotFoundError"
	case errors.As(err, &stateErr):
		return "RetryableStateError"
	case errors.As(err, &pastErr):
		return "PastScheduleError"
	case errors.As(err, &formatErr):
		return "InvalidScheduleFormatError"
	case errors.As(err, &preconditionErr):
		return "PreconditionError"
	case errors.As(err, &transientErr):
		return "TransientError"
	default:
		return "InternalError"
	}
}
