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
	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
)

// Decision is the result of evaluating the resize transition policy
type Decision struct {
	Outcome apiv1.ResizeOutcome

	// IssueModify is true when a modify call must be submitted
	IssueModify bool
}

// Decide evaluates the transition policy for an instance observed in the
// given status and class:
//
//  1. deleting or deleted: Skipped, no call
//  2. modifying: AlreadyInProgress, no call
//  3. available with the target class: NoChangeNeeded, no call
//  4. available with another class: ModifyInitiated, one call
//  5. anything else: RetryableStateError
func Decide(status apiv1.InstanceStatus, currentClass string, req apiv1.ResizeRequest) (Decision, error) {
	switch status.Phase() {
	case apiv1.PhaseDeleting:
		return Decision{Outcome: apiv1.ResizeOutcome{
			Kind:   apiv1.ResizeSkipped,
			Reason: string(status),
		}}, nil

	case apiv1.PhaseModifying:
		return Decision{Outcome: apiv1.ResizeOutcome{Kind: apiv1.ResizeAlreadyInProgress}}, nil

	case apiv1.PhaseAvailable:
		if currentClass == req.TargetClass {
			return Decision{Outcome: apiv1.ResizeOutcome{Kind: apiv1.ResizeNoChangeNeeded}}, nil
		}
		return Decision{
			Outcome: apiv1.ResizeOutcome{
				Kind:          apiv1.ResizeModifyInitiated,
				PreviousClass: currentClass,
			},
			IssueModify: true,
		}, nil

	default:
		return Decision{}, &outcome.RetryableStateError{
			InstanceID: req.InstanceID,
			Status:     string(status),
		}
	}
}
