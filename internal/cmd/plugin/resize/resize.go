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

package resize

import (
	"context"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/reconciler/instanceresize"
)

// Resize implements the "resize" subcommand
func Resize(ctx context.Context, request apiv1.ModifyInstanceRequest) (apiv1.ModifyInstanceResponse, error) {
	if err := request.Validate(); err != nil {
		return apiv1.ModifyInstanceResponse{}, err
	}

	resizeRequest := request.ToResizeRequest()
	reconciler := &instanceresize.Reconciler{Cluster: plugin.ControlPlane, Metrics: plugin.Metrics}
	result, err := reconciler.Reconcile(ctx, resizeRequest)
	if err != nil {
		return apiv1.ModifyInstanceResponse{}, err
	}

	return apiv1.ModifyInstanceResponse{
		InstanceID:    request.InstanceID,
		ResizeOutcome: result.Outcome,
		CurrentClass:  result.CurrentClass,
		TargetClass:   request.TargetClass,
		Direction:     string(result.Direction),
		Message:       instanceresize.Message(resizeRequest, result),
	}, nil
}
