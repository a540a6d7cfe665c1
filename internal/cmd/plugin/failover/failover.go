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

package failover

import (
	"context"
	"fmt"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
	failoverreconciler "github.com/cloudnative-pg/aurora-scaledown/pkg/reconciler/failover"
)

// Failover implements the "failover" subcommand
func Failover(ctx context.Context, request apiv1.FailoverClusterRequest) (apiv1.FailoverClusterResponse, error) {
	if err := request.Validate(); err != nil {
		return apiv1.FailoverClusterResponse{}, err
	}

	reconciler := &failoverreconciler.Reconciler{Cluster: plugin.ControlPlane, Metrics: plugin.Metrics}
	directive, err := reconciler.Reconcile(ctx, request.ToFailoverRequest())
	if err != nil {
		return apiv1.FailoverClusterResponse{}, err
	}

	return apiv1.FailoverClusterResponse{
		ClusterIdentifier: directive.ClusterID,
		TargetInstanceID:  directive.TargetInstanceID,
		Status:            apiv1.FailoverStatusInitiated,
		Message: fmt.Sprintf("Failover initiated: %s will become the writer of %s",
			directive.TargetInstanceID, directive.ClusterID),
	}, nil
}
