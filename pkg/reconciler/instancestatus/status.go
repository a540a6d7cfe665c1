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

// Package instancestatus reports the availability and class of a batch of
// instances. Unknown ids are reported with a not-found marker instead of
// failing the whole batch.
package instancestatus

import (
	"context"
	"fmt"

	"github.com/cloudnative-pg/machinery/pkg/log"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/metrics"
)

// Summarize builds the status report of the requested ids from the
// descriptors returned by the control plane. An instance counts as
// available only if it also has the target class, when one is given.
func Summarize(
	instanceIDs []string,
	descriptors []apiv1.InstanceDescriptor,
	targetClass string,
) apiv1.CheckInstanceStatusResponse {
	byID := make(map[string]apiv1.InstanceDescriptor, len(descriptors))
	for _, d := range descriptors {
		byID[d.InstanceID] = d
	}

	response := apiv1.CheckInstanceStatusResponse{
		Instances:       make([]apiv1.InstanceStatusReport, 0, len(instanceIDs)),
		AllAvailable:    true,
		AllCorrectClass: true,
		CheckedCount:    len(instanceIDs),
	}

	for _, id := range instanceIDs {
		d, ok := byID[id]
		if !ok {
			response.Instances = append(response.Instances, apiv1.InstanceStatusReport{
				InstanceID: id,
				Status:     apiv1.InstanceStatusNotFound,
				NotFound:   true,
			})
			response.AllAvailable = false
			if targetClass != "" {
				response.AllCorrectClass = false
			}
			continue
		}

		report := apiv1.InstanceStatusReport{
			InstanceID:    id,
			Status:        d.Status,
			InstanceClass: d.InstanceClass,
			Available:     d.Status.Phase() == apiv1.PhaseAvailable,
			CorrectClass:  targetClass == "" || d.InstanceClass == targetClass,
		}
		if !report.Available || !report.CorrectClass {
			response.AllAvailable = false
		}
		if !report.CorrectClass {
			response.AllCorrectClass = false
		}
		response.Instances = append(response.Instances, report)
	}

	return response
}

// Checker reads instance states from the control plane
type Checker struct {
	Cluster controlplane.ClusterAPI
	Metrics *metrics.Metrics
}

// Check describes the instances and summarizes their state
func (c *Checker) Check(
	ctx context.Context,
	instanceIDs []string,
	targetClass string,
) (apiv1.CheckInstanceStatusResponse, error) {
	contextLogger := log.FromContext(ctx).WithName("instancestatus")

	descriptors, err := c.Cluster.DescribeInstances(ctx, instanceIDs)
	if err != nil {
		return apiv1.CheckInstanceStatusResponse{}, fmt.Errorf("while describing instances: %w", err)
	}

	response := Summarize(instanceIDs, descriptors, targetClass)

	available, notAvailable, notFound := 0, 0, 0
	for _, report := range response.Instances {
		switch {
		case report.NotFound:
			notFound++
			contextLogger.Warning("Instance not found", "instanceId", report.InstanceID)
		case report.Available:
			available++
		default:
			notAvailable++
		}
	}
	c.Metrics.SetStatusCheck(available, notAvailable, notFound)

	contextLogger.Info("Checked instance status",
		"checkedCount", response.CheckedCount,
		"allAvailable", response.AllAvailable,
		"allCorrectClass", response.AllCorrectClass)

	return response, nil
}
