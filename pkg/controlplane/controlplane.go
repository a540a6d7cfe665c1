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

// Package controlplane defines the narrow interfaces through which the
// scaling operations reach the managed database service, the trigger
// service, the workflow engine and the notification channel
package controlplane

import (
	"context"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
)

// ClusterAPI exposes the database cluster control plane
type ClusterAPI interface {
	// DescribeCluster returns the members of a cluster in the order the
	// control plane reports them
	DescribeCluster(ctx context.Context, clusterID string) ([]apiv1.ClusterMember, error)

	// DescribeInstances returns the descriptors of the given instances.
	// Unknown ids are omitted from the result rather than reported as errors.
	DescribeInstances(ctx context.Context, instanceIDs []string) ([]apiv1.InstanceDescriptor, error)

	// ListTags returns the tags of an instance resource
	ListTags(ctx context.Context, resourceRef string) (apiv1.TagMap, error)

	// ModifyInstance requests an instance class change
	ModifyInstance(ctx context.Context, instanceID, targetClass string, applyImmediately bool) error

	// FailoverCluster requests the promotion of a reader to writer
	FailoverCluster(ctx context.Context, clusterID, targetInstanceID string) error
}

// TriggerAPI exposes the scheduled trigger service
type TriggerAPI interface {
	PutTriggerRule(ctx context.Context, rule apiv1.TriggerRule) error
	DescribeTriggerRule(ctx context.Context, name string) (apiv1.TriggerRule, error)
	ListTriggerTargets(ctx context.Context, ruleName string) ([]apiv1.TriggerTarget, error)
	PutTriggerTargets(ctx context.Context, ruleName string, targets []apiv1.TriggerTarget) error
}

// WorkflowAPI starts executions of the scaling workflow
type WorkflowAPI interface {
	// StartExecution starts a named execution and returns its reference
	StartExecution(ctx context.Context, workflowRef, name, input string) (string, error)
}

// Notifier delivers human readable notifications
type Notifier interface {
	// Publish sends a message and returns the message id
	Publish(ctx context.Context, topicRef, subject, message string) (string, error)
}

// Interface is the whole control plane
type Interface interface {
	ClusterAPI
	TriggerAPI
	WorkflowAPI
	Notifier
}
