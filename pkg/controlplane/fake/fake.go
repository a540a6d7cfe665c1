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

// Package fake contains an in-memory control plane recording every call
package fake

import (
	"context"
	"fmt"
	"slices"
	"sync"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
)

// Operation names a control plane call
type Operation string

const (
	OpDescribeCluster     Operation = "DescribeCluster"
	OpDescribeInstances   Operation = "DescribeInstances"
	OpListTags            Operation = "ListTags"
	OpModifyInstance      Operation = "ModifyInstance"
	OpFailoverCluster     Operation = "FailoverCluster"
	OpPutTriggerRule      Operation = "PutTriggerRule"
	OpDescribeTriggerRule Operation = "DescribeTriggerRule"
	OpListTriggerTargets  Operation = "ListTriggerTargets"
	OpPutTriggerTargets   Operation = "PutTriggerTargets"
	OpStartExecution      Operation = "StartExecution"
	OpPublish             Operation = "Publish"
)

// Call is a recorded invocation
type Call struct {
	Operation Operation
	Args      []string
}

// Execution is a recorded workflow start
type Execution struct {
	WorkflowRef string
	Name        string
	Input       string
}

// Message is a recorded notification
type Message struct {
	TopicRef string
	Subject  string
	Body     string
}

// ControlPlane is an in-memory implementation of controlplane.Interface
type ControlPlane struct {
	mu sync.Mutex

	members   map[string][]apiv1.ClusterMember
	instances map[string]apiv1.InstanceDescriptor
	tags      map[string]apiv1.TagMap
	tagErrors map[string]error
	rules     map[string]apiv1.TriggerRule
	targets   map[string][]apiv1.TriggerTarget
	failures  map[Operation]error

	calls      []Call
	executions []Execution
	messages   []Message
}

var _ controlplane.Interface = (*ControlPlane)(nil)

// New creates an empty control plane
func New() *ControlPlane {
	return &ControlPlane{
		members:   make(map[string][]apiv1.ClusterMember),
		instances: make(map[string]apiv1.InstanceDescriptor),
		tags:      make(map[string]apiv1.TagMap),
		tagErrors: make(map[string]error),
		rules:     make(map[string]apiv1.TriggerRule),
		targets:   make(map[string][]apiv1.TriggerTarget),
		failures:  make(map[Operation]error),
	}
}

// WithCluster registers a cluster and its members
func (f *ControlPlane) WithCluster(clusterID string, members ...apiv1.ClusterMember) *ControlPlane {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[clusterID] = slices.Clone(members)
	return f
}

// WithInstance registers an instance. ResourceRef defaults to an ARN-like
// reference derived from the instance id.
func (f *ControlPlane) WithInstance(descriptor apiv1.InstanceDescriptor) *ControlPlane {
	f.mu.Lock()
	defer f.mu.Unlock()
	if descriptor.ResourceRef == "" {
		descriptor.ResourceRef = ResourceRef(descriptor.InstanceID)
	}
	f.instances[descriptor.InstanceID] = descriptor
	return f
}

// WithTags sets the tags of an instance
func (f *ControlPlane) WithTags(instanceID string, tags apiv1.TagMap) *ControlPlane {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags[ResourceRef(instanceID)] = tags
	return f
}

// WithTagError makes the tag lookup of an instance fail
func (f *ControlPlane) WithTagError(instanceID string, err error) *ControlPlane {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagErrors[ResourceRef(instanceID)] = err
	return f
}

// WithRule registers a trigger rule and its targets
func (f *ControlPlane) WithRule(rule apiv1.TriggerRule, targets ...apiv1.TriggerTarget) *ControlPlane {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[rule.Name] = rule
	f.targets[rule.Name] = slices.Clone(targets)
	return f
}

// FailOn makes every call to op return err
func (f *ControlPlane) FailOn(op Operation, err error) *ControlPlane {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
	return f
}

// ResourceRef returns the tag resource reference used for an instance
func ResourceRef(instanceID string) string {
	return "arn:aws:rds:ap-northeast-1:123456789012:db:" + instanceID
}

// Calls returns the recorded calls to op, or every call when op is empty
func (f *ControlPlane) Calls(op Operation) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []Call
	for _, c := range f.calls {
		if op == "" || c.Operation == op {
			result = append(result, c)
		}
	}
	return result
}

// Instance returns the current state of an instance
func (f *ControlPlane) Instance(instanceID string) (apiv1.InstanceDescriptor, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.instances[instanceID]
	return d, ok
}

// Rule returns the current state of a trigger rule
func (f *ControlPlane) Rule(name string) (apiv1.TriggerRule, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rules[name]
	return r, ok
}

// Targets returns the current targets of a trigger rule
func (f *ControlPlane) Targets(name string) []apiv1.TriggerTarget {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.targets[name])
}

// Executions returns the started workflow executions
func (f *ControlPlane) Executions() []Execution {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.executions)
}

// Messages returns the published notifications
func (f *ControlPlane) Messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.messages)
}

// record must be called with the lock held
func (f *ControlPlane) record(op Operation, args ...string) error {
	f.calls = append(f.calls, Call{Operation: op, Args: args})
	return f.failures[op]
}

// DescribeCluster implements controlplane.ClusterAPI
func (f *ControlPlane) DescribeCluster(_ context.Context, clusterID string) ([]apiv1.ClusterMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpDescribeCluster, clusterID); err != nil {
		return nil, err
	}
	members, ok := f.members[clusterID]
	if !ok {
		return nil, &outcome.NotFoundError{Kind: "cluster", ID: clusterID}
	}
	return slices.Clone(members), nil
}

// DescribeInstances implements controlplane.ClusterAPI
func (f *ControlPlane) DescribeInstances(_ context.Context, instanceIDs []string) ([]apiv1.InstanceDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpDescribeInstances, instanceIDs...); err != nil {
		return nil, err
	}
	result := make([]apiv1.InstanceDescriptor, 0, len(instanceIDs))
	for _, id := range instanceIDs {
		if d, ok := f.instances[id]; ok {
			result = append(result, d)
		}
	}
	return result, nil
}

// ListTags implements controlplane.ClusterAPI
func (f *ControlPlane) ListTags(_ context.Context, resourceRef string) (apiv1.TagMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpListTags, resourceRef); err != nil {
		return nil, err
	}
	if err := f.tagErrors[resourceRef]; err != nil {
		return nil, err
	}
	return f.tags[resourceRef], nil
}

// ModifyInstance implements controlplane.ClusterAPI. The instance moves
// to the modifying status and keeps its class, as the real service does
// until the change is applied.
func (f *ControlPlane) ModifyInstance(
	_ context.Context,
	instanceID, targetClass string,
	applyImmediately bool,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpModifyInstance, instanceID, targetClass, fmt.Sprint(applyImmediately)); err != nil {
		return err
	}
	d, ok := f.instances[instanceID]
	if !ok {
		return &outcome.NotFoundError{Kind: "instance", ID: instanceID}
	}
	d.Status = apiv1.InstanceStatusModifying
	f.instances[instanceID] = d
	return nil
}

// CompleteModification applies a pending class change and makes the
// instance available again
func (f *ControlPlane) CompleteModification(instanceID, instanceClass string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.instances[instanceID]
	d.Status = apiv1.InstanceStatusAvailable
	d.InstanceClass = instanceClass
	f.instances[instanceID] = d
}

// FailoverCluster implements controlplane.ClusterAPI. The writer flag
// moves to the target immediately.
func (f *ControlPlane) FailoverCluster(_ context.Context, clusterID, targetInstanceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpFailoverCluster, clusterID, targetInstanceID); err != nil {
		return err
	}
	members, ok := f.members[clusterID]
	if !ok {
		return &outcome.NotFoundError{Kind: "cluster", ID: clusterID}
	}
	for i := range members {
		members[i].IsWriter = members[i].InstanceID == targetInstanceID
	}
	return nil
}

// PutTriggerRule implements controlplane.TriggerAPI
func (f *ControlPlane) PutTriggerRule(_ context.Context, rule apiv1.TriggerRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpPutTriggerRule, rule.Name, rule.Expression, fmt.Sprint(rule.Enabled)); err != nil {
		return err
	}
	f.rules[rule.Name] = rule
	return nil
}

// DescribeTriggerRule implements controlplane.TriggerAPI
func (f *ControlPlane) DescribeTriggerRule(_ context.Context, name string) (apiv1.TriggerRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpDescribeTriggerRule, name); err != nil {
		return apiv1.TriggerRule{}, err
	}
	rule, ok := f.rules[name]
	if !ok {
		return apiv1.TriggerRule{}, &outcome.NotFoundError{Kind: "trigger rule", ID: name}
	}
	return rule, nil
}

// ListTriggerTargets implements controlplane.TriggerAPI
func (f *ControlPlane) ListTriggerTargets(_ context.Context, ruleName string) ([]apiv1.TriggerTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpListTriggerTargets, ruleName); err != nil {
		return nil, err
	}
	if _, ok := f.rules[ruleName]; !ok {
		return nil, &outcome.NotFoundError{Kind: "trigger rule", ID: ruleName}
	}
	return slices.Clone(f.targets[ruleName]), nil
}

// PutTriggerTargets implements controlplane.TriggerAPI
func (f *ControlPlane) PutTriggerTargets(_ context.Context, ruleName string, targets []apiv1.TriggerTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpPutTriggerTargets, ruleName); err != nil {
		return err
	}
	current := f.targets[ruleName]
	for _, t := range targets {
		idx := slices.IndexFunc(current, func(c apiv1.TriggerTarget) bool { return c.ID == t.ID })
		if idx >= 0 {
			current[idx] = t
		} else {
			current = append(current, t)
		}
	}
	f.targets[ruleName] = current
	return nil
}

// StartExecution implements controlplane.WorkflowAPI
func (f *ControlPlane) StartExecution(_ context.Context, workflowRef, name, input string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpStartExecution, workflowRef, name); err != nil {
		return "", err
	}
	f.executions = append(f.executions, Execution{WorkflowRef: workflowRef, Name: name, Input: input})
	return workflowRef + ":" + name, nil
}

// Publish implements controlplane.Notifier
func (f *ControlPlane) Publish(_ context.Context, topicRef, subject, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpPublish, topicRef, subject); err != nil {
		return "", err
	}
	f.messages = append(f.messages, Message{TopicRef: topicRef, Subject: subject, Body: message})
	return fmt.Sprintf("message-%d", len(f.messages)), nil
}
