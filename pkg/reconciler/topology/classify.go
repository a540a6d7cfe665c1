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

package topology

import (
	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
)

// Input is a snapshot of the cluster as seen by the control plane
type Input struct {
	// Members in the order reported by the cluster view
	Members []apiv1.ClusterMember

	// Descriptors of the members, in any order
	Descriptors []apiv1.InstanceDescriptor

	// Tags by instance id
	Tags map[string]apiv1.TagMap

	// TagErrors by instance id, for members whose tag lookup failed
	TagErrors map[string]error
}

// Classification is the result of classifying a cluster
type Classification struct {
	Topology  apiv1.ClassifiedTopology
	Decisions []apiv1.ClassificationDecision
}

// Classify assigns a role to every member of the input. It is
// deterministic for a given input and performs no I/O.
func (p Policy) Classify(in Input) Classification {
	result := Classification{
		Topology: apiv1.ClassifiedTopology{AutoScalingReaderIDs: []string{}},
	}
	if len(in.Members) == 0 {
		return result
	}

	descriptors := make(map[string]apiv1.InstanceDescriptor, len(in.Descriptors))
	for _, d := range in.Descriptors {
		descriptors[d.InstanceID] = d
	}

	exclude := func(id string, rule RuleName) {
		result.Decisions = append(result.Decisions, apiv1.ClassificationDecision{
			InstanceID: id,
			Role:       apiv1.RoleUnclassified,
			Rule:       string(rule),
		})
	}

	seen := make(map[string]bool, len(in.Members))
	candidates := make([]Candidate, 0, len(in.Members))
	writers := 0
	for _, member := range in.Members {
		if seen[member.InstanceID] {
			exclude(member.InstanceID, RuleDuplicateMember)
			continue
		}
		seen[member.InstanceID] = true

		descriptor, ok := descriptors[member.InstanceID]
		switch {
		case !ok:
			exclude(member.InstanceID, RuleMissingDescriptor)
			continue
		case descriptor.Status.IsGone():
			exclude(member.InstanceID, RuleGone)
			continue
		}

		_, tagFailed := in.TagErrors[member.InstanceID]
		candidates = append(candidates, Candidate{
			Member:          member,
			Descriptor:      descriptor,
			Tags:            in.Tags[member.InstanceID],
			TagLookupFailed: tagFailed,
		})
		if member.IsWriter {
			writers++
		}
	}

	state := State{WriterConflict: writers > 1}
	for _, candidate := range candidates {
		role, rule := p.Evaluate(candidate, state)

		decision := apiv1.ClassificationDecision{
			InstanceID: candidate.Member.InstanceID,
			Role:       role,
			Rule:       string(rule),
		}
		if err := in.TagErrors[candidate.Member.InstanceID]; err != nil {
			decision.TagError = err.Error()
		}
		result.Decisions = append(result.Decisions, decision)

		switch role {
		case apiv1.RoleWriter:
			result.Topology.WriterID = candidate.Member.InstanceID
		case apiv1.RoleDedicatedReader:
			result.Topology.DedicatedReaderID = candidate.Member.InstanceID
			state.DedicatedReaderAssigned = true
		case apiv1.RoleAutoScalingReader:
			result.Topology.AutoScalingReaderIDs = append(result.Topology.AutoScalingReaderIDs,
				candidate.Member.InstanceID)
		}
	}

	return result
}
