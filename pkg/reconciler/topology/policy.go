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
	"strings"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
)

// RuleName identifies a classification rule
type RuleName string

const (
	// RuleConflictingWriter leaves every writer unclassified when more than
	// one member claims the writer role
	RuleConflictingWriter RuleName = "conflicting-writer"

	// RuleClusterWriter assigns the member flagged as writer
	RuleClusterWriter RuleName = "cluster-writer"

	// RuleDedicatedTag assigns the first member tagged as dedicated reader
	RuleDedicatedTag RuleName = "dedicated-reader-tag"

	// RuleAutoScalingTag assigns members tagged as autoscaling readers
	RuleAutoScalingTag RuleName = "autoscaling-reader-tag"

	// RuleDedicatedName assigns the first member whose id contains "dedicated"
	RuleDedicatedName RuleName = "dedicated-name"

	// RuleAutoScalingName assigns members whose id contains "as-" or "autoscaling"
	RuleAutoScalingName RuleName = "autoscaling-name"

	// RuleFirstUntagged assigns the first remaining reader to the empty
	// dedicated reader slot
	RuleFirstUntagged RuleName = "first-untagged-reader"

	// RulePoolFallback sends every remaining reader to the pool
	RulePoolFallback RuleName = "pool-fallback"

	// RuleGone excludes deleting and deleted instances
	RuleGone RuleName = "instance-gone"

	// RuleMissingDescriptor excludes members the instance lookup did not return
	RuleMissingDescriptor RuleName = "missing-descriptor"

	// RuleDuplicateMember excludes repeated member ids
	RuleDuplicateMember RuleName = "duplicate-member"
)

// Candidate is the information a rule can inspect about one member
type Candidate struct {
	Member     apiv1.ClusterMember
	Descriptor apiv1.InstanceDescriptor
	Tags       apiv1.TagMap

	// TagLookupFailed is true when the tags could not be read
	TagLookupFailed bool
}

// hasUsableRoleTag returns true when the role tag holds a known value
func (c Candidate) hasUsableRoleTag() bool {
	if c.TagLookupFailed {
		return false
	}
	switch c.Tags.RoleTag() {
	case apiv1.RoleTagDedicatedReader, apiv1.RoleTagAutoScalingReader:
		return true
	default:
		return false
	}
}

// lowerID is the instance id used by name matching
func (c Candidate) lowerID() string {
	return strings.ToLower(c.Member.InstanceID)
}

// State is the part of the classification in progress visible to rules
type State struct {
	// DedicatedReaderAssigned is true once the dedicated reader slot is taken
	DedicatedReaderAssigned bool

	// WriterConflict is true when more than one eligible member is flagged as writer
	WriterConflict bool
}

// Rule is one step of a classification policy. Match returns the role
// and true when the rule applies to the candidate.
type Rule struct {
	Name  RuleName
	Match func(c Candidate, s State) (apiv1.Role, bool)
}

// Policy is an ordered list of rules; the first matching rule wins
type Policy []Rule

// Evaluate returns the role assigned by the first matching rule. It is
// total: a candidate no rule matches is Unclassified.
func (p Policy) Evaluate(c Candidate, s State) (apiv1.Role, RuleName) {
	for _, rule := range p {
		if role, ok := rule.Match(c, s); ok {
			return role, rule.Name
		}
	}
	return apiv1.RoleUnclassified, ""
}

// DefaultPolicy returns the rule order used in production
func DefaultPolicy() Policy {
	return Policy{
		{
			Name: RuleConflictingWriter,
			Match: func(c Candidate, s State) (apiv1.Role, bool) {
				return apiv1.RoleUnclassified, c.Member.IsWriter && s.WriterConflict
			},
		},
		{
			Name: RuleClusterWriter,
			Match: func(c Candidate, _ State) (apiv1.Role, bool) {
				return apiv1.RoleWriter, c.Member.IsWriter
			},
		},
		{
			Name: RuleDedicatedTag,
			Match: func(c Candidate, s State) (apiv1.Role, bool) {
				return apiv1.RoleDedicatedReader,
					!c.TagLookupFailed &&
						c.Tags.RoleTag() == apiv1.RoleTagDedicatedReader &&
						!s.DedicatedReaderAssigned
			},
		},
		{
			Name: RuleAutoScalingTag,
			Match: func(c Candidate, _ State) (apiv1.Role, bool) {
				return apiv1.RoleAutoScalingReader,
					!c.TagLookupFailed && c.Tags.RoleTag() == apiv1.RoleTagAutoScalingReader
			},
		},
		{
			Name: RuleDedicatedName,
			Match: func(c Candidate, s State) (apiv1.Role, bool) {
				return apiv1.RoleDedicatedReader,
					strings.Contains(c.lowerID(), "dedicated") && !s.DedicatedReaderAssigned
			},
		},
		{
			Name: RuleAutoScalingName,
			Match: func(c Candidate, _ State) (apiv1.Role, bool) {
				id := c.lowerID()
				return apiv1.RoleAutoScalingReader,
					strings.Contains(id, "as-") || strings.Contains(id, "autoscaling")
			},
		},
		{
			Name: RuleFirstUntagged,
			Match: func(c Candidate, s State) (apiv1.Role, bool) {
				return apiv1.RoleDedicatedReader, !c.hasUsableRoleTag() && !s.DedicatedReaderAssigned
			},
		},
		{
			Name: RulePoolFallback,
			Match: func(Candidate, State) (apiv1.Role, bool) {
				return apiv1.RoleAutoScalingReader, true
			},
		},
	}
}

// IsNamingFallback returns true for rules that classify by instance name
// or position instead of an explicit signal
func (r RuleName) IsNamingFallback() bool {
	switch r {
	case RuleDedicatedName, RuleAutoScalingName, RuleFirstUntagged, RulePoolFallback:
		return true
	default:
		return false
	}
}
