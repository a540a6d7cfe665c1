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
	"errors"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func available(id string) apiv1.InstanceDescriptor {
	return apiv1.InstanceDescriptor{InstanceID: id, Status: apiv1.InstanceStatusAvailable, InstanceClass: "db.r6g.large"}
}

func withStatus(id string, status apiv1.InstanceStatus) apiv1.InstanceDescriptor {
	d := available(id)
	d.Status = status
	return d
}

func members(writer string, readers ...string) []apiv1.ClusterMember {
	result := []apiv1.ClusterMember{{InstanceID: writer, IsWriter: true}}
	for _, r := range readers {
		result = append(result, apiv1.ClusterMember{InstanceID: r})
	}
	return result
}

func descriptorsFor(ms []apiv1.ClusterMember) []apiv1.InstanceDescriptor {
	result := make([]apiv1.InstanceDescriptor, 0, len(ms))
	for _, m := range ms {
		result = append(result, available(m.InstanceID))
	}
	return result
}

func ruleOf(c Classification, id string) RuleName {
	for _, d := range c.Decisions {
		if d.InstanceID == id {
			return RuleName(d.Rule)
		}
	}
	return ""
}

var _ = Describe("Policy", func() {
	var policy Policy

	BeforeEach(func() {
		policy = DefaultPolicy()
	})

	It("evaluates rules in a fixed order", func() {
		names := make([]RuleName, 0, len(policy))
		for _, rule := range policy {
			names = append(names, rule.Name)
		}
		Expect(names).To(Equal([]RuleName{
			RuleConflictingWriter,
			RuleClusterWriter,
			RuleDedicatedTag,
			RuleAutoScalingTag,
			RuleDedicatedName,
			RuleAutoScalingName,
			RuleFirstUntagged,
			RulePoolFallback,
		}))
	})

	DescribeTable("assigns a role to a single candidate",
		func(c Candidate, s State, role apiv1.Role, rule RuleName) {
			gotRole, gotRule := policy.Evaluate(c, s)
			Expect(gotRole).To(Equal(role))
			Expect(gotRule).To(Equal(rule))
		},
		Entry("writer flag wins over tags",
			Candidate{
				Member: apiv1.ClusterMember{InstanceID: "db-1", IsWriter: true},
				Tags:   apiv1.TagMap{"Role": "autoscaling-reader"},
			},
			State{}, apiv1.RoleWriter, RuleClusterWriter),
		Entry("conflicting writers stay unclassified",
			Candidate{Member: apiv1.ClusterMember{InstanceID: "db-1", IsWriter: true}},
			State{WriterConflict: true}, apiv1.RoleUnclassified, RuleConflictingWriter),
		Entry("dedicated tag on an empty slot",
			Candidate{Member: apiv1.ClusterMember{InstanceID: "db-2"}, Tags: apiv1.TagMap{"Role": "dedicated-reader"}},
			State{}, apiv1.RoleDedicatedReader, RuleDedicatedTag),
		Entry("second dedicated tag falls back to the pool",
			Candidate{Member: apiv1.ClusterMember{InstanceID: "db-3"}, Tags: apiv1.TagMap{"Role": "dedicated-reader"}},
			State{DedicatedReaderAssigned: true}, apiv1.RoleAutoScalingReader, RulePoolFallback),
		Entry("second dedicated tag with a dedicated name still cannot take the slot",
			Candidate{
				Member: apiv1.ClusterMember{InstanceID: "reader-dedicated-2"},
				Tags:   apiv1.TagMap{"Role": "dedicated-reader"},
			},
			State{DedicatedReaderAssigned: true}, apiv1.RoleAutoScalingReader, RulePoolFallback),
		Entry("autoscaling tag",
			Candidate{Member: apiv1.ClusterMember{InstanceID: "db-4"}, Tags: apiv1.TagMap{"Role": "autoscaling-reader"}},
			State{}, apiv1.RoleAutoScalingReader, RuleAutoScalingTag),
		Entry("tags are ignored when the lookup failed",
			Candidate{
				Member:          apiv1.ClusterMember{InstanceID: "db-5"},
				Tags:            apiv1.TagMap{"Role": "autoscaling-reader"},
				TagLookupFailed: true,
			},
			State{}, apiv1.RoleDedicatedReader, RuleFirstUntagged),
		Entry("dedicated in the name, case insensitive",
			Candidate{Member: apiv1.ClusterMember{InstanceID: "Aurora-DEDICATED-1"}},
			State{}, apiv1.RoleDedicatedReader, RuleDedicatedName),
		Entry("autoscaling in the name",
			Candidate{Member: apiv1.ClusterMember{InstanceID: "application-autoscaling-abc"}},
			State{}, apiv1.RoleAutoScalingReader, RuleAutoScalingName),
		Entry("first untagged reader takes the empty slot",
			Candidate{Member: apiv1.ClusterMember{InstanceID: "reader-1"}},
			State{}, apiv1.RoleDedicatedReader, RuleFirstUntagged),
		Entry("unknown tag values behave like no tag",
			Candidate{Member: apiv1.ClusterMember{InstanceID: "reader-1"}, Tags: apiv1.TagMap{"Role": "analytics"}},
			State{}, apiv1.RoleDedicatedReader, RuleFirstUntagged),
		Entry("other readers go to the pool",
			Candidate{Member: apiv1.ClusterMember{InstanceID: "reader-2"}},
			State{DedicatedReaderAssigned: true}, apiv1.RoleAutoScalingReader, RulePoolFallback),
	)

	It("is total even for an empty policy", func() {
		role, rule := Policy{}.Evaluate(Candidate{}, State{})
		Expect(role).To(Equal(apiv1.RoleUnclassified))
		Expect(rule).To(BeEmpty())
	})

	It("flags naming based rules", func() {
		Expect(RuleFirstUntagged.IsNamingFallback()).To(BeTrue())
		Expect(RuleDedicatedTag.IsNamingFallback()).To(BeFalse())
		Expect(RuleClusterWriter.IsNamingFallback()).To(BeFalse())
	})
})

var _ = Describe("Classify", func() {
	var policy Policy

	BeforeEach(func() {
		policy = DefaultPolicy()
	})

	It("returns an empty topology for an empty cluster", func() {
		result := policy.Classify(Input{})
		Expect(result.Topology.IsEmpty()).To(BeTrue())
		Expect(result.Topology.AutoScalingReaderIDs).ToNot(BeNil())
		Expect(result.Decisions).To(BeEmpty())
	})

	It("classifies a fully tagged cluster", func() {
		ms := members("writer", "reader-a", "reader-b", "reader-c")
		result := policy.Classify(Input{
			Members:     ms,
			Descriptors: descriptorsFor(ms),
			Tags: map[string]apiv1.TagMap{
				"reader-a": {"Role": "autoscaling-reader"},
				"reader-b": {"Role": "dedicated-reader"},
				"reader-c": {"Role": "autoscaling-reader"},
			},
		})

		Expect(result.Topology).To(Equal(apiv1.ClassifiedTopology{
			WriterID:             "writer",
			DedicatedReaderID:    "reader-b",
			AutoScalingReaderIDs: []string{"reader-a", "reader-c"},
		}))
	})

	It("uses the naming fallback for untagged readers", func() {
		ms := members("aurora-writer", "aurora-reader-1", "aurora-as-1", "aurora-reader-2")
		result := policy.Classify(Input{Members: ms, Descriptors: descriptorsFor(ms)})

		Expect(result.Topology).To(Equal(apiv1.ClassifiedTopology{
			WriterID:             "aurora-writer",
			DedicatedReaderID:    "aurora-reader-1",
			AutoScalingReaderIDs: []string{"aurora-as-1", "aurora-reader-2"},
		}))
		Expect(ruleOf(result, "aurora-reader-1")).To(Equal(RuleFirstUntagged))
		Expect(ruleOf(result, "aurora-reader-2")).To(Equal(RulePoolFallback))
	})

	It("lets an explicit dedicated name win over an earlier untagged reader only if the slot is empty", func() {
		ms := members("writer", "reader-1", "reader-dedicated")
		result := policy.Classify(Input{Members: ms, Descriptors: descriptorsFor(ms)})

		Expect(result.Topology.DedicatedReaderID).To(Equal("reader-1"))
		Expect(result.Topology.AutoScalingReaderIDs).To(Equal([]string{"reader-dedicated"}))
	})

	It("degrades a failed tag lookup to the naming fallback", func() {
		ms := members("writer", "reader-dedicated", "reader-2")
		result := policy.Classify(Input{
			Members:     ms,
			Descriptors: descriptorsFor(ms),
			Tags:        map[string]apiv1.TagMap{"reader-2": {"Role": "dedicated-reader"}},
			TagErrors:   map[string]error{"reader-dedicated": errors.New("AccessDenied")},
		})

		Expect(result.Topology.DedicatedReaderID).To(Equal("reader-dedicated"))
		Expect(result.Topology.AutoScalingReaderIDs).To(Equal([]string{"reader-2"}))
		Expect(result.Decisions[1].TagError).To(Equal("AccessDenied"))
		Expect(result.Decisions[1].Rule).To(Equal(string(RuleDedicatedName)))
	})

	It("never classifies deleting or deleted instances", func() {
		ms := members("writer", "reader-1", "reader-2", "reader-3")
		result := policy.Classify(Input{
			Members: ms,
			Descriptors: []apiv1.InstanceDescriptor{
				available("writer"),
				withStatus("reader-1", apiv1.InstanceStatusDeleting),
				withStatus("reader-2", apiv1.InstanceStatusDeleted),
				available("reader-3"),
			},
		})

		Expect(result.Topology.IDs()).To(Equal([]string{"writer", "reader-3"}))
		Expect(ruleOf(result, "reader-1")).To(Equal(RuleGone))
		Expect(ruleOf(result, "reader-2")).To(Equal(RuleGone))
	})

	It("does not assign a writer that is being deleted", func() {
		ms := members("writer", "reader-1")
		result := policy.Classify(Input{
			Members:     ms,
			Descriptors: []apiv1.InstanceDescriptor{withStatus("writer", apiv1.InstanceStatusDeleting), available("reader-1")},
		})
		Expect(result.Topology.HasWriter()).To(BeFalse())
		Expect(result.Topology.DedicatedReaderID).To(Equal("reader-1"))
	})

	It("ignores members without descriptor and descriptors without member", func() {
		ms := members("writer", "reader-1")
		result := policy.Classify(Input{
			Members:     ms,
			Descriptors: []apiv1.InstanceDescriptor{available("writer"), available("stranger")},
		})
		Expect(result.Topology.IDs()).To(Equal([]string{"writer"}))
		Expect(ruleOf(result, "reader-1")).To(Equal(RuleMissingDescriptor))
		Expect(ruleOf(result, "stranger")).To(BeEmpty())
	})

	It("assigns a writer only when exactly one member is flagged", func() {
		ms := []apiv1.ClusterMember{
			{InstanceID: "writer-a", IsWriter: true},
			{InstanceID: "writer-b", IsWriter: true},
			{InstanceID: "reader-1"},
		}
		result := policy.Classify(Input{Members: ms, Descriptors: descriptorsFor(ms)})

		Expect(result.Topology.HasWriter()).To(BeFalse())
		Expect(result.Topology.IDs()).To(Equal([]string{"reader-1"}))
		Expect(ruleOf(result, "writer-a")).To(Equal(RuleConflictingWriter))
	})

	It("keeps a single writer when the other writer is being deleted", func() {
		ms := []apiv1.ClusterMember{
			{InstanceID: "writer-a", IsWriter: true},
			{InstanceID: "writer-b", IsWriter: true},
		}
		result := policy.Classify(Input{
			Members:     ms,
			Descriptors: []apiv1.InstanceDescriptor{withStatus("writer-a", apiv1.InstanceStatusDeleting), available("writer-b")},
		})
		Expect(result.Topology.WriterID).To(Equal("writer-b"))
	})

	It("classifies repeated member ids once", func() {
		ms := []apiv1.ClusterMember{
			{InstanceID: "writer", IsWriter: true},
			{InstanceID: "reader-1"},
			{InstanceID: "reader-1"},
		}
		result := policy.Classify(Input{Members: ms, Descriptors: descriptorsFor(ms)})
		Expect(result.Topology.IDs()).To(Equal([]string{"writer", "reader-1"}))
	})

	It("is deterministic for a fixed input", func() {
		ms := members("writer", "reader-1", "as-1", "reader-dedicated", "reader-2")
		in := Input{
			Members:     ms,
			Descriptors: descriptorsFor(ms),
			Tags:        map[string]apiv1.TagMap{"reader-2": {"Role": "autoscaling-reader"}},
		}
		first := policy.Classify(in)
		for range 5 {
			Expect(policy.Classify(in)).To(Equal(first))
		}
	})

	It("keeps every classified id distinct and drawn from the members", func() {
		ms := members("w", "dedicated-1", "dedicated-2", "as-1", "r-1", "r-2")
		result := policy.Classify(Input{Members: ms, Descriptors: descriptorsFor(ms)})

		ids := result.Topology.IDs()
		Expect(ids).To(HaveLen(len(ms)))
		memberIDs := make([]string, 0, len(ms))
		for _, m := range ms {
			memberIDs = append(memberIDs, m.InstanceID)
		}
		Expect(ids).To(ConsistOf(memberIDs))
		Expect(result.Topology.DedicatedReaderID).To(Equal("dedicated-1"))
	})
})
