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
	"bytes"
	"context"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
	"github.com/cloudnative-pg/aurora-scaledown/internal/configuration"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane/fake"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/metrics"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("topology", func() {
	BeforeEach(func() {
		plugin.Config = configuration.NewDefaultConfiguration()
		plugin.Metrics = metrics.NewMetrics()
		plugin.ControlPlane = fake.New().
			WithCluster("aurora",
				apiv1.ClusterMember{InstanceID: "aurora-1", IsWriter: true},
				apiv1.ClusterMember{InstanceID: "aurora-2"},
			).
			WithInstance(apiv1.InstanceDescriptor{InstanceID: "aurora-1", Status: apiv1.InstanceStatusAvailable}).
			WithInstance(apiv1.InstanceDescriptor{InstanceID: "aurora-2", Status: apiv1.InstanceStatusAvailable})
		DeferCleanup(func() { plugin.ControlPlane = nil })
	})

	It("resolves the cluster", func() {
		response, err := Resolve(context.Background(), apiv1.TopologyRequest{ClusterIdentifier: "aurora"})
		Expect(err).ToNot(HaveOccurred())
		Expect(response.WriterID).To(Equal("aurora-1"))
		Expect(response.DedicatedReaderID).To(Equal("aurora-2"))
		Expect(response.Decisions).To(HaveLen(2))

		var buf bytes.Buffer
		printText(&buf, response)
		Expect(buf.String()).To(ContainSubstring("aurora-2"))
		Expect(buf.String()).ToNot(ContainSubstring("No writer found"))
	})

	It("requires a cluster", func() {
		_, err := Resolve(context.Background(), apiv1.TopologyRequest{})
		Expect(outcome.ErrorType(err)).To(Equal("ValidationError"))
	})

	It("reports a missing cluster", func() {
		_, err := Resolve(context.Background(), apiv1.TopologyRequest{ClusterIdentifier: "missing"})
		Expect(outcome.ErrorType(err)).To(Equal("NotFoundError"))
	})
})
