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

package status

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

var _ = Describe("status", func() {
	BeforeEach(func() {
		plugin.Config = configuration.NewDefaultConfiguration()
		plugin.Metrics = metrics.NewMetrics()
		plugin.ControlPlane = fake.New().
			WithInstance(apiv1.InstanceDescriptor{
				InstanceID: "aurora-1", Status: apiv1.InstanceStatusAvailable, InstanceClass: "db.t4g.medium",
			}).
			WithInstance(apiv1.InstanceDescriptor{
				InstanceID: "aurora-2", Status: apiv1.InstanceStatusModifying, InstanceClass: "db.r6g.large",
			})
		DeferCleanup(func() { plugin.ControlPlane = nil })
	})

	It("reports every requested instance", func() {
		response, err := Status(context.Background(), apiv1.CheckInstanceStatusRequest{
			InstanceIDs: []string{"aurora-1", "aurora-2", "aurora-3"},
			TargetClass: "db.t4g.medium",
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(response.CheckedCount).To(Equal(3))
		Expect(response.AllAvailable).To(BeFalse())
		Expect(response.Instances[2].NotFound).To(BeTrue())

		var buf bytes.Buffer
		printText(&buf, response)
		Expect(buf.String()).To(ContainSubstring("aurora-3"))
		Expect(buf.String()).To(ContainSubstring("not_found"))
	})

	It("accepts the single instance shorthand", func() {
		response, err := Status(context.Background(), apiv1.CheckInstanceStatusRequest{InstanceID: "aurora-1"})
		Expect(err).ToNot(HaveOccurred())
		Expect(response.AllAvailable).To(BeTrue())
		Expect(response.AllCorrectClass).To(BeTrue())
	})

	It("requires at least one instance", func() {
		_, err := Status(context.Background(), apiv1.CheckInstanceStatusRequest{})
		Expect(outcome.ErrorType(err)).To(Equal("ValidationError"))
	})
})
