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
	"bytes"
	"context"

	"k8s.io/utils/ptr"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
	"github.com/cloudnative-pg/aurora-scaledown/internal/configuration"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane/fake"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/metrics"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("resize", func() {
	var cp *fake.ControlPlane

	BeforeEach(func() {
		cp = fake.New().WithInstance(apiv1.InstanceDescriptor{
			InstanceID:    "aurora-2",
			Status:        apiv1.InstanceStatusAvailable,
			InstanceClass: "db.r6g.large",
		})
		plugin.Config = configuration.NewDefaultConfiguration()
		plugin.Metrics = metrics.NewMetrics()
		plugin.ControlPlane = cp
		DeferCleanup(func() { plugin.ControlPlane = nil })
	})

	It("initiates the modification", func() {
		response, err := Resize(context.Background(), apiv1.ModifyInstanceRequest{
			InstanceID:  "aurora-2",
			TargetClass: "db.t4g.medium",
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(response.Kind).To(Equal(apiv1.ResizeModifyInitiated))
		Expect(response.PreviousClass).To(Equal("db.r6g.large"))
		Expect(response.Direction).To(Equal("downsize"))
		Expect(response.Message).To(Equal("Modification initiated: db.r6g.large -> db.t4g.medium"))

		calls := cp.Calls(fake.OpModifyInstance)
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].Args).To(Equal([]string{"aurora-2", "db.t4g.medium", "true"}))
	})

	It("passes a deferred apply through", func() {
		_, err := Resize(context.Background(), apiv1.ModifyInstanceRequest{
			InstanceID:       "aurora-2",
			TargetClass:      "db.t4g.medium",
			ApplyImmediately: ptr.To(false),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(cp.Calls(fake.OpModifyInstance)[0].Args[2]).To(Equal("false"))
	})

	It("asks for a retry while the instance is rebooting", func() {
		cp.WithInstance(apiv1.InstanceDescriptor{
			InstanceID:    "aurora-2",
			Status:        apiv1.InstanceStatusRebooting,
			InstanceClass: "db.r6g.large",
		})

		_, err := Resize(context.Background(), apiv1.ModifyInstanceRequest{
			InstanceID:  "aurora-2",
			TargetClass: "db.t4g.medium",
		})
		Expect(plugin.ExitCode(err)).To(Equal(plugin.ExitCodeRetryable))
		Expect(cp.Calls(fake.OpModifyInstance)).To(BeEmpty())
	})

	It("validates the request", func() {
		_, err := Resize(context.Background(), apiv1.ModifyInstanceRequest{InstanceID: "aurora-2"})
		Expect(outcome.ErrorType(err)).To(Equal("ValidationError"))
	})

	Context("from the command line", func() {
		run := func(args ...string) error {
			cmd := NewCmd()
			cmd.SetArgs(args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			return cmd.ExecuteContext(context.Background())
		}

		It("refuses a request without a target class", func() {
			err := run("--input", `{"instanceId":"aurora-2"}`)
			Expect(outcome.ErrorType(err)).To(Equal("ValidationError"))
			Expect(cp.Calls(fake.OpModifyInstance)).To(BeEmpty())
		})

		It("takes the target class from the flag", func() {
			err := run("--input", `{"instanceId":"aurora-2"}`, "--target-class", "db.t4g.medium")
			Expect(err).ToNot(HaveOccurred())
			Expect(cp.Calls(fake.OpModifyInstance)[0].Args[1]).To(Equal("db.t4g.medium"))
		})
	})
})
