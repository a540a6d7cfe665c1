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

package plugin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newTestCmd(args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	AddInputFlag(cmd)
	AddOutputFlag(cmd)
	Expect(cmd.ParseFlags(args)).To(Succeed())
	return cmd
}

var _ = Describe("ExitCode", func() {
	DescribeTable("maps verdicts to exit codes",
		func(err error, code int) {
			Expect(ExitCode(err)).To(Equal(code))
		},
		Entry("success", nil, 0),
		Entry("retryable state", &outcome.RetryableStateError{InstanceID: "i", Status: "rebooting"}, ExitCodeRetryable),
		Entry("wrapped transient", fmt.Errorf("ctx: %w", &outcome.TransientError{Operation: "op", Err: errors.New("x")}),
			ExitCodeRetryable),
		Entry("validation", outcome.NewMissingFieldError("instanceId"), ExitCodeFatal),
		Entry("unknown", errors.New("boom"), ExitCodeFatal),
	)
})

var _ = Describe("NewErrorEnvelope", func() {
	It("describes the failure", func() {
		envelope := NewErrorEnvelope(&outcome.PreconditionError{InstanceID: "reader", Status: "modifying"})
		Expect(envelope.Verdict).To(Equal(outcome.VerdictFatalFailure))
		Expect(envelope.ErrorType).To(Equal("PreconditionError"))

		encoded, err := json.Marshal(envelope)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(encoded)).To(ContainSubstring(`"verdict":"FatalFailure"`))
	})
})

var _ = Describe("ReadRequest", func() {
	It("leaves the request untouched without input", func() {
		request := apiv1.ModifyInstanceRequest{InstanceID: "kept"}
		Expect(ReadRequest(newTestCmd(), &request)).To(Succeed())
		Expect(request.InstanceID).To(Equal("kept"))
	})

	It("decodes inline JSON", func() {
		var request apiv1.ModifyInstanceRequest
		cmd := newTestCmd("--input", `{"instanceId":"reader","targetClass":"db.t4g.medium","applyImmediately":false}`)
		Expect(ReadRequest(cmd, &request)).To(Succeed())
		Expect(request.InstanceID).To(Equal("reader"))
		Expect(request.ApplyImmediately).ToNot(BeNil())
		Expect(*request.ApplyImmediately).To(BeFalse())
	})

	It("decodes a YAML file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "request.yaml")
		Expect(os.WriteFile(path, []byte("instanceIds:\n- a\n- b\n"), 0o600)).To(Succeed())

		var request apiv1.CheckInstanceStatusRequest
		Expect(ReadRequest(newTestCmd("--input", "@"+path), &request)).To(Succeed())
		Expect(request.IDs()).To(Equal([]string{"a", "b"}))
	})

	It("decodes standard input", func() {
		cmd := newTestCmd("--input", "-")
		cmd.SetIn(strings.NewReader(`{"clusterIdentifier":"aurora"}`))

		var request apiv1.TopologyRequest
		Expect(ReadRequest(cmd, &request)).To(Succeed())
		Expect(request.ClusterIdentifier).To(Equal("aurora"))
	})

	It("fails on malformed input", func() {
		var request apiv1.TopologyRequest
		err := ReadRequest(newTestCmd("--input", "{"), &request)
		Expect(outcome.ErrorType(err)).To(Equal("ValidationError"))
		Expect(ExitCode(err)).To(Equal(ExitCodeFatal))
	})

	It("fails on a missing request file", func() {
		var request apiv1.TopologyRequest
		err := ReadRequest(newTestCmd("--input", "@"+filepath.Join(GinkgoT().TempDir(), "absent.yaml")), &request)
		Expect(outcome.ErrorType(err)).To(Equal("ValidationError"))
	})
})

var _ = Describe("Output", func() {
	It("rejects unknown formats", func() {
		_, err := GetOutputFormat(newTestCmd("-o", "yaml"))
		Expect(outcome.ErrorType(err)).To(Equal("ValidationError"))
		Expect(NewErrorEnvelope(err).ErrorMessage).To(ContainSubstring(`"yaml"`))
	})

	It("prints JSON or text", func() {
		var buf bytes.Buffer
		text := func(w io.Writer) { _, _ = io.WriteString(w, "text\n") }

		Expect(Print(&buf, OutputFormatText, map[string]string{"a": "b"}, text)).To(Succeed())
		Expect(buf.String()).To(Equal("text\n"))

		buf.Reset()
		Expect(Print(&buf, OutputFormatJSON, map[string]string{"a": "b"}, text)).To(Succeed())
		Expect(buf.String()).To(Equal("{\n  \"a\": \"b\"\n}\n"))
	})
})

var _ = Describe("OperationName", func() {
	It("joins the subcommand path", func() {
		root := &cobra.Command{Use: "aurora-scaledown"}
		schedule := &cobra.Command{Use: "schedule"}
		arm := &cobra.Command{Use: "arm"}
		schedule.AddCommand(arm)
		root.AddCommand(schedule)

		Expect(OperationName(arm)).To(Equal("schedule-arm"))
		Expect(OperationName(root)).To(Equal("root"))
		Expect(OperationName(nil)).To(Equal("unknown"))
	})
})

var _ = Describe("Arguments", func() {
	It("checks the exact count", func() {
		Expect(RequiresArguments(1)(nil, nil)).To(MatchError("missing arguments"))
		Expect(RequiresArguments(1)(nil, []string{"a", "b"})).To(MatchError("too many arguments"))
		Expect(RequiresArguments(1)(nil, []string{"a"})).To(Succeed())
		Expect(AtMostArguments(1)(nil, nil)).To(Succeed())
	})
})
