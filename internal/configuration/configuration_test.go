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

package configuration

import (
	"os"
	"path/filepath"

	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func env(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func writeFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
	return path
}

var _ = Describe("Load", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("starts from the defaults", func() {
		data, err := Load(Sources{
			EnvFile: writeFile(dir, "empty.env", ""),
			Lookup:  env(nil),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(data).To(Equal(NewDefaultConfiguration()))
		Expect(data.TargetClass).To(Equal("db.t4g.medium"))
		Expect(data.MaxAttempts).To(Equal(5))
		Expect(data.ScheduleUTCOffsetHours).To(Equal(9))
		Expect(data.RuleName()).To(Equal("aurora-scaledown-dev-schedule-scaling"))
	})

	It("layers the file, the env file and the environment", func() {
		file := writeFile(dir, "config.yaml", `
clusterIdentifier: from-file
targetClass: db.t4g.large
region: us-east-1
maxAttempts: 3
`)
		envFile := writeFile(dir, "test.env", "TARGET_CLASS=db.t4g.small\nAWS_REGION=eu-west-1\n")

		data, err := Load(Sources{
			File:    file,
			EnvFile: envFile,
			Lookup:  env(map[string]string{"AWS_REGION": "ap-northeast-1", "ENVIRONMENT": "prod"}),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(data.ClusterIdentifier).To(Equal("from-file"))
		Expect(data.TargetClass).To(Equal("db.t4g.small"))
		Expect(data.Region).To(Equal("ap-northeast-1"))
		Expect(data.MaxAttempts).To(Equal(3))
		Expect(data.RuleName()).To(Equal("aurora-scaledown-prod-schedule-scaling"))
	})

	It("ignores empty environment values", func() {
		data, err := Load(Sources{
			EnvFile: writeFile(dir, "empty.env", ""),
			Lookup:  env(map[string]string{"TARGET_CLASS": ""}),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(data.TargetClass).To(Equal(DefaultTargetClass))
	})

	It("reports every malformed integer", func() {
		_, err := Load(Sources{
			EnvFile: writeFile(dir, "empty.env", ""),
			Lookup: env(map[string]string{
				"AWS_MAX_ATTEMPTS":          "many",
				"SCHEDULE_UTC_OFFSET_HOURS": "+9h",
			}),
		})
		Expect(err).To(MatchError(And(
			ContainSubstring("AWS_MAX_ATTEMPTS"),
			ContainSubstring("SCHEDULE_UTC_OFFSET_HOURS"))))
	})

	It("fails on an explicit env file that does not exist", func() {
		_, err := Load(Sources{EnvFile: filepath.Join(dir, "missing.env"), Lookup: env(nil)})
		Expect(err).To(HaveOccurred())
	})

	It("fails on a malformed configuration file", func() {
		_, err := Load(Sources{
			File:    writeFile(dir, "config.yaml", "maxAttempts: [1"),
			EnvFile: writeFile(dir, "empty.env", ""),
			Lookup:  env(nil),
		})
		Expect(err).To(MatchError(ContainSubstring("config.yaml")))
	})
})

var _ = Describe("Data", func() {
	It("prefers an explicit rule name", func() {
		data := NewDefaultConfiguration()
		data.EventBridgeRuleName = "custom"
		Expect(data.RuleName()).To(Equal("custom"))
	})

	It("validates the ranges", func() {
		data := NewDefaultConfiguration()
		Expect(data.Validate()).To(Succeed())

		data.MaxAttempts = 0
		data.ScheduleUTCOffsetHours = 20
		data.TargetClass = "t4g.medium"
		Expect(data.Validate()).To(MatchError(And(
			ContainSubstring(MaxAttemptsKey),
			ContainSubstring(ScheduleUTCOffsetHoursKey),
			ContainSubstring(TargetClassKey))))
	})

	It("reports the missing required settings", func() {
		data := NewDefaultConfiguration()
		err := data.Require(ClusterIdentifierKey, StepFunctionARNKey, EventBridgeRuleNameKey)
		Expect(err).To(MatchError(And(
			ContainSubstring("invalid CLUSTER_IDENTIFIER: environment variable is not set"),
			ContainSubstring("invalid STEP_FUNCTION_ARN: environment variable is not set"))))
		Expect(err.Error()).ToNot(ContainSubstring(EventBridgeRuleNameKey))
		Expect(outcome.ErrorType(err)).To(Equal("ValidationError"))
	})

	It("maps the AWS options", func() {
		data := NewDefaultConfiguration()
		data.Region = "ap-northeast-1"
		data.EndpointURL = "http://localhost:4566"
		options := data.AWSOptions()
		Expect(options.Region).To(Equal("ap-northeast-1"))
		Expect(options.Endpoint).To(Equal("http://localhost:4566"))
		Expect(options.MaxAttempts).To(Equal(5))
	})
})
