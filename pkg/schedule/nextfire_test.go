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

package schedule

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NextFire", func() {
	after := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	It("computes the next daily run", func() {
		next, err := NextFire("cron(30 0 * * ? *)", after)
		Expect(err).ToNot(HaveOccurred())
		Expect(next).ToNot(BeNil())
		Expect(*next).To(BeTemporally("==", time.Date(2025, time.June, 2, 0, 30, 0, 0, time.UTC)))
	})

	It("computes the next one-shot run", func() {
		next, err := NextFire("cron(0 0 25 12 ? *)", after)
		Expect(err).ToNot(HaveOccurred())
		Expect(*next).To(BeTemporally("==", time.Date(2025, time.December, 25, 0, 0, 0, 0, time.UTC)))
	})

	It("returns nil for an expression that never fires", func() {
		next, err := NextFire("cron(0 0 31 2 ? *)", after)
		Expect(err).ToNot(HaveOccurred())
		Expect(next).To(BeNil())
	})

	DescribeTable("rejects unsupported expressions",
		func(expression string) {
			_, err := NextFire(expression, after)
			Expect(err).To(HaveOccurred())
		},
		Entry("pinned year", "cron(0 0 25 12 ? 2025)"),
		Entry("concrete day of week", "cron(0 18 ? * MON-FRI *)"),
		Entry("last day of month", "cron(0 0 L * ? *)"),
		Entry("nearest weekday", "cron(0 0 15W * ? *)"),
		Entry("not an expression", "09:30"),
	)
})
