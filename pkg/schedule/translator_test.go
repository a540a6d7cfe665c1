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
	"errors"
	"time"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Translator", func() {
	var translator *Translator

	BeforeEach(func() {
		translator = NewTranslator(9)
		translator.Now = func() time.Time {
			return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
		}
	})

	Describe("daily times", func() {
		It("converts a local time to a daily UTC expression", func() {
			spec, err := translator.Translate("09:30")
			Expect(err).ToNot(HaveOccurred())
			Expect(spec).To(Equal(apiv1.ScheduleSpec{
				Expression:  "cron(30 0 * * ? *)",
				Description: "Trigger Aurora scaling daily at 09:30 JST",
				IsOneShot:   false,
			}))
		})

		DescribeTable("wraps the hour around midnight",
			func(input, expression string) {
				spec, err := translator.Translate(input)
				Expect(err).ToNot(HaveOccurred())
				Expect(spec.Expression).To(Equal(expression))
			},
			Entry("early morning", "03:05", "cron(5 18 * * ? *)"),
			Entry("midnight", "00:00", "cron(0 15 * * ? *)"),
			Entry("single digit hour", "9:00", "cron(0 0 * * ? *)"),
			Entry("single digit minute", "9:5", "cron(5 0 * * ? *)"),
			Entry("late evening", "23:59", "cron(59 14 * * ? *)"),
		)

		DescribeTable("rejects out of range values",
			func(input string) {
				_, err := translator.Translate(input)
				var formatErr *outcome.InvalidScheduleFormatError
				Expect(errors.As(err, &formatErr)).To(BeTrue())
				Expect(formatErr.Input).To(Equal(input))
			},
			Entry("hour 24", "24:00"),
			Entry("minute 60", "10:60"),
		)

		It("honours a different offset", func() {
			translator.Offset = 0
			spec, err := translator.Translate("09:30")
			Expect(err).ToNot(HaveOccurred())
			Expect(spec.Expression).To(Equal("cron(30 9 * * ? *)"))
			Expect(spec.Description).To(HaveSuffix("UTC+0"))
		})
	})

	Describe("one-shot times", func() {
		It("pins the UTC day, month, hour and minute", func() {
			spec, err := translator.Translate("2025-12-25 09:00")
			Expect(err).ToNot(HaveOccurred())
			Expect(spec).To(Equal(apiv1.ScheduleSpec{
				Expression:  "cron(0 0 25 12 ? *)",
				Description: "Trigger Aurora scaling at 09:00 JST (one-time execution on 2025-12-25)",
				IsOneShot:   true,
			}))
		})

		It("moves to the previous UTC day before 09:00 local", func() {
			spec, err := translator.Translate("2026-01-01 08:30")
			Expect(err).ToNot(HaveOccurred())
			Expect(spec.Expression).To(Equal("cron(30 23 31 12 ? *)"))
		})

		It("rejects a time in the past", func() {
			_, err := translator.Translate("2020-01-01 09:00")
			var pastErr *outcome.PastScheduleError
			Expect(errors.As(err, &pastErr)).To(BeTrue())
			Expect(pastErr.ScheduledAt).To(BeTemporally("==", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
		})

		It("rejects the current instant", func() {
			_, err := translator.Translate("2025-06-01 21:00")
			Expect(outcome.ErrorType(err)).To(Equal("PastScheduleError"))
		})

		It("accepts the next minute", func() {
			_, err := translator.Translate("2025-06-01 21:01")
			Expect(err).ToNot(HaveOccurred())
		})

		It("accepts dates and times without padding", func() {
			spec, err := translator.Translate("2026-1-5 9:05")
			Expect(err).ToNot(HaveOccurred())
			Expect(spec.Expression).To(Equal("cron(5 0 5 1 ? *)"))
			Expect(spec.Description).To(Equal("Trigger Aurora scaling at 09:05 JST (one-time execution on 2026-01-05)"))
		})

		It("rejects impossible dates", func() {
			_, err := translator.Translate("2025-02-30 09:00")
			Expect(outcome.ErrorType(err)).To(Equal("InvalidScheduleFormatError"))
		})
	})

	Describe("raw expressions", func() {
		DescribeTable("pass through unchanged and derive the one-shot flag",
			func(expression string, oneShot bool) {
				spec, err := translator.Translate(expression)
				Expect(err).ToNot(HaveOccurred())
				Expect(spec.Expression).To(Equal(expression))
				Expect(spec.Description).To(Equal("Trigger Aurora scaling (cron: " + expression + ")"))
				Expect(spec.IsOneShot).To(Equal(oneShot))
			},
			Entry("concrete day and month", "cron(0 0 25 12 ? *)", true),
			Entry("wildcard day", "cron(0 0 * 12 ? *)", false),
			Entry("wildcard month", "cron(0 0 25 * ? *)", false),
			Entry("weekday schedule", "cron(0 18 ? * MON-FRI *)", false),
			Entry("day range", "cron(0 0 1-5 12 ? *)", false),
		)

		It("passes an unreadable expression through as recurring", func() {
			spec, err := translator.Translate("cron(0 0 * * ?)")
			Expect(err).ToNot(HaveOccurred())
			Expect(spec.Expression).To(Equal("cron(0 0 * * ?)"))
			Expect(spec.IsOneShot).To(BeFalse())
		})
	})

	DescribeTable("rejects any other shape",
		func(input string) {
			_, err := translator.Translate(input)
			Expect(outcome.ErrorType(err)).To(Equal("InvalidScheduleFormatError"))
		},
		Entry("empty", ""),
		Entry("words", "tomorrow morning"),
		Entry("rate expression", "rate(1 day)"),
		Entry("seconds", "09:30:00"),
		Entry("ISO timestamp", "2025-12-25T09:00:00Z"),
	)

	It("classifies input forms", func() {
		Expect(FormOf("09:30")).To(Equal(FormDaily))
		Expect(FormOf("2025-12-25 09:00")).To(Equal(FormOneShot))
		Expect(FormOf(" cron(0 0 * * ? *) ")).To(Equal(FormExpression))
		Expect(FormOf("noon")).To(Equal(FormInvalid))
	})
})

var _ = Describe("ZoneLabel", func() {
	It("names the offsets", func() {
		Expect(ZoneLabel(9 * time.Hour)).To(Equal("JST"))
		Expect(ZoneLabel(-5 * time.Hour)).To(Equal("UTC-5"))
		Expect(ZoneLabel(5*time.Hour + 30*time.Minute)).To(Equal("UTC+5.5"))
	})
})
