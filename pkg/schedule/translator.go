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
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
)

// DefaultUTCOffset is the fixed offset of the local time (UTC+9, no DST)
const DefaultUTCOffset = 9 * time.Hour

// Form is the shape of a schedule input
type Form string

const (
	// FormExpression is a raw cron(...) expression, passed through unchanged
	FormExpression Form = "expression"

	// FormDaily is "HH:MM"
	FormDaily Form = "daily"

	// FormOneShot is "YYYY-MM-DD HH:MM", padding optional
	FormOneShot Form = "one-shot"

	// FormInvalid is any other input
	FormInvalid Form = "invalid"
)

const (
	expressionPrefix = "cron("
	expressionSuffix = ")"
	expressionFields = 6
	oneShotLayout    = "2006-1-2 15:4"
)

var (
	dailyRegex   = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})$`)
	oneShotRegex = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2} \d{1,2}:\d{1,2}$`)
	integerRegex = regexp.MustCompile(`^\d+$`)
)

// FormOf returns the shape of an input without validating it further
func FormOf(input string) Form {
	input = strings.TrimSpace(input)
	switch {
	case strings.HasPrefix(input, expressionPrefix):
		return FormExpression
	case dailyRegex.MatchString(input):
		return FormDaily
	case oneShotRegex.MatchString(input):
		return FormOneShot
	default:
		return FormInvalid
	}
}

// Translator converts schedule inputs to trigger expressions
type Translator struct {
	// Offset is the fixed UTC offset of local inputs
	Offset time.Duration

	// Now returns the current time, time.Now when nil
	Now func() time.Time
}

// NewTranslator creates a translator for the given offset in hours
func NewTranslator(offsetHours int) *Translator {
	return &Translator{Offset: time.Duration(offsetHours) * time.Hour}
}

func (t *Translator) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

func (t *Translator) location() *time.Location {
	return time.FixedZone(ZoneLabel(t.Offset), int(t.Offset.Seconds()))
}

// ZoneLabel names a fixed offset, "JST" for UTC+9
func ZoneLabel(offset time.Duration) string {
	if offset == DefaultUTCOffset {
		return "JST"
	}
	hours := offset.Hours()
	if hours == float64(int(hours)) {
		return fmt.Sprintf("UTC%+d", int(hours))
	}
	return fmt.Sprintf("UTC%+.1f", hours)
}

// Translate converts an input into a schedule specification
func (t *Translator) Translate(input string) (apiv1.ScheduleSpec, error) {
	input = strings.TrimSpace(input)

	switch FormOf(input) {
	case FormExpression:
		return translateExpression(input), nil
	case FormDaily:
		return t.translateDaily(input)
	case FormOneShot:
		return t.translateOneShot(input)
	default:
		return apiv1.ScheduleSpec{}, &outcome.InvalidScheduleFormatError{
			Input:  input,
			Reason: "unrecognized format",
		}
	}
}

// translateExpression leaves the syntax check to the trigger service. An
// expression whose fields cannot be read is reported as recurring.
func translateExpression(input string) apiv1.ScheduleSpec {
	return apiv1.ScheduleSpec{
		Expression:  input,
		Description: fmt.Sprintf("Trigger Aurora scaling (cron: %s)", input),
		IsOneShot:   IsOneShotExpression(input),
	}
}

func (t *Translator) translateDaily(input string) (apiv1.ScheduleSpec, error) {
	matches := dailyRegex.FindStringSubmatch(input)
	hour, _ := strconv.Atoi(matches[1])
	minute, _ := strconv.Atoi(matches[2])
	if hour > 23 || minute > 59 {
		return apiv1.ScheduleSpec{}, &outcome.InvalidScheduleFormatError{
			Input:  input,
			Reason: "hour must be 0-23 and minute 0-59",
		}
	}

	// The conversion is done on a fixed reference date: the offset has no DST
	local := time.Date(2000, time.January, 1, hour, minute, 0, 0, t.location())
	utc := local.UTC()

	return apiv1.ScheduleSpec{
		Expression: fmt.Sprintf("cron(%d %d * * ? *)", utc.Minute(), utc.Hour()),
		Description: fmt.Sprintf("Trigger Aurora scaling daily at %02d:%02d %s",
			hour, minute, ZoneLabel(t.Offset)),
		IsOneShot: false,
	}, nil
}

func (t *Translator) translateOneShot(input string) (apiv1.ScheduleSpec, error) {
	local, err := time.ParseInLocation(oneShotLayout, input, t.location())
	if err != nil {
		return apiv1.ScheduleSpec{}, &outcome.InvalidScheduleFormatError{Input: input, Reason: err.Error()}
	}

	utc := local.UTC()
	now := t.now().UTC()
	if !utc.After(now) {
		return apiv1.ScheduleSpec{}, &outcome.PastScheduleError{Input: input, ScheduledAt: utc, Now: now}
	}

	return apiv1.ScheduleSpec{
		Expression: fmt.Sprintf("cron(%d %d %d %d ? *)", utc.Minute(), utc.Hour(), utc.Day(), int(utc.Month())),
		Description: fmt.Sprintf("Trigger Aurora scaling at %s %s (one-time execution on %s)",
			local.Format("15:04"), ZoneLabel(t.Offset), local.Format("2006-01-02")),
		IsOneShot: true,
	}, nil
}

// ExpressionFields returns the six fields of a cron(...) expression
func ExpressionFields(expression string) ([]string, error) {
	expression = strings.TrimSpace(expression)
	if !strings.HasPrefix(expression, expressionPrefix) || !strings.HasSuffix(expression, expressionSuffix) {
		return nil, fmt.Errorf("expression must be wrapped in cron(...)")
	}

	body := strings.TrimSuffix(strings.TrimPrefix(expression, expressionPrefix), expressionSuffix)
	fields := strings.Fields(body)
	if len(fields) != expressionFields {
		return nil, fmt.Errorf("expected %d fields, got %d", expressionFields, len(fields))
	}
	return fields, nil
}

// IsOneShotExpression returns true when both the day-of-month and the
// month fields are concrete values. A recurring expression restricted to
// a single day of a single month is indistinguishable and also reported
// as one-shot.
func IsOneShotExpression(expression string) bool {
	fields, err := ExpressionFields(expression)
	if err != nil {
		return false
	}
	return integerRegex.MatchString(fields[2]) && integerRegex.MatchString(fields[3])
}
