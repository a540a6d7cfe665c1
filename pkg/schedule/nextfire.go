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
	"strings"
	"time"

	"github.com/robfig/cron"
)

// cronParser parses the five leading fields of a trigger expression once
// they are mapped to the standard cron syntax
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextFire returns the next time a trigger expression fires after the
// given instant, in UTC. It returns nil when the expression never fires
// again (e.g. February 31st).
//
// Only the subset of the trigger dialect shared with standard cron is
// supported: the year must be "*", the day-of-week must be "?" or "*",
// and the L and W day-of-month modifiers are rejected.
func NextFire(expression string, after time.Time) (*time.Time, error) {
	spec, err := toStandardCron(expression)
	if err != nil {
		return nil, err
	}

	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule %q: %w", expression, err)
	}

	next := schedule.Next(after.UTC())
	if next.IsZero() {
		return nil, nil
	}
	next = next.UTC()
	return &next, nil
}

// toStandardCron maps a six-field trigger expression to five-field cron
func toStandardCron(expression string) (string, error) {
	fields, err := ExpressionFields(expression)
	if err != nil {
		return "", err
	}
	minute, hour, dom, month, dow, year := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5]

	if year != "*" {
		return "", fmt.Errorf("unsupported year field %q in %q", year, expression)
	}
	if dow != "?" && dow != "*" {
		return "", fmt.Errorf("unsupported day-of-week field %q in %q", dow, expression)
	}
	if strings.ContainsAny(dom, "LW") {
		return "", fmt.Errorf("unsupported day-of-month field %q in %q", dom, expression)
	}
	if dom == "?" {
		dom = "*"
	}

	return strings.Join([]string{minute, hour, dom, month, "*"}, " "), nil
}
