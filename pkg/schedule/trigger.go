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
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudnative-pg/machinery/pkg/log"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/metrics"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
)

// DisabledSuffix is appended to the description of a disabled one-shot rule
const DisabledSuffix = " (disabled after execution)"

const (
	resultOK       = "ok"
	resultRejected = "rejected"

	disableResultDisabled  = "disabled"
	disableResultRecurring = "recurring"
	disableResultSkipped   = "already-disabled"
	disableResultFailed    = "failed"
)

// Trigger manages the scaling trigger rule
type Trigger struct {
	API        controlplane.TriggerAPI
	RuleName   string
	Translator *Translator
	Metrics    *metrics.Metrics
}

// ArmResult describes an armed trigger
type ArmResult struct {
	Spec apiv1.ScheduleSpec

	// NextFire is informational, nil when it cannot be computed
	NextFire *time.Time
}

// Arm translates the schedule, enables the rule with the resulting
// expression and points its first target at the given payload
func (t *Trigger) Arm(ctx context.Context, scheduleTime string, payload apiv1.TriggerPayload) (ArmResult, error) {
	contextLogger := log.FromContext(ctx).WithName("trigger").WithValues("ruleName", t.RuleName)

	if t.RuleName == "" {
		return ArmResult{}, outcome.NewMissingFieldError("ruleName")
	}
	if payload.ClusterIdentifier == "" {
		return ArmResult{}, outcome.NewMissingFieldError("clusterIdentifier")
	}
	if payload.TargetClass == "" {
		return ArmResult{}, outcome.NewMissingFieldError("targetClass")
	}

	form := FormOf(scheduleTime)
	spec, err := t.Translator.Translate(scheduleTime)
	if err != nil {
		t.Metrics.ObserveScheduleTranslation(string(form), resultRejected)
		return ArmResult{}, err
	}
	t.Metrics.ObserveScheduleTranslation(string(form), resultOK)

	if err := t.API.PutTriggerRule(ctx, apiv1.TriggerRule{
		Name:        t.RuleName,
		Expression:  spec.Expression,
		Enabled:     true,
		Description: spec.Description,
	}); err != nil {
		return ArmResult{}, fmt.Errorf("while updating trigger rule %s: %w", t.RuleName, err)
	}
	contextLogger.Info("Updated trigger rule",
		"scheduleExpression", spec.Expression,
		"isOneShot", spec.IsOneShot)

	targets, err := t.API.ListTriggerTargets(ctx, t.RuleName)
	if err != nil {
		return ArmResult{}, fmt.Errorf("while listing targets of trigger rule %s: %w", t.RuleName, err)
	}
	if len(targets) == 0 {
		return ArmResult{}, &outcome.NotFoundError{Kind: "trigger target", ID: t.RuleName}
	}

	input, err := json.Marshal(payload)
	if err != nil {
		return ArmResult{}, fmt.Errorf("while encoding trigger payload: %w", err)
	}
	target := targets[0]
	target.Input = string(input)
	if err := t.API.PutTriggerTargets(ctx, t.RuleName, []apiv1.TriggerTarget{target}); err != nil {
		return ArmResult{}, fmt.Errorf("while updating targets of trigger rule %s: %w", t.RuleName, err)
	}
	contextLogger.Info("Updated trigger target",
		"targetId", target.ID,
		"clusterIdentifier", payload.ClusterIdentifier,
		"targetClass", payload.TargetClass)

	result := ArmResult{Spec: spec}
	result.NextFire, err = NextFire(spec.Expression, t.Translator.now())
	if err != nil {
		contextLogger.Debug("Cannot compute the next fire time", "error", err)
	}
	return result, nil
}

// DisableIfOneShot disables the rule when its expression is one-shot,
// keeping the expression and marking the description. It never fails:
// errors are logged and reported as false.
func (t *Trigger) DisableIfOneShot(ctx context.Context) bool {
	contextLogger := log.FromContext(ctx).WithName("trigger").WithValues("ruleName", t.RuleName)

	rule, err := t.API.DescribeTriggerRule(ctx, t.RuleName)
	if err != nil {
		contextLogger.Warning("Failed to read trigger rule, leaving it unchanged", "error", err)
		t.Metrics.ObserveTriggerDisable(disableResultFailed)
		return false
	}

	if !IsOneShotExpression(rule.Expression) {
		contextLogger.Debug("Trigger rule is recurring, leaving it enabled",
			"scheduleExpression", rule.Expression)
		t.Metrics.ObserveTriggerDisable(disableResultRecurring)
		return false
	}

	if !rule.Enabled {
		t.Metrics.ObserveTriggerDisable(disableResultSkipped)
		return false
	}

	rule.Enabled = false
	if !strings.HasSuffix(rule.Description, DisabledSuffix) {
		rule.Description += DisabledSuffix
	}
	if err := t.API.PutTriggerRule(ctx, rule); err != nil {
		contextLogger.Warning("Failed to disable one-shot trigger rule", "error", err)
		t.Metrics.ObserveTriggerDisable(disableResultFailed)
		return false
	}

	contextLogger.Info("Disabled one-shot trigger rule", "scheduleExpression", rule.Expression)
	t.Metrics.ObserveTriggerDisable(disableResultDisabled)
	return true
}
