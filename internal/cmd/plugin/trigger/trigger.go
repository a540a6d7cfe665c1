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

package trigger

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudnative-pg/machinery/pkg/log"
	"github.com/logrusorgru/aurora/v4"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/schedule"
)

const (
	noteOneShot   = "The rule is disabled once the scaling workflow has started"
	noteRecurring = "The rule fires every time the expression matches until it is changed"
)

// TranslateResponse is the output of "schedule translate"
type TranslateResponse struct {
	ScheduleTime string `json:"scheduleTime"`
	apiv1.ScheduleSpec
	NextFireTime *time.Time `json:"nextFireTime,omitempty"`
}

// DisableResponse is the output of "schedule disable"
type DisableResponse struct {
	RuleName string `json:"ruleName"`
	Disabled bool   `json:"disabled"`
}

func newTranslator() *schedule.Translator {
	return schedule.NewTranslator(plugin.Config.ScheduleUTCOffsetHours)
}

func newTrigger() *schedule.Trigger {
	return &schedule.Trigger{
		API:        plugin.ControlPlane,
		RuleName:   plugin.Config.RuleName(),
		Translator: newTranslator(),
		Metrics:    plugin.Metrics,
	}
}

// Translate implements the "schedule translate" subcommand
func Translate(ctx context.Context, scheduleTime string) (TranslateResponse, error) {
	translator := newTranslator()
	spec, err := translator.Translate(scheduleTime)
	plugin.Metrics.ObserveScheduleTranslation(string(schedule.FormOf(scheduleTime)), translationResult(err))
	if err != nil {
		return TranslateResponse{}, err
	}

	response := TranslateResponse{ScheduleTime: scheduleTime, ScheduleSpec: spec}
	response.NextFireTime, err = schedule.NextFire(spec.Expression, time.Now())
	if err != nil {
		log.FromContext(ctx).WithName("trigger").Debug("Cannot compute the next fire time",
			"expression", spec.Expression, "error", err)
	}
	return response, nil
}

func translationResult(err error) string {
	if err != nil {
		return "rejected"
	}
	return "ok"
}

// Arm implements the "schedule arm" subcommand
func Arm(ctx context.Context, request apiv1.UpdateScheduleRequest) (apiv1.UpdateScheduleResponse, error) {
	if err := request.Validate(); err != nil {
		return apiv1.UpdateScheduleResponse{}, err
	}
	if request.ClusterIdentifier == "" {
		request.ClusterIdentifier = plugin.Config.ClusterIdentifier
	}
	if request.TargetClass == "" {
		request.TargetClass = plugin.Config.TargetClass
	}
	trigger := newTrigger()
	result, err := trigger.Arm(ctx, request.ScheduleTime, apiv1.TriggerPayload{
		ClusterIdentifier: request.ClusterIdentifier,
		TargetClass:       request.TargetClass,
	})
	if err != nil {
		return apiv1.UpdateScheduleResponse{}, err
	}

	response := apiv1.UpdateScheduleResponse{
		RuleName:               trigger.RuleName,
		ScheduleSpec:           result.Spec,
		NextFireTime:           result.NextFire,
		ScheduleTime:           request.ScheduleTime,
		ClusterIdentifier:      request.ClusterIdentifier,
		TargetClass:            request.TargetClass,
		DisabledAfterExecution: result.Spec.IsOneShot,
		Note:                   noteRecurring,
	}
	if result.Spec.IsOneShot {
		response.Note = noteOneShot
	}
	return response, nil
}

// Disable implements the "schedule disable" subcommand
func Disable(ctx context.Context) (DisableResponse, error) {
	trigger := newTrigger()
	return DisableResponse{
		RuleName: trigger.RuleName,
		Disabled: trigger.DisableIfOneShot(ctx),
	}, nil
}

func printSchedule(w io.Writer, response TranslateResponse) {
	fmt.Fprintf(w, "Expression:  %s\n", aurora.Bold(response.Expression))
	fmt.Fprintf(w, "Description: %s\n", response.Description)
	if response.IsOneShot {
		fmt.Fprintf(w, "One-shot:    %s\n", aurora.Yellow("yes"))
	} else {
		fmt.Fprintf(w, "One-shot:    %s\n", "no")
	}
	if response.NextFireTime != nil {
		fmt.Fprintf(w, "Next Fire:   %s\n", response.NextFireTime.Format(time.RFC3339))
	}
}

func printArmed(w io.Writer, response apiv1.UpdateScheduleResponse) {
	fmt.Fprintf(w, "Rule: %s %s\n", aurora.Bold(response.RuleName), aurora.Green("enabled"))
	printSchedule(w, TranslateResponse{
		ScheduleTime: response.ScheduleTime,
		ScheduleSpec: response.ScheduleSpec,
		NextFireTime: response.NextFireTime,
	})
	fmt.Fprintf(w, "Cluster:     %s\n", response.ClusterIdentifier)
	fmt.Fprintf(w, "Target:      %s\n", response.TargetClass)
	fmt.Fprintln(w, response.Note)
}
