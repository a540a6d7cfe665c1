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

package notification

import (
	"bytes"
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

const (
	// StatusFailed is reported for events carrying an error
	StatusFailed = "FAILED"

	// StatusCompleted is the default status of a successful event
	StatusCompleted = "COMPLETED"

	// MaxSubjectLength is the longest subject the notifier accepts
	MaxSubjectLength = 100

	unknownExecution = "unknown"
	unknownCause     = "Unknown cause"
)

// Notification is a composed message
type Notification struct {
	Status  string
	Subject string
	Body    string
}

// Compose builds the notification of a terminal event, completed at now
func Compose(event apiv1.NotificationEvent, now time.Time) Notification {
	name := event.ExecutionName
	if name == "" {
		name = unknownExecution
	}
	endTime := now.UTC().Format(time.RFC3339)

	if event.IsFailure() {
		var body strings.Builder
		body.WriteString("Aurora instance scaling FAILED.\n\n")
		fmt.Fprintf(&body, "Execution: %s\n", name)
		fmt.Fprintf(&body, "Status: %s\n", StatusFailed)
		fmt.Fprintf(&body, "Completed at: %s\n\n", endTime)
		fmt.Fprintf(&body, "Error type: %s\n", event.Error)
		fmt.Fprintf(&body, "Cause:\n%s\n", formatCause(event.Cause))

		return Notification{
			Status:  StatusFailed,
			Subject: truncate(fmt.Sprintf("Aurora Scaling %s: %s", StatusFailed, name)),
			Body:    body.String(),
		}
	}

	status := event.Status
	if status == "" {
		status = StatusCompleted
	}
	status = strings.ToUpper(status)

	var body strings.Builder
	fmt.Fprintf(&body, "Aurora instance scaling %s.\n\n", status)
	fmt.Fprintf(&body, "Execution: %s\n", name)
	fmt.Fprintf(&body, "Status: %s\n", status)
	fmt.Fprintf(&body, "Started at: %s\n", event.StartTime)
	fmt.Fprintf(&body, "Completed at: %s\n\n", endTime)
	body.WriteString("Details:\n")
	if details, err := json.MarshalIndent(eventDetails(event), "", "  "); err == nil {
		body.Write(details)
		body.WriteString("\n")
	}

	return Notification{
		Status:  status,
		Subject: truncate(fmt.Sprintf("Aurora Scaling %s: %s", status, name)),
		Body:    body.String(),
	}
}

// eventDetails prefers the full decoded document over the modeled fields
func eventDetails(event apiv1.NotificationEvent) any {
	if event.Output != nil {
		return event.Output
	}
	return event
}

// formatCause pretty prints a JSON cause, or returns it verbatim
func formatCause(cause string) string {
	if cause == "" {
		return unknownCause
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(cause), "", "  "); err != nil {
		return cause
	}
	return buf.String()
}

func truncate(subject string) string {
	runes := []rune(subject)
	if len(runes) <= MaxSubjectLength {
		return subject
	}
	return string(runes[:MaxSubjectLength])
}

// Publisher sends notifications to a topic
type Publisher struct {
	Notifier controlplane.Notifier
	TopicARN string

	// Now returns the current time, time.Now when nil
	Now func() time.Time

	Metrics *metrics.Metrics
}

// Send composes and publishes the notification of an event
func (p *Publisher) Send(ctx context.Context, event apiv1.NotificationEvent) (apiv1.NotificationResponse, error) {
	contextLogger := log.FromContext(ctx).WithName("notification").WithValues(
		"executionName", event.ExecutionName)

	if p.TopicARN == "" {
		return apiv1.NotificationResponse{}, outcome.NewMissingFieldError("topicArn")
	}

	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	notification := Compose(event, now)

	messageID, err := p.Notifier.Publish(ctx, p.TopicARN, notification.Subject, notification.Body)
	if err != nil {
		return apiv1.NotificationResponse{}, fmt.Errorf("failed to send notification: %w", err)
	}
	p.Metrics.ObserveNotification(notification.Status)
	contextLogger.Info("Notification sent",
		"messageId", messageID,
		"status", notification.Status)

	return apiv1.NotificationResponse{MessageID: messageID, Subject: notification.Subject}, nil
}
