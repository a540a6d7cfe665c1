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

// Package metrics contains the Prometheus collectors of the scaling operations
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	namespace = "aurora_scaledown"

	// PushJobName is the Pushgateway job the CLI reports under
	PushJobName = "aurora-scaledown"
)

// Metrics contains all the collectors of the scaling operations.
// Every recording method is a no-op on a nil receiver.
type Metrics struct {
	ResizeOutcomes         *prometheus.CounterVec
	Classifications        *prometheus.CounterVec
	TagLookupFailures      prometheus.Counter
	Failovers              *prometheus.CounterVec
	ScheduleTranslations   *prometheus.CounterVec
	TriggerDisables        *prometheus.CounterVec
	WorkflowStarts         *prometheus.CounterVec
	Notifications          *prometheus.CounterVec
	StatusCheckInstances   *prometheus.GaugeVec
	OperationFailuresTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors
func NewMetrics() *Metrics {
	return &Metrics{
		ResizeOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "resize",
				Name:      "outcomes_total",
				Help:      "Resize invocations by outcome and class change direction",
			},
			[]string{"outcome", "direction"},
		),
		Classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "topology",
				Name:      "classifications_total",
				Help:      "Cluster members classified, by role and by the rule that decided it",
			},
			[]string{"role", "rule"},
		),
		TagLookupFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "topology",
				Name:      "tag_lookup_failures_total",
				Help:      "Tag lookups that failed and fell back to name based classification",
			},
		),
		Failovers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "failover",
				Name:      "requests_total",
				Help:      "Failover requests by result",
			},
			[]string{"result"},
		),
		ScheduleTranslations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "schedule",
				Name:      "translations_total",
				Help:      "Schedule expressions translated, by input form and result",
			},
			[]string{"form", "result"},
		),
		TriggerDisables: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "schedule",
				Name:      "trigger_disables_total",
				Help:      "Auto-disable attempts of one-shot triggers by result",
			},
			[]string{"result"},
		),
		WorkflowStarts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "workflow_starts_total",
				Help:      "Scaling workflow executions started by result",
			},
			[]string{"result"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notification",
				Name:      "published_total",
				Help:      "Notifications published by execution status",
			},
			[]string{"status"},
		),
		StatusCheckInstances: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "status",
				Name:      "instances",
				Help:      "Instances seen by the last status check, by state",
			},
			[]string{"state"},
		),
		OperationFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_failures_total",
				Help:      "Failed operations by operation name and verdict",
			},
			[]string{"operation", "verdict"},
		),
	}
}

// Register registers all metrics with the provided registry
func (m *Metrics) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.ResizeOutcomes,
		m.Classifications,
		m.TagLookupFailures,
		m.Failovers,
		m.ScheduleTranslations,
		m.TriggerDisables,
		m.WorkflowStarts,
		m.Notifications,
		m.StatusCheckInstances,
		m.OperationFailuresTotal,
	}

	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveResize counts one resize outcome
func (m *Metrics) ObserveResize(outcome, direction string) {
	if m == nil {
		return
	}
	m.ResizeOutcomes.WithLabelValues(outcome, direction).Inc()
}

// ObserveClassification counts one classified member
func (m *Metrics) ObserveClassification(role, rule string) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(role, rule).Inc()
}

// ObserveTagLookupFailure counts one failed tag lookup
func (m *Metrics) ObserveTagLookupFailure() {
	if m == nil {
		return
	}
	m.TagLookupFailures.Inc()
}

// ObserveFailover counts one failover request
func (m *Metrics) ObserveFailover(result string) {
	if m == nil {
		return
	}
	m.Failovers.WithLabelValues(result).Inc()
}

// ObserveScheduleTranslation counts one translated schedule
func (m *Metrics) ObserveScheduleTranslation(form, result string) {
	if m == nil {
		return
	}
	m.ScheduleTranslations.WithLabelValues(form, result).Inc()
}

// ObserveTriggerDisable counts one auto-disable attempt
func (m *Metrics) ObserveTriggerDisable(result string) {
	if m == nil {
		return
	}
	m.TriggerDisables.WithLabelValues(result).Inc()
}

// ObserveWorkflowStart counts one workflow start
func (m *Metrics) ObserveWorkflowStart(result string) {
	if m == nil {
		return
	}
	m.WorkflowStarts.WithLabelValues(result).Inc()
}

// ObserveNotification counts one published notification
func (m *Metrics) ObserveNotification(status string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(status).Inc()
}

// SetStatusCheck updates the instance gauges of the last status check
func (m *Metrics) SetStatusCheck(available, notAvailable, notFound int) {
	if m == nil {
		return
	}
	m.StatusCheckInstances.WithLabelValues("available").Set(float64(available))
	m.StatusCheckInstances.WithLabelValues("not_available").Set(float64(notAvailable))
	m.StatusCheckInstances.WithLabelValues("not_found").Set(float64(notFound))
}

// ObserveFailure counts one failed operation
func (m *Metrics) ObserveFailure(operation, verdict string) {
	if m == nil {
		return
	}
	m.OperationFailuresTotal.WithLabelValues(operation, verdict).Inc()
}

// Push sends the content of the gatherer to a Pushgateway
func Push(ctx context.Context, url string, gatherer prometheus.Gatherer, operation string) error {
	err := push.New(url, PushJobName).
		Gatherer(gatherer).
		Grouping("operation", operation).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("while pushing metrics to %s: %w", url, err)
	}
	return nil
}
