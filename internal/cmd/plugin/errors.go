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
	"context"
	"strings"

	"github.com/cloudnative-pg/machinery/pkg/log"
	"github.com/spf13/cobra"

	"github.com/cloudnative-pg/aurora-scaledown/pkg/metrics"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
)

const (
	// ExitCodeRetryable is returned when the same request may succeed later
	ExitCodeRetryable = 75

	// ExitCodeFatal is returned for every other failure
	ExitCodeFatal = 1
)

// ErrorEnvelope is the machine readable description of a failure
type ErrorEnvelope struct {
	Verdict      outcome.Verdict `json:"verdict"`
	ErrorType    string          `json:"errorType"`
	ErrorMessage string          `json:"errorMessage"`
}

// NewErrorEnvelope describes err
func NewErrorEnvelope(err error) ErrorEnvelope {
	return ErrorEnvelope{
		Verdict:      outcome.Classify(err),
		ErrorType:    outcome.ErrorType(err),
		ErrorMessage: err.Error(),
	}
}

// ExitCode maps the result of a command to the process exit code
func ExitCode(err error) int {
	switch outcome.Classify(err) {
	case outcome.VerdictSuccess:
		return 0
	case outcome.VerdictRetryableFailure:
		return ExitCodeRetryable
	default:
		return ExitCodeFatal
	}
}

// OperationName returns the metric label of a command, e.g. "schedule-arm"
func OperationName(cmd *cobra.Command) string {
	if cmd == nil {
		return "unknown"
	}
	path := strings.Fields(cmd.CommandPath())
	if len(path) <= 1 {
		return "root"
	}
	return strings.Join(path[1:], "-")
}

// Finish reports the result of the executed command: failures are
// written as an envelope on the error stream and counted, then the
// metrics are pushed when a Pushgateway is configured
func Finish(ctx context.Context, cmd *cobra.Command, err error) {
	contextLogger := log.FromContext(ctx)
	operation := OperationName(cmd)

	if err != nil {
		envelope := NewErrorEnvelope(err)
		Metrics.ObserveFailure(operation, string(envelope.Verdict))
		contextLogger.Error(err, "Command failed",
			"operation", operation,
			"verdict", envelope.Verdict,
			"errorType", envelope.ErrorType)
		if cmd != nil {
			_ = PrintJSON(cmd.ErrOrStderr(), envelope)
		}
	}

	if Config == nil || Config.PushgatewayURL == "" || Registry == nil {
		return
	}
	if pushErr := metrics.Push(ctx, Config.PushgatewayURL, Registry, operation); pushErr != nil {
		contextLogger.Warning("Failed to push metrics", "error", pushErr)
	}
}
