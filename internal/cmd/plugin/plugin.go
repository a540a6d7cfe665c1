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

// Package plugin contains the state and the helpers shared by the
// scaling subcommands
package plugin

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cloudnative-pg/aurora-scaledown/internal/configuration"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane/aws"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/metrics"
)

var (
	// Config is the loaded configuration
	Config *configuration.Data

	// ControlPlane is the client every subcommand talks to
	ControlPlane controlplane.Interface

	// Metrics are the collectors of the running command
	Metrics *metrics.Metrics

	// Registry gathers Metrics for the Pushgateway
	Registry *prometheus.Registry

	// NewControlPlane builds ControlPlane when it is not already set
	NewControlPlane = func(ctx context.Context, opts aws.Options) (controlplane.Interface, error) {
		return aws.NewClient(ctx, opts)
	}
)

const (
	// GroupIDInstance groups the commands acting on cluster members
	GroupIDInstance = "instance"

	// GroupIDSchedule groups the commands managing the trigger
	GroupIDSchedule = "schedule"

	// GroupIDWorkflow groups the commands run by the workflow engine
	GroupIDWorkflow = "workflow"
)

// SetupPlugin loads the configuration and builds the shared clients
func SetupPlugin(ctx context.Context, sources configuration.Sources) error {
	cfg, err := configuration.Load(sources)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	Config = cfg

	Metrics = metrics.NewMetrics()
	Registry = prometheus.NewRegistry()
	if err := Metrics.Register(Registry); err != nil {
		return fmt.Errorf("while registering metrics: %w", err)
	}

	if ControlPlane == nil {
		ControlPlane, err = NewControlPlane(ctx, Config.AWSOptions())
		if err != nil {
			return err
		}
	}
	return nil
}

// RequiresArguments returns a positional argument checker requiring
// exactly nArgs arguments
func RequiresArguments(nArgs int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < nArgs {
			return fmt.Errorf("missing arguments")
		}
		if len(args) > nArgs {
			return fmt.Errorf("too many arguments")
		}
		return nil
	}
}

// AtMostArguments returns a positional argument checker accepting up to
// nArgs arguments
func AtMostArguments(nArgs int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) > nArgs {
			return fmt.Errorf("too many arguments")
		}
		return nil
	}
}
