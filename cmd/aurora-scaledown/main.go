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

/*
The aurora-scaledown command resizes the members of an Aurora cluster on a
schedule. Each subcommand is one step of the scaling workflow.
*/
package main

import (
	"context"
	"os"

	"github.com/cloudnative-pg/machinery/pkg/log"
	"github.com/spf13/cobra"

	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin/failover"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin/notify"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin/resize"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin/run"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin/status"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin/topology"
	"github.com/cloudnative-pg/aurora-scaledown/internal/cmd/plugin/trigger"
	"github.com/cloudnative-pg/aurora-scaledown/internal/configuration"
)

func main() {
	rootCmd := newRootCmd()

	cmd, err := rootCmd.ExecuteContextC(context.Background())
	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	plugin.Finish(ctx, cmd, err)
	os.Exit(plugin.ExitCode(err))
}

func newRootCmd() *cobra.Command {
	var sources configuration.Sources
	logFlags := &log.Flags{}

	rootCmd := &cobra.Command{
		Use:           "aurora-scaledown",
		Short:         "Scheduled downsizing of Aurora cluster instances",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logFlags.ConfigureLogging()
			ctx := log.IntoContext(cmd.Context(), log.GetLogger())
			cmd.SetContext(ctx)

			return plugin.SetupPlugin(ctx, sources)
		},
	}

	logFlags.AddFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().StringVar(&sources.File, "config", "",
		"Configuration file, YAML or JSON")
	rootCmd.PersistentFlags().StringVar(&sources.EnvFile, "env-file", "",
		"Environment file to read before the process environment, defaults to .env when present")

	rootCmd.AddGroup(
		&cobra.Group{ID: plugin.GroupIDInstance, Title: "Instance commands:"},
		&cobra.Group{ID: plugin.GroupIDSchedule, Title: "Schedule commands:"},
		&cobra.Group{ID: plugin.GroupIDWorkflow, Title: "Workflow commands:"},
	)

	rootCmd.AddCommand(
		topology.NewCmd(),
		resize.NewCmd(),
		failover.NewCmd(),
		status.NewCmd(),
		trigger.NewCmd(),
		run.NewCmd(),
		notify.NewCmd(),
	)

	return rootCmd
}
