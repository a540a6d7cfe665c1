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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
)

// OutputFormat is the format of the command output
type OutputFormat string

const (
	// OutputFormatText is the human readable output
	OutputFormatText OutputFormat = "text"

	// OutputFormatJSON is the machine readable output
	OutputFormatJSON OutputFormat = "json"
)

const outputFlag = "output"

// AddOutputFlag adds the --output flag to a command
func AddOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(
		outputFlag, "o", string(OutputFormatText), "Output format. One of text|json")
}

// GetOutputFormat reads and checks the --output flag
func GetOutputFormat(cmd *cobra.Command) (OutputFormat, error) {
	output, err := cmd.Flags().GetString(outputFlag)
	if err != nil {
		return "", err
	}

	switch format := OutputFormat(output); format {
	case OutputFormatText, OutputFormatJSON:
		return format, nil
	default:
		return "", &outcome.ValidationError{
			Field:  outputFlag,
			Reason: fmt.Sprintf("unknown format %q, expected text or json", output),
		}
	}
}

// Print writes value in the requested format, using printText for text
func Print(w io.Writer, format OutputFormat, value any, printText func(io.Writer)) error {
	if format == OutputFormatJSON || printText == nil {
		return PrintJSON(w, value)
	}
	printText(w)
	return nil
}

// PrintJSON writes value as indented JSON
func PrintJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
