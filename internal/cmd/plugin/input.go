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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
)

const inputFlag = "input"

// AddInputFlag adds the --input flag to a command
func AddInputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(inputFlag, "i", "",
		"Request document as inline JSON or YAML, @FILE to read a file, - to read standard input")
}

// ReadRequest decodes the --input document into request. It leaves the
// request untouched when the flag is not set.
func ReadRequest(cmd *cobra.Command, request any) error {
	input, err := cmd.Flags().GetString(inputFlag)
	if err != nil {
		return err
	}

	content, err := readInput(cmd.InOrStdin(), input)
	if err != nil || len(content) == 0 {
		return err
	}

	if err := yaml.Unmarshal(content, request); err != nil {
		return &outcome.ValidationError{Field: inputFlag, Reason: err.Error()}
	}
	return nil
}

func readInput(stdin io.Reader, input string) ([]byte, error) {
	switch {
	case input == "":
		return nil, nil
	case input == "-":
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("while reading request from standard input: %w", err)
		}
		return content, nil
	case strings.HasPrefix(input, "@"):
		content, err := os.ReadFile(strings.TrimPrefix(input, "@")) // #nosec G304
		if err != nil {
			return nil, &outcome.ValidationError{Field: inputFlag, Reason: err.Error()}
		}
		return content, nil
	default:
		return []byte(input), nil
	}
}
