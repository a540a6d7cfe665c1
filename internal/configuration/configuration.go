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

// Package configuration contains the settings of the scaling commands,
// read from an optional YAML file, an optional dotenv file and the
// process environment, in increasing order of precedence
package configuration

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"sigs.k8s.io/yaml"

	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane/aws"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
	"github.com/cloudnative-pg/aurora-scaledown/pkg/schedule"
)

// Environment variable names
const (
	ClusterIdentifierKey      = "CLUSTER_IDENTIFIER"
	TargetClassKey            = "TARGET_CLASS"
	ProjectNameKey            = "PROJECT_NAME"
	EnvironmentKey            = "ENVIRONMENT"
	EventBridgeRuleNameKey    = "EVENTBRIDGE_RULE_NAME"
	StepFunctionARNKey        = "STEP_FUNCTION_ARN"
	SNSTopicARNKey            = "SNS_TOPIC_ARN"
	RegionKey                 = "AWS_REGION"
	ProfileKey                = "AWS_PROFILE"
	EndpointURLKey            = "AWS_ENDPOINT_URL"
	MaxAttemptsKey            = "AWS_MAX_ATTEMPTS"
	ScheduleUTCOffsetHoursKey = "SCHEDULE_UTC_OFFSET_HOURS"
	PushgatewayURLKey         = "PUSHGATEWAY_URL"
)

const (
	// DefaultTargetClass is the class the cluster is scaled down to
	DefaultTargetClass = "db.t4g.medium"

	// DefaultProjectName is the project part of the default rule name
	DefaultProjectName = "aurora-scaledown"

	// DefaultEnvironment is the environment part of the default rule name
	DefaultEnvironment = "dev"
)

// Data is the configuration of the scaling commands
type Data struct {
	ClusterIdentifier      string `json:"clusterIdentifier,omitempty"`
	TargetClass            string `json:"targetClass,omitempty"`
	ProjectName            string `json:"projectName,omitempty"`
	Environment            string `json:"environment,omitempty"`
	EventBridgeRuleName    string `json:"eventBridgeRuleName,omitempty"`
	StepFunctionARN        string `json:"stepFunctionArn,omitempty"`
	SNSTopicARN            string `json:"snsTopicArn,omitempty"`
	Region                 string `json:"region,omitempty"`
	Profile                string `json:"profile,omitempty"`
	EndpointURL            string `json:"endpointUrl,omitempty"`
	MaxAttempts            int    `json:"maxAttempts,omitempty"`
	ScheduleUTCOffsetHours int    `json:"scheduleUtcOffsetHours,omitempty"`
	PushgatewayURL         string `json:"pushgatewayUrl,omitempty"`
}

// LookupFunc reads one environment variable
type LookupFunc func(key string) (string, bool)

// Sources lists where the configuration is read from
type Sources struct {
	// File is an optional YAML or JSON file
	File string

	// EnvFile is an optional dotenv file, ".env" is tried when empty
	EnvFile string

	// Lookup reads the process environment, os.LookupEnv when nil
	Lookup LookupFunc
}

// NewDefaultConfiguration creates the configuration with every default set
func NewDefaultConfiguration() *Data {
	return &Data{
		TargetClass:            DefaultTargetClass,
		ProjectName:            DefaultProjectName,
		Environment:            DefaultEnvironment,
		MaxAttempts:            aws.DefaultMaxAttempts,
		ScheduleUTCOffsetHours: int(schedule.DefaultUTCOffset.Hours()),
	}
}

// Load reads the configuration from its sources
func Load(sources Sources) (*Data, error) {
	data := NewDefaultConfiguration()

	if sources.File != "" {
		content, err := os.ReadFile(sources.File) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("while reading configuration file: %w", err)
		}
		if err := yaml.Unmarshal(content, data); err != nil {
			return nil, fmt.Errorf("while parsing configuration file %s: %w", sources.File, err)
		}
	}

	dotenv, err := readEnvFile(sources.EnvFile)
	if err != nil {
		return nil, err
	}

	lookup := sources.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	merged := func(key string) (string, bool) {
		if value, ok := lookup(key); ok {
			return value, true
		}
		value, ok := dotenv[key]
		return value, ok
	}

	if err := data.readEnvironment(merged); err != nil {
		return nil, err
	}
	return data, nil
}

// readEnvFile reads a dotenv file. A missing default file is not an error.
func readEnvFile(name string) (map[string]string, error) {
	explicit := name != ""
	if !explicit {
		name = ".env"
	}

	values, err := godotenv.Read(name)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("while reading env file %s: %w", name, err)
	}
	return values, nil
}

func (data *Data) readEnvironment(lookup LookupFunc) error {
	textFields := map[string]*string{
		ClusterIdentifierKey:   &data.ClusterIdentifier,
		TargetClassKey:         &data.TargetClass,
		ProjectNameKey:         &data.ProjectName,
		EnvironmentKey:         &data.Environment,
		EventBridgeRuleNameKey: &data.EventBridgeRuleName,
		StepFunctionARNKey:     &data.StepFunctionARN,
		SNSTopicARNKey:         &data.SNSTopicARN,
		RegionKey:              &data.Region,
		ProfileKey:             &data.Profile,
		EndpointURLKey:         &data.EndpointURL,
		PushgatewayURLKey:      &data.PushgatewayURL,
	}
	for key, field := range textFields {
		if value, ok := lookup(key); ok && value != "" {
			*field = value
		}
	}

	intFields := map[string]*int{
		MaxAttemptsKey:            &data.MaxAttempts,
		ScheduleUTCOffsetHoursKey: &data.ScheduleUTCOffsetHours,
	}
	var errs error
	for key, field := range intFields {
		value, ok := lookup(key)
		if !ok || value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			errs = multierr.Append(errs, &outcome.ValidationError{
				Field:  key,
				Reason: fmt.Sprintf("must be an integer, got %q", value),
			})
			continue
		}
		*field = parsed
	}
	return errs
}

// RuleName returns the trigger rule name, derived from the project and
// the environment when not set explicitly
func (data *Data) RuleName() string {
	if data.EventBridgeRuleName != "" {
		return data.EventBridgeRuleName
	}
	return fmt.Sprintf("%s-%s-schedule-scaling", data.ProjectName, data.Environment)
}

// Validate checks the values that are always required to be consistent
func (data *Data) Validate() error {
	var errs error
	if data.MaxAttempts < 1 {
		errs = multierr.Append(errs, &outcome.ValidationError{
			Field:  MaxAttemptsKey,
			Reason: fmt.Sprintf("must be at least 1, got %d", data.MaxAttempts),
		})
	}
	if data.ScheduleUTCOffsetHours < -12 || data.ScheduleUTCOffsetHours > 14 {
		errs = multierr.Append(errs, &outcome.ValidationError{
			Field:  ScheduleUTCOffsetHoursKey,
			Reason: fmt.Sprintf("must be between -12 and 14, got %d", data.ScheduleUTCOffsetHours),
		})
	}
	if data.TargetClass != "" && !strings.HasPrefix(data.TargetClass, "db.") {
		errs = multierr.Append(errs, &outcome.ValidationError{
			Field:  TargetClassKey,
			Reason: fmt.Sprintf("must be an instance class such as %s, got %q", DefaultTargetClass, data.TargetClass),
		})
	}
	return errs
}

// Require checks that the named settings are set, reporting a
// ValidationError for each missing one
func (data *Data) Require(keys ...string) error {
	values := map[string]string{
		ClusterIdentifierKey:   data.ClusterIdentifier,
		TargetClassKey:         data.TargetClass,
		EventBridgeRuleNameKey: data.RuleName(),
		StepFunctionARNKey:     data.StepFunctionARN,
		SNSTopicARNKey:         data.SNSTopicARN,
	}

	var errs error
	for _, key := range keys {
		if values[key] == "" {
			errs = multierr.Append(errs, &outcome.ValidationError{Field: key, Reason: "environment variable is not set"})
		}
	}
	return errs
}

// AWSOptions returns the options of the control plane client
func (data *Data) AWSOptions() aws.Options {
	return aws.Options{
		Region:      data.Region,
		Profile:     data.Profile,
		Endpoint:    data.EndpointURL,
		MaxAttempts: data.MaxAttempts,
	}
}
