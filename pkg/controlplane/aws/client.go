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

package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/cloudnative-pg/machinery/pkg/log"

	"github.com/cloudnative-pg/aurora-scaledown/pkg/controlplane"
)

// DefaultMaxAttempts is the number of attempts of the standard retryer,
// which retries throttling and transport errors with backoff
const DefaultMaxAttempts = 5

// Options configures the connection to AWS
type Options struct {
	// Region overrides the region from the shared configuration
	Region string

	// Profile selects a shared configuration profile
	Profile string

	// Endpoint overrides the endpoint of every service, e.g. for LocalStack
	Endpoint string

	// MaxAttempts bounds the SDK retries, DefaultMaxAttempts when zero
	MaxAttempts int
}

// Client implements controlplane.Interface
type Client struct {
	rds         rdsAPI
	eventbridge eventBridgeAPI
	sfn         sfnAPI
	sns         snsAPI
}

var _ controlplane.Interface = (*Client)(nil)

// NewClient loads the AWS configuration and builds the service clients
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	contextLogger := log.FromContext(ctx).WithName("aws")

	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	cfgOptions := []func(*config.LoadOptions) error{
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), maxAttempts)
		}),
	}
	if opts.Profile != "" {
		cfgOptions = append(cfgOptions, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		cfgOptions = append(cfgOptions, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, cfgOptions...)
	if err != nil {
		return nil, fmt.Errorf("while loading AWS SDK configuration: %w", err)
	}

	var (
		rdsOptions         []func(*rds.Options)
		eventBridgeOptions []func(*eventbridge.Options)
		sfnOptions         []func(*sfn.Options)
		snsOptions         []func(*sns.Options)
	)
	if opts.Endpoint != "" {
		rdsOptions = append(rdsOptions, rds.WithEndpointResolverV2(
			newEndpointResolver[rds.EndpointParameters](opts.Endpoint, rds.NewDefaultEndpointResolverV2())))
		eventBridgeOptions = append(eventBridgeOptions, eventbridge.WithEndpointResolverV2(
			newEndpointResolver[eventbridge.EndpointParameters](opts.Endpoint, eventbridge.NewDefaultEndpointResolverV2())))
		sfnOptions = append(sfnOptions, sfn.WithEndpointResolverV2(
			newEndpointResolver[sfn.EndpointParameters](opts.Endpoint, sfn.NewDefaultEndpointResolverV2())))
		snsOptions = append(snsOptions, sns.WithEndpointResolverV2(
			newEndpointResolver[sns.EndpointParameters](opts.Endpoint, sns.NewDefaultEndpointResolverV2())))
	}

	contextLogger.Debug("AWS clients configured",
		"region", cfg.Region,
		"profile", opts.Profile,
		"endpoint", opts.Endpoint,
		"maxAttempts", maxAttempts)

	return &Client{
		rds:         rds.NewFromConfig(cfg, rdsOptions...),
		eventbridge: eventbridge.NewFromConfig(cfg, eventBridgeOptions...),
		sfn:         sfn.NewFromConfig(cfg, sfnOptions...),
		sns:         sns.NewFromConfig(cfg, snsOptions...),
	}, nil
}
