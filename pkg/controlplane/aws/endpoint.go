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
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	smithyendpoints "github.com/aws/smithy-go/endpoints"
)

// defaultResolver is the shape of the generated EndpointResolverV2 of every service
type defaultResolver[P any] interface {
	ResolveEndpoint(ctx context.Context, params P) (smithyendpoints.Endpoint, error)
}

// endpointResolver sends every request of a service to a fixed endpoint
type endpointResolver[P any] struct {
	endpointURL string
	fallback    defaultResolver[P]
}

func newEndpointResolver[P any](endpointURL string, fallback defaultResolver[P]) *endpointResolver[P] {
	return &endpointResolver[P]{endpointURL: endpointURL, fallback: fallback}
}

// ResolveEndpoint implements the service EndpointResolverV2 interface
func (r *endpointResolver[P]) ResolveEndpoint(ctx context.Context, params P) (smithyendpoints.Endpoint, error) {
	if r.endpointURL == "" {
		return r.fallback.ResolveEndpoint(ctx, params)
	}

	parsedURL, err := url.Parse(r.endpointURL)
	if err != nil {
		return smithyendpoints.Endpoint{}, &aws.EndpointNotFoundError{
			Err: fmt.Errorf("failed to parse custom endpoint URL '%s': %w", r.endpointURL, err),
		}
	}

	return smithyendpoints.Endpoint{URI: *parsedURL}, nil
}
