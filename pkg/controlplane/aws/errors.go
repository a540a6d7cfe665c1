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
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/cloudnative-pg/aurora-scaledown/pkg/outcome"
)

// resource identifies what a failed call was about
type resource struct {
	kind string
	id   string
}

// translateError maps AWS API errors to the outcome taxonomy. Errors
// without a known code are wrapped with the operation name.
func translateError(operation string, res resource, err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s %s: %w", operation, res.id, err)
	}

	switch apiErr.ErrorCode() {
	case "DBClusterNotFoundFault":
		return &outcome.NotFoundError{Kind: "cluster", ID: res.id}

	case "DBInstanceNotFound", "DBInstanceNotFoundFault":
		return &outcome.NotFoundError{Kind: "instance", ID: res.id}

	case "ResourceNotFoundException", "NotFound":
		return &outcome.NotFoundError{Kind: res.kind, ID: res.id}

	case "InvalidDBInstanceState", "InvalidDBInstanceStateFault",
		"InvalidDBClusterStateFault":
		return &outcome.RetryableStateError{InstanceID: res.id, Status: apiErr.ErrorMessage()}

	case "Throttling", "ThrottlingException", "TooManyRequestsException",
		"RequestLimitExceeded", "ServiceUnavailable":
		return &outcome.TransientError{Operation: operation, Err: err}

	default:
		return fmt.Errorf("%s %s: %w", operation, res.id, err)
	}
}

// errClusterNotFound stands for an empty DescribeDBClusters answer
var errClusterNotFound = &smithy.GenericAPIError{
	Code:    "DBClusterNotFoundFault",
	Message: "cluster not returned by DescribeDBClusters",
}
