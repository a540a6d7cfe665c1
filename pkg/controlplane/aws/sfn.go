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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
)

// sfnAPI is the subset of the Step Functions client used here
type sfnAPI interface {
	StartExecution(
		ctx context.Context, params *sfn.StartExecutionInput, optFns ...func(*sfn.Options),
	) (*sfn.StartExecutionOutput, error)
}

// StartExecution implements controlplane.WorkflowAPI
func (c *Client) StartExecution(ctx context.Context, workflowRef, name, input string) (string, error) {
	out, err := c.sfn.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(workflowRef),
		Name:            aws.String(name),
		Input:           aws.String(input),
	})
	if err != nil {
		return "", translateError("StartExecution", resource{kind: "state machine", id: workflowRef}, err)
	}
	return aws.ToString(out.ExecutionArn), nil
}
