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
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
)

// eventBridgeAPI is the subset of the EventBridge client used here
type eventBridgeAPI interface {
	PutRule(
		ctx context.Context, params *eventbridge.PutRuleInput, optFns ...func(*eventbridge.Options),
	) (*eventbridge.PutRuleOutput, error)
	DescribeRule(
		ctx context.Context, params *eventbridge.DescribeRuleInput, optFns ...func(*eventbridge.Options),
	) (*eventbridge.DescribeRuleOutput, error)
	ListTargetsByRule(
		ctx context.Context, params *eventbridge.ListTargetsByRuleInput, optFns ...func(*eventbridge.Options),
	) (*eventbridge.ListTargetsByRuleOutput, error)
	PutTargets(
		ctx context.Context, params *eventbridge.PutTargetsInput, optFns ...func(*eventbridge.Options),
	) (*eventbridge.PutTargetsOutput, error)
}

// PutTriggerRule implements controlplane.TriggerAPI
func (c *Client) PutTriggerRule(ctx context.Context, rule apiv1.TriggerRule) error {
	state := ebtypes.RuleStateDisabled
	if rule.Enabled {
		state = ebtypes.RuleStateEnabled
	}

	_, err := c.eventbridge.PutRule(ctx, &eventbridge.PutRuleInput{
		Name:               aws.String(rule.Name),
		ScheduleExpression: aws.String(rule.Expression),
		State:              state,
		Description:        aws.String(rule.Description),
	})
	return translateError("PutRule", resource{kind: "trigger rule", id: rule.Name}, err)
}

// DescribeTriggerRule implements controlplane.TriggerAPI
func (c *Client) DescribeTriggerRule(ctx context.Context, name string) (apiv1.TriggerRule, error) {
	out, err := c.eventbridge.DescribeRule(ctx, &eventbridge.DescribeRuleInput{
		Name: aws.String(name),
	})
	if err != nil {
		return apiv1.TriggerRule{}, translateError("DescribeRule", resource{kind: "trigger rule", id: name}, err)
	}

	return apiv1.TriggerRule{
		Name:        name,
		Expression:  aws.ToString(out.ScheduleExpression),
		Enabled:     out.State == ebtypes.RuleStateEnabled,
		Description: aws.ToString(out.Description),
	}, nil
}

// ListTriggerTargets implements controlplane.TriggerAPI
func (c *Client) ListTriggerTargets(ctx context.Context, ruleName string) ([]apiv1.TriggerTarget, error) {
	var (
		result    []apiv1.TriggerTarget
		nextToken *string
	)

	for {
		out, err := c.eventbridge.ListTargetsByRule(ctx, &eventbridge.ListTargetsByRuleInput{
			Rule:      aws.String(ruleName),
			NextToken: nextToken,
		})
		if err != nil {
			return nil, translateError("ListTargetsByRule", resource{kind: "trigger rule", id: ruleName}, err)
		}

		for _, target := range out.Targets {
			result = append(result, apiv1.TriggerTarget{
				ID:    aws.ToString(target.Id),
				ARN:   aws.ToString(target.Arn),
				Input: aws.ToString(target.Input),
			})
		}

		nextToken = out.NextToken
		if aws.ToString(nextToken) == "" {
			return result, nil
		}
	}
}

// PutTriggerTargets implements controlplane.TriggerAPI
func (c *Client) PutTriggerTargets(ctx context.Context, ruleName string, targets []apiv1.TriggerTarget) error {
	input := &eventbridge.PutTargetsInput{
		Rule:    aws.String(ruleName),
		Targets: make([]ebtypes.Target, 0, len(targets)),
	}
	for _, target := range targets {
		input.Targets = append(input.Targets, ebtypes.Target{
			Id:    aws.String(target.ID),
			Arn:   aws.String(target.ARN),
			Input: aws.String(target.Input),
		})
	}

	out, err := c.eventbridge.PutTargets(ctx, input)
	if err != nil {
		return translateError("PutTargets", resource{kind: "trigger rule", id: ruleName}, err)
	}
	if len(out.FailedEntries) > 0 {
		failed := out.FailedEntries[0]
		return fmt.Errorf("PutTargets %s: target %s rejected: %s: %s",
			ruleName,
			aws.ToString(failed.TargetId),
			aws.ToString(failed.ErrorCode),
			aws.ToString(failed.ErrorMessage))
	}
	return nil
}
