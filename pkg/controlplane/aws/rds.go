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
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	apiv1 "github.com/cloudnative-pg/aurora-scaledown/api/v1"
)

// instanceIDFilter is the DescribeDBInstances filter matching instance ids
const instanceIDFilter = "db-instance-id"

// rdsAPI is the subset of the RDS client used here
type rdsAPI interface {
	rds.DescribeDBInstancesAPIClient
	DescribeDBClusters(
		ctx context.Context, params *rds.DescribeDBClustersInput, optFns ...func(*rds.Options),
	) (*rds.DescribeDBClustersOutput, error)
	ListTagsForResource(
		ctx context.Context, params *rds.ListTagsForResourceInput, optFns ...func(*rds.Options),
	) (*rds.ListTagsForResourceOutput, error)
	ModifyDBInstance(
		ctx context.Context, params *rds.ModifyDBInstanceInput, optFns ...func(*rds.Options),
	) (*rds.ModifyDBInstanceOutput, error)
	FailoverDBCluster(
		ctx context.Context, params *rds.FailoverDBClusterInput, optFns ...func(*rds.Options),
	) (*rds.FailoverDBClusterOutput, error)
}

// DescribeCluster implements controlplane.ClusterAPI
func (c *Client) DescribeCluster(ctx context.Context, clusterID string) ([]apiv1.ClusterMember, error) {
	res := resource{kind: "cluster", id: clusterID}
	out, err := c.rds.DescribeDBClusters(ctx, &rds.DescribeDBClustersInput{
		DBClusterIdentifier: aws.String(clusterID),
	})
	if err != nil {
		return nil, translateError("DescribeDBClusters", res, err)
	}
	if len(out.DBClusters) == 0 {
		return nil, translateError("DescribeDBClusters", res, errClusterNotFound)
	}

	return toClusterMembers(out.DBClusters[0].DBClusterMembers), nil
}

// DescribeInstances implements controlplane.ClusterAPI
func (c *Client) DescribeInstances(ctx context.Context, instanceIDs []string) ([]apiv1.InstanceDescriptor, error) {
	if len(instanceIDs) == 0 {
		return nil, nil
	}

	paginator := rds.NewDescribeDBInstancesPaginator(c.rds, &rds.DescribeDBInstancesInput{
		Filters: []rdstypes.Filter{
			{
				Name:   aws.String(instanceIDFilter),
				Values: instanceIDs,
			},
		},
	})

	result := make([]apiv1.InstanceDescriptor, 0, len(instanceIDs))
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateError("DescribeDBInstances", resource{kind: "instance", id: instanceIDs[0]}, err)
		}
		for _, instance := range page.DBInstances {
			result = append(result, toInstanceDescriptor(instance))
		}
	}

	return result, nil
}

// ListTags implements controlplane.ClusterAPI
func (c *Client) ListTags(ctx context.Context, resourceRef string) (apiv1.TagMap, error) {
	out, err := c.rds.ListTagsForResource(ctx, &rds.ListTagsForResourceInput{
		ResourceName: aws.String(resourceRef),
	})
	if err != nil {
		return nil, translateError("ListTagsForResource", resource{kind: "instance", id: resourceRef}, err)
	}

	tags := make(apiv1.TagMap, len(out.TagList))
	for _, tag := range out.TagList {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return tags, nil
}

// ModifyInstance implements controlplane.ClusterAPI
func (c *Client) ModifyInstance(
	ctx context.Context,
	instanceID, targetClass string,
	applyImmediately bool,
) error {
	_, err := c.rds.ModifyDBInstance(ctx, &rds.ModifyDBInstanceInput{
		DBInstanceIdentifier: aws.String(instanceID),
		DBInstanceClass:      aws.String(targetClass),
		ApplyImmediately:     aws.Bool(applyImmediately),
	})
	return translateError("ModifyDBInstance", resource{kind: "instance", id: instanceID}, err)
}

// FailoverCluster implements controlplane.ClusterAPI
func (c *Client) FailoverCluster(ctx context.Context, clusterID, targetInstanceID string) error {
	_, err := c.rds.FailoverDBCluster(ctx, &rds.FailoverDBClusterInput{
		DBClusterIdentifier:        aws.String(clusterID),
		TargetDBInstanceIdentifier: aws.String(targetInstanceID),
	})
	return translateError("FailoverDBCluster", resource{kind: "cluster", id: clusterID}, err)
}

func toClusterMembers(members []rdstypes.DBClusterMember) []apiv1.ClusterMember {
	result := make([]apiv1.ClusterMember, 0, len(members))
	for _, member := range members {
		result = append(result, apiv1.ClusterMember{
			InstanceID: aws.ToString(member.DBInstanceIdentifier),
			IsWriter:   aws.ToBool(member.IsClusterWriter),
		})
	}
	return result
}

func toInstanceDescriptor(instance rdstypes.DBInstance) apiv1.InstanceDescriptor {
	return apiv1.InstanceDescriptor{
		InstanceID:    aws.ToString(instance.DBInstanceIdentifier),
		Status:        apiv1.InstanceStatus(aws.ToString(instance.DBInstanceStatus)),
		InstanceClass: aws.ToString(instance.DBInstanceClass),
		ResourceRef:   aws.ToString(instance.DBInstanceArn),
	}
}
