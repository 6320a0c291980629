// Copyright (c) 2018-2026 Splunk Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package test

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emr"
	"github.com/aws/aws-sdk-go-v2/service/emr/types"
)

// MockEMRClient records RunJobFlow requests and replays cluster states
type MockEMRClient struct {
	ClusterID string
	// States are returned by successive DescribeCluster calls, the last one repeats
	States []types.ClusterState

	RunJobFlowInputs      []*emr.RunJobFlowInput
	DescribeClusterInputs []*emr.DescribeClusterInput

	RunJobFlowErr      error
	DescribeClusterErr error
}

// RunJobFlow is a mock call to RunJobFlow
func (m *MockEMRClient) RunJobFlow(ctx context.Context, params *emr.RunJobFlowInput, optFns ...func(*emr.Options)) (*emr.RunJobFlowOutput, error) {
	m.RunJobFlowInputs = append(m.RunJobFlowInputs, params)
	if m.RunJobFlowErr != nil {
		return nil, m.RunJobFlowErr
	}
	id := m.ClusterID
	if id == "" {
		id = "j-MOCKCLUSTER"
	}
	return &emr.RunJobFlowOutput{JobFlowId: aws.String(id)}, nil
}

// DescribeCluster is a mock call to DescribeCluster
func (m *MockEMRClient) DescribeCluster(ctx context.Context, params *emr.DescribeClusterInput, optFns ...func(*emr.Options)) (*emr.DescribeClusterOutput, error) {
	m.DescribeClusterInputs = append(m.DescribeClusterInputs, params)
	if m.DescribeClusterErr != nil {
		return nil, m.DescribeClusterErr
	}
	state := types.ClusterStateStarting
	if n := len(m.States); n > 0 {
		idx := len(m.DescribeClusterInputs) - 1
		if idx >= n {
			idx = n - 1
		}
		state = m.States[idx]
	}
	return &emr.DescribeClusterOutput{
		Cluster: &types.Cluster{
			Id:     params.ClusterId,
			Status: &types.ClusterStatus{State: state},
		},
	}, nil
}
