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

package jobspec

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splunk/jobflow/pkg/jobflow"
	"github.com/splunk/jobflow/pkg/objectstore"
	spltest "github.com/splunk/jobflow/pkg/test"
)

const sampleDefinition = `
name: My Job
log_path: bucket/emr-logs/
release_label: emr-5.0.0
enable_debugging: true
tags:
  team: ds
  env: dev
bootstrap_actions:
  - path: bucket/bootstrap/install.sh
    args: [numpy]
instance_groups:
  CORE:   {instance_type: r3.xlarge, count: 2, name: Worker Nodes}
  MASTER: {instance_type: m1.medium, count: 1, market: ON_DEMAND, name: Main Nodes}
  TASK:   {instance_type: r3.xlarge, count: 4, market: SPOT, bid_multiplier: 1.3}
steps:
  - name: count words
    input: [bucket/in]
    output: bucket/out
    mapper: {path: bucket/code/mapper.py, local: MAPPER}
`

type fixedPrices struct{}

func (fixedPrices) BidPrice(ctx context.Context, market, instanceType string, multiplier *float64) (*string, error) {
	if market != "SPOT" {
		return nil, nil
	}
	bid := "0.13"
	return &bid, nil
}

func TestParseKeepsInstanceGroupOrder(t *testing.T) {
	def, err := Parse([]byte(sampleDefinition))
	require.NoError(t, err)

	var roles []string
	for pair := def.InstanceGroups.Oldest(); pair != nil; pair = pair.Next() {
		roles = append(roles, pair.Key)
	}
	assert.Equal(t, []string{"CORE", "MASTER", "TASK"}, roles)

	task, ok := def.InstanceGroups.Get("TASK")
	require.True(t, ok)
	require.NotNil(t, task.BidMultiplier)
	assert.Equal(t, 1.3, *task.BidMultiplier)
	assert.Equal(t, int32(4), task.Count)
}

func TestParseRejectsNonMappingGroups(t *testing.T) {
	_, err := Parse([]byte("instance_groups: [MASTER, CORE]\n"))
	assert.Error(t, err)
}

func TestClusterSpecSortsTags(t *testing.T) {
	def, err := Parse([]byte(sampleDefinition))
	require.NoError(t, err)

	spec := def.ClusterSpec()
	assert.Equal(t, []jobflow.Tag{{Key: "env", Value: "dev"}, {Key: "team", Value: "ds"}}, spec.Tags)
	assert.Equal(t, "emr-5.0.0", spec.ReleaseLabel)
	assert.True(t, spec.EnableDebugging)
}

func TestLoadAndBuild(t *testing.T) {
	dir := t.TempDir()
	mapper := filepath.Join(dir, "mapper.py")
	require.NoError(t, os.WriteFile(mapper, []byte("print 1"), 0o644))

	path := filepath.Join(dir, "job.yaml")
	content := []byte(strings.ReplaceAll(sampleDefinition, "MAPPER", mapper))
	require.NoError(t, os.WriteFile(path, content, 0o644))

	def, err := Load(path)
	require.NoError(t, err)

	store := spltest.NewMockObjectStore()
	builder := jobflow.NewBuilder(objectstore.NewClient(objectstore.ProviderS3, store, nil), fixedPrices{}, jobflow.Options{})
	req, spec, err := def.Build(context.Background(), builder)
	require.NoError(t, err)

	assert.Equal(t, "My Job", spec.Name)
	require.Len(t, req.BootstrapActions(), 1)
	assert.Equal(t, "s3://bucket/bootstrap/install.sh", req.BootstrapActions()[0].Path)
	assert.Equal(t, jobflow.DefaultBootstrapTitle, req.BootstrapActions()[0].Name)

	require.Len(t, req.Steps(), 1)
	assert.Equal(t, "count words", req.Steps()[0].Name)
	assert.Equal(t, []string{"bucket/code/mapper.py"}, store.UploadedPaths())

	groups := req.InstanceGroups()
	require.Len(t, groups, 3)
	assert.Equal(t, jobflow.RoleCore, groups[0].Role)
	assert.Equal(t, jobflow.RoleMaster, groups[1].Role)
	assert.Equal(t, jobflow.MarketSpot, groups[2].Market)
	require.NotNil(t, groups[2].BidPrice)
	assert.Equal(t, "0.13", *groups[2].BidPrice)
}

func TestBuildRejectsUnknownMarket(t *testing.T) {
	def, err := Parse([]byte(`
instance_groups:
  MASTER: {instance_type: m1.medium, count: 1, market: RESERVED}
  CORE: {instance_type: m1.medium, count: 1}
`))
	require.NoError(t, err)

	builder := jobflow.NewBuilder(objectstore.NewClient(objectstore.ProviderS3, spltest.NewMockObjectStore(), nil), fixedPrices{}, jobflow.Options{})
	_, _, err = def.Build(context.Background(), builder)
	assert.ErrorIs(t, err, jobflow.ErrUnknownMarket)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
