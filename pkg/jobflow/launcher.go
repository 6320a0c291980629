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

package jobflow

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emr"
	"github.com/aws/aws-sdk-go-v2/service/emr/types"
	"github.com/go-logr/logr"

	"github.com/splunk/jobflow/pkg/metrics"
)

const (
	DefaultJobFlowRole = "EMR_EC2_DefaultRole"
	DefaultServiceRole = "EMR_DefaultRole"

	metricsService = "emr"
)

// EMRAPI is the subset of *emr.Client used by the launcher.
type EMRAPI interface {
	RunJobFlow(ctx context.Context, params *emr.RunJobFlowInput, optFns ...func(*emr.Options)) (*emr.RunJobFlowOutput, error)
	DescribeCluster(ctx context.Context, params *emr.DescribeClusterInput, optFns ...func(*emr.Options)) (*emr.DescribeClusterOutput, error)
}

// Roles are the IAM roles the cluster runs under.
type Roles struct {
	JobFlowRole string
	ServiceRole string
}

// DefaultRoles returns the provider's default roles.
func DefaultRoles() Roles {
	return Roles{JobFlowRole: DefaultJobFlowRole, ServiceRole: DefaultServiceRole}
}

// ClusterSpec carries the cluster level settings of a run.
type ClusterSpec struct {
	Name    string
	LogPath string
	Tags    []Tag
	// exactly one of ReleaseLabel and AMIVersion must be set
	ReleaseLabel    string
	AMIVersion      string
	EnableDebugging bool
}

// Launcher submits job flows and polls cluster state.
type Launcher struct {
	EMR     EMRAPI
	Options Options
	Roles   Roles
	Metrics *metrics.Collector
}

// NewLauncher returns a launcher with default roles.
func NewLauncher(client EMRAPI, opts Options, collector *metrics.Collector) *Launcher {
	return &Launcher{
		EMR:     client,
		Options: opts.withDefaults(),
		Roles:   DefaultRoles(),
		Metrics: collector,
	}
}

// Cluster is a handle on a submitted job flow.
type Cluster struct {
	ID       string
	launcher *Launcher
}

// Validate checks the run preconditions without contacting the provider.
func (l *Launcher) Validate(req Request, spec ClusterSpec) error {
	if len(req.instanceGroups) == 0 {
		return ErrNoInstanceGroups
	}
	if len(req.steps) == 0 {
		return ErrNoSteps
	}
	if spec.ReleaseLabel == "" && spec.AMIVersion == "" {
		return ErrNoVersion
	}
	if spec.ReleaseLabel != "" && spec.AMIVersion != "" {
		return ErrConflictingVersion
	}
	return nil
}

func (l *Launcher) roles() Roles {
	roles := l.Roles
	if roles.JobFlowRole == "" {
		roles.JobFlowRole = DefaultJobFlowRole
	}
	if roles.ServiceRole == "" {
		roles.ServiceRole = DefaultServiceRole
	}
	return roles
}

// BuildInput validates req and spec and returns the create-cluster payload.
func (l *Launcher) BuildInput(req Request, spec ClusterSpec) (*emr.RunJobFlowInput, error) {
	if err := l.Validate(req, spec); err != nil {
		return nil, err
	}
	opts := l.Options.withDefaults()
	roles := l.roles()

	steps := req.Steps()
	if spec.EnableDebugging {
		steps = append([]Step{debuggingStep(opts)}, steps...)
	}

	input := &emr.RunJobFlowInput{
		Name:              aws.String(spec.Name),
		LogUri:            aws.String(opts.URIScheme + spec.LogPath),
		Instances:         &types.JobFlowInstancesConfig{InstanceGroups: instanceGroupConfigs(req.instanceGroups)},
		Steps:             stepConfigs(steps),
		BootstrapActions:  bootstrapActionConfigs(req.bootstrapActions),
		VisibleToAllUsers: aws.Bool(true),
		JobFlowRole:       aws.String(roles.JobFlowRole),
		ServiceRole:       aws.String(roles.ServiceRole),
		Tags:              tags(spec.Tags),
	}
	if spec.ReleaseLabel != "" {
		input.ReleaseLabel = aws.String(spec.ReleaseLabel)
	} else {
		input.AmiVersion = aws.String(spec.AMIVersion)
	}
	return input, nil
}

// Run validates and submits the job flow once.
func (l *Launcher) Run(ctx context.Context, req Request, spec ClusterSpec) (*Cluster, error) {
	input, err := l.BuildInput(req, spec)
	if err != nil {
		return nil, err
	}
	log := logr.FromContextOrDiscard(ctx).WithName("jobflow").WithValues("cluster", spec.Name)
	log.V(1).Info("submitting job flow", "steps", len(input.Steps), "instanceGroups", len(input.Instances.InstanceGroups))

	start := time.Now()
	out, err := l.EMR.RunJobFlow(ctx, input)
	l.Metrics.ObserveRequest(metricsService, "RunJobFlow", err, time.Since(start))
	if err != nil {
		log.Error(err, "unable to submit job flow")
		return nil, err
	}

	cluster := &Cluster{ID: aws.ToString(out.JobFlowId), launcher: l}
	log.Info("submitted job flow", "clusterID", cluster.ID)
	return cluster, nil
}

// Cluster returns a handle on an existing cluster.
func (l *Launcher) Cluster(id string) *Cluster {
	return &Cluster{ID: id, launcher: l}
}

// Status reports the current state of the cluster with the given id.
func (l *Launcher) Status(ctx context.Context, id string) (State, error) {
	start := time.Now()
	out, err := l.EMR.DescribeCluster(ctx, &emr.DescribeClusterInput{ClusterId: aws.String(id)})
	l.Metrics.ObserveRequest(metricsService, "DescribeCluster", err, time.Since(start))
	if err != nil {
		return "", err
	}
	var state State
	if out.Cluster != nil && out.Cluster.Status != nil {
		state = State(out.Cluster.Status.State)
	}
	logr.FromContextOrDiscard(ctx).WithName("jobflow").V(1).Info("cluster status", "clusterID", id, "state", string(state))
	return state, nil
}

// Status reports the current state of the cluster.
func (c *Cluster) Status(ctx context.Context) (State, error) {
	return c.launcher.Status(ctx, c.ID)
}

func instanceGroupConfigs(groups []InstanceGroup) []types.InstanceGroupConfig {
	configs := make([]types.InstanceGroupConfig, 0, len(groups))
	for _, group := range groups {
		config := types.InstanceGroupConfig{
			InstanceRole:  group.Role.instanceRoleType(),
			InstanceType:  aws.String(group.InstanceType),
			InstanceCount: aws.Int32(group.Count),
			Market:        group.Market.marketType(),
			BidPrice:      group.BidPrice,
		}
		if group.Name != "" {
			config.Name = aws.String(group.Name)
		}
		configs = append(configs, config)
	}
	return configs
}

func stepConfigs(steps []Step) []types.StepConfig {
	configs := make([]types.StepConfig, 0, len(steps))
	for _, step := range steps {
		configs = append(configs, types.StepConfig{
			Name:            aws.String(step.Name),
			ActionOnFailure: types.ActionOnFailure(step.ActionOnFailure),
			HadoopJarStep: &types.HadoopJarStepConfig{
				Jar:  aws.String(step.Jar),
				Args: step.Args,
			},
		})
	}
	return configs
}

func bootstrapActionConfigs(actions []BootstrapAction) []types.BootstrapActionConfig {
	configs := make([]types.BootstrapActionConfig, 0, len(actions))
	for _, action := range actions {
		configs = append(configs, types.BootstrapActionConfig{
			Name: aws.String(action.Name),
			ScriptBootstrapAction: &types.ScriptBootstrapActionConfig{
				Path: aws.String(action.Path),
				Args: action.Args,
			},
		})
	}
	return configs
}

func tags(in []Tag) []types.Tag {
	out := make([]types.Tag, 0, len(in))
	for _, tag := range in {
		out = append(out, types.Tag{Key: aws.String(tag.Key), Value: aws.String(tag.Value)})
	}
	return out
}
