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

// Package jobspec loads job definitions from YAML and replays them through a
// jobflow.Builder.
package jobspec

import (
	"context"
	"os"
	"slices"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/splunk/jobflow/pkg/jobflow"
)

// Definition is a complete job: cluster settings, bootstrap actions, steps
// and instance groups.
type Definition struct {
	Name             string            `yaml:"name"`
	LogPath          string            `yaml:"log_path"`
	ReleaseLabel     string            `yaml:"release_label,omitempty"`
	AMIVersion       string            `yaml:"ami_version,omitempty"`
	EnableDebugging  bool              `yaml:"enable_debugging"`
	Tags             map[string]string `yaml:"tags,omitempty"`
	BootstrapActions []BootstrapAction `yaml:"bootstrap_actions,omitempty"`
	InstanceGroups   InstanceGroups    `yaml:"instance_groups"`
	Steps            []Step            `yaml:"steps"`
}

type BootstrapAction struct {
	Name string   `yaml:"name,omitempty"`
	Path string   `yaml:"path"`
	Args []string `yaml:"args,omitempty"`
}

type Script struct {
	Path  string `yaml:"path"`
	Local string `yaml:"local"`
}

type Step struct {
	Name          string   `yaml:"name"`
	Input         []string `yaml:"input"`
	Output        string   `yaml:"output"`
	ClearOutput   bool     `yaml:"clear_output,omitempty"`
	Mapper        Script   `yaml:"mapper"`
	Reducer       *Script  `yaml:"reducer,omitempty"`
	CacheFiles    []string `yaml:"cache_files,omitempty"`
	CacheLocation string   `yaml:"cache_location,omitempty"`
}

type InstanceGroup struct {
	InstanceType  string   `yaml:"instance_type"`
	Count         int32    `yaml:"count"`
	Market        string   `yaml:"market,omitempty"`
	Name          string   `yaml:"name,omitempty"`
	BidMultiplier *float64 `yaml:"bid_multiplier,omitempty"`
}

// InstanceGroups keeps the role keys in document order.
type InstanceGroups struct {
	*orderedmap.OrderedMap[string, InstanceGroup]
}

// UnmarshalYAML decodes a mapping node pair by pair so key order survives.
func (g *InstanceGroups) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: instance_groups must be a mapping", node.Line)
	}
	groups := orderedmap.New[string, InstanceGroup]()
	for i := 0; i+1 < len(node.Content); i += 2 {
		var role string
		if err := node.Content[i].Decode(&role); err != nil {
			return err
		}
		var group InstanceGroup
		if err := node.Content[i+1].Decode(&group); err != nil {
			return errors.Wrapf(err, "instance group %s", role)
		}
		if _, present := groups.Set(role, group); present {
			return errors.Errorf("line %d: instance group %s is defined twice", node.Content[i].Line, role)
		}
	}
	g.OrderedMap = groups
	return nil
}

// Load reads and parses a definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read job definition %s", path)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse job definition %s", path)
	}
	return def, nil
}

// Parse decodes a definition from YAML.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// ClusterSpec returns the cluster level settings. Tags are sorted by key.
func (d *Definition) ClusterSpec() jobflow.ClusterSpec {
	keys := make([]string, 0, len(d.Tags))
	for key := range d.Tags {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	tags := make([]jobflow.Tag, 0, len(keys))
	for _, key := range keys {
		tags = append(tags, jobflow.Tag{Key: key, Value: d.Tags[key]})
	}
	return jobflow.ClusterSpec{
		Name:            d.Name,
		LogPath:         d.LogPath,
		Tags:            tags,
		ReleaseLabel:    d.ReleaseLabel,
		AMIVersion:      d.AMIVersion,
		EnableDebugging: d.EnableDebugging,
	}
}

func (s Step) spec() jobflow.StepSpec {
	spec := jobflow.StepSpec{
		Name:          s.Name,
		InputPaths:    s.Input,
		OutputPath:    s.Output,
		ClearOutput:   s.ClearOutput,
		MapperPath:    s.Mapper.Path,
		MapperLocal:   s.Mapper.Local,
		CacheFiles:    s.CacheFiles,
		CacheLocation: s.CacheLocation,
	}
	if s.Reducer != nil {
		spec.ReducerPath = s.Reducer.Path
		spec.ReducerLocal = s.Reducer.Local
	}
	return spec
}

func (d *Definition) instanceGroupSpecs() (*orderedmap.OrderedMap[string, jobflow.InstanceGroupSpec], error) {
	specs := orderedmap.New[string, jobflow.InstanceGroupSpec]()
	if d.InstanceGroups.OrderedMap == nil {
		return specs, nil
	}
	for pair := d.InstanceGroups.Oldest(); pair != nil; pair = pair.Next() {
		market, err := jobflow.ParseMarket(pair.Value.Market)
		if err != nil {
			return nil, errors.Wrapf(err, "instance group %s", pair.Key)
		}
		specs.Set(pair.Key, jobflow.InstanceGroupSpec{
			InstanceType:  pair.Value.InstanceType,
			Count:         pair.Value.Count,
			Market:        market,
			Name:          pair.Value.Name,
			BidMultiplier: pair.Value.BidMultiplier,
		})
	}
	return specs, nil
}

// Build replays bootstrap actions, then steps, then instance groups through
// the builder and returns the assembled request with its cluster settings.
func (d *Definition) Build(ctx context.Context, builder *jobflow.Builder) (jobflow.Request, jobflow.ClusterSpec, error) {
	req := jobflow.NewRequest()
	for _, action := range d.BootstrapActions {
		req = builder.AddBootstrapAction(req, action.Path, action.Args, action.Name)
	}

	var err error
	for _, step := range d.Steps {
		if req, err = builder.AddJobStep(ctx, req, step.spec()); err != nil {
			return req, jobflow.ClusterSpec{}, err
		}
	}

	groups, err := d.instanceGroupSpecs()
	if err != nil {
		return req, jobflow.ClusterSpec{}, err
	}
	if req, err = builder.AddInstanceGroups(ctx, req, groups); err != nil {
		return req, jobflow.ClusterSpec{}, err
	}
	return req, d.ClusterSpec(), nil
}
