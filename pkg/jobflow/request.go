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

import "slices"

// Request accumulates the parts of a create-cluster call. It is a value:
// every builder operation returns an updated copy and leaves its input as it was.
type Request struct {
	steps            []Step
	instanceGroups   []InstanceGroup
	bootstrapActions []BootstrapAction
}

// NewRequest returns an empty request.
func NewRequest() Request {
	return Request{}
}

// Steps returns the user steps in append order.
func (r Request) Steps() []Step {
	out := make([]Step, len(r.steps))
	for i, step := range r.steps {
		step.Args = slices.Clone(step.Args)
		out[i] = step
	}
	return out
}

// InstanceGroups returns the instance groups in append order.
func (r Request) InstanceGroups() []InstanceGroup {
	return slices.Clone(r.instanceGroups)
}

// BootstrapActions returns the bootstrap actions in append order.
func (r Request) BootstrapActions() []BootstrapAction {
	out := make([]BootstrapAction, len(r.bootstrapActions))
	for i, action := range r.bootstrapActions {
		action.Args = slices.Clone(action.Args)
		out[i] = action
	}
	return out
}

// WithStep returns a copy of r with step appended.
func (r Request) WithStep(step Step) Request {
	step.Args = slices.Clone(step.Args)
	r.steps = append(slices.Clip(r.steps), step)
	return r
}

// WithInstanceGroups returns a copy of r with groups appended.
func (r Request) WithInstanceGroups(groups ...InstanceGroup) Request {
	r.instanceGroups = append(slices.Clip(r.instanceGroups), groups...)
	return r
}

// WithBootstrapAction returns a copy of r with action appended.
func (r Request) WithBootstrapAction(action BootstrapAction) Request {
	action.Args = slices.Clone(action.Args)
	r.bootstrapActions = append(slices.Clip(r.bootstrapActions), action)
	return r
}
