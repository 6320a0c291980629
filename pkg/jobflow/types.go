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
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/emr/types"
	"github.com/pkg/errors"
)

// Role is the cluster role an instance group fulfils.
type Role int

const (
	RoleMaster Role = iota + 1
	RoleCore
	RoleTask
)

// AllRoles lists every recognized role.
var AllRoles = []Role{RoleMaster, RoleCore, RoleTask}

// ParseRole parses MASTER, CORE or TASK. Names are matched exactly.
func ParseRole(value string) (Role, error) {
	for _, role := range AllRoles {
		if value == role.String() {
			return role, nil
		}
	}
	names := make([]string, len(AllRoles))
	for i, role := range AllRoles {
		names[i] = role.String()
	}
	return 0, errors.Wrapf(ErrUnknownRole, "%q: role must be one of: %s", value, strings.Join(names, ","))
}

func (r Role) String() string {
	switch r {
	case RoleMaster:
		return "MASTER"
	case RoleCore:
		return "CORE"
	case RoleTask:
		return "TASK"
	default:
		return "UNKNOWN"
	}
}

func (r Role) instanceRoleType() types.InstanceRoleType {
	switch r {
	case RoleMaster:
		return types.InstanceRoleTypeMaster
	case RoleCore:
		return types.InstanceRoleTypeCore
	case RoleTask:
		return types.InstanceRoleTypeTask
	default:
		return ""
	}
}

// Market is the purchasing option of an instance group.
type Market int

const (
	MarketOnDemand Market = iota
	MarketSpot
)

// ParseMarket parses ON_DEMAND or SPOT (case-insensitive). An empty value is ON_DEMAND.
func ParseMarket(value string) (Market, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "ON_DEMAND", "":
		return MarketOnDemand, nil
	case "SPOT":
		return MarketSpot, nil
	default:
		return 0, errors.Wrapf(ErrUnknownMarket, "%q: market must be one of: ON_DEMAND,SPOT", value)
	}
}

func (m Market) String() string {
	switch m {
	case MarketSpot:
		return "SPOT"
	default:
		return "ON_DEMAND"
	}
}

func (m Market) marketType() types.MarketType {
	switch m {
	case MarketSpot:
		return types.MarketTypeSpot
	default:
		return types.MarketTypeOnDemand
	}
}

// InstanceGroupSpec is the caller's description of one instance group.
type InstanceGroupSpec struct {
	InstanceType string
	Count        int32
	Market       Market
	Name         string
	// BidMultiplier scales the reference spot price, nil uses the lookup default.
	BidMultiplier *float64
}

// InstanceGroup is a resolved instance group ready for submission.
type InstanceGroup struct {
	Role         Role
	InstanceType string
	Count        int32
	Market       Market
	Name         string
	// BidPrice is set for SPOT groups only.
	BidPrice *string
}

// BootstrapAction runs a script on every node before any step.
type BootstrapAction struct {
	Name string
	Path string
	Args []string
}

// Step is one jar invocation in the job flow.
type Step struct {
	Name            string
	ActionOnFailure string
	Jar             string
	Args            []string
}

// StepSpec describes a streaming step and the files it needs staged.
type StepSpec struct {
	Name string
	// InputPaths are object store paths, at least one is required.
	InputPaths []string
	OutputPath string
	// ClearOutput deletes everything under OutputPath before the existence check.
	ClearOutput bool

	MapperPath   string
	MapperLocal  string
	ReducerPath  string
	ReducerLocal string

	// CacheFiles are local files when CacheLocation is set, remote paths otherwise.
	CacheFiles    []string
	CacheLocation string
}

// Tag is attached to the cluster.
type Tag struct {
	Key   string
	Value string
}

// State is the provider reported cluster lifecycle state.
type State string

const (
	StateStarting             State = "STARTING"
	StateBootstrapping        State = "BOOTSTRAPPING"
	StateRunning              State = "RUNNING"
	StateWaiting              State = "WAITING"
	StateTerminating          State = "TERMINATING"
	StateTerminated           State = "TERMINATED"
	StateTerminatedWithErrors State = "TERMINATED_WITH_ERRORS"
)

// IsTerminal reports whether the cluster will not change state again.
func (s State) IsTerminal() bool {
	return s == StateTerminated || s == StateTerminatedWithErrors
}

// IsFailed reports whether the cluster ended in error.
func (s State) IsFailed() bool {
	return s == StateTerminatedWithErrors
}
