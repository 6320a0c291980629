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

import "github.com/pkg/errors"

// Precondition errors. They are returned wrapped with context, match them with errors.Is.
var (
	ErrEmptyInput         = errors.New("input path list is empty")
	ErrOutputExists       = errors.New("output path already exists")
	ErrLocalFileMissing   = errors.New("local file doesn't exist")
	ErrMissingMapper      = errors.New("mapper path and local file are required")
	ErrUnknownRole        = errors.New("unknown role")
	ErrUnknownMarket      = errors.New("unknown market")
	ErrMissingRole        = errors.New("master and core instance groups are required")
	ErrNoBidPrice         = errors.New("no bid price resolved for spot instance group")
	ErrNoInstanceGroups   = errors.New("no instance configurations specified")
	ErrNoSteps            = errors.New("no steps added to the job")
	ErrNoVersion          = errors.New("must specify either release label or ami version")
	ErrConflictingVersion = errors.New("release label and ami version are mutually exclusive")
)
