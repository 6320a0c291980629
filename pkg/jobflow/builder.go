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
	"iter"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/splunk/jobflow/pkg/objectstore"
)

const (
	DefaultURIScheme       = "s3n://"
	DefaultBootstrapScheme = "s3://"
	DefaultInterpreter     = "python2.7"
	DefaultStepJar         = "command-runner.jar"
	DefaultActionOnFailure = "TERMINATE_JOB_FLOW"
	DefaultBootstrapTitle  = "Bootstrap Actions"
	DebuggingStepName      = "Setup Hadoop Debugging"

	debuggingStepScript = "state-pusher-script"
	streamingCommand    = "hadoop-streaming"
)

// ObjectStore is the object store surface the builder stages files through.
type ObjectStore interface {
	Upload(ctx context.Context, path string, localPath string) error
	Keys(ctx context.Context, prefix string) iter.Seq2[string, error]
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// PriceLookup resolves spot bid prices.
type PriceLookup interface {
	BidPrice(ctx context.Context, market, instanceType string, multiplier *float64) (*string, error)
}

// Options are the fixed strings embedded into generated steps and paths.
type Options struct {
	// URIScheme prefixes input, output, staged file and log paths
	URIScheme string
	// BootstrapScheme prefixes bootstrap script paths
	BootstrapScheme string
	// Interpreter runs the mapper and reducer scripts
	Interpreter     string
	StepJar         string
	ActionOnFailure string
}

// DefaultOptions returns the options used when a field is left empty.
func DefaultOptions() Options {
	return Options{
		URIScheme:       DefaultURIScheme,
		BootstrapScheme: DefaultBootstrapScheme,
		Interpreter:     DefaultInterpreter,
		StepJar:         DefaultStepJar,
		ActionOnFailure: DefaultActionOnFailure,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.URIScheme == "" {
		o.URIScheme = defaults.URIScheme
	}
	if o.BootstrapScheme == "" {
		o.BootstrapScheme = defaults.BootstrapScheme
	}
	if o.Interpreter == "" {
		o.Interpreter = defaults.Interpreter
	}
	if o.StepJar == "" {
		o.StepJar = defaults.StepJar
	}
	if o.ActionOnFailure == "" {
		o.ActionOnFailure = defaults.ActionOnFailure
	}
	return o
}

// Builder turns caller specs into request parts, staging files as it goes.
type Builder struct {
	Store   ObjectStore
	Prices  PriceLookup
	Options Options
}

// NewBuilder returns a builder, empty option fields take their defaults.
func NewBuilder(store ObjectStore, prices PriceLookup, opts Options) *Builder {
	return &Builder{Store: store, Prices: prices, Options: opts.withDefaults()}
}

func (b *Builder) opts() Options {
	return b.Options.withDefaults()
}

func (b *Builder) uri(path string) string {
	return b.opts().URIScheme + path
}

// InputURI joins one or more input paths into a comma separated URI list.
func (b *Builder) InputURI(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", ErrEmptyInput
	}
	uris := make([]string, 0, len(paths))
	for _, path := range paths {
		uris = append(uris, b.uri(path))
	}
	return strings.Join(uris, ","), nil
}

// SetOutputPath checks that nothing exists under path, deleting what is
// there first when clearExisting is set, and returns the output URI.
// path is treated as a directory: clearing bucket/out leaves bucket/outside.txt.
func (b *Builder) SetOutputPath(ctx context.Context, path string, clearExisting bool) (string, error) {
	prefix := outputPrefix(path)
	if clearExisting {
		if _, err := b.Store.DeletePrefix(ctx, prefix); err != nil {
			return "", err
		}
	}
	for _, err := range b.Store.Keys(ctx, prefix) {
		if err != nil {
			return "", err
		}
		return "", errors.Wrapf(ErrOutputExists, "%s", path)
	}
	return b.uri(path), nil
}

// outputPrefix scopes path to its own subtree. A bare bucket is left as is.
func outputPrefix(path string) string {
	if strings.HasSuffix(path, "/") || !strings.Contains(path, "/") {
		return path
	}
	return path + "/"
}

// AddBootstrapAction appends a bootstrap script. An empty name uses the default title.
func (b *Builder) AddBootstrapAction(req Request, path string, args []string, name string) Request {
	if name == "" {
		name = DefaultBootstrapTitle
	}
	return req.WithBootstrapAction(BootstrapAction{
		Name: name,
		Path: b.opts().BootstrapScheme + path,
		Args: args,
	})
}

// StageFile uploads localPath to remotePath and returns the remote URI.
func (b *Builder) StageFile(ctx context.Context, remotePath, localPath string) (string, error) {
	if _, err := os.Stat(localPath); err != nil {
		return "", errors.Wrapf(ErrLocalFileMissing, "%s", localPath)
	}
	if err := b.Store.Upload(ctx, remotePath, localPath); err != nil {
		return "", err
	}
	return b.uri(remotePath), nil
}

func cacheEntry(uri, name string) string {
	return uri + "#" + name
}

func (b *Builder) stageCacheFiles(ctx context.Context, spec StepSpec) ([]string, error) {
	files := make([]string, 0, len(spec.CacheFiles))
	for _, file := range spec.CacheFiles {
		name := objectstore.BaseName(file)
		if spec.CacheLocation == "" {
			files = append(files, cacheEntry(b.uri(file), name))
			continue
		}
		remote := objectstore.ParsePath(spec.CacheLocation).Join(name).String()
		uri, err := b.StageFile(ctx, remote, file)
		if err != nil {
			return nil, err
		}
		files = append(files, cacheEntry(uri, name))
	}
	return files, nil
}

// AddJobStep stages the step's files and appends a streaming step. Files
// staged before a failure stay uploaded.
func (b *Builder) AddJobStep(ctx context.Context, req Request, spec StepSpec) (Request, error) {
	log := logr.FromContextOrDiscard(ctx).WithName("jobflow").WithValues("step", spec.Name)
	opts := b.opts()

	if spec.MapperPath == "" || spec.MapperLocal == "" {
		return req, errors.Wrapf(ErrMissingMapper, "step %q", spec.Name)
	}

	files, err := b.stageCacheFiles(ctx, spec)
	if err != nil {
		return req, err
	}
	input, err := b.InputURI(spec.InputPaths)
	if err != nil {
		return req, errors.Wrapf(err, "step %q", spec.Name)
	}
	output, err := b.SetOutputPath(ctx, spec.OutputPath, spec.ClearOutput)
	if err != nil {
		return req, err
	}

	mapperURI, err := b.StageFile(ctx, spec.MapperPath, spec.MapperLocal)
	if err != nil {
		return req, err
	}
	mapperName := objectstore.BaseName(spec.MapperLocal)
	files = append(files, cacheEntry(mapperURI, mapperName))

	reducerName := ""
	if spec.ReducerPath != "" && spec.ReducerLocal != "" {
		reducerURI, err := b.StageFile(ctx, spec.ReducerPath, spec.ReducerLocal)
		if err != nil {
			return req, err
		}
		reducerName = objectstore.BaseName(spec.ReducerLocal)
		files = append(files, cacheEntry(reducerURI, reducerName))
	}

	args := []string{
		streamingCommand,
		"-files", strings.Join(files, ","),
		"-mapper", opts.Interpreter + " " + mapperName,
		"-input", input,
		"-output", output,
	}
	if reducerName != "" {
		args = append(args, "-reducer", opts.Interpreter+" "+reducerName)
	}

	log.Info("added job step", "input", input, "output", output, "files", len(files))
	return req.WithStep(Step{
		Name:            spec.Name,
		ActionOnFailure: opts.ActionOnFailure,
		Jar:             opts.StepJar,
		Args:            args,
	}), nil
}

// DebuggingStep is the fixed step that enables the debugging console.
func (b *Builder) DebuggingStep() Step {
	return debuggingStep(b.opts())
}

func debuggingStep(opts Options) Step {
	return Step{
		Name:            DebuggingStepName,
		ActionOnFailure: DefaultActionOnFailure,
		Jar:             opts.StepJar,
		Args:            []string{debuggingStepScript},
	}
}

// AddInstanceGroups validates the role map and appends one resolved group per
// entry, in map order. All roles are validated before any price is fetched.
func (b *Builder) AddInstanceGroups(ctx context.Context, req Request, groups *orderedmap.OrderedMap[string, InstanceGroupSpec]) (Request, error) {
	if groups == nil {
		return req, ErrMissingRole
	}

	roles := make([]Role, 0, groups.Len())
	seen := map[Role]bool{}
	for pair := groups.Oldest(); pair != nil; pair = pair.Next() {
		role, err := ParseRole(pair.Key)
		if err != nil {
			return req, err
		}
		seen[role] = true
		roles = append(roles, role)
	}
	if !seen[RoleMaster] || !seen[RoleCore] {
		return req, ErrMissingRole
	}

	log := logr.FromContextOrDiscard(ctx).WithName("jobflow")
	resolved := make([]InstanceGroup, 0, len(roles))
	idx := 0
	for pair := groups.Oldest(); pair != nil; pair = pair.Next() {
		role, spec := roles[idx], pair.Value
		idx++

		group := InstanceGroup{
			Role:         role,
			InstanceType: spec.InstanceType,
			Count:        spec.Count,
			Market:       spec.Market,
			Name:         spec.Name,
		}
		if spec.Market == MarketSpot {
			bid, err := b.Prices.BidPrice(ctx, spec.Market.String(), spec.InstanceType, spec.BidMultiplier)
			if err != nil {
				return req, err
			}
			if bid == nil {
				return req, errors.Wrapf(ErrNoBidPrice, "%s %s", role, spec.InstanceType)
			}
			group.BidPrice = bid
			log.Info("resolved bid price", "role", role.String(), "instanceType", spec.InstanceType, "bidPrice", *bid)
		}
		resolved = append(resolved, group)
	}
	return req.WithInstanceGroups(resolved...), nil
}
