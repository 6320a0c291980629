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

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/splunk/jobflow/pkg/jobflow"
	"github.com/splunk/jobflow/pkg/jobspec"
	"github.com/splunk/jobflow/pkg/objectstore"
)

const (
	runIDTag            = "jobflow:run-id"
	defaultPollInterval = 30 * time.Second
)

// statusReader is satisfied by *jobflow.Cluster.
type statusReader interface {
	Status(ctx context.Context) (jobflow.State, error)
}

func (a *app) launcher(ctx context.Context) (*jobflow.Launcher, error) {
	client, err := a.openEMR(ctx)
	if err != nil {
		return nil, err
	}
	launcher := jobflow.NewLauncher(client, a.cfg.BuilderOptions(), a.metrics)
	launcher.Roles = a.cfg.Roles()
	return launcher, nil
}

// requireS3Staging rejects providers the cluster cannot read staged files from.
func requireS3Staging(provider string) error {
	switch provider {
	case objectstore.ProviderS3, objectstore.ProviderMinio:
		return nil
	default:
		return fmt.Errorf("run stages files for s3n:// and s3:// URIs and needs an S3-compatible provider, got %q", provider)
	}
}

func newRunCmd(a *app) *cobra.Command {
	var (
		file         string
		wait         bool
		pollInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Stage a job definition and launch its cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requireS3Staging(a.cfg.ObjectStore.Provider); err != nil {
				return err
			}
			def, err := jobspec.Load(file)
			if err != nil {
				return err
			}

			runID := uuid.New().String()
			if def.Tags == nil {
				def.Tags = map[string]string{}
			}
			def.Tags[runIDTag] = runID
			logger := a.logger.With(zap.String("runID", runID), zap.String("job", def.Name))

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			builder := jobflow.NewBuilder(store, a.spotLookup(), a.cfg.BuilderOptions())
			req, spec, err := def.Build(ctx, builder)
			if err != nil {
				return err
			}

			launcher, err := a.launcher(ctx)
			if err != nil {
				return err
			}
			cluster, err := launcher.Run(ctx, req, spec)
			if err != nil {
				return err
			}
			logger.Info("cluster launched", zap.String("clusterID", cluster.ID))
			fmt.Fprintln(cmd.OutOrStdout(), cluster.ID)

			if !wait {
				return nil
			}
			state, err := waitForCluster(ctx, cluster, pollInterval, logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), state)
			if state.IsFailed() {
				return fmt.Errorf("cluster %s ended in state %s", cluster.ID, state)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "job definition YAML file")
	cmd.Flags().BoolVar(&wait, "wait", false, "poll the cluster until it terminates")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", defaultPollInterval, "time between status polls")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// waitForCluster polls until the cluster reaches a terminal state or ctx is done.
func waitForCluster(ctx context.Context, cluster statusReader, interval time.Duration, logger *zap.Logger) (jobflow.State, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last jobflow.State
	for {
		state, err := cluster.Status(ctx)
		if err != nil {
			return "", err
		}
		if state != last {
			logger.Info("cluster state changed", zap.String("state", string(state)))
			last = state
		}
		if state.IsTerminal() {
			return state, nil
		}
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <cluster-id>",
		Short: "Print the current state of a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			launcher, err := a.launcher(cmd.Context())
			if err != nil {
				return err
			}
			state, err := launcher.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), state)
			return nil
		},
	}
}
