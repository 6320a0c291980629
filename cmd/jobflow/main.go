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
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/emr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/splunk/jobflow/pkg/config"
	"github.com/splunk/jobflow/pkg/jobflow"
	"github.com/splunk/jobflow/pkg/logging"
	"github.com/splunk/jobflow/pkg/metrics"
	"github.com/splunk/jobflow/pkg/objectstore"
)

// app carries what every subcommand shares once the root command resolved
// its configuration.
type app struct {
	loader  *config.Loader
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Collector

	// overridable in tests
	openStore func(ctx context.Context) (*objectstore.Client, error)
	openEMR   func(ctx context.Context) (jobflow.EMRAPI, error)
}

func newApp() *app {
	a := &app{logger: zap.NewNop()}
	a.openStore = func(ctx context.Context) (*objectstore.Client, error) {
		return objectstore.Open(ctx, a.cfg.ObjectStore, a.metrics)
	}
	a.openEMR = func(ctx context.Context) (jobflow.EMRAPI, error) {
		awsCfg, err := objectstore.LoadAWSConfig(ctx, a.cfg.ObjectStore)
		if err != nil {
			return nil, err
		}
		return emr.NewFromConfig(awsCfg), nil
	}
	return a
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jobflow",
		Short:         "Object store and cluster job flow helpers",
		Long:          "Stage files in an object store, price spot capacity and launch streaming job flows on a managed cluster",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	a.loader = config.NewLoader(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newObjectsCmd(a))
	rootCmd.AddCommand(newSpotPriceCmd(a))
	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newStatusCmd(a))
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loader.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.NewLogger(cfg.Logging())
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	a.logger = logger.With(zap.String("command", cmd.Name()))
	a.metrics = metrics.NewCollector()

	a.logger.Debug("resolved configuration",
		zap.String("provider", cfg.ObjectStore.Provider),
		zap.String("region", cfg.ObjectStore.Region),
		logging.Redact("accessKey", cfg.ObjectStore.AccessKey),
		logging.Redact("secretKey", cfg.ObjectStore.SecretKey),
		zap.String("pricingRegion", cfg.PricingRegion()),
	)
	cmd.SetContext(logging.IntoContext(cmd.Context(), a.logger))
	return nil
}

// execute runs rootCmd and writes the metrics file whether or not the
// command succeeded.
func (a *app) execute(ctx context.Context, rootCmd *cobra.Command) error {
	a.cfg, a.metrics = nil, nil
	err := rootCmd.ExecuteContext(ctx)
	if flushErr := a.flushMetrics(); flushErr != nil {
		if err == nil {
			return flushErr
		}
		a.logger.Error("failed to write metrics", zap.Error(flushErr))
	}
	return err
}

func (a *app) flushMetrics() error {
	if a.cfg == nil || a.metrics == nil || a.cfg.MetricsPath == "" {
		return nil
	}
	if err := a.metrics.Write(a.cfg.MetricsPath); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	a.logger.Debug("wrote metrics", zap.String("path", a.cfg.MetricsPath))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	err := a.execute(ctx, newRootCmd(a))
	if err != nil {
		a.logger.Error("command failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	_ = a.logger.Sync()
	if err != nil {
		stop()
		os.Exit(1)
	}
}
