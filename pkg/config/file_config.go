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

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for YAML files. Only fields present in the file
// override the resolved values.
type FileConfig struct {
	Objectstore *ObjectstoreFileConfig `yaml:"objectstore"`
	Spot        *SpotFileConfig        `yaml:"spot"`
	Builder     *BuilderFileConfig     `yaml:"builder"`
	Roles       *RolesFileConfig       `yaml:"roles"`
	Logging     *LoggingFileConfig     `yaml:"logging"`
	Metrics     *MetricsFileConfig     `yaml:"metrics"`
}

type ObjectstoreFileConfig struct {
	Provider           *string `yaml:"provider"`
	Region             *string `yaml:"region"`
	Endpoint           *string `yaml:"endpoint"`
	AccessKey          *string `yaml:"access_key"`
	SecretKey          *string `yaml:"secret_key"`
	SessionToken       *string `yaml:"session_token"`
	S3PathStyle        *bool   `yaml:"s3_path_style"`
	Insecure           *bool   `yaml:"insecure"`
	GCPCredentialsFile *string `yaml:"gcp_credentials_file"`
	GCPCredentialsJSON *string `yaml:"gcp_credentials_json"`
	AzureAccount       *string `yaml:"azure_account"`
	AzureKey           *string `yaml:"azure_key"`
	AzureEndpoint      *string `yaml:"azure_endpoint"`
	AzureSASToken      *string `yaml:"azure_sas_token"`
}

type SpotFileConfig struct {
	FeedURL       *string  `yaml:"feed_url"`
	Region        *string  `yaml:"region"`
	BidMultiplier *float64 `yaml:"bid_multiplier"`
}

type BuilderFileConfig struct {
	URIScheme       *string `yaml:"uri_scheme"`
	BootstrapScheme *string `yaml:"bootstrap_scheme"`
	Interpreter     *string `yaml:"interpreter"`
	StepJar         *string `yaml:"step_jar"`
	ActionOnFailure *string `yaml:"action_on_failure"`
}

type RolesFileConfig struct {
	JobFlowRole *string `yaml:"job_flow_role"`
	ServiceRole *string `yaml:"service_role"`
}

type LoggingFileConfig struct {
	Format *string `yaml:"format"`
	Level  *string `yaml:"level"`
}

type MetricsFileConfig struct {
	Path *string `yaml:"path"`
}

func loadFileConfig(path string) (*FileConfig, error) {
	expanded := expandPath(path)
	if expanded == "" {
		return nil, nil
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", expanded)
	}
	return &cfg, nil
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

func setBool(dst *bool, value *bool) {
	if value != nil {
		*dst = *value
	}
}

func applyFileConfig(cfg *Config, fileCfg *FileConfig) error {
	if cfg == nil || fileCfg == nil {
		return nil
	}
	if obj := fileCfg.Objectstore; obj != nil {
		dst := &cfg.ObjectStore
		setString(&dst.Provider, obj.Provider)
		setString(&dst.Region, obj.Region)
		setString(&dst.Endpoint, obj.Endpoint)
		setString(&dst.AccessKey, obj.AccessKey)
		setString(&dst.SecretKey, obj.SecretKey)
		setString(&dst.SessionToken, obj.SessionToken)
		setBool(&dst.S3PathStyle, obj.S3PathStyle)
		setBool(&dst.Insecure, obj.Insecure)
		if obj.GCPCredentialsFile != nil {
			dst.GCPCredentialsFile = expandPath(*obj.GCPCredentialsFile)
		}
		setString(&dst.GCPCredentialsJSON, obj.GCPCredentialsJSON)
		setString(&dst.AzureAccount, obj.AzureAccount)
		setString(&dst.AzureKey, obj.AzureKey)
		setString(&dst.AzureEndpoint, obj.AzureEndpoint)
		setString(&dst.AzureSASToken, obj.AzureSASToken)
	}
	if spot := fileCfg.Spot; spot != nil {
		setString(&cfg.SpotFeedURL, spot.FeedURL)
		setString(&cfg.SpotRegion, spot.Region)
		if spot.BidMultiplier != nil {
			if *spot.BidMultiplier <= 0 {
				return errors.Errorf("invalid spot.bid_multiplier: %v", *spot.BidMultiplier)
			}
			cfg.BidMultiplier = *spot.BidMultiplier
		}
	}
	if builder := fileCfg.Builder; builder != nil {
		setString(&cfg.URIScheme, builder.URIScheme)
		setString(&cfg.BootstrapScheme, builder.BootstrapScheme)
		setString(&cfg.Interpreter, builder.Interpreter)
		setString(&cfg.StepJar, builder.StepJar)
		setString(&cfg.ActionOnFailure, builder.ActionOnFailure)
	}
	if roles := fileCfg.Roles; roles != nil {
		setString(&cfg.JobFlowRole, roles.JobFlowRole)
		setString(&cfg.ServiceRole, roles.ServiceRole)
	}
	if logging := fileCfg.Logging; logging != nil {
		setString(&cfg.LogFormat, logging.Format)
		setString(&cfg.LogLevel, logging.Level)
	}
	if metrics := fileCfg.Metrics; metrics != nil && metrics.Path != nil {
		cfg.MetricsPath = expandPath(*metrics.Path)
	}
	return nil
}

func expandPath(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return trimmed
	}
	expanded := os.ExpandEnv(trimmed)
	if strings.HasPrefix(expanded, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
		}
	}
	return expanded
}
