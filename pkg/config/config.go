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

// Package config resolves jobflow settings from defaults, a .env file, the
// environment, an optional YAML file and command-line flags, in that order.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/splunk/jobflow/pkg/jobflow"
	"github.com/splunk/jobflow/pkg/logging"
	"github.com/splunk/jobflow/pkg/objectstore"
	"github.com/splunk/jobflow/pkg/spotprice"
)

const (
	// EnvConfigFile names the YAML config file when --config is not given
	EnvConfigFile = "JOBFLOW_CONFIG"
	envFileName   = ".env"
)

// Config holds every setting the CLI needs.
type Config struct {
	ObjectStore objectstore.Config

	SpotFeedURL   string
	SpotRegion    string
	BidMultiplier float64

	URIScheme       string
	BootstrapScheme string
	Interpreter     string
	StepJar         string
	ActionOnFailure string
	JobFlowRole     string
	ServiceRole     string

	LogLevel    string
	LogFormat   string
	MetricsPath string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ObjectStore: objectstore.Config{
			Provider: objectstore.ProviderS3,
			Region:   objectstore.DefaultRegion,
		},
		SpotFeedURL:     spotprice.DefaultFeedURL,
		BidMultiplier:   spotprice.DefaultBidMultiplier,
		URIScheme:       jobflow.DefaultURIScheme,
		BootstrapScheme: jobflow.DefaultBootstrapScheme,
		Interpreter:     jobflow.DefaultInterpreter,
		StepJar:         jobflow.DefaultStepJar,
		ActionOnFailure: jobflow.DefaultActionOnFailure,
		JobFlowRole:     jobflow.DefaultJobFlowRole,
		ServiceRole:     jobflow.DefaultServiceRole,
		LogLevel:        logging.LevelToString(logging.DefaultLogLevel),
		LogFormat:       logging.DefaultLogFormat,
	}
}

// LoadEnvFile walks up from dir and loads the first .env file found.
// Variables already set in the environment are left alone.
func LoadEnvFile(dir string) error {
	for {
		envFile := filepath.Join(dir, envFileName)
		if _, err := os.Stat(envFile); err == nil {
			return godotenv.Load(envFile)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

// ApplyEnv overrides cfg with any recognized environment variables.
func ApplyEnv(cfg *Config) {
	obj := &cfg.ObjectStore
	obj.Provider = envOrDefault("JOBFLOW_PROVIDER", obj.Provider)
	obj.Region = envOrDefault("AWS_DEFAULT_REGION", obj.Region)
	obj.Region = envOrDefault("AWS_REGION", obj.Region)
	obj.Region = envOrDefault("JOBFLOW_REGION", obj.Region)
	obj.Endpoint = envOrDefault("JOBFLOW_ENDPOINT", obj.Endpoint)
	obj.AccessKey = envOrDefault("AWS_ACCESS_KEY_ID", obj.AccessKey)
	obj.SecretKey = envOrDefault("AWS_SECRET_ACCESS_KEY", obj.SecretKey)
	obj.SessionToken = envOrDefault("AWS_SESSION_TOKEN", obj.SessionToken)
	obj.S3PathStyle = envOrDefaultBool("JOBFLOW_S3_PATH_STYLE", obj.S3PathStyle)
	obj.Insecure = envOrDefaultBool("JOBFLOW_INSECURE", obj.Insecure)
	obj.GCPCredentialsFile = envOrDefault("GOOGLE_APPLICATION_CREDENTIALS", obj.GCPCredentialsFile)
	obj.GCPCredentialsJSON = envOrDefault("JOBFLOW_GCP_CREDENTIALS_JSON", obj.GCPCredentialsJSON)
	obj.AzureAccount = envOrDefault("AZURE_STORAGE_ACCOUNT", obj.AzureAccount)
	obj.AzureKey = envOrDefault("AZURE_STORAGE_KEY", obj.AzureKey)
	obj.AzureEndpoint = envOrDefault("JOBFLOW_AZURE_ENDPOINT", obj.AzureEndpoint)
	obj.AzureSASToken = envOrDefault("JOBFLOW_AZURE_SAS_TOKEN", obj.AzureSASToken)

	cfg.SpotFeedURL = envOrDefault("JOBFLOW_SPOT_FEED_URL", cfg.SpotFeedURL)
	cfg.SpotRegion = envOrDefault("JOBFLOW_SPOT_REGION", cfg.SpotRegion)
	cfg.BidMultiplier = envOrDefaultFloat("JOBFLOW_BID_MULTIPLIER", cfg.BidMultiplier)

	cfg.URIScheme = envOrDefault("JOBFLOW_URI_SCHEME", cfg.URIScheme)
	cfg.BootstrapScheme = envOrDefault("JOBFLOW_BOOTSTRAP_SCHEME", cfg.BootstrapScheme)
	cfg.Interpreter = envOrDefault("JOBFLOW_INTERPRETER", cfg.Interpreter)
	cfg.StepJar = envOrDefault("JOBFLOW_STEP_JAR", cfg.StepJar)
	cfg.ActionOnFailure = envOrDefault("JOBFLOW_ACTION_ON_FAILURE", cfg.ActionOnFailure)
	cfg.JobFlowRole = envOrDefault("JOBFLOW_JOB_FLOW_ROLE", cfg.JobFlowRole)
	cfg.ServiceRole = envOrDefault("JOBFLOW_SERVICE_ROLE", cfg.ServiceRole)

	cfg.LogLevel = envOrDefault(logging.EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = envOrDefault(logging.EnvLogFormat, cfg.LogFormat)
	cfg.MetricsPath = envOrDefault("JOBFLOW_METRICS_PATH", cfg.MetricsPath)
}

// PricingRegion returns the feed region: the explicit setting, else the one
// matching the AWS region, else the feed default.
func (c *Config) PricingRegion() string {
	if c.SpotRegion != "" {
		return c.SpotRegion
	}
	if region, ok := spotprice.FeedRegion(c.ObjectStore.Region); ok {
		return region
	}
	return spotprice.DefaultRegion
}

// BuilderOptions returns the strings embedded into generated requests.
func (c *Config) BuilderOptions() jobflow.Options {
	return jobflow.Options{
		URIScheme:       c.URIScheme,
		BootstrapScheme: c.BootstrapScheme,
		Interpreter:     c.Interpreter,
		StepJar:         c.StepJar,
		ActionOnFailure: c.ActionOnFailure,
	}
}

func (c *Config) Roles() jobflow.Roles {
	return jobflow.Roles{JobFlowRole: c.JobFlowRole, ServiceRole: c.ServiceRole}
}

func (c *Config) Logging() logging.Config {
	return logging.LoadConfigWithFlags(c.LogLevel, c.LogFormat)
}

// SpotLookup returns a price lookup configured from c.
func (c *Config) SpotLookup() *spotprice.Lookup {
	return &spotprice.Lookup{
		FeedURL:              c.SpotFeedURL,
		Region:               c.PricingRegion(),
		DefaultBidMultiplier: c.BidMultiplier,
	}
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	default:
		return fallback
	}
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

// Loader binds command-line flags and resolves the final Config.
type Loader struct {
	fs         *pflag.FlagSet
	flagged    Config
	configFile string
	setters    map[string]func(*Config)
}

// NewLoader registers the configuration flags on fs.
func NewLoader(fs *pflag.FlagSet) *Loader {
	l := &Loader{fs: fs, setters: map[string]func(*Config){}}
	defaults := Default()

	fs.StringVar(&l.configFile, "config", "", "path to a YAML config file (env "+EnvConfigFile+")")

	l.stringFlag("provider", "object store provider: s3|gcs|azure|minio", defaults, func(c *Config) *string { return &c.ObjectStore.Provider })
	l.stringFlag("region", "provider region", defaults, func(c *Config) *string { return &c.ObjectStore.Region })
	l.stringFlag("endpoint", "object store endpoint override", defaults, func(c *Config) *string { return &c.ObjectStore.Endpoint })
	l.stringFlag("access-key", "access key", defaults, func(c *Config) *string { return &c.ObjectStore.AccessKey })
	l.stringFlag("secret-key", "secret key", defaults, func(c *Config) *string { return &c.ObjectStore.SecretKey })
	l.stringFlag("session-token", "session token", defaults, func(c *Config) *string { return &c.ObjectStore.SessionToken })
	l.boolFlag("s3-path-style", "use S3 path-style addressing", defaults, func(c *Config) *bool { return &c.ObjectStore.S3PathStyle })
	l.boolFlag("insecure", "disable TLS to the object store endpoint", defaults, func(c *Config) *bool { return &c.ObjectStore.Insecure })
	l.stringFlag("gcp-credentials-file", "GCP credentials file path", defaults, func(c *Config) *string { return &c.ObjectStore.GCPCredentialsFile })
	l.stringFlag("azure-account", "Azure storage account name", defaults, func(c *Config) *string { return &c.ObjectStore.AzureAccount })
	l.stringFlag("azure-endpoint", "Azure blob endpoint override", defaults, func(c *Config) *string { return &c.ObjectStore.AzureEndpoint })

	l.stringFlag("spot-feed-url", "spot price feed URL", defaults, func(c *Config) *string { return &c.SpotFeedURL })
	l.stringFlag("spot-region", "spot price feed region, derived from --region when empty", defaults, func(c *Config) *string { return &c.SpotRegion })
	l.float64Flag("default-bid-multiplier", "bid multiplier used when a group sets none", defaults, func(c *Config) *float64 { return &c.BidMultiplier })

	l.stringFlag("uri-scheme", "scheme prefixed to data paths", defaults, func(c *Config) *string { return &c.URIScheme })
	l.stringFlag("bootstrap-scheme", "scheme prefixed to bootstrap scripts", defaults, func(c *Config) *string { return &c.BootstrapScheme })
	l.stringFlag("interpreter", "interpreter for mapper and reducer scripts", defaults, func(c *Config) *string { return &c.Interpreter })
	l.stringFlag("step-jar", "jar that runs each step", defaults, func(c *Config) *string { return &c.StepJar })
	l.stringFlag("action-on-failure", "step failure action", defaults, func(c *Config) *string { return &c.ActionOnFailure })
	l.stringFlag("job-flow-role", "instance profile role", defaults, func(c *Config) *string { return &c.JobFlowRole })
	l.stringFlag("service-role", "service role", defaults, func(c *Config) *string { return &c.ServiceRole })

	l.stringFlag("log-level", "log level: debug|info|warn|error", defaults, func(c *Config) *string { return &c.LogLevel })
	l.stringFlag("log-format", "log format: json|console", defaults, func(c *Config) *string { return &c.LogFormat })
	l.stringFlag("metrics-path", "write Prometheus metrics to this file on exit", defaults, func(c *Config) *string { return &c.MetricsPath })
	return l
}

func (l *Loader) stringFlag(name, usage string, defaults *Config, field func(*Config) *string) {
	l.fs.StringVar(field(&l.flagged), name, *field(defaults), usage)
	l.setters[name] = func(cfg *Config) { *field(cfg) = *field(&l.flagged) }
}

func (l *Loader) boolFlag(name, usage string, defaults *Config, field func(*Config) *bool) {
	l.fs.BoolVar(field(&l.flagged), name, *field(defaults), usage)
	l.setters[name] = func(cfg *Config) { *field(cfg) = *field(&l.flagged) }
}

func (l *Loader) float64Flag(name, usage string, defaults *Config, field func(*Config) *float64) {
	l.fs.Float64Var(field(&l.flagged), name, *field(defaults), usage)
	l.setters[name] = func(cfg *Config) { *field(cfg) = *field(&l.flagged) }
}

// Load resolves the configuration. Call it after the flag set was parsed.
func (l *Loader) Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if err := LoadEnvFile(cwd); err != nil {
		return nil, err
	}

	cfg := Default()
	ApplyEnv(cfg)

	path := l.configFile
	if path == "" {
		path = envOrDefault(EnvConfigFile, "")
	}
	fileCfg, err := loadFileConfig(path)
	if err != nil {
		return nil, err
	}
	if err := applyFileConfig(cfg, fileCfg); err != nil {
		return nil, err
	}

	// cobra parses persistent flags through the subcommand set; only the
	// shared *Flag carries Changed, the root set records nothing as parsed.
	l.fs.VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if set, ok := l.setters[f.Name]; ok {
			set(cfg)
		}
	})
	cfg.ObjectStore.Provider = objectstore.NormalizeProvider(cfg.ObjectStore.Provider)
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}
