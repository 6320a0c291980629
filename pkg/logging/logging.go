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

package logging

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	FormatJSON    = "json"
	FormatConsole = "console"

	DefaultLogLevel  = zapcore.InfoLevel
	DefaultLogFormat = FormatJSON

	redacted = "[REDACTED]"
)

// Config holds the logging configuration
type Config struct {
	Level  zapcore.Level
	Format string
}

// sensitiveKeys contains field names that should be redacted
var sensitiveKeys = []string{
	"password",
	"token",
	"secret",
	"access_key",
	"accesskey",
	"credential",
	"sas",
}

// LoadConfig loads logging configuration from environment variables
func LoadConfig() Config {
	cfg := Config{
		Level:  DefaultLogLevel,
		Format: DefaultLogFormat,
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Level = parseLevel(level)
	}

	if format := os.Getenv(EnvLogFormat); format != "" {
		cfg.Format = strings.ToLower(format)
	}

	return cfg
}

// LoadConfigWithFlags loads configuration with command-line flag overrides.
// Flags take precedence over environment variables.
func LoadConfigWithFlags(levelFlag, formatFlag string) Config {
	cfg := LoadConfig()

	if levelFlag != "" {
		cfg.Level = parseLevel(levelFlag)
	}

	if formatFlag != "" {
		cfg.Format = strings.ToLower(formatFlag)
	}

	return cfg
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel converts a level name to a zap level. An empty name is the
// default level; unknown names are an error.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultLogLevel, nil
	case "debug", "info", "warn", "warning", "error":
		return parseLevel(s), nil
	default:
		return DefaultLogLevel, fmt.Errorf("unknown log level %q: must be one of debug|info|warn|error", s)
	}
}

// LevelToString converts a zap level to the name accepted by ParseLevel
func LevelToString(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return "debug"
	case zapcore.InfoLevel:
		return "info"
	case zapcore.WarnLevel:
		return "warn"
	case zapcore.ErrorLevel:
		return "error"
	default:
		return "info"
	}
}

// NewLogger builds a zap logger from the configuration.
// Unknown formats fall back to JSON.
func NewLogger(cfg Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if strings.EqualFold(cfg.Format, FormatConsole) {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.Level)

	return zapCfg.Build()
}

// IntoContext stores a logr view of logger in ctx for the library packages.
func IntoContext(ctx context.Context, logger *zap.Logger) context.Context {
	return logr.NewContext(ctx, zapr.NewLogger(logger))
}

// IsSensitive reports whether a field name should never be logged in clear text.
func IsSensitive(key string) bool {
	keyLower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(keyLower, sensitive) {
			return true
		}
	}
	return false
}

// Redact returns a string field whose value is masked when key is sensitive.
func Redact(key, value string) zap.Field {
	if IsSensitive(key) && value != "" {
		return zap.String(key, redacted)
	}
	return zap.String(key, value)
}
