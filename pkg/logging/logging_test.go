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

package logging_test

import (
	"context"
	"os"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/splunk/jobflow/pkg/logging"
)

const (
	envLogLevel  = "LOG_LEVEL"
	envLogFormat = "LOG_FORMAT"
)

func clearEnv() {
	os.Unsetenv(envLogLevel)
	os.Unsetenv(envLogFormat)
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name           string
		envVars        map[string]string
		expectedLevel  zapcore.Level
		expectedFormat string
	}{
		{
			name:           "default values",
			envVars:        map[string]string{},
			expectedLevel:  zapcore.InfoLevel,
			expectedFormat: "json",
		},
		{
			name:           "debug level",
			envVars:        map[string]string{envLogLevel: "debug"},
			expectedLevel:  zapcore.DebugLevel,
			expectedFormat: "json",
		},
		{
			name:           "warn level with console format",
			envVars:        map[string]string{envLogLevel: "warn", envLogFormat: "CONSOLE"},
			expectedLevel:  zapcore.WarnLevel,
			expectedFormat: "console",
		},
		{
			name:           "invalid level defaults to info",
			envVars:        map[string]string{envLogLevel: "invalid"},
			expectedLevel:  zapcore.InfoLevel,
			expectedFormat: "json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv()
			defer clearEnv()
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg := logging.LoadConfig()

			assert.Equal(t, tt.expectedLevel, cfg.Level)
			assert.Equal(t, tt.expectedFormat, cfg.Format)
		})
	}
}

func TestLoadConfigWithFlags(t *testing.T) {
	clearEnv()
	os.Setenv(envLogLevel, "info")
	os.Setenv(envLogFormat, "json")
	defer clearEnv()

	cfg := logging.LoadConfigWithFlags("error", "console")
	assert.Equal(t, zapcore.ErrorLevel, cfg.Level)
	assert.Equal(t, "console", cfg.Format)

	cfg = logging.LoadConfigWithFlags("", "")
	assert.Equal(t, zapcore.InfoLevel, cfg.Level)
	assert.Equal(t, "json", cfg.Format)
}

func TestLevelRoundTrip(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := logging.ParseLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)

			again, err := logging.ParseLevel(logging.LevelToString(level))
			require.NoError(t, err)
			assert.Equal(t, level, again)
		})
	}
	assert.Equal(t, "info", logging.LevelToString(zapcore.FatalLevel))
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	_, err := logging.ParseLevel("verbose")
	assert.ErrorContains(t, err, "verbose")
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console", "unknown"} {
		t.Run(format, func(t *testing.T) {
			logger, err := logging.NewLogger(logging.Config{Level: zapcore.DebugLevel, Format: format})
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
		})
	}

	logger, err := logging.NewLogger(logging.Config{Level: zapcore.WarnLevel, Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestRedact(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	logger.Info("credentials",
		logging.Redact("secret_key", "xyz"),
		logging.Redact("access_key", "abc"),
		logging.Redact("session_token", ""),
		logging.Redact("region", "ap-southeast-1"),
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["secret_key"])
	assert.Equal(t, "[REDACTED]", fields["access_key"])
	assert.Equal(t, "", fields["session_token"])
	assert.Equal(t, "ap-southeast-1", fields["region"])
}

func TestIntoContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logging.IntoContext(context.Background(), zap.New(core))

	logr.FromContextOrDiscard(ctx).WithName("objectstore").Info("uploaded", "path", "bucket/key")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "uploaded", entry.Message)
	assert.Equal(t, "objectstore", entry.LoggerName)
	assert.Equal(t, "bucket/key", entry.ContextMap()["path"])
}
