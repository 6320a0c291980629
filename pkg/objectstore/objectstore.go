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

package objectstore

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"
)

const (
	ProviderS3    = "s3"
	ProviderGCS   = "gcs"
	ProviderAzure = "azure"
	ProviderMinio = "minio"

	// DefaultRegion is used when no region is configured.
	DefaultRegion = "ap-southeast-1"
)

// Config describes how to connect to an object store provider.
type Config struct {
	Provider           string
	Region             string
	Endpoint           string
	AccessKey          string
	SecretKey          string
	SessionToken       string
	S3PathStyle        bool
	Insecure           bool
	GCPCredentialsFile string
	GCPCredentialsJSON string
	AzureAccount       string
	AzureKey           string
	AzureEndpoint      string
	AzureSASToken      string
}

// ObjectInfo captures metadata about a remote object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// Provider is a generic object store client. The bucket is chosen per call.
type Provider interface {
	Upload(ctx context.Context, dst Path, localPath string) (ObjectInfo, error)
	Download(ctx context.Context, src Path, localPath string) (ObjectInfo, error)
	Delete(ctx context.Context, p Path) error
	// List yields every object under prefix, fetching one page per request
	// as the sequence is consumed. Iteration ends after the first error.
	List(ctx context.Context, prefix Path) iter.Seq2[ObjectInfo, error]
	Copy(ctx context.Context, src, dst Path) error
	Close() error
}

// NewProvider creates a provider client based on config.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	provider := NormalizeProvider(cfg.Provider)
	if provider == "" {
		return nil, fmt.Errorf("objectstore provider is required")
	}
	cfg.Provider = provider
	switch provider {
	case ProviderS3:
		return newS3Provider(ctx, cfg)
	case ProviderGCS:
		return newGCSProvider(ctx, cfg)
	case ProviderAzure:
		return newAzureProvider(ctx, cfg)
	case ProviderMinio:
		return newMinioProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported objectstore provider: %s", cfg.Provider)
	}
}

// NormalizeProvider maps known aliases to provider names.
func NormalizeProvider(value string) string {
	provider := strings.ToLower(strings.TrimSpace(value))
	switch provider {
	case "aws", "s3":
		return ProviderS3
	case "gcp", "gcs":
		return ProviderGCS
	case "azure", "blob":
		return ProviderAzure
	case "minio":
		return ProviderMinio
	default:
		return provider
	}
}
