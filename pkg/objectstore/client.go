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
	"iter"
	"time"

	"github.com/go-logr/logr"

	"github.com/splunk/jobflow/pkg/metrics"
)

// Client exposes the provider through composite "bucket/key" path strings.
// Provider errors are returned unchanged and never retried.
type Client struct {
	name     string
	provider Provider
	metrics  *metrics.Collector
}

// NewClient wraps provider. name labels log lines and metrics, collector may be nil.
func NewClient(name string, provider Provider, collector *metrics.Collector) *Client {
	return &Client{name: name, provider: provider, metrics: collector}
}

// Open creates the provider described by cfg and wraps it in a Client.
func Open(ctx context.Context, cfg Config, collector *metrics.Collector) (*Client, error) {
	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(NormalizeProvider(cfg.Provider), provider, collector), nil
}

func (c *Client) logger(ctx context.Context, op string) logr.Logger {
	return logr.FromContextOrDiscard(ctx).WithName("objectstore").WithValues("provider", c.name, "op", op)
}

func (c *Client) observe(op string, start time.Time, err error) {
	c.metrics.ObserveRequest(c.name, op, err, time.Since(start))
}

// Upload copies the local file to path.
func (c *Client) Upload(ctx context.Context, path string, localPath string) error {
	log := c.logger(ctx, "upload")
	start := time.Now()
	info, err := c.provider.Upload(ctx, ParsePath(path), localPath)
	c.observe("upload", start, err)
	if err != nil {
		log.Error(err, "upload failed", "path", path, "localPath", localPath)
		return err
	}
	log.V(1).Info("uploaded", "path", path, "localPath", localPath, "size", info.Size)
	return nil
}

// Download copies the object at path to the local file.
func (c *Client) Download(ctx context.Context, path string, localPath string) error {
	log := c.logger(ctx, "download")
	start := time.Now()
	info, err := c.provider.Download(ctx, ParsePath(path), localPath)
	c.observe("download", start, err)
	if err != nil {
		log.Error(err, "download failed", "path", path, "localPath", localPath)
		return err
	}
	log.V(1).Info("downloaded", "path", path, "localPath", localPath, "size", info.Size)
	return nil
}

// Delete removes the single object at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	start := time.Now()
	err := c.provider.Delete(ctx, ParsePath(path))
	c.observe("delete", start, err)
	if err != nil {
		c.logger(ctx, "delete").Error(err, "delete failed", "path", path)
		return err
	}
	c.logger(ctx, "delete").V(1).Info("deleted", "path", path)
	return nil
}

// Keys lazily yields the full "bucket/key" path of every object under prefix.
// Pages are requested only as the sequence is consumed.
func (c *Client) Keys(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		target := ParsePath(prefix)
		start := time.Now()
		var listErr error
		defer func() { c.observe("list", start, listErr) }()
		for info, err := range c.provider.List(ctx, target) {
			if err != nil {
				listErr = err
				c.logger(ctx, "list").Error(err, "list failed", "prefix", prefix)
				yield("", err)
				return
			}
			if !yield(target.Bucket+"/"+info.Key, nil) {
				return
			}
		}
	}
}

// ListKeys collects Keys into a slice.
func (c *Client) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for key, err := range c.Keys(ctx, prefix) {
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Copy copies the object at srcPath to dstPath.
func (c *Client) Copy(ctx context.Context, srcPath, dstPath string) error {
	start := time.Now()
	err := c.provider.Copy(ctx, ParsePath(srcPath), ParsePath(dstPath))
	c.observe("copy", start, err)
	if err != nil {
		c.logger(ctx, "copy").Error(err, "copy failed", "src", srcPath, "dst", dstPath)
		return err
	}
	c.logger(ctx, "copy").V(1).Info("copied", "src", srcPath, "dst", dstPath)
	return nil
}

// DeletePrefix deletes every object under prefix and returns how many were
// removed. The listing completes before the first delete is issued.
func (c *Client) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := c.ListKeys(ctx, prefix)
	if err != nil {
		return 0, err
	}
	for n, key := range keys {
		if err := c.Delete(ctx, key); err != nil {
			return n, err
		}
	}
	if len(keys) > 0 {
		c.logger(ctx, "delete-prefix").Info("cleared prefix", "prefix", prefix, "count", len(keys))
	}
	return len(keys), nil
}

// Close releases the provider.
func (c *Client) Close() error {
	return c.provider.Close()
}
