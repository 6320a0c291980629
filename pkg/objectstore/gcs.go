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
	"io"
	"iter"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type gcsProvider struct {
	client *storage.Client
}

func newGCSProvider(ctx context.Context, cfg Config) (Provider, error) {
	options := []option.ClientOption{}
	if strings.TrimSpace(cfg.GCPCredentialsJSON) != "" {
		options = append(options, option.WithCredentialsJSON([]byte(cfg.GCPCredentialsJSON)))
	} else if strings.TrimSpace(cfg.GCPCredentialsFile) != "" {
		options = append(options, option.WithCredentialsFile(cfg.GCPCredentialsFile))
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		options = append(options, option.WithEndpoint(endpoint))
	}
	client, err := storage.NewClient(ctx, options...)
	if err != nil {
		return nil, err
	}
	return &gcsProvider{client: client}, nil
}

func (p *gcsProvider) object(target Path) *storage.ObjectHandle {
	return p.client.Bucket(target.Bucket).Object(target.Key)
}

func (p *gcsProvider) Upload(ctx context.Context, dst Path, localPath string) (ObjectInfo, error) {
	file, size, err := openLocal(localPath)
	if err != nil {
		return ObjectInfo{}, err
	}
	defer file.Close()
	writer := p.object(dst).NewWriter(ctx)
	if _, err := io.Copy(writer, file); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return ObjectInfo{}, closeErr
		}
		return ObjectInfo{}, err
	}
	if err := writer.Close(); err != nil {
		return ObjectInfo{}, err
	}
	info := ObjectInfo{Key: dst.Key, Size: size}
	if attrs := writer.Attrs(); attrs != nil {
		info.ETag = attrs.Etag
		info.LastModified = attrs.Updated
	}
	return info, nil
}

func (p *gcsProvider) Download(ctx context.Context, src Path, localPath string) (ObjectInfo, error) {
	if err := ensureParent(localPath); err != nil {
		return ObjectInfo{}, err
	}
	reader, err := p.object(src).NewReader(ctx)
	if err != nil {
		return ObjectInfo{}, err
	}
	defer reader.Close()
	file, err := os.Create(localPath)
	if err != nil {
		return ObjectInfo{}, err
	}
	defer file.Close()
	written, err := file.ReadFrom(reader)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Key: src.Key, Size: written}, nil
}

func (p *gcsProvider) Delete(ctx context.Context, target Path) error {
	return p.object(target).Delete(ctx)
}

func (p *gcsProvider) List(ctx context.Context, prefix Path) iter.Seq2[ObjectInfo, error] {
	return func(yield func(ObjectInfo, error) bool) {
		it := p.client.Bucket(prefix.Bucket).Objects(ctx, &storage.Query{Prefix: prefix.Key})
		for {
			attrs, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				yield(ObjectInfo{}, err)
				return
			}
			info := ObjectInfo{
				Key:          attrs.Name,
				Size:         attrs.Size,
				ETag:         attrs.Etag,
				LastModified: attrs.Updated,
			}
			if !yield(info, nil) {
				return
			}
		}
	}
}

func (p *gcsProvider) Copy(ctx context.Context, src, dst Path) error {
	_, err := p.object(dst).CopierFrom(p.object(src)).Run(ctx)
	return err
}

func (p *gcsProvider) Close() error {
	return p.client.Close()
}
