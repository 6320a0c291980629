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
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioProvider struct {
	client *minio.Client
}

func newMinioProvider(ctx context.Context, cfg Config) (Provider, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	secure := !cfg.Insecure
	if strings.HasPrefix(endpoint, "http://") {
		secure = false
	}
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return &minioProvider{client: client}, nil
}

func (p *minioProvider) Upload(ctx context.Context, dst Path, localPath string) (ObjectInfo, error) {
	info, err := p.client.FPutObject(ctx, dst.Bucket, dst.Key, localPath, minio.PutObjectOptions{})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Key: dst.Key, Size: info.Size, ETag: info.ETag, LastModified: info.LastModified}, nil
}

func (p *minioProvider) Download(ctx context.Context, src Path, localPath string) (ObjectInfo, error) {
	if err := ensureParent(localPath); err != nil {
		return ObjectInfo{}, err
	}
	if err := p.client.FGetObject(ctx, src.Bucket, src.Key, localPath, minio.GetObjectOptions{}); err != nil {
		return ObjectInfo{}, err
	}
	stat, err := os.Stat(localPath)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Key: src.Key, Size: stat.Size()}, nil
}

func (p *minioProvider) Delete(ctx context.Context, target Path) error {
	return p.client.RemoveObject(ctx, target.Bucket, target.Key, minio.RemoveObjectOptions{})
}

func (p *minioProvider) List(ctx context.Context, prefix Path) iter.Seq2[ObjectInfo, error] {
	return func(yield func(ObjectInfo, error) bool) {
		// cancelling stops the listing goroutine when the consumer breaks early
		listCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		objects := p.client.ListObjects(listCtx, prefix.Bucket, minio.ListObjectsOptions{
			Prefix:    prefix.Key,
			Recursive: true,
		})
		for obj := range objects {
			if obj.Err != nil {
				yield(ObjectInfo{}, obj.Err)
				return
			}
			info := ObjectInfo{
				Key:          obj.Key,
				Size:         obj.Size,
				ETag:         strings.Trim(obj.ETag, "\""),
				LastModified: obj.LastModified,
			}
			if !yield(info, nil) {
				return
			}
		}
	}
}

func (p *minioProvider) Copy(ctx context.Context, src, dst Path) error {
	_, err := p.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: dst.Bucket, Object: dst.Key},
		minio.CopySrcOptions{Bucket: src.Bucket, Object: src.Key},
	)
	return err
}

func (p *minioProvider) Close() error {
	return nil
}
