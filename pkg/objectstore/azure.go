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

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
)

type azureProvider struct {
	client *service.Client
}

func newAzureProvider(ctx context.Context, cfg Config) (Provider, error) {
	serviceURL, err := buildAzureServiceURL(cfg)
	if err != nil {
		return nil, err
	}
	var client *azblob.Client
	if strings.TrimSpace(cfg.AzureSASToken) != "" {
		client, err = azblob.NewClientWithNoCredential(serviceURL, nil)
	} else if strings.TrimSpace(cfg.AzureKey) != "" {
		if strings.TrimSpace(cfg.AzureAccount) == "" {
			return nil, fmt.Errorf("azure account name is required for shared key auth")
		}
		credential, credErr := azblob.NewSharedKeyCredential(cfg.AzureAccount, cfg.AzureKey)
		if credErr != nil {
			return nil, credErr
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	} else {
		credential, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, credErr
		}
		client, err = azblob.NewClient(serviceURL, credential, nil)
	}
	if err != nil {
		return nil, err
	}
	return &azureProvider{client: client.ServiceClient()}, nil
}

func buildAzureServiceURL(cfg Config) (string, error) {
	serviceURL := strings.TrimRight(strings.TrimSpace(cfg.AzureEndpoint), "/")
	if serviceURL == "" {
		if strings.TrimSpace(cfg.AzureAccount) == "" {
			return "", fmt.Errorf("azure endpoint or account name is required")
		}
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AzureAccount)
	}
	if strings.TrimSpace(cfg.AzureSASToken) != "" {
		token := strings.TrimPrefix(strings.TrimSpace(cfg.AzureSASToken), "?")
		serviceURL = serviceURL + "/?" + token
	}
	return serviceURL, nil
}

func (p *azureProvider) container(bucket string) *container.Client {
	return p.client.NewContainerClient(bucket)
}

func (p *azureProvider) Upload(ctx context.Context, dst Path, localPath string) (ObjectInfo, error) {
	file, size, err := openLocal(localPath)
	if err != nil {
		return ObjectInfo{}, err
	}
	defer file.Close()
	blobClient := p.container(dst.Bucket).NewBlockBlobClient(dst.Key)
	resp, err := blobClient.UploadFile(ctx, file, nil)
	if err != nil {
		return ObjectInfo{}, err
	}
	info := ObjectInfo{Key: dst.Key, Size: size}
	if resp.ETag != nil {
		info.ETag = string(*resp.ETag)
	}
	if resp.LastModified != nil {
		info.LastModified = *resp.LastModified
	}
	return info, nil
}

func (p *azureProvider) Download(ctx context.Context, src Path, localPath string) (ObjectInfo, error) {
	file, err := createLocal(localPath)
	if err != nil {
		return ObjectInfo{}, err
	}
	defer file.Close()
	blobClient := p.container(src.Bucket).NewBlockBlobClient(src.Key)
	written, err := blobClient.DownloadFile(ctx, file, nil)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Key: src.Key, Size: written}, nil
}

func (p *azureProvider) Delete(ctx context.Context, target Path) error {
	_, err := p.container(target.Bucket).NewBlobClient(target.Key).Delete(ctx, nil)
	return err
}

func (p *azureProvider) List(ctx context.Context, prefix Path) iter.Seq2[ObjectInfo, error] {
	return func(yield func(ObjectInfo, error) bool) {
		options := &container.ListBlobsFlatOptions{}
		if prefix.Key != "" {
			options.Prefix = &prefix.Key
		}
		pager := p.container(prefix.Bucket).NewListBlobsFlatPager(options)
		for pager.More() {
			resp, err := pager.NextPage(ctx)
			if err != nil {
				yield(ObjectInfo{}, err)
				return
			}
			if resp.Segment == nil {
				continue
			}
			for _, item := range resp.Segment.BlobItems {
				if item == nil || item.Name == nil {
					continue
				}
				info := ObjectInfo{Key: *item.Name}
				if item.Properties != nil {
					if item.Properties.ContentLength != nil {
						info.Size = *item.Properties.ContentLength
					}
					if item.Properties.LastModified != nil {
						info.LastModified = *item.Properties.LastModified
					}
					if item.Properties.ETag != nil {
						info.ETag = string(*item.Properties.ETag)
					}
				}
				if !yield(info, nil) {
					return
				}
			}
		}
	}
}

func (p *azureProvider) Copy(ctx context.Context, src, dst Path) error {
	sourceURL := p.container(src.Bucket).NewBlobClient(src.Key).URL()
	_, err := p.container(dst.Bucket).NewBlobClient(dst.Key).StartCopyFromURL(ctx, sourceURL, nil)
	return err
}

func (p *azureProvider) Close() error {
	return nil
}
