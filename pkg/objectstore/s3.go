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
	"io"
	"iter"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by the provider
type S3API interface {
	ListObjects(ctx context.Context, params *s3.ListObjectsInput, optFns ...func(*s3.Options)) (*s3.ListObjectsOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

// S3Uploader is used to upload local files
type S3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Downloader is used to download objects to local files
type S3Downloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (n int64, err error)
}

type s3Provider struct {
	client     S3API
	uploader   S3Uploader
	downloader S3Downloader
}

// LoadAWSConfig resolves the shared AWS configuration, using static
// credentials when an access key pair is configured.
func LoadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = DefaultRegion
	}
	options := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" || cfg.SessionToken != "" {
		options = append(options, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		))
	}
	return config.LoadDefaultConfig(ctx, options...)
}

func newS3Provider(ctx context.Context, cfg Config) (Provider, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		if cfg.S3PathStyle {
			o.UsePathStyle = true
		}
	})
	return NewS3Provider(client, manager.NewUploader(client), manager.NewDownloader(client)), nil
}

// NewS3Provider builds a provider over already constructed S3 clients.
func NewS3Provider(client S3API, uploader S3Uploader, downloader S3Downloader) Provider {
	return &s3Provider{client: client, uploader: uploader, downloader: downloader}
}

func (p *s3Provider) Upload(ctx context.Context, dst Path, localPath string) (ObjectInfo, error) {
	file, size, err := openLocal(localPath)
	if err != nil {
		return ObjectInfo{}, err
	}
	defer file.Close()
	out, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(dst.Bucket),
		Key:    aws.String(dst.Key),
		Body:   file,
	})
	if err != nil {
		return ObjectInfo{}, err
	}
	info := ObjectInfo{Key: dst.Key, Size: size}
	if out != nil && out.ETag != nil {
		info.ETag = strings.Trim(*out.ETag, "\"")
	}
	return info, nil
}

func (p *s3Provider) Download(ctx context.Context, src Path, localPath string) (ObjectInfo, error) {
	file, err := createLocal(localPath)
	if err != nil {
		return ObjectInfo{}, err
	}
	defer file.Close()
	written, err := p.downloader.Download(ctx, file, &s3.GetObjectInput{
		Bucket: aws.String(src.Bucket),
		Key:    aws.String(src.Key),
	})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Key: src.Key, Size: written}, nil
}

func (p *s3Provider) Delete(ctx context.Context, target Path) error {
	if target.Key == "" {
		return fmt.Errorf("object key is required")
	}
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(target.Bucket),
		Key:    aws.String(target.Key),
	})
	return err
}

func (p *s3Provider) List(ctx context.Context, prefix Path) iter.Seq2[ObjectInfo, error] {
	return func(yield func(ObjectInfo, error) bool) {
		input := &s3.ListObjectsInput{
			Bucket: aws.String(prefix.Bucket),
		}
		if prefix.Key != "" {
			input.Prefix = aws.String(prefix.Key)
		}
		for {
			resp, err := p.client.ListObjects(ctx, input)
			if err != nil {
				yield(ObjectInfo{}, err)
				return
			}
			if len(resp.Contents) == 0 {
				return
			}
			for _, obj := range resp.Contents {
				if obj.Key == nil {
					continue
				}
				if !yield(s3ObjectInfo(obj), nil) {
					return
				}
			}
			marker := nextMarker(resp)
			if marker == "" {
				return
			}
			input.Marker = aws.String(marker)
		}
	}
}

// nextMarker returns the marker for the following page, or "" once the
// listing is complete. S3 only returns NextMarker for delimited listings,
// otherwise the last key of the page continues the listing.
func nextMarker(resp *s3.ListObjectsOutput) string {
	if resp.IsTruncated == nil || !*resp.IsTruncated {
		return ""
	}
	if resp.NextMarker != nil {
		return *resp.NextMarker
	}
	if last := resp.Contents[len(resp.Contents)-1]; last.Key != nil {
		return *last.Key
	}
	return ""
}

func s3ObjectInfo(obj types.Object) ObjectInfo {
	info := ObjectInfo{Key: *obj.Key}
	if obj.Size != nil {
		info.Size = *obj.Size
	}
	if obj.ETag != nil {
		info.ETag = strings.Trim(*obj.ETag, "\"")
	}
	if obj.LastModified != nil {
		info.LastModified = *obj.LastModified
	}
	return info
}

func (p *s3Provider) Copy(ctx context.Context, src, dst Path) error {
	_, err := p.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dst.Bucket),
		Key:        aws.String(dst.Key),
		CopySource: aws.String(src.String()),
	})
	return err
}

func (p *s3Provider) Close() error {
	return nil
}
