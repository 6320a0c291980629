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
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockS3API is a mock implementation of S3API
type MockS3API struct {
	mock.Mock
}

func (m *MockS3API) ListObjects(ctx context.Context, params *s3.ListObjectsInput, optFns ...func(*s3.Options)) (*s3.ListObjectsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsOutput), args.Error(1)
}

func (m *MockS3API) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func (m *MockS3API) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.CopyObjectOutput), args.Error(1)
}

// MockUploader is a mock implementation of S3Uploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manager.UploadOutput), args.Error(1)
}

// fakeDownloader writes a fixed payload
type fakeDownloader struct {
	payload []byte
	input   *s3.GetObjectInput
}

func (f *fakeDownloader) Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error) {
	f.input = input
	n, err := w.WriteAt(f.payload, 0)
	return int64(n), err
}

func objects(keys ...string) []types.Object {
	out := make([]types.Object, 0, len(keys))
	for _, key := range keys {
		out = append(out, types.Object{Key: aws.String(key), Size: aws.Int64(1), ETag: aws.String("\"etag-" + key + "\"")})
	}
	return out
}

func markerIs(marker string) interface{} {
	return mock.MatchedBy(func(in *s3.ListObjectsInput) bool {
		if marker == "" {
			return in.Marker == nil
		}
		return in.Marker != nil && *in.Marker == marker
	})
}

func collect(t *testing.T, p Provider, prefix Path) ([]ObjectInfo, error) {
	t.Helper()
	var out []ObjectInfo
	for info, err := range p.List(context.Background(), prefix) {
		if err != nil {
			return out, err
		}
		out = append(out, info)
	}
	return out, nil
}

func TestS3ListFollowsNextMarker(t *testing.T) {
	api := &MockS3API{}
	api.On("ListObjects", mock.Anything, markerIs("")).Return(&s3.ListObjectsOutput{
		Contents:    objects("out/a", "out/b"),
		IsTruncated: aws.Bool(true),
		NextMarker:  aws.String("out/b"),
	}, nil).Once()
	api.On("ListObjects", mock.Anything, markerIs("out/b")).Return(&s3.ListObjectsOutput{
		Contents:    objects("out/c"),
		IsTruncated: aws.Bool(false),
	}, nil).Once()

	got, err := collect(t, NewS3Provider(api, nil, nil), ParsePath("bucket/out/"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "out/c", got[2].Key)
	assert.Equal(t, "etag-out/a", got[0].ETag)
	api.AssertExpectations(t)

	first := api.Calls[0].Arguments.Get(1).(*s3.ListObjectsInput)
	assert.Equal(t, "bucket", *first.Bucket)
	assert.Equal(t, "out/", *first.Prefix)
}

func TestS3ListFallsBackToLastKey(t *testing.T) {
	api := &MockS3API{}
	api.On("ListObjects", mock.Anything, markerIs("")).Return(&s3.ListObjectsOutput{
		Contents:    objects("k1", "k2"),
		IsTruncated: aws.Bool(true),
	}, nil).Once()
	api.On("ListObjects", mock.Anything, markerIs("k2")).Return(&s3.ListObjectsOutput{
		Contents: objects("k3"),
	}, nil).Once()

	got, err := collect(t, NewS3Provider(api, nil, nil), ParsePath("bucket"))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	api.AssertExpectations(t)
}

func TestS3ListStopsOnEmptyPage(t *testing.T) {
	api := &MockS3API{}
	api.On("ListObjects", mock.Anything, markerIs("")).Return(&s3.ListObjectsOutput{
		IsTruncated: aws.Bool(true),
		NextMarker:  aws.String("ignored"),
	}, nil).Once()

	got, err := collect(t, NewS3Provider(api, nil, nil), ParsePath("bucket/none"))
	require.NoError(t, err)
	assert.Empty(t, got)
	api.AssertNumberOfCalls(t, "ListObjects", 1)
}

func TestS3ListIsLazy(t *testing.T) {
	api := &MockS3API{}
	api.On("ListObjects", mock.Anything, markerIs("")).Return(&s3.ListObjectsOutput{
		Contents:    objects("k1", "k2"),
		IsTruncated: aws.Bool(true),
		NextMarker:  aws.String("k2"),
	}, nil).Once()

	for info, err := range NewS3Provider(api, nil, nil).List(context.Background(), ParsePath("bucket")) {
		require.NoError(t, err)
		assert.Equal(t, "k1", info.Key)
		break
	}
	api.AssertNumberOfCalls(t, "ListObjects", 1)
}

func TestS3ListPropagatesError(t *testing.T) {
	denied := errors.New("AccessDenied")
	api := &MockS3API{}
	api.On("ListObjects", mock.Anything, mock.Anything).Return(nil, denied)

	_, err := collect(t, NewS3Provider(api, nil, nil), ParsePath("bucket/x"))
	assert.Same(t, denied, err)
}

func TestS3Delete(t *testing.T) {
	api := &MockS3API{}
	api.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return *in.Bucket == "bucket" && *in.Key == "a/b.txt"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	p := NewS3Provider(api, nil, nil)
	require.NoError(t, p.Delete(context.Background(), ParsePath("bucket/a/b.txt")))
	assert.Error(t, p.Delete(context.Background(), ParsePath("bucket")))
	api.AssertExpectations(t)
}

func TestS3Copy(t *testing.T) {
	api := &MockS3API{}
	api.On("CopyObject", mock.Anything, mock.MatchedBy(func(in *s3.CopyObjectInput) bool {
		return *in.Bucket == "bucket2" && *in.Key == "some_path2/fname2.txt" && *in.CopySource == "bucket1/some_path/fname.txt"
	})).Return(&s3.CopyObjectOutput{}, nil).Once()

	p := NewS3Provider(api, nil, nil)
	require.NoError(t, p.Copy(context.Background(), ParsePath("bucket1/some_path/fname.txt"), ParsePath("bucket2/some_path2/fname2.txt")))
	api.AssertExpectations(t)
}

func TestS3Upload(t *testing.T) {
	local := filepath.Join(t.TempDir(), "map.py")
	require.NoError(t, os.WriteFile(local, []byte("print(1)\n"), 0o644))

	uploader := &MockUploader{}
	uploader.On("Upload", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "code" && *in.Key == "src/map.py"
	})).Return(&manager.UploadOutput{ETag: aws.String("\"abc\"")}, nil).Once()

	info, err := NewS3Provider(nil, uploader, nil).Upload(context.Background(), ParsePath("code/src/map.py"), local)
	require.NoError(t, err)
	assert.Equal(t, int64(9), info.Size)
	assert.Equal(t, "abc", info.ETag)
	uploader.AssertExpectations(t)

	_, err = NewS3Provider(nil, uploader, nil).Upload(context.Background(), ParsePath("code/src/missing.py"), filepath.Join(t.TempDir(), "missing.py"))
	assert.Error(t, err)
}

func TestS3Download(t *testing.T) {
	downloader := &fakeDownloader{payload: []byte("hello")}
	local := filepath.Join(t.TempDir(), "nested", "file.txt")

	info, err := NewS3Provider(nil, nil, downloader).Download(context.Background(), ParsePath("bucket/s3_path/file.txt"), local)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "s3_path/file.txt", *downloader.input.Key)

	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestNewProviderRejectsUnknown(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{})
	assert.Error(t, err)
	_, err = NewProvider(context.Background(), Config{Provider: "ftp"})
	assert.Error(t, err)
	_, err = NewProvider(context.Background(), Config{Provider: "minio"})
	assert.Error(t, err)
}
