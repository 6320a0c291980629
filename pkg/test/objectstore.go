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

package test

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/splunk/jobflow/pkg/objectstore"
)

// blank assignment to verify that MockObjectStore implements Provider
var _ objectstore.Provider = &MockObjectStore{}

// UploadCall records one call to Upload
type UploadCall struct {
	Path      string
	LocalPath string
}

// MockObjectStore is an in-memory object store keyed by "bucket/key"
type MockObjectStore struct {
	mu sync.Mutex

	Objects map[string][]byte
	Uploads []UploadCall
	Deletes []string
	Copies  [][2]string

	// PageSize bounds how many objects one List page returns, 0 means unbounded
	PageSize int
	// ListPages counts the pages served
	ListPages int

	// Errors maps an operation name (upload, download, delete, list, copy) to the error it returns
	Errors map[string]error
}

// NewMockObjectStore returns an empty store
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{Objects: map[string][]byte{}, Errors: map[string]error{}}
}

// Put stores an object without recording an upload
func (m *MockObjectStore) Put(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[path] = data
}

// Has reports whether an object exists at path
func (m *MockObjectStore) Has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[path]
	return ok
}

// UploadedPaths returns the remote paths of all recorded uploads in call order
func (m *MockObjectStore) UploadedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.Uploads))
	for _, call := range m.Uploads {
		paths = append(paths, call.Path)
	}
	return paths
}

func (m *MockObjectStore) fail(op string) error {
	if m.Errors == nil {
		return nil
	}
	return m.Errors[op]
}

// Upload is a mock call to Upload
func (m *MockObjectStore) Upload(ctx context.Context, dst objectstore.Path, localPath string) (objectstore.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("upload"); err != nil {
		return objectstore.ObjectInfo{}, err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return objectstore.ObjectInfo{}, err
	}
	m.Objects[dst.String()] = data
	m.Uploads = append(m.Uploads, UploadCall{Path: dst.String(), LocalPath: localPath})
	return objectstore.ObjectInfo{Key: dst.Key, Size: int64(len(data))}, nil
}

// Download is a mock call to Download
func (m *MockObjectStore) Download(ctx context.Context, src objectstore.Path, localPath string) (objectstore.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("download"); err != nil {
		return objectstore.ObjectInfo{}, err
	}
	data, ok := m.Objects[src.String()]
	if !ok {
		return objectstore.ObjectInfo{}, fmt.Errorf("NoSuchKey: %s", src)
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return objectstore.ObjectInfo{}, err
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return objectstore.ObjectInfo{}, err
	}
	return objectstore.ObjectInfo{Key: src.Key, Size: int64(len(data))}, nil
}

// Delete is a mock call to Delete
func (m *MockObjectStore) Delete(ctx context.Context, target objectstore.Path) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("delete"); err != nil {
		return err
	}
	delete(m.Objects, target.String())
	m.Deletes = append(m.Deletes, target.String())
	return nil
}

// List is a mock call to List, served in pages of PageSize
func (m *MockObjectStore) List(ctx context.Context, prefix objectstore.Path) iter.Seq2[objectstore.ObjectInfo, error] {
	return func(yield func(objectstore.ObjectInfo, error) bool) {
		m.mu.Lock()
		if err := m.fail("list"); err != nil {
			m.mu.Unlock()
			yield(objectstore.ObjectInfo{}, err)
			return
		}
		var keys []string
		for path := range m.Objects {
			p := objectstore.ParsePath(path)
			if p.Bucket == prefix.Bucket && strings.HasPrefix(p.Key, prefix.Key) {
				keys = append(keys, p.Key)
			}
		}
		sort.Strings(keys)
		pageSize := m.PageSize
		m.mu.Unlock()
		if pageSize <= 0 {
			pageSize = len(keys) + 1
		}

		for start := 0; start < len(keys); start += pageSize {
			m.mu.Lock()
			m.ListPages++
			m.mu.Unlock()
			end := min(start+pageSize, len(keys))
			for _, key := range keys[start:end] {
				if !yield(objectstore.ObjectInfo{Key: key}, nil) {
					return
				}
			}
		}
	}
}

// Copy is a mock call to Copy
func (m *MockObjectStore) Copy(ctx context.Context, src, dst objectstore.Path) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("copy"); err != nil {
		return err
	}
	data, ok := m.Objects[src.String()]
	if !ok {
		return fmt.Errorf("NoSuchKey: %s", src)
	}
	m.Objects[dst.String()] = data
	m.Copies = append(m.Copies, [2]string{src.String(), dst.String()})
	return nil
}

// Close is a mock call to Close
func (m *MockObjectStore) Close() error {
	return nil
}
