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
	"os"
	"path/filepath"
)

// openLocal opens a file for upload and returns its size.
func openLocal(localPath string) (*os.File, int64, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, 0, err
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, err
	}
	return file, stat.Size(), nil
}

func ensureParent(localPath string) error {
	return os.MkdirAll(filepath.Dir(localPath), 0o755)
}

// createLocal truncates or creates localPath, making parent directories as needed.
func createLocal(localPath string) (*os.File, error) {
	if err := ensureParent(localPath); err != nil {
		return nil, err
	}
	return os.Create(localPath)
}
