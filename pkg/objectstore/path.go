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
	"path"
	"strings"
)

// Path addresses one object (or a key prefix) as a bucket plus a key.
// On Azure the bucket is the container name.
type Path struct {
	Bucket string
	Key    string
}

// ParsePath splits a composite "bucket/rest/of/key" string on its first
// separator. A string without a separator yields an empty key.
func ParsePath(value string) Path {
	bucket, key, _ := strings.Cut(value, "/")
	return Path{Bucket: bucket, Key: key}
}

// String joins the path back into its composite form.
func (p Path) String() string {
	if p.Key == "" {
		return p.Bucket
	}
	return p.Bucket + "/" + p.Key
}

// Join returns the path extended with name, see ResolveKey.
func (p Path) Join(name string) Path {
	return Path{Bucket: p.Bucket, Key: ResolveKey(p.Key, name)}
}

// BaseName returns the last element of a slash separated path.
func BaseName(value string) string {
	if value == "" {
		return ""
	}
	return path.Base(value)
}

// ResolveKey joins a base prefix with a key without introducing double slashes.
func ResolveKey(prefix string, key string) string {
	cleanPrefix := strings.TrimPrefix(prefix, "/")
	cleanKey := strings.TrimPrefix(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	if strings.HasSuffix(cleanPrefix, "/") {
		return cleanPrefix + cleanKey
	}
	return cleanPrefix + "/" + cleanKey
}
