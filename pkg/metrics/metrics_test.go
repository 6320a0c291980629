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

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	c := NewCollector()

	c.ObserveRequest("s3", "PutObject", nil, 10*time.Millisecond)
	c.ObserveRequest("s3", "PutObject", nil, 20*time.Millisecond)
	c.ObserveRequest("s3", "PutObject", errors.New("denied"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("s3", "PutObject", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("s3", "PutObject", StatusError)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.requestDuration))
}

func TestObserveBidPrice(t *testing.T) {
	c := NewCollector()
	c.ObserveBidPrice("c3.xlarge", 0.12)
	c.ObserveBidPrice("c3.xlarge", 0.15)

	assert.Equal(t, 0.15, testutil.ToFloat64(c.bidPrice.WithLabelValues("c3.xlarge")))
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveRequest("emr", "RunJobFlow", nil, time.Second)
		c.ObserveBidPrice("m1.medium", 1)
	})
	assert.Nil(t, c.Registry())
	assert.NoError(t, c.Write(filepath.Join(t.TempDir(), "metrics.prom")))
}

func TestWrite(t *testing.T) {
	c := NewCollector()
	c.ObserveRequest("emr", "RunJobFlow", nil, time.Second)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, c.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `jobflow_provider_requests_total{operation="RunJobFlow",service="emr",status="success"} 1`)
}
