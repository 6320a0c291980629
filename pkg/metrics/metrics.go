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
	"bytes"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Collector captures metrics for provider calls issued by the helpers.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	bidPrice        *prometheus.GaugeVec
}

// NewCollector initializes a new metrics registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	collector := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "jobflow_provider_requests_total", Help: "Total number of provider requests"},
			[]string{"service", "operation", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobflow_provider_request_duration_seconds",
				Help:    "Provider request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "operation"},
		),
		bidPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jobflow_spot_bid_price",
				Help: "Last computed spot bid price in USD per instance hour",
			},
			[]string{"instance_type"},
		),
	}

	registry.MustRegister(collector.requestsTotal, collector.requestDuration, collector.bidPrice)
	return collector
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveRequest records the outcome of one provider call.
func (c *Collector) ObserveRequest(service, operation string, err error, duration time.Duration) {
	if c == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	c.requestsTotal.WithLabelValues(service, operation, status).Inc()
	c.requestDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// ObserveBidPrice records the bid computed for a spot instance type.
func (c *Collector) ObserveBidPrice(instanceType string, price float64) {
	if c == nil {
		return
	}
	c.bidPrice.WithLabelValues(instanceType).Set(price)
}

// Write writes all metrics to a Prometheus text file.
func (c *Collector) Write(path string) error {
	if c == nil {
		return nil
	}
	metricFamilies, err := c.registry.Gather()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range metricFamilies {
		if err := enc.Encode(family); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
