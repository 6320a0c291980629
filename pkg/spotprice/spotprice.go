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

// Package spotprice computes spot bid prices from the public EC2 spot price feed.
package spotprice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"github.com/splunk/jobflow/pkg/metrics"
)

const (
	DefaultFeedURL       = "https://spot-price.s3.amazonaws.com/spot.js"
	DefaultRegion        = "apac-sin"
	DefaultBidMultiplier = 1.5

	// MarketSpot is the only market a bid price is computed for
	MarketSpot = "SPOT"

	jsonpCallback = "callback"
)

// ErrPriceNotFound is returned when the feed has no usable price for the instance type.
var ErrPriceNotFound = errors.New("the specified instance type doesn't exist or is not available for spot use")

// feedRegions maps AWS region codes to the region names used by the feed.
var feedRegions = map[string]string{
	"us-east-1":      "us-east",
	"us-west-1":      "us-west",
	"us-west-2":      "us-west-2",
	"eu-west-1":      "eu-ireland",
	"eu-central-1":   "eu-central-1",
	"ap-southeast-1": "apac-sin",
	"ap-southeast-2": "apac-syd",
	"ap-northeast-1": "apac-tokyo",
	"sa-east-1":      "sa-east-1",
}

// FeedRegion returns the feed region name for an AWS region code.
func FeedRegion(awsRegion string) (string, bool) {
	region, ok := feedRegions[strings.ToLower(strings.TrimSpace(awsRegion))]
	return region, ok
}

// Lookup resolves spot prices. The zero value is usable and falls back to
// the package defaults.
type Lookup struct {
	FeedURL              string
	Region               string
	DefaultBidMultiplier float64
	HTTPClient           *http.Client
	Now                  func() time.Time
	Metrics              *metrics.Collector
}

type feedDocument struct {
	Config struct {
		Regions []struct {
			Region        string `json:"region"`
			InstanceTypes []struct {
				Type  string `json:"type"`
				Sizes []struct {
					Size         string `json:"size"`
					ValueColumns []struct {
						Name   string                     `json:"name"`
						Prices map[string]json.RawMessage `json:"prices"`
					} `json:"valueColumns"`
				} `json:"sizes"`
			} `json:"instanceTypes"`
		} `json:"regions"`
	} `json:"config"`
}

func (l *Lookup) region() string {
	if l.Region != "" {
		return l.Region
	}
	return DefaultRegion
}

func (l *Lookup) multiplier(requested *float64) float64 {
	if requested != nil {
		return *requested
	}
	if l.DefaultBidMultiplier > 0 {
		return l.DefaultBidMultiplier
	}
	return DefaultBidMultiplier
}

func (l *Lookup) requestURL() (string, error) {
	feedURL := l.FeedURL
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	u, err := url.Parse(feedURL)
	if err != nil {
		return "", err
	}
	query := u.Query()
	query.Set("callback", jsonpCallback)
	query.Set("_", strconv.FormatInt(now().Unix(), 10))
	u.RawQuery = query.Encode()
	return u.String(), nil
}

func (l *Lookup) fetch(ctx context.Context) ([]byte, error) {
	requestURL, err := l.requestURL()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err == nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		resp.Body.Close()
		err = fmt.Errorf("pricing feed returned %s", resp.Status)
	}
	l.Metrics.ObserveRequest("pricing", "GetSpotFeed", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// StripJSONP removes the "callback(" ... ");" wrapper around the feed document.
func StripJSONP(body []byte) []byte {
	data := bytes.TrimSpace(body)
	data = bytes.TrimPrefix(data, []byte(jsonpCallback+"("))
	data = bytes.TrimSuffix(data, []byte(";"))
	data = bytes.TrimSuffix(data, []byte(")"))
	return data
}

// Resolve returns the current USD spot price of instanceType in the
// configured feed region.
func (l *Lookup) Resolve(ctx context.Context, instanceType string) (float64, error) {
	log := logr.FromContextOrDiscard(ctx).WithName("spotprice").WithValues("instanceType", instanceType, "region", l.region())

	body, err := l.fetch(ctx)
	if err != nil {
		log.Error(err, "unable to fetch pricing feed")
		return 0, err
	}
	price, err := findPrice(StripJSONP(body), l.region(), instanceType)
	if err != nil {
		return 0, err
	}
	log.V(1).Info("resolved spot price", "price", price)
	return price, nil
}

func findPrice(data []byte, region, instanceType string) (float64, error) {
	var doc feedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, errors.Wrap(err, "unable to decode pricing feed")
	}
	for _, r := range doc.Config.Regions {
		if r.Region != region {
			continue
		}
		for _, family := range r.InstanceTypes {
			for _, size := range family.Sizes {
				if size.Size != instanceType || len(size.ValueColumns) == 0 {
					continue
				}
				if price, ok := parsePrice(size.ValueColumns[0].Prices["USD"]); ok {
					return price, nil
				}
			}
		}
	}
	return 0, errors.Wrapf(ErrPriceNotFound, "instance type %q in region %q", instanceType, region)
}

// parsePrice accepts both quoted and bare numbers; "N/A" and zero are not prices.
func parsePrice(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	text := strings.Trim(string(raw), "\"")
	price, err := strconv.ParseFloat(text, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

// Bid multiplies price by multiplier and rounds to three decimals.
func Bid(price, multiplier float64) string {
	return strconv.FormatFloat(math.Round(price*multiplier*1000)/1000, 'f', -1, 64)
}

// BidPrice returns the bid for a group in market. Markets other than SPOT get
// no bid. A nil multiplier uses the default multiplier.
func (l *Lookup) BidPrice(ctx context.Context, market, instanceType string, multiplier *float64) (*string, error) {
	if market != MarketSpot {
		return nil, nil
	}
	price, err := l.Resolve(ctx, instanceType)
	if err != nil {
		return nil, err
	}
	factor := l.multiplier(multiplier)
	bid := Bid(price, factor)
	if value, err := strconv.ParseFloat(bid, 64); err == nil {
		l.Metrics.ObserveBidPrice(instanceType, value)
	}
	return &bid, nil
}
