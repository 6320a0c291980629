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

package spotprice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedBody = `callback({"vers":0.01,"config":{"rate":"perhr","valueColumns":["linux"],"currencies":["USD"],"regions":[
{"region":"us-east","instanceTypes":[{"type":"generalCurrentGen","sizes":[
  {"size":"m1.medium","valueColumns":[{"name":"linux","prices":{"USD":"0.0081"}}]}]}]},
{"region":"apac-sin","instanceTypes":[
  {"type":"generalCurrentGen","sizes":[
    {"size":"m1.medium","valueColumns":[{"name":"linux","prices":{"USD":"N/A*"}}]},
    {"size":"c3.xlarge","valueColumns":[{"name":"linux","prices":{"USD":"0.1"}}]}]},
  {"type":"memoryCurrentGen","sizes":[
    {"size":"r3.xlarge","valueColumns":[{"name":"linux","prices":{"USD":0.0450}}]},
    {"size":"c3.xlarge","valueColumns":[{"name":"linux","prices":{"USD":"9.99"}}]}]}]}
]}});`

func newFeedServer(t *testing.T, body string, status int) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var requests []*http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func fixedNow() time.Time {
	return time.Unix(1476000000, 0)
}

func TestBid(t *testing.T) {
	assert.Equal(t, "0.12", Bid(0.1, 1.2))
	assert.Equal(t, "0.15", Bid(0.1, 1.5))
	assert.Equal(t, "0.123", Bid(0.1234, 1))
	assert.Equal(t, "3", Bid(2, 1.5))
}

func TestStripJSONP(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(StripJSONP([]byte("  callback({\"a\":1});\n"))))
	assert.Equal(t, `{"a":"(x);"}`, string(StripJSONP([]byte(`callback({"a":"(x);"});`))))
	assert.Equal(t, `{"a":1}`, string(StripJSONP([]byte(`{"a":1}`))))
}

func TestFeedRegion(t *testing.T) {
	region, ok := FeedRegion("ap-southeast-1")
	assert.True(t, ok)
	assert.Equal(t, "apac-sin", region)

	region, ok = FeedRegion("US-EAST-1")
	assert.True(t, ok)
	assert.Equal(t, "us-east", region)

	_, ok = FeedRegion("mars-north-1")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	server, requests := newFeedServer(t, feedBody, http.StatusOK)
	lookup := &Lookup{FeedURL: server.URL + "/spot.js", Now: fixedNow}

	price, err := lookup.Resolve(context.Background(), "c3.xlarge")
	require.NoError(t, err)
	assert.Equal(t, 0.1, price)

	require.Len(t, *requests, 1)
	query := (*requests)[0].URL.Query()
	assert.Equal(t, "callback", query.Get("callback"))
	assert.Equal(t, "1476000000", query.Get("_"))

	price, err = lookup.Resolve(context.Background(), "r3.xlarge")
	require.NoError(t, err)
	assert.Equal(t, 0.045, price)
}

func TestResolveUsesConfiguredRegion(t *testing.T) {
	server, _ := newFeedServer(t, feedBody, http.StatusOK)

	price, err := (&Lookup{FeedURL: server.URL, Region: "us-east"}).Resolve(context.Background(), "m1.medium")
	require.NoError(t, err)
	assert.Equal(t, 0.0081, price)

	_, err = (&Lookup{FeedURL: server.URL}).Resolve(context.Background(), "m1.medium")
	assert.True(t, errors.Is(err, ErrPriceNotFound))
}

func TestResolveNotFound(t *testing.T) {
	server, _ := newFeedServer(t, feedBody, http.StatusOK)

	_, err := (&Lookup{FeedURL: server.URL}).Resolve(context.Background(), "x1.32xlarge")
	assert.ErrorIs(t, err, ErrPriceNotFound)
}

func TestResolveHTTPError(t *testing.T) {
	server, _ := newFeedServer(t, "nope", http.StatusForbidden)

	_, err := (&Lookup{FeedURL: server.URL}).Resolve(context.Background(), "c3.xlarge")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPriceNotFound)
}

func TestResolveBadDocument(t *testing.T) {
	server, _ := newFeedServer(t, "callback(not json);", http.StatusOK)

	_, err := (&Lookup{FeedURL: server.URL}).Resolve(context.Background(), "c3.xlarge")
	assert.Error(t, err)
}

func TestBidPrice(t *testing.T) {
	server, requests := newFeedServer(t, feedBody, http.StatusOK)
	lookup := &Lookup{FeedURL: server.URL}
	ctx := context.Background()

	none, err := lookup.BidPrice(ctx, "ON_DEMAND", "c3.xlarge", nil)
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.Empty(t, *requests)

	multiplier := 1.2
	bid, err := lookup.BidPrice(ctx, MarketSpot, "c3.xlarge", &multiplier)
	require.NoError(t, err)
	require.NotNil(t, bid)
	assert.Equal(t, "0.12", *bid)

	bid, err = lookup.BidPrice(ctx, MarketSpot, "c3.xlarge", nil)
	require.NoError(t, err)
	assert.Equal(t, "0.15", *bid)

	lookup.DefaultBidMultiplier = 2
	bid, err = lookup.BidPrice(ctx, MarketSpot, "c3.xlarge", nil)
	require.NoError(t, err)
	assert.Equal(t, "0.2", *bid)

	_, err = lookup.BidPrice(ctx, MarketSpot, "x1.32xlarge", nil)
	assert.ErrorIs(t, err, ErrPriceNotFound)
}
