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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splunk/jobflow/pkg/spotprice"
)

func (a *app) spotLookup() *spotprice.Lookup {
	lookup := a.cfg.SpotLookup()
	lookup.Metrics = a.metrics
	return lookup
}

func newSpotPriceCmd(a *app) *cobra.Command {
	var multiplier float64

	cmd := &cobra.Command{
		Use:   "spot-price <instance-type>",
		Short: "Print the spot bid for an instance type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var requested *float64
			if cmd.Flags().Changed("bid-multiplier") {
				requested = &multiplier
			}
			bid, err := a.spotLookup().BidPrice(cmd.Context(), spotprice.MarketSpot, args[0], requested)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), *bid)
			return nil
		},
	}
	cmd.Flags().Float64Var(&multiplier, "bid-multiplier", spotprice.DefaultBidMultiplier, "factor applied to the reference price")
	return cmd
}
