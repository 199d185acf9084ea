// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/metrics"
	cliUtils "github.com/tinyevm/tinyevm/go/cmd/tinyevm/cli"
	"github.com/tinyevm/tinyevm/go/dispatch"
	"github.com/tinyevm/tinyevm/go/executor"
	"github.com/urfave/cli/v2"
)

// newService creates a dispatch service on a fresh shared ledger configured
// by the global flags. The returned function releases the shared ledger.
func newService(context *cli.Context) (*dispatch.Service, func(), error) {
	config, err := cliUtils.FetchConfig(context)
	if err != nil {
		return nil, nil, err
	}
	shared, err := executor.NewShared(config)
	if err != nil {
		return nil, nil, err
	}
	return dispatch.NewService(shared, config), shared.Close, nil
}

// printMetrics writes the values of all registered metrics of this
// application in alphabetical order.
func printMetrics(out io.Writer) {
	lines := []string{}
	metrics.DefaultRegistry.Each(func(name string, metric interface{}) {
		if !strings.HasPrefix(name, "tinyevm/") {
			return
		}
		switch m := metric.(type) {
		case metrics.Counter:
			lines = append(lines, fmt.Sprintf("%s: %d", name, m.Snapshot().Count()))
		case metrics.Meter:
			lines = append(lines, fmt.Sprintf("%s: %d", name, m.Snapshot().Count()))
		case metrics.Timer:
			snapshot := m.Snapshot()
			lines = append(lines, fmt.Sprintf("%s: count=%d mean=%.0fns max=%dns", name, snapshot.Count(), snapshot.Mean(), snapshot.Max()))
		}
	})
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}
