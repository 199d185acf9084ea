// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package executor

import (
	"strings"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/tinyevm/tinyevm/go/tinyevm"
)

var (
	deployCounter = metrics.NewRegisteredCounter("tinyevm/executor/deploys", nil)
	callCounter   = metrics.NewRegisteredCounter("tinyevm/executor/calls", nil)
	trappedMeter  = metrics.NewRegisteredMeter("tinyevm/executor/trapped", nil)

	sharedLockWaitTimer = metrics.NewRegisteredTimer("tinyevm/shared/lock/wait", nil)
	sharedLockHoldTimer = metrics.NewRegisteredTimer("tinyevm/shared/lock/hold", nil)
	ephemeralRunTimer   = metrics.NewRegisteredTimer("tinyevm/ephemeral/run", nil)
)

// countOutcome records the status of a finished transaction.
func countOutcome(status tinyevm.Status) {
	name := "tinyevm/executor/outcome/" + strings.ToLower(status.String())
	metrics.GetOrRegisterCounter(name, nil).Inc(1)
	if status == tinyevm.Trapped {
		trappedMeter.Mark(1)
	}
}
