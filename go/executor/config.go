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
	"github.com/tinyevm/tinyevm/go/tinyevm"

	// The default processor.
	_ "github.com/tinyevm/tinyevm/go/interpreter/geth"
)

// DefaultGasLimit is the gas ceiling granted to every transaction unless
// configured otherwise. It is high enough to never limit sandbox workloads.
const DefaultGasLimit = tinyevm.Gas(1_000_000_000_000_000)

// DefaultProcessor is the name of the processor used by default.
const DefaultProcessor = "geth"

// Config defines the parameters shared by all transactions run by an
// Executor.
type Config struct {
	Revision  tinyevm.Revision         // overrides the revision of the context
	GasLimit  tinyevm.Gas              // gas made available to each transaction
	Context   tinyevm.ExecutionContext // block and transaction parameters
	Processor string                   // name of a registered processor
}

// DefaultConfig returns the configuration of the sandbox: Istanbul rules,
// an all-zero execution context and an effectively unbounded gas ceiling.
func DefaultConfig() Config {
	return Config{
		Revision:  tinyevm.R07_Istanbul,
		GasLimit:  DefaultGasLimit,
		Context:   tinyevm.ZeroContext(),
		Processor: DefaultProcessor,
	}
}

func (c Config) blockParameters() tinyevm.BlockParameters {
	res := c.Context.BlockParameters
	res.Revision = c.Revision
	return res
}
