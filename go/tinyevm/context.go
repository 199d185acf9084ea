// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package tinyevm

// BlockParameters contains information about the current block.
type BlockParameters struct {
	ChainID     Word
	BlockNumber int64
	Timestamp   int64
	Coinbase    Address
	GasLimit    Gas
	PrevRandao  Hash
	BaseFee     Value
	BlobBaseFee Value
	Revision    Revision
}

// TransactionParameters contains information about current transaction.
type TransactionParameters struct {
	Origin   Address
	GasPrice Value
}

// ExecutionContext is the environment transactions are executed in. It is
// fixed when an executor is created and never modified afterwards.
type ExecutionContext struct {
	BlockParameters
	TransactionParameters
}

// ZeroContext returns the execution context used by the sandbox: every
// environmental value is zero and the Istanbul rules are in effect.
func ZeroContext() ExecutionContext {
	return ExecutionContext{
		BlockParameters: BlockParameters{
			Revision: R07_Istanbul,
		},
	}
}
