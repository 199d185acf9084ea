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

//go:generate mockgen -source processor.go -destination processor_mock.go -package tinyevm

// Processor is an interface for a component capable of executing transactions
// against a ledger. It wraps an interpreter and takes care of everything around
// the byte-code execution: value transfers, nonce handling, contract creation
// and recursive calls. Processors never retain the transaction context beyond
// a single Run.
type Processor interface {
	// Run executes the transaction in the given context. The error is nil
	// whenever the transaction was processed, even if it was reverted or
	// failed; those are reported through the receipt's status. A non-nil
	// error signals that the processor could not handle the request at all.
	Run(BlockParameters, Transaction, TransactionContext) (Receipt, error)
}

// Transaction summarizes the parameters of a transaction to be executed.
type Transaction struct {
	Sender    Address  // the sender of the transaction
	Recipient *Address // the receiver of a transaction, nil if a new contract is to be created
	Origin    Address  // the origin reported by the ORIGIN instruction
	GasPrice  Value    // the price reported by the GASPRICE instruction
	Input     Data     // the call data, or the init code for contract creations
	Value     Value    // the amount of network currency to transfer to the recipient
	GasLimit  Gas      // the maximum amount of gas that can be used by the transaction
	Salt      Hash     // only relevant for contract creations, which use the CREATE2 scheme
}

// Receipt summarizes the result of the execution of a transaction.
type Receipt struct {
	Status          Status   // the classified end of the execution
	Output          Data     // the output produced by the transaction
	ContractAddress *Address // filled if a contract was created by this transaction
	GasUsed         Gas      // gas used by the transaction
	Logs            []Log    // logs produced by the transaction
}

// Outcome projects the receipt onto the externally visible result.
func (r Receipt) Outcome() Outcome {
	return Outcome{
		Status:     r.Status,
		ReturnData: r.Output,
	}
}
