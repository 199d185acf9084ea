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
	"github.com/ethereum/go-ethereum/log"
	"github.com/tinyevm/tinyevm/go/ledger"
	"github.com/tinyevm/tinyevm/go/tinyevm"
)

// Executor runs contract deployments and calls on a single Ledger. An
// Executor is not safe for concurrent use; see Shared and Ephemeral for
// the supported ways of sharing executors.
type Executor struct {
	ledger    *ledger.Ledger
	config    Config
	processor tinyevm.Processor
	closed    bool
}

// New binds the given ledger to a new Executor using the processor named in
// the configuration. It fails with ledger.ErrLedgerInUse if the ledger is
// bound to another Executor.
func New(state *ledger.Ledger, config Config) (*Executor, error) {
	processor, err := tinyevm.NewProcessor(config.Processor)
	if err != nil {
		return nil, err
	}
	return newExecutor(state, config, processor)
}

func newExecutor(state *ledger.Ledger, config Config, processor tinyevm.Processor) (*Executor, error) {
	if err := state.Bind(); err != nil {
		return nil, err
	}
	return &Executor{
		ledger:    state,
		config:    config,
		processor: processor,
	}, nil
}

// Close releases the ledger. Closing an executor twice has no effect.
func (e *Executor) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.ledger.Release()
}

// Ledger provides access to the ledger of this executor, for instance to
// read balances or to export a snapshot.
func (e *Executor) Ledger() *ledger.Ledger {
	return e.ledger
}

// Deploy runs the given init code as a CREATE2 creation of the creator and
// returns the address of the new contract. If the init code does not run
// successfully, a *DeploymentFailedError is returned.
func (e *Executor) Deploy(creator tinyevm.Address, salt tinyevm.Hash, initCode tinyevm.Code) (tinyevm.Address, error) {
	receipt, err := e.run(tinyevm.Transaction{
		Sender: creator,
		Input:  tinyevm.Data(initCode),
		Salt:   salt,
	})
	if err != nil {
		return tinyevm.Address{}, err
	}
	deployCounter.Inc(1)
	if receipt.Status != tinyevm.Succeeded {
		return tinyevm.Address{}, &DeploymentFailedError{Outcome: receipt.Outcome()}
	}

	derived := tinyevm.CreateAddress2(creator, salt, initCode)
	if receipt.ContractAddress == nil || *receipt.ContractAddress != derived {
		panic(&AddressMismatchError{Derived: derived, Reported: receipt.ContractAddress})
	}
	log.Debug("Deployed contract", "creator", creator, "address", derived, "gas", receipt.GasUsed)
	return derived, nil
}

// Call runs a message call of the sender to the given contract. Reverted,
// failed and trapped executions are reported through the outcome; errors
// signal that the call could not be run at all.
func (e *Executor) Call(contract, sender tinyevm.Address, input tinyevm.Data) (tinyevm.Outcome, error) {
	receipt, err := e.run(tinyevm.Transaction{
		Sender:    sender,
		Recipient: &contract,
		Input:     input,
	})
	if err != nil {
		return tinyevm.Outcome{}, err
	}
	callCounter.Inc(1)
	log.Debug("Called contract", "sender", sender, "contract", contract, "status", receipt.Status, "gas", receipt.GasUsed)
	return receipt.Outcome(), nil
}

// run completes the transaction with the configured parameters and runs it
// as a transaction of its own on the ledger.
func (e *Executor) run(transaction tinyevm.Transaction) (tinyevm.Receipt, error) {
	if e.closed {
		return tinyevm.Receipt{}, ErrClosed
	}
	transaction.Origin = e.config.Context.Origin
	transaction.GasPrice = e.config.Context.GasPrice
	transaction.GasLimit = e.config.GasLimit

	e.ledger.BeginTransaction()
	receipt, err := e.processor.Run(e.config.blockParameters(), transaction, e.ledger)
	e.ledger.EndTransaction(true)
	if err != nil {
		return tinyevm.Receipt{}, err
	}
	countOutcome(receipt.Status)
	return receipt, nil
}
