// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package geth

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	geth "github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/tinyevm/tinyevm/go/tinyevm"
)

func init() {
	tinyevm.RegisterProcessorFactory("geth", NewProcessor)
}

// NewProcessor creates a processor running transactions through the EVM
// implementation of go-ethereum. By including this package, it gets
// registered in the global processor registry under the name "geth".
func NewProcessor() (tinyevm.Processor, error) {
	return &processor{}, nil
}

type processor struct{}

func (p *processor) Run(
	blockParams tinyevm.BlockParameters,
	transaction tinyevm.Transaction,
	context tinyevm.TransactionContext,
) (receipt tinyevm.Receipt, err error) {
	if blockParams.Revision < 0 || blockParams.Revision > newestSupportedRevision {
		return tinyevm.Receipt{}, &tinyevm.ErrUnsupportedRevision{Revision: blockParams.Revision}
	}

	// A panic raised by the interpreter aborts the transaction. All of its
	// effects on the context are undone.
	start := context.CreateSnapshot()
	defer func() {
		if issue := recover(); issue != nil {
			context.RestoreSnapshot(start)
			log.Warn("Interpreter aborted execution", "sender", transaction.Sender, "issue", issue)
			receipt = tinyevm.Receipt{Status: tinyevm.Trapped}
			err = nil
		}
	}()

	// --- setup ---

	chainConfig := MakeChainConfig(new(big.Int).SetBytes(blockParams.ChainID[:]), blockParams.Revision)
	blockCtx := makeBlockContext(blockParams)
	txCtx := geth.TxContext{
		Origin:     common.Address(transaction.Origin),
		GasPrice:   transaction.GasPrice.ToBig(),
		BlobFeeCap: blockParams.BlobBaseFee.ToBig(),
	}

	stateDb := newStateDbAdapter(context)
	evm := geth.NewEVM(blockCtx, txCtx, stateDb, chainConfig, geth.Config{})

	// Set up the initial access list.
	rules := makeRules(chainConfig, blockCtx)
	var dest *common.Address
	if transaction.Recipient != nil {
		dest = &common.Address{}
		*dest = common.Address(*transaction.Recipient)
	}
	stateDb.Prepare(rules, common.Address(transaction.Sender), blockCtx.Coinbase, dest, geth.ActivePrecompiles(rules), nil)

	// -- start of execution --

	var (
		gas             = uint64(transaction.GasLimit)
		sender          = geth.AccountRef(transaction.Sender)
		value           = transaction.Value.ToUint256()
		gasLeft         uint64
		output          []byte
		vmError         error
		createdContract *tinyevm.Address
	)
	if transaction.Recipient == nil {
		var created common.Address
		salt := new(uint256.Int).SetBytes32(transaction.Salt[:])
		output, created, gasLeft, vmError = evm.Create2(sender, transaction.Input, gas, value, salt)
		if vmError == nil {
			createdContract = &tinyevm.Address{}
			*createdContract = tinyevm.Address(created)
		}
	} else {
		// Increment the nonce to avoid double execution
		stateDb.SetNonce(common.Address(transaction.Sender), stateDb.GetNonce(common.Address(transaction.Sender))+1)
		output, gasLeft, vmError = evm.Call(sender, common.Address(*transaction.Recipient), transaction.Input, gas, value)
	}

	status := classify(vmError)
	if status == tinyevm.Failed {
		log.Debug("Execution halted exceptionally", "sender", transaction.Sender, "err", vmError)
	}

	// Add refund to the remaining gas.
	if vmError == nil {
		refund := stateDb.GetRefund()
		gasUsed := gas - gasLeft
		maxRefund := gasUsed / 5
		if !rules.IsLondon {
			// Before EIP-3529: refunds were capped to gasUsed / 2
			maxRefund = gasUsed / 2
		}
		gasLeft += min(refund, maxRefund)
	}

	return tinyevm.Receipt{
		Status:          status,
		Output:          output,
		ContractAddress: createdContract,
		GasUsed:         tinyevm.Gas(gas - gasLeft),
		Logs:            context.GetLogs(),
	}, nil
}
