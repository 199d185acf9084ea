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
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/stateless"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	geth "github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/trie/utils"
	"github.com/holiman/uint256"
	"github.com/tinyevm/tinyevm/go/tinyevm"
)

// classify maps the error reported by the geth EVM for a top-level call or
// contract creation onto an execution status. Every error other than a
// revert is an exceptional halt, including failures reported by precompiled
// contracts. Aborts of the interpreter surface as panics, not as errors.
func classify(err error) tinyevm.Status {
	switch {
	case err == nil:
		// The execution ended with a STOP, RETURN, or SELFDESTRUCT.
		return tinyevm.Succeeded
	case errors.Is(err, geth.ErrExecutionReverted):
		return tinyevm.Reverted
	default:
		return tinyevm.Failed
	}
}

// --- Adapter ---

// transferFunc subtracts amount from sender and adds amount to recipient using the given Db.
func transferFunc(stateDB geth.StateDB, callerAddress common.Address, to common.Address, value *uint256.Int) {
	stateDB.SubBalance(callerAddress, value, tracing.BalanceChangeTransfer)
	stateDB.AddBalance(to, value, tracing.BalanceChangeTransfer)
}

// canTransferFunc checks whether the caller can afford the given value.
func canTransferFunc(stateDB geth.StateDB, callerAddress common.Address, value *uint256.Int) bool {
	return stateDB.GetBalance(callerAddress).Cmp(value) >= 0
}

// stateDbAdapter adapts the tinyevm.TransactionContext interface for its usage
// as a geth.StateDB. Refunds are the only state kept by the adapter itself;
// everything else is forwarded to the context.
type stateDbAdapter struct {
	context       tinyevm.TransactionContext
	refund        uint64
	refundBackups map[tinyevm.Snapshot]uint64
}

func newStateDbAdapter(context tinyevm.TransactionContext) *stateDbAdapter {
	return &stateDbAdapter{
		context:       context,
		refundBackups: map[tinyevm.Snapshot]uint64{},
	}
}

func (s *stateDbAdapter) CreateAccount(addr common.Address) {
	s.context.CreateAccount(tinyevm.Address(addr))
}

func (s *stateDbAdapter) CreateContract(addr common.Address) {
	s.context.MarkCreated(tinyevm.Address(addr))
}

func (s *stateDbAdapter) SubBalance(addr common.Address, diff *uint256.Int, _ tracing.BalanceChangeReason) {
	account := tinyevm.Address(addr)
	cur := s.context.GetBalance(account)
	s.context.SetBalance(account, tinyevm.Sub(cur, tinyevm.ValueFromUint256(diff)))
}

func (s *stateDbAdapter) AddBalance(addr common.Address, diff *uint256.Int, _ tracing.BalanceChangeReason) {
	account := tinyevm.Address(addr)
	cur := s.context.GetBalance(account)
	s.context.SetBalance(account, tinyevm.Add(cur, tinyevm.ValueFromUint256(diff)))
}

func (s *stateDbAdapter) GetBalance(addr common.Address) *uint256.Int {
	return s.context.GetBalance(tinyevm.Address(addr)).ToUint256()
}

func (s *stateDbAdapter) GetNonce(addr common.Address) uint64 {
	return s.context.GetNonce(tinyevm.Address(addr))
}

func (s *stateDbAdapter) SetNonce(addr common.Address, nonce uint64) {
	s.context.SetNonce(tinyevm.Address(addr), nonce)
}

func (s *stateDbAdapter) GetCodeHash(addr common.Address) common.Hash {
	return common.Hash(s.context.GetCodeHash(tinyevm.Address(addr)))
}

func (s *stateDbAdapter) GetCode(addr common.Address) []byte {
	return s.context.GetCode(tinyevm.Address(addr))
}

func (s *stateDbAdapter) SetCode(addr common.Address, code []byte) {
	s.context.SetCode(tinyevm.Address(addr), code)
}

func (s *stateDbAdapter) GetCodeSize(addr common.Address) int {
	return s.context.GetCodeSize(tinyevm.Address(addr))
}

func (s *stateDbAdapter) AddRefund(value uint64) {
	s.refund += value
}

func (s *stateDbAdapter) SubRefund(value uint64) {
	if value > s.refund {
		panic("refund counter below zero")
	}
	s.refund -= value
}

func (s *stateDbAdapter) GetRefund() uint64 {
	return s.refund
}

func (s *stateDbAdapter) GetCommittedState(addr common.Address, key common.Hash) common.Hash {
	return common.Hash(s.context.GetCommittedStorage(tinyevm.Address(addr), tinyevm.Key(key)))
}

func (s *stateDbAdapter) GetState(addr common.Address, key common.Hash) common.Hash {
	return common.Hash(s.context.GetStorage(tinyevm.Address(addr), tinyevm.Key(key)))
}

func (s *stateDbAdapter) SetState(addr common.Address, key common.Hash, value common.Hash) {
	s.context.SetStorage(tinyevm.Address(addr), tinyevm.Key(key), tinyevm.Word(value))
}

// nonEmptyStorageRoot is reported for accounts with storage. Ledgers do not
// maintain a trie; the root is only consulted to detect address collisions.
var nonEmptyStorageRoot = common.Hash{0x01}

func (s *stateDbAdapter) GetStorageRoot(addr common.Address) common.Hash {
	if s.context.HasStorage(tinyevm.Address(addr)) {
		return nonEmptyStorageRoot
	}
	return types.EmptyRootHash
}

func (s *stateDbAdapter) GetTransientState(addr common.Address, key common.Hash) common.Hash {
	return common.Hash(s.context.GetTransientStorage(tinyevm.Address(addr), tinyevm.Key(key)))
}

func (s *stateDbAdapter) SetTransientState(addr common.Address, key, value common.Hash) {
	s.context.SetTransientStorage(tinyevm.Address(addr), tinyevm.Key(key), tinyevm.Word(value))
}

// SelfDestruct is called by the SELFDESTRUCT instruction after the balance
// was credited to the beneficiary.
func (s *stateDbAdapter) SelfDestruct(addr common.Address) {
	s.context.SelfDestruct(tinyevm.Address(addr))
}

func (s *stateDbAdapter) HasSelfDestructed(addr common.Address) bool {
	return s.context.HasSelfDestructed(tinyevm.Address(addr))
}

// Selfdestruct6780 only destroys accounts created in the same transaction (EIP-6780).
func (s *stateDbAdapter) Selfdestruct6780(addr common.Address) {
	if s.context.CreatedInTransaction(tinyevm.Address(addr)) {
		s.context.SelfDestruct(tinyevm.Address(addr))
	}
}

func (s *stateDbAdapter) Exist(addr common.Address) bool {
	return s.context.AccountExists(tinyevm.Address(addr))
}

func (s *stateDbAdapter) Empty(addr common.Address) bool {
	return s.GetBalance(addr).IsZero() && s.GetNonce(addr) == 0 && s.GetCodeSize(addr) == 0
}

func (s *stateDbAdapter) AddressInAccessList(addr common.Address) bool {
	return s.context.IsAddressInAccessList(tinyevm.Address(addr))
}

func (s *stateDbAdapter) SlotInAccessList(addr common.Address, slot common.Hash) (addressOk bool, slotOk bool) {
	return s.context.IsSlotInAccessList(tinyevm.Address(addr), tinyevm.Key(slot))
}

func (s *stateDbAdapter) AddAddressToAccessList(addr common.Address) {
	s.context.AccessAccount(tinyevm.Address(addr))
}

func (s *stateDbAdapter) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	s.context.AccessStorage(tinyevm.Address(addr), tinyevm.Key(slot))
}

// Prepare warms up the access list as required by EIP-2929 (Berlin) and
// EIP-3651 (Shanghai). Transient storage is scoped by the transaction
// context and needs no reset here.
func (s *stateDbAdapter) Prepare(rules params.Rules, sender, coinbase common.Address, dest *common.Address, precompiles []common.Address, txAccesses types.AccessList) {
	if !rules.IsBerlin {
		return
	}
	s.AddAddressToAccessList(sender)
	if dest != nil {
		s.AddAddressToAccessList(*dest)
	}
	for _, addr := range precompiles {
		s.AddAddressToAccessList(addr)
	}
	for _, el := range txAccesses {
		s.AddAddressToAccessList(el.Address)
		for _, key := range el.StorageKeys {
			s.AddSlotToAccessList(el.Address, key)
		}
	}
	if rules.IsShanghai {
		s.AddAddressToAccessList(coinbase)
	}
}

func (s *stateDbAdapter) RevertToSnapshot(snapshot int) {
	s.context.RestoreSnapshot(tinyevm.Snapshot(snapshot))
	s.refund = s.refundBackups[tinyevm.Snapshot(snapshot)]
}

func (s *stateDbAdapter) Snapshot() int {
	id := s.context.CreateSnapshot()
	s.refundBackups[id] = s.refund
	return int(id)
}

func (s *stateDbAdapter) AddLog(log *types.Log) {
	topics := make([]tinyevm.Hash, 0, len(log.Topics))
	for _, cur := range log.Topics {
		topics = append(topics, tinyevm.Hash(cur))
	}
	s.context.EmitLog(tinyevm.Log{
		Address: tinyevm.Address(log.Address),
		Topics:  topics,
		Data:    log.Data,
	})
}

func (s *stateDbAdapter) AddPreimage(common.Hash, []byte) {
	// ignored: preimages are only recorded for debugging purposes
}

func (s *stateDbAdapter) PointCache() *utils.PointCache {
	// see https://eips.ethereum.org/EIPS/eip-4762
	panic("should not be needed by revisions up to Cancun")
}

func (s *stateDbAdapter) Witness() *stateless.Witness {
	// this should not be relevant for revisions up to Cancun
	return nil
}
