// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ledger

import (
	"bytes"
	"slices"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tinyevm/tinyevm/go/tinyevm"
)

// ErrLedgerInUse is reported when binding a ledger that is already bound to
// an executor.
const ErrLedgerInUse = tinyevm.ConstError("ledger is already bound to an executor")

// codeHashCacheSize is the number of code hashes retained per ledger.
const codeHashCacheSize = 1 << 10

// Ledger is a mutable in-memory account store implementing the
// tinyevm.TransactionContext interface. All modifications are recorded in an
// undo journal, such that any snapshot taken within the current transaction
// can be restored.
//
// A Ledger is not safe for concurrent use. Executors bind it exclusively and
// callers sharing an executor have to serialize their accesses.
type Ledger struct {
	accounts Accounts
	undo     []func()
	bound    atomic.Bool

	// Transaction scoped state, reset by BeginTransaction.
	committed  map[slot]tinyevm.Word
	transient  map[slot]tinyevm.Word
	accessList map[tinyevm.Address]map[tinyevm.Key]struct{}
	logs       []tinyevm.Log
	created    map[tinyevm.Address]struct{}
	destructed map[tinyevm.Address]struct{}
	touched    map[tinyevm.Address]struct{}

	codeHashes *lru.Cache[tinyevm.Address, tinyevm.Hash]
}

type slot struct {
	address tinyevm.Address
	key     tinyevm.Key
}

// New creates a ledger holding a deep copy of the given accounts.
func New(accounts Accounts) *Ledger {
	cache, err := lru.New[tinyevm.Address, tinyevm.Hash](codeHashCacheSize)
	if err != nil {
		// only fails for non-positive sizes
		panic(err)
	}
	if accounts == nil {
		accounts = Accounts{}
	}
	res := &Ledger{
		accounts:   accounts.Clone(),
		codeHashes: cache,
	}
	for _, account := range res.accounts {
		for key, value := range account.Storage {
			if value == (tinyevm.Word{}) {
				delete(account.Storage, key)
			}
		}
	}
	res.resetTransactionState()
	return res
}

// Bind marks the ledger as used by an executor. It fails with ErrLedgerInUse
// if the ledger is bound already.
func (l *Ledger) Bind() error {
	if !l.bound.CompareAndSwap(false, true) {
		return ErrLedgerInUse
	}
	return nil
}

// Release reverts the effect of a successful Bind.
func (l *Ledger) Release() {
	l.bound.Store(false)
}

// Accounts exports a deep copy of the current content of the ledger.
func (l *Ledger) Accounts() Accounts {
	return l.accounts.Clone()
}

// BeginTransaction starts a new transaction. Transaction scoped information
// like transient storage, access lists and logs is discarded, and snapshots
// taken before are no longer valid.
func (l *Ledger) BeginTransaction() {
	l.resetTransactionState()
}

// EndTransaction concludes the current transaction. Accounts destroyed by
// the transaction are removed. If deleteEmpty is set, empty accounts touched
// by the transaction are removed as well (EIP-158).
func (l *Ledger) EndTransaction(deleteEmpty bool) {
	for address := range l.destructed {
		l.deleteAccount(address)
	}
	if deleteEmpty {
		for address := range l.touched {
			if account, found := l.accounts[address]; found && account.IsEmpty() {
				l.deleteAccount(address)
			}
		}
	}
	l.resetTransactionState()
}

func (l *Ledger) resetTransactionState() {
	l.undo = nil
	l.committed = map[slot]tinyevm.Word{}
	l.transient = map[slot]tinyevm.Word{}
	l.accessList = map[tinyevm.Address]map[tinyevm.Key]struct{}{}
	l.logs = nil
	l.created = map[tinyevm.Address]struct{}{}
	l.destructed = map[tinyevm.Address]struct{}{}
	l.touched = map[tinyevm.Address]struct{}{}
}

func (l *Ledger) deleteAccount(address tinyevm.Address) {
	delete(l.accounts, address)
	l.codeHashes.Remove(address)
}

// update applies the given modification to the account at the given address,
// creating the account if needed, and records the inverse in the journal.
func (l *Ledger) update(address tinyevm.Address, modify func(*Account)) {
	original, exists := l.accounts[address]
	modified := original
	modify(&modified)
	l.accounts[address] = modified
	l.touch(address)
	l.undo = append(l.undo, func() {
		if exists {
			l.accounts[address] = original
		} else {
			delete(l.accounts, address)
		}
	})
}

func (l *Ledger) touch(address tinyevm.Address) {
	if _, found := l.touched[address]; found {
		return
	}
	l.touched[address] = struct{}{}
	l.undo = append(l.undo, func() { delete(l.touched, address) })
}

// --- tinyevm.WorldState ---

func (l *Ledger) AccountExists(address tinyevm.Address) bool {
	_, found := l.accounts[address]
	return found
}

func (l *Ledger) CreateAccount(address tinyevm.Address) {
	if l.AccountExists(address) {
		return
	}
	l.update(address, func(*Account) {})
}

func (l *Ledger) GetBalance(address tinyevm.Address) tinyevm.Value {
	return l.accounts[address].Balance
}

func (l *Ledger) SetBalance(address tinyevm.Address, value tinyevm.Value) {
	l.update(address, func(a *Account) { a.Balance = value })
}

func (l *Ledger) GetNonce(address tinyevm.Address) uint64 {
	return l.accounts[address].Nonce
}

func (l *Ledger) SetNonce(address tinyevm.Address, nonce uint64) {
	l.update(address, func(a *Account) { a.Nonce = nonce })
}

func (l *Ledger) GetCode(address tinyevm.Address) tinyevm.Code {
	return bytes.Clone(l.accounts[address].Code)
}

// GetCodeHash returns the Keccak-256 hash of the code of the given account,
// or the zero hash if the account does not exist.
func (l *Ledger) GetCodeHash(address tinyevm.Address) tinyevm.Hash {
	account, found := l.accounts[address]
	if !found {
		return tinyevm.Hash{}
	}
	if hash, found := l.codeHashes.Get(address); found {
		return hash
	}
	hash := tinyevm.Keccak256(account.Code)
	l.codeHashes.Add(address, hash)
	return hash
}

func (l *Ledger) GetCodeSize(address tinyevm.Address) int {
	return len(l.accounts[address].Code)
}

func (l *Ledger) SetCode(address tinyevm.Address, code tinyevm.Code) {
	code = bytes.Clone(code)
	l.update(address, func(a *Account) { a.Code = code })
	l.codeHashes.Remove(address)
	l.undo = append(l.undo, func() { l.codeHashes.Remove(address) })
}

func (l *Ledger) GetStorage(address tinyevm.Address, key tinyevm.Key) tinyevm.Word {
	return l.accounts[address].Storage[key]
}

func (l *Ledger) SetStorage(address tinyevm.Address, key tinyevm.Key, value tinyevm.Word) {
	current := l.GetStorage(address, key)
	if _, found := l.committed[slot{address, key}]; !found {
		l.committed[slot{address, key}] = current
	}
	if !l.AccountExists(address) {
		l.CreateAccount(address)
	}
	account := l.accounts[address]
	if account.Storage == nil {
		account.Storage = Storage{}
		l.accounts[address] = account
		l.undo = append(l.undo, func() {
			account := l.accounts[address]
			account.Storage = nil
			l.accounts[address] = account
		})
	}
	setOrDelete(account.Storage, key, value)
	l.touch(address)
	l.undo = append(l.undo, func() { setOrDelete(l.accounts[address].Storage, key, current) })
}

func (l *Ledger) HasStorage(address tinyevm.Address) bool {
	return len(l.accounts[address].Storage) > 0
}

func setOrDelete(storage Storage, key tinyevm.Key, value tinyevm.Word) {
	if value == (tinyevm.Word{}) {
		delete(storage, key)
	} else {
		storage[key] = value
	}
}

// --- tinyevm.TransactionContext ---

func (l *Ledger) CreateSnapshot() tinyevm.Snapshot {
	return tinyevm.Snapshot(len(l.undo))
}

func (l *Ledger) RestoreSnapshot(snapshot tinyevm.Snapshot) {
	for len(l.undo) > int(snapshot) {
		l.undo[len(l.undo)-1]()
		l.undo = l.undo[:len(l.undo)-1]
	}
}

func (l *Ledger) GetCommittedStorage(address tinyevm.Address, key tinyevm.Key) tinyevm.Word {
	if value, found := l.committed[slot{address, key}]; found {
		return value
	}
	return l.GetStorage(address, key)
}

func (l *Ledger) GetTransientStorage(address tinyevm.Address, key tinyevm.Key) tinyevm.Word {
	return l.transient[slot{address, key}]
}

func (l *Ledger) SetTransientStorage(address tinyevm.Address, key tinyevm.Key, value tinyevm.Word) {
	s := slot{address, key}
	original, found := l.transient[s]
	l.transient[s] = value
	l.undo = append(l.undo, func() {
		if found {
			l.transient[s] = original
		} else {
			delete(l.transient, s)
		}
	})
}

func (l *Ledger) AccessAccount(address tinyevm.Address) tinyevm.AccessStatus {
	if _, found := l.accessList[address]; found {
		return tinyevm.WarmAccess
	}
	l.accessList[address] = map[tinyevm.Key]struct{}{}
	l.undo = append(l.undo, func() { delete(l.accessList, address) })
	return tinyevm.ColdAccess
}

func (l *Ledger) AccessStorage(address tinyevm.Address, key tinyevm.Key) tinyevm.AccessStatus {
	l.AccessAccount(address)
	keys := l.accessList[address]
	if _, found := keys[key]; found {
		return tinyevm.WarmAccess
	}
	keys[key] = struct{}{}
	l.undo = append(l.undo, func() { delete(l.accessList[address], key) })
	return tinyevm.ColdAccess
}

func (l *Ledger) IsAddressInAccessList(address tinyevm.Address) bool {
	_, found := l.accessList[address]
	return found
}

func (l *Ledger) IsSlotInAccessList(address tinyevm.Address, key tinyevm.Key) (addressPresent, slotPresent bool) {
	keys, addressPresent := l.accessList[address]
	_, slotPresent = keys[key]
	return addressPresent, slotPresent
}

func (l *Ledger) MarkCreated(address tinyevm.Address) {
	if _, found := l.created[address]; found {
		return
	}
	l.created[address] = struct{}{}
	l.undo = append(l.undo, func() { delete(l.created, address) })
}

func (l *Ledger) CreatedInTransaction(address tinyevm.Address) bool {
	_, found := l.created[address]
	return found
}

func (l *Ledger) SelfDestruct(address tinyevm.Address) bool {
	if !l.AccountExists(address) {
		return false
	}
	l.SetBalance(address, tinyevm.Value{})
	if l.HasSelfDestructed(address) {
		return false
	}
	l.destructed[address] = struct{}{}
	l.undo = append(l.undo, func() { delete(l.destructed, address) })
	return true
}

func (l *Ledger) HasSelfDestructed(address tinyevm.Address) bool {
	_, found := l.destructed[address]
	return found
}

func (l *Ledger) EmitLog(log tinyevm.Log) {
	size := len(l.logs)
	l.logs = append(l.logs, log)
	l.undo = append(l.undo, func() { l.logs = l.logs[:size] })
}

func (l *Ledger) GetLogs() []tinyevm.Log {
	return slices.Clone(l.logs)
}
