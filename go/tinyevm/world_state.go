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

// WorldState is an interface to access and manipulate the state of the ledger.
// The state is a collection of accounts, each with a balance, a nonce,
// optional code and storage.
type WorldState interface {
	// AccountExists is true if the ledger holds an entry for the address,
	// even if that entry is empty.
	AccountExists(Address) bool
	// CreateAccount adds an empty entry for the address if none exists.
	CreateAccount(Address)

	GetBalance(Address) Value
	SetBalance(Address, Value)

	GetNonce(Address) uint64
	SetNonce(Address, uint64)

	GetCode(Address) Code
	GetCodeHash(Address) Hash
	GetCodeSize(Address) int
	SetCode(Address, Code)

	GetStorage(Address, Key) Word
	SetStorage(Address, Key, Word)
	// HasStorage is true if any storage slot of the account is non-zero.
	HasStorage(Address) bool
}

// TransactionContext is an interface to access and manipulate the world
// state in a transaction. All modifications are journaled and can be undone
// by restoring a snapshot. Additionally, a transaction context tracks
// information beyond the world state that lives as long as a single
// transaction: transient storage, access lists, logs, newly created
// contracts and self-destructed accounts.
type TransactionContext interface {
	WorldState

	CreateSnapshot() Snapshot
	RestoreSnapshot(Snapshot)

	GetTransientStorage(Address, Key) Word
	SetTransientStorage(Address, Key, Word)

	AccessAccount(Address) AccessStatus
	AccessStorage(Address, Key) AccessStatus
	IsAddressInAccessList(Address) bool
	IsSlotInAccessList(Address, Key) (addressPresent, slotPresent bool)

	// GetCommittedStorage returns the value of a slot at the beginning of
	// the current transaction.
	GetCommittedStorage(Address, Key) Word

	// MarkCreated records that a contract is deployed at the given address
	// by the current transaction.
	MarkCreated(Address)
	CreatedInTransaction(Address) bool

	// SelfDestruct clears the balance of the account and schedules it for
	// deletion at the end of the transaction. It returns true if it is the
	// first time the account is destroyed in the ongoing transaction.
	SelfDestruct(Address) bool
	HasSelfDestructed(Address) bool

	EmitLog(Log)
	GetLogs() []Log
}

// AccessStatus is an enum utilized to indicate cold and warm account or
// storage slot accesses.
type AccessStatus bool

const (
	ColdAccess AccessStatus = false
	WarmAccess AccessStatus = true
)

// Snapshot is a type used to represent a snapshot of the world state in a
// transaction context.
type Snapshot int

// Log is the type summarizing a log message emitted as a side effect of a
// contract execution.
type Log struct {
	Address Address
	Topics  []Hash
	Data    Data
}
