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
	"sync"
	"time"

	"github.com/tinyevm/tinyevm/go/ledger"
)

// Runner provides executors to operations. Implementations decide on the
// ledger an operation works on and how concurrent operations are isolated.
type Runner interface {
	// Run runs the given operation with an executor and forwards its error.
	Run(operation func(*Executor) error) error
}

// Shared is a Runner serving all operations with one executor working on a
// ledger seeded with the genesis accounts. Operations are serialized.
type Shared struct {
	mutex    sync.Mutex
	executor *Executor
}

// NewShared creates a shared runner on a fresh genesis ledger.
func NewShared(config Config) (*Shared, error) {
	executor, err := New(ledger.New(ledger.Genesis()), config)
	if err != nil {
		return nil, err
	}
	return &Shared{executor: executor}, nil
}

func (s *Shared) Run(operation func(*Executor) error) error {
	start := time.Now()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	locked := time.Now()
	sharedLockWaitTimer.Update(locked.Sub(start))
	defer sharedLockHoldTimer.UpdateSince(locked)
	return operation(s.executor)
}

// Close closes the executor of this runner. Operations run afterwards fail
// with ErrClosed.
func (s *Shared) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.executor.Close()
}

// Ephemeral is a Runner giving each operation an executor of its own on a
// fresh copy of a fixed set of accounts. Effects of operations are
// discarded once they complete. Operations may run in parallel.
type Ephemeral struct {
	accounts ledger.Accounts
	config   Config
}

// NewEphemeral creates a runner for the given accounts. The accounts are
// copied.
func NewEphemeral(accounts ledger.Accounts, config Config) *Ephemeral {
	return &Ephemeral{
		accounts: accounts.Clone(),
		config:   config,
	}
}

func (e *Ephemeral) Run(operation func(*Executor) error) error {
	defer ephemeralRunTimer.UpdateSince(time.Now())
	executor, err := New(ledger.New(e.accounts), e.config)
	if err != nil {
		return err
	}
	defer executor.Close()
	return operation(executor)
}
