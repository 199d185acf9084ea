// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package dispatch provides the text based operations of the harness. All
// inputs are hex or JSON strings; results are returned in the same manner.
// Operations either run against a shared ledger or against a ledger built
// from a snapshot provided with the request.
package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tinyevm/tinyevm/go/executor"
	"github.com/tinyevm/tinyevm/go/ledger"
	"github.com/tinyevm/tinyevm/go/tinyevm"
)

// Service implements the externally visible operations. It is safe for
// concurrent use.
type Service struct {
	shared executor.Runner
	config executor.Config
}

// NewService creates a service running shared operations through the given
// runner. Snapshot based operations use executors with the given
// configuration.
func NewService(shared executor.Runner, config executor.Config) *Service {
	return &Service{
		shared: shared,
		config: config,
	}
}

// Deploy deploys the hex encoded init code on behalf of the owner on the
// shared ledger using a zero salt. The result is the 0x-prefixed address of
// the new contract.
func (s *Service) Deploy(code, owner string) (string, error) {
	return s.DeployWithSalt(code, owner, "")
}

// DeployWithSalt is like Deploy but uses the given salt for the address
// derivation. An empty salt is the zero salt.
func (s *Service) DeployWithSalt(code, owner, salt string) (string, error) {
	return s.deploy(s.shared, code, owner, salt)
}

// DeployWithSnapshot deploys the init code on a ledger built from the given
// snapshot. The ledger is discarded afterwards.
func (s *Service) DeployWithSnapshot(snapshot, code, owner string) (string, error) {
	runner, err := s.ephemeral(snapshot)
	if err != nil {
		return "", s.failed("deploy", err)
	}
	return s.deploy(runner, code, owner, "")
}

// Call runs a call of the sender to the contract on the shared ledger. The
// result is the JSON encoded outcome.
func (s *Service) Call(contract, sender, data string) (string, error) {
	return s.call(s.shared, contract, sender, data)
}

// CallWithSnapshot runs a call on a ledger built from the given snapshot.
// The ledger is discarded afterwards.
func (s *Service) CallWithSnapshot(snapshot, contract, sender, data string) (string, error) {
	runner, err := s.ephemeral(snapshot)
	if err != nil {
		return "", s.failed("call", err)
	}
	return s.call(runner, contract, sender, data)
}

// LedgerSnapshot exports the current content of the shared ledger in the
// snapshot format accepted by the snapshot based operations.
func (s *Service) LedgerSnapshot() (string, error) {
	var accounts ledger.Accounts
	err := s.shared.Run(func(executor *executor.Executor) error {
		accounts = executor.Ledger().Accounts()
		return nil
	})
	if err != nil {
		return "", s.failed("snapshot", err)
	}
	encoded, err := json.Marshal(accounts)
	if err != nil {
		return "", s.failed("snapshot", err)
	}
	return string(encoded), nil
}

func (s *Service) ephemeral(snapshot string) (*executor.Ephemeral, error) {
	accounts, err := ledger.ParseSnapshot([]byte(snapshot))
	if err != nil {
		return nil, err
	}
	return executor.NewEphemeral(accounts, s.config), nil
}

func (s *Service) deploy(runner executor.Runner, code, owner, salt string) (string, error) {
	var address tinyevm.Address
	err := runner.Run(func(executor *executor.Executor) error {
		request, err := parseDeployment(code, owner, salt)
		if err != nil {
			return err
		}
		log.Debug("Deploying contract", "owner", request.owner, "salt", request.salt, "size", len(request.code))
		address, err = executor.Deploy(request.owner, request.salt, request.code)
		return err
	})
	if err != nil {
		return "", s.failed("deploy", err)
	}
	return address.String(), nil
}

func (s *Service) call(runner executor.Runner, contract, sender, data string) (string, error) {
	var outcome tinyevm.Outcome
	err := runner.Run(func(executor *executor.Executor) error {
		request, err := parseCall(contract, sender, data)
		if err != nil {
			return err
		}
		log.Debug("Calling contract", "contract", request.contract, "sender", request.sender, "size", len(request.input))
		outcome, err = executor.Call(request.contract, request.sender, request.input)
		return err
	})
	if err != nil {
		return "", s.failed("call", err)
	}
	if outcome.Status != tinyevm.Succeeded {
		log.Debug("Call did not succeed", "contract", contract, "status", outcome.Status)
	}
	encoded, err := json.Marshal(outcome)
	if err != nil {
		return "", s.failed("call", err)
	}
	return string(encoded), nil
}

func (s *Service) failed(operation string, err error) error {
	log.Warn("Operation failed", "op", operation, "err", err)
	return fmt.Errorf("%s: %w", operation, err)
}
