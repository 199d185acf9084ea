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
	"fmt"

	"github.com/tinyevm/tinyevm/go/tinyevm"
)

// ErrClosed is returned by operations on a closed Executor.
const ErrClosed = tinyevm.ConstError("executor is closed")

// DeploymentFailedError is returned by Executor.Deploy if the init code did
// not run successfully. It matches tinyevm.ErrDeploymentFailed.
type DeploymentFailedError struct {
	Outcome tinyevm.Outcome
}

func (e *DeploymentFailedError) Error() string {
	return fmt.Sprintf("%v: init code ended with status %v", tinyevm.ErrDeploymentFailed, e.Outcome.Status)
}

func (e *DeploymentFailedError) Unwrap() error {
	return tinyevm.ErrDeploymentFailed
}

// AddressMismatchError signals that the address of a deployed contract
// differs from the address derived by the CREATE2 rule. It is never returned;
// Executor.Deploy panics with it since the ledger can no longer be trusted.
type AddressMismatchError struct {
	Derived  tinyevm.Address
	Reported *tinyevm.Address
}

func (e *AddressMismatchError) Error() string {
	if e.Reported == nil {
		return fmt.Sprintf("address mismatch: derived %v, processor reported none", e.Derived)
	}
	return fmt.Sprintf("address mismatch: derived %v, processor reported %v", e.Derived, *e.Reported)
}
