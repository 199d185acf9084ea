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

import "fmt"

// ConstError is a error type that can be used to define immutable
// error constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

const (
	// ErrMalformedInput is reported for any textual input that can not be
	// parsed. Operations failing with it did not touch any ledger.
	ErrMalformedInput = ConstError("malformed input")

	// ErrDeploymentFailed is reported if the interpreter did not succeed in
	// running the init code of a contract.
	ErrDeploymentFailed = ConstError("deployment failed")
)

// ErrInvalidBytecode, ErrInvalidCallData and ErrMalformedLedger refine
// ErrMalformedInput; errors.Is matches both.
var (
	ErrInvalidBytecode = fmt.Errorf("%w: invalid bytecode", ErrMalformedInput)
	ErrInvalidCallData = fmt.Errorf("%w: invalid call data", ErrMalformedInput)
	ErrMalformedLedger = fmt.Errorf("%w: malformed ledger", ErrMalformedInput)
)

// ErrUnsupportedRevision is reported by processors asked to run a revision
// they do not implement.
type ErrUnsupportedRevision struct {
	Revision Revision
}

func (e *ErrUnsupportedRevision) Error() string {
	return fmt.Sprintf("unsupported revision %d", e.Revision)
}
