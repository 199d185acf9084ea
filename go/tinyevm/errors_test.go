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

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstError_CanBeMatchedThroughWrapping(t *testing.T) {
	err := fmt.Errorf("while loading: %w", ErrMalformedInput)
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("wrapped error should match")
	}
	if errors.Is(err, ErrDeploymentFailed) {
		t.Errorf("wrapped error should not match unrelated constant")
	}
}

func TestErrors_RefinementsAreMalformedInput(t *testing.T) {
	for _, err := range []error{ErrInvalidBytecode, ErrInvalidCallData, ErrMalformedLedger} {
		if !errors.Is(err, ErrMalformedInput) {
			t.Errorf("%v should be a malformed input error", err)
		}
	}
	if errors.Is(ErrInvalidBytecode, ErrInvalidCallData) {
		t.Errorf("refinements should be distinguishable")
	}
}

func TestErrUnsupportedRevision_CanBeExtracted(t *testing.T) {
	err := fmt.Errorf("failed: %w", &ErrUnsupportedRevision{Revision: R13_Cancun})
	var target *ErrUnsupportedRevision
	if !errors.As(err, &target) {
		t.Fatalf("failed to extract revision error from %v", err)
	}
	if target.Revision != R13_Cancun {
		t.Errorf("unexpected revision %v", target.Revision)
	}
}
