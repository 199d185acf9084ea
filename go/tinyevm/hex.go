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
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
)

// This file contains the parsers turning the textual representation used at
// the process boundary into native values. All of them report failures as
// ErrMalformedInput.

// ParseData decodes a hex string. The 0x prefix is optional and the empty
// string decodes to an empty byte slice.
func ParseData(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !has0xPrefix(s) {
		s = "0x" + s
	}
	res, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return res, nil
}

// ParseAddress decodes a 20-byte address given as 40 hex digits with an
// optional 0x prefix.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return Address{}, fmt.Errorf("%w: invalid address %q", ErrMalformedInput, s)
	}
	return Address(common.HexToAddress(s)), nil
}

// ParseHash decodes up to 32 bytes of hex into a Hash, padding with leading
// zeros. It is used for salts, which callers tend to write in short form.
func ParseHash(s string) (Hash, error) {
	var res Hash
	if err := textToPaddedBytes(res[:], []byte(s)); err != nil {
		return Hash{}, err
	}
	return res, nil
}

// ParseQuantity decodes a non-negative integer of at most 256 bits given in
// decimal or 0x-prefixed hex notation.
func ParseQuantity(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "+-") {
		return Value{}, fmt.Errorf("%w: invalid quantity %q", ErrMalformedInput, s)
	}
	parsed, ok := math.ParseBig256(s)
	if !ok || s == "" {
		return Value{}, fmt.Errorf("%w: invalid quantity %q", ErrMalformedInput, s)
	}
	res, overflow := uint256.FromBig(parsed)
	if overflow {
		return Value{}, fmt.Errorf("%w: quantity %q exceeds 256 bits", ErrMalformedInput, s)
	}
	return ValueFromUint256(res), nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
