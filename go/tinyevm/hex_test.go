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
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseData_AcceptsOptionalPrefix(t *testing.T) {
	tests := map[string][]byte{
		"":           {},
		"0x":         {},
		"0X12":       {0x12},
		"12ab":       {0x12, 0xab},
		"0x12ab":     {0x12, 0xab},
		" 0x12ab\n":  {0x12, 0xab},
		"70a08231ff": {0x70, 0xa0, 0x82, 0x31, 0xff},
	}
	for input, want := range tests {
		got, err := ParseData(input)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", input, err)
		}
		if !bytes.Equal(want, got) {
			t.Errorf("unexpected result for %q, wanted %x, got %x", input, want, got)
		}
	}
}

func TestParseData_InvalidInputIsMalformed(t *testing.T) {
	tests := map[string]string{
		"odd length":      "0x123",
		"invalid digit":   "0x12zz",
		"odd w/o prefix":  "abc",
		"double prefix":   "0x0x12",
		"embedded spaces": "12 34",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseData(input); !errors.Is(err, ErrMalformedInput) {
				t.Errorf("expected malformed input error, got %v", err)
			}
		})
	}
}

func TestParseAddress(t *testing.T) {
	want := Address{0xf0}
	for _, input := range []string{
		"0xf000000000000000000000000000000000000000",
		"f000000000000000000000000000000000000000",
		"0xF000000000000000000000000000000000000000",
	} {
		got, err := ParseAddress(input)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", input, err)
		}
		if want != got {
			t.Errorf("unexpected address for %q, wanted %v, got %v", input, want, got)
		}
	}

	for _, input := range []string{"", "0x", "0xf0", strings.Repeat("0", 42)} {
		if _, err := ParseAddress(input); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("expected %q to be rejected, got %v", input, err)
		}
	}
}

func TestParseHash_PadsShortInput(t *testing.T) {
	got, err := ParseHash("0x01")
	if err != nil {
		t.Fatalf("failed to parse hash: %v", err)
	}
	want := Hash{}
	want[31] = 1
	if want != got {
		t.Errorf("unexpected hash, wanted %v, got %v", want, got)
	}

	if got, err := ParseHash(""); err != nil || got != (Hash{}) {
		t.Errorf("empty input should be the zero hash, got %v, %v", got, err)
	}
}

func TestParseHash_AcceptsOddNumberOfDigits(t *testing.T) {
	want := Hash{30: 0x01, 31: 0x23}
	for _, input := range []string{"0x123", "123", " 0x0123\n", "0X123"} {
		got, err := ParseHash(input)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", input, err)
		}
		if want != got {
			t.Errorf("unexpected hash for %q, wanted %v, got %v", input, want, got)
		}
	}

	var key Key
	if err := key.UnmarshalText([]byte("0x1")); err != nil || key != (Key{31: 1}) {
		t.Errorf("unexpected key %v, err %v", key, err)
	}
	var word Word
	if err := word.UnmarshalText([]byte("0x2")); err != nil || word != (Word{31: 2}) {
		t.Errorf("unexpected word %v, err %v", word, err)
	}
}

func TestParseHash_InvalidInputIsMalformed(t *testing.T) {
	tests := map[string]string{
		"double prefix": "0x0x12",
		"odd double":    "0x0x1",
		"invalid digit": "0x1g",
		"too long":      "0x1" + strings.Repeat("0", 64),
		"inner space":   "0x1 2",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseHash(input); !errors.Is(err, ErrMalformedInput) {
				t.Errorf("expected malformed input error, got %v", err)
			}
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := map[string]Value{
		"0":                       NewValue(0),
		"0x0":                     NewValue(0),
		"1000000000000":           NewValue(1_000_000_000_000),
		"0xe8d4a51000":            NewValue(1_000_000_000_000),
		"10000000000000000000000": NewValue(542, 1864712049423024128),
		"0x" + strings.Repeat("f", 64): {
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		},
	}
	for input, want := range tests {
		got, err := ParseQuantity(input)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", input, err)
		}
		if want != got {
			t.Errorf("unexpected result for %q, wanted %v, got %v", input, want, got)
		}
	}
}

func TestParseQuantity_RejectsInvalidInput(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"negative":       "-1",
		"negative hex":   "0x-1",
		"signed hex":     "0x+1",
		"explicit plus":  "+1",
		"prefix only":    "0x",
		"too large":      "0x1" + strings.Repeat("0", 64),
		"not a number":   "twelve",
		"float notation": "1e12",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseQuantity(input); !errors.Is(err, ErrMalformedInput) {
				t.Errorf("expected malformed input error, got %v", err)
			}
		})
	}
}
