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
	"fmt"
	"maps"
	"slices"

	"github.com/tinyevm/tinyevm/go/tinyevm"
)

// Accounts is a plain value representation of the content of a ledger. It
// seeds ledgers, is exported from them, and is the in-memory form of the
// snapshots exchanged with foreign callers.
type Accounts map[tinyevm.Address]Account

// Equal compares two collections of accounts. Empty accounts count as absent.
func (s Accounts) Equal(other Accounts) bool {
	return sameEntries(s, other, func(a, b Account) bool {
		return a.Equal(&b)
	})
}

func (s Accounts) Clone() Accounts {
	if s == nil {
		return nil
	}
	res := make(Accounts, len(s))
	for address, account := range s {
		res[address] = account.Clone()
	}
	return res
}

// Diff describes the changes turning s into other, one line per modified
// field, ordered by address and storage key.
func (s Accounts) Diff(other Accounts) []string {
	var res []string
	for _, address := range unionOfKeys(s, other, compareAddresses) {
		before, after := s[address], other[address]
		for _, change := range before.changes(&after) {
			res = append(res, fmt.Sprintf("%v: %s", address, change))
		}
	}
	return res
}

// Account is the state of a single address. The zero value is an empty
// account.
type Account struct {
	Balance tinyevm.Value
	Nonce   uint64
	Code    tinyevm.Code
	Storage Storage
}

func (a *Account) Equal(other *Account) bool {
	return a.Balance == other.Balance &&
		a.Nonce == other.Nonce &&
		bytes.Equal(a.Code, other.Code) &&
		a.Storage.Equal(other.Storage)
}

// IsEmpty is true for accounts without balance, nonce and code, which are
// subject to deletion once touched (EIP-158).
func (a *Account) IsEmpty() bool {
	return a.Balance == (tinyevm.Value{}) && a.Nonce == 0 && len(a.Code) == 0
}

func (a *Account) Clone() Account {
	return Account{
		Balance: a.Balance,
		Nonce:   a.Nonce,
		Code:    bytes.Clone(a.Code),
		Storage: a.Storage.Clone(),
	}
}

func (a *Account) changes(other *Account) []string {
	var res []string
	if a.Balance != other.Balance {
		res = append(res, fmt.Sprintf("balance %v -> %v", a.Balance, other.Balance))
	}
	if a.Nonce != other.Nonce {
		res = append(res, fmt.Sprintf("nonce %d -> %d", a.Nonce, other.Nonce))
	}
	if !bytes.Equal(a.Code, other.Code) {
		res = append(res, fmt.Sprintf("code %s -> %s", describeCode(a.Code), describeCode(other.Code)))
	}
	for _, key := range unionOfKeys(a.Storage, other.Storage, compareKeys) {
		if before, after := a.Storage[key], other.Storage[key]; before != after {
			res = append(res, fmt.Sprintf("storage %v: %v -> %v", key, before, after))
		}
	}
	return res
}

func describeCode(code tinyevm.Code) string {
	if len(code) == 0 {
		return "none"
	}
	return fmt.Sprintf("%d bytes %v", len(code), tinyevm.Keccak256(code))
}

// Storage is the storage of an account. Zero values are equivalent to
// missing entries.
type Storage map[tinyevm.Key]tinyevm.Word

func (s Storage) Equal(other Storage) bool {
	return sameEntries(s, other, func(a, b tinyevm.Word) bool {
		return a == b
	})
}

func (s Storage) Clone() Storage {
	return maps.Clone(s)
}

// sameEntries reports whether equal holds for every key of either map. A key
// missing in one of the maps is looked up as the zero value.
func sameEntries[K comparable, V any](a, b map[K]V, equal func(V, V) bool) bool {
	for k, v := range a {
		if !equal(v, b[k]) {
			return false
		}
	}
	for k, v := range b {
		if _, seen := a[k]; !seen && !equal(a[k], v) {
			return false
		}
	}
	return true
}

func unionOfKeys[K comparable, V any](a, b map[K]V, cmp func(K, K) int) []K {
	res := make([]K, 0, len(a)+len(b))
	for k := range a {
		res = append(res, k)
	}
	for k := range b {
		if _, seen := a[k]; !seen {
			res = append(res, k)
		}
	}
	slices.SortFunc(res, cmp)
	return res
}

func compareAddresses(a, b tinyevm.Address) int {
	return bytes.Compare(a[:], b[:])
}

func compareKeys(a, b tinyevm.Key) int {
	return bytes.Compare(a[:], b[:])
}
