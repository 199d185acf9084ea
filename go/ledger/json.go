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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tinyevm/tinyevm/go/tinyevm"
)

// Snapshots are JSON objects mapping addresses to accounts:
//
//	{
//	  "0xf000000000000000000000000000000000000000": {
//	    "nonce": 0,
//	    "balance": "1000000000000",
//	    "storage": {"0x00": "0x01"},
//	    "code": "0x6000"
//	  }
//	}
//
// When decoding, quantities may be JSON numbers or strings in decimal or
// 0x-prefixed hex notation, storage keys and values are hex strings of up to
// 32 bytes, and code is either a hex string or an array of byte values.
// Missing fields default to zero. Encoding always produces the canonical form
// with numeric nonces, hex balances, 32-byte storage entries and hex code.

// ParseSnapshot decodes a JSON snapshot. All decoding failures are reported
// as tinyevm.ErrMalformedLedger.
func ParseSnapshot(data []byte) (Accounts, error) {
	var res Accounts
	if err := json.Unmarshal(data, &res); err != nil {
		if !errors.Is(err, tinyevm.ErrMalformedLedger) {
			err = fmt.Errorf("%w: %v", tinyevm.ErrMalformedLedger, err)
		}
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w: snapshot must be a JSON object", tinyevm.ErrMalformedLedger)
	}
	return res, nil
}

type accountJSON struct {
	Nonce   quantityJSON      `json:"nonce"`
	Balance quantityJSON      `json:"balance"`
	Storage map[string]string `json:"storage"`
	Code    codeJSON          `json:"code"`
}

type canonicalAccountJSON struct {
	Nonce   uint64        `json:"nonce"`
	Balance tinyevm.Value `json:"balance"`
	Storage Storage       `json:"storage,omitempty"`
	Code    hexutil.Bytes `json:"code,omitempty"`
}

func (s Accounts) MarshalJSON() ([]byte, error) {
	res := make(map[tinyevm.Address]canonicalAccountJSON, len(s))
	for address, account := range s {
		var storage Storage
		for key, value := range account.Storage {
			if value == (tinyevm.Word{}) {
				continue
			}
			if storage == nil {
				storage = Storage{}
			}
			storage[key] = value
		}
		res[address] = canonicalAccountJSON{
			Nonce:   account.Nonce,
			Balance: account.Balance,
			Storage: storage,
			Code:    hexutil.Bytes(account.Code),
		}
	}
	return json.Marshal(res)
}

func (s *Accounts) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var decoded map[string]accountJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("%w: %v", tinyevm.ErrMalformedLedger, err)
	}
	res := make(Accounts, len(decoded))
	for key, entry := range decoded {
		address, err := tinyevm.ParseAddress(key)
		if err != nil {
			return fmt.Errorf("%w: %v", tinyevm.ErrMalformedLedger, err)
		}
		if _, found := res[address]; found {
			return fmt.Errorf("%w: duplicate account %v", tinyevm.ErrMalformedLedger, address)
		}
		account, err := entry.toAccount()
		if err != nil {
			return fmt.Errorf("%w: account %v: %v", tinyevm.ErrMalformedLedger, address, err)
		}
		res[address] = account
	}
	*s = res
	return nil
}

func (a *accountJSON) toAccount() (Account, error) {
	nonce := a.Nonce.value.ToUint256()
	if !nonce.IsUint64() {
		return Account{}, fmt.Errorf("nonce %v exceeds 64 bits", nonce)
	}
	res := Account{
		Balance: a.Balance.value,
		Nonce:   nonce.Uint64(),
		Code:    tinyevm.Code(a.Code),
	}
	for k, v := range a.Storage {
		var key tinyevm.Key
		if err := key.UnmarshalText([]byte(k)); err != nil {
			return Account{}, fmt.Errorf("invalid storage key %q: %v", k, err)
		}
		var value tinyevm.Word
		if err := value.UnmarshalText([]byte(v)); err != nil {
			return Account{}, fmt.Errorf("invalid storage value %q: %v", v, err)
		}
		if res.Storage == nil {
			res.Storage = Storage{}
		}
		res.Storage[key] = value
	}
	return res, nil
}

// quantityJSON accepts a JSON number or a string holding a decimal or hex
// quantity.
type quantityJSON struct {
	value tinyevm.Value
}

func (q *quantityJSON) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}
	value, err := tinyevm.ParseQuantity(text)
	if err != nil {
		return err
	}
	q.value = value
	return nil
}

// codeJSON accepts a hex string or an array of byte values.
type codeJSON []byte

func (c *codeJSON) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var values []int
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		res := make([]byte, len(values))
		for i, value := range values {
			if value < 0 || value > 255 {
				return fmt.Errorf("code byte %d out of range: %d", i, value)
			}
			res[i] = byte(value)
		}
		*c = res
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	code, err := tinyevm.ParseData(text)
	if err != nil {
		return err
	}
	*c = code
	return nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
