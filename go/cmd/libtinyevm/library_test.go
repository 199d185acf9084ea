// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tinyevm/tinyevm/go/examples"
	"github.com/tinyevm/tinyevm/go/ledger"
	"github.com/tinyevm/tinyevm/go/tinyevm"
)

func decodeEnvelope(t *testing.T, text string) envelope {
	t.Helper()
	var res envelope
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatalf("failed to decode envelope %q: %v", text, err)
	}
	return res
}

func TestEncode(t *testing.T) {
	tests := map[string]struct {
		result json.RawMessage
		err    error
		want   string
	}{
		"result": {json.RawMessage(`"0x12"`), nil, `{"result":"0x12"}`},
		"error":  {nil, errors.New("boom"), `{"error":"boom"}`},
		"both":   {json.RawMessage(`1`), errors.New("boom"), `{"error":"boom"}`},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if got := encode(test.result, test.err); test.want != got {
				t.Errorf("unexpected encoding, wanted %s, got %s", test.want, got)
			}
		})
	}
}

func TestLibrary_DeployAndCall(t *testing.T) {
	owner := ledger.Owner.String()
	deployed := decodeEnvelope(t, deploy(hexutil.Encode(examples.NewToken().InitCode()), owner))
	if deployed.Error != "" {
		t.Fatalf("deployment failed: %s", deployed.Error)
	}
	var token string
	if err := json.Unmarshal(deployed.Result, &token); err != nil {
		t.Fatalf("failed to decode address: %v", err)
	}

	called := decodeEnvelope(t, call(token, owner, "18160ddd"))
	if called.Error != "" {
		t.Fatalf("call failed: %s", called.Error)
	}
	var outcome tinyevm.Outcome
	if err := json.Unmarshal(called.Result, &outcome); err != nil {
		t.Fatalf("failed to decode outcome: %v", err)
	}
	if outcome.Status != tinyevm.Succeeded || tinyevm.Word(outcome.ReturnData) != tinyevm.Word(examples.TokenSupply) {
		t.Errorf("unexpected outcome %v", outcome)
	}

	snapshot := `{"` + token[2:] + `":{"nonce":1,"balance":"0","code":"` +
		hexutil.Encode(examples.NewToken().RuntimeCode()) + `"}}`
	called = decodeEnvelope(t, callWithSnapshot(snapshot, token, owner, "0x18160ddd"))
	if called.Error != "" {
		t.Fatalf("call failed: %s", called.Error)
	}
	if err := json.Unmarshal(called.Result, &outcome); err != nil {
		t.Fatalf("failed to decode outcome: %v", err)
	}
	if outcome.Status != tinyevm.Succeeded {
		t.Errorf("unexpected status %v", outcome.Status)
	}
}

func TestLibrary_ErrorsAreReportedInEnvelope(t *testing.T) {
	for _, res := range []string{
		deploy("0x6", ledger.Owner.String()),
		call("0x12", ledger.Owner.String(), ""),
		callWithSnapshot("[]", ledger.Owner.String(), ledger.Owner.String(), ""),
	} {
		decoded := decodeEnvelope(t, res)
		if !strings.Contains(decoded.Error, "malformed input") {
			t.Errorf("unexpected error %q", decoded.Error)
		}
		if len(decoded.Result) != 0 {
			t.Errorf("failed operation should have no result, got %s", decoded.Result)
		}
	}
}
