// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package geth

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tinyevm/tinyevm/go/examples"
	"github.com/tinyevm/tinyevm/go/ledger"
	"github.com/tinyevm/tinyevm/go/tinyevm"
)

const testGasLimit = tinyevm.Gas(10_000_000)

func runTransaction(t *testing.T, state *ledger.Ledger, revision tinyevm.Revision, transaction tinyevm.Transaction) tinyevm.Receipt {
	t.Helper()
	return runTransactionIn(t, state, state, revision, transaction)
}

func runTransactionIn(t *testing.T, state *ledger.Ledger, context tinyevm.TransactionContext, revision tinyevm.Revision, transaction tinyevm.Transaction) tinyevm.Receipt {
	t.Helper()
	processor, err := NewProcessor()
	if err != nil {
		t.Fatalf("failed to create processor: %v", err)
	}
	state.BeginTransaction()
	receipt, err := processor.Run(tinyevm.BlockParameters{Revision: revision}, transaction, context)
	if err != nil {
		t.Fatalf("failed to run transaction: %v", err)
	}
	state.EndTransaction(true)
	return receipt
}

func deployToken(t *testing.T, state *ledger.Ledger, revision tinyevm.Revision) tinyevm.Address {
	t.Helper()
	receipt := runTransaction(t, state, revision, tinyevm.Transaction{
		Sender:   ledger.Owner,
		Input:    tinyevm.Data(examples.NewToken().InitCode()),
		GasLimit: testGasLimit,
	})
	if receipt.Status != tinyevm.Succeeded {
		t.Fatalf("failed to deploy token: %v", receipt.Status)
	}
	if receipt.ContractAddress == nil {
		t.Fatalf("no contract address reported")
	}
	return *receipt.ContractAddress
}

func callContract(t *testing.T, state *ledger.Ledger, revision tinyevm.Revision, sender, contract tinyevm.Address, input tinyevm.Data) tinyevm.Receipt {
	t.Helper()
	return runTransaction(t, state, revision, tinyevm.Transaction{
		Sender:    sender,
		Recipient: &contract,
		Input:     input,
		GasLimit:  testGasLimit,
	})
}

func TestProcessor_IsRegistered(t *testing.T) {
	if tinyevm.GetProcessorFactory("geth") == nil {
		t.Fatalf("geth processor is not registered")
	}
	if _, err := tinyevm.NewProcessor("geth"); err != nil {
		t.Errorf("failed to create registered processor: %v", err)
	}
}

func TestProcessor_UnsupportedRevisionIsRejected(t *testing.T) {
	processor, _ := NewProcessor()
	state := ledger.New(ledger.Genesis())
	_, err := processor.Run(tinyevm.BlockParameters{Revision: newestSupportedRevision + 1}, tinyevm.Transaction{}, state)
	var target *tinyevm.ErrUnsupportedRevision
	if !errors.As(err, &target) {
		t.Errorf("expected unsupported revision error, got %v", err)
	}
}

func TestProcessor_DeployUsesCreate2Address(t *testing.T) {
	for _, revision := range tinyevm.GetAllKnownRevisions() {
		t.Run(revision.String(), func(t *testing.T) {
			state := ledger.New(ledger.Genesis())
			init := examples.NewToken().InitCode()
			salt := tinyevm.Hash{0x12}

			receipt := runTransaction(t, state, revision, tinyevm.Transaction{
				Sender:   ledger.Owner,
				Input:    tinyevm.Data(init),
				GasLimit: testGasLimit,
				Salt:     salt,
			})
			if receipt.Status != tinyevm.Succeeded {
				t.Fatalf("failed to deploy token: %v", receipt.Status)
			}
			want := tinyevm.CreateAddress2(ledger.Owner, salt, init)
			if receipt.ContractAddress == nil || *receipt.ContractAddress != want {
				t.Fatalf("unexpected contract address, wanted %v, got %v", want, receipt.ContractAddress)
			}

			accounts := state.Accounts()
			contract := accounts[want]
			if want, got := examples.NewToken().RuntimeCode(), contract.Code; !bytes.Equal(want, got) {
				t.Errorf("unexpected contract code, wanted %x, got %x", want, got)
			}
			if want, got := tinyevm.Word(examples.TokenSupply), contract.Storage[examples.BalanceKey(ledger.Owner)]; want != got {
				t.Errorf("unexpected owner balance, wanted %v, got %v", want, got)
			}
			if want, got := uint64(1), accounts[ledger.Owner].Nonce; want != got {
				t.Errorf("unexpected owner nonce, wanted %d, got %d", want, got)
			}
			if receipt.GasUsed == 0 || receipt.GasUsed > testGasLimit {
				t.Errorf("implausible gas usage: %d", receipt.GasUsed)
			}
		})
	}
}

func TestProcessor_DeployingTwiceCollides(t *testing.T) {
	state := ledger.New(ledger.Genesis())
	deployToken(t, state, tinyevm.R07_Istanbul)
	before := state.Accounts()

	receipt := runTransaction(t, state, tinyevm.R07_Istanbul, tinyevm.Transaction{
		Sender:   ledger.Owner,
		Input:    tinyevm.Data(examples.NewToken().InitCode()),
		GasLimit: testGasLimit,
	})
	if want, got := tinyevm.Failed, receipt.Status; want != got {
		t.Fatalf("unexpected status, wanted %v, got %v", want, got)
	}
	if receipt.ContractAddress != nil {
		t.Errorf("failed deployment should not report an address")
	}

	// Only the nonce of the creator is updated.
	after := state.Accounts()
	owner := before[ledger.Owner]
	owner.Nonce++
	before[ledger.Owner] = owner
	if diff := before.Diff(after); len(diff) != 0 {
		t.Errorf("unexpected state changes: %v", diff)
	}
}

func TestProcessor_RevertingInitCodeCreatesNoContract(t *testing.T) {
	state := ledger.New(ledger.Genesis())
	init := examples.NewAssembler().
		PushUint(0).PushUint(0).Op(0xfd). // REVERT
		MustAssemble()
	receipt := runTransaction(t, state, tinyevm.R07_Istanbul, tinyevm.Transaction{
		Sender:   ledger.Owner,
		Input:    init,
		GasLimit: testGasLimit,
	})
	if want, got := tinyevm.Reverted, receipt.Status; want != got {
		t.Fatalf("unexpected status, wanted %v, got %v", want, got)
	}
	address := tinyevm.CreateAddress2(ledger.Owner, tinyevm.Hash{}, init)
	if _, found := state.Accounts()[address]; found {
		t.Errorf("reverted deployment left an account behind")
	}
}

func TestProcessor_TokenTransfers(t *testing.T) {
	state := ledger.New(ledger.Genesis())
	token := deployToken(t, state, tinyevm.R07_Istanbul)
	recipient := tinyevm.Address{0xaa}

	receipt := callContract(t, state, tinyevm.R07_Istanbul, ledger.Owner, token, examples.TransferInput(recipient, tinyevm.NewValue(9999)))
	if want, got := tinyevm.Succeeded, receipt.Status; want != got {
		t.Fatalf("unexpected status, wanted %v, got %v", want, got)
	}
	if want, got := tinyevm.Word(tinyevm.NewValue(1)), tinyevm.Word(receipt.Output); want != got {
		t.Errorf("unexpected output, wanted %v, got %v", want, got)
	}

	receipt = callContract(t, state, tinyevm.R07_Istanbul, recipient, token, examples.BalanceOfInput(recipient))
	if want, got := tinyevm.Word(tinyevm.NewValue(9999)), tinyevm.Word(receipt.Output); want != got {
		t.Errorf("unexpected recipient balance, wanted %v, got %v", want, got)
	}

	receipt = callContract(t, state, tinyevm.R07_Istanbul, recipient, token, examples.TotalSupplyInput())
	if want, got := tinyevm.Word(examples.TokenSupply), tinyevm.Word(receipt.Output); want != got {
		t.Errorf("unexpected total supply, wanted %v, got %v", want, got)
	}
}

func TestProcessor_OverTransferRevertsWithoutEffects(t *testing.T) {
	state := ledger.New(ledger.Genesis())
	token := deployToken(t, state, tinyevm.R07_Istanbul)
	poor := tinyevm.Address{0xbb}
	callContract(t, state, tinyevm.R07_Istanbul, ledger.Owner, token, examples.TransferInput(poor, tinyevm.NewValue(10)))
	before := state.Accounts()

	receipt := callContract(t, state, tinyevm.R07_Istanbul, poor, token, examples.TransferInput(ledger.Owner, tinyevm.NewValue(11)))
	if want, got := tinyevm.Reverted, receipt.Status; want != got {
		t.Fatalf("unexpected status, wanted %v, got %v", want, got)
	}

	after := state.Accounts()
	if want, got := (ledger.Accounts{token: before[token]}), (ledger.Accounts{token: after[token]}); !want.Equal(got) {
		t.Errorf("reverted transfer modified the token: %v", want.Diff(got))
	}
	if want, got := before[poor].Nonce+1, after[poor].Nonce; want != got {
		t.Errorf("unexpected sender nonce, wanted %d, got %d", want, got)
	}
}

func TestProcessor_CallBumpsSenderNonce(t *testing.T) {
	state := ledger.New(ledger.Genesis())
	token := deployToken(t, state, tinyevm.R07_Istanbul)
	for i := uint64(2); i < 5; i++ {
		callContract(t, state, tinyevm.R07_Istanbul, ledger.Owner, token, examples.TotalSupplyInput())
		if want, got := i, state.Accounts()[ledger.Owner].Nonce; want != got {
			t.Errorf("unexpected nonce, wanted %d, got %d", want, got)
		}
	}
}

func TestProcessor_OutOfGasFails(t *testing.T) {
	state := ledger.New(ledger.Genesis())
	token := deployToken(t, state, tinyevm.R07_Istanbul)
	receipt := runTransaction(t, state, tinyevm.R07_Istanbul, tinyevm.Transaction{
		Sender:    ledger.Owner,
		Recipient: &token,
		Input:     examples.TransferInput(tinyevm.Address{0xaa}, tinyevm.NewValue(1)),
		GasLimit:  100,
	})
	if want, got := tinyevm.Failed, receipt.Status; want != got {
		t.Errorf("unexpected status, wanted %v, got %v", want, got)
	}
	if want, got := tinyevm.Gas(100), receipt.GasUsed; want != got {
		t.Errorf("failed execution should consume all gas, wanted %d, got %d", want, got)
	}
}

func TestProcessor_ExamplesMatchReferences(t *testing.T) {
	for _, example := range examples.GetAllExamples() {
		t.Run(example.Name, func(t *testing.T) {
			state := ledger.New(ledger.Genesis())
			receipt := runTransaction(t, state, tinyevm.R13_Cancun, tinyevm.Transaction{
				Sender:   ledger.Owner,
				Input:    tinyevm.Data(example.InitCode()),
				GasLimit: testGasLimit,
			})
			if receipt.Status != tinyevm.Succeeded || receipt.ContractAddress == nil {
				t.Fatalf("failed to deploy example: %v", receipt.Status)
			}
			contract := *receipt.ContractAddress

			for _, arg := range []int{0, 1, 2, 10, 100} {
				receipt := callContract(t, state, tinyevm.R13_Cancun, ledger.Owner, contract, example.Input(arg))
				if receipt.Status != tinyevm.Succeeded {
					t.Fatalf("call with argument %d ended with %v", arg, receipt.Status)
				}
				got, err := example.Result(receipt.Output)
				if err != nil {
					t.Fatalf("failed to decode result: %v", err)
				}
				if want := example.RunReference(arg); want != got {
					t.Errorf("unexpected result for argument %d, wanted %d, got %d", arg, want, got)
				}
			}
		})
	}
}

// trappingContext fails when contract storage is read.
type trappingContext struct {
	*ledger.Ledger
}

func (trappingContext) GetStorage(tinyevm.Address, tinyevm.Key) tinyevm.Word {
	panic("storage is unavailable")
}

func TestProcessor_PanicsAreReportedAsTrappedAndRolledBack(t *testing.T) {
	state := ledger.New(ledger.Genesis())
	token := deployToken(t, state, tinyevm.R07_Istanbul)
	before := state.Accounts()

	receipt := runTransactionIn(t, state, trappingContext{state}, tinyevm.R07_Istanbul, tinyevm.Transaction{
		Sender:    ledger.Owner,
		Recipient: &token,
		Input:     examples.BalanceOfInput(ledger.Owner),
		GasLimit:  testGasLimit,
	})
	if want, got := tinyevm.Trapped, receipt.Status; want != got {
		t.Fatalf("unexpected status, wanted %v, got %v", want, got)
	}
	if len(receipt.Output) != 0 {
		t.Errorf("trapped execution should produce no output, got %x", receipt.Output)
	}
	if diff := before.Diff(state.Accounts()); len(diff) != 0 {
		t.Errorf("trapped execution modified the state: %v", diff)
	}
}

func TestProcessor_PrecompileErrorsAreFailures(t *testing.T) {
	tests := map[string]tinyevm.Address{
		"bn256 pairing": {19: 0x08},
		"blake2f":       {19: 0x09},
	}
	for name, precompile := range tests {
		t.Run(name, func(t *testing.T) {
			state := ledger.New(ledger.Genesis())
			receipt := callContract(t, state, tinyevm.R07_Istanbul, ledger.Owner, precompile, tinyevm.Data{0x01})
			if want, got := tinyevm.Failed, receipt.Status; want != got {
				t.Fatalf("unexpected status, wanted %v, got %v", want, got)
			}
			if len(receipt.Output) != 0 {
				t.Errorf("failed execution should produce no output, got %x", receipt.Output)
			}
			if want, got := testGasLimit, receipt.GasUsed; want != got {
				t.Errorf("exceptional halt should consume all gas, wanted %d, got %d", want, got)
			}
		})
	}
}

func TestProcessor_ValueTransferToAccountWithoutCode(t *testing.T) {
	state := ledger.New(ledger.Genesis())
	recipient := tinyevm.Address{0xcc}
	receipt := runTransaction(t, state, tinyevm.R07_Istanbul, tinyevm.Transaction{
		Sender:    ledger.Owner,
		Recipient: &recipient,
		Value:     tinyevm.NewValue(1000),
		GasLimit:  testGasLimit,
	})
	if want, got := tinyevm.Succeeded, receipt.Status; want != got {
		t.Fatalf("unexpected status, wanted %v, got %v", want, got)
	}
	accounts := state.Accounts()
	if want, got := tinyevm.NewValue(1000), accounts[recipient].Balance; want != got {
		t.Errorf("unexpected recipient balance, wanted %v, got %v", want, got)
	}
	if want, got := tinyevm.NewValue(ledger.GenesisBalance-1000), accounts[ledger.Owner].Balance; want != got {
		t.Errorf("unexpected sender balance, wanted %v, got %v", want, got)
	}
}
