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
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	cliUtils "github.com/tinyevm/tinyevm/go/cmd/tinyevm/cli"
	"github.com/tinyevm/tinyevm/go/dispatch"
	"github.com/tinyevm/tinyevm/go/examples"
	"github.com/tinyevm/tinyevm/go/ledger"
	"github.com/tinyevm/tinyevm/go/tinyevm"
	"github.com/urfave/cli/v2"
)

var DemoCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doDemo,
	Name:   "demo",
	Usage:  "Deploys a token contract and moves tokens between accounts",
})

func doDemo(context *cli.Context) error {
	service, release, err := newService(context)
	if err != nil {
		return err
	}
	defer release()
	return runDemo(service, context.App.Writer)
}

// demoRecipient receives tokens in the demo.
var demoRecipient = tinyevm.Address{0x0a}

func runDemo(service *dispatch.Service, out io.Writer) error {
	owner := ledger.Owner.String()
	token, err := service.Deploy(hexutil.Encode(examples.NewToken().InitCode()), owner)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Deployed token at %s\n", token)

	call := func(sender tinyevm.Address, input tinyevm.Data) (tinyevm.Outcome, error) {
		var outcome tinyevm.Outcome
		text, err := service.Call(token, sender.String(), hexutil.Encode(input))
		if err != nil {
			return outcome, err
		}
		err = json.Unmarshal([]byte(text), &outcome)
		return outcome, err
	}

	printBalances := func() error {
		for _, account := range []tinyevm.Address{ledger.Owner, demoRecipient} {
			outcome, err := call(account, examples.BalanceOfInput(account))
			if err != nil {
				return err
			}
			balance := new(uint256.Int).SetBytes(outcome.ReturnData)
			fmt.Fprintf(out, "  balance of %v: %v\n", account, balance)
		}
		return nil
	}

	if err := printBalances(); err != nil {
		return err
	}
	amount := tinyevm.NewValue(9999)
	for i := 0; i < 2; i++ {
		outcome, err := call(ledger.Owner, examples.TransferInput(demoRecipient, amount))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Transfer of %v to %v: %v\n", amount, demoRecipient, outcome.Status)
		if err := printBalances(); err != nil {
			return err
		}
	}

	outcome, err := call(demoRecipient, examples.TransferInput(ledger.Owner, amount.Scale(3)))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Transfer of %v back to %v: %v\n", amount.Scale(3), ledger.Owner, outcome.Status)
	if err := printBalances(); err != nil {
		return err
	}
	return printLedgerChanges(service, out)
}

// printLedgerChanges lists the differences between the genesis and the
// current content of the shared ledger.
func printLedgerChanges(service *dispatch.Service, out io.Writer) error {
	snapshot, err := service.LedgerSnapshot()
	if err != nil {
		return err
	}
	accounts, err := ledger.ParseSnapshot([]byte(snapshot))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Ledger changes since genesis:")
	for _, change := range ledger.Genesis().Diff(accounts) {
		fmt.Fprintf(out, "  %s\n", change)
	}
	return nil
}
