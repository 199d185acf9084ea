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

	cliUtils "github.com/tinyevm/tinyevm/go/cmd/tinyevm/cli"
	"github.com/tinyevm/tinyevm/go/ledger"
	"github.com/urfave/cli/v2"
)

var GenesisCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doGenesis,
	Name:   "genesis",
	Usage:  "Prints the ledger every shared execution starts with",
})

func doGenesis(context *cli.Context) error {
	encoded, err := json.MarshalIndent(ledger.Genesis(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(context.App.Writer, string(encoded))
	return err
}

var DeployCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doDeploy,
	Name:   "deploy",
	Usage:  "Deploys a contract on the genesis ledger and prints its address",
	Flags: []cli.Flag{
		cliUtils.CodeFlag,
		cliUtils.OwnerFlag,
		cliUtils.SaltFlag,
	},
})

func doDeploy(context *cli.Context) error {
	service, release, err := newService(context)
	if err != nil {
		return err
	}
	defer release()

	address, err := service.DeployWithSalt(
		cliUtils.CodeFlag.Fetch(context),
		cliUtils.OwnerFlag.Fetch(context),
		cliUtils.SaltFlag.Fetch(context),
	)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(context.App.Writer, address)
	return err
}

var CallSnapshotCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doCallSnapshot,
	Name:   "call-snapshot",
	Usage:  "Calls a contract on a ledger loaded from a snapshot file and prints the outcome",
	Flags: []cli.Flag{
		cliUtils.SnapshotFlag,
		cliUtils.ContractFlag,
		cliUtils.SenderFlag,
		cliUtils.DataFlag,
	},
})

func doCallSnapshot(context *cli.Context) error {
	snapshot, err := cliUtils.SnapshotFlag.Fetch(context)
	if err != nil {
		return err
	}
	service, release, err := newService(context)
	if err != nil {
		return err
	}
	defer release()

	outcome, err := service.CallWithSnapshot(
		snapshot,
		cliUtils.ContractFlag.Fetch(context),
		cliUtils.SenderFlag.Fetch(context),
		cliUtils.DataFlag.Fetch(context),
	)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(context.App.Writer, outcome)
	return err
}
