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
	"fmt"
	"os"

	cliUtils "github.com/tinyevm/tinyevm/go/cmd/tinyevm/cli"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "tinyevm",
		Usage:     "Contract execution sandbox",
		Copyright: "(c) 2024 Fantom Foundation",
		Flags:     cliUtils.GlobalFlags,
		Commands: []*cli.Command{
			&GenesisCmd,
			&DeployCmd,
			&CallSnapshotCmd,
			&ServeCmd,
			&DemoCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
