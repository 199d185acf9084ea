// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package dispatch

import (
	"fmt"

	"github.com/tinyevm/tinyevm/go/tinyevm"
)

type deployment struct {
	owner tinyevm.Address
	salt  tinyevm.Hash
	code  tinyevm.Code
}

func parseDeployment(code, owner, salt string) (deployment, error) {
	var res deployment
	initCode, err := tinyevm.ParseData(code)
	if err != nil {
		return res, fmt.Errorf("%w: %v", tinyevm.ErrInvalidBytecode, err)
	}
	res.code = tinyevm.Code(initCode)
	if res.owner, err = parseAddress("owner", owner); err != nil {
		return res, err
	}
	if res.salt, err = tinyevm.ParseHash(salt); err != nil {
		return res, fmt.Errorf("invalid salt: %w", err)
	}
	return res, nil
}

type message struct {
	contract tinyevm.Address
	sender   tinyevm.Address
	input    tinyevm.Data
}

func parseCall(contract, sender, data string) (message, error) {
	var (
		res message
		err error
	)
	if res.contract, err = parseAddress("contract", contract); err != nil {
		return res, err
	}
	if res.sender, err = parseAddress("sender", sender); err != nil {
		return res, err
	}
	if res.input, err = tinyevm.ParseData(data); err != nil {
		return res, fmt.Errorf("%w: %v", tinyevm.ErrInvalidCallData, err)
	}
	return res, nil
}

func parseAddress(field, text string) (tinyevm.Address, error) {
	address, err := tinyevm.ParseAddress(text)
	if err != nil {
		return address, fmt.Errorf("invalid %s address: %w", field, err)
	}
	return address, nil
}
