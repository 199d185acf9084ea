// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/tinyevm/tinyevm/go/tinyevm"
)

// Function selectors of the ERC20 subset implemented by the token contract.
const (
	BalanceOfSelector   = 0x70a08231 // balanceOf(address)
	TransferSelector    = 0xa9059cbb // transfer(address,uint256)
	TotalSupplySelector = 0x18160ddd // totalSupply()
)

// TokenSupply is the default number of tokens minted for the deployer,
// 10_000 tokens with 18 decimals.
var TokenSupply = tinyevm.NewValue(542, 1864712049423024128)

// Token is a minimal ERC20-like contract. The deployer receives the full
// supply. The balance of an account is kept in the storage slot keyed by
// its address. Transfers exceeding the balance of the sender revert.
type Token struct {
	Supply tinyevm.Value
}

// NewToken creates a token description minting TokenSupply.
func NewToken() Token {
	return Token{Supply: TokenSupply}
}

// InitCode produces the init code deploying the token contract.
func (t Token) InitCode() tinyevm.Code {
	constructor := NewAssembler().
		Push(t.Supply[:]).
		Op(vm.CALLER, vm.SSTORE).
		MustAssemble()
	return DeployCode(constructor, t.RuntimeCode())
}

// RuntimeCode produces the code of the deployed token contract.
func (t Token) RuntimeCode() tinyevm.Code {
	asm := NewAssembler()

	// Dispatch on the function selector in the leading 4 bytes of the input.
	asm.PushUint(0).Op(vm.CALLDATALOAD).PushUint(0xe0).Op(vm.SHR)
	for _, entry := range []struct {
		selector uint64
		label    string
	}{
		{BalanceOfSelector, "balanceOf"},
		{TransferSelector, "transfer"},
		{TotalSupplySelector, "totalSupply"},
	} {
		asm.Op(vm.DUP1).PushUint(entry.selector).Op(vm.EQ).PushLabel(entry.label).Op(vm.JUMPI)
	}

	asm.Label("fail").
		PushUint(0).Op(vm.DUP1, vm.REVERT)

	// balanceOf(owner): load the slot keyed by the owner.
	asm.Label("balanceOf").Op(vm.POP).
		PushUint(4).Op(vm.CALLDATALOAD, vm.SLOAD)
	returnTopOfStack(asm)

	// transfer(to, value)
	asm.Label("transfer").Op(vm.POP).
		PushUint(0x24).Op(vm.CALLDATALOAD). // [v]
		Op(vm.CALLER, vm.SLOAD).            // [v, bal]
		Op(vm.DUP2, vm.DUP2, vm.LT).        // [v, bal, bal < v]
		PushLabel("fail").Op(vm.JUMPI).     // [v, bal]
		Op(vm.DUP2, vm.SWAP1, vm.SUB).      // [v, bal - v]
		Op(vm.CALLER, vm.SSTORE).           // [v]
		PushUint(4).Op(vm.CALLDATALOAD).    // [v, to]
		Op(vm.DUP1, vm.SLOAD).              // [v, to, balTo]
		Op(vm.DUP3, vm.ADD).                // [v, to, balTo + v]
		Op(vm.SWAP1, vm.SSTORE).            // [v]
		Op(vm.POP).
		PushUint(1)
	returnTopOfStack(asm)

	// totalSupply()
	asm.Label("totalSupply").Op(vm.POP).
		Push(t.Supply[:])
	returnTopOfStack(asm)

	return asm.MustAssemble()
}

func returnTopOfStack(asm *Assembler) {
	asm.PushUint(0).Op(vm.MSTORE).
		PushUint(32).PushUint(0).Op(vm.RETURN)
}

// BalanceOfInput encodes a call of balanceOf(owner).
func BalanceOfInput(owner tinyevm.Address) tinyevm.Data {
	res := selector(BalanceOfSelector)
	return append(res, addressWord(owner)...)
}

// TransferInput encodes a call of transfer(to, value).
func TransferInput(to tinyevm.Address, value tinyevm.Value) tinyevm.Data {
	res := selector(TransferSelector)
	res = append(res, addressWord(to)...)
	return append(res, value[:]...)
}

// TotalSupplyInput encodes a call of totalSupply().
func TotalSupplyInput() tinyevm.Data {
	return selector(TotalSupplySelector)
}

// BalanceKey is the storage key holding the token balance of the given owner.
func BalanceKey(owner tinyevm.Address) tinyevm.Key {
	var res tinyevm.Key
	copy(res[12:], owner[:])
	return res
}

func selector(id uint32) tinyevm.Data {
	return binary.BigEndian.AppendUint32(make(tinyevm.Data, 0, 4+64), id)
}

func addressWord(address tinyevm.Address) []byte {
	key := BalanceKey(address)
	return key[:]
}
