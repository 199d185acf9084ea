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
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
	"github.com/tinyevm/tinyevm/go/tinyevm"
)

// arithmeticCode is the runtime code produced by solc 0.8.20 for
//
//	contract Arithmetic {
//		function arithmetic(int n) public pure returns (int) {
//			unchecked {
//				uint result = 0;
//				for(uint i = 1; i <= uint(n); ++i) {
//					result += i;
//					result *= i;
//					result += i * i;
//					result -= i;
//					result /= i;
//					result *= (i % 3) + 1;
//					result += i * i * i;
//				}
//				return int(result % uint(int(type(int32).max)));
//			}
//		}
//	}
var arithmeticCode = common.FromHex("608060405234801561001057600080fd5b506004361061002b5760003560e01c8063cc821c0914610030575b600080fd5b61004a60048036038101906100459190610127565b610060565b6040516100579190610163565b60405180910390f35b600080600090506000600190505b8381116100cb578082019150808202915080810282019150808203915080828161009b5761009a61017e565b5b0491506001600382816100b1576100b061017e565b5b06018202915080818202028201915080600101905061006e565b50637fffffff60030b81816100e3576100e261017e565b5b06915050919050565b600080fd5b6000819050919050565b610104816100f1565b811461010f57600080fd5b50565b600081359050610121816100fb565b92915050565b60006020828403121561013d5761013c6100ec565b5b600061014b84828501610112565b91505092915050565b61015d816100f1565b82525050565b60006020820190506101786000830184610154565b92915050565b7f4e487b7100000000000000000000000000000000000000000000000000000000600052601260045260246000fdfea2646970667358221220475b1df27897da64202d55f39cc1333578da5d82cf48eb365fe0baf54c00e31964736f6c63430008140033")

func GetArithmeticExample() Example {
	return exampleSpec{
		Name:      "arithmetic",
		code:      arithmeticCode,
		function:  0xCC821C09,
		reference: arithmetic,
	}.build()
}

func arithmetic(n int) int {
	iterations := uint256.NewInt(uint64(n))
	result := uint256.NewInt(0)
	for i := uint256.NewInt(1); !i.Gt(iterations); i.AddUint64(i, 1) {
		square := new(uint256.Int).Mul(i, i)
		cube := new(uint256.Int).Mul(square, i)
		factor := new(uint256.Int).Mod(i, uint256.NewInt(3))
		result.Add(result, i)
		result.Mul(result, i)
		result.Add(result, square)
		result.Sub(result, i)
		result.Div(result, i)
		result.Mul(result, factor.AddUint64(factor, 1))
		result.Add(result, cube)
	}
	result.Mod(result, uint256.NewInt(math.MaxInt32))
	return int(result.Uint64())
}

// GetSha3Example computes x iterative hashes of a 32-byte word starting
// with zero and returns the last byte of the final hash.
func GetSha3Example() Example {
	code := NewAssembler().
		PushUint(4).Op(vm.CALLDATALOAD). // [x]
		Label("loop").
		Op(vm.DUP1, vm.ISZERO).PushLabel("done").Op(vm.JUMPI).
		PushUint(32).PushUint(0).Op(vm.KECCAK256). // hash memory[0:32]
		PushUint(0).Op(vm.MSTORE).                 // and store it back
		PushUint(1).Op(vm.SWAP1, vm.SUB).          // [x-1]
		PushLabel("loop").Op(vm.JUMP).
		Label("done").
		PushUint(0).Op(vm.MLOAD).PushUint(0xff).Op(vm.AND).
		PushUint(0).Op(vm.MSTORE).
		PushUint(32).PushUint(0).Op(vm.RETURN).
		MustAssemble()

	return exampleSpec{
		Name:      "sha3",
		code:      code,
		reference: sha3Ref,
	}.build()
}

func sha3Ref(x int) int {
	var hash tinyevm.Hash
	for i := 0; i < x; i++ {
		hash = tinyevm.Keccak256(hash[:])
	}
	return int(hash[31])
}

// GetEchoExample returns its argument. It is the shortest possible contract
// touching call data, memory and output.
func GetEchoExample() Example {
	code := NewAssembler().
		PushUint(4).PushUint(32).PushUint(28).
		Op(vm.CALLDATACOPY). // copy the low 4 bytes of the argument into memory[28:32]
		PushUint(32).PushUint(0).Op(vm.RETURN).
		MustAssemble()

	return exampleSpec{
		Name:      "echo",
		code:      code,
		reference: func(x int) int { return x },
	}.build()
}
