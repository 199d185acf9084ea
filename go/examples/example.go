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
	"bytes"
	"fmt"

	"github.com/tinyevm/tinyevm/go/tinyevm"
)

// Example is a deployable description of a contract and an entry point with
// a (int)->int signature.
type Example struct {
	exampleSpec
	codeHash tinyevm.Hash // the hash of the code
}

// exampleSpec specifies a contract and an entry point with a (int)->int signature.
type exampleSpec struct {
	Name      string
	code      []byte        // some contract code
	function  uint32        // identifier of the function in the contract to be called
	reference func(int) int // a reference function computing the same function
}

func (s exampleSpec) build() Example {
	return Example{
		exampleSpec: s,
		codeHash:    tinyevm.Keccak256(s.code),
	}
}

// GetAllExamples lists all (int)->int examples of this package.
func GetAllExamples() []Example {
	return []Example{
		GetArithmeticExample(),
		GetSha3Example(),
		GetEchoExample(),
	}
}

// Code returns the runtime code of the example contract.
func (e *Example) Code() tinyevm.Code {
	return bytes.Clone(e.code)
}

// CodeHash returns the hash of the runtime code.
func (e *Example) CodeHash() tinyevm.Hash {
	return e.codeHash
}

// InitCode returns init code deploying the example contract.
func (e *Example) InitCode() tinyevm.Code {
	return DeployCode(nil, e.code)
}

// Input encodes a call of the example's entry point with the given argument.
func (e *Example) Input(argument int) tinyevm.Data {
	return encodeArgument(e.function, argument)
}

// Result decodes the output of a call of the example's entry point.
func (e *Example) Result(output []byte) (int, error) {
	return decodeOutput(output)
}

// RunReference runs the reference function of this example to produce the expected result.
func (e *Example) RunReference(argument int) int {
	return e.reference(argument)
}

func encodeArgument(function uint32, arg int) []byte {
	data := make([]byte, 4+32) // parameter is padded up to 32 bytes

	// encode function selector in big-endian format
	data[0] = byte(function >> 24)
	data[1] = byte(function >> 16)
	data[2] = byte(function >> 8)
	data[3] = byte(function)

	// encode argument as a big-endian value
	data[4+28] = byte(arg >> 24)
	data[5+28] = byte(arg >> 16)
	data[6+28] = byte(arg >> 8)
	data[7+28] = byte(arg)

	return data
}

func decodeOutput(output []byte) (int, error) {
	if len(output) != 32 {
		return 0, fmt.Errorf("unexpected length of output; wanted 32, got %d", len(output))
	}
	return (int(output[28]) << 24) | (int(output[29]) << 16) | (int(output[30]) << 8) | (int(output[31]) << 0), nil
}
