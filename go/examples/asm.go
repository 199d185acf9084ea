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
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/core/vm"
)

// Assembler is a minimal helper for writing EVM byte code by hand. Jump
// targets are referenced by name and resolved when the code is assembled.
type Assembler struct {
	code   []byte
	labels map[string]int
	refs   map[int]string // position of a PUSH2 argument -> referenced label
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: map[string]int{},
		refs:   map[int]string{},
	}
}

// Op appends the given instructions.
func (a *Assembler) Op(ops ...vm.OpCode) *Assembler {
	for _, op := range ops {
		a.code = append(a.code, byte(op))
	}
	return a
}

// Push appends the shortest PUSH instruction for the given big-endian value.
// Leading zeros are dropped; an empty value is pushed as a single zero byte.
func (a *Assembler) Push(value []byte) *Assembler {
	for len(value) > 1 && value[0] == 0 {
		value = value[1:]
	}
	if len(value) == 0 {
		value = []byte{0}
	}
	if len(value) > 32 {
		panic(fmt.Sprintf("push argument too long: %d bytes", len(value)))
	}
	a.code = append(a.code, byte(vm.PUSH1)+byte(len(value)-1))
	a.code = append(a.code, value...)
	return a
}

// PushUint appends the shortest PUSH instruction for the given value.
func (a *Assembler) PushUint(value uint64) *Assembler {
	var buffer [8]byte
	for i := range buffer {
		buffer[i] = byte(value >> (56 - 8*i))
	}
	return a.Push(buffer[:])
}

// PushLabel appends a PUSH2 instruction for the position of the given label.
func (a *Assembler) PushLabel(name string) *Assembler {
	a.code = append(a.code, byte(vm.PUSH2))
	a.refs[len(a.code)] = name
	a.code = append(a.code, 0, 0)
	return a
}

// Label appends a JUMPDEST and binds the given name to its position.
func (a *Assembler) Label(name string) *Assembler {
	if _, found := a.labels[name]; found {
		panic(fmt.Sprintf("label %q defined twice", name))
	}
	a.labels[name] = len(a.code)
	return a.Op(vm.JUMPDEST)
}

// Assemble resolves all label references and returns the resulting code.
func (a *Assembler) Assemble() ([]byte, error) {
	res := append([]byte(nil), a.code...)
	for pos, name := range a.refs {
		target, found := a.labels[name]
		if !found {
			return nil, fmt.Errorf("undefined label %q", name)
		}
		if target > math.MaxUint16 {
			return nil, fmt.Errorf("label %q out of range: %d", name, target)
		}
		res[pos] = byte(target >> 8)
		res[pos+1] = byte(target)
	}
	return res, nil
}

// MustAssemble is like Assemble but panics on errors. It is intended for
// code fixed at compile time.
func (a *Assembler) MustAssemble() []byte {
	res, err := a.Assemble()
	if err != nil {
		panic(err)
	}
	return res
}

// DeployCode produces init code that runs the given constructor code and
// then returns the runtime code as the code of the new contract. The
// constructor must fall through to its end without leaving anything on the
// stack.
func DeployCode(constructor, runtime []byte) []byte {
	const loaderLength = 13
	if len(runtime) > math.MaxUint16 || len(constructor)+loaderLength > math.MaxUint16 {
		panic("code too large for deployment")
	}
	size := len(runtime)
	offset := len(constructor) + loaderLength
	loader := []byte{
		byte(vm.PUSH2), byte(size >> 8), byte(size), // push size
		byte(vm.DUP1),                                   // duplicate size for RETURN
		byte(vm.PUSH2), byte(offset >> 8), byte(offset), // push offset of runtime code
		byte(vm.PUSH1), 0, // push destOffset 0
		byte(vm.CODECOPY), // copy runtime code into memory at offset 0
		byte(vm.PUSH1), 0, // push offset 0
		byte(vm.RETURN), // return the runtime code
	}
	res := make([]byte, 0, offset+size)
	res = append(res, constructor...)
	res = append(res, loader...)
	return append(res, runtime...)
}
