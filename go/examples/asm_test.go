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
	"testing"

	"github.com/ethereum/go-ethereum/core/vm"
)

func TestAssembler_PushUsesShortestEncoding(t *testing.T) {
	tests := []struct {
		value uint64
		code  []byte
	}{
		{0, []byte{byte(vm.PUSH1), 0}},
		{1, []byte{byte(vm.PUSH1), 1}},
		{0xff, []byte{byte(vm.PUSH1), 0xff}},
		{0x100, []byte{byte(vm.PUSH2), 1, 0}},
		{0xe0, []byte{byte(vm.PUSH1), 0xe0}},
		{1 << 63, []byte{byte(vm.PUSH8), 0x80, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, test := range tests {
		got := NewAssembler().PushUint(test.value).MustAssemble()
		if !bytes.Equal(test.code, got) {
			t.Errorf("unexpected code for %d, wanted %x, got %x", test.value, test.code, got)
		}
	}
}

func TestAssembler_PushOfEmptyValueIsZero(t *testing.T) {
	got := NewAssembler().Push(nil).MustAssemble()
	if want := []byte{byte(vm.PUSH1), 0}; !bytes.Equal(want, got) {
		t.Errorf("unexpected code, wanted %x, got %x", want, got)
	}
}

func TestAssembler_LabelsAreResolved(t *testing.T) {
	got := NewAssembler().
		PushLabel("end").Op(vm.JUMP).
		Op(vm.INVALID).
		Label("end").
		Op(vm.STOP).
		MustAssemble()
	want := []byte{
		byte(vm.PUSH2), 0, 5,
		byte(vm.JUMP),
		byte(vm.INVALID),
		byte(vm.JUMPDEST),
		byte(vm.STOP),
	}
	if !bytes.Equal(want, got) {
		t.Errorf("unexpected code, wanted %x, got %x", want, got)
	}
}

func TestAssembler_BackwardReferencesAreResolved(t *testing.T) {
	got := NewAssembler().
		Label("start").
		PushLabel("start").Op(vm.JUMP).
		MustAssemble()
	want := []byte{byte(vm.JUMPDEST), byte(vm.PUSH2), 0, 0, byte(vm.JUMP)}
	if !bytes.Equal(want, got) {
		t.Errorf("unexpected code, wanted %x, got %x", want, got)
	}
}

func TestAssembler_UndefinedLabelIsReported(t *testing.T) {
	_, err := NewAssembler().PushLabel("missing").Op(vm.JUMP).Assemble()
	if err == nil {
		t.Fatalf("expected assembling to fail")
	}
}

func TestAssembler_DuplicateLabelPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected duplicate label to cause a panic")
		}
	}()
	NewAssembler().Label("a").Label("a")
}

func TestDeployCode_LayoutPlacesRuntimeAfterLoader(t *testing.T) {
	constructor := []byte{byte(vm.PUSH1), 1, byte(vm.POP)}
	runtime := []byte{byte(vm.PUSH1), 42, byte(vm.STOP)}
	code := DeployCode(constructor, runtime)

	if want, got := len(constructor)+13+len(runtime), len(code); want != got {
		t.Fatalf("unexpected code length, wanted %d, got %d", want, got)
	}
	if !bytes.HasPrefix(code, constructor) {
		t.Errorf("constructor is not at the start of the code: %x", code)
	}
	if !bytes.HasSuffix(code, runtime) {
		t.Errorf("runtime is not at the end of the code: %x", code)
	}

	loader := code[len(constructor):]
	if size := int(loader[1])<<8 | int(loader[2]); size != len(runtime) {
		t.Errorf("unexpected runtime size in loader, wanted %d, got %d", len(runtime), size)
	}
	if offset := int(loader[5])<<8 | int(loader[6]); offset != len(constructor)+13 {
		t.Errorf("unexpected runtime offset in loader, wanted %d, got %d", len(constructor)+13, offset)
	}
	if vm.OpCode(loader[12]) != vm.RETURN {
		t.Errorf("loader does not end with RETURN, got %v", vm.OpCode(loader[12]))
	}
}
