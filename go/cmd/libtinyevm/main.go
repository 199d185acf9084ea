// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Command libtinyevm builds a C library exposing the harness operations:
//
//	go build -buildmode=c-shared -o libtinyevm.so ./go/cmd/libtinyevm
//
// Every exported function takes NUL terminated strings and returns a JSON
// envelope which must be released with tinyevm_free.
package main

//#include <stdlib.h>
import "C"

import (
	"unsafe"
)

//export tinyevm_deploy
func tinyevm_deploy(code, owner *C.char) *C.char {
	return C.CString(deploy(C.GoString(code), C.GoString(owner)))
}

//export tinyevm_call
func tinyevm_call(contract, sender, data *C.char) *C.char {
	return C.CString(call(C.GoString(contract), C.GoString(sender), C.GoString(data)))
}

//export tinyevm_call_with_snapshot
func tinyevm_call_with_snapshot(snapshot, contract, sender, data *C.char) *C.char {
	return C.CString(callWithSnapshot(C.GoString(snapshot), C.GoString(contract), C.GoString(sender), C.GoString(data)))
}

//export tinyevm_free
func tinyevm_free(str *C.char) {
	C.free(unsafe.Pointer(str))
}

func main() {}
