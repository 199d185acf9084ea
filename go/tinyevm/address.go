// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package tinyevm

import "golang.org/x/crypto/sha3"

// Keccak256 computes the legacy Keccak-256 hash of the concatenated inputs.
func Keccak256(data ...[]byte) Hash {
	res := Hash{}
	hasher := sha3.NewLegacyKeccak256()
	for _, cur := range data {
		hasher.Write(cur)
	}
	hasher.Sum(res[0:0])
	return res
}

// CreateAddress2 derives the address of a contract deployed with the CREATE2
// scheme (EIP-1014):
//
//	keccak256(0xff ++ creator ++ salt ++ keccak256(initCode))[12:]
//
// The result only depends on its arguments, in particular not on the nonce
// of the creator.
func CreateAddress2(creator Address, salt Hash, initCode Code) Address {
	return CreateAddress2FromHash(creator, salt, Keccak256(initCode))
}

// CreateAddress2FromHash is like CreateAddress2 for callers knowing the hash
// of the init code already.
func CreateAddress2FromHash(creator Address, salt Hash, initCodeHash Hash) Address {
	hash := Keccak256([]byte{0xff}, creator[:], salt[:], initCodeHash[:])
	var res Address
	copy(res[:], hash[12:])
	return res
}
