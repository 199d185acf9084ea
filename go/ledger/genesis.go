// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ledger

import "github.com/tinyevm/tinyevm/go/tinyevm"

// Owner is the single funded account of the genesis ledger.
var Owner = tinyevm.Address{0xf0}

// GenesisBalance is the balance of the Owner in the genesis ledger.
const GenesisBalance = 1_000_000_000_000

// Genesis returns the initial content of a shared ledger: the Owner with
// GenesisBalance and nothing else. Every call returns an independent copy.
func Genesis() Accounts {
	return Accounts{
		Owner: Account{Balance: tinyevm.NewValue(GenesisBalance)},
	}
}
