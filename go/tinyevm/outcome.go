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

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Status classifies how the execution of a transaction ended. The set of
// statuses is closed; every interpreter result maps to exactly one of them.
type Status byte

const (
	// Succeeded is reported if the execution ended with STOP, RETURN or
	// SELFDESTRUCT.
	Succeeded Status = iota
	// Reverted is reported if the execution ended with REVERT. All state
	// changes of the transaction are undone, the return data is kept.
	Reverted
	// Failed is reported if the execution ended in an exceptional halt like
	// running out of gas, an invalid jump or a stack violation.
	Failed
	// Trapped is reported if the interpreter itself aborted the execution
	// for reasons not covered by the EVM semantics.
	Trapped
	numStatuses int = iota
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "Succeeded"
	case Reverted:
		return "Reverted"
	case Failed:
		return "Failed"
	case Trapped:
		return "Trapped"
	}
	return fmt.Sprintf("Status(%d)", s)
}

func (s Status) MarshalText() ([]byte, error) {
	if int(s) >= numStatuses {
		return nil, fmt.Errorf("invalid status: %v", s)
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(data []byte) error {
	for i := 0; i < numStatuses; i++ {
		if Status(i).String() == string(data) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status: %q", data)
}

// Outcome is the externally visible result of an invocation.
type Outcome struct {
	Status     Status
	ReturnData Data
}

type outcomeJSON struct {
	Status     Status        `json:"status"`
	ReturnData hexutil.Bytes `json:"returnData"`
}

// MarshalJSON produces {"status": <name>, "returnData": <0x-hex>}. The return
// data is encoded byte by byte; it is never interpreted.
func (o Outcome) MarshalJSON() ([]byte, error) {
	data := o.ReturnData
	if data == nil {
		data = Data{}
	}
	return json.Marshal(outcomeJSON{
		Status:     o.Status,
		ReturnData: hexutil.Bytes(data),
	})
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var decoded outcomeJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	o.Status = decoded.Status
	o.ReturnData = Data(decoded.ReturnData)
	return nil
}
