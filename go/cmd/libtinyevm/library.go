// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"encoding/json"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tinyevm/tinyevm/go/dispatch"
	"github.com/tinyevm/tinyevm/go/executor"
)

// getService provides the service shared by all calls into the library. It
// is created on first use and lives as long as the process.
var getService = sync.OnceValues(func() (*dispatch.Service, error) {
	config := executor.DefaultConfig()
	shared, err := executor.NewShared(config)
	if err != nil {
		return nil, err
	}
	log.Info("Initialized shared ledger", "revision", config.Revision)
	return dispatch.NewService(shared, config), nil
})

type envelope struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func deploy(code, owner string) string {
	return withService(func(service *dispatch.Service) (json.RawMessage, error) {
		address, err := service.Deploy(code, owner)
		if err != nil {
			return nil, err
		}
		return json.Marshal(address)
	})
}

func call(contract, sender, data string) string {
	return withService(func(service *dispatch.Service) (json.RawMessage, error) {
		outcome, err := service.Call(contract, sender, data)
		return json.RawMessage(outcome), err
	})
}

func callWithSnapshot(snapshot, contract, sender, data string) string {
	return withService(func(service *dispatch.Service) (json.RawMessage, error) {
		outcome, err := service.CallWithSnapshot(snapshot, contract, sender, data)
		return json.RawMessage(outcome), err
	})
}

func withService(operation func(*dispatch.Service) (json.RawMessage, error)) string {
	service, err := getService()
	if err != nil {
		return encode(nil, err)
	}
	return encode(operation(service))
}

func encode(result json.RawMessage, err error) string {
	res := envelope{Result: result}
	if err != nil {
		res = envelope{Error: err.Error()}
	}
	encoded, err := json.Marshal(res)
	if err != nil {
		// Only reachable if the result is not valid JSON.
		encoded, _ = json.Marshal(envelope{Error: err.Error()})
	}
	return string(encoded)
}
