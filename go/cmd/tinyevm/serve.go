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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dsnet/golib/unitconv"
	"github.com/ethereum/go-ethereum/log"
	cliUtils "github.com/tinyevm/tinyevm/go/cmd/tinyevm/cli"
	"github.com/tinyevm/tinyevm/go/dispatch"
	"github.com/urfave/cli/v2"
)

var ServeCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doServe,
	Name:   "serve",
	Usage:  "Processes JSON requests read line by line from stdin against one shared ledger",
})

func doServe(context *cli.Context) error {
	service, release, err := newService(context)
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	stats, err := serve(service, context.App.Reader, context.App.Writer)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	rate := float64(stats.requests) / duration.Seconds()
	fmt.Fprintf(context.App.ErrWriter,
		"Processed %d requests (%d failed) in %v, ~%s requests per second\n",
		stats.requests, stats.failures, duration.Round(time.Millisecond),
		unitconv.FormatPrefix(rate, unitconv.SI, 1),
	)
	if cliUtils.MetricsFlag.Fetch(context) {
		printMetrics(context.App.ErrWriter)
	}
	return nil
}

// request is a single line of input of the serve command. Depending on the
// operation only a subset of the fields is used.
type request struct {
	Id       json.RawMessage `json:"id"`
	Op       string          `json:"op"`
	Code     string          `json:"code"`
	Owner    string          `json:"owner"`
	Salt     string          `json:"salt"`
	Contract string          `json:"contract"`
	Sender   string          `json:"sender"`
	Data     string          `json:"data"`
	Snapshot json.RawMessage `json:"snapshot"`
}

type response struct {
	Id     json.RawMessage `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type serveStats struct {
	requests int
	failures int
}

// maxRequestSize limits the length of a single request line.
const maxRequestSize = 64 << 20

func serve(service *dispatch.Service, in io.Reader, out io.Writer) (serveStats, error) {
	stats := serveStats{}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64<<10), maxRequestSize)
	writer := bufio.NewWriter(out)
	encoder := json.NewEncoder(writer)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		res := handle(service, line)
		stats.requests++
		if res.Error != "" {
			stats.failures++
		}
		if err := encoder.Encode(res); err != nil {
			return stats, err
		}
		if err := writer.Flush(); err != nil {
			return stats, err
		}
	}
	return stats, scanner.Err()
}

func handle(service *dispatch.Service, line []byte) response {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return response{Error: fmt.Sprintf("invalid request: %v", err)}
	}
	log.Debug("Handling request", "id", string(req.Id), "op", req.Op)

	result, err := dispatchRequest(service, &req)
	if err != nil {
		return response{Id: req.Id, Error: err.Error()}
	}
	return response{Id: req.Id, Result: result}
}

func dispatchRequest(service *dispatch.Service, req *request) (json.RawMessage, error) {
	switch req.Op {
	case "deploy":
		return quoted(service.DeployWithSalt(req.Code, req.Owner, req.Salt))
	case "deploy-snapshot":
		return quoted(service.DeployWithSnapshot(snapshotText(req.Snapshot), req.Code, req.Owner))
	case "call":
		return raw(service.Call(req.Contract, req.Sender, req.Data))
	case "call-snapshot":
		return raw(service.CallWithSnapshot(snapshotText(req.Snapshot), req.Contract, req.Sender, req.Data))
	case "snapshot":
		return raw(service.LedgerSnapshot())
	}
	return nil, fmt.Errorf("unknown operation %q", req.Op)
}

// snapshotText accepts snapshots embedded as JSON objects or as JSON strings.
func snapshotText(snapshot json.RawMessage) string {
	var text string
	if err := json.Unmarshal(snapshot, &text); err == nil {
		return text
	}
	return string(snapshot)
}

func quoted(text string, err error) (json.RawMessage, error) {
	if err != nil {
		return nil, err
	}
	return json.Marshal(text)
}

func raw(text string, err error) (json.RawMessage, error) {
	if err != nil {
		return nil, err
	}
	return json.RawMessage(text), nil
}
