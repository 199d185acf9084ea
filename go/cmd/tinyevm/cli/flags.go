// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cliUtils

import (
	"fmt"
	"os"
	"runtime/pprof"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/tinyevm/tinyevm/go/executor"
	"github.com/tinyevm/tinyevm/go/tinyevm"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
)

// --- global flags ---

type revisionFlagType struct {
	cli.StringFlag
}

var RevisionFlag = &revisionFlagType{
	cli.StringFlag{
		Name:  "revision",
		Usage: "EVM revision used for all transactions",
		Value: tinyevm.R07_Istanbul.String(),
	},
}

func (f *revisionFlagType) Fetch(context *cli.Context) (tinyevm.Revision, error) {
	return tinyevm.ParseRevision(context.String(f.Name))
}

type gasLimitFlagType struct {
	cli.Int64Flag
}

var GasLimitFlag = &gasLimitFlagType{
	cli.Int64Flag{
		Name:  "gas-limit",
		Usage: "gas made available to each transaction",
		Value: int64(executor.DefaultGasLimit),
	},
}

func (f *gasLimitFlagType) Fetch(context *cli.Context) (tinyevm.Gas, error) {
	limit := context.Int64(f.Name)
	if limit <= 0 {
		return 0, fmt.Errorf("invalid gas limit %d, must be positive", limit)
	}
	return tinyevm.Gas(limit), nil
}

type processorFlagType struct {
	cli.StringFlag
}

var ProcessorFlag = &processorFlagType{
	cli.StringFlag{
		Name:  "processor",
		Usage: "name of the registered processor running transactions",
		Value: executor.DefaultProcessor,
	},
}

func (f *processorFlagType) Fetch(context *cli.Context) (string, error) {
	name := strings.ToLower(context.String(f.Name))
	available := maps.Keys(tinyevm.GetAllRegisteredProcessorFactories())
	if !slices.Contains(available, name) {
		slices.Sort(available)
		return "", fmt.Errorf("unknown processor %q, available: %s", name, strings.Join(available, ", "))
	}
	return name, nil
}

type verbosityFlagType struct {
	cli.IntFlag
}

var VerbosityFlag = &verbosityFlagType{
	cli.IntFlag{
		Name:  "verbosity",
		Usage: "log level: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 2,
	},
}

func (f *verbosityFlagType) Fetch(context *cli.Context) int {
	return context.Int(f.Name)
}

type metricsFlagType struct {
	cli.BoolFlag
}

// MetricsFlag enables metrics collection. go-ethereum's metrics package
// scans the command line for this flag when it is initialized.
var MetricsFlag = &metricsFlagType{
	cli.BoolFlag{
		Name:  "metrics",
		Usage: "collect execution metrics and print them on exit",
	},
}

func (f *metricsFlagType) Fetch(context *cli.Context) bool {
	return context.Bool(f.Name) && metrics.Enabled
}

var GlobalFlags = []cli.Flag{
	RevisionFlag,
	GasLimitFlag,
	ProcessorFlag,
	VerbosityFlag,
	MetricsFlag,
}

// FetchConfig assembles the executor configuration from the global flags.
func FetchConfig(context *cli.Context) (executor.Config, error) {
	config := executor.DefaultConfig()
	revision, err := RevisionFlag.Fetch(context)
	if err != nil {
		return config, err
	}
	gasLimit, err := GasLimitFlag.Fetch(context)
	if err != nil {
		return config, err
	}
	processor, err := ProcessorFlag.Fetch(context)
	if err != nil {
		return config, err
	}
	config.Revision = revision
	config.GasLimit = gasLimit
	config.Processor = processor
	return config, nil
}

// SetupLogging installs a terminal log handler printing to stderr with the
// level selected by the verbosity flag.
func SetupLogging(context *cli.Context) {
	verbosity := VerbosityFlag.Fetch(context)
	if verbosity <= 0 {
		log.SetDefault(log.NewLogger(log.DiscardHandler()))
		return
	}
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(verbosity), false)
	log.SetDefault(log.NewLogger(handler))
}

// --- command flags ---

type addressFlagType struct {
	cli.StringFlag
}

func (f *addressFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

var OwnerFlag = &addressFlagType{
	cli.StringFlag{
		Name:  "owner",
		Usage: "address of the account deploying the contract",
		Value: "0xf000000000000000000000000000000000000000",
	},
}

var ContractFlag = &addressFlagType{
	cli.StringFlag{
		Name:     "contract",
		Usage:    "address of the called contract",
		Required: true,
	},
}

var SenderFlag = &addressFlagType{
	cli.StringFlag{
		Name:  "sender",
		Usage: "address of the account sending the call",
		Value: "0xf000000000000000000000000000000000000000",
	},
}

type hexFlagType struct {
	cli.StringFlag
}

func (f *hexFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

var CodeFlag = &hexFlagType{
	cli.StringFlag{
		Name:     "code",
		Usage:    "hex encoded init code of the contract",
		Required: true,
	},
}

var SaltFlag = &hexFlagType{
	cli.StringFlag{
		Name:  "salt",
		Usage: "hex encoded salt for the CREATE2 address derivation",
	},
}

var DataFlag = &hexFlagType{
	cli.StringFlag{
		Name:  "data",
		Usage: "hex encoded call data",
	},
}

type snapshotFlagType struct {
	cli.StringFlag
}

var SnapshotFlag = &snapshotFlagType{
	cli.StringFlag{
		Name:      "snapshot",
		Usage:     "JSON file containing the ledger to run on",
		TakesFile: true,
		Required:  true,
	},
}

// Fetch reads the content of the snapshot file.
func (f *snapshotFlagType) Fetch(context *cli.Context) (string, error) {
	data, err := os.ReadFile(context.String(f.Name))
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot: %w", err)
	}
	return string(data), nil
}

// --- common flags ---

var commonFlags = []cli.Flag{
	cpuProfileFlag,
}

var cpuProfileFlag = &cli.StringFlag{
	Name:      "cpuprofile",
	Usage:     "store CPU profile in the provided filename",
	TakesFile: true,
}

// AddCommonFlags adds the flags shared by all commands and wraps the action
// of the command such that logging and profiling are set up before it runs.
func AddCommonFlags(command cli.Command) cli.Command {
	command.Flags = append(command.Flags, commonFlags...)

	action := command.Action
	command.Action = func(ctx *cli.Context) (err error) {
		SetupLogging(ctx)

		if cpuprofileFilename := ctx.String(cpuProfileFlag.Name); cpuprofileFilename != "" {
			f, err := os.Create(cpuprofileFilename)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		return action(ctx)
	}
	return command
}
