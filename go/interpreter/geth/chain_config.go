// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package geth

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	geth "github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
	"github.com/tinyevm/tinyevm/go/tinyevm"
)

// newestSupportedRevision defines the newest revision supported by this processor.
const newestSupportedRevision = tinyevm.R13_Cancun

// MakeChainConfig returns a chain config for the given chain ID in which all
// forks up to, and including, the target revision are active from genesis
// on. Later forks are disabled.
func MakeChainConfig(chainId *big.Int, targetRevision tinyevm.Revision) *params.ChainConfig {
	zero := big.NewInt(0)
	chainConfig := &params.ChainConfig{
		ChainID:             chainId,
		HomesteadBlock:      zero,
		EIP150Block:         zero,
		EIP155Block:         zero,
		EIP158Block:         zero,
		ByzantiumBlock:      zero,
		ConstantinopleBlock: zero,
		PetersburgBlock:     zero,
		IstanbulBlock:       zero,
		MuirGlacierBlock:    zero,
		Ethash:              new(params.EthashConfig),
	}

	if targetRevision >= tinyevm.R09_Berlin {
		chainConfig.BerlinBlock = zero
	}
	if targetRevision >= tinyevm.R10_London {
		chainConfig.LondonBlock = zero
		chainConfig.ArrowGlacierBlock = zero
		chainConfig.GrayGlacierBlock = zero
	}
	if targetRevision >= tinyevm.R11_Paris {
		chainConfig.MergeNetsplitBlock = zero
		chainConfig.TerminalTotalDifficulty = zero
	}
	if targetRevision >= tinyevm.R12_Shanghai {
		shanghaiTime := uint64(0)
		chainConfig.ShanghaiTime = &shanghaiTime
	}
	if targetRevision >= tinyevm.R13_Cancun {
		cancunTime := uint64(0)
		chainConfig.CancunTime = &cancunTime
	}
	return chainConfig
}

// makeBlockContext derives the geth block context from the block parameters.
func makeBlockContext(blockParams tinyevm.BlockParameters) geth.BlockContext {
	// Hashing function used in the context for BLOCKHASH instruction. The
	// ledger keeps no history, so all block hashes are zero.
	getHash := func(uint64) common.Hash {
		return common.Hash{}
	}

	blockCtx := geth.BlockContext{
		CanTransfer: canTransferFunc,
		Transfer:    transferFunc,
		GetHash:     getHash,
		Coinbase:    common.Address(blockParams.Coinbase),
		GasLimit:    uint64(blockParams.GasLimit),
		BlockNumber: big.NewInt(blockParams.BlockNumber),
		Time:        uint64(blockParams.Timestamp),
		Difficulty:  new(big.Int).SetBytes(blockParams.PrevRandao[:]),
		BaseFee:     blockParams.BaseFee.ToBig(),
		BlobBaseFee: blockParams.BlobBaseFee.ToBig(),
	}

	if blockParams.Revision >= tinyevm.R11_Paris {
		// Setting the random signals to geth that a post-merge (Paris) revision should be utilized.
		hash := common.Hash(blockParams.PrevRandao)
		blockCtx.Random = &hash
	}
	return blockCtx
}

// makeRules computes the fork rules in effect for the given block context.
func makeRules(chainConfig *params.ChainConfig, blockCtx geth.BlockContext) params.Rules {
	return chainConfig.Rules(blockCtx.BlockNumber, blockCtx.Random != nil, blockCtx.Time)
}
