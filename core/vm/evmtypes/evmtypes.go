// Copyright 2021 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package evmtypes holds the two environment structs a stateless EVM
// executor is filled from: BlockEnv (the block context) and CfgEnv (the
// chain/config context). Field semantics beyond what fills them are the
// executor's concern, not this package's.
package evmtypes

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-lib/chain"
	"github.com/erigontech/erigon-lib/common"
)

// BlockEnv is the per-block execution context.
type BlockEnv struct {
	Number     uint64
	Timestamp  uint64
	GasLimit   uint64
	Coinbase   common.Address
	Difficulty *big.Int
	PrevRandao common.Hash // post-merge mix digest repurposed as randomness beacon
	BaseFee    *uint256.Int

	BlobExcessGas *uint64
	BlobGasUsed   *uint64
	BlobGasPrice  *uint256.Int // fake-exponential price over BlobExcessGas (EIP-4844), nil pre-Cancun

	// AfterMerge reports whether the filled block's spec id is at least
	// chain.MERGE; the executor uses this to decide whether Difficulty
	// carries real proof-of-work weight or is an inert legacy field.
	AfterMerge bool
}

// CfgEnv is the per-chain execution context.
type CfgEnv struct {
	ChainID *big.Int
	SpecID  chain.SpecId
}
