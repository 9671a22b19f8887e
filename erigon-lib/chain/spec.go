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

// Package chain holds the chain specification: fork activation rules and
// the handful of per-fork constants (blob gas pricing, Shanghai cutover)
// that the provider's EVM environment filler and block-body reader need.
// Parsing chain specs from genesis JSON/CLI flags happens elsewhere;
// only the already-resolved Config value is consumed here.
package chain

import (
	"math/big"

	"github.com/erigontech/erigon-lib/common"
)

// SpecId is a totally-ordered enumeration of EVM hard forks. Ordering
// matters: fork activation is expressed as "chain is at least SpecId X",
// and the Merge marker is used by the EVM environment filler to decide
// whether a header's PoW fields (difficulty, mix digest) are live or
// inert.
type SpecId int

const (
	Frontier SpecId = iota
	Homestead
	Byzantium
	Constantinople
	Istanbul
	MUIRGLACIER
	Berlin
	London
	MERGE
	Shanghai
	Cancun
	Prague
)

func (s SpecId) String() string {
	names := [...]string{
		"Frontier", "Homestead", "Byzantium", "Constantinople", "Istanbul",
		"MuirGlacier", "Berlin", "London", "Merge", "Shanghai", "Cancun", "Prague",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// Head is the minimal header projection fork-resolution needs.
type Head struct {
	Number          uint64
	Timestamp       uint64
	Difficulty      *big.Int
	TotalDifficulty *big.Int
	Hash            common.Hash
}

// Default EIP-4844/7691 blob-gas constants (mainnet values); a chain
// wishing to diverge overrides them on its Config.
const (
	DefaultTargetBlobGasPerBlock      = 3 * 131072
	DefaultMinBlobGasPrice            = 1
	DefaultBlobGasPriceUpdateFraction = 3338477
)

// Config is the resolved, immutable chain specification shared by every
// clone of the provider facade.
type Config struct {
	ChainID *big.Int

	HomesteadBlock      *big.Int
	ByzantiumBlock      *big.Int
	ConstantinopleBlock *big.Int
	IstanbulBlock       *big.Int
	BerlinBlock         *big.Int
	LondonBlock         *big.Int

	TerminalTotalDifficulty *big.Int

	ShanghaiTime *uint64
	CancunTime   *uint64
	PragueTime   *uint64

	TargetBlobGasPerBlock      uint64
	MinBlobGasPrice            uint64
	BlobGasPriceUpdateFraction uint64
}

// IsShanghaiActivatedAtTimestamp is the fork-era switch: ommers and
// withdrawals are mutually exclusive per block, selected entirely by
// this predicate.
func (c *Config) IsShanghaiActivatedAtTimestamp(time uint64) bool {
	return c.ShanghaiTime != nil && time >= *c.ShanghaiTime
}

func (c *Config) IsCancunActivatedAtTimestamp(time uint64) bool {
	return c.CancunTime != nil && time >= *c.CancunTime
}

func (c *Config) GetTargetBlobGasPerBlock(_ uint64) uint64 {
	if c.TargetBlobGasPerBlock != 0 {
		return c.TargetBlobGasPerBlock
	}
	return DefaultTargetBlobGasPerBlock
}

func (c *Config) GetMinBlobGasPrice() uint64 {
	if c.MinBlobGasPrice != 0 {
		return c.MinBlobGasPrice
	}
	return DefaultMinBlobGasPrice
}

func (c *Config) GetBlobGasPriceUpdateFraction(_ uint64) uint64 {
	if c.BlobGasPriceUpdateFraction != 0 {
		return c.BlobGasPriceUpdateFraction
	}
	return DefaultBlobGasPriceUpdateFraction
}

// ForkFor resolves the SpecId active at head, walking fork boundaries
// from latest to earliest: block number gates pre-Merge forks,
// timestamp gates post-Merge forks, and
// total difficulty (when a TTD is configured) decides the Merge boundary
// itself for a chain still transitioning.
func (c *Config) ForkFor(head Head) SpecId {
	if c.PragueTime != nil && head.Timestamp >= *c.PragueTime {
		return Prague
	}
	if c.CancunTime != nil && head.Timestamp >= *c.CancunTime {
		return Cancun
	}
	if c.ShanghaiTime != nil && head.Timestamp >= *c.ShanghaiTime {
		return Shanghai
	}
	if c.isMerged(head) {
		return MERGE
	}
	switch {
	case ge(c.LondonBlock, head.Number):
		return London
	case ge(c.BerlinBlock, head.Number):
		return Berlin
	case ge(c.IstanbulBlock, head.Number):
		return Istanbul
	case ge(c.ConstantinopleBlock, head.Number):
		return Constantinople
	case ge(c.ByzantiumBlock, head.Number):
		return Byzantium
	case ge(c.HomesteadBlock, head.Number):
		return Homestead
	default:
		return Frontier
	}
}

func (c *Config) isMerged(head Head) bool {
	if c.TerminalTotalDifficulty == nil {
		return false
	}
	return head.TotalDifficulty != nil && head.TotalDifficulty.Cmp(c.TerminalTotalDifficulty) >= 0
}

// ge reports whether a configured fork-activation block (nil meaning
// "never activated") has been reached by number.
func ge(forkBlock *big.Int, number uint64) bool {
	return forkBlock != nil && number >= forkBlock.Uint64()
}
