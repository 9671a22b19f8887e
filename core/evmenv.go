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

// Package core wires the EVM environment filler on top of the chain
// provider facade: six symmetric operations -
// {FillEnv, FillBlockEnv, FillCfgEnv} x {At, WithHeader} - populating the
// block-env and cfg-env structs a stateless executor replays a
// transaction with.
package core

import (
	"context"
	"math/big"

	"github.com/erigontech/erigon-lib/chain"
	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/erigontech/chaindata/consensus/misc"
	"github.com/erigontech/chaindata/core/provider"
	"github.com/erigontech/chaindata/core/types"
	"github.com/erigontech/chaindata/core/vm/evmtypes"
)

var envLog = log.New("component", "evm-env")

// FillBlockEnvWithHeader populates a BlockEnv from an already-resolved
// header. The header's total difficulty is fetched from HeaderTD and its
// absence is a hard HeaderNotFoundError: fork resolution cannot proceed
// without it.
func FillBlockEnvWithHeader(ctx context.Context, p *provider.Provider, header *types.Header) (*evmtypes.BlockEnv, error) {
	td, err := headerTD(ctx, p, header)
	if err != nil {
		return nil, err
	}
	return blockEnv(p.ChainConfig(), header, td), nil
}

// FillCfgEnvWithHeader populates a CfgEnv from an already-resolved
// header, with the same hard-fail HeaderTD fetch as
// FillBlockEnvWithHeader.
func FillCfgEnvWithHeader(ctx context.Context, p *provider.Provider, header *types.Header) (*evmtypes.CfgEnv, error) {
	td, err := headerTD(ctx, p, header)
	if err != nil {
		return nil, err
	}
	return cfgEnv(p.ChainConfig(), header, td), nil
}

// FillEnvWithHeader populates both structs off a single HeaderTD fetch.
func FillEnvWithHeader(ctx context.Context, p *provider.Provider, header *types.Header) (*evmtypes.BlockEnv, *evmtypes.CfgEnv, error) {
	td, err := headerTD(ctx, p, header)
	if err != nil {
		return nil, nil, err
	}
	cfg := p.ChainConfig()
	return blockEnv(cfg, header, td), cfgEnv(cfg, header, td), nil
}

// FillBlockEnvAt resolves block_id -> canonical hash -> header and
// delegates to FillBlockEnvWithHeader.
func FillBlockEnvAt(ctx context.Context, p *provider.Provider, ref common.BlockHashOrNumber) (*evmtypes.BlockEnv, error) {
	sh, err := p.SealedHeaderFor(ctx, ref)
	if err != nil {
		return nil, err
	}
	return FillBlockEnvWithHeader(ctx, p, sh.Header)
}

// FillCfgEnvAt resolves block_id -> canonical hash -> header and
// delegates to FillCfgEnvWithHeader.
func FillCfgEnvAt(ctx context.Context, p *provider.Provider, ref common.BlockHashOrNumber) (*evmtypes.CfgEnv, error) {
	sh, err := p.SealedHeaderFor(ctx, ref)
	if err != nil {
		return nil, err
	}
	return FillCfgEnvWithHeader(ctx, p, sh.Header)
}

// FillEnvAt resolves block_id -> canonical hash -> header and delegates
// to FillEnvWithHeader.
func FillEnvAt(ctx context.Context, p *provider.Provider, ref common.BlockHashOrNumber) (*evmtypes.BlockEnv, *evmtypes.CfgEnv, error) {
	sh, err := p.SealedHeaderFor(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	return FillEnvWithHeader(ctx, p, sh.Header)
}

// headerTD fetches HeaderTD[header.Number], hard-erroring via
// Provider.TotalDifficultyFor when the row is absent. A nil inner value
// never reaches the fillers: absence is an error, not a zero.
func headerTD(ctx context.Context, p *provider.Provider, header *types.Header) (*big.Int, error) {
	td, err := p.TotalDifficultyFor(ctx, common.AsNumber(header.Number))
	if err != nil {
		return nil, err
	}
	var out *big.Int
	if td != nil && td.Int != nil {
		out = td.Int.ToBig()
	}
	return out, nil
}

func blockEnv(chainConfig *chain.Config, header *types.Header, td *big.Int) *evmtypes.BlockEnv {
	specID := forkFor(chainConfig, header, td)
	envLog.Trace("filling block env", "number", header.Number, "spec", specID)
	env := &evmtypes.BlockEnv{
		Number:        header.Number,
		Timestamp:     header.Time,
		GasLimit:      header.GasLimit,
		Coinbase:      header.Coinbase,
		Difficulty:    header.Difficulty,
		PrevRandao:    header.MixDigest,
		BaseFee:       header.BaseFeePerGas,
		BlobExcessGas: header.ExcessBlobGas,
		BlobGasUsed:   header.BlobGasUsed,
		AfterMerge:    specID >= chain.MERGE,
	}
	if header.ExcessBlobGas != nil {
		if price, err := misc.GetBlobGasPrice(chainConfig, *header.ExcessBlobGas, header.Time); err == nil {
			env.BlobGasPrice = price
		}
	}
	return env
}

func cfgEnv(chainConfig *chain.Config, header *types.Header, td *big.Int) *evmtypes.CfgEnv {
	specID := forkFor(chainConfig, header, td)
	envLog.Trace("filling cfg env", "number", header.Number, "spec", specID)
	return &evmtypes.CfgEnv{
		ChainID: chainConfig.ChainID,
		SpecID:  specID,
	}
}

func forkFor(chainConfig *chain.Config, header *types.Header, td *big.Int) chain.SpecId {
	return chainConfig.ForkFor(chain.Head{
		Number:          header.Number,
		Timestamp:       header.Time,
		Difficulty:      header.Difficulty,
		TotalDifficulty: td,
	})
}
