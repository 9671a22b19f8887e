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

package core

import (
	"context"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-lib/chain"
	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/kv/memdb"
	"github.com/erigontech/erigon-lib/rlp"

	"github.com/erigontech/chaindata/core/provider"
	"github.com/erigontech/chaindata/core/rawdb"
	"github.com/erigontech/chaindata/core/types"
	"github.com/erigontech/chaindata/internal/chainfixture"
)

func testHeader(number, timestamp uint64) *types.Header {
	return &types.Header{
		Number:     number,
		Time:       timestamp,
		GasLimit:   30_000_000,
		Difficulty: big.NewInt(131072),
	}
}

// testProvider builds a provider over a store holding only the given
// HeaderTD rows: exactly what the WithHeader fillers read.
func testProvider(t *testing.T, cfg *chain.Config, tds map[uint64]*uint256.Int) *provider.Provider {
	t.Helper()
	db := memdb.New()
	t.Cleanup(db.Close)
	err := db.Update(context.Background(), func(tx kv.RwTx) error {
		for n, td := range tds {
			if err := tx.Put(kv.HeaderTD, kv.EncodeNumber(n), rlp.Encode(&types.TotalDifficulty{Int: td})); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return provider.New(db, cfg)
}

func TestFillBlockEnvWithHeader_PreMergeKeepsDifficulty(t *testing.T) {
	p := testProvider(t, &chain.Config{ChainID: big.NewInt(1)}, map[uint64]*uint256.Int{5: uint256.NewInt(1)})
	h := testHeader(5, 0)
	env, err := FillBlockEnvWithHeader(context.Background(), p, h)
	require.NoError(t, err)
	require.False(t, env.AfterMerge)
	require.Equal(t, h.Difficulty, env.Difficulty)
	require.Equal(t, h.GasLimit, env.GasLimit)
}

func TestFillBlockEnvWithHeader_AfterMergeViaTTD(t *testing.T) {
	cfg := &chain.Config{ChainID: big.NewInt(1), TerminalTotalDifficulty: big.NewInt(100)}
	p := testProvider(t, cfg, map[uint64]*uint256.Int{5: uint256.NewInt(200)})
	env, err := FillBlockEnvWithHeader(context.Background(), p, testHeader(5, 0))
	require.NoError(t, err)
	require.True(t, env.AfterMerge)
}

func TestFillBlockEnvWithHeader_CancunHeaderGetsBlobGasPrice(t *testing.T) {
	ct := uint64(0)
	cfg := &chain.Config{ChainID: big.NewInt(1), CancunTime: &ct}
	p := testProvider(t, cfg, map[uint64]*uint256.Int{5: uint256.NewInt(1)})
	h := testHeader(5, 0)
	excess := uint64(0)
	h.ExcessBlobGas = &excess
	env, err := FillBlockEnvWithHeader(context.Background(), p, h)
	require.NoError(t, err)
	require.NotNil(t, env.BlobGasPrice)
	require.Equal(t, uint64(1), env.BlobGasPrice.Uint64())
}

func TestFillBlockEnvWithHeader_PreCancunHasNoBlobGasPrice(t *testing.T) {
	p := testProvider(t, &chain.Config{ChainID: big.NewInt(1)}, map[uint64]*uint256.Int{5: uint256.NewInt(1)})
	env, err := FillBlockEnvWithHeader(context.Background(), p, testHeader(5, 0))
	require.NoError(t, err)
	require.Nil(t, env.BlobGasPrice)
}

// The WithHeader fillers themselves fetch HeaderTD and must hard-error
// when the row is absent, even for a perfectly well-formed header.
func TestFillBlockEnvWithHeader_MissingTDIsHardError(t *testing.T) {
	p := testProvider(t, &chain.Config{ChainID: big.NewInt(1)}, nil)
	_, err := FillBlockEnvWithHeader(context.Background(), p, testHeader(5, 0))
	require.Error(t, err)
	var target *rawdb.HeaderNotFoundError
	require.ErrorAs(t, err, &target)
}

func TestFillCfgEnvWithHeader_MissingTDIsHardError(t *testing.T) {
	p := testProvider(t, &chain.Config{ChainID: big.NewInt(1)}, nil)
	_, err := FillCfgEnvWithHeader(context.Background(), p, testHeader(5, 0))
	require.Error(t, err)
	var target *rawdb.HeaderNotFoundError
	require.ErrorAs(t, err, &target)
}

func TestFillEnvWithHeader_MissingTDIsHardError(t *testing.T) {
	p := testProvider(t, &chain.Config{ChainID: big.NewInt(1)}, nil)
	_, _, err := FillEnvWithHeader(context.Background(), p, testHeader(5, 0))
	require.Error(t, err)
	var target *rawdb.HeaderNotFoundError
	require.ErrorAs(t, err, &target)
}

func TestFillCfgEnvWithHeader_ResolvesShanghai(t *testing.T) {
	st := uint64(1000)
	cfg := &chain.Config{ChainID: big.NewInt(1), ShanghaiTime: &st}
	p := testProvider(t, cfg, map[uint64]*uint256.Int{5: uint256.NewInt(1)})
	cfgEnv, err := FillCfgEnvWithHeader(context.Background(), p, testHeader(5, 2000))
	require.NoError(t, err)
	require.Equal(t, chain.Shanghai, cfgEnv.SpecID)
	require.Equal(t, cfg.ChainID, cfgEnv.ChainID)
}

func TestFillEnvAt_ResolvesViaProvider(t *testing.T) {
	db, hashes, err := chainfixture.Build()
	require.NoError(t, err)
	defer db.Close()
	p := provider.New(db, chainfixture.Config())

	blockEnv, cfgEnv, err := FillEnvAt(context.Background(), p, common.AsHash(hashes.Block1Hash))
	require.NoError(t, err)
	require.Equal(t, uint64(1), blockEnv.Number)
	require.Equal(t, chain.Frontier, cfgEnv.SpecID)
}

func TestFillEnvAt_PostShanghaiBlockResolvesShanghaiSpec(t *testing.T) {
	db, hashes, err := chainfixture.Build()
	require.NoError(t, err)
	defer db.Close()
	p := provider.New(db, chainfixture.Config())

	_, cfgEnv, err := FillEnvAt(context.Background(), p, common.AsHash(hashes.Block2Hash))
	require.NoError(t, err)
	require.Equal(t, chain.Shanghai, cfgEnv.SpecID)
}

func TestFillEnvAt_UnknownBlockIsHardError(t *testing.T) {
	db, _, err := chainfixture.Build()
	require.NoError(t, err)
	defer db.Close()
	p := provider.New(db, chainfixture.Config())

	_, _, err = FillEnvAt(context.Background(), p, common.AsNumber(999))
	require.Error(t, err)
}

func TestFillEnvAt_MissingTotalDifficultyIsHardError(t *testing.T) {
	db, _, err := chainfixture.Build()
	require.NoError(t, err)
	defer db.Close()
	p := provider.New(db, chainfixture.Config())

	// the fixture deliberately stores no HeaderTD row for genesis
	_, _, err = FillEnvAt(context.Background(), p, common.AsNumber(0))
	require.Error(t, err)
	var target *rawdb.HeaderNotFoundError
	require.ErrorAs(t, err, &target)
}

func TestFillBlockEnvAt_MissingTotalDifficultyIsHardError(t *testing.T) {
	db, _, err := chainfixture.Build()
	require.NoError(t, err)
	defer db.Close()
	p := provider.New(db, chainfixture.Config())

	_, err = FillBlockEnvAt(context.Background(), p, common.AsNumber(0))
	require.Error(t, err)
	var target *rawdb.HeaderNotFoundError
	require.ErrorAs(t, err, &target)
}

func TestFillCfgEnvAt_MissingTotalDifficultyIsHardError(t *testing.T) {
	db, _, err := chainfixture.Build()
	require.NoError(t, err)
	defer db.Close()
	p := provider.New(db, chainfixture.Config())

	_, err = FillCfgEnvAt(context.Background(), p, common.AsNumber(0))
	require.Error(t, err)
	var target *rawdb.HeaderNotFoundError
	require.ErrorAs(t, err, &target)
}
