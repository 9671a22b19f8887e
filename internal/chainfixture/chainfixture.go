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

// Package chainfixture builds small populated databases the provider,
// state and rawdb test suites share: a genesis, a pre-Shanghai block
// with one transaction, and a post-Shanghai block with an empty
// withdrawal list.
package chainfixture

import (
	"context"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-lib/chain"
	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/kv/memdb"
	"github.com/erigontech/erigon-lib/rlp"

	"github.com/erigontech/chaindata/core/types"
)

// ShanghaiTime is the fixture chain's Shanghai activation timestamp.
const ShanghaiTime = uint64(1000)

// Config is the fixture chain spec: Shanghai activates at ShanghaiTime.
// No block-numbered fork and no terminal total difficulty is configured,
// so every pre-Shanghai block resolves to Frontier.
func Config() *chain.Config {
	st := ShanghaiTime
	return &chain.Config{
		ChainID:      big.NewInt(1),
		ShanghaiTime: &st,
	}
}

// Hashes reports the identities the fixture built, so tests can look
// blocks and transactions up without recomputing RLP hashes.
type Hashes struct {
	Block1Hash common.Hash
	Block2Hash common.Hash
	Tx1Hash    common.Hash
}

// Build populates a fresh in-memory database via BuildIn.
func Build() (kv.RwDB, Hashes, error) {
	db := memdb.New()
	hashes, err := BuildIn(db)
	return db, hashes, err
}

// BuildIn populates db - any kv.RwDB engine - with:
//
//	block 0: genesis, timestamp 0, empty body, no HeaderTD row.
//	block 1: pre-Shanghai (timestamp 0), one transaction, no withdrawals.
//	block 2: post-Shanghai (timestamp 2000), empty withdrawal list.
//
// best-block-number and the last canonical header both agree at 2.
func BuildIn(db kv.RwDB) (Hashes, error) {
	var hashes Hashes
	b := &builder{}

	err := db.Update(context.Background(), func(tx kv.RwTx) error {
		genesis := &types.Header{
			Difficulty: big.NewInt(0),
			Number:     0,
			GasLimit:   30_000_000,
			Time:       0,
		}
		if err := b.putBlock(tx, genesis, nil, nil, nil); err != nil {
			return err
		}
		// genesis deliberately has no HeaderTD row, so it doubles as the
		// missing-total-difficulty fixture for hard-error tests.

		tx1 := &types.Transaction{
			Type:     types.LegacyTxType,
			Nonce:    0,
			GasPrice: uint256.NewInt(1),
			Gas:      21000,
			Value:    uint256.NewInt(0),
			V:        uint256.NewInt(27),
			R:        uint256.NewInt(1),
			S:        uint256.NewInt(1),
		}
		block1 := &types.Header{
			ParentHash: genesis.Hash(),
			Difficulty: big.NewInt(0),
			Number:     1,
			GasLimit:   30_000_000,
			Time:       0,
		}
		if err := b.putBlock(tx, block1, []*types.Transaction{tx1}, nil, nil); err != nil {
			return err
		}
		hashes.Block1Hash = block1.Hash()
		hashes.Tx1Hash = tx1.Hash()
		if err := putHeaderTD(tx, block1.Number, uint256.NewInt(1)); err != nil {
			return err
		}

		block2 := &types.Header{
			ParentHash: block1.Hash(),
			Difficulty: big.NewInt(0),
			Number:     2,
			GasLimit:   30_000_000,
			Time:       2000,
		}
		if err := b.putBlock(tx, block2, nil, nil, []*types.Withdrawal{}); err != nil {
			return err
		}
		hashes.Block2Hash = block2.Hash()
		if err := putHeaderTD(tx, block2.Number, uint256.NewInt(2)); err != nil {
			return err
		}

		return tx.Put(kv.SyncStageProgress, []byte(kv.FinishStage), kv.EncodeNumber(2))
	})
	return hashes, err
}

// builder threads the dense global transaction-number counter across
// putBlock calls within a single Build invocation.
type builder struct {
	txCounter uint64
}

func (b *builder) putBlock(tx kv.RwTx, header *types.Header, txs []*types.Transaction, ommers []*types.Header, withdrawals []*types.Withdrawal) error {
	hash := header.Hash()
	if err := tx.Put(kv.Headers, kv.EncodeNumber(header.Number), rlp.Encode(header)); err != nil {
		return err
	}
	if err := tx.Put(kv.HeaderNumber, hash.Bytes(), kv.EncodeNumber(header.Number)); err != nil {
		return err
	}
	if err := tx.Put(kv.CanonicalHeader, kv.EncodeNumber(header.Number), hash.Bytes()); err != nil {
		return err
	}

	first := b.txCounter
	for _, t := range txs {
		if err := tx.Put(kv.EthTx, kv.EncodeNumber(b.txCounter), rlp.Encode(t)); err != nil {
			return err
		}
		if err := tx.Put(kv.TxHashNumber, t.Hash().Bytes(), kv.EncodeNumber(b.txCounter)); err != nil {
			return err
		}
		receipt := &types.Receipt{Type: t.Type, PostStateOrStatus: []byte{1}, TxHash: t.Hash()}
		if err := tx.Put(kv.Receipts, kv.EncodeNumber(b.txCounter), rlp.Encode(receipt)); err != nil {
			return err
		}
		b.txCounter++
	}
	if len(txs) > 0 {
		if err := tx.Put(kv.TransactionBlock, kv.EncodeNumber(b.txCounter-1), kv.EncodeNumber(header.Number)); err != nil {
			return err
		}
	}
	bi := types.BlockBodyIndices{FirstTxNum: first, TxCount: uint64(len(txs))}
	if err := tx.Put(kv.BlockBodyIndices, kv.EncodeNumber(header.Number), rlp.Encode(bi)); err != nil {
		return err
	}

	if withdrawals != nil {
		if err := tx.Put(kv.BlockWithdrawals, kv.EncodeNumber(header.Number), types.EncodeWithdrawalsRLP(withdrawals)); err != nil {
			return err
		}
	} else if ommers != nil {
		if err := tx.Put(kv.BlockOmmers, kv.EncodeNumber(header.Number), types.EncodeOmmersRLP(ommers)); err != nil {
			return err
		}
	}
	return nil
}

// putHeaderTD writes HeaderTD[number], the table TotalDifficultyFor
// requires a row in before it will resolve a block's fork spec.
func putHeaderTD(tx kv.RwTx, number common.BlockNumber, td *uint256.Int) error {
	return tx.Put(kv.HeaderTD, kv.EncodeNumber(number), rlp.Encode(&types.TotalDifficulty{Int: td}))
}
