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

// Package provider is the chain data provider facade: the public read
// API over headers, blocks, transactions, receipts, withdrawals and
// ommers. Every method opens its own read transaction, so callers never
// hold a transaction open across an RPC boundary.
package provider

import (
	"context"

	"github.com/erigontech/erigon-lib/chain"
	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/log/v3"
	"github.com/erigontech/erigon-lib/rlp"

	"github.com/erigontech/chaindata/core/rawdb"
	"github.com/erigontech/chaindata/core/types"
	"github.com/erigontech/chaindata/turbo/services"
)

var _ services.FullChainReader = (*Provider)(nil)

// Provider is cheap to clone: db is a shared handle and chainConfig is
// immutable, so callers may hand out copies freely.
type Provider struct {
	db          kv.RoDB
	chainConfig *chain.Config
	log         *log.Logger
}

func New(db kv.RoDB, chainConfig *chain.Config) *Provider {
	return &Provider{db: db, chainConfig: chainConfig, log: log.New("component", "chaindata-provider")}
}

func (p *Provider) ChainConfig() *chain.Config { return p.chainConfig }

func (p *Provider) viewNumber(ctx context.Context, ref common.BlockHashOrNumber) (common.BlockNumber, bool, error) {
	var number common.BlockNumber
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		var err error
		number, ok, err = rawdb.HashOrNumberToNumber(tx, ref)
		return err
	})
	return number, ok, err
}

// Header resolves hash via HeaderNumbers, then reads Headers[n]. It does
// not require canonicity - a side-chain header received over P2P is
// still returned.
func (p *Provider) Header(ctx context.Context, hash common.Hash) (*types.Header, bool, error) {
	var h *types.Header
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		n, found, err := rawdb.HashOrNumberToNumber(tx, common.AsHash(hash))
		if err != nil || !found {
			return err
		}
		h, ok, err = rawdb.ReadHeader(tx, n)
		return err
	})
	return h, ok, err
}

func (p *Provider) HeaderByNumber(ctx context.Context, number common.BlockNumber) (*types.Header, bool, error) {
	var h *types.Header
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		var err error
		h, ok, err = rawdb.ReadHeader(tx, number)
		return err
	})
	return h, ok, err
}

func (p *Provider) HeaderTD(ctx context.Context, hash common.Hash) (*types.TotalDifficulty, bool, error) {
	var td *types.TotalDifficulty
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		n, found, err := rawdb.HashOrNumberToNumber(tx, common.AsHash(hash))
		if err != nil || !found {
			return err
		}
		td, ok, err = rawdb.ReadHeaderTD(tx, n)
		return err
	})
	return td, ok, err
}

func (p *Provider) HeaderTDByNumber(ctx context.Context, number common.BlockNumber) (*types.TotalDifficulty, bool, error) {
	var td *types.TotalDifficulty
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		var err error
		td, ok, err = rawdb.ReadHeaderTD(tx, number)
		return err
	})
	return td, ok, err
}

// HeadersRange returns headers in [from, to) ascending by number.
func (p *Provider) HeadersRange(ctx context.Context, from, to common.BlockNumber) ([]*types.Header, error) {
	var out []*types.Header
	err := p.db.View(ctx, func(tx kv.Tx) error {
		return rawdb.HeadersRange(tx, from, to, func(h *types.Header) (bool, error) {
			out = append(out, h)
			return true, nil
		})
	})
	return out, err
}

// SealedHeadersRange fails hard if any number in the range lacks a
// canonical hash.
func (p *Provider) SealedHeadersRange(ctx context.Context, from, to common.BlockNumber) ([]*types.SealedHeader, error) {
	var out []*types.SealedHeader
	err := p.db.View(ctx, func(tx kv.Tx) error {
		return rawdb.SealedHeadersRange(tx, from, to, func(sh *types.SealedHeader) (bool, error) {
			out = append(out, sh)
			return true, nil
		})
	})
	return out, err
}

func (p *Provider) SealedHeader(ctx context.Context, number common.BlockNumber) (*types.SealedHeader, bool, error) {
	var sh *types.SealedHeader
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		var err error
		sh, ok, err = rawdb.ReadSealedHeader(tx, number)
		return err
	})
	return sh, ok, err
}

// SealedHeaderFor resolves ref to a sealed header, hard-erroring with
// HeaderNotFoundError if it cannot - the form EVM environment filling
// needs, as opposed to the soft-miss SealedHeader/Header methods above.
func (p *Provider) SealedHeaderFor(ctx context.Context, ref common.BlockHashOrNumber) (*types.SealedHeader, error) {
	var sh *types.SealedHeader
	err := p.db.View(ctx, func(tx kv.Tx) error {
		number, ok, err := rawdb.HashOrNumberToNumber(tx, ref)
		if err != nil {
			return err
		}
		if !ok {
			return &rawdb.HeaderNotFoundError{Number: ref.Number}
		}
		sh, ok, err = rawdb.ReadSealedHeader(tx, number)
		if err != nil {
			return err
		}
		if !ok {
			return &rawdb.HeaderNotFoundError{Number: number}
		}
		return nil
	})
	return sh, err
}

// TotalDifficultyFor resolves ref's total difficulty, hard-erroring with
// HeaderNotFoundError when HeaderTD[number] is absent - the same
// resolve-then-require shape SealedHeaderFor uses for its header, since
// EVM environment filling cannot proceed without a TD.
func (p *Provider) TotalDifficultyFor(ctx context.Context, ref common.BlockHashOrNumber) (*types.TotalDifficulty, error) {
	var td *types.TotalDifficulty
	err := p.db.View(ctx, func(tx kv.Tx) error {
		number, ok, err := rawdb.HashOrNumberToNumber(tx, ref)
		if err != nil {
			return err
		}
		if !ok {
			return &rawdb.HeaderNotFoundError{Number: ref.Number}
		}
		td, ok, err = rawdb.ReadHeaderTD(tx, number)
		if err != nil {
			return err
		}
		if !ok {
			return &rawdb.HeaderNotFoundError{Number: number}
		}
		return nil
	})
	return td, err
}

func (p *Provider) BlockHash(ctx context.Context, number common.BlockNumber) (common.Hash, bool, error) {
	var hash common.Hash
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		var err error
		hash, ok, err = rawdb.BlockHash(tx, number)
		return err
	})
	return hash, ok, err
}

func (p *Provider) CanonicalHashesRange(ctx context.Context, from, to common.BlockNumber) ([]common.Hash, error) {
	var out []common.Hash
	err := p.db.View(ctx, func(tx kv.Tx) error {
		return rawdb.CanonicalHashesRange(tx, from, to, func(_ common.BlockNumber, hash common.Hash) (bool, error) {
			out = append(out, hash)
			return true, nil
		})
	})
	return out, err
}

func (p *Provider) BestBlockNumber(ctx context.Context) (common.BlockNumber, error) {
	var best common.BlockNumber
	err := p.db.View(ctx, func(tx kv.Tx) error {
		n, _, err := rawdb.BestBlockNumber(tx)
		best = n
		return err
	})
	return best, err
}

func (p *Provider) BlockNumber(ctx context.Context, hash common.Hash) (common.BlockNumber, bool, error) {
	return p.viewNumber(ctx, common.AsHash(hash))
}

// ChainInfo returns zero for both fields on an empty database, the valid
// "nothing synced yet" response.
func (p *Provider) ChainInfo(ctx context.Context) (common.ChainInfo, error) {
	var info common.ChainInfo
	err := p.db.View(ctx, func(tx kv.Tx) error {
		best, ok, err := rawdb.BestBlockNumber(tx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		info.BestNumber = best
		hash, ok, err := rawdb.BlockHash(tx, best)
		if err != nil {
			return err
		}
		if ok {
			info.BestHash = hash
		}
		return nil
	})
	return info, err
}

// FindBlockByHash returns Block(hash) if fromDatabase is true; the
// provider never has a pending-pool notion of "elsewhere".
func (p *Provider) FindBlockByHash(ctx context.Context, hash common.Hash, fromDatabase bool) (*types.Block, bool, error) {
	if !fromDatabase {
		return nil, false, nil
	}
	return p.Block(ctx, common.AsHash(hash))
}

// Block assembles header, body, and the fork-era-exclusive
// ommers/withdrawals slot.
func (p *Provider) Block(ctx context.Context, ref common.BlockHashOrNumber) (*types.Block, bool, error) {
	var blk *types.Block
	var found bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		number, ok, err := rawdb.HashOrNumberToNumber(tx, ref)
		if err != nil || !ok {
			return err
		}
		p.log.Trace("assembling block", "number", number)
		sh, ok, err := rawdb.ReadSealedHeader(tx, number)
		if err != nil || !ok {
			return err
		}
		txs, ok, err := rawdb.ReadTransactionsByNumber(tx, number)
		if err != nil {
			return err
		}
		if !ok {
			return &rawdb.BlockBodyIndicesNotFoundError{Number: number}
		}
		ommers, withdrawals, err := p.readBlockOmmersAndWithdrawals(tx, number, sh.Header.Timestamp())
		if err != nil {
			return err
		}
		blk = &types.Block{Header: sh.Header, Body: &types.Body{
			Transactions: txs,
			Ommers:       ommers,
			Withdrawals:  withdrawals,
		}}
		found = true
		return nil
	})
	return blk, found, err
}

// readBlockOmmersAndWithdrawals reads whichever of BlockOmmers/
// BlockWithdrawals the block's timestamp selects, always synthesizing an
// empty (never nil) list for the populated side so Block()'s body never
// reports an absent slice for the era it belongs to.
func (p *Provider) readBlockOmmersAndWithdrawals(tx kv.Tx, number common.BlockNumber, timestamp uint64) ([]*types.Header, []*types.Withdrawal, error) {
	if p.chainConfig.IsShanghaiActivatedAtTimestamp(timestamp) {
		ws, ok, err := rawdb.ReadWithdrawalsByNumber(tx, number)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			ws = []*types.Withdrawal{}
		}
		return nil, ws, nil
	}
	ommers, ok, err := rawdb.ReadOmmersByNumber(tx, number)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		ommers = []*types.Header{}
	}
	return ommers, nil, nil
}

// PendingBlock is always absent: the provider reads committed chain
// state only.
func (p *Provider) PendingBlock(_ context.Context) (*types.Block, bool, error) { return nil, false, nil }

// Ommers resolves to a number and returns BlockOmmers[n] if present, nil
// distinguished from an empty list.
func (p *Provider) Ommers(ctx context.Context, ref common.BlockHashOrNumber) ([]*types.Header, bool, error) {
	var out []*types.Header
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		number, found, err := rawdb.HashOrNumberToNumber(tx, ref)
		if err != nil || !found {
			return err
		}
		out, ok, err = rawdb.ReadOmmersByNumber(tx, number)
		return err
	})
	return out, ok, err
}

func (p *Provider) TransactionID(ctx context.Context, hash common.Hash) (common.TxNumber, bool, error) {
	var id common.TxNumber
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		var err error
		id, ok, err = rawdb.ReadTxNumber(tx, hash)
		return err
	})
	return id, ok, err
}

func (p *Provider) TransactionByID(ctx context.Context, id common.TxNumber) (*types.Transaction, bool, error) {
	var t *types.Transaction
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		var err error
		t, ok, err = rawdb.ReadTransactionByTxNumber(tx, id)
		return err
	})
	return t, ok, err
}

func (p *Provider) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	id, ok, err := p.TransactionID(ctx, hash)
	if err != nil || !ok {
		return nil, false, err
	}
	return p.TransactionByID(ctx, id)
}

// TransactionByHashWithMeta additionally resolves the owning block and
// the transaction's intra-block index. Any missing link in the chain of
// lookups returns a soft miss, never an error.
func (p *Provider) TransactionByHashWithMeta(ctx context.Context, hash common.Hash) (*types.Transaction, *types.TransactionMeta, bool, error) {
	var tx_ *types.Transaction
	var meta *types.TransactionMeta
	var found bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		id, ok, err := rawdb.ReadTxNumber(tx, hash)
		if err != nil || !ok {
			return err
		}
		txn, ok, err := rawdb.ReadTransactionByTxNumber(tx, id)
		if err != nil || !ok {
			return err
		}
		blockNumber, ok, err := rawdb.ReadTransactionBlock(tx, id)
		if err != nil || !ok {
			return err
		}
		sh, ok, err := rawdb.ReadSealedHeader(tx, blockNumber)
		if err != nil || !ok {
			return err
		}
		bi, ok, err := rawdb.ReadBodyIndices(tx, blockNumber)
		if err != nil || !ok {
			return err
		}
		tx_ = txn
		meta = &types.TransactionMeta{
			TxHash:      hash,
			Index:       id - bi.FirstTxNum,
			BlockHash:   sh.Hash,
			BlockNumber: blockNumber,
			BaseFee:     sh.Header.BaseFeePerGas,
		}
		found = true
		return nil
	})
	return tx_, meta, found, err
}

func (p *Provider) TransactionBlock(ctx context.Context, id common.TxNumber) (common.BlockNumber, bool, error) {
	var n common.BlockNumber
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		var err error
		n, ok, err = rawdb.ReadTransactionBlock(tx, id)
		return err
	})
	return n, ok, err
}

func (p *Provider) TransactionsByBlock(ctx context.Context, ref common.BlockHashOrNumber) ([]*types.Transaction, bool, error) {
	var out []*types.Transaction
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		number, found, err := rawdb.HashOrNumberToNumber(tx, ref)
		if err != nil || !found {
			return err
		}
		out, ok, err = rawdb.ReadTransactionsByNumber(tx, number)
		return err
	})
	return out, ok, err
}

// TransactionsByBlockRange emits, for each block in [from, to) that has a
// BlockBodyIndices entry, either an empty list (empty tx-number range) or
// the walked Transactions slice, in ascending block order. Blocks without
// a body-indices entry contribute no element.
func (p *Provider) TransactionsByBlockRange(ctx context.Context, from, to common.BlockNumber) ([][]*types.Transaction, error) {
	var out [][]*types.Transaction
	err := p.db.View(ctx, func(tx kv.Tx) error {
		return kv.WalkRange(tx, kv.BlockBodyIndices, kv.EncodeNumber(from), kv.EncodeNumber(to), func(_, v []byte) (bool, error) {
			bi := types.BlockBodyIndices{}
			if err := rlp.Decode(v, &bi); err != nil {
				return false, err
			}
			if bi.Empty() {
				out = append(out, []*types.Transaction{})
				return true, nil
			}
			fromTx, toTx := bi.TxNumRange()
			txs, err := rawdb.ReadTransactionsRange(tx, fromTx, toTx)
			if err != nil {
				return false, err
			}
			out = append(out, txs)
			return true, nil
		})
	})
	return out, err
}

func (p *Provider) Receipt(ctx context.Context, id common.TxNumber) (*types.Receipt, bool, error) {
	var r *types.Receipt
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		var err error
		r, ok, err = rawdb.ReadReceiptByTxNumber(tx, id)
		return err
	})
	return r, ok, err
}

func (p *Provider) ReceiptByHash(ctx context.Context, hash common.Hash) (*types.Receipt, bool, error) {
	id, ok, err := p.TransactionID(ctx, hash)
	if err != nil || !ok {
		return nil, false, err
	}
	return p.Receipt(ctx, id)
}

func (p *Provider) ReceiptsByBlock(ctx context.Context, ref common.BlockHashOrNumber) ([]*types.Receipt, bool, error) {
	var out []*types.Receipt
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		number, found, err := rawdb.HashOrNumberToNumber(tx, ref)
		if err != nil || !found {
			return err
		}
		bi, found, err := rawdb.ReadBodyIndices(tx, number)
		if err != nil || !found {
			return err
		}
		ok = true
		if bi.Empty() {
			out = []*types.Receipt{}
			return nil
		}
		from, to := bi.TxNumRange()
		out, err = rawdb.ReadReceiptsRange(tx, from, to)
		return err
	})
	return out, ok, err
}

// WithdrawalsByBlock returns withdrawals only when Shanghai is active at
// timestamp; otherwise a miss, regardless of what BlockWithdrawals holds.
func (p *Provider) WithdrawalsByBlock(ctx context.Context, ref common.BlockHashOrNumber, timestamp uint64) ([]*types.Withdrawal, bool, error) {
	if !p.chainConfig.IsShanghaiActivatedAtTimestamp(timestamp) {
		return nil, false, nil
	}
	var out []*types.Withdrawal
	err := p.db.View(ctx, func(tx kv.Tx) error {
		number, found, err := rawdb.HashOrNumberToNumber(tx, ref)
		if err != nil || !found {
			return err
		}
		ws, ok, err := rawdb.ReadWithdrawalsByNumber(tx, number)
		if err != nil {
			return err
		}
		if ok {
			out = ws
		} else {
			out = []*types.Withdrawal{}
		}
		return nil
	})
	return out, true, err
}

func (p *Provider) LatestWithdrawal(ctx context.Context) (*types.Withdrawal, bool, error) {
	var w *types.Withdrawal
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		var err error
		w, ok, err = rawdb.LatestWithdrawal(tx)
		return err
	})
	return w, ok, err
}

func (p *Provider) GetStageCheckpoint(ctx context.Context, stageID string) ([]byte, bool, error) {
	var v []byte
	var ok bool
	err := p.db.View(ctx, func(tx kv.Tx) error {
		var err error
		v, ok, err = rawdb.GetStageCheckpoint(tx, stageID)
		return err
	})
	return v, ok, err
}
