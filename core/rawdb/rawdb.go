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

package rawdb

import (
	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/rlp"

	"github.com/erigontech/chaindata/core/types"
)

// HashOrNumberToNumber resolves a BlockHashOrNumber to a plain number: the
// number itself if already numeric, otherwise a HeaderNumber lookup.
// Absence is a normal, soft miss.
func HashOrNumberToNumber(tx kv.Tx, ref common.BlockHashOrNumber) (common.BlockNumber, bool, error) {
	if !ref.HasHash {
		return ref.Number, true, nil
	}
	v, ok, err := kv.GetOne(tx, kv.HeaderNumber, ref.Hash.Bytes())
	if err != nil || !ok {
		return 0, false, err
	}
	return kv.DecodeNumber(v), true, nil
}

// ReadCanonicalHash returns the hash CanonicalHeader records at number, or
// HeaderNotFoundError if none: callers reaching here require canonicity.
func ReadCanonicalHash(tx kv.Tx, number common.BlockNumber) (common.Hash, error) {
	v, ok, err := kv.GetOne(tx, kv.CanonicalHeader, kv.EncodeNumber(number))
	if err != nil {
		return common.Hash{}, err
	}
	if !ok {
		return common.Hash{}, &HeaderNotFoundError{Number: number}
	}
	return common.BytesToHash(v), nil
}

// ReadHeader reads Headers[number] without checking canonicity.
func ReadHeader(tx kv.Tx, number common.BlockNumber) (*types.Header, bool, error) {
	v, ok, err := kv.GetOne(tx, kv.Headers, kv.EncodeNumber(number))
	if err != nil || !ok {
		return nil, false, err
	}
	h := &types.Header{}
	if err := rlp.Decode(v, h); err != nil {
		return nil, false, err
	}
	return h, true, nil
}

// ReadHeaderTD reads the total difficulty recorded for number.
func ReadHeaderTD(tx kv.Tx, number common.BlockNumber) (*types.TotalDifficulty, bool, error) {
	v, ok, err := kv.GetOne(tx, kv.HeaderTD, kv.EncodeNumber(number))
	if err != nil || !ok {
		return nil, false, err
	}
	td := &types.TotalDifficulty{}
	if err := rlp.Decode(v, td); err != nil {
		return nil, false, err
	}
	return td, true, nil
}

// ReadSealedHeader joins Headers[number] with CanonicalHeader[number]. A
// header lacking a canonical entry is non-canonical and yields (nil,
// false, nil) rather than a fabricated sealing.
func ReadSealedHeader(tx kv.Tx, number common.BlockNumber) (*types.SealedHeader, bool, error) {
	header, ok, err := ReadHeader(tx, number)
	if err != nil || !ok {
		return nil, false, err
	}
	hv, ok, err := kv.GetOne(tx, kv.CanonicalHeader, kv.EncodeNumber(number))
	if err != nil || !ok {
		return nil, false, err
	}
	return &types.SealedHeader{Header: header, Hash: common.BytesToHash(hv)}, true, nil
}

// HeadersRange walks Headers over [fromNumber, toNumber) ascending.
func HeadersRange(tx kv.Tx, fromNumber, toNumber common.BlockNumber, fn func(*types.Header) (bool, error)) error {
	return kv.WalkRange(tx, kv.Headers, kv.EncodeNumber(fromNumber), kv.EncodeNumber(toNumber), func(_, v []byte) (bool, error) {
		h := &types.Header{}
		if err := rlp.Decode(v, h); err != nil {
			return false, err
		}
		return fn(h)
	})
}

// SealedHeadersRange walks Headers over [fromNumber, toNumber), joining
// each with its canonical hash. A missing canonical entry anywhere in the
// range is a hard error.
func SealedHeadersRange(tx kv.Tx, fromNumber, toNumber common.BlockNumber, fn func(*types.SealedHeader) (bool, error)) error {
	var outerErr error
	err := HeadersRange(tx, fromNumber, toNumber, func(h *types.Header) (bool, error) {
		hash, err := ReadCanonicalHash(tx, h.Number)
		if err != nil {
			outerErr = err
			return false, err
		}
		return fn(&types.SealedHeader{Header: h, Hash: hash})
	})
	if outerErr != nil {
		return outerErr
	}
	return err
}

// CanonicalHashesRange walks CanonicalHeader over [fromNumber, toNumber).
func CanonicalHashesRange(tx kv.Tx, fromNumber, toNumber common.BlockNumber, fn func(common.BlockNumber, common.Hash) (bool, error)) error {
	return kv.WalkRange(tx, kv.CanonicalHeader, kv.EncodeNumber(fromNumber), kv.EncodeNumber(toNumber), func(k, v []byte) (bool, error) {
		return fn(kv.DecodeNumber(k), common.BytesToHash(v))
	})
}

// BlockHash returns CanonicalHeader[number], a soft miss if absent.
func BlockHash(tx kv.Tx, number common.BlockNumber) (common.Hash, bool, error) {
	v, ok, err := kv.GetOne(tx, kv.CanonicalHeader, kv.EncodeNumber(number))
	if err != nil || !ok {
		return common.Hash{}, false, err
	}
	return common.BytesToHash(v), true, nil
}

// ReadBodyIndices reads BlockBodyIndices[number].
func ReadBodyIndices(tx kv.Tx, number common.BlockNumber) (types.BlockBodyIndices, bool, error) {
	v, ok, err := kv.GetOne(tx, kv.BlockBodyIndices, kv.EncodeNumber(number))
	if err != nil || !ok {
		return types.BlockBodyIndices{}, false, err
	}
	bi := types.BlockBodyIndices{}
	if err := rlp.Decode(v, &bi); err != nil {
		return types.BlockBodyIndices{}, false, err
	}
	return bi, true, nil
}

// ReadTransactionsByNumber resolves BlockBodyIndices[number] and walks
// Transactions over the resulting range. A missing body-indices entry is
// a soft miss (the block itself may not exist); a zero tx_count yields an
// explicit empty slice, not a miss.
func ReadTransactionsByNumber(tx kv.Tx, number common.BlockNumber) ([]*types.Transaction, bool, error) {
	bi, ok, err := ReadBodyIndices(tx, number)
	if err != nil || !ok {
		return nil, false, err
	}
	if bi.Empty() {
		return []*types.Transaction{}, true, nil
	}
	from, to := bi.TxNumRange()
	txs, err := ReadTransactionsRange(tx, from, to)
	if err != nil {
		return nil, false, err
	}
	return txs, true, nil
}

// ReadTransactionsRange walks Transactions over the half-open tx-number
// range [from, to).
func ReadTransactionsRange(tx kv.Tx, from, to common.TxNumber) ([]*types.Transaction, error) {
	var out []*types.Transaction
	err := kv.WalkRange(tx, kv.EthTx, kv.EncodeNumber(from), kv.EncodeNumber(to), func(_, v []byte) (bool, error) {
		t := &types.Transaction{}
		if err := rlp.Decode(v, t); err != nil {
			return false, err
		}
		out = append(out, t)
		return true, nil
	})
	return out, err
}

// ReadReceiptsRange walks Receipts over the half-open tx-number range
// [from, to), the same numbering Transactions uses.
func ReadReceiptsRange(tx kv.Tx, from, to common.TxNumber) ([]*types.Receipt, error) {
	var out []*types.Receipt
	err := kv.WalkRange(tx, kv.Receipts, kv.EncodeNumber(from), kv.EncodeNumber(to), func(_, v []byte) (bool, error) {
		r := &types.Receipt{}
		if err := rlp.Decode(v, r); err != nil {
			return false, err
		}
		out = append(out, r)
		return true, nil
	})
	return out, err
}

// ReadReceiptByTxNumber reads a single Receipts[txNum] entry.
func ReadReceiptByTxNumber(tx kv.Tx, txNum common.TxNumber) (*types.Receipt, bool, error) {
	v, ok, err := kv.GetOne(tx, kv.Receipts, kv.EncodeNumber(txNum))
	if err != nil || !ok {
		return nil, false, err
	}
	r := &types.Receipt{}
	if err := rlp.Decode(v, r); err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// ReadTransactionByTxNumber reads a single Transactions[txNum] entry.
func ReadTransactionByTxNumber(tx kv.Tx, txNum common.TxNumber) (*types.Transaction, bool, error) {
	v, ok, err := kv.GetOne(tx, kv.EthTx, kv.EncodeNumber(txNum))
	if err != nil || !ok {
		return nil, false, err
	}
	t := &types.Transaction{}
	if err := rlp.Decode(v, t); err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// ReadTxNumber resolves TxHashNumber[hash].
func ReadTxNumber(tx kv.Tx, hash common.Hash) (common.TxNumber, bool, error) {
	v, ok, err := kv.GetOne(tx, kv.TxHashNumber, hash.Bytes())
	if err != nil || !ok {
		return 0, false, err
	}
	return kv.DecodeNumber(v), true, nil
}

// ReadTransactionBlock seeks TransactionBlock at the first key >= txNum;
// entries exist only at each block's last tx-number.
func ReadTransactionBlock(tx kv.Tx, txNum common.TxNumber) (common.BlockNumber, bool, error) {
	c, err := tx.Cursor(kv.TransactionBlock)
	if err != nil {
		return 0, false, err
	}
	defer c.Close()
	_, v, ok, err := c.Seek(kv.EncodeNumber(txNum))
	if err != nil || !ok {
		return 0, false, err
	}
	return kv.DecodeNumber(v), true, nil
}

// ReadOmmersByNumber returns BlockOmmers[number], distinguishing absence
// (None) from a present-but-empty list.
func ReadOmmersByNumber(tx kv.Tx, number common.BlockNumber) ([]*types.Header, bool, error) {
	v, ok, err := kv.GetOne(tx, kv.BlockOmmers, kv.EncodeNumber(number))
	if err != nil || !ok {
		return nil, false, err
	}
	ommers, err := types.DecodeOmmersRLP(v)
	if err != nil {
		return nil, false, err
	}
	return ommers, true, nil
}

// ReadWithdrawalsByNumber returns BlockWithdrawals[number], distinguishing
// absence from a present-but-empty list.
func ReadWithdrawalsByNumber(tx kv.Tx, number common.BlockNumber) ([]*types.Withdrawal, bool, error) {
	v, ok, err := kv.GetOne(tx, kv.BlockWithdrawals, kv.EncodeNumber(number))
	if err != nil || !ok {
		return nil, false, err
	}
	ws, err := types.DecodeWithdrawalsRLP(v)
	if err != nil {
		return nil, false, err
	}
	return ws, true, nil
}

// LatestWithdrawal returns the last element of the last BlockWithdrawals
// entry, by cursor order. If that entry holds an empty list it is a soft
// miss; earlier entries are not searched.
func LatestWithdrawal(tx kv.Tx) (*types.Withdrawal, bool, error) {
	c, err := tx.Cursor(kv.BlockWithdrawals)
	if err != nil {
		return nil, false, err
	}
	defer c.Close()
	_, v, ok, err := c.Last()
	if err != nil || !ok {
		return nil, false, err
	}
	ws, err := types.DecodeWithdrawalsRLP(v)
	if err != nil || len(ws) == 0 {
		return nil, false, err
	}
	return ws[len(ws)-1], true, nil
}

// BestBlockNumber is SyncStageProgress[FinishStage]'s checkpoint, the
// pipeline's authoritative best-block-number oracle.
func BestBlockNumber(tx kv.Tx) (common.BlockNumber, bool, error) {
	v, ok, err := kv.GetOne(tx, kv.SyncStageProgress, []byte(kv.FinishStage))
	if err != nil || !ok {
		return 0, false, err
	}
	return kv.DecodeNumber(v), true, nil
}

// LastCanonicalHeader is the last entry of the CanonicalHeader cursor,
// the second of the two best-block oracles.
func LastCanonicalHeader(tx kv.Tx) (common.BlockNumber, common.Hash, bool, error) {
	c, err := tx.Cursor(kv.CanonicalHeader)
	if err != nil {
		return 0, common.Hash{}, false, err
	}
	defer c.Close()
	k, v, ok, err := c.Last()
	if err != nil || !ok {
		return 0, common.Hash{}, false, err
	}
	return kv.DecodeNumber(k), common.BytesToHash(v), true, nil
}

// IsLatest reports whether number equals both best-block oracles. Both
// must agree: during a reorg or mid-pipeline they can diverge, and
// disagreement must never silently promote a historical query to latest.
func IsLatest(tx kv.Tx, number common.BlockNumber) (bool, error) {
	best, ok, err := BestBlockNumber(tx)
	if err != nil || !ok || best != number {
		return false, err
	}
	lastNum, _, ok, err := LastCanonicalHeader(tx)
	if err != nil || !ok {
		return false, err
	}
	return lastNum == number, nil
}

// GetStageCheckpoint reads SyncStageProgress[stageID].
func GetStageCheckpoint(tx kv.Tx, stageID string) ([]byte, bool, error) {
	return kv.GetOne(tx, kv.SyncStageProgress, []byte(stageID))
}
