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

package types

import (
	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/rlp"
)

// BlockBodyIndices is the value stored in BlockBodyIndices: the
// half-open range of tx-numbers [FirstTxNum, FirstTxNum+TxCount) that
// belong to one block, the same numbering space EthTx and Receipts are
// keyed by.
type BlockBodyIndices struct {
	FirstTxNum uint64
	TxCount    uint64
}

// TxNumRange returns the half-open [from, to) range this body covers.
func (b BlockBodyIndices) TxNumRange() (from, to uint64) {
	return b.FirstTxNum, b.FirstTxNum + b.TxCount
}

func (b BlockBodyIndices) Empty() bool { return b.TxCount == 0 }

func (b BlockBodyIndices) EncodeRLP(w *rlp.Writer) {
	w.WriteUint64(b.FirstTxNum)
	w.WriteUint64(b.TxCount)
}

func (b *BlockBodyIndices) DecodeRLP(r *rlp.Reader) error {
	var err error
	if b.FirstTxNum, err = r.ReadUint64(); err != nil {
		return err
	}
	if b.TxCount, err = r.ReadUint64(); err != nil {
		return err
	}
	return nil
}

// EncodeOmmersRLP encodes the ommer list stored as BlockOmmers' value: a
// single RLP list of header items.
func EncodeOmmersRLP(ommers []*Header) []byte {
	w := rlp.NewWriter()
	w.List()
	for _, h := range ommers {
		w.List()
		h.EncodeRLP(w)
		w.EndList()
	}
	w.EndList()
	return w.Bytes()
}

func DecodeOmmersRLP(b []byte) ([]*Header, error) {
	r := rlp.NewReader(b)
	if err := r.EnterList(); err != nil {
		return nil, err
	}
	out := make([]*Header, 0)
	for r.More() {
		if err := r.EnterList(); err != nil {
			return nil, err
		}
		h := &Header{}
		if err := h.DecodeRLP(r); err != nil {
			return nil, err
		}
		r.LeaveList()
		out = append(out, h)
	}
	return out, nil
}

// EncodeWithdrawalsRLP encodes the withdrawal list stored as
// BlockWithdrawals' value: a single RLP list of withdrawal items.
func EncodeWithdrawalsRLP(ws []*Withdrawal) []byte {
	w := rlp.NewWriter()
	w.List()
	for _, wd := range ws {
		w.List()
		wd.EncodeRLP(w)
		w.EndList()
	}
	w.EndList()
	return w.Bytes()
}

func DecodeWithdrawalsRLP(b []byte) ([]*Withdrawal, error) {
	r := rlp.NewReader(b)
	if err := r.EnterList(); err != nil {
		return nil, err
	}
	out := make([]*Withdrawal, 0)
	for r.More() {
		if err := r.EnterList(); err != nil {
			return nil, err
		}
		wd := &Withdrawal{}
		if err := wd.DecodeRLP(r); err != nil {
			return nil, err
		}
		r.LeaveList()
		out = append(out, wd)
	}
	return out, nil
}

// Body is a block's non-header content: transactions, and - depending on
// fork era - ommers (pre-Shanghai) or withdrawals (Shanghai onward), but
// never both.
type Body struct {
	Transactions []*Transaction
	Ommers       []*Header
	Withdrawals  []*Withdrawal
}

// Block is a fully assembled header plus body, the return type of
// Provider.Block.
type Block struct {
	Header *Header
	Body   *Body
}

func (blk *Block) Hash() common.Hash { return blk.Header.Hash() }

func (blk *Block) Number() uint64 { return blk.Header.Number }
