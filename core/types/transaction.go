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
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/rlp"
)

const (
	LegacyTxType     = 0
	DynamicFeeTxType = 2
)

// Transaction is a signed transaction as stored in the EthTx table. The
// provider core only ever reads, hashes and forwards transactions; it
// never validates signatures or executes them (that is the EVM
// executor's job).
type Transaction struct {
	Type      byte
	Nonce     uint64
	GasPrice  *uint256.Int    // legacy
	GasTipCap *uint256.Int    // EIP-1559 (nil for legacy)
	GasFeeCap *uint256.Int    // EIP-1559 (nil for legacy)
	Gas       uint64
	To        *common.Address // nil for contract creation
	Value     *uint256.Int
	Data      []byte
	ChainID   *uint256.Int

	V, R, S *uint256.Int
}

func (tx *Transaction) EncodeRLP(w *rlp.Writer) {
	w.WriteBytes([]byte{tx.Type})
	w.WriteUint64(tx.Nonce)
	if tx.Type == LegacyTxType {
		w.WriteBytes(tx.GasPrice.Bytes())
	} else {
		w.WriteBytes(tx.GasTipCap.Bytes())
		w.WriteBytes(tx.GasFeeCap.Bytes())
	}
	w.WriteUint64(tx.Gas)
	if tx.To != nil {
		w.WriteBytes(tx.To.Bytes())
	} else {
		w.WriteBytes(nil)
	}
	w.WriteBytes(tx.Value.Bytes())
	w.WriteBytes(tx.Data)
	w.WriteBytes(tx.V.Bytes())
	w.WriteBytes(tx.R.Bytes())
	w.WriteBytes(tx.S.Bytes())
}

func (tx *Transaction) DecodeRLP(r *rlp.Reader) error {
	typeByte, err := r.ReadBytes()
	if err != nil {
		return err
	}
	tx.Type = typeByte[0]
	if tx.Nonce, err = r.ReadUint64(); err != nil {
		return err
	}
	first, err := r.ReadBytes()
	if err != nil {
		return err
	}
	if tx.Type == LegacyTxType {
		tx.GasPrice = new(uint256.Int).SetBytes(first)
	} else {
		tx.GasTipCap = new(uint256.Int).SetBytes(first)
		feeCap, err := r.ReadBytes()
		if err != nil {
			return err
		}
		tx.GasFeeCap = new(uint256.Int).SetBytes(feeCap)
	}
	if tx.Gas, err = r.ReadUint64(); err != nil {
		return err
	}
	to, err := r.ReadBytes()
	if err != nil {
		return err
	}
	if len(to) > 0 {
		addr := common.BytesToAddress(to)
		tx.To = &addr
	}
	val, err := r.ReadBytes()
	if err != nil {
		return err
	}
	tx.Value = new(uint256.Int).SetBytes(val)
	if tx.Data, err = r.ReadBytes(); err != nil {
		return err
	}
	v, err := r.ReadBytes()
	if err != nil {
		return err
	}
	tx.V = new(uint256.Int).SetBytes(v)
	rr, err := r.ReadBytes()
	if err != nil {
		return err
	}
	tx.R = new(uint256.Int).SetBytes(rr)
	s, err := r.ReadBytes()
	if err != nil {
		return err
	}
	tx.S = new(uint256.Int).SetBytes(s)
	return nil
}

// Hash is the transaction's canonical identity, the key of TxHashNumber.
func (tx *Transaction) Hash() common.Hash {
	enc := rlp.Encode(tx)
	sum := sha3.NewLegacyKeccak256()
	sum.Write(enc)
	return common.BytesToHash(sum.Sum(nil))
}

// TransactionMeta is the per-transaction positional metadata joined in by
// Provider.TransactionByHashWithMeta.
type TransactionMeta struct {
	TxHash      common.Hash
	Index       uint64
	BlockHash   common.Hash
	BlockNumber uint64
	BaseFee     *uint256.Int
}
