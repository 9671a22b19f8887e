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

// Withdrawal is a validator withdrawal (EIP-4895), present only from
// Shanghai onward and stored one-to-one with its containing block in
// BlockWithdrawals, never standalone.
type Withdrawal struct {
	Index          uint64
	ValidatorIndex uint64
	Address        common.Address
	Amount         uint64 // gwei
}

func (w *Withdrawal) EncodeRLP(rw *rlp.Writer) {
	rw.WriteUint64(w.Index)
	rw.WriteUint64(w.ValidatorIndex)
	rw.WriteBytes(w.Address.Bytes())
	rw.WriteUint64(w.Amount)
}

func (w *Withdrawal) DecodeRLP(r *rlp.Reader) error {
	var err error
	if w.Index, err = r.ReadUint64(); err != nil {
		return err
	}
	if w.ValidatorIndex, err = r.ReadUint64(); err != nil {
		return err
	}
	addr, err := r.ReadBytes()
	if err != nil {
		return err
	}
	w.Address = common.BytesToAddress(addr)
	if w.Amount, err = r.ReadUint64(); err != nil {
		return err
	}
	return nil
}
