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

// Log is a single EVM event emitted during transaction execution.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Receipt is the per-transaction execution outcome, keyed by tx-number in
// the Receipts table, the same numbering space EthTx uses.
type Receipt struct {
	Type              byte
	PostStateOrStatus []byte // pre-Byzantium root, or a 1-byte status post-Byzantium
	CumulativeGasUsed uint64
	Bloom             [256]byte
	Logs              []*Log
	TxHash            common.Hash
	GasUsed           uint64
}

func (r *Receipt) EncodeRLP(w *rlp.Writer) {
	w.WriteBytes([]byte{r.Type})
	w.WriteBytes(r.PostStateOrStatus)
	w.WriteUint64(r.CumulativeGasUsed)
	w.WriteBytes(r.Bloom[:])
	w.WriteUint64(uint64(len(r.Logs)))
	for _, l := range r.Logs {
		w.WriteBytes(l.Address.Bytes())
		w.WriteUint64(uint64(len(l.Topics)))
		for _, t := range l.Topics {
			w.WriteBytes(t.Bytes())
		}
		w.WriteBytes(l.Data)
	}
}

func (r *Receipt) DecodeRLP(rd *rlp.Reader) error {
	typeByte, err := rd.ReadBytes()
	if err != nil {
		return err
	}
	r.Type = typeByte[0]
	if r.PostStateOrStatus, err = rd.ReadBytes(); err != nil {
		return err
	}
	if r.CumulativeGasUsed, err = rd.ReadUint64(); err != nil {
		return err
	}
	bloom, err := rd.ReadBytes()
	if err != nil {
		return err
	}
	copy(r.Bloom[:], bloom)
	n, err := rd.ReadUint64()
	if err != nil {
		return err
	}
	r.Logs = make([]*Log, 0, n)
	for i := uint64(0); i < n; i++ {
		addr, err := rd.ReadBytes()
		if err != nil {
			return err
		}
		topicCount, err := rd.ReadUint64()
		if err != nil {
			return err
		}
		topics := make([]common.Hash, 0, topicCount)
		for j := uint64(0); j < topicCount; j++ {
			tb, err := rd.ReadBytes()
			if err != nil {
				return err
			}
			topics = append(topics, common.BytesToHash(tb))
		}
		data, err := rd.ReadBytes()
		if err != nil {
			return err
		}
		r.Logs = append(r.Logs, &Log{Address: common.BytesToAddress(addr), Topics: topics, Data: data})
	}
	return nil
}

// Successful reports whether the post-Byzantium status byte is 1.
func (r *Receipt) Successful() bool {
	return len(r.PostStateOrStatus) == 1 && r.PostStateOrStatus[0] == 1
}
