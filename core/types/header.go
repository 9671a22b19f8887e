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

// Package types holds the domain value types the provider core reads and
// assembles: headers, bodies, transactions, receipts and withdrawals.
package types

import (
	"math/big"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/rlp"
)

// EmptyRootHash is the keccak256 of RLP-encoded nil, the value an empty
// transactions/receipts/withdrawals trie root takes.
var EmptyRootHash = common.Hash{0x56, 0xe8, 0x1f, 0x17, 0x1b, 0xcc, 0x55, 0xa6,
	0xff, 0x83, 0x45, 0xe6, 0x92, 0xc0, 0xf8, 0x6e, 0x5b, 0x48, 0xe0, 0x1b,
	0x99, 0x6c, 0xad, 0xc0, 0x01, 0x62, 0x2f, 0xb5, 0xe3, 0x63, 0xb4, 0x21}

// Header is the canonical block header. Field set mirrors post-Cancun
// Ethereum mainnet: pre-Shanghai fields are always present, Shanghai adds
// WithdrawalsHash, Cancun adds the blob-gas and beacon-root fields (see
// consensus/misc/eip4844.go's VerifyPresenceOfCancunHeaderFields, which
// this type's optional pointer fields are shaped to satisfy).
type Header struct {
	ParentHash  common.Hash
	UncleHash   common.Hash
	Coinbase    common.Address
	Root        common.Hash
	TxHash      common.Hash
	ReceiptHash common.Hash
	Bloom       [256]byte
	Difficulty  *big.Int
	Number      uint64
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   common.Hash
	Nonce       uint64

	BaseFeePerGas *uint256.Int // EIP-1559, nil pre-London

	WithdrawalsHash *common.Hash // EIP-4895, nil pre-Shanghai

	BlobGasUsed           *uint64      // EIP-4844, nil pre-Cancun
	ExcessBlobGas         *uint64      // EIP-4844, nil pre-Cancun
	ParentBeaconBlockRoot *common.Hash // EIP-4788, nil pre-Cancun
}

// Timestamp is the header field the Shanghai/Cancun activation
// predicates key off.
func (h *Header) Timestamp() uint64 { return h.Time }

func (h *Header) EncodeRLP(w *rlp.Writer) {
	w.WriteBytes(h.ParentHash.Bytes())
	w.WriteBytes(h.UncleHash.Bytes())
	w.WriteBytes(h.Coinbase.Bytes())
	w.WriteBytes(h.Root.Bytes())
	w.WriteBytes(h.TxHash.Bytes())
	w.WriteBytes(h.ReceiptHash.Bytes())
	w.WriteBytes(h.Bloom[:])
	w.WriteBytes(h.Difficulty.Bytes())
	w.WriteUint64(h.Number)
	w.WriteUint64(h.GasLimit)
	w.WriteUint64(h.GasUsed)
	w.WriteUint64(h.Time)
	w.WriteBytes(h.Extra)
	w.WriteBytes(h.MixDigest.Bytes())
	w.WriteUint64(h.Nonce)
	if h.BaseFeePerGas != nil {
		w.WriteBytes(h.BaseFeePerGas.Bytes())
	}
	if h.WithdrawalsHash != nil {
		w.WriteBytes(h.WithdrawalsHash.Bytes())
	}
	if h.BlobGasUsed != nil {
		w.WriteUint64(*h.BlobGasUsed)
	}
	if h.ExcessBlobGas != nil {
		w.WriteUint64(*h.ExcessBlobGas)
	}
	if h.ParentBeaconBlockRoot != nil {
		w.WriteBytes(h.ParentBeaconBlockRoot.Bytes())
	}
}

func (h *Header) DecodeRLP(r *rlp.Reader) error {
	var err error
	readHash := func() (common.Hash, error) {
		b, e := r.ReadBytes()
		return common.BytesToHash(b), e
	}
	if h.ParentHash, err = readHash(); err != nil {
		return err
	}
	if h.UncleHash, err = readHash(); err != nil {
		return err
	}
	b, err := r.ReadBytes()
	if err != nil {
		return err
	}
	h.Coinbase = common.BytesToAddress(b)
	if h.Root, err = readHash(); err != nil {
		return err
	}
	if h.TxHash, err = readHash(); err != nil {
		return err
	}
	if h.ReceiptHash, err = readHash(); err != nil {
		return err
	}
	bloom, err := r.ReadBytes()
	if err != nil {
		return err
	}
	copy(h.Bloom[:], bloom)
	diff, err := r.ReadBytes()
	if err != nil {
		return err
	}
	h.Difficulty = new(big.Int).SetBytes(diff)
	if h.Number, err = r.ReadUint64(); err != nil {
		return err
	}
	if h.GasLimit, err = r.ReadUint64(); err != nil {
		return err
	}
	if h.GasUsed, err = r.ReadUint64(); err != nil {
		return err
	}
	if h.Time, err = r.ReadUint64(); err != nil {
		return err
	}
	if h.Extra, err = r.ReadBytes(); err != nil {
		return err
	}
	if h.MixDigest, err = readHash(); err != nil {
		return err
	}
	if h.Nonce, err = r.ReadUint64(); err != nil {
		return err
	}
	if !r.More() {
		return nil
	}
	baseFee, err := r.ReadBytes()
	if err != nil {
		return err
	}
	h.BaseFeePerGas = new(uint256.Int).SetBytes(baseFee)

	if !r.More() {
		return nil
	}
	withdrawalsHash, err := readHash()
	if err != nil {
		return err
	}
	h.WithdrawalsHash = &withdrawalsHash

	if !r.More() {
		return nil
	}
	blobGasUsed, err := r.ReadUint64()
	if err != nil {
		return err
	}
	h.BlobGasUsed = &blobGasUsed

	if !r.More() {
		return nil
	}
	excessBlobGas, err := r.ReadUint64()
	if err != nil {
		return err
	}
	h.ExcessBlobGas = &excessBlobGas

	if !r.More() {
		return nil
	}
	parentBeaconBlockRoot, err := readHash()
	if err != nil {
		return err
	}
	h.ParentBeaconBlockRoot = &parentBeaconBlockRoot
	return nil
}

// Hash returns the header's RLP-keccak256 identity, the value stored as
// the key of HeaderNumber and as CanonicalHeader's value.
func (h *Header) Hash() common.Hash {
	enc := rlp.Encode(h)
	sum := sha3.NewLegacyKeccak256()
	sum.Write(enc)
	return common.BytesToHash(sum.Sum(nil))
}

// TotalDifficulty is the 256-bit cumulative proof-of-work weight stored
// in HeaderTD, retained post-Merge for historical execution.
type TotalDifficulty struct {
	Int *uint256.Int
}

func (t *TotalDifficulty) EncodeRLP(w *rlp.Writer) { w.WriteBytes(t.Int.Bytes()) }

func (t *TotalDifficulty) DecodeRLP(r *rlp.Reader) error {
	b, err := r.ReadBytes()
	if err != nil {
		return err
	}
	t.Int = new(uint256.Int).SetBytes(b)
	return nil
}

// SealedHeader pairs a header with its already-resolved canonical hash,
// avoiding a second hash computation at every call site that already
// knows the canonical mapping.
type SealedHeader struct {
	Header *Header
	Hash   common.Hash
}
