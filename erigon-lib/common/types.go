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

// Package common holds the small, dependency-free value types shared by
// every layer of the chain data provider: hashes, addresses and the
// block/tx numbering used as primary keys across the table schema.
package common

import (
	"encoding/hex"
	"fmt"
)

const (
	HashLength    = 32
	AddressLength = 20
)

// Hash is a 32-byte keccak256 digest: block hash, tx hash, state root, ...
type Hash [HashLength]byte

func (h Hash) Bytes() []byte  { return h[:] }
func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }
func (h Hash) IsZero() bool   { return h == Hash{} }

func BytesToHash(b []byte) (h Hash) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Address is a 20-byte account address.
type Address [AddressLength]byte

func (a Address) Bytes() []byte  { return a[:] }
func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

func BytesToAddress(b []byte) (a Address) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// BlockNumber is the canonical, monotone height of a block. Genesis is 0.
type BlockNumber = uint64

// TxNumber is the dense, globally-increasing index used as the primary
// key of the Transactions/Receipts tables. Unlike BlockNumber it has no
// per-block meaning on its own; BlockBodyIndices maps a BlockNumber to a
// contiguous TxNumber range.
type TxNumber = uint64

// BlockHashOrNumber is the tagged union callers use to identify a block
// without committing to hash- or number-based lookup. Exactly one of the
// two fields is meaningful; HasHash reports which.
type BlockHashOrNumber struct {
	Hash    Hash
	Number  BlockNumber
	HasHash bool
}

func AsHash(h Hash) BlockHashOrNumber {
	return BlockHashOrNumber{Hash: h, HasHash: true}
}

func AsNumber(n BlockNumber) BlockHashOrNumber {
	return BlockHashOrNumber{Number: n, HasHash: false}
}

func (b BlockHashOrNumber) String() string {
	if b.HasHash {
		return fmt.Sprintf("hash=%s", b.Hash)
	}
	return fmt.Sprintf("number=%d", b.Number)
}

// ChainInfo is the minimal "where is the chain" summary returned by
// ChainInfo(); the zero value is the valid empty-database response.
type ChainInfo struct {
	BestHash   Hash
	BestNumber BlockNumber
}
