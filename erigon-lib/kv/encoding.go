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

package kv

import (
	"encoding/binary"

	"github.com/erigontech/erigon-lib/common/math"
)

// EncodeNumber big-endian encodes a block or tx number so lexicographic
// byte order matches numeric order, the property every cursor walk over a
// number-keyed table (rawdb.HeadersRange, rawdb.CanonicalHashesRange, ...)
// relies on.
func EncodeNumber(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}

func DecodeNumber(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// NextNumber returns n+1, saturating at math.MaxUint64 instead of
// wrapping. The historical state view uses it to compute its changeset
// cutover key without silently wrapping on an adversarial/corrupt block
// number.
func NextNumber(n uint64) uint64 {
	sum, overflow := math.SafeAdd(n, 1)
	if overflow {
		return math.MaxUint64
	}
	return sum
}
