// Copyright 2024 The Erigon Authors
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

package rlp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fixedPair struct {
	A uint64
	B []byte
}

func (p *fixedPair) EncodeRLP(w *Writer) {
	w.WriteUint64(p.A)
	w.WriteBytes(p.B)
}

func (p *fixedPair) DecodeRLP(r *Reader) error {
	var err error
	if p.A, err = r.ReadUint64(); err != nil {
		return err
	}
	if p.B, err = r.ReadBytes(); err != nil {
		return err
	}
	return nil
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []*fixedPair{
		{A: 0, B: nil},
		{A: 1, B: []byte("x")},
		{A: 127, B: []byte("short")},
		{A: 128, B: []byte("a string longer than fifty-five bytes to force the long-form string header path")},
		{A: 1 << 40, B: make([]byte, 60)},
	}
	for _, c := range cases {
		enc := Encode(c)
		got := &fixedPair{}
		require.NoError(t, Decode(enc, got))
		require.Equal(t, c.A, got.A)
		require.Equal(t, c.B, got.B)
	}
}

func TestWriteUint64ZeroIsEmptyString(t *testing.T) {
	w := NewWriter()
	w.WriteUint64(0)
	// a zero value round-trips to 0x80, the empty-string tag, per the
	// canonical RLP rule that integers drop leading zero bytes entirely.
	require.Equal(t, []byte{0x80}, w.Bytes())
}

func TestReadBytesSingleByteUnderEightyIsNotLengthPrefixed(t *testing.T) {
	w := NewWriter()
	w.WriteBytes([]byte{0x42})
	require.Equal(t, []byte{0x42}, w.Bytes())

	r := NewReader(w.Bytes())
	got, err := r.ReadBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0x42}, got)
}

func TestNestedListRoundTrip(t *testing.T) {
	w := NewWriter()
	w.List()
	w.WriteUint64(1)
	w.List()
	w.WriteUint64(2)
	w.WriteUint64(3)
	w.EndList()
	w.EndList()

	r := NewReader(w.Bytes())
	require.NoError(t, r.EnterList())
	v1, err := r.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(1), v1)

	require.NoError(t, r.EnterList())
	v2, err := r.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(2), v2)
	v3, err := r.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(3), v3)
}

func TestMoreDetectsTrailingOptionalFields(t *testing.T) {
	enc := Encode(&fixedPair{A: 9, B: []byte("y")})
	r := NewReader(enc)
	require.NoError(t, r.EnterList())
	_, err := r.ReadUint64()
	require.NoError(t, err)
	require.True(t, r.More())
	_, err = r.ReadBytes()
	require.NoError(t, err)
	require.False(t, r.More())
}

func TestDecodeTruncatedBufferErrors(t *testing.T) {
	enc := Encode(&fixedPair{A: 1, B: []byte("z")})
	got := &fixedPair{}
	err := Decode(enc[:len(enc)-2], got)
	require.Error(t, err)
}
