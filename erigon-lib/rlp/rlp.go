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

// Package rlp is a recursive-length-prefix codec (kept independent of
// go-ethereum's), used to give every on-disk table value in core/types a
// canonical byte encoding and to compute RLP hashes.
package rlp

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Encoder is implemented by table values (headers, transactions,
// receipts, withdrawals, ...) that know how to lay themselves out as a
// sequence of RLP string/list items via the Writer below.
type Encoder interface {
	EncodeRLP(w *Writer)
}

// Decoder is the inverse of Encoder.
type Decoder interface {
	DecodeRLP(r *Reader) error
}

// Writer accumulates a single top-level RLP list. Nested lists are
// produced by List/EndList pairs.
type Writer struct {
	buf   []byte
	stack []int // start offsets of open lists
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, encodeString(b)...)
}

func (w *Writer) WriteUint64(v uint64) {
	w.WriteBytes(uint64ToMinimalBytes(v))
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteBytes([]byte{1})
	} else {
		w.WriteBytes(nil)
	}
}

func (w *Writer) List() {
	w.stack = append(w.stack, len(w.buf))
}

func (w *Writer) EndList() {
	n := len(w.stack)
	start := w.stack[n-1]
	w.stack = w.stack[:n-1]
	payload := append([]byte{}, w.buf[start:]...)
	w.buf = append(w.buf[:start], encodeList(payload)...)
}

// Bytes returns the encoded buffer; call after closing every List().
func (w *Writer) Bytes() []byte { return w.buf }

func encodeString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	return append(encodeHeader(0x80, 0xb7, len(b)), b...)
}

func encodeList(payload []byte) []byte {
	return append(encodeHeader(0xc0, 0xf7, len(payload)), payload...)
}

func encodeHeader(short, longBase byte, n int) []byte {
	if n < 56 {
		return []byte{short + byte(n)}
	}
	lenBytes := uint64ToMinimalBytes(uint64(n))
	return append([]byte{longBase + byte(len(lenBytes))}, lenBytes...)
}

func uint64ToMinimalBytes(v uint64) []byte {
	if v == 0 {
		return nil
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	i := 0
	for i < 8 && tmp[i] == 0 {
		i++
	}
	return tmp[i:]
}

// Reader walks a previously-encoded buffer. It is a minimal, allocation
// light cursor sufficient for the fixed-shape table values this repo
// encodes (headers, transactions, receipts, withdrawals); it is not a
// general-purpose RLP decoder for untrusted wire input.
type Reader struct {
	buf  []byte
	pos  int
	ends []int // exclusive end offsets of entered lists, innermost last
}

func NewReader(b []byte) *Reader { return &Reader{buf: b} }

func (r *Reader) EnterList() error {
	if r.pos >= len(r.buf) {
		return io.ErrUnexpectedEOF
	}
	b := r.buf[r.pos]
	if b < 0xc0 {
		return fmt.Errorf("rlp: expected list, got string tag %#x", b)
	}
	_, contentStart, size, err := r.header()
	if err != nil {
		return err
	}
	r.pos = contentStart
	r.ends = append(r.ends, contentStart+size)
	return nil
}

// LeaveList closes the innermost entered list, skipping any of its bytes
// the caller did not read.
func (r *Reader) LeaveList() {
	if n := len(r.ends); n > 0 {
		r.pos = r.ends[n-1]
		r.ends = r.ends[:n-1]
	}
}

func (r *Reader) ReadBytes() ([]byte, error) {
	tag, contentStart, size, err := r.header()
	if err != nil {
		return nil, err
	}
	if tag >= 0xc0 {
		return nil, fmt.Errorf("rlp: expected string, got list tag %#x", tag)
	}
	r.pos = contentStart + size
	if tag < 0x80 {
		return []byte{tag}, nil
	}
	if size == 0 {
		return nil, nil
	}
	return r.buf[contentStart : contentStart+size], nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// More reports whether the innermost entered list has bytes left to
// read, the way go-ethereum's rlp.Stream.MoreDataInList lets decoders
// detect optional trailing fields without a schema.
func (r *Reader) More() bool {
	if n := len(r.ends); n > 0 {
		return r.pos < r.ends[n-1]
	}
	return r.pos < len(r.buf)
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return false, err
	}
	return len(b) == 1 && b[0] == 1, nil
}

// header returns the tag byte, the offset where the content begins, and
// the content length, without advancing r.pos.
func (r *Reader) header() (tag byte, contentStart int, size int, err error) {
	if r.pos >= len(r.buf) {
		return 0, 0, 0, io.ErrUnexpectedEOF
	}
	tag = r.buf[r.pos]
	switch {
	case tag < 0x80:
		return tag, r.pos, 1, nil
	case tag < 0xb8:
		size = int(tag - 0x80)
		return tag, r.pos + 1, size, nil
	case tag < 0xc0:
		lenOfLen := int(tag - 0xb7)
		size = int(beUint(r.buf[r.pos+1 : r.pos+1+lenOfLen]))
		return tag, r.pos + 1 + lenOfLen, size, nil
	case tag < 0xf8:
		size = int(tag - 0xc0)
		return tag, r.pos + 1, size, nil
	default:
		lenOfLen := int(tag - 0xf7)
		size = int(beUint(r.buf[r.pos+1 : r.pos+1+lenOfLen]))
		return tag, r.pos + 1 + lenOfLen, size, nil
	}
}

func beUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// Encode runs e through a fresh Writer and returns the encoded bytes.
func Encode(e Encoder) []byte {
	w := NewWriter()
	w.List()
	e.EncodeRLP(w)
	w.EndList()
	return w.Bytes()
}

// EncodeTo writes e's RLP encoding to dst, matching the go-ethereum style
// `rlp.Encode(io.Writer, interface{})` call shape used by rlpHash helpers.
func EncodeTo(dst io.Writer, e Encoder) error {
	_, err := dst.Write(Encode(e))
	return err
}

// Decode reads d's fields from a previously-encoded buffer.
func Decode(b []byte, d Decoder) error {
	r := NewReader(b)
	if err := r.EnterList(); err != nil {
		return err
	}
	return d.DecodeRLP(r)
}
