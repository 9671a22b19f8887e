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

// Package kv is the transactional store abstraction:
// a typed, ordered key-value interface with read cursors, implemented by
// kv/mdbx (production, backed by github.com/erigontech/mdbx-go) and
// kv/memdb (in-memory, backed by github.com/google/btree, used in tests).
package kv

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
)

// DatabaseError wraps failures surfaced by GetOne and WalkRange. The
// provider facade returns it unchanged and defines no error kind of its
// own; errors from a direct Tx.Cursor call or from opening a transaction
// are not wrapped in it.
type DatabaseError struct {
	Op    string
	Table string
	Err   error
}

func (e *DatabaseError) Error() string {
	return "db: " + e.Op + " " + e.Table + ": " + e.Err.Error()
}

func (e *DatabaseError) Unwrap() error { return e.Err }

func wrapErr(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&DatabaseError{Op: op, Table: table, Err: err})
}

// Tx is a read-only transaction: a consistent snapshot over every table.
// A Tx is released by the caller (Rollback) on every exit path,
// including error paths; cursors never outlive it.
type Tx interface {
	// GetOne returns the value for key in table, and whether it exists.
	GetOne(table string, key []byte) (value []byte, ok bool, err error)
	// Cursor opens a read cursor over table.
	Cursor(table string) (Cursor, error)
	Rollback()
}

// RwTx additionally allows mutation; the provider core never type-asserts
// down to it (reads only), but kv/mdbx and kv/memdb need it to load
// fixtures in tests and, in mdbx's case, to back a real read-write engine.
type RwTx interface {
	Tx
	Put(table string, key, value []byte) error
	Delete(table string, key []byte) error
	Commit() error
}

// Cursor walks a single table in key order.
type Cursor interface {
	// Seek returns the first entry with key >= seek, or ok=false if none.
	Seek(seek []byte) (key, value []byte, ok bool, err error)
	// First returns the lexicographically first entry.
	First() (key, value []byte, ok bool, err error)
	// Next returns the entry after the cursor's current position.
	Next() (key, value []byte, ok bool, err error)
	// Last returns the lexicographically last entry.
	Last() (key, value []byte, ok bool, err error)
	Close()
}

// RoDB hands out read transactions. Every provider-facade method opens
// its own, via View for scoped reads or BeginRo for a held snapshot.
type RoDB interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	BeginRo(ctx context.Context) (Tx, error)
}

// RwDB additionally allows opening a read-write transaction; implemented
// by kv/mdbx and kv/memdb so tests and fixture loaders can populate a
// store the provider then reads back through the RoDB-only surface.
type RwDB interface {
	RoDB
	Update(ctx context.Context, fn func(tx RwTx) error) error
	BeginRw(ctx context.Context) (RwTx, error)
	Close()
}

// WalkRange streams every (key, value) pair in table with fromKey <= key
// < toKey (toKey == nil means unbounded above), ascending, stopping and
// returning the first error encountered. It is the building block
// underneath every rawdb and provider range read.
func WalkRange(tx Tx, table string, fromKey, toKey []byte, fn func(k, v []byte) (bool, error)) error {
	c, err := tx.Cursor(table)
	if err != nil {
		return wrapErr("cursor", table, err)
	}
	defer c.Close()

	var k, v []byte
	var ok bool
	if fromKey == nil {
		k, v, ok, err = c.First()
	} else {
		k, v, ok, err = c.Seek(fromKey)
	}
	if err != nil {
		return wrapErr("seek", table, err)
	}
	for ok {
		if toKey != nil && bytes.Compare(k, toKey) >= 0 {
			return nil
		}
		cont, ferr := fn(k, v)
		if ferr != nil {
			return ferr
		}
		if !cont {
			return nil
		}
		k, v, ok, err = c.Next()
		if err != nil {
			return wrapErr("next", table, err)
		}
	}
	return nil
}

// GetOne is a thin, error-wrapping helper over Tx.GetOne so call sites
// stay one line per table read.
func GetOne(tx Tx, table string, key []byte) ([]byte, bool, error) {
	v, ok, err := tx.GetOne(table, key)
	if err != nil {
		return nil, false, wrapErr("get", table, err)
	}
	return v, ok, nil
}
