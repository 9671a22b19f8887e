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

// Package memdb is an in-memory kv.RwDB, backed by google/btree ordered
// maps instead of libmdbx. It is Erigon's own test harness pattern
// (swap the storage engine, keep the kv.RwDB contract identical): most
// tests in this repo open it instead of a real mdbx environment.
package memdb

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/btree"

	"github.com/erigontech/erigon-lib/kv"
)

type kvItem struct {
	key, value []byte
}

func less(a, b kvItem) bool { return bytes.Compare(a.key, b.key) < 0 }

// MemoryMutation is the in-memory kv.RwDB. A single RWMutex serializes
// writers against the one-active-write-transaction discipline real mdbx
// enforces; readers each see the table set as of BeginRo/View time via a
// cloned (O(log n) shallow) btree snapshot, so each read transaction
// observes a consistent snapshot.
type MemoryMutation struct {
	mu     sync.RWMutex
	tables map[string]*btree.BTreeG[kvItem]
}

func New() *MemoryMutation {
	m := &MemoryMutation{tables: make(map[string]*btree.BTreeG[kvItem])}
	for _, t := range kv.ChaindataTables {
		m.tables[t] = btree.NewG(32, less)
	}
	return m
}

func (m *MemoryMutation) Close() {}

func (m *MemoryMutation) View(ctx context.Context, fn func(tx kv.Tx) error) error {
	tx, err := m.BeginRo(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	return fn(tx)
}

func (m *MemoryMutation) Update(ctx context.Context, fn func(tx kv.RwTx) error) error {
	tx, err := m.BeginRw(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (m *MemoryMutation) BeginRo(_ context.Context) (kv.Tx, error) {
	m.mu.RLock()
	snapshot := m.snapshot()
	m.mu.RUnlock()
	return &memTx{db: m, tables: snapshot}, nil
}

func (m *MemoryMutation) BeginRw(_ context.Context) (kv.RwTx, error) {
	m.mu.Lock()
	snapshot := m.snapshot()
	return &memTx{db: m, tables: snapshot, rw: true}, nil
}

func (m *MemoryMutation) snapshot() map[string]*btree.BTreeG[kvItem] {
	snap := make(map[string]*btree.BTreeG[kvItem], len(m.tables))
	for name, t := range m.tables {
		snap[name] = t.Clone()
	}
	return snap
}

type memTx struct {
	db     *MemoryMutation
	tables map[string]*btree.BTreeG[kvItem]
	rw     bool
	done   bool
}

func (t *memTx) table(name string) *btree.BTreeG[kvItem] {
	bt, ok := t.tables[name]
	if !ok {
		panic("memdb: unregistered table " + name)
	}
	return bt
}

func (t *memTx) GetOne(table string, key []byte) ([]byte, bool, error) {
	var found *kvItem
	t.table(table).AscendGreaterOrEqual(kvItem{key: key}, func(it kvItem) bool {
		if bytes.Equal(it.key, key) {
			found = &it
		}
		return false
	})
	if found == nil {
		return nil, false, nil
	}
	return found.value, true, nil
}

func (t *memTx) Put(table string, key, value []byte) error {
	if !t.rw {
		panic("memdb: write on a read-only transaction")
	}
	t.table(table).ReplaceOrInsert(kvItem{key: append([]byte{}, key...), value: append([]byte{}, value...)})
	return nil
}

func (t *memTx) Delete(table string, key []byte) error {
	if !t.rw {
		panic("memdb: write on a read-only transaction")
	}
	t.table(table).Delete(kvItem{key: key})
	return nil
}

func (t *memTx) Cursor(table string) (kv.Cursor, error) {
	return &memCursor{bt: t.table(table)}, nil
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.db.tables = t.tables
	t.db.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() {
	if t.done {
		return
	}
	t.done = true
	if t.rw {
		t.db.mu.Unlock()
	}
}

type memCursor struct {
	bt      *btree.BTreeG[kvItem]
	current *kvItem
}

func (c *memCursor) Seek(seek []byte) ([]byte, []byte, bool, error) {
	var found *kvItem
	c.bt.AscendGreaterOrEqual(kvItem{key: seek}, func(it kvItem) bool {
		found = &it
		return false
	})
	c.current = found
	return itemKV(found)
}

func (c *memCursor) First() ([]byte, []byte, bool, error) {
	var found *kvItem
	c.bt.Ascend(func(it kvItem) bool {
		found = &it
		return false
	})
	c.current = found
	return itemKV(found)
}

func (c *memCursor) Next() ([]byte, []byte, bool, error) {
	if c.current == nil {
		return nil, nil, false, nil
	}
	var found *kvItem
	skip := true
	c.bt.AscendGreaterOrEqual(*c.current, func(it kvItem) bool {
		if skip {
			skip = false
			return true
		}
		found = &it
		return false
	})
	c.current = found
	return itemKV(found)
}

func (c *memCursor) Last() ([]byte, []byte, bool, error) {
	var found *kvItem
	c.bt.Descend(func(it kvItem) bool {
		found = &it
		return false
	})
	c.current = found
	return itemKV(found)
}

func (c *memCursor) Close() {}

func itemKV(it *kvItem) ([]byte, []byte, bool, error) {
	if it == nil {
		return nil, nil, false, nil
	}
	return it.key, it.value, true, nil
}
