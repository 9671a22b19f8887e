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

// Package mdbx is the production kv.RwDB, backed by libmdbx through
// github.com/erigontech/mdbx-go - the same engine Erigon itself runs on.
package mdbx

import (
	"context"
	"fmt"
	"os"

	"github.com/erigontech/mdbx-go/mdbx"
	"github.com/pkg/errors"

	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/log/v3"
)

// MdbxOpts mirrors the handful of knobs the provider core cares about;
// pruning/sync-specific tuning (map growth, read-ahead) is the pipeline's
// concern and lives outside this core.
type MdbxOpts struct {
	Path     string
	Readonly bool
	Label    string
}

type MdbxKV struct {
	env   *mdbx.Env
	log   log.Logger
	label string
}

// Open creates (or attaches to) an mdbx environment at opts.Path with one
// DBI per entry in kv.ChaindataTables.
func Open(opts MdbxOpts) (*MdbxKV, error) {
	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, errors.Wrap(err, "mdbx: new env")
	}
	if err := env.SetOption(mdbx.OptMaxDB, uint64(len(kv.ChaindataTables))); err != nil {
		return nil, errors.Wrap(err, "mdbx: set max dbs")
	}
	flags := uint(mdbx.NoReadahead | mdbx.Coalesce | mdbx.LifoReclaim)
	if opts.Readonly {
		flags |= mdbx.Readonly
	}
	if err := os.MkdirAll(opts.Path, 0o755); err != nil {
		return nil, errors.Wrap(err, "mdbx: mkdir")
	}
	if err := env.Open(opts.Path, flags, 0o644); err != nil {
		return nil, errors.Wrap(err, "mdbx: open")
	}
	db := &MdbxKV{env: env, label: opts.Label}
	if err := db.createTables(); err != nil {
		env.Close()
		return nil, err
	}
	return db, nil
}

func (db *MdbxKV) createTables() error {
	return db.env.Update(func(txn *mdbx.Txn) error {
		for _, table := range kv.ChaindataTables {
			if _, err := txn.CreateDBI(table); err != nil {
				return fmt.Errorf("create dbi %s: %w", table, err)
			}
		}
		return nil
	})
}

func (db *MdbxKV) Close() {
	db.env.Close()
}

func (db *MdbxKV) BeginRo(_ context.Context) (kv.Tx, error) {
	txn, err := db.env.BeginTxn(nil, mdbx.Readonly)
	if err != nil {
		return nil, errors.Wrap(err, "mdbx: begin ro")
	}
	return &mdbxTx{env: db.env, txn: txn}, nil
}

func (db *MdbxKV) BeginRw(_ context.Context) (kv.RwTx, error) {
	txn, err := db.env.BeginTxn(nil, 0)
	if err != nil {
		return nil, errors.Wrap(err, "mdbx: begin rw")
	}
	return &mdbxTx{env: db.env, txn: txn}, nil
}

func (db *MdbxKV) View(ctx context.Context, fn func(tx kv.Tx) error) error {
	tx, err := db.BeginRo(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	return fn(tx)
}

func (db *MdbxKV) Update(ctx context.Context, fn func(tx kv.RwTx) error) error {
	tx, err := db.BeginRw(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

type mdbxTx struct {
	env *mdbx.Env
	txn *mdbx.Txn
}

func (t *mdbxTx) dbi(table string) (mdbx.DBI, error) {
	return t.txn.OpenDBI(table, 0, nil, nil)
}

func (t *mdbxTx) GetOne(table string, key []byte) ([]byte, bool, error) {
	dbi, err := t.dbi(table)
	if err != nil {
		return nil, false, err
	}
	v, err := t.txn.Get(dbi, key)
	if mdbx.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (t *mdbxTx) Put(table string, key, value []byte) error {
	dbi, err := t.dbi(table)
	if err != nil {
		return err
	}
	return t.txn.Put(dbi, key, value, 0)
}

func (t *mdbxTx) Delete(table string, key []byte) error {
	dbi, err := t.dbi(table)
	if err != nil {
		return err
	}
	err = t.txn.Del(dbi, key, nil)
	if mdbx.IsNotFound(err) {
		return nil
	}
	return err
}

func (t *mdbxTx) Cursor(table string) (kv.Cursor, error) {
	dbi, err := t.dbi(table)
	if err != nil {
		return nil, err
	}
	c, err := t.txn.OpenCursor(dbi)
	if err != nil {
		return nil, err
	}
	return &mdbxCursor{c: c}, nil
}

func (t *mdbxTx) Commit() error {
	_, err := t.txn.Commit()
	return err
}

func (t *mdbxTx) Rollback() {
	t.txn.Abort()
}

type mdbxCursor struct {
	c *mdbx.Cursor
}

func (c *mdbxCursor) Seek(seek []byte) ([]byte, []byte, bool, error) {
	k, v, err := c.c.Get(seek, nil, mdbx.SetRange)
	return returnKV(k, v, err)
}

func (c *mdbxCursor) First() ([]byte, []byte, bool, error) {
	k, v, err := c.c.Get(nil, nil, mdbx.First)
	return returnKV(k, v, err)
}

func (c *mdbxCursor) Next() ([]byte, []byte, bool, error) {
	k, v, err := c.c.Get(nil, nil, mdbx.Next)
	return returnKV(k, v, err)
}

func (c *mdbxCursor) Last() ([]byte, []byte, bool, error) {
	k, v, err := c.c.Get(nil, nil, mdbx.Last)
	return returnKV(k, v, err)
}

func (c *mdbxCursor) Close() { c.c.Close() }

func returnKV(k, v []byte, err error) ([]byte, []byte, bool, error) {
	if mdbx.IsNotFound(err) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	return k, v, true, nil
}
