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

// Package state builds the two state-view providers the EVM executor
// reads account and storage state through: a LatestStateProvider reading
// straight off the live tables, and a HistoricalStateProvider reading as
// of a changeset cutover.
package state

import (
	"context"

	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/erigontech/chaindata/core/rawdb"
)

// StateProvider is satisfied by both views; callers branch on nothing -
// the choice of live vs. historical reads is resolved once, at
// construction, and is invisible afterward.
type StateProvider interface {
	Tx() kv.Tx
	Close()
}

// LatestStateProvider reads directly off the tip: its tx is a live
// snapshot taken at construction time.
type LatestStateProvider struct {
	tx kv.Tx
}

func (s *LatestStateProvider) Tx() kv.Tx { return s.tx }
func (s *LatestStateProvider) Close()    { s.tx.Rollback() }

// HistoricalStateProvider reads as of the snapshot following block N: the
// changesets with key >= changesetFrom record what later blocks
// overwrote, and are the ones a reader applies, walking backward from the
// tip, to roll live state back to this view.
type HistoricalStateProvider struct {
	tx            kv.Tx
	changesetFrom common.TxNumber
}

func (s *HistoricalStateProvider) Tx() kv.Tx                      { return s.tx }
func (s *HistoricalStateProvider) Close()                         { s.tx.Rollback() }
func (s *HistoricalStateProvider) ChangesetFrom() common.TxNumber { return s.changesetFrom }

// Factory opens the read transactions Latest/HistoryByBlockNumber/
// HistoryByBlockHash hand back, each freshly split off db per call.
type Factory struct {
	db  kv.RoDB
	log *log.Logger
}

func NewFactory(db kv.RoDB) *Factory {
	return &Factory{db: db, log: log.New("component", "state-factory")}
}

func (f *Factory) Latest(ctx context.Context) (*LatestStateProvider, error) {
	tx, err := f.db.BeginRo(ctx)
	if err != nil {
		return nil, err
	}
	f.log.Trace("opening latest state view")
	return &LatestStateProvider{tx: tx}, nil
}

// HistoryByBlockNumber returns a LatestStateProvider if n is the best
// block (by the dual-oracle IsLatest check), otherwise a
// HistoricalStateProvider rooted at changeset key n+1. The +1 is
// load-bearing: the changeset at height k records what block k
// overwrote, so a view as of the end of block n needs changesets
// numbered >= n+1. The offset lives here and only here, never at call
// sites.
func (f *Factory) HistoryByBlockNumber(ctx context.Context, n common.BlockNumber) (StateProvider, error) {
	tx, err := f.db.BeginRo(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := rawdb.IsLatest(tx, n)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if latest {
		f.log.Trace("opening latest state view", "block", n)
		return &LatestStateProvider{tx: tx}, nil
	}
	f.log.Trace("opening historical state view", "block", n, "changesetFrom", kv.NextNumber(n))
	return &HistoricalStateProvider{tx: tx, changesetFrom: kv.NextNumber(n)}, nil
}

// HistoryByBlockHash resolves hash via HeaderNumbers, failing hard with
// BlockHashNotFoundError if unknown, then proceeds as
// HistoryByBlockNumber.
func (f *Factory) HistoryByBlockHash(ctx context.Context, hash common.Hash) (StateProvider, error) {
	var number common.BlockNumber
	var ok bool
	err := f.db.View(ctx, func(tx kv.Tx) error {
		var err error
		number, ok, err = rawdb.HashOrNumberToNumber(tx, common.AsHash(hash))
		return err
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &rawdb.BlockHashNotFoundError{Hash: hash}
	}
	f.log.Trace("resolved state view hash", "hash", hash, "block", number)
	return f.HistoryByBlockNumber(ctx, number)
}
