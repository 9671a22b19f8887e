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

package memdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-lib/kv"
)

func TestPutGetRoundTrip(t *testing.T) {
	db := New()
	defer db.Close()

	err := db.Update(context.Background(), func(tx kv.RwTx) error {
		return tx.Put(kv.Headers, kv.EncodeNumber(1), []byte("hello"))
	})
	require.NoError(t, err)

	err = db.View(context.Background(), func(tx kv.Tx) error {
		v, ok, err := tx.GetOne(kv.Headers, kv.EncodeNumber(1))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []byte("hello"), v)
		return nil
	})
	require.NoError(t, err)
}

func TestViewSeesSnapshotNotLaterWrites(t *testing.T) {
	db := New()
	defer db.Close()

	roTx, err := db.BeginRo(context.Background())
	require.NoError(t, err)
	defer roTx.Rollback()

	require.NoError(t, db.Update(context.Background(), func(tx kv.RwTx) error {
		return tx.Put(kv.Headers, kv.EncodeNumber(1), []byte("late"))
	}))

	_, ok, err := roTx.GetOne(kv.Headers, kv.EncodeNumber(1))
	require.NoError(t, err)
	require.False(t, ok, "a read tx opened before the write must not observe it")
}

func TestCursorWalksAscending(t *testing.T) {
	db := New()
	defer db.Close()

	require.NoError(t, db.Update(context.Background(), func(tx kv.RwTx) error {
		for _, n := range []uint64{3, 1, 2} {
			if err := tx.Put(kv.CanonicalHeader, kv.EncodeNumber(n), []byte{byte(n)}); err != nil {
				return err
			}
		}
		return nil
	}))

	var seen []uint64
	require.NoError(t, db.View(context.Background(), func(tx kv.Tx) error {
		return kv.WalkRange(tx, kv.CanonicalHeader, nil, nil, func(k, _ []byte) (bool, error) {
			seen = append(seen, kv.DecodeNumber(k))
			return true, nil
		})
	}))
	require.Equal(t, []uint64{1, 2, 3}, seen)
}

func TestGetOneMissingIsSoftMiss(t *testing.T) {
	db := New()
	defer db.Close()

	err := db.View(context.Background(), func(tx kv.Tx) error {
		_, ok, err := tx.GetOne(kv.Headers, kv.EncodeNumber(99))
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}
