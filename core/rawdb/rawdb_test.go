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

package rawdb

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/kv/memdb"
	"github.com/erigontech/erigon-lib/rlp"

	"github.com/erigontech/chaindata/core/types"
	"github.com/erigontech/chaindata/internal/chainfixture"
)

func TestHeaderNotFound_ReturnedAsHardError(t *testing.T) {
	db, _, err := chainfixture.Build()
	require.NoError(t, err)
	defer db.Close()

	err = db.View(context.Background(), func(tx kv.Tx) error {
		_, err := ReadCanonicalHash(tx, 999)
		require.Error(t, err)
		var target *HeaderNotFoundError
		require.ErrorAs(t, err, &target)
		return nil
	})
	require.NoError(t, err)
}

func TestHashOrNumberToNumber(t *testing.T) {
	db, hashes, err := chainfixture.Build()
	require.NoError(t, err)
	defer db.Close()

	err = db.View(context.Background(), func(tx kv.Tx) error {
		n, ok, err := HashOrNumberToNumber(tx, common.AsHash(hashes.Block1Hash))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, common.BlockNumber(1), n)

		n, ok, err = HashOrNumberToNumber(tx, common.AsNumber(7))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, common.BlockNumber(7), n)
		return nil
	})
	require.NoError(t, err)
}

func TestBestBlockNumber_AndLastCanonicalHeaderAgree(t *testing.T) {
	db, _, err := chainfixture.Build()
	require.NoError(t, err)
	defer db.Close()

	err = db.View(context.Background(), func(tx kv.Tx) error {
		best, ok, err := BestBlockNumber(tx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, common.BlockNumber(2), best)

		lastNum, _, ok, err := LastCanonicalHeader(tx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, best, lastNum)

		latest, err := IsLatest(tx, 2)
		require.NoError(t, err)
		require.True(t, latest)

		latest, err = IsLatest(tx, 1)
		require.NoError(t, err)
		require.False(t, latest)
		return nil
	})
	require.NoError(t, err)
}

// TestHeadersRange_HalfOpenAscending: a chain with headers at [0..10]
// queried over [3, 6) yields exactly [3, 4, 5] in order.
func TestHeadersRange_HalfOpenAscending(t *testing.T) {
	db := memdb.New()
	defer db.Close()

	err := db.Update(context.Background(), func(tx kv.RwTx) error {
		for n := common.BlockNumber(0); n <= 10; n++ {
			h := &types.Header{Number: n, Difficulty: big.NewInt(0)}
			if err := tx.Put(kv.Headers, kv.EncodeNumber(n), rlp.Encode(h)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var numbers []common.BlockNumber
	err = db.View(context.Background(), func(tx kv.Tx) error {
		return HeadersRange(tx, 3, 6, func(h *types.Header) (bool, error) {
			numbers = append(numbers, h.Number)
			return true, nil
		})
	})
	require.NoError(t, err)
	require.Equal(t, []common.BlockNumber{3, 4, 5}, numbers)
}
