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

package types

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/rlp"
)

func legacyHeader() *Header {
	return &Header{
		ParentHash: common.Hash{1},
		UncleHash:  EmptyRootHash,
		Coinbase:   common.Address{2},
		Difficulty: big.NewInt(131072),
		Number:     9,
		GasLimit:   30_000_000,
		GasUsed:    21_000,
		Time:       100,
		Extra:      []byte("extra"),
		Nonce:      0,
	}
}

func TestHeaderRLPRoundTrip_PreLondon(t *testing.T) {
	h := legacyHeader()
	enc := rlp.Encode(h)

	got := &Header{}
	require.NoError(t, rlp.Decode(enc, got))
	require.Equal(t, h.ParentHash, got.ParentHash)
	require.Equal(t, h.Number, got.Number)
	require.Equal(t, h.GasLimit, got.GasLimit)
	require.Equal(t, h.Extra, got.Extra)
	require.Nil(t, got.BaseFeePerGas)
	require.Nil(t, got.WithdrawalsHash)
	require.Nil(t, got.BlobGasUsed)
	require.Nil(t, got.ExcessBlobGas)
	require.Nil(t, got.ParentBeaconBlockRoot)
}

// TestHeaderRLPRoundTrip_PostCancun exercises the full fork-field tail:
// every optional trailing field DecodeRLP must recover what EncodeRLP
// wrote, matching VerifyPresenceOfCancunHeaderFields's expectations.
func TestHeaderRLPRoundTrip_PostCancun(t *testing.T) {
	h := legacyHeader()
	h.BaseFeePerGas = uint256.NewInt(7)
	wh := common.Hash{3}
	h.WithdrawalsHash = &wh
	blobUsed := uint64(131072)
	h.BlobGasUsed = &blobUsed
	excess := uint64(0)
	h.ExcessBlobGas = &excess
	root := common.Hash{4}
	h.ParentBeaconBlockRoot = &root

	enc := rlp.Encode(h)
	got := &Header{}
	require.NoError(t, rlp.Decode(enc, got))

	require.NotNil(t, got.BaseFeePerGas)
	require.Equal(t, h.BaseFeePerGas.Uint64(), got.BaseFeePerGas.Uint64())
	require.Equal(t, *h.WithdrawalsHash, *got.WithdrawalsHash)
	require.Equal(t, *h.BlobGasUsed, *got.BlobGasUsed)
	require.Equal(t, *h.ExcessBlobGas, *got.ExcessBlobGas)
	require.Equal(t, *h.ParentBeaconBlockRoot, *got.ParentBeaconBlockRoot)
}

// TestHeaderRLPRoundTrip_ShanghaiOnly checks a header with only the
// withdrawals hash set (Shanghai, pre-Cancun): the later Cancun fields
// must come back nil, not zero-valued garbage.
func TestHeaderRLPRoundTrip_ShanghaiOnly(t *testing.T) {
	h := legacyHeader()
	h.BaseFeePerGas = uint256.NewInt(3)
	wh := common.Hash{9}
	h.WithdrawalsHash = &wh

	enc := rlp.Encode(h)
	got := &Header{}
	require.NoError(t, rlp.Decode(enc, got))
	require.Equal(t, *h.WithdrawalsHash, *got.WithdrawalsHash)
	require.Nil(t, got.BlobGasUsed)
	require.Nil(t, got.ExcessBlobGas)
	require.Nil(t, got.ParentBeaconBlockRoot)
}

func TestHeaderHashIsStableAcrossRoundTrip(t *testing.T) {
	h := legacyHeader()
	wantHash := h.Hash()

	enc := rlp.Encode(h)
	got := &Header{}
	require.NoError(t, rlp.Decode(enc, got))
	require.Equal(t, wantHash, got.Hash())
}

func TestTotalDifficultyRLPRoundTrip(t *testing.T) {
	td := &TotalDifficulty{Int: uint256.NewInt(123456789)}
	enc := rlp.Encode(td)
	got := &TotalDifficulty{}
	require.NoError(t, rlp.Decode(enc, got))
	require.True(t, td.Int.Eq(got.Int))
}

func TestTransactionRLPRoundTrip_Legacy(t *testing.T) {
	to := common.Address{5}
	tx := &Transaction{
		Type:     LegacyTxType,
		Nonce:    4,
		GasPrice: uint256.NewInt(7_000_000_000),
		Gas:      21_000,
		To:       &to,
		Value:    uint256.NewInt(1),
		Data:     []byte{0xaa, 0xbb},
		V:        uint256.NewInt(27),
		R:        uint256.NewInt(111),
		S:        uint256.NewInt(222),
	}
	enc := rlp.Encode(tx)
	got := &Transaction{}
	require.NoError(t, rlp.Decode(enc, got))
	require.Equal(t, tx.Nonce, got.Nonce)
	require.Equal(t, tx.GasPrice.Uint64(), got.GasPrice.Uint64())
	require.Equal(t, *tx.To, *got.To)
	require.Equal(t, tx.Data, got.Data)
	require.Equal(t, tx.Hash(), got.Hash())
}

func TestTransactionRLPRoundTrip_DynamicFeeContractCreation(t *testing.T) {
	tx := &Transaction{
		Type:      DynamicFeeTxType,
		Nonce:     0,
		GasTipCap: uint256.NewInt(1),
		GasFeeCap: uint256.NewInt(10),
		Gas:       100_000,
		To:        nil,
		Value:     uint256.NewInt(0),
		V:         uint256.NewInt(0),
		R:         uint256.NewInt(1),
		S:         uint256.NewInt(1),
	}
	enc := rlp.Encode(tx)
	got := &Transaction{}
	require.NoError(t, rlp.Decode(enc, got))
	require.Nil(t, got.To)
	require.Equal(t, tx.GasTipCap.Uint64(), got.GasTipCap.Uint64())
	require.Equal(t, tx.GasFeeCap.Uint64(), got.GasFeeCap.Uint64())
}

func TestReceiptRLPRoundTrip_WithLogs(t *testing.T) {
	r := &Receipt{
		Type:              0,
		PostStateOrStatus: []byte{1},
		CumulativeGasUsed: 50_000,
		TxHash:            common.Hash{6},
		Logs: []*Log{
			{Address: common.Address{7}, Topics: []common.Hash{{8}, {9}}, Data: []byte("log-data")},
		},
	}
	enc := rlp.Encode(r)
	got := &Receipt{}
	require.NoError(t, rlp.Decode(enc, got))
	require.Equal(t, r.CumulativeGasUsed, got.CumulativeGasUsed)
	require.Len(t, got.Logs, 1)
	require.Equal(t, r.Logs[0].Address, got.Logs[0].Address)
	require.Equal(t, r.Logs[0].Topics, got.Logs[0].Topics)
	require.Equal(t, r.Logs[0].Data, got.Logs[0].Data)
	require.True(t, got.Successful())
}

func TestReceiptSuccessfulFalseForPreByzantiumRoot(t *testing.T) {
	r := &Receipt{PostStateOrStatus: common.Hash{1}.Bytes()}
	require.False(t, r.Successful())
}

func TestWithdrawalRLPRoundTrip(t *testing.T) {
	w := &Withdrawal{Index: 1, ValidatorIndex: 2, Address: common.Address{3}, Amount: 4_000_000}
	enc := rlp.Encode(w)
	got := &Withdrawal{}
	require.NoError(t, rlp.Decode(enc, got))
	require.Equal(t, w, got)
}

func TestBlockBodyIndicesRLPRoundTrip(t *testing.T) {
	bi := BlockBodyIndices{FirstTxNum: 10, TxCount: 3}
	enc := rlp.Encode(bi)
	got := &BlockBodyIndices{}
	require.NoError(t, rlp.Decode(enc, got))
	require.Equal(t, bi, *got)
	from, to := got.TxNumRange()
	require.Equal(t, uint64(10), from)
	require.Equal(t, uint64(13), to)
	require.False(t, got.Empty())
}

func TestEncodeDecodeOmmersRLP_EmptyVsAbsent(t *testing.T) {
	enc := EncodeOmmersRLP([]*Header{})
	got, err := DecodeOmmersRLP(enc)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestEncodeDecodeOmmersRLP_RoundTrip(t *testing.T) {
	h1 := legacyHeader()
	h2 := legacyHeader()
	h2.Number = 8
	enc := EncodeOmmersRLP([]*Header{h1, h2})
	got, err := DecodeOmmersRLP(enc)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, h1.Hash(), got[0].Hash())
	require.Equal(t, h2.Hash(), got[1].Hash())
}

func TestEncodeDecodeWithdrawalsRLP_RoundTrip(t *testing.T) {
	ws := []*Withdrawal{
		{Index: 1, ValidatorIndex: 1, Address: common.Address{1}, Amount: 10},
		{Index: 2, ValidatorIndex: 2, Address: common.Address{2}, Amount: 20},
	}
	enc := EncodeWithdrawalsRLP(ws)
	got, err := DecodeWithdrawalsRLP(enc)
	require.NoError(t, err)
	require.Equal(t, ws, got)
}

func TestBlockHashDelegatesToHeader(t *testing.T) {
	h := legacyHeader()
	blk := &Block{Header: h, Body: &Body{}}
	require.Equal(t, h.Hash(), blk.Hash())
	require.Equal(t, h.Number, blk.Number())
}
