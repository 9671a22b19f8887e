// Copyright 2021 The go-ethereum Authors
// (original work)
// Copyright 2024 The Erigon Authors
// (modifications)
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

package misc

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-lib/chain"
	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/chaindata/core/types"
)

func cancunHeader(blobGasUsed, excessBlobGas uint64) *types.Header {
	root := libcommon.Hash{1}
	return &types.Header{
		BlobGasUsed:           &blobGasUsed,
		ExcessBlobGas:         &excessBlobGas,
		ParentBeaconBlockRoot: &root,
	}
}

func TestCalcExcessBlobGas_BelowTargetIsZero(t *testing.T) {
	cfg := &chain.Config{}
	used := uint64(1000)
	excess := uint64(0)
	parent := &types.Header{BlobGasUsed: &used, ExcessBlobGas: &excess}
	require.Equal(t, uint64(0), CalcExcessBlobGas(cfg, parent, 0))
}

func TestCalcExcessBlobGas_AboveTargetAccumulates(t *testing.T) {
	cfg := &chain.Config{TargetBlobGasPerBlock: 100}
	used := uint64(150)
	excess := uint64(50)
	parent := &types.Header{BlobGasUsed: &used, ExcessBlobGas: &excess}
	require.Equal(t, uint64(100), CalcExcessBlobGas(cfg, parent, 0))
}

func TestCalcExcessBlobGas_NilParentFieldsTreatedAsZero(t *testing.T) {
	cfg := &chain.Config{}
	parent := &types.Header{}
	require.Equal(t, uint64(0), CalcExcessBlobGas(cfg, parent, 0))
}

func TestFakeExponential_ZeroExcessIsFactor(t *testing.T) {
	out, err := FakeExponential(uint256.NewInt(1), uint256.NewInt(1), 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1), out.Uint64())
}

func TestVerifyPresenceOfCancunHeaderFields(t *testing.T) {
	require.NoError(t, VerifyPresenceOfCancunHeaderFields(cancunHeader(0, 0)))
	require.Error(t, VerifyPresenceOfCancunHeaderFields(&types.Header{}))
}

func TestVerifyAbsenceOfCancunHeaderFields(t *testing.T) {
	require.NoError(t, VerifyAbsenceOfCancunHeaderFields(&types.Header{}))
	require.Error(t, VerifyAbsenceOfCancunHeaderFields(cancunHeader(0, 0)))
}

func TestVerifyBscPresenceOfCancunHeaderFields_RequiresEmptyWithdrawalsHash(t *testing.T) {
	h := cancunHeader(0, 0)
	h.ParentBeaconBlockRoot = nil
	h.WithdrawalsHash = &types.EmptyRootHash
	require.NoError(t, VerifyBscPresenceOfCancunHeaderFields(h))

	wrong := libcommon.Hash{9}
	h.WithdrawalsHash = &wrong
	require.Error(t, VerifyBscPresenceOfCancunHeaderFields(h))
}

func TestVerifyPresenceOfBohrHeaderFields_RequiresZeroBeaconRoot(t *testing.T) {
	h := cancunHeader(0, 0)
	zero := libcommon.Hash{}
	h.ParentBeaconBlockRoot = &zero
	h.WithdrawalsHash = &types.EmptyRootHash
	require.NoError(t, VerifyPresenceOfBohrHeaderFields(h))

	nonZero := libcommon.Hash{7}
	h.ParentBeaconBlockRoot = &nonZero
	require.Error(t, VerifyPresenceOfBohrHeaderFields(h))
}

func TestGetBlobGasUsed(t *testing.T) {
	require.Equal(t, uint64(0), GetBlobGasUsed(0))
	require.Equal(t, uint64(131072), GetBlobGasUsed(1))
}

func TestGetBlobGasPrice(t *testing.T) {
	cfg := &chain.Config{}
	price, err := GetBlobGasPrice(cfg, 0, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1), price.Uint64())
}
