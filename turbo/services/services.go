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

// Package services declares the narrow capability interfaces the chain
// provider facade satisfies. Callers (RPC handlers, the EVM executor, the
// sync pipeline) depend on whichever slice they need rather than the
// whole facade - the same trait-style split Erigon's turbo/services
// package uses for BlockReader/HeaderReader/etc, rather than one
// mega-interface.
package services

import (
	"context"

	"github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/chaindata/core/types"
)

type HeaderReader interface {
	Header(ctx context.Context, hash common.Hash) (*types.Header, bool, error)
	HeaderByNumber(ctx context.Context, number common.BlockNumber) (*types.Header, bool, error)
	HeaderTD(ctx context.Context, hash common.Hash) (*types.TotalDifficulty, bool, error)
	HeaderTDByNumber(ctx context.Context, number common.BlockNumber) (*types.TotalDifficulty, bool, error)
	HeadersRange(ctx context.Context, from, to common.BlockNumber) ([]*types.Header, error)
	SealedHeadersRange(ctx context.Context, from, to common.BlockNumber) ([]*types.SealedHeader, error)
	SealedHeader(ctx context.Context, number common.BlockNumber) (*types.SealedHeader, bool, error)
}

type CanonicalReader interface {
	BlockHash(ctx context.Context, number common.BlockNumber) (common.Hash, bool, error)
	CanonicalHashesRange(ctx context.Context, from, to common.BlockNumber) ([]common.Hash, error)
	BestBlockNumber(ctx context.Context) (common.BlockNumber, error)
	BlockNumber(ctx context.Context, hash common.Hash) (common.BlockNumber, bool, error)
}

type ChainInfoReader interface {
	ChainInfo(ctx context.Context) (common.ChainInfo, error)
}

type BlockReader interface {
	FindBlockByHash(ctx context.Context, hash common.Hash, fromDatabase bool) (*types.Block, bool, error)
	Block(ctx context.Context, ref common.BlockHashOrNumber) (*types.Block, bool, error)
	PendingBlock(ctx context.Context) (*types.Block, bool, error)
	Ommers(ctx context.Context, ref common.BlockHashOrNumber) ([]*types.Header, bool, error)
}

type TransactionReader interface {
	TransactionID(ctx context.Context, hash common.Hash) (common.TxNumber, bool, error)
	TransactionByID(ctx context.Context, id common.TxNumber) (*types.Transaction, bool, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionByHashWithMeta(ctx context.Context, hash common.Hash) (*types.Transaction, *types.TransactionMeta, bool, error)
	TransactionBlock(ctx context.Context, id common.TxNumber) (common.BlockNumber, bool, error)
	TransactionsByBlock(ctx context.Context, ref common.BlockHashOrNumber) ([]*types.Transaction, bool, error)
	TransactionsByBlockRange(ctx context.Context, from, to common.BlockNumber) ([][]*types.Transaction, error)
}

type ReceiptReader interface {
	Receipt(ctx context.Context, id common.TxNumber) (*types.Receipt, bool, error)
	ReceiptByHash(ctx context.Context, hash common.Hash) (*types.Receipt, bool, error)
	ReceiptsByBlock(ctx context.Context, ref common.BlockHashOrNumber) ([]*types.Receipt, bool, error)
}

type WithdrawalReader interface {
	WithdrawalsByBlock(ctx context.Context, ref common.BlockHashOrNumber, timestamp uint64) ([]*types.Withdrawal, bool, error)
	LatestWithdrawal(ctx context.Context) (*types.Withdrawal, bool, error)
}

type StageCheckpointReader interface {
	GetStageCheckpoint(ctx context.Context, stageID string) ([]byte, bool, error)
}

// FullChainReader is the union of every capability, for call sites (like
// tests) that genuinely need all of them; production code should depend
// on the narrowest interface that covers its use.
type FullChainReader interface {
	HeaderReader
	CanonicalReader
	ChainInfoReader
	BlockReader
	TransactionReader
	ReceiptReader
	WithdrawalReader
	StageCheckpointReader
}
