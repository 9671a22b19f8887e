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

package kv

import "sort"

// DBSchemaVersion versions list
// 1.0 - split off from the wider Erigon table set: this schema only
//
//	carries the tables the read-only chain data provider core needs.
var DBSchemaVersion = struct{ Major, Minor, Patch uint32 }{Major: 1, Minor: 0, Patch: 0}

// Table name constants, with their key/value shapes:
//
//	HeaderNumber  - header_hash -> header_num_u64. Includes every known
//	                header (canonical or not); callers requiring
//	                canonicity must cross-check against CanonicalHeader.
//	CanonicalHeader - block_num_u64 -> header hash. The authoritative
//	                "what hash lives at this height".
//	Headers       - block_num_u64 -> header (RLP).
//	HeaderTD      - block_num_u64 -> total difficulty (RLP uint256).
//	BlockBodyIndices - block_num_u64 -> {first_tx_num, tx_count}, the
//	                half-open transaction-number range owned by the block.
//	EthTx         - tx_num_u64 -> rlp(transaction). Keys are dense and
//	                global across the canonical chain.
//	TxHashNumber  - tx_hash -> tx_num_u64.
//	TransactionBlock - tx_num_u64 -> block_num_u64. Range-encoded: only
//	                the last tx-number of each block has an entry; point
//	                lookups are a Seek(>=id).
//	Receipts      - tx_num_u64 -> rlp(receipt). Same numbering as EthTx.
//	BlockOmmers   - block_num_u64 -> rlp([]Header). Expected absent
//	                post-Shanghai.
//	BlockWithdrawals - block_num_u64 -> rlp([]Withdrawal). Expected
//	                present iff Shanghai is active at the block's timestamp.
//	SyncStageProgress - stage_id -> checkpoint. The "Finish" stage's
//	                checkpoint is the authoritative best-block-number.
const (
	HeaderNumber    = "HeaderNumber"
	CanonicalHeader = "CanonicalHeader"
	Headers         = "Header"
	HeaderTD        = "HeadersTotalDifficulty"

	BlockBodyIndices = "BlockBodyIndices"
	EthTx            = "BlockTransaction"
	TxHashNumber     = "BlockTransactionLookup"
	TransactionBlock = "TransactionBlock"
	Receipts         = "Receipt"

	BlockOmmers      = "BlockOmmers"
	BlockWithdrawals = "BlockWithdrawals"

	// Progress of sync stages: stageName -> stageData. FinishStage is the
	// stage id whose checkpoint doubles as the best-block-number oracle;
	// it must stay aligned with the pipeline's final-stage identifier.
	SyncStageProgress = "SyncStage"
	FinishStage       = "Finish"
)

// ChaindataTables lists every bucket the chain data provider core may
// open. memdb panics and mdbx returns an error on an unregistered bucket
// name, so a table added to this package must also be added here.
var ChaindataTables = []string{
	HeaderNumber,
	CanonicalHeader,
	Headers,
	HeaderTD,
	BlockBodyIndices,
	EthTx,
	TxHashNumber,
	TransactionBlock,
	Receipts,
	BlockOmmers,
	BlockWithdrawals,
	SyncStageProgress,
}

func init() {
	sort.Strings(ChaindataTables)
}
