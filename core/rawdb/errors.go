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

// Package rawdb is the low-level index layer: direct,
// largely uninterpreted reads of the table schema defined in
// erigon-lib/kv. It resolves hash-or-number references, walks ranges, and
// draws the line between a "not found" that is a normal empty result and
// one that signals a database inconsistency the caller must treat as an
// error.
package rawdb

import (
	"github.com/erigontech/erigon-lib/common"
	"github.com/pkg/errors"
)

// HeaderNotFoundError is returned when a header that a caller asserted
// must exist (sealed-header assembly, EVM environment filling) is
// missing.
type HeaderNotFoundError struct {
	Number common.BlockNumber
}

func (e *HeaderNotFoundError) Error() string {
	return errors.Errorf("header not found at block %d", e.Number).Error()
}

// BlockHashNotFoundError is returned when resolving a hash for
// historical-state construction fails: the hash has no known header.
type BlockHashNotFoundError struct {
	Hash common.Hash
}

func (e *BlockHashNotFoundError) Error() string {
	return errors.Errorf("block hash not found: %s", e.Hash).Error()
}

// BlockBodyIndicesNotFoundError signals that a block has a header but no
// body-indices entry, a database inconsistency rather than a normal miss.
type BlockBodyIndicesNotFoundError struct {
	Number common.BlockNumber
}

func (e *BlockBodyIndicesNotFoundError) Error() string {
	return errors.Errorf("block body indices not found at block %d", e.Number).Error()
}
