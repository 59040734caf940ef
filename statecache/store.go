// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package statecache

//go:generate mockgen -source store.go -destination store_mocks.go -package statecache

import "github.com/forknode/statecache/common"

// Column namespaces keys within the backing store, the way Carmen's backend
// packages namespace keys by table space.
type Column byte

// ColAccountBloom is the dedicated column the Bloom filter persists its
// journal and hash-function count under.
const ColAccountBloom Column = 0

// Batch accumulates writes to be applied atomically by Store.Commit.
type Batch interface {
	Put(column Column, key, value []byte)
}

// EraEnd describes a historical era to prune as part of an era commit.
type EraEnd struct {
	Number uint64
	Hash   BlockHash
}

// Store is the journaled, pruning-capable key-value store this cache sits
// in front of. It is treated as an external collaborator: this package
// never implements commit/rewind/pruning semantics itself, only consumes
// them through this interface. See the ldbstore package for a concrete
// LevelDB-backed implementation.
type Store interface {
	// Get reads a value for the given column and key. A nil slice with a
	// nil error means the key is absent.
	Get(column Column, key []byte) ([]byte, error)
	// NewBatch creates an empty write batch for this store.
	NewBatch() Batch
	// Commit applies batch, finalizes the era identified by (now, id), and
	// optionally prunes the historical era named by end. It returns the
	// number of records committed.
	Commit(batch Batch, now uint64, id BlockHash, end *EraEnd) (uint32, error)
	// Clone returns an independent handle to the same backing data.
	Clone() Store
	// IsPruned reports whether this store discards historical state.
	IsPruned() bool
	// MemUsed reports the store's own heap usage in bytes.
	MemUsed() uint64
}

const (
	// ErrBloomCorrupt is returned by LoadAccountBloom when the persisted
	// hash-function-count entry is present but is not exactly one byte
	// long. This is treated as a fatal bootstrap error: the process
	// should not start against a corrupt Bloom column.
	ErrBloomCorrupt = common.ConstError("statecache: account bloom hash-count entry is corrupt")

	// ErrHashCountOverflow is returned by CommitBloom if the
	// filter's hash-function count does not fit in the single byte the
	// wire format allows for it. This indicates a misconfigured Bloom
	// size/preset pair, a program error rather than a runtime condition.
	ErrHashCountOverflow = common.ConstError("statecache: account bloom hash-function count overflows one byte")
)
