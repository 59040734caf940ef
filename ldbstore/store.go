// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package ldbstore adapts github.com/syndtr/goleveldb/leveldb into the
// statecache.Store contract.
package ldbstore

import (
	"fmt"
	"sync"

	"github.com/forknode/statecache/common"
	"github.com/forknode/statecache/statecache"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Store is a LevelDB-backed implementation of statecache.Store. Columns are
// namespaced by a one-byte key prefix; era pruning deletes a contiguous
// range of era-marker keys, as described in keys.go. The underlying handle
// is opened through common.OpenLevelDb, so memory footprint reporting comes
// from the same wrapper the rest of this module's storage code uses.
type Store struct {
	db     *common.LevelDbMemoryFootprintWrapper
	mu     *sync.Mutex // guards era bookkeeping shared across Clone()d handles
	pruned bool
}

// Batch accumulates writes for one Store.Commit call.
type Batch struct {
	inner *leveldb.Batch
}

// Put stages a write under column, to be applied atomically by Commit.
func (b *Batch) Put(column statecache.Column, key, value []byte) {
	b.inner.Put(dataKey(column, key), value)
}

// Open opens (or creates) a LevelDB database at path and wraps it as a
// Store. pruned controls whether Commit with a non-nil EraEnd actually
// deletes the pruned era's markers.
func Open(path string, pruned bool) (*Store, error) {
	wrapped, err := common.OpenLevelDb(path, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open level db at %s: %w", path, err)
	}
	return &Store{
		db:     wrapped,
		mu:     &sync.Mutex{},
		pruned: pruned,
	}, nil
}

// Get reads a value for key under column. A nil slice with a nil error
// means the key is absent.
func (s *Store) Get(column statecache.Column, key []byte) ([]byte, error) {
	value, err := s.db.Get(dataKey(column, key), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// NewBatch creates an empty write batch.
func (s *Store) NewBatch() statecache.Batch {
	return &Batch{inner: new(leveldb.Batch)}
}

// Commit applies batch, stamps an era marker for (now, id), and, if end is
// set and this store is pruning-capable, deletes every era marker at or
// below end in a single contiguous range. It returns the number of
// key/value pairs written by batch.
func (s *Store) Commit(batch statecache.Batch, now uint64, id statecache.BlockHash, end *statecache.EraEnd) (uint32, error) {
	b, ok := batch.(*Batch)
	if !ok {
		return 0, fmt.Errorf("ldbstore: foreign batch type %T", batch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := b.inner.Len()
	b.inner.Put(eraKey(statecache.ColAccountBloom, now), id[:])

	if err := s.db.Write(b.inner, nil); err != nil {
		return 0, err
	}

	if end != nil && s.pruned {
		r := eraRangeUpTo(statecache.ColAccountBloom, end.Number)
		iter := s.db.NewIterator(&r, nil)
		pruneBatch := new(leveldb.Batch)
		for iter.Next() {
			pruneBatch.Delete(append([]byte(nil), iter.Key()...))
		}
		iter.Release()
		if err := iter.Error(); err != nil {
			return 0, err
		}
		if err := s.db.Write(pruneBatch, nil); err != nil {
			return 0, err
		}
	}

	return uint32(count), nil
}

// Clone returns a new handle sharing the same backing LevelDB connection;
// goleveldb already synchronizes concurrent access, so this is safe across
// views whose backing store is cloned rather than reopened.
func (s *Store) Clone() statecache.Store {
	return &Store{db: s.db, mu: s.mu, pruned: s.pruned}
}

// IsPruned reports whether this store discards historical eras on commit.
func (s *Store) IsPruned() bool {
	return s.pruned
}

// MemUsed reports the underlying LevelDB's heap usage in bytes.
func (s *Store) MemUsed() uint64 {
	var stats leveldb.DBStats
	if err := s.db.Stats(&stats); err != nil {
		return 0
	}
	return uint64(stats.BlockCacheSize)
}

// GetMemoryFootprint reports the store's memory footprint in the teacher's
// tree-shaped format.
func (s *Store) GetMemoryFootprint() *common.MemoryFootprint {
	return s.db.GetMemoryFootprint()
}

// Close releases the underlying LevelDB handle.
func (s *Store) Close() error {
	return s.db.Close()
}
