// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldbstore

import (
	"testing"

	"github.com/forknode/statecache/statecache"
)

func openTestStore(t *testing.T, pruned bool) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), pruned)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_GetMissingKeyReturnsNilNil(t *testing.T) {
	s := openTestStore(t, false)
	value, err := s.Get(statecache.ColAccountBloom, []byte("missing"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != nil {
		t.Errorf("expected nil for a missing key, got %v", value)
	}
}

func TestStore_CommitThenGetRoundTrip(t *testing.T) {
	s := openTestStore(t, false)
	batch := s.NewBatch()
	batch.Put(statecache.ColAccountBloom, []byte("k1"), []byte("v1"))
	batch.Put(statecache.ColAccountBloom, []byte("k2"), []byte("v2"))

	count, err := s.Commit(batch, 0, statecache.BlockHash{1}, nil)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 records written, got %d", count)
	}

	v, err := s.Get(statecache.ColAccountBloom, []byte("k1"))
	if err != nil || string(v) != "v1" {
		t.Errorf("expected v1, got %q, err=%v", v, err)
	}
}

func TestStore_ColumnsAreNamespaced(t *testing.T) {
	s := openTestStore(t, false)
	batch := s.NewBatch()
	batch.Put(statecache.Column(0), []byte("k"), []byte("a"))
	batch.Put(statecache.Column(1), []byte("k"), []byte("b"))
	if _, err := s.Commit(batch, 0, statecache.BlockHash{}, nil); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	a, _ := s.Get(statecache.Column(0), []byte("k"))
	b, _ := s.Get(statecache.Column(1), []byte("k"))
	if string(a) != "a" || string(b) != "b" {
		t.Errorf("expected distinct columns to hold distinct values, got %q and %q", a, b)
	}
}

func TestStore_PruningDeletesEraMarkersUpToEnd(t *testing.T) {
	s := openTestStore(t, true)

	for i := uint64(0); i < 5; i++ {
		batch := s.NewBatch()
		var hash statecache.BlockHash
		hash[0] = byte(i)
		if _, err := s.Commit(batch, i, hash, nil); err != nil {
			t.Fatalf("commit %d failed: %v", i, err)
		}
	}

	batch := s.NewBatch()
	end := &statecache.EraEnd{Number: 2}
	if _, err := s.Commit(batch, 5, statecache.BlockHash{5}, end); err != nil {
		t.Fatalf("pruning commit failed: %v", err)
	}

	for i := uint64(0); i <= 2; i++ {
		v, err := s.Get(statecache.ColAccountBloom, eraKey(statecache.ColAccountBloom, i)[1:])
		if err != nil {
			t.Fatalf("unexpected error reading pruned era marker: %v", err)
		}
		if v != nil {
			t.Errorf("expected era marker for block %d to be pruned", i)
		}
	}
}

func TestStore_CloneSharesBackingData(t *testing.T) {
	s := openTestStore(t, false)
	batch := s.NewBatch()
	batch.Put(statecache.ColAccountBloom, []byte("shared"), []byte("value"))
	if _, err := s.Commit(batch, 0, statecache.BlockHash{}, nil); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	clone := s.Clone()
	v, err := clone.Get(statecache.ColAccountBloom, []byte("shared"))
	if err != nil || string(v) != "value" {
		t.Errorf("expected clone to see data committed before cloning, got %q, err=%v", v, err)
	}
}
