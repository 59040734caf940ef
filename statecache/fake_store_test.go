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

// fakeBatch accumulates writes in memory for fakeStore, used by tests that
// need a lightweight Store without a real backing database.
type fakeBatch struct {
	writes []fakeWrite
}

type fakeWrite struct {
	column Column
	key    string
	value  []byte
}

func (b *fakeBatch) Put(column Column, key, value []byte) {
	b.writes = append(b.writes, fakeWrite{column: column, key: string(key), value: append([]byte(nil), value...)})
}

// fakeStore is an in-memory Store used by this package's own tests.
type fakeStore struct {
	data   map[Column]map[string][]byte
	pruned bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[Column]map[string][]byte)}
}

func (s *fakeStore) Get(column Column, key []byte) ([]byte, error) {
	col, ok := s.data[column]
	if !ok {
		return nil, nil
	}
	return col[string(key)], nil
}

func (s *fakeStore) NewBatch() Batch {
	return &fakeBatch{}
}

func (s *fakeStore) Commit(batch Batch, now uint64, id BlockHash, end *EraEnd) (uint32, error) {
	b := batch.(*fakeBatch)
	for _, w := range b.writes {
		col, ok := s.data[w.column]
		if !ok {
			col = make(map[string][]byte)
			s.data[w.column] = col
		}
		col[w.key] = w.value
	}
	return uint32(len(b.writes)), nil
}

func (s *fakeStore) Clone() Store {
	return s
}

func (s *fakeStore) IsPruned() bool {
	return s.pruned
}

func (s *fakeStore) MemUsed() uint64 {
	var total uint64
	for _, col := range s.data {
		for k, v := range col {
			total += uint64(len(k) + len(v))
		}
	}
	return total
}
