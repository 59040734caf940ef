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

import (
	"testing"

	"github.com/golang/mock/gomock"
)

// TestMockStore_SatisfiesLoadAccountBloom exercises MockStore as a
// downstream consumer would: standing in for Store in a unit test that
// never touches a real backing database.
func TestMockStore_SatisfiesLoadAccountBloom(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)

	store.EXPECT().Get(ColAccountBloom, accountBloomHashCountKey).Return(nil, nil)

	bloom, err := LoadAccountBloom(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bloom.hashFunctions == 0 {
		t.Errorf("expected a freshly constructed bloom to have a positive hash-function count")
	}
}

func TestMockStore_CommitRecordsExpectedCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)

	var hash BlockHash
	hash[0] = 7
	store.EXPECT().Commit(gomock.Any(), uint64(3), hash, nil).Return(uint32(2), nil)

	count, err := store.Commit(&fakeBatch{}, 3, hash, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected the mocked commit count to be returned, got %d", count)
	}
}
