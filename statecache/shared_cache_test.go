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

	"github.com/forknode/statecache/common"
	"github.com/forknode/statecache/common/amount"
)

// commitAndSync drives one block through a view: queue a single address
// change, commit it, and synchronize it into the shared cache.
func commitAndSync(t *testing.T, store Store, cache *SharedAccountCache, bloom *AccountBloom, parent BlockHash, addr Address, balance uint64, modified bool, number uint64, hash BlockHash, isBest bool) {
	t.Helper()
	view := CloneCanonView(store, cache, bloom, parent)
	view.QueueCache(addr, NewAccount(amount.New(balance), common.Nonce{}), modified)
	batch := view.AsStore().NewBatch()
	if _, err := view.Commit(batch, number, hash, nil); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	view.Sync(nil, nil, isBest)
}

func TestSharedAccountCache_LRUBound(t *testing.T) {
	store := newFakeStore()
	bloom := NewAccountBloom(AccountBloomSpace, DefaultAccountPreset)
	cache := NewSharedAccountCache(4)

	parent := BlockHash{}
	for i := uint64(0); i < 10; i++ {
		addr := common.AddressFromNumber(int(i))
		hash := common.AddressFromNumber(int(100 + i))
		var h BlockHash
		copy(h[:], hash[:])
		commitAndSync(t, store, cache, bloom, parent, addr, i, true, i, h, true)
		parent = h
	}

	count := 0
	cache.lru.Iterate(func(Address, *Account) bool {
		count++
		return true
	})
	if count > 4 {
		t.Errorf("LRU exceeded its capacity: got %d entries, want <= 4", count)
	}
}

func TestSharedAccountCache_LogBoundAndOrder(t *testing.T) {
	store := newFakeStore()
	bloom := NewAccountBloom(AccountBloomSpace, DefaultAccountPreset)
	cache := NewSharedAccountCache(StateCacheItems)

	parent := BlockHash{}
	for i := uint64(0); i < 12; i++ {
		addr := common.AddressFromNumber(int(i))
		hashBytes := common.AddressFromNumber(int(200 + i))
		var h BlockHash
		copy(h[:], hashBytes[:])
		commitAndSync(t, store, cache, bloom, parent, addr, i, true, i, h, true)
		parent = h
	}

	if got := cache.log.Len(); got > StateCacheBlocks {
		t.Errorf("modification log exceeded bound: got %d, want <= %d", got, StateCacheBlocks)
	}

	var last uint64 = ^uint64(0)
	cache.log.iterate(func(b *BlockChanges) bool {
		if b.Number >= last {
			t.Errorf("modification log is not strictly descending: %d appeared after %d", b.Number, last)
		}
		last = b.Number
		return true
	})
}

func TestSharedAccountCache_NonCanonicalCommitLeavesLRUUntouched(t *testing.T) {
	store := newFakeStore()
	bloom := NewAccountBloom(AccountBloomSpace, DefaultAccountPreset)
	cache := NewSharedAccountCache(StateCacheItems)

	addr := common.AddressFromNumber(1)
	commitAndSync(t, store, cache, bloom, BlockHash{}, addr, 2, true, 0, common.HashFromString("0000000000000000000000000000000000000000000000000000000000000001"), false)

	if _, found := cache.lru.Get(addr); found {
		t.Errorf("non-canonical commit must not publish to the shared LRU")
	}
	if cache.log.Len() != 1 {
		t.Errorf("non-canonical commit must still record a modification log entry, got %d entries", cache.log.Len())
	}
}

