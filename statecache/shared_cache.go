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
	"sync"

	"github.com/forknode/statecache/common"
)

// StateCacheItems is the bounded capacity of the shared account LRU.
const StateCacheItems = 65536

// compile-time assertion that the teacher's LruCache satisfies the generic
// Cache contract it is reused through here.
var _ common.Cache[Address, *Account] = (*common.LruCache[Address, *Account])(nil)

// PendingChangeItem is a single observation or write queued by a StateView
// during block execution, published to the shared cache at commit time.
type PendingChangeItem struct {
	Address  Address
	Account  *Account
	Modified bool
}

// SharedAccountCache is the process-wide, mutex-protected overlay of
// account records. A stored nil *Account means "known absent in the
// backing store"; a missing key means "unknown to the cache." Both the
// LRU and the ModificationLog are protected by the same mutex, and no
// method here performs blocking I/O while holding it.
type SharedAccountCache struct {
	mu  sync.Mutex
	lru *common.LruCache[Address, *Account]
	log ModificationLog
}

// NewSharedAccountCache creates an empty cache with the given LRU capacity.
func NewSharedAccountCache(capacity int) *SharedAccountCache {
	return &SharedAccountCache{
		lru: common.NewLruCache[Address, *Account](capacity),
	}
}

// get returns the cached entry for addr, if any is present at all
// (regardless of cache-allowance); the bool return mirrors LruCache.Get.
func (c *SharedAccountCache) get(addr Address) (*Account, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(addr)
}

// withCachedAccount invokes f on the cached entry for addr while holding
// the cache lock, and returns f's result together with whether an entry
// was present. f receives the stored *Account directly (which may itself
// be nil, meaning "known absent"). Declared as a free function, not a
// method, because Go methods cannot carry their own type parameters.
func withCachedAccount[U any](c *SharedAccountCache, addr Address, f func(*Account) U) (result U, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, found := c.lru.Get(addr)
	if !found {
		return result, false
	}
	return f(val), true
}

// modifications returns a snapshot copy of the current log entries, used
// by StateView.isAllowed to evaluate cache-lookup gating without holding
// the shared mutex across the whole read.
func (c *SharedAccountCache) modifications() []BlockChanges {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]BlockChanges, len(c.log.entries))
	copy(out, c.log.entries)
	return out
}

// GetMemoryFootprint reports the cache's own heap usage, excluding any
// storage referenced by individual accounts.
func (c *SharedAccountCache) GetMemoryFootprint() *common.MemoryFootprint {
	c.mu.Lock()
	defer c.mu.Unlock()
	accountPtrSize := uintptr(8)
	return c.lru.GetMemoryFootprint(accountPtrSize)
}

// sync implements the ReorgSynchronizer reconciliation algorithm. It is
// invoked by StateView.Sync while holding no other lock, and acquires the
// cache mutex for its entire body: enacted/retracted reconciliation, the
// clear-all wipe, and publication of the just-committed block's pending
// changes are one atomic step from the perspective of any other caller.
func (c *SharedAccountCache) sync(pending []PendingChangeItem, commitHash, parentHash *BlockHash, commitNum uint64, enacted, retracted []BlockHash, isBest bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	clearAll := false

	for _, h := range enacted {
		if commitHash != nil && h == *commitHash {
			continue
		}
		if m := c.log.find(h); m != nil {
			m.IsCanon = true
			for a := range m.Accounts {
				c.lru.Remove(a)
			}
		} else {
			clearAll = true
		}
	}

	for _, h := range retracted {
		if m := c.log.find(h); m != nil {
			m.IsCanon = false
			for a := range m.Accounts {
				c.lru.Remove(a)
			}
		} else {
			clearAll = true
		}
	}

	if clearAll {
		c.lru.Clear()
		c.log.clear()
	}

	if commitHash == nil || parentHash == nil {
		return
	}

	if c.log.Len() == StateCacheBlocks {
		c.log.dropOldest()
	}

	modified := make(map[Address]struct{})
	for _, item := range pending {
		if item.Modified {
			modified[item.Address] = struct{}{}
		}
		if isBest {
			if existing, found := c.lru.Get(item.Address); found && existing != nil && item.Account != nil {
				if item.Modified {
					existing.OverwriteWith(item.Account)
				}
				continue
			}
			c.lru.Set(item.Address, item.Account)
		}
	}

	c.log.insert(BlockChanges{
		Number:   commitNum,
		Hash:     *commitHash,
		Parent:   *parentHash,
		Accounts: modified,
		IsCanon:  isBest,
	})
}
