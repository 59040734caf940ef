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

// StateView is a short-lived handle used to read and write account state
// for one block. It owns its backing store handle and a PendingChangeBuffer,
// and holds shared references to the process-wide cache and Bloom.
type StateView struct {
	store   Store
	cache   *SharedAccountCache
	bloom   *AccountBloom
	pending []PendingChangeItem

	parentHash   *BlockHash
	commitHash   *BlockHash
	commitNumber uint64
}

// CloneView creates a view with no anchor. Cache lookups always return
// "unknown" for such a view; it is used for historical or speculative
// queries that have no single parent block.
func CloneView(store Store, cache *SharedAccountCache, bloom *AccountBloom) *StateView {
	return &StateView{
		store: store.Clone(),
		cache: cache,
		bloom: bloom,
	}
}

// CloneCanonView creates a view anchored at parent. It is used for block
// execution and for verified lookups against a known chain head.
func CloneCanonView(store Store, cache *SharedAccountCache, bloom *AccountBloom, parent BlockHash) *StateView {
	return &StateView{
		store:      store.Clone(),
		cache:      cache,
		bloom:      bloom,
		parentHash: &parent,
	}
}

// BloomCheck delegates to the shared AccountBloom.
func (v *StateView) BloomCheck(addr Address) bool {
	return v.bloom.Check(addr)
}

// BloomNote delegates to the shared AccountBloom.
func (v *StateView) BloomNote(addr Address) {
	v.bloom.Note(addr)
}

// QueueCache appends a pending change to this view's buffer. Duplicates
// for the same address are allowed within one view; later items win at
// publication time.
func (v *StateView) QueueCache(addr Address, account *Account, modified bool) {
	v.pending = append(v.pending, PendingChangeItem{Address: addr, Account: account, Modified: modified})
}

// GetCachedBasic returns the cached basic (storage-less) copy of addr's
// account. found is false if the view's anchor is not usable against the
// current modification log; in that case the caller must fall back to the
// backing store. When found is true, a nil *Account means the cache knows
// the account does not exist.
func (v *StateView) GetCachedBasic(addr Address) (account *Account, found bool) {
	if !v.isAllowed(addr) {
		return nil, false
	}
	return withCachedAccount(v.cache, addr, func(a *Account) *Account { return a.CloneBasic() })
}

// GetCachedWith invokes f on a mutable reference to the cached entry for
// addr while holding the shared cache's lock, gated by the same
// cache-allowance rule as GetCachedBasic. This is the only path that may
// mutate a shared entry in place, e.g. to warm storage slots for
// subsequent readers.
func GetCachedWith[U any](v *StateView, addr Address, f func(*Account) U) (result U, found bool) {
	if !v.isAllowed(addr) {
		return result, false
	}
	return withCachedAccount(v.cache, addr, f)
}

// isAllowed implements the cache-lookup gating predicate: a view may only
// trust the shared cache for addr if its anchor's ancestry, walked through
// the modification log, reaches a canonical block without any intervening
// block having touched addr.
func (v *StateView) isAllowed(addr Address) bool {
	if v.parentHash == nil {
		return false
	}
	log := v.cache.modifications()
	if len(log) == 0 {
		return true
	}
	parent := *v.parentHash
	for i := range log {
		m := &log[i]
		if m.Hash == parent {
			if m.IsCanon {
				return true
			}
			parent = m.Parent
		}
		if m.touches(addr) {
			return false
		}
	}
	return false
}

// Commit flushes the Bloom journal into batch, delegates the era commit to
// the backing store, and records the committed block's identity on this
// view for use by the subsequent Sync call.
func (v *StateView) Commit(batch Batch, now uint64, id BlockHash, end *EraEnd) (uint32, error) {
	journal := v.bloom.DrainJournal()
	if err := CommitBloom(batch, journal); err != nil {
		return 0, err
	}

	records, err := v.store.Commit(batch, now, id, end)
	if err != nil {
		return 0, err
	}

	v.commitHash = &id
	v.commitNumber = now
	return records, nil
}

// Sync reconciles the shared cache against the enacted/retracted block
// lists computed after this view's block was committed, then publishes
// the view's pending changes to the shared cache if isBest. See
// SharedAccountCache.sync for the full algorithm; this method only
// assembles this view's own commit identity before delegating.
func (v *StateView) Sync(enacted, retracted []BlockHash, isBest bool) {
	v.cache.sync(v.pending, v.commitHash, v.parentHash, v.commitNumber, enacted, retracted, isBest)
	v.pending = nil
}

// AsStore returns the raw backing-store interface for trie-level access.
func (v *StateView) AsStore() Store {
	return v.store
}

// JournalDB is an alias for AsStore, matching the accessor name the
// execution engine expects for the journaled store handle.
func (v *StateView) JournalDB() Store {
	return v.store
}

// MemUsed reports the backing store's heap usage. It excludes the shared
// cache's own footprint, which callers can obtain separately via
// SharedAccountCache.GetMemoryFootprint.
func (v *StateView) MemUsed() uint64 {
	return v.store.MemUsed()
}

// IsPruned reports whether the backing store discards historical state.
func (v *StateView) IsPruned() bool {
	return v.store.IsPruned()
}
