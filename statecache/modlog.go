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

// StateCacheBlocks is the maximum number of BlockChanges entries kept in a
// ModificationLog.
const StateCacheBlocks = 8

// BlockChanges records which addresses were touched by one committed block.
type BlockChanges struct {
	Number   uint64
	Hash     BlockHash
	Parent   BlockHash
	Accounts map[Address]struct{}
	IsCanon  bool
}

// touches reports whether addr was modified by this block.
func (b *BlockChanges) touches(addr Address) bool {
	_, ok := b.Accounts[addr]
	return ok
}

// ModificationLog is a bounded deque of BlockChanges, ordered by descending
// block number (most recent at the front). It mirrors the shape of
// common.LruCache's doubly linked ordering, but the ordering key here is
// block number rather than recency of access.
type ModificationLog struct {
	entries []BlockChanges
}

// Len returns the number of entries currently held.
func (l *ModificationLog) Len() int {
	return len(l.entries)
}

// find returns a pointer to the entry with the given hash, or nil.
func (l *ModificationLog) find(hash BlockHash) *BlockChanges {
	for i := range l.entries {
		if l.entries[i].Hash == hash {
			return &l.entries[i]
		}
	}
	return nil
}

// dropOldest removes the rear (lowest block number) entry, if any.
func (l *ModificationLog) dropOldest() {
	if len(l.entries) == 0 {
		return
	}
	l.entries = l.entries[:len(l.entries)-1]
}

// insert places changes at the first position whose number is strictly
// less than changes.Number, preserving descending order; if no such
// position exists, changes is appended at the rear. Siblings that share a
// block number end up adjacent rather than ordered against each other.
func (l *ModificationLog) insert(changes BlockChanges) {
	for i := range l.entries {
		if l.entries[i].Number < changes.Number {
			l.entries = append(l.entries, BlockChanges{})
			copy(l.entries[i+1:], l.entries[i:])
			l.entries[i] = changes
			return
		}
	}
	l.entries = append(l.entries, changes)
}

// clear empties the log.
func (l *ModificationLog) clear() {
	l.entries = nil
}

// iterate calls f for every entry, front to back (highest number first).
// Iteration stops early if f returns false.
func (l *ModificationLog) iterate(f func(*BlockChanges) bool) {
	for i := range l.entries {
		if !f(&l.entries[i]) {
			return
		}
	}
}
