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
	"encoding/binary"
	"math"
	"sync"

	"github.com/forknode/statecache/common"
)

const (
	// AccountBloomSpace is the bit-width of the account Bloom filter.
	AccountBloomSpace = 1 << 20 // 1,048,576 bits

	// DefaultAccountPreset is the expected number of items the default
	// Bloom sizing targets.
	DefaultAccountPreset = 1_000_000

	accountBloomWords = AccountBloomSpace / 64
)

// accountBloomHashCountKey is the fixed, well-known key the hash-function
// count is stored under, 18 ASCII bytes as required by the wire format.
var accountBloomHashCountKey = []byte("account_hash_count")

// BloomJournal is the set of bit-word indices changed since the last drain,
// keyed by word index, valued by the word's new 64-bit content.
type BloomJournal struct {
	HashFunctions uint8
	Entries       map[uint64]uint64
}

// AccountBloom is a persistent, append-only Bloom filter over addresses
// ever written. It is shared process-wide and guarded by its own mutex,
// held only for bit operations or a drain, never across I/O.
type AccountBloom struct {
	mu            sync.Mutex
	bits          []uint64
	hashFunctions uint8
	dirty         map[uint64]struct{}
}

// NewAccountBloom constructs a fresh Bloom sized for space bits and tuned
// for preset expected items, using k = round((space/preset) * ln2),
// clamped to [1, 255] so the hash-function count always fits the one-byte
// wire format.
func NewAccountBloom(space, preset uint64) *AccountBloom {
	k := int(math.Round(float64(space) / float64(preset) * math.Ln2))
	if k < 1 {
		k = 1
	}
	if k > 255 {
		k = 255
	}
	return &AccountBloom{
		bits:          make([]uint64, space/64),
		hashFunctions: uint8(k),
		dirty:         make(map[uint64]struct{}),
	}
}

// LoadAccountBloom reconstructs the Bloom from its backing store column. If
// the hash-count key is absent, a fresh Bloom sized to the default preset
// is returned; this is the normal first-boot case, not an error. If the
// hash-count key is present but malformed, ErrBloomCorrupt is returned.
func LoadAccountBloom(store Store) (*AccountBloom, error) {
	hashCountBytes, err := store.Get(ColAccountBloom, accountBloomHashCountKey)
	if err != nil {
		return nil, err
	}
	if hashCountBytes == nil {
		return NewAccountBloom(AccountBloomSpace, DefaultAccountPreset), nil
	}
	if len(hashCountBytes) != 1 {
		return nil, ErrBloomCorrupt
	}

	b := &AccountBloom{
		bits:          make([]uint64, accountBloomWords),
		hashFunctions: hashCountBytes[0],
		dirty:         make(map[uint64]struct{}),
	}
	key := make([]byte, 8)
	for i := 0; i < accountBloomWords; i++ {
		binary.LittleEndian.PutUint64(key, uint64(i))
		value, err := store.Get(ColAccountBloom, key)
		if err != nil {
			return nil, err
		}
		if value != nil {
			b.bits[i] = binary.LittleEndian.Uint64(value)
		}
	}
	return b, nil
}

// Check returns true if addr may have been noted; false guarantees it was
// never passed to Note.
func (b *AccountBloom) Check(addr Address) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bit := range b.bitPositions(addr) {
		if !b.getBit(bit) {
			return false
		}
	}
	return true
}

// Note records addr in the filter. Bits are only ever set, never cleared.
func (b *AccountBloom) Note(addr Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bit := range b.bitPositions(addr) {
		b.setBit(bit)
	}
}

// DrainJournal returns the bit-word indices changed since the last drain
// together with their current values, and clears the journal.
func (b *AccountBloom) DrainJournal() BloomJournal {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := make(map[uint64]uint64, len(b.dirty))
	for word := range b.dirty {
		entries[word] = b.bits[word]
	}
	b.dirty = make(map[uint64]struct{})
	return BloomJournal{HashFunctions: b.hashFunctions, Entries: entries}
}

// CommitBloom writes a drained journal's hash-function count and dirty
// words into batch under the Bloom's dedicated column. It asserts the
// hash-function count fits a single byte; any other value indicates a
// misconfigured Bloom, a program error rather than a runtime condition.
func CommitBloom(batch Batch, journal BloomJournal) error {
	if journal.HashFunctions > 255 {
		return ErrHashCountOverflow
	}
	batch.Put(ColAccountBloom, accountBloomHashCountKey, []byte{journal.HashFunctions})

	key := make([]byte, 8)
	val := make([]byte, 8)
	for wordIndex, wordValue := range journal.Entries {
		binary.LittleEndian.PutUint64(key, wordIndex)
		binary.LittleEndian.PutUint64(val, wordValue)
		batch.Put(ColAccountBloom, append([]byte(nil), key...), append([]byte(nil), val...))
	}
	return nil
}

// bitPositions computes the hashFunctions bit indices for addr using
// double hashing (Kirsch-Mitzenmacher) over a single Keccak-256 digest
// split into two 64-bit lanes: position_i = (h1 + i*h2) mod len(bits)*64.
func (b *AccountBloom) bitPositions(addr Address) []uint64 {
	digest := common.Keccak256ForAddress(addr)
	h1 := binary.BigEndian.Uint64(digest[0:8])
	h2 := binary.BigEndian.Uint64(digest[8:16])
	space := uint64(len(b.bits)) * 64
	positions := make([]uint64, b.hashFunctions)
	for i := uint8(0); i < b.hashFunctions; i++ {
		positions[i] = (h1 + uint64(i)*h2) % space
	}
	return positions
}

func (b *AccountBloom) getBit(pos uint64) bool {
	word := pos / 64
	bit := pos % 64
	return b.bits[word]&(1<<bit) != 0
}

func (b *AccountBloom) setBit(pos uint64) {
	word := pos / 64
	bit := pos % 64
	if b.bits[word]&(1<<bit) != 0 {
		return
	}
	b.bits[word] |= 1 << bit
	b.dirty[word] = struct{}{}
}

// GetMemoryFootprint reports the Bloom's own heap usage.
func (b *AccountBloom) GetMemoryFootprint() *common.MemoryFootprint {
	b.mu.Lock()
	defer b.mu.Unlock()
	return common.NewMemoryFootprint(uintptr(len(b.bits)) * 8)
}
