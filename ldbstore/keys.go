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
	"encoding/binary"

	"github.com/forknode/statecache/statecache"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// maxBlock is the largest block number the inverse key encoding below can
// represent; it must stay below the all-0xFF limit key so pruning ranges
// remain well-formed.
const maxBlock = 0xFFFFFFFFFFFFFFFE

// eraKeySize is the byte-size of one era marker key: one column byte
// followed by the inverse-encoded block number.
const eraKeySize = 1 + 8

var limitBlock = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// dataKey namespaces an arbitrary caller key under column with a single
// prefix byte, the same tablespace-prefixing trick the teacher uses.
func dataKey(column statecache.Column, key []byte) []byte {
	out := make([]byte, 1+len(key))
	out[0] = byte(column)
	copy(out[1:], key)
	return out
}

// eraKey encodes a pruning era marker under a column, keyed by the inverse
// of its block number so that a single contiguous LevelDB range covers
// "every era at or below the pruned one", the same trick the teacher's
// archive keys use to iterate blocks highest-to-lowest.
func eraKey(column statecache.Column, block uint64) []byte {
	k := make([]byte, eraKeySize)
	k[0] = byte(column)
	binary.BigEndian.PutUint64(k[1:], maxBlock-block)
	return k
}

// eraRangeUpTo returns the key range covering every era marker at or below
// block within column, for a single range-delete pruning pass.
func eraRangeUpTo(column statecache.Column, block uint64) util.Range {
	start := eraKey(column, block)
	limit := make([]byte, eraKeySize)
	limit[0] = byte(column)
	copy(limit[1:], limitBlock)
	return util.Range{Start: start, Limit: limit}
}
