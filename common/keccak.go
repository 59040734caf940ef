// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"sync"

	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes the given byte slice using the Keccak-256 scheme.
func Keccak256(data []byte) Hash {
	return keccak256(data)
}

// Keccak256ForAddress hashes the given Address using the Keccak-256 scheme.
func Keccak256ForAddress(addr Address) Hash {
	return keccak256(addr[:])
}

// Keccak256ForKey hashes the given Key using the Keccak-256 scheme.
func Keccak256ForKey(key Key) Hash {
	return keccak256(key[:])
}

var keccakHasherPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}

type keccakHasher interface {
	Reset()
	Write(in []byte) (int, error)
	Read(out []byte) (int, error)
}

func keccak256(data []byte) Hash {
	hasher := keccakHasherPool.Get().(keccakHasher)
	hasher.Reset()
	hasher.Write(data)
	var res Hash
	hasher.Read(res[:])
	keccakHasherPool.Put(hasher)
	return res
}
