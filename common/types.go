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
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// AddressSize is the size of an Ethereum-like address.
const AddressSize = 20

// Address is an EVM-like account address.
type Address [AddressSize]byte

// KeySize is the size of an EVM-like storage slot key.
const KeySize = 32

// Key is an EVM-like key of a storage slot.
type Key [KeySize]byte

// HashSize is the byte-size of the Hash type.
const HashSize = 32

// Hash is an Ethereum-like hash, used both for state roots and block hashes.
type Hash [HashSize]byte

// NonceSize is the size of an Ethereum-like nonce.
const NonceSize = 8

// Nonce is an Ethereum-like nonce.
type Nonce [NonceSize]byte

// ValueSize is the size of an EVM-like storage slot value.
const ValueSize = 32

// Value is an Ethereum-like smart contract memory slot.
type Value [ValueSize]byte

// ToNonce converts the provided integer into a Nonce. Nonces encode integers in BigEndian byte order.
func ToNonce(value uint64) (res Nonce) {
	binary.BigEndian.PutUint64(res[:], value)
	return
}

// ToUint64 converts the value of a nonce into an integer value.
func (n *Nonce) ToUint64() uint64 {
	return binary.BigEndian.Uint64(n[:])
}

func (h Hash) ToBytes() []byte {
	return h[:]
}

func (a Address) String() string {
	return fmt.Sprintf("%x", a[:])
}

func (k Key) String() string {
	return fmt.Sprintf("%x", k[:])
}

func (h Hash) String() string {
	return fmt.Sprintf("%x", h[:])
}

// HashFromString converts a 64-character long hex string into a hash.
// The operation is slow and mainly intended for producing readable test
// cases. The operation will panic if the provided hash is malformed.
func HashFromString(str string) Hash {
	if len(str) != 64 {
		panic(fmt.Sprintf("invalid hash-string length, expected %d, got %d", 64, len(str)))
	}
	data, err := hex.DecodeString(str)
	if err != nil {
		panic(fmt.Sprintf("invalid hex string `%s`: %v", str, err))
	}
	res := Hash{}
	copy(res[:], data)
	return res
}

// AddressFromNumber produces a deterministic Address from a small integer,
// useful for constructing readable test fixtures.
func AddressFromNumber(num int) (address Address) {
	addr := binary.BigEndian.AppendUint32([]byte{}, uint32(num))
	copy(address[:], addr)
	return
}
