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
	"github.com/forknode/statecache/common"
	"github.com/forknode/statecache/common/amount"
)

// Address is an EVM-like account address, re-exported so callers of this
// package do not need to import common directly.
type Address = common.Address

// BlockHash identifies a block.
type BlockHash = common.Hash

// Key is a storage slot key.
type Key = common.Key

// Value is a storage slot value.
type Value = common.Value

// AccountRecord is the constraint the shared cache places on whatever type
// a caller chooses to store account state as. The cache never inspects a
// record's fields directly; it only needs to clone off the basic (non-storage)
// part of a record and to merge a freshly observed record onto an existing one.
type AccountRecord[T any] interface {
	// CloneBasic returns a storage-less shallow copy, suitable for handing
	// to a reader that only needs balance/nonce/code information.
	CloneBasic() T
	// OverwriteWith replaces the mutable fields of the receiver with those
	// of other, in place, while preserving any accumulated storage.
	OverwriteWith(other T)
}

// Account is the concrete account record stored by SharedAccountCache and
// used by this package's own tests. It implements AccountRecord[*Account].
type Account struct {
	Balance     amount.Amount
	Nonce       common.Nonce
	CodeHash    common.Hash
	StorageRoot common.Hash
	Storage     map[Key]Value
}

// NewAccount creates a basic account with no storage.
func NewAccount(balance amount.Amount, nonce common.Nonce) *Account {
	return &Account{Balance: balance, Nonce: nonce}
}

// CloneBasic returns a copy of the account without its storage overlay,
// the shape returned to readers that only need balance/nonce/code-hash.
func (a *Account) CloneBasic() *Account {
	if a == nil {
		return nil
	}
	return &Account{
		Balance:     a.Balance,
		Nonce:       a.Nonce,
		CodeHash:    a.CodeHash,
		StorageRoot: a.StorageRoot,
	}
}

// OverwriteWith replaces the receiver's balance, nonce, code hash and
// storage root with other's, while keeping any storage already
// accumulated on the receiver. This is what lets readers build up a
// shared entry's storage map across multiple queue_cache publications
// without losing previously warmed slots.
func (a *Account) OverwriteWith(other *Account) {
	if other == nil {
		return
	}
	a.Balance = other.Balance
	a.Nonce = other.Nonce
	a.CodeHash = other.CodeHash
	a.StorageRoot = other.StorageRoot
}

// SetStorage records a storage slot value on the account, used by readers
// holding the cache lock via GetCachedWith to warm a shared entry.
func (a *Account) SetStorage(key Key, value Value) {
	if a.Storage == nil {
		a.Storage = make(map[Key]Value)
	}
	a.Storage[key] = value
}

// GetStorage returns a previously warmed storage slot value.
func (a *Account) GetStorage(key Key) (Value, bool) {
	v, ok := a.Storage[key]
	return v, ok
}
