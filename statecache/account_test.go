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

func TestAccount_CloneBasicDropsStorage(t *testing.T) {
	a := NewAccount(amount.New(10), common.ToNonce(1))
	a.SetStorage(Key{1}, Value{2})

	basic := a.CloneBasic()
	if basic.Balance.Uint64() != 10 {
		t.Errorf("expected clone to preserve balance")
	}
	if basic.Storage != nil {
		t.Errorf("expected clone_basic to drop storage, got %v", basic.Storage)
	}
}

func TestAccount_CloneBasicOfNilIsNil(t *testing.T) {
	var a *Account
	if got := a.CloneBasic(); got != nil {
		t.Errorf("expected CloneBasic of a nil account to stay nil, got %v", got)
	}
}

func TestAccount_OverwriteWithPreservesStorage(t *testing.T) {
	a := NewAccount(amount.New(1), common.Nonce{})
	a.SetStorage(Key{1}, Value{9})

	updated := NewAccount(amount.New(2), common.ToNonce(1))
	a.OverwriteWith(updated)

	if a.Balance.Uint64() != 2 {
		t.Errorf("expected overwrite to update balance, got %v", a.Balance)
	}
	v, ok := a.GetStorage(Key{1})
	if !ok || v != (Value{9}) {
		t.Errorf("expected overwrite to preserve previously warmed storage, got %v, found=%v", v, ok)
	}
}
