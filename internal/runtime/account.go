// Package runtime emulates the slice of the hosting ledger runtime the
// registry depends on: byte-addressable records with retained balances,
// per-invocation signer flags standing in for verified authorization proofs,
// and the retention-balance policy for persistent records. The real runtime
// owns sequencing and proof verification; this package gives the processor
// and its tests the same contract in process.
package runtime

import (
	"fmt"

	"allowlist/pkg/domain"
	dErrors "allowlist/pkg/domain-errors"
	"allowlist/pkg/platform/sentinel"
)

// Account is one record reference supplied to an invocation. Signer is true
// when the runtime has verified an authorization proof for Key; Writable is
// true when the invocation may mutate balance or data.
type Account struct {
	Key      domain.ID
	Balance  uint64
	Signer   bool
	Writable bool
	Data     []byte
}

// Clone returns a deep copy, used to stage mutations that must not be
// observable on failure.
func (a *Account) Clone() *Account {
	cp := *a
	cp.Data = make([]byte, len(a.Data))
	copy(cp.Data, a.Data)
	return &cp
}

// Accounts walks an invocation's ordered record references.
type Accounts struct {
	list []*Account
	next int
}

// NewAccounts wraps the ordered reference list of one invocation.
func NewAccounts(list []*Account) *Accounts {
	return &Accounts{list: list}
}

// Next returns the next reference, or ErrNotEnoughAccounts when the
// instruction asked for more records than the invocation supplied.
func (a *Accounts) Next() (*Account, error) {
	if a.next >= len(a.list) {
		return nil, fmt.Errorf("account %d missing: %w", a.next, sentinel.ErrNotEnoughAccounts)
	}
	acc := a.list[a.next]
	a.next++
	return acc, nil
}

// CheckedAdd adds two balances, failing with the overflow code instead of
// wrapping.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, dErrors.New(dErrors.CodeOverflow, "balance addition overflows")
	}
	return sum, nil
}
