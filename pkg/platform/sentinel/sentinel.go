package sentinel

import "errors"

// Sentinel errors for host-runtime facts. The runtime emulation and the
// record codec return these (optionally wrapped) so the processor and tests
// can branch on them without depending on message text.
//
// These represent factual states about records and invocations, not
// registry-level validation failures:
// - ErrNotFound: record does not exist in the store
// - ErrMissingSignature: required authorization proof absent for the caller
// - ErrAlreadyInitialized: init attempted against a live registry record
// - ErrInvalidAccountData: record bytes fail structural validation
// - ErrAccountDataSize: record buffer has the wrong length
// - ErrNotEnoughAccounts: invocation supplied fewer records than the
//   instruction requires
//
// For registry validation failures (bad caller, capacity, overflow), use
// pkg/domain-errors directly.
var (
	ErrNotFound           = errors.New("not found")
	ErrMissingSignature   = errors.New("missing required signature")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrInvalidAccountData = errors.New("invalid account data")
	ErrAccountDataSize    = errors.New("account data size mismatch")
	ErrNotEnoughAccounts  = errors.New("not enough accounts")
)
