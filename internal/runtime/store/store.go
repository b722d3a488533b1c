package store

import (
	"context"
	"time"

	"allowlist/internal/runtime"
	"allowlist/pkg/domain"
)

// Invocation is one journaled submission: which record it targeted, which
// instruction ran, and how it ended.
type Invocation struct {
	ID          string
	Record      string
	Instruction string
	OK          bool
	Error       string
	At          time.Time
}

// Store persists records between invocations and keeps the invocation
// journal.
//
// Error Contract:
// All store methods follow this pattern:
// - Return ErrNotFound when the requested record does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures
//
// PutAll is atomic: either every record is persisted or none is, so one
// invocation's writes can never be observed half-applied.
type Store interface {
	Get(ctx context.Context, key domain.ID) (*runtime.Account, error)
	Put(ctx context.Context, account *runtime.Account) error
	PutAll(ctx context.Context, accounts []*runtime.Account) error
	AppendInvocation(ctx context.Context, inv Invocation) error
}
