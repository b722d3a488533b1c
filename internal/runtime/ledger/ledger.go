// Package ledger sequences invocations against stored records: one
// instruction runs to completion with exclusive access to its registry
// record, then either every writable record is persisted or none is.
package ledger

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"allowlist/internal/registry/instruction"
	"allowlist/internal/registry/processor"
	"allowlist/internal/registry/state"
	"allowlist/internal/runtime"
	"allowlist/internal/runtime/store"
	"allowlist/pkg/domain"
	"allowlist/pkg/platform/sentinel"
)

// AccountRef names one record an invocation touches. Signer asserts that
// the runtime verified an authorization proof for Key before submission.
type AccountRef struct {
	Key      domain.ID
	Signer   bool
	Writable bool
}

// Ledger drives the processor over a record store.
type Ledger struct {
	store store.Store
	proc  *processor.Processor
	log   *log.Logger

	mu    sync.Mutex
	locks map[domain.ID]*sync.Mutex
}

// New constructs a Ledger over the given store and processor.
func New(st store.Store, proc *processor.Processor, logger *log.Logger) *Ledger {
	return &Ledger{
		store: st,
		proc:  proc,
		log:   logger,
		locks: make(map[domain.ID]*sync.Mutex),
	}
}

// CreateRecord allocates a zeroed registry record funded with the given
// retained balance, as the hosting runtime does before init.
func (l *Ledger) CreateRecord(ctx context.Context, key domain.ID, balance uint64) error {
	return l.store.Put(ctx, &runtime.Account{
		Key:     key,
		Balance: balance,
		Data:    make([]byte, state.RecordSize),
	})
}

// Submit runs one instruction. refs[0] is the caller, refs[1] the registry
// record; further refs are the instruction's target or destination. Records
// absent from the store are treated as fresh zero-balance identities, so
// participants need no prior footprint. On success every writable record is
// persisted in one atomic batch; on failure nothing is.
func (l *Ledger) Submit(ctx context.Context, refs []AccountRef, data []byte) error {
	if len(refs) < 2 {
		return fmt.Errorf("invocation needs caller and registry record: %w", sentinel.ErrNotEnoughAccounts)
	}

	recordLock := l.lockFor(refs[1].Key)
	recordLock.Lock()
	defer recordLock.Unlock()

	accounts := make([]*runtime.Account, len(refs))
	for i, ref := range refs {
		account, err := l.store.Get(ctx, ref.Key)
		if err != nil {
			if ref.Writable || i == 1 {
				return err
			}
			// Caller/target identities may have no stored footprint.
			account = &runtime.Account{Key: ref.Key}
		}
		account.Signer = ref.Signer
		account.Writable = ref.Writable
		accounts[i] = account
	}

	err := l.proc.Process(ctx, accounts, data)
	l.journal(ctx, refs[1].Key, data, err)
	if err != nil {
		return err
	}

	writable := make([]*runtime.Account, 0, len(accounts))
	for _, account := range accounts {
		if account.Writable {
			writable = append(writable, account)
		}
	}
	return l.store.PutAll(ctx, writable)
}

func (l *Ledger) journal(ctx context.Context, record domain.ID, data []byte, result error) {
	name := "unknown"
	if ins, err := instruction.Decode(data); err == nil {
		name = ins.Tag().String()
	}
	inv := store.Invocation{
		ID:          uuid.NewString(),
		Record:      record.String(),
		Instruction: name,
		OK:          result == nil,
		At:          time.Now(),
	}
	if result != nil {
		inv.Error = result.Error()
	}
	if err := l.store.AppendInvocation(ctx, inv); err != nil {
		l.log.Printf("journal append failed for %s: %v", inv.ID, err)
	}
}

func (l *Ledger) lockFor(key domain.ID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}
