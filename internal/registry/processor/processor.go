// Package processor is the registry's state-transition engine. Each call
// decodes one instruction, validates authorization and invariants against
// the referenced records, and either persists the mutation or returns an
// error leaving every record byte for byte unchanged.
package processor

import (
	"context"
	"fmt"
	"log"
	"time"

	"allowlist/internal/registry/instruction"
	"allowlist/internal/registry/metrics"
	"allowlist/internal/registry/state"
	"allowlist/internal/runtime"
	dErrors "allowlist/pkg/domain-errors"
	"allowlist/pkg/platform/sentinel"
)

// RentPolicy answers whether a record's retained balance satisfies the
// hosting runtime's storage-retention threshold.
type RentPolicy interface {
	IsExempt(balance uint64, dataLen int) bool
}

// Processor applies registry instructions to records. It holds no mutable
// state of its own; all state lives in the records of one invocation.
type Processor struct {
	rent    RentPolicy
	log     *log.Logger
	metrics *metrics.Metrics
}

// New constructs a Processor. metrics may be nil.
func New(rent RentPolicy, logger *log.Logger, m *metrics.Metrics) *Processor {
	return &Processor{rent: rent, log: logger, metrics: m}
}

// Process decodes and dispatches one instruction against the invocation's
// ordered record references. Account 0 is always the caller.
func (p *Processor) Process(ctx context.Context, accounts []*runtime.Account, data []byte) error {
	ins, err := instruction.Decode(data)
	if err != nil {
		p.metrics.ObserveProcess("unknown", outcome(err), 0)
		return err
	}

	start := time.Now()
	iter := runtime.NewAccounts(accounts)

	switch v := ins.(type) {
	case instruction.InitRegistry:
		err = p.initRegistry(iter, v.Capacity)
	case instruction.AddEntry:
		err = p.addEntry(iter, v.Allocation)
	case instruction.RemoveEntry:
		err = p.removeEntry(iter)
	case instruction.ZeroAllocation:
		err = p.zeroAllocation(iter)
	case instruction.CloseRegistry:
		err = p.closeRegistry(iter)
	}

	p.metrics.ObserveProcess(ins.Tag().String(), outcome(err), time.Since(start))
	if err != nil {
		p.log.Printf("instruction %s rejected: %v", ins.Tag(), err)
		return err
	}
	p.log.Printf("instruction %s applied", ins.Tag())
	return nil
}

// initRegistry claims an allocated, funded record for a new registry.
// Accounts: 0 caller (signer), 1 registry record (writable).
func (p *Processor) initRegistry(iter *runtime.Accounts, capacity uint64) error {
	caller, err := iter.Next()
	if err != nil {
		return err
	}
	if !caller.Signer {
		return fmt.Errorf("caller %s: %w", caller.Key, sentinel.ErrMissingSignature)
	}
	record, err := iter.Next()
	if err != nil {
		return err
	}
	if !p.rent.IsExempt(record.Balance, len(record.Data)) {
		return dErrors.New(dErrors.CodeNotRentExempt, "registry record must satisfy the retention-balance policy")
	}

	st, err := state.Unpack(record.Data)
	if err != nil {
		return err
	}
	if st.Initialized {
		return fmt.Errorf("registry record: %w", sentinel.ErrAlreadyInitialized)
	}

	st.Initialized = true
	st.Authority = caller.Key
	st.Capacity = capacity
	return writeState(record, &st)
}

// addEntry inserts or overwrites the target's allocation. Accounts:
// 0 caller (signer, authority), 1 registry record (writable), 2 target.
func (p *Processor) addEntry(iter *runtime.Accounts, allocation uint64) error {
	caller, record, target, err := callerRecordTarget(iter)
	if err != nil {
		return err
	}
	st, err := adminGate(caller, record)
	if err != nil {
		return err
	}

	key := target.Key.String()
	if !st.Contains(key) && uint64(len(st.Entries)) >= st.Capacity {
		return dErrors.New(dErrors.CodeSizeExceeded,
			fmt.Sprintf("registry already holds its declared capacity of %d entries", st.Capacity))
	}
	st.SetEntry(key, allocation)
	return writeState(record, st)
}

// removeEntry drops the target's entry; a missing entry is a no-op.
// Accounts: 0 caller (signer, authority), 1 registry record (writable),
// 2 target.
func (p *Processor) removeEntry(iter *runtime.Accounts) error {
	caller, record, target, err := callerRecordTarget(iter)
	if err != nil {
		return err
	}
	st, err := adminGate(caller, record)
	if err != nil {
		return err
	}

	st.RemoveEntry(target.Key.String())
	return writeState(record, st)
}

// zeroAllocation is self-service: the caller must be the targeted
// participant, independent of the authority. Accounts: 0 caller (signer),
// 1 registry record (writable), 2 target.
func (p *Processor) zeroAllocation(iter *runtime.Accounts) error {
	caller, record, target, err := callerRecordTarget(iter)
	if err != nil {
		return err
	}
	if !caller.Signer {
		return fmt.Errorf("caller %s: %w", caller.Key, sentinel.ErrMissingSignature)
	}
	st, err := state.Unpack(record.Data)
	if err != nil {
		return err
	}
	if !st.Initialized {
		return dErrors.New(dErrors.CodeNotInitialized, "registry must be initialized before resetting an allocation")
	}
	if caller.Key != target.Key {
		return dErrors.New(dErrors.CodeNotSelf, "only the participant itself may zero its allocation")
	}
	key := target.Key.String()
	if !st.Contains(key) {
		return fmt.Errorf("participant %s has no entry: %w", key, sentinel.ErrInvalidAccountData)
	}

	st.SetEntry(key, 0)
	return writeState(record, &st)
}

// closeRegistry drains the record's retained balance to the destination and
// wipes the record. Accounts: 0 caller (signer, authority), 1 registry
// record (writable), 2 destination (writable).
func (p *Processor) closeRegistry(iter *runtime.Accounts) error {
	caller, record, destination, err := callerRecordTarget(iter)
	if err != nil {
		return err
	}
	st, err := state.Unpack(record.Data)
	if err != nil {
		return err
	}
	if !st.Initialized {
		return dErrors.New(dErrors.CodeNotInitialized, "registry must be initialized before closing")
	}
	if caller.Key != st.Authority {
		return dErrors.New(dErrors.CodeInvalidAuthority, "only the registry authority may close it")
	}
	if !caller.Signer {
		return fmt.Errorf("authority %s: %w", caller.Key, sentinel.ErrMissingSignature)
	}

	drained, err := runtime.CheckedAdd(destination.Balance, record.Balance)
	if err != nil {
		return err
	}
	destination.Balance = drained
	record.Balance = 0
	for i := range record.Data {
		record.Data[i] = 0
	}
	return nil
}

// adminGate runs the shared preconditions of the authority-only mutations:
// signer present, registry initialized, caller is the stored authority.
func adminGate(caller, record *runtime.Account) (*state.Registry, error) {
	if !caller.Signer {
		return nil, fmt.Errorf("caller %s: %w", caller.Key, sentinel.ErrMissingSignature)
	}
	st, err := state.Unpack(record.Data)
	if err != nil {
		return nil, err
	}
	if !st.Initialized {
		return nil, dErrors.New(dErrors.CodeNotInitialized, "registry must be initialized first")
	}
	if caller.Key != st.Authority {
		return nil, dErrors.New(dErrors.CodeNotOwner, "caller is not the registry authority")
	}
	return &st, nil
}

func callerRecordTarget(iter *runtime.Accounts) (caller, record, target *runtime.Account, err error) {
	if caller, err = iter.Next(); err != nil {
		return nil, nil, nil, err
	}
	if record, err = iter.Next(); err != nil {
		return nil, nil, nil, err
	}
	if target, err = iter.Next(); err != nil {
		return nil, nil, nil, err
	}
	return caller, record, target, nil
}

// writeState packs into a scratch buffer first so an encode failure leaves
// the record untouched.
func writeState(record *runtime.Account, st *state.Registry) error {
	scratch := make([]byte, state.RecordSize)
	if err := st.Pack(scratch); err != nil {
		return err
	}
	copy(record.Data, scratch)
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := dErrors.CodeOf(err); code != "" {
		return string(code)
	}
	return "host_error"
}
