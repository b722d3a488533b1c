package ledger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/suite"

	"allowlist/internal/registry/instruction"
	"allowlist/internal/registry/processor"
	"allowlist/internal/registry/state"
	"allowlist/internal/runtime"
	"allowlist/internal/runtime/store"
	"allowlist/pkg/domain"
	dErrors "allowlist/pkg/domain-errors"
)

const recordFunding = 100_000_000

type LedgerSuite struct {
	suite.Suite
	store  *store.InMemoryStore
	ledger *Ledger

	authority   domain.ID
	participant domain.ID
	recordKey   domain.ID
}

func (s *LedgerSuite) SetupTest() {
	s.store = store.NewMemory()
	logger := log.New(io.Discard, "", 0)
	s.ledger = New(s.store, processor.New(runtime.DefaultRent(), logger, nil), logger)

	s.authority = domain.ID{0xA1}
	s.participant = domain.ID{0xB2}
	s.recordKey = domain.ID{0xEE}
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) submit(caller domain.ID, extra *domain.ID, ins instruction.Instruction) error {
	refs := []AccountRef{
		{Key: caller, Signer: true},
		{Key: s.recordKey, Writable: true},
	}
	if extra != nil {
		writable := ins.Tag() == instruction.TagCloseRegistry
		refs = append(refs, AccountRef{Key: *extra, Writable: writable})
	}
	return s.ledger.Submit(context.Background(), refs, instruction.Encode(ins))
}

func (s *LedgerSuite) storedRegistry() state.Registry {
	account, err := s.store.Get(context.Background(), s.recordKey)
	s.Require().NoError(err)
	st, err := state.Unpack(account.Data)
	s.Require().NoError(err)
	return st
}

func (s *LedgerSuite) TestLifecycle() {
	ctx := context.Background()
	s.Require().NoError(s.ledger.CreateRecord(ctx, s.recordKey, recordFunding))

	s.Run("init then add yields the expected registry", func() {
		s.Require().NoError(s.submit(s.authority, nil, instruction.InitRegistry{Capacity: 100}))
		s.Require().NoError(s.submit(s.authority, &s.participant, instruction.AddEntry{Allocation: 250}))

		st := s.storedRegistry()
		s.True(st.Initialized)
		s.Equal(s.authority, st.Authority)
		s.Equal(uint64(100), st.Capacity)
		s.Equal(map[string]uint64{s.participant.String(): 250}, st.Entries)
	})

	s.Run("remove empties the registry", func() {
		s.Require().NoError(s.submit(s.authority, &s.participant, instruction.RemoveEntry{}))
		s.Empty(s.storedRegistry().Entries)
	})

	s.Run("close drains the retained balance and wipes the record", func() {
		destination := domain.ID{0xD0}
		s.Require().NoError(s.store.Put(ctx, &runtime.Account{Key: destination, Balance: 500}))

		s.Require().NoError(s.submit(s.authority, &destination, instruction.CloseRegistry{}))

		record, err := s.store.Get(ctx, s.recordKey)
		s.Require().NoError(err)
		s.Equal(uint64(0), record.Balance)
		s.True(bytes.Equal(record.Data, make([]byte, state.RecordSize)))

		dest, err := s.store.Get(ctx, destination)
		s.Require().NoError(err)
		s.Equal(uint64(500+recordFunding), dest.Balance)
	})
}

func (s *LedgerSuite) TestFailedSubmissionPersistsNothing() {
	ctx := context.Background()
	s.Require().NoError(s.ledger.CreateRecord(ctx, s.recordKey, recordFunding))
	s.Require().NoError(s.submit(s.authority, nil, instruction.InitRegistry{Capacity: 100}))

	before, err := s.store.Get(ctx, s.recordKey)
	s.Require().NoError(err)

	intruder := domain.ID{0xCC}
	submitErr := s.submit(intruder, &s.participant, instruction.AddEntry{Allocation: 1})
	s.Require().Error(submitErr)
	s.True(dErrors.HasCode(submitErr, dErrors.CodeNotOwner))

	after, err := s.store.Get(ctx, s.recordKey)
	s.Require().NoError(err)
	s.True(bytes.Equal(before.Data, after.Data))
	s.Equal(before.Balance, after.Balance)
}

func (s *LedgerSuite) TestUnderfundedRecordCannotInit() {
	ctx := context.Background()
	s.Require().NoError(s.ledger.CreateRecord(ctx, s.recordKey, 1))

	err := s.submit(s.authority, nil, instruction.InitRegistry{Capacity: 100})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotRentExempt))
	s.False(s.storedRegistry().Initialized)
}

func (s *LedgerSuite) TestJournalRecordsOutcomes() {
	ctx := context.Background()
	s.Require().NoError(s.ledger.CreateRecord(ctx, s.recordKey, recordFunding))
	s.Require().NoError(s.submit(s.authority, nil, instruction.InitRegistry{Capacity: 100}))

	intruder := domain.ID{0xCC}
	_ = s.submit(intruder, &s.participant, instruction.AddEntry{Allocation: 1})

	journal := s.store.Invocations()
	s.Require().Len(journal, 2)
	s.Equal("init_registry", journal[0].Instruction)
	s.True(journal[0].OK)
	s.Equal("add_entry", journal[1].Instruction)
	s.False(journal[1].OK)
	s.NotEmpty(journal[1].Error)
	s.NotEmpty(journal[1].ID)
}

// batchFailingStore rejects record batches on demand so the suite can
// observe what Submit leaves behind when persistence fails.
type batchFailingStore struct {
	*store.InMemoryStore
	failBatch bool
}

func (f *batchFailingStore) PutAll(ctx context.Context, accounts []*runtime.Account) error {
	if f.failBatch {
		return errors.New("record batch rejected")
	}
	return f.InMemoryStore.PutAll(ctx, accounts)
}

func (s *LedgerSuite) TestBatchPersistFailureLeavesRecordsUntouched() {
	ctx := context.Background()
	failing := &batchFailingStore{InMemoryStore: s.store}
	logger := log.New(io.Discard, "", 0)
	ledger := New(failing, processor.New(runtime.DefaultRent(), logger, nil), logger)

	destination := domain.ID{0xD0}
	s.Require().NoError(ledger.CreateRecord(ctx, s.recordKey, recordFunding))
	s.Require().NoError(s.store.Put(ctx, &runtime.Account{Key: destination, Balance: 500}))
	s.Require().NoError(ledger.Submit(ctx, []AccountRef{
		{Key: s.authority, Signer: true},
		{Key: s.recordKey, Writable: true},
	}, instruction.Encode(instruction.InitRegistry{Capacity: 100})))

	failing.failBatch = true
	err := ledger.Submit(ctx, []AccountRef{
		{Key: s.authority, Signer: true},
		{Key: s.recordKey, Writable: true},
		{Key: destination, Writable: true},
	}, instruction.Encode(instruction.CloseRegistry{}))
	s.Require().Error(err)

	// The drain must not survive the failed batch: the registry record
	// keeps its balance and state, and the destination gains nothing.
	record, getErr := s.store.Get(ctx, s.recordKey)
	s.Require().NoError(getErr)
	s.Equal(uint64(recordFunding), record.Balance)
	s.True(s.storedRegistry().Initialized)

	dest, getErr := s.store.Get(ctx, destination)
	s.Require().NoError(getErr)
	s.Equal(uint64(500), dest.Balance)
}

func (s *LedgerSuite) TestMissingRegistryRecord() {
	err := s.submit(s.authority, nil, instruction.InitRegistry{Capacity: 1})
	s.Require().Error(err)
}
