package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allowlist/internal/runtime"
	"allowlist/pkg/domain"
	"allowlist/pkg/platform/sentinel"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreContract(t *testing.T) {
	ctx := context.Background()
	key := domain.ID{0xAB}

	t.Run("missing record returns ErrNotFound", func(t *testing.T) {
		_, err := newSQLite(t).Get(ctx, key)
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("put then get round-trips, put upserts", func(t *testing.T) {
		s := newSQLite(t)
		require.NoError(t, s.Put(ctx, &runtime.Account{Key: key, Balance: 7, Data: []byte{1, 2, 3}}))
		require.NoError(t, s.Put(ctx, &runtime.Account{Key: key, Balance: 8, Data: []byte{4}}))

		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, uint64(8), got.Balance)
		assert.Equal(t, []byte{4}, got.Data)
	})

	t.Run("put all upserts the whole batch", func(t *testing.T) {
		s := newSQLite(t)
		other := domain.ID{0xCD}
		require.NoError(t, s.Put(ctx, &runtime.Account{Key: key, Balance: 1, Data: []byte{1}}))
		require.NoError(t, s.PutAll(ctx, []*runtime.Account{
			{Key: key, Balance: 2, Data: []byte{2}},
			{Key: other, Balance: 3, Data: []byte{3}},
		}))

		first, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), first.Balance)

		second, err := s.Get(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), second.Balance)
	})

	t.Run("journal accepts invocations", func(t *testing.T) {
		s := newSQLite(t)
		inv := Invocation{
			ID:          uuid.NewString(),
			Record:      key.String(),
			Instruction: "init_registry",
			OK:          true,
			At:          time.Now(),
		}
		require.NoError(t, s.AppendInvocation(ctx, inv))
	})
}
