package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ALLOWLIST_DB_PATH", "")
	t.Setenv("ALLOWLIST_RENT_BASE", "")
	t.Setenv("ALLOWLIST_RENT_PER_BYTE", "")

	cfg := FromEnv()
	assert.Empty(t, cfg.DBPath)
	assert.Equal(t, uint64(890880), cfg.RentBase)
	assert.Equal(t, uint64(6960), cfg.RentPerByte)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ALLOWLIST_DB_PATH", "/tmp/records.db")
	t.Setenv("ALLOWLIST_RENT_BASE", "10")
	t.Setenv("ALLOWLIST_RENT_PER_BYTE", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, "/tmp/records.db", cfg.DBPath)
	assert.Equal(t, uint64(10), cfg.RentBase)
	assert.Equal(t, uint64(6960), cfg.RentPerByte)
}
