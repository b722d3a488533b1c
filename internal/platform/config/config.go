package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Registry captures process-level configuration for the registry runtime.
type Registry struct {
	// DBPath is the sqlite file backing the record store; empty selects the
	// in-memory store.
	DBPath string
	// RentBase and RentPerByte are the retention-balance rates records must
	// cover to stay exempt from reclamation.
	RentBase    uint64
	RentPerByte uint64
}

// FromEnv builds a Registry config from environment variables so callers
// stay lean. A .env file is loaded first when present.
func FromEnv() Registry {
	_ = godotenv.Load()

	return Registry{
		DBPath:      os.Getenv("ALLOWLIST_DB_PATH"),
		RentBase:    envUint("ALLOWLIST_RENT_BASE", 890880),
		RentPerByte: envUint("ALLOWLIST_RENT_PER_BYTE", 6960),
	}
}

func envUint(key string, fallback uint64) uint64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
