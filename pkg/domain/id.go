package domain

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// IDSize is the byte width of every identity handled by the registry:
// authorities, participants, and record keys all share it.
const IDSize = 32

// ID is a fixed-width identity. It is a domain primitive that enforces
// validity at parse time; the zero value is the all-zero identity.
type ID [IDSize]byte

// ParseID validates and returns an ID from its hex string form.
func ParseID(s string) (ID, error) {
	var id ID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("malformed identity %q: %w", s, err)
	}
	if len(raw) != IDSize {
		return id, fmt.Errorf("identity must be %d bytes, got %d", IDSize, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// IDFromBytes validates and returns an ID from a raw byte slice.
func IDFromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != IDSize {
		return id, fmt.Errorf("identity must be %d bytes, got %d", IDSize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// String returns the hex representation used as the entry key form.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns a copy of the raw identity bytes.
func (id ID) Bytes() []byte {
	out := make([]byte, IDSize)
	copy(out, id[:])
	return out
}

// IsZero reports whether the identity is the all-zero value.
func (id ID) IsZero() bool {
	return bytes.Equal(id[:], make([]byte, IDSize))
}
