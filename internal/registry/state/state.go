// Package state holds the registry's persistent form: one fixed-size record
// whose layout is stable byte for byte. A variable-size participant map is
// packed into a statically sized region, length-prefixed and zero padded, so
// the hosting runtime can allocate the record once and never resize it.
package state

import (
	"encoding/binary"
	"fmt"
	"sort"

	"allowlist/pkg/domain"
	dErrors "allowlist/pkg/domain-errors"
	"allowlist/pkg/platform/sentinel"
)

const (
	initFlagSize  = 1
	authoritySize = domain.IDSize
	capacitySize  = 8
	mapLenSize    = 4

	// MapSize is the byte capacity of the serialized entry map region.
	MapSize = 5116
	// RecordSize is the full record length: flag + authority + capacity +
	// map length prefix + map region.
	RecordSize = initFlagSize + authoritySize + capacitySize + mapLenSize + MapSize

	authorityOffset = initFlagSize
	capacityOffset  = authorityOffset + authoritySize
	mapLenOffset    = capacityOffset + capacitySize
	mapOffset       = mapLenOffset + mapLenSize
)

// Registry is the decoded registry record.
type Registry struct {
	Initialized bool
	Authority   domain.ID
	// Capacity is the maximum entry count declared at init.
	Capacity uint64
	// Entries maps participant key form to allocation. Iteration order is
	// irrelevant; serialization is deterministic by ascending key.
	Entries map[string]uint64
}

// NewRegistry returns an empty, uninitialized registry.
func NewRegistry() Registry {
	return Registry{Entries: make(map[string]uint64)}
}

// SetEntry inserts or overwrites a participant's allocation.
func (r *Registry) SetEntry(key string, allocation uint64) {
	if r.Entries == nil {
		r.Entries = make(map[string]uint64)
	}
	r.Entries[key] = allocation
}

// RemoveEntry deletes a participant's entry. Absence is not an error.
func (r *Registry) RemoveEntry(key string) {
	delete(r.Entries, key)
}

// Contains reports whether the participant has an entry.
func (r *Registry) Contains(key string) bool {
	_, ok := r.Entries[key]
	return ok
}

// Allocation returns the participant's allocation if present.
func (r *Registry) Allocation(key string) (uint64, bool) {
	v, ok := r.Entries[key]
	return v, ok
}

// SerializedMapSize returns the byte length the entry map serializes to.
func (r *Registry) SerializedMapSize() int {
	n := 4
	for k := range r.Entries {
		n += 4 + len(k) + 8
	}
	return n
}

// Unpack decodes a full record buffer. Corrupted input is reported as a
// recoverable error, never a panic: a bad init flag, a declared map length
// past the region, or a truncated sub-map all fail with invalid account
// data.
func Unpack(src []byte) (Registry, error) {
	if len(src) != RecordSize {
		return Registry{}, fmt.Errorf("record buffer is %d bytes, want %d: %w", len(src), RecordSize, sentinel.ErrAccountDataSize)
	}

	r := NewRegistry()
	switch src[0] {
	case 0:
		r.Initialized = false
	case 1:
		r.Initialized = true
	default:
		return Registry{}, fmt.Errorf("init flag byte %d: %w", src[0], sentinel.ErrInvalidAccountData)
	}

	copy(r.Authority[:], src[authorityOffset:capacityOffset])
	r.Capacity = binary.LittleEndian.Uint64(src[capacityOffset:mapLenOffset])

	mapLen := int(binary.LittleEndian.Uint32(src[mapLenOffset:mapOffset]))
	if mapLen > MapSize {
		return Registry{}, fmt.Errorf("declared map length %d exceeds region of %d bytes: %w", mapLen, MapSize, sentinel.ErrInvalidAccountData)
	}
	if mapLen > 0 {
		entries, err := decodeEntries(src[mapOffset : mapOffset+mapLen])
		if err != nil {
			return Registry{}, err
		}
		r.Entries = entries
	}
	return r, nil
}

// Pack encodes the registry into a full record buffer, overwriting it in
// place. When the entry map would not fit the region, Pack fails with the
// size-exceeded code before touching the buffer; it never truncates.
func (r *Registry) Pack(dst []byte) error {
	if len(dst) != RecordSize {
		return fmt.Errorf("record buffer is %d bytes, want %d: %w", len(dst), RecordSize, sentinel.ErrAccountDataSize)
	}

	encoded := encodeEntries(r.Entries)
	if len(encoded) > MapSize {
		return dErrors.New(dErrors.CodeSizeExceeded,
			fmt.Sprintf("serialized entries take %d bytes, region holds %d", len(encoded), MapSize))
	}

	if r.Initialized {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
	copy(dst[authorityOffset:capacityOffset], r.Authority[:])
	binary.LittleEndian.PutUint64(dst[capacityOffset:mapLenOffset], r.Capacity)
	binary.LittleEndian.PutUint32(dst[mapLenOffset:mapOffset], uint32(len(encoded)))

	region := dst[mapOffset:]
	copy(region, encoded)
	for i := len(encoded); i < MapSize; i++ {
		region[i] = 0
	}
	return nil
}

// encodeEntries renders the map as a u32 count followed by (u32 key length,
// key bytes, u64 allocation) tuples in ascending key order. Little-endian
// throughout, so equal maps always produce identical bytes.
func encodeEntries(entries map[string]uint64) []byte {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	size := 4
	for _, k := range keys {
		size += 4 + len(k) + 8
	}
	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(keys)))
	for _, k := range keys {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(k)))
		out = append(out, k...)
		out = binary.LittleEndian.AppendUint64(out, entries[k])
	}
	return out
}

// decodeEntries is strict: the slice must hold exactly the declared entries
// and nothing else.
func decodeEntries(src []byte) (map[string]uint64, error) {
	if len(src) < 4 {
		return nil, fmt.Errorf("entry map shorter than its count prefix: %w", sentinel.ErrInvalidAccountData)
	}
	count := int(binary.LittleEndian.Uint32(src[:4]))
	rest := src[4:]

	// The count prefix is attacker-controlled; bound it by the smallest
	// possible wire entry (u32 key length + empty key + u64 allocation)
	// before sizing the map.
	if count > len(rest)/12 {
		return nil, fmt.Errorf("declared %d entries cannot fit in %d bytes: %w", count, len(rest), sentinel.ErrInvalidAccountData)
	}

	entries := make(map[string]uint64, count)
	for i := 0; i < count; i++ {
		if len(rest) < 4 {
			return nil, fmt.Errorf("entry %d truncated at key length: %w", i, sentinel.ErrInvalidAccountData)
		}
		keyLen := int(binary.LittleEndian.Uint32(rest[:4]))
		rest = rest[4:]
		if len(rest) < keyLen+8 {
			return nil, fmt.Errorf("entry %d truncated at key or allocation: %w", i, sentinel.ErrInvalidAccountData)
		}
		key := string(rest[:keyLen])
		allocation := binary.LittleEndian.Uint64(rest[keyLen : keyLen+8])
		rest = rest[keyLen+8:]
		if _, dup := entries[key]; dup {
			return nil, fmt.Errorf("duplicate entry key %q: %w", key, sentinel.ErrInvalidAccountData)
		}
		entries[key] = allocation
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%d trailing bytes after %d entries: %w", len(rest), count, sentinel.ErrInvalidAccountData)
	}
	return entries, nil
}
