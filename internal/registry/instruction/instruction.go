// Package instruction defines the wire encoding of registry operations: a
// leading tag byte followed by a fixed-width little-endian payload where the
// operation carries one. The targeted participant is never part of the
// payload; it arrives as a record reference at invocation time.
package instruction

import (
	"encoding/binary"

	dErrors "allowlist/pkg/domain-errors"
)

// Tag selects the instruction variant on the wire.
type Tag uint8

const (
	TagInitRegistry Tag = iota
	TagAddEntry
	TagRemoveEntry
	TagZeroAllocation
	TagCloseRegistry
)

// String names the variant for logs, journals, and metric labels.
func (t Tag) String() string {
	switch t {
	case TagInitRegistry:
		return "init_registry"
	case TagAddEntry:
		return "add_entry"
	case TagRemoveEntry:
		return "remove_entry"
	case TagZeroAllocation:
		return "zero_allocation"
	case TagCloseRegistry:
		return "close_registry"
	default:
		return "unknown"
	}
}

// Instruction is one decoded registry operation. Variants are comparable
// value types, so Decode(Encode(i)) == i holds for every valid i.
type Instruction interface {
	Tag() Tag
}

// InitRegistry creates the registry inside a pre-allocated record.
type InitRegistry struct {
	// Capacity is the maximum intended entry count.
	Capacity uint64
}

// AddEntry inserts or overwrites the targeted participant's allocation.
type AddEntry struct {
	Allocation uint64
}

// RemoveEntry deletes the targeted participant's entry if present.
type RemoveEntry struct{}

// ZeroAllocation lets a participant reset its own allocation to zero.
type ZeroAllocation struct{}

// CloseRegistry drains the record's retained balance and wipes it.
type CloseRegistry struct{}

func (InitRegistry) Tag() Tag   { return TagInitRegistry }
func (AddEntry) Tag() Tag       { return TagAddEntry }
func (RemoveEntry) Tag() Tag    { return TagRemoveEntry }
func (ZeroAllocation) Tag() Tag { return TagZeroAllocation }
func (CloseRegistry) Tag() Tag  { return TagCloseRegistry }

const payloadSize = 8

// Decode parses instruction bytes into a variant. It fails with the
// invalid-instruction code on empty input, an unknown tag, or a numeric
// payload shorter than eight bytes.
func Decode(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInstruction, "empty instruction data")
	}
	tag, rest := Tag(data[0]), data[1:]

	switch tag {
	case TagInitRegistry:
		capacity, err := decodeU64(rest)
		if err != nil {
			return nil, err
		}
		return InitRegistry{Capacity: capacity}, nil
	case TagAddEntry:
		allocation, err := decodeU64(rest)
		if err != nil {
			return nil, err
		}
		return AddEntry{Allocation: allocation}, nil
	case TagRemoveEntry:
		return RemoveEntry{}, nil
	case TagZeroAllocation:
		return ZeroAllocation{}, nil
	case TagCloseRegistry:
		return CloseRegistry{}, nil
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInstruction, "unknown instruction tag")
	}
}

// Encode renders a variant back to its wire form.
func Encode(ins Instruction) []byte {
	switch v := ins.(type) {
	case InitRegistry:
		return encodeU64(TagInitRegistry, v.Capacity)
	case AddEntry:
		return encodeU64(TagAddEntry, v.Allocation)
	default:
		return []byte{byte(ins.Tag())}
	}
}

func decodeU64(rest []byte) (uint64, error) {
	if len(rest) < payloadSize {
		return 0, dErrors.New(dErrors.CodeInvalidInstruction, "instruction payload too short")
	}
	return binary.LittleEndian.Uint64(rest[:payloadSize]), nil
}

func encodeU64(tag Tag, v uint64) []byte {
	out := make([]byte, 1+payloadSize)
	out[0] = byte(tag)
	binary.LittleEndian.PutUint64(out[1:], v)
	return out
}
