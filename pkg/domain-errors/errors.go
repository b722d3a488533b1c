package domainerrors

import "errors"

// Code classifies registry failures so callers can branch on the kind of
// failure without string matching. Codes are stable; messages are not.
type Code string

const (
	// CodeInvalidInstruction marks malformed or unrecognized instruction data.
	CodeInvalidInstruction Code = "invalid_instruction"
	// CodeNotRentExempt marks an init attempt against a record whose retained
	// balance does not satisfy the runtime's retention policy.
	CodeNotRentExempt Code = "not_rent_exempt"
	// CodeNotInitialized marks any operation other than init against an
	// uninitialized registry.
	CodeNotInitialized Code = "not_initialized"
	// CodeNotOwner marks an administrative call whose caller is not the
	// registry authority.
	CodeNotOwner Code = "not_owner"
	// CodeSizeExceeded marks a mutation that would grow the registry past its
	// declared capacity or its serialized byte limit.
	CodeSizeExceeded Code = "size_exceeded"
	// CodeNotSelf marks a self-service call whose caller is not the targeted
	// participant.
	CodeNotSelf Code = "not_self"
	// CodeInvalidAuthority marks a close attempt by a non-authority caller.
	CodeInvalidAuthority Code = "invalid_authority"
	// CodeOverflow marks a checked-arithmetic overflow on a balance transfer.
	CodeOverflow Code = "overflow"
)

// Error carries a stable code alongside a human-readable message and an
// optional cause. Stores and the processor return these (optionally wrapped)
// so tests and callers can assert on codes, never on messages.
type Error struct {
	code  Code
	msg   string
	cause error
}

// New constructs a coded error.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Wrap constructs a coded error around an underlying cause.
func Wrap(code Code, msg string, cause error) *Error {
	return &Error{code: code, msg: msg, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

// Unwrap exposes the cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the stable classification of this error.
func (e *Error) Code() Code {
	return e.code
}

// CodeOf extracts the code from err's chain, or "" when err carries none.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code
	}
	return ""
}

// HasCode reports whether err's chain carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
