// Package acperr defines ACP's error taxonomy: a decade-ranged numeric
// Code (spec.md section 6.4) plus an Error type that carries a Code while
// remaining unwrappable to the underlying cause, in the teacher's
// sentinel-error-plus-fmt.Errorf-wrapping style (internal/bfd/packet.go).
//
// internal/acp/frame, internal/acp/session, internal/acp/cobs and the acp
// facade each wrap their sentinel errors in an *Error before returning
// them, so CodeOf(err) reports the spec's stable decade-ranged number for
// every live error path, not just in tests.
package acperr

import (
	"errors"
	"fmt"
)

// Code is a decade-ranged ACP status code. 0 is success; 1-9 are generic
// errors; 10-19 frame errors; 20-29 COBS errors; 30-39 integrity (CRC)
// errors; 40-49 authentication errors; 80-99 resource/system errors.
type Code int

const (
	// Ok indicates success.
	Ok Code = 0

	// Generic errors (1-9).
	CodeInvalidParam   Code = 1
	CodeBufferTooSmall Code = 2
	CodeNeedMoreData   Code = 3
	CodeInvalidState   Code = 4

	// Frame errors (10-19).
	CodeInvalidVersion  Code = 10
	CodeInvalidType     Code = 11
	CodePayloadTooLarge Code = 12
	CodeMalformedFrame  Code = 13
	CodeInvalidFlags    Code = 14
	CodeInvalidLength   Code = 15
	CodeSequenceError   Code = 17
	CodeFrameTooShort   Code = 18
	CodeFrameTooLong    Code = 19

	// COBS errors (20-29).
	CodeCobsDecode Code = 20
	CodeCobsEncode Code = 21

	// Integrity errors (30-39).
	CodeCrcMismatch Code = 30

	// Authentication errors (40-49).
	CodeAuthRequired   Code = 40
	CodeAuthFailed     Code = 41
	CodeReplay         Code = 42
	CodeSessionNotInit Code = 44
	CodeKeyTooShort    Code = 48

	// Resource/system errors (80-99).
	CodeInternal       Code = 82
	CodeSelfTestFailed Code = 83
	CodeKeyStoreError  Code = 84
	CodeEntropyError   Code = 85
)

// String names the code for logging and CLI output.
func (c Code) String() string {
	switch c {
	case Ok:
		return "ok"
	case CodeInvalidParam:
		return "invalid_param"
	case CodeBufferTooSmall:
		return "buffer_too_small"
	case CodeNeedMoreData:
		return "need_more_data"
	case CodeInvalidState:
		return "invalid_state"
	case CodeInvalidVersion:
		return "invalid_version"
	case CodeInvalidType:
		return "invalid_type"
	case CodePayloadTooLarge:
		return "payload_too_large"
	case CodeMalformedFrame:
		return "malformed_frame"
	case CodeInvalidFlags:
		return "invalid_flags"
	case CodeInvalidLength:
		return "invalid_length"
	case CodeSequenceError:
		return "sequence_error"
	case CodeFrameTooShort:
		return "frame_too_short"
	case CodeFrameTooLong:
		return "frame_too_long"
	case CodeCobsDecode:
		return "cobs_decode"
	case CodeCobsEncode:
		return "cobs_encode"
	case CodeCrcMismatch:
		return "crc_mismatch"
	case CodeAuthRequired:
		return "auth_required"
	case CodeAuthFailed:
		return "auth_failed"
	case CodeReplay:
		return "replay"
	case CodeSessionNotInit:
		return "session_not_init"
	case CodeKeyTooShort:
		return "key_too_short"
	case CodeInternal:
		return "internal"
	case CodeSelfTestFailed:
		return "self_test_failed"
	case CodeKeyStoreError:
		return "keystore_error"
	case CodeEntropyError:
		return "entropy_error"
	default:
		return "unknown"
	}
}

// Error is an ACP error carrying a Code alongside the usual Go error
// wrapping chain.
type Error struct {
	Code Code
	Op   string
	Err  error
}

// New constructs an *Error for op failing with code, wrapping cause (which
// may be nil).
func New(code Code, op string, cause error) *Error {
	return &Error{Code: code, Op: op, Err: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("acp: %s: %s", e.Op, e.Code)
	}

	return fmt.Sprintf("acp: %s: %s: %v", e.Op, e.Code, e.Err)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the Code from err if it is (or wraps) an *Error,
// otherwise returns CodeInternal as a conservative default for errors
// acperr never classified.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}

	return CodeInternal
}
