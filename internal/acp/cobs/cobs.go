// Package cobs implements Consistent Overhead Byte Stuffing with ACP's
// block size of 254, plus a streaming frame-boundary detector state
// machine for byte-oriented links that have no message framing of their
// own (serial, USB-CDC, SPI).
//
// Grounded on _examples/original_source/acp_cobs.c: the encode/decode
// block-scan algorithm and the decoder's Idle/Receiving/Complete/Error
// states are carried over verbatim in semantics, expressed in the
// teacher's idiom of explicit buffer indices and sentinel errors
// (internal/bfd/packet.go) rather than C pointer arithmetic.
package cobs

import (
	"errors"
	"fmt"

	"github.com/northboundnetworks/acpgo/internal/acp/acperr"
)

// BlockSize is the maximum number of non-zero bytes a single COBS code
// byte can represent (254, leaving code value 0xFF for "no trailing zero
// in this block").
const BlockSize = 254

// Delimiter is the frame boundary byte COBS encoding removes from the
// payload and that the wire format uses to separate frames.
const Delimiter = 0x00

var (
	// ErrDestTooSmall is returned when dst cannot hold the encoded or
	// decoded output.
	ErrDestTooSmall = errors.New("cobs: destination buffer too small")

	// ErrInvalidEncoding is returned by Decode when src is not a
	// well-formed COBS-encoded byte stream.
	ErrInvalidEncoding = errors.New("cobs: invalid encoding")

	// ErrZeroInInput names an unexpected zero byte left in stuffed
	// output. Encode has no code path that returns it: its stuffing loop
	// accounts for every zero byte in src.
	ErrZeroInInput = errors.New("cobs: unexpected zero byte in input")
)

// MaxEncodedSize returns the largest number of bytes Encode can produce
// for an input of srcLen bytes: the input itself, plus one overhead byte
// per BlockSize input bytes (rounded up), plus one more code byte.
func MaxEncodedSize(srcLen int) int {
	return srcLen + (srcLen+BlockSize-1)/BlockSize + 1
}

// MaxDecodedSize returns the largest number of bytes Decode can produce
// for a COBS-encoded input of srcLen bytes.
func MaxDecodedSize(srcLen int) int {
	if srcLen == 0 {
		return 0
	}

	return srcLen - 1
}

// Encode writes the COBS encoding of src into dst and returns the number
// of bytes written. src may contain any bytes, including zeros: the
// output contains no zero byte, so the caller can place the delimiter on
// either side of the result without ambiguity.
func Encode(dst, src []byte) (int, error) {
	if len(dst) < MaxEncodedSize(len(src)) {
		return 0, acperr.New(acperr.CodeBufferTooSmall, "cobs.Encode", ErrDestTooSmall)
	}

	var (
		read      int
		write     int
		codeIdx   int
		codeValue byte
	)

	codeIdx = write
	write++
	codeValue = 1

	for read < len(src) {
		if src[read] == 0 {
			dst[codeIdx] = codeValue
			codeIdx = write
			write++
			codeValue = 1
			read++

			continue
		}

		dst[write] = src[read]
		write++
		read++
		codeValue++

		if codeValue == BlockSize+1 {
			dst[codeIdx] = codeValue
			codeIdx = write
			write++
			codeValue = 1
		}
	}

	dst[codeIdx] = codeValue

	return write, nil
}

// Decode reverses Encode, writing the original bytes into dst and
// returning the number of bytes written. src must be a single COBS block
// with the delimiters already stripped by the caller; a zero byte
// anywhere in src is rejected with ErrInvalidEncoding.
func Decode(dst, src []byte) (int, error) {
	if len(dst) < MaxDecodedSize(len(src)) {
		return 0, acperr.New(acperr.CodeBufferTooSmall, "cobs.Decode", ErrDestTooSmall)
	}

	var (
		read  int
		write int
	)

	for read < len(src) {
		code := src[read]
		if code == 0 {
			return 0, acperr.New(acperr.CodeCobsDecode, "cobs.Decode", fmt.Errorf("%w: embedded zero code byte", ErrInvalidEncoding))
		}

		read++
		blockLen := int(code) - 1

		if read+blockLen > len(src) {
			return 0, acperr.New(acperr.CodeCobsDecode, "cobs.Decode", fmt.Errorf("%w: block overruns input", ErrInvalidEncoding))
		}

		for _, b := range src[read : read+blockLen] {
			if b == 0 {
				return 0, acperr.New(acperr.CodeCobsDecode, "cobs.Decode", fmt.Errorf("%w: zero byte inside block", ErrInvalidEncoding))
			}
		}

		copy(dst[write:], src[read:read+blockLen])
		write += blockLen
		read += blockLen

		if int(code) != BlockSize+1 && read < len(src) {
			dst[write] = 0
			write++
		}
	}

	return write, nil
}

// DetectorState is the state of a streaming COBS frame-boundary detector.
type DetectorState int

const (
	// Idle means no frame bytes have been observed yet; leading
	// delimiter bytes are silently discarded in this state.
	Idle DetectorState = iota

	// Receiving means a frame is in progress; non-delimiter bytes are
	// being accumulated into the internal buffer.
	Receiving

	// Complete means a full COBS-encoded frame is available via Frame;
	// further FeedByte calls are ignored until Reset.
	Complete

	// Error means the detector encountered a malformed stream (buffer
	// overflow); further FeedByte calls are ignored until Reset.
	Error
)

// String implements fmt.Stringer.
func (s DetectorState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Receiving:
		return "Receiving"
	case Complete:
		return "Complete"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Detector implements the four-state COBS boundary detector described in
// spec.md section 4.3: feed raw link bytes one at a time, and ask for the
// accumulated COBS block whenever a delimiter closes a frame.
//
// A Detector holds no heap-allocated state beyond its fixed buffer, so
// repeated FeedByte calls on the decode hot path make zero allocations.
type Detector struct {
	buf   []byte
	pos   int
	state DetectorState
}

// NewDetector returns a Detector backed by a buffer of the given capacity
// (the largest COBS-encoded frame the detector will accept).
func NewDetector(capacity int) *Detector {
	return &Detector{buf: make([]byte, capacity)}
}

// Reset returns the detector to Idle and discards any partially received
// frame.
func (d *Detector) Reset() {
	d.pos = 0
	d.state = Idle
}

// State reports the detector's current state.
func (d *Detector) State() DetectorState {
	return d.state
}

// FeedByte processes one byte from the link and returns the resulting
// state. Idle ignores delimiter bytes (treating consecutive delimiters as
// idle keep-alives); the first non-delimiter byte transitions to
// Receiving and is stored; a delimiter seen while Receiving transitions to
// Complete. Feeding a byte while already Complete or Error is a no-op.
func (d *Detector) FeedByte(b byte) DetectorState {
	switch d.state {
	case Idle:
		if b == Delimiter {
			return d.state
		}

		d.pos = 0
		d.buf[d.pos] = b
		d.pos++
		d.state = Receiving

	case Receiving:
		if b == Delimiter {
			d.state = Complete
			return d.state
		}

		if d.pos >= len(d.buf) {
			d.state = Error
			return d.state
		}

		d.buf[d.pos] = b
		d.pos++

	case Complete, Error:
		// Ignored until Reset.
	}

	return d.state
}

// Frame returns the accumulated COBS block once the detector reaches
// Complete. The returned slice aliases the detector's internal buffer and
// is only valid until the next Reset or FeedByte call.
func (d *Detector) Frame() []byte {
	if d.state != Complete {
		return nil
	}

	return d.buf[:d.pos]
}
