// Package frame implements the ACP wire header, payload and CRC codec:
// the layer between COBS-destuffed bytes and a decoded in-memory Frame.
//
// All multi-byte fields are big-endian, written directly into
// caller-supplied buffers via encoding/binary — the same zero-allocation
// discipline the teacher applies in internal/bfd/packet.go's
// MarshalControlPacket/UnmarshalControlPacket.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/northboundnetworks/acpgo/internal/acp/acperr"
	"github.com/northboundnetworks/acpgo/internal/acp/cobs"
	"github.com/northboundnetworks/acpgo/internal/acp/crc16"
)

// Type identifies the kind of frame carried on the wire.
type Type uint8

const (
	// Telemetry frames carry device-to-host status/measurement data.
	Telemetry Type = 0x01

	// Command frames carry host-to-device instructions. Command frames
	// MUST be authenticated.
	Command Type = 0x02

	// System frames carry protocol-level control messages.
	System Type = 0x03
)

// String names the frame type for logging.
func (t Type) String() string {
	switch t {
	case Telemetry:
		return "Telemetry"
	case Command:
		return "Command"
	case System:
		return "System"
	default:
		return fmt.Sprintf("Type(0x%02X)", uint8(t))
	}
}

// IsValid reports whether t is one of the defined frame types.
func (t Type) IsValid() bool {
	switch t {
	case Telemetry, Command, System:
		return true
	default:
		return false
	}
}

// RequiresAuth reports whether frames of this type must carry the
// Authenticated flag. Only Command frames are mandatory; Telemetry and
// System frames may optionally be authenticated.
func (t Type) RequiresAuth() bool {
	return t == Command
}

const (
	// FlagAuthenticated marks a frame as carrying a sequence number and
	// (once fully encoded) a trailing HMAC tag.
	FlagAuthenticated uint8 = 0x01

	reservedFlagsMask uint8 = ^FlagAuthenticated

	// ProtocolVersion is the only wire version this codec emits and
	// accepts.
	ProtocolVersion uint8 = 0x01

	// MaxPayload is the largest payload, in bytes, a Frame may carry.
	MaxPayload = 1024

	baseHeaderSize    = 4 // version, type, flags, reserved
	lengthFieldSize   = 2
	sequenceFieldSize = 4
	crcSize           = 2

	unauthHeaderSize = baseHeaderSize + lengthFieldSize
	authHeaderSize   = unauthHeaderSize + sequenceFieldSize
)

// Frame is the decoded, in-memory representation of one ACP message.
// CRC and HMAC bytes are wire-only and not retained here.
type Frame struct {
	Version  uint8
	Type     Type
	Flags    uint8
	Sequence uint32 // valid iff Flags&FlagAuthenticated != 0
	Payload  []byte
}

// Authenticated reports whether the frame carries the Authenticated flag.
func (f *Frame) Authenticated() bool {
	return f.Flags&FlagAuthenticated != 0
}

var (
	ErrMalformedFrame  = errors.New("frame: malformed frame")
	ErrNeedMoreData    = errors.New("frame: need more data")
	ErrCobsDecode      = errors.New("frame: cobs decode failed")
	ErrCrcMismatch     = errors.New("frame: crc mismatch")
	ErrInvalidVersion  = errors.New("frame: invalid version")
	ErrInvalidType     = errors.New("frame: invalid type")
	ErrPayloadTooLarge = errors.New("frame: payload exceeds maximum")
	ErrDestTooSmall    = errors.New("frame: destination buffer too small")
)

func headerSize(flags uint8) int {
	if flags&FlagAuthenticated != 0 {
		return authHeaderSize
	}

	return unauthHeaderSize
}

// MaxEncodedSize returns the largest number of bytes Encode can write for
// a frame carrying payloadLen bytes of payload, authenticated or not.
func MaxEncodedSize(payloadLen int, authenticated bool) int {
	hdr := unauthHeaderSize
	if authenticated {
		hdr = authHeaderSize
	}

	wireLen := hdr + payloadLen + crcSize

	return 1 + cobs.MaxEncodedSize(wireLen) + 1
}

// Encode serialises f into dst: wire header, payload, CRC-16, COBS-stuffed
// and wrapped with leading/trailing 0x00 delimiters. It returns the
// number of bytes written.
//
// f.Sequence is written verbatim; callers that need a session-issued
// sequence number assign it before calling Encode (see the session
// package and the root facade).
func Encode(f *Frame, dst []byte) (int, error) {
	if !f.Type.IsValid() {
		return 0, acperr.New(acperr.CodeInvalidType, "frame.Encode", fmt.Errorf("%w: %v", ErrInvalidType, f.Type))
	}

	if len(f.Payload) > MaxPayload {
		return 0, acperr.New(acperr.CodePayloadTooLarge, "frame.Encode", fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(f.Payload)))
	}

	if f.Flags&reservedFlagsMask != 0 {
		return 0, acperr.New(acperr.CodeInvalidFlags, "frame.Encode", fmt.Errorf("%w: reserved flag bits set", ErrMalformedFrame))
	}

	authenticated := f.Flags&FlagAuthenticated != 0
	hdr := unauthHeaderSize
	if authenticated {
		hdr = authHeaderSize
	}

	wireLen := hdr + len(f.Payload) + crcSize
	var wireBuf [authHeaderSize + MaxPayload + crcSize]byte
	wire := wireBuf[:wireLen]

	wire[0] = ProtocolVersion
	wire[1] = uint8(f.Type)
	wire[2] = f.Flags
	wire[3] = 0
	binary.BigEndian.PutUint16(wire[4:6], uint16(len(f.Payload)))

	off := unauthHeaderSize
	if authenticated {
		binary.BigEndian.PutUint32(wire[6:10], f.Sequence)
		off = authHeaderSize
	}

	copy(wire[off:], f.Payload)

	crc := crc16.Checksum(wire[:off+len(f.Payload)])
	binary.BigEndian.PutUint16(wire[off+len(f.Payload):], crc)

	need := MaxEncodedSize(len(f.Payload), authenticated)
	if len(dst) < need {
		return 0, acperr.New(acperr.CodeBufferTooSmall, "frame.Encode", ErrDestTooSmall)
	}

	dst[0] = 0x00

	n, err := cobs.Encode(dst[1:], wire)
	if err != nil {
		return 0, acperr.New(acperr.CodeCobsEncode, "frame.Encode", fmt.Errorf("frame: encode: %w", err))
	}

	dst[1+n] = 0x00

	return 1 + n + 1, nil
}

// Decode parses one frame from src, which must begin at the leading
// 0x00 delimiter of a COBS-stuffed ACP frame. It returns the number of
// input bytes consumed, including the trailing delimiter.
//
// Decode does not verify authentication or replay state — that is the
// session layer's job, invoked by the facade after Decode succeeds.
func Decode(src []byte, f *Frame) (int, error) {
	if len(src) < 1 || src[0] != 0x00 {
		return 0, acperr.New(acperr.CodeMalformedFrame, "frame.Decode", fmt.Errorf("%w: missing leading delimiter", ErrMalformedFrame))
	}

	trailer := -1
	for i := 1; i < len(src); i++ {
		if src[i] == 0x00 {
			trailer = i
			break
		}
	}

	if trailer < 0 {
		return 0, acperr.New(acperr.CodeNeedMoreData, "frame.Decode", ErrNeedMoreData)
	}

	stuffed := src[1:trailer]

	// The scratch buffer is sized for the largest valid frame; a longer
	// stuffed region is rejected before decoding.
	const maxWire = authHeaderSize + MaxPayload + crcSize
	const maxDecoded = maxWire + (maxWire+cobs.BlockSize-1)/cobs.BlockSize
	if cobs.MaxDecodedSize(len(stuffed)) > maxDecoded {
		return 0, acperr.New(acperr.CodeFrameTooLong, "frame.Decode", fmt.Errorf("%w: too long", ErrMalformedFrame))
	}

	var decodedBuf [maxDecoded]byte
	n, err := cobs.Decode(decodedBuf[:], stuffed)
	if err != nil {
		return 0, acperr.New(acperr.CodeCobsDecode, "frame.Decode", fmt.Errorf("%w: %v", ErrCobsDecode, err))
	}

	decoded := decodedBuf[:n]

	if len(decoded) < unauthHeaderSize+crcSize {
		return 0, acperr.New(acperr.CodeFrameTooShort, "frame.Decode", fmt.Errorf("%w: too short", ErrMalformedFrame))
	}

	version := decoded[0]
	if version != ProtocolVersion {
		return 0, acperr.New(acperr.CodeInvalidVersion, "frame.Decode", fmt.Errorf("%w: %d", ErrInvalidVersion, version))
	}

	typ := Type(decoded[1])
	if !typ.IsValid() {
		return 0, acperr.New(acperr.CodeInvalidType, "frame.Decode", fmt.Errorf("%w: 0x%02X", ErrInvalidType, decoded[1]))
	}

	flags := decoded[2]
	if flags&reservedFlagsMask != 0 {
		return 0, acperr.New(acperr.CodeInvalidFlags, "frame.Decode", fmt.Errorf("%w: reserved flag bits set", ErrMalformedFrame))
	}

	if decoded[3] != 0 {
		return 0, acperr.New(acperr.CodeMalformedFrame, "frame.Decode", fmt.Errorf("%w: reserved header byte non-zero", ErrMalformedFrame))
	}

	length := binary.BigEndian.Uint16(decoded[4:6])
	if int(length) > MaxPayload {
		return 0, acperr.New(acperr.CodePayloadTooLarge, "frame.Decode", fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, length))
	}

	authenticated := flags&FlagAuthenticated != 0
	hdr := unauthHeaderSize
	var sequence uint32

	if authenticated {
		if len(decoded) < authHeaderSize+crcSize {
			return 0, acperr.New(acperr.CodeFrameTooShort, "frame.Decode", fmt.Errorf("%w: too short for authenticated header", ErrMalformedFrame))
		}

		sequence = binary.BigEndian.Uint32(decoded[6:10])
		hdr = authHeaderSize
	}

	want := hdr + int(length) + crcSize
	if len(decoded) != want {
		return 0, acperr.New(acperr.CodeInvalidLength, "frame.Decode", fmt.Errorf("%w: length field does not match frame size", ErrMalformedFrame))
	}

	crcOffset := hdr + int(length)
	gotCRC := binary.BigEndian.Uint16(decoded[crcOffset:])

	if !crc16.Verify(decoded[:crcOffset], gotCRC) {
		return 0, acperr.New(acperr.CodeCrcMismatch, "frame.Decode", ErrCrcMismatch)
	}

	f.Version = version
	f.Type = typ
	f.Flags = flags
	f.Sequence = sequence
	f.Payload = append(f.Payload[:0], decoded[hdr:crcOffset]...)

	return trailer + 1, nil
}

// InnerBytes returns the slice of a full transmission unit (as produced
// by Encode) between the leading and trailing 0x00 delimiters, exclusive
// — the exact region the session layer's HMAC covers.
func InnerBytes(encoded []byte) ([]byte, error) {
	if len(encoded) < 2 || encoded[0] != 0x00 {
		return nil, acperr.New(acperr.CodeMalformedFrame, "frame.InnerBytes", fmt.Errorf("%w: missing leading delimiter", ErrMalformedFrame))
	}

	for i := 1; i < len(encoded); i++ {
		if encoded[i] == 0x00 {
			return encoded[1:i], nil
		}
	}

	return nil, acperr.New(acperr.CodeNeedMoreData, "frame.InnerBytes", ErrNeedMoreData)
}
