// Package acp is the ACP reference codec facade: encode_frame and
// decode_frame, applying authentication policy by frame type on top of
// internal/acp/frame and internal/acp/session.
//
// Mirrors acp_init()/acp_encode_frame()/acp_decode_frame() in
// original_source/acp.c and acp_protocol.h: a thin top-level API that
// owns no state of its own beyond the one-time self-test flag.
package acp

import (
	"errors"
	"fmt"
	"sync"

	"github.com/northboundnetworks/acpgo/internal/acp/acperr"
	"github.com/northboundnetworks/acpgo/internal/acp/frame"
	"github.com/northboundnetworks/acpgo/internal/acp/primitive"
	"github.com/northboundnetworks/acpgo/internal/acp/session"
)

// FrameType identifies the kind of frame carried on the wire.
type FrameType = frame.Type

const (
	Telemetry FrameType = frame.Telemetry
	Command   FrameType = frame.Command
	System    FrameType = frame.System
)

// FlagAuthenticated marks a frame as authenticated.
const FlagAuthenticated = frame.FlagAuthenticated

// MaxPayload is the largest payload, in bytes, a Frame may carry.
const MaxPayload = frame.MaxPayload

// Frame is the decoded, in-memory representation of one ACP message.
type Frame = frame.Frame

// Session holds one peer association's key/nonce/sequence state.
type Session = session.Session

// NewSession is re-exported from internal/acp/session for convenience.
func NewSession(keyID uint32, key []byte, nonce uint64) (*Session, error) {
	return session.New(keyID, key, nonce)
}

var (
	// ErrAuthRequired is returned when a Command frame is encoded or
	// decoded without the Authenticated flag set.
	ErrAuthRequired = errors.New("acp: authentication required for this frame type")

	// ErrSessionRequired is returned when an authenticated operation is
	// attempted without a Session.
	ErrSessionRequired = errors.New("acp: session required for authenticated frame")

	// ErrAuthFailed is returned by DecodeFrame when the HMAC tag does
	// not match.
	ErrAuthFailed = errors.New("acp: authentication failed")

	// ErrReplay is returned by DecodeFrame when the sequence number
	// fails the session's replay check.
	ErrReplay = errors.New("acp: replay detected")

	// ErrTruncatedTag is returned by DecodeFrame when fewer than 16
	// bytes remain for the HMAC tag after the frame codec's trailing
	// delimiter.
	ErrTruncatedTag = errors.New("acp: truncated HMAC tag")

	errSelfTestFailed error
	selfTestOnce      sync.Once
	initialised       bool
)

// Init runs the library's cryptographic self-tests (SHA-256 and
// HMAC-SHA-256 known-answer vectors). It is idempotent and safe to call
// multiple times; no ACP operation may proceed if it returns an error.
func Init() error {
	selfTestOnce.Do(func() {
		errSelfTestFailed = primitive.SelfTest()
		initialised = errSelfTestFailed == nil
	})

	return errSelfTestFailed
}

// Cleanup is the counterpart to acp_cleanup(): ACP holds no process-wide
// resources beyond the self-test flag, so Cleanup clears that flag and
// re-arms the self-test. EncodeFrame and DecodeFrame fail until Init is
// called again.
func Cleanup() {
	initialised = false
	selfTestOnce = sync.Once{}
}

// IsValidFrameType reports whether t is one of the defined frame types.
func IsValidFrameType(t FrameType) bool {
	return t.IsValid()
}

// FrameRequiresAuth reports whether frames of type t must be
// authenticated.
func FrameRequiresAuth(t FrameType) bool {
	return t.RequiresAuth()
}

// EncodeFrame builds and serialises one ACP frame. If typ is Command,
// flags must include FlagAuthenticated (else ErrAuthRequired). If
// FlagAuthenticated is set, sess must be non-nil; its next sequence
// number is consumed and the resulting transmission unit carries a
// trailing 16-byte HMAC tag computed over the COBS-stuffed inner bytes.
//
// The returned slice is freshly allocated on every call, so EncodeFrame
// is not allocation-free.
func EncodeFrame(typ FrameType, flags uint8, payload []byte, sess *Session) ([]byte, error) {
	if !initialised {
		return nil, acperr.New(acperr.CodeInvalidState, "EncodeFrame", errNotInitialised())
	}

	if typ.RequiresAuth() && flags&FlagAuthenticated == 0 {
		return nil, acperr.New(acperr.CodeAuthRequired, "EncodeFrame", ErrAuthRequired)
	}

	authenticated := flags&FlagAuthenticated != 0

	f := &frame.Frame{
		Version: frame.ProtocolVersion,
		Type:    typ,
		Flags:   flags,
		Payload: payload,
	}

	if authenticated {
		if sess == nil {
			return nil, acperr.New(acperr.CodeInvalidParam, "EncodeFrame", ErrSessionRequired)
		}

		seq, err := sess.TxSeq()
		if err != nil {
			return nil, fmt.Errorf("acp: EncodeFrame: %w", err)
		}

		f.Sequence = seq
	}

	dst := make([]byte, frame.MaxEncodedSize(len(payload), authenticated))

	n, err := frame.Encode(f, dst)
	if err != nil {
		return nil, fmt.Errorf("acp: EncodeFrame: %w", err)
	}

	if !authenticated {
		return dst[:n], nil
	}

	inner, err := frame.InnerBytes(dst[:n])
	if err != nil {
		return nil, fmt.Errorf("acp: EncodeFrame: %w", err)
	}

	tag, err := sess.ComputeHMAC(inner)
	if err != nil {
		return nil, fmt.Errorf("acp: EncodeFrame: %w", err)
	}

	out := make([]byte, n+len(tag))
	copy(out, dst[:n])
	copy(out[n:], tag[:])

	return out, nil
}

// DecodeFrame parses one ACP frame from input. If the tentative frame is
// authenticated, sess must be non-nil and is used to verify the trailing
// HMAC tag and the sequence number's replay-window position; the session
// is mutated only after both checks succeed. If the tentative frame is
// an unauthenticated Command, DecodeFrame returns ErrAuthRequired.
//
// consumed is the number of input bytes making up this frame, including
// the trailing HMAC tag when present; callers advance their read cursor
// by exactly that amount.
//
// A non-empty payload is copied into a newly allocated slice for the
// returned Frame, so DecodeFrame is not allocation-free.
func DecodeFrame(input []byte, sess *Session) (Frame, int, error) {
	if !initialised {
		return Frame{}, 0, acperr.New(acperr.CodeInvalidState, "DecodeFrame", errNotInitialised())
	}

	var f frame.Frame

	consumed, err := frame.Decode(input, &f)
	if err != nil {
		return Frame{}, 0, fmt.Errorf("acp: DecodeFrame: %w", err)
	}

	if !f.Authenticated() {
		if f.Type.RequiresAuth() {
			return Frame{}, 0, acperr.New(acperr.CodeAuthRequired, "DecodeFrame", ErrAuthRequired)
		}

		return f, consumed, nil
	}

	if sess == nil {
		return Frame{}, 0, acperr.New(acperr.CodeInvalidParam, "DecodeFrame", ErrSessionRequired)
	}

	if len(input) < consumed+primitive.TagSize {
		return Frame{}, 0, acperr.New(acperr.CodeFrameTooShort, "DecodeFrame", ErrTruncatedTag)
	}

	inner, err := frame.InnerBytes(input[:consumed])
	if err != nil {
		return Frame{}, 0, fmt.Errorf("acp: DecodeFrame: %w", err)
	}

	var tag [16]byte
	copy(tag[:], input[consumed:consumed+primitive.TagSize])

	ok, err := sess.VerifyHMAC(inner, tag)
	if err != nil {
		return Frame{}, 0, fmt.Errorf("acp: DecodeFrame: %w", err)
	}

	if !ok {
		return Frame{}, 0, acperr.New(acperr.CodeAuthFailed, "DecodeFrame", ErrAuthFailed)
	}

	if err := sess.CheckRxSeq(f.Sequence); err != nil {
		return Frame{}, 0, acperr.New(acperr.CodeOf(err), "DecodeFrame", fmt.Errorf("%w: %v", ErrReplay, err))
	}

	return f, consumed + primitive.TagSize, nil
}

func errNotInitialised() error {
	return errors.New("library not initialised: call acp.Init() first")
}
