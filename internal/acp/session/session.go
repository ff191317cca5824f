// Package session implements ACP's per-peer key/nonce/sequence state:
// transmit sequence issuance, receive replay-window validation, and the
// HMAC wrap/verify operations the facade applies to authenticated
// frames.
//
// Grounded on the teacher's internal/bfd/auth.go AuthState (RcvAuthSeq/
// XmitAuthSeq/AuthSeqKnown, SeqInWindow) — re-specified here as an
// explicit 64-bit sliding-window bitmap rather than BFD's single
// "last accepted" value, since ACP's replay invariant (admit any frame
// within 63 of the anchor) is strictly more permissive than BFD's.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"math/bits"

	"github.com/northboundnetworks/acpgo/internal/acp/acperr"
	"github.com/northboundnetworks/acpgo/internal/acp/primitive"
)

// KeySize is the fixed key length a Session stores, matching the wire
// protocol's 32-byte key material.
const KeySize = 32

var (
	// ErrEmptyKey is returned by New/Rotate when given zero key bytes.
	ErrEmptyKey = errors.New("session: key must not be empty")

	// ErrNotInitialised is returned by operations on a zero-value or
	// terminated Session.
	ErrNotInitialised = errors.New("session: not initialised")

	// ErrZeroSequence is returned by CheckRxSeq for sequence 0, which is
	// reserved for unauthenticated frames.
	ErrZeroSequence = errors.New("session: sequence 0 is reserved")

	// ErrReplay is returned by CheckRxSeq when n has already been
	// accepted, or falls outside the replay window.
	ErrReplay = errors.New("session: replay detected")
)

// Session holds one peer association's key, nonce and sequence state.
// Not safe for concurrent use; callers serialise access per Session,
// typically one per logical peer — the same non-thread-safety the
// teacher documents for its FSM-adjacent internal/bfd/session.go state.
type Session struct {
	KeyID uint32
	Nonce uint64

	key [KeySize]byte

	// mac is a live HMAC-SHA-256 instance kept around (rather than
	// constructed fresh per call via hmac.New) so ComputeHMAC/VerifyHMAC
	// make no heap allocations on the hot path — hmac.New allocates both
	// the outer Hash and its inner/outer pad state, which a per-call
	// construction would pay on every frame.
	mac    hash.Hash
	sumBuf [sha256.Size]byte

	nextTxSeq uint32
	rxAnchor  uint32
	rxWindow  uint64

	PolicyFlags uint8
	initialised bool
}

// New creates a Session bound to keyID, key (right-zero-padded to 32
// bytes if shorter than that, rejected if longer) and nonce. The first
// TxSeq() call returns 1.
func New(keyID uint32, key []byte, nonce uint64) (*Session, error) {
	if len(key) == 0 {
		return nil, acperr.New(acperr.CodeInvalidParam, "session.New", ErrEmptyKey)
	}

	if len(key) > KeySize {
		return nil, acperr.New(acperr.CodeInvalidParam, "session.New", fmt.Errorf("session: key too long: %d bytes", len(key)))
	}

	s := &Session{
		KeyID:       keyID,
		Nonce:       nonce,
		nextTxSeq:   1,
		initialised: true,
	}
	copy(s.key[:], key)
	s.mac = hmac.New(sha256.New, s.key[:])

	return s, nil
}

// Rotate zeroises the current key, installs newKey if it is non-empty
// (right-zero-padded like New) and newNonce, and resets both the transmit
// sequence and the receive replay window. With a nil/empty newKey the
// old key is not restored: the Session continues with an all-zero key.
func (s *Session) Rotate(newKey []byte, newNonce uint64) error {
	if !s.initialised {
		return acperr.New(acperr.CodeSessionNotInit, "session.Rotate", ErrNotInitialised)
	}

	if len(newKey) > KeySize {
		return acperr.New(acperr.CodeInvalidParam, "session.Rotate", fmt.Errorf("session: key too long: %d bytes", len(newKey)))
	}

	primitive.Zero(s.key[:])

	if len(newKey) > 0 {
		copy(s.key[:], newKey)
	}

	s.mac = hmac.New(sha256.New, s.key[:])
	s.Nonce = newNonce
	s.nextTxSeq = 1
	s.rxAnchor = 0
	s.rxWindow = 0

	return nil
}

// Terminate zeroises the key and clears all counters. The Session must
// not be used again afterwards except via a fresh call to New.
func (s *Session) Terminate() {
	primitive.Zero(s.key[:])
	s.mac = nil
	s.Nonce = 0
	s.nextTxSeq = 0
	s.rxAnchor = 0
	s.rxWindow = 0
	s.initialised = false
}

// TxSeq returns the next transmit sequence number and advances the
// counter, skipping 0 on 32-bit wraparound (sequence 0 is reserved for
// unauthenticated frames).
func (s *Session) TxSeq() (uint32, error) {
	if !s.initialised {
		return 0, acperr.New(acperr.CodeSessionNotInit, "session.TxSeq", ErrNotInitialised)
	}

	n := s.nextTxSeq

	s.nextTxSeq++
	if s.nextTxSeq == 0 {
		s.nextTxSeq = 1
	}

	return n, nil
}

// CheckRxSeq validates a received sequence number against the 64-bit
// sliding replay window anchored at the highest sequence accepted so
// far, accepting it (and updating the window) on success.
func (s *Session) CheckRxSeq(n uint32) error {
	if !s.initialised {
		return acperr.New(acperr.CodeSessionNotInit, "session.CheckRxSeq", ErrNotInitialised)
	}

	if n == 0 {
		return acperr.New(acperr.CodeSequenceError, "session.CheckRxSeq", ErrZeroSequence)
	}

	switch {
	case n > s.rxAnchor:
		shift := uint64(n) - uint64(s.rxAnchor)
		if shift >= 64 {
			s.rxWindow = 0
		} else {
			s.rxWindow <<= shift
		}

		s.rxWindow |= 1
		s.rxAnchor = n

		return nil

	case n == s.rxAnchor || uint64(s.rxAnchor)-uint64(n) >= 64:
		return acperr.New(acperr.CodeReplay, "session.CheckRxSeq", ErrReplay)

	default:
		p := s.rxAnchor - n
		bit := uint64(1) << p

		if s.rxWindow&bit != 0 {
			return acperr.New(acperr.CodeReplay, "session.CheckRxSeq", ErrReplay)
		}

		s.rxWindow |= bit

		return nil
	}
}

// ComputeHMAC returns the first 16 bytes of HMAC-SHA-256(key, data),
// reusing the Session's live HMAC instance so the call makes no heap
// allocations.
func (s *Session) ComputeHMAC(data []byte) ([primitive.TagSize]byte, error) {
	if !s.initialised {
		return [primitive.TagSize]byte{}, acperr.New(acperr.CodeSessionNotInit, "session.ComputeHMAC", ErrNotInitialised)
	}

	s.mac.Reset()
	s.mac.Write(data)
	sum := s.mac.Sum(s.sumBuf[:0])

	var tag [primitive.TagSize]byte
	copy(tag[:], sum[:primitive.TagSize])

	return tag, nil
}

// VerifyHMAC recomputes the HMAC over data and compares it against tag
// in constant time.
func (s *Session) VerifyHMAC(data []byte, tag [primitive.TagSize]byte) (bool, error) {
	if !s.initialised {
		return false, acperr.New(acperr.CodeSessionNotInit, "session.VerifyHMAC", ErrNotInitialised)
	}

	want, err := s.ComputeHMAC(data)
	if err != nil {
		return false, err
	}

	return primitive.ConstantTimeEqual(want[:], tag[:]), nil
}

// RxAnchor reports the highest sequence number accepted so far (0 before
// any frame has been accepted).
func (s *Session) RxAnchor() uint32 {
	return s.rxAnchor
}

// Initialised reports whether the Session has live key material.
func (s *Session) Initialised() bool {
	return s.initialised
}

// ReplayWindowUtilisation reports the fraction (0.0-1.0) of the 64-bit
// replay window currently marked as seen, for observability — a window
// near saturation means frames are arriving close together in sequence
// order, while a sparsely filled one means wide gaps or reordering.
func (s *Session) ReplayWindowUtilisation() float64 {
	return float64(bits.OnesCount64(s.rxWindow)) / 64
}
