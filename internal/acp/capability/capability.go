// Package capability defines the abstract traits the ACP codec consumes
// but never instantiates itself: key storage, entropy, clock and logging.
// The codec is injected with implementations of these interfaces; it has
// no opinion on where keys live, where randomness comes from, or how
// logs are formatted.
//
// Grounded on the teacher's AuthKeyStore interface
// (internal/bfd/auth.go) for the key-management shape, and on
// original_source/acp_platform_keystore.h for the load/store/erase
// contract these interfaces and their file-backed adapter mirror.
package capability

import (
	"crypto/rand"
	"time"
)

// KeyStore loads, stores and erases key material by numeric ID. Callers
// bind this to a file-backed store, a secure element, or (for tests and
// demos) an in-memory table.
type KeyStore interface {
	// Load copies the key bytes for keyID into out, returning the
	// number of bytes copied. Returns an error if keyID is unknown.
	Load(keyID uint32, out []byte) (int, error)

	// Store saves key as the material for keyID, replacing any
	// existing entry.
	Store(keyID uint32, key []byte) error

	// Erase removes the entry for keyID, if any.
	Erase(keyID uint32) error
}

// Entropy fills a buffer with cryptographically strong random bytes.
type Entropy interface {
	Fill(buf []byte) error
}

// Clock reports monotonic time in milliseconds, for session lifetime
// bookkeeping and CLI reporting.
type Clock interface {
	MonotonicMS() uint64
}

// Level is a Logger severity level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String names the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger is the advisory logging capability. Implementations MUST NOT
// receive key material or HMAC/tag bytes at Info or below — callers
// only ever pass KeyID, frame Type/Length/Sequence and acperr.Code
// values as args (spec.md section 7).
type Logger interface {
	Log(level Level, msg string, args ...any)
}

// CryptoEntropy is the default Entropy adapter, backed by crypto/rand —
// the same source the teacher's DiscriminatorAllocator.Allocate draws
// from in internal/bfd/discriminator.go.
type CryptoEntropy struct{}

// Fill implements Entropy.
func (CryptoEntropy) Fill(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}

// SystemClock is the default Clock adapter, backed by time.Now.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock whose MonotonicMS is measured from the
// moment of construction.
func NewSystemClock() SystemClock {
	return SystemClock{start: time.Now()}
}

// MonotonicMS implements Clock.
func (c SystemClock) MonotonicMS() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}
