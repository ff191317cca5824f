// Package primitive provides the cryptographic building blocks ACP layers
// on top of: SHA-256, HMAC-SHA-256 truncated to 16 bytes, constant-time
// comparison, and compiler-proof zeroisation.
//
// The standard library's crypto/sha256 and crypto/hmac are already
// FIPS 180-4 / RFC 2104 compliant, so this package is a thin, carefully
// documented wrapper rather than a reimplementation (see DESIGN.md for
// why no third-party hash library replaces them here).
package primitive

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
)

// TagSize is the length in bytes of the truncated HMAC tag ACP carries on
// the wire (spec.md section 4.2: "truncation to the first 16 bytes").
const TagSize = 16

// SHA256 returns the FIPS 180-4 SHA-256 digest of data.
func SHA256(data []byte) [sha256.Size]byte {
	return sha256.Sum256(data)
}

// HMACSHA256 returns the full 32-byte RFC 2104 HMAC-SHA-256 of msg under key.
func HMACSHA256(key, msg []byte) [sha256.Size]byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)

	var out [sha256.Size]byte
	copy(out[:], mac.Sum(nil))

	return out
}

// HMACTag16 returns the first TagSize bytes of HMAC-SHA-256(key, msg) —
// the truncated tag ACP authenticates frames with.
func HMACTag16(key, msg []byte) [TagSize]byte {
	full := HMACSHA256(key, msg)

	var tag [TagSize]byte
	copy(tag[:], full[:TagSize])

	return tag
}

// ConstantTimeEqual reports whether a and b are identical, comparing in time
// independent of where they first differ. Equal-length precondition is
// enforced by the caller; mismatched lengths are never equal.
//
// Built on crypto/subtle.ConstantTimeCompare — the same primitive the
// teacher reaches for when comparing BFD auth digests (see
// internal/bfd/auth.go's verifyAndUpdateSeq). A hand-rolled byte loop with
// early exit is explicitly forbidden by spec.md section 9.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	return subtle.ConstantTimeCompare(a, b) == 1
}

// zeroSink is written to on every Zero call so the compiler cannot prove
// the clearing writes are dead code and elide them.
var zeroSink byte

// Zero overwrites buf with zero bytes using a write the optimiser cannot
// eliminate, per spec.md section 9 ("zeroisation requires a primitive the
// compiler cannot elide").
func Zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}

	if len(buf) > 0 {
		zeroSink ^= buf[0]
	}
}

// selfTestFailed records why Init's self-test failed, nil on success.
var selfTestFailed error

// SelfTest runs the known-answer tests spec.md section 4.2 requires before
// any ACP operation may proceed: SHA-256("abc"), and HMAC-SHA-256 RFC 4231
// test cases 1 and 2 truncated to 16 bytes.
func SelfTest() error {
	if selfTestFailed != nil {
		return selfTestFailed
	}

	got := SHA256([]byte("abc"))
	want := [32]byte{
		0xba, 0x78, 0x16, 0xbf, 0x8f, 0x01, 0xcf, 0xea,
		0x41, 0x41, 0x40, 0xde, 0x5d, 0xae, 0x22, 0x23,
		0xb0, 0x03, 0x61, 0xa3, 0x96, 0x17, 0x7a, 0x9c,
		0xb4, 0x10, 0xff, 0x61, 0xf2, 0x00, 0x15, 0xad,
	}
	if got != want {
		selfTestFailed = fmt.Errorf("primitive: SHA-256(%q) self-test failed", "abc")
		return selfTestFailed
	}

	case1Key := make([]byte, 20)
	for i := range case1Key {
		case1Key[i] = 0x0b
	}

	tag := HMACTag16(case1Key, []byte("Hi There"))
	wantTag := [TagSize]byte{
		0xb0, 0x34, 0x4c, 0x61, 0xd8, 0xdb, 0x38, 0x53,
		0x5c, 0xa8, 0xaf, 0xce, 0xaf, 0x0b, 0xf1, 0x2b,
	}
	if tag != wantTag {
		selfTestFailed = fmt.Errorf("primitive: HMAC-SHA-256 RFC 4231 case 1 self-test failed")
		return selfTestFailed
	}

	tag2 := HMACTag16([]byte("Jefe"), []byte("what do ya want for nothing?"))
	wantTag2 := [TagSize]byte{
		0x5b, 0xdc, 0xc1, 0x46, 0xbf, 0x60, 0x75, 0x4e,
		0x6a, 0x04, 0x24, 0x26, 0x08, 0x95, 0x75, 0xc7,
	}
	if tag2 != wantTag2 {
		selfTestFailed = fmt.Errorf("primitive: HMAC-SHA-256 RFC 4231 case 2 self-test failed")
		return selfTestFailed
	}

	return nil
}
