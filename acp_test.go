package acp_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	acp "github.com/northboundnetworks/acpgo"
	"github.com/northboundnetworks/acpgo/internal/acp/frame"
)

func mustInit(t *testing.T) {
	t.Helper()
	require.NoError(t, acp.Init())
}

func newKeyedSessionPair(t *testing.T) (tx, rx *acp.Session) {
	t.Helper()

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}

	txSess, err := acp.NewSession(7, key, 0x1234567890ABCDEF)
	require.NoError(t, err)

	rxSess, err := acp.NewSession(7, key, 0x1234567890ABCDEF)
	require.NoError(t, err)

	return txSess, rxSess
}

func TestEncodeDecode_EmptyTelemetryRoundTrip(t *testing.T) {
	mustInit(t)

	encoded, err := acp.EncodeFrame(acp.Telemetry, 0, nil, nil)
	require.NoError(t, err)

	f, consumed, err := acp.DecodeFrame(encoded, nil)
	require.NoError(t, err)
	require.Equal(t, len(encoded), consumed)
	require.Equal(t, acp.Telemetry, f.Type)
	require.Empty(t, f.Payload)
}

func TestEncodeFrame_CommandWithoutAuthRejected(t *testing.T) {
	mustInit(t)

	_, err := acp.EncodeFrame(acp.Command, 0, []byte("x"), nil)
	require.ErrorIs(t, err, acp.ErrAuthRequired)
}

func TestDecodeFrame_UnauthenticatedCommandRejected(t *testing.T) {
	mustInit(t)

	// Build an unauthenticated Command frame with the frame codec, which
	// does not apply the facade's policy, to confirm DecodeFrame enforces
	// it on the receive side.
	cmd := &frame.Frame{Version: frame.ProtocolVersion, Type: frame.Command, Payload: []byte("x")}
	raw := make([]byte, frame.MaxEncodedSize(len(cmd.Payload), false))
	n, err := frame.Encode(cmd, raw)
	require.NoError(t, err)

	_, cmdConsumed, err := acp.DecodeFrame(raw[:n], nil)
	require.ErrorIs(t, err, acp.ErrAuthRequired)
	require.Zero(t, cmdConsumed)

	tx, _ := newKeyedSessionPair(t)

	authed, err := acp.EncodeFrame(acp.Command, acp.FlagAuthenticated, []byte("x"), tx)
	require.NoError(t, err)

	// An unauthenticated Telemetry frame decodes without a session,
	// showing the policy check is type-specific rather than blanket.
	unauthed, err := acp.EncodeFrame(acp.Telemetry, 0, []byte("x"), nil)
	require.NoError(t, err)

	_, _, err = acp.DecodeFrame(unauthed, nil)
	require.NoError(t, err)

	// An authenticated Command presented with an uninitialised Session
	// is rejected as well.
	_, consumed, err := acp.DecodeFrame(authed, &acp.Session{})
	require.Error(t, err)
	require.Zero(t, consumed)
}

func TestAuthenticatedRoundTrip_Scenario5(t *testing.T) {
	mustInit(t)

	tx, rx := newKeyedSessionPair(t)

	encoded, err := acp.EncodeFrame(acp.Command, acp.FlagAuthenticated, []byte("SET_MODE:ACTIVE"), tx)
	require.NoError(t, err)

	f, consumed, err := acp.DecodeFrame(encoded, rx)
	require.NoError(t, err)
	require.Equal(t, len(encoded), consumed)
	require.Equal(t, uint32(1), f.Sequence)
	require.Equal(t, []byte("SET_MODE:ACTIVE"), f.Payload)

	nextSeq, err := tx.TxSeq()
	require.NoError(t, err)
	require.Equal(t, uint32(2), nextSeq)
}

func TestReplayRejection_Scenario6(t *testing.T) {
	mustInit(t)

	tx, rx := newKeyedSessionPair(t)

	encoded, err := acp.EncodeFrame(acp.Command, acp.FlagAuthenticated, []byte("SET_MODE:ACTIVE"), tx)
	require.NoError(t, err)

	_, _, err = acp.DecodeFrame(encoded, rx)
	require.NoError(t, err)

	_, _, err = acp.DecodeFrame(encoded, rx)
	require.ErrorIs(t, err, acp.ErrReplay)
	require.Equal(t, uint32(1), rx.RxAnchor())
}

func TestAuthFailed_TamperedTag(t *testing.T) {
	mustInit(t)

	tx, rx := newKeyedSessionPair(t)

	encoded, err := acp.EncodeFrame(acp.Command, acp.FlagAuthenticated, []byte("SET_MODE:ACTIVE"), tx)
	require.NoError(t, err)

	encoded[len(encoded)-1] ^= 0xFF

	_, _, err = acp.DecodeFrame(encoded, rx)
	require.ErrorIs(t, err, acp.ErrAuthFailed)
}

func TestTamperedInnerByte_Rejected(t *testing.T) {
	mustInit(t)

	tx, rx := newKeyedSessionPair(t)

	encoded, err := acp.EncodeFrame(acp.Command, acp.FlagAuthenticated, []byte("SET_MODE:ACTIVE"), tx)
	require.NoError(t, err)

	// Corrupting an inner byte (before the HMAC tag) invalidates CRC
	// first in most positions, but the decode must never return Ok.
	encoded[5] ^= 0x01

	_, _, err = acp.DecodeFrame(encoded, rx)
	require.Error(t, err)
}

func TestEncodeFrame_NoZeroInBody(t *testing.T) {
	mustInit(t)

	tx, _ := newKeyedSessionPair(t)

	encoded, err := acp.EncodeFrame(acp.Command, acp.FlagAuthenticated, []byte("payload bytes here"), tx)
	require.NoError(t, err)

	// The COBS-stuffed region is everything up to (not including) the
	// trailing delimiter that precedes the 16-byte HMAC tag.
	bodyEnd := len(encoded) - 16 - 1
	for _, b := range encoded[1:bodyEnd] {
		require.NotZero(t, b)
	}
}

func TestRoundTrip_UnauthenticatedProperty(t *testing.T) {
	mustInit(t)

	rapid.Check(t, func(t *rapid.T) {
		typ := rapid.SampledFrom([]acp.FrameType{acp.Telemetry, acp.System}).Draw(t, "type")
		payload := rapid.SliceOfN(rapid.Byte(), 0, acp.MaxPayload).Draw(t, "payload")

		encoded, err := acp.EncodeFrame(typ, 0, payload, nil)
		require.NoError(t, err)

		f, consumed, err := acp.DecodeFrame(encoded, nil)
		require.NoError(t, err)
		require.Equal(t, len(encoded), consumed)
		require.Equal(t, typ, f.Type)
		require.Equal(t, payload, f.Payload)
	})
}
