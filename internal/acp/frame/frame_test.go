package frame_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/northboundnetworks/acpgo/internal/acp/frame"
)

func TestEncodeDecode_EmptyTelemetry(t *testing.T) {
	f := &frame.Frame{Version: frame.ProtocolVersion, Type: frame.Telemetry}

	dst := make([]byte, frame.MaxEncodedSize(0, false))
	n, err := frame.Encode(f, dst)
	require.NoError(t, err)

	require.Equal(t, byte(0x00), dst[0])
	require.Equal(t, byte(0x00), dst[n-1])

	var got frame.Frame
	consumed, err := frame.Decode(dst[:n], &got)
	require.NoError(t, err)
	require.Equal(t, n, consumed)
	require.Equal(t, frame.Telemetry, got.Type)
	require.Equal(t, uint8(0), got.Flags)
	require.Empty(t, got.Payload)
}

func TestEncodeDecode_AuthenticatedRoundTrip(t *testing.T) {
	f := &frame.Frame{
		Version:  frame.ProtocolVersion,
		Type:     frame.Command,
		Flags:    frame.FlagAuthenticated,
		Sequence: 1,
		Payload:  []byte("SET_MODE:ACTIVE"),
	}

	dst := make([]byte, frame.MaxEncodedSize(len(f.Payload), true))
	n, err := frame.Encode(f, dst)
	require.NoError(t, err)

	var got frame.Frame
	consumed, err := frame.Decode(dst[:n], &got)
	require.NoError(t, err)
	require.Equal(t, n, consumed)
	require.Equal(t, uint32(1), got.Sequence)
	require.Equal(t, f.Payload, got.Payload)
}

func TestEncode_CommandWithoutAuthIsNotRejectedAtFrameLayer(t *testing.T) {
	// The frame codec itself does not enforce the Command-must-be-
	// authenticated policy; that belongs to the facade (spec.md 4.6).
	f := &frame.Frame{Version: frame.ProtocolVersion, Type: frame.Command, Payload: []byte("x")}

	dst := make([]byte, frame.MaxEncodedSize(len(f.Payload), false))
	_, err := frame.Encode(f, dst)
	require.NoError(t, err)
}

func TestEncode_PayloadTooLarge(t *testing.T) {
	f := &frame.Frame{Version: frame.ProtocolVersion, Type: frame.Telemetry, Payload: make([]byte, frame.MaxPayload+1)}

	dst := make([]byte, frame.MaxEncodedSize(len(f.Payload), false))
	_, err := frame.Encode(f, dst)
	require.ErrorIs(t, err, frame.ErrPayloadTooLarge)
}

func TestDecode_NeedMoreData(t *testing.T) {
	var got frame.Frame
	_, err := frame.Decode([]byte{0x00, 0x01, 0x02}, &got)
	require.ErrorIs(t, err, frame.ErrNeedMoreData)
}

func TestDecode_MissingLeadingDelimiter(t *testing.T) {
	var got frame.Frame
	_, err := frame.Decode([]byte{0x01, 0x02, 0x00}, &got)
	require.ErrorIs(t, err, frame.ErrMalformedFrame)
}

func TestDecode_CRCBitFlipDetected(t *testing.T) {
	f := &frame.Frame{Version: frame.ProtocolVersion, Type: frame.Telemetry, Payload: []byte("Hello, World!")}

	dst := make([]byte, frame.MaxEncodedSize(len(f.Payload), false))
	n, err := frame.Encode(f, dst)
	require.NoError(t, err)

	mid := n / 2
	dst[mid] ^= 0x55

	var got frame.Frame
	_, err = frame.Decode(dst[:n], &got)
	require.Error(t, err, "a corrupted body byte must never decode successfully")
}

func TestInnerBytes(t *testing.T) {
	f := &frame.Frame{Version: frame.ProtocolVersion, Type: frame.Telemetry, Payload: []byte("x")}

	dst := make([]byte, frame.MaxEncodedSize(len(f.Payload), false))
	n, err := frame.Encode(f, dst)
	require.NoError(t, err)

	inner, err := frame.InnerBytes(dst[:n])
	require.NoError(t, err)
	require.Equal(t, dst[1:n-1], inner)

	for _, b := range inner {
		require.NotZero(t, b)
	}
}

func TestRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		typ := rapid.SampledFrom([]frame.Type{frame.Telemetry, frame.System}).Draw(t, "type")
		payload := rapid.SliceOfN(rapid.Byte(), 0, frame.MaxPayload).Draw(t, "payload")

		f := &frame.Frame{Version: frame.ProtocolVersion, Type: typ, Payload: payload}

		dst := make([]byte, frame.MaxEncodedSize(len(payload), false))
		n, err := frame.Encode(f, dst)
		require.NoError(t, err)

		var got frame.Frame
		consumed, err := frame.Decode(dst[:n], &got)
		require.NoError(t, err)
		require.Equal(t, n, consumed)
		require.Equal(t, f.Type, got.Type)
		require.Equal(t, f.Payload, got.Payload)

		for _, b := range dst[1 : n-1] {
			require.NotZero(t, b)
		}
	})
}
