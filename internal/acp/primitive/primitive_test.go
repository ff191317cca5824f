package primitive_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/northboundnetworks/acpgo/internal/acp/primitive"
)

func TestSelfTest(t *testing.T) {
	require.NoError(t, primitive.SelfTest())
}

func TestHMACTag16_RFC4231Case1(t *testing.T) {
	key := make([]byte, 20)
	for i := range key {
		key[i] = 0x0b
	}

	tag := primitive.HMACTag16(key, []byte("Hi There"))
	want := [primitive.TagSize]byte{
		0xb0, 0x34, 0x4c, 0x61, 0xd8, 0xdb, 0x38, 0x53,
		0x5c, 0xa8, 0xaf, 0xce, 0xaf, 0x0b, 0xf1, 0x2b,
	}

	require.Equal(t, want, tag)
}

func TestHMACTag16_RFC4231Case2(t *testing.T) {
	tag := primitive.HMACTag16([]byte("Jefe"), []byte("what do ya want for nothing?"))
	want := [primitive.TagSize]byte{
		0x5b, 0xdc, 0xc1, 0x46, 0xbf, 0x60, 0x75, 0x4e,
		0x6a, 0x04, 0x24, 0x26, 0x08, 0x95, 0x75, 0xc7,
	}

	require.Equal(t, want, tag)
}

func TestConstantTimeEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b []byte
		want bool
	}{
		{"equal", []byte("abcd"), []byte("abcd"), true},
		{"differ", []byte("abcd"), []byte("abce"), false},
		{"length mismatch", []byte("abc"), []byte("abcd"), false},
		{"both empty", nil, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, primitive.ConstantTimeEqual(tc.a, tc.b))
		})
	}
}

func TestZero(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	primitive.Zero(buf)

	for _, b := range buf {
		require.Zero(t, b)
	}
}

func TestZero_Empty(t *testing.T) {
	primitive.Zero(nil)
}
