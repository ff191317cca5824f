package cobs_test

import (
	"testing"

	"github.com/northboundnetworks/acpgo/internal/acp/codectest"
	"github.com/northboundnetworks/acpgo/internal/acp/cobs"
)

func TestEncodeDecode_NoAllocations(t *testing.T) {
	src := []byte("Hello, World! This is a fixed-size payload for alloc testing.")
	enc := make([]byte, cobs.MaxEncodedSize(len(src)))
	dec := make([]byte, len(src))

	codectest.AllocGuard(t, "cobs.Encode", func() {
		_, _ = cobs.Encode(enc, src)
	})

	n, err := cobs.Encode(enc, src)
	if err != nil {
		t.Fatal(err)
	}

	codectest.AllocGuard(t, "cobs.Decode", func() {
		_, _ = cobs.Decode(dec, enc[:n])
	})
}

func TestDetector_FeedByte_NoAllocations(t *testing.T) {
	d := cobs.NewDetector(256)

	codectest.AllocGuard(t, "Detector.FeedByte", func() {
		d.Reset()
		d.FeedByte(0x05)
		d.FeedByte(0x11)
	})
}
