package session_test

import (
	"testing"

	"github.com/northboundnetworks/acpgo/internal/acp/codectest"
)

func TestSessionOps_NoAllocations(t *testing.T) {
	s := newTestSession(t)
	data := []byte("COBS-stuffed inner bytes of a frame")

	codectest.AllocGuard(t, "Session.TxSeq", func() {
		_, _ = s.TxSeq()
	})

	seq := uint32(1)
	codectest.AllocGuard(t, "Session.CheckRxSeq", func() {
		_ = s.CheckRxSeq(seq)
		seq++
	})

	codectest.AllocGuard(t, "Session.ComputeHMAC", func() {
		_, _ = s.ComputeHMAC(data)
	})

	tag, err := s.ComputeHMAC(data)
	if err != nil {
		t.Fatal(err)
	}

	codectest.AllocGuard(t, "Session.VerifyHMAC", func() {
		_, _ = s.VerifyHMAC(data, tag)
	})
}
