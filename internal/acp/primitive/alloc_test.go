package primitive_test

import (
	"testing"

	"github.com/northboundnetworks/acpgo/internal/acp/codectest"
	"github.com/northboundnetworks/acpgo/internal/acp/primitive"
)

func TestConstantTimeEqual_NoAllocations(t *testing.T) {
	a := []byte("sixteen byte tag")
	b := []byte("sixteen byte tag")

	codectest.AllocGuard(t, "ConstantTimeEqual", func() {
		_ = primitive.ConstantTimeEqual(a, b)
	})
}

func TestZero_NoAllocations(t *testing.T) {
	buf := make([]byte, 32)

	codectest.AllocGuard(t, "Zero", func() {
		primitive.Zero(buf)
	})
}
