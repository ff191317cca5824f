// Package codectest provides test-only helpers for asserting the ACP
// codec's no-heap invariant (spec.md section 8, "no allocation occurs
// during init, encode, decode, or any session operation").
//
// Grounded on the teacher's go.uber.org/goleak usage in
// internal/bfd/*_test.go: goleak asserts an absence (no leaked
// goroutines) at TestMain scope; AllocGuard asserts a parallel absence
// (no heap allocations) around a single hot-path call, using the
// standard library's own allocation-counting harness.
package codectest

import "testing"

// AllocGuard fails t if fn allocates any heap memory, as measured by
// testing.AllocsPerRun. It is the zero-allocation counterpart to a
// goleak.VerifyNone check: both assert "this code path does not acquire
// a resource it must give back."
func AllocGuard(t *testing.T, name string, fn func()) {
	t.Helper()

	allocs := testing.AllocsPerRun(100, fn)
	if allocs > 0 {
		t.Errorf("%s: expected zero allocations, got %.2f per run", name, allocs)
	}
}
