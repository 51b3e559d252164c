//go:build !dassimdebug

package dassim

// assertInvariant is a no-op in release builds. Build with -tags dassimdebug
// to turn it into a panic, per spec.md §7: InvariantViolation must be
// detected in debug builds and may be asserted out in release.
func assertInvariant(cond bool, msg string) {}
