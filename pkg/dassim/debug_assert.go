//go:build dassimdebug

package dassim

import "fmt"

// assertInvariant panics with ErrInvariantViolation wrapped in msg when cond
// is false. Only compiled in with -tags dassimdebug.
func assertInvariant(cond bool, msg string) {
	if !cond {
		panic(fmt.Errorf("%s: %w", msg, ErrInvariantViolation))
	}
}
