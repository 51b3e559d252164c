package dassim

import "errors"

// Configuration errors (spec.md §7 ConfigError): detected and logged, but the
// run proceeds on a best-effort interpretation so that a parameter sweep can
// characterize degenerate regions instead of aborting.
var (
	// ErrChiOutOfRange is reported when chi falls outside [1, blockSize].
	ErrChiOutOfRange = errors.New("dassim: chi out of range [1, blockSize]")

	// ErrNetDegreeOdd is reported when netDegree is not even.
	ErrNetDegreeOdd = errors.New("dassim: netDegree must be even")
)

// Overlay errors (spec.md §7 OverlayError): logged, simulation continues;
// the consequence shows up in the final availability result.
var (
	// ErrEmptyTopicMembership is reported when a topic has zero assigned
	// validators and therefore can never be completed.
	ErrEmptyTopicMembership = errors.New("dassim: topic has no assigned validators")

	// ErrOverlayDisconnected is reported when a random regular graph draw
	// for a topic is not connected.
	ErrOverlayDisconnected = errors.New("dassim: topic overlay is not connected")
)

// ErrInvariantViolation marks a programming error: a debug build detected a
// state transition the model forbids (sending a cell not possessed, marking
// sent without shouldSend, ...). Release builds never construct this error;
// see assertInvariant in debug.go.
var ErrInvariantViolation = errors.New("dassim: invariant violation")
