package dassim

// Arena is the validator index used to resolve the Validator<->Neighbor
// cyclic reference: a Neighbor never holds a pointer back to its peer
// Validator, only an integer PeerID. Call sites that need to reach a peer
// (sendSegmentToNeigh, receiveSegment) look it up through the Arena.
type Arena struct {
	validators []*Validator
}

// NewArena wraps a validator slice, indexed by Validator.ID.
func NewArena(validators []*Validator) *Arena {
	return &Arena{validators: validators}
}

// Get returns the validator with the given ID.
func (a *Arena) Get(id int) *Validator {
	return a.validators[id]
}

// Len returns the number of validators in the arena.
func (a *Arena) Len() int {
	return len(a.validators)
}

// All returns the underlying validator slice, ID-ordered.
func (a *Arena) All() []*Validator {
	return a.validators
}
