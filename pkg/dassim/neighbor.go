package dassim

import "github.com/bits-and-blooms/bitset"

// Neighbor is one validator's bookkeeping for a single peer on a single
// topic (one row or one column). PeerID is an arena index into
// Simulator.validators, never a pointer: Validator and Neighbor would
// otherwise form a reference cycle, and the arena-of-IDs pattern resolves it
// the same way the teacher's network package keys peers by ID rather than
// storing live connection pointers.
type Neighbor struct {
	PeerID int
	Dim    Dim
	Line   LineID

	// Sent marks cells this side has already sent to the peer.
	Sent *bitset.BitSet
	// Received marks cells this side has confirmed the peer holds, either
	// because the peer sent them or because reflection was suppressed.
	Received *bitset.BitSet
	// Receiving holds the current step's not-yet-committed arrivals; Commit
	// folds it into Received at the end of the RECEIVE phase.
	Receiving *bitset.BitSet

	// SendQueue is a FIFO of the other axis's index: for a row neighbor this
	// queues column indices still owed; for a column neighbor, row indices.
	SendQueue []LineID

	sendLineUntil int
}

// NewNeighbor builds bookkeeping for peerID on the given topic line. size is
// the block side length, used to size the bitmasks over the other axis, and
// sendLineUntil is the precomputed per-peer send threshold (Shape.SendLineUntil).
func NewNeighbor(peerID int, dim Dim, line LineID, size int, sendLineUntil int) *Neighbor {
	return &Neighbor{
		PeerID:        peerID,
		Dim:           dim,
		Line:          line,
		Sent:          bitset.New(uint(size)),
		Received:      bitset.New(uint(size)),
		Receiving:     bitset.New(uint(size)),
		sendLineUntil: sendLineUntil,
	}
}

// ShouldSend reports whether cellIndex (an index on the other axis from
// Line) still needs to be sent to this peer: neither side has recorded it as
// sent or received, and the peer's overall progress on this line hasn't
// already crossed the suppression threshold.
func (n *Neighbor) ShouldSend(cellIndex LineID) bool {
	i := uint(cellIndex)
	if n.Sent.Test(i) || n.Received.Test(i) {
		return false
	}
	known := n.Sent.Clone()
	known.InPlaceUnion(n.Received)
	return int(known.Count()) < n.sendLineUntil
}

// MarkSent records cellIndex as sent to this peer.
func (n *Neighbor) MarkSent(cellIndex LineID) {
	assertInvariant(!n.Received.Test(uint(cellIndex)), "neighbor: marking sent a cell already marked received")
	n.Sent.Set(uint(cellIndex))
}

// MarkReceiving records cellIndex as arrived from this peer this step,
// deferred until Commit so that an in-step arrival cannot suppress a send
// the local side already queued earlier in the same step.
func (n *Neighbor) MarkReceiving(cellIndex LineID) {
	n.Receiving.Set(uint(cellIndex))
}

// Commit folds this step's deferred arrivals into Received and clears
// Receiving. Called once per validator per step, after all receives for the
// step have been processed.
func (n *Neighbor) Commit() {
	n.Received.InPlaceUnion(n.Receiving)
	n.Receiving.ClearAll()
}

// SendLineUntil returns the precomputed per-peer send suppression threshold.
func (n *Neighbor) SendLineUntil() int {
	return n.sendLineUntil
}

// EnqueueSend appends cellIndex to the per-neighbor send queue, used by the
// per-neighbor shuffled round-robin scheduler.
func (n *Neighbor) EnqueueSend(cellIndex LineID) {
	n.SendQueue = append(n.SendQueue, cellIndex)
}

// PopSend removes and returns the front of the send queue. ok is false if
// the queue is empty.
func (n *Neighbor) PopSend() (cellIndex LineID, ok bool) {
	if len(n.SendQueue) == 0 {
		return 0, false
	}
	cellIndex = n.SendQueue[0]
	n.SendQueue = n.SendQueue[1:]
	return cellIndex, true
}
