package dassim

import "testing"

func TestNeighborShouldSendBelowThreshold(t *testing.T) {
	n := NewNeighbor(1, DimRow, 0, 8, 4)
	if !n.ShouldSend(2) {
		t.Fatal("fresh neighbor should want to send an unsent, unreceived cell")
	}
}

func TestNeighborMarkSentSuppressesShouldSend(t *testing.T) {
	n := NewNeighbor(1, DimRow, 0, 8, 4)
	n.MarkSent(2)
	if n.ShouldSend(2) {
		t.Fatal("ShouldSend should be false for a cell already marked sent")
	}
}

func TestNeighborMarkSentAfterReceived(t *testing.T) {
	// assertInvariant is a no-op outside -tags dassimdebug; this exercises
	// the call path without expecting a panic.
	n := NewNeighbor(1, DimRow, 0, 8, 4)
	n.MarkReceiving(2)
	n.Commit()
	n.MarkSent(2)
	if !n.Sent.Test(2) {
		t.Fatal("MarkSent should still set the bit in release builds")
	}
}

func TestNeighborShouldSendSuppressedAtThreshold(t *testing.T) {
	n := NewNeighbor(1, DimRow, 0, 8, 2)
	n.MarkSent(0)
	n.MarkSent(1)
	if n.ShouldSend(2) {
		t.Fatal("ShouldSend should be suppressed once popcount(sent|received) reaches sendLineUntil")
	}
}

func TestNeighborCommitIsDeferred(t *testing.T) {
	n := NewNeighbor(1, DimRow, 0, 8, 8)
	n.MarkReceiving(3)
	if n.Received.Test(3) {
		t.Fatal("MarkReceiving must not affect Received before Commit")
	}
	n.Commit()
	if !n.Received.Test(3) {
		t.Fatal("Commit should fold Receiving into Received")
	}
	if n.Receiving.Count() != 0 {
		t.Fatal("Commit should clear Receiving")
	}
}

func TestNeighborSendQueueFIFO(t *testing.T) {
	n := NewNeighbor(1, DimColumn, 0, 8, 8)
	n.EnqueueSend(3)
	n.EnqueueSend(5)
	first, ok := n.PopSend()
	if !ok || first != 3 {
		t.Fatalf("PopSend = (%d, %v), want (3, true)", first, ok)
	}
	second, ok := n.PopSend()
	if !ok || second != 5 {
		t.Fatalf("PopSend = (%d, %v), want (5, true)", second, ok)
	}
	if _, ok := n.PopSend(); ok {
		t.Fatal("PopSend on an empty queue should report ok=false")
	}
}
