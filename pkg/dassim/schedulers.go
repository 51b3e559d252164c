package dassim

import "github.com/bits-and-blooms/bitset"

// cellTriple names one worth-sending cell for the segment-shuffle scheduler:
// a line (dim, line) and the index of the cell on that line's other axis.
type cellTriple struct {
	Dim       Dim
	Line      LineID
	CellIndex LineID
}

// shuffleIterator is the segment-shuffle scheduler's persistent generator
// state: a shuffled worklist and a cursor into it. Owned by the Validator,
// reset per the documented rule in runSegmentShuffleScheduler.
type shuffleIterator struct {
	triples []cellTriple
	pos     int
}

func (v *Validator) neighborTable(dim Dim, line LineID) map[int]*Neighbor {
	if dim == DimRow {
		return v.RowNeighbors[line]
	}
	return v.ColumnNeighbors[line]
}

// shuffleNeighborMap returns m's values in a freshly shuffled order. It
// starts from peer-ID order, not map iteration order, so that the shuffle
// result is a pure function of the RNG stream (map iteration order is
// randomized per range statement and would otherwise make the "same seed
// gives the same outcome" guarantee hold only by accident).
func (v *Validator) shuffleNeighborMap(m map[int]*Neighbor) []*Neighbor {
	ids := sortedPeerIDs(m)
	out := make([]*Neighbor, len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	v.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// processSendQueue is the node-level FIFO scheduler: peek the head cell,
// attempt to forward it to every row-neighbor of its row (if owned) and
// every column-neighbor of its column (if owned), then pop. Budget
// exhaustion mid-cell leaves the head in place so the next step resumes
// from the same cell (already-sent neighbors are skipped via ShouldSend).
func (v *Validator) processSendQueue() {
	for len(v.nodeSendQueue) > 0 {
		if v.budgetExhausted() {
			return
		}
		cell := v.nodeSendQueue[0]

		if v.RowIDs.Contains(cell.Row) {
			for _, n := range v.shuffleNeighborMap(v.neighborTable(DimRow, cell.Row)) {
				if v.budgetExhausted() {
					return
				}
				if n.ShouldSend(cell.Col) {
					v.sendSegmentToNeigh(cell.Row, cell.Col, n)
				}
			}
		}
		if v.budgetExhausted() {
			return
		}
		if v.ColumnIDs.Contains(cell.Col) {
			for _, n := range v.shuffleNeighborMap(v.neighborTable(DimColumn, cell.Col)) {
				if v.budgetExhausted() {
					return
				}
				if n.ShouldSend(cell.Row) {
					v.sendSegmentToNeigh(cell.Row, cell.Col, n)
				}
			}
		}
		v.nodeSendQueue = v.nodeSendQueue[1:]
	}
}

// processPerNeighborSendQueue rounds over every neighbor (across all owned
// lines) whose per-neighbor send queue is non-empty, in shuffled order,
// popping and attempting one cell per neighbor per pass. It repeats passes
// until one makes no progress or the budget is spent.
func (v *Validator) processPerNeighborSendQueue() {
	for {
		if v.budgetExhausted() {
			return
		}
		var pending []*Neighbor
		for _, line := range sortedLines(v.RowNeighbors) {
			for _, n := range orderedNeighbors(v.RowNeighbors[line]) {
				if len(n.SendQueue) > 0 {
					pending = append(pending, n)
				}
			}
		}
		for _, line := range sortedLines(v.ColumnNeighbors) {
			for _, n := range orderedNeighbors(v.ColumnNeighbors[line]) {
				if len(n.SendQueue) > 0 {
					pending = append(pending, n)
				}
			}
		}
		if len(pending) == 0 {
			return
		}
		v.rng.Shuffle(len(pending), func(i, j int) { pending[i], pending[j] = pending[j], pending[i] })

		progressed := false
		for _, n := range pending {
			if v.budgetExhausted() {
				return
			}
			cellIndex, ok := n.PopSend()
			if !ok {
				continue
			}
			r, c := n.Line, cellIndex
			if n.Dim == DimColumn {
				r, c = cellIndex, n.Line
			}
			if v.Block.GetSegment(r, c) && n.ShouldSend(cellIndex) {
				v.sendSegmentToNeigh(r, c, n)
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}

// worthSendingCells computes, per owned line, the cells this validator
// possesses and could still usefully forward: the union, over neighbors on
// that line not yet past the send threshold, of cells not yet sent or
// received by that neighbor, intersected with the line's known contents.
func (v *Validator) worthSendingCells() []cellTriple {
	size := v.Block.Size()
	var out []cellTriple

	collect := func(dim Dim, line LineID, lineContents *bitset.BitSet) {
		mask := bitset.New(uint(size))
		for _, n := range v.neighborTable(dim, line) {
			known := n.Sent.Clone()
			known.InPlaceUnion(n.Received)
			if int(known.Count()) >= n.SendLineUntil() {
				continue
			}
			mask.InPlaceUnion(known.Complement())
		}
		mask.InPlaceIntersection(lineContents)
		for i := 0; i < size; i++ {
			if mask.Test(uint(i)) {
				out = append(out, cellTriple{Dim: dim, Line: line, CellIndex: LineID(i)})
			}
		}
	}

	for _, r := range sortedLineIDs(v.RowIDs) {
		collect(DimRow, r, v.Block.GetRow(r))
	}
	for _, c := range sortedLineIDs(v.ColumnIDs) {
		collect(DimColumn, c, v.Block.GetColumn(c))
	}
	return out
}

func (v *Validator) trySendTriple(t cellTriple) {
	for _, n := range v.shuffleNeighborMap(v.neighborTable(t.Dim, t.Line)) {
		if !n.ShouldSend(t.CellIndex) {
			continue
		}
		r, c := t.Line, t.CellIndex
		if t.Dim == DimColumn {
			r, c = t.CellIndex, t.Line
		}
		v.sendSegmentToNeigh(r, c, n)
		return
	}
}

// runSegmentShuffleScheduler recomputes and shuffles the worth-sending
// worklist whenever the current one is exhausted, sending to the first
// eligible neighbor of each triple's line. The generator persists across
// steps iff SegmentShuffleSchedulerPersist; otherwise a budget-exhaustion
// exit clears it so the next step starts from a fresh computation.
func (v *Validator) runSegmentShuffleScheduler() {
	for {
		if v.budgetExhausted() {
			return
		}
		if v.segmentShuffleGen == nil || v.segmentShuffleGen.pos >= len(v.segmentShuffleGen.triples) {
			triples := v.worthSendingCells()
			if len(triples) == 0 {
				return
			}
			v.rng.Shuffle(len(triples), func(i, j int) { triples[i], triples[j] = triples[j], triples[i] })
			v.segmentShuffleGen = &shuffleIterator{triples: triples}
		}

		exhausted := false
		for v.segmentShuffleGen.pos < len(v.segmentShuffleGen.triples) {
			if v.budgetExhausted() {
				exhausted = true
				break
			}
			t := v.segmentShuffleGen.triples[v.segmentShuffleGen.pos]
			v.segmentShuffleGen.pos++
			v.trySendTriple(t)
		}
		if exhausted {
			if !v.cfg.SegmentShuffleSchedulerPersist {
				v.segmentShuffleGen = nil
			}
			return
		}
	}
}

// runDumbRandomScheduler is the baseline scheduler: repeatedly pick a random
// owned row (and separately a random owned column), a random cell on it, and
// if known, a random neighbor on that line to send to. The try counter
// resets on any successful send and the scheduler gives up after Tries
// consecutive failures.
func (v *Validator) runDumbRandomScheduler() {
	tries := v.cfg.DumbRandomTries
	if tries <= 0 {
		return
	}
	rowIDs := sortedLineIDs(v.RowIDs)
	colIDs := sortedLineIDs(v.ColumnIDs)
	size := v.Block.Size()

	attempts := 0
	for attempts < tries {
		if v.budgetExhausted() {
			return
		}
		progressed := false

		if len(rowIDs) > 0 {
			r := rowIDs[v.rng.Intn(len(rowIDs))]
			c := LineID(v.rng.Intn(size))
			if v.Block.GetSegment(r, c) {
				if peers := v.neighborTable(DimRow, r); len(peers) > 0 {
					n := v.shuffleNeighborMap(peers)[0]
					if n.ShouldSend(c) {
						v.sendSegmentToNeigh(r, c, n)
						progressed = true
					}
				}
			}
		}
		if v.budgetExhausted() {
			return
		}
		if len(colIDs) > 0 {
			c := colIDs[v.rng.Intn(len(colIDs))]
			r := LineID(v.rng.Intn(size))
			if v.Block.GetSegment(r, c) {
				if peers := v.neighborTable(DimColumn, c); len(peers) > 0 {
					n := v.shuffleNeighborMap(peers)[0]
					if n.ShouldSend(r) {
						v.sendSegmentToNeigh(r, c, n)
						progressed = true
					}
				}
			}
		}

		if progressed {
			attempts = 0
		} else {
			attempts++
		}
	}
}
