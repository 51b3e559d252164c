package dassim

import "github.com/bits-and-blooms/bitset"

// Block is a square matrix of single-bit cells addressed in row-major order:
// index(r, c) = r*size + c. It carries no payload, only knowledge — the
// simulator models availability, not the erasure-coded bytes themselves.
type Block struct {
	size int
	bits *bitset.BitSet
}

// NewBlock allocates an empty size x size Block.
func NewBlock(size int) *Block {
	return &Block{size: size, bits: bitset.New(uint(size * size))}
}

func (b *Block) index(r, c LineID) uint {
	return uint(int(r)*b.size + int(c))
}

// Size returns the block's side length.
func (b *Block) Size() int {
	return b.size
}

// Fill sets every cell. The proposer calls this to obtain its pre-publication
// "fully known" block before PublishProposer randomly drops cells.
func (b *Block) Fill() {
	for i := uint(0); i < uint(b.size*b.size); i++ {
		b.bits.Set(i)
	}
}

// GetSegment reports whether cell (r, c) is known.
func (b *Block) GetSegment(r, c LineID) bool {
	return b.bits.Test(b.index(r, c))
}

// SetSegment marks cell (r, c) known.
func (b *Block) SetSegment(r, c LineID) {
	b.bits.Set(b.index(r, c))
}

// GetRow returns a cloned, size-length bitmask of row r: bit c set iff
// (r, c) is known. The clone keeps callers from mutating Block state through
// the returned view.
func (b *Block) GetRow(r LineID) *bitset.BitSet {
	line := bitset.New(uint(b.size))
	for c := 0; c < b.size; c++ {
		if b.GetSegment(r, LineID(c)) {
			line.Set(uint(c))
		}
	}
	return line
}

// GetColumn returns a cloned, size-length bitmask of column c: bit r set iff
// (r, c) is known.
func (b *Block) GetColumn(c LineID) *bitset.BitSet {
	line := bitset.New(uint(b.size))
	for r := 0; r < b.size; r++ {
		if b.GetSegment(LineID(r), c) {
			line.Set(uint(r))
		}
	}
	return line
}

// Merge bitwise-ORs other into b, cell by cell. Idempotent and commutative:
// merging the same block twice, or merging a then b versus b then a, both
// leave the recipient in the same final state.
func (b *Block) Merge(other *Block) {
	b.bits.InPlaceUnion(other.bits)
}

// GetLine returns GetRow or GetColumn depending on dim.
func (b *Block) GetLine(dim Dim, id LineID) *bitset.BitSet {
	if dim == DimRow {
		return b.GetRow(id)
	}
	return b.GetColumn(id)
}

// RepairRow applies the line-repair abstraction to row r: if the row's known
// count is at least the shape's repair threshold, every unknown cell in the
// row is set and the delta (newly-set cells, a size-length bitmask indexed by
// column) is returned. Below threshold, RepairRow is a no-op and returns an
// empty delta.
func (b *Block) RepairRow(r LineID, threshold int) *bitset.BitSet {
	delta := bitset.New(uint(b.size))
	row := b.GetRow(r)
	if int(row.Count()) < threshold {
		return delta
	}
	for c := 0; c < b.size; c++ {
		if !b.GetSegment(r, LineID(c)) {
			b.SetSegment(r, LineID(c))
			delta.Set(uint(c))
		}
	}
	return delta
}

// RepairColumn is RepairRow's column-dimension counterpart; the returned
// delta is indexed by row.
func (b *Block) RepairColumn(c LineID, threshold int) *bitset.BitSet {
	delta := bitset.New(uint(b.size))
	col := b.GetColumn(c)
	if int(col.Count()) < threshold {
		return delta
	}
	for r := 0; r < b.size; r++ {
		if !b.GetSegment(LineID(r), c) {
			b.SetSegment(LineID(r), c)
			delta.Set(uint(r))
		}
	}
	return delta
}

// RepairLine dispatches to RepairRow or RepairColumn depending on dim, and
// returns the delta indexed by the other axis.
func (b *Block) RepairLine(dim Dim, id LineID, threshold int) *bitset.BitSet {
	if dim == DimRow {
		return b.RepairRow(id, threshold)
	}
	return b.RepairColumn(id, threshold)
}

// PublishProposer sets each cell of an otherwise-full block independently
// with probability 1 - failureRatePercent/100, modeling the proposer's
// imperfect initial publication (spec.md Block invariant (c)). The block
// should already be Fill()-ed; cells that draw a "failed" outcome are
// cleared.
func (b *Block) PublishProposer(rng *Rand, failureRatePercent int) {
	if failureRatePercent <= 0 {
		return
	}
	threshold := float64(failureRatePercent) / 100.0
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			if rng.Float64() < threshold {
				b.bits.Clear(b.index(LineID(r), LineID(c)))
			}
		}
	}
}

// Count returns the total number of known cells.
func (b *Block) Count() int {
	return int(b.bits.Count())
}
