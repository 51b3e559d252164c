package dassim

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// sortedLineIDs returns set's members in ascending order. Go's map (and
// mapset's) iteration order is randomized per range statement; anything
// whose result composes with the seeded RNG downstream (shuffled worklists,
// queue fan-out order) must start from a deterministic order or the
// "same seed produces the same missingVector" guarantee (spec.md §8) breaks
// silently from one run to the next within the same process.
func sortedLineIDs(set mapset.Set[LineID]) []LineID {
	out := set.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// sortedPeerIDs returns m's keys in ascending order.
func sortedPeerIDs(m map[int]*Neighbor) []int {
	out := make([]int, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// sortedLines returns a per-line neighbor table's line keys in ascending
// order.
func sortedLines(table map[LineID]map[int]*Neighbor) []LineID {
	out := make([]LineID, 0, len(table))
	for line := range table {
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// orderedNeighbors returns m's values ordered by peer ID.
func orderedNeighbors(m map[int]*Neighbor) []*Neighbor {
	ids := sortedPeerIDs(m)
	out := make([]*Neighbor, len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}
