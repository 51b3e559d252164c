package dassim

import (
	"github.com/eth2030/dassim/pkg/dlog"
	"github.com/eth2030/dassim/pkg/simmetrics"
)

// overlayMaxRetries bounds how many times BuildOverlay redraws a random
// regular graph for one topic before giving up and reporting it as
// disconnected. No graph library in the retrieval pack offers configuration-
// model random regular graph generation directly, so this is hand-written
// math/rand/v2-driven code; see DESIGN.md.
const overlayMaxRetries = 8

// edge is an unordered pair of member indices within one topic's member
// list (not validator IDs).
type edge struct {
	a, b int
}

// BuildOverlay generates the undirected graph for one topic's member list:
// the complete graph when members fit within netDegree, otherwise a random
// netDegree-regular graph. It reports via the returned bool whether the
// drawn graph is connected; on false it has already logged a warning
// carrying ErrEmptyTopicMembership or ErrOverlayDisconnected, and callers
// continue with the returned edges.
func BuildOverlay(members []int, netDegree int, rng *Rand, logger *dlog.Logger) (edges []edge, connected bool) {
	log := logger.Module("overlay")
	n := len(members)
	if n == 0 {
		log.Warn("topic has no assigned validators", "err", ErrEmptyTopicMembership)
		return nil, false
	}
	if n == 1 {
		return nil, true
	}
	if n <= netDegree+1 {
		return completeGraph(n), true
	}

	var best []edge
	for attempt := 0; attempt < overlayMaxRetries; attempt++ {
		if attempt > 0 {
			simmetrics.OverlayRegenerations.Inc()
		}
		candidate := randomRegularGraph(n, netDegree, rng)
		if best == nil {
			best = candidate
		}
		if isConnected(n, candidate) {
			return candidate, true
		}
	}
	log.Warn("random regular graph draw did not converge to a connected graph", "err", ErrOverlayDisconnected, "members", n, "netDegree", netDegree, "retries", overlayMaxRetries)
	return best, false
}

func completeGraph(n int) []edge {
	var edges []edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, edge{i, j})
		}
	}
	return edges
}

// randomRegularGraph draws a graph over n member-indices where every vertex
// has degree at most netDegree, using the pairing (configuration) model:
// build netDegree "stubs" per vertex, shuffle them, and pair consecutive
// stubs into edges. Pairs that would form a self-loop or a parallel edge are
// dropped, not redrawn, so those vertices end up below netDegree.
func randomRegularGraph(n, netDegree int, rng *Rand) []edge {
	stubs := make([]int, 0, n*netDegree)
	for v := 0; v < n; v++ {
		for k := 0; k < netDegree; k++ {
			stubs = append(stubs, v)
		}
	}
	stubs = rng.ShuffleInts(stubs)

	seen := make(map[edge]bool)
	var edges []edge
	for i := 0; i+1 < len(stubs); i += 2 {
		a, b := stubs[i], stubs[i+1]
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		e := edge{a, b}
		if seen[e] {
			continue
		}
		seen[e] = true
		edges = append(edges, e)
	}
	return edges
}

// isConnected runs a BFS over the edge list starting from vertex 0 and
// reports whether every vertex in [0, n) is reachable.
func isConnected(n int, edges []edge) bool {
	if n == 0 {
		return true
	}
	adj := make(map[int][]int, n)
	for _, e := range edges {
		adj[e.a] = append(adj[e.a], e.b)
		adj[e.b] = append(adj[e.b], e.a)
	}
	visited := make([]bool, n)
	queue := []int{0}
	visited[0] = true
	count := 1
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range adj[v] {
			if !visited[w] {
				visited[w] = true
				count++
				queue = append(queue, w)
			}
		}
	}
	return count == n
}
