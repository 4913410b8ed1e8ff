package graph

// =============================================================================
// Shortest Augmenting Path
// =============================================================================

// ShortestPath finds an augmenting path with the fewest arcs from source to
// sink, using only residual arcs with positive capacity.
//
// The search is a plain FIFO breadth-first search. It stops as soon as the
// sink is dequeued, so the sink's own successors are never explored. Ties
// between equally short paths are broken by adjacency order: for the same
// residual graph the same path is always returned.
//
// Returns (nil, false) when the sink is unreachable. That is the normal
// termination condition of the augmentation loop, not an error.
//
// Time Complexity: O(V + E)
func ShortestPath(rg *ResidualGraph) (*Path, bool) {
	if !rg.search(true) {
		return nil, false
	}
	return rg.tracePath(), true
}

// Reachable returns, for every vertex, whether it can be reached from the
// source through arcs with positive residual capacity. Unlike ShortestPath
// the search runs to exhaustion.
func Reachable(rg *ResidualGraph) []bool {
	rg.search(false)
	out := make([]bool, len(rg.visited))
	copy(out, rg.visited)
	return out
}

// search runs the breadth-first search from the source and records, for each
// discovered vertex, the residual arc it was reached through. With stopAtSink
// it returns as soon as the sink is dequeued.
func (rg *ResidualGraph) search(stopAtSink bool) bool {
	for i := range rg.visited {
		rg.visited[i] = false
		rg.via[i] = -1
	}

	q := rg.queue
	q.Reset()
	q.Push(rg.source)
	rg.visited[rg.source] = true

	for !q.Empty() {
		u := q.Pop()
		if u == rg.sink && stopAtSink {
			return true
		}

		for _, idx := range rg.adj[u] {
			arc := &rg.arcs[idx]
			if arc.Residual <= 0 || rg.visited[arc.To] {
				continue
			}
			rg.visited[arc.To] = true
			rg.via[arc.To] = idx
			q.Push(arc.To)
		}
	}

	return rg.visited[rg.sink]
}

// tracePath rebuilds the source→sink path from the arcs recorded by search.
func (rg *ResidualGraph) tracePath() *Path {
	length := 0
	for v := rg.sink; v != rg.source; v = rg.arcs[rg.via[v]].From {
		length++
	}

	p := &Path{
		Vertices: make([]int, length+1),
		Arcs:     make([]int, length),
	}

	v := rg.sink
	for i := length; i > 0; i-- {
		idx := rg.via[v]
		p.Vertices[i] = v
		p.Arcs[i-1] = idx
		v = rg.arcs[idx].From
	}
	p.Vertices[0] = rg.source

	return p
}
