// Package graph provides the data structures and primitives of the
// maximum flow engine.
//
// This package contains:
//   - Network: the original capacitated digraph with per-arc flow
//   - ResidualGraph: the paired forward/backward residual arcs
//   - ShortestPath: the breadth-first augmenting path search
//   - Bottleneck, Augment, ProjectFlow: one augmentation round
//   - MinCut and Verify: post-solve inspection
//
// # Vertex numbering
//
// Vertices are numbered 1..n as in DIMACS files. Index 0 of every per-vertex
// slice exists but is never used.
//
// # Thread Safety
//
// Neither Network nor ResidualGraph is safe for concurrent use. A solve run
// owns both exclusively.
package graph

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"maxflow/pkg/apperror"
)

// =============================================================================
// Network
// =============================================================================

// Arc is a directed arc of the original network.
type Arc struct {
	// ID is the arc's position in the arena; arcs are numbered in the order
	// they were added.
	ID int

	From int
	To   int

	// Capacity is the declared capacity and never changes.
	Capacity int64

	// Flow is derived from the residual graph after every round.
	Flow int64
}

// Network is the capacitated directed graph read from the input.
//
// Arcs live in a single arena; adjacency lists hold arc ids, so parallel
// arcs between the same pair of vertices stay distinct.
type Network struct {
	n      int
	source int
	sink   int

	arcs []Arc
	adj  [][]int

	// declaredArcs is the informational arc count from the problem line.
	declaredArcs int
}

// MaxVertices is the largest vertex count a network accepts, whatever the
// configured limit.
const MaxVertices = math.MaxInt32

// NewNetwork creates an empty network over vertices 1..n.
func NewNetwork(n int) (*Network, error) {
	if n <= 0 {
		return nil, apperror.Newf(apperror.CodeInvalidHeader, "vertex count must be positive, got %d", n)
	}
	if n > MaxVertices {
		return nil, apperror.Newf(apperror.CodeResourceExhausted, "vertex count %d exceeds %d", n, MaxVertices)
	}
	return &Network{
		n:   n,
		adj: make([][]int, n+1),
	}, nil
}

// VertexCount returns n.
func (g *Network) VertexCount() int { return g.n }

// ArcCount returns the number of arcs added so far.
func (g *Network) ArcCount() int { return len(g.arcs) }

// Source returns the source vertex, or 0 if unset.
func (g *Network) Source() int { return g.source }

// Sink returns the sink vertex, or 0 if unset.
func (g *Network) Sink() int { return g.sink }

// DeclaredArcs returns the arc count announced by the input header.
func (g *Network) DeclaredArcs() int { return g.declaredArcs }

// SetDeclaredArcs records the arc count announced by the input header.
func (g *Network) SetDeclaredArcs(m int) { g.declaredArcs = m }

// HasVertex reports whether v is within 1..n.
func (g *Network) HasVertex(v int) bool {
	return v >= 1 && v <= g.n
}

// SetSource designates the source vertex.
func (g *Network) SetSource(v int) error {
	if !g.HasVertex(v) {
		return apperror.Newf(apperror.CodeInvalidSource, "source %d outside [1,%d]", v, g.n).
			WithField("source")
	}
	g.source = v
	return nil
}

// SetSink designates the sink vertex.
func (g *Network) SetSink(v int) error {
	if !g.HasVertex(v) {
		return apperror.Newf(apperror.CodeInvalidSink, "sink %d outside [1,%d]", v, g.n).
			WithField("sink")
	}
	g.sink = v
	return nil
}

// AddArc appends the arc u→v with capacity c to u's adjacency list and
// returns its id.
func (g *Network) AddArc(u, v int, c int64) (int, error) {
	if !g.HasVertex(u) || !g.HasVertex(v) {
		return 0, apperror.Newf(apperror.CodeDanglingArc, "arc %d -> %d has an endpoint outside [1,%d]", u, v, g.n).
			WithDetails("from", u).
			WithDetails("to", v)
	}
	if c < 0 {
		return 0, apperror.Newf(apperror.CodeNegativeCapacity, "arc %d -> %d has negative capacity %d", u, v, c)
	}

	id := len(g.arcs)
	g.arcs = append(g.arcs, Arc{ID: id, From: u, To: v, Capacity: c})
	g.adj[u] = append(g.adj[u], id)
	return id, nil
}

// ReverseAdjacency reverses every adjacency list in place. Applying it after
// loading turns append order into head-insertion order.
func (g *Network) ReverseAdjacency() {
	for _, ids := range g.adj {
		reverseInts(ids)
	}
}

// Validate checks that source and sink are designated and distinct.
func (g *Network) Validate() error {
	if !g.HasVertex(g.source) {
		return apperror.New(apperror.CodeInvalidSource, "source vertex is not designated")
	}
	if !g.HasVertex(g.sink) {
		return apperror.New(apperror.CodeInvalidSink, "sink vertex is not designated")
	}
	if g.source == g.sink {
		return apperror.Newf(apperror.CodeSourceEqualsSink, "source and sink are both vertex %d", g.source)
	}
	return nil
}

// Arc returns a pointer to the arc with the given id.
func (g *Network) Arc(id int) *Arc {
	return &g.arcs[id]
}

// Arcs returns the arc arena in id order. Callers must not append to it.
func (g *Network) Arcs() []Arc {
	return g.arcs
}

// OutArcs returns the ids of the arcs leaving u, in adjacency order.
func (g *Network) OutArcs(u int) []int {
	return g.adj[u]
}

// Each calls fn for every arc in vertex order 1..n and, within a vertex,
// in adjacency order. This is the order reports list arcs in.
func (g *Network) Each(fn func(a *Arc)) {
	for u := 1; u <= g.n; u++ {
		for _, id := range g.adj[u] {
			fn(&g.arcs[id])
		}
	}
}

// TotalCapacity returns the sum of all arc capacities.
func (g *Network) TotalCapacity() int64 {
	var sum int64
	for i := range g.arcs {
		sum += g.arcs[i].Capacity
	}
	return sum
}

// ResetFlow sets every arc's flow to zero.
func (g *Network) ResetFlow() {
	for i := range g.arcs {
		g.arcs[i].Flow = 0
	}
}

// Flows returns the current flow of every arc, indexed by arc id.
func (g *Network) Flows() []int64 {
	out := make([]int64, len(g.arcs))
	for i := range g.arcs {
		out[i] = g.arcs[i].Flow
	}
	return out
}

// ApplyFlows overwrites arc flows from a slice indexed by arc id.
func (g *Network) ApplyFlows(flows []int64) error {
	if len(flows) != len(g.arcs) {
		return apperror.Newf(apperror.CodeInvalidArgument, "expected %d flows, got %d", len(g.arcs), len(flows))
	}
	for i := range g.arcs {
		g.arcs[i].Flow = flows[i]
	}
	return nil
}

// Fingerprint returns a stable hex digest of the network's structure:
// vertex count, terminals and every arc in traversal order. Flows are not
// part of the digest.
func (g *Network) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte
	put := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}

	put(int64(g.n))
	put(int64(g.source))
	put(int64(g.sink))
	g.Each(func(a *Arc) {
		put(int64(a.From))
		put(int64(a.To))
		put(a.Capacity)
	})

	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
