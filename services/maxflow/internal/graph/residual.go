package graph

import "maxflow/pkg/apperror"

// =============================================================================
// Residual Graph
// =============================================================================

// ResidualArc is one direction of a residual arc pair.
//
// Network arc i owns the pair (2i, 2i+1): the forward arc u→v carrying the
// remaining capacity c−f and the backward arc v→u carrying the flow f.
// Twin always points at the other member of the pair, so augmentation never
// has to search an adjacency list for the reverse arc.
type ResidualArc struct {
	From     int
	To       int
	Residual int64
	Twin     int
	Forward  bool
}

// NetworkArcOf returns the id of the network arc that owns residual arc index.
func NetworkArcOf(index int) int {
	return index / 2
}

// ResidualGraph holds the residual arcs and their adjacency.
//
// The arc arena, the adjacency lists and the vertex count are fixed once
// NewResidualGraph returns; only Residual values change afterwards.
type ResidualGraph struct {
	n      int
	source int
	sink   int

	arcs []ResidualArc
	adj  [][]int

	// capacity of each network arc, kept to check the pair-sum invariant
	capacity []int64

	// search scratch reused across rounds
	queue   *Queue
	visited []bool
	via     []int
}

// ResidualOption configures residual graph construction.
type ResidualOption func(*residualOptions)

type residualOptions struct {
	legacyOrder bool
}

// WithLegacyOrder makes every residual adjacency list come out in reverse
// emission order, as if each arc had been inserted at the head of a linked
// list. Searches then visit neighbours in the same order as the historical
// tool, so the sequence of augmenting paths is identical.
func WithLegacyOrder(enabled bool) ResidualOption {
	return func(o *residualOptions) {
		o.legacyOrder = enabled
	}
}

// NewResidualGraph builds the residual graph of net from its current flows.
//
// Arcs are emitted for u = 1..n and, within u, in net's adjacency order: the
// forward arc goes to u's list, the backward arc to v's list.
func NewResidualGraph(net *Network, opts ...ResidualOption) (*ResidualGraph, error) {
	if net == nil {
		return nil, apperror.New(apperror.CodeNilInput, "network is nil")
	}
	if err := net.Validate(); err != nil {
		return nil, err
	}

	var o residualOptions
	for _, opt := range opts {
		opt(&o)
	}

	n := net.VertexCount()
	m := net.ArcCount()

	rg := &ResidualGraph{
		n:        n,
		source:   net.Source(),
		sink:     net.Sink(),
		arcs:     make([]ResidualArc, 2*m),
		adj:      make([][]int, n+1),
		capacity: make([]int64, m),
		queue:    NewQueue(n),
		visited:  make([]bool, n+1),
		via:      make([]int, n+1),
	}

	net.Each(func(a *Arc) {
		fwd, bwd := 2*a.ID, 2*a.ID+1
		rg.arcs[fwd] = ResidualArc{From: a.From, To: a.To, Residual: a.Capacity - a.Flow, Twin: bwd, Forward: true}
		rg.arcs[bwd] = ResidualArc{From: a.To, To: a.From, Residual: a.Flow, Twin: fwd}
		rg.capacity[a.ID] = a.Capacity
		rg.adj[a.From] = append(rg.adj[a.From], fwd)
		rg.adj[a.To] = append(rg.adj[a.To], bwd)
	})

	if o.legacyOrder {
		for _, ids := range rg.adj {
			reverseInts(ids)
		}
	}

	return rg, nil
}

// VertexCount returns n.
func (rg *ResidualGraph) VertexCount() int { return rg.n }

// ArcCount returns the number of residual arcs, twice the network arc count.
func (rg *ResidualGraph) ArcCount() int { return len(rg.arcs) }

// Source returns the source vertex.
func (rg *ResidualGraph) Source() int { return rg.source }

// Sink returns the sink vertex.
func (rg *ResidualGraph) Sink() int { return rg.sink }

// Arc returns a pointer to the residual arc at index i.
func (rg *ResidualGraph) Arc(i int) *ResidualArc {
	return &rg.arcs[i]
}

// OutArcs returns the indices of residual arcs leaving u, in adjacency order.
func (rg *ResidualGraph) OutArcs(u int) []int {
	return rg.adj[u]
}

// Forward returns the forward residual arc of network arc id.
func (rg *ResidualGraph) Forward(id int) *ResidualArc {
	return &rg.arcs[2*id]
}

// Backward returns the backward residual arc of network arc id.
func (rg *ResidualGraph) Backward(id int) *ResidualArc {
	return &rg.arcs[2*id+1]
}

// Capacity returns the declared capacity of network arc id.
func (rg *ResidualGraph) Capacity(id int) int64 {
	return rg.capacity[id]
}
