package graph

import (
	"fmt"

	"maxflow/pkg/apperror"
)

// =============================================================================
// Flow Projection
// =============================================================================

// ProjectFlow sets the flow of every network arc from the residual graph:
//
//	flow(i) = capacity(i) − residual(forward arc of i)
//
// Every arc is recomputed on each call, so the result depends only on the
// residual graph and repeated calls are idempotent.
func ProjectFlow(rg *ResidualGraph, net *Network) error {
	if net.ArcCount()*2 != rg.ArcCount() {
		return apperror.Newf(apperror.CodeStructureChange,
			"network has %d arcs but residual graph has %d", net.ArcCount(), rg.ArcCount())
	}

	arcs := net.Arcs()
	for i := range arcs {
		arcs[i].Flow = arcs[i].Capacity - rg.arcs[2*i].Residual
	}
	return nil
}

// =============================================================================
// Minimum Cut
// =============================================================================

// Cut is an s-t cut of the network.
type Cut struct {
	// SourceSide lists the vertices reachable from the source, ascending.
	SourceSide []int

	// Arcs holds the ids of network arcs leaving the source side, in
	// traversal order.
	Arcs []int

	// Capacity is the total capacity of Arcs.
	Capacity int64
}

// MinCut derives the cut induced by residual reachability from the source.
// Once no augmenting path remains it is a minimum cut and its capacity
// equals the maximum flow.
func MinCut(rg *ResidualGraph, net *Network) *Cut {
	reach := Reachable(rg)

	cut := &Cut{}
	for v := 1; v <= rg.n; v++ {
		if reach[v] {
			cut.SourceSide = append(cut.SourceSide, v)
		}
	}

	net.Each(func(a *Arc) {
		if reach[a.From] && !reach[a.To] {
			cut.Arcs = append(cut.Arcs, a.ID)
			cut.Capacity += a.Capacity
		}
	})

	return cut
}

// =============================================================================
// Verification
// =============================================================================

// Verify checks the flow invariants on net and rg:
//   - every arc flow lies within [0, capacity]
//   - the residuals of each arc pair sum to the arc's capacity
//   - no residual capacity is negative
//   - flow is conserved at every vertex except source and sink
//
// All violations are collected; the result is never nil.
func Verify(net *Network, rg *ResidualGraph) *apperror.ValidationErrors {
	v := apperror.NewValidationErrors()

	if net.ArcCount()*2 != rg.ArcCount() {
		v.AddError(apperror.CodeStructureChange,
			fmt.Sprintf("network has %d arcs but residual graph has %d", net.ArcCount(), rg.ArcCount()))
		return v
	}

	for i := range rg.arcs {
		if ra := &rg.arcs[i]; ra.Residual < 0 {
			v.AddError(apperror.CodeNegativeResidual,
				fmt.Sprintf("residual arc %d (%d -> %d) of network arc %d has residual %d",
					i, ra.From, ra.To, NetworkArcOf(i), ra.Residual))
		}
	}

	balance := make([]int64, net.VertexCount()+1)
	for _, a := range net.Arcs() {
		if a.Flow < 0 {
			v.AddError(apperror.CodeNegativeFlow,
				fmt.Sprintf("arc %d -> %d carries negative flow %d", a.From, a.To, a.Flow))
		}
		if a.Flow > a.Capacity {
			v.AddError(apperror.CodeCapacityOverflow,
				fmt.Sprintf("arc %d -> %d carries %d over capacity %d", a.From, a.To, a.Flow, a.Capacity))
		}
		if sum := rg.arcs[2*a.ID].Residual + rg.arcs[2*a.ID+1].Residual; sum != a.Capacity {
			v.AddError(apperror.CodeResidualMismatch,
				fmt.Sprintf("arc %d -> %d residual pair sums to %d, capacity is %d", a.From, a.To, sum, a.Capacity))
		}
		balance[a.From] -= a.Flow
		balance[a.To] += a.Flow
	}

	for u := 1; u <= net.VertexCount(); u++ {
		if u == net.Source() || u == net.Sink() {
			continue
		}
		if balance[u] != 0 {
			v.AddError(apperror.CodeConservationViolation,
				fmt.Sprintf("vertex %d has net inflow %d", u, balance[u]))
		}
	}

	return v
}

// Value returns the net flow into the sink.
func Value(net *Network) int64 {
	var in, out int64
	for _, a := range net.Arcs() {
		if a.To == net.Sink() {
			in += a.Flow
		}
		if a.From == net.Sink() {
			out += a.Flow
		}
	}
	return in - out
}
