package graph

import (
	"math"

	"maxflow/pkg/apperror"
)

// =============================================================================
// Path Operations
// =============================================================================

// Path is an augmenting path through the residual graph.
//
// Vertices runs from source to sink; Arcs[i] is the residual arc index
// leading from Vertices[i] to Vertices[i+1]. Carrying the arc index keeps
// parallel arcs apart.
type Path struct {
	Vertices []int
	Arcs     []int
}

// Len returns the number of arcs on the path.
func (p *Path) Len() int {
	return len(p.Arcs)
}

// Clone returns a deep copy of p.
func (p *Path) Clone() *Path {
	return &Path{
		Vertices: append([]int(nil), p.Vertices...),
		Arcs:     append([]int(nil), p.Arcs...),
	}
}

func (p *Path) validate(rg *ResidualGraph) error {
	if p == nil || len(p.Vertices) < 2 || len(p.Arcs) != len(p.Vertices)-1 {
		return apperror.New(apperror.CodeInvalidPath, "path must contain at least one arc")
	}
	for i, idx := range p.Arcs {
		if idx < 0 || idx >= len(rg.arcs) {
			return apperror.Newf(apperror.CodeInvalidPath, "residual arc %d does not exist", idx)
		}
		arc := &rg.arcs[idx]
		if arc.From != p.Vertices[i] || arc.To != p.Vertices[i+1] {
			return apperror.Newf(apperror.CodeInvalidPath, "residual arc %d does not join %d -> %d",
				idx, p.Vertices[i], p.Vertices[i+1])
		}
	}
	return nil
}

// Bottleneck returns the minimum residual capacity along the path.
//
// A path with fewer than two vertices has no arcs and therefore no
// bottleneck; it is rejected rather than reported as an unbounded amount.
func Bottleneck(rg *ResidualGraph, p *Path) (int64, error) {
	if err := p.validate(rg); err != nil {
		return 0, err
	}

	minCap := int64(math.MaxInt64)
	for _, idx := range p.Arcs {
		if r := rg.arcs[idx].Residual; r < minCap {
			minCap = r
		}
	}
	return minCap, nil
}

// Augment pushes k units along the path: every path arc loses k residual
// capacity and its twin gains k.
//
// k must be positive and no larger than the path's bottleneck; otherwise a
// residual capacity would go negative and the graph is left untouched.
func Augment(rg *ResidualGraph, p *Path, k int64) error {
	if k <= 0 {
		return apperror.Newf(apperror.CodeInvalidAugment, "augmentation amount must be positive, got %d", k)
	}
	bottleneck, err := Bottleneck(rg, p)
	if err != nil {
		return err
	}
	if k > bottleneck {
		return apperror.Newf(apperror.CodeInvalidAugment, "augmentation amount %d exceeds bottleneck %d", k, bottleneck)
	}

	for _, idx := range p.Arcs {
		arc := &rg.arcs[idx]
		arc.Residual -= k
		rg.arcs[arc.Twin].Residual += k
	}
	return nil
}
