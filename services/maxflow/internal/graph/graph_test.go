package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maxflow/pkg/apperror"
)

type arcSpec struct {
	u, v int
	c    int64
}

func buildNetwork(t *testing.T, n, s, sink int, arcs ...arcSpec) *Network {
	t.Helper()
	net, err := NewNetwork(n)
	require.NoError(t, err)
	require.NoError(t, net.SetSource(s))
	require.NoError(t, net.SetSink(sink))
	for _, a := range arcs {
		_, err := net.AddArc(a.u, a.v, a.c)
		require.NoError(t, err)
	}
	return net
}

// diamond: 1 -> {2,3} -> 4
func diamond(t *testing.T) *Network {
	return buildNetwork(t, 4, 1, 4,
		arcSpec{1, 2, 3},
		arcSpec{1, 3, 2},
		arcSpec{2, 4, 3},
		arcSpec{3, 4, 2},
	)
}

// =============================================================================
// Queue Tests
// =============================================================================

func TestQueue(t *testing.T) {
	q := NewQueue(2)
	assert.True(t, q.Empty())

	q.Push(1)
	q.Push(2)
	q.Push(3)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 1, q.Pop())
	assert.Equal(t, 2, q.Pop())
	assert.Equal(t, 1, q.Len())

	q.Reset()
	assert.True(t, q.Empty())
	q.Push(9)
	assert.Equal(t, 9, q.Pop())
}

// =============================================================================
// Network Tests
// =============================================================================

func TestNewNetwork_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -3} {
		_, err := NewNetwork(n)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.CodeInvalidHeader))
	}

	for _, n := range []int{MaxVertices + 1, math.MaxInt} {
		_, err := NewNetwork(n)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.CodeResourceExhausted), "n=%d", n)
	}
}

func TestNetwork_AddArc(t *testing.T) {
	net, err := NewNetwork(3)
	require.NoError(t, err)

	tests := []struct {
		name    string
		u, v    int
		c       int64
		code    apperror.ErrorCode
		wantErr bool
	}{
		{name: "valid", u: 1, v: 2, c: 4},
		{name: "zero_capacity", u: 2, v: 3, c: 0},
		{name: "self_loop", u: 3, v: 3, c: 1},
		{name: "from_out_of_range", u: 0, v: 2, c: 1, wantErr: true, code: apperror.CodeDanglingArc},
		{name: "to_out_of_range", u: 1, v: 4, c: 1, wantErr: true, code: apperror.CodeDanglingArc},
		{name: "negative_capacity", u: 1, v: 3, c: -1, wantErr: true, code: apperror.CodeNegativeCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := net.AddArc(tt.u, tt.v, tt.c)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.Is(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
		})
	}

	assert.Equal(t, 3, net.ArcCount())
	assert.Equal(t, int64(5), net.TotalCapacity())
}

func TestNetwork_Terminals(t *testing.T) {
	net, err := NewNetwork(2)
	require.NoError(t, err)

	assert.True(t, apperror.Is(net.Validate(), apperror.CodeInvalidSource))

	require.Error(t, net.SetSource(3))
	require.NoError(t, net.SetSource(1))
	assert.True(t, apperror.Is(net.Validate(), apperror.CodeInvalidSink))

	require.Error(t, net.SetSink(0))
	require.NoError(t, net.SetSink(1))
	assert.True(t, apperror.Is(net.Validate(), apperror.CodeSourceEqualsSink))

	require.NoError(t, net.SetSink(2))
	assert.NoError(t, net.Validate())
}

func TestNetwork_ReverseAdjacency(t *testing.T) {
	net := buildNetwork(t, 3, 1, 3,
		arcSpec{1, 2, 1},
		arcSpec{1, 3, 1},
		arcSpec{2, 3, 1},
	)
	assert.Equal(t, []int{0, 1}, net.OutArcs(1))

	net.ReverseAdjacency()
	assert.Equal(t, []int{1, 0}, net.OutArcs(1))

	var order []int
	net.Each(func(a *Arc) { order = append(order, a.ID) })
	assert.Equal(t, []int{1, 0, 2}, order)
}

func TestNetwork_Flows(t *testing.T) {
	net := diamond(t)
	require.NoError(t, net.ApplyFlows([]int64{1, 2, 1, 2}))
	assert.Equal(t, []int64{1, 2, 1, 2}, net.Flows())
	assert.Equal(t, int64(3), Value(net))

	net.ResetFlow()
	assert.Equal(t, []int64{0, 0, 0, 0}, net.Flows())

	assert.Error(t, net.ApplyFlows([]int64{1}))
}

func TestNetwork_Fingerprint(t *testing.T) {
	a := diamond(t)
	b := diamond(t)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 32)

	// flows do not change the digest
	require.NoError(t, b.ApplyFlows([]int64{1, 1, 1, 1}))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := buildNetwork(t, 4, 1, 4,
		arcSpec{1, 2, 3},
		arcSpec{1, 3, 2},
		arcSpec{2, 4, 3},
		arcSpec{3, 4, 1},
	)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

// =============================================================================
// Residual Graph Tests
// =============================================================================

func TestNewResidualGraph_Pairs(t *testing.T) {
	net := diamond(t)
	require.NoError(t, net.ApplyFlows([]int64{1, 0, 1, 0}))

	rg, err := NewResidualGraph(net)
	require.NoError(t, err)

	assert.Equal(t, 4, rg.VertexCount())
	assert.Equal(t, 8, rg.ArcCount())

	for id, a := range net.Arcs() {
		fwd, bwd := rg.Forward(id), rg.Backward(id)
		assert.True(t, fwd.Forward)
		assert.False(t, bwd.Forward)
		assert.Equal(t, a.From, fwd.From)
		assert.Equal(t, a.To, fwd.To)
		assert.Equal(t, a.To, bwd.From)
		assert.Equal(t, a.From, bwd.To)
		assert.Equal(t, a.Capacity-a.Flow, fwd.Residual)
		assert.Equal(t, a.Flow, bwd.Residual)
		assert.Equal(t, 2*id+1, fwd.Twin)
		assert.Equal(t, 2*id, bwd.Twin)
		assert.Equal(t, id, NetworkArcOf(fwd.Twin))
		assert.Equal(t, a.Capacity, rg.Capacity(id))
	}
}

func TestNewResidualGraph_Order(t *testing.T) {
	net := diamond(t)

	rg, err := NewResidualGraph(net)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, rg.OutArcs(1))
	assert.Equal(t, []int{1, 4}, rg.OutArcs(2))
	assert.Equal(t, []int{5, 7}, rg.OutArcs(4))

	legacy, err := NewResidualGraph(net, WithLegacyOrder(true))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, legacy.OutArcs(1))
	assert.Equal(t, []int{4, 1}, legacy.OutArcs(2))
	assert.Equal(t, []int{7, 5}, legacy.OutArcs(4))
}

func TestNewResidualGraph_Invalid(t *testing.T) {
	_, err := NewResidualGraph(nil)
	assert.True(t, apperror.Is(err, apperror.CodeNilInput))

	net, err := NewNetwork(2)
	require.NoError(t, err)
	require.NoError(t, net.SetSource(1))
	_, err = NewResidualGraph(net)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidSink))
}

// =============================================================================
// Search Tests
// =============================================================================

func TestShortestPath(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T) *Network
		legacy    bool
		wantFound bool
		wantPath  []int
	}{
		{
			name:      "single_arc",
			setup:     func(t *testing.T) *Network { return buildNetwork(t, 2, 1, 2, arcSpec{1, 2, 5}) },
			wantFound: true,
			wantPath:  []int{1, 2},
		},
		{
			name:      "diamond_append_order",
			setup:     diamond,
			wantFound: true,
			wantPath:  []int{1, 2, 4},
		},
		{
			name:      "diamond_legacy_order",
			setup:     diamond,
			legacy:    true,
			wantFound: true,
			wantPath:  []int{1, 3, 4},
		},
		{
			name: "prefers_fewer_arcs",
			setup: func(t *testing.T) *Network {
				return buildNetwork(t, 4, 1, 4,
					arcSpec{1, 2, 1},
					arcSpec{2, 3, 1},
					arcSpec{3, 4, 1},
					arcSpec{1, 4, 1},
				)
			},
			wantFound: true,
			wantPath:  []int{1, 4},
		},
		{
			name: "zero_capacity_is_not_traversed",
			setup: func(t *testing.T) *Network {
				return buildNetwork(t, 3, 1, 3, arcSpec{1, 2, 0}, arcSpec{2, 3, 5})
			},
			wantFound: false,
		},
		{
			name: "sink_without_incoming_arcs",
			setup: func(t *testing.T) *Network {
				return buildNetwork(t, 3, 1, 3, arcSpec{1, 2, 5}, arcSpec{3, 2, 5})
			},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rg, err := NewResidualGraph(tt.setup(t), WithLegacyOrder(tt.legacy))
			require.NoError(t, err)

			p, found := ShortestPath(rg)
			assert.Equal(t, tt.wantFound, found)
			if !tt.wantFound {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, tt.wantPath, p.Vertices)
			require.Equal(t, len(p.Vertices)-1, p.Len())
			for i, idx := range p.Arcs {
				assert.Equal(t, p.Vertices[i], rg.Arc(idx).From)
				assert.Equal(t, p.Vertices[i+1], rg.Arc(idx).To)
			}
		})
	}
}

func TestShortestPath_Deterministic(t *testing.T) {
	net := diamond(t)
	rg1, err := NewResidualGraph(net)
	require.NoError(t, err)
	rg2, err := NewResidualGraph(net)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		p1, _ := ShortestPath(rg1)
		p2, _ := ShortestPath(rg2)
		assert.Equal(t, p1, p2)
	}
}

func TestReachable(t *testing.T) {
	net := buildNetwork(t, 5, 1, 5,
		arcSpec{1, 2, 1},
		arcSpec{2, 3, 1},
		arcSpec{4, 5, 1},
	)
	rg, err := NewResidualGraph(net)
	require.NoError(t, err)

	reach := Reachable(rg)
	assert.Equal(t, []bool{false, true, true, true, false, false}, reach)
}

// =============================================================================
// Path Tests
// =============================================================================

func TestBottleneck(t *testing.T) {
	net := buildNetwork(t, 4, 1, 4,
		arcSpec{1, 2, 100},
		arcSpec{2, 3, 1},
		arcSpec{3, 4, 100},
	)
	rg, err := NewResidualGraph(net)
	require.NoError(t, err)

	p, found := ShortestPath(rg)
	require.True(t, found)

	k, err := Bottleneck(rg, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), k)
}

func TestBottleneck_InvalidPath(t *testing.T) {
	rg, err := NewResidualGraph(diamond(t))
	require.NoError(t, err)

	tests := []struct {
		name string
		path *Path
	}{
		{name: "nil", path: nil},
		{name: "single_vertex", path: &Path{Vertices: []int{1}}},
		{name: "arc_count_mismatch", path: &Path{Vertices: []int{1, 2}, Arcs: nil}},
		{name: "unknown_arc", path: &Path{Vertices: []int{1, 2}, Arcs: []int{99}}},
		{name: "arc_does_not_join", path: &Path{Vertices: []int{1, 3}, Arcs: []int{0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bottleneck(rg, tt.path)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.CodeInvalidPath))
		})
	}
}

func TestAugment(t *testing.T) {
	net := diamond(t)
	rg, err := NewResidualGraph(net)
	require.NoError(t, err)

	p, found := ShortestPath(rg)
	require.True(t, found)

	require.NoError(t, Augment(rg, p, 2))
	assert.Equal(t, int64(1), rg.Forward(0).Residual)
	assert.Equal(t, int64(2), rg.Backward(0).Residual)
	assert.Equal(t, int64(1), rg.Forward(2).Residual)
	assert.Equal(t, int64(2), rg.Backward(2).Residual)

	for id := range net.Arcs() {
		assert.Equal(t, rg.Capacity(id), rg.Forward(id).Residual+rg.Backward(id).Residual)
	}
}

func TestAugment_Rejects(t *testing.T) {
	rg, err := NewResidualGraph(diamond(t))
	require.NoError(t, err)
	p, found := ShortestPath(rg)
	require.True(t, found)

	for _, k := range []int64{0, -1, 4} {
		err := Augment(rg, p, k)
		require.Error(t, err, "k=%d", k)
		assert.True(t, apperror.Is(err, apperror.CodeInvalidAugment))
	}
	// untouched
	assert.Equal(t, int64(3), rg.Forward(0).Residual)
	assert.Equal(t, int64(0), rg.Backward(0).Residual)
}

func TestAugment_ParallelArcs(t *testing.T) {
	net := buildNetwork(t, 2, 1, 2, arcSpec{1, 2, 4}, arcSpec{1, 2, 7})
	rg, err := NewResidualGraph(net)
	require.NoError(t, err)

	p, found := ShortestPath(rg)
	require.True(t, found)
	require.Equal(t, []int{0}, p.Arcs)

	k, err := Bottleneck(rg, p)
	require.NoError(t, err)
	assert.Equal(t, int64(4), k)
	require.NoError(t, Augment(rg, p, k))

	// the second parallel arc is untouched
	assert.Equal(t, int64(7), rg.Forward(1).Residual)
	assert.Equal(t, int64(0), rg.Backward(1).Residual)

	p, found = ShortestPath(rg)
	require.True(t, found)
	assert.Equal(t, []int{2}, p.Arcs)
}

func TestPath_Clone(t *testing.T) {
	p := &Path{Vertices: []int{1, 2}, Arcs: []int{0}}
	c := p.Clone()
	c.Vertices[0] = 9
	assert.Equal(t, 1, p.Vertices[0])
}

// =============================================================================
// Projection, Cut and Verification Tests
// =============================================================================

func TestProjectFlow(t *testing.T) {
	net := diamond(t)
	rg, err := NewResidualGraph(net)
	require.NoError(t, err)

	p, _ := ShortestPath(rg)
	require.NoError(t, Augment(rg, p, 3))
	require.NoError(t, ProjectFlow(rg, net))
	assert.Equal(t, []int64{3, 0, 3, 0}, net.Flows())

	// idempotent
	require.NoError(t, ProjectFlow(rg, net))
	assert.Equal(t, []int64{3, 0, 3, 0}, net.Flows())
}

func TestProjectFlow_StructureMismatch(t *testing.T) {
	rg, err := NewResidualGraph(diamond(t))
	require.NoError(t, err)

	other := buildNetwork(t, 2, 1, 2, arcSpec{1, 2, 1})
	err = ProjectFlow(rg, other)
	assert.True(t, apperror.Is(err, apperror.CodeStructureChange))
}

func TestMinCut(t *testing.T) {
	net := diamond(t)
	rg, err := NewResidualGraph(net)
	require.NoError(t, err)

	for {
		p, found := ShortestPath(rg)
		if !found {
			break
		}
		k, err := Bottleneck(rg, p)
		require.NoError(t, err)
		require.NoError(t, Augment(rg, p, k))
	}
	require.NoError(t, ProjectFlow(rg, net))

	cut := MinCut(rg, net)
	assert.Equal(t, []int{1}, cut.SourceSide)
	assert.Equal(t, []int{0, 1}, cut.Arcs)
	assert.Equal(t, int64(5), cut.Capacity)
	assert.Equal(t, Value(net), cut.Capacity)
}

func TestVerify(t *testing.T) {
	net := diamond(t)
	rg, err := NewResidualGraph(net)
	require.NoError(t, err)
	require.True(t, Verify(net, rg).IsValid())

	p, _ := ShortestPath(rg)
	require.NoError(t, Augment(rg, p, 2))
	require.NoError(t, ProjectFlow(rg, net))
	require.True(t, Verify(net, rg).IsValid())

	// corrupt a residual and a flow
	rg.Forward(1).Residual = -1
	net.Arc(3).Flow = 5

	v := Verify(net, rg)
	require.False(t, v.IsValid())

	codes := map[apperror.ErrorCode]bool{}
	for _, e := range v.Errors {
		codes[e.Code] = true
	}
	assert.True(t, codes[apperror.CodeNegativeResidual])
	assert.True(t, codes[apperror.CodeResidualMismatch])
	assert.Contains(t, v.ErrorMessages()[0], "of network arc 1 ")
	assert.True(t, codes[apperror.CodeCapacityOverflow])
	assert.True(t, codes[apperror.CodeConservationViolation])
}

func TestVerify_StructureMismatch(t *testing.T) {
	rg, err := NewResidualGraph(diamond(t))
	require.NoError(t, err)

	v := Verify(buildNetwork(t, 2, 1, 2), rg)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, apperror.CodeStructureChange, v.Errors[0].Code)
}
