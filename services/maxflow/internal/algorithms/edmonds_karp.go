// Package algorithms drives the augmentation loop of the maximum flow engine.
//
// # Algorithm choice
//
// The solver is plain Edmonds–Karp: one breadth-first shortest augmenting
// path per round, no level graph and no blocking-flow phases. The number and
// identity of augmenting paths are therefore observable and stable, which the
// round observer and the recorded paths rely on.
//
// # Context Support
//
// EdmondsKarpWithContext checks the context every checkInterval rounds and
// returns the partial result with Canceled set when it is done.
package algorithms

import (
	"context"
	"math"
	"time"

	"maxflow/pkg/apperror"
	"maxflow/services/maxflow/internal/graph"
)

// =============================================================================
// Edmonds-Karp Algorithm
// =============================================================================
//
// Each round:
//
//	SEARCHING: path := ShortestPath(residual)
//	           no path            -> DONE
//	           k := Bottleneck(path)
//	           Augment(path, k); ProjectFlow(); total += k
//	DONE:      derive the minimum cut, return
//
// Every round adds at least one unit of flow, so the number of rounds is
// bounded by the total capacity as well as by O(V·E).
//
// Time Complexity: O(V × E²)
// Space Complexity: O(V + E)
// =============================================================================

// checkInterval is how many rounds run between context checks.
const checkInterval = 100

// State is the orchestrator's position in the augmentation loop.
type State int

const (
	StateSearching State = iota
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Augmentation describes one completed round.
type Augmentation struct {
	Round  int
	Path   *graph.Path
	Amount int64
	Total  int64

	// Residual is the residual graph right after the round. Observers may
	// read it but must not modify it. Recorded paths leave it nil.
	Residual *graph.ResidualGraph
}

// RoundObserver is called after every completed round. The path it receives
// is owned by the solver and must be cloned if retained.
type RoundObserver func(a Augmentation)

// SolverOptions configures the augmentation loop. The zero value is usable.
type SolverOptions struct {
	// MaxRounds stops the loop with an ITERATION_LIMIT error once that many
	// rounds have completed and another augmenting path exists.
	// Zero means unlimited.
	MaxRounds int

	// Timeout bounds the solve on top of the caller's context.
	// Zero means no extra bound.
	Timeout time.Duration

	// RecordPaths keeps a copy of every augmenting path in the result.
	RecordPaths bool

	// LegacyOrder builds the residual graph with head-insertion adjacency.
	LegacyOrder bool

	// OnRound, if set, observes every completed round.
	OnRound RoundObserver
}

// DefaultSolverOptions returns options with no limits.
func DefaultSolverOptions() *SolverOptions {
	return &SolverOptions{}
}

// WithMaxRounds sets MaxRounds and returns o.
func (o *SolverOptions) WithMaxRounds(n int) *SolverOptions {
	o.MaxRounds = n
	return o
}

// WithTimeout sets Timeout and returns o.
func (o *SolverOptions) WithTimeout(d time.Duration) *SolverOptions {
	o.Timeout = d
	return o
}

// WithRecordPaths sets RecordPaths and returns o.
func (o *SolverOptions) WithRecordPaths(enabled bool) *SolverOptions {
	o.RecordPaths = enabled
	return o
}

// WithLegacyOrder sets LegacyOrder and returns o.
func (o *SolverOptions) WithLegacyOrder(enabled bool) *SolverOptions {
	o.LegacyOrder = enabled
	return o
}

// WithObserver sets OnRound and returns o.
func (o *SolverOptions) WithObserver(fn RoundObserver) *SolverOptions {
	o.OnRound = fn
	return o
}

// Result is the outcome of a solve.
type Result struct {
	// MaxFlow is the accumulated total of all augmentations.
	MaxFlow int64

	// Rounds is the number of augmenting paths applied.
	Rounds int

	// Paths holds every augmentation when RecordPaths is enabled.
	Paths []Augmentation

	// MinCut is the source-side reachability cut at termination. It is nil
	// when the solve was canceled.
	MinCut *graph.Cut

	// Residual is the final residual graph.
	Residual *graph.ResidualGraph

	// State is StateDone unless the solve was canceled.
	State State

	// Canceled indicates whether the operation was canceled via context.
	Canceled bool

	Duration time.Duration
}

// EdmondsKarp runs the solver without cancellation.
func EdmondsKarp(net *graph.Network, options *SolverOptions) (*Result, error) {
	return EdmondsKarpWithContext(context.Background(), net, options)
}

// EdmondsKarpWithContext computes a maximum flow of net.
//
// Arc flows on net are updated after every round; on return they describe
// the final (or, if canceled, the partial) flow. Flows already present on net
// are taken as the starting flow.
func EdmondsKarpWithContext(ctx context.Context, net *graph.Network, options *SolverOptions) (*Result, error) {
	if net == nil {
		return nil, apperror.New(apperror.CodeNilInput, "network is nil")
	}
	if options == nil {
		options = DefaultSolverOptions()
	}
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	start := time.Now()

	rg, err := graph.NewResidualGraph(net, graph.WithLegacyOrder(options.LegacyOrder))
	if err != nil {
		return nil, err
	}

	res := &Result{
		MaxFlow:  graph.Value(net),
		Residual: rg,
		State:    StateSearching,
	}

	for res.State == StateSearching {
		if res.Rounds%checkInterval == 0 {
			select {
			case <-ctx.Done():
				res.Canceled = true
				res.Duration = time.Since(start)
				return res, nil
			default:
			}
		}

		path, found := graph.ShortestPath(rg)
		if !found {
			res.State = StateDone
			break
		}

		if options.MaxRounds > 0 && res.Rounds >= options.MaxRounds {
			res.Duration = time.Since(start)
			return res, apperror.Newf(apperror.CodeIterationLimit, "augmentation round limit %d reached", options.MaxRounds).
				WithDetails("max_rounds", options.MaxRounds)
		}

		k, err := graph.Bottleneck(rg, path)
		if err != nil {
			return res, err
		}
		if res.MaxFlow > math.MaxInt64-k {
			return res, apperror.Newf(apperror.CodeCapacityOverflow, "total flow exceeds %d", int64(math.MaxInt64))
		}
		if err := graph.Augment(rg, path, k); err != nil {
			return res, err
		}
		if err := graph.ProjectFlow(rg, net); err != nil {
			return res, err
		}

		res.MaxFlow += k
		res.Rounds++

		aug := Augmentation{Round: res.Rounds, Path: path, Amount: k, Total: res.MaxFlow, Residual: rg}
		if options.RecordPaths {
			rec := aug
			rec.Path = path.Clone()
			rec.Residual = nil
			res.Paths = append(res.Paths, rec)
		}
		if options.OnRound != nil {
			options.OnRound(aug)
		}
	}

	res.MinCut = graph.MinCut(rg, net)
	res.Duration = time.Since(start)
	return res, nil
}
