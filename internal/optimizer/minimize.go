// Package optimizer implements the classical half of the variational
// loop: a derivative-free simplex search over the circuit parameters,
// bounded by an evaluation budget so request latency stays bounded.
package optimizer

import (
	"context"
	"fmt"
	"math"
	"sort"

	"quantum-energy-scheduler/internal/circuit"
)

// Evaluator scores one candidate parameter set, typically by executing
// the ansatz and computing the expected QUBO cost over the returned
// distribution. Errors are treated as transient and retried once.
type Evaluator func(ctx context.Context, p circuit.Parameters) (float64, error)

// Options bound and tune the search.
type Options struct {
	// MaxIterations caps the total number of cost evaluations (default 50).
	MaxIterations int
	// Tolerance stops the search early once the simplex cost spread
	// falls below it (default 1e-4).
	Tolerance float64
	// InitialStep is the simplex spread around the initial point
	// (default 0.4 radians).
	InitialStep float64
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = 50
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-4
	}
	if o.InitialStep <= 0 {
		o.InitialStep = 0.4
	}
	return o
}

// Result reports the best parameters seen across the whole run, which
// need not be the last candidate evaluated.
type Result struct {
	BestParams  circuit.Parameters
	BestCost    float64
	InitialCost float64
	Iterations  int // evaluations performed
	Converged   bool
}

// FailedError means no evaluation succeeded during the entire run.
type FailedError struct {
	Iterations int
	LastErr    error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("optimization failed after %d evaluations: %v", e.Iterations, e.LastErr)
}

func (e *FailedError) Unwrap() error { return e.LastErr }

type vertex struct {
	point []float64
	cost  float64
}

// Minimize runs a Nelder-Mead style simplex search (COBYLA-family,
// derivative-free) over the 2*reps circuit parameters. Each failed
// evaluation is retried once; a second failure marks the candidate
// infeasible and the search moves on. The run fails only when every
// evaluation failed. Cancelling ctx between iterations returns the best
// parameters found so far rather than an error.
func Minimize(ctx context.Context, reps int, initial circuit.Parameters, eval Evaluator, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	n := 2 * reps

	res := &Result{
		BestCost:    math.Inf(1),
		InitialCost: math.Inf(1),
	}
	successes := 0
	var lastErr error

	evaluate := func(point []float64) float64 {
		if res.Iterations >= opts.MaxIterations {
			return math.Inf(1)
		}
		res.Iterations++
		p, err := circuit.ParametersFromVector(point, reps)
		if err != nil {
			lastErr = err
			return math.Inf(1)
		}
		cost, err := eval(ctx, p)
		if err != nil {
			// One retry per evaluation absorbs transient backend faults.
			cost, err = eval(ctx, p)
		}
		if err != nil {
			lastErr = err
			return math.Inf(1)
		}
		successes++
		if cost < res.BestCost {
			res.BestCost = cost
			res.BestParams, _ = circuit.ParametersFromVector(point, reps)
		}
		return cost
	}

	// Initial simplex: the supplied point plus one step along each axis.
	simplex := make([]vertex, n+1)
	base := initial.Vector()
	simplex[0] = vertex{point: append([]float64(nil), base...)}
	simplex[0].cost = evaluate(simplex[0].point)
	res.InitialCost = simplex[0].cost
	for i := 1; i <= n; i++ {
		point := append([]float64(nil), base...)
		point[i-1] += opts.InitialStep
		simplex[i] = vertex{point: point, cost: evaluate(point)}
	}

	for res.Iterations < opts.MaxIterations {
		if ctx.Err() != nil {
			break
		}

		sort.Slice(simplex, func(a, b int) bool { return simplex[a].cost < simplex[b].cost })
		best, worst := simplex[0], simplex[n]

		if spread(simplex) < opts.Tolerance {
			res.Converged = true
			break
		}

		// Centroid of all but the worst vertex.
		centroid := make([]float64, n)
		for _, v := range simplex[:n] {
			for d, x := range v.point {
				centroid[d] += x / float64(n)
			}
		}

		reflected := combine(centroid, worst.point, 1, -1)
		rCost := evaluate(reflected)

		switch {
		case rCost < best.cost:
			expanded := combine(centroid, worst.point, 2, -2)
			if eCost := evaluate(expanded); eCost < rCost {
				simplex[n] = vertex{point: expanded, cost: eCost}
			} else {
				simplex[n] = vertex{point: reflected, cost: rCost}
			}
		case rCost < simplex[n-1].cost:
			simplex[n] = vertex{point: reflected, cost: rCost}
		default:
			contracted := combine(centroid, worst.point, 0.5, 0.5)
			if cCost := evaluate(contracted); cCost < worst.cost {
				simplex[n] = vertex{point: contracted, cost: cCost}
			} else {
				// Shrink the whole simplex toward the best vertex.
				for i := 1; i <= n; i++ {
					simplex[i].point = combine(best.point, simplex[i].point, 0.5, 0.5)
					simplex[i].cost = evaluate(simplex[i].point)
				}
			}
		}
	}

	if successes == 0 {
		return nil, &FailedError{Iterations: res.Iterations, LastErr: lastErr}
	}
	if len(res.BestParams.Gamma) == 0 {
		res.BestParams = initial
	}
	return res, nil
}

// combine returns a*x + b*y element-wise.
func combine(x, y []float64, a, b float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = a*x[i] + b*y[i]
	}
	return out
}

// spread is the cost gap across the simplex, ignoring infeasible
// vertices.
func spread(simplex []vertex) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range simplex {
		if math.IsInf(v.cost, 1) {
			continue
		}
		lo = math.Min(lo, v.cost)
		hi = math.Max(hi, v.cost)
	}
	if math.IsInf(lo, 1) {
		return math.Inf(1)
	}
	return hi - lo
}
