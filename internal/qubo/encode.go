package qubo

import (
	"math"

	"quantum-energy-scheduler/internal/model"
)

// Weights tunes the penalty structure of the encoding. The capacity
// penalty approximates sequential state-of-charge constraints, which a
// QUBO cannot express exactly; it is deliberately a tunable.
type Weights struct {
	Surplus   float64 // linear preference for charging surplus hours
	Smoothing float64 // coupling that damps consecutive identical decisions
	Penalty   float64 // quadratic weight on capacity violations
}

// DefaultWeights returns the tuning used when no preset overrides it.
func DefaultWeights() Weights {
	return Weights{Surplus: 0.1, Smoothing: 0.05, Penalty: 0.5}
}

// Encode converts an optimization window plus capacities into a QUBO
// model over size decision bits. Pure function of its inputs.
//
// Per hour i with net surplus s_i:
//   - bias favors charging when s_i > 0 and discharging when s_i < 0;
//   - the self-term rewards absorbing surplus (up to battery capacity)
//     and penalizes charging a deficit deeper than the battery can cover,
//     both quadratic in the normalized violation;
//   - consecutive hours couple through a smoothing term plus a penalty
//     when their combined swing would exceed the battery in one run.
func Encode(window model.OptimizationWindow, capacity model.CapacityProfile, size int, w Weights) (*Model, error) {
	if len(window) != size {
		return nil, &model.InvalidWindowError{Length: len(window), Want: size, Reason: "window length does not match qubit count"}
	}
	if err := capacity.Validate(); err != nil {
		return nil, &model.InvalidWindowError{Length: len(window), Want: size, Reason: err.Error()}
	}
	for _, r := range window {
		if !r.Valid() {
			return nil, &model.InvalidWindowError{Length: len(window), Want: size, Hour: r.Hour, Reason: "negative production or demand"}
		}
	}

	m := &Model{
		Size: size,
		Q:    make([][]float64, size),
		Bias: make([]float64, size),
	}
	for i := range m.Q {
		m.Q[i] = make([]float64, size)
	}

	cap := capacity.Battery
	surplus := window.Surpluses()

	for i, s := range surplus {
		m.Bias[i] = -w.Surplus * s

		if s > 0 {
			// Reward charging up to what the battery can take in an hour.
			v := math.Min(s, cap) / cap
			m.Q[i][i] -= w.Penalty * v * v
		}
		if s < -cap {
			// Charging a deficit beyond battery capacity is infeasible.
			v := (-s - cap) / cap
			m.Q[i][i] += w.Penalty * v * v
		}
	}

	// Couple consecutive hours. The run penalty tracks a virtual
	// charge/discharge run: two same-direction decisions whose combined
	// magnitude overshoots the battery get pushed apart.
	for i := 0; i+1 < size; i++ {
		coupling := w.Smoothing
		run := math.Abs(surplus[i]) + math.Abs(surplus[i+1])
		if run > cap {
			v := (run - cap) / cap
			coupling += w.Penalty * v * v
		}
		// Split across both halves to keep Q symmetric.
		m.Q[i][i+1] += coupling / 2
		m.Q[i+1][i] += coupling / 2
	}

	return m, nil
}
