// Package decode turns the final measurement distribution into a
// physically valid battery schedule: pick the best-scoring sampled
// bitstring, map bits to hourly actions, and repair magnitudes against
// capacity.
package decode

import (
	"context"
	"fmt"
	"math"

	"quantum-energy-scheduler/internal/backend"
	"quantum-energy-scheduler/internal/circuit"
	"quantum-energy-scheduler/internal/model"
	"quantum-energy-scheduler/internal/qubo"
)

// Error reports a measurement distribution that is empty or entirely
// malformed. With a well-behaved backend this should not occur.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return "decode: " + e.Reason }

// Options tune the final sampling pass.
type Options struct {
	// Shots for the low-variance re-execution (default 4096).
	Shots int
	// Margin widens the candidate set to bitstrings whose cost is within
	// Margin*(|min|+1) of the sampled minimum (default 1e-6).
	Margin float64
}

func (o Options) withDefaults() Options {
	if o.Shots <= 0 {
		o.Shots = 4096
	}
	if o.Margin <= 0 {
		o.Margin = 1e-6
	}
	return o
}

// Selection is the chosen outcome, kept for the fidelity heuristic.
type Selection struct {
	Bitstring   string
	Probability float64
	Cost        float64
}

// Schedule re-executes the ansatz with the best parameters at a higher
// shot count, selects a bitstring, and maps it onto per-hour entries.
func Schedule(ctx context.Context, m *qubo.Model, a *circuit.Ansatz, best circuit.Parameters, b backend.Backend,
	window model.OptimizationWindow, capacity model.CapacityProfile, opts Options) ([]model.ScheduleEntry, Selection, error) {

	opts = opts.withDefaults()
	dist, err := b.Execute(ctx, a, best, opts.Shots)
	if err != nil {
		return nil, Selection{}, fmt.Errorf("final sampling: %w", err)
	}
	sel, err := Select(m, dist, opts.Margin)
	if err != nil {
		return nil, Selection{}, err
	}
	entries := FromBitstring(sel, window, capacity)
	return entries, sel, nil
}

// Select picks the winning bitstring from a distribution: among outcomes
// whose QUBO cost lies within the margin of the sampled minimum, the most
// probable wins; ties break toward lower cost, then the lexicographically
// smaller bitstring. Deterministic for a fixed distribution.
func Select(m *qubo.Model, dist backend.Distribution, margin float64) (Selection, error) {
	if len(dist) == 0 {
		return Selection{}, &Error{Reason: "empty measurement distribution"}
	}

	type scored struct {
		bits string
		prob float64
		cost float64
	}
	outcomes := make([]scored, 0, len(dist))
	minCost := math.Inf(1)
	for bits, p := range dist {
		cost, err := m.CostOf(bits)
		if err != nil {
			// Malformed outcomes are skipped; hardware backends may emit
			// stray keys under readout error.
			continue
		}
		outcomes = append(outcomes, scored{bits: bits, prob: p, cost: cost})
		minCost = math.Min(minCost, cost)
	}
	if len(outcomes) == 0 {
		return Selection{}, &Error{Reason: "distribution contains no decodable bitstrings"}
	}

	cutoff := minCost + margin*(math.Abs(minCost)+1)
	var chosen *scored
	for i := range outcomes {
		o := &outcomes[i]
		if o.cost > cutoff {
			continue
		}
		if chosen == nil ||
			o.prob > chosen.prob ||
			(o.prob == chosen.prob && o.cost < chosen.cost) ||
			(o.prob == chosen.prob && o.cost == chosen.cost && o.bits < chosen.bits) {
			chosen = o
		}
	}
	return Selection{Bitstring: chosen.bits, Probability: chosen.prob, Cost: chosen.cost}, nil
}

// FromBitstring maps each decision bit onto a schedule entry. Charging is
// bounded by battery capacity per hour; discharging is additionally
// bounded by the charge accumulated earlier in the window, tracked as a
// virtual state of charge starting empty. Clipping bounds the magnitude,
// never the action; a magnitude that rounds to zero becomes a hold.
func FromBitstring(sel Selection, window model.OptimizationWindow, capacity model.CapacityProfile) []model.ScheduleEntry {
	entries := make([]model.ScheduleEntry, 0, len(window))
	soc := 0.0
	// Per-entry efficiency mirrors how concentrated the measurement was
	// on the chosen outcome.
	efficiency := 85 + int(math.Min(10, sel.Probability*10))

	for i, r := range window {
		s := r.Surplus()
		bit := 0
		if i < len(sel.Bitstring) && sel.Bitstring[i] == '1' {
			bit = 1
		}

		mag := math.Min(math.Abs(s), capacity.Battery)
		clipped := mag < math.Abs(s)
		if bit == 0 {
			// Discharge can only draw down charge stored earlier in the
			// window; the battery starts the window empty.
			if mag > soc {
				mag = soc
				clipped = true
			}
		}

		action := model.ActionFromBit(bit, mag)
		if action == model.ActionHold {
			mag = 0
		}
		if bit == 1 {
			soc = math.Min(capacity.Battery, soc+mag)
		} else {
			soc -= mag
		}
		entries = append(entries, model.ScheduleEntry{
			Hour:        r.Hour,
			Action:      action,
			Magnitude:   mag,
			GridBalance: s,
			Efficiency:  efficiency,
			Clipped:     clipped,
		})
	}
	return entries
}
