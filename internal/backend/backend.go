// Package backend defines the circuit execution substrate as an injected
// capability: bind parameters, execute, return a measurement
// distribution. The optimizer core never depends on a concrete backend.
package backend

import (
	"context"
	"fmt"
	"math"

	"quantum-energy-scheduler/internal/circuit"
)

// Distribution maps measurement bitstrings (qubit 0 first) to their
// observed probabilities. Produced fresh per execution; read-only to
// consumers.
type Distribution map[string]float64

// probabilitySumTolerance bounds how far a distribution's total mass may
// drift from 1 before it is considered malformed.
const probabilitySumTolerance = 1e-6

// Validate checks the distribution is non-empty, has consistent key
// lengths, and sums to ~1.
func (d Distribution) Validate(qubits int) error {
	if len(d) == 0 {
		return fmt.Errorf("empty distribution")
	}
	sum := 0.0
	for bits, p := range d {
		if len(bits) != qubits {
			return fmt.Errorf("outcome %q has length %d, want %d", bits, len(bits), qubits)
		}
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("outcome %q has probability %v", bits, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > probabilitySumTolerance {
		return fmt.Errorf("probabilities sum to %v", sum)
	}
	return nil
}

// ExecutionError reports a backend that is unreachable or returned a
// malformed distribution.
type ExecutionError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("backend %s: %s", e.Backend, e.Reason)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Backend executes an ansatz with bound parameters and returns the
// measurement distribution over shots samples. Implementations backed by
// simulators should be reproducible under a fixed seed; hardware backends
// may return sampling noise, which callers average over.
type Backend interface {
	Name() string
	Ready(ctx context.Context) bool
	Execute(ctx context.Context, a *circuit.Ansatz, params circuit.Parameters, shots int) (Distribution, error)
}
