// Package qubo formulates the battery scheduling decision as a Quadratic
// Unconstrained Binary Optimization problem: one decision bit per hour,
// bit 1 = charge, bit 0 = discharge.
package qubo

import "fmt"

// Model is a symmetric cost matrix plus a linear bias vector over the
// window's decision bits. It is built fresh per request and never
// mutated after construction.
type Model struct {
	Size int
	Q    [][]float64
	Bias []float64
}

// Evaluate returns the QUBO cost of a bit assignment:
// sum_i bias_i*x_i + sum_{i,j} Q[i][j]*x_i*x_j.
func (m *Model) Evaluate(bits []int) float64 {
	cost := 0.0
	for i, xi := range bits {
		if xi == 0 {
			continue
		}
		cost += m.Bias[i]
		for j, xj := range bits {
			if xj != 0 {
				cost += m.Q[i][j]
			}
		}
	}
	return cost
}

// CostOf evaluates the cost of a measurement bitstring. Qubit i is the
// i-th character; anything other than '0'/'1' or a wrong length is an
// error so callers can skip malformed outcomes.
func (m *Model) CostOf(bitstring string) (float64, error) {
	if len(bitstring) != m.Size {
		return 0, fmt.Errorf("bitstring length %d, want %d", len(bitstring), m.Size)
	}
	bits := make([]int, m.Size)
	for i := 0; i < m.Size; i++ {
		switch bitstring[i] {
		case '0':
			bits[i] = 0
		case '1':
			bits[i] = 1
		default:
			return 0, fmt.Errorf("bitstring has non-binary character %q", bitstring[i])
		}
	}
	return m.Evaluate(bits), nil
}

// OffDiagonalTerms counts the nonzero couplings above the diagonal.
// The ansatz builder emits one two-qubit gate per term per repetition.
func (m *Model) OffDiagonalTerms() int {
	n := 0
	for i := 0; i < m.Size; i++ {
		for j := i + 1; j < m.Size; j++ {
			if m.Q[i][j] != 0 {
				n++
			}
		}
	}
	return n
}
