// Package circuit builds the parameterized variational ansatz for a QUBO
// model: problem-Hamiltonian layers interleaved with transverse mixing
// layers, repeated R times over one qubit per hour.
package circuit

import (
	"fmt"

	"quantum-energy-scheduler/internal/qubo"
)

// Gate names understood by execution backends.
const (
	GateH   = "h"
	GateRZ  = "rz"
	GateRZZ = "rzz"
	GateRX  = "rx"
)

// Parameter families. A gate's angle is the named layer parameter times
// the gate coefficient; H gates carry no parameter.
const (
	ParamGamma = "gamma"
	ParamBeta  = "beta"
)

// Gate is one operation in the ansatz. Coefficient scales the bound layer
// parameter into the rotation angle.
type Gate struct {
	Name        string
	Qubits      []int
	Param       string // ParamGamma, ParamBeta, or "" for fixed gates
	Layer       int    // repetition index; -1 for the initial H layer
	Coefficient float64
}

// Ansatz is a deterministic, layered circuit specification.
type Ansatz struct {
	Qubits int
	Reps   int
	Gates  []Gate
	Depth  int
}

// Parameters are the continuous circuit parameters, one (gamma, beta)
// pair per repetition layer. Owned by the optimizer loop during a run.
type Parameters struct {
	Gamma []float64
	Beta  []float64
}

// Vector flattens parameters as gamma_1..R then beta_1..R.
func (p Parameters) Vector() []float64 {
	v := make([]float64, 0, len(p.Gamma)+len(p.Beta))
	v = append(v, p.Gamma...)
	return append(v, p.Beta...)
}

// ParametersFromVector is the inverse of Vector.
func ParametersFromVector(v []float64, reps int) (Parameters, error) {
	if len(v) != 2*reps {
		return Parameters{}, fmt.Errorf("parameter vector length %d, want %d", len(v), 2*reps)
	}
	p := Parameters{Gamma: make([]float64, reps), Beta: make([]float64, reps)}
	copy(p.Gamma, v[:reps])
	copy(p.Beta, v[reps:])
	return p, nil
}

// InvalidRepetitionError reports a repetition count below 1.
type InvalidRepetitionError struct {
	Reps int
}

func (e *InvalidRepetitionError) Error() string {
	return fmt.Sprintf("invalid repetition count %d: must be >= 1", e.Reps)
}

// Build constructs the ansatz for a QUBO model. Deterministic: the same
// model and repetition count always yield an identical gate list.
//
// Layout per repetition r: an RZ per qubit and an RZZ per nonzero
// coupling, all scaled by gamma_r and the QUBO coefficients, followed by
// an RX per qubit scaled by beta_r. A Hadamard layer prepares the uniform
// superposition up front.
func Build(m *qubo.Model, reps int) (*Ansatz, error) {
	if reps < 1 {
		return nil, &InvalidRepetitionError{Reps: reps}
	}

	n := m.Size
	pairs := m.OffDiagonalTerms()
	a := &Ansatz{
		Qubits: n,
		Reps:   reps,
		Gates:  make([]Gate, 0, n+reps*(2*n+pairs)),
	}

	for q := 0; q < n; q++ {
		a.Gates = append(a.Gates, Gate{Name: GateH, Qubits: []int{q}, Layer: -1})
	}

	for r := 0; r < reps; r++ {
		for q := 0; q < n; q++ {
			a.Gates = append(a.Gates, Gate{
				Name:        GateRZ,
				Qubits:      []int{q},
				Param:       ParamGamma,
				Layer:       r,
				Coefficient: m.Bias[q] + m.Q[q][q],
			})
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if m.Q[i][j] == 0 {
					continue
				}
				a.Gates = append(a.Gates, Gate{
					Name:        GateRZZ,
					Qubits:      []int{i, j},
					Param:       ParamGamma,
					Layer:       r,
					Coefficient: 2 * m.Q[i][j],
				})
			}
		}
		for q := 0; q < n; q++ {
			a.Gates = append(a.Gates, Gate{
				Name:        GateRX,
				Qubits:      []int{q},
				Param:       ParamBeta,
				Layer:       r,
				Coefficient: 2,
			})
		}
	}

	// Single-qubit layers execute in one step; two-qubit couplings on
	// adjacent hours serialize.
	a.Depth = 1 + reps*(2+pairs)
	return a, nil
}
