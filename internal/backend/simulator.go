package backend

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"sync"

	"quantum-energy-scheduler/internal/circuit"
)

// maxSimQubits caps the state vector at 2^20 amplitudes.
const maxSimQubits = 20

// Simulator is a dense state-vector backend. Each Execute builds the
// full 2^n state, applies the ansatz gate by gate, and samples shots
// measurements with a seeded generator, so runs are reproducible for a
// given seed and call sequence.
type Simulator struct {
	seed int64

	mu    sync.Mutex
	calls int64
}

func NewSimulator(seed int64) *Simulator {
	return &Simulator{seed: seed}
}

func (s *Simulator) Name() string { return "statevector-simulator" }

func (s *Simulator) Ready(ctx context.Context) bool { return true }

func (s *Simulator) Execute(ctx context.Context, a *circuit.Ansatz, params circuit.Parameters, shots int) (Distribution, error) {
	if a == nil || a.Qubits < 1 {
		return nil, &ExecutionError{Backend: s.Name(), Reason: "ansatz is empty"}
	}
	if a.Qubits > maxSimQubits {
		return nil, &ExecutionError{Backend: s.Name(), Reason: fmt.Sprintf("%d qubits exceeds simulator limit %d", a.Qubits, maxSimQubits)}
	}
	if shots < 1 {
		return nil, &ExecutionError{Backend: s.Name(), Reason: fmt.Sprintf("shots must be >= 1, got %d", shots)}
	}
	if len(params.Gamma) != a.Reps || len(params.Beta) != a.Reps {
		return nil, &ExecutionError{Backend: s.Name(), Reason: fmt.Sprintf("parameters carry %d/%d layers, ansatz has %d", len(params.Gamma), len(params.Beta), a.Reps)}
	}
	if err := ctx.Err(); err != nil {
		return nil, &ExecutionError{Backend: s.Name(), Reason: "execution cancelled", Err: err}
	}

	state := make([]complex128, 1<<a.Qubits)
	state[0] = 1

	for _, g := range a.Gates {
		theta, err := gateAngle(g, params)
		if err != nil {
			return nil, &ExecutionError{Backend: s.Name(), Reason: "cannot bind parameters", Err: err}
		}
		switch g.Name {
		case circuit.GateH:
			applyH(state, g.Qubits[0])
		case circuit.GateRX:
			applyRX(state, g.Qubits[0], theta)
		case circuit.GateRZ:
			applyRZ(state, g.Qubits[0], theta)
		case circuit.GateRZZ:
			applyRZZ(state, g.Qubits[0], g.Qubits[1], theta)
		default:
			return nil, &ExecutionError{Backend: s.Name(), Reason: fmt.Sprintf("unsupported gate %q", g.Name)}
		}
	}

	counts := s.sample(state, a.Qubits, shots)
	dist := make(Distribution, len(counts))
	for bits, n := range counts {
		dist[bits] = float64(n) / float64(shots)
	}
	if err := dist.Validate(a.Qubits); err != nil {
		return nil, &ExecutionError{Backend: s.Name(), Reason: "malformed distribution", Err: err}
	}
	return dist, nil
}

func gateAngle(g circuit.Gate, params circuit.Parameters) (float64, error) {
	switch g.Param {
	case "":
		return 0, nil
	case circuit.ParamGamma:
		if g.Layer < 0 || g.Layer >= len(params.Gamma) {
			return 0, fmt.Errorf("gamma layer %d out of range", g.Layer)
		}
		return g.Coefficient * params.Gamma[g.Layer], nil
	case circuit.ParamBeta:
		if g.Layer < 0 || g.Layer >= len(params.Beta) {
			return 0, fmt.Errorf("beta layer %d out of range", g.Layer)
		}
		return g.Coefficient * params.Beta[g.Layer], nil
	default:
		return 0, fmt.Errorf("unknown parameter family %q", g.Param)
	}
}

// sample draws shots measurements from |state|^2. The generator is
// derived from the simulator seed plus a call counter so concurrent
// requests stay reproducible per backend instance.
func (s *Simulator) sample(state []complex128, qubits, shots int) map[string]int {
	s.mu.Lock()
	rng := rand.New(rand.NewSource(s.seed + s.calls))
	s.calls++
	s.mu.Unlock()

	probs := make([]float64, len(state))
	total := 0.0
	for i, amp := range state {
		p := real(amp)*real(amp) + imag(amp)*imag(amp)
		probs[i] = p
		total += p
	}

	counts := make(map[string]int)
	for shot := 0; shot < shots; shot++ {
		r := rng.Float64() * total
		acc := 0.0
		idx := len(probs) - 1
		for i, p := range probs {
			acc += p
			if r < acc {
				idx = i
				break
			}
		}
		counts[formatBasis(idx, qubits)]++
	}
	return counts
}

// formatBasis renders a basis-state index as a bitstring, qubit 0 first.
func formatBasis(basis, qubits int) string {
	b := make([]byte, qubits)
	for q := 0; q < qubits; q++ {
		b[q] = byte('0' + ((basis >> q) & 1))
	}
	return string(b)
}

func applyH(state []complex128, q int) {
	inv := complex(1/math.Sqrt2, 0)
	mask := 1 << q
	for i := range state {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		a, b := state[i], state[j]
		state[i] = (a + b) * inv
		state[j] = (a - b) * inv
	}
}

func applyRX(state []complex128, q int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	mask := 1 << q
	for i := range state {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		a, b := state[i], state[j]
		state[i] = c*a + s*b
		state[j] = s*a + c*b
	}
}

func applyRZ(state []complex128, q int, theta float64) {
	lo := cmplx.Exp(complex(0, -theta/2))
	hi := cmplx.Exp(complex(0, theta/2))
	mask := 1 << q
	for i := range state {
		if i&mask == 0 {
			state[i] *= lo
		} else {
			state[i] *= hi
		}
	}
}

func applyRZZ(state []complex128, q1, q2 int, theta float64) {
	even := cmplx.Exp(complex(0, -theta/2))
	odd := cmplx.Exp(complex(0, theta/2))
	m1, m2 := 1<<q1, 1<<q2
	for i := range state {
		if ((i&m1 != 0) && (i&m2 != 0)) || ((i&m1 == 0) && (i&m2 == 0)) {
			state[i] *= even
		} else {
			state[i] *= odd
		}
	}
}
