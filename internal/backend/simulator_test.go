package backend

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"quantum-energy-scheduler/internal/circuit"
	"quantum-energy-scheduler/internal/model"
	"quantum-energy-scheduler/internal/qubo"
)

func testAnsatz(t *testing.T) *circuit.Ansatz {
	t.Helper()
	w := make(model.OptimizationWindow, 8)
	for i := range w {
		w[i] = model.HourlyRecord{Hour: "00:00", Total: 1200, Demand: 800}
	}
	m, err := qubo.Encode(w, model.CapacityProfile{Battery: 500}, 8, qubo.DefaultWeights())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	a, err := circuit.Build(m, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return a
}

func zeroParams(reps int) circuit.Parameters {
	return circuit.Parameters{Gamma: make([]float64, reps), Beta: make([]float64, reps)}
}

func TestSimulatorDistributionSumsToOne(t *testing.T) {
	a := testAnsatz(t)
	sim := NewSimulator(42)
	dist, err := sim.Execute(context.Background(), a, circuit.Parameters{Gamma: []float64{0.8, 0.6}, Beta: []float64{0.4, 0.2}}, 2048)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	sum := 0.0
	for bits, p := range dist {
		if len(bits) != 8 {
			t.Fatalf("outcome %q has wrong length", bits)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities sum to %v", sum)
	}
}

func TestSimulatorZeroAnglesGiveSpreadOutcomes(t *testing.T) {
	// With all angles zero only the Hadamard layer acts, so sampling
	// should land on many distinct outcomes, not collapse onto one.
	a := testAnsatz(t)
	sim := NewSimulator(7)
	dist, err := sim.Execute(context.Background(), a, zeroParams(2), 4096)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(dist) < 100 {
		t.Fatalf("uniform superposition sampled only %d distinct outcomes", len(dist))
	}
	for bits, p := range dist {
		if p > 0.05 {
			t.Fatalf("outcome %q has probability %v, expected near-uniform spread", bits, p)
		}
	}
}

func TestSimulatorReproducibleWithSameSeed(t *testing.T) {
	a := testAnsatz(t)
	params := circuit.Parameters{Gamma: []float64{0.8, 0.6}, Beta: []float64{0.4, 0.2}}
	d1, err := NewSimulator(99).Execute(context.Background(), a, params, 1024)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	d2, err := NewSimulator(99).Execute(context.Background(), a, params, 1024)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !reflect.DeepEqual(d1, d2) {
		t.Fatal("same seed produced different distributions")
	}
}

func TestSimulatorRejectsBadInputs(t *testing.T) {
	a := testAnsatz(t)
	sim := NewSimulator(1)
	var execErr *ExecutionError

	if _, err := sim.Execute(context.Background(), a, zeroParams(2), 0); !errors.As(err, &execErr) {
		t.Fatalf("zero shots: expected ExecutionError, got %v", err)
	}
	if _, err := sim.Execute(context.Background(), a, zeroParams(1), 100); !errors.As(err, &execErr) {
		t.Fatalf("layer mismatch: expected ExecutionError, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sim.Execute(ctx, a, zeroParams(2), 100); !errors.As(err, &execErr) {
		t.Fatalf("cancelled ctx: expected ExecutionError, got %v", err)
	}
}

func TestDistributionValidate(t *testing.T) {
	good := Distribution{"00": 0.5, "11": 0.5}
	if err := good.Validate(2); err != nil {
		t.Fatalf("valid distribution rejected: %v", err)
	}
	cases := []Distribution{
		{},                          // empty
		{"00": 0.5, "111": 0.5},     // inconsistent key length
		{"00": 0.9, "11": 0.2},      // sums past tolerance
		{"00": -0.1, "11": 1.1},     // negative mass
		{"00": math.NaN(), "11": 1}, // NaN
	}
	for i, d := range cases {
		if err := d.Validate(2); err == nil {
			t.Fatalf("case %d: malformed distribution accepted", i)
		}
	}
}

func TestFormatBasisIsQubitZeroFirst(t *testing.T) {
	if got := formatBasis(1, 4); got != "1000" {
		t.Fatalf("basis 1 -> %q, want 1000", got)
	}
	if got := formatBasis(8, 4); got != "0001" {
		t.Fatalf("basis 8 -> %q, want 0001", got)
	}
}
