package qubo

import (
	"errors"
	"testing"

	"quantum-energy-scheduler/internal/model"
)

func testWindow(surpluses []float64) model.OptimizationWindow {
	w := make(model.OptimizationWindow, len(surpluses))
	for i, s := range surpluses {
		if s >= 0 {
			w[i] = model.HourlyRecord{Hour: "00:00", Total: s + 1000, Demand: 1000}
		} else {
			w[i] = model.HourlyRecord{Hour: "00:00", Total: 1000, Demand: 1000 - s}
		}
	}
	return w
}

func TestEncodeSymmetric(t *testing.T) {
	cases := [][]float64{
		{500, -200, 4000, -4000, 0, 120, -3600, 90},
		{1, 1, 1, 1, 1, 1, 1, 1},
		{-5000, -5000, -5000, -5000, -5000, -5000, -5000, -5000},
	}
	cap := model.CapacityProfile{Battery: 3500}
	for _, surpluses := range cases {
		m, err := Encode(testWindow(surpluses), cap, 8, DefaultWeights())
		if err != nil {
			t.Fatalf("Encode(%v): %v", surpluses, err)
		}
		for i := 0; i < m.Size; i++ {
			for j := 0; j < m.Size; j++ {
				if m.Q[i][j] != m.Q[j][i] {
					t.Fatalf("Q not symmetric at (%d,%d): %v vs %v", i, j, m.Q[i][j], m.Q[j][i])
				}
			}
		}
	}
}

func TestEncodeRejectsWrongLength(t *testing.T) {
	_, err := Encode(testWindow([]float64{1, 2, 3, 4, 5}), model.CapacityProfile{Battery: 100}, 8, DefaultWeights())
	var winErr *model.InvalidWindowError
	if !errors.As(err, &winErr) {
		t.Fatalf("expected InvalidWindowError, got %v", err)
	}
	if winErr.Length != 5 || winErr.Want != 8 {
		t.Fatalf("error context wrong: %+v", winErr)
	}
}

func TestEncodeRejectsNegativeRecord(t *testing.T) {
	w := testWindow([]float64{1, 2, 3, 4, 5, 6, 7, 8})
	w[3].Demand = -10
	w[3].Hour = "03:00"
	_, err := Encode(w, model.CapacityProfile{Battery: 100}, 8, DefaultWeights())
	var winErr *model.InvalidWindowError
	if !errors.As(err, &winErr) {
		t.Fatalf("expected InvalidWindowError, got %v", err)
	}
	if winErr.Hour != "03:00" {
		t.Fatalf("expected offending hour label, got %+v", winErr)
	}
}

func TestEncodeBiasFavorsChargingSurplus(t *testing.T) {
	m, err := Encode(testWindow([]float64{2000, -2000, 0, 0, 0, 0, 0, 0}), model.CapacityProfile{Battery: 3500}, 8, DefaultWeights())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if m.Bias[0] >= 0 {
		t.Fatalf("surplus hour should favor x=1 (charge), bias=%v", m.Bias[0])
	}
	if m.Bias[1] <= 0 {
		t.Fatalf("deficit hour should favor x=0 (discharge), bias=%v", m.Bias[1])
	}
}

func TestEvaluateMatchesCostOf(t *testing.T) {
	m, err := Encode(testWindow([]float64{100, -100, 100, -100, 100, -100, 100, -100}), model.CapacityProfile{Battery: 500}, 8, DefaultWeights())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	bits := []int{1, 0, 1, 0, 1, 0, 1, 0}
	want := m.Evaluate(bits)
	got, err := m.CostOf("10101010")
	if err != nil {
		t.Fatalf("CostOf: %v", err)
	}
	if got != want {
		t.Fatalf("CostOf=%v, Evaluate=%v", got, want)
	}
	if _, err := m.CostOf("10x01010"); err == nil {
		t.Fatal("non-binary bitstring accepted")
	}
	if _, err := m.CostOf("1010"); err == nil {
		t.Fatal("short bitstring accepted")
	}
}

func TestOffDiagonalTerms(t *testing.T) {
	m, err := Encode(testWindow([]float64{1, 1, 1, 1, 1, 1, 1, 1}), model.CapacityProfile{Battery: 100}, 8, DefaultWeights())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Consecutive-hour couplings only: 7 pairs for 8 hours.
	if got := m.OffDiagonalTerms(); got != 7 {
		t.Fatalf("OffDiagonalTerms=%d, want 7", got)
	}
}
