package pipeline

import (
	"context"
	"errors"
	"testing"

	"quantum-energy-scheduler/internal/backend"
	"quantum-energy-scheduler/internal/circuit"
	"quantum-energy-scheduler/internal/config"
	"quantum-energy-scheduler/internal/logger"
	"quantum-energy-scheduler/internal/model"
	"quantum-energy-scheduler/internal/optimizer"
)

// stubBackend returns a fixed distribution, optionally failing the first
// failures calls.
type stubBackend struct {
	dist     backend.Distribution
	failures int
	calls    int
}

func (s *stubBackend) Name() string                    { return "stub" }
func (s *stubBackend) Ready(ctx context.Context) bool  { return true }
func (s *stubBackend) Execute(ctx context.Context, a *circuit.Ansatz, p circuit.Parameters, shots int) (backend.Distribution, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, &backend.ExecutionError{Backend: s.Name(), Reason: "transient fault"}
	}
	return s.dist, nil
}

func surplusHours(surpluses ...float64) []model.HourlyRecord {
	out := make([]model.HourlyRecord, len(surpluses))
	for i, s := range surpluses {
		if s >= 0 {
			out[i] = model.HourlyRecord{Hour: "00:00", Total: 1000 + s, Demand: 1000}
		} else {
			out[i] = model.HourlyRecord{Hour: "00:00", Total: 1000, Demand: 1000 - s}
		}
	}
	return out
}

func testRequest(hourly []model.HourlyRecord, battery float64) Request {
	return Request{
		Region:   "north",
		Hourly:   hourly,
		Capacity: model.CapacityProfile{Battery: battery},
		Tuning:   config.DefaultTuning(),
	}
}

func TestExecuteAllSurplusChargesEveryHour(t *testing.T) {
	// Scenario: every hour has surplus and the QUBO minimum is all-ones.
	// The decoded schedule should charge each hour up to capacity.
	b := &stubBackend{dist: backend.Distribution{
		"11111111": 0.9,
		"00000000": 0.1,
	}}
	e := New(b, logger.NewNop())

	hourly := surplusHours(2000, 2000, 2000, 2000, 2000, 4000, 2000, 2000)
	run, err := e.Execute(context.Background(), testRequest(hourly, 3500))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	res := run.Result
	if len(res.Schedule) != 8 {
		t.Fatalf("schedule has %d entries, want 8", len(res.Schedule))
	}
	for i, entry := range res.Schedule {
		if entry.Action != model.ActionCharge {
			t.Fatalf("hour %d action %s, want CHARGE", i, entry.Action)
		}
		if entry.Magnitude > 3500 {
			t.Fatalf("hour %d magnitude %v exceeds battery capacity", i, entry.Magnitude)
		}
	}
	// Hour 5's 4000 surplus is clipped to capacity.
	if !res.Schedule[5].Clipped || res.Schedule[5].Magnitude != 3500 {
		t.Fatalf("hour 5 = %+v, want clipped charge of 3500", res.Schedule[5])
	}
	if res.Summary.Efficiency <= 85 {
		t.Fatalf("efficiency %d should beat the no-battery baseline of 85", res.Summary.Efficiency)
	}
	if res.Summary.TotalOptimization <= 0 {
		t.Fatalf("expected positive optimization, got %d", res.Summary.TotalOptimization)
	}
	if run.ID == "" || run.Region != "north" {
		t.Fatalf("run identity missing: %+v", run)
	}
}

func TestExecuteAllDeficitHoldsWithoutPriorCharge(t *testing.T) {
	// Scenario: demand exceeds production every hour. With the battery
	// starting empty there is nothing to discharge, so every hour decays
	// to a hold and no saving is claimed.
	b := &stubBackend{dist: backend.Distribution{"00000000": 1.0}}
	e := New(b, logger.NewNop())

	hourly := surplusHours(-2000, -2000, -2000, -2000, -2000, -2000, -2000, -2000)
	run, err := e.Execute(context.Background(), testRequest(hourly, 3500))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for i, entry := range run.Result.Schedule {
		if entry.Action != model.ActionHold {
			t.Fatalf("hour %d action %s, want HOLD on empty battery", i, entry.Action)
		}
	}
	if run.Result.Summary.CostSaving != 0 {
		t.Fatalf("costSaving %d, want 0 without prior charge", run.Result.Summary.CostSaving)
	}
}

func TestExecuteMixedWindowDischargesAfterCharging(t *testing.T) {
	// Surplus mornings charge the battery; deficit evenings draw it down.
	b := &stubBackend{dist: backend.Distribution{"11110000": 1.0}}
	e := New(b, logger.NewNop())

	hourly := surplusHours(1000, 1000, 1000, 1000, -800, -800, -800, -800)
	run, err := e.Execute(context.Background(), testRequest(hourly, 3500))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	sched := run.Result.Schedule
	for i := 0; i < 4; i++ {
		if sched[i].Action != model.ActionCharge {
			t.Fatalf("hour %d action %s, want CHARGE", i, sched[i].Action)
		}
	}
	// 3500 of charge accumulated (capped); evenings discharge until dry.
	if sched[4].Action != model.ActionDischarge || sched[4].Magnitude != 800 {
		t.Fatalf("hour 4 = %+v, want discharge of 800", sched[4])
	}
	if run.Result.Summary.CostSaving <= 0 {
		t.Fatalf("costSaving %d, want > 0 with realized discharge", run.Result.Summary.CostSaving)
	}
}

func TestExecutePadsShortWindow(t *testing.T) {
	b := &stubBackend{dist: backend.Distribution{"11111111": 1.0}}
	e := New(b, logger.NewNop())

	hourly := surplusHours(500, 500, 500, 500, 500)
	run, err := e.Execute(context.Background(), testRequest(hourly, 3500))
	if err != nil {
		t.Fatalf("short window should be padded, got %v", err)
	}
	if len(run.Result.Schedule) != 8 {
		t.Fatalf("padded schedule has %d entries, want 8", len(run.Result.Schedule))
	}
}

func TestExecuteEmptyWindowFailsInEncoding(t *testing.T) {
	b := &stubBackend{dist: backend.Distribution{"11111111": 1.0}}
	e := New(b, logger.NewNop())

	_, err := e.Execute(context.Background(), testRequest(nil, 3500))
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageEncoding {
		t.Fatalf("expected encoding StageError, got %v", err)
	}
	var winErr *model.InvalidWindowError
	if !errors.As(err, &winErr) {
		t.Fatalf("expected InvalidWindowError inside, got %v", err)
	}
}

func TestExecuteNegativeRecordFailsInEncoding(t *testing.T) {
	b := &stubBackend{dist: backend.Distribution{"11111111": 1.0}}
	e := New(b, logger.NewNop())

	hourly := surplusHours(500, 500, 500, 500, 500, 500, 500, 500)
	hourly[2].Demand = -5
	_, err := e.Execute(context.Background(), testRequest(hourly, 3500))
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageEncoding {
		t.Fatalf("expected encoding StageError, got %v", err)
	}
}

func TestExecuteSurvivesTransientBackendFailures(t *testing.T) {
	// The backend fails its first two calls and then recovers; the
	// optimizer's retry keeps the run alive.
	b := &stubBackend{
		dist:     backend.Distribution{"11111111": 1.0},
		failures: 2,
	}
	e := New(b, logger.NewNop())

	hourly := surplusHours(500, 500, 500, 500, 500, 500, 500, 500)
	run, err := e.Execute(context.Background(), testRequest(hourly, 3500))
	if err != nil {
		t.Fatalf("transient failures should not fail the run: %v", err)
	}
	if len(run.Result.Schedule) != 8 {
		t.Fatalf("schedule has %d entries, want 8", len(run.Result.Schedule))
	}
}

func TestExecuteFailsWhenBackendNeverRecovers(t *testing.T) {
	b := &stubBackend{
		dist:     backend.Distribution{"11111111": 1.0},
		failures: 1 << 30,
	}
	e := New(b, logger.NewNop())

	hourly := surplusHours(500, 500, 500, 500, 500, 500, 500, 500)
	_, err := e.Execute(context.Background(), testRequest(hourly, 3500))
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageOptimizing {
		t.Fatalf("expected optimizing StageError, got %v", err)
	}
	var failed *optimizer.FailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected optimizer.FailedError inside, got %v", err)
	}
}

func TestExecuteWithSimulatorBackend(t *testing.T) {
	// Full pipeline against the real state-vector simulator; assert the
	// structural invariants rather than a specific bitstring.
	tn := config.DefaultTuning()
	tn.Shots = 256
	tn.DecodeShots = 1024
	tn.MaxIterations = 12

	e := New(backend.NewSimulator(7), logger.NewNop())
	req := testRequest(surplusHours(500, -200, 4000, -4000, 0, 120, -3600, 90), 3500)
	req.Tuning = tn

	run, err := e.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	res := run.Result
	if len(res.Schedule) != 8 {
		t.Fatalf("schedule has %d entries, want 8", len(res.Schedule))
	}
	for i, entry := range res.Schedule {
		if entry.Magnitude < 0 || entry.Magnitude > 3500 {
			t.Fatalf("hour %d magnitude %v violates capacity bounds", i, entry.Magnitude)
		}
		switch entry.Action {
		case model.ActionCharge, model.ActionDischarge, model.ActionHold:
		default:
			t.Fatalf("hour %d has unknown action %q", i, entry.Action)
		}
	}
	if res.Metrics.Qubits != 8 {
		t.Fatalf("metrics.qubits = %d, want 8", res.Metrics.Qubits)
	}
	if res.Metrics.Iterations > tn.MaxIterations {
		t.Fatalf("iterations %d exceed budget %d", res.Metrics.Iterations, tn.MaxIterations)
	}
	if res.Metrics.Fidelity < 0 || res.Metrics.Fidelity > 1 {
		t.Fatalf("fidelity %v outside [0,1]", res.Metrics.Fidelity)
	}
}
