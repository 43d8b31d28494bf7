// Package report derives circuit statistics, a solution-quality score,
// human-facing recommendations, and a cost/carbon/efficiency summary
// from a finished optimization run. Pure aggregation; no external calls.
package report

import (
	"fmt"
	"math"

	"quantum-energy-scheduler/internal/circuit"
	"quantum-energy-scheduler/internal/model"
)

// Trace carries the optimizer-loop facts the synthesizer needs.
type Trace struct {
	InitialCost float64
	BestCost    float64
	Iterations  int
	// SelectionProbability is the measurement mass on the decoded
	// bitstring from the final sampling pass.
	SelectionProbability float64
	// ElapsedSeconds is wall-clock time of the whole pipeline.
	ElapsedSeconds float64
}

// Metrics are the circuit and execution statistics of one run.
type Metrics struct {
	Qubits        int     `json:"qubits"`
	Gates         int     `json:"gates"`
	Depth         int     `json:"depth"`
	ExecutionTime float64 `json:"executionTime"`
	Fidelity      float64 `json:"fidelity"`
	Optimization  string  `json:"optimization"`
	Iterations    int     `json:"iterations"`
}

// Summary compares the realized schedule against the no-battery
// baseline.
type Summary struct {
	TotalOptimization int `json:"totalOptimization"`
	CostSaving        int `json:"costSaving"`
	CarbonReduction   int `json:"carbonReduction"`
	Efficiency        int `json:"efficiency"`
}

// Recommendation is a templated, deterministic advisory derived from the
// schedule; no free-form generation.
type Recommendation struct {
	Time    string `json:"time"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Result is the aggregate returned to the caller and then discarded;
// nothing is retained across requests.
type Result struct {
	Schedule        []model.ScheduleEntry `json:"schedule"`
	Recommendations []Recommendation      `json:"recommendations"`
	Metrics         Metrics               `json:"metrics"`
	Summary         Summary               `json:"summary"`
}

// Per-unit factors for the summary, calibrated against the original
// deployment's reporting scale.
const (
	costSavingPerPoint      = 800
	carbonReductionPerPoint = 30
	baseEfficiency          = 85
	maxEfficiency           = 95
)

// recommendationHours caps how many leading schedule hours produce
// advisories.
const recommendationHours = 5

// Summarize assembles the final result for one run.
func Summarize(a *circuit.Ansatz, schedule []model.ScheduleEntry, window model.OptimizationWindow,
	capacity model.CapacityProfile, trace Trace) *Result {

	improvement := improvementPercent(schedule, window)

	return &Result{
		Schedule:        schedule,
		Recommendations: recommendations(schedule, capacity),
		Metrics: Metrics{
			Qubits:        a.Qubits,
			Gates:         len(a.Gates),
			Depth:         a.Depth,
			ExecutionTime: math.Round(trace.ElapsedSeconds*100) / 100,
			Fidelity:      fidelity(trace),
			Optimization:  "QAOA",
			Iterations:    trace.Iterations,
		},
		Summary: Summary{
			TotalOptimization: improvement,
			CostSaving:        improvement * costSavingPerPoint,
			CarbonReduction:   improvement * carbonReductionPerPoint,
			Efficiency:        minInt(maxEfficiency, baseEfficiency+improvement/5),
		},
	}
}

// fidelity is a heuristic solution-quality score, not a physical
// quantum-state fidelity: half optimizer convergence (cost improvement
// ratio), half measurement concentration on the chosen bitstring,
// clamped to [0,1].
func fidelity(trace Trace) float64 {
	convergence := 0.0
	if !math.IsInf(trace.InitialCost, 0) && !math.IsInf(trace.BestCost, 0) && trace.InitialCost != 0 {
		convergence = (trace.InitialCost - trace.BestCost) / math.Abs(trace.InitialCost)
	}
	score := 0.5*clamp01(convergence) + 0.5*clamp01(trace.SelectionProbability)
	return math.Round(score*1000) / 1000
}

// improvementPercent measures how much of the baseline grid imbalance
// the schedule removes. Baseline = no battery use at all.
func improvementPercent(schedule []model.ScheduleEntry, window model.OptimizationWindow) int {
	before := 0.0
	after := 0.0
	for i, r := range window {
		s := r.Surplus()
		before += math.Abs(s)
		residual := s
		if i < len(schedule) {
			switch schedule[i].Action {
			case model.ActionCharge:
				residual = s - schedule[i].Magnitude
			case model.ActionDischarge:
				residual = s + schedule[i].Magnitude
			}
		}
		after += math.Abs(residual)
	}
	if before == 0 {
		return 0
	}
	pct := int(math.Round((1 - after/before) * 100))
	if pct < 0 {
		return 0
	}
	return pct
}

func recommendations(schedule []model.ScheduleEntry, capacity model.CapacityProfile) []Recommendation {
	recs := make([]Recommendation, 0, recommendationHours)
	threshold := capacity.Battery * 0.5
	for i, e := range schedule {
		if i >= recommendationHours {
			break
		}
		if math.Abs(e.GridBalance) <= threshold {
			continue
		}
		if e.GridBalance > 0 {
			recs = append(recs, Recommendation{
				Time: e.Hour,
				Type: "excess",
				Message: fmt.Sprintf("High renewable output detected. Optimization suggests charging storage with %d or exporting to grid.",
					int(e.Magnitude*0.8)),
			})
		} else {
			recs = append(recs, Recommendation{
				Time: e.Hour,
				Type: "deficit",
				Message: fmt.Sprintf("Demand exceeds supply. Optimization recommends discharging %d from storage or importing from grid.",
					int(e.Magnitude*0.9)),
			})
		}
	}
	return recs
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
