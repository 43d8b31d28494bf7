// Package pipeline runs one optimization request end to end:
// Encoding -> Building -> Optimizing -> Decoding -> Summarizing.
// Every run is stateless and request-scoped; concurrent runs share
// nothing but the injected backend.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quantum-energy-scheduler/internal/backend"
	"quantum-energy-scheduler/internal/circuit"
	"quantum-energy-scheduler/internal/config"
	"quantum-energy-scheduler/internal/decode"
	"quantum-energy-scheduler/internal/logger"
	"quantum-energy-scheduler/internal/model"
	"quantum-energy-scheduler/internal/optimizer"
	"quantum-energy-scheduler/internal/qubo"
	"quantum-energy-scheduler/internal/report"
)

// Stage identifies where in the pipeline a run is, or where it failed.
type Stage string

const (
	StageEncoding    Stage = "encoding"
	StageBuilding    Stage = "building"
	StageOptimizing  Stage = "optimizing"
	StageDecoding    Stage = "decoding"
	StageSummarizing Stage = "summarizing"
)

// StageError marks the stage a run failed in; the underlying typed error
// is preserved for the boundary to map.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Request is one optimization job. Tuning must already be merged and
// validated by the caller.
type Request struct {
	Region   string
	Hourly   []model.HourlyRecord
	Capacity model.CapacityProfile
	Tuning   config.Tuning
}

// Run is a finished pipeline execution.
type Run struct {
	ID     string
	Region string
	Result *report.Result
}

// Engine drives the pipeline against an injected execution backend.
type Engine struct {
	backend backend.Backend
	log     *logger.Logger
}

func New(b backend.Backend, log *logger.Logger) *Engine {
	return &Engine{backend: b, log: log}
}

// initialParameters is the fixed starting point of the search. The
// optimizer perturbs from here; any reasonable non-zero angles work.
func initialParameters(reps int) circuit.Parameters {
	p := circuit.Parameters{Gamma: make([]float64, reps), Beta: make([]float64, reps)}
	for r := 0; r < reps; r++ {
		p.Gamma[r] = 0.8
		p.Beta[r] = 0.4
	}
	return p
}

// Execute runs the full pipeline for one request. Errors are terminal
// for the request; no partial result is ever returned.
func (e *Engine) Execute(ctx context.Context, req Request) (*Run, error) {
	start := time.Now()
	runID := uuid.NewString()
	t := req.Tuning

	e.log.Debugw("encoding problem", "run", runID, "hours", len(req.Hourly), "window", t.WindowSize)
	window, err := model.NewWindow(req.Hourly, t.WindowSize)
	if err != nil {
		return nil, &StageError{Stage: StageEncoding, Err: err}
	}
	weights := qubo.Weights{Surplus: t.SurplusWeight, Smoothing: t.SmoothingWeight, Penalty: t.PenaltyWeight}
	problem, err := qubo.Encode(window, req.Capacity, t.WindowSize, weights)
	if err != nil {
		return nil, &StageError{Stage: StageEncoding, Err: err}
	}

	e.log.Debugw("building ansatz", "run", runID, "reps", t.Repetitions)
	ansatz, err := circuit.Build(problem, t.Repetitions)
	if err != nil {
		return nil, &StageError{Stage: StageBuilding, Err: err}
	}

	e.log.Debugw("optimizing", "run", runID, "max_iterations", t.MaxIterations, "shots", t.Shots)
	evalCost := func(ctx context.Context, p circuit.Parameters) (float64, error) {
		dist, err := e.backend.Execute(ctx, ansatz, p, t.Shots)
		if err != nil {
			return 0, err
		}
		return expectedCost(problem, dist, e.backend.Name())
	}
	opt, err := optimizer.Minimize(ctx, t.Repetitions, initialParameters(t.Repetitions), evalCost, optimizer.Options{
		MaxIterations: t.MaxIterations,
	})
	if err != nil {
		return nil, &StageError{Stage: StageOptimizing, Err: err}
	}

	e.log.Debugw("decoding", "run", runID, "best_cost", opt.BestCost, "iterations", opt.Iterations)
	schedule, sel, err := decode.Schedule(ctx, problem, ansatz, opt.BestParams, e.backend,
		window, req.Capacity, decode.Options{Shots: t.DecodeShots})
	if err != nil {
		return nil, &StageError{Stage: StageDecoding, Err: err}
	}

	result := report.Summarize(ansatz, schedule, window, req.Capacity, report.Trace{
		InitialCost:          opt.InitialCost,
		BestCost:             opt.BestCost,
		Iterations:           opt.Iterations,
		SelectionProbability: sel.Probability,
		ElapsedSeconds:       time.Since(start).Seconds(),
	})

	e.log.Infow("optimization complete",
		"run", runID,
		"region", req.Region,
		"bitstring", sel.Bitstring,
		"best_cost", opt.BestCost,
		"iterations", opt.Iterations,
		"fidelity", result.Metrics.Fidelity,
		"elapsed", time.Since(start),
	)
	return &Run{ID: runID, Region: req.Region, Result: result}, nil
}

// Backend exposes the injected backend for health reporting.
func (e *Engine) Backend() backend.Backend { return e.backend }

// expectedCost is the sampled expectation of the QUBO cost over a
// measurement distribution. A distribution with no decodable outcome is
// malformed.
func expectedCost(m *qubo.Model, dist backend.Distribution, backendName string) (float64, error) {
	cost := 0.0
	mass := 0.0
	for bits, p := range dist {
		c, err := m.CostOf(bits)
		if err != nil {
			continue
		}
		cost += p * c
		mass += p
	}
	if mass == 0 {
		return 0, &backend.ExecutionError{Backend: backendName, Reason: "distribution has no decodable outcomes"}
	}
	return cost / mass, nil
}
