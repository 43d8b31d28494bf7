package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the optimization knobs. Presets live in YAML files; a
// request may override individual fields, merged non-zero-wins.
type Tuning struct {
	WindowSize    int `yaml:"window_size" json:"window_size"`
	Repetitions   int `yaml:"repetitions" json:"repetitions"`
	MaxIterations int `yaml:"max_iterations" json:"max_iterations"`
	Shots         int `yaml:"shots" json:"shots"`
	DecodeShots   int `yaml:"decode_shots" json:"decode_shots"`

	// QUBO penalty structure. The capacity penalty approximates the
	// sequential state-of-charge constraint and is expected to be tuned
	// per deployment.
	SurplusWeight   float64 `yaml:"surplus_weight" json:"surplus_weight"`
	SmoothingWeight float64 `yaml:"smoothing_weight" json:"smoothing_weight"`
	PenaltyWeight   float64 `yaml:"penalty_weight" json:"penalty_weight"`
}

// DefaultTuning is the configuration the original deployment ran with.
func DefaultTuning() Tuning {
	return Tuning{
		WindowSize:      8,
		Repetitions:     2,
		MaxIterations:   50,
		Shots:           1024,
		DecodeShots:     4096,
		SurplusWeight:   0.1,
		SmoothingWeight: 0.05,
		PenaltyWeight:   0.5,
	}
}

type tuningFileWrapper struct {
	Tuning Tuning `yaml:"tuning"`
}

// LoadTuning reads a YAML preset and merges it over the defaults.
func LoadTuning(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, err
	}
	var w tuningFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	t := MergeTuning(DefaultTuning(), w.Tuning)
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return t, nil
}

// MergeTuning overlays non-zero fields from override onto base.
func MergeTuning(base, override Tuning) Tuning {
	out := base
	if override.WindowSize != 0 {
		out.WindowSize = override.WindowSize
	}
	if override.Repetitions != 0 {
		out.Repetitions = override.Repetitions
	}
	if override.MaxIterations != 0 {
		out.MaxIterations = override.MaxIterations
	}
	if override.Shots != 0 {
		out.Shots = override.Shots
	}
	if override.DecodeShots != 0 {
		out.DecodeShots = override.DecodeShots
	}
	if override.SurplusWeight != 0 {
		out.SurplusWeight = override.SurplusWeight
	}
	if override.SmoothingWeight != 0 {
		out.SmoothingWeight = override.SmoothingWeight
	}
	if override.PenaltyWeight != 0 {
		out.PenaltyWeight = override.PenaltyWeight
	}
	return out
}

func (t Tuning) Validate() error {
	if t.WindowSize < 1 || t.WindowSize > 20 {
		return fmt.Errorf("window_size %d out of range [1,20]", t.WindowSize)
	}
	if t.Repetitions < 1 {
		return errors.New("repetitions must be >= 1")
	}
	if t.MaxIterations < 1 {
		return errors.New("max_iterations must be >= 1")
	}
	if t.Shots < 1 || t.DecodeShots < 1 {
		return errors.New("shots and decode_shots must be >= 1")
	}
	if t.SurplusWeight < 0 || t.SmoothingWeight < 0 || t.PenaltyWeight < 0 {
		return errors.New("weights must be >= 0")
	}
	return nil
}
