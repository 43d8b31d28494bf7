package model

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultWindowSize is the number of hours (and qubits) in one
// optimization window.
const DefaultWindowSize = 8

// OptimizationWindow is an ordered sequence of hourly records. Hour index
// maps one-to-one onto qubit index, so order matters.
type OptimizationWindow []HourlyRecord

// NewWindow selects exactly size hours from the input series. Longer
// inputs are truncated to the first size hours. Shorter inputs are padded
// by repeating the last record's profile, which degrades fidelity but
// keeps the fixed-qubit pipeline available for short series.
func NewWindow(records []HourlyRecord, size int) (OptimizationWindow, error) {
	if size < 1 {
		return nil, &InvalidWindowError{Length: len(records), Want: size, Reason: "window size must be >= 1"}
	}
	if len(records) == 0 {
		return nil, &InvalidWindowError{Length: 0, Want: size, Reason: "hourly series is empty"}
	}
	w := make(OptimizationWindow, 0, size)
	for i := 0; i < size && i < len(records); i++ {
		w = append(w, records[i])
	}
	for len(w) < size {
		pad := w[len(w)-1]
		pad.Hour = nextHourLabel(pad.Hour)
		w = append(w, pad)
	}
	return w, nil
}

// Surpluses returns the per-hour net surplus vector.
func (w OptimizationWindow) Surpluses() []float64 {
	out := make([]float64, len(w))
	for i, r := range w {
		out[i] = r.Surplus()
	}
	return out
}

// nextHourLabel advances an "HH:MM" label by one hour, wrapping at
// midnight. Labels in any other shape are reused as-is.
func nextHourLabel(label string) string {
	parts := strings.SplitN(label, ":", 2)
	if len(parts) != 2 {
		return label
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || h < 0 || h > 23 {
		return label
	}
	return fmt.Sprintf("%02d:%s", (h+1)%24, parts[1])
}
