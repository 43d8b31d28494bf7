package models

import (
	"math"

	"quantum-energy-scheduler/internal/report"
)

// OptimizeResponse is the response body for a finished optimization.
type OptimizeResponse struct {
	RunID           string                  `json:"runId"`
	Region          string                  `json:"region"`
	Schedule        []ScheduleRow           `json:"schedule"`
	Recommendations []report.Recommendation `json:"recommendations"`
	Metrics         report.Metrics          `json:"metrics"`
	Summary         report.Summary          `json:"summary"`
}

// ScheduleRow is one hour of the schedule, with magnitudes rounded to
// whole power units for display.
type ScheduleRow struct {
	Hour        string `json:"hour"`
	Action      string `json:"action"`
	Amount      int    `json:"amount"`
	Efficiency  int    `json:"efficiency"`
	GridBalance int    `json:"gridBalance"`
	Clipped     bool   `json:"clipped,omitempty"`
}

// NewOptimizeResponse maps a pipeline result onto the wire shape.
func NewOptimizeResponse(runID, region string, res *report.Result) OptimizeResponse {
	rows := make([]ScheduleRow, 0, len(res.Schedule))
	for _, e := range res.Schedule {
		rows = append(rows, ScheduleRow{
			Hour:        e.Hour,
			Action:      string(e.Action),
			Amount:      int(math.Round(e.Magnitude)),
			Efficiency:  e.Efficiency,
			GridBalance: int(math.Round(e.GridBalance)),
			Clipped:     e.Clipped,
		})
	}
	recs := res.Recommendations
	if recs == nil {
		recs = []report.Recommendation{}
	}
	return OptimizeResponse{
		RunID:           runID,
		Region:          region,
		Schedule:        rows,
		Recommendations: recs,
		Metrics:         res.Metrics,
		Summary:         res.Summary,
	}
}

// HealthResponse reports process and backend readiness.
type HealthResponse struct {
	Status       string `json:"status"`
	Backend      string `json:"backend"`
	BackendReady bool   `json:"backendReady"`
}

// InfoResponse is a static projection of the optimizer configuration.
type InfoResponse struct {
	Backend     string `json:"backend"`
	Version     string `json:"version"`
	Algorithm   string `json:"algorithm"`
	Optimizer   string `json:"optimizer"`
	Qubits      int    `json:"qubits"`
	Repetitions int    `json:"reps"`
	Available   bool   `json:"available"`
}

// ErrorResponse wraps every error returned by the API.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable code plus a human-readable message.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
