package models

// OptimizeRequest is the request body for running an optimization.
type OptimizeRequest struct {
	Region   string           `json:"region" binding:"required"`
	Hourly   []HourlyInput    `json:"hourly" binding:"required"`
	Capacity CapacityInput    `json:"capacity" binding:"required"`
	Options  *OptimizeOptions `json:"options,omitempty"`
}

// HourlyInput is one hour of energy data as submitted by the client.
type HourlyInput struct {
	Hour   string  `json:"hour" binding:"required"`
	Solar  float64 `json:"solar"`
	Wind   float64 `json:"wind"`
	Hydro  float64 `json:"hydro"`
	Demand float64 `json:"demand"`
	Total  float64 `json:"total"`
}

// CapacityInput lists the region's asset capacities.
type CapacityInput struct {
	Solar   float64 `json:"solar"`
	Wind    float64 `json:"wind"`
	Hydro   float64 `json:"hydro"`
	Battery float64 `json:"battery" binding:"required"`
}

// OptimizeOptions are optional per-request tuning overrides; zero fields
// keep the server's preset values. Values are clamped to safe bounds.
type OptimizeOptions struct {
	Repetitions   int `json:"repetitions,omitempty"`
	MaxIterations int `json:"max_iterations,omitempty"`
	Shots         int `json:"shots,omitempty"`
}
