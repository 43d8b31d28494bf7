package model

import "errors"

// CapacityProfile defines the maximum capacities of the region's assets.
// Battery bounds charge/discharge magnitude per hour; it is the only
// capacity the scheduler dispatches against.
type CapacityProfile struct {
	Solar   float64 `json:"solar" yaml:"solar"`
	Wind    float64 `json:"wind" yaml:"wind"`
	Hydro   float64 `json:"hydro" yaml:"hydro"`
	Battery float64 `json:"battery" yaml:"battery"`
}

func (c CapacityProfile) Validate() error {
	if c.Battery <= 0 {
		return errors.New("battery capacity must be > 0")
	}
	if c.Solar < 0 || c.Wind < 0 || c.Hydro < 0 {
		return errors.New("asset capacities must be >= 0")
	}
	return nil
}
