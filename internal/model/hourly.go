package model

// HourlyRecord is one hour of regional energy data.
// Units are power (kW or MW), consistent within a request.
type HourlyRecord struct {
	Hour   string  `json:"hour" yaml:"hour"`
	Solar  float64 `json:"solar" yaml:"solar"`
	Wind   float64 `json:"wind" yaml:"wind"`
	Hydro  float64 `json:"hydro" yaml:"hydro"`
	Demand float64 `json:"demand" yaml:"demand"`
	Total  float64 `json:"total" yaml:"total"`
}

// Production returns total renewable production for the hour.
// The explicit total wins when provided; otherwise sum the sources.
func (r HourlyRecord) Production() float64 {
	if r.Total > 0 {
		return r.Total
	}
	return r.Solar + r.Wind + r.Hydro
}

// Surplus is production minus demand. Positive means excess renewables,
// negative means a deficit that storage or imports must cover.
func (r HourlyRecord) Surplus() float64 {
	return r.Production() - r.Demand
}

// Valid reports whether all numeric fields are non-negative.
func (r HourlyRecord) Valid() bool {
	return r.Solar >= 0 && r.Wind >= 0 && r.Hydro >= 0 && r.Demand >= 0 && r.Total >= 0
}
