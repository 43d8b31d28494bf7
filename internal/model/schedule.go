package model

// ScheduleEntry is the dispatch decision for one hour. Entries are
// created once by the decoder and never mutated afterwards.
type ScheduleEntry struct {
	Hour        string  `json:"hour"`
	Action      Action  `json:"action"`
	Magnitude   float64 `json:"magnitude"`
	GridBalance float64 `json:"gridBalance"`
	Efficiency  int     `json:"efficiency"`
	// Clipped records that the requested magnitude exceeded what the
	// battery could absorb or supply and was bounded, not re-decided.
	Clipped bool `json:"clipped"`
}
