package model

// Action is a human-friendly battery operating mode for one hour.
// Keep these values stable; they are intended for API and CSV output.
type Action string

const (
	ActionCharge    Action = "CHARGE"
	ActionDischarge Action = "DISCHARGE"
	ActionHold      Action = "HOLD"
)

// ActionFromBit maps a decision bit to an action. Bit 1 means charge,
// bit 0 means discharge; a magnitude that rounds to zero is a hold.
func ActionFromBit(bit int, magnitude float64) Action {
	if magnitude < 0.5 {
		return ActionHold
	}
	if bit == 1 {
		return ActionCharge
	}
	return ActionDischarge
}
