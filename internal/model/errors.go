package model

import "fmt"

// InvalidWindowError reports an optimization window that cannot be
// encoded: wrong length, empty input, or a record with negative values.
type InvalidWindowError struct {
	Length int
	Want   int
	Hour   string // hour label of the offending record, when applicable
	Reason string
}

func (e *InvalidWindowError) Error() string {
	if e.Hour != "" {
		return fmt.Sprintf("invalid window: hour %s: %s", e.Hour, e.Reason)
	}
	if e.Reason != "" {
		return fmt.Sprintf("invalid window: %s (got %d hours, want %d)", e.Reason, e.Length, e.Want)
	}
	return fmt.Sprintf("invalid window: got %d hours, want %d", e.Length, e.Want)
}
