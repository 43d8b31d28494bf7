package model

import (
	"errors"
	"testing"
)

func hour(label string, total, demand float64) HourlyRecord {
	return HourlyRecord{Hour: label, Total: total, Demand: demand}
}

func TestNewWindowTruncatesLongInput(t *testing.T) {
	records := make([]HourlyRecord, 12)
	for i := range records {
		records[i] = hour("00:00", float64(i+1), 0)
	}
	w, err := NewWindow(records, 8)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	if len(w) != 8 {
		t.Fatalf("expected 8 hours, got %d", len(w))
	}
	if w[7].Total != 8 {
		t.Fatalf("expected first 8 records kept, got total=%v at index 7", w[7].Total)
	}
}

func TestNewWindowPadsShortInput(t *testing.T) {
	records := []HourlyRecord{
		hour("10:00", 100, 50),
		hour("11:00", 120, 60),
		hour("12:00", 140, 70),
		hour("13:00", 160, 80),
		hour("14:00", 180, 90),
	}
	w, err := NewWindow(records, 8)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	if len(w) != 8 {
		t.Fatalf("expected padding to 8 hours, got %d", len(w))
	}
	// Padded hours repeat the last record's surplus profile.
	for i := 5; i < 8; i++ {
		if w[i].Surplus() != records[4].Surplus() {
			t.Fatalf("hour %d: surplus %v, want %v", i, w[i].Surplus(), records[4].Surplus())
		}
	}
	// Labels keep advancing.
	want := []string{"15:00", "16:00", "17:00"}
	for i, label := range want {
		if w[5+i].Hour != label {
			t.Fatalf("padded hour %d label = %q, want %q", 5+i, w[5+i].Hour, label)
		}
	}
}

func TestNewWindowEmptyInput(t *testing.T) {
	_, err := NewWindow(nil, 8)
	var winErr *InvalidWindowError
	if !errors.As(err, &winErr) {
		t.Fatalf("expected InvalidWindowError, got %v", err)
	}
}

func TestNextHourLabelWrapsAndFallsBack(t *testing.T) {
	if got := nextHourLabel("23:00"); got != "00:00" {
		t.Fatalf("23:00 -> %q, want 00:00", got)
	}
	if got := nextHourLabel("evening"); got != "evening" {
		t.Fatalf("non-clock label should be reused, got %q", got)
	}
}

func TestCapacityProfileValidate(t *testing.T) {
	if err := (CapacityProfile{Battery: 3500}).Validate(); err != nil {
		t.Fatalf("valid profile rejected: %v", err)
	}
	if err := (CapacityProfile{Battery: 0}).Validate(); err == nil {
		t.Fatal("zero battery capacity accepted")
	}
	if err := (CapacityProfile{Battery: 100, Wind: -1}).Validate(); err == nil {
		t.Fatal("negative wind capacity accepted")
	}
}

func TestActionFromBit(t *testing.T) {
	if got := ActionFromBit(1, 200); got != ActionCharge {
		t.Fatalf("bit 1 -> %s, want CHARGE", got)
	}
	if got := ActionFromBit(0, 200); got != ActionDischarge {
		t.Fatalf("bit 0 -> %s, want DISCHARGE", got)
	}
	if got := ActionFromBit(1, 0.2); got != ActionHold {
		t.Fatalf("near-zero magnitude -> %s, want HOLD", got)
	}
}
