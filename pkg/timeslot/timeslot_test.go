package timeslot

import (
	"testing"
	"time"
)

func TestGenerateSkipsWeekends(t *testing.T) {
	// A Monday, so the 14-day horizon spans two full weekends.
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	slots := Generate(now)
	if len(slots) == 0 {
		t.Fatal("expected slots, got none")
	}

	for _, s := range slots {
		if wd := s.StartTime.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("slot %s falls on %s", s.ID, wd)
		}
		if !s.IsAvailable {
			t.Errorf("slot %s not marked available", s.ID)
		}
		if !s.EndTime.After(s.StartTime) {
			t.Errorf("slot %s has end before start", s.ID)
		}
	}

	// 14 days from a Monday = 10 weekdays, 3 windows each.
	if want := 10 * 3; len(slots) != want {
		t.Errorf("got %d slots, want %d", len(slots), want)
	}
}

func TestGenerateStartsTomorrow(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	for _, s := range GenerateHorizon(now, 5) {
		if !s.StartTime.After(now) {
			t.Errorf("slot %s starts at %s, before now", s.ID, s.StartTime)
		}
		if s.StartTime.Day() == now.Day() && s.StartTime.Month() == now.Month() {
			t.Errorf("slot %s offered for today", s.ID)
		}
	}
}

func TestGenerateHorizonClamped(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	long := GenerateHorizon(now, 90)
	max := GenerateHorizon(now, MaxHorizonDays)
	if len(long) != len(max) {
		t.Errorf("horizon not clamped: %d slots vs %d", len(long), len(max))
	}

	short := GenerateHorizon(now, 0)
	if len(short) > 3 {
		t.Errorf("zero horizon produced %d slots", len(short))
	}

	// Distinct IDs throughout.
	seen := make(map[string]bool)
	for _, s := range max {
		if seen[s.ID] {
			t.Errorf("duplicate slot id %s", s.ID)
		}
		seen[s.ID] = true
	}
}
