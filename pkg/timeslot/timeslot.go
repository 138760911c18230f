// Package timeslot generates the appointment windows offered to customers
// on the booking page.
//
// Slots are derived purely from the current time: weekday-only, three
// windows per day (morning, afternoon, evening), over a bounded horizon
// starting tomorrow. They are not backed by any external calendar; the
// dispatcher confirms or rejects the customer's preference afterwards.
package timeslot

import (
	"fmt"
	"time"

	"github.com/sempaphie/FSMappointment/models"
)

const (
	// DefaultHorizonDays is how many days ahead slots are offered.
	DefaultHorizonDays = 14

	// MaxHorizonDays caps the horizon; instances are only valid for 30
	// days, so offering slots beyond that window would be misleading.
	MaxHorizonDays = 30
)

// window is one daily slot window in local hours.
type window struct {
	start int
	end   int
}

var dailyWindows = []window{
	{9, 12},  // morning
	{13, 16}, // afternoon
	{16, 19}, // evening
}

// Generate returns the available slots for the default horizon starting
// from now.
func Generate(now time.Time) []models.TimeSlot {
	return GenerateHorizon(now, DefaultHorizonDays)
}

// GenerateHorizon returns available slots for the given number of days,
// clamped to [1, MaxHorizonDays]. Weekends are skipped; slots start
// tomorrow, never today.
func GenerateHorizon(now time.Time, days int) []models.TimeSlot {
	if days < 1 {
		days = 1
	}
	if days > MaxHorizonDays {
		days = MaxHorizonDays
	}

	var slots []models.TimeSlot
	for day := 1; day <= days; day++ {
		date := now.AddDate(0, 0, day)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		for i, w := range dailyWindows {
			start := time.Date(date.Year(), date.Month(), date.Day(), w.start, 0, 0, 0, date.Location())
			end := time.Date(date.Year(), date.Month(), date.Day(), w.end, 0, 0, 0, date.Location())

			slots = append(slots, models.TimeSlot{
				ID:          fmt.Sprintf("slot_%d_%d", day, i),
				StartTime:   start,
				EndTime:     end,
				IsAvailable: true,
			})
		}
	}
	return slots
}
