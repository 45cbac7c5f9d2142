package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

const minutesPerDay = 24 * 60

// slotStart is the nominal start of each slot in minutes since midnight. A
// slot's window runs until the next slot starts; night runs to midnight.
var slotStart = map[types.Slot]int{
	types.SlotMorning:   9 * 60,
	types.SlotLunch:     12 * 60,
	types.SlotAfternoon: 14 * 60,
	types.SlotEvening:   18 * 60,
	types.SlotNight:     20 * 60,
}

var slotOrder = []types.Slot{
	types.SlotMorning,
	types.SlotLunch,
	types.SlotAfternoon,
	types.SlotEvening,
	types.SlotNight,
}

func validSlot(s types.Slot) bool {
	_, ok := slotStart[s]
	return ok
}

func windowEnd(s types.Slot) int {
	for i, slot := range slotOrder {
		if slot == s && i+1 < len(slotOrder) {
			return slotStart[slotOrder[i+1]]
		}
	}
	return minutesPerDay
}

// slotForMinutes returns the latest slot starting at or before m. Times before
// the first slot belong to the morning.
func slotForMinutes(m int) types.Slot {
	slot := types.SlotMorning
	for _, s := range slotOrder {
		if slotStart[s] <= m {
			slot = s
		}
	}
	return slot
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseClock reads the wall-clock part of a time or timestamp and returns
// minutes since midnight. Offsets in RFC 3339 values are ignored; upstream
// timestamps are already local to the airport.
func parseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

func formatClock(m int) string {
	if m < 0 {
		m = 0
	}
	m %= minutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// eventSlot is the slot used for time arithmetic. It trusts the structured
// field and only falls back to the clock for events built by hand.
func eventSlot(e types.ScheduleEvent) types.Slot {
	if validSlot(e.Slot) {
		return e.Slot
	}
	if m, ok := parseClock(e.TimeSlot); ok {
		return slotForMinutes(m)
	}
	return ""
}
