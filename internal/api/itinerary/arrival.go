package itinerary

import (
	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

const (
	arrivalBuffer   = 120
	departureBuffer = 180
)

// AdjustFirstDay drops day-one events the traveller cannot make after landing.
// An event survives when its slot window ends after arrival plus a two hour
// buffer, so a 15:20 landing still keeps the afternoon slot (open until
// 18:00) while 16:01 drops it. If only some events survive an arrival event
// is prepended; if none do, the day becomes a single rest notice. An empty or
// unparsable arrival returns the schedule unchanged.
func AdjustFirstDay(schedule []types.ScheduleDay, arrival string) []types.ScheduleDay {
	out := types.CloneSchedule(schedule)
	arrivedAt, ok := parseClock(arrival)
	if !ok || len(out) == 0 || len(out[0].Events) == 0 {
		return out
	}
	threshold := arrivedAt + arrivalBuffer

	events := out[0].Events
	kept := make([]types.ScheduleEvent, 0, len(events))
	for _, e := range events {
		slot := eventSlot(e)
		if slot == "" || windowEnd(slot) > threshold {
			kept = append(kept, e)
		}
	}

	switch {
	case len(kept) == 0:
		out[0].Events = []types.ScheduleEvent{{
			TimeSlot:    formatClock(arrivedAt),
			Slot:        slotForMinutes(arrivedAt),
			Kind:        types.KindNotice,
			Description: "Rest after a late arrival",
			Icon:        "home",
		}}
	case len(kept) < len(events):
		arrivalEvent := types.ScheduleEvent{
			TimeSlot:    formatClock(arrivedAt),
			Slot:        slotForMinutes(arrivedAt),
			Kind:        types.KindArrival,
			Description: "Arrive at the airport and transfer to the lodging",
			Icon:        "plane",
		}
		out[0].Events = append([]types.ScheduleEvent{arrivalEvent}, kept...)
	}
	return out
}

// AdjustLastDay keeps last-day events whose slot starts at least three hours
// before departure and appends the trip to the airport. An empty or
// unparsable departure returns the schedule unchanged.
func AdjustLastDay(schedule []types.ScheduleDay, departure string) []types.ScheduleDay {
	out := types.CloneSchedule(schedule)
	departsAt, ok := parseClock(departure)
	if !ok || len(out) == 0 {
		return out
	}
	cutoff := departsAt - departureBuffer

	last := &out[len(out)-1]
	kept := make([]types.ScheduleEvent, 0, len(last.Events)+1)
	for _, e := range last.Events {
		slot := eventSlot(e)
		if slot == "" || slotStart[slot] < cutoff {
			kept = append(kept, e)
		}
	}
	kept = append(kept, types.ScheduleEvent{
		TimeSlot:    formatClock(max(cutoff, 0)),
		Slot:        slotForMinutes(cutoff),
		Kind:        types.KindTransit,
		Description: "Head to the airport",
		Icon:        "plane",
	})
	last.Events = kept
	return out
}
