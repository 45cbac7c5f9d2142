package types

// Slot is the part of the day an event belongs to. It is fixed at synthesis
// time and read, never re-derived, by enrichment and arrival adjustment.
type Slot string

const (
	SlotMorning   Slot = "morning"
	SlotLunch     Slot = "lunch"
	SlotAfternoon Slot = "afternoon"
	SlotEvening   Slot = "evening"
	SlotNight     Slot = "night"
)

// EventKind says what an event is for, which decides how POIs get bound.
type EventKind string

const (
	KindActivity EventKind = "activity"
	KindMeal     EventKind = "meal"
	KindTransit  EventKind = "transit"
	KindArrival  EventKind = "arrival"
	KindNotice   EventKind = "notice"
)

// Bindable reports whether enrichment may attach a POI to events of this kind.
func (k EventKind) Bindable() bool {
	return k == KindActivity || k == KindMeal
}

type ScheduleEvent struct {
	TimeSlot    string    `json:"time_slot"`
	Slot        Slot      `json:"slot"`
	Kind        EventKind `json:"kind"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	PlaceName   *string   `json:"place_name,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
}

type ScheduleDay struct {
	Day    int             `json:"day"`
	Date   string          `json:"date"`
	Events []ScheduleEvent `json:"events"`
}

// CloneSchedule deep-copies days and their event slices so callers can edit
// the copy without touching the original.
func CloneSchedule(days []ScheduleDay) []ScheduleDay {
	if days == nil {
		return nil
	}
	out := make([]ScheduleDay, len(days))
	for i, d := range days {
		out[i] = d
		out[i].Events = append([]ScheduleEvent(nil), d.Events...)
	}
	return out
}
