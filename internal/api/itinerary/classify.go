package itinerary

import (
	"strings"

	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

// slotKeywords is checked in order. Lodging terms come last so a meal or a
// time of day named alongside the hotel wins.
var slotKeywords = []struct {
	slot     types.Slot
	keywords []string
}{
	{types.SlotLunch, []string{"lunch", "점심"}},
	{types.SlotEvening, []string{"dinner", "evening", "저녁"}},
	{types.SlotMorning, []string{"morning", "breakfast", "오전", "아침"}},
	{types.SlotAfternoon, []string{"afternoon", "오후"}},
	{types.SlotNight, []string{"night", "lodging", "hotel", "야간", "숙소", "호텔"}},
}

var (
	mealKeywords    = []string{"meal", "restaurant", "breakfast", "lunch", "dinner", "식사", "점심", "저녁", "맛집"}
	transitKeywords = []string{"airport", "transfer", "return to", "check-in", "check in", "공항", "이동", "복귀", "체크인"}
)

var iconKinds = map[string]types.EventKind{
	"utensils": types.KindMeal,
	"coffee":   types.KindMeal,
	"plane":    types.KindTransit,
	"car":      types.KindTransit,
	"home":     types.KindTransit,
	"camera":   types.KindActivity,
	"map-pin":  types.KindActivity,
	"shopping": types.KindActivity,
}

// classify turns a generated event into a ScheduleEvent with its slot and
// kind fixed. Slot: explicit field, then the time_slot clock, then keywords in
// a time_slot label such as "아침", then description keywords, then the
// event's position in the day. Kind: explicit field, then
// icon, then description keywords, else activity.
func classify(re rawEvent, position int) types.ScheduleEvent {
	e := types.ScheduleEvent{
		TimeSlot:    strings.TrimSpace(re.TimeSlot),
		Description: strings.TrimSpace(re.Description),
		Icon:        strings.ToLower(strings.TrimSpace(re.Icon)),
		Slot:        deriveSlot(re, position),
		Kind:        deriveKind(re),
	}
	if e.TimeSlot == "" {
		e.TimeSlot = formatClock(slotStart[e.Slot])
	}
	if e.Icon == "" {
		e.Icon = defaultIcon(e.Kind)
	}
	return e
}

func deriveSlot(re rawEvent, position int) types.Slot {
	if s := types.Slot(strings.ToLower(strings.TrimSpace(re.Slot))); validSlot(s) {
		return s
	}
	if m, ok := parseClock(re.TimeSlot); ok {
		return slotForMinutes(m)
	}
	for _, text := range []string{re.TimeSlot, re.Description} {
		if s, ok := keywordSlot(text); ok {
			return s
		}
	}
	if position >= len(slotOrder) {
		return types.SlotNight
	}
	return slotOrder[position]
}

func keywordSlot(text string) (types.Slot, bool) {
	text = strings.ToLower(text)
	for _, sk := range slotKeywords {
		if containsAny(text, sk.keywords) {
			return sk.slot, true
		}
	}
	return "", false
}

func deriveKind(re rawEvent) types.EventKind {
	switch k := types.EventKind(strings.ToLower(strings.TrimSpace(re.Kind))); k {
	case types.KindActivity, types.KindMeal, types.KindTransit:
		return k
	}
	if k, ok := iconKinds[strings.ToLower(strings.TrimSpace(re.Icon))]; ok {
		return k
	}
	desc := strings.ToLower(re.Description)
	switch {
	case containsAny(desc, mealKeywords):
		return types.KindMeal
	case containsAny(desc, transitKeywords):
		return types.KindTransit
	}
	return types.KindActivity
}

func defaultIcon(k types.EventKind) string {
	switch k {
	case types.KindMeal:
		return "utensils"
	case types.KindTransit:
		return "car"
	}
	return "map-pin"
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
