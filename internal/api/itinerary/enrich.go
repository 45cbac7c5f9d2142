package itinerary

import (
	"github.com/samber/lo"

	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

// cursor hands out POIs round-robin, wrapping at the end so it never runs dry.
type cursor struct {
	pois []types.NormalizedPOI
	next int
}

func (c *cursor) take() (types.NormalizedPOI, bool) {
	if len(c.pois) == 0 {
		return types.NormalizedPOI{}, false
	}
	p := c.pois[c.next]
	c.next = (c.next + 1) % len(c.pois)
	return p, true
}

// Enrich binds POIs to meal and activity events. Meals draw from the dining
// cursor; activities draw from the attraction cursor, or dining when there are
// no attractions. Other event kinds are left alone. The input is not modified.
func Enrich(schedule []types.ScheduleDay, pois []types.NormalizedPOI) []types.ScheduleDay {
	out := types.CloneSchedule(schedule)
	if len(pois) == 0 {
		return out
	}

	dining, attractions := lo.FilterReject(pois, func(p types.NormalizedPOI, _ int) bool {
		return p.IsDining()
	})
	diningCur := &cursor{pois: dining}
	attractionCur := &cursor{pois: attractions}

	for d := range out {
		for i := range out[d].Events {
			e := &out[d].Events[i]
			if !e.Kind.Bindable() {
				continue
			}
			var (
				poi types.NormalizedPOI
				ok  bool
			)
			switch e.Kind {
			case types.KindMeal:
				poi, ok = diningCur.take()
			case types.KindActivity:
				if poi, ok = attractionCur.take(); !ok {
					poi, ok = diningCur.take()
				}
			}
			if ok {
				bind(e, poi)
			}
		}
	}
	return out
}

func bind(e *types.ScheduleEvent, poi types.NormalizedPOI) {
	name := poi.Name
	e.Description = poi.Label() + " - " + e.Description
	e.PlaceName = &name
	e.Latitude = poi.Latitude
	e.Longitude = poi.Longitude
}
