package itinerary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

const maxPOIsPerBucket = 10

// minRating is the prompt cut-off per bucket.
var minRating = map[types.POIBucket]float64{
	types.BucketDining:     4.3,
	types.BucketCafe:       4.2,
	types.BucketAttraction: 4.0,
}

var styleGuides = map[types.TripStyle]string{
	types.StyleSightseeing: "Prioritise landmarks and must-see attractions. Fit two sights per day and keep meals close to them.",
	types.StyleFoodie:      "Build each day around its meals. Use well-rated local restaurants and cafes, with light sightseeing in between.",
	types.StyleRelaxation:  "Keep the pace slow. One main activity per day, long cafe breaks and an early return to the lodging.",
	types.StyleActivity:    "Favour hands-on and outdoor activities in the morning and afternoon, with hearty meals to match.",
	types.StyleShopping:    "Centre the afternoons on markets and shopping districts, with sightseeing in the morning.",
}

func styleGuide(style types.TripStyle) string {
	if guide, ok := styleGuides[style]; ok {
		return guide
	}
	return styleGuides[types.StyleSightseeing]
}

// promptCandidates keeps the best rated POIs of a bucket, highest first.
func promptCandidates(pois []types.NormalizedPOI, bucket types.POIBucket) []types.NormalizedPOI {
	picked := lo.Filter(pois, func(p types.NormalizedPOI, _ int) bool {
		return p.Bucket == bucket && p.Rating >= minRating[bucket]
	})
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].Rating > picked[j].Rating
	})
	if len(picked) > maxPOIsPerBucket {
		picked = picked[:maxPOIsPerBucket]
	}
	return picked
}

func formatCandidates(pois []types.NormalizedPOI) string {
	if len(pois) == 0 {
		return "        - (none)"
	}
	lines := lo.Map(pois, func(p types.NormalizedPOI, _ int) string {
		return fmt.Sprintf("        - %s (%s, rating %.1f)", p.Name, p.Category, p.Rating)
	})
	return strings.Join(lines, "\n")
}

func generateItineraryPrompt(criteria types.TripCriteria, pois []types.NormalizedPOI) string {
	interests := "none given"
	if len(criteria.Interests) > 0 {
		interests = strings.Join(criteria.Interests, ", ")
	}
	style := criteria.Style
	if style == "" {
		style = types.StyleSightseeing
	}
	dates := lo.Map(criteria.Dates(), func(d time.Time, i int) string {
		return fmt.Sprintf("Day %d = %s", i+1, d.Format(types.DateLayout))
	})

	return fmt.Sprintf(`
        Plan a %d-day trip to %s from %s to %s for %d traveller(s).
        Travel style: %s. %s
        Interests: %s.
        Calendar: %s.

        Restaurants you may use:
%s
        Cafes you may use:
%s
        Attractions you may use:
%s

        Return the response STRICTLY as a JSON array with exactly %d day objects and nothing else:
        [
          {
            "day": 1,
            "date": "YYYY-MM-DD",
            "events": [
              {"time_slot": "09:00", "slot": "morning", "kind": "activity", "description": "what to do", "icon": "camera"},
              {"time_slot": "12:00", "slot": "lunch", "kind": "meal", "description": "lunch", "icon": "utensils"},
              {"time_slot": "14:00", "slot": "afternoon", "kind": "activity", "description": "what to do", "icon": "map-pin"},
              {"time_slot": "18:00", "slot": "evening", "kind": "meal", "description": "dinner", "icon": "utensils"},
              {"time_slot": "21:00", "slot": "night", "kind": "transit", "description": "return to the lodging", "icon": "home"}
            ]
          }
        ]
        Rules:
        - "slot" is one of morning, lunch, afternoon, evening, night.
        - "kind" is one of activity, meal, transit.
        - "icon" is one of plane, car, shopping, utensils, coffee, home, camera, map-pin.
        - Every day has 3 to 6 events, each with a non-empty description.`,
		criteria.Days(), criteria.Destination,
		criteria.StartDate.Format(types.DateLayout), criteria.EndDate.Format(types.DateLayout),
		criteria.PartySize,
		style, styleGuide(style),
		interests,
		strings.Join(dates, ", "),
		formatCandidates(promptCandidates(pois, types.BucketDining)),
		formatCandidates(promptCandidates(pois, types.BucketCafe)),
		formatCandidates(promptCandidates(pois, types.BucketAttraction)),
		criteria.Days(),
	)
}
