// Package itinerary builds the day-by-day schedule: a skeleton from the text
// generator (or a fixed template), POI binding, and arrival and departure
// trimming.
package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-aggregator/app/apperr"
	"github.com/FACorreiaa/go-trip-aggregator/app/observability/metrics"
	generativeAI "github.com/FACorreiaa/go-trip-aggregator/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

// FallbackIcons are the icons the fixed template uses.
var FallbackIcons = []string{"camera", "utensils", "map-pin", "home"}

type templateEvent struct {
	slot        types.Slot
	kind        types.EventKind
	description string
	icon        string
}

var fallbackTemplate = []templateEvent{
	{types.SlotMorning, types.KindActivity, "Morning sightseeing", "camera"},
	{types.SlotLunch, types.KindMeal, "Lunch", "utensils"},
	{types.SlotAfternoon, types.KindActivity, "Afternoon exploration", "map-pin"},
	{types.SlotEvening, types.KindMeal, "Dinner", "utensils"},
	{types.SlotNight, types.KindTransit, "Return to the lodging", "home"},
}

type Synthesizer struct {
	llm    generativeAI.TextGenerator
	logger *slog.Logger
}

// NewSynthesizer returns a synthesizer. A nil llm means every schedule comes
// from the fixed template.
func NewSynthesizer(llm generativeAI.TextGenerator, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{llm: llm, logger: logger}
}

// Synthesize returns exactly one ScheduleDay per trip date. It never fails:
// a missing collaborator, a generation error or output of the wrong shape all
// produce the fixed template instead.
func (s *Synthesizer) Synthesize(ctx context.Context, criteria types.TripCriteria, pois []types.NormalizedPOI) []types.ScheduleDay {
	ctx, span := otel.Tracer("ItinerarySynthesizer").Start(ctx, "Synthesize", trace.WithAttributes(
		attribute.String("destination", criteria.Destination),
		attribute.Int("days", criteria.Days()),
		attribute.Int("poi_candidates", len(pois)),
	))
	defer span.End()

	if s.llm == nil {
		return s.fallback(ctx, span, criteria, "no text generator")
	}

	prompt := generateItineraryPrompt(criteria, pois)
	text, err := s.llm.GenerateContent(ctx, prompt, nil)
	if err != nil {
		s.logger.WarnContext(ctx, "Itinerary generation failed", slog.Any("error", err))
		span.RecordError(err)
		return s.fallback(ctx, span, criteria, "generation error")
	}

	days, err := parseSchedule(text, criteria)
	if err != nil {
		s.logger.WarnContext(ctx, "Discarding generated itinerary",
			slog.Any("error", err),
			slog.Int("response_length", len(text)))
		span.RecordError(err)
		return s.fallback(ctx, span, criteria, "unparsable output")
	}

	span.SetStatus(codes.Ok, "itinerary generated")
	return days
}

func (s *Synthesizer) fallback(ctx context.Context, span trace.Span, criteria types.TripCriteria, reason string) []types.ScheduleDay {
	s.logger.InfoContext(ctx, "Using template itinerary", slog.String("reason", reason))
	metrics.Get().ItineraryFallbackTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	span.SetAttributes(attribute.String("fallback_reason", reason))
	span.SetStatus(codes.Ok, "template itinerary")
	return FallbackSchedule(criteria)
}

// FallbackSchedule is the fixed five-event template for every trip date.
func FallbackSchedule(criteria types.TripCriteria) []types.ScheduleDay {
	dates := criteria.Dates()
	days := make([]types.ScheduleDay, len(dates))
	for i, d := range dates {
		events := make([]types.ScheduleEvent, len(fallbackTemplate))
		for j, t := range fallbackTemplate {
			events[j] = types.ScheduleEvent{
				TimeSlot:    formatClock(slotStart[t.slot]),
				Slot:        t.slot,
				Kind:        t.kind,
				Description: t.description,
				Icon:        t.icon,
			}
		}
		days[i] = types.ScheduleDay{Day: i + 1, Date: d.Format(types.DateLayout), Events: events}
	}
	return days
}

type rawDay struct {
	Day    int        `json:"day"`
	Date   string     `json:"date"`
	Events []rawEvent `json:"events"`
}

type rawEvent struct {
	TimeSlot    string `json:"time_slot"`
	Slot        string `json:"slot"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// parseSchedule accepts only a JSON array with one non-empty day per trip
// date. Day numbers and dates are taken from the calendar, and each event gets
// its slot and kind settled here, once.
func parseSchedule(text string, criteria types.TripCriteria) ([]types.ScheduleDay, error) {
	var raw []rawDay
	if err := json.Unmarshal([]byte(generativeAI.CleanJSONArray(text)), &raw); err != nil {
		return nil, apperr.Wrap(apperr.KindSynthesisParse, "itinerary is not a JSON array of days", err)
	}
	dates := criteria.Dates()
	if len(raw) != len(dates) {
		return nil, apperr.New(apperr.KindSynthesisParse,
			fmt.Sprintf("itinerary has %d days, trip has %d", len(raw), len(dates)))
	}

	days := make([]types.ScheduleDay, len(raw))
	for i, rd := range raw {
		if len(rd.Events) == 0 {
			return nil, apperr.New(apperr.KindSynthesisParse, fmt.Sprintf("day %d has no events", i+1))
		}
		events := make([]types.ScheduleEvent, len(rd.Events))
		for j, re := range rd.Events {
			if strings.TrimSpace(re.Description) == "" {
				return nil, apperr.New(apperr.KindSynthesisParse, fmt.Sprintf("day %d event %d has no description", i+1, j+1))
			}
			events[j] = classify(re, j)
		}
		days[i] = types.ScheduleDay{Day: i + 1, Date: dates[i].Format(types.DateLayout), Events: events}
	}
	return days, nil
}
