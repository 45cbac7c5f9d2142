// Package aggregation fans a trip request out to the flight, hotel, POI and
// weather providers and assembles their results into one itinerary payload.
package aggregation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-trip-aggregator/app/apperr"
	"github.com/FACorreiaa/go-trip-aggregator/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/flight"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/hotel"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/poi"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/weather"
	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

// fanOut is the number of provider calls made per aggregation.
const fanOut = 4

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service builds the full trip payload for one request.
type Service interface {
	Aggregate(ctx context.Context, req types.TripRequest) (*types.AggregatedTripData, error)
}

// Synthesizer drafts the day-by-day schedule. It never fails; callers always
// get one ScheduleDay per calendar day.
type Synthesizer interface {
	Synthesize(ctx context.Context, criteria types.TripCriteria, pois []types.NormalizedPOI) []types.ScheduleDay
}

// Providers groups the four upstream clients queried for every trip.
type Providers struct {
	POI     types.ProviderClient[types.NormalizedPOI]
	Weather types.ProviderClient[types.DailyWeather]
	Flight  types.ProviderClient[types.NormalizedFlightOption]
	Hotel   types.ProviderClient[types.NormalizedHotelOption]
}

type ServiceImpl struct {
	providers   Providers
	synthesizer Synthesizer
	validate    *validator.Validate
	logger      *slog.Logger
}

func NewService(providers Providers, synthesizer Synthesizer, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		providers:   providers,
		synthesizer: synthesizer,
		validate:    newValidator(),
		logger:      logger,
	}
}

// Aggregate validates the request, queries all providers concurrently and
// builds the enriched schedule. The only error it returns is a validation
// error; provider failures are reported in AggregatedTripData.Providers.
func (s *ServiceImpl) Aggregate(ctx context.Context, req types.TripRequest) (*types.AggregatedTripData, error) {
	ctx, span := otel.Tracer("AggregationService").Start(ctx, "Aggregate", trace.WithAttributes(
		attribute.String("destination", req.Destination),
		attribute.Bool("is_domestic", req.IsDomestic),
	))
	defer span.End()
	started := time.Now()

	criteria, err := newCriteria(s.validate, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid trip request")
		s.logger.WarnContext(ctx, "Rejected trip request", slog.Any("error", err))
		return nil, err
	}
	span.SetAttributes(
		attribute.String("request.id", criteria.RequestID),
		attribute.Int("trip.days", criteria.Days()),
	)
	l := s.logger.With(slog.String("request_id", criteria.RequestID), slog.String("destination", criteria.Destination))
	l.InfoContext(ctx, "Aggregating trip",
		slog.String("start_date", criteria.StartDate.Format(types.DateLayout)),
		slog.String("end_date", criteria.EndDate.Format(types.DateLayout)),
		slog.Bool("is_domestic", criteria.IsDomestic))

	var (
		pois     types.ProviderResult[types.NormalizedPOI]
		forecast types.ProviderResult[types.DailyWeather]
		flights  types.ProviderResult[types.NormalizedFlightOption]
		hotels   types.ProviderResult[types.NormalizedHotelOption]
	)

	// Tasks never return an error so one provider cannot cancel another.
	var g errgroup.Group
	g.SetLimit(fanOut)
	g.Go(func() error {
		pois = call(ctx, l, poi.Name, s.providers.POI, criteria)
		return nil
	})
	g.Go(func() error {
		forecast = call(ctx, l, weather.Name, s.providers.Weather, criteria)
		return nil
	})
	g.Go(func() error {
		flights = call(ctx, l, flight.Name, s.providers.Flight, criteria)
		return nil
	})
	g.Go(func() error {
		hotels = call(ctx, l, hotel.Name, s.providers.Hotel, criteria)
		return nil
	})
	_ = g.Wait()

	data := &types.AggregatedTripData{
		RequestID:   criteria.RequestID,
		Destination: criteria.Destination,
		Origin:      criteria.Origin,
		StartDate:   criteria.StartDate.Format(types.DateLayout),
		EndDate:     criteria.EndDate.Format(types.DateLayout),
		Nights:      criteria.Nights(),
		PartySize:   criteria.PartySize,
		IsDomestic:  criteria.IsDomestic,
		Budget:      criteria.BudgetPerPerson,
		POIs:        dedupePOIs(pois.Records),
		Weather:     weatherByDate(forecast.Records),
		Flights:     recommendFirst(flights.Records, func(f *types.NormalizedFlightOption) { f.Recommended = true }),
		Hotels:      recommendFirst(hotels.Records, func(h *types.NormalizedHotelOption) { h.Recommended = true }),
		Providers: []types.ProviderStatus{
			pois.Status(), forecast.Status(), flights.Status(), hotels.Status(),
		},
	}
	if len(data.Flights) > 0 {
		data.RecommendedFlight = &data.Flights[0]
	}
	if len(data.Hotels) > 0 {
		data.RecommendedHotel = &data.Hotels[0]
	}

	data.Schedule = s.plan(ctx, criteria, data.POIs, data.RecommendedFlight)

	elapsed := time.Since(started)
	metrics.Get().AggregationDurationSeconds.Record(ctx, elapsed.Seconds())
	failed := lo.CountBy(data.Providers, func(p types.ProviderStatus) bool { return !p.OK })
	span.SetAttributes(
		attribute.Int("providers.failed", failed),
		attribute.Int("pois.count", len(data.POIs)),
		attribute.Int("flights.count", len(data.Flights)),
		attribute.Int("hotels.count", len(data.Hotels)),
	)
	span.SetStatus(codes.Ok, "Trip aggregated")
	l.InfoContext(ctx, "Trip aggregated",
		slog.Int("providers_failed", failed),
		slog.Int("schedule_days", len(data.Schedule)),
		slog.Duration("elapsed", elapsed))
	return data, nil
}

// plan drafts the schedule, binds POIs to it and trims the first and last day
// around the recommended flight.
func (s *ServiceImpl) plan(ctx context.Context, criteria types.TripCriteria, pois []types.NormalizedPOI, recommended *types.NormalizedFlightOption) []types.ScheduleDay {
	var schedule []types.ScheduleDay
	if s.synthesizer != nil {
		schedule = s.synthesizer.Synthesize(ctx, criteria, pois)
	}
	if len(schedule) != criteria.Days() {
		schedule = itinerary.FallbackSchedule(criteria)
	}
	schedule = itinerary.Enrich(schedule, pois)
	if recommended == nil {
		return schedule
	}
	if recommended.OutboundArrivalTime != nil {
		schedule = itinerary.AdjustFirstDay(schedule, *recommended.OutboundArrivalTime)
	}
	if recommended.InboundDepartureTime != nil {
		schedule = itinerary.AdjustLastDay(schedule, *recommended.InboundDepartureTime)
	}
	return schedule
}

// call runs one provider search, turning an error or a panic into the
// result's Err so it never escapes the fan-out.
func call[T any](ctx context.Context, logger *slog.Logger, name string, client types.ProviderClient[T], criteria types.TripCriteria) (res types.ProviderResult[T]) {
	res.Provider = name
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Records = nil
			res.Err = apperr.New(apperr.KindInternal, fmt.Sprintf("provider panicked: %v", r)).WithOp(name + ".Search")
		}
		if res.Records == nil {
			res.Records = []T{}
		}
		res.Duration = time.Since(started)
		observe(ctx, logger, res.Status(), res.Err, res.Duration)
	}()

	if client == nil {
		res.Err = apperr.New(apperr.KindInternal, "provider not configured").WithOp(name + ".Search")
		return res
	}
	records, err := client.Search(ctx, criteria)
	if err != nil {
		res.Err = err
		return res
	}
	res.Records = records
	return res
}

func observe(ctx context.Context, logger *slog.Logger, status types.ProviderStatus, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", status.Provider),
		attribute.String("outcome", outcome),
	)
	m := metrics.Get()
	m.ProviderRequestsTotal.Add(ctx, 1, attrs)
	m.ProviderDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)

	if err != nil {
		logger.WarnContext(ctx, "Provider failed",
			slog.String("provider", status.Provider),
			slog.String("outcome", outcome),
			slog.Any("error", err),
			slog.Duration("elapsed", elapsed))
		return
	}
	logger.DebugContext(ctx, "Provider finished",
		slog.String("provider", status.Provider),
		slog.Int("count", status.Count),
		slog.Duration("elapsed", elapsed))
}
