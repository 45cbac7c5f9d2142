package container

import (
	"context"
	"errors"
	"log/slog"

	"github.com/FACorreiaa/go-trip-aggregator/config"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/aggregation"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/exchange"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/flight"
	generativeAI "github.com/FACorreiaa/go-trip-aggregator/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/hotel"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/poi"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/upstream"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/weather"
)

// Container holds all application dependencies
type Container struct {
	Config             *config.Config
	Logger             *slog.Logger
	AggregationService aggregation.Service
	AggregationHandler *aggregation.HandlerImpl
	ExchangeHandler    *exchange.HandlerImpl
}

// NewContainer builds every provider client and wires them into the
// aggregation service. opts are applied to every upstream client.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...upstream.Option) (*Container, error) {
	// A missing key leaves llm as a nil interface so callers fall back to
	// the template itinerary and the auto-complete IATA lookup.
	var llm generativeAI.TextGenerator
	aiClient, err := generativeAI.NewAIClient(ctx, cfg, logger)
	switch {
	case errors.Is(err, generativeAI.ErrNoAPIKey):
		logger.Warn("No text generation key configured, itineraries use the fixed template")
	case err != nil:
		logger.Error("Failed to initialize text generation client", slog.Any("error", err))
		return nil, err
	default:
		llm = aiClient
	}

	rates := exchange.NewClient(cfg, logger, opts...)
	providers := cfg.Providers

	poiRouter := poi.NewRouter(
		poi.NewKakaoClient(providers.Kakao, logger, opts...),
		poi.NewGoogleClient(providers.GooglePlaces, logger, opts...),
		logger,
	)
	aggregationService := aggregation.NewService(aggregation.Providers{
		POI:     poiRouter,
		Weather: weather.NewClient(providers.Weather, logger, opts...),
		Flight:  flight.NewClient(providers.AgodaFlights, rates, llm, logger, opts...),
		Hotel:   hotel.NewClient(providers.AgodaHotels, rates, logger, opts...),
	}, itinerary.NewSynthesizer(llm, logger), logger)

	return &Container{
		Config:             cfg,
		Logger:             logger,
		AggregationService: aggregationService,
		AggregationHandler: aggregation.NewHandlerImpl(aggregationService, logger),
		ExchangeHandler:    exchange.NewHandlerImpl(rates, cfg.Exchange.CacheTTL, logger),
	}, nil
}
