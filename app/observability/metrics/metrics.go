package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ProviderRequestsTotal      metric.Int64Counter
	ProviderDurationSeconds    metric.Float64Histogram
	AggregationDurationSeconds metric.Float64Histogram
	ItineraryFallbackTotal     metric.Int64Counter
	ExchangeFallbackTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once from the global MeterProvider.
// Call it after the provider is installed so the instruments are exported.
func InitAppMetrics(meterName string) {
	once.Do(func() {
		if meterName == "" {
			meterName = "trip-aggregator"
		}
		meter := otel.GetMeterProvider().Meter(meterName)
		var err error
		m := &AppMetrics{}

		m.ProviderRequestsTotal, err = meter.Int64Counter(
			"provider_requests_total",
			metric.WithDescription("Upstream provider calls by provider and outcome"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_requests_total: %v", err)
		}

		m.ProviderDurationSeconds, err = meter.Float64Histogram(
			"provider_duration_seconds",
			metric.WithDescription("Duration of upstream provider calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_duration_seconds: %v", err)
		}

		m.AggregationDurationSeconds, err = meter.Float64Histogram(
			"aggregation_duration_seconds",
			metric.WithDescription("Duration of a full trip aggregation in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create aggregation_duration_seconds: %v", err)
		}

		m.ItineraryFallbackTotal, err = meter.Int64Counter(
			"itinerary_fallback_total",
			metric.WithDescription("Itineraries built from the fixed template instead of the text generator"),
			metric.WithUnit("{itinerary}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_fallback_total: %v", err)
		}

		m.ExchangeFallbackTotal, err = meter.Int64Counter(
			"exchange_fallback_total",
			metric.WithDescription("Exchange rate lookups answered with the fallback rate"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create exchange_fallback_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the instruments, creating them against the current global
// MeterProvider if InitAppMetrics has not run yet.
func Get() *AppMetrics {
	InitAppMetrics("")
	return appMetrics
}
