package aggregation

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-aggregator/internal/api"
	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// GeneratePlan aggregates providers for the posted TripRequest and returns
// the AggregatedTripData.
func (h *HandlerImpl) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AggregationHandler").Start(r.Context(), "GeneratePlan", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/plan/generate"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GeneratePlan"))
	l.DebugContext(ctx, "Generate plan handler invoked")

	var req types.TripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.WriteError(w, r, err)
		return
	}

	data, err := h.service.Aggregate(ctx, req)
	if err != nil {
		l.WarnContext(ctx, "Trip aggregation rejected", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Aggregation failed")
		api.WriteError(w, r, err)
		return
	}

	span.SetAttributes(attribute.String("request.id", data.RequestID))
	span.SetStatus(codes.Ok, "Plan generated")
	api.WriteJSONResponse(w, r, http.StatusOK, data)
}
