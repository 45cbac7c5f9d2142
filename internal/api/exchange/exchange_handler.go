package exchange

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-aggregator/internal/api"
)

const defaultCacheTTL = time.Hour

type HandlerImpl struct {
	rates    RateProvider
	cache    *cache.Cache
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandlerImpl serves rate lookups, caching non-fallback quotes for ttl.
func NewHandlerImpl(rates RateProvider, ttl time.Duration, logger *slog.Logger) *HandlerImpl {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &HandlerImpl{
		rates:    rates,
		cache:    cache.New(ttl, 2*ttl),
		validate: validator.New(),
		logger:   logger,
	}
}

// GetRate returns the KRW rate for {currency}. The optional date query
// parameter is YYYYMMDD or YYYY-MM-DD.
func (h *HandlerImpl) GetRate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ExchangeHandler").Start(r.Context(), "GetRate", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/rates/{currency}"),
	))
	defer span.End()

	currency := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "currency")))
	date := strings.ReplaceAll(strings.TrimSpace(r.URL.Query().Get("date")), "-", "")
	l := h.logger.With(slog.String("handler", "GetRate"), slog.String("currency", currency))

	if err := h.validate.Var(currency, "len=3,alpha"); err != nil {
		l.WarnContext(ctx, "Invalid currency code")
		span.SetStatus(codes.Error, "Invalid currency")
		api.ErrorResponse(w, r, http.StatusBadRequest, "currency must be a three letter code")
		return
	}
	if err := h.validate.Var(date, "omitempty,len=8,numeric"); err != nil {
		l.WarnContext(ctx, "Invalid search date", slog.String("date", date))
		span.SetStatus(codes.Error, "Invalid date")
		api.ErrorResponse(w, r, http.StatusBadRequest, "date must be YYYYMMDD")
		return
	}

	key := currency + ":" + date
	if cached, found := h.cache.Get(key); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		api.WriteJSONResponse(w, r, http.StatusOK, cached)
		return
	}

	quote := h.rates.Rate(ctx, currency, date)
	if !quote.Fallback {
		h.cache.Set(key, quote, cache.DefaultExpiration)
	}
	span.SetAttributes(attribute.Bool("cache.hit", false), attribute.Bool("fallback", quote.Fallback))
	span.SetStatus(codes.Ok, "Rate served")
	api.WriteJSONResponse(w, r, http.StatusOK, quote)
}
