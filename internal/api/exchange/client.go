// Package exchange looks up KRW base rates from the Korea Exim Bank API.
package exchange

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-aggregator/app/apperr"
	"github.com/FACorreiaa/go-trip-aggregator/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-aggregator/config"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/upstream"
)

const (
	DefaultFallbackRate = 1300.0
	defaultAttempts     = 3
	defaultBackoff      = time.Second
)

var unitDivisor = regexp.MustCompile(`\((\d+)\)`)

// RateProvider answers "how many KRW for one unit of currency". It never fails;
// when the upstream cannot answer it returns a fallback rate and says so.
type RateProvider interface {
	Rate(ctx context.Context, currency, searchDate string) Quote
}

type Quote struct {
	Currency   string  `json:"currency"`
	Rate       float64 `json:"rate"`
	SearchDate string  `json:"search_date,omitempty"`
	Fallback   bool    `json:"fallback"`
}

type row struct {
	Result   int    `json:"result"`
	CurUnit  string `json:"cur_unit"`
	CurName  string `json:"cur_nm"`
	DealBasR string `json:"deal_bas_r"`
}

var _ RateProvider = (*Client)(nil)

type Client struct {
	http     *upstream.Client
	authKey  string
	dataCode string
	attempts int
	backoff  time.Duration
	fallback float64
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg *config.Config, logger *slog.Logger, opts ...upstream.Option) *Client {
	ex := cfg.Exchange
	c := &Client{
		http: upstream.New("exchange", config.Provider{
			BaseURL: ex.BaseURL,
			Timeout: ex.Timeout,
		}, logger, opts...),
		authKey:  ex.AuthKey,
		dataCode: ex.DataCode,
		attempts: ex.Attempts,
		backoff:  ex.Backoff,
		fallback: ex.FallbackRate,
		logger:   logger,
		sleep:    sleepCtx,
	}
	if c.dataCode == "" {
		c.dataCode = "AP01"
	}
	if c.attempts <= 0 {
		c.attempts = defaultAttempts
	}
	if c.backoff <= 0 {
		c.backoff = defaultBackoff
	}
	if c.fallback <= 0 {
		c.fallback = DefaultFallbackRate
	}
	return c
}

// Rate returns the base rate for currency. searchDate is YYYYMMDD or
// YYYY-MM-DD; empty means the latest business day.
func (c *Client) Rate(ctx context.Context, currency, searchDate string) Quote {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	searchDate = strings.ReplaceAll(searchDate, "-", "")

	ctx, span := otel.Tracer("ExchangeClient").Start(ctx, "Rate", trace.WithAttributes(
		attribute.String("currency", currency),
		attribute.String("search_date", searchDate),
	))
	defer span.End()

	quote := Quote{Currency: currency, SearchDate: searchDate}
	if currency == "KRW" {
		quote.Rate = 1
		return quote
	}

	rows, err := c.fetchWithRetry(ctx, searchDate)
	if err == nil {
		if rate, ok := pickRate(rows, currency); ok {
			quote.Rate = rate
			span.SetStatus(codes.Ok, "rate found")
			return quote
		}
		err = apperr.New(apperr.KindIdentifierResolution, "currency not in exchange table: "+currency)
	}

	c.logger.WarnContext(ctx, "Using fallback exchange rate",
		slog.String("currency", currency),
		slog.Float64("fallback", c.fallback),
		slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, "fallback rate")
	metrics.Get().ExchangeFallbackTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("currency", currency)))

	quote.Rate = c.fallback
	quote.Fallback = true
	return quote
}

// fetchWithRetry retries 429 and 5xx responses with linear backoff up to the
// attempt budget. Other failures return immediately.
func (c *Client) fetchWithRetry(ctx context.Context, searchDate string) ([]row, error) {
	q := url.Values{}
	q.Set("authkey", c.authKey)
	q.Set("data", c.dataCode)
	if searchDate != "" {
		q.Set("searchdate", searchDate)
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		var rows []row
		err := c.http.GetJSON(ctx, "", q, &rows)
		if err == nil {
			if len(rows) > 0 && rows[0].Result != 0 && rows[0].Result != 1 {
				return nil, apperr.New(apperr.KindProviderUnavailable,
					"exchange api result code "+strconv.Itoa(rows[0].Result))
			}
			return rows, nil
		}
		lastErr = err
		if !retryable(upstream.StatusCode(err)) || attempt == c.attempts {
			break
		}
		c.logger.DebugContext(ctx, "Retrying exchange lookup", slog.Int("attempt", attempt), slog.Any("error", err))
		if err := c.sleep(ctx, time.Duration(attempt)*c.backoff); err != nil {
			return nil, apperr.Unavailable("exchange.Rate", err)
		}
	}
	return nil, lastErr
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// pickRate finds the row whose unit starts with currency and normalises units
// quoted per N (e.g. "JPY(100)") to a single unit.
func pickRate(rows []row, currency string) (float64, bool) {
	for _, r := range rows {
		unit := strings.ToUpper(r.CurUnit)
		if !strings.HasPrefix(unit, currency) {
			continue
		}
		rate, err := strconv.ParseFloat(strings.ReplaceAll(r.DealBasR, ",", ""), 64)
		if err != nil || rate <= 0 {
			continue
		}
		if m := unitDivisor.FindStringSubmatch(unit); m != nil {
			if divisor, _ := strconv.Atoi(m[1]); divisor > 0 {
				rate /= float64(divisor)
			}
		}
		return rate, true
	}
	return 0, false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
