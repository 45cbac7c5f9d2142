package flight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-trip-aggregator/config"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/exchange"
	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

type fixedRate float64

func (r fixedRate) Rate(_ context.Context, currency, searchDate string) exchange.Quote {
	return exchange.Quote{Currency: currency, Rate: float64(r), SearchDate: searchDate}
}

// MockTextGenerator is a mock implementation of generativeAI.TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	args := m.Called(ctx, prompt, cfg)
	return args.String(0), args.Error(1)
}

const roundtripBody = `{"status":true,"data":{"bundles":[
 {"bundlePrice":[{"price":{"usd":{"display":{"perBook":{"allInclusive":412.5}}}}}],
  "itineraries":[{"itineraryInfo":{"id":"itin-1","totalTripDuration":150}}],
  "outboundSlice":{"segments":[
    {"departDateTime":"2025-12-04T09:00:00","arrivalDateTime":"2025-12-04T11:00:00","carrierContent":{"carrierName":"Korean Air"}},
    {"departDateTime":"2025-12-04T12:00:00","arrivalDateTime":"2025-12-04T14:30:00","carrierContent":{"carrierName":"JAL"}}]},
  "inboundSlice":{"segments":[
    {"departDateTime":"2025-12-06T18:00:00","arrivalDateTime":"2025-12-06T20:30:00"}]}},
 {"bundlePrice":[],"itineraries":[]},
 {"itineraries":[{"itineraryInfo":{"id":77}}]}
]}}`

func newTestFlight(t *testing.T, h http.HandlerFunc, llm *MockTextGenerator) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := config.Provider{BaseURL: srv.URL, APIKey: "rapid", Host: "flights.test", Timeout: time.Second}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if llm == nil {
		return NewClient(cfg, fixedRate(1400), nil, logger)
	}
	return NewClient(cfg, fixedRate(1400), llm, logger)
}

func tripCriteria() types.TripCriteria {
	start := time.Date(2025, 12, 4, 0, 0, 0, 0, time.UTC)
	return types.TripCriteria{
		Origin:      "Seoul (ICN)",
		Destination: "Tokyo",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 2),
		PartySize:   2,
	}
}

func TestClient_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("normalises bundles", func(t *testing.T) {
		c := newTestFlight(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "rapid", r.Header.Get("x-rapidapi-key"))
			assert.Equal(t, "flights.test", r.Header.Get("x-rapidapi-host"))
			switch r.URL.Path {
			case "/api/v1/flights/auto-complete":
				assert.Equal(t, "Tokyo", r.URL.Query().Get("query"))
				_, _ = w.Write([]byte(`{"data":[{"tripLocations":[{"code":"TYO"}]}]}`))
			case "/api/v1/flights/search-roundtrip":
				q := r.URL.Query()
				assert.Equal(t, "ICN", q.Get("origin"))
				assert.Equal(t, "TYO", q.Get("destination"))
				assert.Equal(t, "2025-12-04", q.Get("departureDate"))
				assert.Equal(t, "2025-12-06", q.Get("returnDate"))
				assert.Equal(t, "2", q.Get("adults"))
				assert.Equal(t, "ECONOMY", q.Get("cabinClass"))
				assert.Equal(t, "USD", q.Get("currency"))
				_, _ = w.Write([]byte(roundtripBody))
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		}, nil)

		flights, err := c.Search(ctx, tripCriteria())
		require.NoError(t, err)
		require.Len(t, flights, 2)

		f := flights[0]
		assert.Equal(t, "itin-1", f.ID)
		assert.Equal(t, vendor, f.Vendor)
		assert.Equal(t, "Korean Air", f.Airline)
		assert.Equal(t, int64(577500), f.Price)
		assert.Equal(t, "KRW", f.Currency)
		assert.Equal(t, 150, f.DurationMin)
		assert.Equal(t, 2, f.Segments)
		require.NotNil(t, f.OutboundArrivalTime)
		assert.Equal(t, "2025-12-04T14:30:00", *f.OutboundArrivalTime)
		assert.Equal(t, "2025-12-04T09:00:00", *f.OutboundDepartureTime)
		require.NotNil(t, f.InboundDepartureTime)
		assert.Equal(t, "2025-12-06T18:00:00", *f.InboundDepartureTime)

		bare := flights[1]
		assert.Equal(t, "77", bare.ID)
		assert.Equal(t, "Unknown", bare.Airline)
		assert.Zero(t, bare.Price)
		assert.Nil(t, bare.OutboundArrivalTime)
	})

	t.Run("missing origin skips the search", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestFlight(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}, nil)

		criteria := tripCriteria()
		criteria.Origin = ""
		flights, err := c.Search(ctx, criteria)
		require.NoError(t, err)
		assert.Empty(t, flights)
		assert.Zero(t, calls.Load())
	})

	t.Run("unresolvable destination skips the search", func(t *testing.T) {
		c := newTestFlight(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/v1/flights/search-roundtrip" {
				t.Error("search must not be called")
			}
			_, _ = w.Write([]byte(`{"data":[]}`))
		}, nil)

		flights, err := c.Search(ctx, tripCriteria())
		require.NoError(t, err)
		assert.Empty(t, flights)
	})

	t.Run("status false is an empty result", func(t *testing.T) {
		c := newTestFlight(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":false,"message":"quota"}`))
		}, nil)

		criteria := tripCriteria()
		criteria.DestinationCode = "NRT"
		flights, err := c.Search(ctx, criteria)
		require.NoError(t, err)
		assert.Empty(t, flights)
	})

	t.Run("upstream failure is returned", func(t *testing.T) {
		c := newTestFlight(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}, nil)

		criteria := tripCriteria()
		criteria.DestinationCode = "NRT"
		_, err := c.Search(ctx, criteria)
		assert.Error(t, err)
	})
}

func TestClient_ResolveIATA(t *testing.T) {
	ctx := context.Background()
	noUpstream := func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call %s", r.URL.Path)
	}

	t.Run("pattern rules need no collaborator", func(t *testing.T) {
		c := newTestFlight(t, noUpstream, nil)
		assert.Equal(t, "GMP", c.resolveIATA(ctx, "Seoul", "gmp"))
		assert.Equal(t, "KIX", c.resolveIATA(ctx, "KIX", ""))
		assert.Equal(t, "CTS", c.resolveIATA(ctx, "Sapporo (CTS)", ""))
		assert.Equal(t, "", c.resolveIATA(ctx, "  ", ""))
	})

	t.Run("uses the text generator guess", func(t *testing.T) {
		llm := new(MockTextGenerator)
		llm.On("GenerateContent", mock.Anything, mock.MatchedBy(func(p string) bool {
			return assert.Contains(t, p, `"Osaka"`)
		}), mock.Anything).Return("```json\n{\"iata\": \"kix\"}\n```", nil).Once()

		c := newTestFlight(t, noUpstream, llm)
		assert.Equal(t, "KIX", c.resolveIATA(ctx, "Osaka", ""))
		llm.AssertExpectations(t)
	})

	t.Run("falls back to auto-complete when the guess is unusable", func(t *testing.T) {
		llm := new(MockTextGenerator)
		llm.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(`{"iata":"Narita"}`, nil).Once()
		llm.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("quota")).Once()

		c := newTestFlight(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Tokyo", r.URL.Query().Get("query"))
			_, _ = w.Write([]byte(`{"data":[{"airports":[{"code":"HND"}]}]}`))
		}, llm)

		assert.Equal(t, "HND", c.resolveIATA(ctx, "Tokyo, Japan", ""))
		assert.Equal(t, "HND", c.resolveIATA(ctx, "Tokyo / Narita", ""))
		llm.AssertExpectations(t)
	})
}
