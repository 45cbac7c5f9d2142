package aggregation

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-aggregator/app/apperr"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

// MockProvider is a mock implementation of types.ProviderClient
type MockProvider[T any] struct {
	mock.Mock
}

func (m *MockProvider[T]) Search(ctx context.Context, criteria types.TripCriteria) ([]T, error) {
	args := m.Called(ctx, criteria)
	records, _ := args.Get(0).([]T)
	return records, args.Error(1)
}

type panickingProvider[T any] struct{}

func (panickingProvider[T]) Search(context.Context, types.TripCriteria) ([]T, error) {
	panic("nil map write")
}

// MockSynthesizer is a mock implementation of Synthesizer
type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, criteria types.TripCriteria, pois []types.NormalizedPOI) []types.ScheduleDay {
	args := m.Called(ctx, criteria, pois)
	days, _ := args.Get(0).([]types.ScheduleDay)
	return days
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f64(v float64) *float64 { return &v }
func str(v string) *string    { return &v }

type mocks struct {
	poi     *MockProvider[types.NormalizedPOI]
	weather *MockProvider[types.DailyWeather]
	flight  *MockProvider[types.NormalizedFlightOption]
	hotel   *MockProvider[types.NormalizedHotelOption]
}

func newMocks() mocks {
	return mocks{
		poi:     new(MockProvider[types.NormalizedPOI]),
		weather: new(MockProvider[types.DailyWeather]),
		flight:  new(MockProvider[types.NormalizedFlightOption]),
		hotel:   new(MockProvider[types.NormalizedHotelOption]),
	}
}

func (m mocks) providers() Providers {
	return Providers{POI: m.poi, Weather: m.weather, Flight: m.flight, Hotel: m.hotel}
}

func (m mocks) assertNoSearch(t *testing.T) {
	m.poi.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	m.weather.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	m.flight.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	m.hotel.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func tokyoRequest() types.TripRequest {
	return types.TripRequest{
		RequestID:   "req-1",
		Destination: " Tokyo ",
		Origin:      "Seoul",
		StartDate:   "2025-12-04",
		EndDate:     "2025-12-06",
		PartySize:   2,
		Style:       types.StyleFoodie,
		Interests:   []string{"ramen", " ", "ramen", "temples"},
	}
}

var (
	samplePOIs = []types.NormalizedPOI{
		{Name: "Senso-ji", Category: "관광명소", Bucket: types.BucketAttraction, Rating: 4.6, Lat: f64(35.71), Lng: f64(139.79)},
		{Name: "Ichiran", Category: "맛집", Bucket: types.BucketDining, Rating: 4.4, Latitude: f64(35.69), Longitude: f64(139.70)},
		{Name: "senso-ji", Category: "관광명소", Bucket: types.BucketAttraction, Rating: 4.1},
		{Name: "", Category: "카페", Bucket: types.BucketCafe},
	}
	sampleWeather = []types.DailyWeather{
		{Date: "2025-12-04", Temperature: 11.2, Condition: "Clouds"},
		{Date: "2025-12-05", Temperature: 9.8, Condition: "Rain"},
	}
	sampleFlights = []types.NormalizedFlightOption{
		{ID: "f1", Airline: "Korean Air", Price: 577500, Currency: "KRW",
			OutboundArrivalTime: str("2025-12-04T16:30:00"), InboundDepartureTime: str("2025-12-06T15:00:00")},
		{ID: "f2", Airline: "Asiana", Price: 601000, Currency: "KRW"},
	}
	sampleHotels = []types.NormalizedHotelOption{
		{ID: "h1", Name: "Park Hyatt", Price: 420000, Currency: "KRW"},
		{ID: "h2", Name: "Dormy Inn", Price: 98000, Currency: "KRW"},
	}
)

func TestService_Aggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("all providers succeed", func(t *testing.T) {
		m := newMocks()
		m.poi.On("Search", mock.Anything, mock.MatchedBy(func(c types.TripCriteria) bool {
			return c.Destination == "Tokyo" && c.Days() == 3
		})).Return(samplePOIs, nil).Once()
		m.weather.On("Search", mock.Anything, mock.Anything).Return(sampleWeather, nil).Once()
		m.flight.On("Search", mock.Anything, mock.Anything).Return(sampleFlights, nil).Once()
		m.hotel.On("Search", mock.Anything, mock.Anything).Return(sampleHotels, nil).Once()

		svc := NewService(m.providers(), itinerary.NewSynthesizer(nil, discardLogger()), discardLogger())
		data, err := svc.Aggregate(ctx, tokyoRequest())
		require.NoError(t, err)
		m.poi.AssertExpectations(t)
		m.weather.AssertExpectations(t)
		m.flight.AssertExpectations(t)
		m.hotel.AssertExpectations(t)

		assert.Equal(t, "req-1", data.RequestID)
		assert.Equal(t, "Tokyo", data.Destination)
		assert.Equal(t, 2, data.Nights)
		assert.Equal(t, "2025-12-04", data.StartDate)

		require.Len(t, data.POIs, 2)
		assert.Equal(t, "Senso-ji", data.POIs[0].Name)
		assert.Equal(t, 4.6, data.POIs[0].Rating)
		assert.Equal(t, 35.71, *data.POIs[0].Latitude)
		assert.Equal(t, 139.70, *data.POIs[1].Lng)

		assert.Len(t, data.Weather, 2)
		assert.Equal(t, "Rain", data.Weather["2025-12-05"].Condition)

		require.Len(t, data.Flights, 2)
		assert.True(t, data.Flights[0].Recommended)
		assert.False(t, data.Flights[1].Recommended)
		require.NotNil(t, data.RecommendedFlight)
		assert.Equal(t, "f1", data.RecommendedFlight.ID)
		require.NotNil(t, data.RecommendedHotel)
		assert.Equal(t, "Park Hyatt", data.RecommendedHotel.Name)
		assert.False(t, sampleFlights[0].Recommended, "provider records are not modified")

		require.Len(t, data.Schedule, 3)
		first := data.Schedule[0].Events
		require.Len(t, first, 3)
		assert.Equal(t, types.KindArrival, first[0].Kind)
		assert.Equal(t, "16:30", first[0].TimeSlot)
		last := data.Schedule[2].Events
		assert.Equal(t, "Head to the airport", last[len(last)-1].Description)
		assert.Len(t, data.Schedule[1].Events, 5)
		require.NotNil(t, data.Schedule[1].Events[1].PlaceName)
		assert.Equal(t, "Ichiran", *data.Schedule[1].Events[1].PlaceName)

		require.Len(t, data.Providers, 4)
		for _, p := range data.Providers {
			assert.True(t, p.OK, p.Provider)
		}
	})

	t.Run("no flight keeps the full schedule", func(t *testing.T) {
		m := newMocks()
		m.poi.On("Search", mock.Anything, mock.Anything).Return([]types.NormalizedPOI{}, nil)
		m.weather.On("Search", mock.Anything, mock.Anything).Return([]types.DailyWeather{}, nil)
		m.flight.On("Search", mock.Anything, mock.Anything).Return([]types.NormalizedFlightOption{}, nil)
		m.hotel.On("Search", mock.Anything, mock.Anything).Return([]types.NormalizedHotelOption{}, nil)

		req := tokyoRequest()
		req.Origin = ""
		data, err := NewService(m.providers(), itinerary.NewSynthesizer(nil, discardLogger()), discardLogger()).
			Aggregate(ctx, req)
		require.NoError(t, err)

		assert.Nil(t, data.RecommendedFlight)
		require.Len(t, data.Schedule, 3)
		for _, d := range data.Schedule {
			assert.Len(t, d.Events, 5)
			for _, e := range d.Events {
				assert.Nil(t, e.PlaceName)
			}
		}
	})

	t.Run("synthesizer receives deduplicated POIs", func(t *testing.T) {
		m := newMocks()
		m.poi.On("Search", mock.Anything, mock.Anything).Return(samplePOIs, nil)
		m.weather.On("Search", mock.Anything, mock.Anything).Return(nil, nil)
		m.flight.On("Search", mock.Anything, mock.Anything).Return(nil, nil)
		m.hotel.On("Search", mock.Anything, mock.Anything).Return(nil, nil)

		synth := new(MockSynthesizer)
		synth.On("Synthesize", mock.Anything, mock.MatchedBy(func(c types.TripCriteria) bool {
			return assert.Equal(t, []string{"ramen", "temples"}, c.Interests)
		}), mock.MatchedBy(func(p []types.NormalizedPOI) bool {
			return len(p) == 2
		})).Return(itinerary.FallbackSchedule(types.TripCriteria{})).Once()

		data, err := NewService(m.providers(), synth, discardLogger()).Aggregate(ctx, tokyoRequest())
		require.NoError(t, err)
		synth.AssertExpectations(t)
		assert.Len(t, data.Schedule, 3, "a schedule of the wrong length is replaced")
	})
}

func TestService_Aggregate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.TripRequest)
		msg    string
	}{
		{"missing destination", func(r *types.TripRequest) { r.Destination = "  " }, "destination"},
		{"unparsable start", func(r *types.TripRequest) { r.StartDate = "04/12/2025" }, "start_date"},
		{"end before start", func(r *types.TripRequest) { r.EndDate = "2025-12-01" }, "end_date must not be before"},
		{"unknown style", func(r *types.TripRequest) { r.Style = "nightlife" }, "style"},
		{"bad airport code", func(r *types.TripRequest) { r.OriginCode = "IC" }, "origin_code"},
		{"negative budget", func(r *types.TripRequest) { r.BudgetPerPerson = &types.Budget{Amount: -1} }, "amount"},
		{"trip too long", func(r *types.TripRequest) { r.EndDate = "2026-02-01" }, "limit"},
		{"negative party size", func(r *types.TripRequest) { r.PartySize = -2 }, "party_size failed gte=1"},
		{"party too large", func(r *types.TripRequest) { r.PartySize = 21 }, "party_size failed lte=20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			req := tokyoRequest()
			tt.mutate(&req)

			data, err := NewService(m.providers(), itinerary.NewSynthesizer(nil, discardLogger()), discardLogger()).
				Aggregate(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, data)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, err.Error(), tt.msg)
			m.assertNoSearch(t)
		})
	}
}

func TestNewCriteria_Defaults(t *testing.T) {
	req := tokyoRequest()
	req.RequestID = ""
	req.Style = ""
	req.DestinationCode = "nrt"

	c, err := newCriteria(newValidator(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, c.RequestID)
	assert.Equal(t, types.StyleSightseeing, c.Style)
	assert.Equal(t, "NRT", c.DestinationCode)
	assert.Equal(t, 3, c.Days())
	assert.Equal(t, 2, c.PartySize)

	req.PartySize = 0
	c, err = newCriteria(newValidator(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, c.PartySize)
}

func TestService_Aggregate_DefaultPartySize(t *testing.T) {
	m := newMocks()
	solo := mock.MatchedBy(func(c types.TripCriteria) bool { return c.PartySize == 1 })
	m.poi.On("Search", mock.Anything, solo).Return(samplePOIs, nil).Once()
	m.weather.On("Search", mock.Anything, solo).Return(sampleWeather, nil).Once()
	m.flight.On("Search", mock.Anything, solo).Return(sampleFlights, nil).Once()
	m.hotel.On("Search", mock.Anything, solo).Return(sampleHotels, nil).Once()

	req := tokyoRequest()
	req.PartySize = 0
	data, err := NewService(m.providers(), itinerary.NewSynthesizer(nil, discardLogger()), discardLogger()).
		Aggregate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, data.PartySize)
	m.poi.AssertExpectations(t)
	m.weather.AssertExpectations(t)
	m.flight.AssertExpectations(t)
	m.hotel.AssertExpectations(t)
}

func TestService_Aggregate_ProviderFailure(t *testing.T) {
	populated := map[string]func(*types.AggregatedTripData) int{
		"poi":     func(d *types.AggregatedTripData) int { return len(d.POIs) },
		"weather": func(d *types.AggregatedTripData) int { return len(d.Weather) },
		"flight":  func(d *types.AggregatedTripData) int { return len(d.Flights) },
		"hotel":   func(d *types.AggregatedTripData) int { return len(d.Hotels) },
	}

	tests := []struct {
		name   string
		failed string
		panics bool
	}{
		{"poi error", "poi", false},
		{"poi panic", "poi", true},
		{"weather error", "weather", false},
		{"weather panic", "weather", true},
		{"flight error", "flight", false},
		{"flight panic", "flight", true},
		{"hotel error", "hotel", false},
		{"hotel panic", "hotel", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			unavailable := apperr.Unavailable(tt.failed+".Search", assert.AnError)
			m.poi.On("Search", mock.Anything, mock.Anything).Return(samplePOIs, nil)
			m.weather.On("Search", mock.Anything, mock.Anything).Return(sampleWeather, nil)
			m.flight.On("Search", mock.Anything, mock.Anything).Return(sampleFlights, nil)
			m.hotel.On("Search", mock.Anything, mock.Anything).Return(sampleHotels, nil)

			providers := m.providers()
			switch tt.failed {
			case "poi":
				providers.POI = failingProvider[types.NormalizedPOI](tt.panics, unavailable)
			case "weather":
				providers.Weather = failingProvider[types.DailyWeather](tt.panics, unavailable)
			case "flight":
				providers.Flight = failingProvider[types.NormalizedFlightOption](tt.panics, unavailable)
			case "hotel":
				providers.Hotel = failingProvider[types.NormalizedHotelOption](tt.panics, unavailable)
			}

			data, err := NewService(providers, itinerary.NewSynthesizer(nil, discardLogger()), discardLogger()).
				Aggregate(context.Background(), tokyoRequest())
			require.NoError(t, err)

			for name, count := range populated {
				status, ok := lookupStatus(data.Providers, name)
				require.True(t, ok, name)
				if name == tt.failed {
					assert.False(t, status.OK)
					assert.NotEmpty(t, status.Error)
					assert.Zero(t, count(data))
					continue
				}
				assert.True(t, status.OK, name)
				assert.Equal(t, 2, count(data), name)
			}
			assert.NotNil(t, data.POIs)
			assert.NotNil(t, data.Weather)
			assert.NotNil(t, data.Flights)
			assert.NotNil(t, data.Hotels)

			require.Len(t, data.Schedule, 3)
			for _, day := range data.Schedule {
				assert.NotEmpty(t, day.Events, day.Date)
				for _, e := range day.Events {
					assert.NotEmpty(t, e.Description)
					if tt.failed == "poi" {
						assert.Nil(t, e.PlaceName, "nothing to bind without POIs")
					}
				}
			}
			assert.Len(t, data.Schedule[1].Events, 5)
		})
	}
}

// failingProvider returns a client that panics or fails every search with err.
func failingProvider[T any](panics bool, err error) types.ProviderClient[T] {
	if panics {
		return panickingProvider[T]{}
	}
	p := new(MockProvider[T])
	p.On("Search", mock.Anything, mock.Anything).Return(nil, err)
	return p
}

func lookupStatus(statuses []types.ProviderStatus, name string) (types.ProviderStatus, bool) {
	for _, s := range statuses {
		if s.Provider == name {
			return s, true
		}
	}
	return types.ProviderStatus{}, false
}
