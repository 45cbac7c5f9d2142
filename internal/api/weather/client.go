// Package weather summarises the OpenWeatherMap 5 day / 3 hour forecast into
// one record per trip date.
package weather

import (
	"context"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/go-trip-aggregator/config"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/upstream"
	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

const Name = "weather"

var _ types.ProviderClient[types.DailyWeather] = (*Client)(nil)

type Client struct {
	http   *upstream.Client
	apiKey string
	logger *slog.Logger
}

func NewClient(cfg config.Provider, logger *slog.Logger, opts ...upstream.Option) *Client {
	return &Client{
		http:   upstream.New(Name, cfg, logger, opts...),
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

type geoResult struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type forecastResponse struct {
	List []sample `json:"list"`
}

type sample struct {
	DtTxt string `json:"dt_txt"`
	Main  struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Search geocodes the destination and returns one summary per trip date that
// the forecast covers. Dates beyond the forecast horizon are simply absent.
func (c *Client) Search(ctx context.Context, criteria types.TripCriteria) ([]types.DailyWeather, error) {
	ctx, span := otel.Tracer("WeatherClient").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("destination", criteria.Destination),
	))
	defer span.End()

	var places []geoResult
	err := c.http.GetJSON(ctx, "/geo/1.0/direct", url.Values{
		"q":     {criteria.Destination},
		"limit": {"1"},
		"appid": {c.apiKey},
	}, &places)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocoding failed")
		return nil, err
	}
	if len(places) == 0 {
		c.logger.InfoContext(ctx, "No coordinates for destination", slog.String("destination", criteria.Destination))
		span.SetStatus(codes.Ok, "destination not geocoded")
		return []types.DailyWeather{}, nil
	}

	var forecast forecastResponse
	err = c.http.GetJSON(ctx, "/data/2.5/forecast", url.Values{
		"lat":   {formatCoord(places[0].Lat)},
		"lon":   {formatCoord(places[0].Lon)},
		"appid": {c.apiKey},
		"units": {"metric"},
		"lang":  {"kr"},
	}, &forecast)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "forecast failed")
		return nil, err
	}

	days := summarise(forecast.List, criteria.StartDate, criteria.EndDate)
	span.SetAttributes(attribute.Int("days", len(days)))
	span.SetStatus(codes.Ok, "forecast summarised")
	return days, nil
}

// summarise groups samples by the date part of dt_txt and folds each group
// into a DailyWeather. Output is sorted by date.
func summarise(samples []sample, start, end time.Time) []types.DailyWeather {
	byDate := make(map[string][]sample)
	for _, s := range samples {
		date, _, _ := strings.Cut(s.DtTxt, " ")
		d, err := time.Parse(types.DateLayout, date)
		if err != nil || d.Before(start) || d.After(end) {
			continue
		}
		byDate[date] = append(byDate[date], s)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	// a Caser keeps state, so each call gets its own
	title := cases.Title(language.Und)
	out := make([]types.DailyWeather, 0, len(dates))
	for _, date := range dates {
		out = append(out, fold(title, date, byDate[date]))
	}
	return out
}

func fold(title cases.Caser, date string, group []sample) types.DailyWeather {
	var sumTemp, sumHumidity, sumWind float64
	minTemp, maxTemp := math.Inf(1), math.Inf(-1)
	conditions := make([]string, 0, len(group))
	descriptions := make([]string, 0, len(group))
	icons := make([]string, 0, len(group))

	for _, s := range group {
		sumTemp += s.Main.Temp
		sumHumidity += s.Main.Humidity
		sumWind += s.Wind.Speed
		minTemp = math.Min(minTemp, s.Main.TempMin)
		maxTemp = math.Max(maxTemp, s.Main.TempMax)
		if len(s.Weather) > 0 {
			conditions = append(conditions, s.Weather[0].Main)
			descriptions = append(descriptions, s.Weather[0].Description)
			icons = append(icons, s.Weather[0].Icon)
		}
	}
	n := float64(len(group))

	return types.DailyWeather{
		Date:        date,
		Temperature: round1(sumTemp / n),
		Min:         round1(minTemp),
		Max:         round1(maxTemp),
		Condition:   mode(conditions),
		Description: title.String(mode(descriptions)),
		Icon:        mode(icons),
		Humidity:    math.Round(sumHumidity / n),
		Wind:        round1(sumWind / n),
	}
}

// mode returns the most frequent value. On a tie the value that reached the
// count first wins.
func mode(values []string) string {
	counts := make(map[string]int, len(values))
	best, bestCount := "", 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
