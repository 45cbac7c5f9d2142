// Package flight searches round-trip fares on the Agoda flights API (RapidAPI).
package flight

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-aggregator/config"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/exchange"
	generativeAI "github.com/FACorreiaa/go-trip-aggregator/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/normalize"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/upstream"
	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

const (
	Name       = "flight"
	vendor     = "Agoda Flights"
	maxBundles = 10
)

var (
	bareCode      = regexp.MustCompile(`^[A-Z]{3}$`)
	embeddedCode  = regexp.MustCompile(`\(([A-Z]{3})\)`)
	parenthesised = regexp.MustCompile(`\([^)]*\)`)
)

var _ types.ProviderClient[types.NormalizedFlightOption] = (*Client)(nil)

type Client struct {
	http   *upstream.Client
	rates  exchange.RateProvider
	llm    generativeAI.TextGenerator
	logger *slog.Logger
}

// NewClient builds the flight client. llm may be nil, in which case airport
// codes are resolved by pattern and auto-complete only.
func NewClient(cfg config.Provider, rates exchange.RateProvider, llm generativeAI.TextGenerator, logger *slog.Logger, opts ...upstream.Option) *Client {
	host := cfg.Host
	if host == "" {
		host = "agoda-com-flight.p.rapidapi.com"
	}
	opts = append([]upstream.Option{
		upstream.WithHeader("x-rapidapi-key", cfg.APIKey),
		upstream.WithHeader("x-rapidapi-host", host),
	}, opts...)
	return &Client{
		http:   upstream.New(Name, cfg, logger, opts...),
		rates:  rates,
		llm:    llm,
		logger: logger,
	}
}

type autoCompleteResponse struct {
	Data []struct {
		Code          string         `json:"code"`
		TripLocations []locationCode `json:"tripLocations"`
		Airports      []locationCode `json:"airports"`
	} `json:"data"`
}

type locationCode struct {
	Code string `json:"code"`
}

type searchResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Bundles []bundle `json:"bundles"`
	} `json:"data"`
}

type bundle struct {
	BundlePrice []struct {
		Price struct {
			USD struct {
				Display struct {
					PerBook struct {
						AllInclusive float64 `json:"allInclusive"`
					} `json:"perBook"`
				} `json:"display"`
			} `json:"usd"`
		} `json:"price"`
	} `json:"bundlePrice"`
	Itineraries []struct {
		ItineraryInfo struct {
			ID                any `json:"id"`
			TotalTripDuration int `json:"totalTripDuration"`
		} `json:"itineraryInfo"`
	} `json:"itineraries"`
	OutboundSlice *flightSlice `json:"outboundSlice"`
	InboundSlice  *flightSlice `json:"inboundSlice"`
}

type flightSlice struct {
	Segments []segment `json:"segments"`
}

type segment struct {
	DepartDateTime  string `json:"departDateTime"`
	ArrivalDateTime string `json:"arrivalDateTime"`
	CarrierContent  struct {
		CarrierName string `json:"carrierName"`
	} `json:"carrierContent"`
}

// Search resolves both airport codes and returns up to ten round-trip offers
// priced in KRW. A missing or unresolvable code skips the search and yields
// an empty list rather than an error.
func (c *Client) Search(ctx context.Context, criteria types.TripCriteria) ([]types.NormalizedFlightOption, error) {
	ctx, span := otel.Tracer("FlightClient").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("origin", criteria.Origin),
		attribute.String("destination", criteria.Destination),
	))
	defer span.End()

	if criteria.Origin == "" && criteria.OriginCode == "" {
		c.logger.InfoContext(ctx, "No origin given, skipping flight search")
		span.SetStatus(codes.Ok, "no origin")
		return []types.NormalizedFlightOption{}, nil
	}

	origin := c.resolveIATA(ctx, criteria.Origin, criteria.OriginCode)
	destination := c.resolveIATA(ctx, criteria.Destination, criteria.DestinationCode)
	if origin == "" || destination == "" {
		c.logger.WarnContext(ctx, "Could not resolve airport codes, skipping flight search",
			slog.String("origin", criteria.Origin),
			slog.String("destination", criteria.Destination))
		span.SetStatus(codes.Ok, "identifiers unresolved")
		return []types.NormalizedFlightOption{}, nil
	}
	span.SetAttributes(attribute.String("origin_code", origin), attribute.String("destination_code", destination))


	var resp searchResponse
	err := c.http.GetJSON(ctx, "/api/v1/flights/search-roundtrip", url.Values{
		"origin":        {origin},
		"destination":   {destination},
		"departureDate": {criteria.StartDate.Format(types.DateLayout)},
		"returnDate":    {criteria.EndDate.Format(types.DateLayout)},
		"adults":        {strconv.Itoa(criteria.PartySize)},
		"children":      {"0"},
		"infants":       {"0"},
		"cabinClass":    {"ECONOMY"},
		"currency":      {"USD"},
		"market":        {"en-us"},
		"countryCode":   {"US"},
	}, &resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	if !resp.Status || len(resp.Data.Bundles) == 0 {
		span.SetStatus(codes.Ok, "no bundles")
		return []types.NormalizedFlightOption{}, nil
	}

	bundles := resp.Data.Bundles
	if len(bundles) > maxBundles {
		bundles = bundles[:maxBundles]
	}
	quote := c.rates.Rate(ctx, "USD", "")

	flights := make([]types.NormalizedFlightOption, 0, len(bundles))
	for i, b := range bundles {
		if len(b.Itineraries) == 0 {
			continue
		}
		flights = append(flights, toOption(b, i, origin, destination, quote.Rate))
	}

	span.SetAttributes(attribute.Int("results", len(flights)))
	span.SetStatus(codes.Ok, "flights found")
	return flights, nil
}

func toOption(b bundle, index int, origin, destination string, usdRate float64) types.NormalizedFlightOption {
	info := b.Itineraries[0].ItineraryInfo
	id := idString(info.ID)
	if id == "" {
		id = fmt.Sprintf("%s-%s-%d", origin, destination, index+1)
	}

	var usd float64
	if len(b.BundlePrice) > 0 {
		usd = b.BundlePrice[0].Price.USD.Display.PerBook.AllInclusive
	}

	opt := types.NormalizedFlightOption{
		ID:          id,
		Vendor:      vendor,
		Airline:     "Unknown",
		Origin:      origin,
		Destination: destination,
		Price:       normalize.Convert(usd, usdRate),
		Currency:    "KRW",
		DurationMin: info.TotalTripDuration,
	}

	if b.OutboundSlice != nil && len(b.OutboundSlice.Segments) > 0 {
		segs := b.OutboundSlice.Segments
		opt.Segments = len(segs)
		opt.OutboundDepartureTime = nonEmpty(segs[0].DepartDateTime)
		opt.OutboundArrivalTime = nonEmpty(segs[len(segs)-1].ArrivalDateTime)
		if name := segs[0].CarrierContent.CarrierName; name != "" {
			opt.Airline = name
		}
	}
	if b.InboundSlice != nil && len(b.InboundSlice.Segments) > 0 {
		segs := b.InboundSlice.Segments
		opt.InboundDepartureTime = nonEmpty(segs[0].DepartDateTime)
		opt.InboundArrivalTime = nonEmpty(segs[len(segs)-1].ArrivalDateTime)
	}
	return opt
}

// resolveIATA maps a place to an airport code: explicit hint, bare code,
// "(XXX)" inside the name, a text-generation guess, then auto-complete.
// It returns "" when nothing matches.
func (c *Client) resolveIATA(ctx context.Context, place, hint string) string {
	if code := strings.ToUpper(strings.TrimSpace(hint)); bareCode.MatchString(code) {
		return code
	}
	place = strings.TrimSpace(place)
	if place == "" {
		return ""
	}
	if bareCode.MatchString(place) {
		return place
	}
	if m := embeddedCode.FindStringSubmatch(place); m != nil {
		return m[1]
	}
	if code := c.guessIATA(ctx, place); code != "" {
		return code
	}
	return c.autoComplete(ctx, place)
}

const iataPrompt = `Identify the 3-letter IATA code of the main international airport serving %q.
Respond with a single JSON object and nothing else: {"iata": "XXX"}`

func (c *Client) guessIATA(ctx context.Context, place string) string {
	if c.llm == nil {
		return ""
	}
	text, err := c.llm.GenerateContent(ctx, fmt.Sprintf(iataPrompt, place), nil)
	if err != nil {
		c.logger.DebugContext(ctx, "IATA guess failed", slog.String("place", place), slog.Any("error", err))
		return ""
	}
	var out struct {
		IATA string `json:"iata"`
	}
	if err := json.Unmarshal([]byte(generativeAI.CleanJSONObject(text)), &out); err != nil {
		c.logger.DebugContext(ctx, "IATA guess was not JSON", slog.String("place", place), slog.Any("error", err))
		return ""
	}
	code := strings.ToUpper(strings.TrimSpace(out.IATA))
	if !bareCode.MatchString(code) {
		return ""
	}
	return code
}

func (c *Client) autoComplete(ctx context.Context, place string) string {
	query := strings.TrimSpace(parenthesised.ReplaceAllString(place, ""))
	if i := strings.IndexAny(query, "/,"); i >= 0 {
		query = strings.TrimSpace(query[:i])
	}
	if query == "" {
		return ""
	}

	var resp autoCompleteResponse
	if err := c.http.GetJSON(ctx, "/api/v1/flights/auto-complete", url.Values{"query": {query}}, &resp); err != nil {
		c.logger.WarnContext(ctx, "Airport auto-complete failed", slog.String("query", query), slog.Any("error", err))
		return ""
	}
	if len(resp.Data) == 0 {
		return ""
	}
	first := resp.Data[0]
	switch {
	case first.Code != "":
		return first.Code
	case len(first.TripLocations) > 0 && first.TripLocations[0].Code != "":
		return first.TripLocations[0].Code
	case len(first.Airports) > 0:
		return first.Airports[0].Code
	}
	return ""
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return ""
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
