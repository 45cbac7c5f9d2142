package poi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-aggregator/app/apperr"
	"github.com/FACorreiaa/go-trip-aggregator/config"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/normalize"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/upstream"
	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

var _ types.ProviderClient[types.NormalizedPOI] = (*GoogleClient)(nil)

// GoogleClient queries the Places Text Search API.
type GoogleClient struct {
	http   *upstream.Client
	apiKey string
	logger *slog.Logger
}

func NewGoogleClient(cfg config.Provider, logger *slog.Logger, opts ...upstream.Option) *GoogleClient {
	return &GoogleClient{
		http:   upstream.New("google_places", cfg, logger, opts...),
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

type googleResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []googlePlace `json:"results"`
}

type googlePlace struct {
	Name             string   `json:"name"`
	Types            []string `json:"types"`
	Rating           float64  `json:"rating"`
	Vicinity         string   `json:"vicinity"`
	FormattedAddress string   `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func (c *GoogleClient) Search(ctx context.Context, criteria types.TripCriteria) ([]types.NormalizedPOI, error) {
	ctx, span := otel.Tracer("GooglePlacesClient").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("destination", criteria.Destination),
	))
	defer span.End()

	pois, err := searchCategories(ctx, c.logger, criteria.Destination, c.textSearch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "all category searches failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("results", len(pois)))
	span.SetStatus(codes.Ok, "POIs found")
	return pois, nil
}

func (c *GoogleClient) textSearch(ctx context.Context, query string, cat category) ([]types.NormalizedPOI, error) {
	var resp googleResponse
	err := c.http.GetJSON(ctx, "/textsearch/json", url.Values{
		"query":    {query},
		"key":      {c.apiKey},
		"language": {"ko"},
		"region":   {"KR"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	switch resp.Status {
	case "OK", "":
	case "ZERO_RESULTS":
		return []types.NormalizedPOI{}, nil
	default:
		return nil, apperr.Unavailable("google_places.textSearch",
			fmt.Errorf("status %s: %s", resp.Status, resp.ErrorMessage))
	}

	places := resp.Results
	if len(places) > perTerm {
		places = places[:perTerm]
	}
	return lo.Map(places, func(p googlePlace, _ int) types.NormalizedPOI {
		return googleToPOI(p, cat)
	}), nil
}

func googleToPOI(p googlePlace, cat category) types.NormalizedPOI {
	bucket := cat.Bucket
	if len(p.Types) > 0 {
		bucket = normalize.Bucket("", p.Types...)
	}
	vicinity := p.Vicinity
	if vicinity == "" {
		vicinity = p.FormattedAddress
	}
	lat, lng := normalize.LatLng(p.Geometry.Location.Lat, p.Geometry.Location.Lng)

	poi := types.NormalizedPOI{
		Name:      p.Name,
		Category:  bucketLabel(bucket),
		Bucket:    bucket,
		Rating:    normalize.Rating(p.Rating),
		Vicinity:  vicinity,
		Source:    "google",
		Latitude:  lat,
		Longitude: lng,
	}
	aliasCoords(&poi)
	return poi
}
