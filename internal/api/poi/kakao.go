package poi

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-aggregator/config"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/normalize"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/upstream"
	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

var _ types.ProviderClient[types.NormalizedPOI] = (*KakaoClient)(nil)

// KakaoClient queries the Kakao Local keyword search API.
type KakaoClient struct {
	http   *upstream.Client
	logger *slog.Logger
}

func NewKakaoClient(cfg config.Provider, logger *slog.Logger, opts ...upstream.Option) *KakaoClient {
	opts = append([]upstream.Option{upstream.WithHeader("Authorization", "KakaoAK "+cfg.APIKey)}, opts...)
	return &KakaoClient{
		http:   upstream.New("kakao_local", cfg, logger, opts...),
		logger: logger,
	}
}

type kakaoResponse struct {
	Documents []kakaoPlace `json:"documents"`
}

type kakaoPlace struct {
	PlaceName         string `json:"place_name"`
	CategoryGroupName string `json:"category_group_name"`
	CategoryName      string `json:"category_name"`
	AddressName       string `json:"address_name"`
	RoadAddressName   string `json:"road_address_name"`
	X                 string `json:"x"`
	Y                 string `json:"y"`
}

func (c *KakaoClient) Search(ctx context.Context, criteria types.TripCriteria) ([]types.NormalizedPOI, error) {
	ctx, span := otel.Tracer("KakaoLocalClient").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("destination", criteria.Destination),
	))
	defer span.End()

	pois, err := searchCategories(ctx, c.logger, criteria.Destination, c.keywordSearch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "all category searches failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("results", len(pois)))
	span.SetStatus(codes.Ok, "POIs found")
	return pois, nil
}

func (c *KakaoClient) keywordSearch(ctx context.Context, query string, cat category) ([]types.NormalizedPOI, error) {
	var resp kakaoResponse
	err := c.http.GetJSON(ctx, "/search/keyword.json", url.Values{
		"query": {query},
		"size":  {strconv.Itoa(perTerm)},
	}, &resp)
	if err != nil {
		return nil, err
	}

	return lo.Map(resp.Documents, func(p kakaoPlace, _ int) types.NormalizedPOI {
		return kakaoToPOI(p, cat)
	}), nil
}

// kakaoToPOI converts a keyword search document. Kakao has no ratings and
// sends coordinates as strings with y as latitude.
func kakaoToPOI(p kakaoPlace, cat category) types.NormalizedPOI {
	label := p.CategoryGroupName
	if label == "" {
		label = cat.Term
	}
	vicinity := p.AddressName
	if vicinity == "" {
		vicinity = p.RoadAddressName
	}
	lat, lng := normalize.LatLng(p.Y, p.X)

	poi := types.NormalizedPOI{
		Name:      p.PlaceName,
		Category:  label,
		Bucket:    normalize.Bucket(label, p.CategoryName),
		Vicinity:  vicinity,
		Source:    "kakao",
		Latitude:  lat,
		Longitude: lng,
	}
	aliasCoords(&poi)
	return poi
}
