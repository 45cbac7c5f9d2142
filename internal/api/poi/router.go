// Package poi searches points of interest through Kakao Local for domestic
// trips and Google Places for everything else.
package poi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

const (
	Name    = "poi"
	perTerm = 7
)

// category is one of the keyword searches run for every destination.
type category struct {
	Term   string
	Bucket types.POIBucket
}

var categories = []category{
	{Term: "관광명소", Bucket: types.BucketAttraction},
	{Term: "맛집", Bucket: types.BucketDining},
	{Term: "카페", Bucket: types.BucketCafe},
}

// bucketLabel is the category term searched for bucket b. Google results are
// labelled with it so the label always agrees with the bucket.
func bucketLabel(b types.POIBucket) string {
	c, _ := lo.Find(categories, func(c category) bool { return c.Bucket == b })
	return c.Term
}

var _ types.ProviderClient[types.NormalizedPOI] = (*Router)(nil)

// Router sends a search to the domestic or international backend according
// to TripCriteria.IsDomestic.
type Router struct {
	domestic      types.ProviderClient[types.NormalizedPOI]
	international types.ProviderClient[types.NormalizedPOI]
	logger        *slog.Logger
}

func NewRouter(domestic, international types.ProviderClient[types.NormalizedPOI], logger *slog.Logger) *Router {
	return &Router{
		domestic:      domestic,
		international: international,
		logger:        logger,
	}
}

func (r *Router) Search(ctx context.Context, criteria types.TripCriteria) ([]types.NormalizedPOI, error) {
	ctx, span := otel.Tracer("POIRouter").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("destination", criteria.Destination),
		attribute.Bool("is_domestic", criteria.IsDomestic),
	))
	defer span.End()

	if criteria.IsDomestic {
		return r.domestic.Search(ctx, criteria)
	}
	return r.international.Search(ctx, criteria)
}

// searchFunc runs one keyword query against a backend.
type searchFunc func(ctx context.Context, query string, cat category) ([]types.NormalizedPOI, error)

// searchCategories runs every category query concurrently and merges the
// results in category order, dropping repeated names. A failing query only
// loses its own results; the call fails only when every query failed.
func searchCategories(ctx context.Context, logger *slog.Logger, destination string, search searchFunc) ([]types.NormalizedPOI, error) {
	results := make([][]types.NormalizedPOI, len(categories))
	errs := make([]error, len(categories))

	var g errgroup.Group
	for i, cat := range categories {
		g.Go(func() error {
			pois, err := search(ctx, destination+" "+cat.Term, cat)
			if err != nil {
				logger.WarnContext(ctx, "POI category search failed",
					slog.String("category", cat.Term), slog.Any("error", err))
				errs[i] = err
				return nil
			}
			results[i] = pois
			return nil
		})
	}
	_ = g.Wait()

	if lo.EveryBy(errs, func(err error) bool { return err != nil }) {
		return nil, errors.Join(errs...)
	}

	merged := lo.UniqBy(lo.Flatten(results), func(p types.NormalizedPOI) string {
		return p.Name
	})
	return lo.Filter(merged, func(p types.NormalizedPOI, _ int) bool {
		return p.Name != ""
	}), nil
}

// aliasCoords sets Lat/Lng to the same values as Latitude/Longitude.
func aliasCoords(p *types.NormalizedPOI) {
	p.Lat, p.Lng = p.Latitude, p.Longitude
}
