package aggregation

import (
	"strings"

	"github.com/samber/lo"

	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

// dedupePOIs keeps the first POI seen for each name and makes sure the long
// and short coordinate fields agree.
func dedupePOIs(pois []types.NormalizedPOI) []types.NormalizedPOI {
	named := lo.Filter(pois, func(p types.NormalizedPOI, _ int) bool {
		return strings.TrimSpace(p.Name) != ""
	})
	unique := lo.UniqBy(named, func(p types.NormalizedPOI) string {
		return strings.ToLower(strings.TrimSpace(p.Name))
	})
	return lo.Map(unique, func(p types.NormalizedPOI, _ int) types.NormalizedPOI {
		return aliasCoordinates(p)
	})
}

func aliasCoordinates(p types.NormalizedPOI) types.NormalizedPOI {
	if p.Latitude == nil {
		p.Latitude = p.Lat
	}
	if p.Longitude == nil {
		p.Longitude = p.Lng
	}
	p.Lat = p.Latitude
	p.Lng = p.Longitude
	return p
}

func weatherByDate(days []types.DailyWeather) types.WeatherByDate {
	return lo.SliceToMap(days, func(d types.DailyWeather) (string, types.DailyWeather) {
		return d.Date, d
	})
}

// recommendFirst copies the candidates and flags the first one. The order
// the provider returned is kept.
func recommendFirst[T any](candidates []T, mark func(*T)) []T {
	out := append([]T{}, candidates...)
	if len(out) > 0 {
		mark(&out[0])
	}
	return out
}
