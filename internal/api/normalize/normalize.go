// Package normalize turns the loosely typed values found in upstream payloads
// into the canonical numeric and categorical forms used across the service.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

// Price converts a price in any upstream shape ("150,000", "₩150,000원",
// 150000.0, json.Number) into a non-negative whole amount. Applying it to its
// own output returns the same value.
func Price(v any) int64 {
	var f float64
	switch p := v.(type) {
	case nil:
		return 0
	case int:
		f = float64(p)
	case int64:
		f = float64(p)
	case float64:
		f = p
	case float32:
		f = float64(p)
	case json.Number:
		parsed, err := p.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		f = parsePriceString(p)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	return int64(math.Round(f))
}

func parsePriceString(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r), r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

// Convert applies an exchange rate and rounds to a whole amount.
func Convert(amount, rate float64) int64 {
	if amount <= 0 || rate <= 0 {
		return 0
	}
	return Price(amount * rate)
}

// Coordinate parses a latitude or longitude given as a number or a numeric
// string (Kakao returns "37.5665"). Unparsable values yield nil.
func Coordinate(v any) *float64 {
	var f float64
	switch c := v.(type) {
	case float64:
		f = c
	case *float64:
		if c == nil {
			return nil
		}
		f = *c
	case json.Number:
		parsed, err := c.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// LatLng validates a coordinate pair. Both are nil unless the pair is in range
// and not the 0,0 placeholder some upstreams emit for unknown locations.
func LatLng(lat, lng any) (*float64, *float64) {
	la, lo := Coordinate(lat), Coordinate(lng)
	if la == nil || lo == nil {
		return nil, nil
	}
	if *la < -90 || *la > 90 || *lo < -180 || *lo > 180 {
		return nil, nil
	}
	if *la == 0 && *lo == 0 {
		return nil, nil
	}
	return la, lo
}

// Rating clamps a rating to the 0..5 range.
func Rating(v any) float64 {
	var f float64
	switch r := v.(type) {
	case float64:
		f = r
	case int:
		f = float64(r)
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(r), 64)
	default:
		return 0
	}
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 5:
		return 5
	}
	return f
}

var (
	diningKeywords = []string{"restaurant", "food", "meal_takeaway", "meal_delivery", "bakery", "음식점", "맛집", "식당"}
	cafeKeywords   = []string{"cafe", "coffee", "카페", "커피"}
)

// Bucket classifies a POI from its free-text category and any upstream type tags.
// Cafe is checked first so "cafe restaurant" style tags land in the cafe bucket.
func Bucket(category string, tags ...string) types.POIBucket {
	haystack := strings.ToLower(category + " " + strings.Join(tags, " "))
	for _, kw := range cafeKeywords {
		if strings.Contains(haystack, kw) {
			return types.BucketCafe
		}
	}
	for _, kw := range diningKeywords {
		if strings.Contains(haystack, kw) {
			return types.BucketDining
		}
	}
	return types.BucketAttraction
}

// Currency upper-cases a currency code, defaulting to KRW.
func Currency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "KRW"
	}
	return code
}
