package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"comma grouped string", "150,000", 150000},
		{"currency symbols", "₩150,000원", 150000},
		{"decimal string rounds", "1,234.56", 1235},
		{"float", 150000.0, 150000},
		{"int", 42, 42},
		{"json number", json.Number("99.4"), 99},
		{"negative clamps to zero", -10.0, 0},
		{"negative string clamps to zero", "-5,000", 0},
		{"garbage", "free", 0},
		{"nil", nil, 0},
		{"unsupported type", []int{1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Price(tt.in))
		})
	}
}

func TestPrice_Idempotent(t *testing.T) {
	for _, in := range []any{"150,000", "₩1,234.5", 77.7, "0"} {
		once := Price(in)
		assert.Equal(t, once, Price(once), "input %v", in)
		assert.Equal(t, once, Price(Price(once)), "input %v", in)
	}
}

func TestConvert(t *testing.T) {
	assert.Equal(t, int64(130000), Convert(100, 1300))
	assert.Equal(t, int64(0), Convert(0, 1300))
	assert.Equal(t, int64(0), Convert(100, 0))
}

func TestCoordinate(t *testing.T) {
	lat := Coordinate("37.5665")
	require.NotNil(t, lat)
	assert.InDelta(t, 37.5665, *lat, 1e-9)

	assert.Nil(t, Coordinate("north"))
	assert.Nil(t, Coordinate(nil))
	assert.Nil(t, Coordinate((*float64)(nil)))
}

func TestLatLng(t *testing.T) {
	t.Run("valid pair", func(t *testing.T) {
		la, lo := LatLng(35.6762, "139.6503")
		require.NotNil(t, la)
		require.NotNil(t, lo)
		assert.InDelta(t, 139.6503, *lo, 1e-9)
	})

	t.Run("out of range", func(t *testing.T) {
		la, lo := LatLng(95.0, 10.0)
		assert.Nil(t, la)
		assert.Nil(t, lo)
	})

	t.Run("null island", func(t *testing.T) {
		la, lo := LatLng(0.0, 0.0)
		assert.Nil(t, la)
		assert.Nil(t, lo)
	})

	t.Run("half missing", func(t *testing.T) {
		la, lo := LatLng(35.0, nil)
		assert.Nil(t, la)
		assert.Nil(t, lo)
	})
}

func TestRating(t *testing.T) {
	assert.Equal(t, 4.5, Rating(4.5))
	assert.Equal(t, 5.0, Rating(7.0))
	assert.Equal(t, 0.0, Rating(-1.0))
	assert.Equal(t, 3.0, Rating("3"))
	assert.Equal(t, 0.0, Rating(nil))
}

func TestBucket(t *testing.T) {
	tests := []struct {
		category string
		tags     []string
		want     types.POIBucket
	}{
		{"", []string{"restaurant", "food", "point_of_interest"}, types.BucketDining},
		{"", []string{"cafe", "food", "establishment"}, types.BucketCafe},
		{"", []string{"museum", "tourist_attraction"}, types.BucketAttraction},
		{"음식점", nil, types.BucketDining},
		{"카페", nil, types.BucketCafe},
		{"관광명소", nil, types.BucketAttraction},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Bucket(tt.category, tt.tags...), "%q %v", tt.category, tt.tags)
	}
}

func TestCurrency(t *testing.T) {
	assert.Equal(t, "USD", Currency(" usd "))
	assert.Equal(t, "KRW", Currency(""))
}
