// Package hotel searches overnight stays on the Agoda hotels API (RapidAPI).
package hotel

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-aggregator/config"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/exchange"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/normalize"
	"github.com/FACorreiaa/go-trip-aggregator/internal/api/upstream"
	"github.com/FACorreiaa/go-trip-aggregator/internal/types"
)

const (
	Name   = "hotel"
	vendor = "Agoda Hotels"
	limit  = 20
)

var _ types.ProviderClient[types.NormalizedHotelOption] = (*Client)(nil)

type Client struct {
	http   *upstream.Client
	rates  exchange.RateProvider
	logger *slog.Logger
}

func NewClient(cfg config.Provider, rates exchange.RateProvider, logger *slog.Logger, opts ...upstream.Option) *Client {
	host := cfg.Host
	if host == "" {
		host = "agoda-com.p.rapidapi.com"
	}
	opts = append([]upstream.Option{
		upstream.WithHeader("x-rapidapi-key", cfg.APIKey),
		upstream.WithHeader("x-rapidapi-host", host),
	}, opts...)
	return &Client{
		http:   upstream.New(Name, cfg, logger, opts...),
		rates:  rates,
		logger: logger,
	}
}

type autoCompleteResponse struct {
	Places []struct {
		ID     any `json:"id"`
		TypeID any `json:"typeId"`
	} `json:"places"`
	Data []struct {
		ID     any `json:"id"`
		Places []struct {
			ID any `json:"id"`
		} `json:"places"`
	} `json:"data"`
}

type searchResponse struct {
	Status *bool `json:"status"`
	Errors any   `json:"errors"`
	Data   *struct {
		CitySearch *struct {
			SearchResult struct {
				Properties []property `json:"properties"`
			} `json:"searchResult"`
			Properties []property `json:"properties"`
		} `json:"citySearch"`
		Properties []property `json:"properties"`
	} `json:"data"`
}

type property struct {
	PropertyID any `json:"propertyId"`
	Content    struct {
		InformationSummary struct {
			LocaleName  string  `json:"localeName"`
			DefaultName string  `json:"defaultName"`
			Rating      float64 `json:"rating"`
			Address     struct {
				Area struct {
					Name string `json:"name"`
				} `json:"area"`
			} `json:"address"`
			GeoInfo struct {
				Latitude  any `json:"latitude"`
				Longitude any `json:"longitude"`
			} `json:"geoInfo"`
		} `json:"informationSummary"`
		Images struct {
			HotelImages []struct {
				URLs []struct {
					Value string `json:"value"`
				} `json:"urls"`
			} `json:"hotelImages"`
		} `json:"images"`
	} `json:"content"`
	Pricing struct {
		Offers []struct {
			RoomOffers []struct {
				Room struct {
					Pricing []struct {
						Currency string `json:"currency"`
						Price    struct {
							PerRoomPerNight struct {
								Exclusive struct {
									Display float64 `json:"display"`
								} `json:"exclusive"`
							} `json:"perRoomPerNight"`
						} `json:"price"`
					} `json:"pricing"`
				} `json:"room"`
			} `json:"roomOffers"`
		} `json:"offers"`
	} `json:"pricing"`
}

// Search resolves the destination to an Agoda place id and returns up to 20
// properties ranked by Agoda, priced per room per night in KRW.
func (c *Client) Search(ctx context.Context, criteria types.TripCriteria) ([]types.NormalizedHotelOption, error) {
	ctx, span := otel.Tracer("HotelClient").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("destination", criteria.Destination),
	))
	defer span.End()

	placeID, err := c.placeID(ctx, criteria.Destination)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "place lookup failed")
		return nil, err
	}
	if placeID == "" {
		c.logger.WarnContext(ctx, "No Agoda place for destination, skipping hotel search",
			slog.String("destination", criteria.Destination))
		span.SetStatus(codes.Ok, "place unresolved")
		return []types.NormalizedHotelOption{}, nil
	}
	span.SetAttributes(attribute.String("place_id", placeID))


	var resp searchResponse
	err = c.http.GetJSON(ctx, "/hotels/search-overnight", url.Values{
		"id":           {placeID},
		"checkinDate":  {criteria.StartDate.Format(types.DateLayout)},
		"checkoutDate": {criteria.EndDate.Format(types.DateLayout)},
		"adult":        {strconv.Itoa(criteria.PartySize)},
		"currency":     {"KRW"},
		"language":     {"en-us"},
		"sort":         {"Ranking,Desc"},
		"limit":        {strconv.Itoa(limit)},
		"page":         {"1"},
	}, &resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	if (resp.Status != nil && !*resp.Status) || hasErrors(resp.Errors) {
		c.logger.WarnContext(ctx, "Agoda hotel search reported errors", slog.Any("errors", resp.Errors))
		span.SetStatus(codes.Ok, "upstream reported errors")
		return []types.NormalizedHotelOption{}, nil
	}

	props := resp.properties()
	var usdRate float64
	hotels := make([]types.NormalizedHotelOption, 0, len(props))
	for _, p := range props {
		amount, currency := p.nightlyPrice()
		if currency == "USD" && amount > 0 && usdRate == 0 {
			usdRate = c.rates.Rate(ctx, "USD", "").Rate
		}
		hotels = append(hotels, toOption(p, criteria.Destination, amount, currency, usdRate))
	}

	span.SetAttributes(attribute.Int("results", len(hotels)))
	span.SetStatus(codes.Ok, "hotels found")
	return hotels, nil
}

func (r searchResponse) properties() []property {
	if r.Data == nil {
		return nil
	}
	if cs := r.Data.CitySearch; cs != nil {
		if len(cs.SearchResult.Properties) > 0 {
			return cs.SearchResult.Properties
		}
		return cs.Properties
	}
	return r.Data.Properties
}

func (p property) nightlyPrice() (float64, string) {
	if len(p.Pricing.Offers) == 0 || len(p.Pricing.Offers[0].RoomOffers) == 0 {
		return 0, ""
	}
	pricing := p.Pricing.Offers[0].RoomOffers[0].Room.Pricing
	if len(pricing) == 0 {
		return 0, ""
	}
	currency := strings.ToUpper(pricing[0].Currency)
	if currency == "" {
		currency = "USD"
	}
	return pricing[0].Price.PerRoomPerNight.Exclusive.Display, currency
}

func toOption(p property, destination string, amount float64, currency string, usdRate float64) types.NormalizedHotelOption {
	info := p.Content.InformationSummary

	name := info.LocaleName
	if name == "" {
		name = info.DefaultName
	}
	location := info.Address.Area.Name
	if location == "" {
		location = destination
	}

	var price int64
	if currency == "USD" {
		price = normalize.Convert(amount, usdRate)
	} else {
		price = normalize.Price(amount)
	}

	var image string
	if imgs := p.Content.Images.HotelImages; len(imgs) > 0 && len(imgs[0].URLs) > 0 {
		image = imgs[0].URLs[0].Value
	}
	lat, lng := normalize.LatLng(info.GeoInfo.Latitude, info.GeoInfo.Longitude)

	return types.NormalizedHotelOption{
		ID:        idString(p.PropertyID),
		Vendor:    vendor,
		Name:      name,
		Location:  location,
		Price:     price,
		Currency:  "KRW",
		Rating:    normalize.Rating(info.Rating),
		Image:     image,
		Latitude:  lat,
		Longitude: lng,
	}
}

// placeID returns the Agoda search id for a destination, formatted
// "<typeId>_<id>" when the place carries a type. An empty id with a nil error
// means the destination is unknown to Agoda.
func (c *Client) placeID(ctx context.Context, destination string) (string, error) {
	query := destination
	if i := strings.IndexAny(query, "/,"); i >= 0 {
		query = query[:i]
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	var resp autoCompleteResponse
	err := c.http.GetJSON(ctx, "/hotels/auto-complete", url.Values{
		"query":    {query},
		"language": {"en-us"},
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Places) > 0 {
		id, typeID := idString(resp.Places[0].ID), idString(resp.Places[0].TypeID)
		switch {
		case id != "" && typeID != "":
			return typeID + "_" + id, nil
		case id != "":
			return id, nil
		}
	}
	for _, d := range resp.Data {
		if id := idString(d.ID); id != "" {
			return id, nil
		}
		if len(d.Places) > 0 {
			if id := idString(d.Places[0].ID); id != "" {
				return id, nil
			}
		}
	}
	return "", nil
}

func hasErrors(v any) bool {
	switch e := v.(type) {
	case nil:
		return false
	case []any:
		return len(e) > 0
	case map[string]any:
		return len(e) > 0
	case string:
		return e != ""
	case bool:
		return e
	}
	return true
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
