package types

// NormalizedFlightOption is one round-trip offer. Prices are whole units of Currency.
type NormalizedFlightOption struct {
	ID          string `json:"id"`
	Vendor      string `json:"vendor"`
	Airline     string `json:"airline"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	DurationMin int    `json:"duration_minutes,omitempty"`
	Segments    int    `json:"segments"`
	Recommended bool   `json:"recommended"`

	// Upstream local wall-clock timestamps, e.g. "2025-12-04T10:30:00".
	OutboundDepartureTime *string `json:"outbound_departure_time"`
	OutboundArrivalTime   *string `json:"outbound_arrival_time"`
	InboundDepartureTime  *string `json:"inbound_departure_time"`
	InboundArrivalTime    *string `json:"inbound_arrival_time"`
}

type NormalizedHotelOption struct {
	ID          string   `json:"id"`
	Vendor      string   `json:"vendor"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Price       int64    `json:"price"`
	Currency    string   `json:"currency"`
	Rating      float64  `json:"rating"`
	Image       string   `json:"image,omitempty"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Recommended bool     `json:"recommended"`
}

// DailyWeather is the per-date summary of the forecast samples.
type DailyWeather struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Humidity    float64 `json:"humidity"`
	Wind        float64 `json:"wind"`
}

// WeatherByDate maps an ISO date to its forecast summary.
type WeatherByDate map[string]DailyWeather
