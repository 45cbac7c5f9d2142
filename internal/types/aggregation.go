package types

// AggregatedTripData is the single output of an aggregation call.
type AggregatedTripData struct {
	RequestID   string  `json:"request_id"`
	Destination string  `json:"destination"`
	Origin      string  `json:"origin,omitempty"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Nights      int     `json:"trip_duration_nights"`
	PartySize   int     `json:"party_size"`
	IsDomestic  bool    `json:"is_domestic"`
	Budget      *Budget `json:"budget_per_person,omitempty"`

	POIs     []NormalizedPOI          `json:"poi_list"`
	Weather  WeatherByDate            `json:"weather"`
	Flights  []NormalizedFlightOption `json:"flights"`
	Hotels   []NormalizedHotelOption  `json:"hotels"`
	Schedule []ScheduleDay            `json:"schedule"`

	// RecommendedFlight and RecommendedHotel point at the first candidate, if any.
	RecommendedFlight *NormalizedFlightOption `json:"flight_quote,omitempty"`
	RecommendedHotel  *NormalizedHotelOption  `json:"hotel_quote,omitempty"`

	Providers []ProviderStatus `json:"providers"`
}
