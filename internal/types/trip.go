package types

import "time"

// TripStyle is the traveller's preferred pace and focus.
type TripStyle string

const (
	StyleSightseeing TripStyle = "sightseeing"
	StyleFoodie      TripStyle = "foodie"
	StyleRelaxation  TripStyle = "relaxation"
	StyleActivity    TripStyle = "activity"
	StyleShopping    TripStyle = "shopping"
)

const DateLayout = "2006-01-02"

type Budget struct {
	Amount   float64 `json:"amount" validate:"gte=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
}

// TripRequest is the wire form sent by the calling backend.
type TripRequest struct {
	RequestID       string    `json:"request_id,omitempty"`
	Destination     string    `json:"destination" validate:"required"`
	DestinationCode string    `json:"destination_code,omitempty" validate:"omitempty,len=3,alpha"`
	Origin          string    `json:"origin,omitempty"`
	OriginCode      string    `json:"origin_code,omitempty" validate:"omitempty,len=3,alpha"`
	StartDate       string    `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string    `json:"end_date" validate:"required,datetime=2006-01-02"`
	PartySize       int       `json:"party_size,omitempty" validate:"omitempty,gte=1,lte=20"`
	IsDomestic      bool      `json:"is_domestic"`
	Style           TripStyle `json:"style,omitempty" validate:"omitempty,oneof=sightseeing foodie relaxation activity shopping"`
	Interests       []string  `json:"interests,omitempty"`
	BudgetPerPerson *Budget   `json:"budget_per_person,omitempty"`
}

// TripCriteria is a validated, immutable TripRequest with parsed dates.
// Every provider and itinerary step works from this value.
type TripCriteria struct {
	RequestID       string
	Destination     string
	DestinationCode string
	Origin          string
	OriginCode      string
	StartDate       time.Time
	EndDate         time.Time
	// PartySize is at least 1.
	PartySize       int
	IsDomestic      bool
	Style           TripStyle
	Interests       []string
	BudgetPerPerson *Budget
}

// Days is the inclusive number of calendar days in the trip.
func (c TripCriteria) Days() int {
	return c.Nights() + 1
}

func (c TripCriteria) Nights() int {
	return int(c.EndDate.Sub(c.StartDate).Hours() / 24)
}

// Dates lists every calendar day of the trip in order.
func (c TripCriteria) Dates() []time.Time {
	dates := make([]time.Time, 0, c.Days())
	for d := c.StartDate; !d.After(c.EndDate); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
