package types

// POIBucket is the coarse grouping used for prompt selection and slot binding.
type POIBucket string

const (
	BucketDining     POIBucket = "dining"
	BucketCafe       POIBucket = "cafe"
	BucketAttraction POIBucket = "attraction"
)

type NormalizedPOI struct {
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Bucket   POIBucket `json:"bucket"`
	Rating   float64   `json:"rating"`
	Vicinity string    `json:"vicinity,omitempty"`
	Source   string    `json:"source,omitempty"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	// Lat and Lng mirror Latitude and Longitude for consumers using the short names.
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// IsDining reports whether the POI belongs in the meal queue.
func (p NormalizedPOI) IsDining() bool {
	return p.Bucket == BucketDining || p.Bucket == BucketCafe
}

// Label is the text placed in front of a bound event description.
func (p NormalizedPOI) Label() string {
	if p.Category != "" {
		return p.Category
	}
	return string(p.Bucket)
}
