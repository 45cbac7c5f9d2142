package types

import (
	"context"
	"time"
)

// ProviderClient is the uniform search contract implemented by every upstream client.
type ProviderClient[T any] interface {
	Search(ctx context.Context, criteria TripCriteria) ([]T, error)
}

// ProviderResult carries either the records or the failure reason of one provider call.
// It never lets an error escape the aggregation fan-out.
type ProviderResult[T any] struct {
	Provider string
	Records  []T
	Err      error
	Duration time.Duration
}

func (r ProviderResult[T]) OK() bool {
	return r.Err == nil
}

// Status summarises the result for the response payload.
func (r ProviderResult[T]) Status() ProviderStatus {
	s := ProviderStatus{
		Provider:   r.Provider,
		OK:         r.OK(),
		Count:      len(r.Records),
		DurationMs: r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		s.Error = r.Err.Error()
	}
	return s
}

type ProviderStatus struct {
	Provider   string `json:"provider"`
	OK         bool   `json:"ok"`
	Count      int    `json:"count"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}
