package exchange

import "context"

// RateSource defines the standard interface for external market-rate
// providers. FetchRate returns the quoted-per-USD rate for the given currency
// code; implementations must return an error for non-positive or malformed
// responses, never a zero rate.
type RateSource interface {
	GetName() string
	FetchRate(ctx context.Context, code string) (float64, error)
}

// RateUpdate is a single base-rate observation pushed by a streaming source.
type RateUpdate struct {
	Code      string
	RateToUSD float64
}

// StreamSource pushes continuous rate updates for a set of currency codes
// until the context is cancelled.
type StreamSource interface {
	GetName() string
	StartStream(ctx context.Context, updates chan<- RateUpdate, codes []string) error
}
