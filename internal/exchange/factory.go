package exchange

import (
	"fmt"
	"log/slog"
)

// NewSource creates a rate source by provider name. baseURL overrides the
// provider's public endpoint, which tests use to point at a local server.
func NewSource(name string, logger *slog.Logger, baseURL string) (RateSource, error) {
	switch name {
	case "frankfurter":
		return NewFrankfurterClient(logger, baseURL), nil
	case "open-er-api":
		return NewOpenERClient(logger, baseURL), nil
	default:
		return nil, fmt.Errorf("unknown rate source: %s", name)
	}
}
