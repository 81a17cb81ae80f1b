package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"tariff/internal/model"
)

const frankfurterBaseURL = "https://api.frankfurter.dev/v1"

// FrankfurterClient implements the RateSource interface for the Frankfurter
// reference-rate API (ECB data, fiat currencies).
type FrankfurterClient struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

// NewFrankfurterClient creates a new FrankfurterClient. An empty baseURL
// selects the public endpoint.
func NewFrankfurterClient(logger *slog.Logger, baseURL string) *FrankfurterClient {
	if baseURL == "" {
		baseURL = frankfurterBaseURL
	}
	return &FrankfurterClient{
		logger:  logger,
		client:  &http.Client{},
		baseURL: baseURL,
	}
}

func (f *FrankfurterClient) GetName() string {
	return "frankfurter"
}

// FetchRate fetches the latest USD->code rate.
func (f *FrankfurterClient) FetchRate(ctx context.Context, code string) (float64, error) {
	endpoint := fmt.Sprintf("%s/latest?base=USD&symbols=%s", f.baseURL, url.QueryEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("frankfurter: build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("frankfurter: fetch %s: %w", code, model.ErrSourceTimeout)
		}
		return 0, fmt.Errorf("frankfurter: fetch %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("frankfurter: fetch %s: unexpected status %d: %w", code, resp.StatusCode, model.ErrInvalidRateValue)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("frankfurter: parse response for %s: %w", code, model.ErrInvalidRateValue)
	}

	rate, ok := payload.Rates[code]
	if !ok {
		return 0, fmt.Errorf("frankfurter: no rate for %s: %w", code, model.ErrInvalidRateValue)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("frankfurter: rate %v for %s: %w", rate, code, model.ErrInvalidRateValue)
	}

	f.logger.Debug("fetched rate", "source", "frankfurter", "code", code, "rate", rate)
	return rate, nil
}
