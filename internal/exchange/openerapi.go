package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"tariff/internal/model"
)

const openERBaseURL = "https://open.er-api.com/v6"

// OpenERClient implements the RateSource interface for the open.er-api.com
// exchange-rate API. The API returns the full USD rate table per call; the
// requested code is extracted from it.
type OpenERClient struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

// NewOpenERClient creates a new OpenERClient. An empty baseURL selects the
// public endpoint.
func NewOpenERClient(logger *slog.Logger, baseURL string) *OpenERClient {
	if baseURL == "" {
		baseURL = openERBaseURL
	}
	return &OpenERClient{
		logger:  logger,
		client:  &http.Client{},
		baseURL: baseURL,
	}
}

func (o *OpenERClient) GetName() string {
	return "open-er-api"
}

// FetchRate fetches the latest USD->code rate.
func (o *OpenERClient) FetchRate(ctx context.Context, code string) (float64, error) {
	endpoint := o.baseURL + "/latest/USD"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("open-er-api: build request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("open-er-api: fetch %s: %w", code, model.ErrSourceTimeout)
		}
		return 0, fmt.Errorf("open-er-api: fetch %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("open-er-api: fetch %s: unexpected status %d: %w", code, resp.StatusCode, model.ErrInvalidRateValue)
	}

	var payload struct {
		Result string             `json:"result"`
		Rates  map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("open-er-api: parse response for %s: %w", code, model.ErrInvalidRateValue)
	}
	if payload.Result != "success" {
		return 0, fmt.Errorf("open-er-api: result %q for %s: %w", payload.Result, code, model.ErrInvalidRateValue)
	}

	rate, ok := payload.Rates[code]
	if !ok {
		return 0, fmt.Errorf("open-er-api: no rate for %s: %w", code, model.ErrInvalidRateValue)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("open-er-api: rate %v for %s: %w", rate, code, model.ErrInvalidRateValue)
	}

	o.logger.Debug("fetched rate", "source", "open-er-api", "code", code, "rate", rate)
	return rate, nil
}
