// internal/quotes/client.go
package quotes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// quote is one entry of the provider's batch price response.
type quote struct {
	LTP float64 `json:"ltp"`
}

// Client talks to the market-data provider's batch LTP endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for baseURL with the given per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LatestPrices posts the symbol batch and returns last traded prices keyed by
// symbol. Symbols the provider had no data for are absent from the result.
func (c *Client) LatestPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	endpoint := c.baseURL + "/latest_prices_batch"

	payload, err := json.Marshal(symbols)
	if err != nil {
		return nil, fmt.Errorf("encode symbol batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("making request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		body, _ := io.ReadAll(resp.Body)
		return nil, &TransientError{Err: fmt.Errorf("provider error %d: %s", resp.StatusCode, body)}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider rejected request: %d: %s", resp.StatusCode, body)
	}

	var raw map[string]quote
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	prices := make(map[string]float64, len(raw))
	for symbol, q := range raw {
		if q.LTP <= 0 || math.IsNaN(q.LTP) || math.IsInf(q.LTP, 0) {
			// Invalid values are discarded, same as a missing series.
			continue
		}
		prices[symbol] = q.LTP
	}
	return prices, nil
}

// LTP fetches the last traded price for a single symbol.
func (c *Client) LTP(ctx context.Context, symbol string) (float64, error) {
	prices, err := c.LatestPrices(ctx, []string{symbol})
	if err != nil {
		if te, ok := err.(*TransientError); ok {
			te.Symbol = symbol
		}
		return 0, err
	}

	price, ok := prices[symbol]
	if !ok {
		return 0, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}
	return price, nil
}
