package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// PaymentIntent is the billing service's response to an intent request.
type PaymentIntent struct {
	PaymentIntentID string  `json:"payment_intent_id"`
	ClientSecret    string  `json:"client_secret"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
}

// Client calls the sibling billing service over HTTP. All calls go through
// a circuit breaker: after five consecutive failures the breaker opens and
// requests fail fast for thirty seconds.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*PaymentIntent]
}

// NewClient builds a billing client for the given base URL. An empty base
// URL yields a disabled client; callers must check Enabled.
func NewClient(baseURL string) *Client {
	settings := gobreaker.Settings{
		Name:    "billing-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[*PaymentIntent](settings),
	}
}

// Enabled reports whether a billing API URL was configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// CreatePaymentIntent asks the billing service to open a payment intent for
// a customer. Returns gobreaker.ErrOpenState while the breaker is open.
func (c *Client) CreatePaymentIntent(ctx context.Context, customerEmail string, amount float64, currency string) (*PaymentIntent, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("billing API is not configured")
	}

	payload, err := json.Marshal(map[string]any{
		"customer_email": customerEmail,
		"amount":         amount,
		"currency":       currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment intent request: %w", err)
	}

	return c.breaker.Execute(func() (*PaymentIntent, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment-intents", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("billing API request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("billing API returned status %d", resp.StatusCode)
		}

		var intent PaymentIntent
		if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
			return nil, fmt.Errorf("failed to decode billing API response: %w", err)
		}
		return &intent, nil
	})
}
