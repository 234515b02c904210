// Package places relays requests to the places/geocoding provider without
// reshaping the responses.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/arielmz/skycast-be/internal/metrics"
)

// UpstreamError reports a provider-signalled failure.
type UpstreamError struct {
	Description string
}

func (e *UpstreamError) Error() string {
	return "places upstream error: " + e.Description
}

// Client proxies the autocomplete and details endpoints of the places
// provider.
type Client struct {
	base    string
	key     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[json.RawMessage]
}

// NewClient creates a places client for the given API base URL and key.
func NewClient(base, key string) *Client {
	breaker := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        "places-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state change")
			metrics.BreakerState.WithLabelValues("places").Set(metrics.StateValue(to.String()))
		},
	})

	return &Client{
		base:    strings.TrimRight(base, "/"),
		key:     key,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: breaker,
	}
}

// Autocomplete returns place suggestions for a partial input, verbatim
// from the provider.
func (c *Client) Autocomplete(ctx context.Context, input string) (json.RawMessage, error) {
	params := url.Values{"input": {input}}
	return c.get(ctx, "/autocomplete/json", params)
}

// Details returns the provider's details record for a place id, verbatim.
func (c *Client) Details(ctx context.Context, placeID string) (json.RawMessage, error) {
	params := url.Values{"placeid": {placeID}}
	return c.get(ctx, "/details/json", params)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	params.Set("key", c.key)
	endpoint := c.base + path + "?" + params.Encode()

	raw, err := c.breaker.Execute(func() (json.RawMessage, error) {
		return c.fetch(ctx, endpoint)
	})
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("places", "failure").Inc()
		return nil, err
	}

	metrics.UpstreamRequests.WithLabelValues("places", "success").Inc()
	return raw, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}

	// The provider signals failures inside a 200 response.
	var envelope struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		switch envelope.Status {
		case "", "OK", "ZERO_RESULTS":
		default:
			description := envelope.ErrorMessage
			if description == "" {
				description = envelope.Status
			}
			return nil, &UpstreamError{Description: description}
		}
	}
	return raw, nil
}
