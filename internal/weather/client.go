package weather

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

// AutoDetect is the provider sentinel for "locate by network origin".
const AutoDetect = "autoip"

// UpstreamError reports a failed fetch: the provider returned an error
// envelope or an empty payload.
type UpstreamError struct {
	Description string
}

func (e *UpstreamError) Error() string {
	return "weather upstream error: " + e.Description
}

// Client fetches raw forecast payloads from the weather provider. Calls
// run through a circuit breaker so a flapping provider does not tie up
// request handlers.
type Client struct {
	base    string
	key     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[map[string]interface{}]
}

// NewClient creates a weather client for the given API base URL and key.
func NewClient(base, key string) *Client {
	name := "weather-api"
	breaker := gobreaker.NewCircuitBreaker[map[string]interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state change")
			metrics.BreakerState.WithLabelValues("weather").Set(metrics.StateValue(to.String()))
		},
	})

	return &Client{
		base:    strings.TrimRight(base, "/"),
		key:     key,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: breaker,
	}
}

// Fetch requests the given feature set for a place and returns the raw
// decoded payload. An empty place falls back to the provider's
// network-origin auto-detection. Provider error envelopes and empty
// payloads come back as *UpstreamError.
func (c *Client) Fetch(ctx context.Context, place string, features []string) (map[string]interface{}, error) {
	if place == "" {
		place = AutoDetect
	}

	endpoint := fmt.Sprintf("%s/%s/%s/q/%s.json",
		c.base, c.key, strings.Join(features, "/"), url.PathEscape(place))

	data, err := c.breaker.Execute(func() (map[string]interface{}, error) {
		return c.fetch(ctx, endpoint)
	})
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("weather", "failure").Inc()
		return nil, err
	}

	metrics.UpstreamRequests.WithLabelValues("weather", "success").Inc()
	return data, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	if err := checkEnvelope(data); err != nil {
		return nil, err
	}
	return data, nil
}

// checkEnvelope rejects provider error envelopes and payloads that carry
// nothing beyond the response header block.
func checkEnvelope(data map[string]interface{}) error {
	if len(data) == 0 {
		return &UpstreamError{Description: "empty response"}
	}

	envelope, ok := data["response"].(map[string]interface{})
	if !ok {
		return nil
	}
	if upstreamErr, ok := envelope["error"].(map[string]interface{}); ok {
		description, _ := upstreamErr["description"].(string)
		if description == "" {
			description = "unknown upstream error"
		}
		return &UpstreamError{Description: description}
	}
	if len(data) == 1 {
		// Envelope only, no requested features present.
		return &UpstreamError{Description: "empty response"}
	}
	return nil
}
