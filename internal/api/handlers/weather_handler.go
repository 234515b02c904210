package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/arielmz/skycast-be/internal/apierr"
	"github.com/arielmz/skycast-be/internal/weather"
)

// WeatherFetcher fetches a raw forecast payload for a place and feature
// set.
type WeatherFetcher interface {
	Fetch(ctx context.Context, place string, features []string) (map[string]interface{}, error)
}

// WeatherHandler proxies the weather provider and returns normalized
// reports.
type WeatherHandler struct {
	client WeatherFetcher
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(client WeatherFetcher) *WeatherHandler {
	return &WeatherHandler{client: client}
}

// Get handles GET /weather?place=...&features=a,b,c. The place may be a
// coordinate pair, a postal code, or empty for network-origin detection.
func (h *WeatherHandler) Get(w http.ResponseWriter, r *http.Request) {
	place := r.URL.Query().Get("place")

	features := []string{"conditions"}
	if raw := r.URL.Query().Get("features"); raw != "" {
		features = strings.Split(raw, ",")
	}

	data, err := h.client.Fetch(r.Context(), place, features)
	if err != nil {
		var upstream *weather.UpstreamError
		if errors.As(err, &upstream) {
			apierr.Write(w, apierr.UpstreamUnavailable(upstream.Description, err))
			return
		}
		apierr.Write(w, apierr.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, weather.Normalize(data))
}
