package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arielmz/skycast-be/internal/apierr"
	"github.com/arielmz/skycast-be/internal/places"
)

// PlacesProvider relays autocomplete and details lookups to the places
// provider.
type PlacesProvider interface {
	Autocomplete(ctx context.Context, input string) (json.RawMessage, error)
	Details(ctx context.Context, placeID string) (json.RawMessage, error)
}

// PlacesHandler passes place lookups through to the provider untouched.
type PlacesHandler struct {
	client PlacesProvider
}

// NewPlacesHandler creates a new PlacesHandler.
func NewPlacesHandler(client PlacesProvider) *PlacesHandler {
	return &PlacesHandler{client: client}
}

// Autocomplete handles GET /places/autocomplete?input=...
func (h *PlacesHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")
	if input == "" {
		apierr.Write(w, apierr.MissingFields("input is required"))
		return
	}

	raw, err := h.client.Autocomplete(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	relay(w, raw)
}

// Details handles GET /places/details?placeid=...
func (h *PlacesHandler) Details(w http.ResponseWriter, r *http.Request) {
	placeID := r.URL.Query().Get("placeid")
	if placeID == "" {
		apierr.Write(w, apierr.MissingFields("placeid is required"))
		return
	}

	raw, err := h.client.Details(r.Context(), placeID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	relay(w, raw)
}

func (h *PlacesHandler) writeError(w http.ResponseWriter, err error) {
	var upstream *places.UpstreamError
	if errors.As(err, &upstream) {
		apierr.Write(w, apierr.UpstreamUnavailable(upstream.Description, err))
		return
	}
	apierr.Write(w, apierr.Internal(err))
}

func relay(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}
