package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/arielmz/skycast-be/internal/apierr"
	"github.com/arielmz/skycast-be/internal/auth"
	"github.com/arielmz/skycast-be/internal/models"
	"github.com/arielmz/skycast-be/internal/services"
)

// UserHandler handles HTTP requests for the authenticated user's account,
// saved places and settings.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// GetMe returns the authenticated user's record. The password hash never
// serializes (json:"-" on the model).
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		apierr.Write(w, apierr.Unauthorized())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update applies a partial profile update to the authenticated user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		apierr.Write(w, apierr.Unauthorized())
		return
	}

	var update services.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		apierr.Write(w, apierr.MissingFields("Invalid request body"))
		return
	}
	if err := validate.Struct(&update); err != nil {
		apierr.Write(w, apierr.MissingFields("Invalid profile fields"))
		return
	}

	if err := h.service.UpdateUser(user.ID, update); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to update user")
		apierr.Write(w, apierr.StoreFailure(err))
		return
	}

	writeJSON(w, http.StatusOK, statusOK)
}

// Delete removes the authenticated user's account. Store failures surface
// as 500; a failed delete is never reported as success.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		apierr.Write(w, apierr.Unauthorized())
		return
	}

	if err := h.service.DeleteUser(user.ID); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to delete user")
		apierr.Write(w, apierr.StoreFailure(err))
		return
	}

	writeJSON(w, http.StatusOK, statusOK)
}

// ListPlaces returns the user's saved places.
func (h *UserHandler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		apierr.Write(w, apierr.Unauthorized())
		return
	}

	places, err := h.service.ListPlaces(user.ID)
	if err != nil {
		apierr.Write(w, apierr.StoreFailure(err))
		return
	}
	writeJSON(w, http.StatusOK, places)
}

// AddPlace saves a place for the user. Saving an already-saved place is a
// no-op, keeping place ids unique within the set.
func (h *UserHandler) AddPlace(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		apierr.Write(w, apierr.Unauthorized())
		return
	}

	var place models.Place
	if err := json.NewDecoder(r.Body).Decode(&place); err != nil {
		apierr.Write(w, apierr.MissingFields("Invalid request body"))
		return
	}
	if err := validate.Struct(&place); err != nil {
		apierr.Write(w, apierr.MissingFields("placeId and location are required"))
		return
	}

	if err := h.service.AddPlace(user.ID, place); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to add place")
		apierr.Write(w, apierr.StoreFailure(err))
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

// RemovePlace removes a saved place by its id.
func (h *UserHandler) RemovePlace(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		apierr.Write(w, apierr.Unauthorized())
		return
	}

	placeID := chi.URLParam(r, "placeID")
	if err := h.service.RemovePlace(user.ID, placeID); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Str("place_id", placeID).Msg("Failed to remove place")
		apierr.Write(w, apierr.StoreFailure(err))
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

// SetDefaultPlace records the user's default place for weather lookups.
func (h *UserHandler) SetDefaultPlace(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		apierr.Write(w, apierr.Unauthorized())
		return
	}

	var place models.Place
	if err := json.NewDecoder(r.Body).Decode(&place); err != nil {
		apierr.Write(w, apierr.MissingFields("Invalid request body"))
		return
	}
	if err := validate.Struct(&place); err != nil {
		apierr.Write(w, apierr.MissingFields("placeId and location are required"))
		return
	}

	if err := h.service.SetDefaultPlace(user.ID, place); err != nil {
		apierr.Write(w, apierr.StoreFailure(err))
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

// GetSettings returns the user's preference settings.
func (h *UserHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		apierr.Write(w, apierr.Unauthorized())
		return
	}

	settings, err := h.service.GetSettings(user.ID)
	if err != nil {
		apierr.Write(w, apierr.StoreFailure(err))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings replaces the user's preference settings.
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		apierr.Write(w, apierr.Unauthorized())
		return
	}

	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		apierr.Write(w, apierr.MissingFields("Invalid request body"))
		return
	}
	if err := validate.Struct(&settings); err != nil {
		apierr.Write(w, apierr.MissingFields("unit must be fahrenheit or celsius"))
		return
	}

	if err := h.service.UpdateSettings(user.ID, settings); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to update settings")
		apierr.Write(w, apierr.StoreFailure(err))
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

// ListUsers returns every account. Admin-only; the router gates it behind
// the admin middleware.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers()
	if err != nil {
		apierr.Write(w, apierr.StoreFailure(err))
		return
	}
	writeJSON(w, http.StatusOK, users)
}

