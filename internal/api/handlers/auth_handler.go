package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/arielmz/skycast-be/internal/apierr"
	"github.com/arielmz/skycast-be/internal/auth"
	"github.com/arielmz/skycast-be/internal/metrics"
	"github.com/arielmz/skycast-be/internal/services"
)

// AuthHandler handles registration, login and password recovery.
type AuthHandler struct {
	service services.UserServiceProvider
	issuer  *auth.TokenIssuer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{service: service, issuer: issuer}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apierr.Write(w, apierr.MissingFields("Invalid request body"))
		return
	}
	if err := validate.Struct(&payload); err != nil {
		apierr.Write(w, apierr.MissingFields("firstName, lastName, email and password are required"))
		return
	}

	user, err := h.service.CreateUser(payload.FirstName, payload.LastName, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			apierr.Write(w, apierr.EmailAlreadyRegistered())
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		apierr.Write(w, apierr.StoreFailure(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Login handles user authentication and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apierr.Write(w, apierr.MissingFields("Invalid request body"))
		return
	}
	if err := validate.Struct(&payload); err != nil {
		apierr.Write(w, apierr.MissingFields("email and password are required"))
		return
	}

	user, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			apierr.Write(w, apierr.Unauthorized())
			return
		}
		apierr.Write(w, apierr.StoreFailure(err))
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		apierr.Write(w, apierr.Internal(err))
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Forgot starts password recovery. The response never reveals whether the
// email belongs to an account.
func (h *AuthHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apierr.Write(w, apierr.MissingFields("Invalid request body"))
		return
	}
	if err := validate.Struct(&payload); err != nil {
		apierr.Write(w, apierr.MissingFields("email is required"))
		return
	}

	if _, err := h.service.SetResetToken(payload.Email); err != nil {
		if !errors.Is(err, services.ErrUserNotFound) {
			log.Error().Err(err).Msg("Failed to set reset token")
		}
		// TODO: deliver the token by email once an outbound mailer exists;
		// until then it is only retrievable by operators from the store.
	}

	writeJSON(w, http.StatusOK, statusOK)
}

// Reset completes password recovery with a live reset token.
func (h *AuthHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apierr.Write(w, apierr.MissingFields("Invalid request body"))
		return
	}
	if err := validate.Struct(&payload); err != nil {
		apierr.Write(w, apierr.MissingFields("token and password are required"))
		return
	}

	if err := h.service.ResetPassword(payload.Token, payload.Password); err != nil {
		if errors.Is(err, services.ErrResetInvalid) {
			apierr.Write(w, apierr.Unauthorized())
			return
		}
		apierr.Write(w, apierr.StoreFailure(err))
		return
	}

	writeJSON(w, http.StatusOK, statusOK)
}
