package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/arielmz/skycast-be/internal/apierr"
	"github.com/arielmz/skycast-be/internal/models"
)

type contextKey string

// UserKey is the context key under which the authenticated user is stored.
const UserKey = contextKey("authUser")

// Extractor pulls a token string out of a request. The verifier only ever
// sees the extracted string, so transports stay pluggable.
type Extractor func(r *http.Request) string

// BearerExtractor reads the token from an "Authorization: Bearer" header.
func BearerExtractor(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// CookieExtractor reads the token from a cookie of the given name.
func CookieExtractor(name string) Extractor {
	return func(r *http.Request) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

// UserLookup resolves a user id from verified claims to a live account.
type UserLookup interface {
	GetUserByID(id string) (models.User, error)
}

// RequireToken creates a middleware gating routes on a valid token. The
// token is extracted, verified, and resolved to a stored user; any failure
// short-circuits with 401 before protected logic runs. On success the user
// is attached to the request context.
func RequireToken(issuer *TokenIssuer, users UserLookup, extract Extractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extract(r)
			if tokenStr == "" {
				apierr.Write(w, apierr.Unauthorized())
				return
			}

			claims, err := issuer.Verify(tokenStr)
			if err != nil {
				apierr.Write(w, apierr.Unauthorized())
				return
			}

			// The account may have been deleted after the token was issued.
			user, err := users.GetUserByID(claims.UserID)
			if err != nil {
				apierr.Write(w, apierr.Unauthorized())
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route on the authenticated user holding the admin
// role. It must run after RequireToken.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if !ok {
			apierr.Write(w, apierr.Unauthorized())
			return
		}
		if user.Role != models.RoleAdmin {
			apierr.Write(w, apierr.Forbidden())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFrom returns the authenticated user stored in ctx by RequireToken.
func UserFrom(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserKey).(models.User)
	return user, ok
}
