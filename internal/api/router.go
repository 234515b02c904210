package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arielmz/skycast-be/internal/api/handlers"
	"github.com/arielmz/skycast-be/internal/auth"
	"github.com/arielmz/skycast-be/internal/services"
)

// RouterDeps bundles everything the route tree needs.
type RouterDeps struct {
	Users         services.UserServiceProvider
	TokenIssuer   *auth.TokenIssuer
	Weather       handlers.WeatherFetcher
	Places        handlers.PlacesProvider
	AllowedOrigin string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Users, deps.TokenIssuer)
	userHandler := handlers.NewUserHandler(deps.Users)
	weatherHandler := handlers.NewWeatherHandler(deps.Weather)
	placesHandler := handlers.NewPlacesHandler(deps.Places)

	// Token transport is Bearer-header only in this deployment.
	requireToken := auth.RequireToken(deps.TokenIssuer, deps.Users, auth.BearerExtractor)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
		r.Post("/forgot", authHandler.Forgot)
		r.Post("/reset", authHandler.Reset)
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(requireToken)
		r.Get("/", userHandler.GetMe)
		r.Put("/", userHandler.Update)
		r.Delete("/", userHandler.Delete)

		r.Route("/places", func(r chi.Router) {
			r.Get("/", userHandler.ListPlaces)
			r.Post("/", userHandler.AddPlace)
			r.Put("/default", userHandler.SetDefaultPlace)
			r.Delete("/{placeID}", userHandler.RemovePlace)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", userHandler.GetSettings)
			r.Post("/", userHandler.UpdateSettings)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireToken)
		r.Use(auth.RequireAdmin)
		r.Get("/users", userHandler.ListUsers)
	})

	r.Get("/weather", weatherHandler.Get)

	r.Route("/places", func(r chi.Router) {
		r.Get("/autocomplete", placesHandler.Autocomplete)
		r.Get("/details", placesHandler.Details)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
