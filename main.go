package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arielmz/skycast-be/internal/api"
	"github.com/arielmz/skycast-be/internal/auth"
	"github.com/arielmz/skycast-be/internal/config"
	"github.com/arielmz/skycast-be/internal/database"
	"github.com/arielmz/skycast-be/internal/logger"
	"github.com/arielmz/skycast-be/internal/places"
	"github.com/arielmz/skycast-be/internal/services"
	"github.com/arielmz/skycast-be/internal/weather"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.AppEnv)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services and upstream clients
	userService := services.NewUserService(db)
	tokenIssuer := auth.NewTokenIssuer(cfg.SecretKey, cfg.TokenExpiration)
	weatherClient := weather.NewClient(cfg.WeatherAPIBase, cfg.WeatherAPIKey)
	placesClient := places.NewClient(cfg.PlacesAPIBase, cfg.PlacesAPIKey)

	// Set up router
	router := api.NewRouter(api.RouterDeps{
		Users:         userService,
		TokenIssuer:   tokenIssuer,
		Weather:       weatherClient,
		Places:        placesClient,
		AllowedOrigin: cfg.AllowedOrigin,
	})

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
