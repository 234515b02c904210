package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort      int
	DatabasePath    string
	SecretKey       string        // HMAC key for signing auth tokens
	TokenExpiration time.Duration // lifetime of issued auth tokens
	WeatherAPIKey   string
	WeatherAPIBase  string
	PlacesAPIKey    string
	PlacesAPIBase   string
	AllowedOrigin   string
	AppEnv          string
}

// Load loads configuration from a .env file (if present) and the
// environment, applying defaults for everything except the signing secret.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		return nil, errors.New("SECRET_KEY must be set")
	}

	expStr := getEnv("TOKEN_EXPIRATION", "604800") // seconds, 7 days
	expSeconds, err := strconv.Atoi(expStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:      port,
		DatabasePath:    getEnv("DATABASE_PATH", "./skycast.db"),
		SecretKey:       secret,
		TokenExpiration: time.Duration(expSeconds) * time.Second,
		WeatherAPIKey:   os.Getenv("WEATHER_API_KEY"),
		WeatherAPIBase:  getEnv("WEATHER_API_BASE", "http://api.wunderground.com/api"),
		PlacesAPIKey:    os.Getenv("PLACES_API_KEY"),
		PlacesAPIBase:   getEnv("PLACES_API_BASE", "https://maps.googleapis.com/maps/api/place"),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		AppEnv:          getEnv("APP_ENV", "development"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
