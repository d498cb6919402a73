package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration, loaded from the
// environment (the caller applies .env before Load).
type Config struct {
	Env       string
	AppSecret string
	Port      string
	JWTExpiry time.Duration

	TMDBToken        string
	TMDBBaseURL      string
	TMDBImageBaseURL string

	RatingsFile string

	// DatabaseURL is empty when the remote mirror is disabled.
	DatabaseURL       string
	MirrorPullOnStart bool

	// RedisAddr is empty when the recommendation cache is disabled.
	RedisAddr     string
	RedisPassword string
}

// Load loads configuration from environment variables.
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "72"))

	appSecret := getEnv("APP_SECRET", "your-secret-key-change-in-production")
	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		log.Println("[Config] WARNING: production is running with the default APP_SECRET")
	}

	var dbURL string
	if os.Getenv("DB_HOST") != "" || os.Getenv("DATABASE_URL") != "" {
		dbURL = os.Getenv("DATABASE_URL")
		if dbURL == "" {
			dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				getEnv("DB_USER", "postgres"),
				getEnv("DB_PASSWORD", "postgres"),
				getEnv("DB_HOST", "localhost"),
				getEnv("DB_PORT", "5432"),
				getEnv("DB_NAME", "filmy"),
				getEnv("DB_SSLMODE", "disable"),
			)
		}
	}

	return &Config{
		Env:               getEnv("APP_ENV", "development"),
		AppSecret:         appSecret,
		Port:              getEnv("PORT", "5005"),
		JWTExpiry:         time.Duration(expiryHours) * time.Hour,
		TMDBToken:         os.Getenv("TMDB_API_KEY"),
		TMDBBaseURL:       getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBImageBaseURL:  getEnv("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p/w500"),
		RatingsFile:       getEnv("RATINGS_FILE", "filmy_ratings.csv"),
		DatabaseURL:       dbURL,
		MirrorPullOnStart: getEnv("MIRROR_PULL_ON_START", "true") == "true",
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
