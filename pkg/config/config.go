package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// RemoteDatabaseURL points at the hosted Postgres store.
	RemoteDatabaseURL string
	// CachePath is the local SQLite file backing the replica.
	CachePath    string
	Port         string
	IsProduction bool
	// JWTSecret verifies the auth service's session tokens.
	JWTSecret string
	// AuthBaseURL and AuthAPIKey reach the auth service for password
	// reauthentication.
	AuthBaseURL string
	AuthAPIKey  string
	// LiveQueryDebounce is the coalescing window for change notifications.
	LiveQueryDebounce time.Duration
	// SyncOnStart runs a full sync for a session's first request.
	SyncOnStart bool
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	dbURL := os.Getenv("PGSQL_URL")
	if dbURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cachePath := os.Getenv("CACHE_PATH")
	if cachePath == "" {
		cachePath = "cashbook_cache.db"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", port)
	}

	isProdStr := os.Getenv("IS_PRODUCTION")
	isProd, err := strconv.ParseBool(isProdStr)
	if err != nil {
		isProd = false
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	debounce := 100 * time.Millisecond
	if v := os.Getenv("LIVE_QUERY_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			debounce = d
		} else {
			log.Printf("Warning: invalid LIVE_QUERY_DEBOUNCE %q, using %s\n", v, debounce)
		}
	}

	syncOnStart := true
	if v := os.Getenv("SYNC_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			syncOnStart = b
		}
	}

	return &Config{
		RemoteDatabaseURL: dbURL,
		CachePath:         cachePath,
		Port:              port,
		IsProduction:      isProd,
		JWTSecret:         jwtSecret,
		AuthBaseURL:       os.Getenv("AUTH_BASE_URL"),
		AuthAPIKey:        os.Getenv("AUTH_API_KEY"),
		LiveQueryDebounce: debounce,
		SyncOnStart:       syncOnStart,
	}, nil
}
