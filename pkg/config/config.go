package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFirebase = "firebase"
	BackendPostgres = "postgres"
)

type Config struct {
	ServerPort  string
	Environment string
	Backend     string

	FirebaseProject            string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string
	UserCollections            []string

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	SupabaseJWKSURL   string
	DatabaseURL       string

	ChatPollInterval time.Duration
	ChatVerifyDelay  time.Duration
	ChatSendPerMin   int

	SearchLimit     int
	SearchTypeLimit int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Backend:     strings.ToLower(getEnv("BACKEND", BackendFirebase)),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		UserCollections:            getEnvAsList("USER_COLLECTIONS", []string{"users", "userProfiles", "profiles", "Users"}),

		SupabaseURL:       getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:   getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseJWKSURL:   getEnv("SUPABASE_JWKS_URL", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),

		ChatPollInterval: getEnvAsDuration("CHAT_POLL_INTERVAL", 1500*time.Millisecond),
		ChatVerifyDelay:  getEnvAsDuration("CHAT_VERIFY_DELAY", 200*time.Millisecond),
		ChatSendPerMin:   getEnvAsInt("CHAT_SEND_RATE", 30),

		SearchLimit:     getEnvAsInt("SEARCH_LIMIT", 20),
		SearchTypeLimit: getEnvAsInt("SEARCH_TYPE_LIMIT", 50),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that the selected backend has its connection settings.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFirebase:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firebase backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		if c.SupabaseJWTSecret == "" && c.SupabaseJWKSURL == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET or SUPABASE_JWKS_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown BACKEND %q (want %s or %s)", c.Backend, BackendFirebase, BackendPostgres)
	}

	if c.ChatPollInterval <= 0 {
		return fmt.Errorf("CHAT_POLL_INTERVAL must be positive")
	}
	if c.ChatSendPerMin <= 0 {
		return fmt.Errorf("CHAT_SEND_RATE must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// bare numbers are milliseconds
		if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
