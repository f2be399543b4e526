package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
)

// Config holds the core runtime configuration.  SecretKey is the single
// process-wide signing secret shared by the confirmation-code signer and
// the access-token issuer/verifier; rotating it invalidates every
// outstanding code and token at once.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	SecretKey     string // shared signing secret for codes and tokens
	AccessTTLDays int    // access token time-to-live in days
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		SecretKey:     must("SECRET_KEY"),
		AccessTTLDays: envInt("ACCESS_TOKEN_TTL_DAYS", 5),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
