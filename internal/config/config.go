// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable; required variables are enforced by must()
// and missing values cause the program to exit with a fatal log message.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	DBMaxOpenConns int           // connection pool: max open connections
	DBMaxIdleConns int           // connection pool: max idle connections
	DBConnLifetime time.Duration // connection pool: max connection lifetime
	JWTSecret      string        // secret used to sign JWTs
	AccessTTLMin   int           // access token time-to-live in minutes
	RefreshTTLDays int           // refresh token time-to-live in days
	BcryptCost     int           // bcrypt cost for password hashing

	BookingFeeCents int64  // fixed booking fee in currency minor units
	Currency        string // ISO currency code for the fee (e.g. "usd")

	StripeSecretKey      string // payment provider secret key; empty selects the in-memory gateway
	StripePublishableKey string // key handed to clients via /v1/payments/config

	GatewayMaxAttempts  int           // bounded retry count for gateway calls
	GatewayRetryBase    time.Duration // initial backoff delay
	GatewayRetryMax     time.Duration // backoff cap

	AdminEmail    string // seed admin account email (optional)
	AdminPassword string // seed admin account password

	EventsEnabled bool // publish/consume appointment.confirmed events
}

// Load reads configuration values from environment variables.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		BookingFeeCents: int64(envInt("BOOKING_FEE_CENTS", 5000)),
		Currency:        envStr("BOOKING_CURRENCY", "usd"),

		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),

		GatewayMaxAttempts: envInt("GATEWAY_MAX_ATTEMPTS", 4),
		GatewayRetryBase:   envDur("GATEWAY_RETRY_BASE", 200*time.Millisecond),
		GatewayRetryMax:    envDur("GATEWAY_RETRY_MAX", 5*time.Second),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		EventsEnabled: envBool("EVENTS_ENABLED", true),
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

// mustInt is like must() but converts the value into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
