// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Booking policy limits live here rather than in code:
// operators tune them per deployment.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	AdminTokenSecret string // secret used to verify admin service tokens

	// Booking policy. MaxSpanDays of 0 means a booking must start and end on
	// the same calendar day. EarliestStart/LatestEnd bound the time of day a
	// booking may begin and finish.
	MaxSpanDays   int
	EarliestStart time.Duration // offset from midnight, e.g. 6h for 06:00
	LatestEnd     time.Duration // offset from midnight, e.g. 22h for 22:00

	GroupServiceURL string        // base URL of the student-group service
	CleanInterval   time.Duration // how often expired bookings are purged
}

// Load reads configuration from the environment, after loading an optional
// .env file. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load() // .env is optional; real env vars win

	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty allowed
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		AdminTokenSecret: must("ADMIN_TOKEN_SECRET"),
		MaxSpanDays:      intOr("BOOKING_MAX_SPAN_DAYS", 0),
		EarliestStart:    clockOr("BOOKING_EARLIEST_START", 6*time.Hour),
		LatestEnd:        clockOr("BOOKING_LATEST_END", 22*time.Hour),
		GroupServiceURL:  os.Getenv("GROUP_SERVICE_URL"), // empty disables group lookups
		CleanInterval:    durOr("BOOKING_CLEAN_INTERVAL", 5*time.Minute),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func durOr(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, s)
	}
	return d
}

// clockOr parses a wall-clock value like "06:00" into an offset from
// midnight.
func clockOr(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		log.Fatalf("invalid time of day for %s: %q (want HH:MM)", key, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
}
