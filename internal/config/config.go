// Package config loads client configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Environment name; "production" switches the logger to JSON.
	Env      string
	LogLevel string

	// Remote API
	APIBaseURL     string
	RequestTimeout time.Duration
	// ListLimit is an optional paging hint sent as limit on every list request.
	ListLimit *int

	// Web front-end
	Port string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: strings.ToLower(os.Getenv("LOG_LEVEL")),
		Port:     getEnv("PORT", "8080"),
	}

	baseURL, err := parseBaseURL(getEnv("API_BASE_URL", "http://localhost:8000"))
	if err != nil {
		return nil, err
	}
	cfg.APIBaseURL = baseURL

	timeout, err := parseTimeout(os.Getenv("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout

	limit, err := parseLimit(os.Getenv("LIST_LIMIT"))
	if err != nil {
		return nil, err
	}
	cfg.ListLimit = limit

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBaseURL(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid API_BASE_URL %q: must be an absolute http(s) URL", s)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid API_BASE_URL %q: unsupported scheme %q", s, u.Scheme)
	}
	return strings.TrimRight(s, "/"), nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", d)
	}
	return d, nil
}

// parseLimit mirrors the API's accepted range for limit (1..1000).
func parseLimit(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid LIST_LIMIT %q: %w", s, err)
	}
	if n < 1 || n > 1000 {
		return nil, fmt.Errorf("LIST_LIMIT must be between 1 and 1000, got %d", n)
	}
	return &n, nil
}
