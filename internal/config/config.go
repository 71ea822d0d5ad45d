package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultFeedURL is the CSV export of the sheet the reports are collected in.
const DefaultFeedURL = "https://docs.google.com/spreadsheets/d/1Mr7nP-NOc_6YiS2eKsESH4pwJdaz6N3AJEX53iTW3iY/export?format=csv"

// Initial map view. These are fixed for the deployment, not derived from data.
const (
	MapCenterLat = 51.9625
	MapCenterLon = 7.6256
	MapZoom      = 13
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL         string
	FeedTimeout     time.Duration
	FeedCacheTTL    time.Duration
	RefreshInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka publishing of decoded points (optional).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	DensityResolution int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parsePositiveDuration("FEED_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	// A zero TTL disables caching.
	cacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("FEED_CACHE_TTL", "30s"))
	if err != nil || cacheTTL < 0 {
		return nil, errors.New("invalid FEED_CACHE_TTL")
	}

	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}

	resolution, err := parseResolution()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FeedURL:         sharedcfg.EnvOrDefault("FEED_URL", DefaultFeedURL),
		FeedTimeout:     feedTimeout,
		FeedCacheTTL:    cacheTTL,
		RefreshInterval: refreshInterval,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "incident-map-points"),

		DensityResolution: resolution,
	}

	if !validFeedURL(cfg.FeedURL) {
		return nil, errors.New("FEED_URL must be an absolute http(s) or file URL")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func validFeedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "file":
		return u.Path != ""
	default:
		return false
	}
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseResolution() (int, error) {
	s := sharedcfg.EnvOrDefault("DENSITY_RESOLUTION", "9")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 15 {
		return 0, errors.New("DENSITY_RESOLUTION must be an integer between 0 and 15")
	}
	return n, nil
}
