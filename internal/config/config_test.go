package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeedURL = "https://example.com/sheet.csv"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, 10*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 30*time.Second, cfg.FeedCacheTTL)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "incident-map-points", cfg.KafkaTopic)
	assert.Equal(t, 9, cfg.DensityResolution)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("FEED_URL", testFeedURL)
	t.Setenv("FEED_TIMEOUT", "3s")
	t.Setenv("FEED_CACHE_TTL", "0s")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "pins")
	t.Setenv("DENSITY_RESOLUTION", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testFeedURL, cfg.FeedURL)
	assert.Equal(t, 3*time.Second, cfg.FeedTimeout)
	assert.Equal(t, time.Duration(0), cfg.FeedCacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "pins", cfg.KafkaTopic)
	assert.Equal(t, 7, cfg.DensityResolution)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidFeedTimeout(t *testing.T) {
	t.Setenv("FEED_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEED_TIMEOUT")
}

func TestLoad_InvalidCacheTTL(t *testing.T) {
	t.Setenv("FEED_CACHE_TTL", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEED_CACHE_TTL")
}

func TestLoad_InvalidRefreshInterval(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_INTERVAL")
}

func TestLoad_RelativeFeedURL(t *testing.T) {
	t.Setenv("FEED_URL", "sheet.csv")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEED_URL")
}

func TestLoad_FileFeedURL(t *testing.T) {
	t.Setenv("FEED_URL", "file:///var/lib/incident-map/feed.csv")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file:///var/lib/incident-map/feed.csv", cfg.FeedURL)
}

func TestLoad_ResolutionOutOfRange(t *testing.T) {
	t.Setenv("DENSITY_RESOLUTION", "16")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DENSITY_RESOLUTION")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
