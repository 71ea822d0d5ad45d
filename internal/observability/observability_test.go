package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("refresh complete", "records", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "refresh complete", line["msg"])
	assert.Equal(t, "incident-map", line["service"])
	assert.InDelta(t, 3, line["records"], 0)
}

func TestNewLogger_TextAndDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "DEBUG", "text")

	logger.Debug("decoded", "row", 7)

	assert.Contains(t, buf.String(), "msg=decoded")
	assert.Contains(t, buf.String(), "row=7")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.DecodeFailures.WithLabelValues("latitude", "missing").Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(a.DecodeFailures.WithLabelValues("latitude", "missing")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.DecodeFailures.WithLabelValues("latitude", "missing")), 0)
}
