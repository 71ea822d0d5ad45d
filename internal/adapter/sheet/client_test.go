package sheet

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/csv", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, testHeader+"01.03.2023,Hauptstr. 1,Verbal,test,519617818,76285726\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, discardLogger())
	records, err := client.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Hauptstr. 1", records[0].Address)
}

func TestClient_Extract_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "sheet not published", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, discardLogger())
	_, err := client.Extract(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "sheet not published")
}

func TestClient_Extract_MissingColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "Datum,Adresse\n01.03.2023,A\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, discardLogger())
	_, err := client.Extract(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestClient_Extract_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, testHeader)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, 5*time.Second, discardLogger())
	_, err := client.Extract(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Extract_Throttled(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, testHeader)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, discardLogger(), WithMinFetchInterval(time.Hour))
	_, err := client.Extract(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Extract(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed throttle")
	assert.Equal(t, int64(1), hits.Load())
}

func TestClient_Extract_ThrottleDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, testHeader)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, discardLogger(), WithMinFetchInterval(0))
	for range 3 {
		_, err := client.Extract(context.Background())
		require.NoError(t, err)
	}
}
