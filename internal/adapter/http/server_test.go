package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/incident-map-service/internal/adapter/http"
	"github.com/couchcryptid/incident-map-service/internal/domain"
	"github.com/couchcryptid/incident-map-service/internal/pipeline"
	"github.com/couchcryptid/incident-map-service/internal/render"
	"github.com/couchcryptid/incident-map-service/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snap *pipeline.Snapshot
}

func (f *fakeSource) CheckReadiness(_ context.Context) error {
	if f.snap == nil {
		return errors.New("feed has not been loaded yet")
	}
	return nil
}

func (f *fakeSource) Snapshot() (*pipeline.Snapshot, bool) {
	return f.snap, f.snap != nil
}

func loadedSource() *fakeSource {
	ds := domain.Assemble([]domain.RawRecord{
		{Row: 1, Date: "01.03.2023", Address: "Hauptstr. 1", Category: "Verbal", Quote: "test",
			Latitude: domain.Raw("519617818"), Longitude: domain.Raw("76285726")},
		{Row: 2, Date: "02.03.2023", Address: "Prinzipalmarkt 10", Category: "Physisch",
			Latitude: domain.Raw("519625123"), Longitude: domain.Raw("76256456")},
		{Row: 3, Date: "04.03.2023", Address: "Hafenweg 2", Category: "Verbal",
			Latitude: domain.Raw("123"), Longitude: domain.Raw("76285726")},
	})
	return &fakeSource{snap: &pipeline.Snapshot{
		Dataset:     ds,
		RefreshedAt: time.Date(2023, 3, 5, 8, 0, 0, 0, time.UTC),
	}}
}

func newTestServer(src *fakeSource) *httpadapter.Server {
	return httpadapter.NewServer(":0", src, httpadapter.MapSettings{
		Title:             "Live-Karte",
		CenterLat:         51.9625,
		CenterLon:         7.6256,
		Zoom:              13,
		DensityResolution: 9,
	}, slog.New(slog.DiscardHandler))
}

func get(t *testing.T, srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&fakeSource{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenLoaded(t *testing.T) {
	rec := get(t, newTestServer(loadedSource()), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503BeforeFirstRefresh(t *testing.T) {
	rec := get(t, newTestServer(&fakeSource{}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&fakeSource{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDataRoutesReturn503BeforeFirstRefresh(t *testing.T) {
	srv := newTestServer(&fakeSource{})
	for _, target := range []string{"/", "/api/points", "/api/records", "/api/unmappable", "/api/density"} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, srv, target)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		})
	}
}

func TestPoints(t *testing.T) {
	rec := get(t, newTestServer(loadedSource()), "/api/points")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Sun, 05 Mar 2023 08:00:00 GMT", rec.Header().Get("Last-Modified"))

	var fc render.FeatureCollection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	require.Len(t, fc.Features, 2)
	assert.InDelta(t, 7.6285, fc.Features[0].Geometry.Coordinates[0], 1e-9)
	assert.InDelta(t, 51.9617, fc.Features[0].Geometry.Coordinates[1], 1e-9)
	assert.Equal(t, "orange", fc.Features[0].Properties.Color)
	assert.Equal(t, "darkred", fc.Features[1].Properties.Color)
}

func TestRecords(t *testing.T) {
	rec := get(t, newTestServer(loadedSource()), "/api/records")

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []render.RecordRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "123", *rows[2].Latitude)
}

func TestUnmappable(t *testing.T) {
	rec := get(t, newTestServer(loadedSource()), "/api/unmappable")

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []render.RejectedRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Row)
	assert.Equal(t, "Hafenweg 2", rows[0].Address)
	assert.Contains(t, rows[0].LatitudeError, "insufficient precision")
	assert.Empty(t, rows[0].LongitudeError)
}

func TestDensity(t *testing.T) {
	srv := newTestServer(loadedSource())

	rec := get(t, srv, "/api/density?res=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var cells []spatial.Cell
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cells))
	require.Len(t, cells, 1)
	assert.Equal(t, 2, cells[0].Count)

	assert.Equal(t, http.StatusOK, get(t, srv, "/api/density").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/density?res=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/density?res=16").Code)
}

func TestPage(t *testing.T) {
	rec := get(t, newTestServer(loadedSource()), "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "Live-Karte")
	assert.Contains(t, body, "Hafenweg 2")
	assert.Contains(t, body, "2 von 3 Meldungen")
}

func TestUnknownRouteIs404(t *testing.T) {
	rec := get(t, newTestServer(loadedSource()), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
