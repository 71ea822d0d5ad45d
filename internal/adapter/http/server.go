package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/incident-map-service/internal/pipeline"
	"github.com/couchcryptid/incident-map-service/internal/render"
	"github.com/couchcryptid/incident-map-service/internal/spatial"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotSource provides the latest assembled dataset.
type SnapshotSource interface {
	sharedobs.ReadinessChecker
	Snapshot() (*pipeline.Snapshot, bool)
}

// MapSettings controls the map page and the default density resolution.
type MapSettings struct {
	Title             string
	CenterLat         float64
	CenterLon         float64
	Zoom              int
	DensityResolution int
}

// Server exposes the map page, the data API, and the health and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	source     SnapshotSource
	settings   MapSettings
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the operational routes plus the map
// page and /api data routes.
func NewServer(addr string, source SnapshotSource, settings MapSettings, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source:   source,
		settings: settings,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(source))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /{$}", s.withSnapshot(s.handlePage))
	mux.HandleFunc("GET /api/points", s.withSnapshot(s.handlePoints))
	mux.HandleFunc("GET /api/records", s.withSnapshot(s.handleRecords))
	mux.HandleFunc("GET /api/unmappable", s.withSnapshot(s.handleUnmappable))
	mux.HandleFunc("GET /api/density", s.withSnapshot(s.handleDensity))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type snapshotHandler func(w http.ResponseWriter, r *http.Request, snap *pipeline.Snapshot)

// withSnapshot answers 503 until the first refresh has completed.
func (s *Server) withSnapshot(next snapshotHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := s.source.Snapshot()
		if !ok {
			sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  "feed has not been loaded yet",
			})
			return
		}
		w.Header().Set("Last-Modified", snap.RefreshedAt.UTC().Format(http.TimeFormat))
		next(w, r, snap)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.Page(w, render.PageData{
		Title:       s.settings.Title,
		CenterLat:   s.settings.CenterLat,
		CenterLon:   s.settings.CenterLon,
		Zoom:        s.settings.Zoom,
		PointsURL:   "/api/points",
		Mappable:    len(snap.Dataset.Mappable),
		Records:     render.Records(snap.Dataset.Records),
		Rejected:    render.Rejected(snap.Dataset.Unmappable),
		RefreshedAt: snap.RefreshedAt,
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

func (s *Server) handlePoints(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(render.GeoJSON(snap.Dataset.Mappable)); err != nil {
		s.logger.Warn("points response write failed", "error", err)
	}
}

func (s *Server) handleRecords(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	sharedobs.WriteJSON(w, http.StatusOK, render.Records(snap.Dataset.Records))
}

func (s *Server) handleUnmappable(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	sharedobs.WriteJSON(w, http.StatusOK, render.Rejected(snap.Dataset.Unmappable))
}

func (s *Server) handleDensity(w http.ResponseWriter, r *http.Request, snap *pipeline.Snapshot) {
	res := s.settings.DensityResolution
	if v := r.URL.Query().Get("res"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "res must be an integer"})
			return
		}
		res = n
	}

	cells, err := spatial.Density(snap.Dataset.Mappable, res)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, cells)
}
