// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/celest/internal/adapters/mq/queue"
	"github.com/okian/celest/internal/adapters/repository"
	service "github.com/okian/celest/internal/app"
	"github.com/okian/celest/internal/domain/chart"
	"github.com/okian/celest/internal/domain/ephemeris"
	"github.com/okian/celest/internal/domain/model"
	"github.com/okian/celest/internal/domain/scoring"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ChartDependencies
	SnapshotDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	chartsHandler    *ChartsHandler
	snapshotsHandler *SnapshotsHandler
	limiter          *RateLimiter
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithRateLimiter limits every business route per client.
func WithRateLimiter(rl *RateLimiter) ServerOption {
	return func(s *Server) {
		s.limiter = rl
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		chartsHandler:    NewChartsHandler(deps),
		snapshotsHandler: NewSnapshotsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	s.route(mux, "POST /v1/wheel", "wheel", s.chartsHandler.HandleWheel)
	s.route(mux, "POST /v1/score", "score", s.chartsHandler.HandleScore)
	s.route(mux, "POST /v1/dimensions/{dimension}", "dimension", s.chartsHandler.HandleDimension)
	s.route(mux, "POST /v1/transits", "transits", s.chartsHandler.HandleTransits)
	s.route(mux, "GET /v1/overlay", "overlay", s.chartsHandler.HandleOverlay)
	s.route(mux, "GET /v1/planetary-hour", "planetary_hour", s.chartsHandler.HandlePlanetaryHour)

	s.route(mux, "POST /v1/snapshots", "snapshots", s.snapshotsHandler.HandlePostSnapshot)
	s.route(mux, "GET /v1/snapshots/{subject_id}", "snapshot", s.snapshotsHandler.HandleGetSnapshot)
	s.route(mux, "GET /v1/snapshots/{subject_id}/history", "snapshot_history", s.snapshotsHandler.HandleGetHistory)
}

func (s *Server) route(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc) {
	if s.limiter != nil {
		h = s.limiter.Middleware(h, endpoint)
	}
	mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
}

// birthRequest is the body shared by the chart reading endpoints.
type birthRequest struct {
	Birth model.BirthData `json:"birth"`
	// At is an RFC 3339 instant; empty means now.
	At string `json:"at,omitempty"`
}

func (b birthRequest) instant() (time.Time, error) {
	return parseInstant(b.At)
}

type scoreRequest struct {
	Natal   chart.Raw `json:"natal"`
	Transit chart.Raw `json:"transit"`
}

type snapshotRequest struct {
	SubjectID string          `json:"subject_id"`
	Birth     model.BirthData `json:"birth"`
}

func (s snapshotRequest) validate() error {
	if strings.TrimSpace(s.SubjectID) == "" {
		return fmt.Errorf("%w: missing subject_id", ErrBadRequest)
	}
	if strings.TrimSpace(s.Birth.Date) == "" {
		return fmt.Errorf("%w: missing birth.date", ErrBadRequest)
	}
	return nil
}

type overlayResponse struct {
	Point     float64 `json:"point"`
	Ascendant float64 `json:"ascendant"`
	House     int     `json:"house"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func parseInstant(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: at must be RFC3339", ErrBadRequest)
	}
	return t, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps an upstream error to its status and code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, chart.ErrInvalidInput),
		errors.Is(err, model.ErrInvalidBirthData),
		errors.Is(err, scoring.ErrUnknownDimension),
		errors.Is(err, ephemeris.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidSubject),
		errors.Is(err, service.ErrInvalidDate):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, queue.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, queue.ErrQueueClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
