// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	service "github.com/okian/celest/internal/app"
	"github.com/okian/celest/internal/domain/chart"
	"github.com/okian/celest/internal/domain/model"
	"github.com/okian/celest/internal/domain/scoring"
)

// ChartDependencies defines the chart reading operations.
type ChartDependencies interface {
	Wheel(ctx context.Context, birth model.BirthData, at time.Time) (service.WheelReading, error)
	Score(ctx context.Context, natal, transit chart.Raw) (service.ScoreReport, error)
	Dimension(ctx context.Context, birth model.BirthData, d scoring.Dimension, at time.Time) (service.DimensionReading, error)
	Transits(ctx context.Context, birth model.BirthData, at time.Time) (service.TransitReading, error)
	Overlay(point, ascendant float64) (int, error)
	PlanetaryHour(ctx context.Context, lat, lon *float64, at time.Time) (service.HourReading, error)
}

// ChartsHandler handles chart reading requests.
type ChartsHandler struct {
	deps ChartDependencies
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(deps ChartDependencies) *ChartsHandler {
	return &ChartsHandler{deps: deps}
}

// decodeBirth reads a birthRequest body and resolves its instant.
func decodeBirth(w http.ResponseWriter, r *http.Request) (model.BirthData, time.Time, error) {
	var req birthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return model.BirthData{}, time.Time{}, err
	}
	at, err := req.instant()
	if err != nil {
		return model.BirthData{}, time.Time{}, err
	}
	return req.Birth, at, nil
}

// HandleWheel handles POST /v1/wheel requests.
func (h *ChartsHandler) HandleWheel(w http.ResponseWriter, r *http.Request) {
	birth, at, err := decodeBirth(w, r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	reading, err := h.deps.Wheel(r.Context(), birth, at)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// HandleScore handles POST /v1/score requests.
func (h *ChartsHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	report, err := h.deps.Score(r.Context(), req.Natal, req.Transit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleDimension handles POST /v1/dimensions/{dimension} requests.
func (h *ChartsHandler) HandleDimension(w http.ResponseWriter, r *http.Request) {
	d, err := scoring.ParseDimension(r.PathValue("dimension"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	birth, at, err := decodeBirth(w, r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	reading, err := h.deps.Dimension(r.Context(), birth, d, at)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// HandleTransits handles POST /v1/transits requests.
func (h *ChartsHandler) HandleTransits(w http.ResponseWriter, r *http.Request) {
	birth, at, err := decodeBirth(w, r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	reading, err := h.deps.Transits(r.Context(), birth, at)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// HandleOverlay handles GET /v1/overlay?point=&ascendant= requests.
func (h *ChartsHandler) HandleOverlay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	point, err := requiredFloat(q.Get("point"), "point")
	if err != nil {
		writeFailure(w, err)
		return
	}
	asc, err := requiredFloat(q.Get("ascendant"), "ascendant")
	if err != nil {
		writeFailure(w, err)
		return
	}
	house, err := h.deps.Overlay(point, asc)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overlayResponse{Point: point, Ascendant: asc, House: house})
}

// HandlePlanetaryHour handles GET /v1/planetary-hour?lat=&lon=&at= requests.
// Missing coordinates fall back to the configured reference location.
func (h *ChartsHandler) HandlePlanetaryHour(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := optionalFloat(q.Get("lat"), "lat")
	if err != nil {
		writeFailure(w, err)
		return
	}
	lon, err := optionalFloat(q.Get("lon"), "lon")
	if err != nil {
		writeFailure(w, err)
		return
	}
	at, err := parseInstant(q.Get("at"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	reading, err := h.deps.PlanetaryHour(r.Context(), lat, lon, at)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func requiredFloat(s, name string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrBadRequest, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrBadRequest, name)
	}
	return v, nil
}

func optionalFloat(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := requiredFloat(s, name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
