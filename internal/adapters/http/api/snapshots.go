// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	service "github.com/okian/celest/internal/app"
	"github.com/okian/celest/internal/domain/model"
)

// SnapshotDependencies defines the daily snapshot operations.
type SnapshotDependencies interface {
	RequestSnapshot(ctx context.Context, subjectID string, birth model.BirthData) (service.SnapshotAck, error)
	Snapshot(ctx context.Context, subjectID, date string) (model.Snapshot, error)
	History(ctx context.Context, subjectID, from, to string) ([]model.Snapshot, error)
}

// SnapshotsHandler handles snapshot requests.
type SnapshotsHandler struct {
	deps SnapshotDependencies
}

// NewSnapshotsHandler creates a new snapshots handler.
func NewSnapshotsHandler(deps SnapshotDependencies) *SnapshotsHandler {
	return &SnapshotsHandler{deps: deps}
}

// HandlePostSnapshot handles POST /v1/snapshots requests. New jobs are
// accepted with 202; a duplicate subject-day is acknowledged with 200.
func (h *SnapshotsHandler) HandlePostSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeFailure(w, err)
		return
	}
	ack, err := h.deps.RequestSnapshot(r.Context(), req.SubjectID, req.Birth)
	if err != nil {
		writeFailure(w, err)
		return
	}
	status := http.StatusAccepted
	if ack.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, ack)
}

// HandleGetSnapshot handles GET /v1/snapshots/{subject_id}?date= requests.
func (h *SnapshotsHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Snapshot(r.Context(), r.PathValue("subject_id"), r.URL.Query().Get("date"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleGetHistory handles GET /v1/snapshots/{subject_id}/history?from=&to=
// requests.
func (h *SnapshotsHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snaps, err := h.deps.History(r.Context(), r.PathValue("subject_id"), q.Get("from"), q.Get("to"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	if snaps == nil {
		snaps = []model.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}
