// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/celest/internal/adapters/mq/worker"
	"github.com/okian/celest/internal/domain/model"
	"github.com/okian/celest/internal/domain/scoring"
	"github.com/okian/celest/pkg/logger"
	"github.com/okian/celest/pkg/metrics"
)

// SnapshotAck acknowledges a snapshot request.
type SnapshotAck struct {
	// JobID is empty when the request duplicated a pending or computed job.
	JobID     string `json:"job_id,omitempty"`
	SubjectID string `json:"subject_id"`
	Date      string `json:"date"`
	Duplicate bool   `json:"duplicate"`
}

// today returns the service clock's UTC day.
func (s *Service) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// RequestSnapshot registers the subject for the daily refresh and queues
// today's snapshot. A second request for the same subject and day is
// acknowledged as a duplicate without queueing another job.
func (s *Service) RequestSnapshot(ctx context.Context, subjectID string, birth model.BirthData) (SnapshotAck, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return SnapshotAck{}, ErrInvalidSubject
	}
	if err := birth.Validate(); err != nil {
		return SnapshotAck{}, err
	}
	if _, _, _, err := s.pipeline(); err != nil {
		return SnapshotAck{}, err
	}

	s.subjectsMu.Lock()
	s.subjects[subjectID] = birth
	s.subjectsMu.Unlock()

	return s.enqueue(ctx, subjectID, birth, s.today().Format(model.DateLayout))
}

func (s *Service) enqueue(ctx context.Context, subjectID string, birth model.BirthData, date string) (SnapshotAck, error) {
	_, deduper, q, err := s.pipeline()
	if err != nil {
		return SnapshotAck{}, err
	}

	job := model.SnapshotJob{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Birth:     birth,
		Date:      date,
	}
	ack := SnapshotAck{SubjectID: subjectID, Date: date}

	if deduper.SeenAndRecord(ctx, job.Key()) {
		metrics.RecordSnapshotDuplicate()
		s.logger.Debug(ctx, "duplicate snapshot request",
			logger.String("subject_id", subjectID),
			logger.String("date", date),
		)
		ack.Duplicate = true
		return ack, nil
	}
	if err := q.Enqueue(ctx, job); err != nil {
		deduper.Unrecord(ctx, job.Key())
		return SnapshotAck{}, fmt.Errorf("enqueue snapshot: %w", err)
	}
	ack.JobID = job.ID
	return ack, nil
}

// onJobFailure forgets the job key so that the subject-day can be retried.
func (s *Service) onJobFailure(ctx context.Context, j worker.Job, _ error) { //nolint:gocritic // jobs are passed by value through the channel
	if _, deduper, _, err := s.pipeline(); err == nil {
		deduper.Unrecord(ctx, j.Key())
	}
}

// Snapshot returns a subject's stored snapshot for a day (today when empty).
func (s *Service) Snapshot(ctx context.Context, subjectID, date string) (model.Snapshot, error) {
	store, _, _, err := s.pipeline()
	if err != nil {
		return model.Snapshot{}, err
	}
	if date == "" {
		date = s.today().Format(model.DateLayout)
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return store.Get(ctx, subjectID, date)
}

// History returns a subject's snapshots between from and to inclusive.
// Empty bounds are open.
func (s *Service) History(ctx context.Context, subjectID, from, to string) ([]model.Snapshot, error) {
	store, _, _, err := s.pipeline()
	if err != nil {
		return nil, err
	}
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, d); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, d)
		}
	}
	return store.History(ctx, subjectID, from, to)
}

// ComputeSnapshot scores one subject-day with the sky at noon UTC. It
// implements worker.Computer.
func (s *Service) ComputeSnapshot(ctx context.Context, j worker.Job) (model.Snapshot, error) { //nolint:gocritic // jobs are passed by value through the channel
	day, err := time.ParseInLocation(model.DateLayout, j.Date, time.UTC)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidDate, j.Date)
	}
	at := day.Add(trendHour * time.Hour)

	natal, transit, err := s.charts(ctx, j.Birth, at)
	if err != nil {
		return model.Snapshot{}, err
	}
	s.degraded(ctx, "natal", natal)
	s.degraded(ctx, "transit", transit)

	start := time.Now()
	w := s.engine.ComputeSectorWheel(&natal.Chart, &transit.Chart)
	recordWheel(w)
	dims := make(map[scoring.Dimension]int, len(scoring.Dimensions))
	for _, d := range scoring.Dimensions {
		res := s.engine.ComputeDimensionScore(&natal.Chart, &transit.Chart, d)
		metrics.RecordDimensionScore(string(d), res.Score)
		dims[d] = res.Score
	}
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)

	return model.Snapshot{
		ID:           j.ID,
		SubjectID:    j.SubjectID,
		Date:         j.Date,
		Mental:       dims[scoring.Mental],
		Physical:     dims[scoring.Physical],
		Emotional:    dims[scoring.Emotional],
		Productivity: model.ProductivityOf(dims[scoring.Mental], dims[scoring.Physical]),
		Harmony:      w.Harmony,
		Verdict:      string(scoring.ComputeSynergy(dims).Verdict),
		ComputedAt:   s.now().UTC(),
	}, nil
}

// Refresh queues today's snapshot for every registered subject and prunes
// snapshots older than the retention window. It returns the number of jobs
// queued; subjects already computed today are skipped.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	store, _, _, err := s.pipeline()
	if err != nil {
		return 0, err
	}

	s.subjectsMu.RLock()
	ids := make([]string, 0, len(s.subjects))
	births := make(map[string]model.BirthData, len(s.subjects))
	for id, b := range s.subjects {
		ids = append(ids, id)
		births[id] = b
	}
	s.subjectsMu.RUnlock()
	sort.Strings(ids)

	today := s.today()
	date := today.Format(model.DateLayout)
	queued := 0
	var errs []error
	for _, id := range ids {
		ack, err := s.enqueue(ctx, id, births[id], date)
		if err != nil {
			errs = append(errs, fmt.Errorf("subject %s: %w", id, err))
			continue
		}
		if !ack.Duplicate {
			queued++
		}
	}

	if s.retentionDays > 0 {
		cutoff := today.AddDate(0, 0, -s.retentionDays).Format(model.DateLayout)
		pruned, err := store.Prune(ctx, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("prune: %w", err))
		}
		metrics.RecordSnapshotsPruned(pruned)
	}
	metrics.RecordRefreshRun(float64(s.now().Unix()), queued)
	return queued, errors.Join(errs...)
}

func (s *Service) scheduledRefresh(ctx context.Context) {
	start := time.Now()
	queued, err := s.Refresh(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "refresh_error")
		s.logger.Error(ctx, "snapshot refresh failed",
			logger.Int("queued", queued),
			logger.Error(err),
		)
		return
	}
	s.logger.Info(ctx, "snapshot refresh queued",
		logger.Int("queued", queued),
		logger.Duration("took", time.Since(start)),
	)
}
