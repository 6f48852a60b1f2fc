// Package repository stores daily snapshots: one reading per subject per UTC
// day, replaced on recompute.
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/celest/internal/domain/model"
	"github.com/okian/celest/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// MemoryStore is an in-memory Store. Dates are YYYY-MM-DD strings, so lexical
// order is chronological order.
type MemoryStore struct {
	mu        sync.RWMutex
	bySubject map[string]map[string]model.Snapshot
	count     int

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
	stopOnce              sync.Once
}

// NewMemoryStore constructs a store and starts its metrics updater, which
// runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		bySubject:             make(map[string]map[string]model.Snapshot),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

func validDate(d string) bool {
	_, err := time.Parse(model.DateLayout, d)
	return err == nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, snap model.Snapshot) error { //nolint:gocritic // snapshots are stored by value
	if snap.SubjectID == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidSnapshot)
	}
	if !validDate(snap.Date) {
		return fmt.Errorf("%w: date %q", ErrInvalidSnapshot, snap.Date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	days, ok := s.bySubject[snap.SubjectID]
	if !ok {
		days = make(map[string]model.Snapshot)
		s.bySubject[snap.SubjectID] = days
	}
	if _, exists := days[snap.Date]; !exists {
		s.count++
	}
	days[snap.Date] = snap
	metrics.RecordSnapshotStored()
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, subjectID, date string) (model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.bySubject[subjectID][date]
	if !ok {
		return model.Snapshot{}, fmt.Errorf("%w: %s on %s", ErrNotFound, subjectID, date)
	}
	return snap, nil
}

// History implements Store.
func (s *MemoryStore) History(_ context.Context, subjectID, from, to string) ([]model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days, ok := s.bySubject[subjectID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, subjectID)
	}
	out := make([]model.Snapshot, 0, len(days))
	for d, snap := range days {
		if (from != "" && d < from) || (to != "" && d > to) {
			continue
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Prune implements Store.
func (s *MemoryStore) Prune(_ context.Context, before string) (int, error) {
	if !validDate(before) {
		return 0, fmt.Errorf("%w: date %q", ErrInvalidSnapshot, before)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for subject, days := range s.bySubject {
		for d := range days {
			if d < before {
				delete(days, d)
				removed++
			}
		}
		if len(days) == 0 {
			delete(s.bySubject, subject)
		}
	}
	s.count -= removed
	metrics.RecordSnapshotsPruned(removed)
	return removed, nil
}

// Subjects implements Store.
func (s *MemoryStore) Subjects(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.bySubject))
	for id := range s.bySubject {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateSnapshotsTotal(s.Count(ctx))
			}
		}
	}()
}
