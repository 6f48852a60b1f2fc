// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/celest/internal/adapters/mq/queue"
	"github.com/okian/celest/internal/adapters/mq/worker"
	"github.com/okian/celest/internal/adapters/repository"
	"github.com/okian/celest/internal/config"
	"github.com/okian/celest/internal/domain/dedupe"
	"github.com/okian/celest/internal/domain/ephemeris"
	"github.com/okian/celest/internal/domain/model"
	"github.com/okian/celest/internal/domain/natalcache"
	"github.com/okian/celest/internal/domain/planetaryhour"
	"github.com/okian/celest/internal/domain/scoring"
	"github.com/okian/celest/pkg/logger"
	"github.com/okian/celest/pkg/metrics"
)

// Service scores charts on demand and keeps daily snapshots for known
// subjects.
type Service struct {
	mu sync.RWMutex

	// Scoring components, ready after New.
	oracle  ephemeris.Oracle
	engine  *scoring.Engine
	builder *ephemeris.Builder
	natal   *natalcache.Cache
	hours   *planetaryhour.Calculator

	// Snapshot pipeline, created by Start.
	store   *repository.MemoryStore
	deduper dedupe.Deduper
	queue   queue.Queue
	pool    *worker.Pool
	cron    *cron.Cron
	cancel  context.CancelFunc

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	natalCacheSize  int
	refLatitude     float64
	refLongitude    float64
	refreshSchedule string
	retentionDays   int
	now             func() time.Time

	// subjects remembers the birth data of every subject that requested a
	// snapshot, so the scheduled refresh can recompute them.
	subjectsMu sync.RWMutex
	subjects   map[string]model.BirthData

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of snapshot workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the snapshot job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the number of remembered subject-day job keys.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithNatalCacheSize bounds the natal chart memo.
func WithNatalCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.natalCacheSize = size
		}
	}
}

// WithReferenceLocation sets the coordinates used for the planetary hour
// when a request gives none.
func WithReferenceLocation(lat, lon float64) Option {
	return func(s *Service) {
		s.refLatitude, s.refLongitude = lat, lon
	}
}

// WithRefreshSchedule sets the cron expression (UTC) of the daily snapshot
// refresh. An empty schedule disables it.
func WithRefreshSchedule(spec string) Option {
	return func(s *Service) {
		s.refreshSchedule = spec
	}
}

// WithRetentionDays sets how many days of snapshots a refresh keeps. Zero
// keeps everything.
func WithRetentionDays(days int) Option {
	return func(s *Service) {
		if days >= 0 {
			s.retentionDays = days
		}
	}
}

// WithOracle replaces the analytic ephemeris.
func WithOracle(o ephemeris.Oracle) Option {
	return func(s *Service) {
		if o != nil {
			s.oracle = o
		}
	}
}

// WithClock sets the clock used for default instants, snapshot days and the
// dimension rhythm.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig applies every service setting of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		for _, opt := range []Option{
			WithWorkerCount(cfg.WorkerCount),
			WithQueueSize(cfg.QueueSize),
			WithDedupeSize(cfg.DedupeSize),
			WithNatalCacheSize(cfg.NatalCacheSize),
			WithReferenceLocation(cfg.ReferenceLatitude, cfg.ReferenceLongitude),
			WithRefreshSchedule(cfg.RefreshSchedule),
			WithRetentionDays(cfg.SnapshotRetentionDays),
		} {
			opt(s)
		}
	}
}

// New constructs a Service. The scoring methods are usable right away; the
// snapshot pipeline needs Start.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		workerCount:    runtime.NumCPU() * 2,
		queueSize:      10000,
		dedupeSize:     dedupe.DefaultMaxSize,
		natalCacheSize: natalcache.DefaultSize,
		now:            time.Now,
		subjects:       make(map[string]model.BirthData),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.oracle == nil {
		s.oracle = ephemeris.NewAnalytic()
	}

	s.engine = scoring.NewEngine(scoring.WithClock(s.now))
	s.builder = ephemeris.NewBuilder(s.oracle)
	s.hours = planetaryhour.NewCalculator(s.oracle)

	natal, err := natalcache.New(s.builder.Natal,
		natalcache.WithSize(s.natalCacheSize),
		natalcache.WithObserver(metrics.RecordNatalCache),
	)
	if err != nil {
		return nil, fmt.Errorf("natal cache: %w", err)
	}
	s.natal = natal
	return s, nil
}

// Start creates the snapshot pipeline and, when scheduled, the daily refresh.
// Workers outlive ctx cancellation so that Stop can drain the queue.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting celest service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	s.store = repository.NewMemoryStore(runCtx)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s.store,
		worker.WithFailureHook(s.onJobFailure),
	)

	if s.refreshSchedule != "" {
		c := cron.New(cron.WithLocation(time.UTC))
		if _, err := c.AddFunc(s.refreshSchedule, func() { s.scheduledRefresh(runCtx) }); err != nil {
			cancel()
			_ = s.store.Close()
			return fmt.Errorf("refresh schedule %q: %w", s.refreshSchedule, err)
		}
		s.cron = c
		c.Start()
	}

	s.pool.Start(runCtx)
	s.cancel = cancel
	s.started = true

	s.logger.Info(ctx, "celest service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("refreshSchedule", s.refreshSchedule),
		logger.Bool("scheduled", s.cron != nil),
		logger.Any("reference", [2]float64{s.refLatitude, s.refLongitude}),
	)
	return nil
}

// Stop stops the refresh schedule, drains the queue within ctx and closes
// the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	c, pool, store, cancel := s.cron, s.pool, s.store, s.cancel
	s.cron = nil
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping celest service...")

	var errs []error
	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("refresh still running: %w", ctx.Err()))
		}
	}
	if err := pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	cancel()
	if err := store.Close(); err != nil {
		errs = append(errs, err)
	}

	s.logger.Info(ctx, "celest service stopped")
	return errors.Join(errs...)
}

// pipeline returns the snapshot components, or ErrNotStarted.
func (s *Service) pipeline() (*repository.MemoryStore, dedupe.Deduper, queue.Queue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, nil, ErrNotStarted
	}
	return s.store, s.deduper, s.queue, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"dedupeSize":     s.dedupeSize,
		"natalCacheSize": s.natalCacheSize,
		"natalCached":    s.natal.Len(),
		"subjects":       s.subjectCount(),
	}

	if s.started {
		queueLen := s.queue.Len()
		snapshots := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["snapshots"] = snapshots
		stats["dedupeKeys"] = s.deduper.Size()
		if s.cron != nil {
			if entries := s.cron.Entries(); len(entries) > 0 {
				stats["nextRefresh"] = entries[0].Next.UTC().Format(time.RFC3339)
			}
		}

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateSnapshotsTotal(snapshots)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}

func (s *Service) subjectCount() int {
	s.subjectsMu.RLock()
	defer s.subjectsMu.RUnlock()
	return len(s.subjects)
}
