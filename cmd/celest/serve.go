package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/celest/internal/adapters/http/api"
	"github.com/okian/celest/internal/adapters/http/swagger"
	service "github.com/okian/celest/internal/app"
	"github.com/okian/celest/internal/config"
	"github.com/okian/celest/pkg/logger"
	"github.com/okian/celest/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API and the daily snapshot pipeline.

Configuration layers defaults, the YAML file named by CELEST_CONFIG and
CELEST_* environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Root context with cancel on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if !cmd.Flags().Changed("log-format") {
				if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
					return fmt.Errorf("init logging: %w", err)
				}
			}
			level := cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = cmd.Flag("log-level").Value.String()
			}
			if err := logger.SetLevelString(level); err != nil {
				logger.Get().Warn(ctx, "invalid log level, using info", logger.String("level", level))
				_ = logger.SetLevelString("info")
			}
			defer func() { _ = logger.Sync() }()

			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides CELEST_ADDR)")
	return cmd
}

// newServer builds the HTTP server for a service.
func newServer(ctx context.Context, cfg *config.Config, svc *service.Service) *http.Server {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)

	var opts []api.ServerOption
	if cfg.RateLimitRPS > 0 {
		rl := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		rl.StartSweeper(ctx)
		opts = append(opts, api.WithRateLimiter(rl))
	}
	api.NewServer(svc, opts...).Register(ctx, mux)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, err := service.New(
		service.WithLogger(log.Named("service")),
		service.WithConfig(cfg),
	)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := newServer(ctx, cfg, svc)
	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.Bool("rateLimited", cfg.RateLimitRPS > 0),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down server...", logger.Duration("timeout", cfg.ShutdownTimeout))
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return runErr
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats publishes the queue, snapshot and worker gauges.
			_ = svc.GetStats()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
