// Package worker computes and stores daily snapshots from queued jobs.
package worker

import (
	"github.com/okian/celest/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithFailureHook registers a callback for failed jobs.
func WithFailureHook(fn FailureFunc) Option {
	return func(w *InMemoryWorker) {
		if fn != nil {
			w.onFailure = fn
		}
	}
}
