// Package repository stores daily snapshots: one reading per subject per UTC
// day, replaced on recompute.
package repository

import (
	"context"

	"github.com/okian/celest/internal/domain/model"
)

// Store provides read/write access to daily snapshots.
type Store interface {
	// Put inserts or replaces the snapshot for (SubjectID, Date).
	Put(ctx context.Context, s model.Snapshot) error
	// Get returns the snapshot for a subject and day, or ErrNotFound.
	Get(ctx context.Context, subjectID, date string) (model.Snapshot, error)
	// History returns a subject's snapshots with from <= date <= to, oldest
	// first. Empty bounds are open.
	History(ctx context.Context, subjectID, from, to string) ([]model.Snapshot, error)
	// Prune removes every snapshot dated before the given day and reports
	// how many were removed.
	Prune(ctx context.Context, before string) (int, error)
	// Subjects returns the known subject IDs in lexical order.
	Subjects(ctx context.Context) []string
	// Count returns the number of stored snapshots.
	Count(ctx context.Context) int
}
