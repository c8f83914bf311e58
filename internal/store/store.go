// Package store persists MetricRecords and serves the history an anomaly
// check analyzes. Two backends implement the same Store interface: an
// embedded DuckDB file with a hand-rolled migration ledger, and a
// relational PostgreSQL backend migrated with golang-migrate.
package store

import (
	"context"
	"time"

	"github.com/weiser-ai/weiser-go/internal/check"
)

// HistoryFilter narrows the records History considers. CheckID, when set,
// restricts to that check's own partitions. Predicate is an additional
// AND-combined SQL boolean expression evaluated against the metrics
// table's columns — the free-form `filter` an anomaly check can supply
// instead of (or alongside) check_id.
type HistoryFilter struct {
	CheckID   string
	Predicate string
}

// Store is the append-only metric store contract. Both backends must
// make Initialize idempotent: calling it against an already-migrated
// database is a no-op.
type Store interface {
	// Initialize ensures the schema exists, applying any pending
	// migrations. Safe to call repeatedly.
	Initialize(ctx context.Context) error

	// Write appends one record. Never retried by the caller on success;
	// repeated calls with identical fields produce distinct rows.
	Write(ctx context.Context, record check.MetricRecord) error

	// History returns actualValue observations matching filter, ordered
	// by runTime ascending, alongside their runTimes.
	History(ctx context.Context, filter HistoryFilter) ([]float64, []time.Time, error)

	// LastValue is a convenience over History for the single most recent
	// observation of checkID. ok is false when no records exist yet.
	LastValue(ctx context.Context, checkID string) (float64, bool, error)

	// Close releases any held connection.
	Close() error
}
