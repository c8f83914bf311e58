package cmd

import (
	"context"
	"time"

	"github.com/weiser-ai/weiser-go/internal/alerting"
	"github.com/weiser-ai/weiser-go/internal/check"
	"github.com/weiser-ai/weiser-go/internal/store"
)

// discardStore is a no-op sink for sample runs: it has no real backend,
// so anomaly checks sampled in isolation always see empty history. Every
// Write is captured in records instead of persisted.
type discardStore struct {
	records []check.MetricRecord
}

func (d *discardStore) Initialize(ctx context.Context) error { return nil }

func (d *discardStore) Write(ctx context.Context, record check.MetricRecord) error {
	d.records = append(d.records, record)
	return nil
}

func (d *discardStore) History(ctx context.Context, filter store.HistoryFilter) ([]float64, []time.Time, error) {
	return nil, nil, nil
}

func (d *discardStore) LastValue(ctx context.Context, checkID string) (float64, bool, error) {
	return 0, false, nil
}

func (d *discardStore) Close() error { return nil }

var _ store.Store = (*discardStore)(nil)

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, summary alerting.Summary) error { return nil }
