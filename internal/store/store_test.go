package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/weiser-ai/weiser-go/internal/check"
)

func newTestDuckDB(t *testing.T) *DuckDB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "weiser-test.duckdb")
	d, err := NewDuckDB(DuckDBConfig{Path: dbPath})
	if err != nil {
		t.Fatalf("NewDuckDB: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return d
}

func TestDuckDBInitializeIdempotent(t *testing.T) {
	d := newTestDuckDB(t)
	if err := d.Initialize(context.Background()); err != nil {
		t.Fatalf("second Initialize should be a no-op, got: %v", err)
	}
}

func record(checkID string, value float64, runTime time.Time) check.MetricRecord {
	return check.MetricRecord{
		RunID:       "run-1",
		CheckID:     checkID,
		Name:        "orders_row_count",
		Datasource:  "warehouse",
		Dataset:     "orders",
		Type:        check.TypeRowCount,
		Condition:   check.ConditionGt,
		ActualValue: &value,
		Success:     true,
		RunTime:     runTime,
	}
}

func TestDuckDBHistoryOrderedByRunTime(t *testing.T) {
	d := newTestDuckDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// insert out of chronological order
	if err := d.Write(ctx, record("abc", 30, base.Add(2*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := d.Write(ctx, record("abc", 10, base)); err != nil {
		t.Fatal(err)
	}
	if err := d.Write(ctx, record("abc", 20, base.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	// unrelated checkId must not leak into history
	if err := d.Write(ctx, record("other", 999, base)); err != nil {
		t.Fatal(err)
	}

	values, times, err := d.History(ctx, HistoryFilter{CheckID: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{10, 20, 30}
	if len(values) != len(want) {
		t.Fatalf("expected %d values, got %d: %v", len(want), len(values), values)
	}
	for i, v := range want {
		if values[i] != v {
			t.Fatalf("values[%d] = %v, want %v", i, values[i], v)
		}
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			t.Fatalf("times not ascending: %v", times)
		}
	}
}

func TestDuckDBLastValue(t *testing.T) {
	d := newTestDuckDB(t)
	ctx := context.Background()

	if _, ok, err := d.LastValue(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected ok=false for a check with no history, got ok=%v err=%v", ok, err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = d.Write(ctx, record("abc", 1, base))
	_ = d.Write(ctx, record("abc", 2, base.Add(time.Hour)))

	v, ok, err := d.LastValue(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("LastValue: ok=%v err=%v", ok, err)
	}
	if v != 2 {
		t.Fatalf("LastValue = %v, want 2", v)
	}
}
