package sqlgen

import (
	"strings"
	"testing"

	"github.com/weiser-ai/weiser-go/internal/check"
)

func mustDialect(t *testing.T, tag string) Dialect {
	t.Helper()
	d, err := Lookup(tag)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", tag, err)
	}
	return d
}

func TestComposeRowCount(t *testing.T) {
	desc := check.Descriptor{
		Name:      "orders_row_count",
		Type:      check.TypeRowCount,
		Condition: check.ConditionGt,
	}
	stmts, err := Compose(desc, check.Dataset{Table: "orders"}, mustDialect(t, "postgresql"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if !strings.Contains(stmts[0].SQL, "COUNT(*)") {
		t.Fatalf("expected COUNT(*), got %q", stmts[0].SQL)
	}
	if !strings.Contains(stmts[0].SQL, `"orders" AS d`) {
		t.Fatalf("expected quoted table reference, got %q", stmts[0].SQL)
	}
}

func TestComposeDeterministic(t *testing.T) {
	desc := check.Descriptor{
		Name:       "vendors_row_count",
		Type:       check.TypeRowCount,
		Condition:  check.ConditionGt,
		Dimensions: []string{"tenant_id"},
	}
	dialect := mustDialect(t, "postgresql")
	a, err := Compose(desc, check.Dataset{Table: "vendors"}, dialect)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compose(desc, check.Dataset{Table: "vendors"}, dialect)
	if err != nil {
		t.Fatal(err)
	}
	if a[0].SQL != b[0].SQL {
		t.Fatalf("composer is not deterministic: %q vs %q", a[0].SQL, b[0].SQL)
	}
}

func TestComposeSumRequiresMeasure(t *testing.T) {
	desc := check.Descriptor{Name: "bad_sum", Type: check.TypeSum}
	if _, err := Compose(desc, check.Dataset{Table: "orders"}, mustDialect(t, "postgresql")); err == nil {
		t.Fatal("expected error for sum with no measure")
	}
}

func TestComposeRawDataset(t *testing.T) {
	desc := check.Descriptor{Name: "raw_check", Type: check.TypeRowCount}
	stmts, err := Compose(desc, check.Dataset{RawSQL: "SELECT * FROM orders WHERE active"}, mustDialect(t, "postgresql"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stmts[0].SQL, "(SELECT * FROM orders WHERE active) AS d") {
		t.Fatalf("expected wrapped raw SQL, got %q", stmts[0].SQL)
	}
}

func TestComposeNotEmptyFansOutPerDimension(t *testing.T) {
	desc := check.Descriptor{
		Name:       "customers_complete",
		Type:       check.TypeNotEmpty,
		Dimensions: []string{"email", "phone"},
	}
	stmts, err := Compose(desc, check.Dataset{Table: "customers"}, mustDialect(t, "postgresql"))
	if err != nil {
		t.Fatal(err)
	}
	if len(stmts) != len(desc.Dimensions) {
		t.Fatalf("expected %d leaves, got %d", len(desc.Dimensions), len(stmts))
	}
	wantNames := []string{"customers_complete_email_not_empty", "customers_complete_phone_not_empty"}
	for i, want := range wantNames {
		if stmts[i].LeafName != want {
			t.Fatalf("leaf %d: expected name %q, got %q", i, want, stmts[i].LeafName)
		}
	}
}

func TestComposeNotEmptyRequiresDimensions(t *testing.T) {
	desc := check.Descriptor{Name: "bad", Type: check.TypeNotEmpty}
	if _, err := Compose(desc, check.Dataset{Table: "customers"}, mustDialect(t, "postgresql")); err == nil {
		t.Fatal("expected error for not_empty with no dimensions")
	}
}

func TestComposeNotEmptyPctUsesCast(t *testing.T) {
	desc := check.Descriptor{Name: "c", Type: check.TypeNotEmptyPct, Dimensions: []string{"email"}}
	stmts, err := Compose(desc, check.Dataset{Table: "customers"}, mustDialect(t, "postgresql"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stmts[0].SQL, "DOUBLE PRECISION") {
		t.Fatalf("expected DOUBLE PRECISION cast, got %q", stmts[0].SQL)
	}
}

func TestComposeAnomalyHasNoSQL(t *testing.T) {
	desc := check.Descriptor{Name: "anom", Type: check.TypeAnomaly}
	if _, err := Compose(desc, check.Dataset{}, mustDialect(t, "postgresql")); err == nil {
		t.Fatal("expected error composing SQL for an anomaly check")
	}
}

func TestComposeTimeDimensionAcrossDialects(t *testing.T) {
	desc := check.Descriptor{
		Name: "daily_rows",
		Type: check.TypeRowCount,
		TimeDimension: &check.TimeDimension{
			Name:        "created_at",
			Granularity: check.GranularityDay,
		},
	}
	for _, tag := range []string{"postgresql", "mysql", "snowflake", "databricks", "bigquery", "duckdb"} {
		stmts, err := Compose(desc, check.Dataset{Table: "orders"}, mustDialect(t, tag))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tag, err)
		}
		if !strings.Contains(stmts[0].SQL, "GROUP BY") {
			t.Fatalf("%s: expected GROUP BY for time-bucketed check, got %q", tag, stmts[0].SQL)
		}
	}
}

func TestComposeDatasetList(t *testing.T) {
	// Dataset-list fan-out is one level up (Expander); Compose only ever
	// sees one resolved table at a time.
	desc := check.Descriptor{Name: "multi", Type: check.TypeRowCount}
	for _, table := range []string{"orders", "vendors"} {
		stmts, err := Compose(desc, check.Dataset{Table: table}, mustDialect(t, "postgresql"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stmts[0].SQL, table) {
			t.Fatalf("expected %q in SQL, got %q", table, stmts[0].SQL)
		}
	}
}
