package expand

import (
	"testing"

	"github.com/weiser-ai/weiser-go/internal/check"
	"github.com/weiser-ai/weiser-go/internal/sqlgen"
)

func dialect(t *testing.T) sqlgen.Dialect {
	t.Helper()
	d, err := sqlgen.Lookup("postgresql")
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestExpandSimpleRowCount(t *testing.T) {
	desc := check.Descriptor{
		Name:       "orders_row_count",
		Datasource: "warehouse",
		Dataset:    check.Dataset{Table: "orders"},
		Type:       check.TypeRowCount,
		Condition:  check.ConditionGt,
	}
	leaves, err := Expand(desc, dialect(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(leaves.Checks) != 1 {
		t.Fatalf("expected 1 leaf, got %d", len(leaves.Checks))
	}
}

func TestExpandDatasetListDifferentCheckIDs(t *testing.T) {
	desc := check.Descriptor{
		Name:       "row_count",
		Datasource: "warehouse",
		Dataset:    check.Dataset{Tables: []string{"orders", "vendors"}},
		Type:       check.TypeRowCount,
		Condition:  check.ConditionGt,
	}
	leaves, err := Expand(desc, dialect(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(leaves.Checks) != 2 {
		t.Fatalf("expected 2 leaves, got %d", len(leaves.Checks))
	}
	if leaves.Checks[0].Name != leaves.Checks[1].Name {
		t.Fatalf("expected shared declaration name, got %q vs %q", leaves.Checks[0].Name, leaves.Checks[1].Name)
	}
	if leaves.Checks[0].CheckID == leaves.Checks[1].CheckID {
		t.Fatal("expected different checkIds for different datasets")
	}
}

func TestExpandNotEmptyFanOutMatchesDimensionCount(t *testing.T) {
	desc := check.Descriptor{
		Name:       "customers_complete",
		Datasource: "warehouse",
		Dataset:    check.Dataset{Table: "customers"},
		Type:       check.TypeNotEmpty,
		Condition:  check.ConditionLe,
		Dimensions: []string{"email", "phone"},
	}
	leaves, err := Expand(desc, dialect(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(leaves.Checks) != len(desc.Dimensions) {
		t.Fatalf("expected %d leaves, got %d", len(desc.Dimensions), len(leaves.Checks))
	}
	if leaves.Checks[0].CheckID != leaves.Checks[1].CheckID {
		t.Fatal("not_empty leaves for the same declared check must share a checkId")
	}
}

func TestExpandAnomalyRequiresCheckIDOrFilter(t *testing.T) {
	desc := check.Descriptor{
		Name:       "z_score",
		Datasource: "metricstore",
		Type:       check.TypeAnomaly,
		Condition:  check.ConditionBetween,
	}
	if _, err := Expand(desc, dialect(t)); err == nil {
		t.Fatal("expected error when anomaly has neither check_id nor filter")
	}
}

func TestExpandAnomalyWithCheckID(t *testing.T) {
	desc := check.Descriptor{
		Name:       "z_score",
		Datasource: "metricstore",
		Type:       check.TypeAnomaly,
		Condition:  check.ConditionBetween,
		CheckID:    "abc123",
	}
	leaves, err := Expand(desc, dialect(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(leaves.Checks) != 1 {
		t.Fatalf("expected 1 leaf, got %d", len(leaves.Checks))
	}
	if leaves.Checks[0].AnomalyCheckID != "abc123" {
		t.Fatalf("expected anomaly target propagated, got %q", leaves.Checks[0].AnomalyCheckID)
	}
}
