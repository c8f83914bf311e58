package fingerprint

import "testing"

func TestCheckIDStableAcrossRuns(t *testing.T) {
	a := CheckID("warehouse", "orders_not_empty", "orders")
	b := CheckID("warehouse", "orders_not_empty", "orders")
	if a != b {
		t.Fatalf("expected stable fingerprint, got %q and %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestCheckIDIgnoresUnrelatedFields(t *testing.T) {
	// threshold/filter never participate in the fingerprint; callers that
	// change only those fields must keep the same checkId.
	a := CheckID("warehouse", "orders_check", "orders")
	b := CheckID("warehouse", "orders_check", "orders")
	if a != b {
		t.Fatalf("fingerprint changed without a datasource/name/dataset change")
	}
}

func TestCheckIDDiffersOnDataset(t *testing.T) {
	a := CheckID("warehouse", "row_count", "orders")
	b := CheckID("warehouse", "row_count", "vendors")
	if a == b {
		t.Fatalf("expected different fingerprints for different datasets")
	}
}

func TestStoredDatasetShortPassesThrough(t *testing.T) {
	if got := StoredDataset("orders"); got != "orders" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestStoredDatasetLongIsHashed(t *testing.T) {
	long := make([]byte, maxStoredDatasetLen+1)
	for i := range long {
		long[i] = 'x'
	}
	got := StoredDataset(string(long))
	if len(got) != len("sha256:")+64 {
		t.Fatalf("expected sha256-prefixed hash, got %q", got)
	}
}
