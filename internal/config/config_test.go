package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/weiser-ai/weiser-go/internal/check"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const baseDoc = `
version: 1
datasources:
  - name: warehouse
    type: postgresql
    host: localhost
    port: 5432
    db_name: analytics
    user: reader
    password: secret
connections:
  - type: metricstore
    db_type: duckdb
    path: ./weiser.duckdb
checks:
  - name: orders_row_count
    datasource: warehouse
    dataset: orders
    type: row_count
    condition: gt
    threshold: 0
  - name: orders_sum
    datasource: warehouse
    dataset:
      sql: "SELECT * FROM orders WHERE active"
    type: numeric
    measure: "sum(amount)"
    condition: between
    threshold: [1000, 2000]
`

func TestLoadValidDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "weiser.yml", baseDoc)

	loaded, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Store.DBType != "duckdb" {
		t.Fatalf("expected duckdb store, got %q", loaded.Store.DBType)
	}
	if len(loaded.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(loaded.Checks))
	}
	if loaded.Checks[0].Dataset.Table != "orders" {
		t.Fatalf("expected table dataset, got %+v", loaded.Checks[0].Dataset)
	}
	if loaded.Checks[1].Dataset.RawSQL == "" {
		t.Fatalf("expected raw SQL dataset for second check")
	}
	if loaded.Checks[1].Threshold.Pair == nil || loaded.Checks[1].Threshold.Pair[0] != 1000 {
		t.Fatalf("expected threshold pair [1000, 2000], got %+v", loaded.Checks[1].Threshold)
	}
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "weiser.yml", `
version: 2
connections:
  - type: metricstore
    db_type: duckdb
    path: ./x.duckdb
`)
	if _, err := Load(path, Options{}); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestLoadRequiresMetricStoreConnection(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "weiser.yml", "version: 1\n")
	if _, err := Load(path, Options{}); err == nil {
		t.Fatal("expected error when no metricstore connection is declared")
	}
}

func TestLoadRejectsBetweenWithoutPair(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "weiser.yml", `
version: 1
connections:
  - type: metricstore
    db_type: duckdb
    path: ./x.duckdb
checks:
  - name: bad
    dataset: orders
    type: row_count
    condition: between
    threshold: 5
`)
	if _, err := Load(path, Options{}); err == nil {
		t.Fatal("expected error for between condition with scalar threshold")
	}
}

func TestLoadRejectsAnomalyWithoutCheckIDOrFilter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "weiser.yml", `
version: 1
connections:
  - type: metricstore
    db_type: duckdb
    path: ./x.duckdb
checks:
  - name: z
    type: anomaly
    condition: between
    threshold: [-3.5, 3.5]
`)
	if _, err := Load(path, Options{}); err == nil {
		t.Fatal("expected error for anomaly with neither check_id nor filter")
	}
}

func TestLoadMergesIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "checks.yml", `
version: 1
checks:
  - name: included_check
    dataset: vendors
    type: row_count
    condition: gt
    threshold: 0
`)
	path := writeFile(t, dir, "weiser.yml", `
version: 1
includes:
  - checks.yml
connections:
  - type: metricstore
    db_type: duckdb
    path: ./x.duckdb
checks:
  - name: root_check
    dataset: orders
    type: row_count
    condition: gt
    threshold: 0
`)
	loaded, err := Load(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Checks) != 2 {
		t.Fatalf("expected 2 checks after include merge, got %d", len(loaded.Checks))
	}
}

func TestLoadTemplateExpansionFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "DB_HOST=db.internal\n")
	path := writeFile(t, dir, "weiser.yml", `
version: 1
datasources:
  - name: warehouse
    type: postgresql
    host: "{{ DB_HOST }}"
    port: 5432
    db_name: analytics
connections:
  - type: metricstore
    db_type: duckdb
    path: ./x.duckdb
`)
	loaded, err := Load(path, Options{EnvFile: envPath})
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Datasources["warehouse"].Host != "db.internal" {
		t.Fatalf("expected templated host, got %q", loaded.Datasources["warehouse"].Host)
	}
}

func TestDescriptorConditionGtRequiresScalar(t *testing.T) {
	_, err := checkSpec{
		Name:      "x",
		Dataset:   datasetSpec{Table: "orders"},
		Type:      string(check.TypeRowCount),
		Condition: string(check.ConditionGt),
	}.toDescriptor()
	if err == nil {
		t.Fatal("expected error for gt condition with no threshold")
	}
}
