// Package datasource connects to the SQL sources a check's dataset runs
// against. Connector implementations wrap a real database/sql driver (or,
// for BigQuery, its native client) behind one narrow interface so the
// Composer/Runner never see driver-specific types.
package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Type is the kind of source a declared datasource connects to. These
// values double as the sqlgen dialect tag for every type except cube,
// which is Postgres-wire-compatible and shares the postgresql dialect.
type Type string

const (
	TypePostgreSQL Type = "postgresql"
	TypeCube       Type = "cube"
	TypeMySQL      Type = "mysql"
	TypeSnowflake  Type = "snowflake"
	TypeDatabricks Type = "databricks"
	TypeBigQuery   Type = "bigquery"
	TypeDuckDB     Type = "duckdb"
)

// Config is the connection configuration for one declared datasource.
type Config struct {
	Name                string
	Type                Type
	Host                string
	Port                int
	Database            string
	Schema              string
	Username            string
	Password            string
	SSLMode             string
	Account             string // snowflake
	Warehouse           string // snowflake
	HTTPPath            string // databricks
	Token               string // databricks PAT
	ProjectID           string // bigquery
	Dataset             string // bigquery
	CredentialsFile     string // bigquery service-account JSON
	Path                string // duckdb file path
	PoolSize            int
	QueryTimeoutSeconds int
}

func (c Config) queryTimeout() time.Duration {
	if c.QueryTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// Row is one result row as a positional slice of normalized Scalars,
// aligned with QueryResult.Columns.
type Row []Scalar

// QueryResult is the normalized shape every Connector returns: a column
// list plus the rows in server order.
type QueryResult struct {
	Columns []string
	Rows    []Row
}

// Connector runs a composed SQL statement against one datasource and
// returns normalized rows. Implementations hold a pooled connection and
// are safe for concurrent use by the Runner's worker pool.
type Connector interface {
	// Query executes sql and scans every returned row into the
	// normalized Scalar set.
	Query(ctx context.Context, sql string) (*QueryResult, error)

	// Ping verifies the connection is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying pool.
	Close() error

	// Type reports which datasource type this connector backs.
	Type() Type
}

// Open constructs the Connector for cfg, dialing the real driver. The
// caller owns the returned Connector and must Close it.
func Open(ctx context.Context, cfg Config) (Connector, error) {
	switch cfg.Type {
	case TypePostgreSQL, TypeCube:
		return newPostgresConnector(ctx, cfg)
	case TypeMySQL:
		return newMySQLConnector(ctx, cfg)
	case TypeSnowflake:
		return newSnowflakeConnector(ctx, cfg)
	case TypeDatabricks:
		return newDatabricksConnector(ctx, cfg)
	case TypeBigQuery:
		return newBigQueryConnector(ctx, cfg)
	case TypeDuckDB:
		return newDuckDBConnector(ctx, cfg)
	default:
		return nil, fmt.Errorf("datasource: unsupported type %q", cfg.Type)
	}
}

// Manager pools one Connector per declared datasource name and hands them
// out to the Runner by name, opening lazily on first use. Get is safe for
// concurrent use by the Runner's worker pool.
type Manager struct {
	mu         sync.Mutex
	configs    map[string]Config
	connectors map[string]Connector
}

// NewManager builds a Manager over the datasources declared in a loaded
// configuration document.
func NewManager(configs map[string]Config) *Manager {
	return &Manager{
		configs:    configs,
		connectors: make(map[string]Connector, len(configs)),
	}
}

// Get returns the pooled Connector for name, opening it on first call.
func (m *Manager) Get(ctx context.Context, name string) (Connector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.connectors[name]; ok {
		return c, nil
	}
	cfg, ok := m.configs[name]
	if !ok {
		return nil, fmt.Errorf("datasource: unknown datasource %q", name)
	}
	conn, err := Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("datasource: open %q: %w", name, err)
	}
	m.connectors[name] = conn
	return conn, nil
}

// TypeOf returns the declared Type for a configured datasource, without
// opening a connection. The Composer dialect lookup needs this before any
// query runs.
func (m *Manager) TypeOf(name string) (Type, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.configs[name]
	if !ok {
		return "", fmt.Errorf("datasource: unknown datasource %q", name)
	}
	return cfg.Type, nil
}

// CloseAll closes every connector opened so far, collecting the first
// error encountered but attempting every Close.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var first error
	for name, c := range m.connectors {
		if err := c.Close(); err != nil && first == nil {
			first = fmt.Errorf("datasource: close %q: %w", name, err)
		}
	}
	return first
}
