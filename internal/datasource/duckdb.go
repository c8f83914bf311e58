package datasource

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

func newDuckDBConnector(ctx context.Context, cfg Config) (Connector, error) {
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open: %w", err)
	}
	base, err := openSQLConnector(db, cfg, TypeDuckDB)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := base.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: ping: %w", err)
	}
	return base, nil
}
