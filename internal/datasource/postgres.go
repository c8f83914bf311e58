package datasource

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// newPostgresConnector backs both the postgresql and cube dialects: Cube
// is Postgres-wire-compatible, so the same pgx driver and DSN shape apply.
func newPostgresConnector(ctx context.Context, cfg Config) (Connector, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	base, err := openSQLConnector(db, cfg, cfg.Type)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := base.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return base, nil
}
