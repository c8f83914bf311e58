package datasource

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/snowflakedb/gosnowflake"
)

func newSnowflakeConnector(ctx context.Context, cfg Config) (Connector, error) {
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s?warehouse=%s",
		cfg.Username, cfg.Password, cfg.Account, cfg.Database, cfg.Schema, cfg.Warehouse)

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("snowflake: open: %w", err)
	}
	base, err := openSQLConnector(db, cfg, TypeSnowflake)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := base.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("snowflake: ping: %w", err)
	}
	return base, nil
}
