package datasource

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/databricks/databricks-sql-go"
)

func newDatabricksConnector(ctx context.Context, cfg Config) (Connector, error) {
	dsn := fmt.Sprintf("token:%s@%s:443%s?catalog=%s&schema=%s",
		cfg.Token, cfg.Host, cfg.HTTPPath, cfg.Database, cfg.Schema)

	db, err := sql.Open("databricks", dsn)
	if err != nil {
		return nil, fmt.Errorf("databricks: open: %w", err)
	}
	base, err := openSQLConnector(db, cfg, TypeDatabricks)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := base.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("databricks: ping: %w", err)
	}
	return base, nil
}
