package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// sqlConnector is the shared database/sql implementation every
// driver-backed connector (postgres, mysql, snowflake, databricks, duckdb)
// returns. It owns the pool and the row-scanning loop; only the DSN and
// driver name passed to sql.Open differ per driver.
type sqlConnector struct {
	db      *sql.DB
	dsType  Type
	timeout time.Duration
}

func openSQLConnector(db *sql.DB, cfg Config, dsType Type) (*sqlConnector, error) {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 5
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)

	return &sqlConnector{db: db, dsType: dsType, timeout: cfg.queryTimeout()}, nil
}

func (c *sqlConnector) Query(ctx context.Context, query string) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("datasource: query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("datasource: columns: %w", err)
	}

	result := &QueryResult{Columns: columns}
	for rows.Next() {
		raw := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("datasource: scan: %w", err)
		}
		row := make(Row, len(columns))
		for i, v := range raw {
			row[i] = normalize(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("datasource: row iteration: %w", err)
	}
	return result, nil
}

func (c *sqlConnector) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.db.PingContext(ctx)
}

func (c *sqlConnector) Close() error { return c.db.Close() }

func (c *sqlConnector) Type() Type { return c.dsType }

// normalize collapses a driver-returned value into the engine's closed
// Scalar set. database/sql drivers return one of these concrete types (or
// a driver-specific numeric/string alias) once []byte has been handled;
// anything unrecognized falls back to its fmt.Sprint string form rather
// than panicking, since a new driver quirk should degrade gracefully.
func normalize(v any) Scalar {
	switch t := v.(type) {
	case nil:
		return Scalar{Kind: KindNull}
	case int64:
		return Scalar{Kind: KindInt64, I: t}
	case int32:
		return Scalar{Kind: KindInt64, I: int64(t)}
	case int:
		return Scalar{Kind: KindInt64, I: int64(t)}
	case float64:
		return Scalar{Kind: KindFloat64, F: t}
	case float32:
		return Scalar{Kind: KindFloat64, F: float64(t)}
	case bool:
		return Scalar{Kind: KindBool, B: t}
	case time.Time:
		return Scalar{Kind: KindTime, T: t}
	case []byte:
		return Scalar{Kind: KindString, S: string(t)}
	case string:
		return Scalar{Kind: KindString, S: t}
	default:
		return Scalar{Kind: KindString, S: fmt.Sprint(t)}
	}
}
