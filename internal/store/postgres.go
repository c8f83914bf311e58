package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/weiser-ai/weiser-go/internal/check"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

// PostgresConfig configures the relational backend.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

func (c PostgresConfig) dsn() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username, c.Password, c.Host, c.Port, c.Database, sslMode)
}

// Postgres is the relational Metric Store backend.
type Postgres struct {
	cfg PostgresConfig
	db  *sql.DB
}

// NewPostgres opens (but does not migrate) the relational store.
func NewPostgres(cfg PostgresConfig) (*Postgres, error) {
	db, err := sql.Open("pgx", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("store/postgres: open: %w", err)
	}
	return &Postgres{cfg: cfg, db: db}, nil
}

// Initialize applies every pending migration under migrations/postgres
// using golang-migrate's versioned server-side tracking. Idempotent.
func (p *Postgres) Initialize(ctx context.Context) error {
	source, err := iofs.New(postgresMigrations, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("store/postgres: migration source: %w", err)
	}
	driver, err := postgres.WithInstance(p.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("store/postgres: migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("store/postgres: migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("store/postgres: migrate up: %w", err)
	}
	return nil
}

func (p *Postgres) Write(ctx context.Context, r check.MetricRecord) error {
	var threshold any
	if r.Threshold != nil {
		threshold = *r.Threshold
	}
	var thresholdList any
	if len(r.ThresholdList) > 0 {
		thresholdList = r.ThresholdList
	}
	var actual any
	if r.ActualValue != nil {
		actual = *r.ActualValue
	}
	var timeBucket any
	if r.TimeBucket != nil {
		timeBucket = *r.TimeBucket
	}
	var dims any
	if len(r.DimensionValues) > 0 {
		dims = r.DimensionValues
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO metrics
			(run_id, check_id, name, datasource, dataset, type, condition,
			 threshold, threshold_list, actual_value, success, fail,
			 run_time, dimension_values, time_bucket, error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		r.RunID, r.CheckID, r.Name, r.Datasource, r.Dataset, string(r.Type), string(r.Condition),
		threshold, thresholdList, actual, r.Success, r.Fail,
		r.RunTime, dims, timeBucket, r.Error)
	if err != nil {
		return fmt.Errorf("store/postgres: write: %w", err)
	}
	return nil
}

func (p *Postgres) History(ctx context.Context, filter HistoryFilter) ([]float64, []time.Time, error) {
	query, args := historyQueryPostgres(filter)
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("store/postgres: history: %w", err)
	}
	defer rows.Close()

	var values []float64
	var times []time.Time
	for rows.Next() {
		var v float64
		var t time.Time
		if err := rows.Scan(&v, &t); err != nil {
			return nil, nil, fmt.Errorf("store/postgres: scan history: %w", err)
		}
		values = append(values, v)
		times = append(times, t)
	}
	return values, times, rows.Err()
}

func (p *Postgres) LastValue(ctx context.Context, checkID string) (float64, bool, error) {
	return lastValue(ctx, p, checkID)
}

func (p *Postgres) Close() error { return p.db.Close() }
