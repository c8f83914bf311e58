package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/weiser-ai/weiser-go/internal/check"
)

//go:embed migrations/duckdb/*.sql
var duckdbMigrations embed.FS

// DuckDBConfig configures the embedded backend.
type DuckDBConfig struct {
	Path string // file path; ":memory:" for an in-process store

	// S3Bucket, when set, mirrors the database file to S3-compatible
	// storage on Close, unless SkipMirror is true (the CLI's -s flag).
	S3Bucket    string
	S3Key       string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PathStyle bool
	SkipMirror  bool
}

// DuckDB is the embedded Metric Store backend.
type DuckDB struct {
	cfg DuckDBConfig
	db  *sql.DB
}

// NewDuckDB opens (but does not migrate) the embedded store at cfg.Path.
func NewDuckDB(cfg DuckDBConfig) (*DuckDB, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("store/duckdb: open: %w", err)
	}
	return &DuckDB{cfg: cfg, db: db}, nil
}

// Initialize applies every unapplied migration under migrations/duckdb in
// version order, tracked in a migrations ledger table. Idempotent.
func (d *DuckDB) Initialize(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			version     BIGINT PRIMARY KEY,
			description VARCHAR NOT NULL,
			applied_at  TIMESTAMP NOT NULL
		)`); err != nil {
		return fmt.Errorf("store/duckdb: create ledger: %w", err)
	}

	applied := make(map[int64]bool)
	rows, err := d.db.QueryContext(ctx, "SELECT version FROM migrations")
	if err != nil {
		return fmt.Errorf("store/duckdb: read ledger: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("store/duckdb: scan ledger: %w", err)
		}
		applied[v] = true
	}
	rows.Close()

	scripts, err := pendingDuckDBScripts(applied)
	if err != nil {
		return err
	}

	for _, s := range scripts {
		tx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("store/duckdb: begin migration %d: %w", s.version, err)
		}
		if _, err := tx.ExecContext(ctx, s.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("store/duckdb: apply migration %d (%s): %w", s.version, s.description, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO migrations (version, description, applied_at) VALUES (?, ?, ?)",
			s.version, s.description, time.Now().UTC()); err != nil {
			tx.Rollback()
			return fmt.Errorf("store/duckdb: record migration %d: %w", s.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("store/duckdb: commit migration %d: %w", s.version, err)
		}
	}
	return nil
}

type duckdbScript struct {
	version     int64
	description string
	sql         string
}

func pendingDuckDBScripts(applied map[int64]bool) ([]duckdbScript, error) {
	entries, err := fs.ReadDir(duckdbMigrations, "migrations/duckdb")
	if err != nil {
		return nil, fmt.Errorf("store/duckdb: list migrations: %w", err)
	}

	var scripts []duckdbScript
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		version, description, err := parseMigrationName(name)
		if err != nil {
			return nil, err
		}
		if applied[version] {
			continue
		}
		content, err := duckdbMigrations.ReadFile(path.Join("migrations/duckdb", name))
		if err != nil {
			return nil, fmt.Errorf("store/duckdb: read %s: %w", name, err)
		}
		scripts = append(scripts, duckdbScript{version: version, description: description, sql: string(content)})
	}
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].version < scripts[j].version })
	return scripts, nil
}

// parseMigrationName extracts the version and description from a
// "<version>_<description>.up.sql" filename.
func parseMigrationName(name string) (int64, string, error) {
	base := strings.TrimSuffix(name, ".up.sql")
	idx := strings.IndexByte(base, '_')
	if idx < 0 {
		return 0, "", fmt.Errorf("store/duckdb: malformed migration filename %q", name)
	}
	version, err := strconv.ParseInt(base[:idx], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("store/duckdb: malformed migration version in %q: %w", name, err)
	}
	return version, base[idx+1:], nil
}

func (d *DuckDB) Write(ctx context.Context, r check.MetricRecord) error {
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

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO metrics
			(run_id, check_id, name, datasource, dataset, type, condition,
			 threshold, threshold_list, actual_value, success, fail,
			 run_time, dimension_values, time_bucket, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.CheckID, r.Name, r.Datasource, r.Dataset, string(r.Type), string(r.Condition),
		threshold, thresholdList, actual, r.Success, r.Fail,
		r.RunTime, dims, timeBucket, r.Error)
	if err != nil {
		return fmt.Errorf("store/duckdb: write: %w", err)
	}
	return nil
}

func (d *DuckDB) History(ctx context.Context, filter HistoryFilter) ([]float64, []time.Time, error) {
	query, args := historyQuery(filter)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("store/duckdb: history: %w", err)
	}
	defer rows.Close()

	var values []float64
	var times []time.Time
	for rows.Next() {
		var v float64
		var t time.Time
		if err := rows.Scan(&v, &t); err != nil {
			return nil, nil, fmt.Errorf("store/duckdb: scan history: %w", err)
		}
		values = append(values, v)
		times = append(times, t)
	}
	return values, times, rows.Err()
}

func (d *DuckDB) LastValue(ctx context.Context, checkID string) (float64, bool, error) {
	return lastValue(ctx, d, checkID)
}

// Close closes the database handle, mirroring the file to S3 first when
// configured and not suppressed.
func (d *DuckDB) Close() error {
	if d.cfg.S3Bucket != "" && !d.cfg.SkipMirror && d.cfg.Path != "" && d.cfg.Path != ":memory:" {
		if err := d.mirrorToS3(); err != nil {
			d.db.Close()
			return fmt.Errorf("store/duckdb: mirror to s3: %w", err)
		}
	}
	return d.db.Close()
}

func (d *DuckDB) mirrorToS3() error {
	ctx := context.Background()
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(d.cfg.S3Region)}
	if d.cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(d.cfg.S3AccessKey, d.cfg.S3SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if d.cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(d.cfg.S3Endpoint)
		}
		o.UsePathStyle = d.cfg.S3PathStyle
	})

	f, err := os.Open(d.cfg.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	key := d.cfg.S3Key
	if key == "" {
		key = path.Base(d.cfg.Path)
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(d.cfg.S3Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	return err
}
