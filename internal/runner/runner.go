// Package runner executes a set of check.Descriptors end to end: it
// expands each into LeafChecks, fans work out across a bounded worker
// pool, routes aggregate/not_empty leaves at the declared datasource and
// anomaly leaves at the metric store's history, writes every outcome, and
// hands a run Summary to a Notifier.
package runner

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/weiser-ai/weiser-go/internal/alerting"
	"github.com/weiser-ai/weiser-go/internal/anomaly"
	"github.com/weiser-ai/weiser-go/internal/check"
	"github.com/weiser-ai/weiser-go/internal/datasource"
	"github.com/weiser-ai/weiser-go/internal/errs"
	"github.com/weiser-ai/weiser-go/internal/evaluate"
	"github.com/weiser-ai/weiser-go/internal/expand"
	"github.com/weiser-ai/weiser-go/internal/fingerprint"
	"github.com/weiser-ai/weiser-go/internal/sqlgen"
	"github.com/weiser-ai/weiser-go/internal/store"

	"github.com/rs/zerolog"
)

// defaultConcurrency bounds the worker pool when the caller doesn't
// specify one.
const defaultConcurrency = 8

// datasourceManager is the narrow slice of *datasource.Manager the Runner
// needs: opening a pooled connector and resolving a declared type for
// dialect lookup. Declared as an interface so tests can substitute a
// fake datasource without dialing a real driver.
type datasourceManager interface {
	Get(ctx context.Context, name string) (datasource.Connector, error)
	TypeOf(name string) (datasource.Type, error)
}

// Runner ties the datasource manager, the metric store, and a notifier
// together to execute a batch of checks.
type Runner struct {
	Datasources datasourceManager
	Store       store.Store
	Notifier    alerting.Notifier
	Logger      zerolog.Logger
	Concurrency int
}

// New builds a Runner. notifier may be alerting.NoOp{} when no slack_url
// is configured.
func New(ds *datasource.Manager, st store.Store, notifier alerting.Notifier, logger zerolog.Logger) *Runner {
	return &Runner{
		Datasources: ds,
		Store:       st,
		Notifier:    notifier,
		Logger:      logger,
		Concurrency: defaultConcurrency,
	}
}

// Run expands and executes every descriptor, writes each resulting
// MetricRecord to the store, and notifies once the run completes. The
// returned error is non-nil only when a store-level failure made it
// impossible to keep persisting results; individual datasource or
// compile failures are isolated to their own leaf and reported inside
// the Summary instead.
func (r *Runner) Run(ctx context.Context, runID string, descriptors []check.Descriptor) (alerting.Summary, error) {
	started := time.Now()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		records  []check.MetricRecord
		storeErr error
	)

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	p := pool.New().WithMaxGoroutines(concurrency).WithErrors().WithContext(runCtx).WithCancelOnError().WithFirstError()

	for _, desc := range descriptors {
		leaves, err := r.expandDescriptor(desc)
		if err != nil {
			mu.Lock()
			records = append(records, compileFailureRecord(runID, desc, err))
			mu.Unlock()
			r.Logger.Warn().Str("check", desc.Name).Err(err).Msg("expand failed, isolating check")
			continue
		}

		for _, leaf := range leaves.Checks {
			leaf := leaf
			p.Go(func(ctx context.Context) error {
				out, err := r.executeLeaf(ctx, runID, leaf)

				mu.Lock()
				defer mu.Unlock()

				if err != nil && errs.Is(err, errs.KindConnection) && isStoreError(err) {
					if storeErr == nil {
						storeErr = err
					}
					return err
				}
				records = append(records, out...)
				return nil
			})
		}
	}

	poolErr := p.Wait()

	for _, rec := range records {
		if err := r.Store.Write(runCtx, rec); err != nil {
			mu.Lock()
			if storeErr == nil {
				storeErr = errs.Connection(err, "write metric record for %q", rec.Name)
			}
			mu.Unlock()
			break
		}
	}

	summary := buildSummary(runID, records, time.Since(started))
	if notifyErr := r.Notifier.Notify(ctx, summary); notifyErr != nil {
		r.Logger.Warn().Err(notifyErr).Msg("notifier failed")
	}

	if storeErr != nil {
		return summary, storeErr
	}
	return summary, poolErr
}

// expandDescriptor resolves the dialect for desc's datasource (when it
// has one) and expands it into LeafChecks.
func (r *Runner) expandDescriptor(desc check.Descriptor) (expand.Leaves, error) {
	if desc.Type == check.TypeAnomaly {
		return expand.Expand(desc, nil)
	}

	dsType, err := r.Datasources.TypeOf(desc.Datasource)
	if err != nil {
		return expand.Leaves{}, errs.ConfigWrap(err, "check %q: %s", desc.Name, err)
	}
	dialect, err := sqlgen.Lookup(dialectTag(dsType))
	if err != nil {
		return expand.Leaves{}, errs.CompileWrap(err, "check %q", desc.Name)
	}
	return expand.Expand(desc, dialect)
}

// dialectTag maps a datasource Type to the sqlgen dialect tag it
// composes against. cube is Postgres-wire-compatible and shares the
// postgresql dialect.
func dialectTag(t datasource.Type) string {
	if t == datasource.TypeCube {
		return string(datasource.TypePostgreSQL)
	}
	return string(t)
}

// executeLeaf runs one LeafCheck to completion, producing the
// MetricRecord(s) it yields. Aggregate/not_empty leaves yield one record
// per returned row (>1 only when dimensions or a time bucket fan out a
// single query); anomaly leaves yield exactly one.
func (r *Runner) executeLeaf(ctx context.Context, runID string, leaf check.LeafCheck) ([]check.MetricRecord, error) {
	f := newLeafFSM(leaf.Name, r.Logger)
	_ = f.Event(ctx, "start")

	var (
		records []check.MetricRecord
		err     error
	)
	if leaf.Type == check.TypeAnomaly {
		records, err = r.executeAnomaly(ctx, runID, leaf)
	} else {
		records, err = r.executeAggregate(ctx, runID, leaf)
	}

	if err != nil {
		_ = f.Event(ctx, "error")
		_ = f.Event(ctx, "record")
		if isStoreError(err) {
			return nil, err
		}
		return []check.MetricRecord{failureRecord(runID, leaf, err)}, nil
	}

	_ = f.Event(ctx, "evaluate")
	_ = f.Event(ctx, "record")
	return records, nil
}

func (r *Runner) executeAggregate(ctx context.Context, runID string, leaf check.LeafCheck) ([]check.MetricRecord, error) {
	conn, err := r.Datasources.Get(ctx, leaf.Datasource)
	if err != nil {
		return nil, errs.Connection(err, "datasource %q", leaf.Datasource)
	}

	result, err := conn.Query(ctx, leaf.SQLText)
	if err != nil {
		return nil, errs.Query(err, "leaf %q", leaf.Name)
	}

	nDims := len(leaf.Dimensions)
	bucketIdx := -1
	if leaf.TimeDimension != nil {
		bucketIdx = nDims
	}

	records := make([]check.MetricRecord, 0, len(result.Rows))
	for _, row := range result.Rows {
		valueIdx := len(row) - 1
		if valueIdx < 0 {
			return nil, errs.Query(nil, "leaf %q: returned row with no columns", leaf.Name)
		}

		value, ok := row[valueIdx].Float64()
		var actualValue *float64
		if ok {
			actualValue = &value
		}

		dims := make([]string, 0, nDims)
		for i := 0; i < nDims && i < len(row); i++ {
			dims = append(dims, row[i].String())
		}

		var bucket *time.Time
		if bucketIdx >= 0 && bucketIdx < len(row) && row[bucketIdx].Kind == datasource.KindTime {
			t := row[bucketIdx].T
			bucket = &t
		}

		if actualValue == nil && (leaf.Type == check.TypeNotEmpty || leaf.Type == check.TypeNotEmptyPct) {
			// SUM(CASE ...) over zero matching rows comes back NULL, not 0;
			// an empty table is zero null values, not an unmeasurable leaf.
			zero := 0.0
			actualValue = &zero
		}

		rec := baseRecord(runID, leaf)
		rec.ActualValue = actualValue
		rec.DimensionValues = dims
		rec.TimeBucket = bucket

		if actualValue == nil {
			rec.Error = "leaf returned a non-numeric value"
			rec.Fail = true
		} else {
			res, evalErr := evaluate.Evaluate(leaf.Condition, *actualValue, leaf.Threshold)
			if evalErr != nil {
				return nil, errs.CompileWrap(evalErr, "leaf %q", leaf.Name)
			}
			rec.Success = res.Success
			rec.Fail = res.Fail
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *Runner) executeAnomaly(ctx context.Context, runID string, leaf check.LeafCheck) ([]check.MetricRecord, error) {
	filter := store.HistoryFilter{
		CheckID:   leaf.AnomalyCheckID,
		Predicate: joinFilter(leaf.AnomalyFilter),
	}
	values, _, err := r.Store.History(ctx, filter)
	if err != nil {
		return nil, errs.Connection(err, "history for %q", leaf.Name)
	}

	result := anomaly.Analyze(values)
	rec := baseRecord(runID, leaf)

	if result.InsufficientHistory {
		rec.Success = true
		zero := 0.0
		rec.ActualValue = &zero
		return []check.MetricRecord{rec}, nil
	}

	z := result.Z
	rec.ActualValue = &z
	res, evalErr := evaluate.Evaluate(leaf.Condition, z, leaf.Threshold)
	if evalErr != nil {
		return nil, errs.CompileWrap(evalErr, "leaf %q", leaf.Name)
	}
	rec.Success = res.Success
	rec.Fail = res.Fail
	return []check.MetricRecord{rec}, nil
}

func joinFilter(filters []string) string {
	if len(filters) == 0 {
		return ""
	}
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = "(" + f + ")"
	}
	return strings.Join(parts, " AND ")
}

func baseRecord(runID string, leaf check.LeafCheck) check.MetricRecord {
	rec := check.MetricRecord{
		RunID:      runID,
		CheckID:    leaf.CheckID,
		Name:       leaf.Name,
		Datasource: leaf.Datasource,
		Dataset:    fingerprint.StoredDataset(leaf.Dataset.Identifier()),
		Type:       leaf.Type,
		Condition:  leaf.Condition,
		RunTime:    time.Now().UTC(),
	}
	if leaf.Threshold.Scalar != nil {
		rec.Threshold = leaf.Threshold.Scalar
	}
	if leaf.Threshold.Pair != nil {
		rec.ThresholdList = []float64{leaf.Threshold.Pair[0], leaf.Threshold.Pair[1]}
	}
	return rec
}

func failureRecord(runID string, leaf check.LeafCheck, err error) check.MetricRecord {
	rec := baseRecord(runID, leaf)
	rec.Fail = true
	rec.Error = err.Error()
	return rec
}

func compileFailureRecord(runID string, desc check.Descriptor, err error) check.MetricRecord {
	rec := check.MetricRecord{
		RunID:      runID,
		Name:       desc.Name,
		Datasource: desc.Datasource,
		Dataset:    fingerprint.StoredDataset(desc.Dataset.Identifier()),
		Type:       desc.Type,
		Condition:  desc.Condition,
		RunTime:    time.Now().UTC(),
		Fail:       true,
		Error:      err.Error(),
	}
	return rec
}

// isStoreError reports whether err originated from the metric store
// rather than a source datasource. Store failures abort the run, since
// nothing further can be persisted; source failures are isolated to the
// leaf that hit them.
func isStoreError(err error) bool {
	return strings.Contains(err.Error(), "history for") || strings.Contains(err.Error(), "write metric record")
}

func buildSummary(runID string, records []check.MetricRecord, duration time.Duration) alerting.Summary {
	s := alerting.Summary{RunID: runID, Duration: duration}
	for _, rec := range records {
		s.Total++
		switch {
		case rec.Error != "":
			s.Errored++
			s.FailedChecks = append(s.FailedChecks, rec.Name)
		case rec.Success:
			s.Passed++
		case rec.Fail:
			s.Failed++
			s.FailedChecks = append(s.FailedChecks, rec.Name)
		}
	}
	return s
}
