// Package check defines the declarative shapes the rest of the engine
// compiles, expands, and evaluates: the user-declared CheckDescriptor, the
// per-leaf LeafCheck produced by expansion, and the MetricRecord persisted
// for every evaluation.
package check

import "time"

// Type is the kind of measurement a check performs.
type Type string

const (
	TypeRowCount      Type = "row_count"
	TypeSum           Type = "sum"
	TypeMin           Type = "min"
	TypeMax           Type = "max"
	TypeNumeric       Type = "numeric"
	TypeMeasure       Type = "measure"
	TypeNotEmpty      Type = "not_empty"
	TypeNotEmptyPct   Type = "not_empty_pct"
	TypeAnomaly       Type = "anomaly"
)

// Condition is the predicate applied to the measured value.
type Condition string

const (
	ConditionGt      Condition = "gt"
	ConditionGe      Condition = "ge"
	ConditionLt      Condition = "lt"
	ConditionLe      Condition = "le"
	ConditionEq      Condition = "eq"
	ConditionNeq     Condition = "neq"
	ConditionBetween Condition = "between"
)

// Granularity is the bucket width for a time_dimension.
type Granularity string

const (
	GranularityMillennium Granularity = "millennium"
	GranularityCentury    Granularity = "century"
	GranularityDecade     Granularity = "decade"
	GranularityYear       Granularity = "year"
	GranularityQuarter    Granularity = "quarter"
	GranularityMonth      Granularity = "month"
	GranularityWeek       Granularity = "week"
	GranularityDay        Granularity = "day"
	GranularityHour       Granularity = "hour"
	GranularityMinute     Granularity = "minute"
	GranularitySecond     Granularity = "second"
)

// Status is the outcome recorded for a single leaf execution.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// TimeDimension introduces bucketed aggregation over a timestamp column.
type TimeDimension struct {
	Name        string      `yaml:"name" json:"name"`
	Granularity Granularity `yaml:"granularity" json:"granularity"`
}

// Threshold carries either a single scalar (unary conditions) or an
// ordered [lo, hi] pair (condition == between). Exactly one is populated:
// the config loader rejects a between condition without a pair and any
// other condition without a scalar.
type Threshold struct {
	Scalar *float64
	Pair   *[2]float64
}

// Dataset is the resolved shape of a declared `dataset` field: exactly one
// of Table, Tables, or RawSQL is set.
type Dataset struct {
	Table  string   `yaml:"-" json:"-"`
	Tables []string `yaml:"-" json:"-"`
	RawSQL string   `yaml:"-" json:"-"`
}

// IsRaw reports whether the dataset is a raw SQL SELECT.
func (d Dataset) IsRaw() bool { return d.RawSQL != "" }

// IsList reports whether the dataset fans out over multiple tables.
func (d Dataset) IsList() bool { return len(d.Tables) > 0 }

// Identifier returns the canonical dataset-identifier string used by the
// checkId fingerprint: the table name, the tables joined with ",", or the
// raw SQL text.
func (d Dataset) Identifier() string {
	switch {
	case d.IsRaw():
		return d.RawSQL
	case d.IsList():
		out := d.Tables[0]
		for _, t := range d.Tables[1:] {
			out += "," + t
		}
		return out
	default:
		return d.Table
	}
}

// Descriptor is a single declared check, as the operator wrote it in the
// configuration document. It is immutable once loaded.
type Descriptor struct {
	Name          string
	Datasource    string
	Dataset       Dataset
	Type          Type
	Condition     Condition
	Threshold     Threshold
	Measure       string
	Dimensions    []string
	TimeDimension *TimeDimension
	Filter        []string
	CheckID       string // only meaningful for Type == TypeAnomaly
	Description   string
}

// LeafCheck is one concrete sub-check produced by the Expander. Exactly one
// numeric observation is produced per run of a LeafCheck.
type LeafCheck struct {
	CheckID           string
	Name              string
	Datasource        string
	Dataset           Dataset
	Type              Type
	Condition         Condition
	Threshold         Threshold
	SQLText           string
	SQLArgs           []any
	Dimensions        []string
	DimensionValues   []string
	TimeDimension     *TimeDimension
	AnomalyCheckID    string
	AnomalyFilter     []string
}

// MetricRecord is one persisted evaluation outcome. Success and Fail are
// exclusive and exhaustive for every recorded row.
type MetricRecord struct {
	ID              int64
	RunID           string
	CheckID         string
	Name            string
	Datasource      string
	Dataset         string
	Type            Type
	Condition       Condition
	Threshold       *float64
	ThresholdList   []float64
	ActualValue     *float64
	Success         bool
	Fail            bool
	RunTime         time.Time
	DimensionValues []string
	TimeBucket      *time.Time
	Error           string
}
