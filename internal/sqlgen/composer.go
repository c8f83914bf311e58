package sqlgen

import (
	"fmt"
	"strings"

	"github.com/weiser-ai/weiser-go/internal/check"
)

// timeBucketAlias is the column alias the composer assigns the
// date_trunc(...) expression, so callers can pull the bucket value back out
// of a result row by name regardless of dialect.
const timeBucketAlias = "time_bucket"

// valueAlias is the column alias the composer assigns the measured
// expression.
const valueAlias = "value"

// Statement is one composed SQL text, ready to execute. Aggregate check
// types (row_count, sum, min, max, numeric, measure) compose to exactly one
// Statement whose result may still fan out into several MetricRecords at
// execution time (one per returned row, when Dimensions or TimeDimension
// are set). not_empty/not_empty_pct compose to one Statement per declared
// dimension, each already a complete leaf.
type Statement struct {
	SQL           string
	LeafName      string
	Dimensions    []string
	TimeDimension *check.TimeDimension
}

// Compose translates one (Descriptor, resolved Dataset) pair into the SQL
// statement(s) needed to measure it, dispatching on the check's type.
// dataset must already be the single resolved table/subquery for this
// leaf — dataset-list fan-out happens one level up, in the Expander.
func Compose(desc check.Descriptor, dataset check.Dataset, dialect Dialect) ([]Statement, error) {
	switch desc.Type {
	case check.TypeAnomaly:
		return nil, fmt.Errorf("sqlgen: anomaly checks have no source SQL; use the anomaly package against the metric store")
	case check.TypeNotEmpty, check.TypeNotEmptyPct:
		return composeNotEmpty(desc, dataset, dialect)
	case check.TypeRowCount, check.TypeSum, check.TypeMin, check.TypeMax, check.TypeNumeric, check.TypeMeasure:
		stmt, err := composeAggregate(desc, dataset, dialect)
		if err != nil {
			return nil, err
		}
		return []Statement{stmt}, nil
	default:
		return nil, fmt.Errorf("sqlgen: unknown check type %q", desc.Type)
	}
}

func composeAggregate(desc check.Descriptor, dataset check.Dataset, dialect Dialect) (Statement, error) {
	measureExpr, err := measureExpression(desc)
	if err != nil {
		return Statement{}, err
	}

	selectCols := make([]string, 0, len(desc.Dimensions)+2)
	groupByCols := make([]string, 0, len(desc.Dimensions)+1)

	for _, dim := range desc.Dimensions {
		q := dialect.QuoteIdent(dim)
		selectCols = append(selectCols, q)
		groupByCols = append(groupByCols, q)
	}

	if desc.TimeDimension != nil {
		trunc, err := dialect.DateTrunc(desc.TimeDimension.Granularity, dialect.QuoteIdent(desc.TimeDimension.Name))
		if err != nil {
			return Statement{}, fmt.Errorf("sqlgen: %s: %w", desc.Name, err)
		}
		bucketExpr := fmt.Sprintf("%s AS %s", trunc, timeBucketAlias)
		selectCols = append(selectCols, bucketExpr)
		groupByCols = append(groupByCols, trunc)
	}

	selectCols = append(selectCols, fmt.Sprintf("%s AS %s", measureExpr, valueAlias))

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selectCols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(fromClause(dataset, dialect))
	if where := whereClause(desc.Filter); where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	if len(groupByCols) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(groupByCols, ", "))
	}

	return Statement{
		SQL:           sb.String(),
		LeafName:      desc.Name,
		Dimensions:    desc.Dimensions,
		TimeDimension: desc.TimeDimension,
	}, nil
}

func composeNotEmpty(desc check.Descriptor, dataset check.Dataset, dialect Dialect) ([]Statement, error) {
	if len(desc.Dimensions) == 0 {
		return nil, fmt.Errorf("sqlgen: %s: %s requires at least one dimension", desc.Name, desc.Type)
	}

	suffix := "_not_empty"
	if desc.Type == check.TypeNotEmptyPct {
		suffix = "_not_empty_pct"
	}

	from := fromClause(dataset, dialect)
	where := whereClause(desc.Filter)

	stmts := make([]Statement, 0, len(desc.Dimensions))
	for _, dim := range desc.Dimensions {
		q := dialect.QuoteIdent(dim)
		nullCount := fmt.Sprintf("SUM(CASE WHEN %s IS NULL THEN 1 ELSE 0 END)", q)

		var expr string
		if desc.Type == check.TypeNotEmptyPct {
			expr = fmt.Sprintf("%s / %s", dialect.CastDouble(nullCount), dialect.CastDouble("COUNT(*)"))
		} else {
			expr = nullCount
		}

		var sb strings.Builder
		sb.WriteString("SELECT ")
		sb.WriteString(expr)
		sb.WriteString(" AS ")
		sb.WriteString(valueAlias)
		sb.WriteString(" FROM ")
		sb.WriteString(from)
		if where != "" {
			sb.WriteString(" WHERE ")
			sb.WriteString(where)
		}

		stmts = append(stmts, Statement{
			SQL:      sb.String(),
			LeafName: desc.Name + "_" + dim + suffix,
		})
	}
	return stmts, nil
}

func measureExpression(desc check.Descriptor) (string, error) {
	switch desc.Type {
	case check.TypeRowCount:
		return "COUNT(*)", nil
	case check.TypeSum:
		if desc.Measure == "" {
			return "", fmt.Errorf("sqlgen: %s: sum requires a measure", desc.Name)
		}
		return fmt.Sprintf("SUM(%s)", desc.Measure), nil
	case check.TypeMin:
		if desc.Measure == "" {
			return "", fmt.Errorf("sqlgen: %s: min requires a measure", desc.Name)
		}
		return fmt.Sprintf("MIN(%s)", desc.Measure), nil
	case check.TypeMax:
		if desc.Measure == "" {
			return "", fmt.Errorf("sqlgen: %s: max requires a measure", desc.Name)
		}
		return fmt.Sprintf("MAX(%s)", desc.Measure), nil
	case check.TypeNumeric:
		if desc.Measure == "" {
			return "", fmt.Errorf("sqlgen: %s: numeric requires a measure", desc.Name)
		}
		return desc.Measure, nil
	case check.TypeMeasure:
		if desc.Measure == "" {
			return "", fmt.Errorf("sqlgen: %s: measure check requires a measure", desc.Name)
		}
		return desc.Measure, nil
	default:
		return "", fmt.Errorf("sqlgen: %s: unsupported aggregate type %q", desc.Name, desc.Type)
	}
}

func fromClause(dataset check.Dataset, dialect Dialect) string {
	if dataset.IsRaw() {
		return fmt.Sprintf("(%s) AS d", dataset.RawSQL)
	}
	return fmt.Sprintf("%s AS d", dialect.QuoteQualified(dataset.Table))
}

func whereClause(filters []string) string {
	if len(filters) == 0 {
		return ""
	}
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = "(" + f + ")"
	}
	return strings.Join(parts, " AND ")
}
