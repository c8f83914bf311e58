package sqlgen

import (
	"fmt"

	"github.com/weiser-ai/weiser-go/internal/check"
)

type bigqueryDialect struct{}

func init() { register(bigqueryDialect{}) }

func (bigqueryDialect) Name() string { return "bigquery" }

func (bigqueryDialect) QuoteIdent(ident string) string {
	return "`" + ident + "`"
}

func (d bigqueryDialect) QuoteQualified(ident string) string {
	return quoteQualifiedWith(ident, d.QuoteIdent)
}

var bigqueryUnits = map[check.Granularity]string{
	check.GranularityYear:    "YEAR",
	check.GranularityQuarter: "QUARTER",
	check.GranularityMonth:   "MONTH",
	check.GranularityWeek:    "WEEK",
	check.GranularityDay:     "DAY",
	check.GranularityHour:    "HOUR",
	check.GranularityMinute:  "MINUTE",
	check.GranularitySecond:  "SECOND",
}

// DateTrunc uses TIMESTAMP_TRUNC for the units BigQuery natively supports.
// Millennium/century/decade have no native unit and are composed from
// EXTRACT + TIMESTAMP construction instead.
func (bigqueryDialect) DateTrunc(gran check.Granularity, col string) (string, error) {
	if unit, ok := bigqueryUnits[gran]; ok {
		return fmt.Sprintf("TIMESTAMP_TRUNC(%s, %s)", col, unit), nil
	}
	var span int
	switch gran {
	case check.GranularityDecade:
		span = 10
	case check.GranularityCentury:
		span = 100
	case check.GranularityMillennium:
		span = 1000
	default:
		return "", fmt.Errorf("sqlgen: bigquery does not support granularity %q", gran)
	}
	return fmt.Sprintf(
		"TIMESTAMP(DATETIME(DATE(DIV(EXTRACT(YEAR FROM %s), %d) * %d, 1, 1), TIME(0, 0, 0)))",
		col, span, span,
	), nil
}

func (bigqueryDialect) CastDouble(expr string) string {
	return fmt.Sprintf("CAST(%s AS FLOAT64)", expr)
}
