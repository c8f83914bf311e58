package sqlgen

import (
	"fmt"

	"github.com/weiser-ai/weiser-go/internal/check"
)

// postgresDialect covers PostgreSQL proper and the Cube semantic-layer
// endpoint, which speaks the Postgres wire protocol and accepts the same
// date_trunc grammar.
type postgresDialect struct{ tag string }

func init() {
	register(postgresDialect{tag: "postgresql"})
	register(postgresDialect{tag: "cube"})
}

func (d postgresDialect) Name() string { return d.tag }

func (d postgresDialect) QuoteIdent(ident string) string {
	return `"` + ident + `"`
}

func (d postgresDialect) QuoteQualified(ident string) string {
	return quoteQualifiedWith(ident, d.QuoteIdent)
}

var postgresUnits = map[check.Granularity]string{
	check.GranularityMillennium: "millennium",
	check.GranularityCentury:    "century",
	check.GranularityDecade:     "decade",
	check.GranularityYear:       "year",
	check.GranularityQuarter:    "quarter",
	check.GranularityMonth:      "month",
	check.GranularityWeek:       "week",
	check.GranularityDay:        "day",
	check.GranularityHour:       "hour",
	check.GranularityMinute:     "minute",
	check.GranularitySecond:     "second",
}

func (d postgresDialect) DateTrunc(gran check.Granularity, col string) (string, error) {
	unit, ok := postgresUnits[gran]
	if !ok {
		return "", fmt.Errorf("sqlgen: %s does not support granularity %q", d.tag, gran)
	}
	return fmt.Sprintf("date_trunc('%s', %s)", unit, col), nil
}

func (d postgresDialect) CastDouble(expr string) string {
	return fmt.Sprintf("CAST(%s AS DOUBLE PRECISION)", expr)
}
