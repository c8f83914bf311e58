package sqlgen

import (
	"fmt"

	"github.com/weiser-ai/weiser-go/internal/check"
)

// duckdbDialect backs the embedded metric store when it is itself queried
// as a check source (the `anomaly` check's self-referential history read
// goes through the store's own query path, not this dialect, but an
// operator may also declare a plain `duckdb` datasource for local files).
type duckdbDialect struct{}

func init() { register(duckdbDialect{}) }

func (duckdbDialect) Name() string { return "duckdb" }

func (duckdbDialect) QuoteIdent(ident string) string {
	return `"` + ident + `"`
}

func (d duckdbDialect) QuoteQualified(ident string) string {
	return quoteQualifiedWith(ident, d.QuoteIdent)
}

func (duckdbDialect) DateTrunc(gran check.Granularity, col string) (string, error) {
	unit, ok := postgresUnits[gran]
	if !ok {
		return "", fmt.Errorf("sqlgen: duckdb does not support granularity %q", gran)
	}
	return fmt.Sprintf("date_trunc('%s', %s)", unit, col), nil
}

func (duckdbDialect) CastDouble(expr string) string {
	return fmt.Sprintf("CAST(%s AS DOUBLE)", expr)
}
