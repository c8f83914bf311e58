package sqlgen

import (
	"fmt"

	"github.com/weiser-ai/weiser-go/internal/check"
)

type snowflakeDialect struct{}

func init() { register(snowflakeDialect{}) }

func (snowflakeDialect) Name() string { return "snowflake" }

func (snowflakeDialect) QuoteIdent(ident string) string {
	return `"` + ident + `"`
}

func (d snowflakeDialect) QuoteQualified(ident string) string {
	return quoteQualifiedWith(ident, d.QuoteIdent)
}

func (snowflakeDialect) DateTrunc(gran check.Granularity, col string) (string, error) {
	unit, ok := postgresUnits[gran]
	if !ok {
		return "", fmt.Errorf("sqlgen: snowflake does not support granularity %q", gran)
	}
	return fmt.Sprintf("date_trunc('%s', %s)", unit, col), nil
}

func (snowflakeDialect) CastDouble(expr string) string {
	return fmt.Sprintf("CAST(%s AS DOUBLE)", expr)
}
