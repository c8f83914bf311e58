package sqlgen

import (
	"fmt"

	"github.com/weiser-ai/weiser-go/internal/check"
)

type databricksDialect struct{}

func init() { register(databricksDialect{}) }

func (databricksDialect) Name() string { return "databricks" }

func (databricksDialect) QuoteIdent(ident string) string {
	return "`" + ident + "`"
}

func (d databricksDialect) QuoteQualified(ident string) string {
	return quoteQualifiedWith(ident, d.QuoteIdent)
}

func (databricksDialect) DateTrunc(gran check.Granularity, col string) (string, error) {
	unit, ok := postgresUnits[gran]
	if !ok {
		return "", fmt.Errorf("sqlgen: databricks does not support granularity %q", gran)
	}
	return fmt.Sprintf("date_trunc('%s', %s)", unit, col), nil
}

func (databricksDialect) CastDouble(expr string) string {
	return fmt.Sprintf("CAST(%s AS DOUBLE)", expr)
}
