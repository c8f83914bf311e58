package sqlgen

import (
	"fmt"

	"github.com/weiser-ai/weiser-go/internal/check"
)

// mysqlDialect has no native date_trunc; every granularity is composed
// from DATE_FORMAT/YEAR/QUARTER/WEEKDAY building blocks instead.
type mysqlDialect struct{}

func init() { register(mysqlDialect{}) }

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) QuoteIdent(ident string) string {
	return "`" + ident + "`"
}

func (d mysqlDialect) QuoteQualified(ident string) string {
	return quoteQualifiedWith(ident, d.QuoteIdent)
}

func (mysqlDialect) DateTrunc(gran check.Granularity, col string) (string, error) {
	switch gran {
	case check.GranularitySecond:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d %%H:%%i:%%s')", col), nil
	case check.GranularityMinute:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d %%H:%%i:00')", col), nil
	case check.GranularityHour:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d %%H:00:00')", col), nil
	case check.GranularityDay:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d 00:00:00')", col), nil
	case check.GranularityWeek:
		return fmt.Sprintf("DATE_SUB(DATE(%s), INTERVAL WEEKDAY(%s) DAY)", col, col), nil
	case check.GranularityMonth:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-01 00:00:00')", col), nil
	case check.GranularityQuarter:
		return fmt.Sprintf(
			"STR_TO_DATE(CONCAT(YEAR(%s), '-', LPAD((QUARTER(%s) - 1) * 3 + 1, 2, '0'), '-01'), '%%Y-%%m-%%d')",
			col, col,
		), nil
	case check.GranularityYear:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-01-01 00:00:00')", col), nil
	case check.GranularityDecade:
		return fmt.Sprintf("STR_TO_DATE(CONCAT(FLOOR(YEAR(%s) / 10) * 10, '-01-01'), '%%Y-%%m-%%d')", col), nil
	case check.GranularityCentury:
		return fmt.Sprintf("STR_TO_DATE(CONCAT(FLOOR(YEAR(%s) / 100) * 100, '-01-01'), '%%Y-%%m-%%d')", col), nil
	case check.GranularityMillennium:
		return fmt.Sprintf("STR_TO_DATE(CONCAT(FLOOR(YEAR(%s) / 1000) * 1000, '-01-01'), '%%Y-%%m-%%d')", col), nil
	default:
		return "", fmt.Errorf("sqlgen: mysql does not support granularity %q", gran)
	}
}

func (mysqlDialect) CastDouble(expr string) string {
	return fmt.Sprintf("CAST(%s AS DOUBLE)", expr)
}
