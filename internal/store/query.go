package store

import (
	"context"
	"fmt"
)

// historyQuery builds the DuckDB-flavored (positional "?") history query
// for filter. CheckID and Predicate are AND-combined when both are set;
// at least one must be non-empty (enforced by the caller — the Expander
// rejects anomaly checks with neither).
func historyQuery(filter HistoryFilter) (string, []any) {
	query := "SELECT actual_value, run_time FROM metrics WHERE "
	var conds []string
	var args []any
	if filter.CheckID != "" {
		conds = append(conds, "check_id = ?")
		args = append(args, filter.CheckID)
	}
	if filter.Predicate != "" {
		conds = append(conds, fmt.Sprintf("(%s)", filter.Predicate))
	}
	query += join(conds, " AND ") + " ORDER BY run_time ASC"
	return query, args
}

// historyQueryPostgres is the same query with $N placeholders for pgx.
func historyQueryPostgres(filter HistoryFilter) (string, []any) {
	query := "SELECT actual_value, run_time FROM metrics WHERE "
	var conds []string
	var args []any
	n := 1
	if filter.CheckID != "" {
		conds = append(conds, fmt.Sprintf("check_id = $%d", n))
		args = append(args, filter.CheckID)
		n++
	}
	if filter.Predicate != "" {
		conds = append(conds, fmt.Sprintf("(%s)", filter.Predicate))
	}
	query += join(conds, " AND ") + " ORDER BY run_time ASC"
	return query, args
}

func join(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

// lastValue is shared by both backends: the most recent point in a
// checkId's own history.
func lastValue(ctx context.Context, s Store, checkID string) (float64, bool, error) {
	values, _, err := s.History(ctx, HistoryFilter{CheckID: checkID})
	if err != nil {
		return 0, false, err
	}
	if len(values) == 0 {
		return 0, false, nil
	}
	return values[len(values)-1], true, nil
}
