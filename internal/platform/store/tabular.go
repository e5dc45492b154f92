package store

import (
	"context"
	"time"
)

// Tabular runs a query and returns the column names and every row's values in result order
// values are whatever the driver decodes; pointer values are dereferenced and NULL is nil
func Tabular(ctx context.Context, q Querier, sql string, args ...any) ([]string, [][]any, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols := rows.Columns()
	var out [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, nil, err
		}
		for i := range vals {
			vals[i] = deref(vals[i])
		}
		out = append(out, vals)
	}
	return cols, out, rows.Err()
}

func deref(v any) any {
	switch x := v.(type) {
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case []byte:
		return string(x)
	default:
		return v
	}
}
