// Package labels restricts a table to two admissible label categories and encodes them as 1/0
package labels

import (
	"sentiprep/internal/core/table"
	perr "sentiprep/internal/platform/errors"
)

// Encoder keeps rows whose Column equals Positive or Negative and rewrites that column to 1 or 0
// matching is exact and case-sensitive; missing labels are dropped
type Encoder struct {
	Column   string
	Positive string
	Negative string
}

// Stats counts what Apply kept and dropped
type Stats struct {
	Input    int
	Kept     int
	Dropped  int
	Positive int
	Negative int
}

// Apply returns a new table; t is not modified
func (e Encoder) Apply(t *table.Table) (*table.Table, Stats, error) {
	var st Stats
	if e.Positive == e.Negative {
		return nil, st, perr.WithField(perr.InvalidArgf("positive and negative labels must differ, both are %q", e.Positive), "negative")
	}
	col, err := t.Require(e.Column)
	if err != nil {
		return nil, st, err
	}

	out := t.Like()
	out.Grow(t.Len())
	st.Input = t.Len()
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		if len(row) != t.Width() {
			return nil, st, perr.Processingf(nil, "row %d has %d cells, want %d", i, len(row), t.Width())
		}
		var enc int64
		switch s, ok := row[col].Str(); {
		case ok && s == e.Positive:
			enc = 1
			st.Positive++
		case ok && s == e.Negative:
			enc = 0
			st.Negative++
		default:
			st.Dropped++
			continue
		}
		nr := make([]table.Value, len(row))
		copy(nr, row)
		nr[col] = table.Int(enc)
		if err := out.Append(nr); err != nil {
			return nil, st, perr.WithOp(err, "labels.apply")
		}
		st.Kept++
	}
	return out, st, nil
}
