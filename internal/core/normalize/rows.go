package normalize

import (
	"context"

	"sentiprep/internal/core/table"
	perr "sentiprep/internal/platform/errors"

	"golang.org/x/sync/errgroup"
)

// Stats counts what Table did to its input
type Stats struct {
	Input          int
	Output         int
	DroppedMissing int
	DroppedEmpty   int
}

// cell outcome per input row
type outcome struct {
	text    string
	missing bool
}

// Table normalizes column of every row and drops rows whose result is empty
// or whose cell is missing or not a string. The input is not modified and row order is kept
func (n *Normalizer) Table(ctx context.Context, t *table.Table, column string) (*table.Table, Stats, error) {
	var st Stats
	if t == nil {
		return nil, st, perr.InvalidArgf("normalize: nil table")
	}
	idx, err := t.Require(column)
	if err != nil {
		return nil, st, err
	}
	st.Input = t.Len()

	outs := make([]outcome, t.Len())
	if err := n.fanOut(ctx, t, idx, outs); err != nil {
		return nil, st, err
	}

	out := t.Like()
	out.Grow(t.Len())
	for i, o := range outs {
		switch {
		case o.missing:
			st.DroppedMissing++
			continue
		case o.text == "":
			st.DroppedEmpty++
			continue
		}
		row := append([]table.Value(nil), t.Row(i)...)
		row[idx] = table.String(o.text)
		if err := out.Append(row); err != nil {
			return nil, st, err
		}
	}
	st.Output = out.Len()
	return out, st, nil
}

// fanOut fills outs, splitting rows into one contiguous chunk per worker
func (n *Normalizer) fanOut(ctx context.Context, t *table.Table, idx int, outs []outcome) error {
	total := len(outs)
	workers := min(n.workers, total)
	if workers < 1 {
		workers = 1
	}
	chunk := (total + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < total; lo += chunk {
		hi := min(lo+chunk, total)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				s, ok := t.Cell(i, idx).Str()
				if !ok {
					outs[i] = outcome{missing: true}
					continue
				}
				outs[i] = outcome{text: n.safeNormalize(s)}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return perr.Processingf(err, "normalize: interrupted")
	}
	if err := ctx.Err(); err != nil {
		return perr.Processingf(err, "normalize: interrupted")
	}
	return nil
}

// safeNormalize degrades a panic to the empty result so the row gets dropped
func (n *Normalizer) safeNormalize(s string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
		}
	}()
	return n.Normalize(s)
}
