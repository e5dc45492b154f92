package store

import (
	"context"
	"errors"
	"time"

	"sentiprep/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
)

// pgxQuerier is the slice of pgxpool.Pool the adapter uses
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// pgAdapter wraps pg.PG and implements Querier
// it also emits query trace events when a tracer is configured on pg.PG
type pgAdapter struct {
	p *pg.PG
	q pgxQuerier
}

func newPGAdapter(p *pg.PG) *pgAdapter { return &pgAdapter{p: p, q: p.Pool} }

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.p == nil || a.p.Pool == nil {
		return errors.New("pg: nil adapter")
	}
	return a.p.Pool.Ping(ctx)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

func (a *pgAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := a.q.Query(ctx, sql, args...)
	if err != nil {
		a.emit(ctx, sql, start, 0, err)
		return nil, err
	}
	// emit on Close so elapsed covers the scan and the row count is known
	return &rows{r: rs, done: func(n int64, err error) {
		a.emit(ctx, sql, start, n, err)
	}}, nil
}

// emit sends a query event to the configured tracer
func (a *pgAdapter) emit(ctx context.Context, sql string, start time.Time, n int64, err error) {
	if a == nil || a.p == nil || a.p.Tracer == nil {
		return
	}
	took := time.Since(start)
	a.p.Tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:  sql,
		Took: took,
		Rows: n,
		Err:  err,
		Slow: a.p.IsSlow(took),
	})
}

// rows adapts pgx.Rows to our Rows
type rows struct {
	r      pgx.Rows
	n      int64
	closed bool
	done   func(n int64, err error)
}

func (x *rows) Next() bool {
	if x.r.Next() {
		x.n++
		return true
	}
	return false
}

func (x *rows) Values() ([]any, error) { return x.r.Values() }
func (x *rows) Err() error             { return x.r.Err() }

func (x *rows) Close() {
	if x.closed {
		return
	}
	x.closed = true
	x.r.Close()
	if x.done != nil {
		x.done(x.n, x.r.Err())
	}
}

func (x *rows) Columns() []string {
	f := x.r.FieldDescriptions()
	out := make([]string, len(f))
	for i := range f {
		out[i] = f[i].Name
	}
	return out
}
