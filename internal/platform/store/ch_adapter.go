package store

import (
	"context"
	"errors"

	"sentiprep/internal/platform/store/ch"
)

// newCHAdapter is called by openers.go to wrap an existing *ch.CH
func newCHAdapter(c *ch.CH) Querier {
	return &clickhouseAdapter{inner: c}
}

// chClient is the part of *ch.CH the adapter needs
type chClient interface {
	Query(ctx context.Context, sql string, args ...any) (ch.Rows, error)
	Ping(ctx context.Context) error
	Close() error
}

// clickhouseAdapter adapts *ch.CH to the store.Querier interface
type clickhouseAdapter struct {
	inner chClient
}

var _ Querier = (*clickhouseAdapter)(nil)

func (a *clickhouseAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.inner.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &chRows{r: r}, nil
}

func (a *clickhouseAdapter) Close() error { return a.inner.Close() }

// Ping verifies connectivity with ClickHouse
func (a *clickhouseAdapter) Ping(ctx context.Context) error {
	if a == nil || a.inner == nil {
		return errors.New("store: nil clickhouse adapter")
	}
	return a.inner.Ping(ctx)
}

// chRows wraps ch.Rows as store.Rows
type chRows struct {
	r ch.Rows
}

func (r *chRows) Next() bool             { return r.r.Next() }
func (r *chRows) Values() ([]any, error) { return r.r.Values() }
func (r *chRows) Err() error             { return r.r.Err() }
func (r *chRows) Close()                 { _ = r.r.Close() }
func (r *chRows) Columns() []string      { return r.r.Columns() }
