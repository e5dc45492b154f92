package source

import (
	"context"
	"time"

	"sentiprep/internal/core/table"
	perr "sentiprep/internal/platform/errors"
	"sentiprep/internal/platform/logger"
	"sentiprep/internal/platform/store"
)

var openStore = store.Open // seam

// slowQuery escalates the query log line to warn
const slowQuery = 30 * time.Second

// loadDB runs query against the database behind dsn and converts the result set.
// NULL becomes missing; text is kept verbatim without NA marker parsing
func (l *Loader) loadDB(ctx context.Context, scheme, dsn, query string) (*table.Table, error) {
	if query == "" {
		return nil, perr.WithField(perr.SourceUnavailablef(nil, "%s source needs a query", scheme), "query")
	}

	cfg := store.Config{AppName: l.appName}
	if scheme == "clickhouse" {
		cfg.CH = store.CHConfig{Enabled: true, URL: dsn}
	} else {
		cfg.PG = store.PGConfig{
			Enabled:        true,
			URL:            dsn,
			MaxConns:       2,
			ReadOnly:       true,
			LogSQL:         true,
			SlowQuery:      slowQuery,
			ConnectRetries: 3,
		}
	}

	s, err := openStore(ctx, cfg, store.WithLogger(*logger.C(ctx)))
	if err != nil {
		return nil, perr.SourceUnavailablef(err, "connect %s", redact(dsn))
	}
	defer func() { _ = s.Close(ctx) }()

	q := s.PG
	if scheme == "clickhouse" {
		q = s.CH
	}
	if q == nil {
		return nil, perr.SourceUnavailablef(nil, "%s backend not initialised", scheme)
	}
	if err := s.Guard(ctx); err != nil {
		return nil, perr.SourceUnavailablef(err, "ping %s", redact(dsn))
	}

	cols, rows, err := store.Tabular(ctx, q, query)
	if err != nil {
		if scheme == "clickhouse" {
			return nil, perr.SourceUnavailablef(err, "query %s", redact(dsn))
		}
		return nil, perr.FromPostgresf(err, "query %s", redact(dsn))
	}

	t, err := table.New(mangleHeader(cols))
	if err != nil {
		return nil, perr.SourceUnavailablef(err, "result columns")
	}
	t.Grow(len(rows))
	for i, vals := range rows {
		if len(vals) != len(cols) {
			return nil, perr.SourceUnavailablef(nil, "row %d has %d values for %d columns", i, len(vals), len(cols))
		}
		row := make([]table.Value, len(vals))
		for j, v := range vals {
			row[j] = table.FromAny(v)
		}
		if err := t.Append(row); err != nil {
			return nil, perr.SourceUnavailablef(err, "append row %d", i)
		}
	}
	return t, nil
}
