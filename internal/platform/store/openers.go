package store

import (
	"context"
	"fmt"
	"time"

	"sentiprep/internal/core/version"
	chx "sentiprep/internal/platform/store/ch"
	"sentiprep/internal/platform/store/pg"
)

var (
	openPGClient = pg.Open    // seam
	openCHClient = chx.Open   // seam
	sleep        = time.Sleep // seam
)

// openPG opens pg, pings with backoff and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (Querier, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := openPGClient(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		AppName:  cfg.AppName,
		ReadOnly: cfg.PG.ReadOnly,
		Slow:     cfg.PG.SlowQuery,
	}, tracer)
	if err != nil {
		return nil, err
	}
	a := newPGAdapter(p)

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 6
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}
	const (
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)

	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = a.Ping(toCtx)
		cancel()

		if lastErr == nil {
			return a, nil
		}
		if ctx.Err() != nil {
			p.Close()
			return nil, ctx.Err()
		}
		s.Log.Debug().Err(lastErr).Int("attempt", i+1).Dur("backoff", backoff).Msg("postgres ping failed")
		if i == attempts-1 {
			break
		}
		sleep(backoff)
		if backoff < backoffCeiling {
			backoff = min(backoff*2, backoffCeiling)
		}
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}

func openCH(ctx context.Context, cfg Config, _ *Store) (Querier, error) {
	c, err := openCHClient(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.CH.Role, Tag: version.Info("sentiprep").Version})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
