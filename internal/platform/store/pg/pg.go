// Package pg opens the pgx pool behind postgres-backed source tables
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pool
type Config struct {
	URL      string
	MaxConns int32

	// AppName is reported as application_name so stage queries show up in pg_stat_activity
	AppName string

	// ReadOnly makes every session default to read only transactions
	ReadOnly bool

	// Slow marks queries at or above this duration; zero disables it
	Slow time.Duration
}

// PG is a pool plus the tracing knobs the store adapter reads
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	Slow   time.Duration
}

var newPool = pgxpool.NewWithConfig

// PoolConfig parses cfg.URL and applies the remaining settings
func PoolConfig(cfg Config) (*pgxpool.Config, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	params := pcfg.ConnConfig.RuntimeParams
	if params == nil {
		params = map[string]string{}
		pcfg.ConnConfig.RuntimeParams = params
	}
	if cfg.AppName != "" {
		params["application_name"] = cfg.AppName
	}
	if cfg.ReadOnly {
		params["default_transaction_read_only"] = "on"
	}
	return pcfg, nil
}

// Open builds the pool; pgxpool connects lazily so nothing touches the network yet
func Open(ctx context.Context, cfg Config, tracer QueryTracer) (*PG, error) {
	pcfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, Slow: cfg.Slow}, nil
}

// IsSlow reports whether a query that took d crosses the slow threshold
func (p *PG) IsSlow(d time.Duration) bool { return p != nil && p.Slow > 0 && d >= p.Slow }

// Close closes the pool
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
