// Package store provides a unified read interface over the optional database sources
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sentiprep/internal/platform/logger"
)

// Config selects and configures the backends Open connects to
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres
type PGConfig struct {
	Enabled  bool
	URL      string
	MaxConns int32
	ReadOnly bool

	// LogSQL logs each query once its rows are drained; SlowQuery escalates it to warn
	LogSQL    bool
	SlowQuery time.Duration

	ConnectRetries int           // 6 when zero
	PingTimeout    time.Duration // 3s when zero
}

// CHConfig configures clickhouse
type CHConfig struct {
	Enabled bool
	URL     string
	Role    string
}

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger used by subclients
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// Store holds the backends a query-backed table source reads from
// the zero value has none
type Store struct {
	// Log is handed to backend tracers; the zero value discards
	Log logger.Logger

	// PG is nil unless postgres is enabled
	PG Querier

	// CH is nil unless clickhouse is enabled
	CH Querier
}

// Rows iterates a result set as driver decoded values
type Rows interface {
	Next() bool
	Values() ([]any, error)
	Err() error
	Close()
	Columns() []string
}

// Querier is the read surface table sources use
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Pinger is a backend that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open connects the backends enabled in cfg; on error nothing stays open
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	if cfg.PG.Enabled {
		q, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = q
	}
	if cfg.CH.Enabled {
		q, err := openCH(ctx, cfg, s)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.CH = q
	}
	return s, nil
}

type backend struct {
	name string
	q    Querier
}

func (s *Store) backends() []backend {
	return []backend{{"pg", s.PG}, {"ch", s.CH}}
}

// Guard pings every enabled backend that supports it
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for _, b := range s.backends() {
		if p, ok := b.q.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every enabled backend
func (s *Store) Close(_ context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, b := range s.backends() {
		if c, ok := b.q.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
