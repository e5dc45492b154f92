package pg

import (
	"context"
	"strings"
	"time"

	"sentiprep/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one source query once its rows are drained
type QueryEvent struct {
	SQL  string
	Took time.Duration
	Rows int64
	Err  error
	Slow bool
}

// QueryTracer receives an event per query
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs every query at info, slow ones at warn, whatever the root level
func Tracer(root logger.Logger) QueryTracer {
	return &zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	e := z.log.Info()
	if ev.Slow {
		e = z.log.Warn()
	}
	e.Dur("took", ev.Took).
		Bool("slow", ev.Slow).
		Int64("rows", ev.Rows).
		Str("sql", compact(ev.SQL)).
		Err(ev.Err).
		Msg("source query")
}

// compact folds a multi-line statement onto one line
func compact(s string) string { return strings.Join(strings.Fields(s), " ") }
