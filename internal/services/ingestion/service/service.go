// Package service provides the ingestion stage implementation
package service

import (
	"context"
	"time"

	"sentiprep/internal/core/labels"
	"sentiprep/internal/core/split"
	perr "sentiprep/internal/platform/errors"
	"sentiprep/internal/platform/logger"
	dom "sentiprep/internal/services/ingestion/domain"
)

// Config for the ingestion service
type Config struct {
	Source   string
	Query    string
	Labels   labels.Encoder
	Splitter split.Splitter
}

// Service implements domain.RunnerPort: load, filter and encode labels, split, persist
type Service struct {
	Source dom.SourcePort
	Sink   dom.SinkPort
	Cfg    Config
}

// New constructs a new ingestion service
func New(src dom.SourcePort, sink dom.SinkPort, cfg Config) *Service {
	return &Service{Source: src, Sink: sink, Cfg: cfg}
}

// Run implements domain.RunnerPort
// nothing is written unless every step before persisting succeeded
func (s *Service) Run(ctx context.Context) (rep dom.Report, err error) {
	ctx = logger.WithRun(ctx, logger.RunID(ctx), dom.Stage)
	log := logger.C(ctx)
	started := time.Now()
	rep.Source = s.Cfg.Source

	defer func() {
		if r := recover(); r != nil {
			err = perr.PanicErrf("ingestion: panic: %v", r)
		}
		rep.Took = time.Since(started)
		if err != nil {
			e, _ := perr.As(err)
			ev := log.Error().Err(err).Str("code", perr.CodeOf(err).String())
			if e != nil && e.Field() != "" {
				ev = ev.Str("field", e.Field())
			}
			ev.Msg("ingestion failed")
		}
	}()

	raw, err := s.Source.Load(ctx, s.Cfg.Source, s.Cfg.Query)
	if err != nil {
		return rep, err
	}

	encoded, st, err := s.Cfg.Labels.Apply(raw)
	if err != nil {
		return rep, perr.WithOp(err, "labels.apply")
	}
	rep.Input, rep.Kept, rep.Dropped = st.Input, st.Kept, st.Dropped
	rep.Positive, rep.Negative = st.Positive, st.Negative
	log.Info().
		Int("input", st.Input).
		Int("kept", st.Kept).
		Int("dropped", st.Dropped).
		Int("positive", st.Positive).
		Int("negative", st.Negative).
		Msg("labels encoded")

	train, test, err := s.Cfg.Splitter.Split(encoded)
	if err != nil {
		return rep, perr.WithOp(err, "split")
	}
	rep.Train, rep.Test = train.Len(), test.Len()
	log.Info().
		Int("train", rep.Train).
		Int("test", rep.Test).
		Float64("test_size", s.Cfg.Splitter.TestSize).
		Uint64("seed", s.Cfg.Splitter.Seed).
		Msg("split done")

	if err := ctx.Err(); err != nil {
		return rep, perr.Processingf(err, "ingestion: interrupted before write")
	}

	paths, err := s.Sink.Write(ctx, train, test)
	if err != nil {
		return rep, perr.WithOp(err, "sink.write")
	}
	rep.Paths = paths

	log.Info().
		Strs("paths", paths).
		Dur("took", time.Since(started)).
		Msgf("ingestion complete: %d train, %d test", rep.Train, rep.Test)
	return rep, nil
}
