// Package service provides the preprocessing stage implementation
package service

import (
	"context"
	"time"

	"sentiprep/internal/core/table"
	perr "sentiprep/internal/platform/errors"
	"sentiprep/internal/platform/logger"
	dom "sentiprep/internal/services/preprocessing/domain"
)

// Config for the preprocessing service
type Config struct {
	TrainPath  string
	TestPath   string
	TextColumn string
}

// Service implements domain.RunnerPort: load both raw partitions, normalize, persist
type Service struct {
	Source     dom.SourcePort
	Normalizer dom.NormalizerPort
	Sink       dom.SinkPort
	Cfg        Config
}

// New constructs a new preprocessing service
func New(src dom.SourcePort, n dom.NormalizerPort, sink dom.SinkPort, cfg Config) *Service {
	return &Service{Source: src, Normalizer: n, Sink: sink, Cfg: cfg}
}

// Run implements domain.RunnerPort
func (s *Service) Run(ctx context.Context) (rep dom.Report, err error) {
	ctx = logger.WithRun(ctx, logger.RunID(ctx), dom.Stage)
	log := logger.C(ctx)
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = perr.PanicErrf("preprocessing: panic: %v", r)
		}
		rep.Took = time.Since(started)
		if err != nil {
			ev := log.Error().Err(err).Str("code", perr.CodeOf(err).String())
			if e, ok := perr.As(err); ok && e.Field() != "" {
				ev = ev.Str("field", e.Field())
			}
			ev.Msg("preprocessing failed")
		}
	}()

	train, err := s.Source.Load(ctx, s.Cfg.TrainPath, "")
	if err != nil {
		return rep, err
	}
	test, err := s.Source.Load(ctx, s.Cfg.TestPath, "")
	if err != nil {
		return rep, err
	}

	outTrain, err := s.part(ctx, "train", train, &rep.Train)
	if err != nil {
		return rep, err
	}
	outTest, err := s.part(ctx, "test", test, &rep.Test)
	if err != nil {
		return rep, err
	}

	if err := ctx.Err(); err != nil {
		return rep, perr.Processingf(err, "preprocessing: interrupted before write")
	}
	paths, err := s.Sink.Write(ctx, outTrain, outTest)
	if err != nil {
		return rep, perr.WithOp(err, "sink.write")
	}
	rep.Paths = paths

	log.Info().
		Strs("paths", paths).
		Dur("took", time.Since(started)).
		Msgf("preprocessing complete: %d train, %d test", rep.Train.Output, rep.Test.Output)
	return rep, nil
}

// part normalizes one partition and records its counts
func (s *Service) part(ctx context.Context, name string, t *table.Table, into *dom.PartReport) (*table.Table, error) {
	out, st, err := s.Normalizer.Table(ctx, t, s.Cfg.TextColumn)
	if err != nil {
		return nil, perr.WithOp(err, "normalize."+name)
	}
	*into = dom.PartReport{
		Input:          st.Input,
		Output:         st.Output,
		DroppedMissing: st.DroppedMissing,
		DroppedEmpty:   st.DroppedEmpty,
	}
	logger.C(ctx).Info().
		Str("partition", name).
		Int("input", st.Input).
		Int("output", st.Output).
		Int("dropped_missing", st.DroppedMissing).
		Int("dropped_empty", st.DroppedEmpty).
		Msg("partition normalized")
	return out, nil
}
