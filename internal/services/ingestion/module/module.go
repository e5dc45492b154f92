// Package module implements the ingestion stage module
package module

import (
	"sentiprep/internal/adapters/sink"
	"sentiprep/internal/adapters/source"
	"sentiprep/internal/core/labels"
	"sentiprep/internal/core/split"
	"sentiprep/internal/modkit"
	"sentiprep/internal/services/ingestion/domain"
	"sentiprep/internal/services/ingestion/service"
)

// AppName identifies the stage to databases and in logs
const AppName = "sentiprep-ingest"

// Ports exposed by the ingestion module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the ingestion stage module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
}

// New constructs a new ingestion module from validated params
func New(deps modkit.Deps) (*Module, error) {
	if err := deps.Params.ValidateIngestion(); err != nil {
		return nil, err
	}
	opts := FromParams(deps.Params)

	src := source.New(source.Options{
		CacheDir:    opts.CacheDir,
		HTTPTimeout: opts.HTTPTimeout,
		AppName:     AppName,
	})
	out := sink.Pair{Sink: sink.CSV{Dir: opts.RawDir}, Names: sink.RawNames}

	svc := service.New(src, out, service.Config{
		Source: opts.Source,
		Query:  opts.Query,
		Labels: labels.Encoder{
			Column:   opts.LabelColumn,
			Positive: opts.Positive,
			Negative: opts.Negative,
		},
		Splitter: split.Splitter{TestSize: opts.TestSize, Seed: opts.Seed},
	})

	m := &Module{deps: deps}
	m.built = modkit.Build(
		modkit.WithName("ingestion"),
		modkit.WithStage(domain.Stage),
		modkit.WithPorts(Ports{Runner: svc}),
	)
	return m, nil
}

// Name satisfies module.Module
func (m *Module) Name() string { return m.built.Name }

// Stage is the log label of the stage this module runs
func (m *Module) Stage() string { return m.built.Stage }

// Ports satisfies module.Module
func (m *Module) Ports() any { return m.built.Ports }
