// Package module implements the preprocessing stage module
package module

import (
	"sentiprep/internal/adapters/sink"
	"sentiprep/internal/adapters/source"
	"sentiprep/internal/core/normalize"
	"sentiprep/internal/modkit"
	"sentiprep/internal/services/preprocessing/domain"
	"sentiprep/internal/services/preprocessing/service"
)

// AppName identifies the stage in logs
const AppName = "sentiprep-preprocess"

// Ports exposed by the preprocessing module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the preprocessing stage module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
}

var ensureResources = normalize.EnsureResources // seam

// New validates the data_preprocessing params, loads the normalizer resources once and wires the stage
func New(deps modkit.Deps) (*Module, error) {
	if err := deps.Params.ValidatePreprocessing(); err != nil {
		return nil, err
	}
	opts := FromParams(deps.Params)

	res, err := ensureResources(normalize.ResourceOptions{StopwordsFile: opts.StopwordsFile})
	if err != nil {
		return nil, err
	}

	svc := service.New(
		source.New(source.Options{AppName: AppName}),
		normalize.FromResources(res, normalize.WithWorkers(opts.Workers)),
		sink.Pair{Sink: sink.CSV{Dir: opts.InterimDir}, Names: sink.ProcessedNames},
		service.Config{
			TrainPath:  opts.TrainPath,
			TestPath:   opts.TestPath,
			TextColumn: opts.TextColumn,
		},
	)

	m := &Module{deps: deps}
	m.built = modkit.Build(
		modkit.WithName("preprocessing"),
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
