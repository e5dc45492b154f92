package module

import (
	"path/filepath"

	"sentiprep/internal/adapters/sink"
	"sentiprep/internal/platform/config"
)

// Options holds configuration settings for the preprocessing module
type Options struct {
	TrainPath     string
	TestPath      string
	TextColumn    string
	InterimDir    string
	Workers       int
	StopwordsFile string
}

// FromParams reads the preprocessing settings out of the shared params
func FromParams(p config.Params) Options {
	pp := p.Preprocessing
	return Options{
		TrainPath:     filepath.Join(pp.RawDir, sink.RawNames.Train),
		TestPath:      filepath.Join(pp.RawDir, sink.RawNames.Test),
		TextColumn:    pp.TextColumn,
		InterimDir:    pp.InterimDir,
		Workers:       pp.Workers,
		StopwordsFile: pp.StopwordsFile,
	}
}
