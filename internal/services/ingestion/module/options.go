package module

import (
	"time"

	"sentiprep/internal/platform/config"
)

// Options holds configuration settings for the ingestion module
type Options struct {
	Source      string
	Query       string
	LabelColumn string
	Positive    string
	Negative    string
	TestSize    float64
	Seed        uint64
	RawDir      string
	CacheDir    string
	HTTPTimeout time.Duration
}

// FromParams reads the ingestion settings out of the shared params
func FromParams(p config.Params) Options {
	in := p.Ingestion
	return Options{
		Source:      in.Source,
		Query:       in.Query,
		LabelColumn: in.LabelColumn,
		Positive:    in.Positive,
		Negative:    in.Negative,
		TestSize:    in.TestSize,
		Seed:        in.Seed,
		RawDir:      in.RawDir,
		CacheDir:    p.Source.CacheDir,
		HTTPTimeout: p.Source.HTTPTimeout.Duration,
	}
}
