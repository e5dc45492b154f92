package domain

import (
	"context"

	"sentiprep/internal/core/normalize"
	"sentiprep/internal/core/table"
)

// SourcePort loads a raw partition written by the ingestion stage
type SourcePort interface {
	Load(ctx context.Context, src, query string) (*table.Table, error)
}

// NormalizerPort cleans the text column of a table
type NormalizerPort interface {
	Table(ctx context.Context, t *table.Table, column string) (*table.Table, normalize.Stats, error)
}

// SinkPort persists the processed partitions
type SinkPort interface {
	Write(ctx context.Context, train, test *table.Table) ([]string, error)
}

// RunnerPort runs the stage end to end
type RunnerPort interface {
	Run(ctx context.Context) (Report, error)
}
