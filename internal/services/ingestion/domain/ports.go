package domain

import (
	"context"

	"sentiprep/internal/core/table"
)

// SourcePort loads the raw labeled table
type SourcePort interface {
	Load(ctx context.Context, src, query string) (*table.Table, error)
}

// SinkPort persists the train/test partitions
type SinkPort interface {
	Write(ctx context.Context, train, test *table.Table) ([]string, error)
}

// RunnerPort runs the stage end to end
type RunnerPort interface {
	Run(ctx context.Context) (Report, error)
}
