//go:build integration_pg

package store

import (
	"context"
	"testing"
	"time"

	kit "sentiprep/internal/platform/testkit"
)

func TestStore_Integration_TabularReviews(t *testing.T) {
	dsn := kit.Postgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s, err := Open(ctx, Config{
		AppName: "sentiprep-store-integration",
		PG: PGConfig{
			Enabled:  true,
			URL:      dsn,
			MaxConns: 2,
			LogSQL:   true, // hit tracer wiring path
		},
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard: %v", err)
	}

	a, ok := s.PG.(*pgAdapter)
	if !ok {
		t.Fatalf("PG seam is %T, want *pgAdapter", s.PG)
	}
	if _, err := a.p.Pool.Exec(ctx, `
		CREATE TABLE reviews (
			id        SERIAL PRIMARY KEY,
			review    TEXT,
			sentiment TEXT NOT NULL,
			stars     INT
		)
	`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := a.p.Pool.Exec(ctx,
		`INSERT INTO reviews (review, sentiment, stars) VALUES ($1,$2,$3), ($4,$5,$6)`,
		"Loved it", "positive", 5, nil, "negative", nil,
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	cols, data, err := Tabular(ctx, s.PG, `SELECT review, sentiment, stars FROM reviews ORDER BY id`)
	if err != nil {
		t.Fatalf("Tabular: %v", err)
	}
	if len(cols) != 3 || cols[0] != "review" || cols[2] != "stars" {
		t.Fatalf("columns mismatch: %#v", cols)
	}
	if len(data) != 2 {
		t.Fatalf("rows = %d, want 2", len(data))
	}
	if data[0][0] != "Loved it" || data[0][2] != int32(5) {
		t.Fatalf("first row = %#v", data[0])
	}
	if data[1][0] != nil || data[1][1] != "negative" || data[1][2] != nil {
		t.Fatalf("second row = %#v", data[1])
	}
}
