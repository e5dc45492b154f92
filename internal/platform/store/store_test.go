package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	chx "sentiprep/internal/platform/store/ch"
	"sentiprep/internal/platform/store/pg"
	"sentiprep/internal/platform/testkit"

	"github.com/rs/zerolog"
)

// fakeQuerier satisfies Querier but not Pinger
type fakeQuerier struct {
	cols   []string
	data   [][]any
	err    error
	closed bool
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (Rows, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &fakeRows{cols: f.cols, data: f.data, idx: -1}, nil
}

func (f *fakeQuerier) Close() error { f.closed = true; return nil }

// fakePinger satisfies Querier and Pinger
type fakePinger struct {
	fakeQuerier
	pingErr error
}

func (f *fakePinger) Ping(context.Context) error { return f.pingErr }

type fakeRows struct {
	cols    []string
	data    [][]any
	idx     int
	valErr  error
	iterErr error
	closed  bool
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.data)
}
func (r *fakeRows) Values() ([]any, error) {
	if r.valErr != nil {
		return nil, r.valErr
	}
	return append([]any(nil), r.data[r.idx]...), nil
}
func (r *fakeRows) Err() error        { return r.iterErr }
func (r *fakeRows) Close()            { r.closed = true }
func (r *fakeRows) Columns() []string { return r.cols }

func TestOpen_NoBackends(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.PG != nil || s.CH != nil {
		t.Fatalf("unexpected seams set PG=%T CH=%T", s.PG, s.CH)
	}
	s.Log.Info().Msg("hello")
	if buf.Len() == 0 {
		t.Fatalf("WithLogger not applied")
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close on empty store returned error: %v", err)
	}
}

func TestOpen_OptionError(t *testing.T) {
	t.Parallel()

	bad := func(*Store) error { return errors.New("nope") }
	if s, err := Open(context.Background(), Config{}, bad); err == nil || s != nil {
		t.Fatalf("option error must abort Open")
	}
}

func TestOpen_CHOnly(t *testing.T) {
	testkit.Serial(t)

	var got chx.Config
	testkit.Swap(t, &openCHClient, func(_ context.Context, c chx.Config) (*chx.CH, error) {
		got = c
		return &chx.CH{}, nil
	})

	s, err := Open(context.Background(), Config{CH: CHConfig{Enabled: true, URL: "clickhouse://h:9000/db", Role: "ingestion"}})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.CH == nil || s.PG != nil {
		t.Fatalf("expected CH only, got PG=%T CH=%T", s.PG, s.CH)
	}
	if got.URL != "clickhouse://h:9000/db" || got.Role != "ingestion" || got.Tag == "" {
		t.Fatalf("ch config not forwarded: %+v", got)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestOpen_CHError(t *testing.T) {
	testkit.Serial(t)

	testkit.Swap(t, &openCHClient, func(context.Context, chx.Config) (*chx.CH, error) {
		return nil, errors.New("bad dsn")
	})
	if s, err := Open(context.Background(), Config{CH: CHConfig{Enabled: true}}); err == nil || s != nil {
		t.Fatalf("expected CH open error")
	}
}

func TestOpen_PGBadURL(t *testing.T) {
	testkit.Serial(t)

	s, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true, URL: "://bad"}})
	if err == nil || s != nil {
		t.Fatalf("expected Open error for bad PG URL, got store=%#v", s)
	}
}

func TestOpenPG_RetriesThenFails(t *testing.T) {
	testkit.Serial(t)

	testkit.Swap(t, &openPGClient, func(context.Context, pg.Config, pg.QueryTracer) (*pg.PG, error) {
		return &pg.PG{}, nil // nil pool: every ping fails
	})
	var sleeps int
	testkit.Swap(t, &sleep, func(time.Duration) { sleeps++ })

	cfg := Config{PG: PGConfig{Enabled: true, URL: "postgres://u@h/db", ConnectRetries: 3}}
	_, err := openPG(context.Background(), cfg, &Store{})
	if err == nil || !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("expected exhausted retries, got %v", err)
	}
	if sleeps != 2 {
		t.Fatalf("sleeps = %d, want 2", sleeps)
	}
}

func TestOpenPG_PassesConfig(t *testing.T) {
	testkit.Serial(t)

	var got pg.Config
	var gotTracer pg.QueryTracer
	testkit.Swap(t, &openPGClient, func(_ context.Context, c pg.Config, tr pg.QueryTracer) (*pg.PG, error) {
		got, gotTracer = c, tr
		return nil, errors.New("stop here")
	})

	cfg := Config{
		AppName: "sentiprep-ingest",
		PG: PGConfig{
			Enabled:   true,
			URL:       "postgres://u@h/db",
			MaxConns:  2,
			ReadOnly:  true,
			LogSQL:    true,
			SlowQuery: 5 * time.Second,
		},
	}
	if _, err := openPG(context.Background(), cfg, &Store{}); err == nil {
		t.Fatal("expected client error")
	}
	want := pg.Config{URL: "postgres://u@h/db", MaxConns: 2, AppName: "sentiprep-ingest", ReadOnly: true, Slow: 5 * time.Second}
	if got != want {
		t.Fatalf("pg.Config = %+v, want %+v", got, want)
	}
	if gotTracer == nil {
		t.Fatal("LogSQL must install a tracer")
	}
}

func TestOpenPG_CanceledContext(t *testing.T) {
	testkit.Serial(t)

	testkit.Swap(t, &openPGClient, func(context.Context, pg.Config, pg.QueryTracer) (*pg.PG, error) {
		return &pg.PG{}, nil
	})
	testkit.Swap(t, &sleep, func(time.Duration) { t.Fatalf("must not sleep after cancel") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := openPG(ctx, Config{PG: PGConfig{Enabled: true}}, &Store{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGuard(t *testing.T) {
	t.Parallel()

	var nilStore *Store
	if err := nilStore.Guard(context.Background()); err == nil {
		t.Fatalf("nil store should return error")
	}
	if err := (&Store{}).Guard(context.Background()); err != nil {
		t.Fatalf("no seams: %v", err)
	}
	if err := (&Store{PG: &fakeQuerier{}}).Guard(context.Background()); err != nil {
		t.Fatalf("non-pinger must be ignored: %v", err)
	}
	if err := (&Store{PG: &fakePinger{}, CH: &fakePinger{}}).Guard(context.Background()); err != nil {
		t.Fatalf("healthy seams: %v", err)
	}

	err := (&Store{
		PG: &fakePinger{pingErr: errors.New("boom")},
		CH: &fakePinger{pingErr: errors.New("bang")},
	}).Guard(context.Background())
	if err == nil || !strings.Contains(err.Error(), "pg: boom") || !strings.Contains(err.Error(), "ch: bang") {
		t.Fatalf("expected both failures prefixed, got %v", err)
	}
}

func TestClose_ClosesSeams(t *testing.T) {
	t.Parallel()

	p, c := &fakeQuerier{}, &fakeQuerier{}
	s := &Store{PG: p, CH: c}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !p.closed || !c.closed {
		t.Fatalf("seams not closed")
	}
	var nilStore *Store
	if err := nilStore.Close(context.Background()); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
