package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	perr "sentiprep/internal/platform/errors"
	kit "sentiprep/internal/platform/testkit"
)

func TestDefaultParamsAreValid(t *testing.T) {
	p := DefaultParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if p.Ingestion.Seed != 42 || p.Ingestion.TestSize != 0.2 {
		t.Fatalf("unexpected split defaults: %+v", p.Ingestion)
	}
	if p.Ingestion.Source != DefaultSource {
		t.Fatalf("source default = %q", p.Ingestion.Source)
	}
}

func TestLoadParams_MissingFileMeansDefaults(t *testing.T) {
	p, err := LoadParams(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if p != DefaultParams() {
		t.Fatalf("expected defaults, got %+v", p)
	}
}

func TestLoadParams_EmptyPathUsesDefaultFile(t *testing.T) {
	var seen string
	kit.Swap(t, &readFile, func(name string) ([]byte, error) {
		seen = name
		return []byte("data_ingestion:\n  test_size: 0.3\n"), nil
	})
	p, err := LoadParams("")
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if seen != DefaultParamsFile {
		t.Fatalf("read %q, want %q", seen, DefaultParamsFile)
	}
	if p.Ingestion.TestSize != 0.3 {
		t.Fatalf("test_size = %v", p.Ingestion.TestSize)
	}
}

func TestLoadParams_OverlaysFileOnDefaults(t *testing.T) {
	path := kit.WriteFile(t, t.TempDir(), "params.yaml", `
data_ingestion:
  test_size: 0.25
  seed: 7
  source: ./local.csv
data_preprocessing:
  workers: 4
  stopwords_file: ./stop.txt
source:
  cache_dir: /tmp/cache
  http_timeout: 90s
`)
	p, err := LoadParams(path)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if p.Ingestion.TestSize != 0.25 || p.Ingestion.Seed != 7 || p.Ingestion.Source != "./local.csv" {
		t.Fatalf("ingestion = %+v", p.Ingestion)
	}
	// untouched keys keep defaults
	if p.Ingestion.LabelColumn != "sentiment" || p.Preprocessing.TextColumn != "review" {
		t.Fatalf("defaults lost: %+v", p)
	}
	if p.Preprocessing.Workers != 4 || p.Preprocessing.StopwordsFile != "./stop.txt" {
		t.Fatalf("preprocessing = %+v", p.Preprocessing)
	}
	if p.Source.CacheDir != "/tmp/cache" || p.Source.HTTPTimeout.Duration != 90*time.Second {
		t.Fatalf("source = %+v", p.Source)
	}
}

func TestLoadParams_NumericTimeoutIsSeconds(t *testing.T) {
	path := kit.WriteFile(t, t.TempDir(), "params.yaml", "source:\n  http_timeout: 5\n")
	p, err := LoadParams(path)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if p.Source.HTTPTimeout.Duration != 5*time.Second {
		t.Fatalf("timeout = %v", p.Source.HTTPTimeout)
	}
}

func TestLoadParams_Errors(t *testing.T) {
	bad := kit.WriteFile(t, t.TempDir(), "params.yaml", "data_ingestion: [1, 2\n")
	if _, err := LoadParams(bad); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("malformed yaml: code = %v (%v)", perr.CodeOf(err), err)
	}

	badDur := kit.WriteFile(t, t.TempDir(), "params.yaml", "source:\n  http_timeout: soon\n")
	if _, err := LoadParams(badDur); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("bad duration: code = %v (%v)", perr.CodeOf(err), err)
	}

	kit.Swap(t, &readFile, func(string) ([]byte, error) { return nil, errors.New("eio") })
	if _, err := LoadParams("x.yaml"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("read failure: code = %v (%v)", perr.CodeOf(err), err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SENTIPREP_INGEST_TEST_SIZE", "0.1")
	t.Setenv("SENTIPREP_INGEST_SEED", "1234")
	t.Setenv("SENTIPREP_INGEST_SOURCE", "postgres://u@h/db")
	t.Setenv("SENTIPREP_INGEST_QUERY", "SELECT review, sentiment FROM reviews")
	t.Setenv("SENTIPREP_INGEST_LABEL_COLUMN", "label")
	t.Setenv("SENTIPREP_INGEST_POSITIVE", "pos")
	t.Setenv("SENTIPREP_INGEST_NEGATIVE", "neg")
	t.Setenv("SENTIPREP_INGEST_RAW_DIR", "/out/raw")
	t.Setenv("SENTIPREP_PREP_TEXT_COLUMN", "body")
	t.Setenv("SENTIPREP_PREP_RAW_DIR", "/in/raw")
	t.Setenv("SENTIPREP_PREP_INTERIM_DIR", "/out/interim")
	t.Setenv("SENTIPREP_PREP_WORKERS", "8")
	t.Setenv("SENTIPREP_PREP_STOPWORDS_FILE", "/etc/stop.txt")
	t.Setenv("SENTIPREP_SOURCE_CACHE_DIR", "/var/cache")
	t.Setenv("SENTIPREP_SOURCE_HTTP_TIMEOUT", "2m")

	p := DefaultParams().ApplyEnv(New().Prefix("SENTIPREP_"))

	want := Params{
		Ingestion: IngestionParams{
			TestSize: 0.1, Seed: 1234, Source: "postgres://u@h/db",
			Query:       "SELECT review, sentiment FROM reviews",
			LabelColumn: "label", Positive: "pos", Negative: "neg", RawDir: "/out/raw",
		},
		Preprocessing: PreprocessingParams{
			TextColumn: "body", RawDir: "/in/raw", InterimDir: "/out/interim",
			Workers: 8, StopwordsFile: "/etc/stop.txt",
		},
		Source: SourceParams{CacheDir: "/var/cache", HTTPTimeout: Duration{2 * time.Minute}},
	}
	if p != want {
		t.Fatalf("ApplyEnv:\n got %+v\nwant %+v", p, want)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestApplyEnv_NothingSetKeepsValues(t *testing.T) {
	p := DefaultParams()
	if got := p.ApplyEnv(New().Prefix("SENTIPREP_UNSET_")); got != p {
		t.Fatalf("ApplyEnv with no env changed params: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*Params)
		field string
	}{
		{"test size zero", func(p *Params) { p.Ingestion.TestSize = 0 }, "data_ingestion.test_size"},
		{"test size one", func(p *Params) { p.Ingestion.TestSize = 1 }, "data_ingestion.test_size"},
		{"empty source", func(p *Params) { p.Ingestion.Source = "" }, "data_ingestion.source"},
		{"same labels", func(p *Params) { p.Ingestion.Negative = p.Ingestion.Positive }, "data_ingestion.negative"},
		{"blank label column", func(p *Params) { p.Ingestion.LabelColumn = " \t" }, "data_ingestion.label_column"},
		{"no text column", func(p *Params) { p.Preprocessing.TextColumn = "" }, "data_preprocessing.text_column"},
		{"zero workers", func(p *Params) { p.Preprocessing.Workers = 0 }, "data_preprocessing.workers"},
		{"db without query", func(p *Params) { p.Ingestion.Source = "clickhouse://h:9000/db" }, "data_ingestion.query"},
		{"negative timeout", func(p *Params) { p.Source.HTTPTimeout.Duration = -time.Second }, "source.http_timeout"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := DefaultParams()
			c.mut(&p)
			err := p.Validate()
			if !perr.IsCode(err, perr.ErrorCodeValidation) {
				t.Fatalf("code = %v (%v)", perr.CodeOf(err), err)
			}
			if e, _ := perr.As(err); e.Field() != c.field {
				t.Fatalf("field = %q, want %q", e.Field(), c.field)
			}
		})
	}
}

func TestValidate_PerStage(t *testing.T) {
	p := DefaultParams()
	p.Preprocessing.Workers = 0
	if err := p.ValidateIngestion(); err != nil {
		t.Fatalf("ingestion must ignore data_preprocessing: %v", err)
	}
	err := p.ValidatePreprocessing()
	if e, ok := perr.As(err); !ok || e.Code() != perr.ErrorCodeValidation || e.Field() != "data_preprocessing.workers" {
		t.Fatalf("ValidatePreprocessing = %v", err)
	}

	p = DefaultParams()
	p.Ingestion.Source = "clickhouse://h:9000/db"
	if err := p.ValidatePreprocessing(); err != nil {
		t.Fatalf("preprocessing must ignore data_ingestion: %v", err)
	}
	if err := p.ValidateIngestion(); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("ValidateIngestion = %v", err)
	}
}

func TestIsDatabaseSource(t *testing.T) {
	cases := map[string]bool{
		"postgres://u@h/db":      true,
		"postgresql://u@h/db":    true,
		"clickhouse://h:9000/db": true,
		"https://example.com/a":  false,
		"./data/raw/train.csv":   false,
		"/abs/path.csv":          false,
		"POSTGRES://u@h/db":      true,
	}
	for src, want := range cases {
		if got := IsDatabaseSource(src); got != want {
			t.Fatalf("IsDatabaseSource(%q) = %v, want %v", src, got, want)
		}
	}
}
