package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	perr "sentiprep/internal/platform/errors"
	"sentiprep/internal/platform/validate"

	"sigs.k8s.io/yaml"
)

// DefaultSource is the dataset the ingestion stage reads when nothing else is configured
const DefaultSource = "https://raw.githubusercontent.com/vikashishere/Datasets/refs/heads/main/data.csv"

// DefaultParamsFile is the params path used when none is given on the command line
const DefaultParamsFile = "params.yaml"

// Params is the explicit configuration handed to both stages
type Params struct {
	Ingestion     IngestionParams     `json:"data_ingestion"`
	Preprocessing PreprocessingParams `json:"data_preprocessing"`
	Source        SourceParams        `json:"source"`
}

// IngestionParams configures stage 1
type IngestionParams struct {
	TestSize    float64 `json:"test_size" validate:"gt=0,lt=1"`
	Seed        uint64  `json:"seed"`
	Source      string  `json:"source" validate:"notblank"`
	Query       string  `json:"query"`
	LabelColumn string  `json:"label_column" validate:"notblank"`
	Positive    string  `json:"positive" validate:"notblank"`
	Negative    string  `json:"negative" validate:"notblank,nefield=Positive"`
	RawDir      string  `json:"raw_dir" validate:"required"`
}

// PreprocessingParams configures stage 2
type PreprocessingParams struct {
	TextColumn    string `json:"text_column" validate:"notblank"`
	RawDir        string `json:"raw_dir" validate:"required"`
	InterimDir    string `json:"interim_dir" validate:"required"`
	Workers       int    `json:"workers" validate:"min=1"`
	StopwordsFile string `json:"stopwords_file"`
}

// SourceParams configures how input tables are fetched
type SourceParams struct {
	CacheDir    string   `json:"cache_dir"`
	HTTPTimeout Duration `json:"http_timeout"`
}

// Duration is a time.Duration that reads "60s" style strings or integer seconds from params files
type Duration struct{ time.Duration }

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		d.Duration = v
		return nil
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return errors.New("duration must be a string like 60s or a number of seconds")
	}
	d.Duration = time.Duration(secs * float64(time.Second))
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// DefaultParams returns the configuration used when the params file is silent
func DefaultParams() Params {
	return Params{
		Ingestion: IngestionParams{
			TestSize:    0.2,
			Seed:        42,
			Source:      DefaultSource,
			LabelColumn: "sentiment",
			Positive:    "positive",
			Negative:    "negative",
			RawDir:      "./data/raw",
		},
		Preprocessing: PreprocessingParams{
			TextColumn: "review",
			RawDir:     "./data/raw",
			InterimDir: "./data/interim",
			Workers:    1,
		},
		Source: SourceParams{
			HTTPTimeout: Duration{60 * time.Second},
		},
	}
}

var readFile = os.ReadFile // seam

// LoadParams reads a YAML params file over the defaults
// a missing file yields the defaults; an empty path means DefaultParamsFile
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	if path == "" {
		path = DefaultParamsFile
	}
	b, err := readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return p, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read params %s", path)
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "parse params %s", path)
	}
	return p, nil
}

// ApplyEnv overlays environment variables found under conf onto p
// conf is usually New().Prefix("SENTIPREP_")
func (p Params) ApplyEnv(conf Conf) Params {
	in := conf.Prefix("INGEST_")
	p.Ingestion.TestSize = in.MayFloat64("TEST_SIZE", p.Ingestion.TestSize)
	p.Ingestion.Seed = in.MayUint64("SEED", p.Ingestion.Seed)
	p.Ingestion.Source = in.MayString("SOURCE", p.Ingestion.Source)
	p.Ingestion.Query = in.MayString("QUERY", p.Ingestion.Query)
	p.Ingestion.LabelColumn = in.MayString("LABEL_COLUMN", p.Ingestion.LabelColumn)
	p.Ingestion.Positive = in.MayString("POSITIVE", p.Ingestion.Positive)
	p.Ingestion.Negative = in.MayString("NEGATIVE", p.Ingestion.Negative)
	p.Ingestion.RawDir = in.MayString("RAW_DIR", p.Ingestion.RawDir)

	pp := conf.Prefix("PREP_")
	p.Preprocessing.TextColumn = pp.MayString("TEXT_COLUMN", p.Preprocessing.TextColumn)
	p.Preprocessing.RawDir = pp.MayString("RAW_DIR", p.Preprocessing.RawDir)
	p.Preprocessing.InterimDir = pp.MayString("INTERIM_DIR", p.Preprocessing.InterimDir)
	p.Preprocessing.Workers = pp.MayInt("WORKERS", p.Preprocessing.Workers)
	p.Preprocessing.StopwordsFile = pp.MayString("STOPWORDS_FILE", p.Preprocessing.StopwordsFile)

	src := conf.Prefix("SOURCE_")
	p.Source.CacheDir = src.MayString("CACHE_DIR", p.Source.CacheDir)
	p.Source.HTTPTimeout.Duration = src.MayDuration("HTTP_TIMEOUT", p.Source.HTTPTimeout.Duration)
	return p
}

// Validate checks both stages' params and returns a validation error naming the first bad field
func (p Params) Validate() error {
	if err := p.ValidateIngestion(); err != nil {
		return err
	}
	return p.ValidatePreprocessing()
}

// ValidateIngestion checks only what stage 1 reads: data_ingestion and source
func (p Params) ValidateIngestion() error {
	if err := validateSection("data_ingestion", p.Ingestion); err != nil {
		return err
	}
	if IsDatabaseSource(p.Ingestion.Source) && strings.TrimSpace(p.Ingestion.Query) == "" {
		return perr.WithField(
			perr.Validationf("query is required for %s sources", schemeOf(p.Ingestion.Source)),
			"data_ingestion.query",
		)
	}
	if p.Source.HTTPTimeout.Duration < 0 {
		return perr.WithField(perr.Validationf("http_timeout must not be negative"), "source.http_timeout")
	}
	return nil
}

// ValidatePreprocessing checks only data_preprocessing; stage 2 reads local files
func (p Params) ValidatePreprocessing() error {
	return validateSection("data_preprocessing", p.Preprocessing)
}

// validateSection validates one params section and roots the failing field under name
func validateSection(name string, section any) error {
	err := validate.Struct(section)
	if e, ok := perr.As(err); ok && e.Field() != "" {
		return perr.WithField(err, name+"."+e.Field())
	}
	return err
}

// IsDatabaseSource reports whether src names a postgres or clickhouse DSN
func IsDatabaseSource(src string) bool {
	switch schemeOf(src) {
	case "postgres", "postgresql", "clickhouse":
		return true
	}
	return false
}

func schemeOf(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
