package source

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"sentiprep/internal/core/table"
	perr "sentiprep/internal/platform/errors"
	"sentiprep/internal/platform/logger"
)

// Options configures a Loader
type Options struct {
	// CacheDir enables the on disk download cache for http(s) sources
	CacheDir string
	// HTTPTimeout bounds a single download, DefaultHTTPTimeout when zero
	HTTPTimeout time.Duration
	// AppName is reported to databases as the client name
	AppName string
}

// Loader reads a table from a path, URL or database DSN
type Loader struct {
	fetcher Fetcher
	appName string
}

// New builds a Loader from opts
func New(opts Options) *Loader {
	base := NewHTTPFetcherWithTimeout(opts.HTTPTimeout)
	l := &Loader{fetcher: base, appName: opts.AppName}
	if opts.CacheDir != "" {
		l.fetcher = NewCachedFetcher(opts.CacheDir, base)
	}
	return l
}

// WithFetcher returns a copy of l that downloads through f
func (l *Loader) WithFetcher(f Fetcher) *Loader {
	c := *l
	c.fetcher = f
	return &c
}

// Load reads src into a table; query is only used by database sources
func (l *Loader) Load(ctx context.Context, src, query string) (*table.Table, error) {
	log := logger.C(ctx)
	started := time.Now()

	kind, t, err := l.load(ctx, src, query)
	if err != nil {
		if _, coded := perr.As(err); !coded {
			err = perr.SourceUnavailablef(err, "load %s", redact(src))
		}
		return nil, perr.WithOp(err, "source.load")
	}

	log.Info().
		Str("source", redact(src)).
		Str("kind", kind).
		Int("rows", t.Len()).
		Strs("columns", t.Columns()).
		Dur("took", time.Since(started)).
		Msg("source loaded")
	return t, nil
}

func (l *Loader) load(ctx context.Context, src, query string) (string, *table.Table, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil, perr.SourceUnavailablef(nil, "empty source")
	}
	switch scheme := schemeOf(src); scheme {
	case "http", "https":
		t, err := l.loadHTTP(ctx, src)
		return "http", t, err
	case "postgres", "postgresql", "clickhouse":
		t, err := l.loadDB(ctx, scheme, src, query)
		return scheme, t, err
	case "file":
		u, _ := url.Parse(src)
		t, err := loadFile(u.Path)
		return "file", t, err
	case "":
		t, err := loadFile(src)
		return "file", t, err
	default:
		return "", nil, perr.SourceUnavailablef(nil, "unsupported source scheme %q", scheme)
	}
}

// schemeOf returns the lowercased URL scheme of src, or "" for plain paths
// single letter schemes are windows drive letters
func schemeOf(src string) string {
	i := strings.Index(src, "://")
	if i <= 1 {
		return ""
	}
	return strings.ToLower(src[:i])
}

func loadFile(p string) (*table.Table, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, perr.SourceUnavailablef(err, "open %s", p)
	}
	defer func() { _ = f.Close() }()
	return decode(f, p)
}

func (l *Loader) loadHTTP(ctx context.Context, src string) (*table.Table, error) {
	rc, err := l.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, perr.SourceUnavailablef(err, "fetch %s", redact(src))
	}
	defer func() { _ = rc.Close() }()
	u, _ := url.Parse(src)
	name := src
	if u != nil {
		name = u.Path
	}
	return decode(rc, name)
}

// gzipMagic opens every gzip member
var gzipMagic = []byte{0x1f, 0x8b}

// decode reads CSV from r, unwrapping gzip when name ends in .gz or the stream starts with the gzip magic
func decode(r io.Reader, name string) (*table.Table, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(gzipMagic))
	if bytes.Equal(head, gzipMagic) || strings.HasSuffix(strings.ToLower(name), ".gz") {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, perr.SourceUnavailablef(err, "gzip %s", name)
		}
		defer func() { _ = gz.Close() }()
		return ReadCSV(gz)
	}
	return ReadCSV(br)
}

// redact hides passwords in DSNs before they reach logs or errors
func redact(src string) string {
	u, err := url.Parse(src)
	if err != nil || u.User == nil {
		return src
	}
	return u.Redacted()
}
