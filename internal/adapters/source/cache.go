package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"sentiprep/internal/platform/logger"
)

// CachedFetcher downloads remote tables into dir and reuses them across runs
// Each entry is a body file plus a .meta json sidecar holding its validators
// A cached entry is revalidated with a conditional GET; when the server answers 304
// or cannot be reached the cached body is served
type CachedFetcher struct {
	dir    string
	client *http.Client
	now    func() time.Time
}

type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Size         int64     `json:"size,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
	LastChecked  time.Time `json:"last_checked"`
}

// NewCachedFetcher caches under dir; base's client is reused when given
func NewCachedFetcher(dir string, base *HTTPFetcher) *CachedFetcher {
	c := &CachedFetcher{
		dir:    dir,
		client: &http.Client{Timeout: DefaultHTTPTimeout},
		now:    func() time.Time { return time.Now().UTC() },
	}
	if base != nil && base.Client != nil {
		c.client = base.Client
	}
	return c
}

// Fetch returns the body for url, from disk when the cached copy is still good
func (c *CachedFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, err
	}
	body := c.pathFor(url)
	metaPath := body + ".meta"

	var meta *cacheMeta
	if fi, err := os.Stat(body); err == nil && fi.Mode().IsRegular() {
		meta, _ = loadMeta(metaPath)
		if meta == nil {
			meta = &cacheMeta{URL: url}
		}
	}

	rc, err := c.get(ctx, url, body, meta)
	if err == nil || meta == nil {
		return rc, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	logger.C(ctx).Warn().Err(err).Str("url", redact(url)).Msg("source cache revalidation failed, serving cached copy")
	return os.Open(body)
}

// get downloads url into body; with meta set the request is conditional and a 304
// serves the existing body
func (c *CachedFetcher) get(ctx context.Context, url, body string, meta *cacheMeta) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	log := logger.C(ctx).Debug().Str("url", redact(url))
	switch {
	case resp.StatusCode == http.StatusNotModified && meta != nil:
		meta.LastChecked = c.now()
		_ = saveMeta(body+".meta", meta)
		log.Bool("cache_hit", true).Msg("source cache revalidated")
		return os.Open(body)
	case resp.StatusCode == http.StatusOK:
		log.Bool("cache_hit", false).Msg("source cache filled")
		return c.store(url, body, resp)
	default:
		return nil, fmt.Errorf("source: unexpected status %d for %s", resp.StatusCode, redact(url))
	}
}

// store writes resp's body through a .part file, records its validators and reopens it
func (c *CachedFetcher) store(url, body string, resp *http.Response) (io.ReadCloser, error) {
	tmp := body + ".part"
	defer func() { _ = os.Remove(tmp) }()

	f, err := os.Create(tmp)
	if err != nil {
		return nil, err
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	if err := os.Rename(tmp, body); err != nil {
		return nil, err
	}

	now := c.now()
	_ = saveMeta(body+".meta", &cacheMeta{
		URL:          url,
		ETag:         strings.TrimSpace(resp.Header.Get("ETag")),
		LastModified: strings.TrimSpace(resp.Header.Get("Last-Modified")),
		Size:         n,
		FetchedAt:    now,
		LastChecked:  now,
	})
	return os.Open(body)
}

// pathFor names the entry by a digest of url, keeping a .csv/.gz/.csv.gz extension
func (c *CachedFetcher) pathFor(url string) string {
	sum := sha256.Sum256([]byte(url))
	name := hex.EncodeToString(sum[:12])
	base, _, _ := strings.Cut(url, "?")
	base = path.Base(base)
	switch {
	case strings.HasSuffix(base, ".csv.gz"):
		name += ".csv.gz"
	case strings.HasSuffix(base, ".gz"):
		name += ".gz"
	default:
		name += ".csv"
	}
	return filepath.Join(c.dir, name)
}

func loadMeta(p string) (*cacheMeta, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	var m cacheMeta
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// saveMeta replaces the sidecar atomically
func saveMeta(p string, m *cacheMeta) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	tmp := p + ".part"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}
