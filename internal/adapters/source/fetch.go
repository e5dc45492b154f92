package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"
)

// DefaultHTTPTimeout bounds a whole download when params leave it unset
const DefaultHTTPTimeout = 60 * time.Second

// Fetcher returns the body stored at url
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher downloads directly with a plain GET
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcherWithTimeout creates a new HTTPFetcher whose client gives up after d
func NewHTTPFetcherWithTimeout(d time.Duration) *HTTPFetcher {
	if d <= 0 {
		d = DefaultHTTPTimeout
	}
	return &HTTPFetcher{Client: &http.Client{Timeout: d}}
}

// Fetch returns the response body of a 200 GET; the caller closes it
// transport errors carry the url, so they are reported against its redacted form
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", redact(url), bare(err))
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", redact(url), bare(err))
	}
	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	return nil, errors.Join(
		fmt.Errorf("get %s: unexpected status %d", redact(url), resp.StatusCode),
		resp.Body.Close(),
	)
}

// bare strips the *url.Error layer, whose message repeats the unredacted url
func bare(err error) error {
	var ue *neturl.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}

func (f *HTTPFetcher) client() *http.Client {
	if f == nil || f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}
