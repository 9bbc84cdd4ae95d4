package webmotors

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"vehicle-insights/config"
)

// HTTPFetcher requests search pages with a plain HTTP client carrying the
// session cookie and browser-like headers.
type HTTPFetcher struct {
	client *http.Client
	header http.Header
}

func NewHTTPFetcher(cfg *config.Config) *HTTPFetcher {
	h := make(http.Header)
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Cookie", cfg.Cookie)
	h.Set("User-Agent", userAgent)
	h.Set("X-Requested-With", "XMLHttpRequest")
	return &HTTPFetcher{
		client: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second},
		header: h,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = f.header.Clone()

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
