package veo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/maauso/veo-studio/internal/generation"
)

// ErrURIRequired is returned when Fetch is called without a URI.
var ErrURIRequired = errors.New("veo: video URI is required")

// Downloader fetches produced clips over HTTP. The access key is appended as
// the "key" query parameter, which the file endpoint requires.
type Downloader struct {
	httpClient *http.Client
	maxBytes   int64
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithDownloadHTTPClient sets a custom HTTP client.
func WithDownloadHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) {
		d.httpClient = c
	}
}

// WithDownloadTimeout sets the timeout of the default HTTP client.
func WithDownloadTimeout(timeout time.Duration) DownloaderOption {
	return func(d *Downloader) {
		if timeout > 0 {
			d.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithMaxBytes caps the accepted body size. Zero disables the cap.
func WithMaxBytes(n int64) DownloaderOption {
	return func(d *Downloader) {
		d.maxBytes = n
	}
}

// NewDownloader creates a Downloader.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Compile-time check that Downloader implements generation.Fetcher.
var _ generation.Fetcher = (*Downloader)(nil)

// Fetch downloads the content at uri. A non-2xx response yields a
// *generation.DownloadStatusError carrying the status text.
func (d *Downloader) Fetch(ctx context.Context, uri, apiKey string) ([]byte, error) {
	if uri == "" {
		return nil, ErrURIRequired
	}

	downloadURL, err := withKey(uri, apiKey)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("veo: create download request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("veo: download request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &generation.DownloadStatusError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	var body io.Reader = resp.Body
	if d.maxBytes > 0 {
		body = io.LimitReader(resp.Body, d.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("veo: read download body: %w", err)
	}
	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("veo: download exceeds %d bytes", d.maxBytes)
	}
	return data, nil
}

// withKey adds the access key to the query string of uri.
func withKey(uri, apiKey string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("veo: parse video URI: %w", err)
	}
	if apiKey != "" {
		q := u.Query()
		q.Set("key", apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// statusText returns the reason phrase without the numeric code,
// e.g. "Not Found" for "404 Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
