// Package http provides HTTP-based acquisition of remote source
// documents.
package http

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/athanor/sigildex"
)

// DefaultTimeout is the default timeout for download requests. Archive
// scans run large, so this is far more generous than a page fetch.
const DefaultTimeout = 5 * time.Minute

// Ensure Downloader implements sigildex.Downloader at compile time.
var _ sigildex.Downloader = (*Downloader)(nil)

// Downloader retrieves source documents over HTTP with per-domain rate
// limiting, so bulk ingests stay polite to archives.
type Downloader struct {
	client  *http.Client
	limiter *DomainLimiter
	timeout time.Duration
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithTimeout sets the timeout for download requests.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(dl *Downloader) {
		dl.timeout = d
	}
}

// WithRateLimit sets the per-domain requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(dl *Downloader) {
		dl.limiter = NewDomainLimiter(rps)
	}
}

// NewDownloader creates a new HTTP Downloader.
func NewDownloader(opts ...Option) *Downloader {
	dl := &Downloader{
		timeout: DefaultTimeout,
		limiter: NewDomainLimiter(1),
	}
	for _, opt := range opts {
		opt(dl)
	}

	dl.client = &http.Client{
		Timeout: dl.timeout,
	}

	return dl
}

// Download fetches rawURL into destDir as baseName plus a suffix guessed
// from the URL path or, failing that, the response content type. The
// file is written via a temp file and rename, so a failed download never
// leaves a partial document behind. Returns the saved path.
func (dl *Downloader) Download(ctx context.Context, rawURL, destDir, baseName string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", sigildex.Errorf(sigildex.EINVALID, "invalid source URL %q: %v", rawURL, err)
	}

	if err := dl.limiter.Wait(ctx, u.Host); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := dl.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", sigildex.Errorf(sigildex.ENOTFOUND, "document not found at %s", rawURL)
	case resp.StatusCode != http.StatusOK:
		return "", sigildex.Errorf(sigildex.EINTERNAL, "HTTP %d for %s", resp.StatusCode, rawURL)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	dest := filepath.Join(destDir, baseName+guessSuffix(u, resp.Header.Get("Content-Type")))

	tmp, err := os.CreateTemp(destDir, ".download-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return dest, nil
}

// guessSuffix picks a file extension, preferring the URL path over the
// content type. PDFs without either hint default to .pdf since that is
// what archives overwhelmingly serve.
func guessSuffix(u *url.URL, contentType string) string {
	if ext := path.Ext(u.Path); ext != "" && len(ext) <= 5 {
		return ext
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil {
		switch mediaType {
		case "application/pdf":
			return ".pdf"
		case "image/png":
			return ".png"
		case "image/jpeg":
			return ".jpg"
		case "image/tiff":
			return ".tiff"
		case "application/epub+zip":
			return ".epub"
		}
	}
	return ".pdf"
}
