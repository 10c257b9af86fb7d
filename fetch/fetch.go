// Package fetch downloads remote inputs (http, https and s3 URLs) into a
// local directory so they can be classified like any other file.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/filesniff/internal/logger"
)

// DefaultTimeout bounds a single HTTP download.
const DefaultTimeout = time.Hour

// DefaultFileName is used when the URL path has no usable last segment.
const DefaultFileName = "downloaded_file"

var (
	ErrUnsupportedScheme = errors.New("fetch: unsupported URL scheme")
	ErrBadStatus         = errors.New("fetch: unexpected response status")
)

// Fetcher downloads remote references. The zero value is not usable; use New.
type Fetcher struct {
	client *http.Client
	log    logger.Logger

	s3Config S3Config
	s3Once   sync.Once
	s3Client ObjectGetter
	s3Err    error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client. Its timeout is used as is.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithTimeout sets the HTTP download timeout on a copy of the client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		c := *f.client
		c.Timeout = d
		f.client = &c
	}
}

// WithS3Config configures the lazily created S3 client.
func WithS3Config(cfg S3Config) Option {
	return func(f *Fetcher) { f.s3Config = cfg }
}

// WithS3Client sets the client used for s3:// URLs.
func WithS3Client(c ObjectGetter) Option {
	return func(f *Fetcher) {
		f.s3Client = c
		f.s3Once.Do(func() {})
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: DefaultTimeout},
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsRemote reports whether input is a URL this package can fetch.
func IsRemote(input string) bool {
	u, err := url.Parse(input)
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "s3":
		return true
	default:
		return false
	}
}

// FileName returns the name a download of u is stored under: the last
// path segment, or DefaultFileName.
func FileName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return DefaultFileName
	}
	return name
}

// Fetch downloads rawURL into dir and returns the local path.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("fetch: parse %q: %w", rawURL, err)
	}

	var body io.ReadCloser
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		body, err = f.openHTTP(ctx, u)
	case "s3":
		body, err = f.openS3(ctx, u)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	if err != nil {
		return "", err
	}
	defer body.Close()

	dest := filepath.Join(dir, FileName(u))
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("fetch: create %s: %w", dest, err)
	}
	n, err := io.Copy(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("fetch: download %s: %w", rawURL, err)
	}

	f.log.Debug("downloaded remote input", "url", rawURL, "path", dest, "bytes", n)
	return dest, nil
}

func (f *Fetcher) openHTTP(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: GET %s: %w", u, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: %s", ErrBadStatus, u, resp.Status)
	}
	return resp.Body, nil
}
