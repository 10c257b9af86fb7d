package filesniff

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gobeaver/filesniff/exttool"
	"github.com/gobeaver/filesniff/fetch"
	"github.com/gobeaver/filesniff/internal/logger"
	"github.com/gobeaver/filesniff/source"
	"github.com/gobeaver/filesniff/tester"
)

// DefaultRecordBudget is the number of records sampled per input.
const DefaultRecordBudget = 100000

// Option represents a configuration option
type Option func(*Options)

// Options contains all settings of a Classifier
type Options struct {
	// FullRead reads whole inputs instead of a bounded sample
	FullRead bool

	// SkipDecompression hands gzip and bzip2 inputs to testers undecoded
	SkipDecompression bool

	// RecordBudget is the number of records read per input; must be
	// positive unless FullRead is set
	RecordBudget int

	// CacheDir keeps the run workspace under this directory
	CacheDir string

	// KeepGoing records per-input errors on the result instead of
	// stopping the run
	KeepGoing bool

	// Order is the tester order; the embedded default when nil
	Order *Order

	// Registry resolves built-in tester names
	Registry *tester.Registry

	// Stdin is the claim used for "-"; os.Stdin is claimed on first use
	// when nil
	Stdin *source.StdinClaim

	// Logger receives every diagnostic of the run
	Logger logger.Logger

	fetchOptions []fetch.Option
	toolOptions  []exttool.Option
}

// WithFullRead reads inputs in full
func WithFullRead(full bool) Option {
	return func(o *Options) {
		o.FullRead = full
	}
}

// WithSkipDecompression disables decoding of gzip and bzip2 inputs
func WithSkipDecompression(skip bool) Option {
	return func(o *Options) {
		o.SkipDecompression = skip
	}
}

// WithRecordBudget sets the number of records sampled per input
func WithRecordBudget(n int) Option {
	return func(o *Options) {
		o.RecordBudget = n
	}
}

// WithCacheDir creates the workspace under dir and keeps it after Close
func WithCacheDir(dir string) Option {
	return func(o *Options) {
		o.CacheDir = dir
	}
}

// WithKeepGoing continues past per-input errors
func WithKeepGoing(keep bool) Option {
	return func(o *Options) {
		o.KeepGoing = keep
	}
}

// WithOrder sets the tester order
func WithOrder(order *Order) Option {
	return func(o *Options) {
		o.Order = order
	}
}

// WithRegistry sets the registry of built-in testers
func WithRegistry(r *tester.Registry) Option {
	return func(o *Options) {
		o.Registry = r
	}
}

// WithStdin sets the standard input claim
func WithStdin(c *source.StdinClaim) Option {
	return func(o *Options) {
		o.Stdin = c
	}
}

// WithLogHandler routes diagnostics to handler
func WithLogHandler(handler slog.Handler) Option {
	return func(o *Options) {
		o.Logger = logger.New(handler)
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithFetchOptions configures the fetcher used for remote inputs
func WithFetchOptions(opts ...fetch.Option) Option {
	return func(o *Options) {
		o.fetchOptions = append(o.fetchOptions, opts...)
	}
}

// WithToolOptions configures every CWL tester built from the order
func WithToolOptions(opts ...exttool.Option) Option {
	return func(o *Options) {
		o.toolOptions = append(o.toolOptions, opts...)
	}
}

func defaultOptions() Options {
	return Options{
		RecordBudget: DefaultRecordBudget,
		Logger:       logger.Discard(),
	}
}

func (o *Options) validate() error {
	if !o.FullRead && o.RecordBudget <= 0 {
		return fmt.Errorf("%w: record budget must be greater than 0, got %d", ErrInvalidOptions, o.RecordBudget)
	}
	return nil
}

func (o *Options) resolverOptions(requireFull bool) source.Options {
	return source.Options{
		FullRead:          o.FullRead,
		SkipDecompression: o.SkipDecompression,
		RecordBudget:      o.RecordBudget,
		RequireFullRead:   requireFull,
	}
}

func fetchOptions(c *Config, timeout time.Duration) []fetch.Option {
	opts := []fetch.Option{
		fetch.WithS3Config(fetch.S3Config{
			Region:          c.S3Region,
			Endpoint:        c.S3Endpoint,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
			ForcePathStyle:  c.S3ForcePathStyle,
		}),
	}
	if timeout > 0 {
		opts = append(opts, fetch.WithTimeout(timeout))
	}
	return opts
}
