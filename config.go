package filesniff

import (
	"fmt"
	"strings"
	"time"

	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Sampling
	RecordBudget int  `env:"FILESNIFF_NUM_RECORDS,default:100000"`
	FullRead     bool `env:"FILESNIFF_TIDY,default:false"`
	NoDecompress bool `env:"FILESNIFF_NO_DECOMPRESS,default:false"`

	// Workspace directory; kept after the run when set
	CacheDir string `env:"FILESNIFF_CACHE_DIR"`

	// Tester order
	OrderFile string `env:"FILESNIFF_CONF"`
	Skip      string `env:"FILESNIFF_SKIP"` // comma-separated glob patterns

	// Output and logging
	OutputFormat string `env:"FILESNIFF_FORMAT,default:csv"`
	LogLevel     string `env:"FILESNIFF_LOG_LEVEL,default:info"`
	LogFormat    string `env:"FILESNIFF_LOG_FORMAT,default:pretty"`
	KeepGoing    bool   `env:"FILESNIFF_KEEP_GOING,default:false"`

	// Remote inputs
	FetchTimeout      string `env:"FILESNIFF_FETCH_TIMEOUT,default:1h"`
	S3Region          string `env:"FILESNIFF_S3_REGION"`
	S3Endpoint        string `env:"FILESNIFF_S3_ENDPOINT"`
	S3AccessKeyID     string `env:"FILESNIFF_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"FILESNIFF_S3_SECRET_ACCESS_KEY"`
	S3ForcePathStyle  bool   `env:"FILESNIFF_S3_FORCE_PATH_STYLE,default:false"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Builder loads Config with a custom environment prefix
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Config loads the configuration using the builder's prefix
func (b *Builder) Config() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// New creates a Classifier from the configuration loaded with the builder's prefix
func (b *Builder) New(opts ...Option) (*Classifier, error) {
	cfg, err := b.Config()
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if !c.FullRead && c.RecordBudget <= 0 {
		return fmt.Errorf("%w: the number of records to read must be greater than 0", ErrInvalidOptions)
	}
	if _, err := ParseFormat(c.OutputFormat); err != nil {
		return err
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout parses FetchTimeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.FetchTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: fetch timeout %q", ErrInvalidOptions, c.FetchTimeout)
	}
	return d, nil
}

// SkipPatterns splits Skip into trimmed, non-empty patterns.
func (c *Config) SkipPatterns() []string {
	if c.Skip == "" {
		return nil
	}
	var patterns []string
	for _, p := range strings.Split(c.Skip, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// Options converts the configuration into classifier options. The order
// file is read here.
func (c *Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	order, err := LoadOrder(c.OrderFile)
	if err != nil {
		return nil, err
	}
	order.Skip = append(order.Skip, c.SkipPatterns()...)

	timeout, _ := c.Timeout()
	opts := []Option{
		WithFullRead(c.FullRead),
		WithSkipDecompression(c.NoDecompress),
		WithCacheDir(c.CacheDir),
		WithKeepGoing(c.KeepGoing),
		WithOrder(order),
		WithFetchOptions(fetchOptions(c, timeout)...),
	}
	if !c.FullRead {
		opts = append(opts, WithRecordBudget(c.RecordBudget))
	}
	return opts, nil
}
