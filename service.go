package filesniff

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gobeaver/filesniff/fetch"
	"github.com/gobeaver/filesniff/internal/logger"
	"github.com/gobeaver/filesniff/source"
	"github.com/gobeaver/filesniff/spool"
	"github.com/gobeaver/filesniff/tester"
)

// WorkspacePrefix prefixes the run workspace directory name.
const WorkspacePrefix = "filesniff"

// Classifier resolves inputs and dispatches them through the tester chain.
// One Classifier is one run: it owns a workspace that lives until Close.
type Classifier struct {
	opts     Options
	chain    *Chain
	order    *Order
	ws       *spool.Workspace
	resolver *source.Resolver
	runID    string
	log      logger.Logger
	closed   bool
}

// New creates a classifier with the given options
func New(opts ...Option) (*Classifier, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.Order == nil {
		o.Order = DefaultOrder()
	}
	names, err := o.Order.Effective()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := o.Logger.With("run", runID)

	chain, err := NewChain(names, o.Registry, log, o.toolOptions...)
	if err != nil {
		return nil, err
	}
	log.Debug("tester chain", "order", chain.Names(), "requires_full_read", chain.RequiresFullRead())

	ws, err := spool.NewWorkspace(o.CacheDir, WorkspacePrefix, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	fetcher := fetch.New(append([]fetch.Option{fetch.WithLogger(log)}, o.fetchOptions...)...)
	resolverOpts := []source.ResolverOption{source.WithFetcher(fetcher), source.WithLogger(log)}
	if o.Stdin != nil {
		resolverOpts = append(resolverOpts, source.WithStdin(o.Stdin))
	}
	resolver, err := source.NewResolver(ws, o.resolverOptions(chain.RequiresFullRead()), resolverOpts...)
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	return &Classifier{
		opts:     o,
		chain:    chain,
		order:    o.Order,
		ws:       ws,
		resolver: resolver,
		runID:    runID,
		log:      log,
	}, nil
}

// NewFromConfig creates a classifier from cfg. Explicit options override
// the configured ones.
func NewFromConfig(cfg *Config, opts ...Option) (*Classifier, error) {
	base, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(append(base, opts...)...)
}

// NewFromEnv creates a classifier from environment variables
func NewFromEnv(opts ...Option) (*Classifier, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// Classify resolves and classifies a single input with a one-off
// classifier.
func Classify(ctx context.Context, input string, opts ...Option) (*Result, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Classify(ctx, input)
}

// Chain returns the tester chain.
func (c *Classifier) Chain() *Chain { return c.chain }

// Order returns the order the chain was built from.
func (c *Classifier) Order() *Order { return c.order }

// RunID identifies the run in log records.
func (c *Classifier) RunID() string { return c.runID }

// WorkDir is the run workspace directory.
func (c *Classifier) WorkDir() string { return c.ws.Dir() }

// Classify resolves input, which is a local path, an http(s) or s3 URL,
// or "-" for standard input, and dispatches it.
func (c *Classifier) Classify(ctx context.Context, input string) (*Result, error) {
	if c.closed {
		return nil, ErrClosed
	}
	log := c.log.With("input", input)
	log.Info("processing input")

	resolved, err := c.resolver.Resolve(ctx, input)
	if err != nil {
		return nil, &PathError{Op: "resolve", Path: input, Err: err}
	}
	if sp := resolved.Decision.Spool; sp != nil {
		log.Debug("spooled input",
			"path", sp.Path,
			"bytes", sp.Bytes,
			"lines", sp.Lines,
			"truncated", sp.Truncated,
			"digest", sp.Digest,
		)
	}

	res, err := c.chain.Dispatch(ctx, resolved.Location, tester.Options{
		FullRead:     c.opts.FullRead,
		RecordBudget: c.opts.RecordBudget,
		ScratchDir:   c.ws.Dir(),
	})
	if err != nil {
		return nil, err
	}
	res.Input = input
	if resolved.Decision.Decompressed {
		label, id := resolved.Decision.ContainerLabel()
		res.Container = &Container{
			Compression: resolved.Decision.Compression.String(),
			Label:       label,
			ID:          id,
		}
	}
	if !res.Recognized() && !res.Empty {
		log.Info("format not recognized", "tried", len(res.Failures))
	}
	return res, nil
}

// ClassifyAll classifies inputs in order. Per-input errors stop the run
// unless KeepGoing is set, in which case they are recorded on the result.
// Configuration errors always stop the run.
func (c *Classifier) ClassifyAll(ctx context.Context, inputs []string) ([]*Result, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	stdin := 0
	for _, in := range inputs {
		if in == source.StdinName {
			stdin++
		}
	}
	if stdin > 1 {
		return nil, ErrStdinAlreadyUsed
	}

	results := make([]*Result, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := c.Classify(ctx, in)
		if err != nil {
			if !c.opts.KeepGoing || IsConfigError(err) || canceled(err) || ctx.Err() != nil {
				return results, err
			}
			c.log.Error("failed to classify input", "input", in, "error", err)
			res = &Result{Input: in, OK: false, Error: err.Error()}
		}
		results = append(results, res)
	}
	return results, nil
}

// Close removes the workspace unless a cache directory was configured.
func (c *Classifier) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.ws.Close()
}
