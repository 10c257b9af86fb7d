package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gobeaver/filesniff/edam"
	"github.com/gobeaver/filesniff/fetch"
	"github.com/gobeaver/filesniff/internal/logger"
	"github.com/gobeaver/filesniff/sniff"
	"github.com/gobeaver/filesniff/spool"
)

var (
	// ErrNotFound is returned for local inputs that do not exist.
	ErrNotFound = errors.New("source: input does not exist")
	// ErrFullReadRequired is returned when a compressed input would be
	// decoded into a bounded sample while the tester chain needs the whole
	// content.
	ErrFullReadRequired = errors.New("source: compressed input must be read in full for the configured testers; enable full reads or skip decompression")
)

// Options controls how inputs are materialized.
type Options struct {
	// FullRead spools entire streams instead of a bounded sample.
	FullRead bool
	// SkipDecompression hands gzip and bzip2 files to testers as is.
	SkipDecompression bool
	// RecordBudget bounds sampled spools. Must be positive.
	RecordBudget int
	// RequireFullRead is set when some tester needs the complete content.
	RequireFullRead bool
}

func (o Options) policy() spool.Policy {
	if o.FullRead {
		return spool.Full()
	}
	return spool.Bounded(o.RecordBudget)
}

// Decision records how an input was materialized.
type Decision struct {
	// Compression is the sniffed container.
	Compression sniff.Kind
	// Container names a recognized signature, including unsupported ones.
	Container string
	// Decompressed is set when the location holds decoded content.
	Decompressed bool
	// Spool describes the spooled file, if one was written.
	Spool *spool.Spool
}

// ContainerLabel returns the vocabulary label and id of a decompressed
// container. The id is empty when the vocabulary has none.
func (d Decision) ContainerLabel() (label, id string) {
	switch d.Compression {
	case sniff.Gzip:
		label = "GZIP format"
	case sniff.Bzip2:
		label = "BZIP2 format"
	default:
		return "", ""
	}
	id, _ = edam.Default().IDForLabel(label)
	return label, id
}

// Resolved is the outcome of Resolve.
type Resolved struct {
	Location Location
	Decision Decision
}

// Resolver materializes inputs into the run workspace.
type Resolver struct {
	ws      *spool.Workspace
	fetcher *fetch.Fetcher
	stdin   *StdinClaim
	opts    Options
	log     logger.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithStdin supplies the claim used for "-". Without it the resolver claims
// os.Stdin on first use.
func WithStdin(c *StdinClaim) ResolverOption {
	return func(r *Resolver) { r.stdin = c }
}

// WithFetcher sets the fetcher for remote inputs.
func WithFetcher(f *fetch.Fetcher) ResolverOption {
	return func(r *Resolver) { r.fetcher = f }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) ResolverOption {
	return func(r *Resolver) { r.log = l }
}

// NewResolver creates a Resolver writing into ws.
func NewResolver(ws *spool.Workspace, opts Options, options ...ResolverOption) (*Resolver, error) {
	if !opts.FullRead && opts.RecordBudget <= 0 {
		return nil, fmt.Errorf("source: record budget must be positive, got %d", opts.RecordBudget)
	}
	r := &Resolver{ws: ws, opts: opts, log: logger.Discard()}
	for _, o := range options {
		o(r)
	}
	if r.fetcher == nil {
		r.fetcher = fetch.New(fetch.WithLogger(r.log))
	}
	return r, nil
}

// Resolve materializes input, which is a local path, a remote URL or "-".
func (r *Resolver) Resolve(ctx context.Context, input string) (Resolved, error) {
	switch {
	case input == StdinName:
		return r.resolveStdin()
	case fetch.IsRemote(input):
		dir, err := os.MkdirTemp(r.ws.Dir(), "fetch-")
		if err != nil {
			return Resolved{}, fmt.Errorf("source: create download dir: %w", err)
		}
		path, err := r.fetcher.Fetch(ctx, input, dir)
		if err != nil {
			return Resolved{}, err
		}
		return r.resolvePath(input, path)
	default:
		return r.resolvePath(input, input)
	}
}

func (r *Resolver) resolvePath(input, path string) (Resolved, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Resolved{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Resolved{}, fmt.Errorf("source: open %s: %w", path, err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.IsDir() {
		return Resolved{}, fmt.Errorf("source: %s is a directory", path)
	}

	head := make([]byte, sniff.WindowSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Resolved{}, fmt.Errorf("source: read %s: %w", path, err)
	}
	det := r.detect(input, head[:n])
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Resolved{}, fmt.Errorf("source: rewind %s: %w", path, err)
	}

	decision := Decision{Compression: det.Kind, Container: det.Container}
	if !det.Kind.Decodable() || r.opts.SkipDecompression {
		return Resolved{Location: PathLocation(path), Decision: decision}, nil
	}
	return r.decode(f, decision)
}

func (r *Resolver) resolveStdin() (Resolved, error) {
	if r.stdin == nil {
		claim, err := ClaimStdin()
		if err != nil {
			return Resolved{}, err
		}
		r.stdin = claim
	}
	in, err := r.stdin.Take()
	if err != nil {
		return Resolved{}, err
	}

	rr := sniff.NewRewindReader(in)
	head := make([]byte, sniff.WindowSize)
	n, err := rr.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return Resolved{}, fmt.Errorf("source: read standard input: %w", err)
	}
	det := r.detect(StdinName, head[:n])
	if err := rr.Rewind(); err != nil {
		return Resolved{}, err
	}

	decision := Decision{Compression: det.Kind, Container: det.Container}
	switch {
	case r.opts.SkipDecompression || det.Kind == sniff.BlockGzip:
		sp, err := r.ws.SpoolBytes(rr, r.opts.policy())
		if err != nil {
			return Resolved{}, err
		}
		decision.Spool = sp
		return Resolved{Location: SpooledLocation(sp.Path), Decision: decision}, nil
	case det.Kind.Decodable():
		return r.decode(rr, decision)
	default:
		sp, err := r.ws.SpoolLines(rr, r.opts.policy())
		if err != nil {
			return Resolved{}, err
		}
		decision.Spool = sp
		return Resolved{Location: SpooledLocation(sp.Path), Decision: decision}, nil
	}
}

// decode spools the decompressed content of in as text.
func (r *Resolver) decode(in io.Reader, decision Decision) (Resolved, error) {
	if r.opts.RequireFullRead && !r.opts.FullRead {
		return Resolved{}, ErrFullReadRequired
	}
	dec, err := sniff.NewDecoder(decision.Compression, in)
	if err != nil {
		return Resolved{}, err
	}
	defer dec.Close()

	sp, err := r.ws.SpoolLines(dec, r.opts.policy())
	if err != nil {
		return Resolved{}, fmt.Errorf("source: decompress %s: %w", decision.Compression, err)
	}
	decision.Decompressed = true
	decision.Spool = sp
	return Resolved{Location: SpooledLocation(sp.Path), Decision: decision}, nil
}

func (r *Resolver) detect(input string, head []byte) sniff.Detection {
	det := sniff.Detect(head)
	switch {
	case det.Supported():
		r.log.Debug("detected compression", "input", input, "compression", det.Kind.String())
	case det.Container != "":
		r.log.Warn("unsupported compression format; treating input as uncompressed", "input", input, "container", det.Container)
	default:
		r.log.Warn("no supported compression detected; treating input as uncompressed", "input", input)
	}
	return det
}
