package filesniff

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobeaver/filesniff/exttool"
	"github.com/gobeaver/filesniff/internal/logger"
	"github.com/gobeaver/filesniff/source"
	"github.com/gobeaver/filesniff/tester"
)

// Entry is one resolved order entry. Err is set, and Tester nil, for
// entries that fail every invocation.
type Entry struct {
	Name   string
	Tester tester.Tester
	Err    error
}

// External reports whether the entry is a CWL descriptor.
func (e Entry) External() bool {
	return exttool.IsDescriptor(e.Name)
}

// Chain is the ordered list of testers tried against every input. The
// empty tester is always first.
type Chain struct {
	entries          []Entry
	requiresFullRead bool
	log              logger.Logger
}

// NewChain resolves names against reg. Names without an extension are
// built-in testers; .cwl names become external testers built with
// toolOpts. Unknown names and other extensions produce entries that fail
// per input. The only construction error is a missing container runtime.
func NewChain(names []string, reg *tester.Registry, log logger.Logger, toolOpts ...exttool.Option) (*Chain, error) {
	if reg == nil {
		reg = tester.GetDefaultRegistry()
	}
	if log == nil {
		log = logger.Discard()
	}

	c := &Chain{log: log}

	empty, ok := reg.Get(EmptyTesterName)
	if !ok {
		empty = tester.DefaultEmptyTester()
	}
	c.entries = append(c.entries, Entry{Name: EmptyTesterName, Tester: empty})

	for _, name := range names {
		if strings.EqualFold(name, EmptyTesterName) {
			continue
		}
		entry := Entry{Name: name}
		switch ext := filepath.Ext(name); {
		case ext == "":
			if t, ok := reg.Get(name); ok {
				entry.Tester = t
			} else {
				entry.Err = fmt.Errorf("%w: %q", ErrUnknownTester, name)
			}
		case exttool.IsDescriptor(name):
			t, err := exttool.New(name, append([]exttool.Option{exttool.WithLogger(log)}, toolOpts...)...)
			if err != nil {
				return nil, err
			}
			entry.Tester = t
			c.requiresFullRead = true
		default:
			entry.Err = fmt.Errorf("%w: %q has extension %q", ErrUnsupportedEntry, name, ext)
		}
		c.entries = append(c.entries, entry)
	}
	return c, nil
}

// Entries returns the resolved entries in dispatch order.
func (c *Chain) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Names returns the entry names in dispatch order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// RequiresFullRead reports whether some entry needs the complete content
// of an input, which is the case for external testers.
func (c *Chain) RequiresFullRead() bool {
	return c.requiresFullRead
}

// Dispatch runs the entries against loc in order and returns the first
// match. When nothing matches the result has no label, no id and no
// error; the reasons are listed in Failures. Cancellation of ctx stops
// dispatch and is returned as the error.
func (c *Chain) Dispatch(ctx context.Context, loc source.Location, opts tester.Options) (*Result, error) {
	res := &Result{OK: true}
	for _, e := range c.entries {
		if err := ctx.Err(); err != nil {
			c.log.Warn("dispatch canceled", "tester", e.Name, "error", err)
			return nil, err
		}

		det, err := c.try(ctx, e, loc, opts)
		if err == nil {
			res.Tester = e.Name
			if det.Empty {
				res.Empty = true
				c.log.Info("input is empty", "location", loc.String())
				return res, nil
			}
			res.Label, res.ID = det.Label, det.ID
			c.log.Info("detected", "tester", e.Name, "label", det.Label, "id", det.ID)
			return res, nil
		}

		if kind := tester.MismatchKindOf(err); kind != "" {
			c.log.Debug("tester did not match", "tester", e.Name, "reason", err.Error())
			res.Failures = append(res.Failures, Failure{Tester: e.Name, Kind: string(kind), Message: err.Error()})
			continue
		}
		if canceled(err) {
			c.log.Warn("dispatch canceled", "tester", e.Name, "error", err)
			return nil, err
		}
		c.log.Error("tester failed", "tester", e.Name, "error", err)
		res.Failures = append(res.Failures, Failure{Tester: e.Name, Kind: FailureKindError, Message: err.Error()})
	}
	return res, nil
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *Chain) try(ctx context.Context, e Entry, loc source.Location, opts tester.Options) (det tester.Detection, err error) {
	if e.Err != nil {
		return tester.Detection{}, e.Err
	}
	if !loc.Materialized() {
		return tester.Detection{}, ErrLocationNotOnDisk
	}
	defer func() {
		if r := recover(); r != nil {
			det = tester.Detection{}
			err = fmt.Errorf("%w: %s: %v", ErrTesterPanicked, e.Name, r)
		}
	}()
	return e.Tester.Test(ctx, loc.Path(), opts)
}
