// Package exttool runs user-supplied CWL tool descriptors as format testers.
//
// A descriptor is an ordinary CWL CommandLineTool whose comment lines name
// the format it validates:
//
//	# EDAM_ID=format_2573
//	# LABEL=SAM
//
// The tester asks a containerized cwl-inspector for the docker command line
// of the tool, mounts the file under test read-only, and runs it. A zero
// exit status means the file is in the declared format.
package exttool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobeaver/filesniff/edam"
	"github.com/gobeaver/filesniff/internal/logger"
	"github.com/gobeaver/filesniff/tester"
)

// Extension marks an order entry as a CWL descriptor.
const Extension = ".cwl"

// InspectorImage builds docker command lines from CWL descriptors.
const InspectorImage = "ghcr.io/tom-tan/cwl-inspector:v0.1.1"

// InputsDir is where the file under test is mounted inside the container.
const InputsDir = "/var/lib/cwl/inputs"

// ErrContainerRuntimeMissing is returned when docker is not on PATH.
var ErrContainerRuntimeMissing = errors.New("exttool: docker is required for CWL testers; make sure it is on your PATH")

// Tester runs one CWL descriptor.
type Tester struct {
	descriptor string
	docker     string
	image      string
	runner     Runner
	vocab      *edam.Vocabulary
	log        logger.Logger
}

// Option configures a Tester.
type Option func(*Tester)

// WithDocker sets the docker executable instead of looking it up on PATH.
func WithDocker(path string) Option {
	return func(t *Tester) { t.docker = path }
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(t *Tester) { t.runner = r }
}

// WithImage replaces the inspector image.
func WithImage(image string) Option {
	return func(t *Tester) { t.image = image }
}

// WithVocabulary replaces the EDAM vocabulary.
func WithVocabulary(v *edam.Vocabulary) Option {
	return func(t *Tester) { t.vocab = v }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Tester) { t.log = l }
}

// New creates a tester for descriptor. It fails with
// ErrContainerRuntimeMissing when docker cannot be found.
func New(descriptor string, opts ...Option) (*Tester, error) {
	t := &Tester{
		descriptor: descriptor,
		image:      InspectorImage,
		runner:     ExecRunner{},
		vocab:      edam.Default(),
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.docker == "" {
		docker, err := LookupDocker()
		if err != nil {
			return nil, err
		}
		t.docker = docker
	}
	return t, nil
}

// Name returns the descriptor path as configured.
func (t *Tester) Name() string { return t.descriptor }

func (t *Tester) Test(ctx context.Context, path string, opts tester.Options) (tester.Detection, error) {
	descriptor, err := canonical(t.descriptor)
	if err != nil {
		return tester.Detection{}, fmt.Errorf("exttool: descriptor: %w", err)
	}
	target, err := canonical(path)
	if err != nil {
		return tester.Detection{}, fmt.Errorf("exttool: target: %w", err)
	}

	meta, err := t.metadata(descriptor)
	if err != nil {
		return tester.Detection{}, err
	}

	scratch := opts.ScratchDir
	if scratch == "" {
		scratch = os.TempDir()
	}
	job, err := WriteJobFile(scratch, target)
	if err != nil {
		return tester.Detection{}, err
	}
	defer os.Remove(job)

	stdout, stderr, err := t.runner.Run(ctx, t.docker, InspectorArgs(t.image, t.docker, job, descriptor))
	if err != nil {
		return tester.Detection{}, fmt.Errorf("exttool: cwl-inspector failed: %w: %s", err, strings.TrimSpace(string(stderr)))
	}

	name, args, err := BuildCommand(string(stdout), target)
	if err != nil {
		return tester.Detection{}, err
	}
	t.log.Debug("running CWL tool", "descriptor", descriptor, "command", name+" "+strings.Join(args, " "))

	_, stderr, err = t.runner.Run(ctx, name, args)
	if err != nil {
		if IsExitError(err) {
			return tester.Detection{}, &tester.MismatchError{
				Kind:    tester.MismatchTool,
				Message: strings.TrimSpace(string(stderr)),
			}
		}
		return tester.Detection{}, fmt.Errorf("exttool: run %s: %w", name, err)
	}
	return tester.Detection{Label: meta.Label, ID: meta.ID}, nil
}

func (t *Tester) metadata(descriptor string) (Metadata, error) {
	f, err := os.Open(descriptor)
	if err != nil {
		return Metadata{}, fmt.Errorf("exttool: open descriptor: %w", err)
	}
	defer f.Close()
	m, err := ParseMetadata(f)
	if err != nil {
		return Metadata{}, err
	}
	return m.Reconcile(t.vocab, descriptor, t.log)
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// IsDescriptor reports whether an order entry names a CWL descriptor.
func IsDescriptor(entry string) bool {
	return strings.EqualFold(filepath.Ext(entry), Extension)
}
