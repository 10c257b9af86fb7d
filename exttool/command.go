package exttool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// Runner executes a command and captures its output.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// exitCoder is implemented by *exec.ExitError.
type exitCoder interface {
	ExitCode() int
}

// IsExitError reports whether err is a non-zero exit of a started process.
func IsExitError(err error) bool {
	var ec exitCoder
	return errors.As(err, &ec) && ec.ExitCode() != 0
}

// LookupDocker returns the absolute path of the docker executable.
func LookupDocker() (string, error) {
	path, err := exec.LookPath("docker")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContainerRuntimeMissing, err)
	}
	return filepath.Abs(path)
}

// InspectorArgs are the docker arguments that ask the inspector image for
// the command line running descriptor on the job file.
func InspectorArgs(image, docker, jobFile, descriptor string) []string {
	return []string{
		"run", "--rm", "-i",
		"-v", docker + ":/usr/bin/docker:ro",
		"-v", jobFile + ":/workdir/input_file.yaml:ro",
		"-v", descriptor + ":/workdir/module.cwl",
		"--workdir=/workdir",
		image,
		"./module.cwl", "commandline", "-i", "./input_file.yaml",
	}
}

// BuildCommand parses the inspector output and rewrites its volume mounts:
// every "-v X" pair is dropped and a single read-only mount of target at
// InputsDir/<base name> is placed where the first mount was.
func BuildCommand(inspectorOutput, target string) (name string, args []string, err error) {
	parts, err := shlex.Split(inspectorOutput)
	if err != nil {
		return "", nil, fmt.Errorf("exttool: parse inspector output: %w", err)
	}
	if len(parts) == 0 {
		return "", nil, errors.New("exttool: inspector produced an empty command")
	}

	var before, after []string
	seenMount := false
	for i := 1; i < len(parts); i++ {
		switch {
		case parts[i] == "-v":
			seenMount = true
			i++
		case seenMount:
			after = append(after, parts[i])
		default:
			before = append(before, parts[i])
		}
	}

	mount := fmt.Sprintf("%s:%s/%s:ro", target, InputsDir, filepath.Base(target))
	args = append(append(before, "-v", mount), after...)
	return parts[0], args, nil
}

type jobInput struct {
	Class    string `yaml:"class"`
	Location string `yaml:"location"`
}

type jobFile struct {
	InputFile jobInput `yaml:"input_file"`
}

// WriteJobFile writes the CWL job document pointing at target into dir.
func WriteJobFile(dir, target string) (string, error) {
	data, err := yaml.Marshal(jobFile{InputFile: jobInput{Class: "File", Location: target}})
	if err != nil {
		return "", fmt.Errorf("exttool: encode job file: %w", err)
	}
	f, err := os.CreateTemp(dir, "cwl_input_file_*.yaml")
	if err != nil {
		return "", fmt.Errorf("exttool: create job file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("exttool: write job file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("exttool: write job file: %w", err)
	}
	return f.Name(), nil
}
