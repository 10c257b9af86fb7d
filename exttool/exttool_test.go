package exttool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gobeaver/filesniff/edam"
	"github.com/gobeaver/filesniff/internal/logger"
	"github.com/gobeaver/filesniff/tester"
)

type exitStatus int

func (e exitStatus) Error() string { return "exit status " + string(rune('0'+int(e))) }
func (e exitStatus) ExitCode() int { return int(e) }

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls   []call
	outputs []result
	// jobs holds the job documents seen while the inspector ran.
	jobs []string
}

type result struct {
	stdout, stderr string
	err            error
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	for i, a := range args {
		if strings.HasSuffix(a, ":/workdir/input_file.yaml:ro") && i > 0 {
			data, err := os.ReadFile(strings.TrimSuffix(a, ":/workdir/input_file.yaml:ro"))
			if err == nil {
				f.jobs = append(f.jobs, string(data))
			}
		}
	}
	if len(f.outputs) == 0 {
		return nil, nil, errors.New("unexpected call")
	}
	r := f.outputs[0]
	f.outputs = f.outputs[1:]
	return []byte(r.stdout), []byte(r.stderr), r.err
}

const inspectorOutput = "docker run -i --read-only --rm -v /tmp/in/x.sam:/var/lib/cwl/inputs/x.sam:ro " +
	"--workdir=/var/spool/cwl -v '/tmp/out dir:/var/spool/cwl' alpine head -n1 /var/lib/cwl/inputs/x.sam\n"

func setup(t *testing.T, descriptor string) (desc, target string) {
	t.Helper()
	dir := t.TempDir()
	desc = filepath.Join(dir, "sam.cwl")
	require.NoError(t, os.WriteFile(desc, []byte(descriptor), 0o644))
	target = filepath.Join(dir, "input.sam")
	require.NoError(t, os.WriteFile(target, []byte("r1\t0\t*\t0\t0\t*\t*\t0\t0\tACGT\tIIII\n"), 0o644))
	return desc, target
}

const samDescriptor = "#!/usr/bin/env cwl-runner\n# EDAM_ID=format_2573\n# LABEL=\"SAM\"\ncwlVersion: v1.2\nclass: CommandLineTool\n"

func TestParseMetadata(t *testing.T) {
	m, err := ParseMetadata(strings.NewReader(
		"#!/usr/bin/env cwl-runner\n" +
			"# edam_id = 'format_1930'\n" +
			"#label=FASTQ\n" +
			"# a=b=c\n" +
			"# just a comment\n" +
			"EDAM_ID=format_0000\n"))
	require.NoError(t, err)
	assert.Equal(t, Metadata{ID: "format_1930", Label: "FASTQ"}, m)
}

func TestReconcile(t *testing.T) {
	v := edam.Default()
	log := logger.Discard()

	tests := []struct {
		name string
		in   Metadata
		want Metadata
	}{
		{"matching pair", Metadata{ID: "format_2573", Label: "SAM"}, Metadata{ID: edam.SAM, Label: "SAM"}},
		{"mismatched pair drops label", Metadata{ID: "format_2573", Label: "BAM"}, Metadata{ID: edam.SAM}},
		{"label only", Metadata{Label: "FASTA"}, Metadata{ID: edam.FASTA, Label: "FASTA"}},
		{"custom label", Metadata{Label: "My format"}, Metadata{Label: "My format"}},
		{"id only", Metadata{ID: edam.VCF}, Metadata{ID: edam.VCF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Reconcile(v, "x.cwl", log)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Metadata{}.Reconcile(v, "x.cwl", log)
	assert.ErrorIs(t, err, ErrNoMetadata)
}

func TestBuildCommand(t *testing.T) {
	name, args, err := BuildCommand(inspectorOutput, "/data/input.sam")
	require.NoError(t, err)
	assert.Equal(t, "docker", name)
	assert.Equal(t, []string{
		"run", "-i", "--read-only", "--rm",
		"-v", "/data/input.sam:/var/lib/cwl/inputs/input.sam:ro",
		"--workdir=/var/spool/cwl", "alpine", "head", "-n1", "/var/lib/cwl/inputs/x.sam",
	}, args)

	_, _, err = BuildCommand("  \n", "/data/input.sam")
	assert.Error(t, err)
}

func TestWriteJobFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteJobFile(dir, "/data/input.sam")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "cwl_input_file_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]string
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, map[string]string{"class": "File", "location": "/data/input.sam"}, doc["input_file"])
}

func TestTesterMatch(t *testing.T) {
	desc, target := setup(t, samDescriptor)
	runner := &fakeRunner{outputs: []result{{stdout: inspectorOutput}, {}}}
	tt, err := New(desc, WithDocker("/usr/bin/docker"), WithRunner(runner))
	require.NoError(t, err)
	assert.Equal(t, desc, tt.Name())

	scratch := t.TempDir()
	det, err := tt.Test(context.Background(), target, tester.Options{ScratchDir: scratch})
	require.NoError(t, err)
	assert.Equal(t, tester.Detection{Label: "SAM", ID: edam.SAM}, det)

	require.Len(t, runner.calls, 2)
	inspect := runner.calls[0]
	assert.Equal(t, "/usr/bin/docker", inspect.name)
	assert.Contains(t, inspect.args, InspectorImage)
	assert.Contains(t, inspect.args, "/usr/bin/docker:/usr/bin/docker:ro")

	canonDesc, err := filepath.EvalSymlinks(desc)
	require.NoError(t, err)
	assert.Contains(t, inspect.args, canonDesc+":/workdir/module.cwl")

	canonTarget, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)
	require.Len(t, runner.jobs, 1)
	assert.Contains(t, runner.jobs[0], canonTarget)

	run := runner.calls[1]
	assert.Equal(t, "docker", run.name)
	assert.Contains(t, run.args, canonTarget+":/var/lib/cwl/inputs/input.sam:ro")

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries, "job file is removed after the run")
}

func TestTesterToolRejects(t *testing.T) {
	desc, target := setup(t, samDescriptor)
	runner := &fakeRunner{outputs: []result{
		{stdout: inspectorOutput},
		{stderr: "not a SAM file\n", err: exitStatus(1)},
	}}
	tt, err := New(desc, WithDocker("/usr/bin/docker"), WithRunner(runner))
	require.NoError(t, err)

	_, err = tt.Test(context.Background(), target, tester.Options{ScratchDir: t.TempDir()})
	require.Error(t, err)
	assert.Equal(t, tester.MismatchTool, tester.MismatchKindOf(err))
	assert.Contains(t, err.Error(), "not a SAM file")
}

func TestTesterInspectorFailure(t *testing.T) {
	desc, target := setup(t, samDescriptor)
	runner := &fakeRunner{outputs: []result{{stderr: "invalid document", err: exitStatus(2)}}}
	tt, err := New(desc, WithDocker("/usr/bin/docker"), WithRunner(runner))
	require.NoError(t, err)

	_, err = tt.Test(context.Background(), target, tester.Options{ScratchDir: t.TempDir()})
	require.Error(t, err)
	assert.False(t, tester.IsMismatch(err))
	assert.Contains(t, err.Error(), "invalid document")
}

func TestTesterMissingMetadata(t *testing.T) {
	desc, target := setup(t, "cwlVersion: v1.2\nclass: CommandLineTool\n")
	runner := &fakeRunner{}
	tt, err := New(desc, WithDocker("/usr/bin/docker"), WithRunner(runner))
	require.NoError(t, err)

	_, err = tt.Test(context.Background(), target, tester.Options{ScratchDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrNoMetadata)
	assert.Empty(t, runner.calls)
}

func TestIsDescriptor(t *testing.T) {
	assert.True(t, IsDescriptor("tools/sam.cwl"))
	assert.True(t, IsDescriptor("SAM.CWL"))
	assert.False(t, IsDescriptor("sam"))
	assert.False(t, IsDescriptor("sam.yaml"))
}

func TestIsExitError(t *testing.T) {
	assert.True(t, IsExitError(exitStatus(1)))
	assert.False(t, IsExitError(exitStatus(0)))
	assert.False(t, IsExitError(errors.New("exec: not found")))
}
