package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRemote(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.org/data/reads.fq.gz", true},
		{"http://example.org/x.bam", true},
		{"s3://bucket/key.vcf", true},
		{"ftp://example.org/x.bam", false},
		{"/tmp/x.bam", false},
		{"relative/x.bam", false},
		{"-", false},
		{"C:\\data\\x.bam", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRemote(tt.input), tt.input)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://example.org/data/reads.fq.gz", "reads.fq.gz"},
		{"https://example.org/data/reads.fq.gz?token=1", "reads.fq.gz"},
		{"https://example.org/", DefaultFileName},
		{"https://example.org", DefaultFileName},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, FileName(u), tt.raw)
	}
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/sample.fa":
			_, _ = io.WriteString(w, ">seq1\nACGT\n")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New(WithHTTPClient(srv.Client()))

	got, err := f.Fetch(context.Background(), srv.URL+"/files/sample.fa", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sample.fa"), got)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, ">seq1\nACGT\n", string(data))

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.fa", dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadStatus))
	_, statErr := os.Stat(filepath.Join(dir, "missing.fa"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithTimeoutKeepsCallerClient(t *testing.T) {
	client := &http.Client{Timeout: time.Minute}
	f := New(WithHTTPClient(client), WithTimeout(time.Second))

	assert.Equal(t, time.Minute, client.Timeout)
	assert.Equal(t, time.Second, f.client.Timeout)
	assert.NotSame(t, client, f.client)

	assert.Equal(t, DefaultTimeout, New().client.Timeout)
}

func TestFetchUnsupportedScheme(t *testing.T) {
	_, err := New().Fetch(context.Background(), "ftp://example.org/a.bam", t.TempDir())
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

type fakeS3 struct {
	objects map[string]string
	calls   []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.calls = append(f.calls, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestFetchS3(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"genomes/hg38/calls.vcf": "##fileformat=VCFv4.2\n"}}
	f := New(WithS3Client(client))
	dir := t.TempDir()

	got, err := f.Fetch(context.Background(), "s3://genomes/hg38/calls.vcf", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "calls.vcf"), got)
	assert.Equal(t, []string{"genomes/hg38/calls.vcf"}, client.calls)

	_, err = f.Fetch(context.Background(), "s3://genomes/missing.vcf", dir)
	assert.Error(t, err)

	_, err = f.Fetch(context.Background(), "s3://genomes", dir)
	assert.Error(t, err)
}
