package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/ardanlabs/hostbind/parser"
	"github.com/ardanlabs/hostbind/policy"
)

const geoHeader = `namespace geo {
/// Adds two integers.
int Add(int a, int b);
void Untyped(void* p);
}
`

const shapesHeader = `namespace shapes {
struct Circle {
    float radius;
};
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	geo := writeFile(t, dir, "geo.h", geoHeader)
	shapes := writeFile(t, dir, "shapes.h", shapesHeader)

	stdout, stderr, err := run(t, "plan", "--header", geo, "--header", shapes)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "geo", doc["module"])

	root := doc["root"].(map[string]any)
	var names []string
	for _, s := range root["scopes"].([]any) {
		names = append(names, s.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"geo", "shapes"}, names)

	assert.Contains(t, stderr, "geo::Untyped")
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	geo := writeFile(t, dir, "geo.h", geoHeader)
	out := filepath.Join(dir, "build")

	stdout, _, err := run(t, "generate", geo, "--module", "mylib", "--output", out)
	require.NoError(t, err)

	for _, name := range []string{"mylib.manifest.yaml", "mylib.pyi"} {
		path := filepath.Join(out, name)
		assert.FileExists(t, path)
		assert.Contains(t, stdout, "Generated: "+path)
	}

	stub, err := os.ReadFile(filepath.Join(out, "mylib.pyi"))
	require.NoError(t, err)
	assert.Contains(t, string(stub), "def add(a: int, b: int) -> int:")
	assert.NotContains(t, string(stub), "untyped")
}

func TestGenerateLogsSummaryOnce(t *testing.T) {
	dir := t.TempDir()
	geo := writeFile(t, dir, "geo.h", geoHeader)

	core, logs := observer.New(zapcore.InfoLevel)
	cmd := newRootCmd(&options{log: zap.New(core).Sugar()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"generate", geo, "--output", filepath.Join(dir, "build")})
	require.NoError(t, cmd.Execute())

	summary := logs.FilterMessage("binding complete").All()
	require.Len(t, summary, 1)
	assert.EqualValues(t, 1, summary[0].ContextMap()["diagnostics"])
}

func TestGenerateStrict(t *testing.T) {
	dir := t.TempDir()
	geo := writeFile(t, dir, "geo.h", geoHeader)
	shapes := writeFile(t, dir, "shapes.h", shapesHeader)

	_, stderr, err := run(t, "generate", "--strict", "-H", geo, "-o", dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDiagnostics))
	assert.Contains(t, stderr, "geo::Untyped")

	_, _, err = run(t, "generate", "--strict", "-H", shapes, "-o", dir)
	require.NoError(t, err)
}

func TestPolicyFile(t *testing.T) {
	dir := t.TempDir()
	geo := writeFile(t, dir, "geo.h", geoHeader)
	config := writeFile(t, dir, "policy.yaml", "fn_exclude: \"^Untyped$\"\n")

	_, stderr, err := run(t, "plan", "--strict", "--config", config, geo)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "geo::Untyped")
}

func TestExampleHeader(t *testing.T) {
	stdout, stderr, err := run(t, "plan", "--strict",
		"--config", filepath.Join("..", "testdata", "policy.yaml"),
		filepath.Join("..", "testdata", "geo.h"))
	require.NoError(t, err, stderr)

	var doc struct {
		Module     string   `yaml:"module"`
		BoxedTypes []string `yaml:"boxed_types"`
		Stats      struct {
			Plans int `yaml:"plans"`
		} `yaml:"stats"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))

	assert.Equal(t, "geo", doc.Module)
	assert.Equal(t, []string{"BoxedBool"}, doc.BoxedTypes)
	assert.Equal(t, 7, doc.Stats.Plans)
	assert.Contains(t, stdout, "scale")
	assert.NotContains(t, stdout, "reset")
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.h", "namespace geo {\nint Add(int a, int b);\n")

	tests := []struct {
		name   string
		args   []string
		target error
		want   string
	}{
		{name: "no headers", args: []string{"plan"}, want: "no headers given"},
		{name: "missing header", args: []string{"plan", filepath.Join(dir, "missing.h")}, want: "missing.h"},
		{name: "syntax error", args: []string{"plan", broken}, target: parser.ErrSyntax, want: "broken.h"},
		{name: "missing policy", args: []string{"plan", "--config", filepath.Join(dir, "none.yaml"), broken}, target: policy.ErrInvalidPolicy, want: "none.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target))
			}
		})
	}
}
