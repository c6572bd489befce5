package generator

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/ardanlabs/hostbind/bind"
)

const manifestVersion = 1

// Manifest encodes the whole result as YAML: scope tree, plans, overload
// groups and diagnostics.
type Manifest struct {
	module string
}

func NewManifest(module string) *Manifest {
	return &Manifest{module: module}
}

func (m *Manifest) Name() string { return "manifest" }

type manifestDoc struct {
	Module      string `yaml:"module"`
	Version     int    `yaml:"version"`
	bind.Result `yaml:",inline"`
}

func (m *Manifest) Render(res *bind.Result) (map[string]string, error) {
	doc := manifestDoc{
		Module:  m.module,
		Version: manifestVersion,
		Result:  *res,
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encode manifest")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encode manifest")
	}

	return map[string]string{m.module + ".manifest.yaml": buf.String()}, nil
}
