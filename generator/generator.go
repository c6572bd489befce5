// Package generator turns a binding result into the artifacts handed to
// the downstream glue and stub tooling.
package generator

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/ardanlabs/hostbind/bind"
)

// Renderer produces named files from a binding result.
type Renderer interface {
	Name() string
	Render(res *bind.Result) (map[string]string, error)
}

type Generator struct {
	module    string
	renderers []Renderer
}

// New builds a generator for module. Without renderers it emits the
// manifest and the interface stubs.
func New(module string, renderers ...Renderer) *Generator {
	if len(renderers) == 0 {
		renderers = []Renderer{NewManifest(module), NewStubs(module)}
	}

	return &Generator{
		module:    module,
		renderers: renderers,
	}
}

func (g *Generator) Generate(res *bind.Result) (map[string]string, error) {
	if res == nil || res.Root == nil {
		return nil, errors.New("generating: empty result")
	}

	files := make(map[string]string)
	owner := make(map[string]string)

	for _, r := range g.renderers {
		out, err := r.Render(res)
		if err != nil {
			return nil, errors.Wrapf(err, "generating %s", r.Name())
		}

		for name, content := range out {
			if prev, ok := owner[name]; ok {
				return nil, errors.Newf("generating %s: file %s already written by %s", r.Name(), name, prev)
			}
			owner[name] = r.Name()
			files[name] = content
		}
	}

	return files, nil
}

// Files returns the file names of a Generate result in a stable order.
func Files(files map[string]string) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
