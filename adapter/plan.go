package adapter

import (
	"sort"
	"strings"

	"github.com/ardanlabs/hostbind/decl"
	"github.com/ardanlabs/hostbind/policy"
)

// ExposedParam is one parameter of the host signature. Origin names the
// C++ parameter it comes from. Length is the required sequence length, zero
// when unconstrained.
type ExposedParam struct {
	Name     string `yaml:"name"`
	HostType string `yaml:"type"`
	Default  string `yaml:"default,omitempty"`
	Length   int    `yaml:"length,omitempty"`
	Optional bool   `yaml:"optional,omitempty"`
	Origin   string `yaml:"origin"`
}

type ReturnRule int

const (
	SingleValue ReturnRule = iota
	TupleOf
)

func (r ReturnRule) String() string {
	if r == TupleOf {
		return "TupleOf"
	}
	return "SingleValue"
}

func (r ReturnRule) MarshalYAML() (any, error) { return r.String(), nil }

// Return describes the host result. With TupleOf, Types holds the original
// result (unless void) followed by the promoted outputs in declaration
// order. A one element TupleOf renders as the bare element.
type Return struct {
	Rule      ReturnRule `yaml:"rule"`
	Types     []string   `yaml:"types"`
	Ownership Ownership  `yaml:"ownership,omitempty"`
}

// HostType spells the return annotation.
func (r Return) HostType() string {
	if r.Rule == TupleOf && len(r.Types) > 1 {
		return "Tuple[" + strings.Join(r.Types, ", ") + "]"
	}
	if len(r.Types) == 0 {
		return "None"
	}

	return r.Types[0]
}

// BufferGuard is the runtime element check a renderer places in front of a
// buffer view. Category is int, uint, float or template. Bytes is zero for
// template buffers, whose element size is dispatched at runtime.
type BufferGuard struct {
	Param    string `yaml:"param"`
	Category string `yaml:"category"`
	Bytes    int    `yaml:"bytes,omitempty"`
}

// Plan is the adapter plan of one callable.
type Plan struct {
	Decl *decl.Function `yaml:"-"`

	Name        string              `yaml:"name"`
	Group       string              `yaml:"group,omitempty"`
	Steps       []Step              `yaml:"steps,omitempty"`
	Params      []ExposedParam      `yaml:"params,omitempty"`
	Return      Return              `yaml:"return"`
	Guards      []BufferGuard       `yaml:"guards,omitempty"`
	BoxedTypes  []string            `yaml:"boxed_types,omitempty"`
	Directives  []string            `yaml:"directives,omitempty"`
	Precedences []policy.Precedence `yaml:"precedences,omitempty"`

	Method          bool `yaml:"method,omitempty"`
	Static          bool `yaml:"static,omitempty"`
	Constructor     bool `yaml:"constructor,omitempty"`
	PureVirtual     bool `yaml:"pure_virtual,omitempty"`
	NeedsTrampoline bool `yaml:"needs_trampoline,omitempty"`

	// RuntimeDispatch marks template buffers resolved by element type at
	// call time instead of by instantiation.
	RuntimeDispatch bool `yaml:"runtime_dispatch,omitempty"`
}

// IsPassthrough reports a plan that adapts nothing. Template instantiation
// alone does not count as adaptation.
func (p Plan) IsPassthrough() bool {
	for _, s := range p.Steps {
		if s.Kind != TemplateInstantiate {
			return false
		}
	}

	return true
}

// Pipeline returns the steps in composition order: arrays, then boxing and
// output promotion, then pairs, then ownership, then templates. Steps of
// the same phase keep declaration order.
func (p Plan) Pipeline() []Step {
	out := append([]Step(nil), p.Steps...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind.Phase() < out[j].Kind.Phase()
	})

	return out
}

// ParamTypes is the exposed parameter type tuple used for overload
// disambiguation.
func (p Plan) ParamTypes() []string {
	out := make([]string, len(p.Params))
	for i, ep := range p.Params {
		out[i] = ep.HostType
	}

	return out
}

// Signature renders "(a: int, b: str = None) -> bool".
func (p Plan) Signature() string {
	var b strings.Builder
	b.WriteString("(")
	for i, ep := range p.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ep.Name + ": " + ep.HostType)
		if ep.Default != "" {
			b.WriteString(" = " + ep.Default)
		}
	}
	b.WriteString(") -> ")
	b.WriteString(p.Return.HostType())

	return b.String()
}
