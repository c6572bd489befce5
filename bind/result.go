package bind

import (
	"github.com/ardanlabs/hostbind/adapter"
	"github.com/ardanlabs/hostbind/diag"
	"github.com/ardanlabs/hostbind/naming"
	"github.com/ardanlabs/hostbind/overload"
)

type ScopeKind string

const (
	ScopeModule ScopeKind = "module"
	ScopeClass  ScopeKind = "class"
)

type ItemKind string

const (
	ItemModule   ItemKind = "module"
	ItemClass    ItemKind = "class"
	ItemEnum     ItemKind = "enum"
	ItemFunction ItemKind = "function"
	ItemField    ItemKind = "field"
)

// Item is one registration of a scope. Items keep source order, which is
// the order a renderer must register them in.
type Item struct {
	Kind ItemKind `yaml:"kind"`
	Name string   `yaml:"name"`
}

// Scope is a host module or class with everything published inside it.
type Scope struct {
	Kind  ScopeKind          `yaml:"kind"`
	Name  string             `yaml:"name"`
	Path  naming.HostPath    `yaml:"path"`
	Doc   string             `yaml:"doc,omitempty"`
	Class *adapter.ClassPlan `yaml:"class,omitempty"`

	Items  []Item              `yaml:"items,omitempty"`
	Groups []overload.Group    `yaml:"groups,omitempty"`
	Fields []adapter.FieldPlan `yaml:"fields,omitempty"`
	Enums  []Enum              `yaml:"enums,omitempty"`
	Scopes []*Scope            `yaml:"scopes,omitempty"`

	entries []entry
}

// Group returns the overload group with the given host name.
func (s *Scope) Group(name string) (overload.Group, bool) {
	for _, g := range s.Groups {
		if g.Name == name {
			return g, true
		}
	}

	return overload.Group{}, false
}

// Scope returns the nested scope with the given host name.
func (s *Scope) Scope(name string) (*Scope, bool) {
	for _, c := range s.Scopes {
		if c.Name == name {
			return c, true
		}
	}

	return nil, false
}

type Enum struct {
	Name    string      `yaml:"name"`
	CppName string      `yaml:"cpp_name"`
	Doc     string      `yaml:"doc,omitempty"`
	IsClass bool        `yaml:"is_class,omitempty"`
	Values  []EnumValue `yaml:"values"`
}

type EnumValue struct {
	Name    string `yaml:"name"`
	CppName string `yaml:"cpp_name"`
	Value   string `yaml:"value,omitempty"`
	Doc     string `yaml:"doc,omitempty"`
}

// Stats summarizes a run.
type Stats struct {
	Units        int `yaml:"units"`
	Symbols      int `yaml:"symbols"`
	Plans        int `yaml:"plans"`
	Groups       int `yaml:"groups"`
	Excluded     int `yaml:"excluded"`
	Diagnostics  int `yaml:"diagnostics"`
	Instantiated int `yaml:"instantiated"`
}

// Result is everything a renderer needs: the scope tree, the boxed types
// to declare and the diagnostics of the run.
type Result struct {
	Root        *Scope            `yaml:"root"`
	BoxedTypes  []string          `yaml:"boxed_types,omitempty"`
	Diagnostics []diag.Diagnostic `yaml:"diagnostics,omitempty"`
	Stats       Stats             `yaml:"stats"`
}

// Clean reports a run without diagnostics.
func (r *Result) Clean() bool { return len(r.Diagnostics) == 0 }

// Walk visits every scope in pre-order.
func (r *Result) Walk(fn func(*Scope)) {
	var walk func(*Scope)
	walk = func(s *Scope) {
		fn(s)
		for _, c := range s.Scopes {
			walk(c)
		}
	}
	walk(r.Root)
}
