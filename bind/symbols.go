package bind

import (
	"strings"

	"github.com/ardanlabs/hostbind/decl"
)

// Symbols is the read-only table of every named declaration, keyed by
// qualified name. The first declaration of a name wins.
type Symbols struct {
	byName map[string]decl.Node
}

func newSymbols(partitions [][]string, nodes [][]decl.Node) *Symbols {
	s := Symbols{byName: make(map[string]decl.Node)}

	for i, part := range partitions {
		for j, name := range part {
			if _, ok := s.byName[name]; !ok {
				s.byName[name] = nodes[i][j]
			}
		}
	}

	return &s
}

// collect lists the qualified names of a unit in pre-order. It is run
// concurrently per unit and touches no shared state.
func collect(u decl.Unit) ([]string, []decl.Node) {
	var (
		names []string
		nodes []decl.Node
	)

	decl.Walk(u.Decls, func(n decl.Node, _ []decl.Node) bool {
		if q := n.Common().Qualified; q != "" {
			names = append(names, q)
			nodes = append(nodes, n)
		}
		return true
	})

	return names, nodes
}

func (s *Symbols) Len() int { return len(s.byName) }

// Lookup returns the declaration with the given qualified name.
func (s *Symbols) Lookup(qualified string) (decl.Node, bool) {
	n, ok := s.byName[qualified]
	return n, ok
}

// Qualify resolves a type name used inside scope the way C++ name lookup
// walks outward: "a::b" then "a" then the global scope. Names that resolve
// to no type are returned unchanged.
func (s *Symbols) Qualify(name, scope string) string {
	for scope != "" {
		if s.isType(scope + "::" + name) {
			return scope + "::" + name
		}

		i := strings.LastIndex(scope, "::")
		if i < 0 {
			break
		}
		scope = scope[:i]
	}

	return name
}

func (s *Symbols) isType(q string) bool {
	n, ok := s.byName[q]
	if !ok {
		return false
	}

	k := n.Kind()
	return k == decl.KindClass || k == decl.KindEnum
}

// qualifyType rewrites every user type name of t to its qualified form.
func (s *Symbols) qualifyType(t decl.TypeRef, scope string) decl.TypeRef {
	switch t.Kind {
	case decl.TypeUser:
		t.Name = s.Qualify(t.Name, scope)
	case decl.TypePointer, decl.TypeReference, decl.TypeFixedArray:
		if t.Elem != nil {
			e := s.qualifyType(*t.Elem, scope)
			t.Elem = &e
		}
	case decl.TypeContainer:
		args := make([]decl.TypeRef, len(t.Args))
		for i, a := range t.Args {
			args[i] = s.qualifyType(a, scope)
		}
		t.Args = args
	}

	return t
}

// qualifyFunction returns a copy of fn whose user types are qualified
// relative to the enclosing scope.
func (s *Symbols) qualifyFunction(fn *decl.Function) *decl.Function {
	scope := enclosing(fn.Qualified)

	c := decl.CloneFunction(fn)
	for i := range c.Params {
		c.Params[i].Type = s.qualifyType(c.Params[i].Type, scope)
	}
	c.Return = s.qualifyType(c.Return, scope)

	return c
}

func (s *Symbols) qualifyField(f *decl.Field) *decl.Field {
	c := decl.CloneNode(f).(*decl.Field)
	c.Type = s.qualifyType(c.Type, enclosing(f.Qualified))

	return c
}

func enclosing(qualified string) string {
	i := strings.LastIndex(qualified, "::")
	if i < 0 {
		return ""
	}

	return qualified[:i]
}
