// Package filter decides which declarations are publishable.
package filter

import (
	"strings"

	"github.com/ardanlabs/hostbind/decl"
	"github.com/ardanlabs/hostbind/policy"
)

// Filter applies the selection rules of a policy.
type Filter struct {
	p *policy.Policy
}

func New(p *policy.Policy) *Filter {
	return &Filter{p: p}
}

// Select reports whether n is publishable. parents is the chain of
// enclosing declarations, outermost first. Rejection is silent: callers
// keep the node's source position but emit nothing for it.
func (f *Filter) Select(n decl.Node, parents ...decl.Node) bool {
	b := n.Common()

	if !f.p.GuardAccepted(b.Condition) {
		return false
	}

	owner := enclosingClass(parents)
	if owner != nil && !f.accessible(b.Access, owner) {
		return false
	}

	switch v := n.(type) {
	case *decl.Namespace:
		return !v.Anonymous() && !f.p.Match(policy.NamespaceExclude, v.Name)

	case *decl.Class:
		return !f.excluded(policy.ClassExclude, b)

	case *decl.Enum:
		return !f.excluded(policy.EnumExclude, b)

	case *decl.EnumValue:
		return !f.isCountSentinel(v, parents)

	case *decl.Field:
		return !f.excluded(policy.MemberExclude, b)

	case *decl.Function:
		if v.Deleted || isSpecialMember(v.Name) {
			return false
		}
		if owner == nil && f.p.MarkerGating() && !b.APIMarker {
			return false
		}
		return !f.excluded(policy.FnExclude, b)
	}

	return false
}

// excluded matches an exclude-by-name rule against both the qualified and
// the bare name, so "^ns::Reset$" and "^Reset$" both work.
func (f *Filter) excluded(r policy.Rule, b *decl.Base) bool {
	return f.p.Match(r, b.Name) || (b.Qualified != "" && f.p.Match(r, b.Qualified))
}

// accessible applies class access rules: private members are never
// published, protected ones only for classes matching expose_protected.
func (f *Filter) accessible(a decl.Access, owner *decl.Class) bool {
	switch a {
	case decl.AccessPrivate:
		return false
	case decl.AccessProtected:
		return f.p.Match(policy.ExposeProtected, owner.Name)
	}

	return true
}

// isCountSentinel recognizes a trailing "Count" member that only sizes the
// enum: the last value, named like a size, and either in an enum class or
// mentioning the enum name.
func (f *Filter) isCountSentinel(v *decl.EnumValue, parents []decl.Node) bool {
	if !f.p.Config().EnumSkipCount || len(parents) == 0 {
		return false
	}

	e, ok := parents[len(parents)-1].(*decl.Enum)
	if !ok || len(e.Values) == 0 || e.Values[len(e.Values)-1] != v {
		return false
	}

	// MyEnum_COUNT is as much a sentinel as MyEnum_count.
	lower := strings.ToLower(v.Name)
	if !f.p.Match(policy.BufferSizeNames, v.Name) && !f.p.Match(policy.BufferSizeNames, lower) {
		return false
	}
	if e.IsClass {
		return true
	}

	enum := strings.ToLower(strings.TrimSuffix(e.Name, "_"))
	return enum != "" && strings.Contains(lower, enum)
}

func enclosingClass(parents []decl.Node) *decl.Class {
	if len(parents) == 0 {
		return nil
	}
	c, _ := parents[len(parents)-1].(*decl.Class)

	return c
}

// isSpecialMember reports destructors and operator overloads.
func isSpecialMember(name string) bool {
	return strings.HasPrefix(name, "~") || strings.HasPrefix(name, "operator")
}
