// Package overload expands templates into concrete declarations and groups
// same-named callables of a scope.
package overload

import (
	"strings"

	"github.com/ardanlabs/hostbind/classify"
	"github.com/ardanlabs/hostbind/decl"
	"github.com/ardanlabs/hostbind/naming"
	"github.com/ardanlabs/hostbind/policy"
)

// Expander instantiates templates from the policy's template tables.
type Expander struct {
	p *policy.Policy
	c *classify.Classifier
}

func NewExpander(p *policy.Policy) *Expander {
	return &Expander{p: p, c: classify.New()}
}

// Function returns the concrete functions fn stands for: fn itself when it
// is not generic or no table entry matches, otherwise one clone per
// configured type in table order.
func (e *Expander) Function(fn *decl.Function) []*decl.Function {
	if !fn.Generic() {
		return []*decl.Function{fn}
	}

	inst, ok := e.p.FunctionTemplate(fn.Name)
	if !ok || len(fn.TemplateParams) != 1 {
		return []*decl.Function{fn}
	}

	out := make([]*decl.Function, 0, len(inst.Types))
	for _, spelling := range inst.Types {
		out = append(out, e.instantiateFunction(fn, fn.TemplateParams[0], e.c.Classify(spelling)))
	}

	return out
}

func (e *Expander) instantiateFunction(fn *decl.Function, param string, with decl.TypeRef) *decl.Function {
	c := decl.CloneFunction(fn)
	substituteFunction(c, param, with)
	c.TemplateParams = nil

	arg := with.Clone()
	c.TemplateArg = &arg

	return c
}

// Class returns the instances of a class template. ok is false for a class
// template with no matching table entry; such a class cannot be published.
func (e *Expander) Class(c *decl.Class) (out []*decl.Class, ok bool) {
	if len(c.TemplateParams) == 0 {
		return []*decl.Class{c}, true
	}

	inst, found := e.p.ClassTemplate(c.Name)
	if !found || len(c.TemplateParams) != 1 {
		return nil, false
	}

	for _, spelling := range inst.Types {
		out = append(out, e.instantiateClass(c, c.TemplateParams[0], spelling))
	}

	return out, true
}

// instantiateClass substitutes param in every member of c in one pass,
// nested classes included.
func (e *Expander) instantiateClass(c *decl.Class, param, spelling string) *decl.Class {
	with := e.c.Classify(spelling)

	out := decl.CloneClass(c)
	out.Name = naming.TemplateClassName(c.Name, spelling)
	out.Qualified = requalify(c.Qualified, c.Name, out.Name)
	out.CppName = c.Qualified + "<" + with.String() + ">"
	out.TemplateParams = nil

	arg := with.Clone()
	out.TemplateArg = &arg

	it := newInstanceTypes(c, out.Qualified, with)
	substituteMembers(out.Children, param, with, it, "")

	return out
}

// substituteMembers works on members whose enclosing scope is rel, the path
// below the template class.
func substituteMembers(nodes []decl.Node, param string, with decl.TypeRef, it instanceTypes, rel string) {
	oldScope, newScope := it.template.Qualified, it.instance

	for _, n := range nodes {
		b := n.Common()
		if strings.HasPrefix(b.Qualified, oldScope+"::") {
			b.Qualified = newScope + strings.TrimPrefix(b.Qualified, oldScope)
		}

		switch v := n.(type) {
		case *decl.Function:
			if !shadows(v.TemplateParams, param) {
				substituteFunction(v, param, with)
			}
			for i := range v.Params {
				v.Params[i].Type = it.typeRef(v.Params[i].Type, rel)
			}
			v.Return = it.typeRef(v.Return, rel)
		case *decl.Field:
			v.Type = it.typeRef(v.Type.Substitute(param, with), rel)
		case *decl.Class:
			if !shadows(v.TemplateParams, param) {
				substituteMembers(v.Children, param, with, it, join(rel, v.Name))
			}
		case *decl.Enum:
			for _, ev := range v.Values {
				if strings.HasPrefix(ev.Qualified, oldScope+"::") {
					ev.Qualified = newScope + strings.TrimPrefix(ev.Qualified, oldScope)
				}
			}
		}
	}
}

func substituteFunction(fn *decl.Function, param string, with decl.TypeRef) {
	for i := range fn.Params {
		fn.Params[i].Type = fn.Params[i].Type.Substitute(param, with)
	}
	fn.Return = fn.Return.Substitute(param, with)
}

func shadows(params []string, name string) bool {
	for _, p := range params {
		if p == name {
			return true
		}
	}

	return false
}

func requalify(qualified, oldName, newName string) string {
	return strings.TrimSuffix(qualified, oldName) + newName
}

// instanceTypes rewrites type names that refer to a class template, or to
// a type nested in it, so they name the instance being built.
type instanceTypes struct {
	template *decl.Class
	instance string
	with     decl.TypeRef
	nested   map[string]bool
}

func newInstanceTypes(c *decl.Class, instance string, with decl.TypeRef) instanceTypes {
	it := instanceTypes{
		template: c,
		instance: instance,
		with:     with,
		nested:   make(map[string]bool),
	}

	decl.Walk(c.Children, func(n decl.Node, _ []decl.Node) bool {
		if k := n.Kind(); k == decl.KindClass || k == decl.KindEnum {
			it.nested[strings.TrimPrefix(n.Common().Qualified, c.Qualified+"::")] = true
		}
		return true
	})

	return it
}

func (it instanceTypes) typeRef(t decl.TypeRef, rel string) decl.TypeRef {
	switch t.Kind {
	case decl.TypeUser:
		if name, ok := it.resolve(t.Name, rel); ok {
			t.Name = name
		}
	case decl.TypePointer, decl.TypeReference, decl.TypeFixedArray:
		if t.Elem != nil {
			e := it.typeRef(*t.Elem, rel)
			t.Elem = &e
		}
	case decl.TypeContainer:
		args := make([]decl.TypeRef, len(t.Args))
		for i, a := range t.Args {
			args[i] = it.typeRef(a, rel)
		}
		t.Args = args

		if it.self(t.Name) && len(args) == 1 {
			return decl.User(it.instanceOf(args[0])).WithConst(t.Const)
		}
	}

	return t
}

// resolve looks name up the way it would be found from inside the template:
// the injected class name, then nested types from rel outward.
func (it instanceTypes) resolve(name, rel string) (string, bool) {
	if it.self(name) {
		return it.instance, true
	}

	for _, prefix := range []string{it.template.Qualified + "::", it.template.Name + "::"} {
		if r, ok := strings.CutPrefix(name, prefix); ok && it.nested[r] {
			return it.instance + "::" + r, true
		}
	}

	for scope := rel; ; {
		if cand := join(scope, name); it.nested[cand] {
			return it.instance + "::" + cand, true
		}
		if scope == "" {
			return "", false
		}

		i := strings.LastIndex(scope, "::")
		if i < 0 {
			scope = ""
			continue
		}
		scope = scope[:i]
	}
}

func (it instanceTypes) self(name string) bool {
	if name == "" {
		return false
	}

	return name == it.template.Name || name == it.template.Qualified ||
		strings.HasSuffix(it.template.Qualified, "::"+name)
}

// instanceOf names the instance of the template for arg. Other instances
// of the same template live next to this one.
func (it instanceTypes) instanceOf(arg decl.TypeRef) string {
	if arg.Equal(it.with) {
		return it.instance
	}

	return requalify(it.template.Qualified, it.template.Name, naming.TemplateClassName(it.template.Name, arg.String()))
}

func join(scope, name string) string {
	if scope == "" {
		return name
	}

	return scope + "::" + name
}
