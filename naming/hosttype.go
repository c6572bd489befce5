package naming

import (
	"strings"

	"github.com/ardanlabs/hostbind/decl"
)

// HostType spells t as a host type annotation. Pointers and references are
// transparent, smart pointers expose their pointee.
func (r *Resolver) HostType(t decl.TypeRef) string {
	switch t.Kind {
	case decl.TypeScalar:
		return t.Scalar.Host()
	case decl.TypeCString:
		return "str"
	case decl.TypeUser:
		return r.userType(t.Name)
	case decl.TypeTemplateParam:
		return t.Name
	case decl.TypePointer, decl.TypeReference:
		if t.Elem == nil || t.Elem.IsVoid() {
			return "Any"
		}
		return r.HostType(*t.Elem)
	case decl.TypeFixedArray:
		return "List[" + r.HostType(*t.Elem) + "]"
	case decl.TypeContainer:
		return r.container(t)
	}

	return "Any"
}

func (r *Resolver) container(t decl.TypeRef) string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = r.HostType(a)
	}

	wrap := func(name string) string { return name + "[" + strings.Join(args, ", ") + "]" }

	switch t.Container {
	case decl.ContainerVector, decl.ContainerArray:
		return wrap("List")
	case decl.ContainerSet:
		return wrap("Set")
	case decl.ContainerMap, decl.ContainerUnorderedMap:
		return wrap("Dict")
	case decl.ContainerOptional:
		return wrap("Optional")
	case decl.ContainerPair, decl.ContainerTuple:
		return wrap("Tuple")
	case decl.ContainerVariant:
		return wrap("Union")
	case decl.ContainerFunction:
		return "Callable"
	case decl.ContainerSharedPtr, decl.ContainerUniquePtr:
		if len(args) == 1 {
			return args[0]
		}
		return "Any"
	}

	// A user template: refer to the instance class produced by expansion.
	name := t.Name
	for _, a := range t.Args {
		name = TemplateClassName(name, a.String())
	}

	return r.userType(name)
}

func (r *Resolver) userType(name string) string {
	parts := SplitQualified(name)
	if len(parts) <= 1 {
		return name
	}

	p := r.Resolve(name, decl.KindClass)
	if len(p.Modules) == 0 && len(p.Scopes) == 0 {
		return p.Name
	}

	return p.String()
}
