package naming

import (
	"strings"
	"unicode"

	"github.com/ardanlabs/hostbind/decl"
)

// HostPath locates an entity in the host module tree. Modules are nested
// submodules, Scopes the enclosing classes or enums, Name the leaf.
type HostPath struct {
	Modules []string `yaml:"modules,omitempty"`
	Scopes  []string `yaml:"scopes,omitempty"`
	Name    string   `yaml:"name"`
}

func (p HostPath) String() string {
	parts := make([]string, 0, len(p.Modules)+len(p.Scopes)+1)
	parts = append(parts, p.Modules...)
	parts = append(parts, p.Scopes...)
	parts = append(parts, p.Name)

	return strings.Join(parts, ".")
}

// Options controls name conversion.
type Options struct {
	SnakeCase       bool
	EnumStripPrefix bool
	RootNamespaces  []string
}

// Resolver maps qualified C++ names onto HostPaths. It needs the set of
// qualified namespace names to tell namespaces from classes.
type Resolver struct {
	opts       Options
	namespaces map[string]bool
	roots      map[string]bool
}

func NewResolver(namespaces []string, opts Options) *Resolver {
	r := Resolver{
		opts:       opts,
		namespaces: make(map[string]bool, len(namespaces)),
		roots:      make(map[string]bool, len(opts.RootNamespaces)),
	}
	for _, ns := range namespaces {
		r.namespaces[ns] = true
	}
	for _, ns := range opts.RootNamespaces {
		r.roots[ns] = true
	}

	return &r
}

// Resolve converts a qualified name of the given kind. Leading namespace
// components become submodules, except configured root namespaces, which
// are flattened into their parent.
func (r *Resolver) Resolve(qualified string, kind decl.Kind) HostPath {
	parts := SplitQualified(qualified)
	if len(parts) == 0 {
		return HostPath{}
	}

	var path HostPath
	nsDepth := 0
	for i := range parts[:len(parts)-1] {
		if !r.namespaces[strings.Join(parts[:i+1], "::")] {
			break
		}
		nsDepth = i + 1
	}

	for _, ns := range parts[:nsDepth] {
		if r.roots[ns] {
			continue
		}
		path.Modules = append(path.Modules, r.moduleName(ns))
	}
	path.Scopes = append(path.Scopes, parts[nsDepth:len(parts)-1]...)

	leaf := parts[len(parts)-1]
	switch kind {
	case decl.KindNamespace:
		if r.roots[leaf] {
			// A flattened root has no module of its own.
			path.Name = ""
			return path
		}
		path.Name = r.moduleName(leaf)
	case decl.KindFunction, decl.KindField:
		path.Name = Identifier(leaf, r.opts.SnakeCase)
	case decl.KindEnumValue:
		enum := ""
		if len(parts) > 1 {
			enum = parts[len(parts)-2]
		}
		path.Name = r.EnumValueName(enum, leaf)
	default:
		path.Name = leaf
	}

	return path
}

// Module returns the module path of a namespace, root namespaces removed.
func (r *Resolver) Module(qualified string) []string {
	if qualified == "" {
		return nil
	}
	p := r.Resolve(qualified, decl.KindNamespace)
	if p.Name == "" {
		return p.Modules
	}

	return append(p.Modules, p.Name)
}

func (r *Resolver) moduleName(ns string) string {
	return Identifier(ns, r.opts.SnakeCase)
}

// EnumValueName strips the enum name prefix, matched case-insensitively
// and followed by an underscore, then applies the host convention. A strip
// that would leave nothing is not applied. A leading digit gets an
// underscore.
func (r *Resolver) EnumValueName(enum, value string) string {
	name := value
	if r.opts.EnumStripPrefix {
		name = StripEnumPrefix(enum, value)
	}

	return Identifier(name, r.opts.SnakeCase)
}

// StripEnumPrefix removes "Enum_" from "Enum_Value". The enum's own
// trailing underscore is ignored so "MyEnum_" strips "MyEnum_" too.
func StripEnumPrefix(enum, value string) string {
	prefix := strings.TrimSuffix(enum, "_")
	if prefix == "" {
		return value
	}

	name := value
	if len(value) > len(prefix)+1 && strings.EqualFold(value[:len(prefix)+1], prefix+"_") {
		name = value[len(prefix)+1:]
	}
	if name != "" && unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}

	return name
}

// SplitQualified splits on "::" outside template arguments.
func SplitQualified(q string) []string {
	var parts []string

	depth, start := 0, 0
	for i := 0; i < len(q); i++ {
		switch q[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ':':
			if depth == 0 && i+1 < len(q) && q[i+1] == ':' {
				if i > start {
					parts = append(parts, q[start:i])
				}
				start = i + 2
				i++
			}
		}
	}
	if start < len(q) {
		parts = append(parts, q[start:])
	}

	return parts
}
