// Package decl holds the normalized declaration model produced by a header
// parser and consumed by every later stage. Values are treated as immutable
// once a parser adapter has built them.
package decl

import "fmt"

type Kind int

const (
	KindNamespace Kind = iota
	KindClass
	KindEnum
	KindFunction
	KindField
	KindEnumValue
)

func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindClass:
		return "class"
	case KindEnum:
		return "enum"
	case KindFunction:
		return "function"
	case KindField:
		return "field"
	case KindEnumValue:
		return "enum value"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	}
	return "public"
}

// Span locates a declaration in its source file. Lines and columns are 1-based.
type Span struct {
	File    string
	Line    int
	Column  int
	EndLine int
}

func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Less orders spans by file, then line, then column.
func (s Span) Less(o Span) bool {
	if s.File != o.File {
		return s.File < o.File
	}
	if s.Line != o.Line {
		return s.Line < o.Line
	}
	return s.Column < o.Column
}

// Base carries the attributes shared by every declaration variant.
type Base struct {
	Name      string
	Qualified string
	Doc       string
	Span      Span
	Access    Access
	APIMarker bool

	// Directives are the whitespace separated tokens of an end-of-line
	// comment, kept verbatim for the renderer.
	Directives []string

	// Condition joins the preprocessor conditions guarding the declaration
	// with "&&", outermost first. Empty when unconditional.
	Condition string
}

func (b *Base) Common() *Base { return b }

// HasDirective reports whether any directive token ends with suffix.
func (b *Base) HasDirective(suffix string) bool {
	for _, d := range b.Directives {
		if d == suffix || len(d) > len(suffix) && d[len(d)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}

// Node is implemented by every declaration variant.
type Node interface {
	Common() *Base
	Kind() Kind
}

type Namespace struct {
	Base
	Children []Node
}

func (*Namespace) Kind() Kind { return KindNamespace }

// Anonymous reports whether the namespace has no name.
func (n *Namespace) Anonymous() bool { return n.Name == "" }

type Class struct {
	Base
	IsStruct       bool
	Bases          []string
	TemplateParams []string
	Children       []Node

	// TemplateArg is set on classes produced by template instantiation.
	// CppName then holds the instance spelling, "MyPair<int>".
	TemplateArg *TypeRef
	CppName     string
}

func (*Class) Kind() Kind { return KindClass }

type Enum struct {
	Base
	IsClass    bool
	Underlying string
	Values     []*EnumValue
}

func (*Enum) Kind() Kind { return KindEnum }

type EnumValue struct {
	Base
	Value string
}

func (*EnumValue) Kind() Kind { return KindEnumValue }

type Param struct {
	Name    string
	Expr    string
	Type    TypeRef
	Default string
	Index   int
}

type Function struct {
	Base
	Params     []Param
	Return     TypeRef
	ReturnExpr string

	Static      bool
	Virtual     bool
	PureVirtual bool
	Const       bool
	Override    bool
	Deleted     bool
	Constructor bool
	Variadic    bool

	TemplateParams []string

	// TemplateArg is set on concrete functions produced by template
	// expansion.
	TemplateArg *TypeRef
}

func (*Function) Kind() Kind { return KindFunction }

// Generic reports whether the function still has unsubstituted template
// parameters.
func (f *Function) Generic() bool { return len(f.TemplateParams) > 0 }

type Field struct {
	Base
	Type    TypeRef
	Expr    string
	Default string
	Static  bool
}

func (*Field) Kind() Kind { return KindField }

// Unit is the declaration forest of one translation unit.
type Unit struct {
	File  string
	Decls []Node
}
