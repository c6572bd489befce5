package decl

import (
	"strconv"
	"strings"
)

type TypeKind int

const (
	TypeScalar TypeKind = iota
	TypePointer
	TypeReference
	TypeFixedArray
	TypeContainer
	TypeUser
	TypeTemplateParam
	TypeCString
	TypeUnmappable
)

func (k TypeKind) String() string {
	switch k {
	case TypeScalar:
		return "scalar"
	case TypePointer:
		return "pointer"
	case TypeReference:
		return "reference"
	case TypeFixedArray:
		return "fixed-array"
	case TypeContainer:
		return "container"
	case TypeUser:
		return "user"
	case TypeTemplateParam:
		return "template-param"
	case TypeCString:
		return "cstring"
	}
	return "unmappable"
}

type ContainerKind int

const (
	ContainerVector ContainerKind = iota
	ContainerArray
	ContainerMap
	ContainerUnorderedMap
	ContainerSet
	ContainerOptional
	ContainerPair
	ContainerTuple
	ContainerSharedPtr
	ContainerUniquePtr
	ContainerFunction
	ContainerVariant
	ContainerGeneric
)

var containerSpellings = map[ContainerKind]string{
	ContainerVector:       "std::vector",
	ContainerArray:        "std::array",
	ContainerMap:          "std::map",
	ContainerUnorderedMap: "std::unordered_map",
	ContainerSet:          "std::set",
	ContainerOptional:     "std::optional",
	ContainerPair:         "std::pair",
	ContainerTuple:        "std::tuple",
	ContainerSharedPtr:    "std::shared_ptr",
	ContainerUniquePtr:    "std::unique_ptr",
	ContainerFunction:     "std::function",
	ContainerVariant:      "std::variant",
}

// ContainerByName maps a qualified template name to its container kind.
func ContainerByName(name string) (ContainerKind, bool) {
	for k, s := range containerSpellings {
		if s == name || strings.TrimPrefix(s, "std::") == name {
			return k, true
		}
	}
	return ContainerGeneric, false
}

// TypeRef is the classified shape of one type occurrence. Kind selects which
// of the remaining fields are meaningful:
//
//	TypeScalar        Scalar
//	TypePointer       Elem, Nullable
//	TypeReference     Elem
//	TypeFixedArray    Elem, Size (0 when unknown)
//	TypeContainer     Container, Args, Name for ContainerGeneric, Size for std::array
//	TypeUser          Name (qualified as written)
//	TypeTemplateParam Name
//	TypeCString       none
//	TypeUnmappable    Name holds the reason
//
// Const is the top-level const qualifier of the occurrence.
type TypeRef struct {
	Kind      TypeKind
	Const     bool
	Scalar    ScalarKind
	Container ContainerKind
	Name      string
	Elem      *TypeRef
	Args      []TypeRef
	Size      int
	Nullable  bool
}

func Scalar(k ScalarKind) TypeRef { return TypeRef{Kind: TypeScalar, Scalar: k} }

func User(name string) TypeRef { return TypeRef{Kind: TypeUser, Name: name} }

func TemplateParam(name string) TypeRef { return TypeRef{Kind: TypeTemplateParam, Name: name} }

func Pointer(elem TypeRef) TypeRef {
	return TypeRef{Kind: TypePointer, Elem: &elem, Nullable: true}
}

func Reference(elem TypeRef) TypeRef { return TypeRef{Kind: TypeReference, Elem: &elem} }

func FixedArray(elem TypeRef, size int) TypeRef {
	return TypeRef{Kind: TypeFixedArray, Elem: &elem, Size: size, Const: elem.Const}
}

func Unmappable(reason string) TypeRef { return TypeRef{Kind: TypeUnmappable, Name: reason} }

// WithConst returns a copy of t with the const qualifier set to c.
func (t TypeRef) WithConst(c bool) TypeRef {
	t.Const = c
	return t
}

// Equal reports structural equality: same variant and same nested fields.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Kind != o.Kind || t.Const != o.Const || t.Nullable != o.Nullable || t.Size != o.Size {
		return false
	}
	switch t.Kind {
	case TypeScalar:
		return t.Scalar == o.Scalar
	case TypeUser, TypeTemplateParam, TypeUnmappable:
		return t.Name == o.Name
	case TypeCString:
		return true
	case TypeContainer:
		if t.Container != o.Container || t.Name != o.Name || len(t.Args) != len(o.Args) {
			return false
		}
		for i := range t.Args {
			if !t.Args[i].Equal(o.Args[i]) {
				return false
			}
		}
		return true
	}
	if (t.Elem == nil) != (o.Elem == nil) {
		return false
	}
	return t.Elem == nil || t.Elem.Equal(*o.Elem)
}

// Pointee returns the element of a pointer or reference, or false.
func (t TypeRef) Pointee() (TypeRef, bool) {
	if (t.Kind == TypePointer || t.Kind == TypeReference) && t.Elem != nil {
		return *t.Elem, true
	}
	return TypeRef{}, false
}

// IsVoid reports whether t is the plain void scalar.
func (t TypeRef) IsVoid() bool { return t.Kind == TypeScalar && t.Scalar == ScalarVoid }

// Substitute returns a deep copy of t where every template parameter named
// name is replaced by with. The const qualifier of the replaced occurrence is
// kept.
func (t TypeRef) Substitute(name string, with TypeRef) TypeRef {
	switch t.Kind {
	case TypeTemplateParam:
		if t.Name != name {
			return t
		}
		r := with.Clone()
		r.Const = r.Const || t.Const
		return r
	case TypePointer, TypeReference, TypeFixedArray:
		if t.Elem == nil {
			return t
		}
		e := t.Elem.Substitute(name, with)
		t.Elem = &e
		if t.Kind == TypeFixedArray {
			t.Const = e.Const
		}
		return t
	case TypeContainer:
		args := make([]TypeRef, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.Substitute(name, with)
		}
		t.Args = args
		return t
	}
	return t
}

// Mentions reports whether the template parameter name occurs anywhere in t.
func (t TypeRef) Mentions(name string) bool {
	switch t.Kind {
	case TypeTemplateParam:
		return t.Name == name
	case TypeContainer:
		for _, a := range t.Args {
			if a.Mentions(name) {
				return true
			}
		}
		return false
	}
	return t.Elem != nil && t.Elem.Mentions(name)
}

// Clone returns a deep copy of t.
func (t TypeRef) Clone() TypeRef {
	if t.Elem != nil {
		e := t.Elem.Clone()
		t.Elem = &e
	}
	if t.Args != nil {
		args := make([]TypeRef, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.Clone()
		}
		t.Args = args
	}
	return t
}

// String renders t back to a canonical C++ spelling.
func (t TypeRef) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t TypeRef) write(b *strings.Builder) {
	switch t.Kind {
	case TypeScalar:
		if t.Const {
			b.WriteString("const ")
		}
		b.WriteString(t.Scalar.Spelling())
	case TypeCString:
		if t.Const {
			b.WriteString("const ")
		}
		b.WriteString("char *")
	case TypeUser, TypeTemplateParam:
		if t.Const {
			b.WriteString("const ")
		}
		b.WriteString(t.Name)
	case TypeUnmappable:
		b.WriteString("<unmappable: " + t.Name + ">")
	case TypePointer:
		t.Elem.write(b)
		b.WriteString(" *")
		if t.Const {
			b.WriteString(" const")
		}
	case TypeReference:
		t.Elem.write(b)
		b.WriteString(" &")
	case TypeFixedArray:
		t.Elem.write(b)
		b.WriteString("[")
		if t.Size > 0 {
			b.WriteString(strconv.Itoa(t.Size))
		}
		b.WriteString("]")
	case TypeContainer:
		if t.Const {
			b.WriteString("const ")
		}
		name := t.Name
		if s, ok := containerSpellings[t.Container]; ok {
			name = s
		}
		b.WriteString(name)
		b.WriteString("<")
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			a.write(b)
		}
		if t.Container == ContainerArray {
			b.WriteString(", " + strconv.Itoa(t.Size))
		}
		b.WriteString(">")
	}
}
