// Package classify maps raw C++ type expressions onto the closed set of
// decl.TypeRef variants. Classification is a pure function of the text and
// the template parameters in scope.
package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ardanlabs/hostbind/decl"
)

var multiSpaceRe = regexp.MustCompile(`\s+`)

var scalarAliases = map[string]decl.ScalarKind{
	"void":                   decl.ScalarVoid,
	"bool":                   decl.ScalarBool,
	"char":                   decl.ScalarChar,
	"signed char":            decl.ScalarSChar,
	"unsigned char":          decl.ScalarUChar,
	"short":                  decl.ScalarShort,
	"short int":              decl.ScalarShort,
	"signed short":           decl.ScalarShort,
	"unsigned short":         decl.ScalarUShort,
	"unsigned short int":     decl.ScalarUShort,
	"int":                    decl.ScalarInt,
	"signed":                 decl.ScalarInt,
	"signed int":             decl.ScalarInt,
	"unsigned":               decl.ScalarUInt,
	"unsigned int":           decl.ScalarUInt,
	"long":                   decl.ScalarLong,
	"long int":               decl.ScalarLong,
	"signed long":            decl.ScalarLong,
	"unsigned long":          decl.ScalarULong,
	"unsigned long int":      decl.ScalarULong,
	"long long":              decl.ScalarLongLong,
	"long long int":          decl.ScalarLongLong,
	"signed long long":       decl.ScalarLongLong,
	"unsigned long long":     decl.ScalarULongLong,
	"unsigned long long int": decl.ScalarULongLong,
	"int8_t":                 decl.ScalarInt8,
	"uint8_t":                decl.ScalarUInt8,
	"int16_t":                decl.ScalarInt16,
	"uint16_t":               decl.ScalarUInt16,
	"int32_t":                decl.ScalarInt32,
	"uint32_t":               decl.ScalarUInt32,
	"int64_t":                decl.ScalarInt64,
	"uint64_t":               decl.ScalarUInt64,
	"size_t":                 decl.ScalarSize,
	"ssize_t":                decl.ScalarSSize,
	"ptrdiff_t":              decl.ScalarSSize,
	"float":                  decl.ScalarFloat,
	"double":                 decl.ScalarDouble,
	"long double":            decl.ScalarLongDouble,
	"string":                 decl.ScalarString,
	"string_view":            decl.ScalarString,
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTemplateParams declares the template parameter names in scope. Any
// bare occurrence of one of them classifies as decl.TypeTemplateParam.
func WithTemplateParams(names ...string) Option {
	return func(c *Classifier) {
		for _, n := range names {
			c.templateParams[n] = true
		}
	}
}

// Classifier turns type expressions into TypeRefs.
type Classifier struct {
	templateParams map[string]bool
}

func New(opts ...Option) *Classifier {
	c := &Classifier{templateParams: make(map[string]bool)}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Classify parses one type expression. Array suffixes belong to the
// expression ("int[2]", "const char * const[]"). Shapes the model has no
// variant for come back as decl.TypeUnmappable with the reason in Name.
func (c *Classifier) Classify(expr string) decl.TypeRef {
	expr = strings.TrimSpace(multiSpaceRe.ReplaceAllString(expr, " "))
	if expr == "" {
		return decl.Unmappable("empty type")
	}

	if strings.HasSuffix(expr, "]") {
		return c.classifyArray(expr)
	}

	if strings.Contains(expr, "...") {
		return decl.Unmappable("variadic")
	}

	if strings.HasSuffix(expr, "&&") {
		return decl.Unmappable("rvalue reference")
	}

	if strings.HasSuffix(expr, "&") {
		inner := c.Classify(strings.TrimSuffix(expr, "&"))
		if inner.Kind == decl.TypeUnmappable {
			return inner
		}
		return decl.Reference(inner)
	}

	pointerConst := false
	if rest, ok := cutWordSuffix(expr, "const"); ok && strings.HasSuffix(rest, "*") {
		expr = rest
		pointerConst = true
	}

	if strings.HasSuffix(expr, "*") {
		return c.classifyPointer(strings.TrimSpace(strings.TrimSuffix(expr, "*")), pointerConst)
	}

	if strings.Contains(expr, "(") {
		return decl.Unmappable("function type")
	}

	return c.classifyNamed(expr)
}

func (c *Classifier) classifyArray(expr string) decl.TypeRef {
	open := strings.LastIndex(expr, "[")
	if open < 0 {
		return decl.Unmappable("unbalanced array suffix")
	}

	sizeText := strings.TrimSpace(expr[open+1 : len(expr)-1])
	size := 0
	if sizeText != "" {
		n, err := strconv.Atoi(sizeText)
		if err != nil || n <= 0 {
			return decl.Unmappable("array size " + sizeText)
		}
		size = n
	}

	elem := c.Classify(expr[:open])
	if elem.Kind == decl.TypeUnmappable {
		return elem
	}

	return decl.FixedArray(elem, size)
}

func (c *Classifier) classifyPointer(inner string, pointerConst bool) decl.TypeRef {
	if strings.Contains(inner, "(") {
		return decl.Unmappable("function pointer")
	}

	base, isConst := stripQualifiers(inner)
	if base == "char" {
		return decl.TypeRef{Kind: decl.TypeCString, Const: isConst}
	}

	elem := c.Classify(inner)
	if elem.Kind == decl.TypeUnmappable {
		return elem
	}

	p := decl.Pointer(elem)
	p.Const = pointerConst

	return p
}

func (c *Classifier) classifyNamed(expr string) decl.TypeRef {
	name, isConst := stripQualifiers(expr)
	if name == "" {
		return decl.Unmappable("missing type name")
	}

	if lt := strings.Index(name, "<"); lt >= 0 {
		t := c.classifyTemplate(name, lt)
		if t.Kind != decl.TypeUnmappable {
			t.Const = isConst
		}
		return t
	}

	bare := strings.TrimPrefix(name, "std::")
	if k, ok := scalarAliases[bare]; ok {
		return decl.Scalar(k).WithConst(isConst)
	}

	if c.templateParams[name] {
		return decl.TemplateParam(name).WithConst(isConst)
	}

	return decl.User(name).WithConst(isConst)
}

func (c *Classifier) classifyTemplate(name string, lt int) decl.TypeRef {
	if !strings.HasSuffix(name, ">") {
		return decl.Unmappable("unbalanced template arguments")
	}

	head := strings.TrimSpace(name[:lt])
	args := splitTopLevel(name[lt+1 : len(name)-1])

	kind, known := decl.ContainerByName(head)
	t := decl.TypeRef{Kind: decl.TypeContainer, Container: kind}
	if !known {
		t.Name = head
	}

	if kind == decl.ContainerArray {
		if len(args) != 2 {
			return decl.Unmappable("std::array needs element and size")
		}
		n, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil || n <= 0 {
			return decl.Unmappable("std::array size " + args[1])
		}
		t.Size = n
		args = args[:1]
	}

	for _, a := range args {
		at := c.Classify(a)
		if at.Kind == decl.TypeUnmappable {
			return at
		}
		t.Args = append(t.Args, at)
	}

	return t
}

// stripQualifiers removes cv-qualifiers and elaborated type keywords that
// sit outside template brackets. It reports whether const was present.
func stripQualifiers(expr string) (string, bool) {
	var kept []string
	isConst := false

	depth := 0
	for _, tok := range strings.Fields(expr) {
		if depth == 0 {
			switch tok {
			case "const":
				isConst = true
				continue
			case "volatile", "struct", "class", "enum", "typename", "inline", "static", "constexpr", "mutable":
				continue
			}
		}
		depth += strings.Count(tok, "<") - strings.Count(tok, ">")
		kept = append(kept, tok)
	}

	name := strings.Join(kept, " ")
	name = strings.ReplaceAll(name, " <", "<")
	name = strings.ReplaceAll(name, "< ", "<")
	name = strings.ReplaceAll(name, " >", ">")
	name = strings.ReplaceAll(name, " ::", "::")
	name = strings.ReplaceAll(name, ":: ", "::")

	return name, isConst
}

// splitTopLevel splits s on commas that are not nested in brackets.
func splitTopLevel(s string) []string {
	var parts []string

	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		parts = append(parts, last)
	}

	return parts
}

func cutWordSuffix(s, word string) (string, bool) {
	if !strings.HasSuffix(s, word) {
		return s, false
	}
	rest := s[:len(s)-len(word)]
	if rest != "" && !strings.HasSuffix(rest, " ") && !strings.HasSuffix(rest, "*") {
		return s, false
	}

	return strings.TrimSpace(rest), true
}
