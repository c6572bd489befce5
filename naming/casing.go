// Package naming maps C++ names onto host identifiers and module paths.
package naming

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	snakeWordRe    = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	snakeDoubleRe  = regexp.MustCompile(`__([A-Z])`)
	snakeBoundRe   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	typeNonIdentRe = regexp.MustCompile(`[^A-Za-z0-9_]+`)
)

var hostKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// SnakeCase converts PascalCase and mixedCase to snake_case. Acronyms stay
// together: "HTTPServer" becomes "http_server".
func SnakeCase(s string) string {
	s = snakeWordRe.ReplaceAllString(s, "${1}_${2}")
	s = snakeDoubleRe.ReplaceAllString(s, "_${1}")
	s = snakeBoundRe.ReplaceAllString(s, "${1}_${2}")

	return strings.ToLower(s)
}

// CamelCase upper-cases the first letter of every word separated by spaces
// or underscores and joins them: "unsigned int" becomes "UnsignedInt".
func CamelCase(s string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '_' }) {
		runes := []rune(part)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}

	return b.String()
}

// EscapeKeyword appends an underscore to host reserved words.
func EscapeKeyword(s string) string {
	if hostKeywords[s] {
		return s + "_"
	}

	return s
}

// Identifier converts a function, parameter or field name to its host
// spelling.
func Identifier(name string, snake bool) string {
	if snake {
		name = SnakeCase(name)
	}

	return EscapeKeyword(name)
}

// TypeSuffix turns a C++ type spelling into an identifier fragment:
// "std::string" becomes "string", "const Foo &" becomes "const_Foo_ref".
func TypeSuffix(spelling string) string {
	s := strings.ReplaceAll(spelling, "std::", "")
	s = strings.ReplaceAll(s, "::", "_")
	s = strings.ReplaceAll(s, "&", " ref")
	s = strings.ReplaceAll(s, "*", " ptr")
	s = typeNonIdentRe.ReplaceAllString(s, "_")

	return strings.Trim(s, "_")
}

// TemplateFunctionName is the host name of a function template instance
// when the template table asks for a suffix: "add" and "int" give "add_int".
func TemplateFunctionName(base, typeSpelling string) string {
	return base + "_" + TypeSuffix(typeSpelling)
}

// TemplateClassName is the name of a class template instance: "MyPair"
// and "int" give "MyPairInt".
func TemplateClassName(base, typeSpelling string) string {
	return base + CamelCase(TypeSuffix(typeSpelling))
}

// BoxedName is the host type boxing a scalar: "int" gives "BoxedInt",
// "std::string" gives "BoxedString".
func BoxedName(scalarSpelling string) string {
	if scalarSpelling == "std::string" {
		scalarSpelling = "string"
	}

	var b strings.Builder
	b.WriteString("Boxed")
	for _, word := range strings.Fields(scalarSpelling) {
		runes := []rune(word)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}

	return b.String()
}
