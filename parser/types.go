package parser

import "github.com/ardanlabs/hostbind/decl"

// Options tunes parsing.
type Options struct {
	// APIMarkers are macro names that flag a declaration as published,
	// "MY_API void f();". They are removed from type spellings.
	APIMarkers []string
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokPunct
	tokDirective
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

func (t token) is(text string) bool { return t.kind != tokString && t.text == text }

// comment is the text of the comments found on one line. own is true when
// no code precedes the comment on that line.
type comment struct {
	text string
	own  bool
}

// scope is the parsing context of a namespace or class body.
type scope struct {
	qualified      string
	class          *decl.Class
	access         decl.Access
	templateParams []string
}

func (s scope) qualify(name string) string {
	if s.qualified == "" {
		return name
	}

	return s.qualified + "::" + name
}

// statement is the token run of one declaration, up to and including its
// terminator.
type statement struct {
	toks       []token
	term       token
	condition  string
	templateOf []string
}
