package parser

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	docPrefixRe  = regexp.MustCompile(`^(?:/{2,3}!?|/\*\*?!?|\*+)\s?`)
	docSuffixRe  = regexp.MustCompile(`\s*\*+/$`)
	multiSpaceRe = regexp.MustCompile(`[ \t]+`)
)

// Punctuation that must stay one token. ">>" is absent on purpose so that
// nested template argument lists close one level at a time.
var multiPunct = []string{"...", "::", "->", "&&", "||", "==", "!=", "<=", "+=", "-="}

type lexer struct {
	src      string
	pos      int
	line     int
	col      int
	lastLine int

	toks     []token
	comments map[int]comment
}

// lex splits src into tokens and collects comments per line. Preprocessor
// lines become a single directive token.
func lex(src string) ([]token, map[int]comment, error) {
	l := lexer{
		src:      normalizeNewlines(src),
		line:     1,
		col:      1,
		comments: make(map[int]comment),
	}

	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case c == '\n':
			l.advance(1)

		case c == ' ' || c == '\t' || c == '\f' || c == '\v':
			l.advance(1)

		case strings.HasPrefix(l.src[l.pos:], "//"):
			l.lineComment()

		case strings.HasPrefix(l.src[l.pos:], "/*"):
			if err := l.blockComment(); err != nil {
				return nil, nil, err
			}

		case c == '#' && l.lastLine != l.line:
			l.directive()

		case c == '"' || c == '\'':
			if err := l.quoted(c); err != nil {
				return nil, nil, err
			}

		case isIdentStart(c):
			l.word(tokIdent, isIdentPart)

		case isDigit(c):
			l.word(tokNumber, func(b byte) bool { return isIdentPart(b) || b == '.' || b == '\'' })

		default:
			l.punct()
		}
	}

	return l.toks, l.comments, nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	return s
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) emit(kind tokenKind, text string, line, col int) {
	l.toks = append(l.toks, token{kind: kind, text: text, line: line, col: col})
	l.lastLine = line
}

func (l *lexer) addComment(line int, text string, own bool) {
	text = cleanComment(text)
	c, ok := l.comments[line]
	if !ok {
		l.comments[line] = comment{text: text, own: own}
		return
	}
	if text != "" {
		c.text = strings.TrimSpace(c.text + " " + text)
	}
	l.comments[line] = c
}

func (l *lexer) lineComment() {
	end := strings.IndexByte(l.src[l.pos:], '\n')
	if end < 0 {
		end = len(l.src) - l.pos
	}

	l.addComment(l.line, l.src[l.pos:l.pos+end], l.lastLine != l.line)
	l.advance(end)
}

// blockComment records every line of a block comment so that a multi-line
// doc block stays contiguous with the declaration below it.
func (l *lexer) blockComment() error {
	end := strings.Index(l.src[l.pos+2:], "*/")
	if end < 0 {
		return errors.Newf("line %d: unterminated block comment", l.line)
	}

	own := l.lastLine != l.line
	body := l.src[l.pos : l.pos+2+end+2]
	for i, text := range strings.Split(body, "\n") {
		l.addComment(l.line+i, text, own || i > 0)
	}
	l.advance(len(body))

	return nil
}

func (l *lexer) directive() {
	line, col := l.line, l.col

	var b strings.Builder
	for l.pos < len(l.src) {
		end := strings.IndexByte(l.src[l.pos:], '\n')
		if end < 0 {
			end = len(l.src) - l.pos
		}
		chunk := l.src[l.pos : l.pos+end]
		l.advance(end)

		if !strings.HasSuffix(chunk, "\\") {
			b.WriteString(chunk)
			break
		}
		b.WriteString(strings.TrimSuffix(chunk, "\\"))
		b.WriteString(" ")
		l.advance(1)
	}

	text := b.String()
	if i := strings.Index(text, "//"); i >= 0 {
		text = text[:i]
	}
	l.emit(tokDirective, strings.TrimSpace(multiSpaceRe.ReplaceAllString(text, " ")), line, col)
}

func (l *lexer) quoted(q byte) error {
	line, col := l.line, l.col
	start := l.pos

	l.advance(1)
	for l.pos < len(l.src) && l.src[l.pos] != q {
		if l.src[l.pos] == '\n' {
			return errors.Newf("line %d: unterminated literal", line)
		}
		if l.src[l.pos] == '\\' {
			l.advance(1)
		}
		l.advance(1)
	}
	if l.pos >= len(l.src) {
		return errors.Newf("line %d: unterminated literal", line)
	}
	l.advance(1)

	l.emit(tokString, l.src[start:l.pos], line, col)

	return nil
}

func (l *lexer) word(kind tokenKind, part func(byte) bool) {
	line, col := l.line, l.col
	start := l.pos

	for l.pos < len(l.src) && part(l.src[l.pos]) {
		l.advance(1)
	}

	l.emit(kind, l.src[start:l.pos], line, col)
}

func (l *lexer) punct() {
	for _, p := range multiPunct {
		if strings.HasPrefix(l.src[l.pos:], p) {
			l.emit(tokPunct, p, l.line, l.col)
			l.advance(len(p))
			return
		}
	}

	l.emit(tokPunct, l.src[l.pos:l.pos+1], l.line, l.col)
	l.advance(1)
}

func cleanComment(s string) string {
	s = strings.TrimSpace(s)
	s = docSuffixRe.ReplaceAllString(s, "")
	s = docPrefixRe.ReplaceAllString(s, "")

	return strings.TrimSpace(s)
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
