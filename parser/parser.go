// Package parser reads the declaration subset of C and C++ headers into the
// decl model. Bodies are skipped; only what a binding needs is kept.
package parser

import (
	"os"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ardanlabs/hostbind/classify"
	"github.com/ardanlabs/hostbind/decl"
)

// ErrSyntax marks headers the parser cannot follow.
var ErrSyntax = errors.New("header syntax error")

var (
	definedRe = regexp.MustCompile(`defined\s*\(?\s*(\w+)`)
	identRe   = regexp.MustCompile(`[A-Za-z_]\w*`)
)

var builtinWords = map[string]bool{
	"void": true, "bool": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "unsigned": true, "signed": true, "const": true,
	"volatile": true, "auto": true,
}

var qualifierWords = map[string]bool{
	"const": true, "volatile": true, "struct": true, "class": true, "enum": true, "typename": true,
}

type parser struct {
	file     string
	toks     []token
	pos      int
	comments map[int]comment
	markers  map[string]bool
	conds    []string
}

// ParseFile reads and parses one header.
func ParseFile(path string, opts Options) (decl.Unit, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return decl.Unit{}, errors.Wrapf(err, "read header %s", path)
	}

	return Parse(path, string(content), opts)
}

// Parse turns header text into a declaration forest. file only labels spans.
func Parse(file, content string, opts Options) (decl.Unit, error) {
	toks, comments, err := lex(content)
	if err != nil {
		return decl.Unit{}, syntaxError(file, err)
	}

	p := parser{
		file:     file,
		toks:     toks,
		comments: comments,
		markers:  make(map[string]bool),
	}
	for _, m := range opts.APIMarkers {
		p.markers[m] = true
	}

	nodes, err := p.parseScope(scope{}, false)
	if err != nil {
		return decl.Unit{}, syntaxError(file, err)
	}
	if len(p.conds) > 0 {
		return decl.Unit{}, syntaxError(file, errors.New("unterminated #if"))
	}

	return decl.Unit{File: file, Decls: nodes}, nil
}

func syntaxError(file string, err error) error {
	err = errors.Wrapf(err, "parse %s", file)
	err = errors.WithHint(err, "only declarations are read: check braces, comments and string literals")

	return errors.Mark(err, ErrSyntax)
}

// =============================================================================

func (p *parser) parseScope(sc scope, braced bool) ([]decl.Node, error) {
	var nodes []decl.Node

	for p.pos < len(p.toks) {
		t := p.toks[p.pos]

		switch {
		case t.kind == tokDirective:
			p.directive(t)
			p.pos++
			continue

		case t.is("}"):
			if !braced {
				return nil, errors.Newf("line %d: unbalanced }", t.line)
			}
			p.pos++
			return nodes, nil

		case t.is(";"):
			p.pos++
			continue

		case sc.class != nil && isAccess(t) && p.peekIs(1, ":"):
			sc.access = accessOf(t.text)
			p.pos += 2
			continue
		}

		st, err := p.statement()
		if err != nil {
			return nil, err
		}

		got, err := p.declaration(sc, st)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, got...)
	}

	if braced {
		return nil, errors.New("unexpected end of input: missing }")
	}

	return nodes, nil
}

// statement collects tokens up to a top-level ';' or an opening brace of a
// body. Brace initializers are skipped on the way.
func (p *parser) statement() (statement, error) {
	st := statement{condition: p.condition()}

	depth, initList := 0, false
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]

		switch {
		case t.kind == tokDirective:
			p.directive(t)
			p.pos++
			continue

		case t.is("[") && p.peekIs(1, "["):
			if err := p.skipAttribute(); err != nil {
				return st, err
			}
			continue

		case t.is("(") || t.is("["):
			depth++

		case t.is(")") || t.is("]"):
			depth--

		case depth > 0:

		case t.is(":"):
			initList = initList || endsSignature(st.toks)

		case t.is(";"):
			st.term = t
			p.pos++
			return withTemplate(st), nil

		case t.is("}"):
			return st, errors.Newf("line %d: unexpected }", t.line)

		case t.is("{"):
			memberInit := initList && len(st.toks) > 0 && isMemberInit(st.toks[len(st.toks)-1])
			if memberInit || !initList && !opensBody(st.toks) {
				p.pos++
				if err := p.skipBlock(); err != nil {
					return st, err
				}
				if memberInit {
					st.toks = append(st.toks, p.toks[p.pos-1])
				}
				continue
			}
			st.term = t
			p.pos++
			return withTemplate(st), nil
		}

		st.toks = append(st.toks, t)
		p.pos++
	}

	return st, errors.New("unexpected end of input")
}

// withTemplate moves a leading template<...> clause into templateOf.
func withTemplate(st statement) statement {
	if len(st.toks) < 2 || !st.toks[0].is("template") || !st.toks[1].is("<") {
		return st
	}

	depth := 0
	for i, t := range st.toks {
		switch {
		case t.is("<"):
			depth++
		case t.is(">"):
			depth--
			if depth == 0 {
				st.templateOf = templateNames(st.toks[2:i])
				st.toks = st.toks[i+1:]
				return st
			}
		}
	}

	return st
}

func templateNames(toks []token) []string {
	names := []string{}
	for _, part := range splitTop(toks, ",") {
		if eq := indexTop(part, "="); eq >= 0 {
			part = part[:eq]
		}
		for i := len(part) - 1; i >= 0; i-- {
			if part[i].kind == tokIdent && !part[i].is("typename") && !part[i].is("class") {
				names = append(names, part[i].text)
				break
			}
		}
	}

	return names
}

func (p *parser) declaration(sc scope, st statement) ([]decl.Node, error) {
	toks := st.toks
	body := st.term.is("{")

	if len(toks) == 0 {
		if body {
			return nil, p.skipBlock()
		}
		return nil, nil
	}

	switch first := toks[0]; {
	case first.is("namespace") || first.is("inline") && len(toks) > 1 && toks[1].is("namespace"):
		return p.namespace(sc, st)

	case first.is("extern") && len(toks) == 2 && toks[1].kind == tokString && body:
		return p.parseScope(sc, true)

	case first.is("typedef") && body && len(toks) > 1 && isRecord(toks[1]):
		return p.typedefRecord(sc, st)

	case first.is("typedef") || first.is("using") || first.is("friend") || first.is("static_assert"):
		return nil, p.skip(st)

	case isRecord(first) && body:
		switch {
		case first.is("union"):
			return nil, p.skip(st)
		case first.is("enum"):
			return p.enum(sc, st, "")
		}
		return p.class(sc, st, "")

	case isRecord(first) && (len(toks) == 2 || first.is("enum") && toks[1].is("class")):
		return nil, nil
	}

	if open := paramsOpen(toks); open >= 0 {
		if isFuncPointer(toks, open) {
			if sc.class != nil && !body {
				return p.fields(sc, st), nil
			}
			return nil, p.skip(st)
		}
		return p.function(sc, st, open)
	}

	if sc.class != nil && !body {
		return p.fields(sc, st), nil
	}

	return nil, p.skip(st)
}

func (p *parser) skip(st statement) error {
	if !st.term.is("{") {
		return nil
	}
	if err := p.skipBlock(); err != nil {
		return err
	}

	if first := st.toks[0]; isRecord(first) || first.is("typedef") || first.is("using") {
		p.declarators()
	}

	return nil
}

// =============================================================================

func (p *parser) namespace(sc scope, st statement) ([]decl.Node, error) {
	toks := st.toks
	if toks[0].is("inline") {
		toks = toks[1:]
	}

	// namespace fs = std::filesystem;
	if !st.term.is("{") {
		return nil, nil
	}

	var names []string
	for _, t := range toks[1:] {
		if t.kind == tokIdent {
			names = append(names, t.text)
		}
	}
	if len(names) == 0 {
		names = []string{""}
	}

	inner := sc
	chain := make([]*decl.Namespace, len(names))
	for i, name := range names {
		ns := &decl.Namespace{Base: p.base(inner, st, name)}
		if i > 0 {
			ns.Doc = ""
			chain[i-1].Children = []decl.Node{ns}
		}
		chain[i] = ns

		if name != "" {
			inner = scope{qualified: inner.qualify(name)}
		}
	}

	children, err := p.parseScope(inner, true)
	if err != nil {
		return nil, err
	}

	last := chain[len(chain)-1]
	last.Children = append(last.Children, children...)

	end := p.toks[p.pos-1].line
	for _, ns := range chain {
		ns.Span.EndLine = end
	}

	return []decl.Node{chain[0]}, nil
}

func (p *parser) class(sc scope, st statement, name string) ([]decl.Node, error) {
	toks := st.toks

	c := &decl.Class{IsStruct: toks[0].is("struct"), TemplateParams: st.templateOf}

	i := 1
	for i < len(toks) && toks[i].kind == tokIdent && p.markers[toks[i].text] {
		i++
	}
	if i < len(toks) && toks[i].kind == tokIdent && !toks[i].is("final") {
		if name == "" {
			name = toks[i].text
		}
		i++
	}

	// Anonymous records and specializations carry nothing to publish.
	if name == "" || i < len(toks) && (toks[i].is("<") || toks[i].is("::")) {
		if err := p.skipBlock(); err != nil {
			return nil, err
		}
		p.declarators()
		return nil, nil
	}

	if i < len(toks) && toks[i].is("final") {
		i++
	}
	if i < len(toks) && toks[i].is(":") {
		c.Bases = baseNames(toks[i+1:])
	}

	c.Base = p.base(sc, st, name)

	inner := scope{
		qualified:      c.Qualified,
		class:          c,
		access:         decl.AccessPrivate,
		templateParams: concat(sc.templateParams, st.templateOf),
	}
	if c.IsStruct {
		inner.access = decl.AccessPublic
	}

	children, err := p.parseScope(inner, true)
	if err != nil {
		return nil, err
	}
	c.Children = children
	c.Span.EndLine = p.toks[p.pos-1].line

	p.declarators()

	return []decl.Node{c}, nil
}

func baseNames(toks []token) []string {
	var bases []string
	for _, part := range splitTop(toks, ",") {
		var kept []token
		for _, t := range part {
			if isAccess(t) || t.is("virtual") {
				continue
			}
			kept = append(kept, t)
		}
		if len(kept) > 0 {
			bases = append(bases, join(kept))
		}
	}

	return bases
}

// typedefRecord handles the C spelling "typedef struct [Tag] {...} Name;".
func (p *parser) typedefRecord(sc scope, st statement) ([]decl.Node, error) {
	name := p.trailingName()

	rec := st
	rec.toks = st.toks[1:]

	switch {
	case rec.toks[0].is("union"):
		return nil, p.skip(st)
	case rec.toks[0].is("enum"):
		return p.enum(sc, rec, name)
	}

	return p.class(sc, rec, name)
}

// trailingName peeks past the body that was just opened and returns the
// first declarator name after it.
func (p *parser) trailingName() string {
	depth := 1
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		switch {
		case t.is("{"):
			depth++
		case t.is("}"):
			depth--
		case depth == 0 && t.is(";"):
			return ""
		case depth == 0 && t.kind == tokIdent:
			return t.text
		}
	}

	return ""
}

func (p *parser) enum(sc scope, st statement, name string) ([]decl.Node, error) {
	toks := st.toks

	e := &decl.Enum{}

	i := 1
	if i < len(toks) && (toks[i].is("class") || toks[i].is("struct")) {
		e.IsClass = true
		i++
	}
	for i < len(toks) && toks[i].kind == tokIdent && p.markers[toks[i].text] {
		i++
	}
	if i < len(toks) && toks[i].kind == tokIdent {
		if name == "" {
			name = toks[i].text
		}
		i++
	}
	if i < len(toks) && toks[i].is(":") {
		e.Underlying = join(toks[i+1:])
	}

	e.Base = p.base(sc, st, name)

	values, err := p.enumValues(e.Qualified)
	if err != nil {
		return nil, err
	}
	e.Span.EndLine = p.toks[p.pos-1].line

	p.declarators()

	if name == "" {
		return nil, nil
	}
	e.Values = values

	return []decl.Node{e}, nil
}

func (p *parser) enumValues(enum string) ([]*decl.EnumValue, error) {
	var values []*decl.EnumValue

	for p.pos < len(p.toks) {
		t := p.toks[p.pos]

		switch {
		case t.kind == tokDirective:
			p.directive(t)
			p.pos++

		case t.is(","):
			p.pos++

		case t.is("}"):
			p.pos++
			return values, nil

		case t.kind == tokIdent:
			v := &decl.EnumValue{Base: decl.Base{
				Name:      t.text,
				Qualified: enum + "::" + t.text,
				Span:      decl.Span{File: p.file, Line: t.line, Column: t.col, EndLine: t.line},
				Condition: p.condition(),
			}}
			p.pos++

			if p.peekIs(0, "=") {
				p.pos++
				v.Value = join(p.valueExpr())
			}

			v.Doc = p.docAbove(t.line)
			if v.Doc == "" {
				v.Doc = p.trailingComment(t.line)
			}
			values = append(values, v)

		default:
			return nil, errors.Newf("line %d: unexpected %q in enum", t.line, t.text)
		}
	}

	return nil, errors.New("unexpected end of input: missing }")
}

func (p *parser) valueExpr() []token {
	var toks []token

	depth := 0
	for ; p.pos < len(p.toks); p.pos++ {
		t := p.toks[p.pos]
		switch {
		case t.kind == tokDirective:
			continue
		case depth == 0 && (t.is(",") || t.is("}")):
			return toks
		case t.is("(") || t.is("{"):
			depth++
		case t.is(")") || t.is("}"):
			depth--
		}
		toks = append(toks, t)
	}

	return toks
}

// =============================================================================

func (p *parser) function(sc scope, st statement, open int) ([]decl.Node, error) {
	toks := st.toks
	body := st.term.is("{")

	skipBody := func() ([]decl.Node, error) {
		if body {
			return nil, p.skipBlock()
		}
		return nil, nil
	}

	closeAt := matching(toks, open)
	if closeAt < 0 {
		return nil, errors.Newf("line %d: unbalanced (", toks[open].line)
	}

	var name string
	start := open - 1
	if op := indexOf(toks[:open], "operator"); op >= 0 {
		name, start = join(toks[op:open]), op
	} else {
		if start < 0 || toks[start].kind != tokIdent {
			return skipBody()
		}
		name = toks[start].text
		if start > 0 && toks[start-1].is("~") {
			name, start = "~"+name, start-1
		}
	}

	// Out-of-line member definitions were declared in their class.
	if start > 0 && toks[start-1].is("::") {
		return skipBody()
	}

	fn := &decl.Function{TemplateParams: st.templateOf}

	var ret []token
	for _, t := range toks[:start] {
		switch {
		case t.kind == tokIdent && p.markers[t.text]:
		case t.kind == tokString:
		case t.is("static"):
			fn.Static = sc.class != nil
		case t.is("virtual"):
			fn.Virtual = true
		case t.is("inline"), t.is("explicit"), t.is("constexpr"), t.is("extern"):
		default:
			ret = append(ret, t)
		}
	}

	if trailing := p.suffix(fn, toks[closeAt+1:]); len(trailing) > 0 && len(ret) == 1 && ret[0].is("auto") {
		ret = trailing
	}

	fn.Constructor = sc.class != nil && name == sc.class.Name && len(ret) == 0
	destructor := strings.HasPrefix(name, "~")

	// Macro invocations and conversion operators have no return type.
	if len(ret) == 0 && !fn.Constructor && !destructor {
		return skipBody()
	}

	c := classify.New(classify.WithTemplateParams(concat(sc.templateParams, st.templateOf)...))

	params, variadic, ok := p.params(toks[open+1:closeAt], c)
	if !ok {
		return skipBody()
	}
	fn.Params = params
	fn.Variadic = variadic

	fn.Base = p.base(sc, st, name)

	fn.Return = decl.Scalar(decl.ScalarVoid)
	if len(ret) > 0 {
		fn.ReturnExpr = join(ret)
		fn.Return = c.Classify(fn.ReturnExpr)
	}

	if body {
		if err := p.skipBlock(); err != nil {
			return nil, err
		}
		fn.Span.EndLine = p.toks[p.pos-1].line
	}

	return []decl.Node{fn}, nil
}

// suffix reads the qualifiers after a parameter list and returns the
// trailing return type, if any.
func (p *parser) suffix(fn *decl.Function, toks []token) []token {
	var trailing []token

	for i := 0; i < len(toks); i++ {
		t := toks[i]

		switch {
		case t.is("const"):
			fn.Const = true

		case t.is("override"):
			fn.Override = true

		case t.is("noexcept") || t.is("throw"):
			if i+1 < len(toks) && toks[i+1].is("(") {
				if end := matching(toks, i+1); end > 0 {
					i = end
				}
			}

		case t.is("->"):
			for i++; i < len(toks); i++ {
				if toks[i].is("=") || toks[i].is("override") || toks[i].is("final") || toks[i].is(":") {
					i--
					break
				}
				trailing = append(trailing, toks[i])
			}

		case t.is("="):
			if i+1 < len(toks) {
				switch toks[i+1].text {
				case "0":
					fn.PureVirtual = true
					fn.Virtual = true
				case "delete":
					fn.Deleted = true
				}
			}
			return trailing

		case t.is(":"):
			return trailing
		}
	}

	return trailing
}

// params splits a parameter list. ok is false when the list holds literal
// arguments, which makes the statement a variable definition.
func (p *parser) params(toks []token, c *classify.Classifier) (params []decl.Param, variadic bool, ok bool) {
	parts := splitTop(toks, ",")
	if len(parts) == 1 && len(parts[0]) == 1 && parts[0][0].is("void") {
		return nil, false, true
	}

	for _, part := range parts {
		if len(part) == 0 {
			continue
		}
		if len(part) == 1 && part[0].is("...") {
			variadic = true
			continue
		}
		if part[0].kind == tokNumber || part[0].kind == tokString {
			return nil, false, false
		}

		d := parseDeclarator(part, false)
		expr := d.expr()
		params = append(params, decl.Param{
			Name:    d.name,
			Expr:    expr,
			Type:    c.Classify(expr),
			Default: d.def,
			Index:   len(params),
		})
	}

	return params, variadic, true
}

func (p *parser) fields(sc scope, st statement) []decl.Node {
	static := false

	var kept []token
	for _, t := range st.toks {
		switch {
		case t.is("static"):
			static = true
		case t.is("constexpr"):
			kept = append(kept, token{kind: tokIdent, text: "const", line: t.line, col: t.col})
		case t.is("mutable"), t.is("inline"):
		case t.kind == tokIdent && p.markers[t.text]:
		default:
			kept = append(kept, t)
		}
	}

	parts := splitTop(kept, ",")
	if len(parts) == 0 {
		return nil
	}

	first := parseDeclarator(parts[0], true)
	if first.name == "" {
		return nil
	}
	shared := trimPointers(first.typ)

	c := classify.New(classify.WithTemplateParams(sc.templateParams...))

	var nodes []decl.Node
	for i, part := range parts {
		d := first
		if i > 0 {
			lead := leadingPointers(part)
			d = parseDeclarator(part[lead:], true)
			d.typ = concatTokens(shared, part[:lead], d.typ)
		}

		// Bit-fields have no addressable storage to expose.
		if d.bits || d.name == "" {
			continue
		}

		expr := d.expr()
		nodes = append(nodes, &decl.Field{
			Base:    p.base(sc, st, d.name),
			Type:    c.Classify(expr),
			Expr:    expr,
			Default: d.def,
			Static:  static,
		})
	}

	return nodes
}

// =============================================================================

type declarator struct {
	typ  []token
	name string
	dims []token
	def  string
	bits bool
}

func (d declarator) expr() string { return join(d.typ) + join(d.dims) }

// parseDeclarator splits "const float* data[3] = nullptr" into its type,
// name, array suffix and default. Unnamed parameters are recognized unless
// named is set.
func parseDeclarator(part []token, named bool) declarator {
	var d declarator

	if eq := indexTop(part, "="); eq >= 0 {
		d.def = join(part[eq+1:])
		part = part[:eq]
	}
	if colon := indexTop(part, ":"); colon >= 0 {
		d.bits = true
		part = part[:colon]
	}

	// void (*callback)(int)
	if open := indexTop(part, "("); open >= 0 && open+1 < len(part) && isPointerTok(part[open+1]) {
		typ := concatTokens(part[:open+2])
		rest := part[open+2:]
		if len(rest) > 0 && rest[0].kind == tokIdent {
			d.name = rest[0].text
			rest = rest[1:]
		}
		d.typ = concatTokens(typ, rest)
		return d
	}

	if br := indexTop(part, "["); br >= 0 {
		d.dims = part[br:]
		part = part[:br]
	}

	if n := len(part); n > 0 && part[n-1].kind == tokIdent && (named || isParamName(part)) {
		d.name = part[n-1].text
		part = part[:n-1]
	}
	d.typ = part

	return d
}

func isParamName(part []token) bool {
	n := len(part)
	if n < 2 || part[n-2].is("::") || builtinWords[part[n-1].text] {
		return false
	}

	for _, t := range part[:n-1] {
		if !qualifierWords[t.text] {
			return true
		}
	}

	return false
}

// =============================================================================

func (p *parser) base(sc scope, st statement, name string) decl.Base {
	first := st.toks[0]

	b := decl.Base{
		Name:      name,
		Qualified: sc.qualify(name),
		Doc:       p.docAbove(first.line),
		Span:      decl.Span{File: p.file, Line: first.line, Column: first.col, EndLine: st.term.line},
		Access:    sc.access,
		Condition: st.condition,
	}
	if name == "" {
		b.Qualified = ""
	}
	if eol := p.trailingComment(st.term.line); eol != "" {
		b.Directives = strings.Fields(eol)
	}

	for _, t := range st.toks {
		if t.kind == tokIdent && p.markers[t.text] {
			b.APIMarker = true
			break
		}
	}

	return b
}

// docAbove joins the comments that sit alone on the lines directly above
// line.
func (p *parser) docAbove(line int) string {
	var lines []string
	for l := line - 1; l > 0; l-- {
		c, ok := p.comments[l]
		if !ok || !c.own {
			break
		}
		if c.text != "" {
			lines = append(lines, c.text)
		}
	}

	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}

	return strings.Join(lines, "\n")
}

func (p *parser) trailingComment(line int) string {
	if c, ok := p.comments[line]; ok && !c.own {
		return c.text
	}

	return ""
}

// directive tracks the #if nesting. #elif and #else keep the guard that
// opened their branch chain since the policy only knows condition names.
func (p *parser) directive(t token) {
	fields := strings.Fields(strings.TrimPrefix(t.text, "#"))
	if len(fields) == 0 {
		return
	}
	rest := strings.Join(fields[1:], " ")

	switch fields[0] {
	case "if", "ifdef", "ifndef":
		p.conds = append(p.conds, conditionName(rest))

	case "endif":
		if n := len(p.conds); n > 0 {
			p.conds = p.conds[:n-1]
		}
	}
}

func (p *parser) condition() string {
	return strings.Join(p.conds, " && ")
}

func conditionName(expr string) string {
	if m := definedRe.FindStringSubmatch(expr); m != nil {
		return m[1]
	}
	if m := identRe.FindString(expr); m != "" {
		return m
	}

	return strings.TrimSpace(expr)
}

// =============================================================================

func (p *parser) peekIs(offset int, text string) bool {
	i := p.pos + offset
	return i < len(p.toks) && p.toks[i].is(text)
}

// skipBlock consumes tokens up to the brace closing the one just consumed.
func (p *parser) skipBlock() error {
	depth := 1
	for ; p.pos < len(p.toks); p.pos++ {
		t := p.toks[p.pos]
		switch {
		case t.kind == tokDirective:
			p.directive(t)
		case t.is("{"):
			depth++
		case t.is("}"):
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		}
	}

	return errors.New("unexpected end of input: missing }")
}

func (p *parser) skipAttribute() error {
	start := p.toks[p.pos]
	for i := p.pos + 2; i+1 < len(p.toks); i++ {
		if p.toks[i].is("]") && p.toks[i+1].is("]") {
			p.pos = i + 2
			return nil
		}
	}

	return errors.Newf("line %d: unterminated attribute", start.line)
}

// declarators consumes what follows a record body up to its ';'.
func (p *parser) declarators() []token {
	var toks []token
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		switch {
		case t.kind == tokDirective:
			p.directive(t)
		case t.is(";"):
			p.pos++
			return toks
		case t.is("}"):
			return toks
		default:
			toks = append(toks, t)
		}
		p.pos++
	}

	return toks
}

// =============================================================================

// join spells tokens back into source text with canonical spacing:
// "const char*", "std::map<std::string, int>".
func join(toks []token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && needsSpace(toks[i-1], t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.text)
	}

	return b.String()
}

func needsSpace(prev, cur token) bool {
	word := func(t token) bool { return t.kind == tokIdent || t.kind == tokNumber || t.kind == tokString }

	switch {
	case word(prev) && word(cur):
		return true
	case prev.is(","):
		return true
	case (prev.is("*") || prev.is("&") || prev.is("&&")) && word(cur):
		return true
	}

	return false
}

func opens(t token) bool  { return t.is("(") || t.is("[") || t.is("{") || t.is("<") }
func closes(t token) bool { return t.is(")") || t.is("]") || t.is("}") || t.is(">") }

func splitTop(toks []token, sep string) [][]token {
	var parts [][]token

	depth, start := 0, 0
	for i, t := range toks {
		switch {
		case opens(t):
			depth++
		case closes(t):
			depth--
		case depth == 0 && t.is(sep):
			parts = append(parts, toks[start:i])
			start = i + 1
		}
	}
	if start < len(toks) {
		parts = append(parts, toks[start:])
	}

	return parts
}

func indexTop(toks []token, text string) int {
	depth := 0
	for i, t := range toks {
		if depth == 0 && t.is(text) {
			return i
		}
		switch {
		case opens(t):
			depth++
		case closes(t):
			depth--
		}
	}

	return -1
}

func indexOf(toks []token, text string) int {
	for i, t := range toks {
		if t.is(text) {
			return i
		}
	}

	return -1
}

func matching(toks []token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].is("("):
			depth++
		case toks[i].is(")"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// paramsOpen finds the parenthesis that opens a function's parameter list.
func paramsOpen(toks []token) int {
	angle := 0
	for i, t := range toks {
		switch {
		case t.is("operator"):
			from := i + 1
			if i+2 < len(toks) && toks[i+1].is("(") && toks[i+2].is(")") {
				from = i + 3
			}
			if j := indexOf(toks[from:], "("); j >= 0 {
				return from + j
			}
			return -1
		case t.is("<"):
			angle++
		case t.is(">"):
			if angle > 0 {
				angle--
			}
		case t.is("(") && angle == 0:
			return i
		}
	}

	return -1
}

func isFuncPointer(toks []token, open int) bool {
	return open+1 < len(toks) && isPointerTok(toks[open+1])
}

func isPointerTok(t token) bool { return t.is("*") || t.is("&") || t.is("^") }

func isRecord(t token) bool {
	return t.is("class") || t.is("struct") || t.is("union") || t.is("enum")
}

func isAccess(t token) bool {
	return t.is("public") || t.is("protected") || t.is("private")
}

func accessOf(s string) decl.Access {
	switch s {
	case "protected":
		return decl.AccessProtected
	case "private":
		return decl.AccessPrivate
	}

	return decl.AccessPublic
}

// opensBody reports whether a '{' after toks starts a definition body
// rather than a brace initializer.
func opensBody(toks []token) bool {
	if len(toks) == 0 {
		return true
	}

	for _, t := range toks {
		switch {
		case t.is("namespace"), t.is("class"), t.is("struct"), t.is("union"), t.is("enum"), t.is("extern"), t.is("->"):
			return true
		}
	}

	last := toks[len(toks)-1]
	return last.is(")") || last.is("const") || last.is("override") || last.is("final") || last.is("noexcept")
}

func endsSignature(toks []token) bool {
	if len(toks) == 0 {
		return false
	}
	last := toks[len(toks)-1]

	return last.is(")") || last.is("noexcept")
}

func isMemberInit(t token) bool { return t.kind == tokIdent || t.is(">") }

func trimPointers(toks []token) []token {
	n := len(toks)
	for n > 0 && isPointerTok(toks[n-1]) {
		n--
	}

	return toks[:n]
}

func leadingPointers(toks []token) int {
	n := 0
	for n < len(toks) && isPointerTok(toks[n]) {
		n++
	}

	return n
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)

	return append(out, b...)
}

func concatTokens(parts ...[]token) []token {
	var out []token
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}
