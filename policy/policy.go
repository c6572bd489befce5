package policy

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ardanlabs/hostbind/classify"
)

// ErrInvalidPolicy marks configuration errors that abort a run.
var ErrInvalidPolicy = errors.New("invalid policy")

// Rule names one regex option of the policy.
type Rule int

const (
	NamespaceExclude Rule = iota
	FnExclude
	ClassExclude
	EnumExclude
	MemberExclude
	MemberReadonly
	BoxedParams
	OutputToReturn
	BufferFunctions
	BufferSizeNames
	StringListFunctions
	CArrayConstFunctions
	CArrayBoxedFunctions
	ForceReferencePointers
	ForceReferenceReferences
	DynamicAttributes
	ExposeProtected
	OverridableVirtual
	MemberNumericArrays
	HeaderGuards

	ruleCount
)

var ruleKeys = [ruleCount]string{
	NamespaceExclude:         "namespace_exclude",
	FnExclude:                "fn_exclude",
	ClassExclude:             "class_exclude",
	EnumExclude:              "enum_exclude",
	MemberExclude:            "member_exclude",
	MemberReadonly:           "member_readonly",
	BoxedParams:              "boxed_params",
	OutputToReturn:           "output_to_return",
	BufferFunctions:          "buffer_functions",
	BufferSizeNames:          "buffer_size_names",
	StringListFunctions:      "string_list_functions",
	CArrayConstFunctions:     "c_array_const_functions",
	CArrayBoxedFunctions:     "c_array_boxed_functions",
	ForceReferencePointers:   "force_reference_pointers",
	ForceReferenceReferences: "force_reference_references",
	DynamicAttributes:        "dynamic_attributes",
	ExposeProtected:          "expose_protected",
	OverridableVirtual:       "overridable_virtual",
	MemberNumericArrays:      "member_numeric_arrays",
	HeaderGuards:             "header_guards",
}

func (r Rule) String() string {
	if r < 0 || r >= ruleCount {
		return "unknown"
	}
	return ruleKeys[r]
}

func (c Config) pattern(r Rule) string {
	switch r {
	case NamespaceExclude:
		return c.NamespaceExclude
	case FnExclude:
		return c.FnExclude
	case ClassExclude:
		return c.ClassExclude
	case EnumExclude:
		return c.EnumExclude
	case MemberExclude:
		return c.MemberExclude
	case MemberReadonly:
		return c.MemberReadonly
	case BoxedParams:
		return c.BoxedParams
	case OutputToReturn:
		return c.OutputToReturn
	case BufferFunctions:
		return c.BufferFunctions
	case BufferSizeNames:
		return c.BufferSizeNames
	case StringListFunctions:
		return c.StringListFunctions
	case CArrayConstFunctions:
		return c.CArrayConstFunctions
	case CArrayBoxedFunctions:
		return c.CArrayBoxedFunctions
	case ForceReferencePointers:
		return c.ForceReferencePointers
	case ForceReferenceReferences:
		return c.ForceReferenceReferences
	case DynamicAttributes:
		return c.DynamicAttributes
	case ExposeProtected:
		return c.ExposeProtected
	case OverridableVirtual:
		return c.OverridableVirtual
	case MemberNumericArrays:
		return c.MemberNumericArrays
	case HeaderGuards:
		return c.HeaderGuards
	}

	return ""
}

type templateRule struct {
	re     *regexp.Regexp
	types  []string
	suffix bool
}

// Policy is a compiled Config. It is safe for concurrent use.
type Policy struct {
	cfg            Config
	rules          [ruleCount]*regexp.Regexp
	fnTemplates    []templateRule
	classTemplates []templateRule
}

// Compile validates c and compiles every pattern. Failures are marked with
// ErrInvalidPolicy.
func (c Config) Compile() (*Policy, error) {
	p := Policy{cfg: c}

	for r := Rule(0); r < ruleCount; r++ {
		re, err := compile(r.String(), c.pattern(r))
		if err != nil {
			return nil, err
		}
		p.rules[r] = re
	}

	if c.CArrayBoxedMaxSize < 0 {
		err := errors.Newf("c_array_boxed_max_size must not be negative, got %d", c.CArrayBoxedMaxSize)
		return nil, errors.Mark(err, ErrInvalidPolicy)
	}

	var err error
	if p.fnTemplates, err = compileTemplates("fn_templates", c.FnTemplates); err != nil {
		return nil, err
	}
	if p.classTemplates, err = compileTemplates("class_templates", c.ClassTemplates); err != nil {
		return nil, err
	}

	return &p, nil
}

// MustCompile is Compile for configurations known to be valid.
func (c Config) MustCompile() *Policy {
	p, err := c.Compile()
	if err != nil {
		panic(err)
	}

	return p
}

// Default returns the compiled default policy.
func Default() *Policy {
	return DefaultConfig().MustCompile()
}

func compile(key, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		err = errors.Wrapf(err, "policy option %s", key)
		err = errors.WithHintf(err, "fix the regular expression %q", pattern)
		return nil, errors.Mark(err, ErrInvalidPolicy)
	}

	return re, nil
}

func compileTemplates(key string, entries []TemplateEntry) ([]templateRule, error) {
	out := make([]templateRule, 0, len(entries))

	for i, e := range entries {
		if e.Name == "" {
			return nil, errors.Mark(errors.Newf("%s[%d]: missing name", key, i), ErrInvalidPolicy)
		}
		if len(e.Types) == 0 {
			err := errors.Newf("%s[%d] %q: no substitution types", key, i, e.Name)
			return nil, errors.Mark(errors.WithHint(err, "list at least one concrete type"), ErrInvalidPolicy)
		}

		re, err := compile(key, e.Name)
		if err != nil {
			return nil, err
		}

		out = append(out, templateRule{re: re, types: append([]string(nil), e.Types...), suffix: e.Suffix})
	}

	return out, nil
}

// Config returns the configuration p was compiled from.
func (p *Policy) Config() Config { return p.cfg }

// Match reports whether name matches the pattern of rule r. Unset patterns
// never match.
func (p *Policy) Match(r Rule, name string) bool {
	re := p.rules[r]
	return re != nil && re.MatchString(name)
}

// MarkerGating reports whether declarations need an API marker to publish.
func (p *Policy) MarkerGating() bool {
	return p.cfg.ExcludeNonAPI && len(p.cfg.APIMarkers) > 0
}

// IsAPIMarker reports whether tok is one of the configured markers.
func (p *Policy) IsAPIMarker(tok string) bool {
	for _, m := range p.cfg.APIMarkers {
		if m == tok {
			return true
		}
	}

	return false
}

// IsRootNamespace reports whether the namespace is flattened into its
// parent module.
func (p *Policy) IsRootNamespace(name string) bool {
	for _, n := range p.cfg.RootNamespaces {
		if n == name {
			return true
		}
	}

	return false
}

// PairRules returns the pair detection rules for the named function.
func (p *Policy) PairRules(fnName string) classify.PairRules {
	return classify.PairRules{
		Buffers:             p.Match(BufferFunctions, fnName),
		StringLists:         p.Match(StringListFunctions, fnName),
		BufferTypes:         p.cfg.BufferTypes,
		BufferTemplateTypes: p.cfg.BufferTemplateTypes,
		SizeName:            p.rules[BufferSizeNames],
	}
}

// BoxedArrayMax is the largest mutable numeric array decomposed into boxes.
func (p *Policy) BoxedArrayMax() int { return p.cfg.CArrayBoxedMaxSize }

// Instantiation is the template table entry that applies to a declaration.
type Instantiation struct {
	Types  []string
	Suffix bool
}

// FunctionTemplate returns the first fn_templates entry matching name.
func (p *Policy) FunctionTemplate(name string) (Instantiation, bool) {
	return lookup(p.fnTemplates, name)
}

// ClassTemplate returns the first class_templates entry matching name.
func (p *Policy) ClassTemplate(name string) (Instantiation, bool) {
	return lookup(p.classTemplates, name)
}

func lookup(rules []templateRule, name string) (Instantiation, bool) {
	for _, r := range rules {
		if r.re.MatchString(name) {
			return Instantiation{Types: append([]string(nil), r.types...), Suffix: r.suffix}, true
		}
	}

	return Instantiation{}, false
}

// GuardAccepted reports whether a preprocessor condition is treated as
// always true. Nested conditions are joined with "&&" and each must be
// accepted. Unconditional declarations are always accepted.
func (p *Policy) GuardAccepted(cond string) bool {
	for _, c := range strings.Split(cond, "&&") {
		c = strings.TrimSpace(c)
		if c != "" && !p.Match(HeaderGuards, c) {
			return false
		}
	}

	return true
}
