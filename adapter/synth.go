package adapter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ardanlabs/hostbind/classify"
	"github.com/ardanlabs/hostbind/decl"
	"github.com/ardanlabs/hostbind/naming"
	"github.com/ardanlabs/hostbind/policy"
)

const (
	ownershipReferenceToken = "return_value_policy::reference"
	ownershipTakeToken      = "return_value_policy::take_ownership"
)

// Synthesizer builds plans. It holds no per-call state and may be shared
// between goroutines.
type Synthesizer struct {
	p *policy.Policy
	r *naming.Resolver
}

func New(p *policy.Policy, r *naming.Resolver) *Synthesizer {
	return &Synthesizer{p: p, r: r}
}

// builder accumulates the plan of one function.
type builder struct {
	s       *Synthesizer
	fn      *decl.Function
	named   []decl.Param
	plan    Plan
	outputs []string
	boxed   map[string]bool
	prec    map[policy.Precedence]bool
}

// Function synthesizes the plan of fn. owner is the enclosing class, nil
// for free functions. An *UnmappableError is returned when any parameter or
// the result has no applicable rule.
func (s *Synthesizer) Function(fn *decl.Function, owner *decl.Class) (Plan, error) {
	b := builder{
		s:     s,
		fn:    fn,
		boxed: make(map[string]bool),
		prec:  make(map[policy.Precedence]bool),
	}
	b.plan = Plan{
		Decl:        fn,
		Name:        s.hostName(fn),
		Directives:  append([]string(nil), fn.Directives...),
		Method:      owner != nil,
		Static:      fn.Static,
		Constructor: fn.Constructor,
		PureVirtual: fn.PureVirtual,
	}
	if owner != nil && fn.Virtual && s.p.Match(policy.OverridableVirtual, owner.Name) {
		b.plan.NeedsTrampoline = true
	}

	if fn.Variadic {
		return Plan{}, unmappable(&fn.Base, "", decl.Unmappable("variadic"), "")
	}
	if len(fn.TemplateParams) > 1 {
		return Plan{}, unmappable(&fn.Base, "", decl.TemplateParam(strings.Join(fn.TemplateParams, ", ")), "more than one template parameter")
	}

	if err := b.params(); err != nil {
		return Plan{}, err
	}
	if err := b.result(); err != nil {
		return Plan{}, err
	}
	if fn.TemplateArg != nil {
		b.plan.Steps = append(b.plan.Steps, NewTemplateInstantiate(fn.TemplateArg.String()))
	}

	b.finish()

	return b.plan, nil
}

func (s *Synthesizer) hostName(fn *decl.Function) string {
	if fn.Constructor {
		return "__init__"
	}

	name := naming.Identifier(fn.Name, s.p.Config().SnakeCase)
	if fn.TemplateArg != nil {
		if inst, ok := s.p.FunctionTemplate(fn.Name); ok && inst.Suffix {
			name = naming.TemplateFunctionName(name, fn.TemplateArg.String())
		}
	}

	return name
}

func (b *builder) params() error {
	fn := b.fn
	pairs := classify.DetectPairs(fn.Params, b.s.p.PairRules(fn.Name))

	// Unnamed parameters are argN in steps and exposed names alike.
	b.named = make([]decl.Param, len(fn.Params))
	for i, prm := range fn.Params {
		if prm.Name == "" {
			prm.Name = "arg" + strconv.Itoa(i)
		}
		b.named[i] = prm
	}

	pairAt := make(map[int]classify.Pair)
	for _, pr := range pairs {
		for i := range fn.Params {
			if pr.Absorbs(i) {
				pairAt[i] = pr
			}
		}
	}

	generic := ""
	if fn.Generic() {
		generic = fn.TemplateParams[0]
	}

	for i, prm := range b.named {
		if pr, ok := pairAt[i]; ok {
			if i == pr.Data[0] {
				b.pair(pr)
			}
			continue
		}

		if generic != "" && prm.Type.Mentions(generic) {
			return unmappable(&fn.Base, prm.Name, prm.Type, "template parameter without instantiation")
		}

		if err := b.param(prm); err != nil {
			return err
		}
	}

	if generic != "" && !b.plan.RuntimeDispatch {
		return unmappable(&fn.Base, "", decl.TemplateParam(generic), "template without instantiation")
	}

	return nil
}

// pair exposes a detected buffer or string-list pair.
func (b *builder) pair(pr classify.Pair) {
	params := b.named
	size := params[pr.Size].Name

	for _, d := range pr.Data {
		if params[d].Type.Kind == decl.TypeFixedArray {
			b.prec[policy.PairBeforeArray] = true
		}
	}

	if pr.Kind == classify.PairStringList {
		items := params[pr.Data[0]]
		b.plan.Steps = append(b.plan.Steps, NewStringListPairToSequence(items.Name, size))
		b.expose(ExposedParam{Name: items.Name, HostType: "Sequence[str]"}, items)
		return
	}

	stride := ""
	if pr.Stride >= 0 {
		stride = params[pr.Stride].Name
	}

	for _, d := range pr.Data {
		prm := params[d]
		e := *prm.Type.Elem

		b.plan.Steps = append(b.plan.Steps, NewBufferPairToArrayView(prm.Name, size, stride, e.WithConst(false).String()))
		b.plan.Guards = append(b.plan.Guards, guardFor(prm.Name, e))
		if e.Kind == decl.TypeTemplateParam {
			b.plan.RuntimeDispatch = true
		}

		b.expose(ExposedParam{Name: prm.Name, HostType: "ndarray"}, prm)
	}

	if pr.Stride >= 0 {
		sp := params[pr.Stride]
		b.expose(ExposedParam{Name: sp.Name, HostType: "int", Default: "-1"}, sp)
	}
}

func guardFor(param string, elem decl.TypeRef) BufferGuard {
	g := BufferGuard{Param: param, Bytes: elem.Scalar.Bytes()}

	switch {
	case elem.Kind == decl.TypeTemplateParam:
		g.Category, g.Bytes = "template", 0
	case elem.Scalar.Float():
		g.Category = "float"
	case elem.Scalar.Unsigned():
		g.Category = "uint"
	default:
		g.Category = "int"
	}

	return g
}

// param applies rules 3 to 6 to a parameter no pair consumed.
func (b *builder) param(prm decl.Param) error {
	fn := b.fn
	t := prm.Type

	if t.Kind == decl.TypeUnmappable {
		return unmappable(&fn.Base, prm.Name, t, "")
	}

	if t.Kind == decl.TypeFixedArray {
		if b.s.p.Match(policy.BoxedParams, fn.Name) || b.s.p.Match(policy.OutputToReturn, fn.Name) {
			b.prec[policy.ArrayBeforeScalarRules] = true
		}
		return b.array(prm)
	}

	if elem, ok := t.Pointee(); ok && elem.Kind == decl.TypeScalar && !elem.Const && !elem.IsVoid() {
		return b.mutableScalar(prm, elem)
	}

	if !classify.IsPassthrough(t) {
		return unmappable(&fn.Base, prm.Name, t, "no adapter for "+classify.Describe(t))
	}

	ep := ExposedParam{Name: prm.Name, HostType: b.s.r.HostType(t), Default: hostDefault(prm.Default)}
	if t.Kind == decl.TypeCString && isNull(prm.Default) {
		ep.HostType = "Optional[str]"
		ep.Optional = true
	}
	b.expose(ep, prm)

	return nil
}

func (b *builder) array(prm decl.Param) error {
	fn := b.fn
	t := prm.Type
	elem := *t.Elem

	if t.Size == 0 {
		return unmappable(&fn.Base, prm.Name, t, "array of unknown size")
	}

	switch {
	case classify.IsNumericArray(t) && t.Const:
		if !b.s.p.Match(policy.CArrayConstFunctions, fn.Name) {
			return unmappable(&fn.Base, prm.Name, t, "const array adaptation disabled")
		}
		b.plan.Steps = append(b.plan.Steps, NewFixedArrayToList(prm.Name, elem.WithConst(false).String(), t.Size))
		b.expose(ExposedParam{
			Name:     prm.Name,
			HostType: "Sequence[" + b.s.r.HostType(elem) + "]",
			Length:   t.Size,
		}, prm)

	case classify.IsNumericArray(t):
		if !b.s.p.Match(policy.CArrayBoxedFunctions, fn.Name) {
			return unmappable(&fn.Base, prm.Name, t, "mutable array adaptation disabled")
		}
		if t.Size > b.s.p.BoxedArrayMax() {
			return unmappable(&fn.Base, prm.Name, t, "array larger than c_array_boxed_max_size "+strconv.Itoa(b.s.p.BoxedArrayMax()))
		}
		spelling := elem.Scalar.Spelling()
		boxed := naming.BoxedName(spelling)
		b.boxed[spelling] = true
		b.plan.Steps = append(b.plan.Steps, NewFixedArrayToBoxedScalars(prm.Name, spelling, t.Size))
		for i := 0; i < t.Size; i++ {
			b.expose(ExposedParam{Name: prm.Name + "_" + strconv.Itoa(i), HostType: boxed}, prm)
		}

	case classify.IsUserArray(t):
		b.plan.Steps = append(b.plan.Steps, NewFixedArrayDecompose(prm.Name, elem.WithConst(false).String(), t.Size))
		host := b.s.r.HostType(elem)
		for i := 0; i < t.Size; i++ {
			b.expose(ExposedParam{Name: prm.Name + "_" + strconv.Itoa(i), HostType: host}, prm)
		}

	default:
		return unmappable(&fn.Base, prm.Name, t, "no adapter for "+classify.Describe(t))
	}

	return nil
}

// mutableScalar applies rules 4 and 5 to a pointer or reference to a
// mutable scalar.
func (b *builder) mutableScalar(prm decl.Param, elem decl.TypeRef) error {
	spelling := elem.Scalar.Spelling()
	host := elem.Scalar.Host()
	optional := prm.Type.Kind == decl.TypePointer && isNull(prm.Default)

	rule, prec := b.s.p.ResolveScalarRule(b.fn.Name, elem.Scalar.ImmutableInHost())
	if prec != "" {
		b.prec[prec] = true
	}

	ep := ExposedParam{Name: prm.Name, HostType: host, Default: hostDefault(prm.Default)}

	switch rule {
	case policy.ScalarOutput:
		b.plan.Steps = append(b.plan.Steps, NewOutputToReturn(prm.Name, spelling))
		b.outputs = append(b.outputs, host)

	case policy.ScalarBox:
		b.plan.Steps = append(b.plan.Steps, NewBoxImmutable(prm.Name, spelling))
		b.boxed[spelling] = true
		ep.HostType = naming.BoxedName(spelling)
	}

	if optional && rule != policy.ScalarPassthrough {
		ep.HostType = "Optional[" + ep.HostType + "]"
		ep.Optional = true
	}
	b.expose(ep, prm)

	return nil
}

func (b *builder) result() error {
	fn := b.fn
	t := fn.Return

	if fn.Constructor {
		b.compose("None")
		return nil
	}

	if t.Kind == decl.TypeUnmappable {
		return unmappable(&fn.Base, "", t, "")
	}
	if fn.Generic() && t.Mentions(fn.TemplateParams[0]) {
		return unmappable(&fn.Base, "", t, "template result without instantiation")
	}
	if !t.IsVoid() && !classify.IsPassthrough(t) {
		return unmappable(&fn.Base, "", t, "no adapter for result "+classify.Describe(t))
	}

	if t.Kind == decl.TypePointer || t.Kind == decl.TypeReference {
		own, byDirective := b.ownership(t)
		b.plan.Return.Ownership = own
		if own != OwnedCopy {
			b.plan.Steps = append(b.plan.Steps, NewReferenceOwnershipOverride(own))
		}
		if byDirective {
			b.prec[policy.DirectiveBeatsDefaultOwnership] = true
		}
	}

	b.compose(b.s.r.HostType(t))

	return nil
}

// ownership resolves the return value policy. A directive token wins over
// the force_reference rules, which win over the owned copy default.
func (b *builder) ownership(t decl.TypeRef) (Ownership, bool) {
	switch {
	case b.fn.HasDirective(ownershipTakeToken):
		return TakeOwnership, true
	case b.fn.HasDirective(ownershipReferenceToken):
		return Reference, true
	}

	rule := policy.ForceReferencePointers
	if t.Kind == decl.TypeReference {
		rule = policy.ForceReferenceReferences
	}
	if b.s.p.Match(rule, b.fn.Name) {
		return Reference, false
	}

	return OwnedCopy, false
}

func (b *builder) compose(ret string) {
	if len(b.outputs) == 0 {
		b.plan.Return.Rule = SingleValue
		b.plan.Return.Types = []string{ret}
		return
	}

	b.plan.Return.Rule = TupleOf
	if ret != "None" {
		b.plan.Return.Types = append(b.plan.Return.Types, ret)
	}
	b.plan.Return.Types = append(b.plan.Return.Types, b.outputs...)
}

func (b *builder) expose(ep ExposedParam, origin decl.Param) {
	ep.Name = naming.Identifier(ep.Name, b.s.p.Config().SnakeCase)
	ep.Origin = origin.Name
	b.plan.Params = append(b.plan.Params, ep)
}

func (b *builder) finish() {
	for t := range b.boxed {
		b.plan.BoxedTypes = append(b.plan.BoxedTypes, naming.BoxedName(t))
	}
	sort.Strings(b.plan.BoxedTypes)

	for p := range b.prec {
		b.plan.Precedences = append(b.plan.Precedences, p)
	}
	sort.Slice(b.plan.Precedences, func(i, j int) bool { return b.plan.Precedences[i] < b.plan.Precedences[j] })
}

func isNull(def string) bool {
	def = strings.TrimSpace(def)
	return def == "nullptr" || def == "NULL"
}

// hostDefault translates the literals whose spelling differs in the host.
// Anything else is opaque and kept verbatim.
func hostDefault(def string) string {
	switch strings.TrimSpace(def) {
	case "":
		return ""
	case "nullptr", "NULL":
		return "None"
	case "true":
		return "True"
	case "false":
		return "False"
	}

	return strings.TrimSpace(def)
}
