package policy

// Precedence names a conflict resolution rule. Plans record the ones that
// fired so that renderers and tests can see why a rule lost.
type Precedence string

const (
	// OutputBeatsBox: a parameter selected both for boxing and for
	// output-to-return is promoted to the return value.
	OutputBeatsBox Precedence = "OutputBeatsBox"

	// DirectiveBeatsDefaultOwnership: an ownership directive on the
	// declaration replaces the owned copy default.
	DirectiveBeatsDefaultOwnership Precedence = "DirectiveBeatsDefaultOwnership"

	// ArrayBeforeScalarRules: fixed arrays are adapted as arrays and never
	// reach boxing or output-to-return.
	ArrayBeforeScalarRules Precedence = "ArrayBeforeScalarRules"

	// PairBeforeArray: a detected pair consumes its parameters before any
	// array rule looks at them.
	PairBeforeArray Precedence = "PairBeforeArray"
)

// ScalarRule is the outcome of rules 4 and 5 for a mutable scalar
// parameter.
type ScalarRule int

const (
	ScalarPassthrough ScalarRule = iota
	ScalarBox
	ScalarOutput
)

func (r ScalarRule) String() string {
	switch r {
	case ScalarBox:
		return "box"
	case ScalarOutput:
		return "output"
	}
	return "passthrough"
}

// ResolveScalarRule picks the rule for a mutable scalar parameter of
// function fnName. boxable tells whether the pointee is immutable in the
// host. The returned precedence is empty unless a conflict was resolved.
func (p *Policy) ResolveScalarRule(fnName string, boxable bool) (ScalarRule, Precedence) {
	box := boxable && p.Match(BoxedParams, fnName)
	out := p.Match(OutputToReturn, fnName)

	switch {
	case box && out:
		return ScalarOutput, OutputBeatsBox
	case out:
		return ScalarOutput, ""
	case box:
		return ScalarBox, ""
	}

	return ScalarPassthrough, ""
}
