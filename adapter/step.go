// Package adapter synthesizes the adapter plan of each publishable
// declaration: the ordered steps a renderer applies to cross the boundary
// and the host signature that results.
package adapter

import "fmt"

type StepKind int

const (
	BoxImmutable StepKind = iota
	OutputToReturn
	FixedArrayToList
	FixedArrayToBoxedScalars
	FixedArrayDecompose
	BufferPairToArrayView
	StringListPairToSequence
	ReferenceOwnershipOverride
	TemplateInstantiate
)

var stepNames = [...]string{
	BoxImmutable:               "BoxImmutable",
	OutputToReturn:             "OutputToReturn",
	FixedArrayToList:           "FixedArrayToList",
	FixedArrayToBoxedScalars:   "FixedArrayToBoxedScalars",
	FixedArrayDecompose:        "FixedArrayDecompose",
	BufferPairToArrayView:      "BufferPairToArrayView",
	StringListPairToSequence:   "StringListPairToSequence",
	ReferenceOwnershipOverride: "ReferenceOwnershipOverride",
	TemplateInstantiate:        "TemplateInstantiate",
}

func (k StepKind) String() string {
	if k < 0 || int(k) >= len(stepNames) {
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
	return stepNames[k]
}

func (k StepKind) MarshalYAML() (any, error) { return k.String(), nil }

// Phase is the composition order of a step kind. Array decomposition is
// innermost, template instantiation outermost.
func (k StepKind) Phase() int {
	switch k {
	case FixedArrayToList, FixedArrayToBoxedScalars, FixedArrayDecompose:
		return 0
	case BoxImmutable, OutputToReturn:
		return 1
	case BufferPairToArrayView, StringListPairToSequence:
		return 2
	case ReferenceOwnershipOverride:
		return 3
	}
	return 4
}

// Ownership is the return value policy of a pointer or reference result.
type Ownership int

const (
	OwnedCopy Ownership = iota
	Reference
	TakeOwnership
)

func (o Ownership) String() string {
	switch o {
	case Reference:
		return "reference"
	case TakeOwnership:
		return "take_ownership"
	}
	return "copy"
}

func (o Ownership) MarshalYAML() (any, error) { return o.String(), nil }

// Step is one adapter of a plan. Kind selects the meaningful fields:
//
//	BoxImmutable               Param, Element
//	OutputToReturn             Param, Element
//	FixedArrayToList           Param, Size, Element
//	FixedArrayToBoxedScalars   Param, Size, Element
//	FixedArrayDecompose        Param, Size, Element
//	BufferPairToArrayView      Param, SizeParam, StrideParam, Element
//	StringListPairToSequence   Param, SizeParam
//	ReferenceOwnershipOverride Ownership
//	TemplateInstantiate        Element
//
// Element is a C++ type spelling.
type Step struct {
	Kind        StepKind  `yaml:"kind"`
	Param       string    `yaml:"param,omitempty"`
	SizeParam   string    `yaml:"size_param,omitempty"`
	StrideParam string    `yaml:"stride_param,omitempty"`
	Size        int       `yaml:"size,omitempty"`
	Element     string    `yaml:"element,omitempty"`
	Ownership   Ownership `yaml:"ownership,omitempty"`
}

func NewBoxImmutable(param, elem string) Step {
	return Step{Kind: BoxImmutable, Param: param, Element: elem}
}

func NewOutputToReturn(param, elem string) Step {
	return Step{Kind: OutputToReturn, Param: param, Element: elem}
}

func NewFixedArrayToList(param, elem string, size int) Step {
	return Step{Kind: FixedArrayToList, Param: param, Element: elem, Size: size}
}

func NewFixedArrayToBoxedScalars(param, elem string, size int) Step {
	return Step{Kind: FixedArrayToBoxedScalars, Param: param, Element: elem, Size: size}
}

func NewFixedArrayDecompose(param, elem string, size int) Step {
	return Step{Kind: FixedArrayDecompose, Param: param, Element: elem, Size: size}
}

func NewBufferPairToArrayView(data, size, stride, elem string) Step {
	return Step{
		Kind:        BufferPairToArrayView,
		Param:       data,
		SizeParam:   size,
		StrideParam: stride,
		Element:     elem,
	}
}

func NewStringListPairToSequence(items, count string) Step {
	return Step{Kind: StringListPairToSequence, Param: items, SizeParam: count}
}

func NewReferenceOwnershipOverride(o Ownership) Step {
	return Step{Kind: ReferenceOwnershipOverride, Ownership: o}
}

func NewTemplateInstantiate(typeSpelling string) Step {
	return Step{Kind: TemplateInstantiate, Element: typeSpelling}
}

func (s Step) String() string {
	switch s.Kind {
	case BoxImmutable, OutputToReturn:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Param)
	case FixedArrayToList, FixedArrayToBoxedScalars, FixedArrayDecompose:
		return fmt.Sprintf("%s(%s,%d)", s.Kind, s.Param, s.Size)
	case BufferPairToArrayView:
		return fmt.Sprintf("%s(%s,%s,%s)", s.Kind, s.Param, s.SizeParam, s.Element)
	case StringListPairToSequence:
		return fmt.Sprintf("%s(%s,%s)", s.Kind, s.Param, s.SizeParam)
	case ReferenceOwnershipOverride:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Ownership)
	}

	return fmt.Sprintf("%s(%s)", s.Kind, s.Element)
}
