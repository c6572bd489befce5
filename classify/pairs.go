package classify

import (
	"regexp"
	"strings"

	"github.com/ardanlabs/hostbind/decl"
)

// maxSharedBuffers bounds how many consecutive buffers may share one size
// parameter.
const maxSharedBuffers = 5

type PairKind int

const (
	PairBuffer PairKind = iota
	PairStringList
)

func (k PairKind) String() string {
	if k == PairStringList {
		return "string-list"
	}
	return "buffer"
}

// Pair is a run of data parameters followed by the size parameter they
// share. Indices refer to the parameter list. Stride is -1 when absent.
type Pair struct {
	Kind   PairKind
	Data   []int
	Size   int
	Stride int
}

// Absorbs reports whether the parameter at index i is consumed by p.
func (p Pair) Absorbs(i int) bool {
	if i == p.Size || i == p.Stride {
		return true
	}
	for _, d := range p.Data {
		if d == i {
			return true
		}
	}

	return false
}

// PairRules parameterizes pair detection. Buffers and StringLists gate each
// kind for the function being inspected.
type PairRules struct {
	Buffers             bool
	StringLists         bool
	BufferTypes         []string
	BufferTemplateTypes []string
	SizeName            *regexp.Regexp
}

// DetectPairs scans params left to right. A buffer pair is one to five
// pointers to buffer types followed by an integer whose name looks like a
// size, optionally followed by a stride defaulting to sizeof(...). A string
// list pair is a C string list followed by such an integer. Parameters are
// consumed by at most one pair.
func DetectPairs(params []decl.Param, r PairRules) []Pair {
	var pairs []Pair

	for i := 0; i < len(params); {
		if r.StringLists && i+1 < len(params) && IsStringList(params[i].Type) && r.isSize(params[i+1]) {
			pairs = append(pairs, Pair{Kind: PairStringList, Data: []int{i}, Size: i + 1, Stride: -1})
			i += 2
			continue
		}

		if r.Buffers {
			if p, ok := r.bufferRun(params, i); ok {
				pairs = append(pairs, p)
				i = p.Size + 1
				if p.Stride >= 0 {
					i = p.Stride + 1
				}
				continue
			}
		}

		i++
	}

	return pairs
}

func (r PairRules) bufferRun(params []decl.Param, start int) (Pair, bool) {
	for n := 0; n < maxSharedBuffers; n++ {
		last := start + n
		if last+1 >= len(params) || !r.IsBuffer(params[last].Type) {
			return Pair{}, false
		}
		if !r.isSize(params[last+1]) {
			continue
		}

		p := Pair{Kind: PairBuffer, Size: last + 1, Stride: -1}
		for i := start; i <= last; i++ {
			p.Data = append(p.Data, i)
		}
		if s := last + 2; s < len(params) && isStride(params[s]) {
			p.Stride = s
		}
		return p, true
	}

	return Pair{}, false
}

// IsBuffer reports a pointer to one of the configured buffer element types,
// scalar or template.
func (r PairRules) IsBuffer(t decl.TypeRef) bool {
	if t.Kind != decl.TypePointer || t.Elem == nil {
		return false
	}

	switch t.Elem.Kind {
	case decl.TypeScalar:
		return contains(r.BufferTypes, t.Elem.Scalar.Spelling())
	case decl.TypeTemplateParam:
		return contains(r.BufferTemplateTypes, t.Elem.Name)
	}

	return false
}

func (r PairRules) isSize(p decl.Param) bool {
	return r.SizeName != nil && IsInteger(p.Type) && r.SizeName.MatchString(p.Name)
}

func isStride(p decl.Param) bool {
	return IsInteger(p.Type) && strings.HasPrefix(strings.TrimSpace(p.Default), "sizeof")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.Join(strings.Fields(v), " ") == s {
			return true
		}
	}

	return false
}
