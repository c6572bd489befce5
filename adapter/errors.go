package adapter

import (
	"fmt"

	"github.com/ardanlabs/hostbind/decl"
)

// UnmappableError reports a declaration no rule can expose. It excludes the
// declaration, not the run.
type UnmappableError struct {
	Decl   string
	Param  string
	Type   string
	Reason string
	Span   decl.Span
}

func (e *UnmappableError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%s: unmappable %s: %s", e.Decl, e.Type, e.Reason)
	}

	return fmt.Sprintf("%s: parameter %s: unmappable %s: %s", e.Decl, e.Param, e.Type, e.Reason)
}

func unmappable(b *decl.Base, param string, t decl.TypeRef, reason string) *UnmappableError {
	if t.Kind == decl.TypeUnmappable && reason == "" {
		reason = t.Name
	}

	return &UnmappableError{
		Decl:   b.Qualified,
		Param:  param,
		Type:   t.String(),
		Reason: reason,
		Span:   b.Span,
	}
}
