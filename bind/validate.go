package bind

import (
	"github.com/cockroachdb/errors"

	"github.com/ardanlabs/hostbind/decl"
)

// ErrMalformedInput marks a declaration forest the engine cannot trust.
// It aborts the run before any output is produced.
var ErrMalformedInput = errors.New("malformed input")

func malformed(unit string, span decl.Span, format string, args ...any) error {
	err := errors.Newf(format, args...)
	err = errors.Wrapf(err, "%s %s", unit, span)
	err = errors.WithHint(err, "the parser produced an inconsistent declaration tree")

	return errors.Mark(err, ErrMalformedInput)
}

// validate checks the structural assumptions the later phases rely on:
// no nil nodes, named declarations and qualified names that extend their
// parent's.
func validate(u decl.Unit) error {
	return validateLevel(u.File, u.Decls, "")
}

func validateLevel(unit string, nodes []decl.Node, scope string) error {
	for i, n := range nodes {
		if n == nil {
			return malformed(unit, decl.Span{File: unit}, "nil declaration at index %d of scope %q", i, scope)
		}

		b := n.Common()
		if b.Name == "" && n.Kind() != decl.KindNamespace {
			return malformed(unit, b.Span, "unnamed %s in scope %q", n.Kind(), scope)
		}
		if b.Name != "" && b.Qualified == "" {
			return malformed(unit, b.Span, "%s %s has no qualified name", n.Kind(), b.Name)
		}

		switch v := n.(type) {
		case *decl.Namespace:
			if err := validateLevel(unit, v.Children, b.Qualified); err != nil {
				return err
			}

		case *decl.Class:
			if err := validateLevel(unit, v.Children, b.Qualified); err != nil {
				return err
			}

		case *decl.Enum:
			for j, ev := range v.Values {
				if ev == nil {
					return malformed(unit, b.Span, "nil value at index %d of enum %s", j, b.Qualified)
				}
				if ev.Name == "" {
					return malformed(unit, ev.Span, "unnamed value in enum %s", b.Qualified)
				}
			}

		case *decl.Function:
			for j, p := range v.Params {
				if p.Index != j {
					return malformed(unit, b.Span, "parameter %d of %s has index %d", j, b.Qualified, p.Index)
				}
			}
		}
	}

	return nil
}
