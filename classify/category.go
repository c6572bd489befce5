package classify

import "github.com/ardanlabs/hostbind/decl"

// IsNumeric reports a non-pointer numeric scalar. bool is not numeric.
func IsNumeric(t decl.TypeRef) bool {
	return t.Kind == decl.TypeScalar && t.Scalar.Numeric()
}

// IsInteger reports a non-pointer integer scalar.
func IsInteger(t decl.TypeRef) bool {
	return t.Kind == decl.TypeScalar && t.Scalar.Integer()
}

// IsNumericArray reports a fixed-size array of numeric scalars.
func IsNumericArray(t decl.TypeRef) bool {
	return t.Kind == decl.TypeFixedArray && t.Elem != nil && IsNumeric(*t.Elem)
}

// IsUserArray reports a fixed-size array of user-defined types.
func IsUserArray(t decl.TypeRef) bool {
	return t.Kind == decl.TypeFixedArray && t.Elem != nil && t.Elem.Kind == decl.TypeUser
}

// IsBoxingCandidate reports a pointer or reference to a mutable scalar whose
// host counterpart is immutable. Being a candidate never forces boxing.
func IsBoxingCandidate(t decl.TypeRef) bool {
	elem, ok := t.Pointee()
	if !ok || elem.Const || elem.Kind != decl.TypeScalar {
		return false
	}

	return elem.Scalar.ImmutableInHost()
}

// IsStringList reports the double indirection shapes used for C string
// lists: "const char * const items[]", "const char ** items".
func IsStringList(t decl.TypeRef) bool {
	if t.Kind != decl.TypeFixedArray && t.Kind != decl.TypePointer {
		return false
	}
	if t.Kind == decl.TypeFixedArray && t.Size != 0 {
		return false
	}

	return t.Elem != nil && t.Elem.Kind == decl.TypeCString && t.Elem.Const
}

// IsPassthrough reports types the host binding layer converts natively:
// scalars, strings, user types, containers of passthrough types and
// pointers or references to them.
func IsPassthrough(t decl.TypeRef) bool {
	switch t.Kind {
	case decl.TypeScalar, decl.TypeCString, decl.TypeUser:
		return true
	case decl.TypePointer, decl.TypeReference:
		if t.Elem == nil || t.Elem.IsVoid() {
			return false
		}
		if t.Elem.Kind == decl.TypePointer || t.Elem.Kind == decl.TypeCString {
			return false
		}
		return IsPassthrough(*t.Elem)
	case decl.TypeContainer:
		for _, a := range t.Args {
			if !IsPassthrough(a) {
				return false
			}
		}
		return true
	}

	return false
}

// Describe names the category of t for diagnostics.
func Describe(t decl.TypeRef) string {
	switch {
	case IsNumericArray(t):
		return "numeric array"
	case IsUserArray(t):
		return "user-type array"
	case IsStringList(t):
		return "string list"
	case IsBoxingCandidate(t):
		return "boxing candidate"
	}

	return t.Kind.String()
}
