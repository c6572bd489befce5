package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeRefString(t *testing.T) {
	tests := []struct {
		name string
		ref  TypeRef
		want string
	}{
		{"scalar", Scalar(ScalarInt), "int"},
		{"const scalar", Scalar(ScalarDouble).WithConst(true), "const double"},
		{"cstring", TypeRef{Kind: TypeCString, Const: true}, "const char *"},
		{"pointer", Pointer(Scalar(ScalarBool)), "bool *"},
		{"reference", Reference(User("Foo").WithConst(true)), "const Foo &"},
		{"array", FixedArray(Scalar(ScalarInt), 2), "int[2]"},
		{"open array", FixedArray(TypeRef{Kind: TypeCString, Const: true}, 0), "const char *[]"},
		{
			"vector",
			TypeRef{Kind: TypeContainer, Container: ContainerVector, Args: []TypeRef{Scalar(ScalarFloat)}},
			"std::vector<float>",
		},
		{
			"std array",
			TypeRef{Kind: TypeContainer, Container: ContainerArray, Args: []TypeRef{Scalar(ScalarInt)}, Size: 3},
			"std::array<int, 3>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.String())
		})
	}
}

func TestTypeRefEqual(t *testing.T) {
	a := Pointer(Scalar(ScalarInt))
	b := Pointer(Scalar(ScalarInt))
	assert.True(t, a.Equal(b))

	assert.False(t, a.Equal(Pointer(Scalar(ScalarInt).WithConst(true))))
	assert.False(t, a.Equal(Reference(Scalar(ScalarInt))))
	assert.False(t, FixedArray(Scalar(ScalarInt), 2).Equal(FixedArray(Scalar(ScalarInt), 3)))
}

func TestTypeRefSubstitute(t *testing.T) {
	vec := TypeRef{
		Kind:      TypeContainer,
		Container: ContainerVector,
		Args:      []TypeRef{TemplateParam("T")},
	}
	ref := Reference(vec.WithConst(true))

	got := ref.Substitute("T", Scalar(ScalarDouble))
	assert.Equal(t, "const std::vector<double> &", got.String())
	assert.False(t, got.Mentions("T"))

	// The source is left untouched.
	assert.True(t, ref.Mentions("T"))
	assert.Equal(t, "const std::vector<T> &", ref.String())
}

func TestSubstituteKeepsConst(t *testing.T) {
	got := TemplateParam("T").WithConst(true).Substitute("T", Scalar(ScalarInt))
	assert.True(t, got.Const)
	assert.Equal(t, "const int", got.String())
}

func TestScalarKinds(t *testing.T) {
	assert.True(t, ScalarInt.Numeric())
	assert.True(t, ScalarFloat.Float())
	assert.False(t, ScalarBool.Numeric())
	assert.True(t, ScalarBool.ImmutableInHost())
	assert.True(t, ScalarString.ImmutableInHost())
	assert.False(t, ScalarVoid.ImmutableInHost())
	assert.Equal(t, 8, ScalarUInt64.Bytes())

	k, ok := ScalarBySpelling("unsigned int")
	require.True(t, ok)
	assert.Equal(t, ScalarUInt, k)
}

func TestWalkOrder(t *testing.T) {
	inner := &Function{Base: Base{Name: "g"}}
	ns := &Namespace{
		Base: Base{Name: "ns"},
		Children: []Node{
			&Class{Base: Base{Name: "C"}, Children: []Node{&Field{Base: Base{Name: "x"}}}},
			inner,
		},
	}
	top := &Function{Base: Base{Name: "f"}}

	var names []string
	var depth []int
	Walk([]Node{ns, top}, func(n Node, parents []Node) bool {
		names = append(names, n.Common().Name)
		depth = append(depth, len(parents))
		return true
	})

	assert.Equal(t, []string{"ns", "C", "x", "g", "f"}, names)
	assert.Equal(t, []int{0, 1, 2, 1, 0}, depth)
}

func TestWalkSkipsChildren(t *testing.T) {
	ns := &Namespace{Base: Base{Name: "ns"}, Children: []Node{&Function{Base: Base{Name: "f"}}}}

	var names []string
	Walk([]Node{ns}, func(n Node, _ []Node) bool {
		names = append(names, n.Common().Name)
		return false
	})

	assert.Equal(t, []string{"ns"}, names)
}

func TestCloneFunctionIsDeep(t *testing.T) {
	f := &Function{
		Base:   Base{Name: "f", Directives: []string{"a"}},
		Params: []Param{{Name: "p", Type: Pointer(TemplateParam("T"))}},
		Return: TemplateParam("T"),
	}

	c := CloneFunction(f)
	c.Params[0].Type = c.Params[0].Type.Substitute("T", Scalar(ScalarInt))
	c.Directives[0] = "b"

	assert.Equal(t, "T *", f.Params[0].Type.String())
	assert.Equal(t, "a", f.Directives[0])
	assert.Equal(t, "int *", c.Params[0].Type.String())
}

func TestHasDirective(t *testing.T) {
	b := Base{Directives: []string{"py::return_value_policy::reference"}}
	assert.True(t, b.HasDirective("return_value_policy::reference"))
	assert.False(t, b.HasDirective("take_ownership"))
}
