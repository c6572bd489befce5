package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardanlabs/hostbind/decl"
)

func TestClassify(t *testing.T) {
	c := New(WithTemplateParams("T"))

	tests := []struct {
		expr string
		kind decl.TypeKind
		want string
	}{
		{"int", decl.TypeScalar, "int"},
		{"unsigned  long   long", decl.TypeScalar, "unsigned long long"},
		{"const double", decl.TypeScalar, "const double"},
		{"int const", decl.TypeScalar, "const int"},
		{"std::size_t", decl.TypeScalar, "size_t"},
		{"std::string", decl.TypeScalar, "std::string"},
		{"const std::string &", decl.TypeReference, "const std::string &"},
		{"const char*", decl.TypeCString, "const char *"},
		{"const char * const", decl.TypeCString, "const char *"},
		{"bool*", decl.TypePointer, "bool *"},
		{"int * const", decl.TypePointer, "int * const"},
		{"T*", decl.TypePointer, "T *"},
		{"T", decl.TypeTemplateParam, "T"},
		{"Point2", decl.TypeUser, "Point2"},
		{"struct Point2", decl.TypeUser, "Point2"},
		{"ns::Widget &", decl.TypeReference, "ns::Widget &"},
		{"int[2]", decl.TypeFixedArray, "int[2]"},
		{"const float[3]", decl.TypeFixedArray, "const float[3]"},
		{"const char * const[]", decl.TypeFixedArray, "const char *[]"},
		{"std::vector<int>", decl.TypeContainer, "std::vector<int>"},
		{"std::map<std::string, std::vector<double> >", decl.TypeContainer, "std::map<std::string, std::vector<double>>"},
		{"std::array<float, 4>", decl.TypeContainer, "std::array<float, 4>"},
		{"MyPair<T>", decl.TypeContainer, "MyPair<T>"},
		{"int&&", decl.TypeUnmappable, "<unmappable: rvalue reference>"},
		{"void (*)(int)", decl.TypeUnmappable, "<unmappable: function type>"},
		{"int[N]", decl.TypeUnmappable, "<unmappable: array size N>"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := c.Classify(tt.expr)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestClassifyPointerDetails(t *testing.T) {
	c := New()

	p := c.Classify("const int*")
	require.Equal(t, decl.TypePointer, p.Kind)
	assert.True(t, p.Nullable)
	assert.False(t, p.Const)
	assert.True(t, p.Elem.Const)

	arr := c.Classify("const int[2]")
	require.Equal(t, decl.TypeFixedArray, arr.Kind)
	assert.Equal(t, 2, arr.Size)
	assert.True(t, arr.Const)
}

func TestClassifyIsPure(t *testing.T) {
	c := New(WithTemplateParams("T"))

	for _, expr := range []string{"const std::vector<T> &", "int[3]", "const char * const[]"} {
		assert.True(t, c.Classify(expr).Equal(c.Classify(expr)), expr)
	}
}

func TestTemplateParamsAreScoped(t *testing.T) {
	assert.Equal(t, decl.TypeUser, New().Classify("T").Kind)
	assert.Equal(t, decl.TypeTemplateParam, New(WithTemplateParams("T")).Classify("T").Kind)
}

func TestCategories(t *testing.T) {
	c := New()

	assert.True(t, IsBoxingCandidate(c.Classify("bool*")))
	assert.True(t, IsBoxingCandidate(c.Classify("std::string &")))
	assert.False(t, IsBoxingCandidate(c.Classify("const int &")))
	assert.False(t, IsBoxingCandidate(c.Classify("Point2*")))

	assert.True(t, IsNumericArray(c.Classify("int[2]")))
	assert.False(t, IsNumericArray(c.Classify("bool[2]")))
	assert.True(t, IsUserArray(c.Classify("Point2[2]")))

	assert.True(t, IsStringList(c.Classify("const char * const[]")))
	assert.True(t, IsStringList(c.Classify("const char **")))
	assert.False(t, IsStringList(c.Classify("char **")))

	assert.True(t, IsPassthrough(c.Classify("const std::vector<Point2> &")))
	assert.False(t, IsPassthrough(c.Classify("void *")))
	assert.False(t, IsPassthrough(c.Classify("int **")))
}
