package adapter

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardanlabs/hostbind/classify"
	"github.com/ardanlabs/hostbind/decl"
	"github.com/ardanlabs/hostbind/naming"
	"github.com/ardanlabs/hostbind/policy"
)

type param struct {
	expr, name, def string
}

func p(expr, name string) param { return param{expr: expr, name: name} }

func pd(expr, name, def string) param { return param{expr: expr, name: name, def: def} }

func function(name, ret string, params ...param) *decl.Function {
	return generic(nil, name, ret, params...)
}

func generic(tparams []string, name, ret string, params ...param) *decl.Function {
	c := classify.New(classify.WithTemplateParams(tparams...))

	fn := decl.Function{
		Base:           decl.Base{Name: name, Qualified: name},
		Return:         c.Classify(ret),
		ReturnExpr:     ret,
		TemplateParams: tparams,
	}
	for i, prm := range params {
		fn.Params = append(fn.Params, decl.Param{
			Name:    prm.name,
			Expr:    prm.expr,
			Type:    c.Classify(prm.expr),
			Default: prm.def,
			Index:   i,
		})
	}

	return &fn
}

func newSynth(t *testing.T, mutate func(*policy.Config)) *Synthesizer {
	t.Helper()

	cfg := policy.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	pol, err := cfg.Compile()
	require.NoError(t, err)

	return New(pol, naming.NewResolver(nil, naming.Options{SnakeCase: cfg.SnakeCase, EnumStripPrefix: true}))
}

func stepStrings(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.String()
	}

	return out
}

func TestFunctionScenarios(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*policy.Config)
		fn        *decl.Function
		steps     []string
		signature string
	}{
		{
			name:      "passthrough",
			fn:        function("Add", "int", p("int", "a"), p("int", "b")),
			steps:     []string{},
			signature: "(a: int, b: int) -> int",
		},
		{
			name:      "box immutable",
			mutate:    func(c *policy.Config) { c.BoxedParams = "^Toggle" },
			fn:        function("ToggleBoolPointer", "void", p("bool*", "v")),
			steps:     []string{"BoxImmutable(v)"},
			signature: "(v: BoxedBool) -> None",
		},
		{
			name:      "output to return",
			mutate:    func(c *policy.Config) { c.OutputToReturn = "^Change" },
			fn:        function("ChangeBoolInt", "bool", p("const char*", "label"), p("int*", "value")),
			steps:     []string{"OutputToReturn(value)"},
			signature: "(label: str, value: int) -> Tuple[bool, int]",
		},
		{
			name:      "single output of void function is bare",
			mutate:    func(c *policy.Config) { c.OutputToReturn = "^Get" },
			fn:        function("GetValue", "void", p("float&", "v")),
			steps:     []string{"OutputToReturn(v)"},
			signature: "(v: float) -> float",
		},
		{
			name:      "user type array decomposed",
			fn:        function("GetPoints", "void", p("Point2[2]", "out")),
			steps:     []string{"FixedArrayDecompose(out,2)"},
			signature: "(out_0: Point2, out_1: Point2) -> None",
		},
		{
			name: "string list and boxed array",
			fn: function("total", "size_t",
				p("const char* const[]", "items"),
				p("int", "items_count"),
				p("int[2]", "output"),
			),
			steps:     []string{"StringListPairToSequence(items,items_count)", "FixedArrayToBoxedScalars(output,2)"},
			signature: "(items: Sequence[str], output_0: BoxedInt, output_1: BoxedInt) -> int",
		},
		{
			name:      "const array to list",
			fn:        function("SetColor", "void", p("const float[4]", "rgba")),
			steps:     []string{"FixedArrayToList(rgba,4)"},
			signature: "(rgba: Sequence[float]) -> None",
		},
		{
			name:      "buffer pair",
			fn:        function("Fill", "void", p("uint8_t*", "buf"), p("size_t", "n")),
			steps:     []string{"BufferPairToArrayView(buf,n,uint8_t)"},
			signature: "(buf: ndarray) -> None",
		},
		{
			name: "buffers sharing one size with stride",
			fn: function("Add", "void",
				p("const float*", "a"),
				p("const float*", "b"),
				p("float*", "out"),
				p("int", "count"),
				pd("int", "stride", "sizeof(float)"),
			),
			steps: []string{
				"BufferPairToArrayView(a,count,float)",
				"BufferPairToArrayView(b,count,float)",
				"BufferPairToArrayView(out,count,float)",
			},
			signature: "(a: ndarray, b: ndarray, out: ndarray, stride: int = -1) -> None",
		},
		{
			name:      "optional string",
			fn:        function("Draw", "void", pd("const char*", "label", "nullptr")),
			steps:     []string{},
			signature: "(label: Optional[str] = None) -> None",
		},
		{
			name:      "optional boxed scalar",
			mutate:    func(c *policy.Config) { c.BoxedParams = ".*" },
			fn:        function("Toggle", "void", pd("bool*", "v", "NULL")),
			steps:     []string{"BoxImmutable(v)"},
			signature: "(v: Optional[BoxedBool] = None) -> None",
		},
		{
			name:      "defaults translated",
			fn:        function("Open", "void", pd("bool", "force", "true"), pd("int", "mode", "2")),
			steps:     []string{},
			signature: "(force: bool = True, mode: int = 2) -> None",
		},
		{
			name:      "keyword parameter",
			fn:        function("Run", "void", p("int", "lambda")),
			steps:     []string{},
			signature: "(lambda_: int) -> None",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSynth(t, tt.mutate)

			plan, err := s.Function(tt.fn, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.steps, stepStrings(plan.Steps))
			assert.Equal(t, tt.signature, plan.Signature())
			assert.Equal(t, len(tt.steps) == 0, plan.IsPassthrough())
		})
	}
}

func TestFunctionUnnamedParams(t *testing.T) {
	tests := []struct {
		name      string
		fn        *decl.Function
		steps     []string
		signature string
		origins   []string
	}{
		{
			name:      "boxed array",
			fn:        function("Unnamed", "void", p("int[2]", "")),
			steps:     []string{"FixedArrayToBoxedScalars(arg0,2)"},
			signature: "(arg0_0: BoxedInt, arg0_1: BoxedInt) -> None",
			origins:   []string{"arg0", "arg0"},
		},
		{
			name:      "user type array",
			fn:        function("Points", "void", p("int", "n"), p("Point2[2]", "")),
			steps:     []string{"FixedArrayDecompose(arg1,2)"},
			signature: "(n: int, arg1_0: Point2, arg1_1: Point2) -> None",
			origins:   []string{"n", "arg1", "arg1"},
		},
		{
			name:      "buffer data",
			fn:        function("Fill", "void", p("float*", ""), p("size_t", "n")),
			steps:     []string{"BufferPairToArrayView(arg0,n,float)"},
			signature: "(arg0: ndarray) -> None",
			origins:   []string{"arg0"},
		},
		{
			name:      "string list",
			fn:        function("Join", "void", p("const char* const[]", ""), p("int", "count")),
			steps:     []string{"StringListPairToSequence(arg0,count)"},
			signature: "(arg0: Sequence[str]) -> None",
			origins:   []string{"arg0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := newSynth(t, nil).Function(tt.fn, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.steps, stepStrings(plan.Steps))
			assert.Equal(t, tt.signature, plan.Signature())

			var origins []string
			for _, ep := range plan.Params {
				origins = append(origins, ep.Origin)
			}
			assert.Equal(t, tt.origins, origins)
		})
	}

	t.Run("buffer guard", func(t *testing.T) {
		plan, err := newSynth(t, nil).Function(function("Fill", "void", p("float*", ""), p("size_t", "n")), nil)
		require.NoError(t, err)
		require.Len(t, plan.Guards, 1)
		assert.Equal(t, "arg0", plan.Guards[0].Param)
	})
}

func TestFunctionReturnComposition(t *testing.T) {
	s := newSynth(t, func(c *policy.Config) { c.OutputToReturn = ".*" })

	plan, err := s.Function(function("Read", "bool", p("int*", "a"), p("double&", "b")), nil)
	require.NoError(t, err)

	assert.Equal(t, TupleOf, plan.Return.Rule)
	assert.Equal(t, []string{"bool", "int", "float"}, plan.Return.Types)

	plan, err = s.Function(function("Read2", "void", p("int*", "a"), p("int*", "b")), nil)
	require.NoError(t, err)
	assert.Equal(t, "Tuple[int, int]", plan.Return.HostType())
}

func TestFunctionPrecedence(t *testing.T) {
	t.Run("output beats box", func(t *testing.T) {
		s := newSynth(t, func(c *policy.Config) {
			c.BoxedParams = ".*"
			c.OutputToReturn = ".*"
		})

		plan, err := s.Function(function("F", "void", p("int*", "v")), nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"OutputToReturn(v)"}, stepStrings(plan.Steps))
		assert.Equal(t, []policy.Precedence{policy.OutputBeatsBox}, plan.Precedences)
		assert.Empty(t, plan.BoxedTypes)
	})

	t.Run("array before scalar rules", func(t *testing.T) {
		s := newSynth(t, func(c *policy.Config) { c.BoxedParams = ".*" })

		plan, err := s.Function(function("F", "void", p("int[2]", "v")), nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"FixedArrayToBoxedScalars(v,2)"}, stepStrings(plan.Steps))
		assert.Contains(t, plan.Precedences, policy.ArrayBeforeScalarRules)
	})

	t.Run("pair before array", func(t *testing.T) {
		s := newSynth(t, nil)

		plan, err := s.Function(function("F", "void", p("const char* const[]", "names"), p("int", "count")), nil)
		require.NoError(t, err)

		assert.Equal(t, []policy.Precedence{policy.PairBeforeArray}, plan.Precedences)
	})
}

func TestFunctionPipelineOrder(t *testing.T) {
	s := newSynth(t, func(c *policy.Config) { c.BoxedParams = ".*" })

	plan, err := s.Function(function("F", "void",
		p("const char* const[]", "items"),
		p("int", "items_count"),
		p("bool*", "flag"),
		p("int[2]", "output"),
	), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"StringListPairToSequence(items,items_count)",
		"BoxImmutable(flag)",
		"FixedArrayToBoxedScalars(output,2)",
	}, stepStrings(plan.Steps))

	assert.Equal(t, []string{
		"FixedArrayToBoxedScalars(output,2)",
		"BoxImmutable(flag)",
		"StringListPairToSequence(items,items_count)",
	}, stepStrings(plan.Pipeline()))

	assert.Equal(t, []string{"BoxedBool", "BoxedInt"}, plan.BoxedTypes)
}

func TestFunctionBufferGuards(t *testing.T) {
	s := newSynth(t, nil)

	plan, err := s.Function(function("Mix", "void",
		p("const uint16_t*", "a"),
		p("double*", "b"),
		p("int", "n"),
	), nil)
	require.NoError(t, err)

	assert.Equal(t, []BufferGuard{
		{Param: "a", Category: "uint", Bytes: 2},
		{Param: "b", Category: "float", Bytes: 8},
	}, plan.Guards)
	assert.False(t, plan.RuntimeDispatch)
}

func TestFunctionTemplateBuffer(t *testing.T) {
	s := newSynth(t, nil)

	plan, err := s.Function(generic([]string{"T"}, "Scale", "void", p("T*", "data"), p("int", "n")), nil)
	require.NoError(t, err)

	assert.True(t, plan.RuntimeDispatch)
	assert.Equal(t, []BufferGuard{{Param: "data", Category: "template"}}, plan.Guards)
	assert.Equal(t, "(data: ndarray) -> None", plan.Signature())
}

func TestFunctionTemplateInstance(t *testing.T) {
	s := newSynth(t, func(c *policy.Config) {
		c.FnTemplates = []policy.TemplateEntry{{Name: "^add$", Types: []string{"int"}, Suffix: true}}
	})

	fn := function("add", "int", p("int", "a"), p("int", "b"))
	arg := decl.Scalar(decl.ScalarInt)
	fn.TemplateArg = &arg

	plan, err := s.Function(fn, nil)
	require.NoError(t, err)

	assert.Equal(t, "add_int", plan.Name)
	assert.Equal(t, []string{"TemplateInstantiate(int)"}, stepStrings(plan.Steps))
	assert.True(t, plan.IsPassthrough())
}

func TestFunctionOwnership(t *testing.T) {
	t.Run("directive", func(t *testing.T) {
		s := newSynth(t, nil)

		fn := function("Get", "Widget*")
		fn.Directives = []string{"py::return_value_policy::reference"}

		plan, err := s.Function(fn, nil)
		require.NoError(t, err)

		assert.Equal(t, Reference, plan.Return.Ownership)
		assert.Equal(t, []string{"ReferenceOwnershipOverride(reference)"}, stepStrings(plan.Steps))
		assert.Equal(t, []policy.Precedence{policy.DirectiveBeatsDefaultOwnership}, plan.Precedences)
	})

	t.Run("force reference", func(t *testing.T) {
		s := newSynth(t, func(c *policy.Config) { c.ForceReferenceReferences = "^Current" })

		plan, err := s.Function(function("CurrentStyle", "Style&"), nil)
		require.NoError(t, err)
		assert.Equal(t, Reference, plan.Return.Ownership)
		assert.Empty(t, plan.Precedences)

		plan, err = s.Function(function("CurrentWidget", "Widget*"), nil)
		require.NoError(t, err)
		assert.Equal(t, OwnedCopy, plan.Return.Ownership)
		assert.Empty(t, plan.Steps)
	})
}

func TestFunctionMembers(t *testing.T) {
	s := newSynth(t, func(c *policy.Config) { c.OverridableVirtual = "^Shape$" })
	shape := &decl.Class{Base: decl.Base{Name: "Shape", Qualified: "Shape"}}

	ctor := function("Shape", "", p("int", "sides"))
	ctor.Constructor = true
	plan, err := s.Function(ctor, shape)
	require.NoError(t, err)
	assert.Equal(t, "__init__", plan.Name)
	assert.Equal(t, "(sides: int) -> None", plan.Signature())

	area := function("Area", "double")
	area.Virtual = true
	area.PureVirtual = true
	plan, err = s.Function(area, shape)
	require.NoError(t, err)
	assert.True(t, plan.Method)
	assert.True(t, plan.NeedsTrampoline)
	assert.True(t, plan.PureVirtual)
	assert.Equal(t, "area", plan.Name)
}

func TestFunctionUnmappable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*policy.Config)
		fn     *decl.Function
		param  string
	}{
		{"void pointer", nil, function("F", "void", p("void*", "data")), "data"},
		{"pointer to pointer", nil, function("F", "void", p("int**", "data")), "data"},
		{"function pointer", nil, function("F", "void", p("void (*)(int)", "cb")), "cb"},
		{"rvalue reference", nil, function("F", "void", p("Widget&&", "w")), "w"},
		{"open array without size", nil, function("F", "void", p("int[]", "v")), "v"},
		{"bool array", nil, function("F", "void", p("bool[2]", "v")), "v"},
		{
			"array over the boxed maximum",
			func(c *policy.Config) { c.CArrayBoxedMaxSize = 2 },
			function("F", "void", p("int[3]", "v")),
			"v",
		},
		{"template without instantiation", nil, generic([]string{"T"}, "F", "T", p("T", "v")), "v"},
		{"void pointer result", nil, function("F", "void*"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSynth(t, tt.mutate)

			_, err := s.Function(tt.fn, nil)
			require.Error(t, err)

			var ue *UnmappableError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, tt.param, ue.Param)
			assert.Equal(t, "F", ue.Decl)
		})
	}
}

func TestFunctionVariadic(t *testing.T) {
	s := newSynth(t, nil)

	fn := function("Log", "void", p("const char*", "fmt"))
	fn.Variadic = true

	_, err := s.Function(fn, nil)

	var ue *UnmappableError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "variadic", ue.Reason)
}

func TestFunctionIdempotent(t *testing.T) {
	s := newSynth(t, func(c *policy.Config) { c.BoxedParams = ".*" })
	fn := function("total", "size_t",
		p("const char* const[]", "items"),
		p("int", "items_count"),
		p("int[2]", "output"),
		p("bool*", "flag"),
	)

	first, err := s.Function(fn, nil)
	require.NoError(t, err)
	second, err := s.Function(fn, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestField(t *testing.T) {
	s := newSynth(t, func(c *policy.Config) {
		c.MemberReadonly = "^id$"
		c.MemberNumericArrays = "^Vec"
	})
	vec := &decl.Class{Base: decl.Base{Name: "Vec3"}}
	other := &decl.Class{Base: decl.Base{Name: "Other"}}
	c := classify.New()

	field := func(expr, name string) *decl.Field {
		return &decl.Field{Base: decl.Base{Name: name, Qualified: name}, Expr: expr, Type: c.Classify(expr)}
	}

	fp, ok, err := s.Field(field("float[3]", "values"), vec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FieldPlan{Decl: fp.Decl, Name: "values", HostType: "ndarray", View: true, Length: 3}, fp)

	_, ok, err = s.Field(field("float[3]", "values"), other)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Field(field("Point2[2]", "corners"), vec)
	require.NoError(t, err)
	assert.False(t, ok)

	fp, ok, err = s.Field(field("int", "id"), vec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, fp.Readonly)

	fp, ok, err = s.Field(field("const std::string", "Label"), vec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, fp.Readonly)
	assert.Equal(t, "label", fp.Name)
	assert.Equal(t, "str", fp.HostType)

	_, _, err = s.Field(field("void*", "opaque"), vec)
	var ue *UnmappableError
	assert.True(t, errors.As(err, &ue))
}

func TestClass(t *testing.T) {
	s := newSynth(t, func(c *policy.Config) {
		c.DynamicAttributes = "^Dyn"
		c.ExposeProtected = "^Dyn"
	})

	arg := decl.Scalar(decl.ScalarInt)
	c := &decl.Class{
		Base:        decl.Base{Name: "DynPairInt", Qualified: "ns::DynPairInt"},
		Bases:       []string{"Base"},
		TemplateArg: &arg,
		CppName:     "ns::DynPair<int>",
	}

	cp := s.Class(c)
	assert.Equal(t, "DynPairInt", cp.Name)
	assert.Equal(t, "ns::DynPair<int>", cp.CppName)
	assert.True(t, cp.DynamicAttributes)
	assert.True(t, cp.ExposesProtected)
	assert.False(t, cp.OverridableFromHost)
	assert.Equal(t, []string{"Base"}, cp.Bases)
}
