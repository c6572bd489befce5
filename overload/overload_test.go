package overload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardanlabs/hostbind/adapter"
	"github.com/ardanlabs/hostbind/classify"
	"github.com/ardanlabs/hostbind/decl"
	"github.com/ardanlabs/hostbind/naming"
	"github.com/ardanlabs/hostbind/policy"
)

func compile(t *testing.T, mutate func(*policy.Config)) *policy.Policy {
	t.Helper()

	cfg := policy.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := cfg.Compile()
	require.NoError(t, err)

	return p
}

func templated(name, ret string, params ...[2]string) *decl.Function {
	c := classify.New(classify.WithTemplateParams("T"))

	fn := decl.Function{
		Base:           decl.Base{Name: name, Qualified: "math::" + name},
		Return:         c.Classify(ret),
		TemplateParams: []string{"T"},
	}
	for i, p := range params {
		fn.Params = append(fn.Params, decl.Param{Name: p[1], Expr: p[0], Type: c.Classify(p[0]), Index: i})
	}

	return &fn
}

func TestExpandFunctionCardinality(t *testing.T) {
	p := compile(t, func(c *policy.Config) {
		c.FnTemplates = []policy.TemplateEntry{{Name: "^AddTemplated$", Types: []string{"int", "double", "std::string"}}}
	})
	e := NewExpander(p)

	fn := templated("AddTemplated", "T", [2]string{"T", "a"}, [2]string{"const T&", "b"})
	out := e.Function(fn)
	require.Len(t, out, 3)

	want := []decl.TypeRef{
		decl.Scalar(decl.ScalarInt),
		decl.Scalar(decl.ScalarDouble),
		decl.Scalar(decl.ScalarString),
	}
	for i, inst := range out {
		assert.False(t, inst.Generic())
		require.NotNil(t, inst.TemplateArg)
		assert.True(t, want[i].Equal(*inst.TemplateArg))

		assert.True(t, want[i].Equal(inst.Return))
		assert.True(t, want[i].Equal(inst.Params[0].Type))
		assert.True(t, decl.Reference(want[i].WithConst(true)).Equal(inst.Params[1].Type))
		assert.Equal(t, "AddTemplated", inst.Name)
	}

	// The template itself is untouched.
	assert.True(t, fn.Generic())
	assert.Equal(t, decl.TypeTemplateParam, fn.Return.Kind)
}

func TestExpandFunctionWithoutEntry(t *testing.T) {
	e := NewExpander(compile(t, nil))

	fn := templated("Scale", "void", [2]string{"T*", "data"}, [2]string{"int", "n"})
	out := e.Function(fn)

	require.Len(t, out, 1)
	assert.Same(t, fn, out[0])
}

func TestExpandClass(t *testing.T) {
	p := compile(t, func(c *policy.Config) {
		c.ClassTemplates = []policy.TemplateEntry{{Name: "^MyPair$", Types: []string{"int", "float"}}}
	})
	e := NewExpander(p)
	c := classify.New(classify.WithTemplateParams("T"))

	ctor := &decl.Function{
		Base:        decl.Base{Name: "MyPair", Qualified: "geo::MyPair::MyPair"},
		Constructor: true,
		Params:      []decl.Param{{Name: "a", Type: c.Classify("T")}, {Name: "b", Type: c.Classify("T")}},
	}
	sum := &decl.Function{
		Base:   decl.Base{Name: "sum", Qualified: "geo::MyPair::sum"},
		Return: c.Classify("T"),
	}
	first := &decl.Field{Base: decl.Base{Name: "first", Qualified: "geo::MyPair::first"}, Type: c.Classify("T")}
	inner := &decl.Class{
		Base: decl.Base{Name: "Slot", Qualified: "geo::MyPair::Slot"},
		Children: []decl.Node{
			&decl.Field{Base: decl.Base{Name: "value", Qualified: "geo::MyPair::Slot::value"}, Type: c.Classify("std::vector<T>")},
		},
	}

	pair := &decl.Class{
		Base:           decl.Base{Name: "MyPair", Qualified: "geo::MyPair"},
		TemplateParams: []string{"T"},
		Children:       []decl.Node{ctor, sum, first, inner},
	}

	out, ok := e.Class(pair)
	require.True(t, ok)
	require.Len(t, out, 2)

	got := out[1]
	assert.Equal(t, "MyPairFloat", got.Name)
	assert.Equal(t, "geo::MyPairFloat", got.Qualified)
	assert.Equal(t, "geo::MyPair<float>", got.CppName)
	assert.Empty(t, got.TemplateParams)

	fl := decl.Scalar(decl.ScalarFloat)
	gotCtor := got.Children[0].(*decl.Function)
	assert.True(t, fl.Equal(gotCtor.Params[0].Type))
	assert.Equal(t, "geo::MyPairFloat::MyPair", gotCtor.Qualified)

	assert.True(t, fl.Equal(got.Children[1].(*decl.Function).Return))
	assert.True(t, fl.Equal(got.Children[2].(*decl.Field).Type))

	slot := got.Children[3].(*decl.Class)
	assert.Equal(t, "geo::MyPairFloat::Slot", slot.Qualified)
	assert.Equal(t, "std::vector<float>", slot.Children[0].(*decl.Field).Type.String())

	assert.Equal(t, "MyPairInt", out[0].Name)
	assert.Equal(t, decl.TypeTemplateParam, sum.Return.Kind, "template untouched")
}

func TestExpandClassNamesInstanceTypes(t *testing.T) {
	p := compile(t, func(c *policy.Config) {
		c.ClassTemplates = []policy.TemplateEntry{{Name: "^MyPair$", Types: []string{"int", "float"}}}
	})
	c := classify.New(classify.WithTemplateParams("T"))

	method := func(name, ret string, params ...string) *decl.Function {
		fn := &decl.Function{Base: decl.Base{Name: name, Qualified: "geo::MyPair::" + name}, Return: c.Classify(ret)}
		for i, expr := range params {
			fn.Params = append(fn.Params, decl.Param{Name: "arg", Expr: expr, Type: c.Classify(expr), Index: i})
		}
		return fn
	}

	inner := &decl.Class{
		Base: decl.Base{Name: "Inner", Qualified: "geo::MyPair::Inner"},
		Children: []decl.Node{
			&decl.Field{Base: decl.Base{Name: "v", Qualified: "geo::MyPair::Inner::v"}, Type: c.Classify("T")},
			&decl.Field{Base: decl.Base{Name: "next", Qualified: "geo::MyPair::Inner::next"}, Type: c.Classify("Inner*")},
		},
	}
	pair := &decl.Class{
		Base:           decl.Base{Name: "MyPair", Qualified: "geo::MyPair"},
		TemplateParams: []string{"T"},
		Children: []decl.Node{
			inner,
			method("Get", "Inner"),
			method("Swap", "MyPair<T>"),
			method("Copy", "void", "const MyPair&"),
			method("AsInt", "MyPair<int>"),
			method("Find", "MyPair::Inner*"),
			method("Other", "Point2"),
		},
	}

	out, ok := NewExpander(p).Class(pair)
	require.True(t, ok)
	require.Len(t, out, 2)

	tests := []struct {
		inst  *decl.Class
		get   string
		swap  string
		asInt string
	}{
		{inst: out[0], get: "geo::MyPairInt::Inner", swap: "geo::MyPairInt", asInt: "geo::MyPairInt"},
		{inst: out[1], get: "geo::MyPairFloat::Inner", swap: "geo::MyPairFloat", asInt: "geo::MyPairInt"},
	}

	for _, tt := range tests {
		t.Run(tt.inst.Name, func(t *testing.T) {
			fns := map[string]*decl.Function{}
			for _, n := range tt.inst.Children {
				if fn, ok := n.(*decl.Function); ok {
					fns[fn.Name] = fn
				}
			}

			assert.True(t, decl.User(tt.get).Equal(fns["Get"].Return))
			assert.True(t, decl.User(tt.swap).Equal(fns["Swap"].Return))
			assert.True(t, decl.Reference(decl.User(tt.swap).WithConst(true)).Equal(fns["Copy"].Params[0].Type))
			assert.True(t, decl.User(tt.asInt).Equal(fns["AsInt"].Return))
			assert.True(t, decl.Pointer(decl.User(tt.get)).Equal(fns["Find"].Return))
			assert.True(t, decl.User("Point2").Equal(fns["Other"].Return), "outside types are left to the symbol table")

			next := tt.inst.Children[0].(*decl.Class).Children[1].(*decl.Field)
			assert.True(t, decl.Pointer(decl.User(tt.get)).Equal(next.Type))
		})
	}

	assert.True(t, decl.User("Inner").Equal(pair.Children[1].(*decl.Function).Return), "template untouched")
}

func TestExpandClassWithoutEntry(t *testing.T) {
	e := NewExpander(compile(t, nil))

	generic := &decl.Class{Base: decl.Base{Name: "Box"}, TemplateParams: []string{"T"}}
	_, ok := e.Class(generic)
	assert.False(t, ok)

	plain := &decl.Class{Base: decl.Base{Name: "Point"}}
	out, ok := e.Class(plain)
	assert.True(t, ok)
	assert.Equal(t, []*decl.Class{plain}, out)
}

func TestScenarioTemplateOverload(t *testing.T) {
	p := compile(t, func(c *policy.Config) {
		c.FnTemplates = []policy.TemplateEntry{{Name: "^AddTemplated$", Types: []string{"int", "double", "string"}}}
	})
	e := NewExpander(p)
	s := adapter.New(p, naming.NewResolver([]string{"math"}, naming.Options{SnakeCase: true}))

	fn := templated("AddTemplated", "T", [2]string{"T", "a"}, [2]string{"T", "b"})

	var plans []adapter.Plan
	for _, inst := range e.Function(fn) {
		plan, err := s.Function(inst, nil)
		require.NoError(t, err)
		assert.True(t, plan.IsPassthrough())
		plans = append(plans, plan)
	}
	require.Len(t, plans, 3)

	groups := Groups("math", plans)
	require.Len(t, groups, 1)
	assert.Equal(t, "math.add_templated", groups[0].ID)
	assert.True(t, groups[0].Overloaded())

	_, collides := groups[0].Check()
	assert.False(t, collides)

	var sigs []string
	for _, pl := range groups[0].Plans {
		assert.Equal(t, "math.add_templated", pl.Group)
		sigs = append(sigs, pl.Signature())
	}
	assert.Equal(t, []string{
		"(a: int, b: int) -> int",
		"(a: float, b: float) -> float",
		"(a: str, b: str) -> str",
	}, sigs)
}

func TestGroupsOrderAndCollision(t *testing.T) {
	plan := func(name string, types ...string) adapter.Plan {
		p := adapter.Plan{Name: name}
		for i, ty := range types {
			p.Params = append(p.Params, adapter.ExposedParam{Name: string(rune('a' + i)), HostType: ty})
		}
		return p
	}

	groups := Groups("", []adapter.Plan{
		plan("area"),
		plan("scale", "int"),
		plan("area", "float"),
		plan("scale", "int"),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "area", groups[0].Name)
	assert.Equal(t, "scale", groups[1].Name)
	assert.Equal(t, "area", groups[0].Plans[0].Group)

	_, collides := groups[0].Check()
	assert.False(t, collides)

	col, collides := groups[1].Check()
	require.True(t, collides)
	assert.Equal(t, Collision{Group: "scale", First: 0, Second: 1, Types: []string{"int"}}, col)
	assert.Contains(t, col.Error(), "members 0 and 1")
}

func TestGroupsIntegerWidthsCollide(t *testing.T) {
	p := compile(t, nil)
	s := adapter.New(p, naming.NewResolver(nil, naming.Options{SnakeCase: true}))
	c := classify.New()

	mk := func(typ string) *decl.Function {
		return &decl.Function{
			Base:   decl.Base{Name: "Set", Qualified: "Set"},
			Return: c.Classify("void"),
			Params: []decl.Param{{Name: "v", Type: c.Classify(typ)}},
		}
	}

	var plans []adapter.Plan
	for _, typ := range []string{"int", "long"} {
		plan, err := s.Function(mk(typ), nil)
		require.NoError(t, err)
		plans = append(plans, plan)
	}

	_, collides := Groups("", plans)[0].Check()
	assert.True(t, collides)
}
