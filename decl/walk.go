package decl

// Children returns the ordered children of a scope node, nil for leaves.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Namespace:
		return v.Children
	case *Class:
		return v.Children
	case *Enum:
		out := make([]Node, len(v.Values))
		for i, ev := range v.Values {
			out[i] = ev
		}
		return out
	}
	return nil
}

// WalkFunc is called for every node in pre-order. parents lists the
// enclosing scopes, outermost first. Returning false skips the node's
// children.
type WalkFunc func(n Node, parents []Node) bool

// Walk visits nodes and their descendants in source order.
func Walk(nodes []Node, fn WalkFunc) {
	walk(nodes, nil, fn)
}

func walk(nodes []Node, parents []Node, fn WalkFunc) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !fn(n, parents) {
			continue
		}
		if kids := Children(n); len(kids) > 0 {
			walk(kids, append(parents[:len(parents):len(parents)], n), fn)
		}
	}
}

// CloneFunction returns a deep copy of f.
func CloneFunction(f *Function) *Function {
	c := *f
	c.Base = cloneBase(f.Base)
	c.Params = make([]Param, len(f.Params))
	for i, p := range f.Params {
		p.Type = p.Type.Clone()
		c.Params[i] = p
	}
	c.Return = f.Return.Clone()
	c.TemplateParams = append([]string(nil), f.TemplateParams...)
	if f.TemplateArg != nil {
		t := f.TemplateArg.Clone()
		c.TemplateArg = &t
	}
	return &c
}

// CloneClass returns a deep copy of c and all of its members.
func CloneClass(c *Class) *Class {
	out := *c
	out.Base = cloneBase(c.Base)
	out.Bases = append([]string(nil), c.Bases...)
	out.TemplateParams = append([]string(nil), c.TemplateParams...)
	out.Children = make([]Node, len(c.Children))
	for i, ch := range c.Children {
		out.Children[i] = CloneNode(ch)
	}
	if c.TemplateArg != nil {
		t := c.TemplateArg.Clone()
		out.TemplateArg = &t
	}
	return &out
}

// CloneNode deep copies any declaration.
func CloneNode(n Node) Node {
	switch v := n.(type) {
	case *Function:
		return CloneFunction(v)
	case *Class:
		return CloneClass(v)
	case *Field:
		f := *v
		f.Base = cloneBase(v.Base)
		f.Type = v.Type.Clone()
		return &f
	case *Enum:
		e := *v
		e.Base = cloneBase(v.Base)
		e.Values = make([]*EnumValue, len(v.Values))
		for i, ev := range v.Values {
			c := *ev
			c.Base = cloneBase(ev.Base)
			e.Values[i] = &c
		}
		return &e
	case *EnumValue:
		c := *v
		c.Base = cloneBase(v.Base)
		return &c
	case *Namespace:
		ns := *v
		ns.Base = cloneBase(v.Base)
		ns.Children = make([]Node, len(v.Children))
		for i, ch := range v.Children {
			ns.Children[i] = CloneNode(ch)
		}
		return &ns
	}
	return n
}

func cloneBase(b Base) Base {
	b.Directives = append([]string(nil), b.Directives...)
	return b
}
