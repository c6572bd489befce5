package adapter

import (
	"github.com/ardanlabs/hostbind/classify"
	"github.com/ardanlabs/hostbind/decl"
	"github.com/ardanlabs/hostbind/naming"
	"github.com/ardanlabs/hostbind/policy"
)

// FieldPlan exposes one data member. View marks a numeric array member
// exposed as an array view sharing the object's storage.
type FieldPlan struct {
	Decl *decl.Field `yaml:"-"`

	Name     string `yaml:"name"`
	HostType string `yaml:"type"`
	Readonly bool   `yaml:"readonly,omitempty"`
	Static   bool   `yaml:"static,omitempty"`
	View     bool   `yaml:"view,omitempty"`
	Length   int    `yaml:"length,omitempty"`
}

// ClassPlan carries the class level flags a renderer needs.
type ClassPlan struct {
	Decl *decl.Class `yaml:"-"`

	Name                string   `yaml:"name"`
	CppName             string   `yaml:"cpp_name"`
	Bases               []string `yaml:"bases,omitempty"`
	DynamicAttributes   bool     `yaml:"dynamic_attributes,omitempty"`
	ExposesProtected    bool     `yaml:"exposes_protected,omitempty"`
	OverridableFromHost bool     `yaml:"overridable_from_host,omitempty"`
}

// Field plans a data member of owner. ok is false when the member is
// silently dropped: arrays the host cannot view. Other unmappable members
// are reported.
func (s *Synthesizer) Field(f *decl.Field, owner *decl.Class) (fp FieldPlan, ok bool, err error) {
	fp = FieldPlan{
		Decl:     f,
		Name:     naming.Identifier(f.Name, s.p.Config().SnakeCase),
		Static:   f.Static,
		Readonly: f.Type.Const || s.p.Match(policy.MemberReadonly, f.Name),
	}

	if f.Type.Kind == decl.TypeFixedArray {
		if !classify.IsNumericArray(f.Type) || f.Type.Size == 0 {
			return FieldPlan{}, false, nil
		}
		if owner == nil || !s.p.Match(policy.MemberNumericArrays, owner.Name) {
			return FieldPlan{}, false, nil
		}
		fp.View = true
		fp.HostType = "ndarray"
		fp.Length = f.Type.Size

		return fp, true, nil
	}

	if f.Type.Kind == decl.TypeUnmappable || !classify.IsPassthrough(f.Type) {
		return FieldPlan{}, false, unmappable(&f.Base, "", f.Type, "no adapter for member "+classify.Describe(f.Type))
	}
	fp.HostType = s.r.HostType(f.Type)

	return fp, true, nil
}

// Class plans the class level flags of c.
func (s *Synthesizer) Class(c *decl.Class) ClassPlan {
	cp := ClassPlan{
		Decl:                c,
		Name:                c.Name,
		CppName:             c.Qualified,
		Bases:               append([]string(nil), c.Bases...),
		DynamicAttributes:   s.p.Match(policy.DynamicAttributes, c.Name),
		ExposesProtected:    s.p.Match(policy.ExposeProtected, c.Name),
		OverridableFromHost: s.p.Match(policy.OverridableVirtual, c.Name),
	}
	if c.CppName != "" {
		cp.CppName = c.CppName
	}

	return cp
}
