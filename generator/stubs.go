package generator

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/ardanlabs/hostbind/bind"
	"github.com/ardanlabs/hostbind/decl"
	"github.com/ardanlabs/hostbind/naming"
)

const indentUnit = "    "

// Stubs writes a typed interface stub listing every published signature.
// Submodules become proxy classes, the way stub files describe extension
// submodules.
type Stubs struct {
	module string
}

func NewStubs(module string) *Stubs {
	return &Stubs{module: module}
}

func (s *Stubs) Name() string { return "stubs" }

func (s *Stubs) Render(res *bind.Result) (map[string]string, error) {
	header, err := s.header(res)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	writeScope(&buf, res.Root, 0)

	return map[string]string{s.module + ".pyi": buf.String()}, nil
}

type boxedStub struct {
	Name string
	Host string
	Zero string
}

func (s *Stubs) header(res *bind.Result) (string, error) {
	tmpl := `# Stubs for {{.Module}}. Generated, do not edit.
{{- if .Doc}}
"""{{.Doc}}"""
{{- end}}

from typing import Any, Callable, Dict, List, Optional, Sequence, Set, Tuple, Union, overload
import enum

from numpy import ndarray

{{range .Boxed}}
class {{.Name}}:
    value: {{.Host}}
    def __init__(self, value: {{.Host}} = {{.Zero}}) -> None:
        pass

{{end}}
`

	t, err := template.New("stubs").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var boxed []boxedStub
	for _, name := range res.BoxedTypes {
		host := boxedHost(name)
		boxed = append(boxed, boxedStub{Name: name, Host: host, Zero: zeroValue(host)})
	}

	var buf bytes.Buffer
	err = t.Execute(&buf, map[string]any{
		"Module": s.module,
		"Doc":    res.Root.Doc,
		"Boxed":  boxed,
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

func writeScope(buf *bytes.Buffer, s *bind.Scope, depth int) {
	ind := strings.Repeat(indentUnit, depth)

	if len(s.Items) == 0 {
		if depth > 0 {
			fmt.Fprintf(buf, "%spass\n", ind)
		}
		return
	}

	for _, it := range s.Items {
		switch it.Kind {
		case bind.ItemModule, bind.ItemClass:
			child, ok := s.Scope(it.Name)
			if !ok {
				continue
			}
			writeClass(buf, child, depth)

		case bind.ItemEnum:
			if e, ok := findEnum(s, it.Name); ok {
				writeEnum(buf, e, depth)
			}

		case bind.ItemFunction:
			if g, ok := s.Group(it.Name); ok {
				for _, p := range g.Plans {
					writeFunction(buf, p.Decl, p.Name, methodSignature(p.Signature(), p.Method && !p.Static), g.Overloaded(), p.Static, depth)
				}
			}

		case bind.ItemField:
			if f, ok := findField(s, it.Name); ok {
				writeField(buf, f, depth)
			}
		}
	}
}

func writeClass(buf *bytes.Buffer, s *bind.Scope, depth int) {
	ind := strings.Repeat(indentUnit, depth)

	if s.Kind == bind.ScopeModule {
		fmt.Fprintf(buf, "\n%sclass %s:  # submodule\n", ind, s.Name)
		writeDoc(buf, s.Doc, depth+1)
		writeScope(buf, s, depth+1)
		return
	}

	var bases []string
	if s.Class != nil {
		for _, b := range s.Class.Bases {
			bases = append(bases, strings.ReplaceAll(b, "::", "."))
		}
	}

	if len(bases) > 0 {
		fmt.Fprintf(buf, "\n%sclass %s(%s):\n", ind, s.Name, strings.Join(bases, ", "))
	} else {
		fmt.Fprintf(buf, "\n%sclass %s:\n", ind, s.Name)
	}

	doc := s.Doc
	if doc == "" && s.Class != nil && s.Class.Decl != nil {
		doc = s.Class.Decl.Doc
	}
	writeDoc(buf, doc, depth+1)
	writeScope(buf, s, depth+1)
}

func writeEnum(buf *bytes.Buffer, e bind.Enum, depth int) {
	ind := strings.Repeat(indentUnit, depth)

	fmt.Fprintf(buf, "\n%sclass %s(enum.Enum):\n", ind, e.Name)
	writeDoc(buf, e.Doc, depth+1)

	if len(e.Values) == 0 {
		fmt.Fprintf(buf, "%s%spass\n", ind, indentUnit)
		return
	}

	for _, v := range e.Values {
		if v.Doc != "" {
			fmt.Fprintf(buf, "%s%s# %s\n", ind, indentUnit, v.Doc)
		}
		if v.Value != "" {
			fmt.Fprintf(buf, "%s%s%s = enum.auto()  # (= %s)\n", ind, indentUnit, v.Name, v.Value)
			continue
		}
		fmt.Fprintf(buf, "%s%s%s = enum.auto()\n", ind, indentUnit, v.Name)
	}
}

func writeFunction(buf *bytes.Buffer, fn *decl.Function, name, signature string, overloaded, static bool, depth int) {
	ind := strings.Repeat(indentUnit, depth)

	if overloaded {
		fmt.Fprintf(buf, "%s@overload\n", ind)
	}
	if static {
		fmt.Fprintf(buf, "%s@staticmethod\n", ind)
	}
	fmt.Fprintf(buf, "%sdef %s%s:\n", ind, name, signature)

	if fn != nil {
		writeDoc(buf, fn.Doc, depth+1)
	}
	fmt.Fprintf(buf, "%s%spass\n", ind, indentUnit)
}

func writeField(buf *bytes.Buffer, f fieldStub, depth int) {
	ind := strings.Repeat(indentUnit, depth)

	if f.doc != "" {
		fmt.Fprintf(buf, "%s# %s\n", ind, strings.ReplaceAll(f.doc, "\n", " "))
	}

	line := fmt.Sprintf("%s%s: %s", ind, f.name, f.hostType)
	switch {
	case f.readonly:
		line += "  # readonly"
	case f.length > 0:
		line += fmt.Sprintf("  # length %d", f.length)
	}
	buf.WriteString(line + "\n")
}

func writeDoc(buf *bytes.Buffer, doc string, depth int) {
	if doc == "" {
		return
	}
	ind := strings.Repeat(indentUnit, depth)

	lines := strings.Split(doc, "\n")
	if len(lines) == 1 {
		fmt.Fprintf(buf, "%s\"\"\"%s\"\"\"\n", ind, doc)
		return
	}

	fmt.Fprintf(buf, "%s\"\"\"%s\n", ind, lines[0])
	for _, l := range lines[1:] {
		fmt.Fprintf(buf, "%s%s\n", ind, l)
	}
	fmt.Fprintf(buf, "%s\"\"\"\n", ind)
}

// methodSignature inserts self into a "(a: int) -> None" signature.
func methodSignature(sig string, method bool) string {
	if !method {
		return sig
	}
	if strings.HasPrefix(sig, "()") {
		return "(self" + sig[1:]
	}

	return "(self, " + sig[1:]
}

type fieldStub struct {
	name     string
	hostType string
	doc      string
	readonly bool
	length   int
}

func findField(s *bind.Scope, name string) (fieldStub, bool) {
	for _, f := range s.Fields {
		if f.Name != name {
			continue
		}

		fs := fieldStub{name: f.Name, hostType: f.HostType, readonly: f.Readonly, length: f.Length}
		if f.Decl != nil {
			fs.doc = f.Decl.Doc
		}
		return fs, true
	}

	return fieldStub{}, false
}

func findEnum(s *bind.Scope, name string) (bind.Enum, bool) {
	for _, e := range s.Enums {
		if e.Name == name {
			return e, true
		}
	}

	return bind.Enum{}, false
}

// boxedHost recovers the host type a boxed type wraps.
func boxedHost(boxed string) string {
	for k := decl.ScalarBool; k <= decl.ScalarString; k++ {
		if naming.BoxedName(k.Spelling()) == boxed {
			return k.Host()
		}
	}

	return "Any"
}

func zeroValue(host string) string {
	switch host {
	case "int":
		return "0"
	case "float":
		return "0.0"
	case "bool":
		return "False"
	case "str":
		return `""`
	}

	return "None"
}
