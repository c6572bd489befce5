package naming

import "github.com/ardanlabs/hostbind/decl"

// MergeNamespaces concatenates the forests of several translation units
// and merges namespaces that share a qualified name into one node. The
// first non-empty documentation wins and children keep encounter order.
// Anonymous namespaces are never merged. Input nodes are not modified.
func MergeNamespaces(forests ...[]decl.Node) []decl.Node {
	var all []decl.Node
	for _, f := range forests {
		all = append(all, f...)
	}

	return mergeLevel(all)
}

func mergeLevel(nodes []decl.Node) []decl.Node {
	var (
		out      []decl.Node
		merged   = make(map[string]*decl.Namespace)
		children = make(map[*decl.Namespace][]decl.Node)
	)

	for _, n := range nodes {
		ns, ok := n.(*decl.Namespace)
		if !ok || ns.Anonymous() {
			out = append(out, n)
			continue
		}

		key := ns.Qualified
		if key == "" {
			key = ns.Name
		}

		m, seen := merged[key]
		switch {
		case !seen:
			m = &decl.Namespace{Base: ns.Base}
			merged[key] = m
			out = append(out, m)
		case m.Doc == "":
			m.Doc = ns.Doc
		}
		children[m] = append(children[m], ns.Children...)
	}

	for m, kids := range children {
		m.Children = mergeLevel(kids)
	}

	return out
}

// Namespaces lists the qualified names of every named namespace in nodes.
func Namespaces(nodes []decl.Node) []string {
	var out []string
	decl.Walk(nodes, func(n decl.Node, _ []decl.Node) bool {
		if ns, ok := n.(*decl.Namespace); ok {
			if ns.Anonymous() {
				return false
			}
			out = append(out, ns.Qualified)
		}
		return n.Kind() == decl.KindNamespace
	})

	return out
}
