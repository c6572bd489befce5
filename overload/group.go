package overload

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/hostbind/adapter"
)

// Group is the set of callables of one scope sharing a host name. Plans
// keep source order.
type Group struct {
	ID    string         `yaml:"id"`
	Name  string         `yaml:"name"`
	Plans []adapter.Plan `yaml:"plans"`
}

// Overloaded reports whether the group has more than one member.
func (g Group) Overloaded() bool { return len(g.Plans) > 1 }

// Collision describes two members of a group whose exposed parameter type
// tuples are identical.
type Collision struct {
	Group  string
	First  int
	Second int
	Types  []string
}

func (c Collision) Error() string {
	return fmt.Sprintf("overload %s: members %d and %d both expose (%s)", c.Group, c.First, c.Second, strings.Join(c.Types, ", "))
}

// Groups partitions the synthesized plans of one scope by host name. Groups
// are ordered by their first member. scope is the host path of the scope,
// used to build group identifiers.
func Groups(scope string, plans []adapter.Plan) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, p := range plans {
		i, ok := index[p.Name]
		if !ok {
			i = len(groups)
			index[p.Name] = i
			groups = append(groups, Group{ID: groupID(scope, p.Name), Name: p.Name})
		}

		p.Group = groups[i].ID
		groups[i].Plans = append(groups[i].Plans, p)
	}

	return groups
}

func groupID(scope, name string) string {
	if scope == "" {
		return name
	}

	return scope + "." + name
}

// Check returns the first pair of members whose exposed parameter type
// tuples collide.
func (g Group) Check() (Collision, bool) {
	seen := make(map[string]int, len(g.Plans))

	for i, p := range g.Plans {
		key := strings.Join(p.ParamTypes(), "\x00")
		if j, ok := seen[key]; ok {
			return Collision{Group: g.ID, First: j, Second: i, Types: p.ParamTypes()}, true
		}
		seen[key] = i
	}

	return Collision{}, false
}
