package resolve

import (
	"sort"

	"github.com/cartforge/cartforge"
	"github.com/cartforge/cartforge/version"
)

// Graph is the acyclic multimap the resolver builds up incrementally:
// one Node per project, edges from parent to child, and the set of
// projects the top-level manifest named directly (roots).
type Graph struct {
	nodes map[cartforge.Identifier]*Node
	order []cartforge.Identifier // insertion order, for deterministic output before the final sort
	edges map[cartforge.Identifier]map[cartforge.Identifier]bool
	roots map[cartforge.Identifier]bool
}

func newGraph() *Graph {
	return &Graph{
		nodes: make(map[cartforge.Identifier]*Node),
		edges: make(map[cartforge.Identifier]map[cartforge.Identifier]bool),
		roots: make(map[cartforge.Identifier]bool),
	}
}

// clone returns a deep copy so a failed candidate attempt (see resolver.go)
// never corrupts the graph a sibling frame is still trying against.
func (g *Graph) clone() *Graph {
	c := newGraph()
	for _, id := range g.order {
		n := *g.nodes[id]
		c.nodes[id] = &n
		c.order = append(c.order, id)
	}
	for parent, children := range g.edges {
		cc := make(map[cartforge.Identifier]bool, len(children))
		for child := range children {
			cc[child] = true
		}
		c.edges[parent] = cc
	}
	for id := range g.roots {
		c.roots[id] = true
	}
	return c
}

// addNode attaches node to the graph, either as a new project or merged
// into an existing one. It reports whether a genuinely new project was
// inserted (the caller must then discover and
// enqueue its dependencies) and fails with a *cartforge.Error of kind
// IncompatibleRequirements or RequiredVersionNotFound — both recoverable —
// if the node cannot be reconciled with what's already in the graph.
func (g *Graph) addNode(node *Node, parent *cartforge.Identifier) (inserted bool, err error) {
	existing, has := g.nodes[node.Project]
	if has {
		merged, ok := version.Intersect(existing.CurrentSpecifier, node.CurrentSpecifier)
		if !ok {
			return false, cartforge.New(cartforge.IncompatibleRequirements,
				"%s: %s is incompatible with %s", node.Project, existing.CurrentSpecifier, node.CurrentSpecifier)
		}
		if !merged.Satisfies(existing.Pin) {
			return false, cartforge.New(cartforge.RequiredVersionNotFound,
				"%s: no version satisfies %s", node.Project, merged)
		}
		existing.CurrentSpecifier = merged
		g.addEdge(parent, node.Project)
		return false, nil
	}

	g.nodes[node.Project] = node
	g.order = append(g.order, node.Project)
	g.addEdge(parent, node.Project)
	return true, nil
}

func (g *Graph) addEdge(parent *cartforge.Identifier, child cartforge.Identifier) {
	if parent == nil {
		g.roots[child] = true
		return
	}
	if g.edges[*parent] == nil {
		g.edges[*parent] = make(map[cartforge.Identifier]bool)
	}
	g.edges[*parent][child] = true
}

func (g *Graph) dependsOn(parent, child cartforge.Identifier) bool {
	return g.edges[parent][child]
}

// BuildOrder produces a topological order of the graph: every node precedes
// every node that depends on it. Ties are broken by ascending direct
// dependency count, then ascending project name.
func (g *Graph) BuildOrder() []cartforge.Identifier {
	ids := append([]cartforge.Identifier{}, g.order...)
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if g.dependsOn(b, a) {
			return true
		}
		if g.dependsOn(a, b) {
			return false
		}
		if da, db := len(g.edges[a]), len(g.edges[b]); da != db {
			return da < db
		}
		return a.Name() < b.Name()
	})
	return ids
}
