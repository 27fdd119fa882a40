package resolve

import (
	"sort"

	"github.com/FocuswithJustin/synopsis/core/textnorm"
)

// Graph is an undirected synonym graph over normalized tokens. It is
// populated by NewGraph and read-only afterwards, so a single Graph may be
// shared by concurrent resolvers.
type Graph struct {
	adj map[string]map[string]struct{}
}

// NewGraph builds a graph from synonym pairs. Both sides are normalized;
// every pair is registered in both directions. Pairs whose sides normalize
// to the empty string or to the same token are ignored.
func NewGraph(pairs [][2]string) *Graph {
	g := &Graph{adj: make(map[string]map[string]struct{})}
	for _, p := range pairs {
		g.add(textnorm.Normalize(p[0]), textnorm.Normalize(p[1]))
	}
	return g
}

func (g *Graph) add(a, b string) {
	if a == "" || b == "" || a == b {
		return
	}
	g.link(a, b)
	g.link(b, a)
}

func (g *Graph) link(from, to string) {
	set, ok := g.adj[from]
	if !ok {
		set = make(map[string]struct{})
		g.adj[from] = set
	}
	set[to] = struct{}{}
}

// Neighbors returns the direct synonyms of a normalized token in sorted
// order.
func (g *Graph) Neighbors(token string) []string {
	if g == nil {
		return nil
	}
	set := g.adj[token]
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Linked reports whether a and b are direct synonyms.
func (g *Graph) Linked(a, b string) bool {
	if g == nil {
		return false
	}
	_, ok := g.adj[a][b]
	return ok
}

// Expand returns the breadth-first closure of tokens over the graph. Seeds
// come first in their given order, followed by discovered synonyms in the
// order they are reached. Empty tokens are dropped and duplicates removed.
func (g *Graph) Expand(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, t := range tokens {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if g == nil {
		return out
	}
	for i := 0; i < len(out); i++ {
		for _, n := range g.Neighbors(out[i]) {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// Len returns the number of tokens with at least one synonym.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.adj)
}
