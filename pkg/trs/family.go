package trs

import (
	"fmt"

	"github.com/lvlath/go/core"
)

// Family (reachability) graphs.
//
// The family of a term approximates which symbols can ever appear in its
// reducts: an edge runs from the root of a left-hand side to every
// symbol of the corresponding right-hand side, and the family is the
// transitive closure over those edges. If the family of s cannot cover
// the symbols of t, no rewrite sequence connects s to a term containing
// t, so unification-based search between the two can be pruned.
//
// The graphs are built lazily on first query and cached on the Trs.
// Tuple symbols are folded onto their plain counterparts; a dependency
// pair travels through the same symbols as the rule it came from.

type familyGraphs struct {
	desc *core.Graph // edges lhs-root -> rhs symbols
	asc  *core.Graph // reversed edges

	descReach map[string]map[string]bool
	ascReach  map[string]map[string]bool
}

func symbolVertex(sym *FunSymbol) string {
	return fmt.Sprintf("%s/%d", sym.name, sym.arity)
}

func (t *Trs) family() *familyGraphs {
	t.famOnce.Do(func() {
		desc, _ := core.NewGraph(core.WithDirected(true), core.WithLoops())
		asc, _ := core.NewGraph(core.WithDirected(true), core.WithLoops())
		f := &familyGraphs{
			desc:      desc,
			asc:       asc,
			descReach: make(map[string]map[string]bool),
			ascReach:  make(map[string]map[string]bool),
		}
		for _, r := range t.rules {
			from := symbolVertex(r.lhs.sym)
			_ = f.desc.AddVertex(from)
			_ = f.asc.AddVertex(from)
			for sym := range FunSymbols(r.rhs) {
				to := symbolVertex(t.st.Untuple(sym))
				_ = f.desc.AddVertex(to)
				_ = f.asc.AddVertex(to)
				_, _ = f.desc.AddEdge(from, to, 0)
				_, _ = f.asc.AddEdge(to, from, 0)
			}
		}
		t.fam = f
	})
	return t.fam
}

// reach returns the transitive closure from id in g, memoized in cache.
func familyReach(g *core.Graph, cache map[string]map[string]bool, id string) map[string]bool {
	if r, ok := cache[id]; ok {
		return r
	}
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		next, err := g.NeighborIDs(cur)
		if err != nil {
			continue
		}
		for _, n := range next {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	cache[id] = seen
	return seen
}

// Descendants returns the symbols reachable from sym in the descendant
// family graph, including sym itself.
func (t *Trs) Descendants(sym *FunSymbol) map[string]bool {
	f := t.family()
	return familyReach(f.desc, f.descReach, symbolVertex(t.st.Untuple(sym)))
}

// Ascendants returns the symbols that can reach sym, including sym
// itself.
func (t *Trs) Ascendants(sym *FunSymbol) map[string]bool {
	f := t.family()
	return familyReach(f.asc, f.ascReach, symbolVertex(t.st.Untuple(sym)))
}

// FamilyContains reports whether dst lies in the family of src: every
// function symbol of dst is reachable from some symbol of src. The test
// is an over-approximation in the forward direction (it may say yes for
// unreachable terms) and is used only to prune nontermination search,
// where a pruned branch costs completeness, never soundness.
func (t *Trs) FamilyContains(src, dst Term) bool {
	f := t.family()
	reach := make(map[string]bool)
	for sym := range FunSymbols(src) {
		id := symbolVertex(t.st.Untuple(sym))
		reach[id] = true
		for s := range familyReach(f.desc, f.descReach, id) {
			reach[s] = true
		}
	}
	for sym := range FunSymbols(dst) {
		if !reach[symbolVertex(t.st.Untuple(sym))] {
			return false
		}
	}
	return true
}

// FamilyReaches is FamilyContains in the ascendant direction: can some
// term of src's shape be produced, by backward rewriting, from dst.
func (t *Trs) FamilyReaches(src, dst Term) bool {
	f := t.family()
	reach := make(map[string]bool)
	for sym := range FunSymbols(src) {
		id := symbolVertex(t.st.Untuple(sym))
		reach[id] = true
		for s := range familyReach(f.asc, f.ascReach, id) {
			reach[s] = true
		}
	}
	for sym := range FunSymbols(dst) {
		if !reach[symbolVertex(t.st.Untuple(sym))] {
			return false
		}
	}
	return true
}
