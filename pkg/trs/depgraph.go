package trs

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/lvlath/go/core"
)

// DepGraph is the estimated dependency graph: a directed graph over
// dependency pairs with an edge from pair A to pair B whenever the
// tuple term on A's right-hand side might, after some rewriting of its
// arguments, become an instance of B's left-hand side.
//
// The estimation is the classic REN(CAP(.)) approximation: subterms of
// A's right-hand side with a defined root are replaced by fresh
// variables (they can rewrite to anything), every variable occurrence is
// then renamed apart, and the result is unified with a renamed copy of
// B's left-hand side. The approximation is sound: it may introduce
// extra edges but never misses a real one.
type DepGraph struct {
	pairs []*RuleTrs
	g     *core.Graph
}

func pairVertex(i int) string { return fmt.Sprintf("p%d", i) }

func pairIndex(id string) int {
	i, err := strconv.Atoi(id[1:])
	if err != nil {
		return -1
	}
	return i
}

func buildDepGraph(t *Trs, pairs []*RuleTrs) *DepGraph {
	g, _ := core.NewGraph(core.WithDirected(true), core.WithLoops())
	dg := &DepGraph{
		pairs: pairs,
		g:     g,
	}
	for i := range pairs {
		_ = dg.g.AddVertex(pairVertex(i))
	}
	for i, a := range pairs {
		approx := renCap(t, a.rhs)
		for j, b := range pairs {
			lhs := RenameTerm(t.st, b.lhs)
			if _, ok := Unify(RenameTerm(t.st, approx), lhs); ok {
				_, _ = dg.g.AddEdge(pairVertex(i), pairVertex(j), 0)
			}
		}
	}
	return dg
}

// successors returns the indices of the pairs reachable from pair v by
// one edge, in ascending order.
func (dg *DepGraph) successors(v int) []int {
	ids, err := dg.g.NeighborIDs(pairVertex(v))
	if err != nil {
		return nil
	}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if w := pairIndex(id); w >= 0 {
			out = append(out, w)
		}
	}
	sort.Ints(out)
	return out
}

// renCap replaces every subterm with a defined (non-tuple) root by a
// fresh variable and linearizes the remaining variables: each occurrence
// becomes a distinct fresh variable.
func renCap(t *Trs, term Term) Term {
	switch x := term.(type) {
	case *Var:
		return t.st.FreshVar(x.name)
	case *Fun:
		if !x.sym.tuple && t.defined[x.sym] {
			return t.st.FreshVar("cap")
		}
		args := make([]Term, len(x.args))
		for i, a := range x.args {
			args[i] = renCap(t, a)
		}
		return &Fun{sym: x.sym, args: args}
	}
	return term
}

// Pairs returns the dependency pairs the graph is built over.
func (dg *DepGraph) Pairs() []*RuleTrs { return dg.pairs }

// HasEdge reports whether the estimated graph has an edge i -> j.
func (dg *DepGraph) HasEdge(i, j int) bool {
	return dg.g.HasEdge(pairVertex(i), pairVertex(j))
}

// Graph exposes the underlying lvlath graph. Vertex p<i> stands for
// pairs[i].
func (dg *DepGraph) Graph() *core.Graph { return dg.g }

// SCCs returns the strongly connected components of the estimated
// graph, as sorted index lists, in a deterministic order. Every pair
// belongs to exactly one component. Trivial components (a single pair
// without a self-edge) are included; callers interested in cycles filter
// with NontrivialSCCs.
func (dg *DepGraph) SCCs() [][]int {
	n := len(dg.pairs)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	var out [][]int
	next := 0

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true
		for _, w := range dg.successors(v) {
			if index[w] < 0 {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] && index[w] < low[v] {
				low[v] = index[w]
			}
		}
		if low[v] == index[v] {
			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Ints(comp)
			out = append(out, comp)
		}
	}
	for v := 0; v < n; v++ {
		if index[v] < 0 {
			strongconnect(v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// NontrivialSCCs returns only the components that contain a cycle: more
// than one pair, or a single pair with a self-edge. Each one is an
// independent proof obligation; an empty result is itself a termination
// proof (no infinite chain of dependency pairs exists).
func (dg *DepGraph) NontrivialSCCs() [][]int {
	var out [][]int
	for _, comp := range dg.SCCs() {
		if len(comp) > 1 || dg.HasEdge(comp[0], comp[0]) {
			out = append(out, comp)
		}
	}
	return out
}
