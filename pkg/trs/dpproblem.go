package trs

import (
	"fmt"
)

// DpProblem is one proof obligation: a rewrite system together with the
// subset of its dependency pairs currently under consideration. Problems
// are produced by SCC decomposition of the estimated dependency graph
// and by processor decomposition, and each is provable in isolation.
type DpProblem struct {
	trs   *Trs
	pairs []*RuleTrs
	name  string

	// filt caches the argument filtering built lazily for this problem.
	filt *ArgFiltering
}

// NewDpProblem creates a proof obligation over the given pairs.
func NewDpProblem(t *Trs, pairs []*RuleTrs, name string) *DpProblem {
	return &DpProblem{trs: t, pairs: pairs, name: name}
}

// Trs returns the underlying rewrite system.
func (p *DpProblem) Trs() *Trs { return p.trs }

// Pairs returns the dependency pairs under consideration.
func (p *DpProblem) Pairs() []*RuleTrs { return p.pairs }

// Name returns the problem's display name ("scc 0", "scc 0.1", ...).
func (p *DpProblem) Name() string { return p.name }

// IsEmpty reports whether no pairs remain; an empty problem is finite.
func (p *DpProblem) IsEmpty() bool { return len(p.pairs) == 0 }

// Filtering returns the problem's argument filtering, building it on
// first use.
func (p *DpProblem) Filtering() *ArgFiltering {
	if p.filt == nil {
		p.filt = BuildArgFiltering(p)
	}
	return p.filt
}

// withPairs derives a subproblem with the given pairs and a suffixed
// name. The cached filtering is not inherited; the symbol population of
// a subproblem may differ.
func (p *DpProblem) withPairs(pairs []*RuleTrs, suffix string) *DpProblem {
	return &DpProblem{trs: p.trs, pairs: pairs, name: p.name + "." + suffix}
}

// Decompose re-runs the estimated-dependency-graph construction over
// this problem's pairs only and splits it into one subproblem per
// cyclic SCC. A problem with no cyclic SCC decomposes into nothing,
// which closes it.
func (p *DpProblem) Decompose() []*DpProblem {
	dg := buildDepGraph(p.trs, p.pairs)
	var out []*DpProblem
	for i, comp := range dg.NontrivialSCCs() {
		pairs := make([]*RuleTrs, len(comp))
		for j, idx := range comp {
			pairs[j] = p.pairs[idx]
		}
		out = append(out, p.withPairs(pairs, fmt.Sprintf("%d", i)))
	}
	return out
}

// String renders the problem as its name plus pair count.
func (p *DpProblem) String() string {
	return fmt.Sprintf("%s (%d pairs)", p.name, len(p.pairs))
}

// DpProbCollection is a flat bag of independent DP problems.
type DpProbCollection struct {
	problems []*DpProblem
}

// NewDpProbCollection wraps a problem list.
func NewDpProbCollection(problems ...*DpProblem) *DpProbCollection {
	return &DpProbCollection{problems: problems}
}

// InitialProblems builds the starting collection for a rewrite system:
// one problem per cyclic SCC of its estimated dependency graph.
func InitialProblems(t *Trs) *DpProbCollection {
	dg := t.DepGraph()
	coll := &DpProbCollection{}
	for i, comp := range dg.NontrivialSCCs() {
		pairs := make([]*RuleTrs, len(comp))
		for j, idx := range comp {
			pairs[j] = t.pairs[idx]
		}
		coll.Add(NewDpProblem(t, pairs, fmt.Sprintf("scc %d", i)))
	}
	return coll
}

// Problems returns the problem list.
func (c *DpProbCollection) Problems() []*DpProblem { return c.problems }

// IsEmpty reports whether the collection holds no problems.
func (c *DpProbCollection) IsEmpty() bool { return len(c.problems) == 0 }

// Add appends problems to the collection.
func (c *DpProbCollection) Add(problems ...*DpProblem) {
	c.problems = append(c.problems, problems...)
}
