package trs

import (
	"fmt"
	"strings"
)

// RuleTrs is a rewrite rule l -> r. The left-hand side is always a
// function application. Rules are immutable once built.
//
// Rules produced by unfolding additionally carry provenance: the parent
// rule they were derived from and a short description of the derivation
// step, so that a successful nontermination witness can be narrated as
// the chain of unfoldings that produced it.
type RuleTrs struct {
	lhs *Fun
	rhs Term

	// num is the rule's position in the source system, for reporting.
	// Derived rules inherit -1.
	num int

	// Unfolding provenance; nil/empty for source rules.
	parent *RuleTrs
	step   string
	depth  int
}

// NewRuleTrs creates a rule l -> r. Returns an error if either side is
// nil or the left-hand side is not a function application.
func NewRuleTrs(lhs, rhs Term, num int) (*RuleTrs, error) {
	if lhs == nil || rhs == nil {
		return nil, fmt.Errorf("NewRuleTrs: rule sides cannot be nil")
	}
	lf, ok := lhs.(*Fun)
	if !ok {
		return nil, fmt.Errorf("NewRuleTrs: left-hand side %s is a variable", lhs)
	}
	return &RuleTrs{lhs: lf, rhs: rhs, num: num}, nil
}

// MustRule is NewRuleTrs that panics on error. Intended for tests.
func MustRule(lhs, rhs Term, num int) *RuleTrs {
	r, err := NewRuleTrs(lhs, rhs, num)
	if err != nil {
		panic(err)
	}
	return r
}

// Lhs returns the left-hand side.
func (r *RuleTrs) Lhs() *Fun { return r.lhs }

// Rhs returns the right-hand side.
func (r *RuleTrs) Rhs() Term { return r.rhs }

// Number returns the rule's source position, or -1 for derived rules.
func (r *RuleTrs) Number() int { return r.num }

// Parent returns the rule this rule was unfolded from, or nil.
func (r *RuleTrs) Parent() *RuleTrs { return r.parent }

// UnfoldingDepth returns how many unfolding steps produced this rule.
func (r *RuleTrs) UnfoldingDepth() int { return r.depth }

// derived builds an unfolded child of r with the given sides and step
// description. The child keeps the whole ancestry chain through parent.
func (r *RuleTrs) derived(lhs *Fun, rhs Term, step string) *RuleTrs {
	return &RuleTrs{lhs: lhs, rhs: rhs, num: -1, parent: r, step: step, depth: r.depth + 1}
}

// IsGeneralized reports whether the rule has a right-hand-side variable
// that does not occur on the left. Such a rule immediately yields
// nontermination: the foreign variable can be instantiated with the
// left-hand side itself.
func (r *RuleTrs) IsGeneralized() bool {
	inLhs := make(map[*Var]bool)
	for _, v := range Vars(r.lhs) {
		inLhs[v] = true
	}
	for _, v := range Vars(r.rhs) {
		if !inLhs[v] {
			return true
		}
	}
	return false
}

// Rename returns a copy of the rule with all variables consistently
// replaced by fresh ones. Provenance is preserved.
func (r *RuleTrs) Rename(st *SymbolTable) *RuleTrs {
	ren := Renaming(st, r.lhs, r.rhs)
	out := &RuleTrs{num: r.num, parent: r.parent, step: r.step, depth: r.depth}
	out.lhs = ren.Apply(r.lhs).(*Fun)
	out.rhs = ren.Apply(r.rhs)
	return out
}

// Substitute returns the rule instance under sub. Provenance is
// preserved. The left-hand side stays an application: substitutions map
// variables to terms, never the root.
func (r *RuleTrs) Substitute(sub *Substitution) *RuleTrs {
	out := &RuleTrs{num: r.num, parent: r.parent, step: r.step, depth: r.depth}
	out.lhs = sub.Apply(r.lhs).(*Fun)
	out.rhs = sub.Apply(r.rhs)
	return out
}

// DeepCopy copies the rule through the shared copies map, preserving
// aliasing between the two sides and across rules copied with the same
// map.
func (r *RuleTrs) DeepCopy(copies map[Term]Term) *RuleTrs {
	out := &RuleTrs{num: r.num, parent: r.parent, step: r.step, depth: r.depth}
	out.lhs = DeepCopy(r.lhs, copies).(*Fun)
	out.rhs = DeepCopy(r.rhs, copies)
	return out
}

// String renders the rule as "l -> r".
func (r *RuleTrs) String() string {
	return r.lhs.String() + " -> " + r.rhs.String()
}

// Ancestry returns the derivation chain of an unfolded rule, oldest
// first: each line is a rule with the step that produced the next one.
func (r *RuleTrs) Ancestry() []string {
	var chain []*RuleTrs
	for cur := r; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	out := make([]string, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		cur := chain[i]
		line := cur.String()
		if cur.step != "" {
			line += "  [" + cur.step + "]"
		} else if cur.num >= 0 {
			line += fmt.Sprintf("  [rule %d]", cur.num)
		}
		out = append(out, line)
	}
	return out
}

// rulesString renders a rule list one per line, for traces and tests.
func rulesString(rules []*RuleTrs) string {
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = r.String()
	}
	return strings.Join(parts, "\n")
}
