package trs

import (
	"context"
	"fmt"
	"strings"
)

// termKey renders t with variable identities, for visited sets: display
// names may collide after renaming, ids never do.
func termKey(t Term) string {
	switch x := t.(type) {
	case *Var:
		return fmt.Sprintf("v%d", x.id)
	case *Fun:
		parts := make([]string, len(x.args))
		for i, a := range x.args {
			parts[i] = termKey(a)
		}
		return x.sym.String() + "(" + strings.Join(parts, ",") + ")"
	}
	return "?"
}

// Plain rewriting, used to double-check nontermination witnesses and by
// the pattern-rule machinery to verify derived rules on small
// instances before trusting them.

// RewriteStep returns every term reachable from t in exactly one
// rewrite step with the system's rules, at any position.
func (trs *Trs) RewriteStep(t Term) []Term {
	var out []Term
	for _, p := range Positions(t) {
		sub, err := SubtermAt(t, p)
		if err != nil {
			continue
		}
		for _, r := range trs.rules {
			rr := r.Rename(trs.st)
			sigma, ok := MoreGeneralThan(rr.lhs, sub)
			if !ok {
				continue
			}
			replaced, err := ReplaceAt(t, p, sigma.Apply(rr.rhs))
			if err != nil {
				continue
			}
			out = append(out, replaced)
		}
	}
	return out
}

// ReachesWithin reports whether from rewrites to a term deep-equal to
// to in at least minSteps and at most maxSteps steps. Breadth-first
// with a visited set; the search respects ctx.
func (trs *Trs) ReachesWithin(ctx context.Context, from, to Term, minSteps, maxSteps int) bool {
	type node struct {
		t     Term
		steps int
	}
	queue := []node{{from, 0}}
	seen := map[string]bool{termKey(from): true}
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		cur := queue[0]
		queue = queue[1:]
		if cur.steps >= minSteps && DeepEquals(cur.t, to) {
			return true
		}
		if cur.steps >= maxSteps {
			continue
		}
		for _, next := range trs.RewriteStep(cur.t) {
			key := termKey(next)
			if !seen[key] {
				seen[key] = true
				queue = append(queue, node{next, cur.steps + 1})
			}
		}
	}
	return false
}

// ReachesInstanceWithin is ReachesWithin up to instantiation and
// context: it succeeds when some reduct of from, within the step
// bounds, contains an instance of to.
func (trs *Trs) ReachesInstanceWithin(ctx context.Context, from, to Term, minSteps, maxSteps int) bool {
	type node struct {
		t     Term
		steps int
	}
	containsInstance := func(t Term) bool {
		for _, p := range Positions(t) {
			sub, err := SubtermAt(t, p)
			if err != nil {
				continue
			}
			if _, ok := MoreGeneralThan(RenameTerm(trs.st, to), sub); ok {
				return true
			}
		}
		return false
	}
	queue := []node{{from, 0}}
	seen := map[string]bool{termKey(from): true}
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		cur := queue[0]
		queue = queue[1:]
		if cur.steps >= minSteps && containsInstance(cur.t) {
			return true
		}
		if cur.steps >= maxSteps {
			continue
		}
		for _, next := range trs.RewriteStep(cur.t) {
			key := termKey(next)
			if !seen[key] {
				seen[key] = true
				queue = append(queue, node{next, cur.steps + 1})
			}
		}
	}
	return false
}
