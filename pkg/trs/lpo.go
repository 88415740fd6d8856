package trs

import (
	"context"
)

// Lexicographic path order.
//
// The processor grows a symbol precedence (LexOrder) by constraint
// propagation while orienting: comparing two applications with distinct
// roots tentatively adds f > g, and the addition is kept only if the
// rest of the comparison goes through. Contradictory additions (an
// existing g > f) reject the branch. The search is greedy with local
// backtracking over precedence extensions; it is sound and fast rather
// than complete.

// tryOrder runs fn against a copy of ord and commits the copy's
// precedence facts only if fn succeeds.
func tryOrder(ord *LexOrder, fn func(*LexOrder) bool) bool {
	c := ord.Clone()
	if fn(c) {
		*ord = *c
		return true
	}
	return false
}

// lpoGE holds if the terms are equal or lpoGT holds, possibly extending
// ord.
func lpoGE(s, t Term, ord *LexOrder) bool {
	if DeepEquals(s, t) {
		return true
	}
	return lpoGT(s, t, ord)
}

// lpoGT decides s >lpo t under the (extensible) precedence ord.
func lpoGT(s, t Term, ord *LexOrder) bool {
	if tv, ok := t.(*Var); ok {
		// s > x iff x occurs properly in s.
		return !s.IsVar() && VarOccurrences(s, tv) > 0
	}
	sf, ok := s.(*Fun)
	if !ok {
		return false
	}
	tf := t.(*Fun)

	// Subterm case: some argument of s dominates t.
	for _, a := range sf.args {
		if tryOrder(ord, func(c *LexOrder) bool { return lpoGE(a, t, c) }) {
			return true
		}
	}

	if sf.sym == tf.sym {
		// Lexicographic case on the first disagreeing argument.
		return tryOrder(ord, func(c *LexOrder) bool {
			i := 0
			for ; i < len(sf.args); i++ {
				if !DeepEquals(sf.args[i], tf.args[i]) {
					break
				}
			}
			if i == len(sf.args) {
				return false
			}
			if !lpoGT(sf.args[i], tf.args[i], c) {
				return false
			}
			for j := i + 1; j < len(tf.args); j++ {
				if !lpoGT(s, tf.args[j], c) {
					return false
				}
			}
			return true
		})
	}

	// Precedence case: f > g and s dominates every argument of t.
	return tryOrder(ord, func(c *LexOrder) bool {
		if !c.Add(sf.sym, tf.sym) {
			return false
		}
		for _, b := range tf.args {
			if !lpoGT(s, b, c) {
				return false
			}
		}
		return true
	})
}

type lpoOrienter struct{}

// NewLpoProcessor returns the lexicographic-path-order processor.
func NewLpoProcessor() Processor {
	return &orderProcessor{o: lpoOrienter{}}
}

func (lpoOrienter) name() string { return "lpo" }

func (lpoOrienter) orient(ctx context.Context, rules, pairs []termPair) ([]bool, bool, string) {
	ord := NewLexOrder()
	for _, r := range rules {
		select {
		case <-ctx.Done():
			return nil, false, "cancelled"
		default:
		}
		if !lpoGE(r.l, r.r, ord) {
			return nil, false, "a rule cannot be weakly oriented"
		}
	}
	strict := make([]bool, len(pairs))
	any := false
	for i, p := range pairs {
		select {
		case <-ctx.Done():
			return nil, false, "cancelled"
		default:
		}
		if tryOrder(ord, func(c *LexOrder) bool { return lpoGT(p.l, p.r, c) }) {
			strict[i] = true
			any = true
			continue
		}
		if !lpoGE(p.l, p.r, ord) {
			return nil, false, "a pair cannot be weakly oriented"
		}
	}
	if !any {
		return nil, false, "no pair strictly decreases"
	}
	return strict, true, "lpo with precedence " + ord.String()
}
