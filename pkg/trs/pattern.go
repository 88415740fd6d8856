package trs

import (
	"fmt"
)

// Pattern terms and pattern rules: symbolic descriptions of infinite
// term families.
//
// A pattern term (u, phi, psi) denotes the family psi(phi^n(u)) for all
// n >= 0: a base term, a "pumping" substitution applied n times, and a
// "closing" substitution applied once. A pattern rule relates two
// pattern terms sharing the parameter n and is correct when every
// instance of its left family rewrites, in one or more steps, to the
// matching instance of its right family. Rewriting is closed under
// substitution, so a rule l -> r immediately yields the correct
// pattern rule (l, phi, psi) -> (r, phi, psi) for any phi and psi; the
// search below is about finding a pump phi under which the right side
// visibly reproduces a pumped copy of the left, certifying an infinite,
// non-repeating rewrite sequence.

// PatternTerm is a base term with a pumping and a closing substitution.
type PatternTerm struct {
	base  Term
	pump  *Substitution
	close *Substitution
}

// NewPatternTerm builds a pattern term. Nil substitutions mean the
// identity.
func NewPatternTerm(base Term, pump, close *Substitution) *PatternTerm {
	if pump == nil {
		pump = NewSubstitution()
	}
	if close == nil {
		close = NewSubstitution()
	}
	return &PatternTerm{base: base, pump: pump, close: close}
}

// Base returns the base term.
func (pt *PatternTerm) Base() Term { return pt.base }

// Pump returns the pumping substitution.
func (pt *PatternTerm) Pump() *Substitution { return pt.pump }

// Close returns the closing substitution.
func (pt *PatternTerm) Close() *Substitution { return pt.close }

// Instantiate materializes the n-th member of the family.
func (pt *PatternTerm) Instantiate(n int) Term {
	return pt.close.Apply(pt.pump.Power(n).Apply(pt.base))
}

// String renders the family symbolically.
func (pt *PatternTerm) String() string {
	return fmt.Sprintf("%s %s^n (%s)", pt.close, pt.pump, pt.base)
}

// PatternRule relates two pattern terms over a shared parameter n.
type PatternRule struct {
	lhs, rhs *PatternTerm
	origin   []*RuleTrs
	note     string
}

// NewPatternRule builds a pattern rule with its originating rules for
// narration.
func NewPatternRule(lhs, rhs *PatternTerm, note string, origin ...*RuleTrs) *PatternRule {
	return &PatternRule{lhs: lhs, rhs: rhs, origin: origin, note: note}
}

// Lhs returns the left pattern term.
func (pr *PatternRule) Lhs() *PatternTerm { return pr.lhs }

// Rhs returns the right pattern term.
func (pr *PatternRule) Rhs() *PatternTerm { return pr.rhs }

// Note returns how the rule was constructed.
func (pr *PatternRule) Note() string { return pr.note }

// String renders the rule symbolically.
func (pr *PatternRule) String() string {
	return pr.lhs.String() + " ->+ " + pr.rhs.String()
}

// SuitableSubstitution implements the well-formedness condition pattern
// construction relies on: a substitution is suitable when no variable's
// image contains more than one domain variable. The condition comes
// from the underlying proof calculus and is preserved exactly as a
// precondition; pumps that violate it entangle distinct variable
// lineages across iterations.
func SuitableSubstitution(sub *Substitution) bool {
	dom := sub.Domain()
	inDomain := make(map[*Var]bool, len(dom))
	for _, v := range dom {
		inDomain[v] = true
	}
	for _, v := range dom {
		shared := 0
		for _, w := range Vars(sub.Lookup(v)) {
			if inDomain[w] {
				shared++
			}
		}
		if shared > 1 {
			return false
		}
	}
	return true
}

// FromRule is the direct pattern-rule construction: l -> r with
// identity pump and close. Correct in one rewrite step.
func FromRule(r *RuleTrs) *PatternRule {
	return NewPatternRule(
		NewPatternTerm(r.Lhs(), nil, nil),
		NewPatternTerm(r.Rhs(), nil, nil),
		fmt.Sprintf("directly from %s", r), r)
}

// PumpFromSelfUnification derives pump candidates for rule l -> r by
// unifying subterms of r with a renamed copy of l (the rule chains with
// itself). The part of the unifier speaking about the copy's variables
// is mapped back onto the original variables; unsuitable candidates
// are discarded.
func PumpFromSelfUnification(st *SymbolTable, r *RuleTrs) []*Substitution {
	var out []*Substitution
	lvars := Vars(r.Lhs())
	for _, p := range Positions(r.Rhs()) {
		sub, err := SubtermAt(r.Rhs(), p)
		if err != nil || sub.IsVar() {
			continue
		}
		ren := Renaming(st, r.Lhs())
		renamed := ren.Apply(r.Lhs())
		theta, ok := Unify(sub, renamed)
		if !ok {
			continue
		}
		// Map the copy's bindings back through the renaming.
		back := NewSubstitution()
		for _, v := range lvars {
			rv, isVar := ren.Apply(v).(*Var)
			if !isVar {
				continue
			}
			back.Bind(rv, v)
		}
		pump := NewSubstitution()
		for _, v := range lvars {
			img := back.Apply(theta.Apply(v))
			if !DeepEquals(img, v) {
				pump.Bind(v, img)
			}
		}
		if pump.Size() == 0 || !SuitableSubstitution(pump) {
			continue
		}
		out = append(out, pump)
	}
	return out
}

// PumpFromSubtermMatch derives pump candidates by matching l onto
// non-variable subterms of r: when r|p is an instance sigma(l), sigma
// itself is the natural pump. Unsuitable matches are discarded.
func PumpFromSubtermMatch(r *RuleTrs) []*Substitution {
	var out []*Substitution
	for _, p := range Positions(r.Rhs()) {
		sub, err := SubtermAt(r.Rhs(), p)
		if err != nil || sub.IsVar() {
			continue
		}
		sigma, ok := MoreGeneralThan(r.Lhs(), sub)
		if !ok || sigma.Size() == 0 {
			continue
		}
		if !SuitableSubstitution(sigma) {
			continue
		}
		out = append(out, sigma)
	}
	return out
}
