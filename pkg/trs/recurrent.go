package trs

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// maxPumpShift bounds how many pump applications the searcher tries
// when looking for a pumped copy of a left-hand side inside a
// right-hand side.
const maxPumpShift = 3

// PatternSearcher finds nontermination beyond what unfolding-based loop
// detection sees. Two techniques run over the rules of a problem's
// component:
//
//   - Pumped self-reproduction: a rule (alone or composed with a second
//     rule) whose right-hand side reproduces a pumped copy of its own
//     left-hand side. Rewriting is closed under substitution, so
//     l ->+ C[phi^k(l)] chains through phi^k(l) ->+ C'[phi^2k(l)] and so
//     on forever, each round one pump deeper.
//
//   - Recurrent pairs by context decomposition: a stepper rule
//     S[D[x], y] -> S[x, D[y]] drains one counter into the other a
//     layer at a time, and a duplicator rule
//     S[u, y] -> S[D^a[y], D^b[y]] refills both counters from the
//     second once the first reaches the ground base u. From the closed
//     goal S[u, u] the counter value more than doubles every round, so
//     the derivation runs through pairwise distinct ground terms none
//     of which is an instance of an earlier one: nontermination with no
//     loop anywhere in it.
type PatternSearcher struct {
	trs *Trs
	log *logrus.Logger
}

// RecurrentPair records two rules whose composition self-reproduces
// under a pump.
type RecurrentPair struct {
	First  *RuleTrs
	Second *RuleTrs
	Pump   *Substitution
}

// NewPatternSearcher creates a non-looping nontermination searcher.
func NewPatternSearcher(t *Trs, log *logrus.Logger) *PatternSearcher {
	if log == nil {
		log = discardLogger()
	}
	return &PatternSearcher{trs: t, log: log}
}

// FindNonLoop searches the problem's component for pattern-rule
// nontermination. It tries every candidate rule on its own, then every
// ordered pair of rules as a recurrent pair, by context decomposition
// first and by composition second. Returns a verified witness or false.
func (ps *PatternSearcher) FindNonLoop(ctx context.Context, prob *DpProblem) (*Witness, bool) {
	rules := ps.candidateRules(prob)
	for _, r := range rules {
		if ctx.Err() != nil {
			return nil, false
		}
		if w, ok := ps.checkRule(ctx, r, nil); ok {
			return w, true
		}
	}
	for _, r1 := range rules {
		for _, r2 := range rules {
			if ctx.Err() != nil {
				return nil, false
			}
			if r1 != r2 {
				if w, ok := ps.checkDecomposition(ctx, r1, r2); ok {
					return w, true
				}
			}
			if w, ok := ps.checkComposition(ctx, r1, r2); ok {
				return w, true
			}
		}
	}
	return nil, false
}

// candidateRules selects the rules rooted at the problem's defined
// symbols. The component's pairs name the symbols whose recursion is
// under scrutiny; rules rooted elsewhere cannot start its chains.
func (ps *PatternSearcher) candidateRules(prob *DpProblem) []*RuleTrs {
	roots := make(map[*FunSymbol]bool, len(prob.Pairs()))
	for _, p := range prob.Pairs() {
		roots[ps.trs.st.Untuple(p.Lhs().sym)] = true
	}
	var out []*RuleTrs
	for _, r := range ps.trs.Rules() {
		if roots[r.Lhs().sym] {
			out = append(out, r)
		}
	}
	return out
}

// checkRule tries every suitable pump candidate for the rule and looks
// for a pumped copy of the left-hand side inside the right-hand side.
// pair, when non-nil, records that the rule was derived by composing
// the two rules of a recurrent pair.
func (ps *PatternSearcher) checkRule(ctx context.Context, r *RuleTrs, pair *RecurrentPair) (*Witness, bool) {
	pumps := PumpFromSelfUnification(ps.trs.st, r)
	pumps = append(pumps, PumpFromSubtermMatch(r)...)
	for _, pump := range pumps {
		if ctx.Err() != nil {
			return nil, false
		}
		if w, ok := ps.checkPump(ctx, r, pump, pair); ok {
			return w, true
		}
	}
	return nil, false
}

// checkPump looks for a position p and shift k >= 1 with
// r.rhs|p = pump^k(r.lhs). On a hit the witness is verified by bounded
// rewriting before being reported.
func (ps *PatternSearcher) checkPump(ctx context.Context, r *RuleTrs, pump *Substitution, pair *RecurrentPair) (*Witness, bool) {
	for k := 1; k <= maxPumpShift; k++ {
		target := pump.Power(k).Apply(r.Lhs())
		for _, p := range Positions(r.Rhs()) {
			sub, err := SubtermAt(r.Rhs(), p)
			if err != nil || sub.IsVar() {
				continue
			}
			if !DeepEquals(sub, target) {
				continue
			}
			if !ps.verify(ctx, r, pair) {
				continue
			}
			pr := NewPatternRule(
				NewPatternTerm(r.Lhs(), pump, nil),
				NewPatternTerm(r.Rhs(), pump, nil),
				"right side reproduces the pumped left side", r)
			w := &Witness{
				Kind:    WitnessPattern,
				Start:   r.Lhs(),
				Rule:    r,
				Pattern: pr,
			}
			w.Narrative = append(w.Narrative, r.Ancestry()...)
			if pair != nil {
				w.Narrative = append(w.Narrative,
					"recurrent pair of "+pair.First.String(),
					"and "+pair.Second.String())
			}
			w.Narrative = append(w.Narrative,
				"pattern rule "+pr.String(),
				"with pump "+pump.String(),
				"each iteration reproduces the left side pumped once more,",
				"so "+r.Lhs().String()+" starts an infinite rewrite sequence")
			return w, true
		}
	}
	return nil, false
}

// verify replays the claim against the actual rewrite relation: the
// start term must reach, in a bounded number of steps, a term
// containing an instance of itself. Compositions need two steps, plain
// rules one.
func (ps *PatternSearcher) verify(ctx context.Context, r *RuleTrs, pair *RecurrentPair) bool {
	max := 1
	if pair != nil {
		max = 2
	}
	return ps.trs.ReachesInstanceWithin(ctx, r.Lhs(), r.Lhs(), 1, max)
}

// ContextDecomposition is a recurrent pair taken apart: a stepper rule
// S[D[x], y] -> S[x, D[y]] and a duplicator rule
// S[u, y] -> S[D^a[y], D^b[y]] over a shared skeleton S with two
// counter holes, a one-hole context D and a ground base u, a+b >= 1.
// Starting from the closed goal S[u, u], each round drains the first
// counter and leaves the second holding strictly more layers than
// before, so no term the derivation visits is an instance of an
// earlier one.
type ContextDecomposition struct {
	Stepper    *RuleTrs
	Duplicator *RuleTrs

	Skeleton Term // holes HoleP, HoleQ mark the two counters
	HoleP    *Var
	HoleQ    *Var
	Context  Term // the layer D; its hole is HoleD
	HoleD    *Var
	Base     Term // ground trigger u
	GrowP    int  // layers the duplicator puts on the first counter
	GrowQ    int  // and on the second
}

// plugHole fills a context's hole variable with t.
func plugHole(c Term, hole *Var, t Term) Term {
	s := NewSubstitution()
	s.Bind(hole, t)
	return s.Apply(c)
}

// nest wraps t in n layers of the context D.
func (cd *ContextDecomposition) nest(t Term, n int) Term {
	for i := 0; i < n; i++ {
		t = plugHole(cd.Context, cd.HoleD, t)
	}
	return t
}

// Member returns S[u, D^n[u]], the shape the derivation passes through
// each time the first counter bottoms out.
func (cd *ContextDecomposition) Member(n int) Term {
	s := NewSubstitution()
	s.Bind(cd.HoleP, cd.Base)
	s.Bind(cd.HoleQ, cd.nest(cd.Base, n))
	return s.Apply(cd.Skeleton)
}

// Goal returns the closed starting term S[u, u].
func (cd *ContextDecomposition) Goal() Term { return cd.Member(0) }

// Round returns the member the next duplicate-and-drain round reaches
// from Member(n), and how many rewrite steps the round takes.
func (cd *ContextDecomposition) Round(n int) (Term, int) {
	return cd.Member(2*n + cd.GrowP + cd.GrowQ), 1 + cd.GrowP + n
}

// disjointPositions reports that neither position prefixes the other.
func disjointPositions(p, q Position) bool {
	n := len(p)
	if len(q) < n {
		n = len(q)
	}
	for i := 0; i < n; i++ {
		if p[i] != q[i] {
			return true
		}
	}
	return false
}

// contextAround rebuilds t as a one-hole context by putting hole where
// the variable v sits.
func contextAround(t Term, v, hole *Var) (Term, bool) {
	for _, p := range Positions(t) {
		sub, err := SubtermAt(t, p)
		if err != nil || !DeepEquals(sub, v) {
			continue
		}
		c, err := ReplaceAt(t, p, hole)
		if err != nil {
			continue
		}
		return c, true
	}
	return nil, false
}

// skeletonAt replaces the subterms at two disjoint positions by the
// hole variables.
func skeletonAt(t Term, p, q Position, hp, hq *Var) (Term, bool) {
	a, err := ReplaceAt(t, p, hp)
	if err != nil {
		return nil, false
	}
	b, err := ReplaceAt(a, q, hq)
	if err != nil {
		return nil, false
	}
	return b, true
}

// stripLayers counts the layers of context d wrapped around z in t.
// Anything that is not a whole layer, or z itself at the core, fails.
func stripLayers(d Term, hole *Var, t Term, z *Var) (int, bool) {
	for n := 0; ; n++ {
		if DeepEquals(t, z) {
			return n, true
		}
		sigma, ok := MoreGeneralThan(d, t)
		if !ok {
			return 0, false
		}
		t = sigma.Apply(hole)
	}
}

// DecomposeRecurrent tries to take an ordered rule pair apart as a
// recurrent pair. The stepper must drain exactly one context layer from
// one position onto a second, the duplicator must refill both positions
// from the second once the first holds the ground base, and the two
// rules must agree on the surrounding skeleton, which may hold no other
// variables.
func DecomposeRecurrent(st *SymbolTable, stepper, duplicator *RuleTrs) (*ContextDecomposition, bool) {
	lhs, rhs := stepper.Lhs(), stepper.Rhs()
	for _, p := range Positions(lhs) {
		dp, err := SubtermAt(lhs, p)
		if err != nil || dp.IsVar() {
			continue
		}
		xs := Vars(dp)
		if len(xs) != 1 {
			continue
		}
		x := xs[0]
		if VarOccurrences(lhs, x) != 1 || VarOccurrences(rhs, x) != 1 {
			continue
		}
		peeled, err := SubtermAt(rhs, p)
		if err != nil || !DeepEquals(peeled, x) {
			continue
		}
		holeD := st.FreshVar("hole")
		d, ok := contextAround(dp, x, holeD)
		if !ok {
			continue
		}
		for _, q := range Positions(lhs) {
			if !disjointPositions(p, q) {
				continue
			}
			sub, err := SubtermAt(lhs, q)
			if err != nil {
				continue
			}
			y, isVar := sub.(*Var)
			if !isVar || y == x || VarOccurrences(lhs, y) != 1 || VarOccurrences(rhs, y) != 1 {
				continue
			}
			grown, err := SubtermAt(rhs, q)
			if err != nil || !DeepEquals(grown, plugHole(d, holeD, y)) {
				continue
			}
			if cd, ok := matchDuplicator(st, stepper, duplicator, d, holeD, p, q); ok {
				return cd, true
			}
		}
	}
	return nil, false
}

// matchDuplicator checks the duplicator against the stepper's skeleton
// and drained context, completing the decomposition.
func matchDuplicator(st *SymbolTable, stepper, duplicator *RuleTrs, d Term, holeD *Var, p, q Position) (*ContextDecomposition, bool) {
	hp := st.FreshVar("hole")
	hq := st.FreshVar("hole")
	skel, ok := skeletonAt(stepper.Lhs(), p, q, hp, hq)
	if !ok || len(Vars(skel)) != 2 {
		return nil, false
	}
	if sr, ok := skeletonAt(stepper.Rhs(), p, q, hp, hq); !ok || !DeepEquals(skel, sr) {
		return nil, false
	}
	if sl, ok := skeletonAt(duplicator.Lhs(), p, q, hp, hq); !ok || !DeepEquals(skel, sl) {
		return nil, false
	}
	if sr, ok := skeletonAt(duplicator.Rhs(), p, q, hp, hq); !ok || !DeepEquals(skel, sr) {
		return nil, false
	}
	base, err := SubtermAt(duplicator.Lhs(), p)
	if err != nil || !IsGround(base) {
		return nil, false
	}
	trigger, err := SubtermAt(duplicator.Lhs(), q)
	if err != nil {
		return nil, false
	}
	z, isVar := trigger.(*Var)
	if !isVar {
		return nil, false
	}
	refillP, err := SubtermAt(duplicator.Rhs(), p)
	if err != nil {
		return nil, false
	}
	a, ok := stripLayers(d, holeD, refillP, z)
	if !ok {
		return nil, false
	}
	refillQ, err := SubtermAt(duplicator.Rhs(), q)
	if err != nil {
		return nil, false
	}
	b, ok := stripLayers(d, holeD, refillQ, z)
	if !ok || a+b < 1 {
		return nil, false
	}
	return &ContextDecomposition{
		Stepper:    stepper,
		Duplicator: duplicator,
		Skeleton:   skel,
		HoleP:      hp,
		HoleQ:      hq,
		Context:    d,
		HoleD:      holeD,
		Base:       base,
		GrowP:      a,
		GrowQ:      b,
	}, true
}

// checkDecomposition tries the ordered pair as stepper and duplicator
// of a recurrent pair and, on a hit, replays the first two rounds
// against the actual rewrite relation before reporting.
func (ps *PatternSearcher) checkDecomposition(ctx context.Context, r1, r2 *RuleTrs) (*Witness, bool) {
	cd, ok := DecomposeRecurrent(ps.trs.st, r1, r2)
	if !ok {
		return nil, false
	}
	goal := cd.Goal()
	first, steps := cd.Round(0)
	if !ps.trs.ReachesWithin(ctx, goal, first, 1, steps) {
		return nil, false
	}
	grow := cd.GrowP + cd.GrowQ
	second, steps := cd.Round(grow)
	if !ps.trs.ReachesWithin(ctx, first, second, 1, steps) {
		return nil, false
	}

	closing := NewSubstitution()
	closing.Bind(cd.HoleQ, cd.Base)
	lbase := NewSubstitution()
	lbase.Bind(cd.HoleP, cd.Base)
	lpump := NewSubstitution()
	lpump.Bind(cd.HoleQ, cd.nest(cd.HoleQ, 1))
	rbase := NewSubstitution()
	rbase.Bind(cd.HoleP, cd.Base)
	rbase.Bind(cd.HoleQ, cd.nest(cd.HoleQ, grow))
	rpump := NewSubstitution()
	rpump.Bind(cd.HoleQ, cd.nest(cd.HoleQ, 2))
	pr := NewPatternRule(
		NewPatternTerm(lbase.Apply(cd.Skeleton), lpump, closing),
		NewPatternTerm(rbase.Apply(cd.Skeleton), rpump, closing),
		"recurrent pair by context decomposition", r1, r2)

	w := &Witness{
		Kind:    WitnessPattern,
		Start:   goal,
		Rule:    r1,
		Pattern: pr,
	}
	w.Narrative = append(w.Narrative,
		fmt.Sprintf("recurrent pair of %s and %s", r1, r2),
		fmt.Sprintf("with skeleton %s, context %s and base %s", cd.Skeleton, cd.Context, cd.Base),
		"the first rule drains one counter into the other a layer at a time,",
		fmt.Sprintf("the second refills both with %d extra layers when the first bottoms out,", grow),
		"pattern rule "+pr.String(),
		fmt.Sprintf("so %s rewrites forever without revisiting an instance of an earlier term", goal))
	return w, true
}

// checkComposition plugs instances of r2 into the right-hand side of r1
// and retries the single-rule check on each derived rule. The second
// rule is renamed apart first; the matcher binding its left-hand side
// into r1's right-hand side must be suitable, or the composed pump
// candidates entangle variable lineages.
func (ps *PatternSearcher) checkComposition(ctx context.Context, r1, r2 *RuleTrs) (*Witness, bool) {
	other := r2.Rename(ps.trs.st)
	for _, p := range Positions(r1.Rhs()) {
		sub, err := SubtermAt(r1.Rhs(), p)
		if err != nil || sub.IsVar() {
			continue
		}
		sigma, ok := MoreGeneralThan(other.Lhs(), sub)
		if !ok || !SuitableSubstitution(sigma) {
			continue
		}
		rhs, err := ReplaceAt(r1.Rhs(), p, sigma.Apply(other.Rhs()))
		if err != nil {
			continue
		}
		derived := r1.derived(r1.Lhs(), rhs, "composed with "+r2.String())
		pair := &RecurrentPair{First: r1, Second: r2, Pump: sigma}
		if w, ok := ps.checkRule(ctx, derived, pair); ok {
			return w, true
		}
	}
	return nil, false
}
