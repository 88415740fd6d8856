package trs

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Loop detection by rule unfolding.
//
// Dependency pairs of an unsolved DP problem are repeatedly unfolded -
// forward into their right-hand sides (and through pair composition at
// the root), backward into their left-hand sides - and every generated
// rule is tested for a loop: a position p of its right-hand side whose
// subterm semi-unifies with the left-hand side. Success means the
// instance rho(l) rewrites to a context around an instance of itself,
// an infinite rewrite sequence.
//
// The search is bounded three ways: by unfolding depth, by a global
// generated-rule tally shared atomically across concurrent tasks, and
// by the cancellation context checked at every loop boundary.

// Unfolder runs the loop search over one rewrite system copy.
type Unfolder struct {
	trs   *Trs
	cfg   UnfoldConfig
	tally *atomic.Int64
	log   *logrus.Logger
}

// NewUnfolder creates a loop searcher. The tally may be shared across
// concurrent unfolders to cap their combined rule production; pass a
// fresh counter to run standalone.
func NewUnfolder(t *Trs, cfg UnfoldConfig, tally *atomic.Int64, log *logrus.Logger) *Unfolder {
	if tally == nil {
		tally = &atomic.Int64{}
	}
	return &Unfolder{trs: t, cfg: cfg, tally: tally, log: log}
}

// FindLoop searches the problem's pairs for a looping unfolded rule.
// It returns a verified witness, or false if the configured budget is
// exhausted without one (absence of evidence, not a disproof).
func (u *Unfolder) FindLoop(ctx context.Context, prob *DpProblem) (*Witness, bool) {
	gen := make([]*RuleTrs, 0, len(prob.pairs))
	for _, p := range prob.pairs {
		gen = append(gen, p.Rename(u.trs.st))
	}
	for depth := 0; depth <= u.cfg.MaxDepth; depth++ {
		for _, r := range gen {
			select {
			case <-ctx.Done():
				return nil, false
			default:
			}
			if w, ok := u.checkLoop(r); ok {
				return w, true
			}
		}
		if depth == u.cfg.MaxDepth {
			break
		}
		var next []*RuleTrs
		for _, r := range gen {
			select {
			case <-ctx.Done():
				return nil, false
			default:
			}
			next = append(next, u.unfoldOnce(r)...)
			if u.tally.Load() > u.cfg.MaxRules {
				if u.log != nil {
					u.log.WithField("tally", u.tally.Load()).Debug("unfolding rule cap reached")
				}
				return nil, false
			}
		}
		if len(next) == 0 {
			return nil, false
		}
		gen = next
	}
	return nil, false
}

// checkLoop tests every position of the rule's right-hand side for
// semi-unification with the left-hand side.
func (u *Unfolder) checkLoop(r *RuleTrs) (*Witness, bool) {
	for _, p := range Positions(r.rhs) {
		sub, err := SubtermAt(r.rhs, p)
		if err != nil || sub.IsVar() {
			continue
		}
		rho, sigma, ok := SemiUnify(r.lhs, sub)
		if !ok {
			continue
		}
		start := rho.Apply(r.lhs).(*Fun)
		w := &Witness{
			Kind:  WitnessLoop,
			Start: u.untuple(start),
			Rule:  r,
		}
		w.Narrative = append(w.Narrative, r.Ancestry()...)
		w.Narrative = append(w.Narrative,
			fmt.Sprintf("left side semi-unifies with right side at position %s", p),
			fmt.Sprintf("with rho = %s and sigma = %s", rho, sigma),
			fmt.Sprintf("so %s starts an infinite rewrite sequence", u.untuple(start)))
		return w, true
	}
	return nil, false
}

// untuple strips the tuple marker off the root, yielding the plain term
// the loop actually rewrites.
func (u *Unfolder) untuple(f *Fun) Term {
	if !f.sym.tuple {
		return f
	}
	return &Fun{sym: u.trs.st.Untuple(f.sym), args: f.args}
}

// unfoldOnce produces every configured one-step unfolding of r.
func (u *Unfolder) unfoldOnce(r *RuleTrs) []*RuleTrs {
	var out []*RuleTrs
	if u.cfg.Forward {
		out = append(out, u.unfoldForward(r)...)
	}
	if u.cfg.Backward {
		out = append(out, u.unfoldBackward(r)...)
	}
	kept := out[:0]
	for _, nr := range out {
		if u.mayLoopBack(nr) {
			kept = append(kept, nr)
		}
	}
	u.tally.Add(int64(len(kept)))
	return kept
}

// forwardPositions picks the right-hand-side positions to unfold,
// honoring the selection strategy and the variable-position toggle.
func (u *Unfolder) forwardPositions(r *RuleTrs) []Position {
	if u.cfg.Selection == SelectLeftmostDisagreement {
		if p, ok := leftmostDisagreement(r.lhs, r.rhs); ok {
			if sub, err := SubtermAt(r.rhs, p); err == nil {
				if !sub.IsVar() || u.cfg.VarPositions {
					return []Position{p}
				}
			}
			return nil
		}
	}
	var out []Position
	for _, p := range Positions(r.rhs) {
		sub, err := SubtermAt(r.rhs, p)
		if err != nil {
			continue
		}
		if sub.IsVar() && !u.cfg.VarPositions {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (u *Unfolder) unfoldForward(r *RuleTrs) []*RuleTrs {
	var out []*RuleTrs
	for _, p := range u.forwardPositions(r) {
		sub, err := SubtermAt(r.rhs, p)
		if err != nil {
			continue
		}
		if p.IsRoot() {
			// Root composition chains dependency pairs.
			for _, q := range u.trs.pairs {
				qq := q.Rename(u.trs.st)
				theta, ok := Unify(sub, qq.lhs)
				if !ok {
					continue
				}
				lhs := theta.Apply(r.lhs).(*Fun)
				rhs := theta.Apply(qq.rhs)
				out = append(out, r.derived(lhs, rhs, fmt.Sprintf("compose with pair %s", qq)))
			}
			continue
		}
		for _, rule := range u.trs.rules {
			rr := rule.Rename(u.trs.st)
			if !u.trs.FamilyContains(sub, rr.lhs) && !sub.IsVar() {
				continue
			}
			theta, ok := Unify(sub, rr.lhs)
			if !ok {
				continue
			}
			replaced, err := ReplaceAt(r.rhs, p, rr.rhs)
			if err != nil {
				continue
			}
			lhs := theta.Apply(r.lhs).(*Fun)
			rhs := theta.Apply(replaced)
			out = append(out, r.derived(lhs, rhs,
				fmt.Sprintf("forward unfold at %s with rule %d", p, rule.num)))
		}
	}
	return out
}

func (u *Unfolder) unfoldBackward(r *RuleTrs) []*RuleTrs {
	var out []*RuleTrs
	for _, p := range Positions(r.lhs) {
		sub, err := SubtermAt(r.lhs, p)
		if err != nil {
			continue
		}
		if p.IsRoot() {
			for _, q := range u.trs.pairs {
				qq := q.Rename(u.trs.st)
				theta, ok := Unify(sub, qq.rhs)
				if !ok {
					continue
				}
				lhs := theta.Apply(qq.lhs).(*Fun)
				rhs := theta.Apply(r.rhs)
				out = append(out, r.derived(lhs, rhs, fmt.Sprintf("compose backward with pair %s", qq)))
			}
			continue
		}
		if sub.IsVar() && !u.cfg.VarPositions {
			continue
		}
		for _, rule := range u.trs.rules {
			rr := rule.Rename(u.trs.st)
			if !sub.IsVar() && !u.trs.FamilyReaches(sub, rr.rhs) {
				continue
			}
			theta, ok := Unify(sub, rr.rhs)
			if !ok {
				continue
			}
			replaced, err := ReplaceAt(r.lhs, p, rr.lhs)
			if err != nil {
				continue
			}
			lhs := theta.Apply(replaced).(*Fun)
			rhs := theta.Apply(r.rhs)
			out = append(out, r.derived(lhs, rhs,
				fmt.Sprintf("backward unfold at %s with rule %d", p, rule.num)))
		}
	}
	return out
}

// mayLoopBack prunes generated rules whose right-hand side can never
// reproduce the left-hand root symbol: the family graphs say no rewrite
// sequence brings it back, so the rule cannot contribute a loop.
func (u *Unfolder) mayLoopBack(r *RuleTrs) bool {
	target := symbolVertex(u.trs.st.Untuple(r.lhs.sym))
	for sym := range FunSymbols(r.rhs) {
		if u.trs.Descendants(sym)[target] {
			return true
		}
	}
	return false
}

// leftmostDisagreement returns the first pre-order position at which
// the two terms have different structure, descending only through
// identical roots.
func leftmostDisagreement(a, b Term, prefix ...int) (Position, bool) {
	pos := Position(prefix)
	af, aok := a.(*Fun)
	bf, bok := b.(*Fun)
	if !aok || !bok {
		if DeepEquals(a, b) {
			return nil, false
		}
		return pos, true
	}
	if af.sym != bf.sym {
		return pos, true
	}
	for i := range af.args {
		if p, ok := leftmostDisagreement(af.args[i], bf.args[i], append(append([]int(nil), prefix...), i)...); ok {
			return p, true
		}
	}
	return nil, false
}
