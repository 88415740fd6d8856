package trs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// sig bundles a symbol table with the handful of symbols and variables
// most tests share.
type sig struct {
	st                   *SymbolTable
	zero                 *Fun
	s, f, g, plus, times *FunSymbol
	x, y, z              *Var
}

func newSig() *sig {
	st := NewSymbolTable()
	return &sig{
		st:    st,
		zero:  MustFun(st.Fun("0", 0)),
		s:     st.Fun("s", 1),
		f:     st.Fun("f", 1),
		g:     st.Fun("g", 1),
		plus:  st.Fun("plus", 2),
		times: st.Fun("times", 2),
		x:     st.FreshVar("x"),
		y:     st.FreshVar("y"),
		z:     st.FreshVar("z"),
	}
}

// plusSystem is terminating Peano addition:
//
//	plus(0, y) -> y
//	plus(s(x), y) -> s(plus(x, y))
func plusSystem(t *testing.T, sg *sig) *Trs {
	t.Helper()
	rules := []*RuleTrs{
		MustRule(MustFun(sg.plus, sg.zero, sg.y), sg.y, 0),
		MustRule(
			MustFun(sg.plus, MustFun(sg.s, sg.x), sg.y),
			MustFun(sg.s, MustFun(sg.plus, sg.x, sg.y)), 1),
	}
	sys, err := NewTrs(sg.st, rules, StrategyFull)
	require.NoError(t, err)
	return sys
}

// plusTimesSystem extends plusSystem with Peano multiplication.
func plusTimesSystem(t *testing.T, sg *sig) *Trs {
	t.Helper()
	rules := []*RuleTrs{
		MustRule(MustFun(sg.plus, sg.zero, sg.y), sg.y, 0),
		MustRule(
			MustFun(sg.plus, MustFun(sg.s, sg.x), sg.y),
			MustFun(sg.s, MustFun(sg.plus, sg.x, sg.y)), 1),
		MustRule(MustFun(sg.times, sg.zero, sg.y), sg.zero, 2),
		MustRule(
			MustFun(sg.times, MustFun(sg.s, sg.x), sg.y),
			MustFun(sg.plus, MustFun(sg.times, sg.x, sg.y), sg.y), 3),
	}
	sys, err := NewTrs(sg.st, rules, StrategyFull)
	require.NoError(t, err)
	return sys
}

// mutualSystem is nonterminating mutual recursion:
//
//	f(x) -> g(x)
//	g(y) -> f(s(y))
func mutualSystem(t *testing.T, sg *sig) *Trs {
	t.Helper()
	rules := []*RuleTrs{
		MustRule(MustFun(sg.f, sg.x), MustFun(sg.g, sg.x), 0),
		MustRule(MustFun(sg.g, sg.y), MustFun(sg.f, MustFun(sg.s, sg.y)), 1),
	}
	sys, err := NewTrs(sg.st, rules, StrategyFull)
	require.NoError(t, err)
	return sys
}

// pumpSystem is the one-rule nonterminating system f(x) -> f(s(x)).
func pumpSystem(t *testing.T, sg *sig) *Trs {
	t.Helper()
	rules := []*RuleTrs{
		MustRule(MustFun(sg.f, sg.x), MustFun(sg.f, MustFun(sg.s, sg.x)), 0),
	}
	sys, err := NewTrs(sg.st, rules, StrategyFull)
	require.NoError(t, err)
	return sys
}

// counterSystem is nonterminating without ever looping: the first rule
// drains one counter into the other, the second doubles it back, so the
// derivation from h(0, 0) runs through ground terms that keep growing
// and no term reaches an instance of an earlier one.
//
//	h(s(x), y) -> h(x, s(y))
//	h(0, y)    -> h(s(y), s(y))
func counterSystem(t *testing.T, sg *sig) *Trs {
	t.Helper()
	h := sg.st.Fun("h", 2)
	rules := []*RuleTrs{
		MustRule(
			MustFun(h, MustFun(sg.s, sg.x), sg.y),
			MustFun(h, sg.x, MustFun(sg.s, sg.y)), 0),
		MustRule(
			MustFun(h, sg.zero, sg.y),
			MustFun(h, MustFun(sg.s, sg.y), MustFun(sg.s, sg.y)), 1),
	}
	sys, err := NewTrs(sg.st, rules, StrategyFull)
	require.NoError(t, err)
	return sys
}

// onlyProblem asserts the system decomposes into exactly one DP problem
// and returns it.
func onlyProblem(t *testing.T, sys *Trs) *DpProblem {
	t.Helper()
	probs := InitialProblems(sys).Problems()
	require.Len(t, probs, 1)
	return probs[0]
}
