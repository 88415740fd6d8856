package trs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildArgFiltering tests the variable-position heuristic.
func TestBuildArgFiltering(t *testing.T) {
	t.Run("always-variable positions are dropped", func(t *testing.T) {
		sg := newSig()
		sys := plusSystem(t, sg)
		prob := onlyProblem(t, sys)

		af := BuildArgFiltering(prob)

		// The second argument of plus only ever holds variables.
		pair := prob.Pairs()[0]
		filtered := af.Apply(pair.Lhs(), sg.st).(*Fun)
		assert.Equal(t, 1, filtered.sym.arity)
		require.Len(t, filtered.args, 1)
		assert.Same(t, sg.s, filtered.args[0].(*Fun).sym)
	})

	t.Run("fully structured symbols keep the identity", func(t *testing.T) {
		sg := newSig()
		sys := plusSystem(t, sg)
		prob := onlyProblem(t, sys)

		af := BuildArgFiltering(prob)

		// s holds plus(x, y) on a right-hand side, so it is untouched.
		term := MustFun(sg.s, MustFun(sg.s, sg.zero))
		filtered := af.Apply(term, sg.st)
		assert.True(t, DeepEquals(filtered, term))
	})

	t.Run("all-variable symbols fall back to the first position", func(t *testing.T) {
		sg := newSig()
		swap := []*RuleTrs{
			MustRule(MustFun(sg.plus, sg.x, sg.y), MustFun(sg.plus, sg.y, sg.x), 0),
		}
		sys, err := NewTrs(sg.st, swap, StrategyFull)
		require.NoError(t, err)
		prob := onlyProblem(t, sys)

		af := BuildArgFiltering(prob)
		filtered := af.Apply(MustFun(sg.plus, sg.x, sg.y), sg.st).(*Fun)
		assert.Equal(t, 1, filtered.sym.arity)
		assert.Same(t, sg.x, filtered.args[0])
	})
}

// TestArgFilteringApply tests projection, collapsing and re-interning.
func TestArgFilteringApply(t *testing.T) {
	sg := newSig()

	t.Run("keep projects and re-interns at reduced arity", func(t *testing.T) {
		af := &ArgFiltering{m: make(map[*FunSymbol]argFilter)}
		af.Keep(sg.plus, 1)

		a := af.Apply(MustFun(sg.plus, sg.x, MustFun(sg.s, sg.y)), sg.st).(*Fun)
		b := af.Apply(MustFun(sg.plus, sg.zero, sg.z), sg.st).(*Fun)
		assert.Equal(t, 1, a.sym.arity)
		assert.Same(t, a.sym, b.sym)
		assert.True(t, DeepEquals(a.args[0], MustFun(sg.s, sg.y)))
	})

	t.Run("collapse replaces the application by one argument", func(t *testing.T) {
		af := &ArgFiltering{m: make(map[*FunSymbol]argFilter)}
		af.Collapse(sg.s, 0)

		term := MustFun(sg.plus, MustFun(sg.s, MustFun(sg.s, sg.x)), sg.y)
		filtered := af.Apply(term, sg.st)
		assert.True(t, DeepEquals(filtered, MustFun(sg.plus, sg.x, sg.y)))
	})

	t.Run("filters apply below unfiltered symbols", func(t *testing.T) {
		af := &ArgFiltering{m: make(map[*FunSymbol]argFilter)}
		af.Keep(sg.plus, 0)

		term := MustFun(sg.f, MustFun(sg.plus, sg.x, sg.y))
		filtered := af.Apply(term, sg.st).(*Fun)
		assert.Same(t, sg.f, filtered.sym)
		inner := filtered.args[0].(*Fun)
		assert.Equal(t, 1, inner.sym.arity)
	})

	t.Run("variables pass through", func(t *testing.T) {
		af := &ArgFiltering{m: make(map[*FunSymbol]argFilter)}
		assert.Same(t, Term(sg.x), af.Apply(sg.x, sg.st))
	})

	t.Run("string lists the non-identity entries", func(t *testing.T) {
		af := &ArgFiltering{m: make(map[*FunSymbol]argFilter)}
		af.Keep(sg.plus, 0)
		af.Collapse(sg.s, 0)
		s := af.String()
		assert.Contains(t, s, "plus=>[0]")
		assert.Contains(t, s, "s=>0")
	})
}
