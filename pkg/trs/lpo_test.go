package trs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLpoGT tests the core comparison with an extensible precedence.
func TestLpoGT(t *testing.T) {
	sg := newSig()

	t.Run("subterm case", func(t *testing.T) {
		ord := NewLexOrder()
		assert.True(t, lpoGT(MustFun(sg.s, sg.x), sg.x, ord))
		assert.True(t, lpoGT(MustFun(sg.f, MustFun(sg.s, sg.x)), MustFun(sg.s, sg.x), ord))
	})

	t.Run("variable on the left never dominates", func(t *testing.T) {
		ord := NewLexOrder()
		assert.False(t, lpoGT(sg.x, sg.y, ord))
		assert.False(t, lpoGT(sg.x, MustFun(sg.s, sg.x), ord))
	})

	t.Run("foreign variable on the right fails", func(t *testing.T) {
		ord := NewLexOrder()
		assert.False(t, lpoGT(MustFun(sg.f, sg.x), sg.y, ord))
	})

	t.Run("lexicographic case on the first disagreement", func(t *testing.T) {
		ord := NewLexOrder()
		l := MustFun(sg.plus, MustFun(sg.s, sg.x), sg.y)
		r := MustFun(sg.plus, sg.x, sg.y)
		assert.True(t, lpoGT(l, r, ord))
	})

	t.Run("precedence case extends the order", func(t *testing.T) {
		ord := NewLexOrder()
		// plus(s(x),y) > s(plus(x,y)) forces plus > s.
		l := MustFun(sg.plus, MustFun(sg.s, sg.x), sg.y)
		r := MustFun(sg.s, MustFun(sg.plus, sg.x, sg.y))
		require.True(t, lpoGT(l, r, ord))
		assert.True(t, ord.Greater(sg.plus, sg.s))
	})

	t.Run("failed branches leave the precedence unchanged", func(t *testing.T) {
		ord := NewLexOrder()
		require.True(t, ord.Add(sg.s, sg.f))
		// f(x) > s(x) would need f > s, contradicting s > f.
		assert.False(t, lpoGT(MustFun(sg.f, sg.x), MustFun(sg.s, sg.x), ord))
		assert.Equal(t, 1, ord.Size())
	})
}

// TestLpoProcessor tests the processor on DP problems.
func TestLpoProcessor(t *testing.T) {
	proc := NewLpoProcessor()

	t.Run("closes the plus recursion", func(t *testing.T) {
		sg := newSig()
		sys := plusSystem(t, sg)
		prob := onlyProblem(t, sys)

		res := proc.Process(context.Background(), prob, nil)
		assert.Equal(t, VerdictFinite, res.Verdict)
	})

	t.Run("closes the times recursion over plus", func(t *testing.T) {
		sg := newSig()
		sys := plusTimesSystem(t, sg)
		for _, prob := range InitialProblems(sys).Problems() {
			res := proc.Process(context.Background(), prob, nil)
			assert.Equal(t, VerdictFinite, res.Verdict, prob.Name())
		}
	})

	t.Run("fails on mutual recursion", func(t *testing.T) {
		sg := newSig()
		sys := mutualSystem(t, sg)
		prob := onlyProblem(t, sys)

		// f(x) -> g(x) and g(y) -> f(s(y)) need both f > g and g > f.
		res := proc.Process(context.Background(), prob, nil)
		assert.Equal(t, VerdictFailed, res.Verdict)
	})
}
