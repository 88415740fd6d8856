package trs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResultString tests the report rendering of outcomes.
func TestResultString(t *testing.T) {
	assert.Equal(t, "YES", ResultYes.String())
	assert.Equal(t, "NO", ResultNo.String())
	assert.Equal(t, "MAYBE", ResultMaybe.String())
	assert.Equal(t, "INTERRUPTED", ResultInterrupted.String())
}

// TestProofResults tests outcome recording and the conclusive-result
// guarantee.
func TestProofResults(t *testing.T) {
	t.Run("starts inconclusive", func(t *testing.T) {
		p := NewProof()
		assert.Equal(t, ResultMaybe, p.Result())
		assert.Nil(t, p.Witness())
		assert.Empty(t, p.Trace())
	})

	t.Run("conclusive results stick", func(t *testing.T) {
		p := NewProof()
		p.SetResult(ResultYes)
		p.SetResult(ResultMaybe)
		p.SetResult(ResultInterrupted)
		assert.Equal(t, ResultYes, p.Result())
	})

	t.Run("interrupted yields to a later conclusion", func(t *testing.T) {
		p := NewProof()
		p.SetResult(ResultInterrupted)
		p.SetResult(ResultNo)
		assert.Equal(t, ResultNo, p.Result())
	})

	t.Run("witness forces NO and is kept first-wins", func(t *testing.T) {
		sg := newSig()
		first := &Witness{Kind: WitnessLoop, Start: MustFun(sg.f, sg.x)}
		second := &Witness{Kind: WitnessPattern, Start: MustFun(sg.g, sg.x)}

		p := NewProof()
		p.SetWitness(first)
		p.SetWitness(second)
		assert.Equal(t, ResultNo, p.Result())
		assert.Same(t, first, p.Witness())
	})
}

// TestProofTrace tests trace recording and rendering.
func TestProofTrace(t *testing.T) {
	p := NewProof()
	p.Step("embedding", "problem 1", "failed")
	p.Step("lpo", "problem 1", "finite")
	p.Step("dependency graph", "", "2 cyclic SCCs")

	trace := p.Trace()
	require.Len(t, trace, 3)
	assert.Equal(t, "embedding [problem 1]: failed", trace[0].String())
	assert.Equal(t, "dependency graph: 2 cyclic SCCs", trace[2].String())

	t.Run("trace copies are independent", func(t *testing.T) {
		trace[0].Technique = "mutated"
		assert.Equal(t, "embedding", p.Trace()[0].Technique)
	})
}

// TestProofMerge tests folding concurrently produced partial proofs.
func TestProofMerge(t *testing.T) {
	t.Run("inconclusive adopts the other result", func(t *testing.T) {
		sg := newSig()
		other := NewProof()
		other.Step("unfolding", "problem 1", "loop found")
		other.SetWitness(&Witness{Kind: WitnessLoop, Start: MustFun(sg.f, sg.x)})

		p := NewProof()
		p.Step("embedding", "problem 1", "failed")
		p.Merge(other)

		assert.Equal(t, ResultNo, p.Result())
		require.NotNil(t, p.Witness())
		assert.Len(t, p.Trace(), 2)
	})

	t.Run("conclusive keeps its own result, takes the trace", func(t *testing.T) {
		other := NewProof()
		other.SetResult(ResultNo)
		other.Step("unfolding", "", "gave up")

		p := NewProof()
		p.SetResult(ResultYes)
		p.Merge(other)

		assert.Equal(t, ResultYes, p.Result())
		assert.Len(t, p.Trace(), 1)
	})

	t.Run("merging nil or itself is a no-op", func(t *testing.T) {
		p := NewProof()
		p.Step("embedding", "", "failed")
		p.Merge(nil)
		p.Merge(p)
		assert.Len(t, p.Trace(), 1)
	})
}

// TestWitnessString tests witness rendering with its justification.
func TestWitnessString(t *testing.T) {
	sg := newSig()
	w := &Witness{
		Kind:      WitnessLoop,
		Start:     MustFun(sg.f, sg.x),
		Narrative: []string{"found by unfolding"},
	}
	s := w.String()
	assert.Contains(t, s, "nonterminating term")
	assert.Contains(t, s, "loop")
	assert.Contains(t, s, "found by unfolding")
}
