package trs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPositions tests pre-order position enumeration.
func TestPositions(t *testing.T) {
	sg := newSig()
	// plus(s(x), 0): positions ε, 0, 0.0, 1
	term := MustFun(sg.plus, MustFun(sg.s, sg.x), sg.zero)

	ps := Positions(term)
	require.Len(t, ps, 4)
	assert.Equal(t, "ε", ps[0].String())
	assert.Equal(t, "0", ps[1].String())
	assert.Equal(t, "0.0", ps[2].String())
	assert.Equal(t, "1", ps[3].String())

	t.Run("a variable has only the root position", func(t *testing.T) {
		ps := Positions(sg.x)
		require.Len(t, ps, 1)
		assert.True(t, ps[0].IsRoot())
	})
}

// TestSubtermAt tests subterm lookup and path errors.
func TestSubtermAt(t *testing.T) {
	sg := newSig()
	term := MustFun(sg.plus, MustFun(sg.s, sg.x), sg.zero)

	t.Run("root", func(t *testing.T) {
		sub, err := SubtermAt(term, RootPosition)
		require.NoError(t, err)
		assert.Same(t, Term(term), sub)
	})

	t.Run("nested", func(t *testing.T) {
		sub, err := SubtermAt(term, Position{0, 0})
		require.NoError(t, err)
		assert.Same(t, Term(sg.x), sub)
	})

	t.Run("descending into a variable fails", func(t *testing.T) {
		_, err := SubtermAt(term, Position{0, 0, 0})
		require.Error(t, err)
	})

	t.Run("index out of range fails", func(t *testing.T) {
		_, err := SubtermAt(term, Position{2})
		require.Error(t, err)
	})
}

// TestReplaceAt tests path-copying replacement.
func TestReplaceAt(t *testing.T) {
	sg := newSig()
	left := MustFun(sg.s, sg.x)
	term := MustFun(sg.plus, left, sg.zero)

	t.Run("replacing the root returns the replacement", func(t *testing.T) {
		out, err := ReplaceAt(term, RootPosition, sg.y)
		require.NoError(t, err)
		assert.Same(t, Term(sg.y), out)
	})

	t.Run("off-path subterms are shared", func(t *testing.T) {
		out, err := ReplaceAt(term, Position{1}, MustFun(sg.s, sg.zero))
		require.NoError(t, err)
		of := out.(*Fun)
		assert.Same(t, Term(left), of.Arg(0))
		assert.True(t, DeepEquals(of.Arg(1), MustFun(sg.s, sg.zero)))
		// The original is untouched.
		assert.True(t, DeepEquals(term.Arg(1), sg.zero))
	})

	t.Run("bad position fails", func(t *testing.T) {
		_, err := ReplaceAt(term, Position{0, 0, 0}, sg.y)
		require.Error(t, err)
	})
}

// TestPositionAppend tests that Append does not alias its receiver.
func TestPositionAppend(t *testing.T) {
	p := Position{0}
	q := p.Append(1)
	r := p.Append(2)
	assert.Equal(t, "0.1", q.String())
	assert.Equal(t, "0.2", r.String())
	assert.Equal(t, "0", p.String())
}
