package trs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFamilyReachability tests the descendant/ascendant symbol graphs.
func TestFamilyReachability(t *testing.T) {
	sg := newSig()
	sys := mutualSystem(t, sg)

	t.Run("descendants follow rewriting", func(t *testing.T) {
		desc := sys.Descendants(sg.f)
		assert.True(t, desc[symbolVertex(sg.g)])
		assert.True(t, desc[symbolVertex(sg.s)])
		assert.True(t, desc[symbolVertex(sg.f)])
	})

	t.Run("ascendants follow rewriting backwards", func(t *testing.T) {
		asc := sys.Ascendants(sg.s)
		assert.True(t, asc[symbolVertex(sg.f)])
		assert.True(t, asc[symbolVertex(sg.g)])
	})

	t.Run("unrelated symbols are unreachable", func(t *testing.T) {
		desc := sys.Descendants(sg.f)
		assert.False(t, desc[symbolVertex(sg.plus)])
	})

	t.Run("tuple symbols fold onto their plain counterpart", func(t *testing.T) {
		desc := sys.Descendants(sg.st.Tuple(sg.f))
		assert.True(t, desc[symbolVertex(sg.g)])
	})
}

// TestFamilyContains tests the pruning predicate.
func TestFamilyContains(t *testing.T) {
	sg := newSig()
	sys := mutualSystem(t, sg)

	t.Run("reachable shape is contained", func(t *testing.T) {
		src := MustFun(sg.f, sg.x)
		dst := MustFun(sg.g, MustFun(sg.s, sg.y))
		assert.True(t, sys.FamilyContains(src, dst))
	})

	t.Run("foreign symbols are not contained", func(t *testing.T) {
		src := MustFun(sg.f, sg.x)
		dst := MustFun(sg.plus, sg.x, sg.y)
		assert.False(t, sys.FamilyContains(src, dst))
	})

	t.Run("variables impose no constraint", func(t *testing.T) {
		require.True(t, sys.FamilyContains(MustFun(sg.f, sg.x), sg.y))
	})
}

// TestFamilyReaches tests the ascendant pruning predicate.
func TestFamilyReaches(t *testing.T) {
	sg := newSig()
	sys := mutualSystem(t, sg)

	t.Run("ancestor shapes are reached", func(t *testing.T) {
		assert.True(t, sys.FamilyReaches(MustFun(sg.f, sg.x), MustFun(sg.g, sg.y)))
	})

	t.Run("foreign symbols are not reached", func(t *testing.T) {
		assert.False(t, sys.FamilyReaches(MustFun(sg.f, sg.x), MustFun(sg.plus, sg.x, sg.y)))
	})

	t.Run("variables impose no constraint", func(t *testing.T) {
		assert.True(t, sys.FamilyReaches(MustFun(sg.s, sg.x), sg.y))
	})
}
