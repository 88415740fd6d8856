package trs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUnify tests most general unification.
func TestUnify(t *testing.T) {
	sg := newSig()

	t.Run("variable against term", func(t *testing.T) {
		sub, ok := Unify(sg.x, MustFun(sg.s, sg.zero))
		require.True(t, ok)
		assert.True(t, DeepEquals(sub.Apply(sg.x), MustFun(sg.s, sg.zero)))
	})

	t.Run("unifier equalizes both sides", func(t *testing.T) {
		// plus(x, s(y)) =? plus(0, z)
		l := MustFun(sg.plus, sg.x, MustFun(sg.s, sg.y))
		r := MustFun(sg.plus, sg.zero, sg.z)
		sub, ok := Unify(l, r)
		require.True(t, ok)
		assert.True(t, DeepEquals(sub.Apply(l), sub.Apply(r)))
	})

	t.Run("unification is symmetric", func(t *testing.T) {
		l := MustFun(sg.f, MustFun(sg.s, sg.x))
		r := MustFun(sg.f, sg.y)
		s1, ok1 := Unify(l, r)
		s2, ok2 := Unify(r, l)
		require.True(t, ok1)
		require.True(t, ok2)
		assert.True(t, DeepEquals(s1.Apply(l), s1.Apply(r)))
		assert.True(t, DeepEquals(s2.Apply(l), s2.Apply(r)))
	})

	t.Run("symbol clash fails", func(t *testing.T) {
		_, ok := Unify(MustFun(sg.f, sg.x), MustFun(sg.g, sg.x))
		assert.False(t, ok)
	})

	t.Run("same variable unifies with itself", func(t *testing.T) {
		sub, ok := Unify(sg.x, sg.x)
		require.True(t, ok)
		assert.Equal(t, 0, sub.Size())
	})

	t.Run("no occurs check", func(t *testing.T) {
		// x =? s(x) succeeds; Apply performs a single replacement.
		sub, ok := Unify(sg.x, MustFun(sg.s, sg.x))
		require.True(t, ok)
		assert.True(t, DeepEquals(sub.Apply(sg.y), sg.y))
	})
}

// TestUnifyInto tests in-place extension.
func TestUnifyInto(t *testing.T) {
	sg := newSig()

	t.Run("prior bindings constrain unification", func(t *testing.T) {
		sub := NewSubstitution()
		sub.Bind(sg.x, sg.zero)
		ok := UnifyInto(MustFun(sg.f, sg.x), MustFun(sg.f, MustFun(sg.s, sg.y)), sub)
		assert.False(t, ok)
	})

	t.Run("consistent extension succeeds", func(t *testing.T) {
		sub := NewSubstitution()
		sub.Bind(sg.x, sg.zero)
		ok := UnifyInto(MustFun(sg.plus, sg.x, sg.y), MustFun(sg.plus, sg.zero, sg.z), sub)
		require.True(t, ok)
		assert.True(t, DeepEquals(sub.Apply(sg.y), sub.Apply(sg.z)))
	})
}

// TestMatching tests one-sided matching.
func TestMatching(t *testing.T) {
	sg := newSig()

	t.Run("pattern matches instance", func(t *testing.T) {
		pattern := MustFun(sg.plus, sg.x, sg.y)
		instance := MustFun(sg.plus, sg.zero, MustFun(sg.s, sg.zero))
		sub, ok := MoreGeneralThan(pattern, instance)
		require.True(t, ok)
		assert.True(t, DeepEquals(sub.Apply(pattern), instance))
	})

	t.Run("instance does not match pattern", func(t *testing.T) {
		pattern := MustFun(sg.plus, sg.x, sg.y)
		instance := MustFun(sg.plus, sg.zero, MustFun(sg.s, sg.zero))
		_, ok := MoreGeneralThan(instance, pattern)
		assert.False(t, ok)
	})

	t.Run("repeated variable must match equal subterms", func(t *testing.T) {
		pattern := MustFun(sg.plus, sg.x, sg.x)
		_, ok := MoreGeneralThan(pattern, MustFun(sg.plus, sg.zero, MustFun(sg.s, sg.zero)))
		assert.False(t, ok)
		sub, ok := MoreGeneralThan(pattern, MustFun(sg.plus, sg.zero, sg.zero))
		require.True(t, ok)
		assert.True(t, DeepEquals(sub.Apply(sg.x), sg.zero))
	})

	t.Run("right-side variables are constants", func(t *testing.T) {
		_, ok := MoreGeneralThan(MustFun(sg.f, sg.zero), MustFun(sg.f, sg.x))
		assert.False(t, ok)
	})
}

// TestRenaming tests fresh-variable renaming.
func TestRenaming(t *testing.T) {
	sg := newSig()
	term := MustFun(sg.plus, sg.x, MustFun(sg.s, sg.x))

	renamed := RenameTerm(sg.st, term).(*Fun)
	assert.True(t, renamed.Arg(0).IsVar())
	assert.NotSame(t, Term(sg.x), renamed.Arg(0))
	// Both occurrences of x rename to the same fresh variable.
	inner := renamed.Arg(1).(*Fun)
	assert.Same(t, renamed.Arg(0), inner.Arg(0))
	// Renaming is fresh each time.
	again := RenameTerm(sg.st, term).(*Fun)
	assert.NotSame(t, renamed.Arg(0), again.Arg(0))
}
