package trs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkSemiUnifier asserts that rho and sigma solve
// sigma(rho(s)) = rho(t).
func checkSemiUnifier(t *testing.T, s, u Term, rho, sigma *Substitution) {
	t.Helper()
	left := sigma.Apply(rho.Apply(s))
	right := rho.Apply(u)
	assert.True(t, DeepEquals(left, right), "sigma(rho(s)) = %v, rho(t) = %v", left, right)
}

// TestSemiUnify tests the search for rho and sigma with
// sigma(rho(s)) = rho(t).
func TestSemiUnify(t *testing.T) {
	sg := newSig()

	t.Run("plain matching needs no rho", func(t *testing.T) {
		s := MustFun(sg.f, sg.x)
		u := MustFun(sg.f, MustFun(sg.s, sg.y))
		rho, sigma, ok := SemiUnify(s, u)
		require.True(t, ok)
		assert.Empty(t, rho.Domain())
		checkSemiUnifier(t, s, u, rho, sigma)
	})

	t.Run("pumping substitution", func(t *testing.T) {
		// The loop shape of f(x) -> f(s(x)): sigma sends x to s(x).
		s := MustFun(sg.f, sg.x)
		u := MustFun(sg.f, MustFun(sg.s, sg.x))
		rho, sigma, ok := SemiUnify(s, u)
		require.True(t, ok)
		assert.Empty(t, rho.Domain())
		assert.True(t, DeepEquals(sigma.Apply(sg.x), MustFun(sg.s, sg.x)))
		checkSemiUnifier(t, s, u, rho, sigma)
	})

	t.Run("rho gives structure to right variables", func(t *testing.T) {
		// plus(s(x), y) vs plus(y, z): y must become s(x), then z too.
		s := MustFun(sg.plus, MustFun(sg.s, sg.x), sg.y)
		u := MustFun(sg.plus, sg.y, sg.z)
		rho, sigma, ok := SemiUnify(s, u)
		require.True(t, ok)
		assert.True(t, DeepEquals(rho.Apply(sg.y), MustFun(sg.s, sg.x)))
		checkSemiUnifier(t, s, u, rho, sigma)
	})

	t.Run("clashing images are unified through rho", func(t *testing.T) {
		// x must cover both y and s(z); rho reconciles them.
		s := MustFun(sg.plus, sg.x, sg.x)
		u := MustFun(sg.plus, sg.y, MustFun(sg.s, sg.z))
		rho, sigma, ok := SemiUnify(s, u)
		require.True(t, ok)
		checkSemiUnifier(t, s, u, rho, sigma)
	})

	t.Run("symbol clash is unsolvable", func(t *testing.T) {
		_, _, ok := SemiUnify(MustFun(sg.f, sg.x), MustFun(sg.g, sg.x))
		assert.False(t, ok)
	})

	t.Run("structure over its own variable is unsolvable", func(t *testing.T) {
		// s(x) vs x would need rho(x) to contain itself.
		_, _, ok := SemiUnify(MustFun(sg.s, sg.x), sg.x)
		assert.False(t, ok)
	})

	t.Run("identical terms", func(t *testing.T) {
		s := MustFun(sg.plus, sg.x, sg.y)
		rho, sigma, ok := SemiUnify(s, s)
		require.True(t, ok)
		checkSemiUnifier(t, s, s, rho, sigma)
	})
}
