package trs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a config with budgets sized for unit tests.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Budget = 30 * time.Second
	cfg.NontermBudget = 10 * time.Second
	return cfg
}

// TestProveTermination tests the YES side of the orchestrator.
func TestProveTermination(t *testing.T) {
	ctx := context.Background()

	t.Run("empty system", func(t *testing.T) {
		sg := newSig()
		sys, err := NewTrs(sg.st, nil, StrategyFull)
		require.NoError(t, err)

		proof := NewProver(testConfig()).Prove(ctx, sys)
		assert.Equal(t, ResultYes, proof.Result())
		assert.Nil(t, proof.Witness())
	})

	t.Run("peano addition and multiplication", func(t *testing.T) {
		sg := newSig()
		sys := plusTimesSystem(t, sg)

		proof := NewProver(testConfig()).Prove(ctx, sys)
		assert.Equal(t, ResultYes, proof.Result())
		assert.Nil(t, proof.Witness())
		assert.NotEmpty(t, proof.Trace())
	})

	t.Run("system without recursion", func(t *testing.T) {
		sg := newSig()
		rules := []*RuleTrs{
			MustRule(MustFun(sg.f, sg.x), MustFun(sg.s, sg.x), 0),
		}
		sys, err := NewTrs(sg.st, rules, StrategyFull)
		require.NoError(t, err)

		// No cyclic SCC at all; the dependency graph alone concludes.
		proof := NewProver(testConfig()).Prove(ctx, sys)
		assert.Equal(t, ResultYes, proof.Result())
	})
}

// TestProveNontermination tests the NO side of the orchestrator.
func TestProveNontermination(t *testing.T) {
	ctx := context.Background()

	t.Run("generalized rule short-circuits", func(t *testing.T) {
		sg := newSig()
		rules := []*RuleTrs{
			MustRule(MustFun(sg.f, sg.x), MustFun(sg.plus, sg.x, sg.y), 0),
		}
		sys, err := NewTrs(sg.st, rules, StrategyFull)
		require.NoError(t, err)

		proof := NewProver(testConfig()).Prove(ctx, sys)
		assert.Equal(t, ResultNo, proof.Result())
		require.NotNil(t, proof.Witness())
		assert.Equal(t, WitnessGeneralizedRule, proof.Witness().Kind)
	})

	t.Run("rule with identical sides", func(t *testing.T) {
		sg := newSig()
		rules := []*RuleTrs{
			MustRule(MustFun(sg.f, sg.x), MustFun(sg.f, sg.x), 0),
		}
		sys, err := NewTrs(sg.st, rules, StrategyFull)
		require.NoError(t, err)

		proof := NewProver(testConfig()).Prove(ctx, sys)
		assert.Equal(t, ResultNo, proof.Result())
		require.NotNil(t, proof.Witness())
		start, isFun := proof.Witness().Start.(*Fun)
		require.True(t, isFun)
		assert.Same(t, sg.f, start.Symbol())
	})

	t.Run("self-pumping rule", func(t *testing.T) {
		sg := newSig()
		sys := pumpSystem(t, sg)

		proof := NewProver(testConfig()).Prove(ctx, sys)
		assert.Equal(t, ResultNo, proof.Result())
		require.NotNil(t, proof.Witness())
		assert.NotEmpty(t, proof.Witness().Narrative)
	})

	t.Run("mutual recursion", func(t *testing.T) {
		sg := newSig()
		sys := mutualSystem(t, sg)

		proof := NewProver(testConfig()).Prove(ctx, sys)
		assert.Equal(t, ResultNo, proof.Result())
		require.NotNil(t, proof.Witness())
	})

	t.Run("loop-free doubling counters", func(t *testing.T) {
		sg := newSig()
		sys := counterSystem(t, sg)

		// Only the recurrent-pair search can certify this system:
		// no term of its derivation reaches an instance of itself.
		proof := NewProver(testConfig()).Prove(ctx, sys)
		assert.Equal(t, ResultNo, proof.Result())
		require.NotNil(t, proof.Witness())
		assert.Equal(t, WitnessPattern, proof.Witness().Kind)
		assert.True(t, IsGround(proof.Witness().Start))
	})
}

// TestProveEdges tests the remaining orchestrator outcomes.
func TestProveEdges(t *testing.T) {
	ctx := context.Background()

	t.Run("nil system stays inconclusive", func(t *testing.T) {
		proof := NewProver(testConfig()).Prove(ctx, nil)
		assert.Equal(t, ResultMaybe, proof.Result())
	})

	t.Run("zero budget reports interrupted", func(t *testing.T) {
		sg := newSig()
		sys := mutualSystem(t, sg)

		cfg := testConfig()
		cfg.Budget = 0
		proof := NewProver(cfg).Prove(ctx, sys)
		assert.Equal(t, ResultInterrupted, proof.Result())
	})

	t.Run("results exclude each other", func(t *testing.T) {
		sg := newSig()
		for name, sys := range map[string]*Trs{
			"terminating":    plusSystem(t, newSig()),
			"nonterminating": mutualSystem(t, sg),
		} {
			proof := NewProver(testConfig()).Prove(ctx, sys)
			switch proof.Result() {
			case ResultYes:
				assert.Nil(t, proof.Witness(), name)
			case ResultNo:
				assert.NotNil(t, proof.Witness(), name)
			default:
				t.Fatalf("%s: expected a conclusive result, got %s", name, proof.Result())
			}
		}
	})

	t.Run("nil config falls back to defaults", func(t *testing.T) {
		pv := NewProver(nil)
		sg := newSig()
		proof := pv.Prove(ctx, plusSystem(t, sg))
		assert.Equal(t, ResultYes, proof.Result())
	})
}
