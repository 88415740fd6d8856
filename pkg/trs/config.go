package trs

import (
	"io"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// SelectionStrategy chooses which positions forward unfolding expands.
type SelectionStrategy int

const (
	// SelectAllPositions unfolds at every eligible position.
	SelectAllPositions SelectionStrategy = iota
	// SelectLeftmostDisagreement unfolds only at the leftmost position
	// where the rule's two sides disagree, pruning unfoldings that
	// cannot contribute to closing the disagreement.
	SelectLeftmostDisagreement
)

// String names the strategy.
func (s SelectionStrategy) String() string {
	if s == SelectLeftmostDisagreement {
		return "leftmost-disagreement"
	}
	return "all-positions"
}

// UnfoldConfig holds the knobs of the loop-by-unfolding search.
type UnfoldConfig struct {
	// MaxDepth bounds the number of unfolding iterations.
	MaxDepth int
	// Forward enables forward unfolding (rewriting right-hand sides).
	Forward bool
	// Backward enables backward unfolding (narrowing left-hand sides).
	Backward bool
	// VarPositions allows unfolding at variable positions.
	VarPositions bool
	// Selection picks the position-selection strategy.
	Selection SelectionStrategy
	// MaxRules caps the total number of generated rules across all
	// concurrent unfolding tasks (shared atomic tally).
	MaxRules int64
}

// Config carries every knob the core consumes. It is supplied by the
// external options collaborator and threaded explicitly through the
// orchestrator; the core keeps no global option state.
type Config struct {
	// Budget is the total wall-clock budget for the whole analysis.
	Budget time.Duration
	// NontermBudget is the wall-clock budget for nontermination search
	// once the DP framework has stalled.
	NontermBudget time.Duration
	// Unfold configures the loop search.
	Unfold UnfoldConfig
	// MaxCoefficients caps the number of symbolic polynomial
	// coefficients per interpretation attempt.
	MaxCoefficients int
	// MaxCoeffValue bounds the integer interval tried for each
	// coefficient.
	MaxCoeffValue int
	// MaxWorkers sizes the proof-task worker pool. Defaults to the
	// number of CPUs.
	MaxWorkers int
	// Logger receives structured progress logs. Nil disables logging.
	Logger *logrus.Logger
}

// DefaultConfig returns the configuration used when the options
// collaborator supplies nothing.
func DefaultConfig() *Config {
	return &Config{
		Budget:        10 * time.Second,
		NontermBudget: 5 * time.Second,
		Unfold: UnfoldConfig{
			MaxDepth:     5,
			Forward:      true,
			Backward:     true,
			VarPositions: false,
			Selection:    SelectAllPositions,
			MaxRules:     20000,
		},
		MaxCoefficients: 24,
		MaxCoeffValue:   2,
		MaxWorkers:      runtime.NumCPU(),
	}
}

// logger returns the configured logger or a discarding one.
func (c *Config) logger() *logrus.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discardLogger()
}

// discardLogger returns a logger that writes nowhere.
func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}
