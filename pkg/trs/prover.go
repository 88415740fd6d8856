package trs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gitrdm/gotrs/internal/parallel"
)

// Prover is the top-level orchestrator. It races two full proof
// pipelines - one comparing terms directly, one comparing them through
// a per-problem argument filtering - and within each pipeline races
// several nontermination techniques over the problems the termination
// processors could not close. The first conclusive answer wins and
// cancels everything else.
type Prover struct {
	cfg *Config
	log *logrus.Logger
}

// NewProver creates a prover. A nil config means DefaultConfig.
func NewProver(cfg *Config) *Prover {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Prover{cfg: cfg, log: cfg.logger()}
}

// errConclusive signals through the errgroup that a pipeline reached a
// YES or NO, so the sibling pipeline should stop.
var errConclusive = errors.New("conclusive result reached")

// Prove analyzes the system and returns a proof: YES with a trace when
// every dependency-pair problem was closed, NO with a verified witness
// when an infinite rewrite sequence was found, INTERRUPTED when the
// budget ran out first, and MAYBE otherwise. YES and NO are mutually
// exclusive; both sides only ever report what they proved.
func (pv *Prover) Prove(ctx context.Context, t *Trs) *Proof {
	proof := NewProof()
	if t == nil {
		proof.Step("prover", "", "nil system")
		return proof
	}
	if len(t.Rules()) == 0 {
		proof.SetResult(ResultYes)
		proof.Step("prover", "", "empty system is terminating")
		return proof
	}
	if gr := t.GeneralizedRule(); gr != nil {
		w := &Witness{
			Kind:  WitnessGeneralizedRule,
			Start: gr.Lhs(),
			Rule:  gr,
		}
		w.Narrative = append(w.Narrative,
			"rule "+gr.String()+" has a right-hand-side variable absent from the left,",
			"instantiating it with the left-hand side rewrites "+gr.Lhs().String()+" to a term containing itself")
		proof.SetWitness(w)
		proof.Step("generalized rule", "", "found "+gr.String())
		return proof
	}
	if pv.cfg.Budget <= 0 {
		proof.SetResult(ResultInterrupted)
		proof.Step("prover", "", "no budget")
		return proof
	}

	ctx, cancel := context.WithTimeout(ctx, pv.cfg.Budget)
	defer cancel()

	pool := parallel.NewWorkerPool(pv.cfg.MaxWorkers)
	defer pool.Shutdown()
	tally := &atomic.Int64{}

	g, gctx := errgroup.WithContext(ctx)
	proofs := []*Proof{NewProof(), NewProof()}
	for i, filtering := range []bool{false, true} {
		sub := proofs[i]
		useFiltering := filtering
		system := t.DeepCopy()
		g.Go(func() error {
			return pv.pipeline(gctx, system, useFiltering, sub, tally, pool)
		})
	}
	// The only errors a pipeline returns are errConclusive and context
	// cancellation; both are the race working as intended.
	_ = g.Wait()

	for _, sub := range proofs {
		proof.Merge(sub)
	}
	if proof.Result() == ResultMaybe && ctx.Err() != nil {
		proof.SetResult(ResultInterrupted)
		proof.Step("prover", "", "budget exhausted")
	}
	return proof
}

// pipeline runs one full proof attempt: SCC decomposition, the DP
// framework, then the nontermination race over whatever stayed open.
func (pv *Prover) pipeline(ctx context.Context, t *Trs, useFiltering bool, proof *Proof, tally *atomic.Int64, pool *parallel.WorkerPool) error {
	label := "unfiltered"
	if useFiltering {
		label = "filtered"
	}
	pv.log.WithFields(logrus.Fields{
		"pipeline": label,
		"rules":    len(t.Rules()),
		"pairs":    len(t.Pairs()),
	}).Debug("pipeline started")

	coll := InitialProblems(t)
	if coll.IsEmpty() {
		proof.SetResult(ResultYes)
		proof.Step("dependency graph", "", "no cyclic SCC, system terminates ("+label+")")
		return errConclusive
	}
	proof.Step("dependency graph", "",
		fmt.Sprintf("%d cyclic SCCs (%s)", len(coll.Problems()), label))

	fw := NewDpFramework(DefaultProcessors(pv.cfg), useFiltering, proof, pv.log)
	allClosed, unsolved := fw.Solve(ctx, coll)
	if allClosed {
		proof.SetResult(ResultYes)
		proof.Step("dp framework", "", "all problems closed ("+label+")")
		pv.log.WithField("pipeline", label).Info("termination proved")
		return errConclusive
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if w, ok := pv.raceNontermination(ctx, t, unsolved, tally, pool); ok {
		proof.SetWitness(w)
		proof.Step(w.Kind.String(), "", "nontermination witness found ("+label+")")
		pv.log.WithFields(logrus.Fields{
			"pipeline": label,
			"witness":  w.Kind.String(),
		}).Info("nontermination proved")
		return errConclusive
	}
	return nil
}

// ntTechnique is one nontermination search strategy runnable per
// problem.
type ntTechnique struct {
	name string
	run  func(ctx context.Context, t *Trs, prob *DpProblem) (*Witness, bool)
}

// techniques returns the strategies raced per open problem: plain
// unfolding, unfolding restricted to the leftmost disagreement but
// allowed at variable positions, and pattern-rule search.
func (pv *Prover) techniques(tally *atomic.Int64) []ntTechnique {
	plain := pv.cfg.Unfold
	focused := pv.cfg.Unfold
	focused.Selection = SelectLeftmostDisagreement
	focused.VarPositions = true
	return []ntTechnique{
		{name: "unfolding", run: func(ctx context.Context, t *Trs, prob *DpProblem) (*Witness, bool) {
			return NewUnfolder(t, plain, tally, pv.log).FindLoop(ctx, prob)
		}},
		{name: "unfolding (leftmost)", run: func(ctx context.Context, t *Trs, prob *DpProblem) (*Witness, bool) {
			return NewUnfolder(t, focused, tally, pv.log).FindLoop(ctx, prob)
		}},
		{name: "pattern rules", run: func(ctx context.Context, t *Trs, prob *DpProblem) (*Witness, bool) {
			return NewPatternSearcher(t, pv.log).FindNonLoop(ctx, prob)
		}},
	}
}

// raceNontermination submits one task per (open problem, technique) to
// the shared worker pool and returns the first verified witness. Each
// task runs on its own shallow copy of the system so that concurrent
// searches never share derived state.
func (pv *Prover) raceNontermination(ctx context.Context, t *Trs, unsolved []*DpProblem, tally *atomic.Int64, pool *parallel.WorkerPool) (*Witness, bool) {
	ntCtx, ntCancel := context.WithTimeout(ctx, pv.cfg.NontermBudget)
	defer ntCancel()

	found := make(chan *Witness, 1)
	var wg sync.WaitGroup
	for _, prob := range unsolved {
		for _, tech := range pv.techniques(tally) {
			prob, tech := prob, tech
			wg.Add(1)
			task := func() {
				defer wg.Done()
				sys := t.ShallowCopy()
				start := time.Now()
				w, ok := tech.run(ntCtx, sys, prob)
				pv.log.WithFields(logrus.Fields{
					"technique": tech.name,
					"problem":   prob.Name(),
					"found":     ok,
					"elapsed":   time.Since(start),
				}).Debug("nontermination task finished")
				if ok {
					select {
					case found <- w:
					default:
					}
					ntCancel()
				}
			}
			if err := pool.Submit(ntCtx, task); err != nil {
				wg.Done()
				if errors.Is(err, parallel.ErrPoolShutdown) {
					break
				}
			}
		}
	}
	go func() {
		wg.Wait()
		close(found)
	}()

	w := <-found
	return w, w != nil
}
