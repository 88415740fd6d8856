package trs

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ProcVerdict is the outcome of one processor application.
type ProcVerdict int

const (
	// VerdictFailed: the processor could not make progress; the next
	// processor is tried. Expected and non-fatal.
	VerdictFailed ProcVerdict = iota
	// VerdictFinite: the processor closed the problem.
	VerdictFinite
	// VerdictDecomposed: the processor split the problem into smaller
	// subproblems, each provable in isolation.
	VerdictDecomposed
)

// ProcResult is what a termination processor returns. A processor is a
// pure function of (DP problem, optional argument filtering); it never
// reports nontermination - that outcome is reserved for the dedicated
// nontermination techniques.
type ProcResult struct {
	Verdict     ProcVerdict
	Subproblems []*DpProblem
	Note        string
}

func failed(note string) ProcResult { return ProcResult{Verdict: VerdictFailed, Note: note} }

func finite(note string) ProcResult { return ProcResult{Verdict: VerdictFinite, Note: note} }

func decomposed(subs []*DpProblem, note string) ProcResult {
	if len(subs) == 0 {
		return finite(note)
	}
	return ProcResult{Verdict: VerdictDecomposed, Subproblems: subs, Note: note}
}

// Processor attempts to close or shrink a DP problem. The filtering
// argument is nil for the unfiltered strategy; processors apply it to
// every term before comparison when present.
type Processor interface {
	// Name identifies the processor in traces and logs.
	Name() string
	// Process runs the processor on one problem. Implementations check
	// ctx at loop boundaries and return VerdictFailed promptly once it
	// is cancelled.
	Process(ctx context.Context, prob *DpProblem, filt *ArgFiltering) ProcResult
}

// DpFramework recursively applies termination processors to DP
// problems. Each open problem is fed through the ordered processor
// list; the first processor that closes or decomposes it wins, and
// subproblems are processed in the next round. Problems every
// processor fails on become "don't know" and are collected for the
// nontermination search.
type DpFramework struct {
	procs        []Processor
	useFiltering bool
	proof        *Proof
	log          *logrus.Logger
}

// NewDpFramework builds a framework over the given processor list.
// When useFiltering is set, every processor runs twice per problem:
// once unfiltered and once under the problem's argument filtering, as
// two independent strategies.
func NewDpFramework(procs []Processor, useFiltering bool, proof *Proof, log *logrus.Logger) *DpFramework {
	return &DpFramework{procs: procs, useFiltering: useFiltering, proof: proof, log: log}
}

// DefaultProcessors returns the standard processor order: the cheap
// syntactic embedding check first, then LPO, KBO, and polynomial
// interpretations.
func DefaultProcessors(cfg *Config) []Processor {
	return []Processor{
		NewEmbeddingProcessor(),
		NewLpoProcessor(),
		NewKboProcessor(),
		NewPolyProcessor(cfg.MaxCoefficients, cfg.MaxCoeffValue),
	}
}

// Solve drives the round-based loop over the collection. It returns
// whether every problem was closed, together with the problems left
// open ("don't know"). It never reports nontermination.
func (fw *DpFramework) Solve(ctx context.Context, coll *DpProbCollection) (bool, []*DpProblem) {
	open := append([]*DpProblem(nil), coll.Problems()...)
	var unsolved []*DpProblem

	for len(open) > 0 {
		select {
		case <-ctx.Done():
			unsolved = append(unsolved, open...)
			return false, unsolved
		default:
		}

		prob := open[0]
		open = open[1:]
		if prob.IsEmpty() {
			continue
		}

		res, procName := fw.processOne(ctx, prob)
		switch res.Verdict {
		case VerdictFinite:
			fw.proof.Step(procName, prob.Name(), "finite: "+res.Note)
		case VerdictDecomposed:
			fw.proof.Step(procName, prob.Name(),
				fmt.Sprintf("decomposed into %d subproblems: %s", len(res.Subproblems), res.Note))
			open = append(open, res.Subproblems...)
		default:
			fw.proof.Step("dp framework", prob.Name(), "no processor applies; handing to nontermination search")
			unsolved = append(unsolved, prob)
		}
	}
	return len(unsolved) == 0, unsolved
}

// processOne feeds one problem through the processor list and returns
// the first success along with the winning processor's display name.
func (fw *DpFramework) processOne(ctx context.Context, prob *DpProblem) (ProcResult, string) {
	for _, proc := range fw.procs {
		variants := []*ArgFiltering{nil}
		if fw.useFiltering {
			variants = append(variants, prob.Filtering())
		}
		for _, filt := range variants {
			select {
			case <-ctx.Done():
				return failed("cancelled"), proc.Name()
			default:
			}
			name := proc.Name()
			if filt != nil {
				name += " (filtered)"
			}
			res := proc.Process(ctx, prob, filt)
			if fw.log != nil {
				fw.log.WithFields(logrus.Fields{
					"processor": name,
					"problem":   prob.Name(),
					"verdict":   res.Verdict,
				}).Debug("processor applied")
			}
			if res.Verdict != VerdictFailed {
				return res, name
			}
			fw.proof.Step(name, prob.Name(), "failed: "+res.Note)
		}
	}
	return failed("processor list exhausted"), "dp framework"
}
