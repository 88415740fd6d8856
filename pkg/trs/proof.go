package trs

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Result is the overall outcome of an analysis.
type Result int

const (
	// ResultMaybe means no technique reached a conclusion.
	ResultMaybe Result = iota
	// ResultYes means the system terminates.
	ResultYes
	// ResultNo means the system admits an infinite rewrite sequence.
	ResultNo
	// ResultInterrupted means the time budget elapsed before any
	// technique concluded; the partial trace is kept.
	ResultInterrupted
)

// String renders the result the way provers report it.
func (r Result) String() string {
	switch r {
	case ResultYes:
		return "YES"
	case ResultNo:
		return "NO"
	case ResultInterrupted:
		return "INTERRUPTED"
	default:
		return "MAYBE"
	}
}

// WitnessKind enumerates the fixed set of nontermination witnesses.
type WitnessKind int

const (
	// WitnessGeneralizedRule: a rule has a right-hand-side variable
	// absent from the left.
	WitnessGeneralizedRule WitnessKind = iota
	// WitnessLoop: loop found by unfolding plus semi-unification.
	WitnessLoop
	// WitnessPattern: non-looping nontermination via pattern rules.
	WitnessPattern
)

// String names the witness kind.
func (k WitnessKind) String() string {
	switch k {
	case WitnessGeneralizedRule:
		return "generalized rule"
	case WitnessLoop:
		return "loop"
	case WitnessPattern:
		return "pattern rule"
	default:
		return "unknown"
	}
}

// Witness is a nontermination witness: a term that starts an infinite
// rewrite sequence plus the justification that produced it. The variant
// set is closed over WitnessKind; the optional fields are populated per
// kind (Rule for loops and generalized rules, Pattern for pattern-rule
// witnesses).
type Witness struct {
	Kind      WitnessKind
	Start     Term
	Rule      *RuleTrs
	Pattern   *PatternRule
	Narrative []string
}

// String renders the witness with its justification chain.
func (w *Witness) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "nonterminating term: %s (%s)", w.Start, w.Kind)
	for _, line := range w.Narrative {
		b.WriteString("\n  ")
		b.WriteString(line)
	}
	return b.String()
}

// TraceEntry records one processor or technique attempt for the proof
// narrative.
type TraceEntry struct {
	When      time.Time
	Technique string
	Problem   string
	Outcome   string
}

// String renders the entry as "technique [problem]: outcome".
func (e TraceEntry) String() string {
	if e.Problem == "" {
		return e.Technique + ": " + e.Outcome
	}
	return e.Technique + " [" + e.Problem + "]: " + e.Outcome
}

// Proof is the structured result handed to the reporting collaborator:
// a Result, an optional witness, and a verbose trace of every processor
// and technique attempted. Proofs are merged by the orchestrator from
// concurrently produced partial proofs, so appending is synchronized.
type Proof struct {
	mu      sync.Mutex
	result  Result
	witness *Witness
	trace   []TraceEntry
}

// NewProof creates an inconclusive proof.
func NewProof() *Proof {
	return &Proof{result: ResultMaybe}
}

// Result returns the proof's outcome.
func (p *Proof) Result() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Witness returns the nontermination witness, or nil.
func (p *Proof) Witness() *Witness {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.witness
}

// Trace returns a copy of the trace entries in append order.
func (p *Proof) Trace() []TraceEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TraceEntry, len(p.trace))
	copy(out, p.trace)
	return out
}

// SetResult records the outcome, keeping an existing conclusive result:
// YES and NO, once set, are never overwritten by MAYBE or INTERRUPTED.
func (p *Proof) SetResult(r Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == ResultYes || p.result == ResultNo {
		return
	}
	p.result = r
}

// SetWitness records the witness and sets the result to NO.
func (p *Proof) SetWitness(w *Witness) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.witness == nil {
		p.witness = w
		p.result = ResultNo
	}
}

// Step appends a trace entry.
func (p *Proof) Step(technique, problem, outcome string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trace = append(p.trace, TraceEntry{
		When:      time.Now(),
		Technique: technique,
		Problem:   problem,
		Outcome:   outcome,
	})
}

// Merge folds another proof's trace (and, if this proof is still
// inconclusive, its result and witness) into p.
func (p *Proof) Merge(other *Proof) {
	if other == nil || other == p {
		return
	}
	otherTrace := other.Trace()
	otherResult := other.Result()
	otherWitness := other.Witness()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.trace = append(p.trace, otherTrace...)
	if p.result != ResultYes && p.result != ResultNo {
		p.result = otherResult
		if p.witness == nil {
			p.witness = otherWitness
		}
	}
}

// String renders the result, the witness if any, and the full trace.
func (p *Proof) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var b strings.Builder
	b.WriteString(p.result.String())
	if p.witness != nil {
		b.WriteString("\n")
		b.WriteString(p.witness.String())
	}
	for _, e := range p.trace {
		b.WriteString("\n")
		b.WriteString(e.String())
	}
	return b.String()
}
