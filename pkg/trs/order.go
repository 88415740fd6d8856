package trs

import (
	"context"
	"fmt"
)

// Shared skeleton of the reduction-order processors.
//
// Every reduction order attempts the same move: make every rule weakly
// decreasing and every dependency pair at least weakly decreasing, with
// at least one pair strictly decreasing. The strictly decreasing pairs
// can then be removed, shrinking the problem; the remainder is
// re-decomposed along the estimated dependency graph.

// termPair is one orientation obligation l (>=|>) r.
type termPair struct {
	l, r Term
}

// orienter is the per-order strategy: given the rule obligations and the
// pair obligations, report which pairs could be made strict while
// keeping everything else weak. ok is false when no consistent
// orientation exists.
type orienter interface {
	name() string
	orient(ctx context.Context, rules, pairs []termPair) (strict []bool, ok bool, note string)
}

// orderProcessor adapts an orienter to the Processor interface,
// handling argument filtering and strict-pair removal uniformly.
type orderProcessor struct {
	o orienter
}

func (op *orderProcessor) Name() string { return op.o.name() }

func (op *orderProcessor) Process(ctx context.Context, prob *DpProblem, filt *ArgFiltering) ProcResult {
	st := prob.trs.SymbolTable()
	project := func(t Term) Term {
		if filt == nil {
			return t
		}
		return filt.Apply(t, st)
	}

	rules := make([]termPair, 0, len(prob.trs.rules))
	for _, r := range prob.trs.rules {
		rules = append(rules, termPair{project(r.lhs), project(r.rhs)})
	}
	pairs := make([]termPair, 0, len(prob.pairs))
	for _, p := range prob.pairs {
		pairs = append(pairs, termPair{project(p.lhs), project(p.rhs)})
	}

	strict, ok, note := op.o.orient(ctx, rules, pairs)
	if !ok {
		return failed(note)
	}
	var remaining []*RuleTrs
	removed := 0
	for i, pr := range prob.pairs {
		if i < len(strict) && strict[i] {
			removed++
		} else {
			remaining = append(remaining, pr)
		}
	}
	if removed == 0 {
		return failed("no strictly decreasing pair: " + note)
	}
	if len(remaining) == 0 {
		return finite(note)
	}
	subs := prob.withPairs(remaining, "r").Decompose()
	return decomposed(subs, fmt.Sprintf("%s; removed %d of %d pairs", note, removed, len(prob.pairs)))
}
