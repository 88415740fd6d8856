package trs

import (
	"context"
	"fmt"
)

// Knuth-Bendix order.
//
// KBO compares terms by weight first and falls back to the precedence
// (and then to lexicographic argument comparison) on ties. Like the LPO
// processor, the precedence is grown by constraint propagation while
// orienting; the weight function is fixed per attempt.

// Weights is a symbol weight assignment. Symbols without an entry weigh
// DefaultWeight; variables weigh VarWeight.
type Weights struct {
	table         map[*FunSymbol]int
	DefaultWeight int
	VarWeight     int
}

// NewWeights creates a unit weight assignment: every symbol and every
// variable weighs 1.
func NewWeights() *Weights {
	return &Weights{table: make(map[*FunSymbol]int), DefaultWeight: 1, VarWeight: 1}
}

// Set assigns a weight to one symbol. Returns an error for a negative
// weight or a weight below VarWeight on a constant (KBO requires
// constants to weigh at least the variable weight).
func (w *Weights) Set(sym *FunSymbol, weight int) error {
	if weight < 0 {
		return fmt.Errorf("Weights.Set: negative weight %d for %s", weight, sym)
	}
	if sym.arity == 0 && weight < w.VarWeight {
		return fmt.Errorf("Weights.Set: constant %s must weigh at least the variable weight %d", sym, w.VarWeight)
	}
	w.table[sym] = weight
	return nil
}

// Of returns the weight of sym.
func (w *Weights) Of(sym *FunSymbol) int {
	if v, ok := w.table[sym]; ok {
		return v
	}
	return w.DefaultWeight
}

// TermWeight sums the weights of all symbol and variable occurrences.
func (w *Weights) TermWeight(t Term) int {
	switch x := t.(type) {
	case *Var:
		return w.VarWeight
	case *Fun:
		sum := w.Of(x.sym)
		for _, a := range x.args {
			sum += w.TermWeight(a)
		}
		return sum
	}
	return 0
}

// Admissible checks the KBO admissibility condition against a
// precedence: every unary symbol of weight 0 must be maximal among the
// given symbols.
func (w *Weights) Admissible(ord *LexOrder, symbols []*FunSymbol) bool {
	for _, sym := range symbols {
		if sym.arity == 1 && w.Of(sym) == 0 && !ord.Maximal(sym, symbols) {
			return false
		}
	}
	return true
}

// kboVarCondition checks that every variable occurs in s at least as
// often as in t.
func kboVarCondition(s, t Term) bool {
	for _, v := range Vars(t) {
		if VarOccurrences(t, v) > VarOccurrences(s, v) {
			return false
		}
	}
	return true
}

// kboGT decides s >kbo t under weights w, extending ord on demand.
func kboGT(s, t Term, w *Weights, ord *LexOrder) bool {
	if !kboVarCondition(s, t) {
		return false
	}
	ws, wt := w.TermWeight(s), w.TermWeight(t)
	if ws > wt {
		return true
	}
	if ws < wt {
		return false
	}
	sf, ok := s.(*Fun)
	if !ok {
		return false
	}
	tf, ok := t.(*Fun)
	if !ok {
		// Equal weight against a variable: only the classic unary-spine
		// case applies, which unit weights exclude.
		return false
	}
	if sf.sym != tf.sym {
		return tryOrder(ord, func(c *LexOrder) bool { return c.Add(sf.sym, tf.sym) })
	}
	return tryOrder(ord, func(c *LexOrder) bool {
		for i := range sf.args {
			if DeepEquals(sf.args[i], tf.args[i]) {
				continue
			}
			return kboGT(sf.args[i], tf.args[i], w, c)
		}
		return false
	})
}

// kboGE holds on equality or kboGT.
func kboGE(s, t Term, w *Weights, ord *LexOrder) bool {
	if DeepEquals(s, t) {
		return true
	}
	return kboGT(s, t, w, ord)
}

type kboOrienter struct{}

// NewKboProcessor returns the Knuth-Bendix-order processor with unit
// weights.
func NewKboProcessor() Processor {
	return &orderProcessor{o: kboOrienter{}}
}

func (kboOrienter) name() string { return "kbo" }

func (kboOrienter) orient(ctx context.Context, rules, pairs []termPair) ([]bool, bool, string) {
	w := NewWeights()
	ord := NewLexOrder()
	for _, r := range rules {
		select {
		case <-ctx.Done():
			return nil, false, "cancelled"
		default:
		}
		if !kboGE(r.l, r.r, w, ord) {
			return nil, false, "a rule cannot be weakly oriented"
		}
	}
	strict := make([]bool, len(pairs))
	any := false
	for i, p := range pairs {
		select {
		case <-ctx.Done():
			return nil, false, "cancelled"
		default:
		}
		if tryOrder(ord, func(c *LexOrder) bool { return kboGT(p.l, p.r, w, c) }) {
			strict[i] = true
			any = true
			continue
		}
		if !kboGE(p.l, p.r, w, ord) {
			return nil, false, "a pair cannot be weakly oriented"
		}
	}
	if !any {
		return nil, false, "no pair strictly decreases"
	}
	var syms []*FunSymbol
	for _, p := range append(rules, pairs...) {
		for sym := range FunSymbols(p.l) {
			syms = append(syms, sym)
		}
		for sym := range FunSymbols(p.r) {
			syms = append(syms, sym)
		}
	}
	if !w.Admissible(ord, syms) {
		return nil, false, "weight function not admissible for the derived precedence"
	}
	return strict, true, "kbo with unit weights and precedence " + ord.String()
}
