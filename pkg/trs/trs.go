package trs

import (
	"sync"

	"github.com/pkg/errors"
)

// Strategy is the rewriting strategy tag carried by a Trs. Only full
// (unrestricted) rewriting is supported; constructing a Trs with any
// other strategy fails.
type Strategy int

const (
	// StrategyFull is unrestricted rewriting: any redex may be
	// contracted at any position.
	StrategyFull Strategy = iota
	// StrategyInnermost is recognized but not supported.
	StrategyInnermost
	// StrategyOutermost is recognized but not supported.
	StrategyOutermost
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyFull:
		return "full"
	case StrategyInnermost:
		return "innermost"
	case StrategyOutermost:
		return "outermost"
	default:
		return "unknown"
	}
}

// Construction errors. These are contract violations: analysis of a Trs
// that failed to construct never starts.
var (
	ErrNilRule             = errors.New("trs: nil rule")
	ErrUnsupportedStrategy = errors.New("trs: only the full rewriting strategy is supported")
	ErrNilSymbolTable      = errors.New("trs: nil symbol table")
)

// Trs is a term rewrite system: an ordered collection of rules plus the
// structures derived from them. It is immutable after construction
// except through DeepCopy/ShallowCopy, which hand independent workers
// non-interfering state.
//
// Derived at construction: the defined-symbol set (root symbols of
// left-hand sides) and the dependency pairs. Derived lazily and cached:
// the estimated dependency graph and the ascendant/descendant symbol
// reachability ("family") graphs.
type Trs struct {
	st       *SymbolTable
	rules    []*RuleTrs
	strategy Strategy

	defined map[*FunSymbol]bool
	pairs   []*RuleTrs

	dgOnce sync.Once
	dg     *DepGraph

	famOnce sync.Once
	fam     *familyGraphs
}

// NewTrs builds a rewrite system from rules. The symbol table must be
// the one the rules' symbols were interned in. Fails on a nil table, a
// nil rule, or an unsupported strategy.
func NewTrs(st *SymbolTable, rules []*RuleTrs, strategy Strategy) (*Trs, error) {
	if st == nil {
		return nil, ErrNilSymbolTable
	}
	if strategy != StrategyFull {
		return nil, errors.Wrapf(ErrUnsupportedStrategy, "got %s", strategy)
	}
	for i, r := range rules {
		if r == nil {
			return nil, errors.Wrapf(ErrNilRule, "at index %d", i)
		}
	}
	t := &Trs{st: st, rules: rules, strategy: strategy}
	t.computeDefined()
	t.computePairs()
	return t, nil
}

// SymbolTable returns the interning table the system's symbols live in.
func (t *Trs) SymbolTable() *SymbolTable { return t.st }

// Rules returns the rule list. Callers must not modify it.
func (t *Trs) Rules() []*RuleTrs { return t.rules }

// Strategy returns the rewriting strategy tag.
func (t *Trs) Strategy() Strategy { return t.strategy }

// Pairs returns the dependency pairs derived at construction.
func (t *Trs) Pairs() []*RuleTrs { return t.pairs }

// IsDefined reports whether sym is a defined symbol (the root of some
// left-hand side). Tuple symbols are looked up through their plain
// counterpart.
func (t *Trs) IsDefined(sym *FunSymbol) bool {
	if sym.tuple {
		sym = t.st.Untuple(sym)
	}
	return t.defined[sym]
}

func (t *Trs) computeDefined() {
	t.defined = make(map[*FunSymbol]bool)
	for _, r := range t.rules {
		t.defined[r.lhs.sym] = true
	}
}

// computePairs derives the dependency pairs: for each rule l -> r and
// every subterm r|p whose root symbol is defined, the pair
// l# -> (r|p)#. This captures every potential recursive call.
func (t *Trs) computePairs() {
	t.pairs = nil
	for _, r := range t.rules {
		capped := t.capTuple(r.lhs)
		for _, p := range Positions(r.rhs) {
			sub, err := SubtermAt(r.rhs, p)
			if err != nil {
				continue
			}
			f, ok := sub.(*Fun)
			if !ok || !t.defined[f.sym] {
				continue
			}
			pair := &RuleTrs{lhs: capped, rhs: t.capTuple(f), num: r.num}
			t.pairs = append(t.pairs, pair)
		}
	}
}

// capTuple returns f with its root symbol tuple-marked. Arguments are
// shared, not copied.
func (t *Trs) capTuple(f *Fun) *Fun {
	return &Fun{sym: t.st.Tuple(f.sym), args: f.args}
}

// DepGraph returns the estimated dependency graph over the system's
// dependency pairs, building it on first use.
func (t *Trs) DepGraph() *DepGraph {
	t.dgOnce.Do(func() {
		t.dg = buildDepGraph(t, t.pairs)
	})
	return t.dg
}

// DeepCopy returns a fully independent copy: independent rule objects
// and independent dependency pairs. The copy shares only the symbol
// table (symbols are interned and immutable). Cached graphs are not
// copied; the copy recomputes them on demand.
func (t *Trs) DeepCopy() *Trs {
	out := &Trs{st: t.st, strategy: t.strategy}
	out.rules = make([]*RuleTrs, len(t.rules))
	for i, r := range t.rules {
		out.rules[i] = r.DeepCopy(make(map[Term]Term))
	}
	out.computeDefined()
	out.computePairs()
	return out
}

// ShallowCopy returns a copy with the rule slice duplicated but the rule
// objects shared, and all derived state (dependency pairs, graphs)
// reset. Used to hand independent workers non-interfering state without
// recomputing expensive derived structures unless they are needed.
func (t *Trs) ShallowCopy() *Trs {
	out := &Trs{st: t.st, strategy: t.strategy}
	out.rules = make([]*RuleTrs, len(t.rules))
	copy(out.rules, t.rules)
	out.computeDefined()
	out.computePairs()
	return out
}

// GeneralizedRule returns the first rule whose right-hand side has a
// variable absent from the left, or nil. Such a rule witnesses
// nontermination immediately, before any dependency-pair analysis.
func (t *Trs) GeneralizedRule() *RuleTrs {
	for _, r := range t.rules {
		if r.IsGeneralized() {
			return r
		}
	}
	return nil
}

// String renders the system one rule per line.
func (t *Trs) String() string {
	return rulesString(t.rules)
}
