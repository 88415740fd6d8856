package trs

import (
	"fmt"
	"sort"
	"strings"
)

// ArgFiltering maps function and tuple symbols to a projection of their
// argument positions: either a single retained position (the symbol
// collapses to that argument) or an ordered list of retained positions.
// Reduction-order processors apply the filtering to every term before
// comparison; discarding argument positions often makes an orientation
// possible that the unfiltered terms do not admit.
//
// Any filtering is sound in this role; the choice only affects proving
// power. Filterings are built lazily per DP problem.
type ArgFiltering struct {
	m map[*FunSymbol]argFilter
}

type argFilter struct {
	collapse bool
	pos      int   // retained position when collapsing
	keep     []int // retained positions otherwise
}

// BuildArgFiltering derives a filtering for the problem's symbols with a
// simple heuristic: for every symbol, argument positions that only ever
// hold variables (across all rules and pairs of the problem) are
// dropped. Such positions carry no structure for an order to compare,
// and removing them shrinks every term the processors look at. Symbols
// whose positions all qualify keep their first position instead of
// vanishing entirely.
func BuildArgFiltering(prob *DpProblem) *ArgFiltering {
	structural := make(map[*FunSymbol][]bool)
	note := func(t Term) {
		for _, p := range Positions(t) {
			sub, err := SubtermAt(t, p)
			if err != nil {
				continue
			}
			f, ok := sub.(*Fun)
			if !ok {
				continue
			}
			if _, seen := structural[f.sym]; !seen {
				structural[f.sym] = make([]bool, f.sym.arity)
			}
			for i, a := range f.args {
				if !a.IsVar() {
					structural[f.sym][i] = true
				}
			}
		}
	}
	for _, r := range prob.trs.rules {
		note(r.lhs)
		note(r.rhs)
	}
	for _, p := range prob.pairs {
		note(p.lhs)
		note(p.rhs)
	}

	af := &ArgFiltering{m: make(map[*FunSymbol]argFilter)}
	for sym, flags := range structural {
		if sym.arity == 0 {
			continue
		}
		var keep []int
		for i, structured := range flags {
			if structured {
				keep = append(keep, i)
			}
		}
		if len(keep) == len(flags) {
			continue // nothing dropped, identity filter
		}
		if len(keep) == 0 {
			keep = []int{0}
		}
		af.m[sym] = argFilter{keep: keep}
	}
	return af
}

// Collapse records that sym projects to its argument at pos.
func (af *ArgFiltering) Collapse(sym *FunSymbol, pos int) {
	af.m[sym] = argFilter{collapse: true, pos: pos}
}

// Keep records the retained positions of sym.
func (af *ArgFiltering) Keep(sym *FunSymbol, positions ...int) {
	af.m[sym] = argFilter{keep: positions}
}

// Apply projects t through the filtering. Filtered applications are
// re-interned at their reduced arity in st, so two filtered occurrences
// of the same symbol stay reference-identical.
func (af *ArgFiltering) Apply(t Term, st *SymbolTable) Term {
	f, ok := t.(*Fun)
	if !ok {
		return t
	}
	fl, filtered := af.m[f.sym]
	if !filtered {
		args := make([]Term, len(f.args))
		for i, a := range f.args {
			args[i] = af.Apply(a, st)
		}
		return &Fun{sym: f.sym, args: args}
	}
	if fl.collapse {
		return af.Apply(f.args[fl.pos], st)
	}
	args := make([]Term, 0, len(fl.keep))
	for _, i := range fl.keep {
		args = append(args, af.Apply(f.args[i], st))
	}
	sym := st.intern(symbolKey{name: f.sym.name, arity: len(args), tuple: f.sym.tuple})
	return &Fun{sym: sym, args: args}
}

// String renders the non-identity entries deterministically.
func (af *ArgFiltering) String() string {
	type entry struct {
		sym *FunSymbol
		fl  argFilter
	}
	entries := make([]entry, 0, len(af.m))
	for sym, fl := range af.m {
		entries = append(entries, entry{sym, fl})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].sym.String() < entries[j].sym.String() })
	parts := make([]string, len(entries))
	for i, e := range entries {
		if e.fl.collapse {
			parts[i] = fmt.Sprintf("%s=>%d", e.sym, e.fl.pos)
		} else {
			parts[i] = fmt.Sprintf("%s=>%v", e.sym, e.fl.keep)
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
