package trs

import (
	"sort"
	"strings"
)

// LexOrder is a strict partial order over function symbols, kept
// transitively closed under insertion. LPO and KBO grow one
// incrementally while orienting rules: each Add either extends the
// precedence consistently or is rejected, leaving the order unchanged.
type LexOrder struct {
	gt map[*FunSymbol]map[*FunSymbol]bool
}

// NewLexOrder creates an empty order.
func NewLexOrder() *LexOrder {
	return &LexOrder{gt: make(map[*FunSymbol]map[*FunSymbol]bool)}
}

// Clone creates an independent copy; used to backtrack a failed
// orientation branch.
func (o *LexOrder) Clone() *LexOrder {
	out := NewLexOrder()
	for f, row := range o.gt {
		cp := make(map[*FunSymbol]bool, len(row))
		for g := range row {
			cp[g] = true
		}
		out.gt[f] = cp
	}
	return out
}

// Greater reports whether f > g holds in the current order.
func (o *LexOrder) Greater(f, g *FunSymbol) bool {
	return o.gt[f][g]
}

// Add inserts f > g and closes the order transitively. It returns false
// and leaves the order unchanged if the insertion would make the order
// reflexive (f == g) or contradict an existing g > f.
func (o *LexOrder) Add(f, g *FunSymbol) bool {
	if f == g {
		return false
	}
	if o.gt[g][f] {
		return false
	}
	if o.gt[f][g] {
		return true
	}
	// Everything >= f gets everything <= g below it.
	above := []*FunSymbol{f}
	for h, row := range o.gt {
		if row[f] {
			above = append(above, h)
		}
	}
	below := []*FunSymbol{g}
	for h := range o.gt[g] {
		below = append(below, h)
	}
	// A cycle through the closure is a contradiction too.
	for _, h := range above {
		for _, k := range below {
			if h == k {
				return false
			}
		}
	}
	for _, h := range above {
		row := o.gt[h]
		if row == nil {
			row = make(map[*FunSymbol]bool)
			o.gt[h] = row
		}
		for _, k := range below {
			row[k] = true
		}
	}
	return true
}

// Size returns the number of f > g facts in the closure.
func (o *LexOrder) Size() int {
	n := 0
	for _, row := range o.gt {
		n += len(row)
	}
	return n
}

// Maximal reports whether f is a maximum of the order among the given
// symbols: no listed symbol is above f, and f is above or incomparable
// to all of them. Needed for the KBO admissibility condition.
func (o *LexOrder) Maximal(f *FunSymbol, symbols []*FunSymbol) bool {
	for _, g := range symbols {
		if g != f && o.gt[g][f] {
			return false
		}
	}
	return true
}

// String renders the order's facts deterministically.
func (o *LexOrder) String() string {
	var parts []string
	for f, row := range o.gt {
		for g := range row {
			parts = append(parts, f.String()+">"+g.String())
		}
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}
