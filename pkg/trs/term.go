// Package trs implements termination and non-termination analysis for
// term rewrite systems (TRSs). Given a finite set of rewrite rules over
// first-order terms, the package either proves that no infinite rewrite
// sequence exists, exhibits a term that starts one, or reports that it
// does not know.
//
// The analysis is a best-effort combination of sound proof techniques run
// competitively under configurable time budgets:
//   - The dependency-pair framework decomposes the termination obligation
//     into independent DP problems (one per SCC of the estimated
//     dependency graph).
//   - Reduction-order processors (homeomorphic embedding, lexicographic
//     path order, Knuth-Bendix order, polynomial interpretations) close or
//     shrink DP problems.
//   - Nontermination search (loop detection by rule unfolding, and
//     non-looping nontermination via pattern rules and recurrent pairs)
//     looks for a witness term on the problems the processors leave open.
//   - A concurrent orchestrator races independently configured strategy
//     pipelines against a shared deadline and keeps the first success.
//
// # Terms
//
// A Term is either a logic-free first-order variable (*Var) or a function
// application (*Fun). Function symbols are interned by (name, arity) in a
// SymbolTable so that identical symbols at different call sites are
// reference-identical. A symbol may additionally carry a tuple marker,
// used only for the roots of dependency pairs.
//
// Terms are immutable after construction. Structural operations
// (replacement at a position, substitution application, renaming) build
// new terms and share unaffected subterms with their input.
//
// # Thread safety
//
// SymbolTable is safe for concurrent use. Terms and substitutions are
// immutable or confined to one proof task; the orchestrator hands every
// concurrent task its own copy of the rewrite system, so tasks never
// share mutable state.
package trs

import (
	"fmt"
	"strings"
)

// Term represents a first-order term: a variable or a function
// application. The variant set is closed; the only implementations are
// *Var and *Fun.
type Term interface {
	// String returns a human-readable representation of the term.
	String() string

	// IsVar returns true if this term is a variable.
	IsVar() bool

	// sealed restricts implementations to this package.
	sealed()
}

// Var is a term variable. Variables have identity but no structure: two
// *Var values denote the same variable exactly when they are the same
// pointer. Fresh variables are drawn from a SymbolTable.
type Var struct {
	id   int64
	name string
}

// String returns the variable's display name, or "_<id>" if unnamed.
func (v *Var) String() string {
	if v.name != "" {
		return v.name
	}
	return fmt.Sprintf("_%d", v.id)
}

// IsVar always returns true for variables.
func (v *Var) IsVar() bool { return true }

// ID returns the variable's unique identifier.
func (v *Var) ID() int64 { return v.id }

func (v *Var) sealed() {}

// Fun is a function application f(t1,...,tn). A nullary application is a
// constant. The symbol carries the arity; NewFun rejects argument lists
// of the wrong length.
type Fun struct {
	sym  *FunSymbol
	args []Term
}

// NewFun creates a function application of sym to args.
// Returns an error if sym is nil, any argument is nil, or the number of
// arguments does not match the symbol's arity.
func NewFun(sym *FunSymbol, args ...Term) (*Fun, error) {
	if sym == nil {
		return nil, fmt.Errorf("NewFun: symbol cannot be nil")
	}
	if len(args) != sym.arity {
		return nil, fmt.Errorf("NewFun: symbol %s has arity %d, got %d arguments", sym.name, sym.arity, len(args))
	}
	for i, a := range args {
		if a == nil {
			return nil, fmt.Errorf("NewFun: argument %d of %s is nil", i, sym.name)
		}
	}
	return &Fun{sym: sym, args: args}, nil
}

// MustFun is NewFun that panics on error. Intended for tests and for
// construction sites where arity is correct by construction.
func MustFun(sym *FunSymbol, args ...Term) *Fun {
	f, err := NewFun(sym, args...)
	if err != nil {
		panic(err)
	}
	return f
}

// String renders the application as f(a,b,...); constants render as a
// bare symbol name.
func (f *Fun) String() string {
	if len(f.args) == 0 {
		return f.sym.String()
	}
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.String()
	}
	return f.sym.String() + "(" + strings.Join(parts, ",") + ")"
}

// IsVar always returns false for function applications.
func (f *Fun) IsVar() bool { return false }

// Symbol returns the root symbol of the application.
func (f *Fun) Symbol() *FunSymbol { return f.sym }

// Args returns the argument slice. Callers must not modify it.
func (f *Fun) Args() []Term { return f.args }

// Arg returns the i-th argument (0-based).
func (f *Fun) Arg(i int) Term { return f.args[i] }

func (f *Fun) sealed() {}

// DeepEquals reports structural equality of two terms. Variables are
// equal exactly when they are the same variable; applications are equal
// when their (interned) symbols are identical and their arguments are
// pairwise deep-equal.
func DeepEquals(s, t Term) bool {
	if s == nil || t == nil {
		return s == t
	}
	switch a := s.(type) {
	case *Var:
		b, ok := t.(*Var)
		return ok && a == b
	case *Fun:
		b, ok := t.(*Fun)
		if !ok || a.sym != b.sym {
			return false
		}
		for i := range a.args {
			if !DeepEquals(a.args[i], b.args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Depth returns the depth of a term: 0 for variables and constants,
// 1 + max depth of the arguments otherwise.
func Depth(t Term) int {
	f, ok := t.(*Fun)
	if !ok || len(f.args) == 0 {
		return 0
	}
	max := 0
	for _, a := range f.args {
		if d := Depth(a); d > max {
			max = d
		}
	}
	return 1 + max
}

// Size returns the number of symbol and variable occurrences in t.
func Size(t Term) int {
	f, ok := t.(*Fun)
	if !ok {
		return 1
	}
	n := 1
	for _, a := range f.args {
		n += Size(a)
	}
	return n
}

// IsGround reports whether t contains no variables.
func IsGround(t Term) bool {
	f, ok := t.(*Fun)
	if !ok {
		return false
	}
	for _, a := range f.args {
		if !IsGround(a) {
			return false
		}
	}
	return true
}

// Vars returns the variables of t in first-occurrence order.
func Vars(t Term) []*Var {
	var out []*Var
	seen := make(map[*Var]bool)
	collectVars(t, seen, &out)
	return out
}

func collectVars(t Term, seen map[*Var]bool, out *[]*Var) {
	switch x := t.(type) {
	case *Var:
		if !seen[x] {
			seen[x] = true
			*out = append(*out, x)
		}
	case *Fun:
		for _, a := range x.args {
			collectVars(a, seen, out)
		}
	}
}

// VarOccurrences counts how many times variable v occurs in t.
func VarOccurrences(t Term, v *Var) int {
	switch x := t.(type) {
	case *Var:
		if x == v {
			return 1
		}
		return 0
	case *Fun:
		n := 0
		for _, a := range x.args {
			n += VarOccurrences(a, v)
		}
		return n
	}
	return 0
}

// Contains reports whether sub occurs in t (including t itself), by
// structural equality.
func Contains(t, sub Term) bool {
	if DeepEquals(t, sub) {
		return true
	}
	if f, ok := t.(*Fun); ok {
		for _, a := range f.args {
			if Contains(a, sub) {
				return true
			}
		}
	}
	return false
}

// DeepCopy copies a term, preserving aliasing among its subterms: if two
// subterms of the source are reference-identical, the corresponding
// subterms of the copy are reference-identical too. The copies map keys
// source subterms to their copies; pass a fresh map per copy operation,
// or share one map across several copies to preserve aliasing across
// them (this is how rules copy their two sides consistently).
//
// Variables are identity, not structure, so they are never duplicated:
// a *Var copies to itself.
func DeepCopy(t Term, copies map[Term]Term) Term {
	if t == nil {
		return nil
	}
	if v, ok := t.(*Var); ok {
		return v
	}
	if c, ok := copies[t]; ok {
		return c
	}
	f := t.(*Fun)
	args := make([]Term, len(f.args))
	for i, a := range f.args {
		args[i] = DeepCopy(a, copies)
	}
	c := &Fun{sym: f.sym, args: args}
	copies[t] = c
	return c
}

// FunSymbols returns the set of function symbols occurring in t.
func FunSymbols(t Term) map[*FunSymbol]bool {
	out := make(map[*FunSymbol]bool)
	collectFunSymbols(t, out)
	return out
}

func collectFunSymbols(t Term, out map[*FunSymbol]bool) {
	if f, ok := t.(*Fun); ok {
		out[f.sym] = true
		for _, a := range f.args {
			collectFunSymbols(a, out)
		}
	}
}
