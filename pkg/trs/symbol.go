package trs

import (
	"sync"
)

// FunSymbol is an interned function symbol. Symbols are created through a
// SymbolTable, which guarantees that two symbols with the same name,
// arity and tuple marker are the same pointer. This makes symbol
// comparison a pointer comparison everywhere in the package.
//
// The tuple marker distinguishes the capped root symbols of dependency
// pairs (written f#) from the plain symbol f. A tuple symbol never occurs
// below the root of a well-formed dependency-pair side.
type FunSymbol struct {
	name  string
	arity int
	tuple bool
}

// Name returns the symbol's name, without the tuple marker.
func (f *FunSymbol) Name() string { return f.name }

// Arity returns the number of arguments the symbol takes.
func (f *FunSymbol) Arity() int { return f.arity }

// IsTuple reports whether this is a dependency-pair (tuple) symbol.
func (f *FunSymbol) IsTuple() bool { return f.tuple }

// String renders the symbol name, with a "#" suffix for tuple symbols.
func (f *FunSymbol) String() string {
	if f.tuple {
		return f.name + "#"
	}
	return f.name
}

type symbolKey struct {
	name  string
	arity int
	tuple bool
}

// SymbolTable owns symbol interning and fresh-variable generation for one
// analysis. It replaces any notion of a global interning singleton: the
// table is created by the caller (typically the parsing collaborator) and
// threaded into every constructor that mints symbols or variables.
//
// SymbolTable is safe for concurrent use; renaming inside concurrent
// proof tasks draws fresh variables from the same table.
type SymbolTable struct {
	mu      sync.Mutex
	symbols map[symbolKey]*FunSymbol
	nextVar int64
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[symbolKey]*FunSymbol)}
}

// Fun returns the interned plain symbol with the given name and arity,
// creating it on first use.
func (st *SymbolTable) Fun(name string, arity int) *FunSymbol {
	return st.intern(symbolKey{name: name, arity: arity})
}

// Tuple returns the tuple-marked counterpart of sym, interned with the
// same name and arity. Tuple of a tuple symbol is the symbol itself.
func (st *SymbolTable) Tuple(sym *FunSymbol) *FunSymbol {
	if sym.tuple {
		return sym
	}
	return st.intern(symbolKey{name: sym.name, arity: sym.arity, tuple: true})
}

// Untuple returns the plain counterpart of a tuple symbol.
func (st *SymbolTable) Untuple(sym *FunSymbol) *FunSymbol {
	if !sym.tuple {
		return sym
	}
	return st.intern(symbolKey{name: sym.name, arity: sym.arity})
}

func (st *SymbolTable) intern(k symbolKey) *FunSymbol {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.symbols[k]; ok {
		return s
	}
	s := &FunSymbol{name: k.name, arity: k.arity, tuple: k.tuple}
	st.symbols[k] = s
	return s
}

// FreshVar mints a variable guaranteed distinct from every variable
// previously drawn from this table. The name is for display only.
func (st *SymbolTable) FreshVar(name string) *Var {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.nextVar++
	return &Var{id: st.nextVar, name: name}
}
