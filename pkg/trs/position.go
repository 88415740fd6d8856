package trs

import (
	"fmt"
	"strings"
)

// Position is a path into a term: the sequence of (0-based) argument
// indices leading from the root to a subterm. The empty position denotes
// the root.
type Position []int

// RootPosition is the empty position.
var RootPosition = Position{}

// IsRoot reports whether p denotes the root.
func (p Position) IsRoot() bool { return len(p) == 0 }

// Append returns p extended by one index. The result shares no backing
// storage with p.
func (p Position) Append(i int) Position {
	out := make(Position, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// String renders the position as "ε" for the root and "0.1.2" otherwise.
func (p Position) String() string {
	if len(p) == 0 {
		return "ε"
	}
	parts := make([]string, len(p))
	for i, x := range p {
		parts[i] = fmt.Sprintf("%d", x)
	}
	return strings.Join(parts, ".")
}

// Positions returns every position of t, root first, in a fixed
// deterministic pre-order (left to right).
func Positions(t Term) []Position {
	var out []Position
	walkPositions(t, RootPosition, &out)
	return out
}

func walkPositions(t Term, p Position, out *[]Position) {
	*out = append(*out, p)
	if f, ok := t.(*Fun); ok {
		for i, a := range f.args {
			walkPositions(a, p.Append(i), out)
		}
	}
}

// SubtermAt returns the subterm of t at position p.
// Returns an error if p does not exist in t.
func SubtermAt(t Term, p Position) (Term, error) {
	cur := t
	for depth, i := range p {
		f, ok := cur.(*Fun)
		if !ok || i < 0 || i >= len(f.args) {
			return nil, fmt.Errorf("SubtermAt: position %s does not exist in %s (stuck at depth %d)", p, t, depth)
		}
		cur = f.args[i]
	}
	return cur, nil
}

// ReplaceAt returns a copy of t with the subterm at position p replaced
// by sub. Subterms off the path are shared with t, not copied.
// Returns an error if p does not exist in t.
func ReplaceAt(t Term, p Position, sub Term) (Term, error) {
	if len(p) == 0 {
		return sub, nil
	}
	f, ok := t.(*Fun)
	if !ok || p[0] < 0 || p[0] >= len(f.args) {
		return nil, fmt.Errorf("ReplaceAt: position %s does not exist in %s", p, t)
	}
	child, err := ReplaceAt(f.args[p[0]], p[1:], sub)
	if err != nil {
		return nil, err
	}
	args := make([]Term, len(f.args))
	copy(args, f.args)
	args[p[0]] = child
	return &Fun{sym: f.sym, args: args}, nil
}
