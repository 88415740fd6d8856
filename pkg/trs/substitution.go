package trs

import (
	"sort"
	"strings"
)

// Substitution is a finite mapping from variables to terms. Unification
// extends a substitution in place; all other operations (composition,
// restriction) build new substitutions.
//
// Bindings are triangular: the image of a variable may itself contain
// bound variables, and Apply resolves chains of bindings. A substitution
// is confined to one proof task and is not safe for concurrent mutation.
type Substitution struct {
	bindings map[*Var]Term
}

// NewSubstitution creates an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{bindings: make(map[*Var]Term)}
}

// Clone creates an independent copy of the substitution. Bound terms are
// shared; they are immutable.
func (s *Substitution) Clone() *Substitution {
	out := &Substitution{bindings: make(map[*Var]Term, len(s.bindings))}
	for v, t := range s.bindings {
		out.bindings[v] = t
	}
	return out
}

// Size returns the number of bindings.
func (s *Substitution) Size() int { return len(s.bindings) }

// Lookup returns the term bound to v, or nil if v is unbound.
func (s *Substitution) Lookup(v *Var) Term { return s.bindings[v] }

// InDomain reports whether v is bound.
func (s *Substitution) InDomain(v *Var) bool {
	_, ok := s.bindings[v]
	return ok
}

// Bind records v -> t in place. Binding a variable to itself is a no-op.
func (s *Substitution) Bind(v *Var, t Term) {
	if w, ok := t.(*Var); ok && w == v {
		return
	}
	s.bindings[v] = t
}

// Domain returns the bound variables, ordered by variable identity for
// deterministic iteration.
func (s *Substitution) Domain() []*Var {
	out := make([]*Var, 0, len(s.bindings))
	for v := range s.bindings {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Walk resolves t through the binding chain until it reaches an unbound
// variable or a function application. It does not descend into
// arguments.
func (s *Substitution) Walk(t Term) Term {
	for {
		v, ok := t.(*Var)
		if !ok {
			return t
		}
		bound, ok := s.bindings[v]
		if !ok {
			return t
		}
		t = bound
	}
}

// Apply applies the substitution to t. Binding chains left by
// unification are resolved, but a variable is never expanded inside its
// own image: a self-referential binding like x -> s(x) acts as a single
// parallel replacement. Pumping substitutions depend on this.
// Unaffected subterms are shared with the input.
func (s *Substitution) Apply(t Term) Term {
	if len(s.bindings) == 0 {
		return t
	}
	return s.apply(t, make(map[*Var]bool))
}

func (s *Substitution) apply(t Term, busy map[*Var]bool) Term {
	switch x := t.(type) {
	case *Var:
		bound, ok := s.bindings[x]
		if !ok || busy[x] {
			return x
		}
		busy[x] = true
		out := s.apply(bound, busy)
		delete(busy, x)
		return out
	case *Fun:
		changed := false
		args := make([]Term, len(x.args))
		for i, a := range x.args {
			args[i] = s.apply(a, busy)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return x
		}
		return &Fun{sym: x.sym, args: args}
	}
	return t
}

// Compose returns the substitution "first s, then next": applying the
// result to a term is equivalent to applying s and then next. The domain
// of the result is the union of both domains.
func (s *Substitution) Compose(next *Substitution) *Substitution {
	out := NewSubstitution()
	for v, t := range s.bindings {
		out.bindings[v] = next.Apply(t)
	}
	for v, t := range next.bindings {
		if _, ok := out.bindings[v]; !ok {
			out.bindings[v] = t
		}
	}
	// Drop identities introduced by composition.
	for v, t := range out.bindings {
		if w, ok := t.(*Var); ok && w == v {
			delete(out.bindings, v)
		}
	}
	return out
}

// Restrict returns the substitution limited to the given variables.
func (s *Substitution) Restrict(vars []*Var) *Substitution {
	keep := make(map[*Var]bool, len(vars))
	for _, v := range vars {
		keep[v] = true
	}
	out := NewSubstitution()
	for v, t := range s.bindings {
		if keep[v] {
			out.bindings[v] = t
		}
	}
	return out
}

// Power returns the n-fold composition of s with itself. Power(0) is the
// identity substitution.
func (s *Substitution) Power(n int) *Substitution {
	out := NewSubstitution()
	for ; n > 0; n-- {
		out = out.Compose(s)
	}
	return out
}

// CommutesWith reports whether s and other commute: for every variable in
// either domain, applying s then other gives the same term as applying
// other then s. Needed when combining two substitutions that must agree
// on shared variables.
func (s *Substitution) CommutesWith(other *Substitution) bool {
	check := func(v *Var) bool {
		a := other.Apply(s.Apply(v))
		b := s.Apply(other.Apply(v))
		return DeepEquals(a, b)
	}
	for v := range s.bindings {
		if !check(v) {
			return false
		}
	}
	for v := range other.bindings {
		if !check(v) {
			return false
		}
	}
	return true
}

// Equals reports whether two substitutions have the same domain and bind
// every domain variable to deep-equal terms (after full application).
func (s *Substitution) Equals(other *Substitution) bool {
	if len(s.bindings) != len(other.bindings) {
		return false
	}
	for v := range s.bindings {
		if !other.InDomain(v) {
			return false
		}
		if !DeepEquals(s.Apply(v), other.Apply(v)) {
			return false
		}
	}
	return true
}

// String renders the substitution as {x->t, ...} with a deterministic
// variable order.
func (s *Substitution) String() string {
	if len(s.bindings) == 0 {
		return "{}"
	}
	vars := s.Domain()
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.String() + "->" + s.bindings[v].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
