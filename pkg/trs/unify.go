package trs

// Syntactic unification and matching.
//
// Unification follows term-rewriting conventions: no occurs check is
// performed, callers are expected to rename rules apart before unifying
// across them. Failure is reported by returning false; no errors are
// involved in ordinary unification failure.

// UnifyInto attempts to unify s and t, extending sub in place. On
// success it returns true and sub is a unifier of s and t (applying sub
// to both sides yields deep-equal terms). On failure it returns false
// and sub may contain partial bindings; unify into a clone when the
// original must survive failure.
func UnifyInto(s, t Term, sub *Substitution) bool {
	s = sub.Walk(s)
	t = sub.Walk(t)
	if sv, ok := s.(*Var); ok {
		if tv, ok := t.(*Var); ok && sv == tv {
			return true
		}
		sub.Bind(sv, t)
		return true
	}
	if tv, ok := t.(*Var); ok {
		sub.Bind(tv, s)
		return true
	}
	sf := s.(*Fun)
	tf := t.(*Fun)
	if sf.sym != tf.sym {
		return false
	}
	for i := range sf.args {
		if !UnifyInto(sf.args[i], tf.args[i], sub) {
			return false
		}
	}
	return true
}

// Unify computes a most general unifier of s and t.
// Returns (nil, false) if the terms do not unify.
func Unify(s, t Term) (*Substitution, bool) {
	sub := NewSubstitution()
	if !UnifyInto(s, t, sub) {
		return nil, false
	}
	return sub, true
}

// MatchInto attempts to match s onto t: it extends sub with bindings for
// variables of s only, such that applying sub to s yields t. Variables
// of t are treated as constants. Returns false on clash or on an
// inconsistent repeated binding.
func MatchInto(s, t Term, sub *Substitution) bool {
	switch sv := s.(type) {
	case *Var:
		if bound := sub.Lookup(sv); bound != nil {
			return DeepEquals(bound, t)
		}
		if tv, ok := t.(*Var); ok && tv == sv {
			return true
		}
		sub.Bind(sv, t)
		return true
	case *Fun:
		tf, ok := t.(*Fun)
		if !ok || sv.sym != tf.sym {
			return false
		}
		for i := range sv.args {
			if !MatchInto(sv.args[i], tf.args[i], sub) {
				return false
			}
		}
		return true
	}
	return false
}

// MoreGeneralThan reports whether s is more general than t: whether some
// substitution maps s onto t. On success the matching substitution is
// returned.
func MoreGeneralThan(s, t Term) (*Substitution, bool) {
	sub := NewSubstitution()
	if !MatchInto(s, t, sub) {
		return nil, false
	}
	return sub, true
}

// Renaming builds a substitution replacing every variable of the given
// terms by a fresh variable from st. Fresh variables inherit the display
// name of the originals.
func Renaming(st *SymbolTable, terms ...Term) *Substitution {
	sub := NewSubstitution()
	for _, t := range terms {
		for _, v := range Vars(t) {
			if !sub.InDomain(v) {
				sub.Bind(v, st.FreshVar(v.name))
			}
		}
	}
	return sub
}

// RenameTerm returns a copy of t with every variable replaced by a fresh
// one drawn from st.
func RenameTerm(st *SymbolTable, t Term) Term {
	return Renaming(st, t).Apply(t)
}
