package trs

// Semi-unification.
//
// SemiUnify(s, t) looks for substitutions rho and sigma with
// sigma(rho(s)) = rho(t). Applied to an (unfolded) rule l -> r and a
// subterm r|p, success witnesses a loop: rho(l) rewrites, through the
// rule, to a context around sigma(rho(l)), so the instance rho(l)
// starts an infinite rewrite sequence.
//
// The search iterates two repair steps over rho until plain matching of
// rho(s) onto rho(t) succeeds: a variable on the t side blocking the
// match absorbs the corresponding s-side subterm into rho, and two
// clashing images of one s-side variable are unified, folding the
// unifier into rho. Iteration is fuel-bounded; every success is
// certified by the final match, so a reported loop is always genuine
// even though the procedure gives up early on some solvable inputs.

const semiUnifyFuel = 32

// SemiUnify attempts to solve sigma(rho(s)) = rho(t).
// On success it returns (rho, sigma, true) with the equation verified.
func SemiUnify(s, t Term) (*Substitution, *Substitution, bool) {
	rho := NewSubstitution()
	for fuel := 0; fuel < semiUnifyFuel; fuel++ {
		rs := rho.Apply(s)
		rt := rho.Apply(t)
		sigma := NewSubstitution()
		if MatchInto(rs, rt, sigma) {
			return rho, sigma, true
		}
		step, ok := semiRepair(rs, rt)
		if !ok {
			return nil, nil, false
		}
		rho = rho.Compose(step)
	}
	return nil, nil, false
}

// semiRepair finds one rho-extension fixing the first matching failure
// between rs and rt, or reports that no repair exists.
func semiRepair(rs, rt Term) (*Substitution, bool) {
	sigma := NewSubstitution()
	return repairAt(rs, rt, sigma)
}

func repairAt(s, t Term, sigma *Substitution) (*Substitution, bool) {
	switch sv := s.(type) {
	case *Var:
		bound := sigma.Lookup(sv)
		if bound == nil {
			if tv, ok := t.(*Var); !ok || tv != sv {
				sigma.Bind(sv, t)
			}
			return nil, false // no failure here
		}
		if DeepEquals(bound, t) {
			return nil, false
		}
		// One s-variable needs two different images; they must agree,
		// so unify them and fold the unifier into rho.
		mgu, ok := Unify(bound, t)
		if !ok {
			return nil, false
		}
		for _, v := range mgu.Domain() {
			if VarOccurrences(mgu.Lookup(v), v) > 0 {
				return nil, false
			}
		}
		return mgu, true
	case *Fun:
		tf, ok := t.(*Fun)
		if !ok {
			// t is a variable standing where s has structure; rho must
			// give it that structure. A cyclic binding cannot be
			// applied, so it is unrepairable here.
			tv := t.(*Var)
			if VarOccurrences(s, tv) > 0 {
				return nil, false
			}
			step := NewSubstitution()
			step.Bind(tv, s)
			return step, true
		}
		if sv.sym != tf.sym {
			return nil, false // symbol clash, unrepairable
		}
		for i := range sv.args {
			if step, found := repairAt(sv.args[i], tf.args[i], sigma); found {
				return step, true
			}
		}
		return nil, false
	}
	return nil, false
}
