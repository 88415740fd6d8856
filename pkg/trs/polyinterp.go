package trs

import (
	"context"
	"fmt"
)

// Polynomial interpretations.
//
// Each function and tuple symbol f of arity n is assigned the linear
// polynomial P(f)(x1..xn) = c0 + c1*x1 + ... + cn*xn with undetermined
// nonnegative coefficients. Orienting l -> r requires P(l) - P(r) to be
// nonnegative for all nonnegative variable values, which the absolute
// positiveness criterion reduces to: every variable coefficient of the
// difference is >= 0 and the constant part is >= 0 (>= 1 for a strict
// decrease).

// PolyInterpretation lazily assigns symbol polynomials out of one
// constraint system.
type PolyInterpretation struct {
	cs    *ConstraintSystem
	table map[*FunSymbol][]*PolynomialConst
}

// NewPolyInterpretation creates an empty interpretation drawing
// coefficients from cs.
func NewPolyInterpretation(cs *ConstraintSystem) *PolyInterpretation {
	return &PolyInterpretation{cs: cs, table: make(map[*FunSymbol][]*PolynomialConst)}
}

// coeffsFor returns the coefficient vector (c0..cn) of sym, minting it
// on first use.
func (pi *PolyInterpretation) coeffsFor(sym *FunSymbol) ([]*PolynomialConst, error) {
	if cs, ok := pi.table[sym]; ok {
		return cs, nil
	}
	out := make([]*PolynomialConst, sym.arity+1)
	for i := range out {
		c, err := pi.cs.NewCoeff(fmt.Sprintf("%s_%d", sym.String(), i))
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	pi.table[sym] = out
	return out, nil
}

// Interpret maps a term to its polynomial. Variables map to themselves
// with coefficient 1.
func (pi *PolyInterpretation) Interpret(t Term) (*Polynomial, error) {
	switch x := t.(type) {
	case *Var:
		p := NewPolynomial()
		p.AddLinear(x, ConstExpr(1))
		return p, nil
	case *Fun:
		coeffs, err := pi.coeffsFor(x.sym)
		if err != nil {
			return nil, err
		}
		out := NewPolynomial()
		out.AddConst(VarExpr(coeffs[0]))
		for i, a := range x.args {
			pa, err := pi.Interpret(a)
			if err != nil {
				return nil, err
			}
			scale := VarExpr(coeffs[i+1])
			out.AddConst(scale.Mul(pa.Constant()))
			for _, v := range pa.Variables() {
				out.AddLinear(v, scale.Mul(pa.Coefficient(v)))
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("polynomial: cannot interpret %v", t)
}

// Requires records the orientation constraints for l -> r: variable
// coefficients of the difference nonnegative, constant part at least
// bound. It returns the constant expression so callers can later check
// which obligations turned out strict.
func (pi *PolyInterpretation) Require(l, r Term, bound int, why string) (CoeffExpr, error) {
	pl, err := pi.Interpret(l)
	if err != nil {
		return CoeffExpr{}, err
	}
	pr, err := pi.Interpret(r)
	if err != nil {
		return CoeffExpr{}, err
	}
	d := pl.Sub(pr)
	for _, v := range d.Variables() {
		pi.cs.Require(d.Coefficient(v), 0, why+" (coefficient of "+v.String()+")")
	}
	// Variables of r absent from l would make the difference go
	// negative for large values; Sub already exposes them with negated
	// coefficients, so the >= 0 constraints above cover that case.
	pi.cs.Require(d.Constant(), bound, why+" (constant part)")
	return d.Constant(), nil
}

type polyOrienter struct {
	maxCoeffs int
	maxValue  int
}

// NewPolyProcessor returns the polynomial-interpretation processor.
func NewPolyProcessor(maxCoeffs, maxValue int) Processor {
	return &orderProcessor{o: &polyOrienter{maxCoeffs: maxCoeffs, maxValue: maxValue}}
}

func (po *polyOrienter) name() string { return "polynomial interpretation" }

// orient attempts one interpretation with every pair required strict,
// then falls back to making one pair at a time strict. After a model is
// found, every pair whose constant difference evaluates to >= 1 is
// reported strict.
func (po *polyOrienter) orient(ctx context.Context, rules, pairs []termPair) ([]bool, bool, string) {
	attempt := func(strictFor func(int) bool) ([]bool, bool) {
		cs := NewConstraintSystem(po.maxCoeffs, po.maxValue)
		pi := NewPolyInterpretation(cs)
		for _, r := range rules {
			if _, err := pi.Require(r.l, r.r, 0, "rule"); err != nil {
				return nil, false
			}
		}
		consts := make([]CoeffExpr, len(pairs))
		for i, p := range pairs {
			bound := 0
			if strictFor(i) {
				bound = 1
			}
			c, err := pi.Require(p.l, p.r, bound, "pair")
			if err != nil {
				return nil, false
			}
			consts[i] = c
		}
		if !cs.Solve(ctx) {
			return nil, false
		}
		strict := make([]bool, len(pairs))
		any := false
		for i := range pairs {
			if cs.Holds(consts[i], 1) {
				strict[i] = true
				any = true
			}
		}
		if !any {
			return nil, false
		}
		return strict, true
	}

	if strict, ok := attempt(func(int) bool { return true }); ok {
		return strict, true, "linear polynomial interpretation (all pairs strict)"
	}
	for target := 0; target < len(pairs); target++ {
		select {
		case <-ctx.Done():
			return nil, false, "cancelled"
		default:
		}
		if strict, ok := attempt(func(i int) bool { return i == target }); ok {
			return strict, true, fmt.Sprintf("linear polynomial interpretation (pair %d strict)", target)
		}
	}
	return nil, false, "no satisfiable coefficient assignment"
}
