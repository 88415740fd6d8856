package trs

import (
	"context"
	"fmt"
)

// Integer constraint solving for polynomial coefficients.
//
// Orientation obligations arrive as "CoeffExpr >= bound" constraints.
// The system narrows coefficient intervals by propagation and branches
// on the remaining coefficients, checking the cancellation context at
// every node; unsatisfiability at any point aborts only the current
// interpretation attempt, never the analysis.

// ErrTooManyCoefficients is returned when an interpretation would need
// more undetermined coefficients than the configured cap.
var ErrTooManyCoefficients = fmt.Errorf("polynomial: coefficient cap exceeded")

// polyConstraint is expr >= min.
type polyConstraint struct {
	expr CoeffExpr
	min  int
	why  string
}

// ConstraintSystem owns the undetermined coefficients of one
// interpretation attempt and the constraints collected over them.
type ConstraintSystem struct {
	coeffs      []*PolynomialConst
	constraints []polyConstraint
	maxCoeffs   int
	maxValue    int
}

// NewConstraintSystem creates a system with the given caps: at most
// maxCoeffs undetermined coefficients, each ranging over [0, maxValue].
func NewConstraintSystem(maxCoeffs, maxValue int) *ConstraintSystem {
	if maxCoeffs <= 0 {
		maxCoeffs = 24
	}
	if maxValue <= 0 {
		maxValue = 2
	}
	return &ConstraintSystem{maxCoeffs: maxCoeffs, maxValue: maxValue}
}

// NewCoeff mints a fresh coefficient over [0, maxValue].
// Returns ErrTooManyCoefficients past the cap.
func (cs *ConstraintSystem) NewCoeff(name string) (*PolynomialConst, error) {
	if len(cs.coeffs) >= cs.maxCoeffs {
		return nil, ErrTooManyCoefficients
	}
	c := &PolynomialConst{id: len(cs.coeffs), name: name, min: 0, max: cs.maxValue}
	cs.coeffs = append(cs.coeffs, c)
	return c, nil
}

// Require records expr >= min with a short description for traces.
func (cs *ConstraintSystem) Require(expr CoeffExpr, min int, why string) {
	cs.constraints = append(cs.constraints, polyConstraint{expr: expr, min: min, why: why})
}

// trail records interval narrowings so a failed branch can be undone.
type trail struct {
	saved []struct {
		c        *PolynomialConst
		min, max int
	}
}

func (tr *trail) save(c *PolynomialConst) {
	tr.saved = append(tr.saved, struct {
		c        *PolynomialConst
		min, max int
	}{c, c.min, c.max})
}

func (tr *trail) undoTo(mark int) {
	for i := len(tr.saved) - 1; i >= mark; i-- {
		s := tr.saved[i]
		s.c.min, s.c.max = s.min, s.max
	}
	tr.saved = tr.saved[:mark]
}

// Solve searches for an integer assignment satisfying every constraint.
// On success the coefficient intervals are collapsed to the solution
// and true is returned; on unsatisfiability or cancellation the
// intervals are restored and false is returned.
func (cs *ConstraintSystem) Solve(ctx context.Context) bool {
	tr := &trail{}
	if cs.solve(ctx, tr) {
		return true
	}
	tr.undoTo(0)
	return false
}

func (cs *ConstraintSystem) solve(ctx context.Context, tr *trail) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	switch cs.propagate(tr) {
	case propagateConflict:
		return false
	default:
	}
	// Branch on the first unassigned coefficient, smallest value first:
	// small coefficients keep the remaining products tame.
	var branch *PolynomialConst
	for _, c := range cs.coeffs {
		if !c.Assigned() {
			branch = c
			break
		}
	}
	if branch == nil {
		return cs.satisfied()
	}
	lo, hi := branch.min, branch.max
	for v := lo; v <= hi; v++ {
		mark := len(tr.saved)
		tr.save(branch)
		branch.min, branch.max = v, v
		if cs.solve(ctx, tr) {
			return true
		}
		tr.undoTo(mark)
		select {
		case <-ctx.Done():
			return false
		default:
		}
	}
	return false
}

type propagateOutcome int

const (
	propagateStable propagateOutcome = iota
	propagateConflict
)

// propagate narrows intervals to a fixed point. For each constraint
// expr >= m it first checks interval feasibility, then applies the
// derivative rule: for a coefficient c occurring linearly,
// expr = rest + (d expr/d c) * c, so when the derivative's interval is
// strictly positive, c must be at least (m - max(rest)) / max(diff),
// and the interval floor rises accordingly.
func (cs *ConstraintSystem) propagate(tr *trail) propagateOutcome {
	for changed := true; changed; {
		changed = false
		for _, ct := range cs.constraints {
			lo, hi := ct.expr.Interval()
			if hi < ct.min {
				return propagateConflict
			}
			if lo >= ct.min {
				continue
			}
			for _, c := range ct.expr.Unassigned() {
				if !occursLinearly(ct.expr, c) {
					continue
				}
				d := ct.expr.diff(c)
				dlo, dhi := d.Interval()
				if dlo < 0 || dhi <= 0 {
					continue // not monotone increasing in c
				}
				// rest = expr with c set to 0.
				rest := ct.expr.Sub(d.Mul(VarExpr(c)))
				_, restHi := rest.Interval()
				need := ct.min - restHi
				if need <= 0 {
					continue
				}
				minC := (need + dhi - 1) / dhi
				if minC > c.min {
					if minC > c.max {
						return propagateConflict
					}
					tr.save(c)
					c.min = minC
					changed = true
				}
			}
		}
	}
	return propagateStable
}

// occursLinearly reports whether c occurs at most once in every product
// of e; the derivative narrowing rule assumes expr = rest + diff*c.
func occursLinearly(e CoeffExpr, c *PolynomialConst) bool {
	for _, t := range e.terms {
		n := 0
		for _, f := range t.factors {
			if f == c {
				n++
			}
		}
		if n > 1 {
			return false
		}
	}
	return true
}

// satisfied checks all constraints under the collapsed intervals.
func (cs *ConstraintSystem) satisfied() bool {
	for _, ct := range cs.constraints {
		lo, _ := ct.expr.Interval()
		if lo < ct.min {
			return false
		}
	}
	return true
}

// Holds evaluates one recorded constraint under the current intervals;
// used to decide which pairs ended up strictly decreasing.
func (cs *ConstraintSystem) Holds(expr CoeffExpr, min int) bool {
	lo, _ := expr.Interval()
	return lo >= min
}
