package trs

import (
	"fmt"
	"sort"
	"strings"
)

// Symbolic polynomial algebra for the polynomial-interpretation
// processor.
//
// An interpretation assigns each function symbol a linear polynomial
// over its argument positions whose coefficients start undetermined.
// Interpreting a term composes those polynomials, producing a
// Polynomial over the term's variables whose coefficients are
// CoeffExprs: integer polynomials over the undetermined coefficients.
// Orienting a rule turns into "every CoeffExpr of P(l)-P(r) is
// nonnegative" (with the constant part strictly positive for strict
// pairs), which the ConstraintSystem solves over integer intervals.

// PolynomialConst is one undetermined coefficient: an integer confined
// to an interval that propagation narrows until the constraint system
// assigns it a single value or detects a contradiction.
type PolynomialConst struct {
	id   int
	name string
	min  int
	max  int
}

// Name returns the coefficient's display name.
func (c *PolynomialConst) Name() string { return c.name }

// Min returns the current lower bound.
func (c *PolynomialConst) Min() int { return c.min }

// Max returns the current upper bound.
func (c *PolynomialConst) Max() int { return c.max }

// Assigned reports whether the interval has collapsed to one value.
func (c *PolynomialConst) Assigned() bool { return c.min == c.max }

// Value returns the assigned value; valid only when Assigned.
func (c *PolynomialConst) Value() int { return c.min }

func (c *PolynomialConst) String() string {
	if c.Assigned() {
		return fmt.Sprintf("%d", c.min)
	}
	return c.name
}

// coeffProduct is k * c1 * c2 * ... with integer k and undetermined
// factors.
type coeffProduct struct {
	k       int
	factors []*PolynomialConst
}

func (p coeffProduct) key() string {
	ids := make([]int, len(p.factors))
	for i, f := range p.factors {
		ids[i] = f.id
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("c%d", id)
	}
	return strings.Join(parts, "*")
}

// CoeffExpr is a sum of coefficient products: an integer polynomial
// over the undetermined coefficients. The zero value is the constant 0.
type CoeffExpr struct {
	terms []coeffProduct
}

// ConstExpr builds the constant expression k.
func ConstExpr(k int) CoeffExpr {
	if k == 0 {
		return CoeffExpr{}
	}
	return CoeffExpr{terms: []coeffProduct{{k: k}}}
}

// VarExpr builds the expression consisting of one coefficient.
func VarExpr(c *PolynomialConst) CoeffExpr {
	return CoeffExpr{terms: []coeffProduct{{k: 1, factors: []*PolynomialConst{c}}}}
}

// IsZero reports whether the expression is the constant 0.
func (e CoeffExpr) IsZero() bool { return len(e.terms) == 0 }

// normalize merges products with identical factor sets and drops zero
// terms.
func (e CoeffExpr) normalize() CoeffExpr {
	merged := make(map[string]coeffProduct)
	var order []string
	for _, t := range e.terms {
		k := t.key()
		if cur, ok := merged[k]; ok {
			cur.k += t.k
			merged[k] = cur
		} else {
			merged[k] = t
			order = append(order, k)
		}
	}
	sort.Strings(order)
	out := CoeffExpr{}
	for _, k := range order {
		if merged[k].k != 0 {
			out.terms = append(out.terms, merged[k])
		}
	}
	return out
}

// Add returns e + o.
func (e CoeffExpr) Add(o CoeffExpr) CoeffExpr {
	sum := CoeffExpr{terms: append(append([]coeffProduct(nil), e.terms...), o.terms...)}
	return sum.normalize()
}

// Sub returns e - o.
func (e CoeffExpr) Sub(o CoeffExpr) CoeffExpr {
	neg := make([]coeffProduct, len(o.terms))
	for i, t := range o.terms {
		neg[i] = coeffProduct{k: -t.k, factors: t.factors}
	}
	sum := CoeffExpr{terms: append(append([]coeffProduct(nil), e.terms...), neg...)}
	return sum.normalize()
}

// Mul returns e * o.
func (e CoeffExpr) Mul(o CoeffExpr) CoeffExpr {
	var out CoeffExpr
	for _, a := range e.terms {
		for _, b := range o.terms {
			factors := append(append([]*PolynomialConst(nil), a.factors...), b.factors...)
			out.terms = append(out.terms, coeffProduct{k: a.k * b.k, factors: factors})
		}
	}
	return out.normalize()
}

// Interval returns the minimum and maximum value of the expression over
// the current coefficient intervals. Coefficients are nonnegative, so
// each product is monotone in every factor and interval arithmetic is
// exact per term.
func (e CoeffExpr) Interval() (int, int) {
	lo, hi := 0, 0
	for _, t := range e.terms {
		pmin, pmax := 1, 1
		for _, f := range t.factors {
			pmin *= f.min
			pmax *= f.max
		}
		if t.k >= 0 {
			lo += t.k * pmin
			hi += t.k * pmax
		} else {
			lo += t.k * pmax
			hi += t.k * pmin
		}
	}
	return lo, hi
}

// Unassigned returns the coefficients of e whose intervals have not
// collapsed, without duplicates.
func (e CoeffExpr) Unassigned() []*PolynomialConst {
	seen := make(map[int]bool)
	var out []*PolynomialConst
	for _, t := range e.terms {
		for _, f := range t.factors {
			if !f.Assigned() && !seen[f.id] {
				seen[f.id] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// diff returns the partial derivative of e with respect to c: the sum
// of products that contain c, with one occurrence of c removed. Used to
// derive the side constraint when a coefficient is substituted away.
func (e CoeffExpr) diff(c *PolynomialConst) CoeffExpr {
	var out CoeffExpr
	for _, t := range e.terms {
		for i, f := range t.factors {
			if f == c {
				rest := make([]*PolynomialConst, 0, len(t.factors)-1)
				rest = append(rest, t.factors[:i]...)
				rest = append(rest, t.factors[i+1:]...)
				out.terms = append(out.terms, coeffProduct{k: t.k, factors: rest})
				break
			}
		}
	}
	return out.normalize()
}

// String renders the expression deterministically.
func (e CoeffExpr) String() string {
	if len(e.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(e.terms))
	for i, t := range e.terms {
		s := fmt.Sprintf("%d", t.k)
		for _, f := range t.factors {
			s += "*" + f.String()
		}
		parts[i] = s
	}
	return strings.Join(parts, " + ")
}

// Polynomial is a linear polynomial over term variables with CoeffExpr
// coefficients. Linear interpretations compose to linear polynomials,
// so no variable products arise.
type Polynomial struct {
	constant CoeffExpr
	linear   map[*Var]CoeffExpr
}

// NewPolynomial creates the zero polynomial.
func NewPolynomial() *Polynomial {
	return &Polynomial{linear: make(map[*Var]CoeffExpr)}
}

// Constant returns the constant part.
func (p *Polynomial) Constant() CoeffExpr { return p.constant }

// Coefficient returns the coefficient of v.
func (p *Polynomial) Coefficient(v *Var) CoeffExpr { return p.linear[v] }

// Variables returns the term variables with nonzero coefficient, in
// deterministic order.
func (p *Polynomial) Variables() []*Var {
	out := make([]*Var, 0, len(p.linear))
	for v := range p.linear {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// AddConst adds e to the constant part.
func (p *Polynomial) AddConst(e CoeffExpr) {
	p.constant = p.constant.Add(e)
}

// AddLinear adds e*v.
func (p *Polynomial) AddLinear(v *Var, e CoeffExpr) {
	cur, ok := p.linear[v]
	if !ok {
		cur = CoeffExpr{}
	}
	sum := cur.Add(e)
	if sum.IsZero() {
		delete(p.linear, v)
		return
	}
	p.linear[v] = sum
}

// Sub returns p - q.
func (p *Polynomial) Sub(q *Polynomial) *Polynomial {
	out := NewPolynomial()
	out.constant = p.constant.Sub(q.constant)
	for v, e := range p.linear {
		out.linear[v] = e
	}
	for v, e := range q.linear {
		cur, ok := out.linear[v]
		if !ok {
			cur = CoeffExpr{}
		}
		d := cur.Sub(e)
		if d.IsZero() {
			delete(out.linear, v)
		} else {
			out.linear[v] = d
		}
	}
	return out
}

// String renders the polynomial deterministically.
func (p *Polynomial) String() string {
	parts := []string{"(" + p.constant.String() + ")"}
	for _, v := range p.Variables() {
		parts = append(parts, "("+p.linear[v].String()+")*"+v.String())
	}
	return strings.Join(parts, " + ")
}
