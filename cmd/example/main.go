// Package main demonstrates basic termination-analysis usage patterns.
//
// This example builds two small rewrite systems - one terminating, one
// not - and runs the prover on each, printing the verdict and the proof
// trace.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gitrdm/gotrs/pkg/trs"
)

func main() {
	fmt.Println("=== GoTRS Examples ===")
	fmt.Println()

	terminatingExample()
	nonterminatingExample()
}

// terminatingExample proves termination of Peano addition.
func terminatingExample() {
	fmt.Println("1. Terminating system (Peano addition):")

	st := trs.NewSymbolTable()
	zero := trs.MustFun(st.Fun("0", 0))
	s := st.Fun("s", 1)
	plus := st.Fun("plus", 2)
	x := st.FreshVar("x")
	y := st.FreshVar("y")

	rules := []*trs.RuleTrs{
		// plus(0, y) -> y
		trs.MustRule(trs.MustFun(plus, zero, y), y, 0),
		// plus(s(x), y) -> s(plus(x, y))
		trs.MustRule(
			trs.MustFun(plus, trs.MustFun(s, x), y),
			trs.MustFun(s, trs.MustFun(plus, x, y)), 1),
	}
	system, err := trs.NewTrs(st, rules, trs.StrategyFull)
	if err != nil {
		fmt.Println("   construction failed:", err)
		return
	}

	runProver(system)
}

// nonterminatingExample finds a loop in a pair of mutually recursive
// rules whose composition pumps its argument forever.
func nonterminatingExample() {
	fmt.Println("2. Nonterminating system (mutual recursion):")

	st := trs.NewSymbolTable()
	s := st.Fun("s", 1)
	f := st.Fun("f", 1)
	g := st.Fun("g", 1)
	x := st.FreshVar("x")
	y := st.FreshVar("y")

	rules := []*trs.RuleTrs{
		// f(x) -> g(x)
		trs.MustRule(trs.MustFun(f, x), trs.MustFun(g, x), 0),
		// g(y) -> f(s(y))
		trs.MustRule(trs.MustFun(g, y), trs.MustFun(f, trs.MustFun(s, y)), 1),
	}
	system, err := trs.NewTrs(st, rules, trs.StrategyFull)
	if err != nil {
		fmt.Println("   construction failed:", err)
		return
	}

	runProver(system)
}

func runProver(system *trs.Trs) {
	fmt.Println("   rules:")
	for _, r := range system.Rules() {
		fmt.Println("     ", r)
	}

	prover := trs.NewProver(trs.DefaultConfig())
	start := time.Now()
	proof := prover.Prove(context.Background(), system)
	elapsed := time.Since(start)

	fmt.Printf("   result: %s (in %v)\n", proof.Result(), elapsed.Round(time.Millisecond))
	if w := proof.Witness(); w != nil {
		fmt.Println("   witness:", w.Start, "("+w.Kind.String()+")")
	}
	fmt.Println()
}
