package trs

import (
	"context"
)

// Homeomorphic embedding.
//
// The embedding order is the cheapest reduction order in the processor
// list: it needs no symbol precedence and no numeric search, so it runs
// first and prunes the problems simple enough not to need LPO, KBO or a
// polynomial interpretation.

// Embeds reports whether small is homeomorphically embedded in big:
// small can be obtained from big by striking out symbols. Variables
// embed only into themselves.
func Embeds(big, small Term) bool {
	switch s := small.(type) {
	case *Var:
		if v, ok := big.(*Var); ok {
			return v == s
		}
	case *Fun:
		bf, ok := big.(*Fun)
		if ok && bf.sym == s.sym {
			all := true
			for i := range s.args {
				if !Embeds(bf.args[i], s.args[i]) {
					all = false
					break
				}
			}
			if all {
				return true
			}
		}
	}
	// Strike the root of big and look in one argument.
	if bf, ok := big.(*Fun); ok {
		for _, a := range bf.args {
			if Embeds(a, small) {
				return true
			}
		}
	}
	return false
}

type embeddingOrienter struct{}

// NewEmbeddingProcessor returns the homeomorphic-embedding processor.
func NewEmbeddingProcessor() Processor {
	return &orderProcessor{o: embeddingOrienter{}}
}

func (embeddingOrienter) name() string { return "embedding" }

func (embeddingOrienter) orient(ctx context.Context, rules, pairs []termPair) ([]bool, bool, string) {
	for _, r := range rules {
		if !Embeds(r.l, r.r) {
			return nil, false, "a rule is not weakly embedding-decreasing"
		}
	}
	strict := make([]bool, len(pairs))
	any := false
	for i, p := range pairs {
		select {
		case <-ctx.Done():
			return nil, false, "cancelled"
		default:
		}
		if !Embeds(p.l, p.r) {
			return nil, false, "a pair is not weakly embedding-decreasing"
		}
		if !DeepEquals(p.l, p.r) {
			strict[i] = true
			any = true
		}
	}
	if !any {
		return nil, false, "all pairs embedding-equal"
	}
	return strict, true, "homeomorphic embedding orients all rules and pairs"
}
