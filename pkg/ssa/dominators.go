// Package ssa promotes pkg/tac's Load/Store-addressed locals into real SSA
// values: φ-insertion at iterated dominance frontiers, renaming via a
// dominator-tree walk, dead-φ pruning, and (later, post-optimization)
// destruction back into ordinary copies. Grounded on
// original_source/h/to_ssa.hpp's ToSSA class and original_source/src/
// from_ssa.cpp, in the spirit of the teacher's pkg/regalloc/interference.go
// worklist/fixed-point style for the dominance computation.
package ssa

import "github.com/outshift-lang/splc/pkg/tac"

// domInfo holds the immediate-dominator tree and dominance frontiers for
// one function, keyed by *tac.BasicBlock.
type domInfo struct {
	idom     map[*tac.BasicBlock]*tac.BasicBlock
	postNum  map[*tac.BasicBlock]int
	children map[*tac.BasicBlock][]*tac.BasicBlock
	frontier map[*tac.BasicBlock][]*tac.BasicBlock
}

// computeDominators implements the Cooper/Harvey/Kennedy iterative
// dominance algorithm: immediate dominators fall out of a postorder-number
// intersection directly, without materializing to_ssa.hpp's full
// per-block dominator sets.
func computeDominators(fn *tac.Function) *domInfo {
	entry := fn.Entry()
	postNum, rpo := postorder(entry)

	idom := map[*tac.BasicBlock]*tac.BasicBlock{entry: entry}
	changed := true
	for changed {
		changed = false
		for i := 1; i < len(rpo); i++ {
			b := rpo[i]
			var newIdom *tac.BasicBlock
			for _, p := range b.Preds {
				if idom[p] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = intersect(newIdom, p, idom, postNum)
			}
			if newIdom != nil && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	children := make(map[*tac.BasicBlock][]*tac.BasicBlock)
	for _, b := range rpo {
		if b == entry {
			continue
		}
		p := idom[b]
		children[p] = append(children[p], b)
	}

	frontier := make(map[*tac.BasicBlock][]*tac.BasicBlock)
	for _, b := range rpo {
		if len(b.Preds) < 2 {
			continue
		}
		for _, p := range b.Preds {
			if idom[p] == nil {
				continue
			}
			runner := p
			for runner != idom[b] {
				frontier[runner] = append(frontier[runner], b)
				runner = idom[runner]
			}
		}
	}

	return &domInfo{idom: idom, postNum: postNum, children: children, frontier: frontier}
}

func intersect(b1, b2 *tac.BasicBlock, idom map[*tac.BasicBlock]*tac.BasicBlock, postNum map[*tac.BasicBlock]int) *tac.BasicBlock {
	for b1 != b2 {
		for postNum[b1] < postNum[b2] {
			b1 = idom[b1]
		}
		for postNum[b2] < postNum[b1] {
			b2 = idom[b2]
		}
	}
	return b1
}

// postorder returns a postorder-number map (the entry block gets the
// highest number) together with the same blocks in reverse postorder
// (entry first), restricted to blocks reachable from entry.
func postorder(entry *tac.BasicBlock) (map[*tac.BasicBlock]int, []*tac.BasicBlock) {
	num := make(map[*tac.BasicBlock]int)
	visited := make(map[*tac.BasicBlock]bool)
	var post []*tac.BasicBlock

	var visit func(b *tac.BasicBlock)
	visit = func(b *tac.BasicBlock) {
		visited[b] = true
		for _, s := range b.Succs {
			if !visited[s] {
				visit(s)
			}
		}
		post = append(post, b)
	}
	visit(entry)

	for i, b := range post {
		num[b] = i
	}

	rpo := make([]*tac.BasicBlock, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return num, rpo
}
