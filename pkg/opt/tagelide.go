package opt

import "github.com/outshift-lang/splc/pkg/tac"

// maxComponentSize bounds the brute-force power-set search in
// bestPartition. Components larger than this are left untouched rather than
// searched; original_source/src/ir/tag_elision.cpp makes the same
// tractability assumption.
const maxComponentSize = 20

// ElideTags finds tagged values that can be carried in raw, untagged form
// across phi joins instead of being boxed and unboxed at every use, and
// rewrites the function to do so wherever that is a net win. Must run
// while fn is still in SSA form, before ssa.Destruct, since it reasons
// about Phi operands directly. Grounded on
// original_source/src/ir/tag_elision.cpp.
func ElideTags(ctx *tac.TACContext, fn *tac.Function) {
	tagged := taggedVariables(fn)
	if len(tagged) == 0 {
		return
	}
	for _, comp := range connectedComponents(fn, tagged) {
		if len(comp.members) > maxComponentSize {
			continue
		}
		untagged := bestPartition(comp)
		if len(untagged) == 0 {
			continue
		}
		applyPartition(ctx, fn, untagged)
	}
}

// component is a maximal set of tagged values connected by co-occurrence in
// the same Phi (as its destination or one of its incoming values), together
// with the edges that connected them — crossing one of those edges with a
// partition that untags one side but not the other costs an extra tag/untag
// pair, so the whole component is partitioned at once.
type component struct {
	members []tac.Value
	edges   [][2]int
}

// taggedVariables collects every value that appears as a Tag's destination
// or an Untag's source, excluding literal constants, which have no
// representation to choose between: they're folded directly.
func taggedVariables(fn *tac.Function) map[tac.Value]bool {
	set := make(map[tac.Value]bool)
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			switch in := instr.(type) {
			case *tac.Tag:
				set[in.Dest] = true
			case *tac.Untag:
				if _, ok := in.Src.(*tac.ConstantInt); !ok {
					set[in.Src] = true
				}
			}
		}
	}
	return set
}

func connectedComponents(fn *tac.Function, tagged map[tac.Value]bool) []*component {
	adj := make(map[tac.Value]map[tac.Value]bool)
	link := func(a, b tac.Value) {
		if adj[a] == nil {
			adj[a] = make(map[tac.Value]bool)
		}
		adj[a][b] = true
	}
	for _, blk := range fn.Blocks {
		for _, p := range blk.Phis() {
			var nodes []tac.Value
			if tagged[p.Dest] {
				nodes = append(nodes, p.Dest)
			}
			for _, e := range p.Incoming {
				if tagged[e.Value] {
					nodes = append(nodes, e.Value)
				}
			}
			for i := range nodes {
				for j := i + 1; j < len(nodes); j++ {
					link(nodes[i], nodes[j])
					link(nodes[j], nodes[i])
				}
			}
		}
	}

	visited := make(map[tac.Value]bool)
	var comps []*component
	for v := range tagged {
		if visited[v] {
			continue
		}
		var members []tac.Value
		stack := []tac.Value{v}
		visited[v] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, cur)
			for n := range adj[cur] {
				if !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}

		index := make(map[tac.Value]int, len(members))
		for i, m := range members {
			index[m] = i
		}
		seen := make(map[[2]int]bool)
		var edges [][2]int
		for _, m := range members {
			for n := range adj[m] {
				i, j := index[m], index[n]
				if i > j {
					i, j = j, i
				}
				if seen[[2]int{i, j}] {
					continue
				}
				seen[[2]int{i, j}] = true
				edges = append(edges, [2]int{i, j})
			}
		}
		comps = append(comps, &component{members: members, edges: edges})
	}
	return comps
}

// bestPartition brute-forces every subset of comp.members as the candidate
// "carry untagged" set and returns whichever minimizes total cost, ties
// broken toward fewer untagged members. The all-tagged subset (cost 0,
// popcount 0) always participates, so a component with no profitable split
// comes back as an empty map.
func bestPartition(comp *component) map[tac.Value]bool {
	n := len(comp.members)
	bestMask, bestCost, bestPop := 0, 0, 0
	first := true
	for mask := 0; mask < (1 << uint(n)); mask++ {
		cost := 0
		for i, v := range comp.members {
			if mask&(1<<uint(i)) != 0 {
				cost += valueUntagCost(v)
			}
		}
		for _, e := range comp.edges {
			if (mask&(1<<uint(e[0])) != 0) != (mask&(1<<uint(e[1])) != 0) {
				cost++
			}
		}
		pop := popcount(mask)
		if first || cost < bestCost || (cost == bestCost && pop < bestPop) {
			bestMask, bestCost, bestPop, first = mask, cost, pop, false
		}
	}

	out := make(map[tac.Value]bool)
	for i, v := range comp.members {
		if bestMask&(1<<uint(i)) != 0 {
			out[v] = true
		}
	}
	return out
}

func popcount(mask int) int {
	n := 0
	for mask != 0 {
		n += mask & 1
		mask >>= 1
	}
	return n
}

// valueUntagCost estimates the net instruction-count change from carrying v
// untagged: a removed Tag definition or Untag use each save one
// instruction, a ConditionalJump against a non-constant (one that still
// needs v's tagged form on the other side) costs one, and any other use
// costs one since v's tagged form still has to exist for it.
func valueUntagCost(v tac.Value) int {
	cost := 0
	if _, ok := v.Def().(*tac.Tag); ok {
		cost--
	}
	for _, use := range v.Uses() {
		switch u := use.(type) {
		case *tac.Untag:
			cost--
		case *tac.ConditionalJump:
			other := u.Lhs
			if u.Lhs == v {
				other = u.Rhs
			}
			if _, ok := other.(*tac.ConstantInt); !ok {
				cost++
			}
		case *tac.Phi:
			// the phi graph's crossing-edge cost already accounts for this.
		default:
			cost++
		}
	}
	return cost
}

// applyPartition materializes an untagged companion for every value chosen
// untagged and rewrites the uses that can now skip tagging entirely.
func applyPartition(ctx *tac.TACContext, fn *tac.Function, untagged map[tac.Value]bool) {
	companion := make(map[tac.Value]tac.Value)

	var resolve func(v tac.Value) tac.Value
	resolve = func(v tac.Value) tac.Value {
		if ci, ok := v.(*tac.ConstantInt); ok {
			return ctx.Constant(ci.Val >> 1)
		}
		if c, ok := companion[v]; ok {
			return c
		}
		if untagged[v] {
			if tg, ok := v.Def().(*tac.Tag); ok {
				companion[v] = tg.Src
				return tg.Src
			}
			if p, ok := v.Def().(*tac.Phi); ok {
				newDest := fn.NewTemp(v.Name()+".u", tac.Integer)
				companion[v] = newDest // placeholder breaks cycles on loop phis
				edges := make([]tac.PhiEdge, len(p.Incoming))
				for i, e := range p.Incoming {
					edges[i] = tac.PhiEdge{Pred: e.Pred, Value: resolve(e.Value)}
				}
				fn.EmitPhi(p.Block(), newDest, edges)
				return newDest
			}
		}
		companion[v] = materializeUntagFallback(fn, v)
		return companion[v]
	}

	for v := range untagged {
		companionVal := resolve(v)
		rewriteUses(ctx, v, companionVal)
	}
}

// materializeUntagFallback handles a value whose definition is neither a
// Tag (whose source is already the untagged form) nor a Phi (which gets
// rebuilt directly): it inserts a fresh Untag right after v's own
// definition, which dominates every later use of v, or at the front of the
// entry block for a value with no defining instruction (a parameter).
func materializeUntagFallback(fn *tac.Function, v tac.Value) tac.Value {
	dest := fn.NewTemp(v.Name()+".u", tac.Integer)
	if def := v.Def(); def != nil {
		fn.EmitUntagAfter(def, dest, v)
	} else {
		fn.EmitUntagAtFront(fn.Entry(), dest, v)
	}
	return dest
}

// rewriteUses redirects the uses of v that can now be served directly by
// its untagged companion: an Untag of v is eliminated outright, and a
// ConditionalJump against v is rewritten to compare the untagged forms
// (shifting a constant operand down, or resolving the other side's own
// companion if it belongs to the same component). Any other use is left
// alone — it still needs v in tagged form, and v's original definition
// remains live to serve it. A use that becomes unreachable this way (e.g.
// the Phi that used to define v, once every consumer has moved to the
// companion) gets cleaned up by a later dead-value-elimination pass.
func rewriteUses(ctx *tac.TACContext, v tac.Value, companionVal tac.Value) {
	for _, use := range append([]tac.Instruction(nil), v.Uses()...) {
		switch u := use.(type) {
		case *tac.Untag:
			if u.Dest == companionVal {
				continue // the fallback Untag that defines the companion itself
			}
			tac.ReplaceAllUses(u.Dest, companionVal)
			u.Block().Remove(u)
		case *tac.ConditionalJump:
			if u.Lhs == v {
				tac.ReplaceOperandIn(u, v, companionVal)
			}
			if u.Rhs == v {
				tac.ReplaceOperandIn(u, v, companionVal)
			}
			if ci, ok := u.Lhs.(*tac.ConstantInt); ok {
				tac.ReplaceOperandIn(u, ci, ctx.Constant(ci.Val>>1))
			}
			if ci, ok := u.Rhs.(*tac.ConstantInt); ok {
				tac.ReplaceOperandIn(u, ci, ctx.Constant(ci.Val>>1))
			}
		}
	}
}
