package ssa

import "github.com/outshift-lang/splc/pkg/tac"

// Transform promotes every Load/Store-addressed local in fn into real SSA
// form. φs are inserted at the iterated dominance frontier of each
// variable's definitions, renamed via a dominator-tree walk, and dead φs
// are pruned once renaming is done. Grounded on original_source/h/
// to_ssa.hpp's ToSSA::run (findDominators -> getImmediateDominators ->
// getDominanceFrontiers -> calculatePhiNodes -> rename -> killDeadPhis).
func Transform(fn *tac.Function) {
	if len(fn.Blocks) == 0 || len(fn.Locals) == 0 {
		return
	}
	dom := computeDominators(fn)

	localTypes := make(map[*tac.LocalValue]tac.ValueType, len(fn.Locals))
	for _, local := range fn.Locals {
		localTypes[local] = localValueType(fn, local)
	}

	pending := placePhis(fn, dom, localTypes)
	edges := renameVariables(fn, dom, pending)
	materializePhis(fn, pending, edges)
	killDeadPhis(fn)
}

// TransformProgram runs Transform over every defined function in ctx,
// skipping externs (they have no blocks to promote).
func TransformProgram(ctx *tac.TACContext) {
	for _, fn := range ctx.Functions {
		if fn.IsExternal {
			continue
		}
		Transform(fn)
	}
}
