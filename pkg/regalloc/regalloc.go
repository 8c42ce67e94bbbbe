// Package regalloc colors pkg/mach's virtual registers down to six
// general-purpose hardware registers, spilling to the stack when a
// function needs more live values than colors, and inserts the
// caller-save/restore sequences around every call site. Grounded on
// original_source/src/reg_alloc.cpp's graph-coloring allocator (gather
// use/def, fixed-point liveness, backward interference-graph
// construction, move coalescing, simplify/spill/select coloring,
// stack-slot assignment, spill-around-calls), restructured the way the
// teacher's pkg/regalloc splits the same algorithm across irc.go,
// interference.go, and transform.go.
package regalloc

import "github.com/outshift-lang/splc/pkg/mach"

// AllocatableRegs is the six-color palette this backend colors ordinary
// virtual registers into: rax, rbx, rcx, rdx, rsi, rdi, in that order —
// the first six entries of original_source/src/reg_alloc.cpp's
// colorNames table, AVAILABLE_COLORS == 6. Every other hardware register
// (r8-r15, rsp, rbp) is reserved: used only via pinned vregs (call
// argument registers, division operands) or, for rsp/rbp, the prologue
// and epilogue directly.
var AllocatableRegs = []*mach.HReg{mach.RAX, mach.RBX, mach.RCX, mach.RDX, mach.RSI, mach.RDI}

const availableColors = 6

// RunProgram allocates registers for every defined function in mc.
func RunProgram(mc *mach.Context) {
	for _, fn := range mc.Functions {
		Run(fn)
	}
}

// Run allocates registers for one function: it colors the interference
// graph (spilling and retrying until the coloring succeeds), rewrites
// every vreg operand to its assigned hardware register, lays out the
// stack frame, and inserts save/restore code around call sites for
// whatever's left live across them.
func Run(fn *mach.Function) {
	a := newAllocator(fn)
	a.colorGraph()
	a.spillAroundCalls()
	a.replaceRegs()
	a.allocateStack()
}
