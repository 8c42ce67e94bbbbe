package mach

// The canonical x86-64 general-purpose register file, grounded on
// original_source/src/reg_alloc.cpp's colorNames table. rsp and rbp are
// carried here so the selector and printer can refer to them uniformly
// with every other hardware register, but pkg/regalloc never assigns
// either as a color: AllocatableRegs excludes them.
var (
	RAX = &HReg{Name: "rax", Index: 0}
	RBX = &HReg{Name: "rbx", Index: 1}
	RCX = &HReg{Name: "rcx", Index: 2}
	RDX = &HReg{Name: "rdx", Index: 3}
	RSI = &HReg{Name: "rsi", Index: 4}
	RDI = &HReg{Name: "rdi", Index: 5}
	R8  = &HReg{Name: "r8", Index: 6}
	R9  = &HReg{Name: "r9", Index: 7}
	R10 = &HReg{Name: "r10", Index: 8}
	R11 = &HReg{Name: "r11", Index: 9}
	R12 = &HReg{Name: "r12", Index: 10}
	R13 = &HReg{Name: "r13", Index: 11}
	R14 = &HReg{Name: "r14", Index: 12}
	R15 = &HReg{Name: "r15", Index: 13}
	RSP = &HReg{Name: "rsp", Index: 14}
	RBP = &HReg{Name: "rbp", Index: 15}
)

// Registers indexes the hardware register file by Index, for pkg/regalloc
// and pkg/asm to resolve a coloring back to a concrete register.
var Registers = []*HReg{RAX, RBX, RCX, RDX, RSI, RDI, R8, R9, R10, R11, R12, R13, R14, R15, RSP, RBP}

// ArgRegs is the System V argument-register order, used only for calls
// into foreign/runtime code (Call.RegPass): gcAllocate, ccall, print, and
// friends expect their arguments the ordinary C way. Calls between this
// compiler's own functions never use it — see lowerCall in select.go.
var ArgRegs = []*HReg{RDI, RSI, RDX, RCX, R8, R9}
