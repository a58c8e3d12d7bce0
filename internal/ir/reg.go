// Package ir defines the structured instruction IR the code generator
// builds and the peephole optimizer rewrites (spec.md §3 Location,
// Section, Instruction; §4.5, §4.6).
package ir

// Reg is a general-purpose x86-64 register, independent of operand width.
type Reg int

const NoReg Reg = -1

const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// regNames64/32/16/8 give the sub-register spelling for each width, indexed
// by Reg. Widths narrower than 64 bits are only meaningful for the low
// eight registers plus the r8-r15 family's "d/w/b" suffixed forms.
var regNames64 = [...]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi", "r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"}
var regNames32 = [...]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi", "r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d"}
var regNames16 = [...]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di", "r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w"}
var regNames8 = [...]string{"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil", "r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"}

// Name renders r at the given operand width in bits (8/16/32/64).
func (r Reg) Name(width int) string {
	if r < 0 || int(r) >= len(regNames64) {
		return "?"
	}
	switch width {
	case 8:
		return regNames8[r]
	case 16:
		return regNames16[r]
	case 32:
		return regNames32[r]
	default:
		return regNames64[r]
	}
}

// ArgRegs is the System-V-AMD64 integer argument register order (spec.md
// §4.5 calling convention): rdi, rsi, rdx, rcx, r8, r9.
var ArgRegs = [6]Reg{RDI, RSI, RDX, RCX, R8, R9}

// CalleeSaved lists the registers the callee must preserve across a call
// (spec.md §4.5): rbp, rbx, r12-r15. rbp is handled separately by the
// prologue/epilogue; the rest are what a caller must push/pop around a
// call if it is keeping a value live in one of them.
var CalleeSaved = []Reg{RBX, R12, R13, R14, R15}

// CallerSaved is every general register a callee may clobber, used by the
// call-lowering save/restore step (spec.md §4.5 "inspect which
// caller-saved registers are currently live").
var CallerSaved = []Reg{RAX, RCX, RDX, RSI, RDI, R8, R9, R10, R11}
