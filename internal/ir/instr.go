package ir

import (
	"fmt"
	"strings"
)

// Op tags the Instruction variant (spec.md §3 Instruction).
type Op int

const (
	OpRaw Op = iota
	OpLabel
	OpExtern
	OpGlobalDir
	OpDataInit // db/dw/dd/dq of explicit values
	OpDataZero // resb/resw/resd/resq reservation
	OpDataStr  // string literal data
	OpLenOf    // `equ $-LBL` style length-of directive
	OpMov
	OpLea
	OpAdd
	OpSub
	OpXor
	OpAnd
	OpOr
	OpImul
	OpIdiv
	OpNeg
	OpNot
	OpCmp
	OpPush
	OpPop
	OpCall
	OpRet
	OpLeave
	OpSyscall
	OpJump
)

// JumpKind is the closed set of conditional/unconditional jump flavors
// spec.md §3 names.
type JumpKind int

const (
	JumpAlways JumpKind = iota
	JumpZero
	JumpNonZero
	JumpEqual
	JumpUnequal
	JumpLess
	JumpGreaterEqual
)

var jumpMnemonics = map[JumpKind]string{
	JumpAlways: "jmp", JumpZero: "jz", JumpNonZero: "jnz",
	JumpEqual: "je", JumpUnequal: "jne", JumpLess: "jl", JumpGreaterEqual: "jge",
}

// Negate returns the logical negation of a condition's jump kind, used by
// if/while lowering to jump *past* the body when the condition is false
// (spec.md §4.5 condition emitter).
func (jk JumpKind) Negate() JumpKind {
	switch jk {
	case JumpZero:
		return JumpNonZero
	case JumpNonZero:
		return JumpZero
	case JumpEqual:
		return JumpUnequal
	case JumpUnequal:
		return JumpEqual
	case JumpLess:
		return JumpGreaterEqual
	case JumpGreaterEqual:
		return JumpLess
	default:
		return JumpAlways
	}
}

var simpleMnemonics = map[Op]string{
	OpMov: "mov", OpLea: "lea", OpAdd: "add", OpSub: "sub", OpXor: "xor",
	OpAnd: "and", OpOr: "or", OpImul: "imul", OpIdiv: "idiv", OpNeg: "neg",
	OpNot: "not", OpCmp: "cmp", OpPush: "push", OpPop: "pop", OpCall: "call",
}

// Instruction is one line of the text (or data) section (spec.md §3). Only
// the fields relevant to Op are populated; the rest are zero.
type Instruction struct {
	Op      Op
	Dst     Location
	Src     Location
	Comment string

	Name   string // OpLabel/OpExtern/OpGlobalDir
	Global bool   // OpLabel: precede the label with a `global NAME` directive
	Spaced bool   // OpLabel: blank line before this label (layout flag)

	ElemSize int     // OpDataInit/OpDataZero: 1/2/4/8
	Signed   bool    // OpDataInit
	Values   []int64 // OpDataInit
	Count    int     // OpDataZero

	StrBody string // OpDataStr: the literal bytes, already escaped

	JumpKind JumpKind // OpJump
	Target   string   // OpJump/OpLenOf

	Raw string // OpRaw: pre-rendered text, emitted verbatim
}

// NonOptimizable reports whether a '@'-prefixed comment marks i as exempt
// from every peephole rewrite rule (spec.md §4.6).
func (i Instruction) NonOptimizable() bool {
	return strings.HasPrefix(i.Comment, "@")
}

func commentSuffix(c string) string {
	if c == "" {
		return ""
	}
	return " ; " + c
}

// dataSizeWord maps an element byte size to its db/dw/dd/dq or
// resb/resw/resd/resq keyword stem.
func dataSizeWord(elemSize int) string {
	switch elemSize {
	case 1:
		return "b"
	case 2:
		return "w"
	case 4:
		return "d"
	default:
		return "q"
	}
}

func operandText(l Location, pairedMemoryNeedsSize bool) string {
	isMem := l.Kind == LocRBP || (l.Kind == LocRegister && l.Deref) || (l.Kind == LocLabel && l.Deref)
	if isMem && pairedMemoryNeedsSize {
		return SizeKeyword(l.Width) + " " + l.Operand()
	}
	return l.Operand()
}

// Render renders one Instruction as the textual assembly line spec.md §6
// describes: two-space indentation, `; comment` suffix, memory operands in
// `[rbp+K]`/`[rbp-K]`/`[reg]`/`[rel LBL]` form, explicit size keyword only
// where the destination is memory and the other operand is an immediate
// (otherwise a register operand already disambiguates the width).
func (i Instruction) Render() string {
	switch i.Op {
	case OpRaw:
		return i.Raw + commentSuffix(i.Comment)
	case OpLabel:
		prefix := ""
		if i.Spaced {
			prefix = "\n"
		}
		if i.Global {
			return prefix + "global " + i.Name + "\n" + i.Name + ":"
		}
		return prefix + i.Name + ":"
	case OpExtern:
		return "extern " + i.Name
	case OpGlobalDir:
		return "global " + i.Name
	case OpDataInit:
		parts := make([]string, len(i.Values))
		for idx, v := range i.Values {
			if i.Signed {
				parts[idx] = fmt.Sprintf("%d", v)
			} else {
				parts[idx] = fmt.Sprintf("%d", uint64(v))
			}
		}
		return fmt.Sprintf("%s: d%s %s", i.Name, dataSizeWord(i.ElemSize), strings.Join(parts, ", "))
	case OpDataZero:
		return fmt.Sprintf("%s: res%s %d", i.Name, dataSizeWord(i.ElemSize), i.Count)
	case OpDataStr:
		return fmt.Sprintf("%s: db %s, 0", i.Name, i.StrBody)
	case OpLenOf:
		return fmt.Sprintf("%s_len: equ $-%s", i.Name, i.Target)
	case OpRet:
		return "  ret" + commentSuffix(i.Comment)
	case OpLeave:
		return "  leave" + commentSuffix(i.Comment)
	case OpSyscall:
		return "  syscall" + commentSuffix(i.Comment)
	case OpJump:
		return fmt.Sprintf("  %s %s%s", jumpMnemonics[i.JumpKind], i.Target, commentSuffix(i.Comment))
	case OpPush, OpPop, OpNeg, OpNot, OpIdiv:
		return fmt.Sprintf("  %s %s%s", simpleMnemonics[i.Op], operandText(i.Dst, true), commentSuffix(i.Comment))
	case OpCall:
		return fmt.Sprintf("  call %s%s", i.Target, commentSuffix(i.Comment))
	default:
		memNeedsSize := i.Src.IsImmediate() || i.Src.Kind == LocInvalid
		dst := operandText(i.Dst, memNeedsSize)
		src := operandText(i.Src, false)
		return fmt.Sprintf("  %s %s, %s%s", simpleMnemonics[i.Op], dst, src, commentSuffix(i.Comment))
	}
}
