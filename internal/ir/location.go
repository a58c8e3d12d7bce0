package ir

import "fmt"

// LocKind tags the Location variant (spec.md §3 Location).
type LocKind int

const (
	LocInvalid LocKind = iota
	LocRegister
	LocRBP    // rbp-relative offset, signed
	LocLit    // signed 64-bit numeric literal
	LocULit   // unsigned 64-bit numeric literal
	LocLabel  // label-relative (rodata/bss/data symbol)
)

// Location is a value's storage, at the point the expression lowerer
// finished computing it. It is a plain comparable struct so "two Locations
// compare equal iff their tag plus all payload fields compare equal"
// (spec.md §3) is just Go's built-in == .
type Location struct {
	Kind   LocKind
	Reg    Reg
	Width  int // operand width in bits: 8/16/32/64
	Offset int // LocRBP offset, or [Reg+Offset] displacement when Deref
	IVal   int64
	UVal   uint64
	Label  string
	// Deref selects between value-of (false) and memory-at (true): e.g. a
	// pointer-typed Location with Deref set means "the memory the register
	// points to", not "the register's own bit pattern" (spec.md §3).
	Deref bool
	// Index/Scale turn a dereferenced register into a scaled-index memory
	// operand `[Reg + Index*Scale + Offset]`, for subscript and pointer
	// arithmetic addressing (spec.md §4.5 "lea r, [base + index*size]").
	// Scale == 0 means no index register is present.
	Index Reg
	Scale int
}

// Reg64 builds a register Location at 64-bit width, the default an
// expression lowerer asks for before narrowing to the operand's own size.
func Reg64(r Reg) Location { return Location{Kind: LocRegister, Reg: r, Width: 64} }

// RegAt builds a register Location at an explicit width.
func RegAt(r Reg, width int) Location { return Location{Kind: LocRegister, Reg: r, Width: width} }

// RBP builds an rbp-relative stack slot Location.
func RBP(offset int) Location { return Location{Kind: LocRBP, Offset: offset, Width: 64} }

// Lit builds a signed literal Location.
func Lit(v int64) Location { return Location{Kind: LocLit, IVal: v, Width: 64} }

// ULit builds an unsigned literal Location.
func ULit(v uint64) Location { return Location{Kind: LocULit, UVal: v, Width: 64} }

// Lbl builds a label-relative Location (`[rel LBL]` once rendered).
func Lbl(name string) Location { return Location{Kind: LocLabel, Label: name, Width: 64} }

// Dereferenced returns a copy of l with the dereference flag set, i.e. "the memory
// this location's address designates" instead of "this location's value".
func (l Location) Dereferenced() Location {
	l.Deref = true
	return l
}

// WithWidth returns a copy of l narrowed/widened to width bits.
func (l Location) WithWidth(width int) Location {
	l.Width = width
	return l
}

// WithOffset returns a copy of l with delta added to its displacement
// (LocRBP offset, or the [Reg+Offset] displacement when Deref).
func (l Location) WithOffset(delta int) Location {
	l.Offset += delta
	return l
}

// WithIndex returns a copy of a dereferenced-register l with a scaled
// index register added, forming `[Reg + idx*scale + Offset]`.
func (l Location) WithIndex(idx Reg, scale int) Location {
	l.Index = idx
	l.Scale = scale
	return l
}

// IsImmediate reports whether l is a bare numeric literal (not a memory or
// register operand): used by window-2 constant-folding rules, by the
// index/pointer-arithmetic lowering, and by Render to decide when a memory
// destination needs an explicit size keyword.
func (l Location) IsImmediate() bool {
	return l.Kind == LocLit || l.Kind == LocULit
}

// IsZero reports whether l is the literal 0, used by "return 0" -> xor
// eax,eax (spec.md §4.5) and xor-fold peephole rules.
func (l Location) IsZero() bool {
	return (l.Kind == LocLit && l.IVal == 0) || (l.Kind == LocULit && l.UVal == 0)
}

// Operand renders l as it appears in an instruction's operand position:
// a register name, an immediate, a bare label, or one of the `[...]`
// memory forms when l is dereferenced or rbp-relative.
func (l Location) Operand() string {
	switch l.Kind {
	case LocRegister:
		if l.Deref {
			s := "[" + l.Reg.Name(64)
			if l.Scale > 0 {
				s += fmt.Sprintf("+%s*%d", l.Index.Name(64), l.Scale)
			}
			if l.Offset > 0 {
				s += fmt.Sprintf("+%d", l.Offset)
			} else if l.Offset < 0 {
				s += fmt.Sprintf("-%d", -l.Offset)
			}
			return s + "]"
		}
		return l.Reg.Name(l.Width)
	case LocRBP:
		return rbpOperand(l.Offset)
	case LocLit:
		return fmt.Sprintf("%d", l.IVal)
	case LocULit:
		return fmt.Sprintf("%d", l.UVal)
	case LocLabel:
		if l.Deref {
			return "[rel " + l.Label + "]"
		}
		return l.Label
	default:
		return "?"
	}
}

// rbpOperand renders `[rbp+K]` or `[rbp-K]` per spec.md §6's memory-operand
// grammar.
func rbpOperand(offset int) string {
	if offset < 0 {
		return fmt.Sprintf("[rbp-%d]", -offset)
	}
	return fmt.Sprintf("[rbp+%d]", offset)
}

// SizeKeyword maps an operand width in bits to the NASM size-override
// keyword used when a memory operand's size is otherwise ambiguous.
func SizeKeyword(width int) string {
	switch width {
	case 8:
		return "BYTE"
	case 16:
		return "WORD"
	case 32:
		return "DWORD"
	default:
		return "QWORD"
	}
}
