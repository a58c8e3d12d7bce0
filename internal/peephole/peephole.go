// Package peephole rewrites the structured instruction IR internal/ir
// defines and internal/codegen produces, applying a fixed set of
// local-window rewrite rules to a fixed point and then pruning unused
// extern declarations (spec.md §4.6).
package peephole

import (
	"github.com/samber/lo"

	"github.com/euppal/floralc/internal/ir"
)

// Optimize rewrites sections's Text stream per level (0 disables the
// rewrite-rule passes but still prunes externs) and returns a fresh slice;
// the caller's sections argument is never mutated in place.
func Optimize(sections []ir.Section, level int) []ir.Section {
	out := make([]ir.Section, len(sections))
	copy(out, sections)
	if level > 0 {
		for i := range out {
			if out[i].Kind == ir.Text {
				out[i].Instr = fixedPoint(out[i].Instr)
			}
		}
	}
	return pruneExterns(out)
}

// fixedPoint re-applies the rewrite-rule sweep until a pass makes no
// further change (spec.md §4.6 "applied repeatedly to a fixed point").
func fixedPoint(instr []ir.Instruction) []ir.Instruction {
	for {
		next, changed := sweep(instr)
		instr = next
		if !changed {
			return instr
		}
	}
}

// sweep runs one left-to-right pass, preferring the widest matching
// window at each position (3, then 2, then 1) so a wider rule is never
// starved by a narrower one firing first on its leading instruction.
// Instructions marked NonOptimizable (a leading '@' comment) never enter
// or exit a rewrite.
func sweep(instr []ir.Instruction) ([]ir.Instruction, bool) {
	out := make([]ir.Instruction, 0, len(instr))
	changed := false
	i := 0
	for i < len(instr) {
		if rewritten, ok := tryWindow3(instr, i); ok {
			out = append(out, rewritten...)
			i += 3
			changed = true
			continue
		}
		if rewritten, ok := tryWindow2(instr, i); ok {
			out = append(out, rewritten...)
			i += 2
			changed = true
			continue
		}
		if rewritten, ok := tryWindow1(instr, i); ok {
			out = append(out, rewritten...)
			i++
			changed = true
			continue
		}
		out = append(out, instr[i])
		i++
	}
	return out, changed
}

func optimizable(instr []ir.Instruction, from, n int) bool {
	if from+n > len(instr) {
		return false
	}
	for k := 0; k < n; k++ {
		if instr[from+k].NonOptimizable() {
			return false
		}
	}
	return true
}

// sameOperand reports whether two Locations render identically, the
// cheap structural equality window rules need (e.g. `mov r, r`).
func sameOperand(a, b ir.Location) bool { return a.Operand() == b.Operand() }

// isLowHalf reports whether r is one of the eight pre-REX registers
// (rax-rdi), the window-1 zero-mov rule's target set (spec.md §4.6
// boundary behavior).
func isLowHalf(r ir.Reg) bool { return r >= ir.RAX && r <= ir.RDI }

// literalValue extracts l's numeric value regardless of signedness, for
// constant-folding an immediate pair.
func literalValue(l ir.Location) int64 {
	if l.Kind == ir.LocULit {
		return int64(l.UVal)
	}
	return l.IVal
}

// foldArith computes the constant result of op applied to x and imm,
// carrying forward x's signedness.
func foldArith(op ir.Op, x, imm ir.Location) ir.Location {
	xv, iv := literalValue(x), literalValue(imm)
	var result int64
	switch op {
	case ir.OpAdd:
		result = xv + iv
	case ir.OpSub:
		result = xv - iv
	case ir.OpImul:
		result = xv * iv
	}
	if x.Kind == ir.LocULit {
		return ir.ULit(uint64(result))
	}
	return ir.Lit(result)
}

// tryWindow1 is every single-instruction simplification: removing an
// operation that is provably a no-op regardless of the operand's runtime
// value, or rewriting `mov r, 0` on rax-rdi to `xor r, r`.
func tryWindow1(instr []ir.Instruction, i int) ([]ir.Instruction, bool) {
	if !optimizable(instr, i, 1) {
		return nil, false
	}
	in := instr[i]
	switch in.Op {
	case ir.OpMov:
		if sameOperand(in.Dst, in.Src) {
			return nil, true
		}
		if in.Dst.Kind == ir.LocRegister && !in.Dst.Deref && in.Src.IsZero() && isLowHalf(in.Dst.Reg) {
			return []ir.Instruction{{Op: ir.OpXor, Dst: in.Dst, Src: in.Dst, Comment: in.Comment}}, true
		}
	case ir.OpAdd, ir.OpSub, ir.OpOr, ir.OpXor:
		if in.Src.IsZero() {
			return nil, true
		}
	case ir.OpImul:
		if in.Src.Kind == ir.LocLit && in.Src.IVal == 1 {
			return nil, true
		}
	}
	return nil, false
}

// tryWindow2 rewrites an adjacent instruction pair.
func tryWindow2(instr []ir.Instruction, i int) ([]ir.Instruction, bool) {
	if !optimizable(instr, i, 2) {
		return nil, false
	}
	a, b := instr[i], instr[i+1]

	// mov a, x ; add/sub/imul a, imm (both literal-sourced) -> mov a, folded:
	// the arithmetic never touches memory or a live register, so it can be
	// done once at compile time.
	if a.Op == ir.OpMov && sameOperand(a.Dst, b.Dst) && a.Src.IsImmediate() && b.Src.IsImmediate() {
		switch b.Op {
		case ir.OpAdd, ir.OpSub, ir.OpImul:
			return []ir.Instruction{{Op: ir.OpMov, Dst: a.Dst, Src: foldArith(b.Op, a.Src, b.Src), Comment: a.Comment}}, true
		}
	}
	// mov a, x ; mov b, a (a is register) -> mov b, x: a never survives past
	// the second mov, so it can be cut out of the chain.
	if a.Op == ir.OpMov && b.Op == ir.OpMov && a.Dst.Kind == ir.LocRegister && !a.Dst.Deref &&
		sameOperand(a.Dst, b.Src) && !sameOperand(a.Dst, b.Dst) {
		return []ir.Instruction{{Op: ir.OpMov, Dst: b.Dst, Src: a.Src, Comment: a.Comment}}, true
	}
	// push r; pop r -> nothing: the stack round-trip has no observable
	// effect when the same register comes right back off.
	if a.Op == ir.OpPush && b.Op == ir.OpPop && sameOperand(a.Dst, b.Dst) {
		return nil, true
	}
	// neg r; neg r / not r; not r -> nothing: both are their own inverse.
	if (a.Op == ir.OpNeg || a.Op == ir.OpNot) && a.Op == b.Op && sameOperand(a.Dst, b.Dst) {
		return nil, true
	}
	return nil, false
}

// tryWindow3 rewrites an adjacent instruction triple.
func tryWindow3(instr []ir.Instruction, i int) ([]ir.Instruction, bool) {
	if !optimizable(instr, i, 3) {
		return nil, false
	}
	a, b, c := instr[i], instr[i+1], instr[i+2]

	// mov r, X; push r; pop r2 -> mov r2, X: the push/pop pair's only
	// purpose in this shape is moving r's value into r2.
	if a.Op == ir.OpMov && b.Op == ir.OpPush && c.Op == ir.OpPop &&
		sameOperand(a.Dst, b.Dst) && !sameOperand(b.Dst, c.Dst) {
		return []ir.Instruction{{Op: ir.OpMov, Dst: c.Dst, Src: a.Src, Comment: a.Comment}}, true
	}
	return nil, false
}

// pruneExterns drops every OpExtern declaration whose symbol no call, jump,
// lea, or mov in the Text section ever references (spec.md §4.6 "extern
// pruning").
func pruneExterns(sections []ir.Section) []ir.Section {
	used := map[string]bool{}
	for _, s := range sections {
		if s.Kind != ir.Text {
			continue
		}
		for _, in := range s.Instr {
			switch in.Op {
			case ir.OpCall, ir.OpJump:
				used[in.Target] = true
			case ir.OpLea, ir.OpMov:
				if in.Src.Kind == ir.LocLabel {
					used[in.Src.Label] = true
				}
				if in.Dst.Kind == ir.LocLabel {
					used[in.Dst.Label] = true
				}
			}
		}
	}

	out := make([]ir.Section, len(sections))
	for i, s := range sections {
		if s.Kind != ir.Text {
			out[i] = s
			continue
		}
		filtered := lo.Filter(s.Instr, func(in ir.Instruction, _ int) bool {
			return !(in.Op == ir.OpExtern && !used[in.Name])
		})
		out[i] = ir.Section{Kind: s.Kind, Instr: filtered}
	}
	return out
}
