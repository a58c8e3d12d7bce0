package codegen

import (
	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/ice"
	"github.com/euppal/floralc/internal/ir"
	"github.com/euppal/floralc/internal/types"
)

// lowerBinary dispatches every BinaryExpr.Op: unary forms encode their
// single operand in Left (postfix) or Right (prefix): to its own
// complete lowering, no fallthrough between cases (DESIGN.md Open
// Question: expression lowering).
func (g *Generator) lowerBinary(n *ast.BinaryExpr, wantAddr bool) ir.Location {
	switch n.Op {
	case ast.OpDot, ast.OpArrow:
		return g.lowerMember(n)
	case ast.OpIndex:
		return g.lowerIndex(n)
	case ast.OpDeref:
		return g.lowerDeref(n.Right)
	case ast.OpAddrOf:
		return g.addressOf(g.lowerExpr(n.Right, true))
	case ast.OpPos:
		return g.lowerExpr(n.Right, false)
	case ast.OpNeg:
		return g.lowerUnaryArith(n.Right, ir.OpNeg)
	case ast.OpInvert:
		return g.lowerUnaryArith(n.Right, ir.OpNot)
	case ast.OpBoolNot:
		return g.lowerBoolNot(n.Right)
	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		return g.lowerIncDec(n)
	case ast.OpMul, ast.OpDiv, ast.OpAdd, ast.OpSub, ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor:
		return g.lowerArith(n)
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpEq, ast.OpNe:
		return g.lowerCompareValue(n)
	case ast.OpAndAnd, ast.OpOrOr, ast.OpXorXor:
		return g.lowerLogical(n)
	default:
		ice.Unreachablef("unhandled operator kind %v", n.Op)
		return ir.Location{}
	}
}

// lowerMember lowers `.`/`->` member access to the member's storage
// Location: the struct's base address plus the member's byte offset
// (SPEC_FULL supplemented struct-member feature).
func (g *Generator) lowerMember(n *ast.BinaryExpr) ir.Location {
	memberName := n.Right.(*ast.SymbolExpr).Name

	var si *types.StructInfo
	if n.Op == ast.OpArrow {
		elem := types.Resolve(n.Left.TypeOf()).ElemType()
		si = types.Resolve(elem).StructInfo
	} else {
		si = types.Resolve(n.Left.TypeOf()).StructInfo
	}
	offset := si.OffsetOf(memberName)
	width := widthFor(types.Sizeof(si.MemberType(memberName)))

	if n.Op == ast.OpArrow {
		base := g.toRegister(g.lowerExpr(n.Left, false))
		return ir.RegAt(base, width).Dereferenced().WithOffset(offset)
	}

	base := g.lowerExpr(n.Left, true)
	switch base.Kind {
	case ir.LocRBP:
		return base.WithOffset(offset).WithWidth(width)
	case ir.LocRegister:
		return base.WithOffset(offset).WithWidth(width)
	default:
		ice.Unreachablef("member base lowered to unexpected location kind %v", base.Kind)
		return ir.Location{}
	}
}

// lowerIndex lowers `base[index]` to a scaled-index memory Location,
// folding a literal index into a plain displacement and an element size
// outside {1,2,4,8} into an explicit multiply (spec.md §4.5 "lea r, [base
// + index*size]").
func (g *Generator) lowerIndex(n *ast.BinaryExpr) ir.Location {
	elemSize := types.Sizeof(n.TypeOf())
	width := widthFor(elemSize)

	baseT := types.Resolve(n.Left.TypeOf())
	var baseReg ir.Reg
	if baseT.IsArray() {
		baseReg = g.toRegister(g.addressOf(g.lowerExpr(n.Left, true)))
	} else {
		baseReg = g.toRegister(g.lowerExpr(n.Left, false))
	}

	idxLoc := g.lowerExpr(n.Right, false)
	if idxLoc.IsImmediate() {
		idx := idxLoc.IVal
		if idxLoc.Kind == ir.LocULit {
			idx = int64(idxLoc.UVal)
		}
		return ir.RegAt(baseReg, width).Dereferenced().WithOffset(int(idx) * elemSize)
	}

	idxReg := g.toRegister(idxLoc)
	if elemSize == 1 || elemSize == 2 || elemSize == 4 || elemSize == 8 {
		return ir.RegAt(baseReg, width).Dereferenced().WithIndex(idxReg, elemSize)
	}
	g.emitText(ir.Instruction{Op: ir.OpImul, Dst: ir.Reg64(idxReg), Src: ir.Lit(int64(elemSize))})
	return ir.RegAt(baseReg, width).Dereferenced().WithIndex(idxReg, 1)
}

// lowerDeref lowers unary `*p`.
func (g *Generator) lowerDeref(e ast.Expr) ir.Location {
	r := g.toRegister(g.lowerExpr(e, false))
	elem := types.Resolve(e.TypeOf()).ElemType()
	width := widthFor(types.Sizeof(elem))
	return ir.RegAt(r, width).Dereferenced()
}

func (g *Generator) lowerUnaryArith(e ast.Expr, op ir.Op) ir.Location {
	r := g.toRegister(g.lowerExpr(e, false))
	g.emitText(ir.Instruction{Op: op, Dst: ir.Reg64(r)})
	return ir.Reg64(r)
}

// lowerBoolNot lowers `!b`; bool values are always the normalized 0/1 a
// comparison or another boolean expression produces, so the negation is
// a single xor against 1.
func (g *Generator) lowerBoolNot(e ast.Expr) ir.Location {
	r := g.toRegister(g.lowerExpr(e, false))
	g.emitText(ir.Instruction{Op: ir.OpXor, Dst: ir.Reg64(r), Src: ir.Lit(1)})
	return ir.Reg64(r)
}

// lowerIncDec lowers prefix/postfix ++/--, reading the old value first
// for the postfix forms (spec.md §4.5 "Postfix increment/decrement").
func (g *Generator) lowerIncDec(n *ast.BinaryExpr) ir.Location {
	var operand ast.Expr
	if n.Postfix {
		operand = n.Left
	} else {
		operand = n.Right
	}
	loc := g.lowerExpr(operand, true)
	op := ir.OpAdd
	if n.Op == ast.OpPreDec || n.Op == ast.OpPostDec {
		op = ir.OpSub
	}
	width := widthFor(types.Sizeof(operand.TypeOf()))

	if n.Postfix {
		old := g.frame.AllocScratch()
		g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.RegAt(old, width), Src: loc})
		g.emitText(ir.Instruction{Op: op, Dst: loc, Src: ir.Lit(1)})
		return ir.RegAt(old, width)
	}
	g.emitText(ir.Instruction{Op: op, Dst: loc, Src: ir.Lit(1)})
	return loc
}

// lowerArith lowers the numeric/pointer binary arithmetic operators.
func (g *Generator) lowerArith(n *ast.BinaryExpr) ir.Location {
	lt := types.Resolve(n.Left.TypeOf())
	rt := types.Resolve(n.Right.TypeOf())
	if (n.Op == ast.OpAdd || n.Op == ast.OpSub) && (lt.IsPointer() || lt.IsArray()) && rt.IsNumber() {
		return g.lowerPointerArith(n, lt)
	}

	left := g.toRegister(g.lowerExpr(n.Left, false))
	right := g.lowerExpr(n.Right, false)
	width := widthFor(types.Sizeof(n.TypeOf()))

	if n.Op == ast.OpDiv {
		return g.lowerDivide(left, right, width, lt.IsSigned())
	}

	var op ir.Op
	switch n.Op {
	case ast.OpMul:
		op = ir.OpImul
	case ast.OpAdd:
		op = ir.OpAdd
	case ast.OpSub:
		op = ir.OpSub
	case ast.OpBitAnd:
		op = ir.OpAnd
	case ast.OpBitOr:
		op = ir.OpOr
	case ast.OpBitXor:
		op = ir.OpXor
	default:
		ice.Unreachablef("unhandled arithmetic operator %v", n.Op)
	}
	g.emitText(ir.Instruction{Op: op, Dst: ir.RegAt(left, width), Src: right})
	g.release(right)
	return ir.RegAt(left, width)
}

// lowerPointerArith lowers pointer +/- integer via lea, folding a
// compile-time-constant index into a plain displacement and using a
// scaled-index operand when the element size is a valid x86 scale
// {1,2,4,8}, otherwise multiplying the index first (spec.md §4.5 "lea r,
// [base + index*size]").
func (g *Generator) lowerPointerArith(n *ast.BinaryExpr, ptrType *types.Type) ir.Location {
	elemSize := types.Sizeof(ptrType.ElemType())
	baseReg := g.toRegister(g.lowerExpr(n.Left, false))
	idxLoc := g.lowerExpr(n.Right, false)
	sign := int64(1)
	if n.Op == ast.OpSub {
		sign = -1
	}

	if idxLoc.IsImmediate() {
		idx := idxLoc.IVal
		if idxLoc.Kind == ir.LocULit {
			idx = int64(idxLoc.UVal)
		}
		disp := int(sign * idx * int64(elemSize))
		dst := g.frame.AllocScratch()
		g.emitText(ir.Instruction{Op: ir.OpLea, Dst: ir.Reg64(dst), Src: ir.RegAt(baseReg, 64).Dereferenced().WithOffset(disp)})
		g.frame.ReleaseScratch(baseReg)
		return ir.Reg64(dst)
	}

	idxReg := g.toRegister(idxLoc)
	if n.Op == ast.OpSub {
		g.emitText(ir.Instruction{Op: ir.OpNeg, Dst: ir.Reg64(idxReg)})
	}
	dst := g.frame.AllocScratch()
	if elemSize == 1 || elemSize == 2 || elemSize == 4 || elemSize == 8 {
		g.emitText(ir.Instruction{Op: ir.OpLea, Dst: ir.Reg64(dst), Src: ir.RegAt(baseReg, 64).Dereferenced().WithIndex(idxReg, elemSize)})
	} else {
		g.emitText(ir.Instruction{Op: ir.OpImul, Dst: ir.Reg64(idxReg), Src: ir.Lit(int64(elemSize))})
		g.emitText(ir.Instruction{Op: ir.OpLea, Dst: ir.Reg64(dst), Src: ir.RegAt(baseReg, 64).Dereferenced().WithIndex(idxReg, 1)})
	}
	g.frame.ReleaseScratch(baseReg)
	g.frame.ReleaseScratch(idxReg)
	return ir.Reg64(dst)
}

// lowerDivide lowers integer `/` via the rax/rdx save-and-restore
// discipline (DESIGN.md Open Question: division lowering): idiv always
// takes its dividend from rax:rdx and leaves the quotient in rax, so any
// value this frame is already holding in either register is pushed
// before and popped back after.
func (g *Generator) lowerDivide(left ir.Reg, right ir.Location, width int, signed bool) ir.Location {
	raxLive := left != ir.RAX && g.frame.InUse(ir.RAX)
	rdxLive := left != ir.RDX && g.frame.InUse(ir.RDX)
	if raxLive {
		g.emitText(ir.Instruction{Op: ir.OpPush, Dst: ir.Reg64(ir.RAX)})
	}
	if rdxLive {
		g.emitText(ir.Instruction{Op: ir.OpPush, Dst: ir.Reg64(ir.RDX)})
	}

	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RAX), Src: ir.Reg64(left)})
	g.emitText(ir.Instruction{Op: ir.OpXor, Dst: ir.Reg64(ir.RDX), Src: ir.Reg64(ir.RDX)})
	divisor := g.toRegister(right)
	g.emitText(ir.Instruction{Op: ir.OpIdiv, Dst: ir.Reg64(divisor)})

	result := g.frame.AllocScratch()
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.RegAt(result, width), Src: ir.RegAt(ir.RAX, width)})

	if rdxLive {
		g.emitText(ir.Instruction{Op: ir.OpPop, Dst: ir.Reg64(ir.RDX)})
	}
	if raxLive {
		g.emitText(ir.Instruction{Op: ir.OpPop, Dst: ir.Reg64(ir.RAX)})
	}
	g.frame.ReleaseScratch(divisor)
	g.frame.ReleaseScratch(left)
	return ir.RegAt(result, width)
}

// lowerLogical lowers &&/||/^^ as plain bitwise ops over normalized 0/1
// operands, a documented non-short-circuit simplification (DESIGN.md
// Open Question: logical operator lowering): every Floral bool-valued
// expression already materializes to exactly 0 or 1.
func (g *Generator) lowerLogical(n *ast.BinaryExpr) ir.Location {
	left := g.toRegister(g.lowerExpr(n.Left, false))
	right := g.lowerExpr(n.Right, false)
	var op ir.Op
	switch n.Op {
	case ast.OpAndAnd:
		op = ir.OpAnd
	case ast.OpOrOr:
		op = ir.OpOr
	case ast.OpXorXor:
		op = ir.OpXor
	}
	g.emitText(ir.Instruction{Op: op, Dst: ir.Reg64(left), Src: right})
	g.release(right)
	return ir.RegAt(left, 8)
}

// jumpKindFor maps a comparison operator to the closed JumpKind set
// {jl, jge, je, jne} (spec.md §3 closed jump-kind set: no jle/jg),
// reporting whether the operands must be evaluated in swapped order.
func jumpKindFor(op ast.OpKind) (swap bool, jk ir.JumpKind) {
	switch op {
	case ast.OpLt:
		return false, ir.JumpLess
	case ast.OpGt:
		return true, ir.JumpLess
	case ast.OpLe:
		return true, ir.JumpGreaterEqual
	case ast.OpGe:
		return false, ir.JumpGreaterEqual
	case ast.OpEq:
		return false, ir.JumpEqual
	case ast.OpNe:
		return false, ir.JumpUnequal
	default:
		ice.Unreachablef("not a comparison operator %v", op)
		return false, ir.JumpAlways
	}
}

// lowerCompareValue lowers a comparison used as a value (not a branch
// condition) to a materialized 0/1 via a cmp-then-branch sequence: there
// is no setcc op in this backend's instruction surface.
func (g *Generator) lowerCompareValue(n *ast.BinaryExpr) ir.Location {
	swap, jk := jumpKindFor(n.Op)
	left, right := n.Left, n.Right
	if swap {
		left, right = right, left
	}
	l := g.toRegister(g.lowerExpr(left, false))
	r := g.lowerExpr(right, false)
	g.emitText(ir.Instruction{Op: ir.OpCmp, Dst: ir.Reg64(l), Src: r})
	g.release(r)
	g.frame.ReleaseScratch(l)

	dst := g.frame.AllocScratch()
	trueLbl := g.frame.Label("cmptrue")
	endLbl := g.frame.Label("cmpend")
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(dst), Src: ir.Lit(0)})
	g.emitText(ir.Instruction{Op: ir.OpJump, JumpKind: jk, Target: trueLbl})
	g.emitText(ir.Instruction{Op: ir.OpJump, JumpKind: ir.JumpAlways, Target: endLbl})
	g.emitText(ir.Instruction{Op: ir.OpLabel, Name: trueLbl})
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(dst), Src: ir.Lit(1)})
	g.emitText(ir.Instruction{Op: ir.OpLabel, Name: endLbl})
	return ir.RegAt(dst, 8)
}

// Cond is the outcome of lowering a boolean expression used as a branch
// condition (spec.md §4.5 "condition emitter"): either a trivially known
// outcome that needs no comparison at all, or a cmp already emitted plus
// the JumpKind that branches to the "true" side.
type Cond struct {
	Jump         ir.JumpKind
	TrivialTrue  bool
	TrivialFalse bool
}

// lowerCondition emits whatever comparison e needs and reports how to
// branch on it. if/while/for lowering jumps on Cond.Jump.Negate() to skip
// past the body when the condition is false.
func (g *Generator) lowerCondition(e ast.Expr) Cond {
	if lit, ok := e.(*ast.LiteralExpr); ok && lit.Kind == ast.LitBool {
		if lit.Text == "true" {
			return Cond{TrivialTrue: true}
		}
		return Cond{TrivialFalse: true}
	}
	if bin, ok := e.(*ast.BinaryExpr); ok {
		switch bin.Op {
		case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpEq, ast.OpNe:
			swap, jk := jumpKindFor(bin.Op)
			left, right := bin.Left, bin.Right
			if swap {
				left, right = right, left
			}
			l := g.toRegister(g.lowerExpr(left, false))
			r := g.lowerExpr(right, false)
			g.emitText(ir.Instruction{Op: ir.OpCmp, Dst: ir.Reg64(l), Src: r})
			g.release(r)
			g.frame.ReleaseScratch(l)
			return Cond{Jump: jk}
		}
	}
	// Any other bool-valued expression (a symbol, call, or &&/||/^^
	// result): compare its materialized 0/1 value against zero.
	r := g.toRegister(g.lowerExpr(e, false))
	g.emitText(ir.Instruction{Op: ir.OpCmp, Dst: ir.Reg64(r), Src: ir.Lit(0)})
	g.frame.ReleaseScratch(r)
	return Cond{Jump: ir.JumpNonZero}
}
