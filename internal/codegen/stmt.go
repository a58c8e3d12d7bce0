package codegen

import (
	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/ice"
	"github.com/euppal/floralc/internal/ir"
	"github.com/euppal/floralc/internal/types"
)

// emitStmt lowers one statement. Every scratch register any one
// statement allocates is freed once it finishes: no value needs to
// survive past a statement boundary in a register, since anything that
// does already lives in a frame slot (spec.md §4.5 "Statement
// lowering").
func (g *Generator) emitStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Block:
		for _, c := range n.Stmts {
			g.emitStmt(c)
		}
	case *ast.LetStmt:
		g.emitLetVar(n.Name, n.Type, n.Init)
	case *ast.VarStmt:
		g.emitLetVar(n.Name, n.Type, n.Init)
	case *ast.AssignStmt:
		g.emitAssign(n)
	case *ast.PointerAssignStmt:
		g.emitPointerAssign(n)
	case *ast.ReturnStmt:
		g.emitReturn(n)
	case *ast.ExprStmt:
		loc := g.lowerExpr(n.Value, false)
		g.release(loc)
	case *ast.IfStmt:
		g.emitIf(n)
	case *ast.WhileStmt:
		g.emitWhile(n)
	case *ast.ForStmt:
		g.emitFor(n)
	case *ast.EmptyStmt:
		// nothing to emit
	default:
		ice.Unreachablef("unhandled statement kind %T", s)
	}
	g.frame.ResetScratch()
}

// emitLetVar lowers `let`/`var` (codegen does not distinguish mutability,
// that is sema's concern): a frame slot sized to the declared type, written
// from the evaluated initializer, zeroed in place for a scalar `zero`
// initializer, or rebound to a freshly reserved bss block for an array
// `zero` initializer (spec.md §4.5 "Local let/var lowering").
func (g *Generator) emitLetVar(name string, t *types.Type, init ast.Initializer) {
	resolved := types.Resolve(t)
	if init.Kind == ast.InitZero || init.Expr == nil {
		if resolved.IsArray() {
			elemSize := types.Sizeof(resolved.ElemType())
			count := resolved.Len
			label := g.freshLabel("zeroarray")
			g.emitBSS(ir.Instruction{Op: ir.OpDataZero, Name: label, ElemSize: elemSize, Count: count})
			g.frame.Vars = append(g.frame.Vars, ir.Variable{Name: name, Loc: ir.Lbl(label).Dereferenced(), Size: types.Sizeof(t)})
			return
		}
		off := g.frame.AllocSlot(name, types.Sizeof(t))
		g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.RBP(off), Src: ir.Lit(0), Comment: "@ var " + name + " = 0"})
		return
	}
	off := g.frame.AllocSlot(name, types.Sizeof(t))
	loc := g.lowerExpr(init.Expr, false)
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.RBP(off), Src: loc})
	g.release(loc)
}

func (g *Generator) emitAssign(n *ast.AssignStmt) {
	target := g.lowerExpr(n.Target, true)
	if !n.IsCompound {
		value := g.lowerExpr(n.Value, false)
		g.emitText(ir.Instruction{Op: ir.OpMov, Dst: target, Src: value})
		g.release(value)
		g.release(target)
		return
	}
	value := g.lowerExpr(n.Value, false)
	var op ir.Op
	switch n.Compound {
	case ast.OpAddAssign:
		op = ir.OpAdd
	case ast.OpSubAssign:
		op = ir.OpSub
	case ast.OpMulAssign:
		op = ir.OpImul
	case ast.OpDivAssign:
		left := g.toRegister(target)
		result := g.lowerDivide(left, value, target.Width, types.Resolve(n.Target.TypeOf()).IsSigned())
		g.emitText(ir.Instruction{Op: ir.OpMov, Dst: target, Src: result})
		g.release(result)
		g.release(target)
		return
	default:
		ice.Unreachablef("unhandled compound-assignment operator %v", n.Compound)
	}
	g.emitText(ir.Instruction{Op: op, Dst: target, Src: value})
	g.release(value)
	g.release(target)
}

// emitPointerAssign lowers `ptrExpr <- value;`, storing through the
// pointer's own value rather than into the pointer variable itself
// (spec.md §4.5 "Pointer assignment").
func (g *Generator) emitPointerAssign(n *ast.PointerAssignStmt) {
	ptr := g.toRegister(g.lowerExpr(n.Target, false))
	elem := types.Resolve(n.Target.TypeOf()).ElemType()
	width := widthFor(types.Sizeof(elem))
	dst := ir.RegAt(ptr, width).Dereferenced()
	value := g.lowerExpr(n.Value, false)
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: dst, Src: value})
	g.release(value)
	g.frame.ReleaseScratch(ptr)
}

// emitReturn lowers `return;`/`return EXPR;`: the result (if any) is
// moved into rax, `return 0` is special-cased to `xor eax,eax` (spec.md
// §4.5 "Return lowering"), and every return shares the same epilogue.
func (g *Generator) emitReturn(n *ast.ReturnStmt) {
	if n.Value != nil {
		if lit, ok := n.Value.(*ast.LiteralExpr); ok && lit.Kind != ast.LitBool && lit.Kind != ast.LitFloat &&
			lit.Kind != ast.LitString && lit.Kind != ast.LitWideString {
			if loc := parseIntLiteral(lit); loc.IsZero() {
				g.emitText(ir.Instruction{Op: ir.OpXor, Dst: ir.RegAt(ir.RAX, 32), Src: ir.RegAt(ir.RAX, 32)})
				g.emitEpilogue()
				return
			}
		}
		loc := g.lowerExpr(n.Value, false)
		if !(loc.Kind == ir.LocRegister && loc.Reg == ir.RAX && !loc.Deref) {
			g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RAX), Src: loc})
		}
		g.release(loc)
	}
	g.emitEpilogue()
}

// emitIf lowers if/else-if/else via lowerCondition's cmp-then-jump pair.
// When the condition is a literal true or false, only the branch that
// would be taken is emitted, with no comparison or jump.
func (g *Generator) emitIf(n *ast.IfStmt) {
	cond := g.lowerCondition(n.Cond)
	if cond.TrivialTrue {
		g.emitStmt(n.Then)
		return
	}
	if cond.TrivialFalse {
		if n.Else != nil {
			g.emitStmt(n.Else)
		}
		return
	}

	elseLbl := g.frame.Label("else")
	endLbl := g.frame.Label("endif")
	g.emitText(ir.Instruction{Op: ir.OpJump, JumpKind: cond.Jump.Negate(), Target: elseLbl})
	g.emitStmt(n.Then)
	if n.Else != nil {
		g.emitText(ir.Instruction{Op: ir.OpJump, JumpKind: ir.JumpAlways, Target: endLbl})
	}
	g.emitText(ir.Instruction{Op: ir.OpLabel, Name: elseLbl})
	if n.Else != nil {
		g.emitStmt(n.Else)
		g.emitText(ir.Instruction{Op: ir.OpLabel, Name: endLbl})
	}
}

// emitWhile lowers `while (cond) body`: test-at-top, jump to the end when
// false, loop back to the test after the body.
func (g *Generator) emitWhile(n *ast.WhileStmt) {
	if trivial, val := trivialBoolLiteral(n.Cond); trivial && !val {
		return
	}
	topLbl := g.frame.Label("whiletop")
	endLbl := g.frame.Label("whileend")
	g.emitText(ir.Instruction{Op: ir.OpLabel, Name: topLbl})
	cond := g.lowerCondition(n.Cond)
	if !cond.TrivialTrue {
		g.emitText(ir.Instruction{Op: ir.OpJump, JumpKind: cond.Jump.Negate(), Target: endLbl})
	}
	g.emitStmt(n.Body)
	g.emitText(ir.Instruction{Op: ir.OpJump, JumpKind: ir.JumpAlways, Target: topLbl})
	g.emitText(ir.Instruction{Op: ir.OpLabel, Name: endLbl})
}

// emitFor desugars `for (init; check; modify) body` to
// `init; while (check) { body; modify; }` (spec.md §4.5 "for lowering").
func (g *Generator) emitFor(n *ast.ForStmt) {
	if n.Init != nil {
		g.emitStmt(n.Init)
	}
	body := &ast.Block{Stmts: append(append([]ast.Stmt{}, n.Body.Stmts...), emptyOrStmt(n.Modify))}
	g.emitWhile(&ast.WhileStmt{Cond: n.Check, Body: body})
}

func emptyOrStmt(s ast.Stmt) ast.Stmt {
	if s == nil {
		return &ast.EmptyStmt{}
	}
	return s
}

// trivialBoolLiteral reports whether e is a literal `true`/`false`,
// without emitting anything: used to skip a while loop entirely at
// compile time rather than lowering its (dead) condition twice.
func trivialBoolLiteral(e ast.Expr) (isTrivial, value bool) {
	lit, ok := e.(*ast.LiteralExpr)
	if !ok || lit.Kind != ast.LitBool {
		return false, false
	}
	return true, lit.Text == "true"
}
