package codegen

import (
	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/ir"
)

// emitFunc lowers one function (or struct constructor/method) definition:
// label, prologue, parameter spill, body, and (via each ReturnStmt) its own
// epilogue (spec.md §4.5 "Function emission").
func (g *Generator) emitFunc(n *ast.FuncDecl) {
	label := LabelPrefix + n.Mangled
	g.emitText(ir.Instruction{Op: ir.OpLabel, Name: label, Global: !n.Static, Spaced: true})

	frame := ir.NewFrame(n.Mangled, g.opts.StackGuard)
	g.frame = frame

	g.emitText(ir.Instruction{Op: ir.OpPush, Dst: ir.Reg64(ir.RBP)})
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RBP), Src: ir.Reg64(ir.RSP)})

	numParams := len(n.Params)
	if n.ReceiverOf != "" {
		numParams++
	}
	allocSize := staticAllocSize(n.Body)
	size := frame.FinalizeSize(allocSize, numParams)
	leaf := !containsCall(n.Body)
	if size != 0 && (g.opts.StackGuard || !leaf || size > 128) {
		g.emitText(ir.Instruction{Op: ir.OpSub, Dst: ir.Reg64(ir.RSP), Src: ir.Lit(int64(size))})
	}
	if g.opts.StackGuard {
		g.emitStackGuardPrologue()
	}

	argIdx := 0
	if n.ReceiverOf != "" {
		// Struct methods/constructors implicitly prepend the receiver's
		// address as the true first argument (SPEC_FULL supplemented
		// struct-member feature); it consumes rdi before any written
		// parameter does.
		off := frame.AllocSlot("self", 8)
		g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.RBP(off), Src: ir.Reg64(ir.ArgRegs[0])})
		argIdx = 1
	}
	for _, p := range n.Params {
		if argIdx < len(ir.ArgRegs) {
			off := frame.AllocSlot(p.Name, 8)
			g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.RBP(off), Src: ir.Reg64(ir.ArgRegs[argIdx])})
		} else {
			// Parameters 7+ remain on the caller's stack, above the return
			// address and saved rbp (spec.md §4.5 step 6); they consume no
			// frame space of their own.
			stackOff := 16 + 8*(argIdx-len(ir.ArgRegs))
			frame.Vars = append(frame.Vars, ir.Variable{Name: p.Name, Loc: ir.RBP(stackOff), Size: 8})
		}
		argIdx++
	}

	stmts := n.Body.Stmts
	tailIdx := tailCallIndex(n, stmts, g.opts.StackGuard)
	ranTailCall := false
	for i, s := range stmts {
		if i == tailIdx {
			call := s.(*ast.ExprStmt).Value.(*ast.CallExpr)
			g.emitTailCall(call)
			ranTailCall = true
			break
		}
		g.emitStmt(s)
	}
	// A function whose body falls off the end without an explicit `return`
	// (always true for an empty Void body, and possible whenever the last
	// statement isn't itself a return) still needs a real epilogue + ret -
	// emitReturn only emits one when a ReturnStmt is actually lowered.
	if !ranTailCall && !endsInReturn(stmts) {
		g.emitEpilogue()
	}
}

func endsInReturn(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(*ast.ReturnStmt)
	return ok
}

// tailCallIndex returns the index of a call-as-statement eligible for tail
// call optimization: a void function whose penultimate statement is a
// call-as-statement and whose last statement is a bare `return;`, with the
// stack guard disabled (spec.md §4.5 step 7): or -1.
func tailCallIndex(n *ast.FuncDecl, stmts []ast.Stmt, stackGuard bool) int {
	if stackGuard || n.ReturnType == nil || !n.ReturnType.IsVoid() || len(stmts) < 2 {
		return -1
	}
	rs, ok := stmts[len(stmts)-1].(*ast.ReturnStmt)
	if !ok || rs.Value != nil {
		return -1
	}
	es, ok := stmts[len(stmts)-2].(*ast.ExprStmt)
	if !ok {
		return -1
	}
	if _, ok := es.Value.(*ast.CallExpr); !ok {
		return -1
	}
	return len(stmts) - 2
}

// containsCall reports whether body contains any call expression,
// distinguishing a leaf function from one whose frame must always be
// built (spec.md §4.5 step 4's "unless leaf function" carve-out).
func containsCall(body *ast.Block) bool {
	found := false
	var walkS func(ast.Stmt)
	var walkE func(ast.Expr)
	walkE = func(e ast.Expr) {
		if e == nil || found {
			return
		}
		switch n := e.(type) {
		case *ast.CallExpr:
			found = true
		case *ast.ConstructExpr:
			for _, a := range n.Args {
				walkE(a)
			}
		case *ast.BinaryExpr:
			walkE(n.Left)
			walkE(n.Right)
		case *ast.ArrayLitExpr:
			for _, el := range n.Elems {
				walkE(el)
			}
		case *ast.UnsafeCastExpr:
			walkE(n.Inner)
		}
	}
	walkS = func(s ast.Stmt) {
		if found {
			return
		}
		switch n := s.(type) {
		case *ast.Block:
			for _, c := range n.Stmts {
				walkS(c)
			}
		case *ast.LetStmt:
			walkE(n.Init.Expr)
		case *ast.VarStmt:
			walkE(n.Init.Expr)
		case *ast.AssignStmt:
			walkE(n.Target)
			walkE(n.Value)
		case *ast.PointerAssignStmt:
			walkE(n.Target)
			walkE(n.Value)
		case *ast.ReturnStmt:
			walkE(n.Value)
		case *ast.ExprStmt:
			walkE(n.Value)
		case *ast.IfStmt:
			walkE(n.Cond)
			walkS(n.Then)
			if n.Else != nil {
				walkS(n.Else)
			}
		case *ast.WhileStmt:
			walkE(n.Cond)
			walkS(n.Body)
		case *ast.ForStmt:
			if n.Init != nil {
				walkS(n.Init)
			}
			walkE(n.Check)
			if n.Modify != nil {
				walkS(n.Modify)
			}
			walkS(n.Body)
		}
	}
	walkS(body)
	return found
}

// emitStackGuardPrologue stores old_rbp XOR return_address at [rbp-8] and
// zeroes a canary companion slot at [rbp-16] (spec.md §4.5 "Stack guard").
func (g *Generator) emitStackGuardPrologue() {
	r1 := g.frame.AllocScratch()
	r2 := g.frame.AllocScratch()
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(r1), Src: ir.RBP(0), Comment: "@guard"})
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(r2), Src: ir.RBP(8), Comment: "@guard"})
	g.emitText(ir.Instruction{Op: ir.OpXor, Dst: ir.Reg64(r1), Src: ir.Reg64(r2), Comment: "@guard"})
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.RBP(-8), Src: ir.Reg64(r1), Comment: "@guard"})
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.RBP(-16), Src: ir.Lit(0), Comment: "@guard"})
	g.frame.ReleaseScratch(r1)
	g.frame.ReleaseScratch(r2)
}

// emitStackGuardCheck recomputes the guard at return time and calls the
// (externally linked) failure handler on mismatch.
func (g *Generator) emitStackGuardCheck() {
	r1 := g.frame.AllocScratch()
	r2 := g.frame.AllocScratch()
	ok := g.frame.Label("guardok")
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(r1), Src: ir.RBP(0), Comment: "@guard"})
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(r2), Src: ir.RBP(8), Comment: "@guard"})
	g.emitText(ir.Instruction{Op: ir.OpXor, Dst: ir.Reg64(r1), Src: ir.Reg64(r2), Comment: "@guard"})
	g.emitText(ir.Instruction{Op: ir.OpCmp, Dst: ir.Reg64(r1), Src: ir.RBP(-8), Comment: "@guard"})
	g.emitText(ir.Instruction{Op: ir.OpJump, JumpKind: ir.JumpEqual, Target: ok, Comment: "@guard"})
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RDI), Src: ir.RBP(8), Comment: "@guard"})
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RSI), Src: ir.Reg64(ir.RBP), Comment: "@guard"})
	g.emitText(ir.Instruction{Op: ir.OpCall, Target: LabelPrefix + "stack_guard_fail", Comment: "@guard"})
	g.emitText(ir.Instruction{Op: ir.OpLabel, Name: ok})
	g.frame.ReleaseScratch(r1)
	g.frame.ReleaseScratch(r2)
}

// emitEpilogue emits the shared `mov rsp, rbp; pop rbp; ret` tail every
// ReturnStmt lowers to (spec.md §4.5 "Return lowering").
func (g *Generator) emitEpilogue() {
	if g.opts.StackGuard {
		g.emitStackGuardCheck()
	}
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RSP), Src: ir.Reg64(ir.RBP)})
	g.emitText(ir.Instruction{Op: ir.OpPop, Dst: ir.Reg64(ir.RBP)})
	g.emitText(ir.Instruction{Op: ir.OpRet})
}
