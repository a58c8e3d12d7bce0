package codegen

import (
	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/ir"
)

// lowerCall lowers a function or method call to its (sema-resolved)
// mangled target, spilling whichever caller-saved registers the frame
// currently holds live around the call (spec.md §4.5 "call lowering").
func (g *Generator) lowerCall(n *ast.CallExpr) ir.Location {
	var receiver ir.Location
	if n.Receiver != nil {
		receiver = g.addressOf(g.lowerExpr(n.Receiver, true))
	}
	return g.emitCall(n.Mangled, n.Receiver != nil, receiver, n.Args)
}

// emitCallRaw is emitCall's entry point for struct construction, where
// the "receiver" is a freshly allocated slot's address rather than an
// lvalue needing its address taken.
func (g *Generator) emitCallRaw(mangled string, receiverAddr ir.Location, args []ast.Expr) {
	g.emitCall(mangled, true, receiverAddr, args)
}

// emitCall places every argument into its System-V slot and calls
// mangled, returning the result in rax, or, when live caller-saved
// registers were pushed around the call, in a fresh scratch register the
// result is copied into before they are popped back (spec.md §4.5 calling
// convention).
func (g *Generator) emitCall(mangled string, hasReceiver bool, receiver ir.Location, args []ast.Expr) ir.Location {
	live := g.liveCallerSaved()
	for _, r := range live {
		g.emitText(ir.Instruction{Op: ir.OpPush, Dst: ir.Reg64(r)})
	}

	// Every argument is evaluated left-to-right before any of them is
	// placed, so lowering a later argument can never clobber an earlier
	// one's still-pending register.
	locs := make([]ir.Location, 0, len(args)+1)
	if hasReceiver {
		locs = append(locs, receiver)
	}
	for _, a := range args {
		locs = append(locs, g.lowerExpr(a, false))
	}

	stackArgs := len(locs) - len(ir.ArgRegs)
	padded := stackArgs > 0 && stackArgs%2 != 0
	if padded {
		g.emitText(ir.Instruction{Op: ir.OpSub, Dst: ir.Reg64(ir.RSP), Src: ir.Lit(8)})
	}
	// Stack-passed arguments push in reverse (rightmost first) so the
	// first stack argument ends up closest to the return address, at
	// [rbp+16] from the callee's side (spec.md §4.5 step 6).
	for i := len(locs) - 1; i >= len(ir.ArgRegs); i-- {
		g.emitText(ir.Instruction{Op: ir.OpPush, Dst: locs[i]})
	}
	for i := 0; i < len(locs) && i < len(ir.ArgRegs); i++ {
		g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.ArgRegs[i]), Src: locs[i]})
	}
	for _, l := range locs {
		g.release(l)
	}

	g.emitText(ir.Instruction{Op: ir.OpCall, Target: LabelPrefix + mangled})

	if stackArgs > 0 {
		cleanup := int64(stackArgs * 8)
		if padded {
			cleanup += 8
		}
		g.emitText(ir.Instruction{Op: ir.OpAdd, Dst: ir.Reg64(ir.RSP), Src: ir.Lit(cleanup)})
	}

	result := ir.Reg64(ir.RAX)
	if len(live) > 0 {
		resultSlot := g.frame.AllocScratch()
		g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(resultSlot), Src: ir.Reg64(ir.RAX)})
		for i := len(live) - 1; i >= 0; i-- {
			g.emitText(ir.Instruction{Op: ir.OpPop, Dst: ir.Reg64(live[i])})
		}
		result = ir.Reg64(resultSlot)
	}
	return result
}

// emitTailCall lowers a tail call to any callee: arguments are placed directly
// into the argument registers, the current frame's epilogue runs, and a
// jmp stands in for call+ret (spec.md §4.5 step 7 tail call
// optimization). tailCallIndex never selects this path when the stack
// guard is enabled, so there is no canary to check before the jmp.
func (g *Generator) emitTailCall(n *ast.CallExpr) {
	locs := make([]ir.Location, 0, len(n.Args)+1)
	if n.Receiver != nil {
		locs = append(locs, g.addressOf(g.lowerExpr(n.Receiver, true)))
	}
	for _, a := range n.Args {
		locs = append(locs, g.lowerExpr(a, false))
	}
	for i := 0; i < len(locs) && i < len(ir.ArgRegs); i++ {
		g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.ArgRegs[i]), Src: locs[i]})
	}
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RSP), Src: ir.Reg64(ir.RBP)})
	g.emitText(ir.Instruction{Op: ir.OpPop, Dst: ir.Reg64(ir.RBP)})
	g.emitText(ir.Instruction{Op: ir.OpJump, JumpKind: ir.JumpAlways, Target: LabelPrefix + n.Mangled})
}
