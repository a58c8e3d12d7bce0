package codegen

import (
	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/ir"
)

// emitEntryShim emits the process entry point `_main`, which the system
// C runtime start routine calls directly: it 16-byte-aligns the stack,
// calls the runtime initializer, invokes the Floral-level main, and
// carries its result into the exit syscall's status code (spec.md §4.5
// "Entry point").
func (g *Generator) emitEntryShim(main *ast.FuncDecl) {
	g.emitText(ir.Instruction{Op: ir.OpLabel, Name: "_main", Global: true, Spaced: true})
	g.emitText(ir.Instruction{Op: ir.OpPush, Dst: ir.Reg64(ir.RBP)})
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RBP), Src: ir.Reg64(ir.RSP)})
	g.emitText(ir.Instruction{Op: ir.OpAnd, Dst: ir.Reg64(ir.RSP), Src: ir.Lit(-16)})
	g.emitText(ir.Instruction{Op: ir.OpCall, Target: "_init_floral"})
	g.emitText(ir.Instruction{Op: ir.OpCall, Target: LabelPrefix + main.Mangled})
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RDI), Src: ir.Reg64(ir.RAX)})
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RAX), Src: ir.Lit(0x2000001)})
	g.emitText(ir.Instruction{Op: ir.OpSyscall})
}
