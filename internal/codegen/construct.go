package codegen

import (
	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/ir"
	"github.com/euppal/floralc/internal/sema"
	"github.com/euppal/floralc/internal/types"
)

// lowerConstruct builds a struct value: a stack slot (or heap
// allocation) sized to the struct, then a call to its mangled
// constructor with the slot's address as the implicit receiver (spec.md
// §4.4, SPEC_FULL's supplemented struct-member feature).
func (g *Generator) lowerConstruct(n *ast.ConstructExpr) ir.Location {
	size := 8
	if si := g.reg.LookupStruct(n.StructName); si != nil {
		size = si.Size()
	}

	var addr ir.Location
	if n.Heap {
		addr = g.emitHeapAlloc(size)
	} else {
		off := g.frame.AllocSlot(g.freshLabel("tmp"), size)
		addr = g.addressOf(ir.RBP(off))
	}

	argTypes := make([]*types.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = a.TypeOf()
	}
	mangled := sema.MangleMember(n.StructName, "new", argTypes, true)
	g.emitCallRaw(mangled, addr, n.Args)
	return addr
}

// emitHeapAlloc requests size bytes from the external allocator (spec.md
// §4.4 "a heap-allocated construction calls the runtime allocator");
// floralc links against a C malloc rather than implementing its own
// arena, the one part of the runtime surface the generated assembly
// itself never defines.
func (g *Generator) emitHeapAlloc(size int) ir.Location {
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RDI), Src: ir.Lit(int64(size))})
	g.emitText(ir.Instruction{Op: ir.OpCall, Target: "malloc"})
	r := g.frame.AllocScratch()
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(r), Src: ir.Reg64(ir.RAX)})
	return ir.Reg64(r)
}

// lowerArrayLit stores each element into a fresh, contiguous frame slot
// and returns its address (spec.md §4.5 "Array literal").
func (g *Generator) lowerArrayLit(n *ast.ArrayLitExpr) ir.Location {
	arrType := types.Resolve(n.TypeOf())
	elemSize := types.Sizeof(arrType.ElemType())
	width := widthFor(elemSize)
	off := g.frame.AllocSlot(g.freshLabel("arr"), elemSize*len(n.Elems))

	for i, el := range n.Elems {
		loc := g.lowerExpr(el, false)
		dst := ir.RBP(off + i*elemSize).WithWidth(width)
		g.emitText(ir.Instruction{Op: ir.OpMov, Dst: dst, Src: loc})
		g.release(loc)
	}
	return g.addressOf(ir.RBP(off))
}
