// Package codegen lowers an analyzed ast.File into the structured
// instruction IR of internal/ir (spec.md §4.5): System-V-AMD64 integer
// calling convention, per-frame scratch-register allocation, call-frame
// management, and the four standard output sections.
package codegen

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/diag"
	"github.com/euppal/floralc/internal/ice"
	"github.com/euppal/floralc/internal/ir"
	"github.com/euppal/floralc/internal/types"
)

// LabelPrefix is the program-wide prefix every emitted label carries, to
// avoid clashing with system linkage symbols (spec.md §6).
const LabelPrefix = "_floralid_"

// Options configures one Generate call (spec.md §6 command-line surface,
// narrowed to what codegen itself consumes).
type Options struct {
	OptLevel   int
	StackGuard bool
}

// Generator walks a File's declarations, emitting into four ir.Section
// values. Exactly one Frame is active at a time (spec.md §5: the pipeline
// is single-threaded, no two function bodies lower concurrently).
type Generator struct {
	reg  *types.Registry
	opts Options
	bag  *diag.Bag

	sections []ir.Section // indexed by ir.SectionKind
	frame    *ir.Frame

	anonCounter int
}

// New returns a Generator ready to lower a File analyzed against reg.
func New(reg *types.Registry, opts Options) *Generator {
	return &Generator{reg: reg, opts: opts, bag: diag.NewBag(), sections: ir.NewSections()}
}

// runtimeExterns is every symbol codegen may call that the assembly does
// not itself define; peephole's extern-pruning pass (spec.md §4.6) drops
// whichever of these no OpCall ends up targeting.
var runtimeExterns = []string{"malloc", LabelPrefix + "stack_guard_fail", "_init_floral"}

// Generate lowers file and returns the four sections plus any diagnostics
// (codegen itself only raises internal-compiler-error panics recovered at
// the cmd/floralc boundary; a File that reached this stage has already
// passed sema, so codegen diagnostics here are a defensive backstop).
func (g *Generator) Generate(file *ast.File) ([]ir.Section, *diag.Bag) {
	for _, name := range runtimeExterns {
		g.emitText(ir.Instruction{Op: ir.OpExtern, Name: name})
	}
	for _, d := range file.Decls {
		g.emitDecl(d)
	}
	if file.Main != nil {
		g.emitEntryShim(file.Main)
	}
	return g.sections, g.bag
}

func (g *Generator) section(k ir.SectionKind) *ir.Section { return &g.sections[k] }

func (g *Generator) emitText(i ir.Instruction)   { g.section(ir.Text).Add(i) }
func (g *Generator) emitBSS(i ir.Instruction)     { g.section(ir.BSS).Add(i) }
func (g *Generator) emitRodata(i ir.Instruction)  { g.section(ir.Rodata).Add(i) }
func (g *Generator) emitData(i ir.Instruction)    { g.section(ir.Data).Add(i) }

func (g *Generator) freshLabel(purpose string) string {
	g.anonCounter++
	return fmt.Sprintf("%s%s_%d", LabelPrefix, purpose, g.anonCounter)
}

func (g *Generator) emitDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.NamespaceDecl:
		for _, c := range n.Decls {
			g.emitDecl(c)
		}
	case *ast.FuncDecl:
		if !n.Forward && n.Body != nil {
			g.emitFunc(n)
		}
	case *ast.GlobalDecl:
		if !n.Forward {
			g.emitGlobal(n)
		}
	case *ast.StructDecl:
		for _, ctor := range n.Ctors {
			g.emitFunc(ctor)
		}
		for _, m := range n.Funcs {
			g.emitFunc(m)
		}
	case *ast.TypeAliasDecl:
		// Purely a static-analysis concern; nothing to lower.
	default:
		ice.Unreachablef("unhandled declaration kind %T", d)
	}
}

func widthFor(size int) int {
	switch {
	case size <= 1:
		return 8
	case size <= 2:
		return 16
	case size <= 4:
		return 32
	default:
		return 64
	}
}

// liveCallerSaved snapshots which caller-saved registers are
// presently held live, for the call lowerer's save/restore step (spec.md
// §4.5 call lowering step 1), via lo.Filter over ir.CallerSaved per the
// DOMAIN STACK samber/lo wiring.
func (g *Generator) liveCallerSaved() []ir.Reg {
	return lo.Filter(ir.CallerSaved[:], func(r ir.Reg, _ int) bool { return g.frame.InUse(r) })
}
