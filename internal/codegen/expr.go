package codegen

import (
	"strconv"
	"strings"

	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/ice"
	"github.com/euppal/floralc/internal/ir"
	"github.com/euppal/floralc/internal/types"
)

// toRegister ensures loc is a plain register operand, loading it if it is
// memory, a literal, or a label reference.
func (g *Generator) toRegister(loc ir.Location) ir.Reg {
	if loc.Kind == ir.LocRegister && !loc.Deref {
		return loc.Reg
	}
	width := loc.Width
	if width == 0 {
		width = 64
	}
	r := g.frame.AllocScratch()
	g.emitText(ir.Instruction{Op: ir.OpMov, Dst: ir.RegAt(r, width), Src: loc})
	return r
}

// addressOf computes loc's own address into a fresh register via lea -
// the inverse of lowering an lvalue to its storage Location (spec.md §4.5
// unary "&" lowering).
func (g *Generator) addressOf(loc ir.Location) ir.Location {
	switch loc.Kind {
	case ir.LocRBP, ir.LocLabel:
		r := g.frame.AllocScratch()
		g.emitText(ir.Instruction{Op: ir.OpLea, Dst: ir.Reg64(r), Src: loc})
		return ir.Reg64(r)
	case ir.LocRegister:
		if loc.Deref {
			r := g.frame.AllocScratch()
			g.emitText(ir.Instruction{Op: ir.OpLea, Dst: ir.Reg64(r), Src: loc})
			return ir.Reg64(r)
		}
		return loc
	default:
		ice.Unreachablef("cannot take the address of location kind %v", loc.Kind)
		return ir.Location{}
	}
}

// release returns loc's register to the scratch pool, a no-op for
// non-register locations.
func (g *Generator) release(loc ir.Location) {
	if loc.Kind == ir.LocRegister {
		g.frame.ReleaseScratch(loc.Reg)
	}
}

func globalLabel(name string) string { return LabelPrefix + "g_" + name }

// lowerExpr is the expression-lowering traversal (spec.md §4.5 "Expression
// lowering"): every case is a complete match arm returning its own
// ir.Location: no switch fallthrough, per DESIGN.md Open Question 2.
// wantAddr requests the lvalue's effective address rather than its value,
// used by assignment and unary & lowering.
func (g *Generator) lowerExpr(e ast.Expr, wantAddr bool) ir.Location {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return g.lowerLiteral(n)
	case *ast.SymbolExpr:
		return g.lowerSymbol(n)
	case *ast.BinaryExpr:
		return g.lowerBinary(n, wantAddr)
	case *ast.CallExpr:
		return g.lowerCall(n)
	case *ast.ConstructExpr:
		return g.lowerConstruct(n)
	case *ast.ArrayLitExpr:
		return g.lowerArrayLit(n)
	case *ast.SizeofExpr:
		return ir.ULit(uint64(g.sizeofTypeExpr(n.Operand)))
	case *ast.UnsafeCastExpr:
		return g.lowerExpr(n.Inner, wantAddr)
	default:
		ice.Unreachablef("unhandled expression kind %T", e)
		return ir.Location{}
	}
}

func (g *Generator) sizeofTypeExpr(te ast.TypeExpr) int {
	t := g.resolveTypeExprForSizeof(te)
	return types.Sizeof(t)
}

// resolveTypeExprForSizeof mirrors sema's type-expression resolution
// narrowly enough for sizeof(T); sema has already validated T during
// analysis, so this only needs to succeed, not diagnose.
func (g *Generator) resolveTypeExprForSizeof(te ast.TypeExpr) *types.Type {
	switch te.Kind {
	case ast.TEPrimitive:
		return primitiveSizeofType(te.PrimKind)
	case ast.TEPointer:
		return types.PointerTo(g.resolveTypeExprForSizeof(*te.Elem), false)
	case ast.TEArray:
		if te.Len < 0 {
			return types.PointerTo(g.resolveTypeExprForSizeof(*te.Elem), false)
		}
		return types.ArrayOf(g.resolveTypeExprForSizeof(*te.Elem), te.Len, false)
	case ast.TEStructRef, ast.TEName:
		if si := g.reg.LookupStruct(te.Name); si != nil {
			return types.StructType(si, false)
		}
		if ai := g.reg.LookupAlias(te.Name); ai != nil {
			return ai.Aliased
		}
		return types.IncompleteT()
	default:
		return types.IncompleteT()
	}
}

func primitiveSizeofType(pk ast.PrimitiveKind) *types.Type {
	switch pk {
	case ast.PKInt:
		return types.Int(false)
	case ast.PKUInt:
		return types.UInt(false)
	case ast.PKChar:
		return types.Char(false)
	case ast.PKUChar:
		return types.UChar(false)
	case ast.PKShort:
		return types.Short(false)
	case ast.PKUShort:
		return types.UShort(false)
	case ast.PKInt32:
		return types.Int32T(false)
	case ast.PKUInt32:
		return types.UInt32T(false)
	case ast.PKWideChar, ast.PKWideUChar:
		return types.WideChar(false)
	case ast.PKBool:
		return types.BoolT(false)
	default:
		return types.VoidT()
	}
}

// lowerLiteral deposits string/wide-string bodies into rodata and returns
// the other literal kinds as plain immediate Locations (spec.md §4.5
// "Literal string"/"Literal wide string"/"Literal numbers").
func (g *Generator) lowerLiteral(n *ast.LiteralExpr) ir.Location {
	switch n.Kind {
	case ast.LitBool:
		if n.Text == "true" {
			return ir.ULit(1)
		}
		return ir.ULit(0)
	case ast.LitNull:
		return ir.ULit(0)
	case ast.LitString:
		label := g.internString(n.Text)
		r := g.frame.AllocScratch()
		g.emitText(ir.Instruction{Op: ir.OpLea, Dst: ir.Reg64(r), Src: ir.Lbl(label).Dereferenced()})
		return ir.Reg64(r)
	case ast.LitWideString:
		label := g.internWideString(n.Wide)
		r := g.frame.AllocScratch()
		g.emitText(ir.Instruction{Op: ir.OpLea, Dst: ir.Reg64(r), Src: ir.Lbl(label).Dereferenced()})
		return ir.Reg64(r)
	case ast.LitFloat:
		v, _ := strconv.ParseFloat(n.Text, 64)
		return ir.Lit(int64(v))
	default:
		return parseIntLiteral(n)
	}
}

func parseIntLiteral(n *ast.LiteralExpr) ir.Location {
	text := strings.ReplaceAll(n.Text, "_", "")
	base := 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		base = 16
		text = text[2:]
	}
	switch n.Kind {
	case ast.LitUInt, ast.LitUByte, ast.LitUShort, ast.LitUInt32, ast.LitWideUChar:
		v, _ := strconv.ParseUint(text, base, 64)
		return ir.ULit(v)
	default:
		v, _ := strconv.ParseInt(text, base, 64)
		return ir.Lit(v)
	}
}

// internString records a fresh rodata label for an ASCII string literal.
func (g *Generator) internString(text string) string {
	label := g.freshLabel("str")
	g.emitRodata(ir.Instruction{Op: ir.OpDataStr, Name: label, StrBody: strconv.Quote(text)})
	return label
}

// internWideString records a fresh rodata label holding one dd per code
// point plus a trailing zero (spec.md §4.5 "Literal wide string").
func (g *Generator) internWideString(cps []rune) string {
	label := g.freshLabel("wstr")
	values := make([]int64, 0, len(cps)+1)
	for _, c := range cps {
		values = append(values, int64(c))
	}
	values = append(values, 0)
	g.emitRodata(ir.Instruction{Op: ir.OpDataInit, Name: label, ElemSize: 4, Values: values})
	return label
}

func (g *Generator) lowerSymbol(n *ast.SymbolExpr) ir.Location {
	if n.IsGlobal {
		return ir.Lbl(globalLabel(n.Name)).Dereferenced()
	}
	v, ok := g.frame.Lookup(n.Name)
	if !ok {
		ice.Unreachablef("symbol %q not found in frame %q", n.Name, g.frame.ID)
	}
	return v.Loc
}
