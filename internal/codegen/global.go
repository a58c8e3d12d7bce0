package codegen

import (
	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/ice"
	"github.com/euppal/floralc/internal/ir"
	"github.com/euppal/floralc/internal/types"
)

// emitGlobal lowers one top-level `global` declaration: a bss
// reservation for zero-init, or a data-section initializer for
// direct/copy-init with a statically evaluable value (spec.md §4.2
// Globals, §6 data directives).
func (g *Generator) emitGlobal(n *ast.GlobalDecl) {
	label := globalLabel(n.Name)
	resolved := types.Resolve(n.Type)
	elemSize := types.Sizeof(n.Type)
	count := 1
	if resolved.IsArray() {
		elemSize = types.Sizeof(resolved.ElemType())
		count = resolved.Len
	}
	if elemSize <= 0 {
		elemSize = 1
	}

	if n.Init.Kind == ast.InitZero || n.Init.Expr == nil {
		g.emitBSS(ir.Instruction{Op: ir.OpDataZero, Name: label, ElemSize: elemSize, Count: count})
		return
	}
	values := g.evalConstExpr(n.Init.Expr)
	g.emitData(ir.Instruction{Op: ir.OpDataInit, Name: label, ElemSize: elemSize, Signed: resolved.IsSigned(), Values: values})
}

// evalConstExpr statically evaluates a global initializer: integer/bool
// literals, arithmetic over them, unsafe casts, and array literals
// (SPEC_FULL's supplemented static-global-initializer feature: sema has
// already confirmed e is static-evaluable before codegen ever runs).
func (g *Generator) evalConstExpr(e ast.Expr) []int64 {
	if arr, ok := e.(*ast.ArrayLitExpr); ok {
		out := make([]int64, 0, len(arr.Elems))
		for _, el := range arr.Elems {
			out = append(out, g.evalConstExpr(el)...)
		}
		return out
	}
	return []int64{evalConstScalar(e)}
}

func evalConstScalar(e ast.Expr) int64 {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		switch n.Kind {
		case ast.LitBool:
			if n.Text == "true" {
				return 1
			}
			return 0
		case ast.LitNull:
			return 0
		default:
			loc := parseIntLiteral(n)
			if loc.Kind == ir.LocULit {
				return int64(loc.UVal)
			}
			return loc.IVal
		}
	case *ast.UnsafeCastExpr:
		return evalConstScalar(n.Inner)
	case *ast.BinaryExpr:
		switch n.Op {
		case ast.OpAdd:
			return evalConstScalar(n.Left) + evalConstScalar(n.Right)
		case ast.OpSub:
			return evalConstScalar(n.Left) - evalConstScalar(n.Right)
		case ast.OpMul:
			return evalConstScalar(n.Left) * evalConstScalar(n.Right)
		case ast.OpBitAnd:
			return evalConstScalar(n.Left) & evalConstScalar(n.Right)
		case ast.OpBitOr:
			return evalConstScalar(n.Left) | evalConstScalar(n.Right)
		case ast.OpBitXor:
			return evalConstScalar(n.Left) ^ evalConstScalar(n.Right)
		case ast.OpNeg:
			return -evalConstScalar(n.Right)
		case ast.OpPos:
			return evalConstScalar(n.Right)
		case ast.OpInvert:
			return ^evalConstScalar(n.Right)
		default:
			ice.Unreachablef("non-constant operator %v in global initializer", n.Op)
			return 0
		}
	case *ast.SymbolExpr:
		ice.Unreachablef("global initializer referencing symbol %q requires a relocation, not a scalar value", n.Name)
		return 0
	default:
		ice.Unreachablef("non-constant expression %T in global initializer", e)
		return 0
	}
}
