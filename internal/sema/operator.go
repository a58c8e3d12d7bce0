package sema

import (
	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/types"
)

// binaryResult implements the closed operator-overload table of spec.md
// §4.4, keyed on token kind and (left, right) type. Returns nil, false
// when no overload applies.
func binaryResult(op ast.OpKind, l, r *types.Type) (*types.Type, bool) {
	switch op {
	case ast.OpAdd:
		if l.IsPointer() && r.IsNumber() {
			return l, true
		}
		if l.IsNumber() && r.IsNumber() {
			return types.MostConst(l, r), true
		}
	case ast.OpSub:
		if l.IsPointer() && r.IsNumber() {
			return l, true
		}
		if l.IsNumber() && r.IsNumber() {
			return types.MostConst(l, r), true
		}
	case ast.OpMul, ast.OpDiv:
		if l.IsNumber() && r.IsNumber() {
			return types.MostConst(l, r), true
		}
	case ast.OpAddAssign, ast.OpSubAssign, ast.OpMulAssign, ast.OpDivAssign:
		if (l.IsPointer() || l.IsNumber()) && r.IsNumber() {
			return l, true
		}
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpEq, ast.OpNe:
		if types.Equal(l, r) {
			return types.BoolT(false), true
		}
		if l.IsNumber() && r.IsNumber() {
			return types.BoolT(false), true
		}
	case ast.OpAndAnd, ast.OpOrOr, ast.OpXorXor:
		if l.IsBool() && r.IsBool() {
			return types.BoolT(false), true
		}
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor:
		if l.IsNumber() && r.IsNumber() {
			return types.MostConst(l, r), true
		}
	case ast.OpIndex:
		if l.Indexable() && r.IsNumber() {
			return l.ElemType(), true
		}
	}
	return nil, false
}

// unaryResult covers &, *, unary -/+, !, ~, and the increment/decrement
// family. ++/-- are not in spec.md's closed table (an addition this
// analyzer makes): operand must be numeric or
// pointer, and the result keeps the operand's type.
func unaryResult(op ast.OpKind, operand *types.Type) (*types.Type, bool) {
	switch op {
	case ast.OpAddrOf:
		return types.PointerTo(operand, false), true
	case ast.OpDeref:
		if operand.IsPointer() {
			return operand.ElemType(), true
		}
	case ast.OpNeg:
		if operand.IsNumber() && operand.IsSigned() {
			return operand, true
		}
	case ast.OpPos:
		if operand.IsNumber() {
			return operand, true
		}
	case ast.OpBoolNot:
		if operand.IsBool() {
			return operand, true
		}
	case ast.OpInvert:
		if operand.IsNumber() {
			return operand, true
		}
	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		if operand.IsNumber() || operand.IsPointer() {
			return operand, true
		}
	}
	return nil, false
}
