package codegen

import (
	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/types"
)

// staticAllocSize walks a function body and sums the stack space its
// locals and stack-allocated struct constructions require (spec.md §3
// Frame "allocated size", §4.5 step 3). A let/var whose initializer is
// itself a bare (non-heap) construct is counted once, from the declared
// variable's own size, not twice: walkExpr is told to skip the top level
// of such an initializer.
func staticAllocSize(body *ast.Block) int {
	total := 0
	walkStmt(body, &total)
	return total
}

func walkStmt(s ast.Stmt, total *int) {
	switch n := s.(type) {
	case *ast.Block:
		for _, c := range n.Stmts {
			walkStmt(c, total)
		}
	case *ast.LetStmt:
		*total += types.Sizeof(n.Type)
		if n.Init.Expr != nil {
			walkExpr(n.Init.Expr, total, true)
		}
	case *ast.VarStmt:
		*total += types.Sizeof(n.Type)
		if n.Init.Expr != nil {
			walkExpr(n.Init.Expr, total, true)
		}
	case *ast.AssignStmt:
		walkExpr(n.Target, total, false)
		walkExpr(n.Value, total, false)
	case *ast.PointerAssignStmt:
		walkExpr(n.Target, total, false)
		walkExpr(n.Value, total, false)
	case *ast.ReturnStmt:
		if n.Value != nil {
			walkExpr(n.Value, total, false)
		}
	case *ast.ExprStmt:
		walkExpr(n.Value, total, false)
	case *ast.IfStmt:
		walkExpr(n.Cond, total, false)
		walkStmt(n.Then, total)
		if n.Else != nil {
			walkStmt(n.Else, total)
		}
	case *ast.WhileStmt:
		walkExpr(n.Cond, total, false)
		walkStmt(n.Body, total)
	case *ast.ForStmt:
		if n.Init != nil {
			walkStmt(n.Init, total)
		}
		if n.Check != nil {
			walkExpr(n.Check, total, false)
		}
		if n.Modify != nil {
			walkStmt(n.Modify, total)
		}
		walkStmt(n.Body, total)
	case *ast.EmptyStmt:
		// nothing to count
	}
}

// walkExpr adds the size of every stack-allocated (non-heap) construct
// expression reachable from e. skipTop suppresses counting e itself when
// it is a bare construct directly initializing a let/var (whose declared
// size already covers it).
func walkExpr(e ast.Expr, total *int, skipTop bool) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.ConstructExpr:
		if !skipTop && !n.Heap {
			*total += types.Sizeof(e.TypeOf())
		}
		for _, a := range n.Args {
			walkExpr(a, total, false)
		}
	case *ast.BinaryExpr:
		walkExpr(n.Left, total, false)
		walkExpr(n.Right, total, false)
	case *ast.CallExpr:
		if n.Receiver != nil {
			walkExpr(n.Receiver, total, false)
		}
		for _, a := range n.Args {
			walkExpr(a, total, false)
		}
	case *ast.ArrayLitExpr:
		for _, el := range n.Elems {
			walkExpr(el, total, false)
		}
	case *ast.UnsafeCastExpr:
		walkExpr(n.Inner, total, false)
	}
}
