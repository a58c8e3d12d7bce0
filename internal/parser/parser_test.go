package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/diag"
	"github.com/euppal/floralc/internal/lexer"
)

func parse(t *testing.T, src string) (*ast.File, *diag.Bag) {
	t.Helper()
	toks := lexer.New(src, nil).Tokenize()
	return Parse(toks)
}

func TestParseSimpleFuncDecl(t *testing.T) {
	file, bag := parse(t, "func main(): Int { return 0; }")
	require.False(t, bag.HasErrors())
	require.Len(t, file.Decls, 1)
	fn, ok := file.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "main", fn.Name)
	require.NotNil(t, file.Main)
	require.Len(t, fn.Body.Stmts, 1)
	_, ok = fn.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
}

func TestParseFuncParamsAndReturnType(t *testing.T) {
	file, bag := parse(t, "func add(a: Int, b: Int): Int { return a + b; }")
	require.False(t, bag.HasErrors())
	fn := file.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Params, 2)
	require.Equal(t, "a", fn.Params[0].Name)
	require.Equal(t, "b", fn.Params[1].Name)
}

func TestParseForwardDeclaration(t *testing.T) {
	file, bag := parse(t, "func f(x: Int): Int;")
	require.False(t, bag.HasErrors())
	fn := file.Decls[0].(*ast.FuncDecl)
	require.True(t, fn.Forward)
	require.Nil(t, fn.Body)
}

func TestParsePointerTypeExpr(t *testing.T) {
	file, bag := parse(t, "func f(p: &Int): Void { return; }")
	require.False(t, bag.HasErrors())
	fn := file.Decls[0].(*ast.FuncDecl)
	require.Equal(t, ast.TEPointer, fn.Params[0].TypeExpr.Kind)
}

func TestParseCallAsStatementProducesExprStmt(t *testing.T) {
	file, bag := parse(t, "func a(): Void { b(); return; }")
	require.False(t, bag.HasErrors())
	fn := file.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 2)
	es, ok := fn.Body.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	_, ok = es.Value.(*ast.CallExpr)
	require.True(t, ok)
}

func TestParseStructConstructionVsCallDisambiguation(t *testing.T) {
	file, bag := parse(t, `
struct Point { x: Int; y: Int; }
func f(): Void {
  let p = Point(1, 2);
  return;
}
`)
	require.False(t, bag.HasErrors())
	fn := file.Decls[1].(*ast.FuncDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	_, ok := let.Init.Expr.(*ast.ConstructExpr)
	require.True(t, ok)
}

func TestParseIfElseChain(t *testing.T) {
	file, bag := parse(t, `
func f(x: Int): Int {
  if (x == 0) { return 0; } else { return 1; }
}
`)
	require.False(t, bag.HasErrors())
	fn := file.Decls[0].(*ast.FuncDecl)
	ifs, ok := fn.Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifs.Else)
}

func TestParseWhileLoop(t *testing.T) {
	file, bag := parse(t, `
func f(): Void {
  while (1) { return; }
}
`)
	require.False(t, bag.HasErrors())
	fn := file.Decls[0].(*ast.FuncDecl)
	_, ok := fn.Body.Stmts[0].(*ast.WhileStmt)
	require.True(t, ok)
}

func TestParseErrorRecoversAtNextDeclarator(t *testing.T) {
	file, bag := parse(t, `
@@@
func good(): Int { return 0; }
`)
	require.True(t, bag.HasErrors())
	found := false
	for _, d := range file.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Name == "good" {
			found = true
		}
	}
	require.True(t, found, "parser should recover and still parse the declaration after a broken one")
}
