package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/euppal/floralc/internal/types"
)

func TestDeclBaseReportsItsRegion(t *testing.T) {
	fd := &FuncDecl{declBase: declBase{Reg: Region{File: "f.floral", StartLine: 3}}}
	require.Equal(t, "f.floral", fd.Region().File)
	require.Equal(t, 3, fd.Region().StartLine)
}

func TestExprBaseTypeRoundTrip(t *testing.T) {
	e := &SymbolExpr{Name: "x"}
	require.Nil(t, e.TypeOf())
	e.SetType(types.Int(false))
	require.True(t, types.Equal(types.Int(false), e.TypeOf()))
}

func TestExprBaseStaticEvalDefaultsFalse(t *testing.T) {
	e := &LiteralExpr{}
	require.False(t, e.StaticEval())
	e.SetStaticEval(true)
	require.True(t, e.StaticEval())
}

func TestStmtBaseReportsItsRegion(t *testing.T) {
	rs := &ReturnStmt{stmtBase: stmtBase{Reg: Region{File: "f.floral", StartLine: 7}}}
	require.Equal(t, 7, rs.Region().StartLine)
}
