package sema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/euppal/floralc/internal/diag"
	"github.com/euppal/floralc/internal/lexer"
	"github.com/euppal/floralc/internal/parser"
	"github.com/euppal/floralc/internal/types"
)

func analyze(t *testing.T, src string, opts Options) *diag.Bag {
	t.Helper()
	toks := lexer.New(src, nil).Tokenize()
	file, parseBag := parser.Parse(toks)
	require.False(t, parseBag.HasErrors(), diag.Format(parseBag))
	reg := types.NewRegistry()
	bag, _ := Analyze(file, reg, opts)
	return bag
}

func TestAnalyzeAcceptsWellTypedProgram(t *testing.T) {
	bag := analyze(t, "func main(): Int { return 0; }", Options{})
	require.False(t, bag.HasErrors(), diag.Format(bag))
}

func TestAnalyzeReportsUnknownSymbol(t *testing.T) {
	bag := analyze(t, "func main(): Int { return q; }", Options{})
	require.True(t, bag.HasErrors())
	require.Equal(t, diag.Resolution, bag.Errors()[0].Domain)
}

func TestAnalyzeReportsTypeMismatchOnReturn(t *testing.T) {
	bag := analyze(t, `func f(): Int { return "s"; }`, Options{})
	require.True(t, bag.HasErrors())
}

func TestAnalyzeAllowsOverloadsByDistinctMangledSignature(t *testing.T) {
	bag := analyze(t, `
func f(x: Int): Int { return x; }
func f(x: &Char): Int { return 0; }
func main(): Int { f(0); f("s"); return 0; }
`, Options{})
	require.False(t, bag.HasErrors(), diag.Format(bag))
}

func TestAnalyzeRejectsConstAssignment(t *testing.T) {
	bag := analyze(t, `
func f(): Void {
  let x = 0;
  x = 1;
  return;
}
`, Options{})
	require.True(t, bag.HasErrors())
}

func TestAnalyzeDumpTypeTraceCollectsEntriesWhenEnabled(t *testing.T) {
	toks := lexer.New("func main(): Int { return 0; }", nil).Tokenize()
	file, parseBag := parser.Parse(toks)
	require.False(t, parseBag.HasErrors())
	reg := types.NewRegistry()
	bag, trace := Analyze(file, reg, Options{DumpTypeTrace: true})
	require.False(t, bag.HasErrors())
	require.NotEmpty(t, trace)
}

func TestAnalyzeOmitsTypeTraceWhenDisabled(t *testing.T) {
	toks := lexer.New("func main(): Int { return 0; }", nil).Tokenize()
	file, parseBag := parser.Parse(toks)
	require.False(t, parseBag.HasErrors())
	reg := types.NewRegistry()
	_, trace := Analyze(file, reg, Options{})
	require.Empty(t, trace)
}

func TestAnalyzePointerDereferenceTyping(t *testing.T) {
	bag := analyze(t, "func f(p: &Int): Int { return *p; }", Options{})
	require.False(t, bag.HasErrors(), diag.Format(bag))
}
