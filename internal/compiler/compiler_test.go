package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/euppal/floralc/internal/diag"
)

// TestIdentityReturn matches spec.md §8 scenario 1 verbatim: a `main`
// returning a literal 0 compiles to a prologue/xor/epilogue/ret body plus
// an entry shim wiring its result into the exit syscall.
func TestIdentityReturn(t *testing.T) {
	res, err := Compile("func main(): Int { return 0; }", "id.floral", Options{})
	require.NoError(t, err)
	require.False(t, res.Bag.HasErrors(), diag.Format(res.Bag))

	asm := res.Assembly
	require.Contains(t, asm, "_floralid_main:")
	require.Contains(t, asm, "xor eax, eax")
	require.Contains(t, asm, "ret")
	require.Contains(t, asm, "_main:")
	require.Contains(t, asm, "call _floralid_main")
	require.Contains(t, asm, "mov rdi, rax")
	require.Contains(t, asm, "33554433") // 0x2000001, the Darwin exit syscall number
	require.Contains(t, asm, "syscall")
}

// TestUnknownSymbolStopsBeforeCodegen matches spec.md §8 scenario 5: a
// resolution error is reported and no assembly reaches the caller.
func TestUnknownSymbolStopsBeforeCodegen(t *testing.T) {
	res, err := Compile("func main(): Int { return q; }", "err.floral", Options{})
	require.NoError(t, err)
	require.True(t, res.Bag.HasErrors())
	require.Empty(t, res.Assembly)

	found := false
	for _, d := range res.Bag.Errors() {
		if d.Domain == diag.Resolution && strings.Contains(d.Message, "q") {
			found = true
		}
	}
	require.True(t, found, "expected a resolution diagnostic mentioning q, got: %s", diag.Format(res.Bag))
}

// TestVoidFunctionGetsEpilogueEvenWithNoExplicitReturn covers spec.md §8's
// "boundary behaviors" bullet: a void function falling off the end still
// gets a real epilogue and ret, not a silent no-op body.
func TestVoidFunctionGetsEpilogueEvenWithNoExplicitReturn(t *testing.T) {
	res, err := Compile("func f(): Void { }", "void.floral", Options{})
	require.NoError(t, err)
	require.False(t, res.Bag.HasErrors(), diag.Format(res.Bag))
	require.Contains(t, res.Assembly, "ret")
}

// TestPreprocessorErrorStopsBeforeLexing checks that a malformed directive
// is reported under the preprocessing domain and the pipeline halts before
// producing any later-stage diagnostics.
func TestPreprocessorErrorStopsBeforeLexing(t *testing.T) {
	res, err := Compile("#ifdef FOO\nfunc main(): Int { return 0; }\n", "unterminated.floral", Options{})
	require.NoError(t, err)
	require.True(t, res.Bag.HasErrors())
	require.Empty(t, res.Assembly)
	for _, d := range res.Bag.Errors() {
		require.Equal(t, diag.Preprocessing, d.Domain)
	}
}

// TestOverloadSelectionEmitsMangledCallTargets matches spec.md §8 scenario
// 6: two forward-declared overloads of `f` resolve independently by their
// mangled, parameter-type-qualified label.
func TestOverloadSelectionEmitsMangledCallTargets(t *testing.T) {
	src := `
func f(x: Int): Int;
func f(x: &Char): Int;
func f(x: Int): Int { return x; }
func f(x: &Char): Int { return 0; }
func main(): Int {
  f(0);
  f("s");
  return 0;
}
`
	res, err := Compile(src, "overload.floral", Options{})
	require.NoError(t, err)
	require.False(t, res.Bag.HasErrors(), diag.Format(res.Bag))
	require.Contains(t, res.Assembly, "call _floralid_f_i")
	require.Contains(t, res.Assembly, "call _floralid_f_chptr")
}

// TestStackGuardAddsCanaryInstructions checks the opt-in hardening path
// wires through Options all the way to the emitted prologue/epilogue.
func TestStackGuardAddsCanaryInstructions(t *testing.T) {
	without, err := Compile("func main(): Int { return 0; }", "noguard.floral", Options{})
	require.NoError(t, err)
	withGuard, err := Compile("func main(): Int { return 0; }", "guard.floral", Options{StackGuard: true})
	require.NoError(t, err)
	require.False(t, withGuard.Bag.HasErrors(), diag.Format(withGuard.Bag))
	require.True(t, len(withGuard.Assembly) > len(without.Assembly))
	require.Contains(t, withGuard.Assembly, "xor")
}

// TestDumpTypeTracePopulatesResultTrace exercises the --dump-type-trace
// data path end to end (internal/sema.Analyze's trace now flows through
// Compile's return value instead of being silently dropped).
func TestDumpTypeTracePopulatesResultTrace(t *testing.T) {
	res, err := Compile("func main(): Int { return 0; }", "trace.floral", Options{DumpTypeTrace: true})
	require.NoError(t, err)
	require.False(t, res.Bag.HasErrors(), diag.Format(res.Bag))
	require.NotEmpty(t, res.Trace)
}

// TestASTIsReturnedEvenOnSemaFailure lets the --emit-ast flag show a
// partially-analyzed tree even when type-checking fails later.
func TestASTIsReturnedEvenOnSemaFailure(t *testing.T) {
	res, err := Compile("func main(): Int { return q; }", "ast.floral", Options{})
	require.NoError(t, err)
	require.NotNil(t, res.AST)
	require.NotNil(t, res.AST.Main)
}
