package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/euppal/floralc/internal/compiler"
	"github.com/euppal/floralc/internal/diag"
)

func mustCompile(t *testing.T, src string, opts compiler.Options) compiler.Result {
	t.Helper()
	res, err := compiler.Compile(src, t.Name()+".floral", opts)
	require.NoError(t, err)
	require.False(t, res.Bag.HasErrors(), diag.Format(res.Bag))
	return res
}

// TestPointerIndexing matches spec.md §8 scenario 3: `p[i]` on an 8-byte
// element type folds into a scaled-index memory operand rather than a
// separate multiply.
func TestPointerIndexing(t *testing.T) {
	res := mustCompile(t, "func g(p: &Int, i: Int): Int { return p[i]; }", compiler.Options{})
	require.Contains(t, res.Assembly, "*8")
}

// TestTailCallEmitsJumpNotCallRet matches spec.md §8 scenario 4: a void
// function whose penultimate statement is a call-as-statement and whose
// last is a bare `return;`, stack guard off, lowers to frame teardown plus
// a `jmp`, never a `call`/`ret` pair for that call.
func TestTailCallEmitsJumpNotCallRet(t *testing.T) {
	src := `
func b(): Void { return; }
func a(): Void {
  b();
  return;
}
`
	res := mustCompile(t, src, compiler.Options{})
	require.Contains(t, res.Assembly, "jmp _floralid_b")
	require.NotContains(t, res.Assembly, "call _floralid_b")
}

// TestDivisionLowersToIdiv checks that `/` lowers to an idiv (DESIGN.md
// Open Question: division lowering). Neither rax nor rdx is live here, so
// no save/restore pair is expected around it.
func TestDivisionLowersToIdiv(t *testing.T) {
	res := mustCompile(t, "func f(a: Int, b: Int): Int { return a / b; }", compiler.Options{})
	require.Contains(t, res.Assembly, "idiv")
}

// TestPeepholeIsIdempotentAtOptLevelOne confirms the "fixed point" law of
// spec.md §8: re-running the optimizer on already-optimized output for the
// same program changes nothing further (approximated here by recompiling
// the same source twice at the same level and comparing byte-for-byte).
func TestPeepholeIsIdempotentAtOptLevelOne(t *testing.T) {
	src := "func main(): Int { return 0; }"
	first := mustCompile(t, src, compiler.Options{OptLevel: 1})
	second := mustCompile(t, src, compiler.Options{OptLevel: 1})
	require.Equal(t, first.Assembly, second.Assembly)
}

// TestOptimizationIsMonotoneInSemantics covers spec.md §8's invariant 6: a
// program's output-shape-defining instructions (here, the entry point and
// its exit code) survive unchanged across every optimization level.
func TestOptimizationIsMonotoneInSemantics(t *testing.T) {
	src := "func main(): Int { return 0; }"
	for level := 0; level <= 3; level++ {
		res := mustCompile(t, src, compiler.Options{OptLevel: level})
		require.Contains(t, res.Assembly, "_floralid_main:")
		require.Contains(t, res.Assembly, "33554433")
	}
}
