package peephole

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/euppal/floralc/internal/ir"
)

func textSection(instr ...ir.Instruction) []ir.Section {
	return []ir.Section{{Kind: ir.Text, Instr: instr}}
}

func TestOptimizeRemovesSelfMov(t *testing.T) {
	out := Optimize(textSection(
		ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RAX), Src: ir.Reg64(ir.RAX)},
		ir.Instruction{Op: ir.OpRet},
	), 1)
	require.Equal(t, []ir.Instruction{{Op: ir.OpRet}}, out[0].Instr)
}

func TestOptimizeRemovesZeroArithmetic(t *testing.T) {
	out := Optimize(textSection(
		ir.Instruction{Op: ir.OpAdd, Dst: ir.Reg64(ir.RAX), Src: ir.Lit(0)},
		ir.Instruction{Op: ir.OpSub, Dst: ir.Reg64(ir.RAX), Src: ir.Lit(0)},
		ir.Instruction{Op: ir.OpRet},
	), 1)
	require.Equal(t, []ir.Instruction{{Op: ir.OpRet}}, out[0].Instr)
}

func TestOptimizeRemovesImulByOne(t *testing.T) {
	out := Optimize(textSection(
		ir.Instruction{Op: ir.OpImul, Dst: ir.Reg64(ir.RAX), Src: ir.Lit(1)},
	), 1)
	require.Empty(t, out[0].Instr)
}

func TestOptimizeRemovesPushPopRoundTrip(t *testing.T) {
	out := Optimize(textSection(
		ir.Instruction{Op: ir.OpPush, Dst: ir.Reg64(ir.RAX)},
		ir.Instruction{Op: ir.OpPop, Dst: ir.Reg64(ir.RAX)},
		ir.Instruction{Op: ir.OpRet},
	), 1)
	require.Equal(t, []ir.Instruction{{Op: ir.OpRet}}, out[0].Instr)
}

func TestOptimizeRemovesDoubleNegAndNot(t *testing.T) {
	out := Optimize(textSection(
		ir.Instruction{Op: ir.OpNeg, Dst: ir.Reg64(ir.RAX)},
		ir.Instruction{Op: ir.OpNeg, Dst: ir.Reg64(ir.RAX)},
		ir.Instruction{Op: ir.OpNot, Dst: ir.Reg64(ir.RBX)},
		ir.Instruction{Op: ir.OpNot, Dst: ir.Reg64(ir.RBX)},
	), 1)
	require.Empty(t, out[0].Instr)
}

func TestOptimizeCollapsesMovPushPopIntoMov(t *testing.T) {
	out := Optimize(textSection(
		ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RAX), Src: ir.Lit(9)},
		ir.Instruction{Op: ir.OpPush, Dst: ir.Reg64(ir.RAX)},
		ir.Instruction{Op: ir.OpPop, Dst: ir.Reg64(ir.RBX)},
	), 1)
	require.Equal(t, []ir.Instruction{{Op: ir.OpMov, Dst: ir.Reg64(ir.RBX), Src: ir.Lit(9)}}, out[0].Instr)
}

func TestOptimizeRunsToFixedPoint(t *testing.T) {
	// Each mov/push/pop triple collapses to a mov; two chained triples
	// should both disappear in favor of a single final mov.
	out := Optimize(textSection(
		ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RAX), Src: ir.Lit(9)},
		ir.Instruction{Op: ir.OpPush, Dst: ir.Reg64(ir.RAX)},
		ir.Instruction{Op: ir.OpPop, Dst: ir.Reg64(ir.RBX)},
		ir.Instruction{Op: ir.OpPush, Dst: ir.Reg64(ir.RBX)},
		ir.Instruction{Op: ir.OpPop, Dst: ir.Reg64(ir.RCX)},
	), 1)
	require.Equal(t, []ir.Instruction{{Op: ir.OpMov, Dst: ir.Reg64(ir.RCX), Src: ir.Lit(9)}}, out[0].Instr)
}

func TestOptimizeLevelZeroSkipsRewritesButStillPrunesExterns(t *testing.T) {
	out := Optimize(textSection(
		ir.Instruction{Op: ir.OpExtern, Name: "malloc"},
		ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RAX), Src: ir.Reg64(ir.RAX)},
	), 0)
	// the self-mov survives at level 0 (no rewrite pass), extern is pruned
	// regardless of level since nothing calls it
	require.Equal(t, []ir.Instruction{{Op: ir.OpMov, Dst: ir.Reg64(ir.RAX), Src: ir.Reg64(ir.RAX)}}, out[0].Instr)
}

func TestOptimizePrunesUnusedExterns(t *testing.T) {
	out := Optimize(textSection(
		ir.Instruction{Op: ir.OpExtern, Name: "malloc"},
		ir.Instruction{Op: ir.OpExtern, Name: "_floralid_stack_guard_fail"},
		ir.Instruction{Op: ir.OpCall, Target: "malloc"},
		ir.Instruction{Op: ir.OpRet},
	), 1)
	require.Equal(t, []ir.Instruction{
		{Op: ir.OpExtern, Name: "malloc"},
		{Op: ir.OpCall, Target: "malloc"},
		{Op: ir.OpRet},
	}, out[0].Instr)
}

func TestOptimizeRespectsNonOptimizableComment(t *testing.T) {
	out := Optimize(textSection(
		ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RAX), Src: ir.Reg64(ir.RAX), Comment: "@keep"},
	), 1)
	require.Len(t, out[0].Instr, 1)
}

func TestOptimizeNeverMutatesInputSlice(t *testing.T) {
	in := textSection(ir.Instruction{Op: ir.OpMov, Dst: ir.Reg64(ir.RAX), Src: ir.Reg64(ir.RAX)})
	_ = Optimize(in, 1)
	require.Len(t, in[0].Instr, 1, "Optimize must not mutate the caller's section slice")
}
