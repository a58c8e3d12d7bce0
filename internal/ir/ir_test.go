package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocationOperandRendering(t *testing.T) {
	cases := []struct {
		name string
		loc  Location
		want string
	}{
		{"register", Reg64(RAX), "rax"},
		{"narrow register", RegAt(RAX, 8), "al"},
		{"rbp slot positive", RBP(16), "[rbp+16]"},
		{"rbp slot negative", RBP(-8), "[rbp-8]"},
		{"signed literal", Lit(-3), "-3"},
		{"unsigned literal", ULit(7), "7"},
		{"label", Lbl("LC0"), "LC0"},
		{"dereferenced label", Lbl("LC0").Dereferenced(), "[rel LC0]"},
		{"bare deref register", Reg64(RBX).Dereferenced(), "[rbx]"},
		{"deref with offset", Reg64(RBX).Dereferenced().WithOffset(8), "[rbx+8]"},
		{"deref with negative offset", Reg64(RBX).Dereferenced().WithOffset(-8), "[rbx-8]"},
		{"scaled index", Reg64(RBX).Dereferenced().WithIndex(RCX, 4), "[rbx+rcx*4]"},
		{"scaled index with offset", Reg64(RBX).Dereferenced().WithIndex(RCX, 8).WithOffset(16), "[rbx+rcx*8+16]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, c.loc.Operand())
		})
	}
}

func TestLocationIsZeroAndImmediate(t *testing.T) {
	require.True(t, Lit(0).IsZero())
	require.True(t, ULit(0).IsZero())
	require.False(t, Lit(1).IsZero())
	require.True(t, Lit(5).IsImmediate())
	require.False(t, Reg64(RAX).IsImmediate())
}

func TestSizeKeyword(t *testing.T) {
	require.Equal(t, "BYTE", SizeKeyword(8))
	require.Equal(t, "WORD", SizeKeyword(16))
	require.Equal(t, "DWORD", SizeKeyword(32))
	require.Equal(t, "QWORD", SizeKeyword(64))
}

func TestInstructionRenderTwoOperand(t *testing.T) {
	in := Instruction{Op: OpMov, Dst: Reg64(RAX), Src: Lit(5), Comment: "load"}
	require.Equal(t, "  mov rax, 5 ; load", in.Render())
}

func TestInstructionRenderMemoryNeedsSizeKeyword(t *testing.T) {
	in := Instruction{Op: OpMov, Dst: RBP(-8).WithWidth(8), Src: Lit(1)}
	require.Equal(t, "  mov BYTE [rbp-8], 1", in.Render())
}

func TestInstructionRenderSingleOperand(t *testing.T) {
	require.Equal(t, "  idiv rcx", Instruction{Op: OpIdiv, Dst: Reg64(RCX)}.Render())
	require.Equal(t, "  push rbx", Instruction{Op: OpPush, Dst: Reg64(RBX)}.Render())
	require.Equal(t, "  pop rbx", Instruction{Op: OpPop, Dst: Reg64(RBX)}.Render())
}

func TestInstructionRenderJump(t *testing.T) {
	in := Instruction{Op: OpJump, JumpKind: JumpLess, Target: "L1"}
	require.Equal(t, "  jl L1", in.Render())
}

func TestJumpKindNegate(t *testing.T) {
	require.Equal(t, JumpGreaterEqual, JumpLess.Negate())
	require.Equal(t, JumpLess, JumpGreaterEqual.Negate())
	require.Equal(t, JumpNonZero, JumpZero.Negate())
	require.Equal(t, JumpAlways, JumpAlways.Negate())
}

func TestSectionRenderSkipsEmpty(t *testing.T) {
	sections := NewSections()
	require.Len(t, sections, 4)
	require.Equal(t, "", sections[1].Render())

	sections[0].Add(Instruction{Op: OpRet})
	rendered := sections[0].Render()
	require.Contains(t, rendered, "section .text")
	require.Contains(t, rendered, "ret")
}

func TestFrameAllocSlotGrowsNegativeAndAligns(t *testing.T) {
	f := NewFrame("f_main", false)
	off1 := f.AllocSlot("x", 4)
	off2 := f.AllocSlot("y", 8)
	require.Equal(t, -8, off1)
	require.Equal(t, -16, off2)

	v, ok := f.Lookup("x")
	require.True(t, ok)
	require.Equal(t, off1, v.Loc.Offset)

	_, ok = f.Lookup("missing")
	require.False(t, ok)
}

func TestFrameLookupInnermostWins(t *testing.T) {
	f := NewFrame("f_main", false)
	f.AllocSlot("x", 8)
	f.AllocSlot("x", 8)
	v, ok := f.Lookup("x")
	require.True(t, ok)
	require.Equal(t, -16, v.Loc.Offset)
}

func TestFrameScratchPool(t *testing.T) {
	f := NewFrame("f_main", false)
	r1 := f.AllocScratch()
	r2 := f.AllocScratch()
	require.NotEqual(t, r1, r2)
	require.True(t, f.InUse(r1))

	f.ReleaseScratch(r1)
	require.False(t, f.InUse(r1))

	f.MarkUsed(r1)
	require.True(t, f.InUse(r1))

	f.ResetScratch()
	require.False(t, f.InUse(r1))
	require.False(t, f.InUse(r2))
}

func TestFrameLabelIsUniquePerCall(t *testing.T) {
	f := NewFrame("f_main", false)
	l1 := f.Label("if")
	l2 := f.Label("if")
	require.NotEqual(t, l1, l2)
	require.Equal(t, "f_main_if_1", l1)
	require.Equal(t, "f_main_if_2", l2)
}

func TestFrameFinalizeSizeRoundsUpAndAddsGuard(t *testing.T) {
	f := NewFrame("f_main", false)
	require.Equal(t, 16, f.FinalizeSize(1, 0))

	g := NewFrame("f_guarded", true)
	require.Equal(t, 32, g.FinalizeSize(1, 0))
}
