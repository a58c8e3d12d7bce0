package asmprint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/euppal/floralc/internal/ir"
)

func TestPrintSkipsEmptySections(t *testing.T) {
	sections := ir.NewSections()
	sections[0].Add(ir.Instruction{Op: ir.OpRet})
	out := Print(sections)
	require.Contains(t, out, "section .text")
	require.NotContains(t, out, "section .bss")
	require.NotContains(t, out, "section .rodata")
	require.NotContains(t, out, "section .data")
}

func TestPrintOrdersSectionsTextBSSRodataData(t *testing.T) {
	sections := ir.NewSections()
	sections[0].Add(ir.Instruction{Op: ir.OpRet})
	sections[1].Add(ir.Instruction{Op: ir.OpDataZero, Name: "buf", ElemSize: 1, Count: 16})
	sections[2].Add(ir.Instruction{Op: ir.OpDataStr, Name: "LC0", StrBody: `"hi"`})
	sections[3].Add(ir.Instruction{Op: ir.OpDataInit, Name: "g", ElemSize: 8, Signed: true, Values: []int64{1}})
	out := Print(sections)

	textIdx := indexOf(out, "section .text")
	bssIdx := indexOf(out, "section .bss")
	rodataIdx := indexOf(out, "section .rodata")
	dataIdx := indexOf(out, "section .data")
	require.True(t, textIdx < bssIdx)
	require.True(t, bssIdx < rodataIdx)
	require.True(t, rodataIdx < dataIdx)
}

func TestPrintAllEmptyYieldsEmptyString(t *testing.T) {
	require.Equal(t, "", Print(ir.NewSections()))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
