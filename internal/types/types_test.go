package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualSameKindPrimitives(t *testing.T) {
	require.True(t, Equal(Int(false), Int(true)))
	require.False(t, Equal(Int(false), UInt(false)))
}

func TestEqualPointerComparesElemRecursively(t *testing.T) {
	a := PointerTo(Int(false), false)
	b := PointerTo(Int(false), false)
	c := PointerTo(Char(false), false)
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
}

func TestEqualArrayComparesLengthAndElem(t *testing.T) {
	a := ArrayOf(Int(false), 4, false)
	b := ArrayOf(Int(false), 4, false)
	c := ArrayOf(Int(false), 8, false)
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
}

func TestStructInfoAddMemberComputesOffsets(t *testing.T) {
	si := &StructInfo{Name: "Point"}
	m1 := si.AddMember("x", Int(false))
	m2 := si.AddMember("y", Char(false))
	require.Equal(t, 0, m1.Offset)
	require.Equal(t, Sizeof(Int(false)), m2.Offset)
	require.Equal(t, Sizeof(Int(false))+Sizeof(Char(false)), si.Size())
}

func TestStructInfoOffsetOfAndMemberType(t *testing.T) {
	si := &StructInfo{Name: "Point"}
	si.AddMember("x", Int(false))
	si.AddMember("y", Int(false))
	require.Equal(t, Sizeof(Int(false)), si.OffsetOf("y"))
	require.True(t, Equal(Int(false), si.MemberType("y")))
}

func TestRegistryDeclareAndLookupStruct(t *testing.T) {
	r := NewRegistry()
	si := r.DeclareStruct("Point")
	require.Same(t, si, r.LookupStruct("Point"))
	require.Nil(t, r.LookupStruct("Missing"))
}

func TestRegistryDeclareAndLookupAlias(t *testing.T) {
	r := NewRegistry()
	ai := r.DeclareAlias("MyInt", Int(false))
	require.Same(t, ai, r.LookupAlias("MyInt"))
	require.Nil(t, r.LookupAlias("Missing"))
}

func TestIsPointerAndElemType(t *testing.T) {
	p := PointerTo(Int(false), false)
	require.True(t, p.IsPointer())
	require.True(t, Equal(Int(false), p.ElemType()))
}

func TestSizeofPrimitives(t *testing.T) {
	require.Equal(t, 8, Sizeof(Int(false)))
	require.Equal(t, 1, Sizeof(Char(false)))
	require.Equal(t, 8, Sizeof(PointerTo(Char(false), false)))
}

func TestMostConstPrefersConst(t *testing.T) {
	a := Int(false)
	b := Int(true)
	require.True(t, MostConst(a, b).Const)
}
