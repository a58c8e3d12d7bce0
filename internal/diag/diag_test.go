package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBagHasErrorsIgnoresWarnings(t *testing.T) {
	b := NewBag()
	b.Warnf(Region{File: "a.floral", StartLine: 1}, "just a warning")
	require.False(t, b.HasErrors())
	b.Errorf(Parse, Region{File: "a.floral", StartLine: 2}, "real error")
	require.True(t, b.HasErrors())
}

func TestBagErrorsAndWarningsSplitCorrectly(t *testing.T) {
	b := NewBag()
	b.Errorf(Lex, Region{}, "e1")
	b.Warnf(Region{}, "w1")
	b.Errorf(Type, Region{}, "e2")
	require.Len(t, b.Errors(), 2)
	require.Len(t, b.Warnings(), 1)
	require.Len(t, b.Items(), 3)
}

func TestBagMergeAppendsInOrder(t *testing.T) {
	a := NewBag()
	a.Errorf(Parse, Region{}, "first")
	other := NewBag()
	other.Errorf(Parse, Region{}, "second")
	a.Merge(other)
	require.Len(t, a.Items(), 2)
	require.Equal(t, "second", a.Items()[1].Message)
}

func TestMergeNilIsNoop(t *testing.T) {
	a := NewBag()
	a.Errorf(Parse, Region{}, "only")
	a.Merge(nil)
	require.Len(t, a.Items(), 1)
}

func TestFormatSortsErrorsBeforeWarningsThenByFileLine(t *testing.T) {
	b := NewBag()
	b.Warnf(Region{File: "a.floral", StartLine: 1}, "w")
	b.Errorf(Parse, Region{File: "b.floral", StartLine: 5}, "e-late")
	b.Errorf(Parse, Region{File: "a.floral", StartLine: 2}, "e-early")
	out := Format(b)
	require.True(t, indexOf(out, "e-early") < indexOf(out, "e-late"))
	require.True(t, indexOf(out, "e-late") < indexOf(out, "w"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestRegionStringSingleVsMultiline(t *testing.T) {
	require.Equal(t, "f.floral:3", Region{File: "f.floral", StartLine: 3, EndLine: 3}.String())
	require.Equal(t, "f.floral:3-5", Region{File: "f.floral", StartLine: 3, EndLine: 5}.String())
	require.Equal(t, "<unknown>", Region{}.String())
}

func TestSuggestFindsCloseCandidate(t *testing.T) {
	require.Equal(t, "return", Suggest("retrun", []string{"return", "while", "for"}))
}

func TestSuggestReturnsEmptyWhenTooFar(t *testing.T) {
	require.Equal(t, "", Suggest("zzzzzzzzzz", []string{"return", "while", "for"}))
}
