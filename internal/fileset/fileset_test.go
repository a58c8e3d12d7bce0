package fileset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapResolvesFileWithinOpenRange(t *testing.T) {
	m := New()
	m.Open(0, "a.floral")
	m.Close(10)
	m.Open(10, "b.floral")
	m.Close(20)
	require.Equal(t, "a.floral", m.File(5))
	require.Equal(t, "b.floral", m.File(15))
}

func TestMapFileOutsideAnyRangeReturnsEmpty(t *testing.T) {
	m := New()
	m.Open(0, "a.floral")
	m.Close(10)
	require.Equal(t, "", m.File(50))
}

func TestMapLatestOverlappingRangeWins(t *testing.T) {
	m := New()
	m.Add(0, 20, "outer.floral")
	m.Add(5, 10, "included.floral")
	require.Equal(t, "included.floral", m.File(7))
	require.Equal(t, "outer.floral", m.File(15))
}

func TestLineColFirstLineFirstColumn(t *testing.T) {
	line, col := LineCol("abc\ndef", 0)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)
}

func TestLineColAfterNewline(t *testing.T) {
	line, col := LineCol("abc\ndef", 4)
	require.Equal(t, 2, line)
	require.Equal(t, 1, col)
}

func TestLineColMidSecondLine(t *testing.T) {
	line, col := LineCol("abc\ndefgh", 7)
	require.Equal(t, 2, line)
	require.Equal(t, 4, col)
}
