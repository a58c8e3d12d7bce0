package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindStringRendersRegisteredName(t *testing.T) {
	require.Equal(t, "Func", Func.String())
	require.Equal(t, "Ident", Ident.String())
}

func TestKindStringUnknownForOutOfRangeValue(t *testing.T) {
	require.Equal(t, "Unknown", Kind{k: -1}.String())
}

func TestKeywordsMapCoversTypeAliases(t *testing.T) {
	require.Equal(t, IntType, Keywords["Int"])
	require.Equal(t, IntType, Keywords["Int64"])
	require.Equal(t, IntType, Keywords["QWord"])
	require.Equal(t, VoidType, Keywords["Void"])
}

func TestKeywordsMapDoesNotIncludeOperators(t *testing.T) {
	_, ok := Keywords["+"]
	require.False(t, ok)
}

func TestTokenStringIncludesKindAndText(t *testing.T) {
	tok := Token{Kind: Ident, Text: "foo"}
	require.Equal(t, "Ident(foo)", tok.String())
}
