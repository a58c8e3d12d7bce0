package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/euppal/floralc/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

// TestTokenizeCoversUniversalInvariant matches spec.md §8's lexer invariant:
// the token stream always ends in exactly one EOF and nothing after it.
func TestTokenizeCoversUniversalInvariant(t *testing.T) {
	toks := New("func main(): Int { return 0; }", nil).Tokenize()
	require.Equal(t, token.EOF, toks[len(toks)-1].Kind)
	for _, tok := range toks[:len(toks)-1] {
		require.NotEqual(t, token.EOF, tok.Kind)
	}
}

func TestTokenizeKeywordsAndIdents(t *testing.T) {
	toks := New("func foo let Int", nil).Tokenize()
	require.Equal(t, []token.Kind{token.Func, token.Ident, token.Let, token.IntType, token.EOF}, kinds(toks))
	require.Equal(t, "foo", toks[1].Text)
}

func TestTokenizeSkipsLineAndBlockComments(t *testing.T) {
	toks := New("// a comment\nfunc /* inline */ main", nil).Tokenize()
	require.Equal(t, []token.Kind{token.Func, token.Ident, token.EOF}, kinds(toks))
}

func TestTokenizeIntegerSuffixes(t *testing.T) {
	toks := New("42 42u 42b 42ub 42w", nil).Tokenize()
	require.Equal(t, token.IntLit, toks[0].Kind)
	require.Equal(t, token.UIntLit, toks[1].Kind)
	require.Equal(t, token.ByteLit, toks[2].Kind)
	require.Equal(t, token.UByteLit, toks[3].Kind)
	require.Equal(t, token.ShortLit, toks[4].Kind)
}

func TestTokenizeHexLiteral(t *testing.T) {
	toks := New("0xFF", nil).Tokenize()
	require.Equal(t, token.IntLit, toks[0].Kind)
	require.Equal(t, "0xFF", toks[0].Text)
}

func TestTokenizeFloatRequiresDigitAfterDot(t *testing.T) {
	toks := New("3.14", nil).Tokenize()
	require.Equal(t, token.FloatLit, toks[0].Kind)
	require.Equal(t, "3.14", toks[0].Text)
}

func TestTokenizeStringEscapesAndConcatenation(t *testing.T) {
	toks := New(`"a\n" "b"`, nil).Tokenize()
	require.Equal(t, token.StringLit, toks[0].Kind)
	require.Equal(t, "a\nb", toks[0].Text)
}

func TestTokenizeUnterminatedStringReportsLexError(t *testing.T) {
	lx := New(`"oops`, nil)
	lx.Tokenize()
	require.True(t, lx.Diagnostics().HasErrors())
}

func TestTokenizeCharLiteral(t *testing.T) {
	toks := New("'a'", nil).Tokenize()
	require.Equal(t, token.UByteLit, toks[0].Kind)
	require.Equal(t, "97", toks[0].Text)
}

func TestTokenizeMultiCharOperatorsPreferLongestMatch(t *testing.T) {
	toks := New("<= == && ->", nil).Tokenize()
	require.Equal(t, []token.Kind{token.Le, token.EqEq, token.AndAnd, token.Arrow, token.EOF}, kinds(toks))
}

func TestTokenizeSingleCharOperatorNotGreedilyMerged(t *testing.T) {
	toks := New("< = & -", nil).Tokenize()
	require.Equal(t, []token.Kind{token.Lt, token.Eq, token.Amp, token.Minus, token.EOF}, kinds(toks))
}
