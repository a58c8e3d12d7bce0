package preprocess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandDefineAndUse(t *testing.T) {
	out, _, env, bag := Expand("#define FOO 42\nlet x = FOO;\n", "f.floral", nil, nil)
	require.False(t, bag.HasErrors())
	require.Contains(t, out, "let x = 42;")
	_, defined := env["FOO"]
	require.True(t, defined)
}

func TestExpandUndef(t *testing.T) {
	out, _, _, bag := Expand("#define FOO 1\n#undef FOO\nFOO\n", "f.floral", nil, nil)
	require.False(t, bag.HasErrors())
	require.Contains(t, out, "FOO\n")
}

func TestExpandIfdefAcceptsWhenDefined(t *testing.T) {
	out, _, _, bag := Expand("#define FOO 1\n#ifdef FOO\nkept\n#endif\nother\n", "f.floral", nil, nil)
	require.False(t, bag.HasErrors())
	require.Contains(t, out, "kept")
	require.Contains(t, out, "other")
}

func TestExpandIfdefSkipsWhenNotDefined(t *testing.T) {
	out, _, _, bag := Expand("#ifdef FOO\ndropped\n#endif\nother\n", "f.floral", nil, nil)
	require.False(t, bag.HasErrors())
	require.NotContains(t, out, "dropped")
	require.Contains(t, out, "other")
}

func TestExpandIfndef(t *testing.T) {
	out, _, _, bag := Expand("#ifndef FOO\nkept\n#endif\n", "f.floral", nil, nil)
	require.False(t, bag.HasErrors())
	require.Contains(t, out, "kept")
}

func TestExpandUnterminatedConditionalReportsError(t *testing.T) {
	_, _, _, bag := Expand("#ifdef FOO\nkept\n", "f.floral", nil, nil)
	require.True(t, bag.HasErrors())
}

func TestExpandUnmatchedEndifReportsError(t *testing.T) {
	_, _, _, bag := Expand("#endif\n", "f.floral", nil, nil)
	require.True(t, bag.HasErrors())
}

type stubIncluder struct{ text, name string }

func (s stubIncluder) Resolve(path string, angled bool) (string, string, error) {
	return s.text, s.name, nil
}

func TestExpandIncludeSplicesResolvedText(t *testing.T) {
	out, _, _, bag := Expand(`#include "lib.floral"`+"\n", "f.floral", nil,
		stubIncluder{text: "func helper(): Void { return; }\n", name: "lib.floral"})
	require.False(t, bag.HasErrors())
	require.Contains(t, out, "func helper(): Void")
}

func TestExpandUnknownIncludeReportsError(t *testing.T) {
	_, _, _, bag := Expand(`#include "missing.floral"`+"\n", "f.floral", nil, NopIncluder{})
	require.True(t, bag.HasErrors())
}

func TestExpandMacrosPersistAcrossCalls(t *testing.T) {
	_, _, env1, bag := Expand("#define FOO 1\n", "a.floral", nil, nil)
	require.False(t, bag.HasErrors())
	out2, _, _, bag2 := Expand("FOO\n", "b.floral", env1, nil)
	require.False(t, bag2.HasErrors())
	require.Contains(t, out2, "1")
}
