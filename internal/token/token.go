// Package token defines the fixed, finite set of lexical token kinds Floral
// recognizes and the immutable Token value produced by internal/lexer.
//
// Kinds follow the teacher's enum-via-struct idiom (asm/lexer.go's
// TokenKindType) so a stray int can never silently satisfy a Kind-typed
// field.
package token

// Kind identifies a lexical category. The zero Kind is invalid so an
// accidentally zero-valued Token is never mistaken for a real Error token.
type Kind struct{ k int }

func (k Kind) String() string {
	if k.k < 0 || k.k >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k.k]
}

var kindNames []string

func newKind(name string) Kind {
	k := Kind{len(kindNames)}
	kindNames = append(kindNames, name)
	return k
}

var (
	Invalid = newKind("Invalid")
	EOF     = newKind("EOF")

	Ident = newKind("Ident")

	// Literals
	IntLit      = newKind("IntLit")
	UIntLit     = newKind("UIntLit")
	ByteLit     = newKind("ByteLit")
	UByteLit    = newKind("UByteLit")
	ShortLit    = newKind("ShortLit")
	UShortLit   = newKind("UShortLit")
	Int32Lit    = newKind("Int32Lit")
	UInt32Lit   = newKind("UInt32Lit")
	WideCharLit = newKind("WideCharLit")
	WideUCharLit = newKind("WideUCharLit")
	FloatLit    = newKind("FloatLit")
	StringLit   = newKind("StringLit")
	WideStringLit = newKind("WideStringLit")
	CharLit     = newKind("CharLit")
	True        = newKind("True")
	False       = newKind("False")
	Null        = newKind("Null")

	// Declarators
	Func      = newKind("Func")
	Global    = newKind("Global")
	Let       = newKind("Let")
	Var       = newKind("Var")
	Struct    = newKind("Struct")
	Behavior  = newKind("Behavior")
	Predecl   = newKind("Predecl")
	TypeAlias = newKind("Type")
	Namespace = newKind("Namespace")
	Static    = newKind("Static")
	Inline    = newKind("Inline")

	// Primitive type names
	IntType       = newKind("Int")
	CharType      = newKind("Char")
	UCharType     = newKind("UChar")
	ShortType     = newKind("Short")
	UShortType    = newKind("UShort")
	Int32Type     = newKind("Int32")
	UInt32Type    = newKind("UInt32")
	UIntType      = newKind("UInt")
	WideCharType  = newKind("WideChar")
	WideUCharType = newKind("WideUChar")
	BoolType      = newKind("Bool")
	VoidType      = newKind("Void")

	// Control
	If     = newKind("If")
	While  = newKind("While")
	For    = newKind("For")
	Return = newKind("Return")

	// Misc keywords
	Using      = newKind("Using")
	Const      = newKind("Const")
	Sizeof     = newKind("Sizeof")
	UnsafeCast = newKind("UnsafeCast")

	// Punctuation / operators (closed table, longest-match-first in lexer)
	LParen   = newKind("(")
	RParen   = newKind(")")
	LBrace   = newKind("{")
	RBrace   = newKind("}")
	LBracket = newKind("[")
	RBracket = newKind("]")
	Comma    = newKind(",")
	Semi     = newKind(";")
	Colon    = newKind(":")
	ColonColon = newKind("::")

	Dot    = newKind(".")
	Arrow  = newKind("->")
	LArrow = newKind("<-")

	Plus  = newKind("+")
	Minus = newKind("-")
	Star  = newKind("*")
	Slash = newKind("/")
	Amp   = newKind("&")
	Pipe  = newKind("|")
	Caret = newKind("^")
	Tilde = newKind("~")
	Bang  = newKind("!")

	PlusEq  = newKind("+=")
	MinusEq = newKind("-=")
	StarEq  = newKind("*=")
	SlashEq = newKind("/=")

	PlusPlus   = newKind("++")
	MinusMinus = newKind("--")

	AndAnd = newKind("&&")
	OrOr   = newKind("||")
	XorXor = newKind("^^")

	Eq    = newKind("=")
	EqEq  = newKind("==")
	Ne    = newKind("!=")
	Lt    = newKind("<")
	Le    = newKind("<=")
	Gt    = newKind(">")
	Ge    = newKind(">=")
)

// Keywords maps reserved words to their Kind. Identifiers matching none of
// these entries lex as Ident.
var Keywords = map[string]Kind{
	"func": Func, "global": Global, "let": Let, "var": Var,
	"struct": Struct, "behavior": Behavior, "predecl": Predecl,
	"type": TypeAlias, "namespace": Namespace, "static": Static, "inline": Inline,
	"if": If, "while": While, "for": For, "return": Return,
	"using": Using, "const": Const, "sizeof": Sizeof, "unsafe_cast": UnsafeCast,
	"true": True, "false": False, "null": Null,

	"Int": IntType, "Int64": IntType, "QWord": IntType,
	"UInt": UIntType, "UInt64": UIntType, "UnsignedQWord": UIntType,
	"Char": CharType, "Int8": CharType,
	"UChar": UCharType, "UInt8": UCharType, "Byte": UCharType,
	"WideChar": WideCharType, "WideUChar": WideUCharType,
	"Short": ShortType, "Int16": ShortType, "Word": ShortType,
	"UShort": UShortType, "UInt16": UShortType, "UnsignedWord": UShortType,
	"Int32": Int32Type, "DWord": UInt32Type, "UInt32": UInt32Type, "UnsignedDWord": UInt32Type,
	"Bool": BoolType, "Void": VoidType,
}

// Token is an immutable lexical unit: where it came from, what it is, and
// its literal text (plus, for wide strings, the decoded code points).
type Token struct {
	Offset int
	Line   int
	Col    int
	File   string
	Kind   Kind
	Text   string
	Wide   []rune // populated only for WideStringLit
}

func (t Token) String() string {
	return t.Kind.String() + "(" + t.Text + ")"
}
