// Package lexer turns preprocessed Floral source into a Token stream.
// The cursor shape follows the teacher's asm/lexer.go, generalized
// from a hand-coded state machine over a handful of assembler token kinds
// to Floral's richer literal and operator grammar (spec.md §4.2).
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/euppal/floralc/internal/diag"
	"github.com/euppal/floralc/internal/fileset"
	"github.com/euppal/floralc/internal/token"
)

// Lexer walks expanded source through a single byte offset into src; it
// keeps no pushed-back rune.
type Lexer struct {
	src   string
	pos   int
	fmap  *fileset.Map
	bag   *diag.Bag
}

// New builds a Lexer over already-preprocessed source. fmap may be nil, in
// which case every token's File field is left empty (useful for isolated
// lexer tests).
func New(src string, fmap *fileset.Map) *Lexer {
	return &Lexer{src: src, fmap: fmap, bag: diag.NewBag()}
}

// Diagnostics returns accumulated lex errors.
func (lx *Lexer) Diagnostics() *diag.Bag { return lx.bag }

// Tokenize drains the lexer into a slice ending with a single EOF token,
// per the universal invariant that the stream covers the source with no
// gap or overlap (spec.md §8).
func (lx *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks
		}
	}
}

func (lx *Lexer) peekByte() (byte, bool) {
	if lx.pos >= len(lx.src) {
		return 0, false
	}
	return lx.src[lx.pos], true
}

func (lx *Lexer) at(offset int) (byte, bool) {
	p := lx.pos + offset
	if p >= len(lx.src) {
		return 0, false
	}
	return lx.src[p], true
}

func (lx *Lexer) skipTrivia() {
	for {
		c, ok := lx.peekByte()
		if !ok {
			return
		}
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			lx.pos++
		case c == '/' && peekIs(lx, 1, '/'):
			for {
				c, ok := lx.peekByte()
				if !ok || c == '\n' {
					break
				}
				lx.pos++
			}
		case c == '/' && peekIs(lx, 1, '*'):
			lx.pos += 2
			for {
				c, ok := lx.peekByte()
				if !ok {
					return
				}
				if c == '*' && peekIs(lx, 1, '/') {
					lx.pos += 2
					break
				}
				lx.pos++
			}
		default:
			return
		}
	}
}

func peekIs(lx *Lexer, offset int, want byte) bool {
	c, ok := lx.at(offset)
	return ok && c == want
}

func (lx *Lexer) makeTok(start int, kind token.Kind, text string) token.Token {
	line, col := fileset.LineCol(lx.src, start)
	file := ""
	if lx.fmap != nil {
		file = lx.fmap.File(start)
	}
	return token.Token{Offset: start, Line: line, Col: col, File: file, Kind: kind, Text: text}
}

// Next returns the next Token, or an EOF token at end of input. It never
// returns fewer than one token per call and never blocks.
func (lx *Lexer) Next() token.Token {
	lx.skipTrivia()
	start := lx.pos
	c, ok := lx.peekByte()
	if !ok {
		return lx.makeTok(start, token.EOF, "")
	}

	switch {
	case isIdentStart(c):
		return lx.lexIdentOrKeyword(start)
	case c == '"':
		return lx.lexString(start, false)
	case c == 'W' && peekIs(lx, 1, '"'):
		lx.pos++
		return lx.lexString(start, true)
	case c == '\'':
		return lx.lexChar(start)
	case isDigit(c):
		return lx.lexNumber(start)
	default:
		return lx.lexOperator(start)
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentCont(c byte) bool { return isIdentStart(c) || isDigit(c) }
func isDigit(c byte) bool     { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (lx *Lexer) lexIdentOrKeyword(start int) token.Token {
	for {
		c, ok := lx.peekByte()
		if !ok || !isIdentCont(c) {
			break
		}
		lx.pos++
	}
	text := lx.src[start:lx.pos]
	if k, ok := token.Keywords[text]; ok {
		return lx.makeTok(start, k, text)
	}
	return lx.makeTok(start, token.Ident, text)
}

// lexString handles `"…"` and `W"…"`, with \n \t \r \e \" \' and, inside
// wide strings, \uXXXX escapes; adjacent same-kind literals concatenate.
func (lx *Lexer) lexString(start int, wide bool) token.Token {
	lx.pos++ // opening quote
	var decoded []rune
	var raw strings.Builder
	for {
		c, ok := lx.peekByte()
		if !ok {
			lx.bag.Errorf(diag.Lex, lx.region(start), "unterminated string literal")
			break
		}
		if c == '"' {
			lx.pos++
			break
		}
		if c == '\\' {
			r, consumed := lx.readEscape(wide)
			if consumed {
				decoded = append(decoded, r)
				raw.WriteRune(r)
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		decoded = append(decoded, r)
		raw.WriteRune(r)
		lx.pos += size
	}
	// adjacent concatenation
	lx.skipTrivia()
	if wide && peekIs(lx, 0, 'W') && peekIs(lx, 1, '"') {
		lx.pos += 2
		more := lx.lexString(lx.pos-2, true)
		decoded = append(decoded, more.Wide...)
	} else if !wide && peekIs(lx, 0, '"') {
		more := lx.lexString(lx.pos, false)
		raw.WriteString(more.Text)
	}
	if wide {
		return token.Token{Kind: token.WideStringLit, Text: raw.String(), Wide: decoded,
			Offset: start, File: lx.fileAt(start)}
	}
	return lx.makeTok(start, token.StringLit, raw.String())
}

func (lx *Lexer) fileAt(start int) string {
	if lx.fmap == nil {
		return ""
	}
	return lx.fmap.File(start)
}

// readEscape consumes a backslash escape at the cursor and returns the
// decoded rune. consumed is false only if '\\' was not actually followed by
// a recognized escape (caller then treats '\\' as a literal rune).
func (lx *Lexer) readEscape(wide bool) (rune, bool) {
	start := lx.pos
	lx.pos++ // backslash
	c, ok := lx.peekByte()
	if !ok {
		lx.pos = start
		return 0, false
	}
	switch c {
	case 'n':
		lx.pos++
		return '\n', true
	case 't':
		lx.pos++
		return '\t', true
	case 'r':
		lx.pos++
		return '\r', true
	case 'e':
		lx.pos++
		return 0x1b, true
	case '"':
		lx.pos++
		return '"', true
	case '\'':
		lx.pos++
		return '\'', true
	case '\\':
		lx.pos++
		return '\\', true
	case 'u':
		if wide {
			lx.pos++
			hex := ""
			for i := 0; i < 4; i++ {
				h, ok := lx.peekByte()
				if !ok || !isHexDigit(h) {
					lx.bag.Errorf(diag.Lex, lx.region(start), "unknown character")
					return 0xFFFD, true
				}
				hex += string(h)
				lx.pos++
			}
			var v rune
			fmt.Sscanf(hex, "%04x", &v)
			return v, true
		}
	}
	lx.pos = start
	return 0, false
}

func (lx *Lexer) lexChar(start int) token.Token {
	lx.pos++ // opening quote
	var r rune
	if c, _ := lx.peekByte(); c == '\\' {
		r, _ = lx.readEscape(false)
	} else {
		var size int
		r, size = utf8.DecodeRuneInString(lx.src[lx.pos:])
		lx.pos += size
	}
	if c, ok := lx.peekByte(); !ok || c != '\'' {
		lx.bag.Errorf(diag.Lex, lx.region(start), "unterminated char literal")
	} else {
		lx.pos++
	}
	if r > 0xFF {
		lx.bag.Errorf(diag.Lex, lx.region(start), "wide character exceeds 4 bytes")
	}
	return lx.makeTok(start, token.UByteLit, fmt.Sprintf("%d", r))
}

// lexNumber handles decimal/hex integers with suffix bits, and floats
// (at least one interior '.').
func (lx *Lexer) lexNumber(start int) token.Token {
	isHex := false
	if c, _ := lx.peekByte(); c == '0' {
		if n, ok := lx.at(1); ok && (n == 'x' || n == 'X') {
			isHex = true
			lx.pos += 2
		}
	}
	digitOK := func(c byte) bool {
		if isHex {
			return isHexDigit(c) || c == '_'
		}
		return isDigit(c) || c == '_'
	}
	for {
		c, ok := lx.peekByte()
		if !ok || !digitOK(c) {
			break
		}
		lx.pos++
	}
	isFloat := false
	if !isHex {
		if c, ok := lx.peekByte(); ok && c == '.' {
			if n, ok2 := lx.at(1); ok2 && isDigit(n) {
				isFloat = true
				lx.pos++
				for {
					c, ok := lx.peekByte()
					if !ok || !(isDigit(c) || c == '_') {
						break
					}
					lx.pos++
				}
			}
		}
	}
	if isFloat {
		return lx.makeTok(start, token.FloatLit, lx.src[start:lx.pos])
	}

	var u, b, w, d, wc bool
loop:
	for {
		c, ok := lx.peekByte()
		if !ok {
			break
		}
		switch c {
		case 'u', 'U':
			u = true
		case 'b', 'B':
			b = true
		case 'w', 'W':
			w = true
		case 'd', 'D':
			d = true
		case 'c', 'C':
			wc = true
		default:
			break loop
		}
		lx.pos++
	}
	text := lx.src[start:lx.pos]
	kind, err := suffixKind(u, b, w, d, wc)
	if err != "" {
		lx.bag.Errorf(diag.Lex, lx.region(start), "%s", err)
		return lx.makeTok(start, token.Invalid, text)
	}
	return lx.makeTok(start, kind, text)
}

func suffixKind(u, b, w, d, wc bool) (token.Kind, string) {
	switch {
	case !u && !b && !w && !d && !wc:
		return token.IntLit, ""
	case u && !b && !w && !d && !wc:
		return token.UIntLit, ""
	case b && !u:
		return token.ByteLit, ""
	case b && u:
		return token.UByteLit, ""
	case w && !u:
		return token.ShortLit, ""
	case w && u:
		return token.UShortLit, ""
	case d && !u:
		return token.Int32Lit, ""
	case d && u:
		return token.UInt32Lit, ""
	case wc && !u:
		return token.WideCharLit, ""
	case wc && u:
		return token.WideUCharLit, ""
	}
	return token.Invalid, "unknown numeric suffix"
}

func (lx *Lexer) region(start int) diag.Region {
	line, _ := fileset.LineCol(lx.src, start)
	return diag.Region{File: lx.fileAt(start), Start: start, StartLine: line, EndLine: line}
}

// operator table, longest match first.
var operators = []struct {
	text string
	kind token.Kind
}{
	{"::", token.ColonColon},
	{"->", token.Arrow},
	{"<-", token.LArrow},
	{"<=", token.Le},
	{">=", token.Ge},
	{"==", token.EqEq},
	{"!=", token.Ne},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"^^", token.XorXor},
	{"+=", token.PlusEq},
	{"-=", token.MinusEq},
	{"*=", token.StarEq},
	{"/=", token.SlashEq},
	{"++", token.PlusPlus},
	{"--", token.MinusMinus},
	{"(", token.LParen}, {")", token.RParen},
	{"{", token.LBrace}, {"}", token.RBrace},
	{"[", token.LBracket}, {"]", token.RBracket},
	{",", token.Comma}, {";", token.Semi}, {":", token.Colon},
	{".", token.Dot},
	{"+", token.Plus}, {"-", token.Minus}, {"*", token.Star}, {"/", token.Slash},
	{"&", token.Amp}, {"|", token.Pipe}, {"^", token.Caret}, {"~", token.Tilde},
	{"!", token.Bang},
	{"<", token.Lt}, {">", token.Gt}, {"=", token.Eq},
}

func (lx *Lexer) lexOperator(start int) token.Token {
	rest := lx.src[lx.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			lx.pos += len(op.text)
			return lx.makeTok(start, op.kind, op.text)
		}
	}
	r, size := utf8.DecodeRuneInString(rest)
	lx.pos += size
	lx.bag.Errorf(diag.Lex, lx.region(start), "unknown character %q", r)
	return lx.makeTok(start, token.Invalid, string(r))
}
