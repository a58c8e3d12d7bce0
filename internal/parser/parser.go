// Package parser implements Floral's recursive-descent parser: a
// declarator-level loop plus a Pratt expression grammar with the
// precedence table of spec.md §4.3, preserved literally (see DESIGN.md
// Open Question 1) even where it looks inconsistent.
package parser

import (
	"strings"

	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/diag"
	"github.com/euppal/floralc/internal/token"
)

// nsDelim is the sentinel prepended to every declaration inside a
// `namespace NAME { … }` block, and used to flatten `::`-qualified names
// (spec.md §4.3 "Namespace qualification").
const nsDelim = "\x1fns\x1f"

// Parser consumes a finished token stream and produces an ast.File,
// collecting diagnostics and re-synchronizing after each error instead of
// aborting (spec.md §4.3).
type Parser struct {
	toks []token.Token
	pos  int
	bag  *diag.Bag

	structNames map[string]bool
	aliasOf     map[string]string // alias name -> RHS name, when RHS is itself a bare name

	recoveries int
	abandoned  bool

	nsStack []string
}

// Parse runs the parser to completion (or abandonment after three
// recovery points) and returns the resulting File plus diagnostics.
func Parse(toks []token.Token) (*ast.File, *diag.Bag) {
	p := &Parser{toks: toks, bag: diag.NewBag()}
	p.prescan()
	f := &ast.File{}
	if len(toks) > 0 {
		f.Reg = diag.Region{File: toks[0].File, Start: toks[0].Offset, StartLine: toks[0].Line, EndLine: toks[len(toks)-1].Line}
	}
	for !p.atEnd() && !p.abandoned {
		d := p.parseTopLevel()
		if d != nil {
			f.Decls = append(f.Decls, d)
			if fd, ok := d.(*ast.FuncDecl); ok && isEligibleMain(fd) {
				f.Main = fd
			}
		}
	}
	f.ErrorCount = len(p.bag.Errors())
	return f, p.bag
}

func isEligibleMain(fd *ast.FuncDecl) bool {
	if fd.Forward || fd.ReceiverOf != "" {
		return false
	}
	if fd.Name != "main" {
		return false
	}
	return len(fd.Params) == 0 || len(fd.Params) == 2
}

// prescan populates the struct-name and alias-name tables used to
// disambiguate `name(` as a call vs. a struct construction (spec.md §4.3),
// by scanning the whole token stream once for `struct NAME` and
// `type NAME = RHS` shapes before real parsing begins.
func (p *Parser) prescan() {
	p.structNames = map[string]bool{}
	p.aliasOf = map[string]string{}
	for i := 0; i+1 < len(p.toks); i++ {
		if p.toks[i].Kind == token.Struct && p.toks[i+1].Kind == token.Ident {
			p.structNames[p.toks[i+1].Text] = true
		}
		if p.toks[i].Kind == token.TypeAlias && p.toks[i+1].Kind == token.Ident {
			name := p.toks[i+1].Text
			if i+3 < len(p.toks) && p.toks[i+2].Kind == token.Eq && p.toks[i+3].Kind == token.Ident {
				p.aliasOf[name] = p.toks[i+3].Text
			}
		}
	}
}

func (p *Parser) namesAStruct(name string) bool {
	seen := map[string]bool{}
	for name != "" && !seen[name] {
		if p.structNames[name] {
			return true
		}
		seen[name] = true
		name = p.aliasOf[name]
	}
	return false
}

// --- token stream helpers ---

func (p *Parser) atEnd() bool { return p.pos >= len(p.toks) || p.toks[p.pos].Kind == token.EOF }

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind, what string) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	t := p.peek()
	hint := ""
	if t.Kind == token.Ident {
		if s := diag.Suggest(t.Text, keywordCandidates); s != "" {
			hint = "did you mean " + s + "?"
		}
	}
	p.bag.Add(diag.Diagnostic{Domain: diag.Parse, Message: "unexpected token: expected " + what + ", got " + t.Kind.String(),
		Region: regionOf(t), FixHint: hint})
	return t, false
}

var keywordCandidates = []string{"func", "global", "let", "var", "struct", "type", "namespace", "return", "if", "while", "for", "using", "const", "sizeof", "unsafe_cast"}

func regionOf(t token.Token) diag.Region {
	return diag.Region{File: t.File, Start: t.Offset, StartLine: t.Line, EndLine: t.Line}
}

func spanRegion(start, end token.Token) diag.Region {
	return diag.Region{File: start.File, Start: start.Offset, StartLine: start.Line, EndLine: end.Line}
}

// recover advances to the next declarator boundary after a parse error,
// abandoning the file after three such recovery points (spec.md §4.3).
func (p *Parser) recover() {
	p.recoveries++
	if p.recoveries >= 3 {
		p.abandoned = true
		return
	}
	for !p.atEnd() {
		switch p.peek().Kind {
		case token.Func, token.Global, token.Struct, token.TypeAlias, token.Namespace, token.Using, token.Static, token.Inline, token.RBrace:
			return
		}
		p.advance()
	}
}

func (p *Parser) qualify(name string) string {
	if len(p.nsStack) == 0 {
		return name
	}
	return strings.Join(p.nsStack, nsDelim) + nsDelim + name
}

// --- top level ---

func (p *Parser) parseTopLevel() ast.Decl {
	switch p.peek().Kind {
	case token.Using:
		p.advance()
		p.expect(token.Ident, "identifier")
		p.match(token.Semi)
		return nil
	case token.Static, token.Inline, token.Predecl, token.StringLit:
		return p.parseAttributed(p.consumeAttrs())
	case token.Func:
		return p.parseFunc(attrs{})
	case token.Global:
		return p.parseGlobal()
	case token.Struct:
		return p.parseStruct(attrs{})
	case token.TypeAlias:
		return p.parseTypeAlias()
	case token.Namespace:
		return p.parseNamespace()
	default:
		t := p.peek()
		p.bag.Errorf(diag.Parse, regionOf(t), "invalid top-level form: unexpected %s", t.Kind.String())
		p.advance()
		p.recover()
		return nil
	}
}

type attrs struct {
	static, inline, predecl bool
	deprecation             string
}

// consumeAttrs also accepts a leading string literal as a deprecation
// message (e.g. `"use Foo instead" func Bar(...);`): the parser-level
// half of SPEC_FULL's deprecation-warning supplemented feature; spec.md
// §3 carries the field but never specifies surface syntax for it, so this
// is this compiler's own choice.
func (p *Parser) consumeAttrs() attrs {
	var a attrs
	for {
		switch p.peek().Kind {
		case token.Static:
			a.static = true
			p.advance()
		case token.Inline:
			a.inline = true
			p.advance()
		case token.Predecl:
			a.predecl = true
			p.advance()
		case token.StringLit:
			a.deprecation = p.advance().Text
		default:
			return a
		}
	}
}

// parseAttributed dispatches on the declarator that follows a run of
// static/inline/predecl attribute keywords.
func (p *Parser) parseAttributed(a attrs) ast.Decl {
	switch p.peek().Kind {
	case token.Func:
		return p.parseFunc(a)
	case token.Global:
		return p.parseGlobalAttr(a)
	case token.Struct:
		return p.parseStruct(a)
	default:
		t := p.peek()
		p.bag.Errorf(diag.Parse, regionOf(t), "expected a declarator after attribute, got %s", t.Kind.String())
		p.advance()
		p.recover()
		return nil
	}
}

func (p *Parser) parseNamespace() ast.Decl {
	start := p.advance() // 'namespace'
	name, _ := p.expect(token.Ident, "identifier")
	if _, ok := p.expect(token.LBrace, "{"); !ok {
		p.recover()
		return nil
	}
	p.nsStack = append(p.nsStack, name.Text)
	var decls []ast.Decl
	for !p.check(token.RBrace) && !p.atEnd() && !p.abandoned {
		d := p.parseTopLevel()
		if d != nil {
			decls = append(decls, d)
		}
	}
	end, _ := p.expect(token.RBrace, "}")
	p.nsStack = p.nsStack[:len(p.nsStack)-1]
	nd := &ast.NamespaceDecl{Name: name.Text, Decls: decls}
	nd.Reg = spanRegion(start, end)
	return nd
}

func (p *Parser) parseFunc(a attrs) ast.Decl {
	start := p.advance() // 'func'
	name, _ := p.expect(token.Ident, "identifier")
	p.expect(token.LParen, "(")
	var params []ast.Param
	for !p.check(token.RParen) && !p.atEnd() {
		pname, _ := p.expect(token.Ident, "identifier")
		p.expect(token.Colon, ":")
		te := p.parseType()
		params = append(params, ast.Param{Reg: regionOf(pname), Name: pname.Text, TypeExpr: te})
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RParen, ")")
	var ret ast.TypeExpr
	if p.match(token.Colon) {
		ret = p.parseType()
	} else {
		ret = ast.TypeExpr{Kind: ast.TEPrimitive, PrimKind: ast.PKVoid}
	}
	fd := &ast.FuncDecl{
		Name: p.qualify(name.Text), Params: params, ReturnTypeExpr: ret,
		Static: a.static, Inline: a.inline, Deprecation: a.deprecation,
	}
	if p.match(token.Semi) {
		fd.Forward = true
		fd.Reg = spanRegion(start, name)
		return fd
	}
	body := p.parseBlock()
	fd.Body = body
	fd.Reg = spanRegion(start, start)
	return fd
}

func (p *Parser) parseGlobal() ast.Decl { return p.parseGlobalAttr(attrs{}) }

func (p *Parser) parseGlobalAttr(a attrs) ast.Decl {
	start := p.advance() // 'global'
	name, _ := p.expect(token.Ident, "identifier")
	gd := &ast.GlobalDecl{Name: p.qualify(name.Text), Static: a.static}
	if p.match(token.Colon) {
		gd.TypeExpr = p.parseType()
	}
	if p.match(token.Eq) {
		gd.Init = ast.Initializer{Kind: ast.InitDirect, Expr: p.parseExpr(0)}
	} else {
		gd.Forward = true
		gd.Init = ast.Initializer{Kind: ast.InitZero}
	}
	end, _ := p.expect(token.Semi, ";")
	gd.Reg = spanRegion(start, end)
	return gd
}

func (p *Parser) parseStruct(a attrs) ast.Decl {
	start := p.advance() // 'struct'
	name, _ := p.expect(token.Ident, "identifier")
	sd := &ast.StructDecl{Name: p.qualify(name.Text)}
	if p.check(token.Semi) {
		end, _ := p.expect(token.Semi, ";")
		sd.Forward = true
		sd.Reg = spanRegion(start, end)
		return sd
	}
	if _, ok := p.expect(token.LBrace, "{"); !ok {
		p.recover()
		return sd
	}
	for !p.check(token.RBrace) && !p.atEnd() {
		switch {
		case p.check(token.Func):
			fd := p.parseFunc(attrs{}).(*ast.FuncDecl)
			fd.ReceiverOf = sd.Name
			if fd.Name == p.qualify(name.Text)+"_new" || fd.Name == name.Text {
				fd.IsCtor = true
				sd.Ctors = append(sd.Ctors, fd)
			} else {
				sd.Funcs = append(sd.Funcs, fd)
			}
		case p.check(token.Ident):
			mname, _ := p.expect(token.Ident, "identifier")
			p.expect(token.Colon, ":")
			te := p.parseType()
			p.expect(token.Semi, ";")
			sd.Members = append(sd.Members, ast.MemberDecl{Reg: regionOf(mname), Name: mname.Text, TypeExpr: te})
		case p.check(token.Behavior):
			// behavior blocks are recognized but rejected (SPEC_FULL §4.2)
			p.bag.Errorf(diag.General, regionOf(p.peek()), "behavior blocks are not supported")
			depth := 0
			for {
				t := p.advance()
				if t.Kind == token.LBrace {
					depth++
				} else if t.Kind == token.RBrace {
					if depth == 0 {
						break
					}
					depth--
				} else if t.Kind == token.EOF {
					break
				}
			}
		default:
			p.bag.Errorf(diag.Parse, regionOf(p.peek()), "unexpected token in struct body: %s", p.peek().Kind.String())
			p.advance()
		}
	}
	end, _ := p.expect(token.RBrace, "}")
	sd.Reg = spanRegion(start, end)
	return sd
}

func (p *Parser) parseTypeAlias() ast.Decl {
	start := p.advance() // 'type'
	name, _ := p.expect(token.Ident, "identifier")
	p.expect(token.Eq, "=")
	te := p.parseType()
	end, _ := p.expect(token.Semi, ";")
	td := &ast.TypeAliasDecl{Name: p.qualify(name.Text), TypeExpr: te}
	td.Reg = spanRegion(start, end)
	return td
}

// --- types ---

var primKeyword = map[token.Kind]ast.PrimitiveKind{
	token.IntType: ast.PKInt, token.UIntType: ast.PKUInt,
	token.CharType: ast.PKChar, token.UCharType: ast.PKUChar,
	token.ShortType: ast.PKShort, token.UShortType: ast.PKUShort,
	token.Int32Type: ast.PKInt32, token.UInt32Type: ast.PKUInt32,
	token.WideCharType: ast.PKWideChar, token.WideUCharType: ast.PKWideUChar,
	token.BoolType: ast.PKBool, token.VoidType: ast.PKVoid,
}

func (p *Parser) parseType() ast.TypeExpr {
	constQ := p.match(token.Const)
	var base ast.TypeExpr
	switch {
	case p.check(token.Amp):
		p.advance()
		elem := p.parseType()
		base = ast.TypeExpr{Kind: ast.TEPointer, Elem: &elem}
	case p.check(token.LBracket):
		p.advance()
		elem := p.parseType()
		p.expect(token.RBracket, "]")
		base = ast.TypeExpr{Kind: ast.TEArray, Elem: &elem, Len: -1} // -1: dynamic array
	case p.check(token.LParen):
		p.advance()
		var elems []ast.TypeExpr
		for !p.check(token.RParen) && !p.atEnd() {
			elems = append(elems, p.parseType())
			if !p.match(token.Comma) {
				break
			}
		}
		p.expect(token.RParen, ")")
		base = ast.TypeExpr{Kind: ast.TETuple, Elems: elems}
	case p.check(token.Struct):
		p.advance()
		name, _ := p.expect(token.Ident, "identifier")
		base = ast.TypeExpr{Kind: ast.TEStructRef, Name: name.Text}
	case isPrimKind(p.peek().Kind):
		pk := primKeyword[p.peek().Kind]
		p.advance()
		base = ast.TypeExpr{Kind: ast.TEPrimitive, PrimKind: pk}
	default:
		name, _ := p.expect(token.Ident, "type name")
		base = ast.TypeExpr{Kind: ast.TEName, Name: name.Text}
	}
	// postfix static array suffix T[N]
	for p.check(token.LBracket) {
		save := p.pos
		p.advance()
		if p.check(token.IntLit) {
			n := p.advance()
			if _, ok := p.expect(token.RBracket, "]"); ok {
				elemCopy := base
				base = ast.TypeExpr{Kind: ast.TEArray, Elem: &elemCopy, Len: atoiSafe(n.Text)}
				continue
			}
		}
		p.pos = save
		break
	}
	base.Const = constQ
	// right-associative function type T -> T
	if p.match(token.Arrow) {
		result := p.parseType()
		return ast.TypeExpr{Kind: ast.TEFunc, Params: []ast.TypeExpr{base}, Result: &result, Const: true}
	}
	return base
}

func isPrimKind(k token.Kind) bool {
	_, ok := primKeyword[k]
	return ok
}

func atoiSafe(s string) int {
	s = strings.ReplaceAll(s, "_", "")
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// --- statements ---

func (p *Parser) parseBlock() *ast.Block {
	start, _ := p.expect(token.LBrace, "{")
	var stmts []ast.Stmt
	for !p.check(token.RBrace) && !p.atEnd() && !p.abandoned {
		s := p.parseStmt()
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	end, _ := p.expect(token.RBrace, "}")
	b := &ast.Block{Stmts: stmts}
	b.Reg = spanRegion(start, end)
	return b
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peek().Kind {
	case token.Semi:
		t := p.advance()
		es := &ast.EmptyStmt{}
		es.Reg = regionOf(t)
		return es
	case token.LBrace:
		return p.parseBlock()
	case token.Let:
		return p.parseLetVar(true)
	case token.Var:
		return p.parseLetVar(false)
	case token.Return:
		return p.parseReturn()
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.For:
		return p.parseFor()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseLetVar(isLet bool) ast.Stmt {
	start := p.advance() // 'let'/'var'
	name, _ := p.expect(token.Ident, "identifier")
	var te *ast.TypeExpr
	if p.match(token.Colon) {
		t := p.parseType()
		te = &t
	}
	var init ast.Initializer
	if p.match(token.Eq) {
		init = ast.Initializer{Kind: ast.InitDirect, Expr: p.parseExpr(0)}
	} else {
		init = ast.Initializer{Kind: ast.InitZero}
	}
	end, _ := p.expect(token.Semi, ";")
	if isLet {
		ls := &ast.LetStmt{Name: name.Text, TypeExpr: te, Init: init}
		ls.Reg = spanRegion(start, end)
		return ls
	}
	vs := &ast.VarStmt{Name: name.Text, TypeExpr: te, Init: init}
	vs.Reg = spanRegion(start, end)
	return vs
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.advance()
	var val ast.Expr
	if !p.check(token.Semi) {
		val = p.parseExpr(0)
	}
	end, _ := p.expect(token.Semi, ";")
	rs := &ast.ReturnStmt{Value: val}
	rs.Reg = spanRegion(start, end)
	return rs
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.advance()
	p.expect(token.LParen, "(")
	cond := p.parseExpr(0)
	p.expect(token.RParen, ")")
	then := p.parseBlock()
	var els ast.Stmt
	if p.match(token.If) {
		p.pos-- // step back so the nested call re-consumes 'if'
		els = p.parseIf()
	} else if p.peek().Kind == token.LBrace {
		els = p.parseBlock()
	}
	is := &ast.IfStmt{Cond: cond, Then: then, Else: els}
	is.Reg = spanRegion(start, start)
	return is
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.advance()
	p.expect(token.LParen, "(")
	cond := p.parseExpr(0)
	p.expect(token.RParen, ")")
	body := p.parseBlock()
	ws := &ast.WhileStmt{Cond: cond, Body: body}
	ws.Reg = spanRegion(start, start)
	return ws
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.advance()
	p.expect(token.LParen, "(")
	var init ast.Stmt
	if !p.check(token.Semi) {
		init = p.parseForInit()
	} else {
		p.advance()
	}
	var check ast.Expr
	if !p.check(token.Semi) {
		check = p.parseExpr(0)
	}
	p.expect(token.Semi, ";")
	var modify ast.Stmt
	if !p.check(token.RParen) {
		modify = p.parseForModify()
	}
	p.expect(token.RParen, ")")
	body := p.parseBlock()
	fs := &ast.ForStmt{Init: init, Check: check, Modify: modify, Body: body}
	fs.Reg = spanRegion(start, start)
	return fs
}

// parseForInit parses `let`/`var`/assignment forms up to (and consuming)
// the terminating ';'.
func (p *Parser) parseForInit() ast.Stmt {
	switch p.peek().Kind {
	case token.Let:
		return p.parseLetVar(true)
	case token.Var:
		return p.parseLetVar(false)
	default:
		return p.parseExprOrAssignStmt()
	}
}

// parseForModify parses one statement without a trailing ';' (the `for`
// header's third clause).
func (p *Parser) parseForModify() ast.Stmt {
	e := p.parseExpr(0)
	if p.isAssignOp(p.peek().Kind) {
		return p.finishAssign(e)
	}
	es := &ast.ExprStmt{Value: e}
	es.Reg = e.Region()
	return es
}

func (p *Parser) isAssignOp(k token.Kind) bool {
	switch k {
	case token.Eq, token.PlusEq, token.MinusEq, token.StarEq, token.SlashEq, token.LArrow:
		return true
	}
	return false
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.peek()
	e := p.parseExpr(0)
	if p.isAssignOp(p.peek().Kind) {
		s := p.finishAssign(e)
		p.expect(token.Semi, ";")
		return s
	}
	end, _ := p.expect(token.Semi, ";")
	_ = start
	es := &ast.ExprStmt{Value: e}
	es.Reg = spanRegionReg(e.Region(), end)
	return es
}

func spanRegionReg(a diag.Region, end token.Token) diag.Region {
	return diag.Region{File: a.File, Start: a.Start, StartLine: a.StartLine, EndLine: end.Line}
}

func (p *Parser) finishAssign(target ast.Expr) ast.Stmt {
	op := p.advance()
	if op.Kind == token.LArrow {
		val := p.parseExpr(0)
		pas := &ast.PointerAssignStmt{Target: target, Value: val}
		pas.Reg = target.Region()
		return pas
	}
	val := p.parseExpr(0)
	s := &ast.AssignStmt{Target: target, Value: val}
	s.Reg = target.Region()
	switch op.Kind {
	case token.PlusEq:
		s.IsCompound, s.Compound = true, ast.OpAddAssign
	case token.MinusEq:
		s.IsCompound, s.Compound = true, ast.OpSubAssign
	case token.StarEq:
		s.IsCompound, s.Compound = true, ast.OpMulAssign
	case token.SlashEq:
		s.IsCompound, s.Compound = true, ast.OpDivAssign
	}
	return s
}

// --- expressions (Pratt) ---

// precedence table, spec.md §4.3, preserved literally.
func infixPrec(k token.Kind) (int, bool) {
	switch k {
	case token.Dot, token.Arrow:
		return 80, true
	case token.LBracket, token.PlusPlus, token.MinusMinus:
		return 60, true
	case token.Star, token.Slash:
		return 50, true
	case token.Plus, token.Minus:
		return 40, true
	case token.AndAnd, token.OrOr, token.XorXor, token.Amp, token.Pipe, token.Caret:
		return 25, true
	case token.Lt, token.Le, token.Gt, token.Ge:
		return 20, true
	case token.EqEq, token.Ne:
		return 10, true
	}
	return 0, false
}

func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parsePrefix()
	for {
		prec, ok := infixPrec(p.peek().Kind)
		if !ok || prec < minPrec {
			break
		}
		left = p.parseInfix(left, prec)
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expr {
	t := p.peek()
	switch t.Kind {
	case token.True, token.False:
		p.advance()
		return &ast.LiteralExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Kind: ast.LitBool, Text: t.Text}
	case token.Null:
		p.advance()
		return &ast.LiteralExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Kind: ast.LitNull, Text: t.Text}
	case token.IntLit, token.UIntLit, token.ByteLit, token.UByteLit, token.ShortLit, token.UShortLit,
		token.Int32Lit, token.UInt32Lit, token.WideCharLit, token.WideUCharLit, token.FloatLit:
		p.advance()
		return &ast.LiteralExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Kind: litKindOf(t.Kind), Text: t.Text}
	case token.StringLit:
		p.advance()
		return &ast.LiteralExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Kind: ast.LitString, Text: t.Text}
	case token.WideStringLit:
		p.advance()
		return &ast.LiteralExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Kind: ast.LitWideString, Text: t.Text, Wide: t.Wide}
	case token.LParen:
		p.advance()
		e := p.parseExpr(0)
		p.expect(token.RParen, ")")
		return e
	case token.Star:
		p.advance()
		inner := p.parseExpr(70)
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Op: ast.OpDeref, Right: inner, Prec: 70}
	case token.Amp:
		p.advance()
		inner := p.parseExpr(70)
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Op: ast.OpAddrOf, Right: inner, Prec: 70}
	case token.Plus:
		p.advance()
		inner := p.parseExpr(60)
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Op: ast.OpPos, Right: inner, Prec: 60}
	case token.Minus:
		p.advance()
		inner := p.parseExpr(60)
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Op: ast.OpNeg, Right: inner, Prec: 60}
	case token.Bang:
		p.advance()
		inner := p.parseExpr(60)
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Op: ast.OpBoolNot, Right: inner, Prec: 60}
	case token.Tilde:
		p.advance()
		inner := p.parseExpr(60)
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Op: ast.OpInvert, Right: inner, Prec: 60}
	case token.PlusPlus:
		p.advance()
		inner := p.parseExpr(60)
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Op: ast.OpPreInc, Right: inner, Prec: 60}
	case token.MinusMinus:
		p.advance()
		inner := p.parseExpr(60)
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Op: ast.OpPreDec, Right: inner, Prec: 60}
	case token.Sizeof:
		p.advance()
		p.expect(token.LParen, "(")
		te := p.parseType()
		p.expect(token.RParen, ")")
		return &ast.SizeofExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Operand: te}
	case token.UnsafeCast:
		p.advance()
		p.expect(token.Lt, "<")
		te := p.parseType()
		p.expect(token.Gt, ">")
		p.expect(token.LParen, "(")
		inner := p.parseExpr(0)
		p.expect(token.RParen, ")")
		return &ast.UnsafeCastExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Target: te, Inner: inner}
	case token.LBracket:
		p.advance()
		var elems []ast.Expr
		for !p.check(token.RBracket) && !p.atEnd() {
			elems = append(elems, p.parseExpr(0))
			if !p.match(token.Comma) {
				break
			}
		}
		p.expect(token.RBracket, "]")
		return &ast.ArrayLitExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Elems: elems}
	case token.Ident:
		return p.parseIdentExpr()
	default:
		p.bag.Errorf(diag.Parse, regionOf(t), "unexpected token in expression: %s", t.Kind.String())
		p.advance()
		return &ast.LiteralExpr{ExprBase: ast.ExprBase{Reg: regionOf(t)}, Kind: ast.LitInt, Text: "0"}
	}
}

func litKindOf(k token.Kind) ast.LiteralKind {
	switch k {
	case token.IntLit:
		return ast.LitInt
	case token.UIntLit:
		return ast.LitUInt
	case token.ByteLit:
		return ast.LitByte
	case token.UByteLit:
		return ast.LitUByte
	case token.ShortLit:
		return ast.LitShort
	case token.UShortLit:
		return ast.LitUShort
	case token.Int32Lit:
		return ast.LitInt32
	case token.UInt32Lit:
		return ast.LitUInt32
	case token.WideCharLit:
		return ast.LitWideChar
	case token.WideUCharLit:
		return ast.LitWideUChar
	default:
		return ast.LitFloat
	}
}

// parseIdentExpr parses a possibly `::`-qualified identifier and
// disambiguates call vs. construct vs. bare symbol (spec.md §4.3).
func (p *Parser) parseIdentExpr() ast.Expr {
	start := p.peek()
	segs := []string{p.advance().Text}
	for p.check(token.ColonColon) {
		p.advance()
		id, _ := p.expect(token.Ident, "identifier")
		segs = append(segs, id.Text)
	}
	name := strings.Join(segs, nsDelim)
	last := segs[len(segs)-1]
	if p.check(token.LParen) {
		if p.namesAStruct(last) {
			return p.parseConstruct(start, last)
		}
		return p.parseCall(start, segs)
	}
	return &ast.SymbolExpr{ExprBase: ast.ExprBase{Reg: regionOf(start)}, Name: name}
}

func (p *Parser) parseCall(start token.Token, segs []string) ast.Expr {
	p.expect(token.LParen, "(")
	var args []ast.Expr
	for !p.check(token.RParen) && !p.atEnd() {
		args = append(args, p.parseExpr(0))
		if !p.match(token.Comma) {
			break
		}
	}
	end, _ := p.expect(token.RParen, ")")
	return &ast.CallExpr{ExprBase: ast.ExprBase{Reg: spanRegion(start, end)}, NamePath: segs, Args: args}
}

func (p *Parser) parseConstruct(start token.Token, structName string) ast.Expr {
	p.expect(token.LParen, "(")
	var args []ast.Expr
	for !p.check(token.RParen) && !p.atEnd() {
		args = append(args, p.parseExpr(0))
		if !p.match(token.Comma) {
			break
		}
	}
	end, _ := p.expect(token.RParen, ")")
	return &ast.ConstructExpr{ExprBase: ast.ExprBase{Reg: spanRegion(start, end)}, StructName: structName, Args: args}
}

func (p *Parser) parseInfix(left ast.Expr, prec int) ast.Expr {
	op := p.advance()
	switch op.Kind {
	case token.Dot, token.Arrow:
		opKind := ast.OpDot
		if op.Kind == token.Arrow {
			opKind = ast.OpArrow
		}
		name, _ := p.expect(token.Ident, "identifier")
		if p.check(token.LParen) {
			call := p.parseCall(name, []string{name.Text}).(*ast.CallExpr)
			call.Receiver = left
			return call
		}
		right := &ast.SymbolExpr{ExprBase: ast.ExprBase{Reg: regionOf(name)}, Name: name.Text}
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: left.Region()}, Left: left, Op: opKind, Right: right, Prec: prec}
	case token.LBracket:
		idx := p.parseExpr(0)
		p.expect(token.RBracket, "]")
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: left.Region()}, Left: left, Op: ast.OpIndex, Right: idx, Prec: prec}
	case token.PlusPlus:
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: left.Region()}, Left: left, Op: ast.OpPostInc, Prec: prec, Postfix: true}
	case token.MinusMinus:
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: left.Region()}, Left: left, Op: ast.OpPostDec, Prec: prec, Postfix: true}
	default:
		opKind := opKindOf(op.Kind)
		right := p.parseExpr(prec + 1)
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{Reg: left.Region()}, Left: left, Op: opKind, Right: right, Prec: prec}
	}
}

func opKindOf(k token.Kind) ast.OpKind {
	switch k {
	case token.Star:
		return ast.OpMul
	case token.Slash:
		return ast.OpDiv
	case token.Plus:
		return ast.OpAdd
	case token.Minus:
		return ast.OpSub
	case token.Lt:
		return ast.OpLt
	case token.Le:
		return ast.OpLe
	case token.Gt:
		return ast.OpGt
	case token.Ge:
		return ast.OpGe
	case token.EqEq:
		return ast.OpEq
	case token.Ne:
		return ast.OpNe
	case token.AndAnd:
		return ast.OpAndAnd
	case token.OrOr:
		return ast.OpOrOr
	case token.XorXor:
		return ast.OpXorXor
	case token.Amp:
		return ast.OpBitAnd
	case token.Pipe:
		return ast.OpBitOr
	case token.Caret:
		return ast.OpBitXor
	}
	return ast.OpAdd
}
