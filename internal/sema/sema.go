// Package sema implements Floral's static analyzer (spec.md §4.4): name
// resolution through a scope stack, expression typing, const-discipline and
// return-typing checks, function-overload installation by mangled
// signature, and static-evaluability tagging for the code generator.
package sema

import (
	"github.com/dolthub/swiss"

	"github.com/euppal/floralc/internal/ast"
	"github.com/euppal/floralc/internal/diag"
	"github.com/euppal/floralc/internal/ice"
	"github.com/euppal/floralc/internal/types"
)

// Options configures one Analyze call.
type Options struct {
	// DumpTypeTrace records every expression's resolved type into Trace,
	// for the `--dump-type-trace` CLI flag (SPEC_FULL "Supplemented
	// features").
	DumpTypeTrace bool
}

// TraceEntry is one line of a `--dump-type-trace` report.
type TraceEntry struct {
	Region diag.Region
	Expr   string
	Type   string
}

// funcInfo is one entry of the mangled-signature function tables.
type funcInfo struct {
	Decl    *ast.FuncDecl
	Params  []*types.Type
	Result  *types.Type
	Mangled string
}

// globalInfo is one entry of the global-variable tables.
type globalInfo struct {
	Decl *ast.GlobalDecl
	Type *types.Type
}

// Analyzer walks one File and accumulates diagnostics plus the symbol
// tables codegen will need afterward.
type Analyzer struct {
	bag  *diag.Bag
	reg  *types.Registry
	opts Options

	globals    *swiss.Map[string, *globalInfo]
	globalFwd  *swiss.Map[string, *globalInfo]
	funcs      *swiss.Map[string, *funcInfo]
	funcFwd    *swiss.Map[string, *funcInfo]
	warnedDep  *swiss.Map[string, bool] // mangled names already deprecation-warned

	scope *scope
	fn    *ast.FuncDecl // enclosing function, for return-type checks

	Trace []TraceEntry
}

// Analyze type-checks file against reg (the struct/alias registry the
// parser's prescan and this analyzer's struct-collection pass both write
// into) and returns every diagnostic produced, plus the type trace
// accumulated when opts.DumpTypeTrace is set (nil otherwise). reg is
// mutated in place: codegen reads struct layouts and mangled names back
// out of it.
func Analyze(file *ast.File, reg *types.Registry, opts Options) (*diag.Bag, []TraceEntry) {
	a := &Analyzer{
		bag:       diag.NewBag(),
		reg:       reg,
		opts:      opts,
		globals:   swiss.NewMap[string, *globalInfo](16),
		globalFwd: swiss.NewMap[string, *globalInfo](8),
		funcs:     swiss.NewMap[string, *funcInfo](16),
		funcFwd:   swiss.NewMap[string, *funcInfo](8),
		warnedDep: swiss.NewMap[string, bool](8),
	}
	a.collectStructs(file.Decls)
	a.fillStructs(file.Decls)
	a.collectDecls(file.Decls)
	for _, d := range file.Decls {
		a.analyzeDecl(d)
	}
	a.checkMain(file)
	return a.bag, a.Trace
}

// --- struct registration (two passes so mutually-referencing structs
// resolve: pass 1 reserves every name, pass 2 fills in member/method
// shapes once every name is resolvable) ---

func (a *Analyzer) collectStructs(decls []ast.Decl) {
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.StructDecl:
			if existing := a.reg.LookupStruct(n.Name); existing != nil {
				if !n.Forward {
					a.bag.Errorf(diag.Resolution, n.Region(), "invalid redeclaration: struct %q already declared", n.Name)
				}
				continue
			}
			n.Info = a.reg.DeclareStruct(n.Name)
		case *ast.NamespaceDecl:
			a.collectStructs(n.Decls)
		}
	}
}

func (a *Analyzer) fillStructs(decls []ast.Decl) {
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.StructDecl:
			if n.Forward {
				continue
			}
			if n.Info == nil {
				n.Info = a.reg.LookupStruct(n.Name)
			}
			for _, m := range n.Members {
				t, ok := a.resolveType(m.TypeExpr)
				if !ok {
					a.bag.Errorf(diag.Type, m.Reg, "unknown symbol: type %q", m.TypeExpr.Name)
					t = types.IncompleteT()
				}
				n.Info.AddMember(m.Name, t)
			}
		case *ast.NamespaceDecl:
			a.fillStructs(n.Decls)
		}
	}
}

// --- global/function declaration and forward-declaration registration ---

func (a *Analyzer) collectDecls(decls []ast.Decl) {
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.NamespaceDecl:
			a.collectDecls(n.Decls)
		case *ast.GlobalDecl:
			a.registerGlobal(n)
		case *ast.FuncDecl:
			a.registerFunc(n, false)
		case *ast.StructDecl:
			for _, ctor := range n.Ctors {
				a.registerMember(n, ctor, true)
			}
			for _, m := range n.Funcs {
				a.registerMember(n, m, false)
			}
		}
	}
}

func (a *Analyzer) registerGlobal(n *ast.GlobalDecl) {
	var t *types.Type
	if n.TypeExpr.Kind != ast.TEInvalid || n.TypeExpr.Name != "" {
		resolved, ok := a.resolveType(n.TypeExpr)
		if !ok {
			a.bag.Errorf(diag.Type, n.Region(), "unknown symbol: type %q", n.TypeExpr.Name)
			resolved = types.IncompleteT()
		}
		t = resolved
	} else if n.Init.Expr != nil {
		t = a.typeOfExpr(n.Init.Expr, nil)
	} else {
		t = types.IncompleteT()
	}
	n.Type = t
	gi := &globalInfo{Decl: n, Type: t}
	if n.Forward {
		if _, exists := a.globalFwd.Get(n.Name); exists {
			a.bag.Errorf(diag.Resolution, n.Region(), "invalid redeclaration: global %q already forward-declared", n.Name)
			return
		}
		a.globalFwd.Put(n.Name, gi)
		return
	}
	if _, exists := a.globals.Get(n.Name); exists {
		a.bag.Errorf(diag.Resolution, n.Region(), "invalid redeclaration: global %q already declared", n.Name)
		return
	}
	a.globals.Put(n.Name, gi)
}

func (a *Analyzer) paramTypes(params []ast.Param) []*types.Type {
	out := make([]*types.Type, len(params))
	for i, p := range params {
		t, ok := a.resolveType(p.TypeExpr)
		if !ok {
			a.bag.Errorf(diag.Type, p.Reg, "unknown symbol: type %q", p.TypeExpr.Name)
			t = types.IncompleteT()
		}
		out[i] = t
	}
	return out
}

func (a *Analyzer) registerFunc(n *ast.FuncDecl, isMember bool) {
	params := a.paramTypes(n.Params)
	for i := range n.Params {
		n.Params[i].Type = params[i]
	}
	result, ok := a.resolveType(n.ReturnTypeExpr)
	if !ok {
		a.bag.Errorf(diag.Type, n.Region(), "unknown symbol: return type %q", n.ReturnTypeExpr.Name)
		result = types.IncompleteT()
	}
	n.ReturnType = result
	mangled := Mangle(n.Name, params)
	n.Mangled = mangled
	fi := &funcInfo{Decl: n, Params: params, Result: result, Mangled: mangled}
	if n.Forward {
		if _, exists := a.funcFwd.Get(mangled); exists {
			a.bag.Errorf(diag.Resolution, n.Region(), "invalid redeclaration: function %q already forward-declared", mangled)
			return
		}
		a.funcFwd.Put(mangled, fi)
		return
	}
	if _, exists := a.funcs.Get(mangled); exists {
		a.bag.Errorf(diag.Resolution, n.Region(), "invalid redeclaration: function %q already declared", mangled)
		return
	}
	a.funcs.Put(mangled, fi)
}

func (a *Analyzer) registerMember(sd *ast.StructDecl, fd *ast.FuncDecl, isCtor bool) {
	params := a.paramTypes(fd.Params)
	for i := range fd.Params {
		fd.Params[i].Type = params[i]
	}
	result, ok := a.resolveType(fd.ReturnTypeExpr)
	if !ok {
		result = types.IncompleteT()
	}
	if isCtor {
		result = types.StructType(sd.Info, false)
	}
	fd.ReturnType = result
	mangled := MangleMember(sd.Name, fd.Name, params, isCtor)
	fd.Mangled = mangled
	if sd.Info != nil {
		sd.Info.Funcs = append(sd.Info.Funcs, types.FuncMember{
			Name: fd.Name, Mangled: mangled, Params: params, Result: result, IsCtor: isCtor,
		})
	}
	if _, exists := a.funcs.Get(mangled); exists {
		a.bag.Errorf(diag.Resolution, fd.Region(), "invalid redeclaration: function %q already declared", mangled)
		return
	}
	a.funcs.Put(mangled, &funcInfo{Decl: fd, Params: params, Result: result, Mangled: mangled})
}

// --- type-expression resolution ---

func (a *Analyzer) resolveType(te ast.TypeExpr) (*types.Type, bool) {
	switch te.Kind {
	case ast.TEPrimitive:
		return primitiveType(te.PrimKind, te.Const), true
	case ast.TEPointer:
		elem, ok := a.resolveType(*te.Elem)
		if !ok {
			return nil, false
		}
		return types.PointerTo(elem, te.Const), true
	case ast.TEArray:
		elem, ok := a.resolveType(*te.Elem)
		if !ok {
			return nil, false
		}
		if te.Len < 0 {
			// `[T]` dynamic array: decays to a pointer to the element, the
			// same way a parameter array decays in the calling convention
			// (SPEC_FULL's resolution of an open question: spec.md §4.3
			// names the syntax but never says what it resolves to).
			return types.PointerTo(elem, te.Const), true
		}
		return types.ArrayOf(elem, te.Len, te.Const), true
	case ast.TETuple:
		elems := make([]*types.Type, len(te.Elems))
		for i, e := range te.Elems {
			t, ok := a.resolveType(e)
			if !ok {
				return nil, false
			}
			elems[i] = t
		}
		return types.TupleOf(elems, te.Const), true
	case ast.TEFunc:
		params := make([]*types.Type, len(te.Params))
		for i, p := range te.Params {
			t, ok := a.resolveType(p)
			if !ok {
				return nil, false
			}
			params[i] = t
		}
		result, ok := a.resolveType(*te.Result)
		if !ok {
			return nil, false
		}
		return types.FuncType(params, result), true
	case ast.TEStructRef:
		si := a.reg.LookupStruct(te.Name)
		if si == nil {
			return nil, false
		}
		return types.StructType(si, te.Const), true
	case ast.TEName:
		if ai := a.reg.LookupAlias(te.Name); ai != nil {
			t := types.AliasType(ai, te.Const)
			return t, true
		}
		if si := a.reg.LookupStruct(te.Name); si != nil {
			return types.StructType(si, te.Const), true
		}
		return nil, false
	default:
		return nil, false
	}
}

func primitiveType(pk ast.PrimitiveKind, constQ bool) *types.Type {
	switch pk {
	case ast.PKInt:
		return types.Int(constQ)
	case ast.PKUInt:
		return types.UInt(constQ)
	case ast.PKChar:
		return types.Char(constQ)
	case ast.PKUChar:
		return types.UChar(constQ)
	case ast.PKShort:
		return types.Short(constQ)
	case ast.PKUShort:
		return types.UShort(constQ)
	case ast.PKInt32:
		return types.Int32T(constQ)
	case ast.PKUInt32:
		return types.UInt32T(constQ)
	case ast.PKWideChar, ast.PKWideUChar:
		// types.Kind has a single WideChar32 variant; Floral's wide-signed
		// and wide-unsigned character keywords both resolve to it, so they
		// share both layout and the "wch" mangling code.
		return types.WideChar(constQ)
	case ast.PKBool:
		return types.BoolT(constQ)
	case ast.PKVoid:
		return types.VoidT()
	default:
		ice.Unreachablef("unhandled primitive kind %d", pk)
		return nil
	}
}

// --- declaration analysis ---

func (a *Analyzer) analyzeDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.NamespaceDecl:
		for _, c := range n.Decls {
			a.analyzeDecl(c)
		}
	case *ast.FuncDecl:
		a.analyzeFunc(n)
	case *ast.GlobalDecl:
		a.analyzeGlobal(n)
	case *ast.StructDecl:
		for _, ctor := range n.Ctors {
			a.analyzeFunc(ctor)
		}
		for _, m := range n.Funcs {
			a.analyzeFunc(m)
		}
	case *ast.TypeAliasDecl:
		if _, ok := a.resolveType(n.TypeExpr); !ok {
			a.bag.Errorf(diag.Type, n.Region(), "unknown symbol: type %q", n.TypeExpr.Name)
		}
	}
}

func (a *Analyzer) analyzeGlobal(n *ast.GlobalDecl) {
	if n.Forward || n.Init.Expr == nil {
		return
	}
	et := a.typeOfExpr(n.Init.Expr, nil)
	if n.Type == nil || n.Type.IsIncomplete() {
		n.Type = et
	} else if !types.Equal(n.Type, et) {
		a.bag.Errorf(diag.Type, n.Region(), "type mismatch: global %q declared %s, initializer is %s", n.Name, n.Type, et)
	}
	if !n.Init.Expr.StaticEval() {
		a.bag.Errorf(diag.Type, n.Region(), "type mismatch: global initializer for %q is not static-evaluable", n.Name)
	}
	// A global's stored value is always const (spec.md §4.4 const
	// discipline extends to module-scope the same way `let` forces it).
	n.Type.Const = true
}

func (a *Analyzer) analyzeFunc(n *ast.FuncDecl) {
	if n.Forward || n.Body == nil {
		return
	}
	prevFn := a.fn
	a.fn = n
	a.scope = newScope(nil)
	if n.ReceiverOf != "" {
		si := a.reg.LookupStruct(n.ReceiverOf)
		recvType := types.PointerTo(types.StructType(si, false), false)
		a.scope.declare(&Binding{Name: "self", Type: recvType})
	}
	for i, p := range n.Params {
		a.scope.declare(&Binding{Name: p.Name, Type: p.Type, IsParam: true, ParamIdx: i})
	}
	a.analyzeBlock(n.Body)
	if n.ReturnType != nil && n.ReturnType.IsVoid() {
		if !endsInReturn(n.Body) {
			rs := &ast.ReturnStmt{Synthetic: true}
			n.Body.Stmts = append(n.Body.Stmts, rs)
		}
	}
	a.scope = nil
	a.fn = prevFn
}

func endsInReturn(b *ast.Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	_, ok := b.Stmts[len(b.Stmts)-1].(*ast.ReturnStmt)
	return ok
}

// --- statement analysis ---

func (a *Analyzer) analyzeBlock(b *ast.Block) {
	a.scope = newScope(a.scope)
	for _, s := range b.Stmts {
		a.analyzeStmt(s)
	}
	a.scope = a.scope.parent
}

func (a *Analyzer) analyzeStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		a.analyzeLetVar(n.Name, n.TypeExpr, &n.Type, &n.Init, true, n.Region())
	case *ast.VarStmt:
		a.analyzeLetVar(n.Name, n.TypeExpr, &n.Type, &n.Init, false, n.Region())
	case *ast.AssignStmt:
		a.analyzeAssign(n)
	case *ast.PointerAssignStmt:
		a.analyzePointerAssign(n)
	case *ast.ReturnStmt:
		a.analyzeReturn(n)
	case *ast.ExprStmt:
		a.typeOfExpr(n.Value, nil)
	case *ast.IfStmt:
		ct := a.typeOfExpr(n.Cond, nil)
		if !ct.IsBool() {
			a.bag.Errorf(diag.Type, n.Region(), "type mismatch: if condition is %s, want Bool", ct)
		}
		a.analyzeBlock(n.Then)
		if n.Else != nil {
			a.analyzeStmt(n.Else)
		}
	case *ast.WhileStmt:
		ct := a.typeOfExpr(n.Cond, nil)
		if !ct.IsBool() {
			a.bag.Errorf(diag.Type, n.Region(), "type mismatch: while condition is %s, want Bool", ct)
		}
		a.analyzeBlock(n.Body)
	case *ast.ForStmt:
		a.scope = newScope(a.scope)
		if n.Init != nil {
			a.analyzeStmt(n.Init)
		}
		if n.Check != nil {
			ct := a.typeOfExpr(n.Check, nil)
			if !ct.IsBool() {
				a.bag.Errorf(diag.Type, n.Region(), "type mismatch: for condition is %s, want Bool", ct)
			}
		}
		if n.Modify != nil {
			a.analyzeStmt(n.Modify)
		}
		a.analyzeBlock(n.Body)
		a.scope = a.scope.parent
	case *ast.Block:
		a.analyzeBlock(n)
	case *ast.EmptyStmt:
		// nothing to type
	default:
		ice.Unreachablef("unhandled statement kind %T", s)
	}
}

func (a *Analyzer) analyzeLetVar(name string, te *ast.TypeExpr, outType **types.Type, init *ast.Initializer, isLet bool, reg diag.Region) {
	var declared *types.Type
	if te != nil {
		t, ok := a.resolveType(*te)
		if !ok {
			a.bag.Errorf(diag.Type, reg, "unknown symbol: type %q", te.Name)
			t = types.IncompleteT()
		}
		declared = t
	}
	var final *types.Type
	switch init.Kind {
	case ast.InitZero:
		final = declared
		if final == nil {
			ice.Unreachable("zero-init local with no declared type")
		}
	case ast.InitDirect:
		et := a.typeOfExpr(init.Expr, declared)
		if declared != nil && !types.Equal(declared, et) {
			a.bag.Errorf(diag.Type, reg, "type mismatch: %q declared %s, initializer is %s", name, declared, et)
		}
		final = et
		if declared != nil {
			final = declared
		}
		if isLet {
			final = constify(final)
		}
	case ast.InitCopy:
		et := a.typeOfExpr(init.Expr, declared)
		if declared != nil && !types.Equal(declared, et) {
			a.bag.Errorf(diag.Type, reg, "type mismatch: %q declared %s, initializer is %s", name, declared, et)
		}
		final = et
		if declared != nil {
			final = declared
		}
		if isLet {
			final = constify(final)
		} else if et.IsNumber() || et.IsBool() {
			final = unconstify(final)
		}
	}
	*outType = final
	a.scope.declare(&Binding{Name: name, Type: final})
}

func constify(t *types.Type) *types.Type {
	c := *t
	c.Const = true
	return &c
}

func unconstify(t *types.Type) *types.Type {
	c := *t
	c.Const = false
	return &c
}

func (a *Analyzer) analyzeAssign(n *ast.AssignStmt) {
	tt := a.typeOfExpr(n.Target, nil)
	vt := a.typeOfExpr(n.Value, tt)
	if tt.Const {
		a.bag.Errorf(diag.Type, n.Region(), "assignment to const: cannot assign to a const lvalue")
		return
	}
	if n.IsCompound {
		result, ok := binaryResult(n.Compound, tt, vt)
		if !ok {
			a.bag.Errorf(diag.Type, n.Region(), "no overload: compound assignment has no overload for %s and %s", tt, vt)
			return
		}
		if !types.Equal(result, tt) {
			a.bag.Errorf(diag.Type, n.Region(), "type mismatch: compound assignment result %s does not match lhs %s", result, tt)
		}
		return
	}
	if !types.Equal(tt, vt) {
		a.bag.Errorf(diag.Type, n.Region(), "type mismatch: assigning %s to lvalue of type %s", vt, tt)
	}
}

func (a *Analyzer) analyzePointerAssign(n *ast.PointerAssignStmt) {
	tt := a.typeOfExpr(n.Target, nil)
	if !tt.IsPointer() {
		a.bag.Errorf(diag.Type, n.Region(), "type mismatch: <- target is %s, want a pointer", tt)
		return
	}
	pointee := tt.ElemType()
	if pointee.Const {
		a.bag.Errorf(diag.Type, n.Region(), "assignment to const: pointee of %s is const", tt)
		return
	}
	vt := a.typeOfExpr(n.Value, pointee)
	if !types.Equal(pointee, vt) {
		a.bag.Errorf(diag.Type, n.Region(), "type mismatch: assigning %s through pointer to %s", vt, pointee)
	}
}

func (a *Analyzer) analyzeReturn(n *ast.ReturnStmt) {
	if a.fn == nil {
		ice.Unreachable("return statement analyzed outside a function")
	}
	want := a.fn.ReturnType
	if n.Value == nil {
		if want != nil && !want.IsVoid() {
			a.bag.Errorf(diag.Type, n.Region(), "return type mismatch: function %q returns %s, got nothing", a.fn.Name, want)
		}
		return
	}
	got := a.typeOfExpr(n.Value, want)
	if want != nil && !types.Equal(want, got) {
		a.bag.Errorf(diag.Type, n.Region(), "return type mismatch: function %q returns %s, got %s", a.fn.Name, want, got)
	}
}

// --- expression typing ---

// typeOfExpr types e bottom-up, recording a type trace entry when enabled
// and recursing through every ast.Expr variant. want is an optional type
// hint (the lvalue/declared type), used only by array-literal typing (an
// empty literal takes the wanted array type); it never overrides a
// non-empty expression's own computed type.
func (a *Analyzer) typeOfExpr(e ast.Expr, want *types.Type) *types.Type {
	t := a.typeOfExprInner(e, want)
	e.SetType(t)
	if a.opts.DumpTypeTrace {
		a.Trace = append(a.Trace, TraceEntry{Region: e.Region(), Expr: exprLabel(e), Type: t.String()})
	}
	return t
}

func exprLabel(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.SymbolExpr:
		return n.Name
	case *ast.CallExpr:
		if len(n.NamePath) > 0 {
			return n.NamePath[len(n.NamePath)-1] + "(...)"
		}
		return "call(...)"
	case *ast.ConstructExpr:
		return n.StructName + "{...}"
	default:
		return "expr"
	}
}

func (a *Analyzer) typeOfExprInner(e ast.Expr, want *types.Type) *types.Type {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		t := literalType(n.Kind)
		n.SetStaticEval(true)
		return t
	case *ast.SymbolExpr:
		return a.typeOfSymbol(n)
	case *ast.BinaryExpr:
		return a.typeOfBinary(n)
	case *ast.CallExpr:
		return a.typeOfCall(n)
	case *ast.ConstructExpr:
		return a.typeOfConstruct(n)
	case *ast.ArrayLitExpr:
		return a.typeOfArrayLit(n, want)
	case *ast.SizeofExpr:
		n.SetStaticEval(true)
		return types.UInt(true)
	case *ast.UnsafeCastExpr:
		return a.typeOfUnsafeCast(n)
	default:
		ice.Unreachablef("unhandled expression kind %T", e)
		return nil
	}
}

func literalType(k ast.LiteralKind) *types.Type {
	switch k {
	case ast.LitBool:
		return types.BoolT(true)
	case ast.LitInt:
		return types.Int(true)
	case ast.LitUInt:
		return types.UInt(true)
	case ast.LitByte:
		return types.Char(true)
	case ast.LitUByte:
		return types.UChar(true)
	case ast.LitShort:
		return types.Short(true)
	case ast.LitUShort:
		return types.UShort(true)
	case ast.LitInt32:
		return types.Int32T(true)
	case ast.LitUInt32:
		return types.UInt32T(true)
	case ast.LitWideChar, ast.LitWideUChar:
		return types.WideChar(true)
	case ast.LitFloat:
		// Floral's number family is integral per spec.md §3; a float
		// literal is stored in the widest integral slot until a richer
		// numeric tower is specified.
		return types.Int(true)
	case ast.LitString:
		return types.PointerTo(types.Char(true), true)
	case ast.LitWideString:
		return types.PointerTo(types.WideChar(true), true)
	case ast.LitNull:
		return types.PointerTo(types.VoidT(), true)
	default:
		ice.Unreachablef("unhandled literal kind %d", k)
		return nil
	}
}

func (a *Analyzer) typeOfSymbol(n *ast.SymbolExpr) *types.Type {
	if a.scope != nil {
		if b, ok := a.scope.lookup(n.Name); ok {
			n.IsParam = b.IsParam
			n.ParamIdx = b.ParamIdx
			if b.IsGlobal {
				n.IsGlobal = true
			}
			if lo, ok := globalStaticEval(b); ok {
				n.SetStaticEval(lo)
			}
			return b.Type
		}
	}
	if gi, ok := a.globals.Get(n.Name); ok {
		n.IsGlobal = true
		n.SetStaticEval(gi.Decl.Init.Expr == nil || gi.Decl.Init.Expr.StaticEval())
		return gi.Type
	}
	if gi, ok := a.globalFwd.Get(n.Name); ok {
		n.IsGlobal = true
		return gi.Type
	}
	suggestion := diag.Suggest(n.Name, a.knownSymbolNames())
	hint := ""
	if suggestion != "" {
		hint = "did you mean " + suggestion + "?"
	}
	a.bag.Add(diag.Diagnostic{Domain: diag.Resolution, Region: n.Region(),
		Message: "unknown symbol: " + n.Name, FixHint: hint})
	return types.IncompleteT()
}

// globalStaticEval is a narrow helper: local let/var bindings carry no
// static-eval bit of their own (only literals and global references do,
// per spec.md §4.4), so this always reports false for non-global bindings.
func globalStaticEval(b *Binding) (bool, bool) {
	if b.IsGlobal {
		return true, true
	}
	return false, false
}

func (a *Analyzer) knownSymbolNames() []string {
	var names []string
	a.globals.Iter(func(k string, _ *globalInfo) bool { names = append(names, k); return false })
	a.funcs.Iter(func(k string, _ *funcInfo) bool { names = append(names, k); return false })
	return names
}

func (a *Analyzer) typeOfBinary(n *ast.BinaryExpr) *types.Type {
	var lt, rt *types.Type
	if n.Left != nil {
		lt = a.typeOfExpr(n.Left, nil)
	}
	if n.Right != nil {
		rt = a.typeOfExpr(n.Right, nil)
	}
	var result *types.Type
	var ok bool
	if n.Left == nil || n.Right == nil {
		operand := lt
		if operand == nil {
			operand = rt
		}
		result, ok = unaryResult(n.Op, operand)
	} else {
		result, ok = binaryResult(n.Op, lt, rt)
	}
	if !ok {
		a.bag.Errorf(diag.Type, n.Region(), "no overload: operator has no overload for the given operand type(s)")
		return types.IncompleteT()
	}
	leftStatic := n.Left == nil || n.Left.StaticEval()
	rightStatic := n.Right == nil || n.Right.StaticEval()
	n.SetStaticEval(leftStatic && rightStatic)
	return result
}

func (a *Analyzer) typeOfCall(n *ast.CallExpr) *types.Type {
	argTypes := make([]*types.Type, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i] = a.typeOfExpr(arg, nil)
	}
	name := n.NamePath[len(n.NamePath)-1]
	if n.Receiver != nil {
		rt := a.typeOfExpr(n.Receiver, nil)
		recv := types.Resolve(rt)
		structName := ""
		if recv.Kind == types.Pointer && types.Resolve(recv.Elem).Kind == types.Struct {
			structName = types.Resolve(recv.Elem).StructInfo.Name
		} else if recv.Kind == types.Struct {
			structName = recv.StructInfo.Name
		}
		mangled := MangleMember(structName, name, argTypes, false)
		return a.lookupFunc(n, mangled, argTypes)
	}
	mangled := Mangle(qualifiedJoin(n.NamePath), argTypes)
	return a.lookupFunc(n, mangled, argTypes)
}

func qualifiedJoin(path []string) string {
	if len(path) == 1 {
		return path[0]
	}
	s := path[0]
	for _, p := range path[1:] {
		s += "\x1fns\x1f" + p
	}
	return s
}

func (a *Analyzer) lookupFunc(n *ast.CallExpr, mangled string, argTypes []*types.Type) *types.Type {
	fi, ok := a.funcs.Get(mangled)
	if !ok {
		fi, ok = a.funcFwd.Get(mangled)
	}
	if !ok {
		a.bag.Errorf(diag.Resolution, n.Region(), "unknown symbol: no such overload %q", mangled)
		return types.IncompleteT()
	}
	if fi.Decl.Deprecation != "" {
		if _, warned := a.warnedDep.Get(mangled); !warned {
			a.warnedDep.Put(mangled, true)
			a.bag.Warnf(n.Region(), "%s is deprecated: %s", fi.Decl.Name, fi.Decl.Deprecation)
		}
	}
	n.Mangled = mangled
	n.ResolvedParams = fi.Params
	n.ReturnType = fi.Result
	n.SetStaticEval(false)
	return fi.Result
}

func (a *Analyzer) typeOfConstruct(n *ast.ConstructExpr) *types.Type {
	si := a.reg.LookupStruct(n.StructName)
	if si == nil {
		a.bag.Errorf(diag.Resolution, n.Region(), "unknown symbol: struct %q", n.StructName)
		return types.IncompleteT()
	}
	argTypes := make([]*types.Type, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i] = a.typeOfExpr(arg, nil)
	}
	mangled := MangleMember(n.StructName, "new", argTypes, true)
	if _, ok := a.funcs.Get(mangled); !ok {
		a.bag.Errorf(diag.Resolution, n.Region(), "unknown symbol: no such constructor %q", mangled)
	}
	n.SetStaticEval(false)
	return types.StructType(si, false)
}

func (a *Analyzer) typeOfArrayLit(n *ast.ArrayLitExpr, want *types.Type) *types.Type {
	if len(n.Elems) == 0 {
		if want != nil && want.IsArray() {
			return want
		}
		return types.ArrayOf(types.IncompleteT(), 0, false)
	}
	elemT := a.typeOfExpr(n.Elems[0], nil)
	allStatic := n.Elems[0].StaticEval()
	for _, e := range n.Elems[1:] {
		et := a.typeOfExpr(e, nil)
		if !types.Equal(et, elemT) {
			a.bag.Errorf(diag.Type, e.Region(), "type mismatch: array literal element is %s, want %s", et, elemT)
		}
		allStatic = allStatic && e.StaticEval()
	}
	n.SetStaticEval(allStatic)
	return types.ArrayOf(elemT, len(n.Elems), false)
}

func (a *Analyzer) typeOfUnsafeCast(n *ast.UnsafeCastExpr) *types.Type {
	target, ok := a.resolveType(n.Target)
	if !ok {
		a.bag.Errorf(diag.Type, n.Region(), "unknown symbol: type %q", n.Target.Name)
		target = types.IncompleteT()
	}
	innerT := a.typeOfExpr(n.Inner, nil)
	if types.Sizeof(innerT) != types.Sizeof(target) {
		a.bag.Errorf(diag.Type, n.Region(), "type mismatch: unsafe_cast size mismatch (%d vs %d bytes)", types.Sizeof(innerT), types.Sizeof(target))
	}
	n.SetStaticEval(n.Inner.StaticEval())
	return target
}

// --- entry point validation ---

func (a *Analyzer) checkMain(file *ast.File) {
	if file.Main == nil {
		return
	}
	if !IsEntryPoint(file.Main.Mangled) {
		a.bag.Errorf(diag.Type, file.Main.Region(), "main signature mismatch: %q is not a valid entry point signature", file.Main.Mangled)
	}
}
