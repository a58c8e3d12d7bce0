// Package ast defines Floral's syntax tree: Declarations, Statements, and
// Expressions as tagged-variant-style node sets (spec.md §9 design note -
// one Go interface plus concrete structs per category stands in for the
// original's Node/Declaration/Statement/Expression class hierarchy, and a
// type switch stands in for its dynamic_cast chains).
package ast

import (
	"github.com/euppal/floralc/internal/diag"
	"github.com/euppal/floralc/internal/types"
)

// Region is the text span of a node: same shape as diag.Region (spec.md
// §3's "Text region"), reused directly instead of duplicating the struct.
type Region = diag.Region

// File is the top-level aggregate produced by the parser.
type File struct {
	Reg        Region
	Path       string
	Decls      []Decl
	Main       *FuncDecl
	ErrorCount int
}

// Decl is any top-level or namespace-nested declaration.
type Decl interface {
	declNode()
	Region() Region
}

type declBase struct{ Reg Region }

func (d declBase) Region() Region { return d.Reg }
func (declBase) declNode()        {}

// FuncDecl is both a full function definition and a forward declaration
// (Forward == true, Body == nil).
type FuncDecl struct {
	declBase
	Name            string
	Mangled         string
	Params          []Param
	ReturnTypeExpr  TypeExpr
	ReturnType      *types.Type
	Body            *Block
	Static          bool
	Inline          bool
	RegOnly         bool
	Deprecation     string
	StaticAllocSize int
	Forward         bool
	// ReceiverOf is non-empty for struct methods/constructors: the owning
	// struct's name, so sema can prepend an implicit address parameter.
	ReceiverOf string
	IsCtor     bool
}

// Param is one function parameter.
type Param struct {
	Reg      Region
	Name     string
	TypeExpr TypeExpr
	Type     *types.Type
}

// GlobalDecl is a `global NAME[: TYPE] INIT;` or a forward `global NAME: TYPE;`.
type GlobalDecl struct {
	declBase
	Name     string
	TypeExpr TypeExpr
	Type     *types.Type
	Init     Initializer
	Forward  bool
	Static   bool
}

// MemberDecl is one struct data member.
type MemberDecl struct {
	Reg      Region
	Name     string
	TypeExpr TypeExpr
}

// StructDecl declares a struct's shape, methods, and constructors.
type StructDecl struct {
	declBase
	Name    string
	Members []MemberDecl
	Funcs   []*FuncDecl
	Ctors   []*FuncDecl
	Info    *types.StructInfo
	// Forward marks a `predecl struct NAME;` with no body yet (SPEC_FULL
	// supplemented feature): the registry gets the name now, members are
	// filled in by a later full declaration.
	Forward bool
}

// TypeAliasDecl is `type NAME = TYPE;`.
type TypeAliasDecl struct {
	declBase
	Name     string
	TypeExpr TypeExpr
}

// NamespaceDecl nests declarations under a qualifying name; nesting is
// unbounded (SPEC_FULL supplemented feature: original_source nests
// namespaces recursively, the distilled spec only showed one level).
type NamespaceDecl struct {
	declBase
	Name  string
	Decls []Decl
}

// --- Type syntax (pre-resolution) ---

// TypeExprKind tags the syntactic type-expression variant (spec.md §4.3
// "Types syntax").
type TypeExprKind int

const (
	TEInvalid TypeExprKind = iota
	TEPrimitive
	TEPointer
	TEArray
	TETuple
	TEFunc
	TEStructRef
	TEName // alias or not-yet-resolved struct reference
)

// TypeExpr is the parser's syntactic representation of a type, resolved to
// a *types.Type by the static analyzer.
type TypeExpr struct {
	Reg       Region
	Const     bool
	Kind      TypeExprKind
	PrimKind  PrimitiveKind
	Elem      *TypeExpr
	Len       int
	Elems     []TypeExpr
	Params    []TypeExpr
	Result    *TypeExpr
	Name      string
}

// PrimitiveKind enumerates the primitive type names of spec.md §4.2.
type PrimitiveKind int

const (
	PKInt PrimitiveKind = iota
	PKUInt
	PKChar
	PKUChar
	PKShort
	PKUShort
	PKInt32
	PKUInt32
	PKWideChar
	PKWideUChar
	PKBool
	PKVoid
)

// --- Initializers ---

// InitKind is one of {zero, direct, copy} (spec.md §3).
type InitKind int

const (
	InitZero InitKind = iota
	InitDirect
	InitCopy
)

// Initializer pairs a kind with its expression (nil for InitZero).
type Initializer struct {
	Kind InitKind
	Expr Expr
}

// --- Statements ---

// Stmt is any statement node.
type Stmt interface {
	stmtNode()
	Region() Region
}

type stmtBase struct{ Reg Region }

func (s stmtBase) Region() Region { return s.Reg }
func (stmtBase) stmtNode()        {}

type LetStmt struct {
	stmtBase
	Name     string
	TypeExpr *TypeExpr
	Type     *types.Type
	Init     Initializer
	Offset   int // rbp-relative slot, filled by codegen
}

type VarStmt struct {
	stmtBase
	Name     string
	TypeExpr *TypeExpr
	Type     *types.Type
	Init     Initializer
	Offset   int
}

type AssignStmt struct {
	stmtBase
	Target     Expr
	Value      Expr
	IsCompound bool
	Compound   OpKind // meaningful only when IsCompound
}

// PointerAssignStmt is `ptrExpr <- value;` (spec.md §4.5 pointer assignment).
type PointerAssignStmt struct {
	stmtBase
	Target Expr
	Value  Expr
}

type ReturnStmt struct {
	stmtBase
	Value    Expr // nil for `return;`
	Synthetic bool // inserted by the analyzer for a falling-off-the-end void function
}

type ExprStmt struct {
	stmtBase
	Value Expr
}

type IfStmt struct {
	stmtBase
	Cond Expr
	Then *Block
	Else Stmt // *Block, *IfStmt (else-if), or nil
}

type WhileStmt struct {
	stmtBase
	Cond Expr
	Body *Block
}

// ForStmt desugars to Init + while(Check) { Body; Modify; } at codegen time
// (spec.md §4.5), but is kept distinct in the tree for diagnostics.
type ForStmt struct {
	stmtBase
	Init   Stmt
	Check  Expr
	Modify Stmt
	Body   *Block
}

type Block struct {
	stmtBase
	Stmts []Stmt
}

type EmptyStmt struct{ stmtBase }

// --- Expressions ---

// Expr is any expression node. Every expression carries a resolvable Type
// (spec.md §8 invariant 3) and a static-evaluable flag, exposed through the
// embedded ExprBase.
type Expr interface {
	exprNode()
	Region() Region
	TypeOf() *types.Type
	SetType(*types.Type)
	StaticEval() bool
	SetStaticEval(bool)
}

type ExprBase struct {
	Reg    Region
	Type   *types.Type
	Static bool
}

func (e *ExprBase) Region() Region       { return e.Reg }
func (e *ExprBase) TypeOf() *types.Type  { return e.Type }
func (e *ExprBase) SetType(t *types.Type) { e.Type = t }
func (e *ExprBase) StaticEval() bool     { return e.Static }
func (e *ExprBase) SetStaticEval(v bool) { e.Static = v }
func (*ExprBase) exprNode()              {}

// LiteralKind distinguishes the literal token classes of spec.md §3.
type LiteralKind int

const (
	LitBool LiteralKind = iota
	LitInt
	LitUInt
	LitByte
	LitUByte
	LitShort
	LitUShort
	LitInt32
	LitUInt32
	LitWideChar
	LitWideUChar
	LitFloat
	LitString
	LitWideString
	LitNull
)

type LiteralExpr struct {
	ExprBase
	Kind LiteralKind
	Text string
	Wide []rune
}

type SymbolExpr struct {
	ExprBase
	Name string
	// Resolved is set by sema once the symbol is found, distinguishing a
	// local/param from a global for codegen's Location computation.
	IsGlobal bool
	IsParam  bool
	ParamIdx int
}

// BinaryExpr represents every operator application; unary prefix/postfix
// operators are encoded with one side nil (spec.md §3). Prec is the
// operator's precedence per spec.md §4.3's table, carried on the node
// itself (folding the spec's separate "operator component" into the binary
// node, since nothing else ever references it standalone).
type BinaryExpr struct {
	ExprBase
	Left    Expr // nil for a prefix unary
	Op      OpKind
	Right   Expr // nil for a postfix unary
	Prec    int
	Postfix bool // true when Right == nil and Op is ++/--
}

// OpKind is the closed set of operator tokens the analyzer/codegen switch
// on, decoupled from internal/token so ast does not depend on the lexer.
type OpKind int

const (
	OpDot OpKind = iota
	OpArrow
	OpDeref      // unary *
	OpAddrOf     // unary &
	OpPos        // unary +
	OpNeg        // unary -
	OpIndex      // [ ]
	OpPostInc    // postfix ++
	OpPostDec    // postfix --
	OpPreInc     // prefix ++
	OpPreDec     // prefix --
	OpMul
	OpDiv
	OpAdd
	OpSub
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAndAnd
	OpOrOr
	OpXorXor
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBoolNot
	OpInvert
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
)

// CallExpr is a function or method call (spec.md §3). NamePath holds the
// `::`-separated namespace segments as written; Mangled and ResolvedParams
// are filled in by sema once overload resolution picks a candidate.
type CallExpr struct {
	ExprBase
	NamePath       []string
	Args           []Expr
	ResolvedParams []*types.Type
	Mangled        string
	ReturnType     *types.Type
	// Receiver is set when this call desugars from member-call syntax
	// (spec.md §4.4 "a call ... desugars to a method invocation").
	Receiver Expr
}

// ConstructExpr builds a struct value, on the stack or the heap.
type ConstructExpr struct {
	ExprBase
	StructName string
	Args       []Expr
	Heap       bool
}

type ArrayLitExpr struct {
	ExprBase
	Elems []Expr
}

type SizeofExpr struct {
	ExprBase
	Operand TypeExpr
}

type UnsafeCastExpr struct {
	ExprBase
	Target TypeExpr
	Inner  Expr
}
