// Package types implements Floral's type system (spec.md §3): a tagged
// variant over primitives, pointers, arrays, tuples, functions, structs,
// and aliases, each carrying a const flag. Per the design note in
// spec.md §9, struct and alias definitions live in a single Registry
// (the "arena") and Types reference them by pointer instead of every
// instantiation owning a private copy: the registry is the sole owner,
// Types merely borrow a stable address into it.
package types

import "fmt"

// Kind tags the variant.
type Kind int

const (
	Invalid Kind = iota
	Incomplete
	Bool
	Void
	Int8
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
	WideChar32
	Pointer
	Array
	Tuple
	Function
	Struct
	Alias
)

// Type is an immutable (after construction) value describing the shape of
// an expression or declaration.
type Type struct {
	Kind  Kind
	Const bool

	Elem   *Type   // Pointer, Array
	Len     int     // Array
	Elems   []*Type // Tuple (1..64)
	Params  []*Type // Function
	Result  *Type   // Function

	StructInfo *StructInfo // Struct
	AliasInfo  *AliasInfo  // Alias
}

// Member is one data member of a struct, with its byte offset within the
// struct's layout already computed (OffsetOf, spec.md §4.4 member access).
type Member struct {
	Name   string
	Type   *Type
	Offset int
}

// FuncMember is a struct method or constructor, mangled the same way as a
// free function but with the struct's address implicitly prepended as the
// first parameter (spec.md SPEC_FULL "Supplemented features").
type FuncMember struct {
	Name     string
	Mangled  string
	Params   []*Type
	Result   *Type
	IsCtor   bool
}

// StructInfo is the registry-owned description of one struct declaration.
type StructInfo struct {
	Name    string
	Members []Member
	Funcs   []FuncMember
	size    int
}

// AliasInfo is the registry-owned description of one `type NAME = TYPE;`.
type AliasInfo struct {
	Name    string
	Aliased *Type
}

// Registry is the arena owning every struct and alias definition in a
// translation unit. Zero value is ready to use.
type Registry struct {
	structs []*StructInfo
	aliases []*AliasInfo
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry { return &Registry{} }

// DeclareStruct registers a new (initially empty) struct and returns its
// StructInfo for the caller to populate with members as the declaration is
// analyzed.
func (r *Registry) DeclareStruct(name string) *StructInfo {
	si := &StructInfo{Name: name}
	r.structs = append(r.structs, si)
	return si
}

// LookupStruct returns the StructInfo for name, or nil.
func (r *Registry) LookupStruct(name string) *StructInfo {
	for _, s := range r.structs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// DeclareAlias registers `type name = aliased;`.
func (r *Registry) DeclareAlias(name string, aliased *Type) *AliasInfo {
	ai := &AliasInfo{Name: name, Aliased: aliased}
	r.aliases = append(r.aliases, ai)
	return ai
}

// LookupAlias returns the AliasInfo for name, or nil.
func (r *Registry) LookupAlias(name string) *AliasInfo {
	for _, a := range r.aliases {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AddMember appends a data member and recomputes the running size so the
// invariant "next offset == largest (offset+size)" holds (spec.md §3 Frame
// invariant, reused for struct layout).
func (s *StructInfo) AddMember(name string, t *Type) Member {
	m := Member{Name: name, Type: t, Offset: s.size}
	s.Members = append(s.Members, m)
	s.size += Sizeof(t)
	return m
}

// Size returns the struct's total byte size.
func (s *StructInfo) Size() int { return s.size }

// OffsetOf returns the byte offset of member name within s, or -1.
func (s *StructInfo) OffsetOf(name string) int {
	for _, m := range s.Members {
		if m.Name == name {
			return m.Offset
		}
	}
	return -1
}

// MemberType returns the type of member name, or nil.
func (s *StructInfo) MemberType(name string) *Type {
	for _, m := range s.Members {
		if m.Name == name {
			return m.Type
		}
	}
	return nil
}

// --- constructors for primitive/compound types ---

func prim(k Kind, constQ bool) *Type { return &Type{Kind: k, Const: constQ} }

func Int(constQ bool) *Type        { return prim(Int64, constQ) }
func UInt(constQ bool) *Type       { return prim(UInt64, constQ) }
func BoolT(constQ bool) *Type      { return prim(Bool, constQ) }
func VoidT() *Type                 { return prim(Void, true) }
func IncompleteT() *Type           { return prim(Incomplete, false) }
func Char(constQ bool) *Type       { return prim(Int8, constQ) }
func UChar(constQ bool) *Type      { return prim(UInt8, constQ) }
func Short(constQ bool) *Type      { return prim(Int16, constQ) }
func UShort(constQ bool) *Type     { return prim(UInt16, constQ) }
func Int32T(constQ bool) *Type     { return prim(Int32, constQ) }
func UInt32T(constQ bool) *Type    { return prim(UInt32, constQ) }
func WideChar(constQ bool) *Type   { return prim(WideChar32, constQ) }

func PointerTo(elem *Type, constQ bool) *Type {
	return &Type{Kind: Pointer, Const: constQ, Elem: elem}
}

func ArrayOf(elem *Type, length int, constQ bool) *Type {
	return &Type{Kind: Array, Const: constQ, Elem: elem, Len: length}
}

func TupleOf(elems []*Type, constQ bool) *Type {
	return &Type{Kind: Tuple, Const: constQ, Elems: elems}
}

func FuncType(params []*Type, result *Type) *Type {
	return &Type{Kind: Function, Const: true, Params: params, Result: result}
}

func StructType(si *StructInfo, constQ bool) *Type {
	return &Type{Kind: Struct, Const: constQ, StructInfo: si}
}

func AliasType(ai *AliasInfo, constQ bool) *Type {
	return &Type{Kind: Alias, Const: constQ, AliasInfo: ai}
}

// Resolve strips alias wrappers, returning the underlying type (preserving
// its own const flag, not the alias's: aliasing never hides constness).
func Resolve(t *Type) *Type {
	for t != nil && t.Kind == Alias {
		t = t.AliasInfo.Aliased
	}
	return t
}

// --- predicates used throughout sema's operator table ---

func (t *Type) IsNumber() bool {
	r := Resolve(t)
	switch r.Kind {
	case Int8, UInt8, Int16, UInt16, Int32, UInt32, Int64, UInt64, WideChar32:
		return true
	}
	return false
}

func (t *Type) IsSigned() bool {
	r := Resolve(t)
	switch r.Kind {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

func (t *Type) IsBool() bool    { return Resolve(t).Kind == Bool }
func (t *Type) IsPointer() bool { return Resolve(t).Kind == Pointer }
func (t *Type) IsArray() bool   { return Resolve(t).Kind == Array }
func (t *Type) IsStruct() bool  { return Resolve(t).Kind == Struct }
func (t *Type) IsVoid() bool    { return Resolve(t).Kind == Void }
func (t *Type) IsIncomplete() bool { return Resolve(t).Kind == Incomplete }

// Indexable reports whether [] may be applied (pointer or array).
func (t *Type) Indexable() bool {
	r := Resolve(t)
	return r.Kind == Pointer || r.Kind == Array
}

// ElemType returns the pointee/element type for Pointer/Array, or nil.
func (t *Type) ElemType() *Type {
	r := Resolve(t)
	if r.Kind == Pointer || r.Kind == Array {
		return r.Elem
	}
	return nil
}

// MostConst returns whichever of l, r is const, preferring l (spec.md §4.4
// MOST_CONST, grounded in original_source/floral/src/Operator.cpp).
func MostConst(l, r *Type) *Type {
	if l.Const {
		return l
	}
	return r
}

// Equal is structural equality: same Kind and payload, ignoring Const
// (callers compare Const separately where it matters, e.g. assignment
// compatibility) per spec.md §9 "type-equality check remains structural".
func Equal(a, b *Type) bool {
	a, b = Resolve(a), Resolve(b)
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Pointer, Array:
		if a.Kind == Array && a.Len != b.Len {
			return false
		}
		return Equal(a.Elem, b.Elem)
	case Tuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case Function:
		if len(a.Params) != len(b.Params) || !Equal(a.Result, b.Result) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	case Struct:
		return a.StructInfo == b.StructInfo
	default:
		return true
	}
}

// Sizeof returns the type's size in bytes, used by sizeof(T), unsafe_cast
// size checks, and struct layout.
func Sizeof(t *Type) int {
	r := Resolve(t)
	switch r.Kind {
	case Bool, Int8, UInt8:
		return 1
	case Int16, UInt16:
		return 2
	case Int32, UInt32, WideChar32:
		return 4
	case Int64, UInt64, Pointer:
		return 8
	case Array:
		return Sizeof(r.Elem) * r.Len
	case Tuple:
		total := 0
		for _, e := range r.Elems {
			total += Sizeof(e)
		}
		return total
	case Struct:
		return r.StructInfo.Size()
	default:
		return 8
	}
}

// String renders a type the way Floral source would spell it, for
// diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	prefix := ""
	if t.Const {
		prefix = "const "
	}
	switch t.Kind {
	case Incomplete:
		return prefix + "?"
	case Bool:
		return prefix + "Bool"
	case Void:
		return prefix + "Void"
	case Int8:
		return prefix + "Char"
	case UInt8:
		return prefix + "UChar"
	case Int16:
		return prefix + "Short"
	case UInt16:
		return prefix + "UShort"
	case Int32:
		return prefix + "Int32"
	case UInt32:
		return prefix + "UInt32"
	case Int64:
		return prefix + "Int"
	case UInt64:
		return prefix + "UInt"
	case WideChar32:
		return prefix + "WideChar"
	case Pointer:
		return prefix + "&" + t.Elem.String()
	case Array:
		return fmt.Sprintf("%s%s[%d]", prefix, t.Elem.String(), t.Len)
	case Tuple:
		s := prefix + "("
		for i, e := range t.Elems {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + ")"
	case Function:
		s := prefix + "("
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += p.String()
		}
		return s + ") -> " + t.Result.String()
	case Struct:
		return prefix + "struct " + t.StructInfo.Name
	case Alias:
		return prefix + t.AliasInfo.Name
	default:
		return "<invalid>"
	}
}
