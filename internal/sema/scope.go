package sema

import (
	"github.com/dolthub/swiss"

	"github.com/euppal/floralc/internal/types"
)

// Binding is what a scope stack entry remembers about one name: its type
// and, for parameters, the register/stack slot the generator will need
// later (spec.md §4.4 "Function parameters populate the function's scope
// at entry").
type Binding struct {
	Name     string
	Type     *types.Type
	IsGlobal bool
	IsParam  bool
	ParamIdx int
}

// scope is one entry of the lexical scope stack: a new scope is pushed for
// each function body, each block, and each `for` init (spec.md §4.4).
// Backed by a swiss map rather than a builtin map, matching the rest of
// the analyzer's process-wide symbol tables.
type scope struct {
	parent *scope
	vars   *swiss.Map[string, *Binding]
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: swiss.NewMap[string, *Binding](8)}
}

// declare adds b to s, reporting false if the name already exists in this
// exact scope (shadowing an outer scope is fine; redeclaring within one is
// not: spec.md §4.4 "invalid redeclaration").
func (s *scope) declare(b *Binding) bool {
	if _, exists := s.vars.Get(b.Name); exists {
		return false
	}
	s.vars.Put(b.Name, b)
	return true
}

// lookup searches innermost-out.
func (s *scope) lookup(name string) (*Binding, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.vars.Get(name); ok {
			return b, true
		}
	}
	return nil, false
}
