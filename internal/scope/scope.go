// Package scope implements the lexically-scoped symbol environment shared
// by the parser (for resolving identifiers as it builds the tree) and the
// emitter (for resolving them again as it lowers to IR).
package scope

import "github.com/llir/llvm/ir/value"

// Kind distinguishes the entities a name can be bound to.
type Kind int

const (
	// KindVar is a scalar or array variable, backed by an alloca.
	KindVar Kind = iota
	// KindFun is a user-declared function.
	KindFun
	// KindBuiltin is a pre-bound root-scope entity such as print or read.
	KindBuiltin
)

// Entity is whatever a name resolves to: a variable's storage location,
// or a function's (or builtin's) callable value, plus enough shape
// information for the emitter to tell scalars from arrays.
type Entity struct {
	Kind Kind

	// Storage is the alloca backing a KindVar.
	Storage value.Value

	// Callee is the IR function value backing KindFun/KindBuiltin.
	Callee value.Value

	// IsArray records whether this entity has array shape, so Load vs.
	// ArrayLoad (and the analogous Store forms) can be told apart.
	IsArray bool

	// ArrayLen is the total element count for an array-shaped entity
	// (the product of Dims).
	ArrayLen int

	// Dims is the declared shape of an array-shaped entity, outermost
	// dimension first. A plain one-dimensional array has len(Dims) == 1.
	Dims []int

	// ParamCount is the declared parameter count of a KindFun/KindBuiltin
	// entity, checked against a call's argument count.
	ParamCount int
}

// Scope is one lexical block's bindings, chained to its enclosing scope.
// The root Scope (outer == nil) holds the pre-bound print/read entities
// and top-level function declarations.
type Scope struct {
	names map[string]*Entity
	outer *Scope
}

// New creates the root scope.
func New() *Scope {
	return &Scope{names: make(map[string]*Entity)}
}

// Nested creates a new scope enclosed by s, the way entering a function
// body or a block introduces a fresh set of bindings.
func (s *Scope) Nested() *Scope {
	return &Scope{names: make(map[string]*Entity), outer: s}
}

// Insert binds name to ent in this scope, shadowing any binding of the
// same name in an enclosing scope. Re-declaring a name already bound in
// THIS scope overwrites it; that case is rejected earlier, by the parser,
// as a redeclaration error — Insert itself never refuses.
func (s *Scope) Insert(name string, ent *Entity) {
	s.names[name] = ent
}

// GetCurrent looks up name in this scope only, without consulting outer
// scopes. Used to detect redeclaration within the same block.
func (s *Scope) GetCurrent(name string) (*Entity, bool) {
	ent, ok := s.names[name]
	return ent, ok
}

// Get looks up name in this scope, then walks outward through enclosing
// scopes until it is found or the chain is exhausted.
func (s *Scope) Get(name string) (*Entity, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if ent, ok := sc.names[name]; ok {
			return ent, true
		}
	}
	return nil, false
}

// Outer returns the enclosing scope, or nil at the root.
func (s *Scope) Outer() *Scope { return s.outer }
