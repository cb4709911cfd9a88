// Package handle defines the opaque arena indices that let AST nodes carry
// non-owning references into the symbol table without the ast and symtab
// packages importing one another.
package handle

// Scope indexes into the symbol table's scope arena. A zero value means
// "no scope"; valid handles start at 1 so the zero value stays distinguishable.
type Scope int

// Sym indexes into the symbol table's symbol arena, with the same
// zero-means-absent convention as Scope.
type Sym int

// Invalid is the zero value shared by both handle kinds.
const Invalid = 0

// Valid reports whether h was ever assigned by the builder.
func (h Scope) Valid() bool { return h != Invalid }

// Valid reports whether h was ever assigned by the builder.
func (h Sym) Valid() bool { return h != Invalid }
