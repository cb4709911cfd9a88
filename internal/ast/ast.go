// Package ast defines the typed variant tree built by the parser (spec §3):
// Module/Type/MemberData/Decl/Stmt/Expr node families, every node carrying
// four optional span integers and a non-owning handle back into the symbol
// table.
//
// Grounded on lang/yparse/ast.go's interface-per-category + embedded-base
// idiom (Decl/Stmt/Expr interfaces, baseExpr{ExprType,Loc}), generalized
// from the teacher's three-base-type/by-name-struct system to spec §3's
// full Void/Ref/Int/Array/Func/Struct/Union type variants, and from
// function-local symbol maps to arena handles (see internal/handle),
// per the Design Notes' "back-pointers from AST to symbols" guidance.
package ast

import "github.com/Juhaziel/New-Solar-Language/internal/handle"

// Span brackets a node's source extent. A field value of -1 means unset;
// spec §8 requires all four to be populated on every node reachable from a
// valid Module once parsing completes (cast nodes excepted, which mirror
// their operand's span).
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol      int
}

// Unset is the zero-information span every node starts life with.
var Unset = Span{StartLine: -1, StartCol: -1, EndLine: -1, EndCol: -1}

// Node is implemented by every AST node.
type Node interface {
	Span() Span
	SetSpan(Span)
	// SymRef is the symbol this node resolved to (NameExpr, ConstSymbol
	// lookups, ...). Scope is the scope this node introduces (FuncDecl,
	// CompoundStmt, Module). A node typically sets at most one of the two.
	SymRef() handle.Sym
	SetSymRef(handle.Sym)
	ScopeRef() handle.Scope
	SetScopeRef(handle.Scope)
}

// base is embedded by every concrete node to satisfy Node.
type base struct {
	span  Span
	sym   handle.Sym
	scope handle.Scope
}

func (b *base) Span() Span             { return b.span }
func (b *base) SetSpan(s Span)         { b.span = s }
func (b *base) SymRef() handle.Sym     { return b.sym }
func (b *base) SetSymRef(h handle.Sym) { b.sym = h }
func (b *base) ScopeRef() handle.Scope { return b.scope }
func (b *base) SetScopeRef(h handle.Scope) {
	b.scope = h
}

func newBase() base { return base{span: Unset} }

// Module is the root of the AST. Its ScopeRef is the module (global) scope.
type Module struct {
	base
	Decls []Decl
}

func NewModule() *Module { return &Module{base: newBase()} }
