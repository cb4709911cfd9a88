package ast

// Decl is implemented by every declaration variant (spec §3 Decl row).
// Every declaration carries a free-form description string, populated
// from an adjacent doc comment by the parser (spec §4.2 "Comments").
type Decl interface {
	Node
	declNode()
	Description() string
	SetDescription(string)
}

type declBase struct {
	base
	desc string
}

func (d *declBase) declNode()              {}
func (d *declBase) Description() string    { return d.desc }
func (d *declBase) SetDescription(s string) { d.desc = s }

func newDeclBase() declBase { return declBase{base: newBase()} }

// VarDecl is `[static] let NAME : type [:= init] ;`.
type VarDecl struct {
	declBase
	Name     string
	Type     Type
	Value    Expr // nil if uninitialized
	IsStatic bool
}

func NewVarDecl(name string, t Type, value Expr, isStatic bool) *VarDecl {
	return &VarDecl{newDeclBase(), name, t, value, isStatic}
}

// ConstDecl is `[static] set NAME : type := expr ;`. The initializer must
// be a constant expression (spec §4.4).
type ConstDecl struct {
	declBase
	Name     string
	Type     Type
	Value    Expr
	IsStatic bool
}

func NewConstDecl(name string, t Type, value Expr, isStatic bool) *ConstDecl {
	return &ConstDecl{newDeclBase(), name, t, value, isStatic}
}

// FuncDecl is `[static|inline] func NAME(params) -> (T) (';' | body)`. A
// nil Body means a forward declaration/prototype. ScopeRef, once the
// builder runs, is the function's own scope (its "functable").
type FuncDecl struct {
	declBase
	Name       string
	Type       *FuncType
	ParamNames []string
	Body       *CompoundStmt // nil => prototype only
	IsStatic   bool
	IsInline   bool
}

func NewFuncDecl(name string, t *FuncType, paramNames []string, body *CompoundStmt, isStatic, isInline bool) *FuncDecl {
	return &FuncDecl{newDeclBase(), name, t, paramNames, body, isStatic, isInline}
}

// HasBody reports whether this is a definition rather than a prototype.
func (f *FuncDecl) HasBody() bool { return f.Body != nil }

// TypeDecl is `using NAME := type ;` or a named struct/union definition.
type TypeDecl struct {
	declBase
	Name string
	Type Type
}

func NewTypeDecl(name string, t Type) *TypeDecl {
	return &TypeDecl{newDeclBase(), name, t}
}
