package ast

import "github.com/Juhaziel/New-Solar-Language/internal/config"

// Type is implemented by every type-node variant (spec §3 Type row).
type Type interface {
	Node
	typeNode()
	Volatile() bool
	SetVolatile(bool)
}

type typeBase struct {
	base
	isVolatile bool
}

func (t *typeBase) typeNode()          {}
func (t *typeBase) Volatile() bool     { return t.isVolatile }
func (t *typeBase) SetVolatile(v bool) { t.isVolatile = v }

func newTypeBase() typeBase { return typeBase{base: newBase()} }

// VoidType is the `void` type: legal only as a function return type or as
// the inner type of an unsized (pointer) array, per spec §4.4 Pass A.
type VoidType struct{ typeBase }

func NewVoidType() *VoidType { return &VoidType{newTypeBase()} }

// RefType is a bare name referring to a TypeDecl, resolved by the checker
// via ExpandType. Unresolved is flagged L_TYPENOTEXIST (C10).
type RefType struct {
	typeBase
	Name string
}

func NewRefType(name string) *RefType { return &RefType{newTypeBase(), name} }

// IntType is one of the three integer widths.
type IntType struct {
	typeBase
	Width config.IntWidth
}

func NewIntType(w config.IntWidth) *IntType { return &IntType{newTypeBase(), w} }

// ArrayType is `[size?]T`. A nil Size means "array of unknown length",
// which is also what a bare pointer (`*T`) or empty-bracket (`[]T`) parses
// to — per the glossary, "array type with no size" IS a pointer.
type ArrayType struct {
	typeBase
	Inner Type
	Size  Expr // nil => pointer
}

func NewArrayType(inner Type, size Expr) *ArrayType {
	return &ArrayType{newTypeBase(), inner, size}
}

// IsPointer reports whether this array type has no declared size.
func (a *ArrayType) IsPointer() bool { return a.Size == nil }

// FuncType is a function signature: return type, parameter types and
// whether it is variadic. spec §3 requires variadic=true to carry at
// least one fixed parameter; internal/parser enforces that invariant
// (P07) at the point '...' is parsed, in both a func declaration's
// parameter list and a bare func-type's parameter list.
type FuncType struct {
	typeBase
	Ret      Type
	Params   []Type
	Variadic bool
}

func NewFuncType(ret Type, params []Type, variadic bool) *FuncType {
	return &FuncType{newTypeBase(), ret, params, variadic}
}

// MemberData is one struct/union member: name, type, and an optional
// bit-field width. It is not itself a Type, but (like every AST node) it
// carries a span.
type MemberData struct {
	base
	Name string
	Type Type
	Bits *int // nil if no bit-field specifier
}

func NewMemberData(name string, t Type, bits *int) *MemberData {
	return &MemberData{base: newBase(), Name: name, Type: t, Bits: bits}
}

// StructType is a struct record: an ordered, non-empty member list.
type StructType struct {
	typeBase
	Members []*MemberData
}

func NewStructType(members []*MemberData) *StructType {
	return &StructType{newTypeBase(), members}
}

// UnionType is a union record: an ordered, non-empty member list, all
// members sharing the same storage.
type UnionType struct {
	typeBase
	Members []*MemberData
}

func NewUnionType(members []*MemberData) *UnionType {
	return &UnionType{newTypeBase(), members}
}

// MemberByName returns the named member of a struct/union type's member
// list, or nil if absent. Shared by StructType and UnionType lookups in
// the checker (spec §4.4 Access checks).
func MemberByName(members []*MemberData, name string) *MemberData {
	for _, m := range members {
		if m.Name == name {
			return m
		}
	}
	return nil
}
