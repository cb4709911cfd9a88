package ast

import "github.com/Juhaziel/New-Solar-Language/internal/config"

// Expr is implemented by every expression variant (spec §3 Expr row).
type Expr interface {
	Node
	exprNode()
}

type exprBase struct{ base }

func (e *exprBase) exprNode() {}

func newExprBase() exprBase { return exprBase{newBase()} }

// CompoundKind distinguishes the three flavors of compound/init
// expression: `"str"`, `{a, b, ...}` and `struct { name: expr, ... }`.
type CompoundKind int

const (
	CompoundStr CompoundKind = iota
	CompoundArray
	CompoundStructLit
)

// CompoundExpr is an init-expression. For CompoundStr, Str holds the
// decoded, null-terminated bytes (as produced by the lexer). For
// CompoundArray, Elems holds the element expressions.
// For CompoundStructLit, FieldNames/FieldValues are parallel slices of
// the named initializers (spec §4.2 "Init expressions").
type CompoundExpr struct {
	exprBase
	Kind        CompoundKind
	Str         string
	Elems       []Expr
	FieldNames  []string
	FieldValues []Expr
}

func NewCompoundStr(s string) *CompoundExpr {
	return &CompoundExpr{exprBase: newExprBase(), Kind: CompoundStr, Str: s}
}

func NewCompoundArray(elems []Expr) *CompoundExpr {
	return &CompoundExpr{exprBase: newExprBase(), Kind: CompoundArray, Elems: elems}
}

func NewCompoundStruct(names []string, values []Expr) *CompoundExpr {
	return &CompoundExpr{exprBase: newExprBase(), Kind: CompoundStructLit, FieldNames: names, FieldValues: values}
}

// NameExpr is a bare identifier use. The builder resolves it to a symbol
// handle via SymRef; an unresolved name is fatal (ST16, L_USE_BEFORE_DECL).
type NameExpr struct {
	exprBase
	Name string
}

func NewNameExpr(name string) *NameExpr { return &NameExpr{newExprBase(), name} }

// IntExpr is an integer literal.
type IntExpr struct {
	exprBase
	Width config.IntWidth
	Value uint64
}

func NewIntExpr(w config.IntWidth, v uint64) *IntExpr { return &IntExpr{newExprBase(), w, v} }

// StrExpr is a string literal. Utf8 is already concatenated (adjacent
// literals) and null-terminated by the lexer, so its length already
// counts the trailing null.
type StrExpr struct {
	exprBase
	Utf8 string
}

func NewStrExpr(s string) *StrExpr { return &StrExpr{newExprBase(), s} }

// SzExprExpr is `szexpr EXPR`: the size, in bytes, of EXPR's type.
type SzExprExpr struct {
	exprBase
	X Expr
}

func NewSzExprExpr(x Expr) *SzExprExpr { return &SzExprExpr{newExprBase(), x} }

// SzTypeExpr is `sztype TYPE`: the size, in bytes, of TYPE.
type SzTypeExpr struct {
	exprBase
	T Type
}

func NewSzTypeExpr(t Type) *SzTypeExpr { return &SzTypeExpr{newExprBase(), t} }

// CallExpr is `func(args...)`.
type CallExpr struct {
	exprBase
	Func Expr
	Args []Expr
}

func NewCallExpr(fn Expr, args []Expr) *CallExpr { return &CallExpr{newExprBase(), fn, args} }

// IndexExpr is `array[index]`.
type IndexExpr struct {
	exprBase
	Array Expr
	Index Expr
}

func NewIndexExpr(arr, idx Expr) *IndexExpr { return &IndexExpr{newExprBase(), arr, idx} }

// AccessExpr is `record.member`. `a->b` desugars at parse time to
// `AccessExpr{Record: DerefExpr{a}, Member: "b"}` per spec §4.2.
type AccessExpr struct {
	exprBase
	Record     Expr
	MemberName string
}

func NewAccessExpr(record Expr, member string) *AccessExpr {
	return &AccessExpr{newExprBase(), record, member}
}

// CastExpr is `expr as[$] T`. Signed selects the `as$` spelling, which
// requires an integral target type (spec §4.4 Cast checks). Implicit
// casts synthesized by the checker for binary-operand widening are also
// CastExpr values, always with Signed=false, per spec §8.
type CastExpr struct {
	exprBase
	X      Expr
	Type   Type
	Signed bool
}

func NewCastExpr(x Expr, t Type, signed bool) *CastExpr {
	return &CastExpr{newExprBase(), x, t, signed}
}

// DerefExpr is `*expr`.
type DerefExpr struct {
	exprBase
	X Expr
}

func NewDerefExpr(x Expr) *DerefExpr { return &DerefExpr{newExprBase(), x} }

// AddrOfExpr is `&expr`.
type AddrOfExpr struct {
	exprBase
	X Expr
}

func NewAddrOfExpr(x Expr) *AddrOfExpr { return &AddrOfExpr{newExprBase(), x} }

// UnaryExpr is an arithmetic prefix operator: `+ - ~`.
type UnaryExpr struct {
	exprBase
	Op UnaryOp
	X  Expr
}

func NewUnaryExpr(op UnaryOp, x Expr) *UnaryExpr { return &UnaryExpr{newExprBase(), op, x} }

// UnaryCondExpr is `!expr`.
type UnaryCondExpr struct {
	exprBase
	Op CondUnaryOp
	X  Expr
}

func NewUnaryCondExpr(x Expr) *UnaryCondExpr {
	return &UnaryCondExpr{newExprBase(), LogicalNot, x}
}

// BinaryExpr is an arithmetic binary operator application.
type BinaryExpr struct {
	exprBase
	L  Expr
	Op BinaryOp
	R  Expr
}

func NewBinaryExpr(l Expr, op BinaryOp, r Expr) *BinaryExpr {
	return &BinaryExpr{newExprBase(), l, op, r}
}

// BinaryCondExpr is a conditional/comparison binary operator application.
type BinaryCondExpr struct {
	exprBase
	L  Expr
	Op CondBinaryOp
	R  Expr
}

func NewBinaryCondExpr(l Expr, op CondBinaryOp, r Expr) *BinaryCondExpr {
	return &BinaryCondExpr{newExprBase(), l, op, r}
}

// TernaryExpr is `cond ? then : else`.
type TernaryExpr struct {
	exprBase
	Cond, Then, Else Expr
}

func NewTernaryExpr(cond, then, els Expr) *TernaryExpr {
	return &TernaryExpr{newExprBase(), cond, then, els}
}

// AssignExpr is `lhs := rhs` or an augmented form `lhs OP= rhs`. Op is nil
// for plain assignment; otherwise it names the binary operator the
// augmented form desugars to (`lhs := lhs OP rhs`).
type AssignExpr struct {
	exprBase
	LHS, RHS Expr
	Op       *BinaryOp
}

func NewAssignExpr(lhs, rhs Expr, op *BinaryOp) *AssignExpr {
	return &AssignExpr{newExprBase(), lhs, rhs, op}
}

// CommaExpr is a sequence of expressions evaluated left to right; its
// type and value are those of the last element. Only legal at the
// outermost expression position (spec §4.2).
type CommaExpr struct {
	exprBase
	Exprs []Expr
}

func NewCommaExpr(exprs []Expr) *CommaExpr { return &CommaExpr{newExprBase(), exprs} }
