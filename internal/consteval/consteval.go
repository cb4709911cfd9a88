// Package consteval specifies the contract the checker needs from a
// constant-expression evaluator (spec §1: "a stub in the source... we
// specify only the contract"). The real simplifier — full arithmetic
// folding, overflow-aware truncation matching INT_SIZES, propagation
// through arbitrary constant subexpressions — is the external
// collaborator the spec scopes out. What ships here is the minimal
// literal/const-symbol arithmetic needed to compare array-size
// expressions without inventing the rest of that collaborator's behavior.
//
// Grounded on lang/ylex/lexer.go's parseConstExpr/parseConstOr/
// parseConstAnd/parseConstCmp/parseConstAdd/parseConstMult chain (a
// precedence-climbing evaluator over `#if` directive expressions),
// adapted from the teacher's token-cursor recursion to recursion over an
// already-parsed ast.Expr tree, since this module's "constant expression"
// lives in the source grammar, not in a preprocessor layer.
package consteval

import (
	"github.com/Juhaziel/New-Solar-Language/internal/ast"
	"github.com/Juhaziel/New-Solar-Language/internal/handle"
)

// Evaluator is what internal/sem depends on to fold a constant expression
// to an integer value; its one caller folds the lengths of two sized array
// types to decide whether they are equivalent.
type Evaluator interface {
	// Eval attempts to fold e, resolved within scope, to an integer. ok is
	// false when e is not foldable by this implementation (spec §1: the
	// real evaluator is external; this one only handles the literal/
	// const-symbol/arithmetic core described in package docs).
	Eval(scope handle.Scope, e ast.Expr) (value int64, ok bool)
}

// Lookup is the narrow slice of *symtab.Table this package needs —
// declared locally so internal/consteval does not import internal/symtab
// (which would create an import cycle, since internal/sem imports both).
// internal/sem's Checker satisfies it directly against its own *symtab.Table.
type Lookup interface {
	ConstDeclOf(h handle.Sym) (*ast.ConstDecl, bool)
}

// Literal is the minimal Evaluator: it folds integer/character
// literals and arithmetic over them, and follows a NameExpr to a
// ConstSymbol's own initializer (recursively, to allow `set A: int := 1;
// set B: int := A + 1;` chains). Anything else — casts, sizeof, non-constant
// operands — reports ok=false rather than guessing.
type Literal struct {
	Lookup Lookup
}

// NewLiteral constructs a Literal evaluator backed by lookup, which must
// resolve a handle.Sym to the ConstDecl it names, if any.
func NewLiteral(lookup Lookup) *Literal {
	return &Literal{Lookup: lookup}
}

func (l *Literal) Eval(scope handle.Scope, e ast.Expr) (int64, bool) {
	switch v := e.(type) {
	case *ast.IntExpr:
		return int64(v.Value), true

	case *ast.NameExpr:
		if l.Lookup == nil {
			return 0, false
		}
		cd, ok := l.Lookup.ConstDeclOf(v.SymRef())
		if !ok {
			return 0, false
		}
		return l.Eval(scope, cd.Value)

	case *ast.UnaryExpr:
		x, ok := l.Eval(scope, v.X)
		if !ok {
			return 0, false
		}
		switch v.Op {
		case ast.UnaryPlus:
			return x, true
		case ast.UnaryMinus:
			return -x, true
		case ast.BitNot:
			return ^x, true
		}
		return 0, false

	case *ast.UnaryCondExpr:
		x, ok := l.Eval(scope, v.X)
		if !ok {
			return 0, false
		}
		if x == 0 {
			return 1, true
		}
		return 0, true

	case *ast.BinaryExpr:
		lv, ok := l.Eval(scope, v.L)
		if !ok {
			return 0, false
		}
		rv, ok := l.Eval(scope, v.R)
		if !ok {
			return 0, false
		}
		switch v.Op {
		case ast.Add:
			return lv + rv, true
		case ast.Sub:
			return lv - rv, true
		case ast.Mult:
			return lv * rv, true
		case ast.UDiv, ast.SDiv:
			if rv == 0 {
				return 0, false
			}
			return lv / rv, true
		case ast.UMod, ast.SMod:
			if rv == 0 {
				return 0, false
			}
			return lv % rv, true
		case ast.ShLogLeft:
			return lv << uint(rv), true
		case ast.ShLogRight, ast.ShArRight:
			return lv >> uint(rv), true
		case ast.BitAnd:
			return lv & rv, true
		case ast.BitXor:
			return lv ^ rv, true
		case ast.BitOr:
			return lv | rv, true
		}
		return 0, false

	case *ast.BinaryCondExpr:
		lv, ok := l.Eval(scope, v.L)
		if !ok {
			return 0, false
		}
		rv, ok := l.Eval(scope, v.R)
		if !ok {
			return 0, false
		}
		boolToInt := func(b bool) int64 {
			if b {
				return 1
			}
			return 0
		}
		switch v.Op {
		case ast.LogicalAnd:
			return boolToInt(lv != 0 && rv != 0), true
		case ast.LogicalOr:
			return boolToInt(lv != 0 || rv != 0), true
		case ast.Eq:
			return boolToInt(lv == rv), true
		case ast.NotEq:
			return boolToInt(lv != rv), true
		case ast.ULt, ast.SLt:
			return boolToInt(lv < rv), true
		case ast.ULtE, ast.SLtE:
			return boolToInt(lv <= rv), true
		case ast.UGt, ast.SGt:
			return boolToInt(lv > rv), true
		case ast.UGtE, ast.SGtE:
			return boolToInt(lv >= rv), true
		}
		return 0, false

	case *ast.TernaryExpr:
		c, ok := l.Eval(scope, v.Cond)
		if !ok {
			return 0, false
		}
		if c != 0 {
			return l.Eval(scope, v.Then)
		}
		return l.Eval(scope, v.Else)

	case *ast.CommaExpr:
		if len(v.Exprs) == 0 {
			return 0, false
		}
		return l.Eval(scope, v.Exprs[len(v.Exprs)-1])

	default:
		return 0, false
	}
}
