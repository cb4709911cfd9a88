// Package sem implements the two-pass semantic checker of spec §4.4: Pass
// A validates type declarations (detecting cyclic typedefs and illegal
// void usage), Pass B walks every declaration, statement and expression,
// validating types, constant-expression and record-member-access rules,
// lvalue discipline, control-flow labeling, and inserting implicit casts
// for integer-width widening.
//
// Grounded on lang/ysem/analyzer.go's Analyzer struct shape (a single
// struct threading program+symbol-table+diagnostics through recursive
// typeCheck*/check* methods, error/errorAt accumulation) and
// lang/sem/analyzer.go's two-phase buildSymbolTables/typeCheck split,
// generalized into spec §4.4's explicit Pass A (typedef_check=true) /
// Pass B two-pass visitor over an already-built symbol table (this
// package only reads internal/symtab's Table; it never defines symbols).
package sem

import (
	"github.com/Juhaziel/New-Solar-Language/internal/ast"
	"github.com/Juhaziel/New-Solar-Language/internal/config"
	"github.com/Juhaziel/New-Solar-Language/internal/consteval"
	"github.com/Juhaziel/New-Solar-Language/internal/diag"
	"github.com/Juhaziel/New-Solar-Language/internal/handle"
	"github.com/Juhaziel/New-Solar-Language/internal/symtab"
)

// Diagnostic codes for the C10-C90 family (spec §6). Missing member is
// C60 and integer precision C70; both label diagnostics share C80.
const (
	codeTypeNotExist   diag.Code = "C10"
	codeCircTypedef    diag.Code = "C20"
	codeInvalidBits    diag.Code = "C30"
	codeVoidDisallowed diag.Code = "C40"
	codeTypeMismatch   diag.Code = "C50"
	codeIntPrecision   diag.Code = "C70"
	codeMissingMember  diag.Code = "C60"
	codeLabelNotExist  diag.Code = "C80"
	codeLabelWrongKind diag.Code = "C80"
	codeNotInIfIter    diag.Code = "C90"
)

// Checker runs both passes over an AST already annotated by
// internal/symtab. It owns no symbols of its own: the table is read-only
// from here on (spec §3 Lifecycle), except for completing unsized array
// lengths, which the checker patches onto existing Type nodes in place
// (spec §4.4's "Implicit mutation contract").
type Checker struct {
	table *symtab.Table
	cfg   config.Config
	sink  *diag.Sink
	eval  consteval.Evaluator

	// typenames is Pass A's cycle-detection stack (spec §4.4 "maintaining
	// a stack of names under resolution").
	typenames []string

	// retType is the enclosing function's declared return type during
	// Pass B; nil outside any function.
	retType ast.Type

	// iterStack/ifStack track enclosing Iter/If statements so continue/
	// break/breakif can validate an unlabeled target (spec §4.4).
	iterStack []*ast.IterStmt
	ifStack   []*ast.IfStmt
}

// New constructs a Checker. eval may be nil only for modules in which no
// two sized array types are compared: arraySizesEquiv calls eval.Eval
// without a nil check. Check supplies consteval.NewLiteral itself.
func New(table *symtab.Table, cfg config.Config, sink *diag.Sink, eval consteval.Evaluator) *Checker {
	return &Checker{table: table, cfg: cfg, sink: sink, eval: eval}
}

// ConstDeclOf implements consteval.Lookup directly against the symbol
// table, so a Checker can hand itself to consteval.NewLiteral.
func (c *Checker) ConstDeclOf(h handle.Sym) (*ast.ConstDecl, bool) {
	sym := c.table.Sym(h)
	if sym == nil {
		return nil, false
	}
	cd, ok := sym.Decl.(*ast.ConstDecl)
	return cd, ok
}

func pos(s ast.Span) diag.Pos { return diag.Pos{Line: s.StartLine, Col: s.StartCol} }

// Check runs Pass A then Pass B over mod.
func Check(mod *ast.Module, table *symtab.Table, cfg config.Config, sink *diag.Sink) {
	c := New(table, cfg, sink, nil)
	c.eval = consteval.NewLiteral(c)
	c.checkModule(mod)
}

func (c *Checker) checkModule(mod *ast.Module) {
	scope := mod.ScopeRef()
	c.passATypes(mod, scope)
	c.passBModule(mod, scope)
}

// ---- ExpandType / CompareTypesEq / CompareTypesEquiv ----

// ExpandType repeatedly resolves a RefType through its TypeSymbol until a
// non-reference type is reached, or nil if unknown or cyclic (spec §4.4
// "Type expansion"). Pass A already reports C20/C10 for the cases that
// would make this loop; the visited-set here is a second, defensive
// termination guarantee independent of Pass A having run (spec §8
// "ExpandType terminates").
func (c *Checker) ExpandType(scope handle.Scope, t ast.Type) ast.Type {
	seen := map[string]bool{}
	for {
		rt, ok := t.(*ast.RefType)
		if !ok {
			return t
		}
		if seen[rt.Name] {
			return nil
		}
		seen[rt.Name] = true
		h, ok := c.table.Lookup(scope, symtab.Types, rt.Name)
		if !ok {
			return nil
		}
		sym := c.table.Sym(h)
		t = sym.Type
	}
}

// CompareTypesEq is the non-expanding structural comparison (spec §4.4
// "CompareTypesEq"); internal/ast.TypesEqual already implements it without
// needing a scope, since it never resolves a RefType.
func CompareTypesEq(a, b ast.Type) bool { return ast.TypesEqual(a, b) }

// TypesEquiv is CompareTypesEquiv: expand both operands, then recurse
// structurally, always threading scope through every recursive call (spec
// §9 redesign flag: the source's CompareTypesEquiv drops scope in some
// arms when recursing into function/struct members; this always passes
// it). Reflexive and symmetric by construction (spec §8).
func (c *Checker) TypesEquiv(scope handle.Scope, a, b ast.Type) bool {
	ea := c.ExpandType(scope, a)
	eb := c.ExpandType(scope, b)
	if ea == nil || eb == nil {
		return ea == eb
	}
	if ea.Volatile() != eb.Volatile() {
		return false
	}
	switch av := ea.(type) {
	case *ast.VoidType:
		_, ok := eb.(*ast.VoidType)
		return ok
	case *ast.IntType:
		bv, ok := eb.(*ast.IntType)
		return ok && av.Width == bv.Width
	case *ast.ArrayType:
		bv, ok := eb.(*ast.ArrayType)
		if !ok {
			return false
		}
		if !c.TypesEquiv(scope, av.Inner, bv.Inner) {
			return false
		}
		return c.arraySizesEquiv(scope, av.Size, bv.Size)
	case *ast.FuncType:
		bv, ok := eb.(*ast.FuncType)
		if !ok || av.Variadic != bv.Variadic || len(av.Params) != len(bv.Params) {
			return false
		}
		if !c.TypesEquiv(scope, av.Ret, bv.Ret) {
			return false
		}
		for i := range av.Params {
			if !c.TypesEquiv(scope, av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	case *ast.StructType:
		bv, ok := eb.(*ast.StructType)
		return ok && c.membersEquiv(scope, av.Members, bv.Members)
	case *ast.UnionType:
		bv, ok := eb.(*ast.UnionType)
		return ok && c.membersEquiv(scope, av.Members, bv.Members)
	default:
		return false
	}
}

func (c *Checker) membersEquiv(scope handle.Scope, a, b []*ast.MemberData) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
		if (a[i].Bits == nil) != (b[i].Bits == nil) {
			return false
		}
		if a[i].Bits != nil && *a[i].Bits != *b[i].Bits {
			return false
		}
		if !c.TypesEquiv(scope, a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}

func (c *Checker) arraySizesEquiv(scope handle.Scope, a, b ast.Expr) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	av, aok := c.eval.Eval(scope, a)
	bv, bok := c.eval.Eval(scope, b)
	if aok && bok {
		return av == bv
	}
	return true
}

// ---- GetExpressionType ----

// ExprType implements GetExpressionType (spec §4.4's table), total on
// already-checked expressions; returns nil if e's operand types could not
// be determined (e.g. an already-diagnosed error elsewhere).
func (c *Checker) ExprType(scope handle.Scope, e ast.Expr) ast.Type {
	switch v := e.(type) {
	case *ast.NameExpr:
		sym := c.table.Sym(v.SymRef())
		if sym == nil {
			return nil
		}
		return c.ExpandType(scope, sym.Type)

	case *ast.IntExpr:
		return ast.NewIntType(v.Width)

	case *ast.StrExpr:
		return ast.NewArrayType(ast.NewIntType(config.Int), ast.NewIntExpr(config.Int, uint64(len(v.Utf8))))

	case *ast.SzExprExpr, *ast.SzTypeExpr:
		return ast.NewIntType(config.Long)

	case *ast.CallExpr:
		ft, ok := c.ExprType(scope, v.Func).(*ast.FuncType)
		if !ok {
			return nil
		}
		return c.ExpandType(scope, ft.Ret)

	case *ast.IndexExpr:
		at, ok := c.ExprType(scope, v.Array).(*ast.ArrayType)
		if !ok {
			return nil
		}
		return c.ExpandType(scope, at.Inner)

	case *ast.AccessExpr:
		members := c.memberListOf(c.ExprType(scope, v.Record))
		m := ast.MemberByName(members, v.MemberName)
		if m == nil {
			return nil
		}
		return c.ExpandType(scope, m.Type)

	case *ast.CastExpr:
		return c.ExpandType(scope, v.Type)

	case *ast.DerefExpr:
		at, ok := c.ExprType(scope, v.X).(*ast.ArrayType)
		if !ok {
			return nil
		}
		return c.ExpandType(scope, at.Inner)

	case *ast.AddrOfExpr:
		return ast.NewArrayType(c.ExprType(scope, v.X), nil)

	case *ast.UnaryExpr:
		return c.ExprType(scope, v.X)

	case *ast.UnaryCondExpr:
		return ast.NewIntType(config.Int)

	case *ast.BinaryExpr:
		return c.ExprType(scope, v.L)

	case *ast.BinaryCondExpr:
		return ast.NewIntType(config.Int)

	case *ast.TernaryExpr:
		return c.ExprType(scope, v.Then)

	case *ast.AssignExpr:
		return c.ExprType(scope, v.LHS)

	case *ast.CommaExpr:
		if len(v.Exprs) == 0 {
			return nil
		}
		return c.ExprType(scope, v.Exprs[len(v.Exprs)-1])

	case *ast.CompoundExpr:
		switch v.Kind {
		case ast.CompoundStr:
			return ast.NewArrayType(ast.NewIntType(config.Int), ast.NewIntExpr(config.Int, uint64(len(v.Str))))
		case ast.CompoundArray:
			if len(v.Elems) == 0 {
				return nil
			}
			return ast.NewArrayType(c.ExprType(scope, v.Elems[0]), ast.NewIntExpr(config.Int, uint64(len(v.Elems))))
		case ast.CompoundStructLit:
			members := make([]*ast.MemberData, len(v.FieldNames))
			for i, name := range v.FieldNames {
				members[i] = ast.NewMemberData(name, c.ExprType(scope, v.FieldValues[i]), nil)
			}
			return ast.NewStructType(members)
		}
	}
	return nil
}

func (c *Checker) memberListOf(t ast.Type) []*ast.MemberData {
	switch v := t.(type) {
	case *ast.StructType:
		return v.Members
	case *ast.UnionType:
		return v.Members
	default:
		return nil
	}
}

// ---- expression properties: constness / lvalueness ----

// IsConstant implements spec §4.4's "Constant:" rule.
func (c *Checker) IsConstant(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.IntExpr, *ast.StrExpr, *ast.SzExprExpr, *ast.SzTypeExpr:
		return true
	case *ast.NameExpr:
		sym := c.table.Sym(v.SymRef())
		return sym != nil && sym.Kind == symtab.ConstSym
	case *ast.CastExpr:
		return c.IsConstant(v.X)
	case *ast.UnaryExpr:
		return c.IsConstant(v.X)
	case *ast.UnaryCondExpr:
		return c.IsConstant(v.X)
	case *ast.BinaryExpr:
		return c.IsConstant(v.L) && c.IsConstant(v.R)
	case *ast.BinaryCondExpr:
		return c.IsConstant(v.L) && c.IsConstant(v.R)
	case *ast.TernaryExpr:
		return c.IsConstant(v.Cond) && c.IsConstant(v.Then) && c.IsConstant(v.Else)
	case *ast.CommaExpr:
		for _, x := range v.Exprs {
			if !c.IsConstant(x) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsLvalue implements spec §4.4's "Lvalue:" rule.
func (c *Checker) IsLvalue(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.IndexExpr, *ast.AccessExpr, *ast.DerefExpr, *ast.AssignExpr:
		return true
	case *ast.NameExpr:
		sym := c.table.Sym(v.SymRef())
		return sym != nil && sym.Kind == symtab.VarSym
	case *ast.TernaryExpr:
		return c.IsLvalue(v.Then) && c.IsLvalue(v.Else)
	default:
		return false
	}
}

// ---- shared type-category predicates used throughout Pass B ----

func isIntType(t ast.Type) bool { _, ok := t.(*ast.IntType); return ok }
func isArrayType(t ast.Type) bool { _, ok := t.(*ast.ArrayType); return ok }
func isFuncType(t ast.Type) bool { _, ok := t.(*ast.FuncType); return ok }

// isIntArrayOrFunc reports the "integer/array/function" operand category
// spec §4.4 requires for conditions and several operators.
func isIntArrayOrFunc(t ast.Type) bool {
	return isIntType(t) || isArrayType(t) || isFuncType(t)
}
