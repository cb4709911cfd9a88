package sem

import (
	"github.com/Juhaziel/New-Solar-Language/internal/ast"
	"github.com/Juhaziel/New-Solar-Language/internal/config"
	"github.com/Juhaziel/New-Solar-Language/internal/handle"
)

// checkExpr recursively validates e, bottom-up: children are checked
// before the rules that depend on their inferred types (spec §4.4
// "Expression checks").
func (c *Checker) checkExpr(scope handle.Scope, e ast.Expr) {
	switch v := e.(type) {
	case nil, *ast.NameExpr, *ast.IntExpr, *ast.StrExpr:

	case *ast.SzExprExpr:
		c.checkExpr(scope, v.X)

	case *ast.SzTypeExpr:
		c.checkType(scope, v.T, false)

	case *ast.CallExpr:
		c.checkCall(scope, v)

	case *ast.IndexExpr:
		c.checkIndex(scope, v)

	case *ast.AccessExpr:
		c.checkAccess(scope, v)

	case *ast.CastExpr:
		c.checkCast(scope, v)

	case *ast.DerefExpr:
		c.checkDeref(scope, v)

	case *ast.AddrOfExpr:
		c.checkExpr(scope, v.X)
		if !c.IsLvalue(v.X) {
			c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "operand of & must be an lvalue")
		}

	case *ast.UnaryExpr:
		c.checkExpr(scope, v.X)
		if xt := c.ExprType(scope, v.X); xt != nil && !isIntType(xt) {
			c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "operand of %s must be an integer", v.Op)
		}

	case *ast.UnaryCondExpr:
		c.checkExpr(scope, v.X)
		if xt := c.ExprType(scope, v.X); xt != nil && !isIntArrayOrFunc(xt) {
			c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "operand of ! must be integer, array or function")
		}

	case *ast.BinaryExpr:
		c.checkBinary(scope, v)

	case *ast.BinaryCondExpr:
		c.checkBinaryCond(scope, v)

	case *ast.TernaryExpr:
		c.checkExpr(scope, v.Cond)
		c.checkExpr(scope, v.Then)
		c.checkExpr(scope, v.Else)
		if ct := c.ExprType(scope, v.Cond); ct != nil && !isIntArrayOrFunc(ct) {
			c.sink.Errorf(pos(v.Cond.Span()), codeTypeMismatch, "ternary condition must be integer, array or function")
		}

	case *ast.AssignExpr:
		c.checkAssign(scope, v)

	case *ast.CommaExpr:
		for _, x := range v.Exprs {
			c.checkExpr(scope, x)
		}

	case *ast.CompoundExpr:
		c.checkCompound(scope, v)
	}
}

func (c *Checker) checkCall(scope handle.Scope, v *ast.CallExpr) {
	c.checkExpr(scope, v.Func)
	for _, a := range v.Args {
		c.checkExpr(scope, a)
	}
	ft, ok := c.ExprType(scope, v.Func).(*ast.FuncType)
	if !ok {
		c.sink.Errorf(pos(v.Func.Span()), codeTypeMismatch, "called expression is not a function")
		return
	}
	if ft.Variadic {
		if len(v.Args) < len(ft.Params) {
			c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "too few arguments: expected at least %d, got %d", len(ft.Params), len(v.Args))
			return
		}
	} else if len(v.Args) != len(ft.Params) {
		c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "wrong number of arguments: expected %d, got %d", len(ft.Params), len(v.Args))
		return
	}
	for i, pt := range ft.Params {
		at := c.ExprType(scope, v.Args[i])
		if at != nil && !c.TypesEquiv(scope, at, pt) {
			c.sink.Errorf(pos(v.Args[i].Span()), codeTypeMismatch, "argument %d type does not match parameter type", i+1)
		}
	}
}

func (c *Checker) checkIndex(scope handle.Scope, v *ast.IndexExpr) {
	c.checkExpr(scope, v.Array)
	c.checkExpr(scope, v.Index)
	at, ok := c.ExprType(scope, v.Array).(*ast.ArrayType)
	if !ok {
		c.sink.Errorf(pos(v.Array.Span()), codeTypeMismatch, "indexed expression is not an array")
		return
	}
	if _, isVoid := c.ExpandType(scope, at.Inner).(*ast.VoidType); isVoid {
		c.sink.Errorf(pos(v.Span()), codeVoidDisallowed, "cannot index an array of void")
	}
	it, ok := c.ExprType(scope, v.Index).(*ast.IntType)
	if !ok {
		c.sink.Errorf(pos(v.Index.Span()), codeTypeMismatch, "array index must be an integer")
	} else if it.Width != config.Int && it.Width != config.Long {
		c.sink.Errorf(pos(v.Index.Span()), codeTypeMismatch, "array index must be an int or long")
	}
}

func (c *Checker) checkAccess(scope handle.Scope, v *ast.AccessExpr) {
	c.checkExpr(scope, v.Record)
	rt := c.ExprType(scope, v.Record)
	members := c.memberListOf(rt)
	if members == nil {
		c.sink.Errorf(pos(v.Record.Span()), codeTypeMismatch, "accessed expression is not a struct or union")
		return
	}
	if ast.MemberByName(members, v.MemberName) == nil {
		c.sink.Errorf(pos(v.Span()), codeMissingMember, "missing member %q", v.MemberName)
	}
}

func (c *Checker) checkCast(scope handle.Scope, v *ast.CastExpr) {
	c.checkExpr(scope, v.X)
	c.checkType(scope, v.Type, false)
	srcType := c.ExprType(scope, v.X)
	if srcType == nil {
		return
	}
	if !c.CanCastTypes(scope, srcType, v.Type) {
		c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "invalid cast")
		return
	}
	if v.Signed {
		if et := c.ExpandType(scope, v.Type); !isIntType(et) {
			c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "signed cast requires an integral target type")
		}
	}
}

// CanCastTypes is spec §4.4's cast legality rule: integer/array(pointer)/
// function types are freely intercastable; any other category requires
// the same variant on both sides, structurally equivalent.
func (c *Checker) CanCastTypes(scope handle.Scope, src, dst ast.Type) bool {
	se := c.ExpandType(scope, src)
	de := c.ExpandType(scope, dst)
	if se == nil || de == nil {
		return false
	}
	if isIntArrayOrFunc(se) && isIntArrayOrFunc(de) {
		return true
	}
	switch se.(type) {
	case *ast.VoidType:
		_, ok := de.(*ast.VoidType)
		return ok && c.TypesEquiv(scope, se, de)
	case *ast.StructType:
		_, ok := de.(*ast.StructType)
		return ok && c.TypesEquiv(scope, se, de)
	case *ast.UnionType:
		_, ok := de.(*ast.UnionType)
		return ok && c.TypesEquiv(scope, se, de)
	default:
		return false
	}
}

func (c *Checker) checkDeref(scope handle.Scope, v *ast.DerefExpr) {
	c.checkExpr(scope, v.X)
	at, ok := c.ExprType(scope, v.X).(*ast.ArrayType)
	if !ok {
		c.sink.Errorf(pos(v.X.Span()), codeTypeMismatch, "dereferenced expression is not a pointer")
		return
	}
	if _, isVoid := c.ExpandType(scope, at.Inner).(*ast.VoidType); isVoid {
		c.sink.Errorf(pos(v.Span()), codeVoidDisallowed, "cannot dereference a pointer to void")
	}
}

// checkBinary validates an arithmetic Binary expression (spec §4.4):
// both operands integer/array/function; if either is array/function,
// only Add/Sub are legal; if both are integers of differing widths, the
// right operand is widened in place with an implicit Cast (spec §8).
func (c *Checker) checkBinary(scope handle.Scope, v *ast.BinaryExpr) {
	c.checkExpr(scope, v.L)
	c.checkExpr(scope, v.R)
	lt := c.ExprType(scope, v.L)
	rt := c.ExprType(scope, v.R)
	if lt == nil || rt == nil {
		return
	}
	if !isIntArrayOrFunc(lt) || !isIntArrayOrFunc(rt) {
		c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "operands of %s must be integer, array or function", v.Op)
		return
	}
	li, lok := lt.(*ast.IntType)
	ri, rok := rt.(*ast.IntType)
	if !lok || !rok {
		if v.Op != ast.Add && v.Op != ast.Sub {
			c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "only + and - are legal on array/function operands")
		}
		return
	}
	c.widenRight(&v.R, li, ri)
}

// checkBinaryCond validates a conditional/comparison Binary expression:
// both operands integer/array/function; non-integer operands are legal
// only with a logical or equality operator; integers of differing widths
// widen as in checkBinary.
func (c *Checker) checkBinaryCond(scope handle.Scope, v *ast.BinaryCondExpr) {
	c.checkExpr(scope, v.L)
	c.checkExpr(scope, v.R)
	lt := c.ExprType(scope, v.L)
	rt := c.ExprType(scope, v.R)
	if lt == nil || rt == nil {
		return
	}
	if !isIntArrayOrFunc(lt) || !isIntArrayOrFunc(rt) {
		c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "operands of %s must be integer, array or function", v.Op)
		return
	}
	li, lok := lt.(*ast.IntType)
	ri, rok := rt.(*ast.IntType)
	if !lok || !rok {
		if !v.Op.IsLogical() && !v.Op.IsEquality() {
			c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "only logical/equality operators are legal on array/function operands")
		}
		return
	}
	c.widenRight(&v.R, li, ri)
}

// widenRight implements the one implicit AST rewrite the checker ever
// performs (spec §8): when the two integer operand widths differ, wrap
// *r in a Cast to the left operand's width, signed=false, preserving the
// original right operand's span.
func (c *Checker) widenRight(r *ast.Expr, left, right *ast.IntType) {
	if left.Width == right.Width {
		return
	}
	c.sink.Warnf(pos((*r).Span()), codeIntPrecision, "implicit conversion of right operand from %s to %s", right.Width, left.Width)
	cast := ast.NewCastExpr(*r, ast.NewIntType(left.Width), false)
	cast.SetSpan((*r).Span())
	*r = cast
}

// checkAssign validates `lhs := rhs` / `lhs OP= rhs`. When both sides are
// integers of differing widths, the rhs widens in place exactly like a
// Binary operand (spec §8 scenario 5: `let x: int; x := 1l;` warns and
// rewrites the rhs to `Cast(1l, int, signed=false)`), rather than being
// reported as a type mismatch.
func (c *Checker) checkAssign(scope handle.Scope, v *ast.AssignExpr) {
	c.checkExpr(scope, v.LHS)
	c.checkExpr(scope, v.RHS)
	if !c.IsLvalue(v.LHS) {
		c.sink.Errorf(pos(v.LHS.Span()), codeTypeMismatch, "assignment target is not an lvalue")
	}
	lt := c.ExprType(scope, v.LHS)
	rt := c.ExprType(scope, v.RHS)
	if lt == nil || rt == nil {
		return
	}
	li, lok := lt.(*ast.IntType)
	ri, rok := rt.(*ast.IntType)
	if lok && rok {
		c.widenRight(&v.RHS, li, ri)
	} else if !c.TypesEquiv(scope, lt, rt) {
		c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "assignment operand types do not match")
	}

	if v.Op == nil {
		return
	}
	op := *v.Op
	if !isIntArrayOrFunc(lt) || !isIntArrayOrFunc(rt) {
		return // already reported above
	}
	if !lok {
		if op != ast.Add && op != ast.Sub {
			c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "only += and -= are legal on array/function operands")
		}
	}
}

func (c *Checker) checkCompound(scope handle.Scope, v *ast.CompoundExpr) {
	switch v.Kind {
	case ast.CompoundArray:
		for _, el := range v.Elems {
			c.checkExpr(scope, el)
		}
		if len(v.Elems) == 0 {
			return
		}
		first := c.ExprType(scope, v.Elems[0])
		for _, el := range v.Elems[1:] {
			et := c.ExprType(scope, el)
			if first != nil && et != nil && !c.TypesEquiv(scope, first, et) {
				c.sink.Errorf(pos(el.Span()), codeTypeMismatch, "array initializer elements must have the same type")
			}
		}
	case ast.CompoundStructLit:
		for _, val := range v.FieldValues {
			c.checkExpr(scope, val)
		}
	}
}
