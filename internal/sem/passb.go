package sem

import (
	"github.com/Juhaziel/New-Solar-Language/internal/ast"
	"github.com/Juhaziel/New-Solar-Language/internal/config"
	"github.com/Juhaziel/New-Solar-Language/internal/handle"
	"github.com/Juhaziel/New-Solar-Language/internal/symtab"
)

// passBModule is Pass B (spec §4.4): visits every declaration, statement
// and expression, checking types, inserting implicit widening casts, and
// completing unsized array lengths from their initializer.
func (c *Checker) passBModule(mod *ast.Module, scope handle.Scope) {
	for _, d := range mod.Decls {
		c.checkDecl(d, scope)
	}
}

func (c *Checker) checkDecl(d ast.Decl, scope handle.Scope) {
	switch v := d.(type) {
	case *ast.VarDecl:
		c.checkVarDecl(v, scope)
	case *ast.ConstDecl:
		c.checkConstDecl(v, scope)
	case *ast.TypeDecl:
		// Pass A already validated the typedef itself and its alias chain.
	case *ast.FuncDecl:
		c.checkFuncDecl(v, scope)
	}
}

func (c *Checker) checkVarDecl(vd *ast.VarDecl, scope handle.Scope) {
	if vd.Value == nil {
		return
	}
	c.checkExpr(scope, vd.Value)

	// Complete an unsized array's length from a Compound(array|str)
	// initializer, then re-check with the now-sized type (spec §4.4,
	// §8 scenario 4).
	if at, ok := vd.Type.(*ast.ArrayType); ok && at.Size == nil {
		if ce, ok := vd.Value.(*ast.CompoundExpr); ok {
			switch ce.Kind {
			case ast.CompoundArray:
				at.Size = ast.NewIntExpr(config.Int, uint64(len(ce.Elems)))
			case ast.CompoundStr:
				at.Size = ast.NewIntExpr(config.Int, uint64(len(ce.Str)))
			}
		}
	}

	valType := c.ExprType(scope, vd.Value)
	if valType == nil {
		return
	}
	if !c.TypesEquiv(scope, vd.Type, valType) {
		c.sink.Errorf(pos(vd.Span()), codeTypeMismatch, "initializer type does not match declared type of %q", vd.Name)
	}
}

func (c *Checker) checkConstDecl(cd *ast.ConstDecl, scope handle.Scope) {
	c.checkExpr(scope, cd.Value)

	if et := c.ExpandType(scope, cd.Type); !isIntType(et) {
		c.sink.Errorf(pos(cd.Span()), codeTypeMismatch, "const %q must have an integral type", cd.Name)
	}
	if !c.IsConstant(cd.Value) {
		c.sink.Errorf(pos(cd.Value.Span()), codeTypeMismatch, "initializer of const %q is not a constant expression", cd.Name)
	}
	if valType := c.ExprType(scope, cd.Value); valType != nil && !c.TypesEquiv(scope, cd.Type, valType) {
		c.sink.Errorf(pos(cd.Span()), codeTypeMismatch, "initializer type does not match declared type of %q", cd.Name)
	}
}

func (c *Checker) checkFuncDecl(fd *ast.FuncDecl, scope handle.Scope) {
	if !fd.HasBody() {
		return
	}
	funcScope := fd.ScopeRef()
	prevRet := c.retType
	c.retType = fd.Type.Ret
	c.checkStmt(fd.Body, funcScope)
	c.retType = prevRet
}

// ---- statements ----

func (c *Checker) checkStmt(s ast.Stmt, scope handle.Scope) {
	switch v := s.(type) {
	case *ast.EmptyStmt:

	case *ast.DefStmt:
		c.checkDecl(v.D, scope)

	case *ast.CompoundStmt:
		bscope := v.ScopeRef()
		for _, st := range v.Stmts {
			c.checkStmt(st, bscope)
		}

	case *ast.ExprStmt:
		if v.X != nil {
			c.checkExpr(scope, v.X)
		}

	case *ast.ContinueStmt:
		c.checkContinue(v, scope)

	case *ast.BreakStmt:
		c.checkBreak(v, scope)

	case *ast.ReturnStmt:
		c.checkReturn(v, scope)

	case *ast.IfStmt:
		c.checkExpr(scope, v.Cond)
		if ct := c.ExprType(scope, v.Cond); ct != nil && !isIntArrayOrFunc(ct) {
			c.sink.Errorf(pos(v.Cond.Span()), codeTypeMismatch, "if condition must be integer, array or function")
		}
		c.ifStack = append(c.ifStack, v)
		c.checkStmt(v.Body, scope)
		if v.Else != nil {
			c.checkStmt(v.Else, scope)
		}
		c.ifStack = c.ifStack[:len(c.ifStack)-1]

	case *ast.IterStmt:
		if v.Init != nil {
			c.checkStmt(v.Init, scope)
		}
		if v.Cond != nil {
			c.checkExpr(scope, v.Cond)
			if ct := c.ExprType(scope, v.Cond); ct != nil && !isIntArrayOrFunc(ct) {
				c.sink.Errorf(pos(v.Cond.Span()), codeTypeMismatch, "loop condition must be integer, array or function")
			}
		}
		if v.Inc != nil {
			c.checkExpr(scope, v.Inc)
		}
		c.iterStack = append(c.iterStack, v)
		c.checkStmt(v.Body, scope)
		if v.Else != nil {
			c.checkStmt(v.Else, scope)
		}
		c.iterStack = c.iterStack[:len(c.iterStack)-1]
	}
}

func (c *Checker) checkContinue(v *ast.ContinueStmt, scope handle.Scope) {
	if v.Label != "" {
		h, ok := c.table.Lookup(scope, symtab.Labels, v.Label)
		if !ok {
			c.sink.Errorf(pos(v.Span()), codeLabelNotExist, "label %q does not exist", v.Label)
			return
		}
		if _, ok := c.table.Sym(h).Decl.(*ast.IterStmt); !ok {
			c.sink.Errorf(pos(v.Span()), codeLabelWrongKind, "label %q does not name a loop", v.Label)
			return
		}
		c.table.MarkReferenced(h)
		v.SetSymRef(h)
		return
	}
	if len(c.iterStack) == 0 {
		c.sink.Errorf(pos(v.Span()), codeNotInIfIter, "continue outside of a loop")
	}
}

func (c *Checker) checkBreak(v *ast.BreakStmt, scope handle.Scope) {
	if v.Label != "" {
		h, ok := c.table.Lookup(scope, symtab.Labels, v.Label)
		if !ok {
			c.sink.Errorf(pos(v.Span()), codeLabelNotExist, "label %q does not exist", v.Label)
			return
		}
		decl := c.table.Sym(h).Decl
		if v.BreakIf {
			if _, ok := decl.(*ast.IfStmt); !ok {
				c.sink.Errorf(pos(v.Span()), codeLabelWrongKind, "breakif label %q does not name an if", v.Label)
				return
			}
		} else if _, ok := decl.(*ast.IterStmt); !ok {
			c.sink.Errorf(pos(v.Span()), codeLabelWrongKind, "break label %q does not name a loop", v.Label)
			return
		}
		c.table.MarkReferenced(h)
		v.SetSymRef(h)
		return
	}
	if v.BreakIf {
		if len(c.ifStack) == 0 {
			c.sink.Errorf(pos(v.Span()), codeNotInIfIter, "breakif outside of an if")
		}
		return
	}
	if len(c.iterStack) == 0 {
		c.sink.Errorf(pos(v.Span()), codeNotInIfIter, "break outside of a loop")
	}
}

func (c *Checker) checkReturn(v *ast.ReturnStmt, scope handle.Scope) {
	_, retIsVoid := c.retType.(*ast.VoidType)
	if v.X == nil {
		if c.retType != nil && !retIsVoid {
			c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "missing return value in non-void function")
		}
		return
	}
	c.checkExpr(scope, v.X)
	if retIsVoid {
		c.sink.Errorf(pos(v.Span()), codeTypeMismatch, "function returns void but ReturnStmt returns expression")
		return
	}
	if xt := c.ExprType(scope, v.X); xt != nil && c.retType != nil && !c.TypesEquiv(scope, xt, c.retType) {
		c.sink.Errorf(pos(v.X.Span()), codeTypeMismatch, "return expression type does not match function's return type")
	}
}
