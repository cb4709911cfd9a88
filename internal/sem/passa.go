package sem

import (
	"strings"

	"github.com/Juhaziel/New-Solar-Language/internal/ast"
	"github.com/Juhaziel/New-Solar-Language/internal/handle"
	"github.com/Juhaziel/New-Solar-Language/internal/symtab"
)

// passATypes is Pass A (spec §4.4, typedef_check=true): validates every
// type declaration's transitive references, detects cyclic typedefs via
// c.typenames, and checks void/bit-field legality and array-size
// constantness on every Type node reachable from a declaration.
func (c *Checker) passATypes(mod *ast.Module, scope handle.Scope) {
	for _, d := range mod.Decls {
		c.passADecl(d, scope)
	}
}

func (c *Checker) passADecl(d ast.Decl, scope handle.Scope) {
	switch v := d.(type) {
	case *ast.VarDecl:
		c.checkType(scope, v.Type, false)
	case *ast.ConstDecl:
		c.checkType(scope, v.Type, false)
	case *ast.TypeDecl:
		c.checkNamedTypeDecl(v, scope)
	case *ast.FuncDecl:
		funcScope := v.ScopeRef()
		for _, pt := range v.Type.Params {
			c.checkType(funcScope, pt, false)
		}
		c.checkType(funcScope, v.Type.Ret, true) // a function may return void
		if v.HasBody() {
			c.passAStmt(v.Body, funcScope)
		}
	}
}

func (c *Checker) passAStmt(s ast.Stmt, scope handle.Scope) {
	switch v := s.(type) {
	case *ast.CompoundStmt:
		bscope := v.ScopeRef()
		for _, st := range v.Stmts {
			c.passAStmt(st, bscope)
		}
	case *ast.DefStmt:
		c.passADecl(v.D, scope)
	case *ast.IfStmt:
		c.passAStmt(v.Body, scope)
		if v.Else != nil {
			c.passAStmt(v.Else, scope)
		}
	case *ast.IterStmt:
		if v.Init != nil {
			c.passAStmt(v.Init, scope)
		}
		c.passAStmt(v.Body, scope)
		if v.Else != nil {
			c.passAStmt(v.Else, scope)
		}
	}
}

// checkNamedTypeDecl validates td's own structure and follows its
// typedef-alias chain (if td.Type is itself a bare RefType) to detect
// cycles (spec §8 scenario 2: "using A := B; using B := A;" → C20 with
// chain "A>B>A" or "B>A>B").
func (c *Checker) checkNamedTypeDecl(td *ast.TypeDecl, scope handle.Scope) {
	c.checkType(scope, td.Type, false)

	c.typenames = append(c.typenames, td.Name)
	defer func() { c.typenames = c.typenames[:len(c.typenames)-1] }()
	c.checkTypedefChain(scope, td.Type)
}

func (c *Checker) checkTypedefChain(scope handle.Scope, t ast.Type) {
	rt, ok := t.(*ast.RefType)
	if !ok {
		return
	}
	for _, seen := range c.typenames {
		if seen == rt.Name {
			chain := append(append([]string(nil), c.typenames...), rt.Name)
			c.sink.Errorf(pos(t.Span()), codeCircTypedef, "circular typedef: %s", strings.Join(chain, ">"))
			return
		}
	}
	h, ok := c.table.Lookup(scope, symtab.Types, rt.Name)
	if !ok {
		c.sink.Errorf(pos(t.Span()), codeTypeNotExist, "type %q does not exist", rt.Name)
		return
	}
	c.table.MarkReferenced(h)
	sym := c.table.Sym(h)
	c.typenames = append(c.typenames, rt.Name)
	defer func() { c.typenames = c.typenames[:len(c.typenames)-1] }()
	c.checkTypedefChain(scope, sym.Type)
}

// checkType validates a Type node's own legality: void only where voidOK
// allows it (function return, or the inner type of an unsized/pointer
// array), struct/union bit-field members must be integral, and an
// array's size expression (if present) must be a constant expression.
// It resolves (but does not expand) RefType names, reporting C10 if
// unknown.
func (c *Checker) checkType(scope handle.Scope, t ast.Type, voidOK bool) {
	switch v := t.(type) {
	case nil:
	case *ast.VoidType:
		if !voidOK {
			c.sink.Errorf(pos(v.Span()), codeVoidDisallowed, "void is not permitted here")
		}
	case *ast.RefType:
		h, ok := c.table.Lookup(scope, symtab.Types, v.Name)
		if !ok {
			c.sink.Errorf(pos(v.Span()), codeTypeNotExist, "type %q does not exist", v.Name)
			return
		}
		c.table.MarkReferenced(h)
	case *ast.IntType:
	case *ast.ArrayType:
		c.checkType(scope, v.Inner, v.IsPointer())
		if v.Size != nil {
			if !c.IsConstant(v.Size) {
				c.sink.Errorf(pos(v.Size.Span()), codeTypeMismatch, "array size must be a constant expression")
			}
		}
	case *ast.FuncType:
		c.checkType(scope, v.Ret, true)
		for _, p := range v.Params {
			c.checkType(scope, p, false)
		}
	case *ast.StructType:
		c.checkMembers(scope, v.Members)
	case *ast.UnionType:
		c.checkMembers(scope, v.Members)
	}
}

func (c *Checker) checkMembers(scope handle.Scope, members []*ast.MemberData) {
	for _, m := range members {
		c.checkType(scope, m.Type, false)
		if m.Bits != nil {
			et := c.ExpandType(scope, m.Type)
			if !isIntType(et) {
				c.sink.Errorf(pos(m.Span()), codeInvalidBits, "bit-field member %q must have an integral type", m.Name)
			}
		}
	}
}
