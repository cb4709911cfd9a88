package symtab

import (
	"github.com/Juhaziel/New-Solar-Language/internal/ast"
	"github.com/Juhaziel/New-Solar-Language/internal/diag"
	"github.com/Juhaziel/New-Solar-Language/internal/handle"
)

// Diagnostic codes for the ST10-ST20 family (spec §6).
const (
	codeInvalidRedecl      diag.Code = "ST10"
	codeFuncRedeclMismatch diag.Code = "ST12"
	codeParamTwice         diag.Code = "ST13"
	codeVarRedeclMismatch  diag.Code = "ST14"
	codeCannotRedefine     diag.Code = "ST15"
	codeUseBeforeDecl      diag.Code = "ST16"
)

// builder performs the two-pass walk of spec §4.3.
type builder struct {
	table      *Table
	sink       *diag.Sink
	globalPass bool

	// The builder keeps no Iter/If stack; continue/break label resolution is
	// a Pass B concern of internal/sem, which reads this table read-only.
}

// Build constructs the full scope/symbol tree for mod and resolves every
// NameExpr's symref, per spec §4.3's two-pass algorithm.
func Build(mod *ast.Module, sink *diag.Sink) *Table {
	t := newTable()
	t.Module = t.newScopeHandle(ModuleScope, handle.Invalid, mod)
	mod.SetScopeRef(t.Module)

	b := &builder{table: t, sink: sink}

	b.globalPass = true
	for _, d := range mod.Decls {
		b.visitTopDecl(d)
	}

	b.globalPass = false
	for _, d := range mod.Decls {
		b.visitTopDecl(d)
	}

	return t
}

func pos(s ast.Span) diag.Pos { return diag.Pos{Line: s.StartLine, Col: s.StartCol} }

// ---- global-pass / local-pass declaration dispatch ----

func (b *builder) visitTopDecl(d ast.Decl) {
	switch v := d.(type) {
	case *ast.FuncDecl:
		b.visitFuncDecl(v, b.table.Module)
	case *ast.VarDecl:
		b.visitGlobalVarDecl(v)
	case *ast.ConstDecl:
		b.visitGlobalConstDecl(v)
	case *ast.TypeDecl:
		b.visitGlobalTypeDecl(v)
	}
}

// visitFuncDecl registers (global pass) or completes (local pass) a function
// declaration. Per spec §4.3: multiple prototypes are permitted iff
// is_static, is_inline and type match exactly; at most one definition (body)
// may exist. The function's own scope, which holds its parameters, is
// (re)built every time a FuncDecl node is visited in the global pass, since
// each textual occurrence is a distinct AST node needing its own ScopeRef —
// but they all share one underlying FuncSymbol once names match.
func (b *builder) visitFuncDecl(fd *ast.FuncDecl, enclosing handle.Scope) {
	if b.globalPass {
		funcScope := b.table.newScopeHandle(FuncScope, enclosing, fd)
		for i, pname := range fd.ParamNames {
			if pname == "" {
				continue
			}
			if _, exists := b.table.LookupLocal(funcScope, Names, pname); exists {
				b.sink.Errorf(pos(fd.Span()), codeParamTwice, "parameter %q declared twice", pname)
				continue
			}
			b.table.Define(funcScope, Names, pname, &Symbol{Kind: ParamSym, Name: pname, Type: fd.Type.Params[i]})
		}

		existing, exists := b.table.LookupLocal(enclosing, Names, fd.Name)
		var symHandle handle.Sym
		if exists {
			prev := b.table.Sym(existing)
			if prev.Kind != FuncSym {
				b.sink.Errorf(pos(fd.Span()), codeInvalidRedecl, "%q redeclared as a function but was previously declared as a %s", fd.Name, prev.Kind)
				symHandle = existing
			} else if !fd.IsStatic || !prev.IsStatic || fd.IsInline != prev.IsInline || !ast.TypesEqual(fd.Type, prev.Type) {
				b.sink.Errorf(pos(fd.Span()), codeFuncRedeclMismatch,
					"redeclaration of function %q does not match previous declaration (multiple prototypes require matching static/inline modifiers and type)", fd.Name)
				symHandle = existing
			} else {
				if fd.HasBody() && prev.FuncTable.Valid() {
					b.sink.Errorf(pos(fd.Span()), codeInvalidRedecl, "redefinition of function %q", fd.Name)
				}
				symHandle = existing
			}
		} else {
			symHandle = b.table.Define(enclosing, Names, fd.Name, &Symbol{
				Kind: FuncSym, Name: fd.Name, Type: fd.Type, IsStatic: fd.IsStatic, IsInline: fd.IsInline, Decl: fd,
			})
		}
		sym := b.table.Sym(symHandle)
		if fd.HasBody() && !sym.FuncTable.Valid() {
			sym.FuncTable = funcScope
			sym.Decl = fd
		}
		fd.SetSymRef(symHandle)
		fd.SetScopeRef(funcScope)
		return
	}

	// Local pass: resolve names inside the parameter types and (if present)
	// the body, within the function's own scope.
	funcScope := fd.ScopeRef()
	for _, pt := range fd.Type.Params {
		b.visitType(pt, funcScope)
	}
	b.visitType(fd.Type.Ret, funcScope)
	if fd.HasBody() {
		b.visitCompoundIn(fd.Body, funcScope)
	}
}

func (b *builder) visitGlobalVarDecl(vd *ast.VarDecl) {
	scope := b.table.Module
	if b.globalPass {
		existing, exists := b.table.LookupLocal(scope, Names, vd.Name)
		if exists {
			prev := b.table.Sym(existing)
			if prev.Kind != VarSym || !vd.IsStatic || !prev.IsStatic || !ast.TypesEqual(vd.Type, prev.Type) {
				b.sink.Errorf(pos(vd.Span()), codeVarRedeclMismatch,
					"redeclaration of global variable %q does not match previous declaration (multiple declarations require matching static modifier and type)", vd.Name)
			} else if vd.Value != nil && hasInitializer(prev.Decl) {
				b.sink.Errorf(pos(vd.Span()), codeInvalidRedecl, "global variable %q initialized more than once", vd.Name)
			}
			vd.SetSymRef(existing)
			return
		}
		h := b.table.Define(scope, Names, vd.Name, &Symbol{Kind: VarSym, Name: vd.Name, Type: vd.Type, IsStatic: vd.IsStatic, Decl: vd})
		vd.SetSymRef(h)
		return
	}
	b.visitType(vd.Type, scope)
	if vd.Value != nil {
		b.visitExpr(vd.Value, scope)
	}
}

func hasInitializer(d ast.Node) bool {
	switch v := d.(type) {
	case *ast.VarDecl:
		return v.Value != nil
	default:
		return false
	}
}

func (b *builder) visitGlobalConstDecl(cd *ast.ConstDecl) {
	scope := b.table.Module
	if b.globalPass {
		if _, exists := b.table.LookupLocal(scope, Names, cd.Name); exists {
			b.sink.Errorf(pos(cd.Span()), codeCannotRedefine, "cannot redefine %q", cd.Name)
			return
		}
		h := b.table.Define(scope, Names, cd.Name, &Symbol{Kind: ConstSym, Name: cd.Name, Type: cd.Type, IsStatic: cd.IsStatic, Decl: cd})
		cd.SetSymRef(h)
		return
	}
	b.visitType(cd.Type, scope)
	b.visitExpr(cd.Value, scope)
}

func (b *builder) visitGlobalTypeDecl(td *ast.TypeDecl) {
	scope := b.table.Module
	if b.globalPass {
		if _, exists := b.table.LookupLocal(scope, Types, td.Name); exists {
			b.sink.Errorf(pos(td.Span()), codeCannotRedefine, "cannot redefine type %q", td.Name)
			return
		}
		h := b.table.Define(scope, Types, td.Name, &Symbol{Kind: TypeSym, Name: td.Name, Type: td.Type, Decl: td})
		td.SetSymRef(h)
		return
	}
	b.visitType(td.Type, scope)
}

// ---- local declarations (inside a function body) ----

func (b *builder) visitLocalDecl(d ast.Decl, scope handle.Scope) {
	switch v := d.(type) {
	case *ast.VarDecl:
		if _, exists := b.table.LookupLocal(scope, Names, v.Name); exists {
			b.sink.Errorf(pos(v.Span()), codeCannotRedefine, "cannot redefine %q", v.Name)
		} else {
			h := b.table.Define(scope, Names, v.Name, &Symbol{Kind: VarSym, Name: v.Name, Type: v.Type, IsStatic: v.IsStatic, Decl: v})
			v.SetSymRef(h)
		}
		b.visitType(v.Type, scope)
		if v.Value != nil {
			b.visitExpr(v.Value, scope)
		}
	case *ast.ConstDecl:
		if _, exists := b.table.LookupLocal(scope, Names, v.Name); exists {
			b.sink.Errorf(pos(v.Span()), codeCannotRedefine, "cannot redefine %q", v.Name)
		} else {
			h := b.table.Define(scope, Names, v.Name, &Symbol{Kind: ConstSym, Name: v.Name, Type: v.Type, IsStatic: v.IsStatic, Decl: v})
			v.SetSymRef(h)
		}
		b.visitType(v.Type, scope)
		b.visitExpr(v.Value, scope)
	case *ast.TypeDecl:
		if _, exists := b.table.LookupLocal(scope, Types, v.Name); exists {
			b.sink.Errorf(pos(v.Span()), codeCannotRedefine, "cannot redefine type %q", v.Name)
		} else {
			h := b.table.Define(scope, Types, v.Name, &Symbol{Kind: TypeSym, Name: v.Name, Type: v.Type, Decl: v})
			v.SetSymRef(h)
		}
		b.visitType(v.Type, scope)
	case *ast.FuncDecl:
		b.visitLocalFuncDecl(v, scope)
	}
}

// visitLocalFuncDecl handles a FuncDecl appearing as a local statement. The
// two-pass forward-reference guarantee of spec §4.3 is a property of the
// Module's top-level declarations; a function nested inside a block is
// registered and fully processed in one step, in the order it is reached.
func (b *builder) visitLocalFuncDecl(fd *ast.FuncDecl, scope handle.Scope) {
	if _, exists := b.table.LookupLocal(scope, Names, fd.Name); exists {
		b.sink.Errorf(pos(fd.Span()), codeCannotRedefine, "cannot redefine %q", fd.Name)
	} else {
		h := b.table.Define(scope, Names, fd.Name, &Symbol{
			Kind: FuncSym, Name: fd.Name, Type: fd.Type, IsStatic: fd.IsStatic, IsInline: fd.IsInline, Decl: fd,
		})
		fd.SetSymRef(h)
	}
	funcScope := b.table.newScopeHandle(FuncScope, scope, fd)
	fd.SetScopeRef(funcScope)
	for i, pname := range fd.ParamNames {
		if pname == "" {
			continue
		}
		if _, exists := b.table.LookupLocal(funcScope, Names, pname); exists {
			b.sink.Errorf(pos(fd.Span()), codeParamTwice, "parameter %q declared twice", pname)
			continue
		}
		b.table.Define(funcScope, Names, pname, &Symbol{Kind: ParamSym, Name: pname, Type: fd.Type.Params[i]})
	}
	b.visitType(fd.Type.Ret, funcScope)
	for _, pt := range fd.Type.Params {
		b.visitType(pt, funcScope)
	}
	if sym := b.table.Sym(fd.SymRef()); sym != nil && fd.HasBody() {
		sym.FuncTable = funcScope
	}
	if fd.HasBody() {
		b.visitCompoundIn(fd.Body, funcScope)
	}
}

// ---- statements ----

func (b *builder) visitCompoundIn(cs *ast.CompoundStmt, parent handle.Scope) {
	scope := b.table.newScopeHandle(BlockScope, parent, cs)
	cs.SetScopeRef(scope)
	for _, s := range cs.Stmts {
		b.visitStmt(s, scope)
	}
}

func (b *builder) visitStmt(s ast.Stmt, scope handle.Scope) {
	switch v := s.(type) {
	case *ast.EmptyStmt:
	case *ast.DefStmt:
		b.visitLocalDecl(v.D, scope)
	case *ast.CompoundStmt:
		b.visitCompoundIn(v, scope)
	case *ast.ExprStmt:
		if v.X != nil {
			b.visitExpr(v.X, scope)
		}
	case *ast.ContinueStmt, *ast.BreakStmt:
		// Resolved against Labels in internal/sem (Pass B): the builder's
		// job is only to register label definitions, which happens at the
		// IfStmt/IterStmt that carries the label.
	case *ast.ReturnStmt:
		if v.X != nil {
			b.visitExpr(v.X, scope)
		}
	case *ast.IfStmt:
		b.defineLabel(v.Label, scope, v)
		b.visitExpr(v.Cond, scope)
		b.visitStmt(v.Body, scope)
		if v.Else != nil {
			b.visitStmt(v.Else, scope)
		}
	case *ast.IterStmt:
		b.defineLabel(v.Label, scope, v)
		if v.Init != nil {
			b.visitStmt(v.Init, scope)
		}
		if v.Cond != nil {
			b.visitExpr(v.Cond, scope)
		}
		if v.Inc != nil {
			b.visitExpr(v.Inc, scope)
		}
		b.visitStmt(v.Body, scope)
		if v.Else != nil {
			b.visitStmt(v.Else, scope)
		}
	}
}

func (b *builder) defineLabel(label string, scope handle.Scope, node ast.Node) {
	if label == "" {
		return
	}
	if _, exists := b.table.LookupLocal(scope, Labels, label); exists {
		b.sink.Errorf(pos(node.Span()), codeCannotRedefine, "label %q already defined in this scope", label)
		return
	}
	b.table.Define(scope, Labels, label, &Symbol{Kind: LabelSym, Name: label, Decl: node})
}

// ---- types (only to resolve names used inside array-size expressions) ----

func (b *builder) visitType(t ast.Type, scope handle.Scope) {
	switch v := t.(type) {
	case nil, *ast.VoidType, *ast.RefType, *ast.IntType:
	case *ast.ArrayType:
		b.visitType(v.Inner, scope)
		if v.Size != nil {
			b.visitExpr(v.Size, scope)
		}
	case *ast.FuncType:
		b.visitType(v.Ret, scope)
		for _, p := range v.Params {
			b.visitType(p, scope)
		}
	case *ast.StructType:
		for _, m := range v.Members {
			b.visitType(m.Type, scope)
		}
	case *ast.UnionType:
		for _, m := range v.Members {
			b.visitType(m.Type, scope)
		}
	}
}

// ---- expressions ----

// visitExpr resolves every NameExpr reachable from e, raising L_USE_BEFORE_DECL
// (fatal) on an unresolved name per spec §4.3.
func (b *builder) visitExpr(e ast.Expr, scope handle.Scope) {
	switch v := e.(type) {
	case nil:
	case *ast.NameExpr:
		h, ok := b.table.Lookup(scope, Names, v.Name)
		if !ok {
			b.sink.Fatalf(pos(v.Span()), codeUseBeforeDecl, "use of %q before its declaration", v.Name)
			return
		}
		b.table.MarkReferenced(h)
		v.SetSymRef(h)
	case *ast.IntExpr, *ast.StrExpr:
	case *ast.SzExprExpr:
		b.visitExpr(v.X, scope)
	case *ast.SzTypeExpr:
		b.visitType(v.T, scope)
	case *ast.CallExpr:
		b.visitExpr(v.Func, scope)
		for _, a := range v.Args {
			b.visitExpr(a, scope)
		}
	case *ast.IndexExpr:
		b.visitExpr(v.Array, scope)
		b.visitExpr(v.Index, scope)
	case *ast.AccessExpr:
		b.visitExpr(v.Record, scope)
	case *ast.CastExpr:
		b.visitExpr(v.X, scope)
		b.visitType(v.Type, scope)
	case *ast.DerefExpr:
		b.visitExpr(v.X, scope)
	case *ast.AddrOfExpr:
		b.visitExpr(v.X, scope)
	case *ast.UnaryExpr:
		b.visitExpr(v.X, scope)
	case *ast.UnaryCondExpr:
		b.visitExpr(v.X, scope)
	case *ast.BinaryExpr:
		b.visitExpr(v.L, scope)
		b.visitExpr(v.R, scope)
	case *ast.BinaryCondExpr:
		b.visitExpr(v.L, scope)
		b.visitExpr(v.R, scope)
	case *ast.TernaryExpr:
		b.visitExpr(v.Cond, scope)
		b.visitExpr(v.Then, scope)
		b.visitExpr(v.Else, scope)
	case *ast.AssignExpr:
		b.visitExpr(v.LHS, scope)
		b.visitExpr(v.RHS, scope)
	case *ast.CommaExpr:
		for _, x := range v.Exprs {
			b.visitExpr(x, scope)
		}
	case *ast.CompoundExpr:
		switch v.Kind {
		case ast.CompoundArray:
			for _, el := range v.Elems {
				b.visitExpr(el, scope)
			}
		case ast.CompoundStructLit:
			for _, val := range v.FieldValues {
				b.visitExpr(val, scope)
			}
		}
	}
}
