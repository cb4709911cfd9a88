package parser

import (
	"testing"

	"github.com/Juhaziel/New-Solar-Language/internal/ast"
	"github.com/Juhaziel/New-Solar-Language/internal/config"
	"github.com/Juhaziel/New-Solar-Language/internal/diag"
	"github.com/Juhaziel/New-Solar-Language/internal/lexer"
)

func parseSrc(t *testing.T, src string) (*ast.Module, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink("test.ns")
	toks := lexer.New([]byte(src), config.Default(), sink).Lex()
	mod := New(toks, sink).Parse()
	return mod, sink
}

func TestConstDecl(t *testing.T) {
	// spec §8 scenario 1.
	mod, sink := parseSrc(t, "set x: int := 2 + 3;")
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	if len(mod.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(mod.Decls))
	}
	cd, ok := mod.Decls[0].(*ast.ConstDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.ConstDecl", mod.Decls[0])
	}
	if cd.Name != "x" {
		t.Errorf("got name %q, want x", cd.Name)
	}
	if _, ok := cd.Type.(*ast.IntType); !ok {
		t.Errorf("got type %T, want *ast.IntType", cd.Type)
	}
	bin, ok := cd.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("got value %T, want *ast.BinaryExpr", cd.Value)
	}
	if bin.Op != ast.Add {
		t.Errorf("got op %v, want Add", bin.Op)
	}
}

func TestFuncDeclWithBody(t *testing.T) {
	mod, sink := parseSrc(t, `
func add(a: int, b: int) -> (int) {
	return a + b;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	if len(mod.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(mod.Decls))
	}
	fd, ok := mod.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.FuncDecl", mod.Decls[0])
	}
	if !fd.HasBody() {
		t.Fatalf("expected a body")
	}
	if len(fd.ParamNames) != 2 || fd.ParamNames[0] != "a" || fd.ParamNames[1] != "b" {
		t.Errorf("got params %v, want [a b]", fd.ParamNames)
	}
	if len(fd.Type.Params) != 2 {
		t.Fatalf("got %d param types, want 2", len(fd.Type.Params))
	}
	if len(fd.Body.Stmts) != 1 {
		t.Fatalf("got %d body stmts, want 1", len(fd.Body.Stmts))
	}
	ret, ok := fd.Body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.ReturnStmt", fd.Body.Stmts[0])
	}
	if _, ok := ret.X.(*ast.BinaryExpr); !ok {
		t.Errorf("got return expr %T, want *ast.BinaryExpr", ret.X)
	}
}

func TestFuncPrototypeNoBody(t *testing.T) {
	mod, sink := parseSrc(t, "static inline func f() -> (void);")
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	fd := mod.Decls[0].(*ast.FuncDecl)
	if fd.HasBody() {
		t.Errorf("expected a prototype (no body)")
	}
	if !fd.IsStatic || !fd.IsInline {
		t.Errorf("expected static+inline, got static=%v inline=%v", fd.IsStatic, fd.IsInline)
	}
}

func TestArrowDesugarsToDerefAccess(t *testing.T) {
	mod, sink := parseSrc(t, `
func f(p: *struct { n: int }) -> (int) {
	return p->n;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	fd := mod.Decls[0].(*ast.FuncDecl)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	ae, ok := ret.X.(*ast.AccessExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.AccessExpr", ret.X)
	}
	if ae.MemberName != "n" {
		t.Errorf("got member %q, want n", ae.MemberName)
	}
	if _, ok := ae.Record.(*ast.DerefExpr); !ok {
		t.Errorf("got record %T, want *ast.DerefExpr (desugared from ->)", ae.Record)
	}
}

func TestCastExprSignedAndUnsigned(t *testing.T) {
	mod, sink := parseSrc(t, `
func f(a: int) -> (long) {
	return a as long;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	fd := mod.Decls[0].(*ast.FuncDecl)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	ce, ok := ret.X.(*ast.CastExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.CastExpr", ret.X)
	}
	if ce.Signed {
		t.Errorf("expected unsigned cast (as, not as$)")
	}

	mod2, sink2 := parseSrc(t, `
func g(a: int) -> (long) {
	return a as$ long;
}
`)
	if sink2.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink2.Msgs)
	}
	fd2 := mod2.Decls[0].(*ast.FuncDecl)
	ret2 := fd2.Body.Stmts[0].(*ast.ReturnStmt)
	ce2 := ret2.X.(*ast.CastExpr)
	if !ce2.Signed {
		t.Errorf("expected signed cast (as$)")
	}
}

func TestOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3), not (1 + 2) * 3.
	mod, sink := parseSrc(t, "set x: int := 1 + 2 * 3;")
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	cd := mod.Decls[0].(*ast.ConstDecl)
	top, ok := cd.Value.(*ast.BinaryExpr)
	if !ok || top.Op != ast.Add {
		t.Fatalf("got %+v, want top-level Add", cd.Value)
	}
	right, ok := top.R.(*ast.BinaryExpr)
	if !ok || right.Op != ast.Mult {
		t.Fatalf("got right operand %+v, want Mult", top.R)
	}
	if _, ok := top.L.(*ast.IntExpr); !ok {
		t.Errorf("got left operand %T, want *ast.IntExpr", top.L)
	}
}

func TestTernaryRightAssociative(t *testing.T) {
	mod, sink := parseSrc(t, "set x: int := 1 ? 2 : 3 ? 4 : 5;")
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	cd := mod.Decls[0].(*ast.ConstDecl)
	top, ok := cd.Value.(*ast.TernaryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.TernaryExpr", cd.Value)
	}
	if _, ok := top.Else.(*ast.TernaryExpr); !ok {
		t.Errorf("got else branch %T, want nested *ast.TernaryExpr (right-assoc)", top.Else)
	}
}

func TestAssignmentRightAssociative(t *testing.T) {
	mod, sink := parseSrc(t, `
func f(a: int, b: int, c: int) -> (void) {
	a := b := c;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	fd := mod.Decls[0].(*ast.FuncDecl)
	es := fd.Body.Stmts[0].(*ast.ExprStmt)
	outer, ok := es.X.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.AssignExpr", es.X)
	}
	if _, ok := outer.RHS.(*ast.AssignExpr); !ok {
		t.Errorf("got rhs %T, want nested *ast.AssignExpr (right-assoc)", outer.RHS)
	}
}

func TestAugmentedAssignment(t *testing.T) {
	mod, sink := parseSrc(t, `
func f(a: int) -> (void) {
	a += 1;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	fd := mod.Decls[0].(*ast.FuncDecl)
	es := fd.Body.Stmts[0].(*ast.ExprStmt)
	ae := es.X.(*ast.AssignExpr)
	if ae.Op == nil || *ae.Op != ast.Add {
		t.Fatalf("got op %v, want Add", ae.Op)
	}
}

func TestCommaOnlyAtOutermostPosition(t *testing.T) {
	// Comma expressions are legal in a for-loop's init/inc clauses.
	mod, sink := parseSrc(t, `
func f(i: int, j: int) -> (void) {
	for (i := 0, j := 0; i < 10; i += 1, j += 1) {
	}
}
`)
	_ = mod
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
}

func TestForLoopDefaultCondition(t *testing.T) {
	mod, sink := parseSrc(t, `
func f() -> (void) {
	for (;;) {
		break;
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	fd := mod.Decls[0].(*ast.FuncDecl)
	iter := fd.Body.Stmts[0].(*ast.IterStmt)
	lit, ok := iter.Cond.(*ast.IntExpr)
	if !ok || lit.Value != 1 {
		t.Fatalf("got cond %+v, want IntExpr(1)", iter.Cond)
	}
}

func TestLabeledLoopAndBreak(t *testing.T) {
	mod, sink := parseSrc(t, `
func f() -> (void) {
	outer: while (1) {
		break outer;
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	fd := mod.Decls[0].(*ast.FuncDecl)
	iter := fd.Body.Stmts[0].(*ast.IterStmt)
	if iter.Label != "outer" {
		t.Errorf("got label %q, want outer", iter.Label)
	}
	brk := iter.Body.(*ast.CompoundStmt).Stmts[0].(*ast.BreakStmt)
	if brk.Label != "outer" || brk.BreakIf {
		t.Errorf("got %+v, want a plain break (not breakif) targeting outer", brk)
	}
}

func TestArrayAndStructCompoundInitializers(t *testing.T) {
	mod, sink := parseSrc(t, `
let arr: [3]int := {1, 2, 3};
let s: struct { x: int, y: int } := struct { x: 1, y: 2 };
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	arr := mod.Decls[0].(*ast.VarDecl)
	ce, ok := arr.Value.(*ast.CompoundExpr)
	if !ok || ce.Kind != ast.CompoundArray || len(ce.Elems) != 3 {
		t.Fatalf("got %+v, want 3-element CompoundArray", arr.Value)
	}

	s := mod.Decls[1].(*ast.VarDecl)
	sc, ok := s.Value.(*ast.CompoundExpr)
	if !ok || sc.Kind != ast.CompoundStructLit || len(sc.FieldNames) != 2 {
		t.Fatalf("got %+v, want 2-field CompoundStructLit", s.Value)
	}
	if sc.FieldNames[0] != "x" || sc.FieldNames[1] != "y" {
		t.Errorf("got field names %v, want [x y]", sc.FieldNames)
	}
}

func TestStringInitializerBecomesCompoundStr(t *testing.T) {
	mod, sink := parseSrc(t, `let s: *int := "hi";`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	vd := mod.Decls[0].(*ast.VarDecl)
	ce, ok := vd.Value.(*ast.CompoundExpr)
	if !ok || ce.Kind != ast.CompoundStr || ce.Str != "hi\x00" {
		t.Fatalf("got %+v, want CompoundStr(\"hi\\x00\")", vd.Value)
	}
}

func TestBitFieldMember(t *testing.T) {
	mod, sink := parseSrc(t, "struct Flags { a: int : 1, b: int : 3 };")
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	td := mod.Decls[0].(*ast.TypeDecl)
	st := td.Type.(*ast.StructType)
	if len(st.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(st.Members))
	}
	if st.Members[0].Bits == nil || *st.Members[0].Bits != 1 {
		t.Errorf("got bits %v, want 1", st.Members[0].Bits)
	}
	if st.Members[1].Bits == nil || *st.Members[1].Bits != 3 {
		t.Errorf("got bits %v, want 3", st.Members[1].Bits)
	}
}

func TestUsingTypeDecl(t *testing.T) {
	mod, sink := parseSrc(t, "using Byte := int;")
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	td := mod.Decls[0].(*ast.TypeDecl)
	if td.Name != "Byte" {
		t.Errorf("got name %q, want Byte", td.Name)
	}
	if _, ok := td.Type.(*ast.IntType); !ok {
		t.Errorf("got type %T, want *ast.IntType", td.Type)
	}
}

func TestSzExprAndSzType(t *testing.T) {
	mod, sink := parseSrc(t, `
func f(a: int) -> (int) {
	return szexpr a + sztype long;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	fd := mod.Decls[0].(*ast.FuncDecl)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	top := ret.X.(*ast.BinaryExpr)
	if _, ok := top.L.(*ast.SzExprExpr); !ok {
		t.Errorf("got left %T, want *ast.SzExprExpr", top.L)
	}
	if _, ok := top.R.(*ast.SzTypeExpr); !ok {
		t.Errorf("got right %T, want *ast.SzTypeExpr", top.R)
	}
}

func TestDocCommentAttachesToDeclaration(t *testing.T) {
	mod, sink := parseSrc(t, `
/* computes the answer */
func answer() -> (int) {
	return 42;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	fd := mod.Decls[0].(*ast.FuncDecl)
	if fd.Description() == "" {
		t.Errorf("expected a doc comment to attach to the declaration")
	}
}

func TestMalformedDeclarationRecoversAndContinues(t *testing.T) {
	// The first statement is malformed (missing type); the parser must
	// recover far enough to still see the second top-level declaration.
	mod, sink := parseSrc(t, `
let x: := 1;
func f() -> (void) {}
`)
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic for the malformed declaration")
	}
	foundFunc := false
	for _, d := range mod.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok && fd.Name == "f" {
			foundFunc = true
		}
	}
	if !foundFunc {
		t.Errorf("parser did not recover to see the trailing func decl: %+v", mod.Decls)
	}
}

func TestVariadicWithoutFixedParamIsError(t *testing.T) {
	_, sink := parseSrc(t, "func f(...) -> (void) { }")
	found := false
	for _, m := range sink.Msgs {
		if m.Code == "P07" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected P07 diagnostic for variadic with no fixed parameter, got %v", sink.Msgs)
	}

	_, sink = parseSrc(t, "using T := func(...) -> (void);")
	found = false
	for _, m := range sink.Msgs {
		if m.Code == "P07" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected P07 diagnostic for variadic func-type with no fixed parameter, got %v", sink.Msgs)
	}
}

func TestVariadicWithFixedParamIsAccepted(t *testing.T) {
	mod, sink := parseSrc(t, "func f(a: int, ...) -> (void) { }")
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	fd, ok := mod.Decls[0].(*ast.FuncDecl)
	if !ok || !fd.Type.Variadic || len(fd.Type.Params) != 1 {
		t.Fatalf("got %+v, want a variadic FuncDecl with 1 fixed param", mod.Decls[0])
	}
}

func TestSpansPopulatedThroughoutTree(t *testing.T) {
	mod, sink := parseSrc(t, "set x: int := 2 + 3;")
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		sp := n.Span()
		if sp == ast.Unset {
			t.Errorf("node %T has an unset span", n)
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(mod)
}
