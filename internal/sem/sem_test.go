package sem

import (
	"testing"

	"github.com/Juhaziel/New-Solar-Language/internal/ast"
	"github.com/Juhaziel/New-Solar-Language/internal/config"
	"github.com/Juhaziel/New-Solar-Language/internal/diag"
	"github.com/Juhaziel/New-Solar-Language/internal/symtab"
)

func checkModule(t *testing.T, mod *ast.Module) *diag.Sink {
	t.Helper()
	sink := diag.NewSink("test.ns")
	table := symtab.Build(mod, sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected symbol-table diagnostics: %v", sink.Msgs)
	}
	Check(mod, table, config.Default(), sink)
	return sink
}

func intType() *ast.IntType  { return ast.NewIntType(config.Int) }
func longType() *ast.IntType { return ast.NewIntType(config.Long) }

func hasCode(sink *diag.Sink, code diag.Code) bool {
	for _, m := range sink.Msgs {
		if m.Code == code {
			return true
		}
	}
	return false
}

// let x: int := 1 + 2; no diagnostics expected on a well-typed module.
func TestWellTypedModuleHasNoDiagnostics(t *testing.T) {
	vd := ast.NewVarDecl("x", intType(), ast.NewBinaryExpr(ast.NewIntExpr(config.Int, 1), ast.Add, ast.NewIntExpr(config.Int, 2)), false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{vd}

	sink := checkModule(t, mod)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
}

// using A := B; using B := A; is a circular typedef (spec §8 scenario 2).
func TestCircularTypedefReportsC20(t *testing.T) {
	a := ast.NewTypeDecl("A", ast.NewRefType("B"))
	b := ast.NewTypeDecl("B", ast.NewRefType("A"))
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{a, b}

	sink := checkModule(t, mod)
	if !hasCode(sink, "C20") {
		t.Errorf("expected C20 circular-typedef diagnostic, got %v", sink.Msgs)
	}
}

// A RefType naming a type that was never declared is C10.
func TestUnknownTypeReportsC10(t *testing.T) {
	vd := ast.NewVarDecl("x", ast.NewRefType("Nope"), nil, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{vd}

	sink := checkModule(t, mod)
	if !hasCode(sink, "C10") {
		t.Errorf("expected C10 type-not-exist diagnostic, got %v", sink.Msgs)
	}
}

// A bit-field member whose type is not integral is C30.
func TestNonIntegralBitFieldReportsC30(t *testing.T) {
	bits := 4
	member := ast.NewMemberData("f", ast.NewVoidType(), &bits)
	st := ast.NewStructType([]*ast.MemberData{member})
	td := ast.NewTypeDecl("S", st)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{td}

	sink := checkModule(t, mod)
	if !hasCode(sink, "C30") {
		t.Errorf("expected C30 invalid-bits diagnostic, got %v", sink.Msgs)
	}
}

// `void` used as the type of a variable is disallowed (C40).
func TestVoidVarDeclReportsC40(t *testing.T) {
	vd := ast.NewVarDecl("x", ast.NewVoidType(), nil, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{vd}

	sink := checkModule(t, mod)
	if !hasCode(sink, "C40") {
		t.Errorf("expected C40 void-disallowed diagnostic, got %v", sink.Msgs)
	}
}

// set x: int := true_but_wrong_type; a struct initializer assigned to an
// int-typed const is a type mismatch.
func TestConstDeclTypeMismatchReportsC50(t *testing.T) {
	member := ast.NewMemberData("f", intType(), nil)
	init := ast.NewCompoundStruct([]string{"f"}, []ast.Expr{ast.NewIntExpr(config.Int, 1)})
	_ = member
	cd := ast.NewConstDecl("x", intType(), init, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{cd}

	sink := checkModule(t, mod)
	if !hasCode(sink, "C50") {
		t.Errorf("expected C50 type-mismatch diagnostic, got %v", sink.Msgs)
	}
}

// Accessing an undeclared member of a struct is a missing-member error
// (spec §8 scenario 7).
func TestMissingMemberReportsC60(t *testing.T) {
	member := ast.NewMemberData("f", intType(), nil)
	st := ast.NewStructType([]*ast.MemberData{member})
	vd := ast.NewVarDecl("s", st, nil, false)
	access := ast.NewExprStmt(ast.NewAccessExpr(ast.NewNameExpr("s"), "nope"))
	fn := ast.NewFuncDecl("f", ast.NewFuncType(ast.NewVoidType(), nil, false), nil,
		ast.NewCompoundStmt([]ast.Stmt{ast.NewDefStmt(vd), access}), false, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{fn}

	sink := checkModule(t, mod)
	if !hasCode(sink, "C60") {
		t.Errorf("expected C60 missing-member diagnostic, got %v", sink.Msgs)
	}
}

// Adding an int and a long of differing widths rewrites the right operand
// in place into a synthesized implicit Cast (spec §8's worked widening
// example), reporting a C70 warning rather than an error.
func TestMixedWidthAdditionInsertsImplicitCast(t *testing.T) {
	bin := ast.NewBinaryExpr(ast.NewIntExpr(config.Int, 1), ast.Add, ast.NewIntExpr(config.Long, 2))
	vd := ast.NewVarDecl("x", intType(), bin, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{vd}

	sink := checkModule(t, mod)
	if hasCode(sink, "C50") {
		t.Fatalf("unexpected type-mismatch diagnostic: %v", sink.Msgs)
	}
	cast, ok := bin.R.(*ast.CastExpr)
	if !ok {
		t.Fatalf("expected the right operand to be wrapped in an implicit cast, got %T", bin.R)
	}
	if cast.Signed {
		t.Errorf("implicit widening casts must always be Signed=false")
	}
}

// The implicit widening cast is reported as a warning, never an error.
func TestWideningWarnsNotErrors(t *testing.T) {
	bin := ast.NewBinaryExpr(ast.NewIntExpr(config.Long, 1), ast.Add, ast.NewIntExpr(config.Int, 2))
	vd := ast.NewVarDecl("x", longType(), bin, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{vd}

	sink := checkModule(t, mod)
	cast, ok := bin.R.(*ast.CastExpr)
	if !ok {
		t.Fatalf("expected the right operand to be wrapped in an implicit cast, got %T", bin.R)
	}
	if cast.Signed {
		t.Errorf("implicit widening casts must always be Signed=false")
	}
	if !hasCode(sink, "C70") {
		t.Errorf("expected a C70 int-precision warning, got %v", sink.Msgs)
	}
	for _, m := range sink.Msgs {
		if m.Code == "C70" && m.Level != diag.Warn {
			t.Errorf("C70 must be a warning, not %v", m.Level)
		}
	}
}

// `let x: int; x := 1l; return x;` warns and rewrites the assignment's rhs
// into an implicit cast down to int (spec §8 scenario 5).
func TestAssignWideningInsertsImplicitCast(t *testing.T) {
	xDecl := ast.NewVarDecl("x", intType(), nil, false)
	assign := ast.NewExprStmt(ast.NewAssignExpr(ast.NewNameExpr("x"), ast.NewIntExpr(config.Long, 1), nil))
	ret := ast.NewReturnStmt(ast.NewNameExpr("x"))
	body := ast.NewCompoundStmt([]ast.Stmt{ast.NewDefStmt(xDecl), assign, ret})
	fn := ast.NewFuncDecl("f", ast.NewFuncType(intType(), nil, false), nil, body, false, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{fn}

	sink := checkModule(t, mod)
	if hasCode(sink, "C50") {
		t.Fatalf("unexpected type-mismatch diagnostic: %v", sink.Msgs)
	}
	assignExpr := assign.X.(*ast.AssignExpr)
	cast, ok := assignExpr.RHS.(*ast.CastExpr)
	if !ok {
		t.Fatalf("expected assignment rhs to be rewritten into an implicit cast, got %T", assignExpr.RHS)
	}
	if cast.Signed {
		t.Errorf("implicit widening casts must always be Signed=false")
	}
	if !hasCode(sink, "C70") {
		t.Errorf("expected a C70 int-precision warning, got %v", sink.Msgs)
	}
}

// break outside of any loop is not-in-if-iter (C90).
func TestUnlabeledBreakOutsideLoopReportsC90(t *testing.T) {
	body := ast.NewCompoundStmt([]ast.Stmt{ast.NewBreakStmt(false, "")})
	fn := ast.NewFuncDecl("f", ast.NewFuncType(ast.NewVoidType(), nil, false), nil, body, false, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{fn}

	sink := checkModule(t, mod)
	if !hasCode(sink, "C90") {
		t.Errorf("expected C90 not-in-if-iter diagnostic, got %v", sink.Msgs)
	}
}

// A labeled break inside the loop it names resolves its SymRef to that
// IterStmt (spec §8 scenario 8).
func TestLabeledBreakResolvesToLoop(t *testing.T) {
	brk := ast.NewBreakStmt(false, "outer")
	loopBody := ast.NewCompoundStmt([]ast.Stmt{brk})
	loop := ast.NewIterStmt(nil, nil, nil, loopBody, nil, "outer")
	fn := ast.NewFuncDecl("f", ast.NewFuncType(ast.NewVoidType(), nil, false), nil,
		ast.NewCompoundStmt([]ast.Stmt{loop}), false, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{fn}

	sink := checkModule(t, mod)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	if !brk.SymRef().Valid() {
		t.Fatalf("expected labeled break to resolve a symbol reference")
	}
}

// A non-void function with a bare `return;` is a type mismatch.
func TestReturnMissingValueReportsC50(t *testing.T) {
	body := ast.NewCompoundStmt([]ast.Stmt{ast.NewReturnStmt(nil)})
	fn := ast.NewFuncDecl("f", ast.NewFuncType(intType(), nil, false), nil, body, false, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{fn}

	sink := checkModule(t, mod)
	if !hasCode(sink, "C50") {
		t.Errorf("expected C50 type-mismatch for missing return value, got %v", sink.Msgs)
	}
}

// A void function that returns an expression is also a type mismatch
// (spec §8 scenario 6's exact wording).
func TestVoidReturnWithValueReportsC50(t *testing.T) {
	body := ast.NewCompoundStmt([]ast.Stmt{ast.NewReturnStmt(ast.NewIntExpr(config.Int, 1))})
	fn := ast.NewFuncDecl("f", ast.NewFuncType(ast.NewVoidType(), nil, false), nil, body, false, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{fn}

	sink := checkModule(t, mod)
	if !hasCode(sink, "C50") {
		t.Errorf("expected C50 for void function returning a value, got %v", sink.Msgs)
	}
}

// Taking the address of a non-lvalue is rejected.
func TestAddrOfNonLvalueRejected(t *testing.T) {
	addr := ast.NewAddrOfExpr(ast.NewIntExpr(config.Int, 1))
	vd := ast.NewVarDecl("p", ast.NewArrayType(intType(), nil), addr, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{vd}

	sink := checkModule(t, mod)
	if !sink.HasErrors() {
		t.Errorf("expected an error taking the address of a non-lvalue")
	}
}

// An unsized array initialized from a literal array gets its Size patched
// to the initializer's element count (spec §8 scenarios 3/4).
func TestUnsizedArrayCompletesFromInitializer(t *testing.T) {
	elems := []ast.Expr{ast.NewIntExpr(config.Int, 1), ast.NewIntExpr(config.Int, 2), ast.NewIntExpr(config.Int, 3)}
	at := ast.NewArrayType(intType(), nil)
	vd := ast.NewVarDecl("arr", at, ast.NewCompoundArray(elems), false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{vd}

	sink := checkModule(t, mod)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	if at.Size == nil {
		t.Fatalf("expected the array's Size to be patched from its initializer")
	}
}

// TypesEquiv must be reflexive and symmetric over a struct type.
func TestTypesEquivReflexiveAndSymmetric(t *testing.T) {
	sink := diag.NewSink("test.ns")
	mod := ast.NewModule()
	table := symtab.Build(mod, sink)
	c := New(table, config.Default(), sink, nil)
	scope := mod.ScopeRef()

	member := ast.NewMemberData("f", intType(), nil)
	a := ast.NewStructType([]*ast.MemberData{member})
	b := ast.NewStructType([]*ast.MemberData{ast.NewMemberData("f", intType(), nil)})

	if !c.TypesEquiv(scope, a, a) {
		t.Errorf("TypesEquiv should be reflexive")
	}
	if c.TypesEquiv(scope, a, b) != c.TypesEquiv(scope, b, a) {
		t.Errorf("TypesEquiv should be symmetric")
	}
}

// ExpandType must terminate (return nil) on a contrived self-referential
// RefType even without Pass A having run first.
func TestExpandTypeTerminatesOnCycle(t *testing.T) {
	sink := diag.NewSink("test.ns")
	a := ast.NewTypeDecl("A", ast.NewRefType("A"))
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{a}
	table := symtab.Build(mod, sink)
	c := New(table, config.Default(), sink, nil)

	if got := c.ExpandType(mod.ScopeRef(), ast.NewRefType("A")); got != nil {
		t.Errorf("expected ExpandType to report nil on a cyclic typedef, got %v", got)
	}
}
