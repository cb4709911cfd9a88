package codegen

import (
	"strings"
	"testing"

	"github.com/Juhaziel/New-Solar-Language/internal/ast"
	"github.com/Juhaziel/New-Solar-Language/internal/config"
	"github.com/Juhaziel/New-Solar-Language/internal/diag"
	"github.com/Juhaziel/New-Solar-Language/internal/symtab"
)

func TestStubListsTopLevelDecls(t *testing.T) {
	ft := ast.NewFuncType(ast.NewVoidType(), nil, false)
	fn := ast.NewFuncDecl("main", ft, nil, ast.NewCompoundStmt(nil), false, false)
	mod := ast.NewModule()
	mod.Decls = []ast.Decl{fn}

	sink := diag.NewSink("test.ns")
	table := symtab.Build(mod, sink)

	var buf strings.Builder
	if err := (Stub{}).Generate(&buf, mod, table, config.Default()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "func main") {
		t.Errorf("expected stub output to mention func main, got %q", buf.String())
	}
}
