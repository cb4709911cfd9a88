// Package codegen specifies the boundary between the checked front end and
// an assembly-emission back end (spec.md §1: "Only its interface to the
// checked AST is specified" — the backend's own instruction selection,
// register allocation and object-file format are explicitly out of scope).
//
// Grounded on lang/yasm/output.go's writeOutput/writeObjectFile entry
// points (a named-file, header-then-segments emission shape taking an
// already-assembled unit), reduced here to an interface-only contract:
// Generate receives the checked Module and Table read-only and writes to
// an io.Writer, mirroring the teacher's file-per-unit granularity without
// carrying over any of its WUT-4 object-format bytes.
package codegen

import (
	"io"

	"github.com/Juhaziel/New-Solar-Language/internal/ast"
	"github.com/Juhaziel/New-Solar-Language/internal/config"
	"github.com/Juhaziel/New-Solar-Language/internal/symtab"
)

// Generator emits a backend's translation of a checked module. A stage
// only reaches Generate once lex/parse/build/check have all succeeded for
// that file (spec.md §5 "Ordering within a file is strict").
type Generator interface {
	// Generate writes out's representation of mod to w. table is the
	// read-only symbol table the checker annotated mod against; cfg
	// carries the target's INT_SIZES/PTR_SIZE/BITS_PER_WORD.
	Generate(w io.Writer, mod *ast.Module, table *symtab.Table, cfg config.Config) error
}

// Stub is the only Generator this repository ships: spec.md scopes the
// real backend out, so cmd/nsc's pipeline has something to call that
// proves the interface's shape without inventing instruction selection.
// It writes a human-readable listing of every top-level declaration name,
// standing in for the object code a real backend would produce.
type Stub struct{}

func (Stub) Generate(w io.Writer, mod *ast.Module, table *symtab.Table, cfg config.Config) error {
	if _, err := io.WriteString(w, "; stub output -- no code generator configured\n"); err != nil {
		return err
	}
	for _, d := range mod.Decls {
		name, kind := declNameAndKind(d)
		if name == "" {
			continue
		}
		if _, err := io.WriteString(w, "; "+kind+" "+name+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func declNameAndKind(d ast.Decl) (name, kind string) {
	switch v := d.(type) {
	case *ast.FuncDecl:
		return v.Name, "func"
	case *ast.VarDecl:
		return v.Name, "var"
	case *ast.ConstDecl:
		return v.Name, "const"
	case *ast.TypeDecl:
		return v.Name, "type"
	default:
		return "", ""
	}
}
