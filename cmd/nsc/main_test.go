package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/Juhaziel/New-Solar-Language/internal/config"
)

func TestOutputPathReplacesExtension(t *testing.T) {
	got := outputPath("/tmp/src/foo.ns", "/out")
	want := filepath.Join("/out", "foo.s")
	if got != want {
		t.Errorf("outputPath() = %q, want %q", got, want)
	}
}

func TestCompileFileWritesStubOutput(t *testing.T) {
	dir := t.TempDir()
	src := "set x: int := 2 + 3;\n"
	srcPath := filepath.Join(dir, "foo.ns")
	if err := os.WriteFile(srcPath, []byte(src), 0o644); err != nil {
		t.Fatalf("writing source fixture: %v", err)
	}

	logger := log.New()
	logger.SetOutput(&nopWriter{})

	if !compileFile(srcPath, dir, config.Default(), logger) {
		t.Fatalf("expected compileFile to succeed on a well-formed source file")
	}

	out, err := os.ReadFile(filepath.Join(dir, "foo.s"))
	if err != nil {
		t.Fatalf("expected a foo.s output file: %v", err)
	}
	if !strings.Contains(string(out), "x") {
		t.Errorf("expected stub output to mention declaration %q, got %q", "x", string(out))
	}
}

func TestCompileFileFailsOnUnreadableSource(t *testing.T) {
	dir := t.TempDir()
	logger := log.New()
	logger.SetOutput(&nopWriter{})

	if compileFile(filepath.Join(dir, "nope.ns"), dir, config.Default(), logger) {
		t.Errorf("expected compileFile to fail when the source file does not exist")
	}
}

type nopWriter struct{}

func (*nopWriter) Write(p []byte) (int, error) { return len(p), nil }
