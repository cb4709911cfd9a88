// Package diag implements the diagnostics collector shared by every stage:
// error/warn/fatal messages carrying source positions, formatted per
// spec §6 as "[LEVEL] {PHASECODE} text", with the "file:line:col: "
// position inserted before the text.
//
// Grounded on lang/ylex/lexer.go's stderr-and-exit l.error idiom (for the
// Fatal path) and lang/ysem/analyzer.go's accumulate-and-continue
// a.errors []string idiom (for the non-fatal path): this collector merges
// both behaviors into one type, since spec §7 requires a stage to keep
// going after recoverable errors but unwind immediately on a fatal one.
package diag

import "fmt"

// Level is a diagnostic's severity.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
	Fatal
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return "???"
	}
}

// Pos is a 1-based line, 0-based column source position.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Code is a stable diagnostic code such as "L12", "P05", "ST14", "C60".
type Code string

// Diagnostic is one reported message.
type Diagnostic struct {
	Level Level
	Code  Code
	File  string
	Pos   Pos
	Text  string
}

func (d Diagnostic) String() string {
	loc := ""
	if d.File != "" {
		loc = fmt.Sprintf("%s:%s: ", d.File, d.Pos)
	}
	return fmt.Sprintf("[%s] %s %s%s", d.Level, d.Code, loc, d.Text)
}

// FatalError unwinds a stage via panic/recover when a Fatal diagnostic is
// reported. It carries the Diagnostic that caused the unwind.
type FatalError struct {
	Diagnostic Diagnostic
}

func (e *FatalError) Error() string { return e.Diagnostic.String() }

// Sink collects diagnostics for one file's compilation. A stage receives a
// *Sink (not a global) so multiple files can be compiled without cross
// talk, per the "shared mutable state" design note.
type Sink struct {
	File  string
	Msgs  []Diagnostic
	level Level // minimum level that gets recorded; set via SetLevel
}

// NewSink creates a diagnostics sink for the named file. Every level is
// recorded by default; use SetLevel to raise the floor (e.g. -woff).
func NewSink(file string) *Sink {
	return &Sink{File: file, level: Debug}
}

// SetLevel raises the minimum recorded severity.
func (s *Sink) SetLevel(l Level) { s.level = l }

func (s *Sink) record(level Level, code Code, pos Pos, format string, args ...interface{}) Diagnostic {
	d := Diagnostic{
		Level: level,
		Code:  code,
		File:  s.File,
		Pos:   pos,
		Text:  fmt.Sprintf(format, args...),
	}
	if level >= s.level {
		s.Msgs = append(s.Msgs, d)
	}
	return d
}

// Debugf records a debug-level diagnostic.
func (s *Sink) Debugf(pos Pos, code Code, format string, args ...interface{}) {
	s.record(Debug, code, pos, format, args...)
}

// Infof records an info-level diagnostic.
func (s *Sink) Infof(pos Pos, code Code, format string, args ...interface{}) {
	s.record(Info, code, pos, format, args...)
}

// Warnf records a warning. Warnings never block compilation (spec §7).
func (s *Sink) Warnf(pos Pos, code Code, format string, args ...interface{}) {
	s.record(Warn, code, pos, format, args...)
}

// Errorf records a non-fatal error: the stage's Success becomes false but
// execution continues so later diagnostics can still surface.
func (s *Sink) Errorf(pos Pos, code Code, format string, args ...interface{}) {
	s.record(Error, code, pos, format, args...)
}

// Fatalf records a fatal error and panics with *FatalError so the stage
// unwinds immediately. The caller's entry point must recover it (see
// Sink.Run) so the next file can still be attempted.
func (s *Sink) Fatalf(pos Pos, code Code, format string, args ...interface{}) {
	d := s.record(Fatal, code, pos, format, args...)
	panic(&FatalError{Diagnostic: d})
}

// Success reports whether no Error or Fatal diagnostic has been recorded.
func (s *Sink) Success() bool {
	for _, d := range s.Msgs {
		if d.Level >= Error {
			return false
		}
	}
	return true
}

// HasErrors is an alias for !Success, read more naturally at call sites
// that branch on failure.
func (s *Sink) HasErrors() bool { return !s.Success() }

// Run executes fn, catching a *FatalError panic so that one failed file
// never aborts the whole compilation run (spec §5/§7). It returns whether
// the stage completed without hitting a fatal diagnostic; Success() still
// reflects overall success (fatal or not) afterward.
func (s *Sink) Run(fn func()) (completed bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*FatalError); ok {
				completed = false
				return
			}
			panic(r)
		}
	}()
	fn()
	return true
}
