package lexer

import (
	"testing"

	"github.com/Juhaziel/New-Solar-Language/internal/config"
	"github.com/Juhaziel/New-Solar-Language/internal/diag"
	"github.com/Juhaziel/New-Solar-Language/internal/token"
)

func lexAll(t *testing.T, src string) ([]token.Token, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink("test.ns")
	toks := New([]byte(src), config.Default(), sink).Lex()
	return toks, sink
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tk := range toks {
		out[i] = tk.Kind
	}
	return out
}

func TestConstDeclTokens(t *testing.T) {
	// Scenario 1 from spec §8: "set x: int := 2 + 3;" — set, x, :, int, :=,
	// 2, +, 3, ; is nine source tokens, plus the trailing EOF.
	toks, sink := lexAll(t, "set x: int := 2 + 3;")
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	want := []token.Kind{
		token.Keyword, token.Name, token.Punctuator, token.Keyword,
		token.Punctuator, token.Integer, token.Punctuator, token.Integer,
		token.Punctuator, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range kinds(toks) {
		if k != want[i] {
			t.Errorf("token %d: got %v, want %v (%+v)", i, k, want[i], toks[i])
		}
	}
}

func TestIntegerPrefixesAndSuffixes(t *testing.T) {
	cases := []struct {
		src  string
		want uint64
	}{
		{"0x1F", 0x1F},
		{"0b101", 5},
		{"0o17", 15},
		{"1_000", 1000},
		{"10l", 10},
		{"10q", 10},
	}
	for _, c := range cases {
		toks, sink := lexAll(t, c.src)
		if sink.HasErrors() {
			t.Fatalf("%s: unexpected diagnostics: %v", c.src, sink.Msgs)
		}
		if toks[0].Kind != token.Integer || toks[0].IntValue != c.want {
			t.Errorf("%s: got %+v, want value %d", c.src, toks[0], c.want)
		}
	}
}

func TestAlphaAfterNumberIsError(t *testing.T) {
	_, sink := lexAll(t, "123abc")
	found := false
	for _, m := range sink.Msgs {
		if m.Code == "L06" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected L06 alpha-after-number diagnostic, got %v", sink.Msgs)
	}
}

func TestAdjacentStringConcatenation(t *testing.T) {
	toks, sink := lexAll(t, `"foo" "bar"`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	if len(toks) != 2 { // one merged String + EOF
		t.Fatalf("got %d tokens, want 2 (merged string + EOF): %v", len(toks), toks)
	}
	if toks[0].Kind != token.String || toks[0].Text != "foobar\x00" {
		t.Errorf("got %+v, want merged text %q with a single trailing null", toks[0], "foobar\x00")
	}
}

func TestCharLiteralEscapes(t *testing.T) {
	cases := []struct {
		src  string
		want uint64
	}{
		{`'\n'`, '\n'},
		{`'\t'`, '\t'},
		{`'\x41'`, 'A'},
		{`'A'`, 'A'},
	}
	for _, c := range cases {
		toks, sink := lexAll(t, c.src)
		if sink.HasErrors() {
			t.Fatalf("%s: unexpected diagnostics: %v", c.src, sink.Msgs)
		}
		if toks[0].IntValue != c.want {
			t.Errorf("%s: got %d, want %d", c.src, toks[0].IntValue, c.want)
		}
	}
}

func TestUnknownEscapeWarnsAndDropsBackslash(t *testing.T) {
	toks, sink := lexAll(t, `'\z'`)
	if toks[0].IntValue != uint64('z') {
		t.Errorf("got %d, want %d ('z', backslash dropped)", toks[0].IntValue, 'z')
	}
	foundWarn := false
	for _, m := range sink.Msgs {
		if m.Code == "L11" && m.Level == diag.Warn {
			foundWarn = true
		}
	}
	if !foundWarn {
		t.Errorf("expected L11 warning, got %v", sink.Msgs)
	}
}

func TestPunctuatorLongestMatch(t *testing.T) {
	toks, sink := lexAll(t, ">>$= >>$ >> >=$ >= >")
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Msgs)
	}
	want := []string{">>$=", ">>$", ">>", ">=$", ">=", ">"}
	for i, w := range want {
		if toks[i].Text != w {
			t.Errorf("token %d: got %q, want %q", i, toks[i].Text, w)
		}
	}
}

func TestSpansWithinSource(t *testing.T) {
	// Universal invariant (spec §8): start_pos <= end_pos for every token.
	toks, _ := lexAll(t, "let x: int := 1;\nlet y: long := 2;")
	for _, tk := range toks {
		if tk.Kind == token.EOF {
			continue
		}
		if tk.End.Line < tk.Start.Line || (tk.End.Line == tk.Start.Line && tk.End.Col < tk.Start.Col) {
			t.Errorf("token %v has end before start", tk)
		}
	}
}

func TestNonASCIIInStringRejected(t *testing.T) {
	_, sink := lexAll(t, "\"caf\xe9\"")
	found := false
	for _, m := range sink.Msgs {
		if m.Code == "L09" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected L09 diagnostic for non-ASCII byte in string, got %v", sink.Msgs)
	}
}

func TestKeywordsVsNames(t *testing.T) {
	toks, _ := lexAll(t, "if iffy")
	if toks[0].Kind != token.Keyword {
		t.Errorf("%q should lex as Keyword", "if")
	}
	if toks[1].Kind != token.Name {
		t.Errorf("%q should lex as Name, not Keyword", "iffy")
	}
}
