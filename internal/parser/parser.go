// Package parser implements the recursive-descent parser that builds the
// typed AST from a token stream (spec §4.2), including the precedence
// table reproduced verbatim from that section.
//
// Grounded on lang/parse/parser.go's Parser struct shape (panic-mode
// error recovery, symtab/funcScope threaded through the parser) and
// lang/yparse/token.go's Expect*/Peek/Next idiom, adapted from the
// teacher's text-token-stream reader to operate directly over
// []token.Token, and generalized from YAPL's C-like grammar to New
// Solar's grammar (set/let/using declarations, szexpr/sztype, the
// full signed/unsigned operator suite, labeled if/for/while).
package parser

import (
	"github.com/Juhaziel/New-Solar-Language/internal/ast"
	"github.com/Juhaziel/New-Solar-Language/internal/config"
	"github.com/Juhaziel/New-Solar-Language/internal/diag"
	"github.com/Juhaziel/New-Solar-Language/internal/token"
)

// Parser builds an *ast.Module from a token stream, reporting diagnostics
// to sink. Comment tokens are transparently skipped except where the
// grammar specifically looks for a declaration's attached doc comment.
type Parser struct {
	toks []token.Token
	pos  int
	sink *diag.Sink
}

// New creates a parser over toks (as produced by internal/lexer.Lex).
func New(toks []token.Token, sink *diag.Sink) *Parser {
	return &Parser{toks: toks, sink: sink}
}

// ---- token-stream primitives ----

func (p *Parser) rawAt(i int) token.Token {
	if i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[i]
}

// cur returns the current significant (non-Comment) token.
func (p *Parser) cur() token.Token {
	i := p.pos
	for p.rawAt(i).Kind == token.Comment {
		i++
	}
	return p.rawAt(i)
}

// peekN returns the nth significant token after the current one (peekN(0) == cur()).
func (p *Parser) peekN(n int) token.Token {
	i := p.pos
	seen := 0
	for {
		tk := p.rawAt(i)
		if tk.Kind != token.Comment {
			if seen == n {
				return tk
			}
			seen++
		}
		if tk.Kind == token.EOF {
			return tk
		}
		i++
	}
}

// leadingComment returns the text of a Comment token immediately before
// the current significant token, if any (spec §4.2 "at most one comment
// immediately preceding ... attaches as its description").
func (p *Parser) leadingComment() string {
	if p.pos < len(p.toks) && p.toks[p.pos].Kind == token.Comment {
		return p.toks[p.pos].Text
	}
	return ""
}

// advance consumes and returns the current significant token, skipping
// over any Comment tokens in between.
func (p *Parser) advance() token.Token {
	for p.rawAt(p.pos).Kind == token.Comment {
		p.pos++
	}
	tk := p.rawAt(p.pos)
	if tk.Kind != token.EOF {
		p.pos++
	}
	return tk
}

func (p *Parser) atEOF() bool { return p.cur().Kind == token.EOF }

func (p *Parser) errAt(pos token.Pos, code diag.Code, format string, args ...interface{}) {
	p.sink.Errorf(diag.Pos(pos), code, format, args...)
}

func (p *Parser) expectPunct(s string) token.Token {
	tk := p.cur()
	if !tk.IsPunct(s) {
		p.errAt(tk.Start, "P03", "expected %q, got %s %q", s, tk.Kind, tk.Text)
		return tk
	}
	return p.advance()
}

func (p *Parser) expectName() token.Token {
	tk := p.cur()
	if tk.Kind != token.Name {
		p.errAt(tk.Start, "P04", "expected identifier, got %s %q", tk.Kind, tk.Text)
		return tk
	}
	return p.advance()
}

func (p *Parser) expectInteger() token.Token {
	tk := p.cur()
	if tk.Kind != token.Integer {
		p.errAt(tk.Start, "P04", "expected integer literal, got %s %q", tk.Kind, tk.Text)
		return tk
	}
	return p.advance()
}

func span(start, end token.Pos) ast.Span {
	return ast.Span{StartLine: start.Line, StartCol: start.Col, EndLine: end.Line, EndCol: end.Col}
}

func setSpan(n ast.Node, start, end token.Pos) {
	n.SetSpan(span(start, end))
}

// Parse parses the whole token stream into a Module.
func (p *Parser) Parse() *ast.Module {
	mod := ast.NewModule()
	start := p.cur().Start
	for !p.atEOF() {
		before := p.pos
		d := p.parseDeclaration()
		if d != nil {
			mod.Decls = append(mod.Decls, d)
		}
		if p.pos == before {
			// Nothing was consumed: force progress to avoid an infinite loop.
			p.advance()
		}
	}
	setSpan(mod, start, p.cur().Start)
	return mod
}

// isDeclStart reports whether tk can begin a declaration (top-level or
// local), including any leading static/inline modifiers.
func isDeclStart(tk token.Token) bool {
	if tk.Kind != token.Keyword {
		return false
	}
	switch tk.Text {
	case "static", "inline", "func", "set", "let", "using", "struct", "union":
		return true
	}
	return false
}

func (p *Parser) parseDeclaration() ast.Decl {
	desc := p.leadingComment()
	isStatic, isInline := false, false
	for {
		if p.cur().IsKeyword("static") {
			if isStatic {
				p.errAt(p.cur().Start, "P05", "repeated 'static' modifier")
			}
			isStatic = true
			p.advance()
			continue
		}
		if p.cur().IsKeyword("inline") {
			if isInline {
				p.errAt(p.cur().Start, "P05", "repeated 'inline' modifier")
			}
			isInline = true
			p.advance()
			continue
		}
		break
	}

	var d ast.Decl
	switch {
	case p.cur().IsKeyword("func"):
		d = p.parseFuncDecl(isStatic, isInline)
	case p.cur().IsKeyword("set"):
		if isInline {
			p.errAt(p.cur().Start, "P05", "'inline' is not valid on a constant declaration")
		}
		d = p.parseConstDecl(isStatic)
	case p.cur().IsKeyword("let"):
		if isInline {
			p.errAt(p.cur().Start, "P05", "'inline' is not valid on a variable declaration")
		}
		d = p.parseVarDecl(isStatic)
	case p.cur().IsKeyword("using"):
		if isStatic || isInline {
			p.errAt(p.cur().Start, "P05", "modifiers are not valid on a 'using' declaration")
		}
		d = p.parseUsingDecl()
	case p.cur().IsKeyword("struct"):
		if isStatic || isInline {
			p.errAt(p.cur().Start, "P05", "modifiers are not valid on a struct declaration")
		}
		d = p.parseRecordTypeDecl(false)
	case p.cur().IsKeyword("union"):
		if isStatic || isInline {
			p.errAt(p.cur().Start, "P05", "modifiers are not valid on a union declaration")
		}
		d = p.parseRecordTypeDecl(true)
	default:
		tk := p.cur()
		p.errAt(tk.Start, "P02", "expected a declaration, got %s %q", tk.Kind, tk.Text)
		return nil
	}
	if d != nil {
		if d.Description() == "" {
			d.SetDescription(desc)
		}
		// Trailing doc comment: a Comment token on the same line as the
		// declaration's end, not yet consumed by anything else.
		if p.pos < len(p.toks) && p.toks[p.pos].Kind == token.Comment &&
			p.toks[p.pos].Start.Line == d.Span().EndLine {
			d.SetDescription(p.toks[p.pos].Text)
			p.pos++
		}
	}
	return d
}

func (p *Parser) parseFuncDecl(isStatic, isInline bool) ast.Decl {
	start := p.advance().Start // 'func'
	name := p.expectName().Text
	p.expectPunct("(")
	names, types, variadic := p.parseFuncParams()
	p.expectPunct(")")
	p.expectPunct("->")
	p.expectPunct("(")
	ret := p.parseType()
	p.expectPunct(")")

	var body *ast.CompoundStmt
	endPos := p.cur().End
	if p.cur().IsPunct(";") {
		endPos = p.advance().End
	} else {
		body = p.parseCompoundStmt()
		bs := body.Span()
		endPos = token.Pos{Line: bs.EndLine, Col: bs.EndCol}
	}
	ft := ast.NewFuncType(ret, types, variadic)
	setSpan(ft, start, endPos)
	d := ast.NewFuncDecl(name, ft, names, body, isStatic, isInline)
	setSpan(d, start, endPos)
	return d
}

func (p *Parser) parseFuncParams() (names []string, types []ast.Type, variadic bool) {
	if p.cur().IsPunct(")") {
		return nil, nil, false
	}
	for {
		if p.cur().IsPunct("...") {
			tk := p.advance()
			if len(names) == 0 {
				p.errAt(tk.Start, "P07", "variadic '...' requires at least one fixed parameter")
			}
			variadic = true
			break
		}
		n := p.expectName().Text
		p.expectPunct(":")
		t := p.parseType()
		names = append(names, n)
		types = append(types, t)
		if p.cur().IsPunct(",") {
			p.advance()
			continue
		}
		break
	}
	return names, types, variadic
}

func (p *Parser) parseConstDecl(isStatic bool) ast.Decl {
	start := p.advance().Start // 'set'
	name := p.expectName().Text
	p.expectPunct(":")
	t := p.parseType()
	p.expectPunct(":=")
	v := p.parseInitExpr()
	end := p.expectPunct(";").End
	d := ast.NewConstDecl(name, t, v, isStatic)
	setSpan(d, start, end)
	return d
}

func (p *Parser) parseVarDecl(isStatic bool) ast.Decl {
	start := p.advance().Start // 'let'
	name := p.expectName().Text
	p.expectPunct(":")
	t := p.parseType()
	var v ast.Expr
	if p.cur().IsPunct(":=") {
		p.advance()
		v = p.parseInitExpr()
	}
	end := p.expectPunct(";").End
	d := ast.NewVarDecl(name, t, v, isStatic)
	setSpan(d, start, end)
	return d
}

func (p *Parser) parseUsingDecl() ast.Decl {
	start := p.advance().Start // 'using'
	name := p.expectName().Text
	p.expectPunct(":=")
	t := p.parseType()
	end := p.expectPunct(";").End
	d := ast.NewTypeDecl(name, t)
	setSpan(d, start, end)
	return d
}

func (p *Parser) parseRecordTypeDecl(isUnion bool) ast.Decl {
	start := p.advance().Start // 'struct'/'union'
	name := p.expectName().Text
	members := p.parseRecord()
	end := p.expectPunct(";").End
	var t ast.Type
	if isUnion {
		t = ast.NewUnionType(members)
	} else {
		t = ast.NewStructType(members)
	}
	setSpan(t, start, end)
	d := ast.NewTypeDecl(name, t)
	setSpan(d, start, end)
	return d
}

// parseRecord parses `{ member (',' member)* ','? }` with at least one
// member (spec §4.2 "Records").
func (p *Parser) parseRecord() []*ast.MemberData {
	p.expectPunct("{")
	if p.cur().IsPunct("}") {
		p.errAt(p.cur().Start, "P06", "a record must have at least one member")
		p.advance()
		return nil
	}
	var members []*ast.MemberData
	for {
		mstart := p.cur().Start
		name := p.expectName().Text
		p.expectPunct(":")
		t := p.parseType()
		var bits *int
		if p.cur().IsPunct(":") {
			p.advance()
			tk := p.expectInteger()
			v := int(tk.IntValue)
			bits = &v
		}
		m := ast.NewMemberData(name, t, bits)
		setSpan(m, mstart, p.toks[p.pos-1].End)
		members = append(members, m)
		if p.cur().IsPunct(",") {
			p.advance()
			if p.cur().IsPunct("}") {
				break
			}
			continue
		}
		break
	}
	p.expectPunct("}")
	return members
}

// ---- Types ----

func (p *Parser) parseType() ast.Type {
	start := p.cur().Start
	isVolatile := false
	if p.cur().IsKeyword("volatile") {
		p.advance()
		isVolatile = true
	}

	var t ast.Type
	switch {
	case p.cur().IsKeyword("void"):
		p.advance()
		if isVolatile {
			p.errAt(start, "P06", "'volatile' is not valid on 'void'")
		}
		t = ast.NewVoidType()
	case p.cur().IsKeyword("int"):
		p.advance()
		t = ast.NewIntType(config.Int)
	case p.cur().IsKeyword("long"):
		p.advance()
		t = ast.NewIntType(config.Long)
	case p.cur().IsKeyword("quad"):
		p.advance()
		t = ast.NewIntType(config.Quad)
	case p.cur().IsPunct("*"):
		p.advance()
		inner := p.parseType()
		t = ast.NewArrayType(inner, nil)
	case p.cur().IsPunct("["):
		p.advance()
		var size ast.Expr
		if !p.cur().IsPunct("]") {
			size = p.parseAssignment()
		}
		p.expectPunct("]")
		inner := p.parseType()
		t = ast.NewArrayType(inner, size)
	case p.cur().IsKeyword("func"):
		p.advance()
		p.expectPunct("(")
		types, variadic := p.parseTypeList()
		p.expectPunct(")")
		p.expectPunct("->")
		p.expectPunct("(")
		ret := p.parseType()
		p.expectPunct(")")
		t = ast.NewFuncType(ret, types, variadic)
	case p.cur().IsKeyword("struct"):
		p.advance()
		members := p.parseRecord()
		t = ast.NewStructType(members)
	case p.cur().IsKeyword("union"):
		p.advance()
		members := p.parseRecord()
		t = ast.NewUnionType(members)
	case p.cur().Kind == token.Name:
		name := p.advance().Text
		t = ast.NewRefType(name)
	default:
		tk := p.cur()
		p.errAt(tk.Start, "P03", "expected a type, got %s %q", tk.Kind, tk.Text)
		p.advance()
		t = ast.NewRefType("<error>")
	}
	t.SetVolatile(isVolatile)
	setSpan(t, start, p.toks[max0(p.pos-1)].End)
	return t
}

func max0(i int) int {
	if i < 0 {
		return 0
	}
	return i
}

func (p *Parser) parseTypeList() (types []ast.Type, variadic bool) {
	if p.cur().IsPunct(")") {
		return nil, false
	}
	for {
		if p.cur().IsPunct("...") {
			tk := p.advance()
			if len(types) == 0 {
				p.errAt(tk.Start, "P07", "variadic '...' requires at least one fixed parameter")
			}
			variadic = true
			break
		}
		types = append(types, p.parseType())
		if p.cur().IsPunct(",") {
			p.advance()
			continue
		}
		break
	}
	return types, variadic
}

// ---- Statements ----

func (p *Parser) parseCompoundStmt() *ast.CompoundStmt {
	start := p.expectPunct("{").Start
	var stmts []ast.Stmt
	for !p.cur().IsPunct("}") && !p.atEOF() {
		before := p.pos
		stmts = append(stmts, p.parseStatement())
		if p.pos == before {
			p.advance()
		}
	}
	end := p.expectPunct("}").End
	cs := ast.NewCompoundStmt(stmts)
	setSpan(cs, start, end)
	return cs
}

func (p *Parser) parseStatement() ast.Stmt {
	// Labeled if/while/for: "NAME ':' (if|while|for) ...".
	if p.cur().Kind == token.Name && p.peekN(1).IsPunct(":") {
		third := p.peekN(2)
		if third.IsKeyword("if") || third.IsKeyword("while") || third.IsKeyword("for") {
			label := p.advance().Text
			p.advance() // ':'
			return p.parseLabeledLoopOrIf(label)
		}
	}

	switch {
	case p.cur().IsPunct(";"):
		start := p.advance().Start
		s := ast.NewEmptyStmt()
		setSpan(s, start, start)
		return s
	case p.cur().IsPunct("{"):
		return p.parseCompoundStmt()
	case p.cur().IsKeyword("if"), p.cur().IsKeyword("while"), p.cur().IsKeyword("for"):
		return p.parseLabeledLoopOrIf("")
	case p.cur().IsKeyword("continue"):
		start := p.advance().Start
		label := ""
		end := start
		if p.cur().Kind == token.Name {
			tk := p.advance()
			label = tk.Text
			end = tk.End
		}
		end = p.expectPunct(";").End
		s := ast.NewContinueStmt(label)
		setSpan(s, start, end)
		return s
	case p.cur().IsKeyword("break"), p.cur().IsKeyword("breakif"):
		breakIf := p.cur().IsKeyword("breakif")
		start := p.advance().Start
		label := ""
		if p.cur().Kind == token.Name {
			label = p.advance().Text
		}
		end := p.expectPunct(";").End
		s := ast.NewBreakStmt(breakIf, label)
		setSpan(s, start, end)
		return s
	case p.cur().IsKeyword("return"):
		start := p.advance().Start
		var x ast.Expr
		if !p.cur().IsPunct(";") {
			x = p.parseCommaExpr()
		}
		end := p.expectPunct(";").End
		s := ast.NewReturnStmt(x)
		setSpan(s, start, end)
		return s
	case isDeclStart(p.cur()):
		d := p.parseDeclaration()
		s := ast.NewDefStmt(d)
		if d != nil {
			setSpan(s, p.posOf(d.Span().StartLine, d.Span().StartCol), p.posOf(d.Span().EndLine, d.Span().EndCol))
		}
		return s
	default:
		start := p.cur().Start
		x := p.parseCommaExpr()
		end := p.expectPunct(";").End
		s := ast.NewExprStmt(x)
		setSpan(s, start, end)
		return s
	}
}

func (p *Parser) posOf(line, col int) token.Pos { return token.Pos{Line: line, Col: col} }

func (p *Parser) parseLabeledLoopOrIf(label string) ast.Stmt {
	switch {
	case p.cur().IsKeyword("if"):
		return p.parseIfStmt(label)
	case p.cur().IsKeyword("while"):
		return p.parseWhileStmt(label)
	case p.cur().IsKeyword("for"):
		return p.parseForStmt(label)
	default:
		tk := p.cur()
		p.errAt(tk.Start, "P03", "expected 'if', 'while' or 'for' after label")
		return ast.NewEmptyStmt()
	}
}

func (p *Parser) parseIfStmt(label string) ast.Stmt {
	start := p.advance().Start // 'if'
	p.expectPunct("(")
	cond := p.parseCommaExpr()
	p.expectPunct(")")
	body := p.parseStatement()
	var els ast.Stmt
	if p.cur().IsKeyword("else") {
		p.advance()
		els = p.parseStatement()
	}
	s := ast.NewIfStmt(cond, body, els, label)
	lastEnd := body.Span()
	if els != nil {
		lastEnd = els.Span()
	}
	setSpan(s, start, p.posOf(lastEnd.EndLine, lastEnd.EndCol))
	return s
}

func (p *Parser) parseWhileStmt(label string) ast.Stmt {
	start := p.advance().Start // 'while'
	p.expectPunct("(")
	cond := p.parseCommaExpr()
	p.expectPunct(")")
	body := p.parseStatement()
	var els ast.Stmt
	if p.cur().IsKeyword("else") {
		p.advance()
		els = p.parseStatement()
	}
	s := ast.NewIterStmt(nil, cond, nil, body, els, label)
	lastEnd := body.Span()
	if els != nil {
		lastEnd = els.Span()
	}
	setSpan(s, start, p.posOf(lastEnd.EndLine, lastEnd.EndCol))
	return s
}

func (p *Parser) parseForStmt(label string) ast.Stmt {
	start := p.advance().Start // 'for'
	p.expectPunct("(")

	var init ast.Stmt
	if p.cur().IsPunct(";") {
		p.advance()
	} else if isDeclStart(p.cur()) {
		d := p.parseDeclaration() // consumes its own trailing ';'
		init = ast.NewDefStmt(d)
	} else {
		e := p.parseCommaExpr()
		p.expectPunct(";")
		init = ast.NewExprStmt(e)
	}

	var cond ast.Expr
	if p.cur().IsPunct(";") {
		// Omitted condition defaults to integer literal 1 (spec §4.2).
		lit := ast.NewIntExpr(config.Int, 1)
		setSpan(lit, p.cur().Start, p.cur().Start)
		cond = lit
	} else {
		cond = p.parseCommaExpr()
	}
	p.expectPunct(";")

	var inc ast.Expr
	if !p.cur().IsPunct(")") {
		inc = p.parseCommaExpr()
	}
	p.expectPunct(")")

	body := p.parseStatement()
	var els ast.Stmt
	if p.cur().IsKeyword("else") {
		p.advance()
		els = p.parseStatement()
	}
	s := ast.NewIterStmt(init, cond, inc, body, els, label)
	lastEnd := body.Span()
	if els != nil {
		lastEnd = els.Span()
	}
	setSpan(s, start, p.posOf(lastEnd.EndLine, lastEnd.EndCol))
	return s
}

// ---- Init expressions (spec §4.2 "Init expressions") ----

func (p *Parser) parseInitExpr() ast.Expr {
	start := p.cur().Start
	switch {
	case p.cur().Kind == token.String:
		tk := p.advance()
		e := ast.NewCompoundStr(tk.Text)
		setSpan(e, start, tk.End)
		return e
	case p.cur().IsPunct("{"):
		return p.parseArrayCompound()
	case p.cur().IsKeyword("struct") && p.peekN(1).IsPunct("{"):
		return p.parseStructCompound()
	default:
		return p.parseAssignment()
	}
}

func (p *Parser) parseArrayCompound() ast.Expr {
	start := p.advance().Start // '{'
	if p.cur().IsPunct("}") {
		p.errAt(p.cur().Start, "P08", "empty array compound literal")
		end := p.advance().End
		e := ast.NewCompoundArray(nil)
		setSpan(e, start, end)
		return e
	}
	var elems []ast.Expr
	for {
		elems = append(elems, p.parseInitExpr())
		if p.cur().IsPunct(",") {
			p.advance()
			if p.cur().IsPunct("}") {
				break
			}
			continue
		}
		break
	}
	end := p.expectPunct("}").End
	e := ast.NewCompoundArray(elems)
	setSpan(e, start, end)
	return e
}

func (p *Parser) parseStructCompound() ast.Expr {
	start := p.advance().Start // 'struct'
	p.expectPunct("{")
	if p.cur().IsPunct("}") {
		p.errAt(p.cur().Start, "P08", "empty struct compound literal")
		end := p.advance().End
		e := ast.NewCompoundStruct(nil, nil)
		setSpan(e, start, end)
		return e
	}
	var names []string
	var values []ast.Expr
	seen := map[string]bool{}
	for {
		name := p.expectName().Text
		if seen[name] {
			p.errAt(p.toks[p.pos-1].Start, "P09", "repeated struct initializer key %q", name)
		}
		seen[name] = true
		p.expectPunct(":")
		v := p.parseInitExpr()
		names = append(names, name)
		values = append(values, v)
		if p.cur().IsPunct(",") {
			p.advance()
			if p.cur().IsPunct("}") {
				break
			}
			continue
		}
		break
	}
	end := p.expectPunct("}").End
	e := ast.NewCompoundStruct(names, values)
	setSpan(e, start, end)
	return e
}

// ---- Expressions: precedence-climbing per the table in spec §4.2 ----

func (p *Parser) parseCommaExpr() ast.Expr {
	start := p.cur().Start
	first := p.parseAssignment()
	if !p.cur().IsPunct(",") {
		return first
	}
	exprs := []ast.Expr{first}
	for p.cur().IsPunct(",") {
		p.advance()
		exprs = append(exprs, p.parseAssignment())
	}
	e := ast.NewCommaExpr(exprs)
	setSpan(e, start, p.toks[p.pos-1].End)
	return e
}

var augmentedOps = map[string]ast.BinaryOp{
	"+=": ast.Add, "-=": ast.Sub, "*=": ast.Mult, "/=": ast.UDiv,
	"%$=": ast.SMod, "<<=": ast.ShLogLeft, ">>=": ast.ShLogRight, ">>$=": ast.ShArRight,
	"&=": ast.BitAnd, "|=": ast.BitOr, "^=": ast.BitXor,
}

func (p *Parser) parseAssignment() ast.Expr {
	start := p.cur().Start
	lhs := p.parseTernary()
	tk := p.cur()
	if tk.IsPunct(":=") {
		p.advance()
		rhs := p.parseAssignment()
		e := ast.NewAssignExpr(lhs, rhs, nil)
		setSpan(e, start, p.toks[p.pos-1].End)
		return e
	}
	if op, ok := augmentedOps[tk.Text]; ok && tk.Kind == token.Punctuator {
		p.advance()
		rhs := p.parseAssignment()
		o := op
		e := ast.NewAssignExpr(lhs, rhs, &o)
		setSpan(e, start, p.toks[p.pos-1].End)
		return e
	}
	return lhs
}

func (p *Parser) parseTernary() ast.Expr {
	start := p.cur().Start
	cond := p.parseLogicalOr()
	if p.cur().IsPunct("?") {
		p.advance()
		then := p.parseAssignment()
		p.expectPunct(":")
		els := p.parseTernary()
		e := ast.NewTernaryExpr(cond, then, els)
		setSpan(e, start, p.toks[p.pos-1].End)
		return e
	}
	return cond
}

func (p *Parser) parseLogicalOr() ast.Expr {
	start := p.cur().Start
	left := p.parseLogicalAnd()
	for p.cur().IsPunct("||") {
		p.advance()
		right := p.parseLogicalAnd()
		e := ast.NewBinaryCondExpr(left, ast.LogicalOr, right)
		setSpan(e, start, p.toks[p.pos-1].End)
		left = e
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	start := p.cur().Start
	left := p.parseBitOr()
	for p.cur().IsPunct("&&") {
		p.advance()
		right := p.parseBitOr()
		e := ast.NewBinaryCondExpr(left, ast.LogicalAnd, right)
		setSpan(e, start, p.toks[p.pos-1].End)
		left = e
	}
	return left
}

func (p *Parser) parseBitOr() ast.Expr {
	start := p.cur().Start
	left := p.parseBitXor()
	for p.cur().IsPunct("|") {
		p.advance()
		right := p.parseBitXor()
		e := ast.NewBinaryExpr(left, ast.BitOr, right)
		setSpan(e, start, p.toks[p.pos-1].End)
		left = e
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expr {
	start := p.cur().Start
	left := p.parseBitAnd()
	for p.cur().IsPunct("^") {
		p.advance()
		right := p.parseBitAnd()
		e := ast.NewBinaryExpr(left, ast.BitXor, right)
		setSpan(e, start, p.toks[p.pos-1].End)
		left = e
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expr {
	start := p.cur().Start
	left := p.parseEquality()
	for p.cur().IsPunct("&") {
		p.advance()
		right := p.parseEquality()
		e := ast.NewBinaryExpr(left, ast.BitAnd, right)
		setSpan(e, start, p.toks[p.pos-1].End)
		left = e
	}
	return left
}

var equalityOps = map[string]ast.CondBinaryOp{"==": ast.Eq, "!=": ast.NotEq}

func (p *Parser) parseEquality() ast.Expr {
	start := p.cur().Start
	left := p.parseRelational()
	for {
		op, ok := equalityOps[p.cur().Text]
		if !ok || p.cur().Kind != token.Punctuator {
			break
		}
		p.advance()
		right := p.parseRelational()
		e := ast.NewBinaryCondExpr(left, op, right)
		setSpan(e, start, p.toks[p.pos-1].End)
		left = e
	}
	return left
}

var relationalOps = map[string]ast.CondBinaryOp{
	"<":   ast.ULt,
	"<=":  ast.ULtE,
	"<$":  ast.SLt,
	"<=$": ast.SLtE,
	">":   ast.UGt,
	">=":  ast.UGtE,
	">$":  ast.SGt,
	">=$": ast.SGtE,
}

func (p *Parser) parseRelational() ast.Expr {
	start := p.cur().Start
	left := p.parseShift()
	for {
		op, ok := relationalOps[p.cur().Text]
		if !ok || p.cur().Kind != token.Punctuator {
			break
		}
		p.advance()
		right := p.parseShift()
		e := ast.NewBinaryCondExpr(left, op, right)
		setSpan(e, start, p.toks[p.pos-1].End)
		left = e
	}
	return left
}

var shiftOps = map[string]ast.BinaryOp{"<<": ast.ShLogLeft, ">>": ast.ShLogRight, ">>$": ast.ShArRight}

func (p *Parser) parseShift() ast.Expr {
	start := p.cur().Start
	left := p.parseAdditive()
	for {
		op, ok := shiftOps[p.cur().Text]
		if !ok || p.cur().Kind != token.Punctuator {
			break
		}
		p.advance()
		right := p.parseAdditive()
		e := ast.NewBinaryExpr(left, op, right)
		setSpan(e, start, p.toks[p.pos-1].End)
		left = e
	}
	return left
}

var additiveOps = map[string]ast.BinaryOp{"+": ast.Add, "-": ast.Sub}

func (p *Parser) parseAdditive() ast.Expr {
	start := p.cur().Start
	left := p.parseMultiplicative()
	for {
		op, ok := additiveOps[p.cur().Text]
		if !ok || p.cur().Kind != token.Punctuator {
			break
		}
		p.advance()
		right := p.parseMultiplicative()
		e := ast.NewBinaryExpr(left, op, right)
		setSpan(e, start, p.toks[p.pos-1].End)
		left = e
	}
	return left
}

var multiplicativeOps = map[string]ast.BinaryOp{
	"*": ast.Mult, "/": ast.UDiv, "/$": ast.SDiv, "%": ast.UMod, "%$": ast.SMod,
}

func (p *Parser) parseMultiplicative() ast.Expr {
	start := p.cur().Start
	left := p.parseUnary()
	for {
		op, ok := multiplicativeOps[p.cur().Text]
		if !ok || p.cur().Kind != token.Punctuator {
			break
		}
		p.advance()
		right := p.parseUnary()
		e := ast.NewBinaryExpr(left, op, right)
		setSpan(e, start, p.toks[p.pos-1].End)
		left = e
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.cur().Start
	switch {
	case p.cur().IsPunct("&"):
		p.advance()
		x := p.parseUnary()
		e := ast.NewAddrOfExpr(x)
		setSpan(e, start, p.toks[p.pos-1].End)
		return e
	case p.cur().IsPunct("*"):
		p.advance()
		x := p.parseUnary()
		e := ast.NewDerefExpr(x)
		setSpan(e, start, p.toks[p.pos-1].End)
		return e
	case p.cur().IsPunct("!"):
		p.advance()
		x := p.parseUnary()
		e := ast.NewUnaryCondExpr(x)
		setSpan(e, start, p.toks[p.pos-1].End)
		return e
	case p.cur().IsPunct("~"):
		p.advance()
		x := p.parseUnary()
		e := ast.NewUnaryExpr(ast.BitNot, x)
		setSpan(e, start, p.toks[p.pos-1].End)
		return e
	case p.cur().IsPunct("+"):
		p.advance()
		x := p.parseUnary()
		e := ast.NewUnaryExpr(ast.UnaryPlus, x)
		setSpan(e, start, p.toks[p.pos-1].End)
		return e
	case p.cur().IsPunct("-"):
		p.advance()
		x := p.parseUnary()
		e := ast.NewUnaryExpr(ast.UnaryMinus, x)
		setSpan(e, start, p.toks[p.pos-1].End)
		return e
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	start := p.cur().Start
	e := p.parsePrimary()
	for {
		switch {
		case p.cur().Kind == token.Name && p.cur().Text == "as":
			p.advance()
			signed := false
			if p.cur().IsPunct("$") {
				p.advance()
				signed = true
			}
			t := p.parseType()
			ce := ast.NewCastExpr(e, t, signed)
			setSpan(ce, start, p.toks[p.pos-1].End)
			e = ce
		case p.cur().IsPunct("->"):
			p.advance()
			member := p.expectName().Text
			ae := ast.NewAccessExpr(ast.NewDerefExpr(e), member)
			setSpan(ae.Record, start, p.toks[p.pos-1].End)
			setSpan(ae, start, p.toks[p.pos-1].End)
			e = ae
		case p.cur().IsPunct("."):
			p.advance()
			member := p.expectName().Text
			ae := ast.NewAccessExpr(e, member)
			setSpan(ae, start, p.toks[p.pos-1].End)
			e = ae
		case p.cur().IsPunct("["):
			p.advance()
			idx := p.parseCommaExpr()
			p.expectPunct("]")
			ie := ast.NewIndexExpr(e, idx)
			setSpan(ie, start, p.toks[p.pos-1].End)
			e = ie
		case p.cur().IsPunct("("):
			p.advance()
			var args []ast.Expr
			if !p.cur().IsPunct(")") {
				for {
					args = append(args, p.parseAssignment())
					if p.cur().IsPunct(",") {
						p.advance()
						continue
					}
					break
				}
			}
			p.expectPunct(")")
			ce := ast.NewCallExpr(e, args)
			setSpan(ce, start, p.toks[p.pos-1].End)
			e = ce
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tk := p.cur()
	switch {
	case tk.Kind == token.Name && tk.Text == "szexpr":
		p.advance()
		x := p.parseUnary()
		e := ast.NewSzExprExpr(x)
		setSpan(e, tk.Start, p.toks[p.pos-1].End)
		return e
	case tk.Kind == token.Name && tk.Text == "sztype":
		p.advance()
		t := p.parseType()
		e := ast.NewSzTypeExpr(t)
		setSpan(e, tk.Start, p.toks[p.pos-1].End)
		return e
	case tk.Kind == token.Name:
		p.advance()
		e := ast.NewNameExpr(tk.Text)
		setSpan(e, tk.Start, tk.End)
		return e
	case tk.Kind == token.Integer:
		p.advance()
		e := ast.NewIntExpr(intWidthOf(tk.IntWidth), tk.IntValue)
		setSpan(e, tk.Start, tk.End)
		return e
	case tk.Kind == token.String:
		p.advance()
		e := ast.NewStrExpr(tk.Text)
		setSpan(e, tk.Start, tk.End)
		return e
	case tk.IsPunct("("):
		p.advance()
		inner := p.parseCommaExpr()
		end := p.expectPunct(")").End
		setSpan(inner, tk.Start, end)
		return inner
	default:
		p.errAt(tk.Start, "P03", "expected an expression, got %s %q", tk.Kind, tk.Text)
		p.advance()
		e := ast.NewNameExpr("<error>")
		setSpan(e, tk.Start, tk.Start)
		return e
	}
}

func intWidthOf(w token.IntType) config.IntWidth {
	switch w {
	case token.IntWidthLong:
		return config.Long
	case token.IntWidthQuad:
		return config.Quad
	default:
		return config.Int
	}
}
