// Package parser implements the recursive-descent, one-token-lookahead
// parser: it consumes the lexer's token stream and builds the internal/ast
// tree, resolving every identifier against the shared scope as it goes so
// later stages never need a separate symbol-collection pass.
package parser

import (
	"github.com/harashimahashi/ilc/internal/ast"
	"github.com/harashimahashi/ilc/internal/diag"
	"github.com/harashimahashi/ilc/internal/emit"
	"github.com/harashimahashi/ilc/internal/lexer"
	"github.com/harashimahashi/ilc/internal/token"
)

// abort is returned internally to unwind the whole parse in one go. The
// only two conditions that abort outright, rather than recording a
// diagnostic and recovering, are running off the end of the input
// mid-construct and the recursion-depth guard tripping.
type abort struct{ msg string }

func (a abort) Error() string { return a.msg }

// Parser drives one parse over a token stream, sharing ctx's module,
// scope, and diagnostics with the emitter that will later walk the tree
// it builds.
type Parser struct {
	lex *lexer.Lexer
	ctx *emit.Context
	dg  *diag.Sink

	cur, peek     token.Token
	curOK, peekOK bool

	depth int

	// loopDepth counts enclosing while/repeat/for bodies currently being
	// parsed; a break with loopDepth == 0 is reported immediately, at
	// parse time, rather than waiting to panic during emission.
	loopDepth int

	// sawReturn records whether a return statement has been parsed
	// anywhere within the function body currently being parsed.
	sawReturn bool
}

// New creates a Parser. ctx must already have its root scope populated
// (internal/runtime.Install) and its insertion point open (typically
// main's entry block), since top-level declarations are resolved
// against ctx.Cur as they are parsed.
func New(lex *lexer.Lexer, ctx *emit.Context, dg *diag.Sink) *Parser {
	p := &Parser{lex: lex, ctx: ctx, dg: dg}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur, p.curOK = p.peek, p.peekOK
	p.peek, p.peekOK = p.lex.NextToken()
}

func (p *Parser) at(tag token.Tag) bool { return p.curOK && p.cur.Tag == tag }

func (p *Parser) line() int { return p.cur.Line }

func (p *Parser) expect(tag token.Tag) (token.Token, error) {
	if !p.curOK {
		return token.Token{}, abort{"unexpected end of program"}
	}
	if p.cur.Tag != tag {
		p.dg.Errorf(p.line(), "expected %s, found %s", tag, p.cur.Tag)
		return p.cur, nil
	}
	t := p.cur
	p.advance()
	return t, nil
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > emit.MaxDepth {
		return abort{"reached recursion limits"}
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

// Parse parses the whole program and returns its top-level statement
// sequence. It returns a non-nil error only for the two conditions that
// abort a parse outright; ordinary syntax errors are instead recorded in
// the shared diag.Sink and parsing best-effort continues.
func Parse(lex *lexer.Lexer, ctx *emit.Context, dg *diag.Sink) (*ast.StmtSeq, error) {
	p := New(lex, ctx, dg)
	seq, err := p.parseStmtList(func() bool { return !p.curOK })
	if err != nil {
		return nil, err
	}
	for _, e := range p.lex.Errors() {
		dg.Errorf(e.Line, "%s", e.Msg)
	}
	return seq, nil
}

// parseStmtList parses statements until stop() reports true or a DEDENT
// is reached (the caller owns consuming that DEDENT itself).
func (p *Parser) parseStmtList(stop func() bool) (*ast.StmtSeq, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	seq := &ast.StmtSeq{}
	for !stop() && !p.at(token.DEDENT) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			seq.Stmts = append(seq.Stmts, s)
		}
	}
	return seq, nil
}

// parseBlock expects an INDENT, parses statements until the matching
// DEDENT, and consumes that DEDENT.
func (p *Parser) parseBlock() (*ast.StmtSeq, error) {
	if _, err := p.expect(token.INDENT); err != nil {
		return nil, err
	}
	seq, err := p.parseStmtList(func() bool { return false })
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DEDENT); err != nil {
		return nil, err
	}
	return seq, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	if !p.curOK {
		return nil, abort{"unexpected end of program"}
	}

	switch p.cur.Tag {
	case token.LET:
		return p.parseLet()
	case token.FUN:
		return p.parseFun()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.REPEAT:
		return p.parseRepeat()
	case token.FOR:
		return p.parseFor()
	case token.BREAK:
		ln := p.line()
		p.advance()
		if p.loopDepth == 0 {
			p.dg.Errorf(ln, "unenclosed break")
		}
		return &ast.Break{Pos: ast.Pos{Ln: ln}}, nil
	case token.RETURN:
		return p.parseReturn()
	default:
		return p.parseSimpleStatement()
	}
}
