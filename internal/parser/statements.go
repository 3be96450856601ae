package parser

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/harashimahashi/ilc/internal/ast"
	"github.com/harashimahashi/ilc/internal/scope"
	"github.com/harashimahashi/ilc/internal/token"
)

// parseArrayDims parses one or more '[' NUM ']' dimension brackets,
// validating each size is a positive integer literal.
func (p *Parser) parseArrayDims() ([]int, error) {
	var dims []int
	for p.at(token.Tag('[')) {
		p.advance()
		ln := p.line()
		neg := false
		if p.at(token.Tag('-')) {
			neg = true
			p.advance()
		}
		numTok, err := p.expect(token.NUM)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Tag(']')); err != nil {
			return nil, err
		}
		n := numTok.Num
		switch {
		case neg || n <= 0:
			p.dg.Errorf(ln, "array size must be positive number")
			dims = append(dims, 1)
		case n != float64(int(n)):
			p.dg.Errorf(ln, "array size must not be double")
			dims = append(dims, 1)
		default:
			dims = append(dims, int(n))
		}
	}
	return dims, nil
}

func (p *Parser) parseLet() (ast.Statement, error) {
	ln := p.line()
	p.advance() // LET
	nameTok, err := p.expect(token.ID)
	if err != nil {
		return nil, err
	}
	name := nameTok.Lexeme

	dims, err := p.parseArrayDims()
	if err != nil {
		return nil, err
	}

	var val ast.Expression
	if p.at(token.Tag('=')) {
		p.advance()
		val, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, exists := p.ctx.Cur.GetCurrent(name); exists {
		p.dg.Errorf(ln, "redeclaration of %q in this scope", name)
	}

	if len(dims) == 0 {
		p.ctx.Cur.Insert(name, &scope.Entity{Kind: scope.KindVar})
		return &ast.Let{Pos: ast.Pos{Ln: ln}, Name: name, Value: val}, nil
	}

	if ac, ok := val.(*ast.ArrayConstant); ok {
		ac.Name = name
	}
	p.ctx.Cur.Insert(name, &scope.Entity{Kind: scope.KindVar, IsArray: true, ArrayLen: product(dims), Dims: dims})
	return &ast.Let{Pos: ast.Pos{Ln: ln}, Name: name, Dims: dims, Value: val}, nil
}

func product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

func (p *Parser) parseFun() (ast.Statement, error) {
	ln := p.line()
	p.advance() // FUN
	nameTok, err := p.expect(token.ID)
	if err != nil {
		return nil, err
	}
	name := nameTok.Lexeme

	if _, err := p.expect(token.Tag('(')); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.at(token.Tag(')')) {
		pnameTok, err := p.expect(token.ID)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: pnameTok.Lexeme})
		if p.at(token.Tag(',')) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.Tag(')')); err != nil {
		return nil, err
	}

	paramTypes := make([]*ir.Param, len(params))
	for i, prm := range params {
		paramTypes[i] = ir.NewParam(prm.Name, types.Double)
	}

	if _, exists := p.ctx.Top.GetCurrent(name); exists {
		p.dg.Errorf(ln, "redeclaration of function %q", name)
	}
	fn := p.ctx.Module.NewFunc(name, types.Double, paramTypes...)
	p.ctx.Top.Insert(name, &scope.Entity{Kind: scope.KindFun, Callee: fn, ParamCount: len(params)})

	outer := p.ctx.Cur
	p.ctx.Cur = outer.Nested()
	for _, prm := range params {
		p.ctx.Cur.Insert(prm.Name, &scope.Entity{Kind: scope.KindVar})
	}
	savedLoopDepth := p.loopDepth
	p.loopDepth = 0
	savedReturn := p.sawReturn
	p.sawReturn = false
	body, err := p.parseBlock()
	if !p.sawReturn {
		p.dg.Errorf(ln, "function must have a return statement")
	}
	p.sawReturn = savedReturn
	p.loopDepth = savedLoopDepth
	p.ctx.Cur = outer
	if err != nil {
		return nil, err
	}

	return &ast.FunStmt{
		Pos: ast.Pos{Ln: ln}, Name: name, Params: params, Body: body,
	}, nil
}

func (p *Parser) parseScopedBlock() (*ast.StmtSeq, error) {
	outer := p.ctx.Cur
	p.ctx.Cur = outer.Nested()
	body, err := p.parseBlock()
	p.ctx.Cur = outer
	return body, err
}

func (p *Parser) parseIf() (ast.Statement, error) {
	ln := p.line()
	p.advance() // IF
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	thenBlock, err := p.parseScopedBlock()
	if err != nil {
		return nil, err
	}
	if p.at(token.ELSE) {
		p.advance()
		elseBlock, err := p.parseScopedBlock()
		if err != nil {
			return nil, err
		}
		return &ast.IfElse{Pos: ast.Pos{Ln: ln}, Cond: cond, Then: thenBlock, Else: elseBlock}, nil
	}
	return &ast.If{Pos: ast.Pos{Ln: ln}, Cond: cond, Then: thenBlock}, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	ln := p.line()
	p.advance() // WHILE
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.parseScopedBlock()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &ast.While{Pos: ast.Pos{Ln: ln}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseRepeat() (ast.Statement, error) {
	ln := p.line()
	p.advance() // REPEAT
	p.loopDepth++
	body, err := p.parseScopedBlock()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.UNTIL); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.RepeatUntil{Pos: ast.Pos{Ln: ln}, Body: body, Cond: cond}, nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	ln := p.line()
	p.advance() // FOR

	outer := p.ctx.Cur
	p.ctx.Cur = outer.Nested()

	decl, err := p.parseLet()
	if err != nil {
		p.ctx.Cur = outer
		return nil, err
	}
	letStmt, ok := decl.(*ast.Let)
	if !ok || letStmt.Value == nil {
		p.dg.Errorf(ln, "expected a loop counter initializer")
	}

	dir := ast.To
	switch {
	case p.at(token.TO):
		p.advance()
	case p.at(token.DOWNTO):
		dir = ast.Downto
		p.advance()
	default:
		p.dg.Errorf(p.line(), "expected to or downto in for-loop header")
	}

	end, err := p.parseExpr()
	if err != nil {
		p.ctx.Cur = outer
		return nil, err
	}

	p.loopDepth++
	body, err := p.parseBlock()
	p.loopDepth--
	p.ctx.Cur = outer
	if err != nil {
		return nil, err
	}

	return &ast.For{Pos: ast.Pos{Ln: ln}, Var: letStmt.Name, Start: letStmt.Value, End: end, Dir: dir, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	ln := p.line()
	p.advance() // RETURN
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.sawReturn = true
	return &ast.Return{Pos: ast.Pos{Ln: ln}, Value: val}, nil
}

// parseSimpleStatement handles the two statement forms that start with
// a bare identifier: assignment (to a scalar or to an array element,
// chaining any number of index brackets) and a call made purely for
// effect.
func (p *Parser) parseSimpleStatement() (ast.Statement, error) {
	ln := p.line()
	if !p.at(token.ID) {
		p.dg.Errorf(ln, "unexpected token %s", p.cur.Tag)
		p.advance()
		return nil, nil
	}
	name := p.cur.Lexeme
	p.advance()

	if p.at(token.Tag('(')) {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		call := &ast.Call{Pos: ast.Pos{Ln: ln}, Name: name, Args: args}
		return &ast.ExprStmt{Pos: ast.Pos{Ln: ln}, Expr: call}, nil
	}

	var indices []ast.Expression
	for p.at(token.Tag('[')) {
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Tag(']')); err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}

	if _, ok := p.ctx.Cur.Get(name); !ok {
		p.dg.Errorf(ln, "using of undeclared '%s'", name)
	}

	if _, err := p.expect(token.Tag('=')); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	target := &ast.Access{
		Pos:     ast.Pos{Ln: ln},
		Target:  &ast.Id{Pos: ast.Pos{Ln: ln}, Name: name},
		Indices: indices,
	}
	return &ast.Store{Pos: ast.Pos{Ln: ln}, Target: target, Value: val}, nil
}
