package parser

import (
	"github.com/harashimahashi/ilc/internal/ast"
	"github.com/harashimahashi/ilc/internal/token"
)

// parseExpr is the grammar's entry point: the lowest-precedence level,
// logical or.
func (p *Parser) parseExpr() (ast.Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.OR) {
		ln := p.line()
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Bool{Pos: ast.Pos{Ln: ln}, Op: ast.Or, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.at(token.AND) {
		ln := p.line()
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.Bool{Pos: ast.Pos{Ln: ln}, Op: ast.And, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.at(token.EQ) || p.at(token.NE) {
		ln, op := p.line(), ast.Eq
		if p.at(token.NE) {
			op = ast.Ne
		}
		p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.Bool{Pos: ast.Pos{Ln: ln}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.at(token.Tag('<')) || p.at(token.Tag('>')) || p.at(token.LE) || p.at(token.GE) {
		ln := p.line()
		var op ast.BoolOp
		switch {
		case p.at(token.Tag('<')):
			op = ast.Lt
		case p.at(token.Tag('>')):
			op = ast.Gt
		case p.at(token.LE):
			op = ast.Le
		default:
			op = ast.Ge
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Bool{Pos: ast.Pos{Ln: ln}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.at(token.Tag('+')) || p.at(token.Tag('-')) {
		ln := p.line()
		op := ast.Add
		if p.at(token.Tag('-')) {
			op = ast.Sub
		}
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.Arith{Pos: ast.Pos{Ln: ln}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(token.Tag('*')) || p.at(token.Tag('/')) {
		ln := p.line()
		op := ast.Mul
		if p.at(token.Tag('/')) {
			op = ast.Div
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Arith{Pos: ast.Pos{Ln: ln}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.at(token.Tag('-')) {
		ln := p.line()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Pos: ast.Pos{Ln: ln}, Operand: operand}, nil
	}
	if p.at(token.Tag('!')) {
		ln := p.line()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Pos: ast.Pos{Ln: ln}, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if !p.curOK {
		return nil, abort{"unexpected end of program"}
	}

	ln := p.line()

	switch {
	case p.at(token.NUM):
		v := p.cur.Num
		p.advance()
		return &ast.FConstant{Pos: ast.Pos{Ln: ln}, Val: v}, nil

	case p.at(token.TRUE):
		p.advance()
		return &ast.FConstant{Pos: ast.Pos{Ln: ln}, Val: 1}, nil

	case p.at(token.FALSE):
		p.advance()
		return &ast.FConstant{Pos: ast.Pos{Ln: ln}, Val: 0}, nil

	case p.at(token.Tag('(')):
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Tag(')')); err != nil {
			return nil, err
		}
		return e, nil

	case p.at(token.Tag('[')):
		return p.parseArrayLiteral()

	case p.at(token.ID):
		return p.parseIdentifierExpr()
	}

	p.dg.Errorf(ln, "unexpected token %s", p.cur.Tag)
	p.advance()
	return &ast.FConstant{Pos: ast.Pos{Ln: ln}, Val: 0}, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	ln := p.line()
	p.advance() // '['
	var elems []ast.Expression
	for !p.at(token.Tag(']')) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.at(token.Tag(',')) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.Tag(']')); err != nil {
		return nil, err
	}
	return &ast.ArrayConstant{Pos: ast.Pos{Ln: ln}, Elements: elems, Dims: literalDims(elems)}, nil
}

// literalDims infers an array literal's shape from its elements: the
// outer dimension is simply the element count; a literal nested one
// level deeper (every element itself an array literal) prepends that
// count onto the first element's own shape.
func literalDims(elems []ast.Expression) []int {
	if len(elems) == 0 {
		return []int{0}
	}
	if sub, ok := elems[0].(*ast.ArrayConstant); ok {
		return append([]int{len(elems)}, sub.Dims...)
	}
	return []int{len(elems)}
}

// parseIdentifierExpr handles the three expression forms that start with
// a bare identifier: a call, a chain of array-index brackets, or a plain
// scalar reference. A variable name is resolved against scope here, at
// parse time, and an unresolved one is reported as "using of undeclared";
// a call's callee and argument count, and an indexed name's array shape,
// are checked at compile time instead (see ast.Call.Compile,
// ast.ArrayLoad.elemAddr).
func (p *Parser) parseIdentifierExpr() (ast.Expression, error) {
	ln := p.line()
	name := p.cur.Lexeme
	p.advance()

	if p.at(token.Tag('(')) {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &ast.Call{Pos: ast.Pos{Ln: ln}, Name: name, Args: args}, nil
	}

	if p.at(token.Tag('[')) {
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
		return &ast.ArrayLoad{Pos: ast.Pos{Ln: ln}, Target: &ast.Id{Pos: ast.Pos{Ln: ln}, Name: name}, Indices: indices}, nil
	}

	if _, ok := p.ctx.Cur.Get(name); !ok {
		p.dg.Errorf(ln, "using of undeclared '%s'", name)
	}
	return &ast.Load{Pos: ast.Pos{Ln: ln}, Target: &ast.Id{Pos: ast.Pos{Ln: ln}, Name: name}}, nil
}

func (p *Parser) parseArgs() ([]ast.Expression, error) {
	if _, err := p.expect(token.Tag('(')); err != nil {
		return nil, err
	}
	var args []ast.Expression
	for !p.at(token.Tag(')')) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.at(token.Tag(',')) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.Tag(')')); err != nil {
		return nil, err
	}
	return args, nil
}
