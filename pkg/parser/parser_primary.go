package parser

import (
	"fmt"
	"strconv"

	"github.com/lenguyenthanh/sqltyper/pkg/ast"
	"github.com/lenguyenthanh/sqltyper/pkg/token"
)

// Primary expression parsing: literals, parameters, column refs, function
// calls, EXISTS, parenthesized expressions.
//
// Grammar:
//
//	primary    → literal | param | column_ref | func_call | exists_expr | "(" expression ")"
//	literal    → NUMBER | STRING | TRUE | FALSE | NULL
//	param      → "$" digits
//	column_ref → [table "."] column
//	func_call  → identifier "(" ["*" | expr_list] ")"
//	exists_expr→ EXISTS "(" select ")"
//
// An identifier is disambiguated by the following token: "." makes it a
// table qualifier, "(" a function call, anything else a plain column ref.

// parsePrimary parses primary expressions.
func (p *Parser) parsePrimary() ast.Expr {
	switch p.token.Type {
	case token.NUMBER:
		lit := &ast.Literal{Kind: ast.LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		return lit

	case token.STRING:
		lit := &ast.Literal{Kind: ast.LiteralString, Value: p.token.Literal}
		p.nextToken()
		return lit

	case token.TRUE:
		p.nextToken()
		return &ast.Literal{Kind: ast.LiteralBool, Value: "true"}

	case token.FALSE:
		p.nextToken()
		return &ast.Literal{Kind: ast.LiteralBool, Value: "false"}

	case token.NULL:
		p.nextToken()
		return &ast.Literal{Kind: ast.LiteralNull, Value: "null"}

	case token.PARAM:
		index, err := strconv.Atoi(p.token.Literal)
		if err != nil || index < 1 {
			p.addError(fmt.Sprintf("invalid parameter $%s", p.token.Literal))
			return nil
		}
		p.nextToken()
		return &ast.Param{Index: index}

	case token.EXISTS:
		return p.parseExistsExpr()

	case token.IDENT:
		return p.parseIdentifierExpr()

	case token.LPAREN:
		p.nextToken()
		expr := p.parseExpression()
		p.expect(token.RPAREN)
		return &ast.ParenExpr{Expr: expr}

	default:
		p.addError(fmt.Sprintf("unexpected token in expression: %s", p.token.Type))
		p.nextToken()
		return nil
	}
}

// parseExistsExpr parses EXISTS (subquery).
func (p *Parser) parseExistsExpr() ast.Expr {
	p.expect(token.EXISTS)
	p.expect(token.LPAREN)
	sub := p.parseSubquery()
	p.expect(token.RPAREN)
	return &ast.ExistsExpr{Select: sub}
}

// parseIdentifierExpr parses an identifier which could be a column ref,
// qualified column ref, or function call.
func (p *Parser) parseIdentifierExpr() ast.Expr {
	name := p.parseName("identifier")
	if p.failed() {
		return nil
	}

	if p.check(token.LPAREN) {
		return p.parseFuncCall(name)
	}

	if p.match(token.DOT) {
		column := p.parseName("column name")
		return &ast.ColumnRef{Table: name, Column: column}
	}

	return &ast.ColumnRef{Column: name}
}

// parseFuncCall parses a function call.
func (p *Parser) parseFuncCall(name string) ast.Expr {
	fn := &ast.FuncCall{Name: name}

	p.expect(token.LPAREN)

	if p.check(token.STAR) {
		// count(*)
		fn.Star = true
		p.nextToken()
	} else if !p.check(token.RPAREN) {
		fn.Args = p.parseExpressionList()
	}

	p.expect(token.RPAREN)
	return fn
}
