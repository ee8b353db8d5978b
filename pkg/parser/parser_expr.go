package parser

import (
	"github.com/lenguyenthanh/sqltyper/pkg/ast"
	"github.com/lenguyenthanh/sqltyper/pkg/token"
)

// Expression precedence parsing.
//
// Precedence (loosest to tightest, left-associative unless noted):
//
//	 1. OR
//	 2. AND
//	 3. prefix NOT
//	 4. postfix IS [NOT] NULL/TRUE/FALSE/UNKNOWN, ISNULL, NOTNULL
//	 5. comparisons: <, >, =, <=, >=, <>
//	 6. other operators (||, ~, @>, ...), [NOT] IN
//	 7. addition: +, -
//	 8. multiplication: *, /, %
//	 9. exponentiation: ^
//	10. unary +, - (right)
//	11. subscript [i] (postfix, chainable)
//	12. :: typecast
//	13. primary (including EXISTS (subquery))
//
// Grammar:
//
//	expression → or_expr
//	or_expr    → and_expr (OR and_expr)*
//	and_expr   → not_expr (AND not_expr)*
//	not_expr   → NOT not_expr | is_expr
//	is_expr    → comparison (IS [NOT] (NULL|TRUE|FALSE|UNKNOWN) | ISNULL | NOTNULL)*
//	comparison → other (cmp_op other)?
//	other      → addition (([NOT] IN "(" ... ")") | other_op addition)*
//	addition   → multiplication (("+"|"-") multiplication)*
//	multiplication → exponent (("*"|"/"|"%") exponent)*
//	exponent   → unary ("^" unary)*
//	unary      → ("-"|"+") unary | subscript
//	subscript  → cast ("[" expression "]")*
//	cast       → primary ("::" type_name)*

// parseExpression parses an expression.
func (p *Parser) parseExpression() ast.Expr {
	return p.parseOrExpr()
}

// parseExpressionList parses a comma-separated list of expressions.
func (p *Parser) parseExpressionList() []ast.Expr {
	var exprs []ast.Expr

	for {
		exprs = append(exprs, p.parseExpression())

		if p.failed() || !p.match(token.COMMA) {
			break
		}
	}

	return exprs
}

// parseOrExpr parses OR expressions.
func (p *Parser) parseOrExpr() ast.Expr {
	left := p.parseAndExpr()

	for p.match(token.OR) {
		right := p.parseAndExpr()
		left = &ast.BinaryExpr{Left: left, Op: "OR", Right: right}
	}

	return left
}

// parseAndExpr parses AND expressions.
func (p *Parser) parseAndExpr() ast.Expr {
	left := p.parseNotExpr()

	for p.match(token.AND) {
		right := p.parseNotExpr()
		left = &ast.BinaryExpr{Left: left, Op: "AND", Right: right}
	}

	return left
}

// parseNotExpr parses prefix NOT.
func (p *Parser) parseNotExpr() ast.Expr {
	if p.match(token.NOT) {
		return &ast.UnaryExpr{Op: "NOT", Expr: p.parseNotExpr()}
	}
	return p.parseIsExpr()
}

// parseIsExpr parses the postfix IS family.
func (p *Parser) parseIsExpr() ast.Expr {
	left := p.parseComparison()

	for {
		switch {
		case p.match(token.IS):
			not := p.match(token.NOT)
			switch {
			case p.match(token.NULL):
				left = &ast.IsExpr{Expr: left, Not: not, Test: ast.IsNull}
			case p.match(token.TRUE):
				left = &ast.IsExpr{Expr: left, Not: not, Test: ast.IsTrue}
			case p.match(token.FALSE):
				left = &ast.IsExpr{Expr: left, Not: not, Test: ast.IsFalse}
			case p.match(token.UNKNOWN):
				left = &ast.IsExpr{Expr: left, Not: not, Test: ast.IsUnknown}
			default:
				p.addError("expected NULL, TRUE, FALSE or UNKNOWN after IS")
				return left
			}
		case p.match(token.ISNULL):
			left = &ast.IsExpr{Expr: left, Test: ast.IsNull}
		case p.match(token.NOTNULL):
			left = &ast.IsExpr{Expr: left, Not: true, Test: ast.IsNull}
		default:
			return left
		}
	}
}

// parseComparison parses comparison operators. Comparisons do not chain.
func (p *Parser) parseComparison() ast.Expr {
	left := p.parseOtherOp()

	var op string
	switch p.token.Type {
	case token.EQ:
		op = "="
	case token.NE:
		op = "<>"
	case token.LT:
		op = "<"
	case token.GT:
		op = ">"
	case token.LE:
		op = "<="
	case token.GE:
		op = ">="
	default:
		return left
	}
	p.nextToken()

	return &ast.BinaryExpr{Left: left, Op: op, Right: p.parseOtherOp()}
}

// parseOtherOp parses the generic-operator level: ||, user operators
// (OP tokens), and [NOT] IN.
func (p *Parser) parseOtherOp() ast.Expr {
	left := p.parseAddition()

	for {
		switch {
		case p.check(token.DPIPE):
			p.nextToken()
			left = &ast.BinaryExpr{Left: left, Op: "||", Right: p.parseAddition()}

		case p.check(token.OP):
			op := p.token.Literal
			p.nextToken()
			left = &ast.BinaryExpr{Left: left, Op: op, Right: p.parseAddition()}

		case p.check(token.IN):
			p.nextToken()
			left = p.parseInExpr(left, false)

		case p.check(token.NOT) && p.checkPeek(token.IN):
			p.nextToken() // consume NOT
			p.nextToken() // consume IN
			left = p.parseInExpr(left, true)

		default:
			return left
		}
	}
}

// parseInExpr parses the parenthesized right-hand side of [NOT] IN.
func (p *Parser) parseInExpr(left ast.Expr, not bool) ast.Expr {
	p.expect(token.LPAREN)
	in := &ast.InExpr{Expr: left, Not: not}

	if p.check(token.SELECT) || p.check(token.WITH) {
		in.Query = p.parseSubquery()
	} else {
		in.Values = p.parseExpressionList()
	}

	p.expect(token.RPAREN)
	return in
}

// parseSubquery parses a parenthesized SELECT used in IN or EXISTS. The
// surrounding parentheses are handled by the caller.
func (p *Parser) parseSubquery() *ast.SelectStmt {
	var withs []*ast.WithQuery
	if p.check(token.WITH) {
		withs = p.parseWithClause()
	}
	if !p.check(token.SELECT) {
		p.addError("expected SELECT in subquery")
		return nil
	}
	return p.parseSelectStmt(withs)
}

// parseAddition parses addition and subtraction.
func (p *Parser) parseAddition() ast.Expr {
	left := p.parseMultiplication()

	for {
		switch p.token.Type {
		case token.PLUS:
			p.nextToken()
			left = &ast.BinaryExpr{Left: left, Op: "+", Right: p.parseMultiplication()}
		case token.MINUS:
			p.nextToken()
			left = &ast.BinaryExpr{Left: left, Op: "-", Right: p.parseMultiplication()}
		default:
			return left
		}
	}
}

// parseMultiplication parses multiplication, division, and modulo.
func (p *Parser) parseMultiplication() ast.Expr {
	left := p.parseExponent()

	for {
		switch p.token.Type {
		case token.STAR:
			p.nextToken()
			left = &ast.BinaryExpr{Left: left, Op: "*", Right: p.parseExponent()}
		case token.SLASH:
			p.nextToken()
			left = &ast.BinaryExpr{Left: left, Op: "/", Right: p.parseExponent()}
		case token.PERCENT:
			p.nextToken()
			left = &ast.BinaryExpr{Left: left, Op: "%", Right: p.parseExponent()}
		default:
			return left
		}
	}
}

// parseExponent parses the ^ operator.
func (p *Parser) parseExponent() ast.Expr {
	left := p.parseUnary()

	for p.match(token.CARET) {
		left = &ast.BinaryExpr{Left: left, Op: "^", Right: p.parseUnary()}
	}

	return left
}

// parseUnary parses unary plus and minus.
func (p *Parser) parseUnary() ast.Expr {
	switch p.token.Type {
	case token.MINUS:
		p.nextToken()
		return &ast.UnaryExpr{Op: "-", Expr: p.parseUnary()}
	case token.PLUS:
		p.nextToken()
		return &ast.UnaryExpr{Op: "+", Expr: p.parseUnary()}
	}
	return p.parseSubscript()
}

// parseSubscript parses chained [i] subscripts.
func (p *Parser) parseSubscript() ast.Expr {
	left := p.parseCast()

	for p.match(token.LBRACKET) {
		index := p.parseExpression()
		p.expect(token.RBRACKET)
		left = &ast.SubscriptExpr{Expr: left, Index: index}
	}

	return left
}

// parseCast parses chained :: typecasts.
func (p *Parser) parseCast() ast.Expr {
	left := p.parsePrimary()

	for p.match(token.DCOLON) {
		left = &ast.CastExpr{Expr: left, TypeName: p.parseName("type name")}
	}

	return left
}
