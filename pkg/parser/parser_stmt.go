package parser

import (
	"github.com/lenguyenthanh/sqltyper/pkg/ast"
	"github.com/lenguyenthanh/sqltyper/pkg/token"
)

// SELECT statement parsing: WITH clause, CTEs, select bodies, set
// operations, ORDER BY, LIMIT.
//
// Grammar:
//
//	cte_list      → cte ("," cte)*
//	cte           → identifier ["(" column_list ")"] AS "(" statement ")"
//	select        → select_body (set_op select_body)*
//	                [ORDER BY order_list] [LIMIT (ALL|expr) [OFFSET expr]]
//	set_op        → (UNION | INTERSECT | EXCEPT) [ALL | DISTINCT]
//	select_body   → SELECT [DISTINCT|ALL] select_list [FROM from_clause]
//	                [WHERE expr] [GROUP BY expr_list]
//	select_list   → select_item ("," select_item)*
//	select_item   → "*" | table "." "*" | expr [[AS] identifier]
//	order_item    → expr [ASC | DESC | USING op] [NULLS (FIRST|LAST)]

// parseWithClause parses a WITH clause into its CTE list.
func (p *Parser) parseWithClause() []*ast.WithQuery {
	p.expect(token.WITH)

	var withs []*ast.WithQuery
	for {
		cte := p.parseCTE()
		if cte == nil {
			break
		}
		withs = append(withs, cte)

		if !p.match(token.COMMA) {
			break
		}
	}
	return withs
}

// parseCTE parses a single CTE.
func (p *Parser) parseCTE() *ast.WithQuery {
	cte := &ast.WithQuery{}

	cte.Name = p.parseName("CTE name")
	if p.failed() {
		return nil
	}

	// Optional explicit column list
	if p.match(token.LPAREN) {
		for {
			col := p.parseName("column name")
			if p.failed() {
				return nil
			}
			cte.Columns = append(cte.Columns, col)
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}

	p.expect(token.AS)
	p.expect(token.LPAREN)
	cte.Stmt = p.parseStatement()
	p.expect(token.RPAREN)

	return cte
}

// parseSelectStmt parses a SELECT with set operations and trailing
// ORDER BY / LIMIT applying to the combined result.
func (p *Parser) parseSelectStmt(withs []*ast.WithQuery) *ast.SelectStmt {
	stmt := &ast.SelectStmt{With: withs}
	stmt.Body = p.parseSelectBody()

	for !p.failed() {
		var op ast.SetOp
		switch p.token.Type {
		case token.UNION:
			op = ast.SetUnion
		case token.INTERSECT:
			op = ast.SetIntersect
		case token.EXCEPT:
			op = ast.SetExcept
		default:
			op = ""
		}
		if op == "" {
			break
		}
		p.nextToken()

		arm := &ast.SelectOp{Op: op}
		if p.match(token.ALL) {
			arm.All = true
		} else {
			p.match(token.DISTINCT) // optional
		}

		p.expect(token.SELECT)
		arm.Body = p.parseSelectBodyAfterKeyword()
		stmt.Ops = append(stmt.Ops, arm)
	}

	// ORDER BY
	if p.check(token.ORDER) {
		p.nextToken()
		p.expect(token.BY)
		stmt.OrderBy = p.parseOrderByList()
	}

	// LIMIT [ALL|expr] [OFFSET expr]
	if p.check(token.LIMIT) || p.check(token.OFFSET) {
		stmt.Limit = p.parseLimitClause()
	}

	return stmt
}

// parseSelectBody parses a SELECT core starting at the SELECT keyword.
func (p *Parser) parseSelectBody() *ast.SelectBody {
	p.expect(token.SELECT)
	return p.parseSelectBodyAfterKeyword()
}

// parseSelectBodyAfterKeyword parses a SELECT core with the SELECT keyword
// already consumed.
func (p *Parser) parseSelectBodyAfterKeyword() *ast.SelectBody {
	body := &ast.SelectBody{}

	if p.match(token.DISTINCT) {
		body.Distinct = true
	} else {
		p.match(token.ALL) // optional
	}

	body.Columns = p.parseSelectList()

	if p.match(token.FROM) {
		body.From = p.parseFromClause()
	}

	if p.match(token.WHERE) {
		body.Where = p.parseExpression()
	}

	if p.check(token.GROUP) {
		p.nextToken()
		p.expect(token.BY)
		body.GroupBy = p.parseExpressionList()
	}

	return body
}

// parseSelectList parses the list of SELECT items.
func (p *Parser) parseSelectList() []ast.SelectItem {
	var items []ast.SelectItem

	for {
		item := p.parseSelectItem()
		items = append(items, item)

		if p.failed() || !p.match(token.COMMA) {
			break
		}
	}

	return items
}

// parseSelectItem parses a single SELECT item.
func (p *Parser) parseSelectItem() ast.SelectItem {
	item := ast.SelectItem{}

	// *
	if p.check(token.STAR) {
		item.Star = true
		p.nextToken()
		return item
	}

	// table.* via 3-token lookahead (no rollback needed)
	if p.check(token.IDENT) && p.checkPeek(token.DOT) && p.checkPeek2(token.STAR) {
		item.TableStar = p.parseName("table name")
		p.nextToken() // consume DOT
		p.nextToken() // consume STAR
		return item
	}

	item.Expr = p.parseExpression()
	item.Alias = p.parseAlias()
	return item
}

// parseOrderByList parses a list of ORDER BY items.
func (p *Parser) parseOrderByList() []ast.OrderByItem {
	var items []ast.OrderByItem

	for {
		items = append(items, p.parseOrderByItem())

		if p.failed() || !p.match(token.COMMA) {
			break
		}
	}

	return items
}

// parseOrderByItem parses a single ORDER BY item.
func (p *Parser) parseOrderByItem() ast.OrderByItem {
	item := ast.OrderByItem{}
	item.Expr = p.parseExpression()

	switch {
	case p.match(token.ASC):
		item.Dir = ast.OrderAsc
	case p.match(token.DESC):
		item.Dir = ast.OrderDesc
	case p.match(token.USING):
		item.Dir = ast.OrderUsing
		item.UsingOp = p.parseOrderingOperator()
	}

	if p.match(token.NULLS) {
		if p.match(token.FIRST) {
			item.Nulls = ast.NullsFirst
		} else if p.match(token.LAST) {
			item.Nulls = ast.NullsLast
		} else {
			p.addError("expected FIRST or LAST after NULLS")
		}
	}

	return item
}

// parseOrderingOperator consumes the operator of ORDER BY ... USING op.
func (p *Parser) parseOrderingOperator() string {
	switch p.token.Type {
	case token.LT, token.GT, token.LE, token.GE, token.OP:
		op := p.token.Literal
		p.nextToken()
		return op
	}
	p.addError("expected operator after USING")
	return ""
}

// parseLimitClause parses LIMIT [ALL|expr] [OFFSET expr]. A bare OFFSET
// without LIMIT is also accepted.
func (p *Parser) parseLimitClause() *ast.LimitClause {
	limit := &ast.LimitClause{}

	if p.match(token.LIMIT) {
		if p.match(token.ALL) {
			limit.All = true
		} else {
			limit.Count = p.parseExpression()
		}
	}

	if p.match(token.OFFSET) {
		limit.Offset = p.parseExpression()
	}

	return limit
}
