package parser

import (
	"github.com/lenguyenthanh/sqltyper/pkg/ast"
	"github.com/lenguyenthanh/sqltyper/pkg/token"
)

// FROM clause parsing: table references and JOINs.
//
// Grammar:
//
//	from_clause → table_ref (join)*
//	table_ref   → [schema "."] identifier [[AS] identifier]
//	join        → join_type JOIN table_ref ON expr
//	join_type   → [INNER] | LEFT [OUTER] | RIGHT [OUTER] | FULL [OUTER]
//
// Comma-separated FROM lists (implicit joins) are a parse error.

// parseFromClause parses the FROM clause.
func (p *Parser) parseFromClause() *ast.FromClause {
	from := &ast.FromClause{}
	from.Table = p.parseTableRef()

	if p.check(token.COMMA) {
		p.addError("comma-separated FROM lists are not supported; use an explicit JOIN")
		return from
	}

	for {
		join := p.parseJoin()
		if join == nil {
			break
		}
		from.Joins = append(from.Joins, join)
	}

	return from
}

// parseTableRef parses a table name with optional schema qualifier and
// alias.
func (p *Parser) parseTableRef() *ast.TableRef {
	table := &ast.TableRef{}

	first := p.parseName("table name")
	if p.failed() {
		return table
	}

	if p.match(token.DOT) {
		table.Schema = first
		table.Name = p.parseName("table name")
	} else {
		table.Name = first
	}

	table.Alias = p.parseAlias()
	return table
}

// parseJoin parses a JOIN clause. Returns nil when the current token does
// not start a join.
func (p *Parser) parseJoin() *ast.Join {
	if p.failed() {
		return nil
	}

	join := &ast.Join{}

	switch p.token.Type {
	case token.JOIN, token.INNER:
		join.Type = ast.JoinInner
		p.match(token.INNER)
	case token.LEFT:
		join.Type = ast.JoinLeft
		p.nextToken()
		p.match(token.OUTER)
	case token.RIGHT:
		join.Type = ast.JoinRight
		p.nextToken()
		p.match(token.OUTER)
	case token.FULL:
		join.Type = ast.JoinFull
		p.nextToken()
		p.match(token.OUTER)
	case token.CROSS:
		p.addError("CROSS JOIN is not supported")
		return nil
	default:
		return nil
	}

	if !p.expect(token.JOIN) {
		return nil
	}

	join.Table = p.parseTableRef()

	if !p.expect(token.ON) {
		return nil
	}
	join.Condition = p.parseExpression()

	return join
}
