package parser

import (
	"github.com/lenguyenthanh/sqltyper/pkg/ast"
	"github.com/lenguyenthanh/sqltyper/pkg/token"
)

// INSERT / UPDATE / DELETE parsing.
//
// Grammar:
//
//	insert      → INSERT INTO table [AS alias] [(column_list)]
//	              (VALUES value_row ("," value_row)* | DEFAULT VALUES)
//	              [RETURNING select_list]
//	value_row   → "(" (expr | DEFAULT) ("," (expr | DEFAULT))* ")"
//	update      → UPDATE table [AS alias] SET assignment ("," assignment)*
//	              [FROM from_clause] [WHERE expr] [RETURNING select_list]
//	assignment  → column "=" (expr | DEFAULT)
//	delete      → DELETE FROM table [AS alias] [WHERE expr]
//	              [RETURNING select_list]

// parseInsertStmt parses an INSERT statement.
func (p *Parser) parseInsertStmt(withs []*ast.WithQuery) *ast.InsertStmt {
	stmt := &ast.InsertStmt{With: withs}

	p.expect(token.INSERT)
	p.expect(token.INTO)
	stmt.Table = p.parseInsertTarget()

	// Optional column list
	if p.match(token.LPAREN) {
		for {
			col := p.parseName("column name")
			if p.failed() {
				return stmt
			}
			stmt.Columns = append(stmt.Columns, col)
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}

	switch {
	case p.match(token.DEFAULT):
		p.expect(token.VALUES)
		stmt.DefaultValues = true
	case p.match(token.VALUES):
		for {
			row := p.parseValueRow()
			if p.failed() {
				return stmt
			}
			stmt.Rows = append(stmt.Rows, row)
			if !p.match(token.COMMA) {
				break
			}
		}
	default:
		p.addError("expected VALUES or DEFAULT VALUES")
		return stmt
	}

	stmt.Returning = p.parseReturning()
	return stmt
}

// parseInsertTarget parses the table of an INSERT, whose alias may only be
// introduced with AS (a bare identifier would be ambiguous with the column
// list).
func (p *Parser) parseInsertTarget() *ast.TableRef {
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

	if p.match(token.AS) {
		table.Alias = p.parseName("alias")
	}
	return table
}

// parseValueRow parses one parenthesized VALUES row.
func (p *Parser) parseValueRow() []ast.Expr {
	if !p.expect(token.LPAREN) {
		return nil
	}

	var row []ast.Expr
	for {
		if p.match(token.DEFAULT) {
			row = append(row, &ast.DefaultExpr{})
		} else {
			row = append(row, p.parseExpression())
		}
		if p.failed() || !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return row
}

// parseUpdateStmt parses an UPDATE statement.
func (p *Parser) parseUpdateStmt(withs []*ast.WithQuery) *ast.UpdateStmt {
	stmt := &ast.UpdateStmt{With: withs}

	p.expect(token.UPDATE)
	stmt.Table = p.parseUpdateTarget()

	p.expect(token.SET)
	for {
		a := p.parseAssignment()
		if p.failed() {
			return stmt
		}
		stmt.Assignments = append(stmt.Assignments, a)
		if !p.match(token.COMMA) {
			break
		}
	}

	if p.match(token.FROM) {
		stmt.From = p.parseFromClause()
	}

	if p.match(token.WHERE) {
		stmt.Where = p.parseExpression()
	}

	stmt.Returning = p.parseReturning()
	return stmt
}

// parseUpdateTarget parses the UPDATE target table with optional alias.
func (p *Parser) parseUpdateTarget() *ast.TableRef {
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

	if p.match(token.AS) {
		table.Alias = p.parseName("alias")
	} else if p.check(token.IDENT) {
		table.Alias = p.parseName("alias")
	}
	return table
}

// parseAssignment parses one SET column = expr element.
func (p *Parser) parseAssignment() ast.Assignment {
	a := ast.Assignment{}
	a.Column = p.parseName("column name")
	if p.failed() {
		return a
	}

	p.expect(token.EQ)

	if p.match(token.DEFAULT) {
		a.Expr = &ast.DefaultExpr{}
	} else {
		a.Expr = p.parseExpression()
	}
	return a
}

// parseDeleteStmt parses a DELETE statement.
func (p *Parser) parseDeleteStmt(withs []*ast.WithQuery) *ast.DeleteStmt {
	stmt := &ast.DeleteStmt{With: withs}

	p.expect(token.DELETE)
	p.expect(token.FROM)
	stmt.Table = p.parseTableRef()

	if p.match(token.WHERE) {
		stmt.Where = p.parseExpression()
	}

	stmt.Returning = p.parseReturning()
	return stmt
}

// parseReturning parses an optional RETURNING list.
func (p *Parser) parseReturning() []ast.SelectItem {
	if !p.match(token.RETURNING) {
		return nil
	}
	return p.parseSelectList()
}
