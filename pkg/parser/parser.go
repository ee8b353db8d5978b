// Package parser provides a recursive descent parser for the supported
// PostgreSQL DML subset.
//
// # Parser Architecture
//
// The parser is split across multiple files for maintainability:
//
//   - parser.go (this file): Public API, Parser struct, token helpers
//   - parser_stmt.go: SELECT statements (WITH, set ops, ORDER BY, LIMIT)
//   - parser_dml.go: INSERT, UPDATE, DELETE
//   - parser_from.go: FROM clause parsing (table refs, JOINs)
//   - parser_expr.go: Expression precedence parsing
//   - parser_primary.go: Primary expressions (literals, refs, calls)
//
// # Usage
//
//	stmt, err := parser.Parse("SELECT a, b FROM t WHERE id = $1")
//	if err != nil {
//	    // handle error
//	}
//
// # Grammar Overview
//
//	statement     → [WITH cte_list] (select | insert | update | delete)
//	select        → select_body (set_op select_body)* [ORDER BY ...] [LIMIT ...]
//	select_body   → SELECT [DISTINCT] select_list [FROM from_clause]
//	                [WHERE expr] [GROUP BY expr_list]
//	insert        → INSERT INTO table [AS alias] [(columns)]
//	                (VALUES row ("," row)* | DEFAULT VALUES) [RETURNING list]
//	update        → UPDATE table [AS alias] SET assignments [FROM from_clause]
//	                [WHERE expr] [RETURNING list]
//	delete        → DELETE FROM table [AS alias] [WHERE expr] [RETURNING list]
//
// The full source must be consumed; a single trailing semicolon is
// tolerated.
package parser

import (
	"fmt"
	"strings"

	"github.com/lenguyenthanh/sqltyper/pkg/ast"
	"github.com/lenguyenthanh/sqltyper/pkg/pgsql"
	"github.com/lenguyenthanh/sqltyper/pkg/token"
)

// TokenType is an alias for token.TokenType.
type TokenType = token.TokenType

// Token is an alias for token.Token.
type Token = token.Token

// Position is an alias for token.Position.
type Position = token.Position

// Parser parses SQL into an AST.
type Parser struct {
	lexer  *Lexer
	token  Token // current token
	peek   Token // lookahead token
	peek2  Token // second lookahead token
	errors []error
}

// NewParser creates a new parser for the given SQL input.
func NewParser(sql string) *Parser {
	p := &Parser{
		lexer: NewLexer(sql),
	}
	// Read three tokens to initialize current, peek, and peek2
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a single DML statement and returns the AST. The entire
// input must be consumed; the first unrecoverable failure aborts with a
// located ParseError.
func Parse(sql string) (ast.Stmt, error) {
	p := NewParser(sql)
	stmt := p.parseStatement()
	if len(p.errors) == 0 {
		// Optional trailing semicolon, then end of input.
		p.match(token.SEMICOLON)
		if !p.check(token.EOF) {
			p.addError(fmt.Sprintf(ErrTrailingInput, p.token.Type))
		}
	}
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return stmt, nil
}

// parseStatement dispatches on the statement keyword, with WITH handled up
// front so CTEs prefix any of the four statement kinds.
func (p *Parser) parseStatement() ast.Stmt {
	start := p.token.Pos.Offset

	var withs []*ast.WithQuery
	if p.check(token.WITH) {
		withs = p.parseWithClause()
	}

	var stmt ast.Stmt
	switch p.token.Type {
	case token.SELECT:
		stmt = p.parseSelectStmt(withs)
	case token.INSERT:
		stmt = p.parseInsertStmt(withs)
	case token.UPDATE:
		stmt = p.parseUpdateStmt(withs)
	case token.DELETE:
		stmt = p.parseDeleteStmt(withs)
	default:
		p.addError(fmt.Sprintf("expected SELECT, INSERT, UPDATE or DELETE, found %s", p.token.Type))
		return nil
	}

	p.setSpan(stmt, start)
	return stmt
}

// setSpan records the statement's source extent.
func (p *Parser) setSpan(stmt ast.Stmt, start int) {
	end := p.token.Pos.Offset
	span := token.Span{Start: start, End: end}
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		s.Span = span
	case *ast.InsertStmt:
		s.Span = span
	case *ast.UpdateStmt:
		s.Span = span
	case *ast.DeleteStmt:
		s.Span = span
	}
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t TokenType) bool {
	return p.peek.Type == t
}

// checkPeek2 returns true if the peek2 token is of the given type.
func (p *Parser) checkPeek2(t TokenType) bool {
	return p.peek2.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, t))
	return false
}

// addError adds a parse error. Only the first error is ever surfaced, but
// collecting the rest keeps the helpers simple.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

// failed reports whether parsing has already failed. Used to cut recursion
// short so one error does not cascade.
func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

// ---------- Identifier Helpers ----------

// parseName consumes an identifier and returns its normalized form:
// unquoted identifiers fold to lowercase and are checked against the
// reserved-word list, quoted identifiers pass through verbatim.
func (p *Parser) parseName(what string) string {
	if !p.check(token.IDENT) {
		p.addError(fmt.Sprintf("expected %s, found %s", what, p.token.Type))
		return ""
	}
	name := p.token.Literal
	if !p.token.Quoted {
		if pgsql.IsReservedWord(name) {
			p.addError(fmt.Sprintf(ErrReservedWord, name))
			return ""
		}
		name = strings.ToLower(name)
	}
	p.nextToken()
	return name
}

// isClauseKeyword returns true if token starts a new clause, which ends an
// implicit (AS-less) alias.
func (p *Parser) isClauseKeyword(tok Token) bool {
	switch tok.Type {
	case token.WHERE, token.GROUP, token.ORDER, token.LIMIT, token.OFFSET,
		token.UNION, token.INTERSECT, token.EXCEPT, token.RETURNING,
		token.SET, token.FROM, token.VALUES:
		return true
	}
	return false
}

// isJoinKeyword returns true if token is a JOIN-related keyword.
func (p *Parser) isJoinKeyword(tok Token) bool {
	switch tok.Type {
	case token.JOIN, token.LEFT, token.RIGHT, token.INNER, token.OUTER,
		token.FULL, token.CROSS, token.ON:
		return true
	}
	return false
}

// parseAlias parses an optional [AS] alias following a table or select
// item.
func (p *Parser) parseAlias() string {
	if p.match(token.AS) {
		return p.parseName("alias")
	}
	if p.check(token.IDENT) && !p.isJoinKeyword(p.token) && !p.isClauseKeyword(p.token) {
		return p.parseName("alias")
	}
	return ""
}
