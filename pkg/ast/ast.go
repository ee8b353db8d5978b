// Package ast defines the typed AST for the supported PostgreSQL DML
// subset: SELECT (with set operations, joins and CTEs), INSERT, UPDATE and
// DELETE, plus the expression grammar they share.
package ast

import "github.com/lenguyenthanh/sqltyper/pkg/token"

// Expr is implemented by all expression nodes.
type Expr interface {
	exprNode()
}

// Stmt is implemented by the four top-level statement nodes. The span
// covers the statement's extent in the original source.
type Stmt interface {
	stmtNode()
	StmtSpan() token.Span
}
