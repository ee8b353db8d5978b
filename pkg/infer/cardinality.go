package infer

import (
	"github.com/lenguyenthanh/sqltyper/pkg/ast"
)

// Row cardinality classification for SELECT statements, checked in order:
//
//  1. LIMIT 0 (literal)                                → zero
//  2. LIMIT 1 (literal), no set op                     → zeroOrOne
//  3. WHERE pins every primary-key column of the single
//     FROM table with equality to a non-null expression,
//     no joins, no set op                              → zeroOrOne
//  4. no FROM, no set op (constant projection)         → one
//  5. otherwise                                        → many

func (inf *inferrer) selectCardinality(s *ast.SelectStmt) RowCount {
	if limitLiteral(s.Limit, "0") {
		return RowCountZero
	}

	if limitLiteral(s.Limit, "1") && len(s.Ops) == 0 {
		return RowCountZeroOrOne
	}

	if len(s.Ops) == 0 && s.Body.From != nil && len(s.Body.From.Joins) == 0 {
		if inf.wherePinsPrimaryKey(s.Body) {
			return RowCountZeroOrOne
		}
	}

	if len(s.Ops) == 0 && s.Body.From == nil {
		return RowCountOne
	}

	return RowCountMany
}

// limitLiteral reports whether the limit count is the given number
// literal.
func limitLiteral(limit *ast.LimitClause, value string) bool {
	if limit == nil || limit.Count == nil {
		return false
	}
	lit, ok := limit.Count.(*ast.Literal)
	return ok && lit.Kind == ast.LiteralNumber && lit.Value == value
}

// wherePinsPrimaryKey reports whether the body's WHERE is a conjunction
// that equates every primary-key column of the FROM table with a non-null
// expression. Such a filter matches at most one row.
func (inf *inferrer) wherePinsPrimaryKey(body *ast.SelectBody) bool {
	if body.Where == nil {
		return false
	}

	sc, err := inf.scopeForFrom(body.From)
	if err != nil {
		return false
	}

	// A CTE-backed FROM has no primary key to pin.
	var pk []*sourceColumn
	for _, c := range sc.expandAll() {
		if c.pk {
			pk = append(pk, c)
		}
	}
	if len(pk) == 0 {
		return false
	}

	pinned := make(map[*sourceColumn]bool)
	inf.collectPinnedColumns(body.Where, sc, pinned)

	for _, c := range pk {
		if !pinned[c] {
			return false
		}
	}
	return true
}

// collectPinnedColumns walks the AND-conjuncts of w and records every
// column equated with a non-null expression.
func (inf *inferrer) collectPinnedColumns(w ast.Expr, sc *scope, pinned map[*sourceColumn]bool) {
	switch e := w.(type) {
	case *ast.BinaryExpr:
		switch e.Op {
		case "AND":
			inf.collectPinnedColumns(e.Left, sc, pinned)
			inf.collectPinnedColumns(e.Right, sc, pinned)
		case "=":
			inf.recordPin(e.Left, e.Right, sc, pinned)
			inf.recordPin(e.Right, e.Left, sc, pinned)
		}
	case *ast.ParenExpr:
		inf.collectPinnedColumns(e.Expr, sc, pinned)
	}
}

// recordPin marks lhs as pinned when it is a column reference compared
// against a non-null expression.
func (inf *inferrer) recordPin(lhs, rhs ast.Expr, sc *scope, pinned map[*sourceColumn]bool) {
	ref, ok := unwrapColumnRef(lhs)
	if !ok {
		return
	}
	col, ambiguous := sc.lookup(ref.Table, ref.Column)
	if col == nil || ambiguous {
		return
	}
	if inf.exprNullable(rhs, sc, make(nnSet)) {
		return
	}
	pinned[col] = true
}

// unwrapColumnRef sees through parentheses to a column reference.
func unwrapColumnRef(e ast.Expr) (*ast.ColumnRef, bool) {
	switch ex := e.(type) {
	case *ast.ColumnRef:
		return ex, true
	case *ast.ParenExpr:
		return unwrapColumnRef(ex.Expr)
	default:
		return nil, false
	}
}
