package infer

import (
	"github.com/lenguyenthanh/sqltyper/pkg/ast"
	"github.com/lenguyenthanh/sqltyper/pkg/pgsql"
)

// Non-null propagation and expression nullability.
//
// nonNullSet implements the monotone function NN(W) over a filter
// expression W: the set of source columns that must be non-NULL for a row
// to pass the filter. SQL three-valued logic filters rows whose WHERE
// evaluates to UNKNOWN, so W must come out TRUE; a NULL operand of a
// null-safe operator would make W NULL and drop the row. The duality is
// AND → union, OR → intersection.

// nnSet is a set of source columns known non-null, keyed by identity.
type nnSet map[*sourceColumn]bool

// union merges o into s in place.
func (s nnSet) union(o nnSet) {
	for c := range o {
		s[c] = true
	}
}

// intersect returns the columns present in both sets.
func (s nnSet) intersect(o nnSet) nnSet {
	out := make(nnSet)
	for c := range s {
		if o[c] {
			out[c] = true
		}
	}
	return out
}

// nonNullSet computes NN(w) for a WHERE or INNER-JOIN ON expression.
func (inf *inferrer) nonNullSet(w ast.Expr, sc *scope) nnSet {
	switch e := w.(type) {
	case *ast.BinaryExpr:
		switch e.Op {
		case "AND":
			nn := inf.nonNullSet(e.Left, sc)
			nn.union(inf.nonNullSet(e.Right, sc))
			return nn
		case "OR":
			return inf.nonNullSet(e.Left, sc).intersect(inf.nonNullSet(e.Right, sc))
		}
		return inf.notNullCols(e, sc)

	case *ast.UnaryExpr:
		if e.Op == "NOT" {
			return make(nnSet)
		}
		return inf.notNullCols(e, sc)

	case *ast.IsExpr:
		if e.Not && e.Test == ast.IsNull {
			// x IS NOT NULL: x's column inputs must be non-null.
			return inf.notNullCols(e.Expr, sc)
		}
		// IS NULL is satisfiable with NULL inputs; IS [NOT] TRUE/FALSE/UNKNOWN
		// propagate nothing.
		return make(nnSet)

	case *ast.ExistsExpr:
		return make(nnSet)

	case *ast.ParenExpr:
		return inf.nonNullSet(e.Expr, sc)

	default:
		return inf.notNullCols(w, sc)
	}
}

// notNullCols returns the source columns that must be non-NULL for e to
// evaluate to a non-NULL value. The propagation follows null-safe
// operators and functions; anything weaker contributes nothing.
func (inf *inferrer) notNullCols(e ast.Expr, sc *scope) nnSet {
	nn := make(nnSet)

	switch ex := e.(type) {
	case *ast.ColumnRef:
		if col, ambiguous := sc.lookup(ex.Table, ex.Column); col != nil && !ambiguous {
			nn[col] = true
		}

	case *ast.BinaryExpr:
		if pgsql.OperatorNullSafe(ex.Op) {
			nn.union(inf.notNullCols(ex.Left, sc))
			nn.union(inf.notNullCols(ex.Right, sc))
		}

	case *ast.UnaryExpr:
		if ex.Op == "+" || ex.Op == "-" {
			nn.union(inf.notNullCols(ex.Expr, sc))
		}

	case *ast.CastExpr:
		nn.union(inf.notNullCols(ex.Expr, sc))

	case *ast.SubscriptExpr:
		nn.union(inf.notNullCols(ex.Expr, sc))
		nn.union(inf.notNullCols(ex.Index, sc))

	case *ast.FuncCall:
		if pgsql.ClassifyFunction(ex.Name) == pgsql.FuncNullSafe {
			for _, arg := range ex.Args {
				nn.union(inf.notNullCols(arg, sc))
			}
		}

	case *ast.InExpr:
		// NULL on the left makes the whole IN NULL; the list side does not
		// propagate.
		nn.union(inf.notNullCols(ex.Expr, sc))

	case *ast.ParenExpr:
		nn.union(inf.notNullCols(ex.Expr, sc))
	}

	return nn
}

// exprNullable reports whether e may evaluate to NULL, given the scope and
// the non-null set of the surrounding body. True is always the safe
// answer.
func (inf *inferrer) exprNullable(e ast.Expr, sc *scope, nn nnSet) bool {
	switch ex := e.(type) {
	case *ast.ColumnRef:
		col, ambiguous := sc.lookup(ex.Table, ex.Column)
		if col == nil || ambiguous {
			return true
		}
		if nn[col] {
			return false
		}
		return col.nullable

	case *ast.Literal:
		return ex.Kind == ast.LiteralNull

	case *ast.Param:
		// Parameters are required; NULL arguments are rejected up front.
		return false

	case *ast.FuncCall:
		switch pgsql.NormalizeName(ex.Name) {
		case "coalesce":
			// NULL only when every argument is NULL.
			for _, arg := range ex.Args {
				if !inf.exprNullable(arg, sc, nn) {
					return false
				}
			}
			return true
		case "concat_ws":
			// NULL only when the separator is NULL.
			return len(ex.Args) == 0 || inf.exprNullable(ex.Args[0], sc, nn)
		}
		switch pgsql.ClassifyFunction(ex.Name) {
		case pgsql.FuncNeverNull:
			return false
		case pgsql.FuncNullSafe:
			for _, arg := range ex.Args {
				if inf.exprNullable(arg, sc, nn) {
					return true
				}
			}
			return false
		default:
			return true
		}

	case *ast.UnaryExpr:
		if ex.Op == "NOT" || pgsql.OperatorNullSafe(ex.Op) {
			return inf.exprNullable(ex.Expr, sc, nn)
		}
		return true

	case *ast.BinaryExpr:
		if ex.Op == "AND" || ex.Op == "OR" || pgsql.OperatorNullSafe(ex.Op) {
			return inf.exprNullable(ex.Left, sc, nn) || inf.exprNullable(ex.Right, sc, nn)
		}
		return true

	case *ast.IsExpr:
		return false

	case *ast.CastExpr:
		return inf.exprNullable(ex.Expr, sc, nn)

	case *ast.SubscriptExpr:
		// Out-of-range subscripts yield NULL even for non-null operands.
		return true

	case *ast.InExpr:
		if inf.exprNullable(ex.Expr, sc, nn) {
			return true
		}
		if ex.Query != nil {
			return inf.anyColumnNullable(ex.Query)
		}
		for _, v := range ex.Values {
			if inf.exprNullable(v, sc, nn) {
				return true
			}
		}
		return false

	case *ast.ExistsExpr:
		return false

	case *ast.ParenExpr:
		return inf.exprNullable(ex.Expr, sc, nn)

	default:
		return true
	}
}

// anyColumnNullable reports whether any output column of a subquery may be
// NULL. Analysis failures (e.g. correlated references to the outer scope)
// degrade to true.
func (inf *inferrer) anyColumnNullable(sub *ast.SelectStmt) bool {
	cols, err := inf.selectColumns(sub)
	if err != nil {
		return true
	}
	for _, c := range cols {
		if c.Nullable {
			return true
		}
	}
	return false
}

// outputName derives the output column name of an unaliased select item:
// the column name for references, the function name for calls, otherwise
// the server's synthetic placeholder. Casts and parentheses are
// transparent, as in PostgreSQL.
func outputName(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.ColumnRef:
		return ex.Column
	case *ast.FuncCall:
		return pgsql.NormalizeName(ex.Name)
	case *ast.CastExpr:
		return outputName(ex.Expr)
	case *ast.ParenExpr:
		return outputName(ex.Expr)
	default:
		return "?column?"
	}
}
